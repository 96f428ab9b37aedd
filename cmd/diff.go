package cmd

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/pmezard/go-difflib/difflib"
	"golang.org/x/text/message"

	"grimm.is/ifconf/internal/netaddr"
	"grimm.is/ifconf/internal/netif"
	"grimm.is/ifconf/internal/wireless"
)

// dryRun collects what an invocation would have done. It stands in for the
// auto-configuration service so no request leaves the process.
type dryRun struct {
	sim  *netif.Sim
	exec *wireless.DryRunExecutor

	mu       sync.Mutex
	requests []string

	before  string
	mutated bool
}

func newDryRun(sim *netif.Sim) *dryRun {
	return &dryRun{
		sim:  sim,
		exec: wireless.NewDryRunExecutor(),
	}
}

// Configure records the auto-configuration request.
func (d *dryRun) Configure(ctx context.Context, iface string, family netaddr.Family) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.requests = append(d.requests, fmt.Sprintf("autoconf %s %s", iface, family))
	return nil
}

// print writes the request log and a unified diff of the listings.
func (d *dryRun) print(w io.Writer, p *message.Printer, after string) {
	p.Fprintf(w, "[DRY RUN] Requests:\n")
	lines := d.sim.Ops()
	lines = append(lines, d.exec.Commands...)
	d.mu.Lock()
	lines = append(lines, d.requests...)
	d.mu.Unlock()
	if len(lines) == 0 {
		p.Fprintf(w, "  (none)\n")
	}
	for _, l := range lines {
		fmt.Fprintf(w, "  %s\n", l)
	}

	if d.before == after {
		p.Fprintf(w, "No changes detected.\n")
		return
	}
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(d.before),
		B:        difflib.SplitLines(after),
		FromFile: "before",
		ToFile:   "after",
		Context:  3,
	}
	text, _ := difflib.GetUnifiedDiffString(diff)
	fmt.Fprint(w, text)
}
