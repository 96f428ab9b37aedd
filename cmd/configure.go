package cmd

import (
	"context"
	"strings"

	"grimm.is/ifconf/internal/brand"
	"grimm.is/ifconf/internal/ifconfig"
)

// runConfigure applies the option words to name. Failed steps are printed
// one per line and do not change the exit status.
func (a *App) runConfigure(ctx context.Context, name string, args []string) int {
	a.markMutated()
	rep, err := ifconfig.NewEngine(a.roster).Configure(ctx, name, args)
	if err != nil {
		return a.fail(err)
	}
	a.warn(rep)
	return 0
}

// runDelete removes the listed addresses from name, or name itself.
func (a *App) runDelete(ctx context.Context, name string, args []string) int {
	a.markMutated()
	rep, err := ifconfig.NewEngine(a.roster).Delete(ctx, name, args)
	if err != nil {
		return a.fail(err)
	}
	a.warn(rep)
	return 0
}

func (a *App) warn(rep *ifconfig.Report) {
	err := rep.Err()
	if err == nil {
		return
	}
	for _, line := range strings.Split(strings.TrimSpace(err.Error()), "\n") {
		a.printer().Fprintf(a.Stderr, "%s: %s\n", brand.BinaryName, line)
	}
}

func (a *App) markMutated() {
	if a.dry != nil {
		a.dry.mutated = true
	}
}
