package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"gopkg.in/yaml.v2"

	"grimm.is/ifconf/internal/autoconf"
	"grimm.is/ifconf/internal/config"
	"grimm.is/ifconf/internal/logging"
	"grimm.is/ifconf/internal/metrics"
	"grimm.is/ifconf/internal/netaddr"
	"grimm.is/ifconf/internal/netif"
)

// collectInterval is how often the daemon samples interface counters.
const collectInterval = 15 * time.Second

// runAutoconfd runs the auto-configuration daemon until SIGINT or SIGTERM,
// or reports the leases of a running one with --status.
func (a *App) runAutoconfd(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("autoconfd", flag.ContinueOnError)
	fs.SetOutput(a.Stderr)
	socket := fs.String("socket", a.cfg.Autoconf.Socket, "service socket")
	listen := fs.String("metrics", a.cfg.Autoconf.MetricsListen, "Prometheus listen address")
	status := fs.Bool("status", false, "print the leases of the running service")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if fs.NArg() > 0 {
		Usage(a.Stderr)
		return 1
	}

	timeout, dhcpTimeout, raTimeout := a.cfg.Autoconf.Durations()
	if *status {
		return a.autoconfStatus(ctx, autoconf.NewClient(*socket, timeout))
	}

	log := logging.WithComponent("autoconfd")
	opener := a.Opener
	if opener == nil {
		opener = netif.KernelOpener{}
	}
	roster := netif.NewRoster(opener)
	reg := metrics.Get()

	var sysctl autoconf.SystemController = &autoconf.RealSystemController{}
	if a.opts.DryRun {
		sysctl = &autoconf.DryRunSystemController{}
	}
	svc := autoconf.NewService(roster, autoconf.Options{
		Workers: map[netaddr.Family]autoconf.Worker{
			netaddr.INET: &autoconf.DHCPWorker{
				Timeout: dhcpTimeout,
				Store:   &autoconf.LeaseStore{Dir: a.cfg.Autoconf.StateDir},
			},
			netaddr.INET6: &autoconf.RAWorker{
				Timeout: raTimeout,
				Sysctl:  sysctl,
			},
		},
		Metrics: reg,
		Timeout: timeout,
	})
	defer svc.Stop()

	srv, err := autoconf.NewServer(*socket, svc)
	if err != nil {
		return a.fail(err)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Start(ctx); err != nil {
		return a.fail(err)
	}
	defer srv.Stop()

	if *listen != "" {
		collector := metrics.NewCollector(reg, roster, collectInterval)
		collector.Start(ctx)
		defer collector.Stop()

		mux := http.NewServeMux()
		mux.Handle("/metrics", reg.Handler())
		httpSrv := &http.Server{
			Addr:              *listen,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error("metrics listener failed", "addr", *listen, "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = httpSrv.Shutdown(shutdownCtx)
		}()
		log.Info("serving metrics", "addr", *listen)
	}

	<-ctx.Done()
	log.Info("auto-configuration service stopping")
	return 0
}

func (a *App) autoconfStatus(ctx context.Context, client *autoconf.Client) int {
	leases, err := client.Leases(ctx)
	if err != nil {
		return a.fail(err)
	}
	if err := writeLeases(a.Stdout, leases, a.opts.Format); err != nil {
		return a.fail(err)
	}
	return 0
}

func writeLeases(w io.Writer, leases []autoconf.LeaseInfo, format string) error {
	switch format {
	case config.FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(leases)
	case config.FormatYAML:
		out, err := yaml.Marshal(leases)
		if err != nil {
			return err
		}
		_, err = w.Write(out)
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "INTERFACE\tFAMILY\tADDRESSES\tGATEWAY\tSERVER\tEXPIRES")
	for _, l := range leases {
		expires := "never"
		if !l.Expires.IsZero() {
			expires = l.Expires.Format(time.RFC3339)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			l.Interface, l.Family, strings.Join(l.Addresses, ","), dash(l.Gateway), dash(l.Server), expires)
	}
	return tw.Flush()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
