package cmd

import (
	"context"
	"flag"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
	"golang.org/x/text/message"

	"grimm.is/ifconf/internal/autoconf"
	"grimm.is/ifconf/internal/brand"
	"grimm.is/ifconf/internal/config"
	"grimm.is/ifconf/internal/errors"
	"grimm.is/ifconf/internal/i18n"
	"grimm.is/ifconf/internal/logging"
	"grimm.is/ifconf/internal/netif"
	"grimm.is/ifconf/internal/report"
	"grimm.is/ifconf/internal/wireless"
)

// Printer is the global message printer for the CLI
var Printer = i18n.NewCLIPrinter()

// Options are the global flags.
type Options struct {
	ConfigFile string
	DryRun     bool
	Format     string
	Color      string
	NetNS      string
}

// App is one invocation of the command line. Nil fields fall back to the
// live system.
type App struct {
	Stdout  io.Writer
	Stderr  io.Writer
	Opener  netif.Opener
	Device  func(name string) *wireless.Device
	Printer *message.Printer
	// IsTerminal decides colour=auto.
	IsTerminal func(w io.Writer) bool

	opts   Options
	cfg    *config.Config
	roster *netif.Roster
	dry    *dryRun
}

// NewApp returns an App wired to the process's stdio.
func NewApp() *App {
	return &App{
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		Printer: Printer,
	}
}

func (a *App) printer() *message.Printer {
	if a.Printer == nil {
		return Printer
	}
	return a.Printer
}

// fail prints err on stderr and returns the exit status for it. Usage
// errors are followed by the usage text.
func (a *App) fail(err error) int {
	a.printer().Fprintf(a.Stderr, "%s: %s\n", brand.BinaryName, err.Error())
	if errors.GetKind(err) == errors.KindUsage {
		Usage(a.Stderr)
	}
	return errors.ExitCode(err)
}

// Run executes args (without the program name) and returns the exit status.
func (a *App) Run(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet(brand.BinaryName, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&a.opts.ConfigFile, "config", "", "configuration file")
	fs.BoolVar(&a.opts.DryRun, "dry-run", false, "simulate and print the requests")
	fs.StringVar(&a.opts.NetNS, "netns", "", "named network namespace")
	fs.StringVar(&a.opts.Color, "color", "", "auto, always or never")
	jsonOut := fs.Bool("json", false, "JSON listing")
	yamlOut := fs.Bool("yaml", false, "YAML listing")
	all := fs.Bool("a", false, "list all interfaces")
	help := fs.Bool("help", false, "show usage")
	fs.BoolVar(help, "h", false, "show usage")
	del := fs.Bool("delete", false, "delete an interface or addresses")
	fs.BoolVar(del, "del", false, "")
	fs.BoolVar(del, "d", false, "")

	if err := fs.Parse(args); err != nil {
		a.printer().Fprintf(a.Stderr, "%s: %s\n", brand.BinaryName, err.Error())
		Usage(a.Stderr)
		return 1
	}
	if *help {
		Usage(a.Stdout)
		return 0
	}

	rest := fs.Args()
	if len(rest) > 0 && (rest[0] == "del" || rest[0] == "delete") {
		*del = true
		rest = rest[1:]
	}

	if err := a.loadConfig(); err != nil {
		return a.fail(err)
	}
	a.opts.Format = a.cfg.Output.Format
	switch {
	case *jsonOut:
		a.opts.Format = config.FormatJSON
	case *yamlOut:
		a.opts.Format = config.FormatYAML
	}
	if a.opts.Color == "" {
		a.opts.Color = a.cfg.Output.Color
	}

	if a.opts.NetNS != "" {
		restore, err := enterNamespace(a.opts.NetNS)
		if err != nil {
			return a.fail(err)
		}
		defer restore()
	}

	if len(rest) > 0 {
		switch rest[0] {
		case "autoconfd":
			return a.runAutoconfd(ctx, rest[1:])
		case "config":
			return a.runConfig(rest[1:])
		case "route":
			return a.withRoster(func() int { return a.runRoute(rest[1:]) })
		}
	}

	switch {
	case *del:
		if len(rest) < 1 {
			Usage(a.Stderr)
			return 1
		}
		return a.withRoster(func() int { return a.runDelete(ctx, rest[0], rest[1:]) })
	case *all:
		if len(rest) > 0 {
			Usage(a.Stderr)
			return 1
		}
		return a.withRoster(func() int { return a.runList("") })
	case len(rest) == 0:
		return a.withRoster(func() int { return a.runList("") })
	case len(rest) == 1:
		return a.withRoster(func() int { return a.runList(rest[0]) })
	}

	name, tokens := rest[0], rest[1:]
	return a.withRoster(func() int {
		if code, ok := a.runWireless(name, tokens); ok {
			return code
		}
		return a.runConfigure(ctx, name, tokens)
	})
}

func (a *App) loadConfig() error {
	var err error
	if a.opts.ConfigFile != "" {
		a.cfg, err = config.LoadFile(a.opts.ConfigFile)
	} else {
		a.cfg, err = config.Load(brand.GetConfigPath())
	}
	if err != nil {
		return err
	}

	logger := logging.New(logging.Config{
		Level:  logging.ParseLevel(a.cfg.LogLevel),
		Output: a.Stderr,
		JSON:   a.cfg.LogJSON,
	})
	logging.SetDefault(logger)
	return nil
}

// withRoster opens the interface table (or its dry-run copy), runs fn, and
// prints the dry-run summary afterwards.
func (a *App) withRoster(fn func() int) int {
	opener := a.Opener
	if opener == nil {
		opener = netif.KernelOpener{}
	}

	ch, err := opener.Open()
	if err != nil {
		logging.WithComponent("cmd").Debug("opening control channel failed", "error", err)
		a.printer().Fprintf(a.Stderr, "%s: the networking stack is not available\n", brand.BinaryName)
		return 1
	}
	ch.Close()

	a.dry = nil
	var auto netif.AutoConfigurer
	if a.opts.DryRun {
		sim, err := netif.Snapshot(netif.NewRoster(opener))
		if err != nil {
			return a.fail(err)
		}
		a.dry = newDryRun(sim)
		opener = sim
		auto = a.dry
	} else {
		timeout, _, _ := a.cfg.Autoconf.Durations()
		auto = autoconf.NewClient(a.cfg.Autoconf.Socket, timeout)
	}
	a.roster = netif.NewRoster(opener).WithAutoConfigurer(auto)

	if a.dry != nil {
		a.dry.before = a.listingText()
	}
	code := fn()
	if a.dry != nil && a.dry.mutated {
		a.dry.print(a.Stdout, a.printer(), a.listingText())
	}
	return code
}

// device returns the wireless view of name.
func (a *App) device(name string) *wireless.Device {
	var d *wireless.Device
	if a.Device != nil {
		d = a.Device(name)
	} else {
		d = wireless.NewDevice(name)
	}
	if a.dry != nil {
		d.Exec = a.dry.exec
	}
	return d
}

func (a *App) gatherer() *report.Gatherer {
	return &report.Gatherer{Roster: a.roster, Device: a.device}
}

// styler resolves the colour mode against the output stream.
func (a *App) styler() report.Styler {
	st := report.Styler{Printer: a.printer()}
	switch a.opts.Color {
	case config.ColorAlways:
		lipgloss.SetColorProfile(termenv.ANSI256)
		st.Enabled = true
	case config.ColorNever:
	default:
		st.Enabled = a.terminal(a.Stdout) && os.Getenv("NO_COLOR") == ""
	}
	return st
}

func (a *App) terminal(w io.Writer) bool {
	if a.IsTerminal != nil {
		return a.IsTerminal(w)
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// listingText renders every interface without styling or wireless lines,
// for diffs.
func (a *App) listingText() string {
	g := &report.Gatherer{Roster: a.roster}
	listings, err := g.All()
	if err != nil {
		return ""
	}
	var b strings.Builder
	_ = report.Render(&b, listings, report.FormatText, report.Styler{})
	return b.String()
}
