package cmd

import (
	"grimm.is/ifconf/internal/brand"
	"grimm.is/ifconf/internal/report"
	"grimm.is/ifconf/internal/wireless"
)

var wirelessCommands = map[string]bool{
	"scan":  true,
	"list":  true,
	"join":  true,
	"leave": true,
}

// runWireless handles "<if> scan|list|join|leave". ok is false when args
// is not a wireless command.
func (a *App) runWireless(name string, args []string) (code int, ok bool) {
	if len(args) == 0 || !wirelessCommands[args[0]] {
		return 0, false
	}

	if !a.roster.Interface(name).Exists() {
		a.printer().Fprintf(a.Stderr, "%s: \"%s\" does not exist!\n", brand.BinaryName, name)
		return 1, true
	}
	dev := a.device(name)
	if !dev.IsWireless() {
		a.printer().Fprintf(a.Stderr, "%s: \"%s\" is not a WLAN device!\n", brand.BinaryName, name)
		return 1, true
	}

	command, rest := args[0], args[1:]
	switch command {
	case "scan":
		nets, err := dev.Scan()
		if err != nil {
			return a.fail(err), true
		}
		report.WriteScan(a.Stdout, nets, false, a.styler())

	case "list":
		verbose := len(rest) > 0 && rest[0] == "-v"
		if verbose {
			rest = rest[1:]
		}
		var nets []wireless.Network
		if len(rest) == 0 {
			all, err := dev.Networks()
			if err != nil {
				return a.fail(err), true
			}
			nets = all
		}
		for _, id := range rest {
			n, err := dev.Network(id)
			if err != nil {
				return a.fail(err), true
			}
			nets = append(nets, n)
		}
		report.WriteScan(a.Stdout, nets, verbose, a.styler())

	case "join":
		if len(rest) < 1 || len(rest) > 2 {
			Usage(a.Stderr)
			return 1, true
		}
		password := ""
		if len(rest) == 2 {
			password = rest[1]
		}
		a.markMutated()
		if err := dev.Join(rest[0], password); err != nil {
			return a.fail(err), true
		}

	case "leave":
		if len(rest) != 1 {
			Usage(a.Stderr)
			return 1, true
		}
		a.markMutated()
		if err := dev.Leave(rest[0]); err != nil {
			return a.fail(err), true
		}
	}
	return 0, true
}
