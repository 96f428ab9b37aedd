package cmd

import (
	"fmt"

	"grimm.is/ifconf/internal/brand"
)

// runConfig handles "config print" and "config check". Loading already
// validated the file, so check only reports where it came from.
func (a *App) runConfig(args []string) int {
	if len(args) != 1 {
		Usage(a.Stderr)
		return 1
	}
	switch args[0] {
	case "print":
		fmt.Fprint(a.Stdout, string(a.cfg.Serialize()))
	case "check":
		path := a.opts.ConfigFile
		if path == "" {
			path = brand.GetConfigPath()
		}
		a.printer().Fprintf(a.Stdout, "Configuration valid: %s\n", path)
	default:
		Usage(a.Stderr)
		return 1
	}
	return 0
}
