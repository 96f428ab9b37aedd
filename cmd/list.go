package cmd

import "grimm.is/ifconf/internal/report"

// runList prints one interface, or all of them when name is empty. Listing
// a missing interface exits 1.
func (a *App) runList(name string) int {
	g := a.gatherer()

	var listings []report.Listing
	if name == "" {
		all, err := g.All()
		if err != nil {
			return a.fail(err)
		}
		listings = all
	} else {
		listings = []report.Listing{g.Interface(name)}
	}

	if err := report.Render(a.Stdout, listings, a.opts.Format, a.styler()); err != nil {
		return a.fail(err)
	}
	if name != "" && !listings[0].Found {
		return 1
	}
	return 0
}
