package ifconfig

import (
	"context"

	"grimm.is/ifconf/internal/errors"
	"grimm.is/ifconf/internal/logging"
	"grimm.is/ifconf/internal/media"
	"grimm.is/ifconf/internal/netaddr"
	"grimm.is/ifconf/internal/netif"
)

// Engine commits intents through a roster.
type Engine struct {
	roster *netif.Roster
	log    *logging.Logger
}

// NewEngine returns an Engine issuing requests through roster.
func NewEngine(roster *netif.Roster) *Engine {
	return &Engine{
		roster: roster,
		log:    logging.WithComponent("ifconfig"),
	}
}

// Configure parses args for interface name and commits the result. A
// returned error is fatal and means nothing was changed, except for a
// failed registration. Per-operation failures are in the Report.
func (e *Engine) Configure(ctx context.Context, name string, args []string) (*Report, error) {
	in, err := Parse(name, args)
	if err != nil {
		return nil, err
	}
	return e.Commit(ctx, in)
}

type step struct {
	label string
	run   func() error
}

// Commit applies a validated intent. Every operation is attempted even when
// an earlier one fails.
func (e *Engine) Commit(ctx context.Context, in *Intent) (*Report, error) {
	iface := e.roster.Interface(in.Interface)

	// Media is resolved before a missing interface is registered so that
	// a rejected media keyword leaves the table untouched.
	var target media.Media
	if in.Media != "" {
		current, err := iface.Media()
		if err != nil {
			return nil, errors.Wrap(err, errors.KindUnsupported, "unable to detect media type")
		}
		var ok bool
		if target, ok = media.ParseSubtype(in.Media, current); !ok {
			return nil, errors.Attr(errors.Errorf(errors.KindParse,
				"invalid parameter for option 'media': %q", in.Media), "keyword", "media")
		}
	}

	report := &Report{}
	if !iface.Exists() {
		err := e.roster.Add(in.Interface)
		report.add("register interface", err)
		if err != nil {
			return report, err
		}
	}

	remove := in.RemoveFlags
	if in.touchesAddress() {
		remove |= netif.FlagAutoConfigured | netif.FlagConfiguring
	}

	// A peer on its own has nothing to write; it only clears the
	// auto-configuration flags above.
	var steps []step
	if in.setsAddress() {
		entry := in.entry()
		steps = append(steps, step{"set address", func() error { return iface.SetAddress(entry) }})
	}
	if in.AddFlags != 0 || remove != 0 {
		steps = append(steps, step{"set flags", func() error { return iface.ChangeFlags(in.AddFlags, remove) }})
	}
	if in.MTU != Unset {
		steps = append(steps, step{"set mtu", func() error { return iface.SetMTU(in.MTU) }})
	}
	if in.Metric != Unset {
		steps = append(steps, step{"set metric", func() error { return iface.SetMetric(in.Metric) }})
	}
	if in.Media != "" {
		steps = append(steps, step{"set media", func() error { return iface.SetMedia(target) }})
	}
	if in.AutoConfig {
		family := in.autoConfigFamily()
		steps = append(steps, step{"auto-configure " + family.String(), func() error {
			return iface.AutoConfigure(ctx, family)
		}})
	}

	for _, s := range steps {
		err := s.run()
		report.add(s.label, err)
		if err != nil {
			e.log.Warn("operation failed", "interface", in.Interface, "op", s.label, "error", err)
		} else {
			e.log.Debug("operation applied", "interface", in.Interface, "op", s.label)
		}
	}
	return report, nil
}

// Delete removes addresses from name, or the interface itself when args is
// empty. Every token is parsed before anything is removed; each removal is
// attempted independently.
func (e *Engine) Delete(ctx context.Context, name string, args []string) (*Report, error) {
	if err := netif.ValidateName(name); err != nil {
		return nil, err
	}

	report := &Report{}
	if len(args) == 0 {
		report.add("remove interface "+name, e.roster.Remove(name))
		return report, nil
	}

	addrs, err := parseDeleteArgs(args)
	if err != nil {
		return nil, err
	}

	iface := e.roster.Interface(name)
	for _, a := range addrs {
		err := iface.RemoveAddress(a)
		report.add("remove address "+a.String(), err)
		if err != nil {
			e.log.Warn("address removal failed", "interface", name, "address", a.String(), "error", err)
		}
	}
	return report, nil
}

// parseDeleteArgs reads a list of [family] address tokens.
func parseDeleteArgs(args []string) ([]netaddr.Address, error) {
	var out []netaddr.Address
	for i := 0; i < len(args); i++ {
		family := netaddr.Resolve(args[i])
		if family != netaddr.Unspecified {
			i++
			if i >= len(args) {
				return nil, errors.Errorf(errors.KindUsage, "family %q needs an address", args[i-1])
			}
		}
		a, ok := netaddr.Parse(&family, args[i])
		if !ok {
			return nil, errors.Attr(errors.Errorf(errors.KindParse, "could not parse address %q", args[i]), "address", args[i])
		}
		out = append(out, a)
	}
	return out, nil
}
