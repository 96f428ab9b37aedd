package netif

import (
	"context"
	"net"

	"grimm.is/ifconf/internal/errors"
	"grimm.is/ifconf/internal/logging"
	"grimm.is/ifconf/internal/media"
	"grimm.is/ifconf/internal/netaddr"
)

// Interface issues requests against one named interface.
type Interface struct {
	name   string
	opener Opener
	auto   AutoConfigurer
	log    *logging.Logger
}

// New returns an Interface bound to name.
func New(name string, opener Opener) *Interface {
	return &Interface{
		name:   name,
		opener: opener,
		log:    logging.WithComponent("netif"),
	}
}

// WithAutoConfigurer sets the service AutoConfigure delegates to.
func (i *Interface) WithAutoConfigurer(a AutoConfigurer) *Interface {
	i.auto = a
	return i
}

// Name returns the interface name.
func (i *Interface) Name() string { return i.name }

// do opens a channel, runs fn and closes the channel on every path.
func (i *Interface) do(op string, fn func(Channel) error) error {
	ch, err := i.opener.Open()
	if err != nil {
		return wrapOp(err, op, i.name)
	}
	defer func() {
		if cerr := ch.Close(); cerr != nil {
			i.log.Debug("channel close failed", "interface", i.name, "error", cerr)
		}
	}()

	i.log.Debug("request", "op", op, "interface", i.name)
	return wrapOp(fn(ch), op, i.name)
}

// wrapOp tags plain errors as operation failures. Errors that already carry
// a kind are returned as they are.
func wrapOp(err error, op, name string) error {
	if err == nil {
		return nil
	}
	if errors.GetKind(err) != errors.KindUnknown {
		return err
	}
	return errors.Attr(errors.Wrap(err, errors.KindOperation, op), "interface", name)
}

// Exists reports whether the flags query succeeds. A transient failure of
// that query is indistinguishable from a missing interface.
func (i *Interface) Exists() bool {
	_, err := i.Flags()
	return err == nil
}

// Index returns the kernel index of the interface.
func (i *Interface) Index() (int, error) {
	var idx int
	err := i.do("get index", func(ch Channel) (err error) {
		idx, err = ch.Index(i.name)
		return
	})
	return idx, err
}

func (i *Interface) Flags() (Flags, error) {
	var f Flags
	err := i.do("get flags", func(ch Channel) (err error) {
		f, err = ch.Flags(i.name)
		return
	})
	return f, err
}

func (i *Interface) SetFlags(f Flags) error {
	return i.do("set flags", func(ch Channel) error {
		return ch.SetFlags(i.name, f)
	})
}

// ChangeFlags applies (current &^ remove) | add. The read and the write share
// one channel.
func (i *Interface) ChangeFlags(add, remove Flags) error {
	return i.do("set flags", func(ch Channel) error {
		cur, err := ch.Flags(i.name)
		if err != nil {
			return err
		}
		return ch.SetFlags(i.name, cur.Apply(add, remove))
	})
}

func (i *Interface) MTU() (int, error) {
	var v int
	err := i.do("get mtu", func(ch Channel) (err error) {
		v, err = ch.MTU(i.name)
		return
	})
	return v, err
}

func (i *Interface) SetMTU(mtu int) error {
	return i.do("set mtu", func(ch Channel) error {
		return ch.SetMTU(i.name, mtu)
	})
}

func (i *Interface) Metric() (int, error) {
	var v int
	err := i.do("get metric", func(ch Channel) (err error) {
		v, err = ch.Metric(i.name)
		return
	})
	return v, err
}

func (i *Interface) SetMetric(metric int) error {
	return i.do("set metric", func(ch Channel) error {
		return ch.SetMetric(i.name, metric)
	})
}

func (i *Interface) Media() (media.Media, error) {
	var m media.Media
	err := i.do("get media", func(ch Channel) (err error) {
		m, err = ch.Media(i.name)
		return
	})
	return m, err
}

func (i *Interface) SetMedia(m media.Media) error {
	return i.do("set media", func(ch Channel) error {
		return ch.SetMedia(i.name, m)
	})
}

// HardwareAddress returns the link-level type and address.
func (i *Interface) HardwareAddress() (LinkLevel, error) {
	var ll LinkLevel
	err := i.do("get hardware address", func(ch Channel) (err error) {
		ll, err = ch.LinkLevel(i.name)
		return
	})
	return ll, err
}

// Stats returns the interface statistics.
func (i *Interface) Stats() (Stats, error) {
	var s Stats
	err := i.do("get statistics", func(ch Channel) (err error) {
		s, err = ch.Stats(i.name)
		return
	})
	return s, err
}

// Addresses returns every address alias of the interface.
func (i *Interface) Addresses() ([]AddressEntry, error) {
	var out []AddressEntry
	err := i.do("list addresses", func(ch Channel) (err error) {
		out, err = ch.Addresses(i.name, netaddr.Unspecified)
		return
	})
	return out, err
}

// CountAddresses returns the number of address aliases.
func (i *Interface) CountAddresses() (int, error) {
	addrs, err := i.Addresses()
	return len(addrs), err
}

// AddressAt returns the alias at position index.
func (i *Interface) AddressAt(index int) (AddressEntry, error) {
	addrs, err := i.Addresses()
	if err != nil {
		return AddressEntry{}, err
	}
	if index < 0 || index >= len(addrs) {
		return AddressEntry{}, errors.Errorf(errors.KindNotFound, "%s has no address at index %d", i.name, index)
	}
	return addrs[index], nil
}

// FindAddress returns the position of addr, or -1.
func (i *Interface) FindAddress(addr netaddr.Address) (int, error) {
	addrs, err := i.Addresses()
	if err != nil {
		return -1, err
	}
	for n, e := range addrs {
		if e.Address.Equal(addr) {
			return n, nil
		}
	}
	return -1, nil
}

// FindFirstAddress returns the position of the first alias of family, or -1.
func (i *Interface) FindFirstAddress(family netaddr.Family) (int, error) {
	addrs, err := i.Addresses()
	if err != nil {
		return -1, err
	}
	for n, e := range addrs {
		if e.Address.Family == family {
			return n, nil
		}
	}
	return -1, nil
}

// AddAddress adds a new alias.
func (i *Interface) AddAddress(entry AddressEntry) error {
	return i.do("add address", func(ch Channel) error {
		if entry.Mask.IsEmpty() && !entry.Address.IsEmpty() {
			entry.Mask = netaddr.DefaultMask(entry.Address)
		}
		return ch.AddAddress(i.name, entry)
	})
}

// SetAddress modifies the first alias of entry's family, or adds one if the
// interface has none. Empty fields of entry keep their current value.
func (i *Interface) SetAddress(entry AddressEntry) error {
	return i.do("set address", func(ch Channel) error {
		family := entry.Family()
		if family == netaddr.Unspecified {
			return errors.New(errors.KindUsage, "no address family to configure")
		}

		current, err := ch.Addresses(i.name, family)
		if err != nil {
			return err
		}

		if len(current) == 0 {
			if entry.Address.IsEmpty() {
				return errors.Errorf(errors.KindOperation, "%s has no %s address to modify", i.name, family)
			}
			return ch.AddAddress(i.name, complete(entry, AddressEntry{}))
		}

		old := current[0]
		next := complete(entry, old)
		if sameEntry(old, next) {
			return nil
		}
		if err := ch.RemoveAddress(i.name, old); err != nil {
			return err
		}
		if err := ch.AddAddress(i.name, next); err != nil {
			// Put the old alias back so a rejected change is not a removal.
			if rerr := ch.AddAddress(i.name, old); rerr != nil {
				i.log.Warn("restoring address failed", "interface", i.name, "address", old.Address.String(), "error", rerr)
			}
			return err
		}
		return nil
	})
}

// complete fills the empty fields of entry from old.
func complete(entry, old AddressEntry) AddressEntry {
	next := entry
	addressChanged := !entry.Address.IsEmpty() && !entry.Address.Equal(old.Address)
	if next.Address.IsEmpty() {
		next.Address = old.Address
	}
	if next.Mask.IsEmpty() {
		if old.Mask.IsEmpty() {
			next.Mask = netaddr.DefaultMask(next.Address)
		} else {
			next.Mask = old.Mask
		}
	}
	if next.Broadcast.IsEmpty() && next.Peer.IsEmpty() {
		switch {
		case !old.Peer.IsEmpty():
			next.Peer = old.Peer
		case !old.Broadcast.IsEmpty():
			if addressChanged || !next.Mask.Equal(old.Mask) {
				next.Broadcast = netaddr.Broadcast(next.Address, next.Mask)
			} else {
				next.Broadcast = old.Broadcast
			}
		}
	}
	return next
}

func sameEntry(a, b AddressEntry) bool {
	return a.Address.Equal(b.Address) &&
		a.Mask.Equal(b.Mask) &&
		a.Broadcast.Equal(b.Broadcast) &&
		a.Peer.Equal(b.Peer)
}

// RemoveAddress removes the alias carrying addr.
func (i *Interface) RemoveAddress(addr netaddr.Address) error {
	return i.do("remove address", func(ch Channel) error {
		current, err := ch.Addresses(i.name, addr.Family)
		if err != nil {
			return err
		}
		for _, e := range current {
			if e.Address.Equal(addr) {
				return ch.RemoveAddress(i.name, e)
			}
		}
		return errors.Errorf(errors.KindNotFound, "%s has no address %s", i.name, addr)
	})
}

// RemoveAddressAt removes the alias at position index.
func (i *Interface) RemoveAddressAt(index int) error {
	return i.do("remove address", func(ch Channel) error {
		current, err := ch.Addresses(i.name, netaddr.Unspecified)
		if err != nil {
			return err
		}
		if index < 0 || index >= len(current) {
			return errors.Errorf(errors.KindNotFound, "%s has no address at index %d", i.name, index)
		}
		return ch.RemoveAddress(i.name, current[index])
	})
}

// Routes lists the routes of family bound to the interface.
func (i *Interface) Routes(family netaddr.Family) ([]Route, error) {
	var out []Route
	err := i.do("list routes", func(ch Channel) (err error) {
		out, err = ch.Routes(i.name, family)
		return
	})
	return out, err
}

func (i *Interface) AddRoute(r Route) error {
	return i.do("add route", func(ch Channel) error {
		return ch.AddRoute(i.name, r)
	})
}

func (i *Interface) RemoveRoute(r Route) error {
	return i.do("remove route", func(ch Channel) error {
		return ch.RemoveRoute(i.name, r)
	})
}

// AddDefaultRoute routes everything of gateway's family via gateway.
func (i *Interface) AddDefaultRoute(gateway netaddr.Address) error {
	r, err := defaultRoute(gateway)
	if err != nil {
		return err
	}
	return i.AddRoute(r)
}

// ReplaceDefaultRoute points the default route of gateway's family at
// gateway, removing a different one first. The read and writes share one
// channel.
func (i *Interface) ReplaceDefaultRoute(gateway netaddr.Address) error {
	r, err := defaultRoute(gateway)
	if err != nil {
		return err
	}
	return i.do("replace default route", func(ch Channel) error {
		routes, err := ch.Routes(i.name, gateway.Family)
		if err != nil {
			return err
		}
		for _, old := range routes {
			if !old.IsDefault() {
				continue
			}
			if old.Gateway.Equal(gateway) {
				return nil
			}
			if err := ch.RemoveRoute(i.name, old); err != nil {
				return err
			}
		}
		return ch.AddRoute(i.name, r)
	})
}

// RemoveDefaultRoute removes the default route of family.
func (i *Interface) RemoveDefaultRoute(family netaddr.Family) error {
	return i.do("remove default route", func(ch Channel) error {
		routes, err := ch.Routes(i.name, family)
		if err != nil {
			return err
		}
		for _, r := range routes {
			if r.IsDefault() {
				return ch.RemoveRoute(i.name, r)
			}
		}
		return errors.Errorf(errors.KindNotFound, "%s has no %s default route", i.name, family)
	})
}

// DefaultRoute returns the default route of family.
func (i *Interface) DefaultRoute(family netaddr.Family) (Route, error) {
	routes, err := i.Routes(family)
	if err != nil {
		return Route{}, err
	}
	for _, r := range routes {
		if r.IsDefault() {
			return r, nil
		}
	}
	return Route{}, errors.Errorf(errors.KindNotFound, "%s has no %s default route", i.name, family)
}

func defaultRoute(gateway netaddr.Address) (Route, error) {
	af, ok := netaddr.Describe(gateway.Family)
	if !ok {
		return Route{}, errors.New(errors.KindParse, "default route needs an inet or inet6 gateway")
	}
	zero := netaddr.Address{Family: gateway.Family, IP: make(net.IP, af.Bits/8)}
	mask, _ := netaddr.MaskFromPrefix(gateway.Family, 0)
	return Route{
		Destination: zero,
		Mask:        mask,
		Gateway:     gateway,
		Flags:       RouteStatic | RouteDefault | RouteGateway,
	}, nil
}

// AutoConfigure asks the auto-configuration service to configure family.
func (i *Interface) AutoConfigure(ctx context.Context, family netaddr.Family) error {
	if i.auto == nil {
		return errors.New(errors.KindUnavailable, "the auto-configuration service needs to run for the auto configuration")
	}
	return i.auto.Configure(ctx, i.name, family)
}
