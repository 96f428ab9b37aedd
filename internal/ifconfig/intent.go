// Package ifconfig is the configuration engine: it parses one invocation's
// tokens into an Intent, validates it, and commits it through netif.
package ifconfig

import (
	"grimm.is/ifconf/internal/errors"
	"grimm.is/ifconf/internal/netaddr"
	"grimm.is/ifconf/internal/netif"
)

// Unset marks an MTU or metric that was not given.
const Unset = -1

// MinMTU is the smallest MTU accepted on the command line, exclusive.
const MinMTU = 500

// Intent is the configuration gathered from one invocation.
type Intent struct {
	Interface string
	Family    netaddr.Family

	Address   netaddr.Address
	Mask      netaddr.Address
	Broadcast netaddr.Address
	Peer      netaddr.Address

	MTU    int
	Metric int
	// Media is a subtype name, resolved against the interface's current
	// media type at commit time.
	Media string

	AddFlags    netif.Flags
	RemoveFlags netif.Flags
	AutoConfig  bool

	maskSet      bool
	broadcastSet bool
}

func newIntent(name string) *Intent {
	return &Intent{
		Interface: name,
		MTU:       Unset,
		Metric:    Unset,
	}
}

// setsAddress reports whether a combined address-set request is needed.
func (in *Intent) setsAddress() bool {
	return !in.Address.IsEmpty() || !in.Mask.IsEmpty() || !in.Broadcast.IsEmpty()
}

// touchesAddress reports whether any address field was given.
func (in *Intent) touchesAddress() bool {
	return in.setsAddress() || !in.Peer.IsEmpty()
}

// entry builds the address-set request. Broadcast wins over peer.
func (in *Intent) entry() netif.AddressEntry {
	e := netif.AddressEntry{
		Address: in.Address,
		Mask:    in.Mask,
	}
	if !in.Broadcast.IsEmpty() {
		e.Broadcast = in.Broadcast
	} else {
		e.Peer = in.Peer
	}
	return e
}

// autoConfigFamily is the family handed to the auto-configuration service.
func (in *Intent) autoConfigFamily() netaddr.Family {
	if in.Family == netaddr.Unspecified {
		return netaddr.INET
	}
	return in.Family
}

// validate is the gate between parsing and committing.
func (in *Intent) validate() error {
	if err := netif.ValidateName(in.Interface); err != nil {
		return err
	}
	if in.AddFlags&in.RemoveFlags != 0 {
		return errors.Attr(errors.New(errors.KindConflict, "contradicting flags specified"),
			"flags", (in.AddFlags & in.RemoveFlags).String())
	}
	if in.AutoConfig && in.touchesAddress() {
		return errors.New(errors.KindConflict, "contradicting changes specified: auto-config with an explicit address")
	}
	return nil
}
