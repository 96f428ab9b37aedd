package report

import (
	"grimm.is/ifconf/internal/errors"
	"grimm.is/ifconf/internal/logging"
	"grimm.is/ifconf/internal/media"
	"grimm.is/ifconf/internal/netaddr"
	"grimm.is/ifconf/internal/netif"
	"grimm.is/ifconf/internal/wireless"
)

// Listing is the displayable state of one interface.
type Listing struct {
	Name  string `json:"name" yaml:"name"`
	Found bool   `json:"found" yaml:"found"`

	HardwareType    string `json:"hardware_type,omitempty" yaml:"hardware_type,omitempty"`
	HardwareAddress string `json:"hardware_address,omitempty" yaml:"hardware_address,omitempty"`
	// LinkError is set when the link level could not be read.
	LinkError string `json:"link_error,omitempty" yaml:"link_error,omitempty"`

	Media        string   `json:"media,omitempty" yaml:"media,omitempty"`
	MediaType    string   `json:"media_type,omitempty" yaml:"media_type,omitempty"`
	MediaOptions []string `json:"media_options,omitempty" yaml:"media_options,omitempty"`

	Networks  []Network `json:"networks,omitempty" yaml:"networks,omitempty"`
	Addresses []Address `json:"addresses,omitempty" yaml:"addresses,omitempty"`

	MTU    int      `json:"mtu" yaml:"mtu"`
	Metric int      `json:"metric" yaml:"metric"`
	Flags  []string `json:"flags" yaml:"flags"`

	Stats *Stats `json:"stats,omitempty" yaml:"stats,omitempty"`

	broadcast bool
}

// Network is an associated wireless network.
type Network struct {
	Name           string `json:"name" yaml:"name"`
	Address        string `json:"address" yaml:"address"`
	Authentication string `json:"authentication" yaml:"authentication"`
	KeyMode        string `json:"key_mode,omitempty" yaml:"key_mode,omitempty"`
	Cipher         string `json:"cipher,omitempty" yaml:"cipher,omitempty"`
}

// Address is one configured alias.
type Address struct {
	Family       string `json:"family" yaml:"family"`
	Address      string `json:"address" yaml:"address"`
	Broadcast    string `json:"broadcast,omitempty" yaml:"broadcast,omitempty"`
	Peer         string `json:"peer,omitempty" yaml:"peer,omitempty"`
	Mask         string `json:"mask,omitempty" yaml:"mask,omitempty"`
	PrefixLength int    `json:"prefix_length" yaml:"prefix_length"`

	format netaddr.MaskFormat
}

// Counters is one direction of traffic statistics.
type Counters struct {
	Packets   uint64 `json:"packets" yaml:"packets"`
	Errors    uint64 `json:"errors" yaml:"errors"`
	Bytes     uint64 `json:"bytes" yaml:"bytes"`
	Multicast uint64 `json:"multicast" yaml:"multicast"`
	Dropped   uint64 `json:"dropped" yaml:"dropped"`
}

// Stats is the traffic statistics block.
type Stats struct {
	Receive    Counters `json:"receive" yaml:"receive"`
	Transmit   Counters `json:"transmit" yaml:"transmit"`
	Collisions uint64   `json:"collisions" yaml:"collisions"`
}

// Gatherer reads Listings.
type Gatherer struct {
	Roster *netif.Roster
	// Device returns the wireless view of an interface. Nil skips the
	// network lines.
	Device func(name string) *wireless.Device
}

// All lists every interface in kernel order.
func (g *Gatherer) All() ([]Listing, error) {
	names, err := g.Roster.Names()
	if err != nil {
		return nil, err
	}
	out := make([]Listing, 0, len(names))
	for _, name := range names {
		out = append(out, g.Interface(name))
	}
	return out, nil
}

// Interface lists one interface. Individual read failures leave the
// corresponding field empty.
func (g *Gatherer) Interface(name string) Listing {
	l := Listing{Name: name}
	iface := g.Roster.Interface(name)
	if !iface.Exists() {
		return l
	}
	l.Found = true
	log := logging.WithComponent("report")

	if ll, err := iface.HardwareAddress(); err == nil {
		l.HardwareType = ll.Type.String()
		l.HardwareAddress = ll.Address.String()
		if l.HardwareAddress == "" {
			l.HardwareAddress = "none"
		}
	} else {
		l.LinkError = rootCause(err).Error()
	}

	if m, err := iface.Media(); err == nil && m.Active && m.Type != media.Generic {
		// Subtypes outside the catalog are not shown.
		if _, ok := media.Lookup(m); ok {
			l.Media = media.PrettyName(m)
			l.MediaType = media.TypeName(m.Type)
			l.MediaOptions = media.OptionNames(m)
		}
	}

	if g.Device != nil {
		if dev := g.Device(name); dev != nil && dev.IsWireless() {
			nets, err := dev.Associated()
			if err != nil {
				log.Debug("reading associated networks failed", "interface", name, "error", err)
			}
			for _, n := range nets {
				l.Networks = append(l.Networks, Network{
					Name:           n.Name,
					Address:        n.BSSID(),
					Authentication: n.Authentication,
					KeyMode:        n.KeyMode,
					Cipher:         n.Cipher,
				})
			}
		}
	}

	flags, err := iface.Flags()
	if err != nil {
		log.Debug("reading flags failed", "interface", name, "error", err)
	}
	l.broadcast = flags&netif.FlagBroadcast != 0
	l.Flags = flags.Names()
	if l.Flags == nil {
		l.Flags = []string{}
	}

	entries, err := iface.Addresses()
	if err != nil {
		log.Debug("reading addresses failed", "interface", name, "error", err)
	}
	for _, e := range entries {
		l.Addresses = append(l.Addresses, address(e))
	}

	l.MTU, _ = iface.MTU()
	l.Metric, _ = iface.Metric()

	if st, err := iface.Stats(); err == nil {
		l.Stats = &Stats{
			Receive:    counters(st.Receive),
			Transmit:   counters(st.Send),
			Collisions: st.Collisions,
		}
	}
	return l
}

func address(e netif.AddressEntry) Address {
	family := e.Address.Family
	a := Address{
		Family:       family.String(),
		Address:      e.Address.String(),
		PrefixLength: e.Mask.PrefixLength(),
	}
	if af, ok := netaddr.Describe(family); ok {
		a.format = af.Format
	}
	if !e.Mask.IsEmpty() {
		a.Mask = e.Mask.String()
	}
	if !e.Broadcast.IsEmpty() {
		a.Broadcast = e.Broadcast.String()
	}
	if !e.Peer.IsEmpty() {
		a.Peer = e.Peer.String()
	}
	return a
}

func counters(c netif.Counters) Counters {
	return Counters{
		Packets:   c.Packets,
		Errors:    c.Errors,
		Bytes:     c.Bytes,
		Multicast: c.Multicast,
		Dropped:   c.Dropped,
	}
}

// rootCause strips wrapping so the link error reads like strerror.
func rootCause(err error) error {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}
}
