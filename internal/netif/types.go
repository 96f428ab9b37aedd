package netif

import (
	"net"

	"grimm.is/ifconf/internal/netaddr"
)

// MaxNameLength is the longest interface name the kernel accepts.
const MaxNameLength = 15

// AddressEntry is one address alias on an interface. Broadcast and Peer are
// mutually exclusive.
type AddressEntry struct {
	Address   netaddr.Address
	Mask      netaddr.Address
	Broadcast netaddr.Address
	Peer      netaddr.Address
	// Index is the owning interface.
	Index int
}

// Family returns the family of the first non-empty field.
func (e AddressEntry) Family() netaddr.Family {
	for _, a := range []netaddr.Address{e.Address, e.Mask, e.Broadcast, e.Peer} {
		if !a.IsEmpty() {
			return a.Family
		}
	}
	return netaddr.Unspecified
}

// LinkType is the link-level hardware type.
type LinkType int

const (
	LinkUnknown LinkType = iota
	LinkEthernet
	LinkLoopback
	LinkModem
)

func (t LinkType) String() string {
	switch t {
	case LinkEthernet:
		return "Ethernet"
	case LinkLoopback:
		return "Local Loopback"
	case LinkModem:
		return "Modem"
	}
	return "unknown"
}

// LinkLevel is the hardware address of an interface.
type LinkLevel struct {
	Type    LinkType
	Address net.HardwareAddr
}

// Counters is one direction of interface statistics.
type Counters struct {
	Packets   uint64
	Errors    uint64
	Bytes     uint64
	Multicast uint64
	Dropped   uint64
}

// Stats is the interface statistics block.
type Stats struct {
	Receive    Counters
	Send       Counters
	Collisions uint64
}

// RouteFlags describes a route entry.
type RouteFlags uint32

const (
	RouteUp RouteFlags = 1 << iota
	RouteGateway
	RouteHost
	RouteStatic
	RouteDefault
)

// Route is a routing table entry bound to an interface.
type Route struct {
	Destination netaddr.Address
	Mask        netaddr.Address
	Gateway     netaddr.Address
	Source      netaddr.Address
	Flags       RouteFlags
	MTU         int
}

// Family derives the route family from destination, mask, gateway and
// source, in that order.
func (r Route) Family() netaddr.Family {
	for _, a := range []netaddr.Address{r.Destination, r.Mask, r.Gateway, r.Source} {
		if !a.IsEmpty() {
			return a.Family
		}
	}
	return netaddr.Unspecified
}

// IsDefault reports whether r is a default route.
func (r Route) IsDefault() bool {
	if r.Flags&RouteDefault != 0 {
		return true
	}
	return r.Destination.IsEmpty() || (r.Destination.IP.IsUnspecified() && r.Mask.PrefixLength() == 0)
}
