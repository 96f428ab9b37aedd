package netif

import (
	"context"

	"grimm.is/ifconf/internal/media"
	"grimm.is/ifconf/internal/netaddr"
)

// Channel is a control channel to the kernel's interface table. A channel
// is opened for one request and closed right after.
type Channel interface {
	Names() ([]string, error)
	Index(name string) (int, error)
	NameByIndex(index int) (string, error)
	AddInterface(name string) error
	RemoveInterface(name string) error

	Flags(name string) (Flags, error)
	SetFlags(name string, flags Flags) error
	MTU(name string) (int, error)
	SetMTU(name string, mtu int) error
	Metric(name string) (int, error)
	SetMetric(name string, metric int) error
	Media(name string) (media.Media, error)
	SetMedia(name string, m media.Media) error
	LinkLevel(name string) (LinkLevel, error)
	Stats(name string) (Stats, error)

	Addresses(name string, family netaddr.Family) ([]AddressEntry, error)
	AddAddress(name string, entry AddressEntry) error
	RemoveAddress(name string, entry AddressEntry) error

	Routes(name string, family netaddr.Family) ([]Route, error)
	AddRoute(name string, route Route) error
	RemoveRoute(name string, route Route) error

	Close() error
}

// Opener opens channels.
type Opener interface {
	Open() (Channel, error)
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func() (Channel, error)

func (f OpenerFunc) Open() (Channel, error) { return f() }

// AutoConfigurer hands an interface to the auto-configuration service.
type AutoConfigurer interface {
	Configure(ctx context.Context, iface string, family netaddr.Family) error
}
