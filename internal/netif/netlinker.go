package netif

import (
	"github.com/vishvananda/netlink"
	"grimm.is/ifconf/internal/media"
)

// Netlinker is the subset of *netlink.Handle the kernel channel uses.
type Netlinker interface {
	LinkByName(name string) (netlink.Link, error)
	LinkByIndex(index int) (netlink.Link, error)
	LinkList() ([]netlink.Link, error)
	LinkSetMTU(link netlink.Link, mtu int) error
	LinkAdd(link netlink.Link) error
	LinkDel(link netlink.Link) error

	AddrList(link netlink.Link, family int) ([]netlink.Addr, error)
	AddrAdd(link netlink.Link, addr *netlink.Addr) error
	AddrDel(link netlink.Link, addr *netlink.Addr) error

	RouteList(link netlink.Link, family int) ([]netlink.Route, error)
	RouteAdd(route *netlink.Route) error
	RouteDel(route *netlink.Route) error

	Close()
}

// ifreqDriver issues the requests netlink has no equivalent for: the raw
// flag word and the metric.
type ifreqDriver interface {
	Flags(name string) (Flags, error)
	SetFlags(name string, flags Flags) error
	Metric(name string) (int, error)
	SetMetric(name string, metric int) error
	Close() error
}

// mediaDriver reads and negotiates link media.
type mediaDriver interface {
	Media(name string, typ media.Type) (media.Media, error)
	SetMedia(name string, m media.Media) error
	Close()
}
