package netif

import (
	"fmt"
	"net"
	"sort"
	"syscall"

	"github.com/vishvananda/netlink"
	"grimm.is/ifconf/internal/media"
	"grimm.is/ifconf/internal/netaddr"
)

// kernelChannel talks to the kernel. Its three transports are opened on
// first use and released by Close.
type kernelChannel struct {
	openNetlink func() (Netlinker, error)
	openIfreq   func() (ifreqDriver, error)
	openMedia   func() (mediaDriver, error)

	nl    Netlinker
	ifreq ifreqDriver
	md    mediaDriver
}

func (c *kernelChannel) handle() (Netlinker, error) {
	if c.nl == nil {
		nl, err := c.openNetlink()
		if err != nil {
			return nil, fmt.Errorf("open netlink: %w", err)
		}
		c.nl = nl
	}
	return c.nl, nil
}

func (c *kernelChannel) ifreqs() (ifreqDriver, error) {
	if c.ifreq == nil {
		d, err := c.openIfreq()
		if err != nil {
			return nil, fmt.Errorf("open control socket: %w", err)
		}
		c.ifreq = d
	}
	return c.ifreq, nil
}

func (c *kernelChannel) medias() (mediaDriver, error) {
	if c.md == nil {
		d, err := c.openMedia()
		if err != nil {
			return nil, fmt.Errorf("open ethtool: %w", err)
		}
		c.md = d
	}
	return c.md, nil
}

func (c *kernelChannel) Close() error {
	var err error
	if c.nl != nil {
		c.nl.Close()
		c.nl = nil
	}
	if c.ifreq != nil {
		err = c.ifreq.Close()
		c.ifreq = nil
	}
	if c.md != nil {
		c.md.Close()
		c.md = nil
	}
	return err
}

func (c *kernelChannel) link(name string) (netlink.Link, error) {
	nl, err := c.handle()
	if err != nil {
		return nil, err
	}
	return nl.LinkByName(name)
}

func (c *kernelChannel) Names() ([]string, error) {
	nl, err := c.handle()
	if err != nil {
		return nil, err
	}
	links, err := nl.LinkList()
	if err != nil {
		return nil, err
	}
	sort.Slice(links, func(i, j int) bool { return links[i].Attrs().Index < links[j].Attrs().Index })
	names := make([]string, 0, len(links))
	for _, l := range links {
		names = append(names, l.Attrs().Name)
	}
	return names, nil
}

func (c *kernelChannel) Index(name string) (int, error) {
	l, err := c.link(name)
	if err != nil {
		return 0, err
	}
	return l.Attrs().Index, nil
}

func (c *kernelChannel) NameByIndex(index int) (string, error) {
	nl, err := c.handle()
	if err != nil {
		return "", err
	}
	l, err := nl.LinkByIndex(index)
	if err != nil {
		return "", err
	}
	return l.Attrs().Name, nil
}

func (c *kernelChannel) AddInterface(name string) error {
	nl, err := c.handle()
	if err != nil {
		return err
	}

	attrs := netlink.LinkAttrs{Name: name}
	var link netlink.Link
	switch k := kindForName(name); k.kind {
	case "vlan":
		parent, err := nl.LinkByName(k.parent)
		if err != nil {
			return fmt.Errorf("vlan parent %s: %w", k.parent, err)
		}
		attrs.ParentIndex = parent.Attrs().Index
		link = &netlink.Vlan{LinkAttrs: attrs, VlanId: k.vlanID}
	case "bond":
		link = netlink.NewLinkBond(attrs)
	case "bridge":
		link = &netlink.Bridge{LinkAttrs: attrs}
	default:
		link = &netlink.Dummy{LinkAttrs: attrs}
	}
	return nl.LinkAdd(link)
}

func (c *kernelChannel) RemoveInterface(name string) error {
	l, err := c.link(name)
	if err != nil {
		return err
	}
	return c.nl.LinkDel(l)
}

func (c *kernelChannel) Flags(name string) (Flags, error) {
	d, err := c.ifreqs()
	if err != nil {
		return 0, err
	}
	return d.Flags(name)
}

func (c *kernelChannel) SetFlags(name string, flags Flags) error {
	d, err := c.ifreqs()
	if err != nil {
		return err
	}
	return d.SetFlags(name, flags)
}

func (c *kernelChannel) MTU(name string) (int, error) {
	l, err := c.link(name)
	if err != nil {
		return 0, err
	}
	return l.Attrs().MTU, nil
}

func (c *kernelChannel) SetMTU(name string, mtu int) error {
	l, err := c.link(name)
	if err != nil {
		return err
	}
	return c.nl.LinkSetMTU(l, mtu)
}

func (c *kernelChannel) Metric(name string) (int, error) {
	d, err := c.ifreqs()
	if err != nil {
		return 0, err
	}
	return d.Metric(name)
}

func (c *kernelChannel) SetMetric(name string, metric int) error {
	d, err := c.ifreqs()
	if err != nil {
		return err
	}
	return d.SetMetric(name, metric)
}

func (c *kernelChannel) Media(name string) (media.Media, error) {
	l, err := c.link(name)
	if err != nil {
		return media.Media{}, err
	}
	if linkType(l.Attrs().EncapType) != LinkEthernet {
		return media.Media{}, fmt.Errorf("%s: %w", name, syscall.EOPNOTSUPP)
	}
	d, err := c.medias()
	if err != nil {
		return media.Media{}, err
	}
	return d.Media(name, media.Ethernet)
}

func (c *kernelChannel) SetMedia(name string, m media.Media) error {
	d, err := c.medias()
	if err != nil {
		return err
	}
	return d.SetMedia(name, m)
}

func linkType(encap string) LinkType {
	switch encap {
	case "ether":
		return LinkEthernet
	case "loopback":
		return LinkLoopback
	case "ppp":
		return LinkModem
	}
	return LinkUnknown
}

func (c *kernelChannel) LinkLevel(name string) (LinkLevel, error) {
	l, err := c.link(name)
	if err != nil {
		return LinkLevel{}, err
	}
	a := l.Attrs()
	return LinkLevel{Type: linkType(a.EncapType), Address: a.HardwareAddr}, nil
}

func (c *kernelChannel) Stats(name string) (Stats, error) {
	l, err := c.link(name)
	if err != nil {
		return Stats{}, err
	}
	st := l.Attrs().Statistics
	if st == nil {
		return Stats{}, nil
	}
	return Stats{
		Receive: Counters{
			Packets:   st.RxPackets,
			Errors:    st.RxErrors,
			Bytes:     st.RxBytes,
			Multicast: st.Multicast,
			Dropped:   st.RxDropped,
		},
		Send: Counters{
			Packets: st.TxPackets,
			Errors:  st.TxErrors,
			Bytes:   st.TxBytes,
			Dropped: st.TxDropped,
		},
		Collisions: st.Collisions,
	}, nil
}

func netlinkFamily(f netaddr.Family) int {
	switch f {
	case netaddr.INET:
		return netlink.FAMILY_V4
	case netaddr.INET6:
		return netlink.FAMILY_V6
	}
	return netlink.FAMILY_ALL
}

func (c *kernelChannel) Addresses(name string, family netaddr.Family) ([]AddressEntry, error) {
	l, err := c.link(name)
	if err != nil {
		return nil, err
	}
	addrs, err := c.nl.AddrList(l, netlinkFamily(family))
	if err != nil {
		return nil, err
	}
	out := make([]AddressEntry, 0, len(addrs))
	for _, a := range addrs {
		out = append(out, entryFromNetlink(a, l.Attrs().Index))
	}
	return out, nil
}

func entryFromNetlink(a netlink.Addr, index int) AddressEntry {
	e := AddressEntry{Index: index}
	if a.IPNet == nil {
		return e
	}
	e.Address = netaddr.FromIP(a.IPNet.IP)
	e.Mask = netaddr.FromMask(e.Address.Family, a.IPNet.Mask)
	if a.Peer != nil && !a.Peer.IP.Equal(a.IPNet.IP) {
		e.Peer = netaddr.FromIP(a.Peer.IP)
	} else if a.Broadcast != nil {
		e.Broadcast = netaddr.FromIP(a.Broadcast)
	}
	return e
}

func entryToNetlink(e AddressEntry) *netlink.Addr {
	a := &netlink.Addr{IPNet: e.Address.IPNet(e.Mask)}
	if !e.Peer.IsEmpty() {
		a.Peer = e.Peer.IPNet(netaddr.Address{})
	} else if !e.Broadcast.IsEmpty() {
		a.Broadcast = e.Broadcast.IP
	}
	return a
}

func (c *kernelChannel) AddAddress(name string, entry AddressEntry) error {
	l, err := c.link(name)
	if err != nil {
		return err
	}
	return c.nl.AddrAdd(l, entryToNetlink(entry))
}

func (c *kernelChannel) RemoveAddress(name string, entry AddressEntry) error {
	l, err := c.link(name)
	if err != nil {
		return err
	}
	return c.nl.AddrDel(l, entryToNetlink(entry))
}

func routeFromNetlink(r netlink.Route) Route {
	out := Route{
		Gateway: netaddr.FromIP(r.Gw),
		Source:  netaddr.FromIP(r.Src),
		Flags:   RouteUp,
		MTU:     r.MTU,
	}
	if r.Dst == nil {
		family := netaddr.INET
		if r.Family == netlink.FAMILY_V6 || (r.Gw != nil && r.Gw.To4() == nil) {
			family = netaddr.INET6
		}
		out.Destination, out.Mask = zeroRoute(family)
		out.Flags |= RouteDefault
	} else {
		out.Destination = netaddr.FromIP(r.Dst.IP)
		out.Mask = netaddr.FromMask(out.Destination.Family, r.Dst.Mask)
		switch ones, bits := r.Dst.Mask.Size(); {
		case ones == bits:
			out.Flags |= RouteHost
		case ones == 0:
			out.Flags |= RouteDefault
		}
	}
	if r.Gw != nil {
		out.Flags |= RouteGateway
	}
	return out
}

func zeroRoute(f netaddr.Family) (netaddr.Address, netaddr.Address) {
	af, _ := netaddr.Describe(f)
	mask, _ := netaddr.MaskFromPrefix(f, 0)
	return netaddr.Address{Family: f, IP: make(net.IP, af.Bits/8)}, mask
}

func routeToNetlink(r Route, index int) *netlink.Route {
	out := &netlink.Route{LinkIndex: index}
	if !r.IsDefault() {
		out.Dst = r.Destination.IPNet(r.Mask)
	}
	if !r.Gateway.IsEmpty() {
		out.Gw = r.Gateway.IP
	}
	if !r.Source.IsEmpty() {
		out.Src = r.Source.IP
	}
	if r.MTU > 0 {
		out.MTU = r.MTU
	}
	return out
}

func (c *kernelChannel) Routes(name string, family netaddr.Family) ([]Route, error) {
	l, err := c.link(name)
	if err != nil {
		return nil, err
	}
	routes, err := c.nl.RouteList(l, netlinkFamily(family))
	if err != nil {
		return nil, err
	}
	out := make([]Route, 0, len(routes))
	for _, r := range routes {
		out = append(out, routeFromNetlink(r))
	}
	return out, nil
}

func (c *kernelChannel) AddRoute(name string, route Route) error {
	l, err := c.link(name)
	if err != nil {
		return err
	}
	return c.nl.RouteAdd(routeToNetlink(route, l.Attrs().Index))
}

func (c *kernelChannel) RemoveRoute(name string, route Route) error {
	l, err := c.link(name)
	if err != nil {
		return err
	}
	return c.nl.RouteDel(routeToNetlink(route, l.Attrs().Index))
}
