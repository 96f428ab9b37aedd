package netif

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"syscall"

	"grimm.is/ifconf/internal/media"
	"grimm.is/ifconf/internal/netaddr"
)

// SimLink is one interface in a Sim.
type SimLink struct {
	Name      string
	Index     int
	Flags     Flags
	MTU       int
	Metric    int
	Media     media.Media
	HasMedia  bool
	LinkLevel LinkLevel
	Stats     Stats
	Addresses []AddressEntry
	Routes    []Route
}

func (l *SimLink) clone() SimLink {
	c := *l
	c.Addresses = append([]AddressEntry(nil), l.Addresses...)
	c.Routes = append([]Route(nil), l.Routes...)
	return c
}

// Sim is an in-memory interface table. It is an Opener; every mutation is
// recorded as an "ip ..." style line in Ops.
type Sim struct {
	mu        sync.Mutex
	links     map[string]*SimLink
	nextIndex int
	ops       []string
	failures  map[string]error
	openErr   error
	opens     int
	closes    int
}

// NewSim returns an empty Sim.
func NewSim() *Sim {
	return &Sim{
		links:     make(map[string]*SimLink),
		nextIndex: 1,
		failures:  make(map[string]error),
	}
}

// Seed inserts a link without recording an op. A zero Index is assigned.
func (s *Sim) Seed(l SimLink) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l.Index == 0 {
		l.Index = s.nextIndex
	}
	if l.Index >= s.nextIndex {
		s.nextIndex = l.Index + 1
	}
	c := l.clone()
	s.links[l.Name] = &c
}

// Fail makes every call of method (for example "SetMTU") return err.
func (s *Sim) Fail(method string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method] = err
}

// FailOpen makes Open return err.
func (s *Sim) FailOpen(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.openErr = err
}

// Link returns a copy of the named link.
func (s *Sim) Link(name string) (SimLink, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.links[name]
	if !ok {
		return SimLink{}, false
	}
	return l.clone(), true
}

// Ops returns the recorded mutations.
func (s *Sim) Ops() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.ops...)
}

// Channels returns how many channels were opened and closed.
func (s *Sim) Channels() (opened, closed int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opens, s.closes
}

// Open implements Opener.
func (s *Sim) Open() (Channel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.openErr != nil {
		return nil, s.openErr
	}
	s.opens++
	return &simChannel{sim: s}, nil
}

func (s *Sim) record(format string, args ...any) {
	s.ops = append(s.ops, fmt.Sprintf(format, args...))
}

// lookup must be called with s.mu held.
func (s *Sim) lookup(method, name string) (*SimLink, error) {
	if err := s.failures[method]; err != nil {
		return nil, err
	}
	l, ok := s.links[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, syscall.ENODEV)
	}
	return l, nil
}

type simChannel struct {
	sim    *Sim
	closed bool
}

func (c *simChannel) Close() error {
	c.sim.mu.Lock()
	defer c.sim.mu.Unlock()
	if !c.closed {
		c.closed = true
		c.sim.closes++
	}
	return nil
}

func (c *simChannel) Names() ([]string, error) {
	s := c.sim
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failures["Names"]; err != nil {
		return nil, err
	}
	links := make([]*SimLink, 0, len(s.links))
	for _, l := range s.links {
		links = append(links, l)
	}
	sort.Slice(links, func(i, j int) bool { return links[i].Index < links[j].Index })
	names := make([]string, len(links))
	for i, l := range links {
		names[i] = l.Name
	}
	return names, nil
}

func (c *simChannel) Index(name string) (int, error) {
	s := c.sim
	s.mu.Lock()
	defer s.mu.Unlock()
	l, err := s.lookup("Index", name)
	if err != nil {
		return 0, err
	}
	return l.Index, nil
}

func (c *simChannel) NameByIndex(index int) (string, error) {
	s := c.sim
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.links {
		if l.Index == index {
			return l.Name, nil
		}
	}
	return "", fmt.Errorf("index %d: %w", index, syscall.ENODEV)
}

func (c *simChannel) AddInterface(name string) error {
	s := c.sim
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failures["AddInterface"]; err != nil {
		return err
	}
	if _, ok := s.links[name]; ok {
		return fmt.Errorf("%s: %w", name, syscall.EEXIST)
	}
	k := kindForName(name)
	l := &SimLink{Name: name, Index: s.nextIndex, MTU: 1500}
	switch k.kind {
	case "vlan":
		parent, ok := s.links[k.parent]
		if !ok {
			return fmt.Errorf("%s: %w", k.parent, syscall.ENODEV)
		}
		l.LinkLevel = parent.LinkLevel
		l.Flags = FlagBroadcast
	case "bridge", "bond":
		l.LinkLevel = LinkLevel{Type: LinkEthernet}
		l.Flags = FlagBroadcast
	default:
		l.LinkLevel = LinkLevel{Type: LinkEthernet}
		l.Flags = FlagBroadcast | FlagNoARP
	}
	s.nextIndex++
	s.links[name] = l
	s.record("ip link add %s %s", name, k)
	return nil
}

func (c *simChannel) RemoveInterface(name string) error {
	s := c.sim
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.lookup("RemoveInterface", name); err != nil {
		return err
	}
	delete(s.links, name)
	s.record("ip link del %s", name)
	return nil
}

func (c *simChannel) Flags(name string) (Flags, error) {
	s := c.sim
	s.mu.Lock()
	defer s.mu.Unlock()
	l, err := s.lookup("Flags", name)
	if err != nil {
		return 0, err
	}
	return l.Flags, nil
}

var simFlagWords = []struct {
	flag    Flags
	on, off string
}{
	{FlagUp, "up", "down"},
	{FlagNoARP, "arp off", "arp on"},
	{FlagPromiscuous, "promisc on", "promisc off"},
	{FlagAllMulti, "allmulticast on", "allmulticast off"},
	{FlagBroadcast, "broadcast on", "broadcast off"},
	{FlagAutoConfigured, "dynamic on", "dynamic off"},
	{FlagConfiguring, "configuring on", "configuring off"},
}

func (c *simChannel) SetFlags(name string, flags Flags) error {
	s := c.sim
	s.mu.Lock()
	defer s.mu.Unlock()
	l, err := s.lookup("SetFlags", name)
	if err != nil {
		return err
	}
	var words []string
	for _, w := range simFlagWords {
		was, is := l.Flags&w.flag != 0, flags&w.flag != 0
		switch {
		case is && !was:
			words = append(words, w.on)
		case was && !is:
			words = append(words, w.off)
		}
	}
	l.Flags = flags
	if len(words) > 0 {
		s.record("ip link set %s %s", name, strings.Join(words, " "))
	}
	return nil
}

func (c *simChannel) MTU(name string) (int, error) {
	s := c.sim
	s.mu.Lock()
	defer s.mu.Unlock()
	l, err := s.lookup("MTU", name)
	if err != nil {
		return 0, err
	}
	return l.MTU, nil
}

func (c *simChannel) SetMTU(name string, mtu int) error {
	s := c.sim
	s.mu.Lock()
	defer s.mu.Unlock()
	l, err := s.lookup("SetMTU", name)
	if err != nil {
		return err
	}
	l.MTU = mtu
	s.record("ip link set %s mtu %d", name, mtu)
	return nil
}

func (c *simChannel) Metric(name string) (int, error) {
	s := c.sim
	s.mu.Lock()
	defer s.mu.Unlock()
	l, err := s.lookup("Metric", name)
	if err != nil {
		return 0, err
	}
	return l.Metric, nil
}

func (c *simChannel) SetMetric(name string, metric int) error {
	s := c.sim
	s.mu.Lock()
	defer s.mu.Unlock()
	l, err := s.lookup("SetMetric", name)
	if err != nil {
		return err
	}
	l.Metric = metric
	s.record("ifconfig %s metric %d", name, metric)
	return nil
}

func (c *simChannel) Media(name string) (media.Media, error) {
	s := c.sim
	s.mu.Lock()
	defer s.mu.Unlock()
	l, err := s.lookup("Media", name)
	if err != nil {
		return media.Media{}, err
	}
	if !l.HasMedia {
		return media.Media{}, fmt.Errorf("%s: %w", name, syscall.EOPNOTSUPP)
	}
	return l.Media, nil
}

func (c *simChannel) SetMedia(name string, m media.Media) error {
	s := c.sim
	s.mu.Lock()
	defer s.mu.Unlock()
	l, err := s.lookup("SetMedia", name)
	if err != nil {
		return err
	}
	if !l.HasMedia {
		return fmt.Errorf("%s: %w", name, syscall.EOPNOTSUPP)
	}
	l.Media = m
	s.record("ethtool -s %s %s", name, ethtoolArgs(m))
	return nil
}

// ethtoolArgs renders m as ethtool -s arguments.
func ethtoolArgs(m media.Media) string {
	if m.Subtype == media.Auto {
		return "autoneg on"
	}
	args := fmt.Sprintf("speed %d", media.Speed(m.Subtype))
	switch {
	case m.Options&media.FullDuplex != 0:
		args += " duplex full"
	case m.Options&media.HalfDuplex != 0:
		args += " duplex half"
	}
	return args + " autoneg off"
}

func (c *simChannel) LinkLevel(name string) (LinkLevel, error) {
	s := c.sim
	s.mu.Lock()
	defer s.mu.Unlock()
	l, err := s.lookup("LinkLevel", name)
	if err != nil {
		return LinkLevel{}, err
	}
	return l.LinkLevel, nil
}

func (c *simChannel) Stats(name string) (Stats, error) {
	s := c.sim
	s.mu.Lock()
	defer s.mu.Unlock()
	l, err := s.lookup("Stats", name)
	if err != nil {
		return Stats{}, err
	}
	return l.Stats, nil
}

func (c *simChannel) Addresses(name string, family netaddr.Family) ([]AddressEntry, error) {
	s := c.sim
	s.mu.Lock()
	defer s.mu.Unlock()
	l, err := s.lookup("Addresses", name)
	if err != nil {
		return nil, err
	}
	var out []AddressEntry
	for _, e := range l.Addresses {
		if family == netaddr.Unspecified || e.Address.Family == family {
			out = append(out, e)
		}
	}
	return out, nil
}

func (c *simChannel) AddAddress(name string, entry AddressEntry) error {
	s := c.sim
	s.mu.Lock()
	defer s.mu.Unlock()
	l, err := s.lookup("AddAddress", name)
	if err != nil {
		return err
	}
	for _, e := range l.Addresses {
		if e.Address.Equal(entry.Address) {
			return fmt.Errorf("%s: %w", entry.Address, syscall.EEXIST)
		}
	}
	entry.Index = l.Index
	l.Addresses = append(l.Addresses, entry)
	s.record("ip addr add %s dev %s", addrArgs(entry), name)
	return nil
}

func (c *simChannel) RemoveAddress(name string, entry AddressEntry) error {
	s := c.sim
	s.mu.Lock()
	defer s.mu.Unlock()
	l, err := s.lookup("RemoveAddress", name)
	if err != nil {
		return err
	}
	for n, e := range l.Addresses {
		if e.Address.Equal(entry.Address) {
			l.Addresses = append(l.Addresses[:n], l.Addresses[n+1:]...)
			s.record("ip addr del %s dev %s", addrArgs(e), name)
			return nil
		}
	}
	return fmt.Errorf("%s: %w", entry.Address, syscall.EADDRNOTAVAIL)
}

func addrArgs(e AddressEntry) string {
	out := e.Address.String()
	if n := e.Mask.PrefixLength(); n >= 0 {
		out += fmt.Sprintf("/%d", n)
	}
	switch {
	case !e.Peer.IsEmpty():
		out += " peer " + e.Peer.String()
	case !e.Broadcast.IsEmpty():
		out += " broadcast " + e.Broadcast.String()
	}
	return out
}

func (c *simChannel) Routes(name string, family netaddr.Family) ([]Route, error) {
	s := c.sim
	s.mu.Lock()
	defer s.mu.Unlock()
	l, err := s.lookup("Routes", name)
	if err != nil {
		return nil, err
	}
	var out []Route
	for _, r := range l.Routes {
		if family == netaddr.Unspecified || r.Family() == family {
			out = append(out, r)
		}
	}
	return out, nil
}

func (c *simChannel) AddRoute(name string, route Route) error {
	s := c.sim
	s.mu.Lock()
	defer s.mu.Unlock()
	l, err := s.lookup("AddRoute", name)
	if err != nil {
		return err
	}
	for _, r := range l.Routes {
		if sameRoute(r, route) {
			return fmt.Errorf("route %s: %w", routeArgs(route), syscall.EEXIST)
		}
	}
	l.Routes = append(l.Routes, route)
	s.record("ip route add %s dev %s", routeArgs(route), name)
	return nil
}

func (c *simChannel) RemoveRoute(name string, route Route) error {
	s := c.sim
	s.mu.Lock()
	defer s.mu.Unlock()
	l, err := s.lookup("RemoveRoute", name)
	if err != nil {
		return err
	}
	for n, r := range l.Routes {
		if sameRoute(r, route) {
			l.Routes = append(l.Routes[:n], l.Routes[n+1:]...)
			s.record("ip route del %s dev %s", routeArgs(r), name)
			return nil
		}
	}
	return fmt.Errorf("route %s: %w", routeArgs(route), syscall.ESRCH)
}

func sameRoute(a, b Route) bool {
	if a.IsDefault() && b.IsDefault() {
		return a.Family() == b.Family()
	}
	return a.Destination.Equal(b.Destination) && a.Mask.Equal(b.Mask)
}

func routeArgs(r Route) string {
	dst := "default"
	if !r.IsDefault() {
		dst = r.Destination.String()
		if n := r.Mask.PrefixLength(); n >= 0 {
			dst += fmt.Sprintf("/%d", n)
		}
	}
	if !r.Gateway.IsEmpty() {
		dst += " via " + r.Gateway.String()
	}
	return dst
}
