package netif

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vishvananda/netlink"
	"grimm.is/ifconf/internal/media"
	"grimm.is/ifconf/internal/netaddr"
)

// MockChannel is a mock implementation of the Channel interface.
type MockChannel struct {
	mock.Mock
}

func (m *MockChannel) Names() ([]string, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}
func (m *MockChannel) Index(name string) (int, error) {
	args := m.Called(name)
	return args.Int(0), args.Error(1)
}
func (m *MockChannel) NameByIndex(index int) (string, error) {
	args := m.Called(index)
	return args.String(0), args.Error(1)
}
func (m *MockChannel) AddInterface(name string) error {
	args := m.Called(name)
	return args.Error(0)
}
func (m *MockChannel) RemoveInterface(name string) error {
	args := m.Called(name)
	return args.Error(0)
}
func (m *MockChannel) Flags(name string) (Flags, error) {
	args := m.Called(name)
	return args.Get(0).(Flags), args.Error(1)
}
func (m *MockChannel) SetFlags(name string, flags Flags) error {
	args := m.Called(name, flags)
	return args.Error(0)
}
func (m *MockChannel) MTU(name string) (int, error) {
	args := m.Called(name)
	return args.Int(0), args.Error(1)
}
func (m *MockChannel) SetMTU(name string, mtu int) error {
	args := m.Called(name, mtu)
	return args.Error(0)
}
func (m *MockChannel) Metric(name string) (int, error) {
	args := m.Called(name)
	return args.Int(0), args.Error(1)
}
func (m *MockChannel) SetMetric(name string, metric int) error {
	args := m.Called(name, metric)
	return args.Error(0)
}
func (m *MockChannel) Media(name string) (media.Media, error) {
	args := m.Called(name)
	return args.Get(0).(media.Media), args.Error(1)
}
func (m *MockChannel) SetMedia(name string, md media.Media) error {
	args := m.Called(name, md)
	return args.Error(0)
}
func (m *MockChannel) LinkLevel(name string) (LinkLevel, error) {
	args := m.Called(name)
	return args.Get(0).(LinkLevel), args.Error(1)
}
func (m *MockChannel) Stats(name string) (Stats, error) {
	args := m.Called(name)
	return args.Get(0).(Stats), args.Error(1)
}
func (m *MockChannel) Addresses(name string, family netaddr.Family) ([]AddressEntry, error) {
	args := m.Called(name, family)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]AddressEntry), args.Error(1)
}
func (m *MockChannel) AddAddress(name string, entry AddressEntry) error {
	args := m.Called(name, entry)
	return args.Error(0)
}
func (m *MockChannel) RemoveAddress(name string, entry AddressEntry) error {
	args := m.Called(name, entry)
	return args.Error(0)
}
func (m *MockChannel) Routes(name string, family netaddr.Family) ([]Route, error) {
	args := m.Called(name, family)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Route), args.Error(1)
}
func (m *MockChannel) AddRoute(name string, route Route) error {
	args := m.Called(name, route)
	return args.Error(0)
}
func (m *MockChannel) RemoveRoute(name string, route Route) error {
	args := m.Called(name, route)
	return args.Error(0)
}
func (m *MockChannel) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockOpener hands out the same MockChannel on every Open.
type MockOpener struct {
	mock.Mock
}

func (m *MockOpener) Open() (Channel, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(Channel), args.Error(1)
}

// MockAutoConfigurer is a mock implementation of AutoConfigurer.
type MockAutoConfigurer struct {
	mock.Mock
}

func (m *MockAutoConfigurer) Configure(ctx context.Context, iface string, family netaddr.Family) error {
	args := m.Called(ctx, iface, family)
	return args.Error(0)
}

// MockNetlinker is a mock implementation of the Netlinker interface.
type MockNetlinker struct {
	mock.Mock
}

func (m *MockNetlinker) LinkByName(name string) (netlink.Link, error) {
	args := m.Called(name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(netlink.Link), args.Error(1)
}
func (m *MockNetlinker) LinkByIndex(index int) (netlink.Link, error) {
	args := m.Called(index)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(netlink.Link), args.Error(1)
}
func (m *MockNetlinker) LinkList() ([]netlink.Link, error) {
	args := m.Called()
	return args.Get(0).([]netlink.Link), args.Error(1)
}
func (m *MockNetlinker) LinkSetMTU(link netlink.Link, mtu int) error {
	args := m.Called(link, mtu)
	return args.Error(0)
}
func (m *MockNetlinker) LinkAdd(link netlink.Link) error {
	args := m.Called(link)
	return args.Error(0)
}
func (m *MockNetlinker) LinkDel(link netlink.Link) error {
	args := m.Called(link)
	return args.Error(0)
}
func (m *MockNetlinker) AddrList(link netlink.Link, family int) ([]netlink.Addr, error) {
	args := m.Called(link, family)
	return args.Get(0).([]netlink.Addr), args.Error(1)
}
func (m *MockNetlinker) AddrAdd(link netlink.Link, addr *netlink.Addr) error {
	args := m.Called(link, addr)
	return args.Error(0)
}
func (m *MockNetlinker) AddrDel(link netlink.Link, addr *netlink.Addr) error {
	args := m.Called(link, addr)
	return args.Error(0)
}
func (m *MockNetlinker) RouteList(link netlink.Link, family int) ([]netlink.Route, error) {
	args := m.Called(link, family)
	return args.Get(0).([]netlink.Route), args.Error(1)
}
func (m *MockNetlinker) RouteAdd(route *netlink.Route) error {
	args := m.Called(route)
	return args.Error(0)
}
func (m *MockNetlinker) RouteDel(route *netlink.Route) error {
	args := m.Called(route)
	return args.Error(0)
}
func (m *MockNetlinker) Close() {
	m.Called()
}
