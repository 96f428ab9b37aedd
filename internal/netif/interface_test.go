package netif

import (
	"context"
	"fmt"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"grimm.is/ifconf/internal/errors"
	"grimm.is/ifconf/internal/netaddr"
)

func addr(t *testing.T, text string) netaddr.Address {
	t.Helper()
	f := netaddr.Unspecified
	a, ok := netaddr.Parse(&f, text)
	require.True(t, ok, text)
	return a
}

func mask(t *testing.T, f netaddr.Family, bits int) netaddr.Address {
	t.Helper()
	m, ok := netaddr.MaskFromPrefix(f, bits)
	require.True(t, ok)
	return m
}

func newEth0(t *testing.T) *Sim {
	sim := NewSim()
	sim.Seed(SimLink{
		Name:      "eth0",
		Flags:     FlagBroadcast | FlagUp,
		MTU:       1500,
		LinkLevel: LinkLevel{Type: LinkEthernet},
		Addresses: []AddressEntry{{
			Address:   addr(t, "192.0.2.5"),
			Mask:      mask(t, netaddr.INET, 24),
			Broadcast: addr(t, "192.0.2.255"),
		}},
	})
	return sim
}

func TestChannelClosedOnEveryPath(t *testing.T) {
	sim := newEth0(t)
	iface := New("eth0", sim)

	_, err := iface.MTU()
	require.NoError(t, err)
	require.NoError(t, iface.SetMTU(1400))

	sim.Fail("SetMetric", syscall.EOPNOTSUPP)
	assert.Error(t, iface.SetMetric(3))

	_, err = New("nope0", sim).Flags()
	assert.Error(t, err)

	opened, closed := sim.Channels()
	assert.Equal(t, 4, opened)
	assert.Equal(t, opened, closed)
}

func TestDoWithMockChannel(t *testing.T) {
	ch := new(MockChannel)
	opener := new(MockOpener)
	opener.On("Open").Return(ch, nil)
	ch.On("SetMTU", "eth0", 9000).Return(syscall.EINVAL).Once()
	ch.On("Close").Return(nil).Once()

	err := New("eth0", opener).SetMTU(9000)
	require.Error(t, err)
	assert.Equal(t, errors.KindOperation, errors.GetKind(err))
	assert.True(t, errors.Is(err, syscall.EINVAL))
	assert.Equal(t, "eth0", errors.GetAttributes(err)["interface"])

	ch.AssertExpectations(t)
	opener.AssertExpectations(t)
}

func TestOpenFailure(t *testing.T) {
	sim := NewSim()
	sim.FailOpen(fmt.Errorf("socket: %w", syscall.EMFILE))

	_, err := New("eth0", sim).Flags()
	require.Error(t, err)
	assert.Equal(t, errors.KindOperation, errors.GetKind(err))
	assert.True(t, errors.Is(err, syscall.EMFILE))
}

func TestExists(t *testing.T) {
	sim := newEth0(t)
	assert.True(t, New("eth0", sim).Exists())
	assert.False(t, New("eth1", sim).Exists())

	// A failing query reads as absence.
	sim.Fail("Flags", syscall.EIO)
	assert.False(t, New("eth0", sim).Exists())
}

func TestChangeFlags(t *testing.T) {
	sim := newEth0(t)
	iface := New("eth0", sim)

	require.NoError(t, iface.ChangeFlags(FlagPromiscuous, FlagUp))
	f, err := iface.Flags()
	require.NoError(t, err)
	assert.Equal(t, FlagBroadcast|FlagPromiscuous, f)
	assert.Equal(t, []string{"ip link set eth0 down promisc on"}, sim.Ops())
}

func TestSetAddress(t *testing.T) {
	t.Run("modifies first alias of family", func(t *testing.T) {
		sim := newEth0(t)
		iface := New("eth0", sim)

		require.NoError(t, iface.SetAddress(AddressEntry{Address: addr(t, "198.51.100.7")}))

		link, _ := sim.Link("eth0")
		require.Len(t, link.Addresses, 1)
		e := link.Addresses[0]
		assert.Equal(t, "198.51.100.7", e.Address.String())
		assert.Equal(t, 24, e.Mask.PrefixLength(), "mask is kept")
		assert.Equal(t, "198.51.100.255", e.Broadcast.String(), "broadcast follows the address")
		assert.Equal(t, []string{
			"ip addr del 192.0.2.5/24 broadcast 192.0.2.255 dev eth0",
			"ip addr add 198.51.100.7/24 broadcast 198.51.100.255 dev eth0",
		}, sim.Ops())
	})

	t.Run("mask only", func(t *testing.T) {
		sim := newEth0(t)
		require.NoError(t, New("eth0", sim).SetAddress(AddressEntry{Mask: mask(t, netaddr.INET, 16)}))

		link, _ := sim.Link("eth0")
		assert.Equal(t, "192.0.2.5", link.Addresses[0].Address.String())
		assert.Equal(t, 16, link.Addresses[0].Mask.PrefixLength())
		assert.Equal(t, "192.0.255.255", link.Addresses[0].Broadcast.String())
	})

	t.Run("adds when family has no alias", func(t *testing.T) {
		sim := newEth0(t)
		require.NoError(t, New("eth0", sim).SetAddress(AddressEntry{Address: addr(t, "2001:db8::5")}))

		link, _ := sim.Link("eth0")
		require.Len(t, link.Addresses, 2)
		assert.Equal(t, 64, link.Addresses[1].Mask.PrefixLength())
	})

	t.Run("peer replaces broadcast", func(t *testing.T) {
		sim := newEth0(t)
		require.NoError(t, New("eth0", sim).SetAddress(AddressEntry{
			Address: addr(t, "10.0.0.1"),
			Mask:    mask(t, netaddr.INET, 32),
			Peer:    addr(t, "10.0.0.2"),
		}))
		link, _ := sim.Link("eth0")
		assert.Equal(t, "10.0.0.2", link.Addresses[0].Peer.String())
		assert.True(t, link.Addresses[0].Broadcast.IsEmpty())
	})

	t.Run("mask without any address fails", func(t *testing.T) {
		sim := newEth0(t)
		err := New("eth0", sim).SetAddress(AddressEntry{Mask: mask(t, netaddr.INET6, 48)})
		assert.Error(t, err)
		assert.Empty(t, sim.Ops())
	})

	t.Run("unchanged is a no-op", func(t *testing.T) {
		sim := newEth0(t)
		require.NoError(t, New("eth0", sim).SetAddress(AddressEntry{Address: addr(t, "192.0.2.5")}))
		assert.Empty(t, sim.Ops())
	})

	t.Run("rejected add restores old alias", func(t *testing.T) {
		sim := newEth0(t)
		// Seed a second alias with the target address so the add collides.
		link, _ := sim.Link("eth0")
		link.Addresses = append(link.Addresses, AddressEntry{Address: addr(t, "192.0.2.9"), Mask: mask(t, netaddr.INET, 32)})
		sim.Seed(link)

		err := New("eth0", sim).SetAddress(AddressEntry{Address: addr(t, "192.0.2.9")})
		require.Error(t, err)

		after, _ := sim.Link("eth0")
		var found bool
		for _, e := range after.Addresses {
			if e.Address.String() == "192.0.2.5" {
				found = true
			}
		}
		assert.True(t, found)
	})
}

func TestRemoveAddress(t *testing.T) {
	sim := newEth0(t)
	iface := New("eth0", sim)

	err := iface.RemoveAddress(addr(t, "192.0.2.77"))
	assert.Equal(t, errors.KindNotFound, errors.GetKind(err))

	require.NoError(t, iface.RemoveAddress(addr(t, "192.0.2.5")))
	n, err := iface.CountAddresses()
	require.NoError(t, err)
	assert.Zero(t, n)

	assert.Error(t, iface.RemoveAddressAt(0))
}

func TestFindAddress(t *testing.T) {
	sim := newEth0(t)
	iface := New("eth0", sim)
	require.NoError(t, iface.AddAddress(AddressEntry{Address: addr(t, "2001:db8::1")}))

	idx, err := iface.FindAddress(addr(t, "2001:db8::1"))
	require.NoError(t, err)
	assert.Equal(t, 1, idx)

	idx, _ = iface.FindFirstAddress(netaddr.INET)
	assert.Equal(t, 0, idx)

	idx, _ = iface.FindAddress(addr(t, "10.9.9.9"))
	assert.Equal(t, -1, idx)

	e, err := iface.AddressAt(1)
	require.NoError(t, err)
	assert.Equal(t, 64, e.Mask.PrefixLength())

	_, err = iface.AddressAt(5)
	assert.Equal(t, errors.KindNotFound, errors.GetKind(err))
}

func TestDefaultRoute(t *testing.T) {
	sim := newEth0(t)
	iface := New("eth0", sim)

	require.NoError(t, iface.AddDefaultRoute(addr(t, "192.0.2.1")))
	assert.Error(t, iface.AddDefaultRoute(addr(t, "192.0.2.254")), "one default per family")

	r, err := iface.DefaultRoute(netaddr.INET)
	require.NoError(t, err)
	assert.Equal(t, "192.0.2.1", r.Gateway.String())
	assert.Equal(t, netaddr.INET, r.Family())

	_, err = iface.DefaultRoute(netaddr.INET6)
	assert.Equal(t, errors.KindNotFound, errors.GetKind(err))

	require.NoError(t, iface.RemoveDefaultRoute(netaddr.INET))
	assert.Equal(t, []string{
		"ip route add default via 192.0.2.1 dev eth0",
		"ip route del default via 192.0.2.1 dev eth0",
	}, sim.Ops())

	err = iface.AddDefaultRoute(netaddr.Address{})
	assert.Equal(t, errors.KindParse, errors.GetKind(err))
}

func TestReplaceDefaultRoute(t *testing.T) {
	sim := newEth0(t)
	iface := New("eth0", sim)

	require.NoError(t, iface.ReplaceDefaultRoute(addr(t, "192.0.2.1")))
	require.NoError(t, iface.ReplaceDefaultRoute(addr(t, "192.0.2.1")))
	require.NoError(t, iface.ReplaceDefaultRoute(addr(t, "192.0.2.254")))

	assert.Equal(t, []string{
		"ip route add default via 192.0.2.1 dev eth0",
		"ip route del default via 192.0.2.1 dev eth0",
		"ip route add default via 192.0.2.254 dev eth0",
	}, sim.Ops())
}

func TestAutoConfigure(t *testing.T) {
	ctx := context.Background()

	err := New("eth0", NewSim()).AutoConfigure(ctx, netaddr.INET)
	assert.Equal(t, errors.KindUnavailable, errors.GetKind(err))

	auto := new(MockAutoConfigurer)
	auto.On("Configure", mock.Anything, "eth0", netaddr.INET6).Return(nil).Once()
	require.NoError(t, New("eth0", NewSim()).WithAutoConfigurer(auto).AutoConfigure(ctx, netaddr.INET6))
	auto.AssertExpectations(t)
}
