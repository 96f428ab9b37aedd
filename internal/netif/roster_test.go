package netif

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoster(t *testing.T) {
	sim := newEth0(t)
	sim.Seed(SimLink{Name: "lo", Flags: FlagUp | FlagLoopback, LinkLevel: LinkLevel{Type: LinkLoopback}})
	r := NewRoster(sim)

	names, err := r.Names()
	require.NoError(t, err)
	assert.Equal(t, []string{"eth0", "lo"}, names)

	require.NoError(t, r.Add("eth0.10"))
	assert.True(t, r.Interface("eth0.10").Exists())

	assert.Error(t, r.Add("eth0.10"), "already exists")
	assert.Error(t, r.Add("nope0.5"), "vlan needs a parent")

	n, err := r.Count()
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	idx, err := r.Interface("eth0.10").Index()
	require.NoError(t, err)
	byIdx, err := r.ByIndex(idx)
	require.NoError(t, err)
	assert.Equal(t, "eth0.10", byIdx.Name())

	require.NoError(t, r.Remove("eth0.10"))
	assert.False(t, r.Interface("eth0.10").Exists())
	assert.Error(t, r.Remove("eth0.10"))

	assert.Equal(t, []string{
		"ip link add eth0.10 link eth0 type vlan id 10",
		"ip link del eth0.10",
	}, sim.Ops())

	opened, closed := sim.Channels()
	assert.Equal(t, opened, closed)
}

func TestSnapshot(t *testing.T) {
	sim := newEth0(t)
	snap, err := Snapshot(NewRoster(sim))
	require.NoError(t, err)

	link, ok := snap.Link("eth0")
	require.True(t, ok)
	assert.Equal(t, 1500, link.MTU)
	assert.False(t, link.HasMedia)
	require.Len(t, link.Addresses, 1)
	assert.Empty(t, snap.Ops())
}
