package netaddr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveAliasRoundTrip(t *testing.T) {
	for _, af := range Families() {
		for _, alias := range af.Aliases {
			t.Run(alias, func(t *testing.T) {
				id := Resolve(alias)
				require.NotEqual(t, Unspecified, id)
				got, ok := Describe(id)
				require.True(t, ok)
				assert.Equal(t, af.ID, got.ID)
			})
		}
	}
}

func TestResolveUnknown(t *testing.T) {
	assert.Equal(t, Unspecified, Resolve("appletalk"))
	assert.Equal(t, Unspecified, Resolve("INET"), "aliases are case sensitive")
	assert.Equal(t, INET, ParseFamily("INET"))

	_, ok := Describe(Link)
	assert.False(t, ok)
}

func TestParse(t *testing.T) {
	tests := []struct {
		name   string
		family Family
		text   string
		want   Family
		ok     bool
	}{
		{"inet detected", Unspecified, "192.0.2.5", INET, true},
		{"inet6 detected", Unspecified, "2001:db8::1", INET6, true},
		{"mapped stays inet6", Unspecified, "::ffff:192.0.2.1", INET6, true},
		{"inet explicit", INET, "10.0.0.1", INET, true},
		{"family mismatch", INET, "2001:db8::1", INET, false},
		{"link layer refused", Unspecified, "00:11:22:33:44:55", Unspecified, false},
		{"zone refused", Unspecified, "fe80::1%eth0", Unspecified, false},
		{"garbage", Unspecified, "up", Unspecified, false},
		{"empty", Unspecified, "", Unspecified, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := tt.family
			addr, ok := Parse(&f, tt.text)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, f)
			if ok {
				assert.Equal(t, tt.want, addr.Family)
			}
		})
	}
}

func TestParseFormatRoundTrip(t *testing.T) {
	inputs := []string{
		"0.0.0.0", "192.0.2.5", "255.255.255.255",
		"::", "::1", "2001:db8::1", "fe80::1:2:3:4", "::ffff:10.0.0.1",
	}
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			f := Unspecified
			a, ok := Parse(&f, in)
			require.True(t, ok)

			again := f
			b, ok := Parse(&again, a.String())
			require.True(t, ok)
			assert.Equal(t, a.IP, b.IP)
			assert.True(t, a.Equal(b))
		})
	}
}

func TestParsePrefixLength(t *testing.T) {
	zero, ok := ParsePrefixLength(INET, "0")
	require.True(t, ok)
	assert.Equal(t, "0.0.0.0", zero.String())
	assert.Equal(t, 0, zero.PrefixLength())

	full, ok := ParsePrefixLength(INET, "32")
	require.True(t, ok)
	assert.Equal(t, "255.255.255.255", full.String())

	full6, ok := ParsePrefixLength(INET6, "128")
	require.True(t, ok)
	assert.Equal(t, 128, full6.PrefixLength())

	prev := -1
	for n := 0; n <= 32; n++ {
		m, ok := MaskFromPrefix(INET, n)
		require.True(t, ok)
		assert.Greater(t, m.PrefixLength(), prev)
		prev = m.PrefixLength()
	}

	for _, bad := range []string{"33", "-1", "abc", "", "24x"} {
		_, ok := ParsePrefixLength(INET, bad)
		assert.False(t, ok, bad)
	}
	_, ok = ParsePrefixLength(INET6, "129")
	assert.False(t, ok)
	_, ok = ParsePrefixLength(Unspecified, "8")
	assert.False(t, ok)
}

func TestPrefixLengthNonContiguous(t *testing.T) {
	f := INET
	m, ok := Parse(&f, "255.0.255.0")
	require.True(t, ok)
	assert.Equal(t, -1, m.PrefixLength())

	m, ok = Parse(&f, "255.255.255.0")
	require.True(t, ok)
	assert.Equal(t, 24, m.PrefixLength())
}

func TestDefaultMaskAndBroadcast(t *testing.T) {
	f := Unspecified
	a, _ := Parse(&f, "10.1.2.3")
	assert.Equal(t, "255.0.0.0", DefaultMask(a).String())

	f = Unspecified
	c, _ := Parse(&f, "192.0.2.5")
	mask := DefaultMask(c)
	assert.Equal(t, 24, mask.PrefixLength())
	assert.Equal(t, "192.0.2.255", Broadcast(c, mask).String())

	f = Unspecified
	v6, _ := Parse(&f, "2001:db8::1")
	assert.Equal(t, 64, DefaultMask(v6).PrefixLength())
	assert.True(t, Broadcast(v6, DefaultMask(v6)).IsEmpty())
}

func TestIsEmpty(t *testing.T) {
	assert.True(t, Address{}.IsEmpty())
	f := Unspecified
	a, _ := Parse(&f, "::")
	assert.False(t, a.IsEmpty())
}
