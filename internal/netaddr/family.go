// Package netaddr holds the address family registry and the parsers that turn
// user text into typed addresses and masks.
package netaddr

import "strings"

// Family identifies an address family. Values match the Linux AF_* numbers.
type Family int

const (
	// Unspecified is the parsing wildcard. It must be resolved before a
	// request is issued.
	Unspecified Family = 0
	INET        Family = 2
	INET6       Family = 10
	// Link is the link-layer family. The parser recognizes it so it can
	// refuse it; it is not in the registry.
	Link Family = 17
)

// MaskFormat is how a family prefers its mask to be displayed.
type MaskFormat int

const (
	FormatMask MaskFormat = iota
	FormatPrefixLength
)

// AddressFamily is one registry entry.
type AddressFamily struct {
	ID      Family
	Name    string
	Aliases []string
	Format  MaskFormat
	Bits    int
}

var families = []AddressFamily{
	{
		ID:      INET,
		Name:    "inet",
		Aliases: []string{"AF_INET", "inet", "ipv4"},
		Format:  FormatMask,
		Bits:    32,
	},
	{
		ID:      INET6,
		Name:    "inet6",
		Aliases: []string{"AF_INET6", "inet6", "ipv6"},
		Format:  FormatPrefixLength,
		Bits:    128,
	},
}

// Families returns the registry in display order.
func Families() []AddressFamily {
	out := make([]AddressFamily, len(families))
	copy(out, families)
	return out
}

// Resolve maps an alias to its family. Unknown aliases yield Unspecified.
func Resolve(alias string) Family {
	for _, f := range families {
		for _, a := range f.Aliases {
			if a == alias {
				return f.ID
			}
		}
	}
	return Unspecified
}

// Describe returns the registry entry for id.
func Describe(id Family) (AddressFamily, bool) {
	for _, f := range families {
		if f.ID == id {
			return f, true
		}
	}
	return AddressFamily{}, false
}

// Supported reports whether the family is in the registry.
func (f Family) Supported() bool {
	_, ok := Describe(f)
	return ok
}

func (f Family) String() string {
	switch f {
	case Unspecified:
		return "unspec"
	case Link:
		return "link"
	}
	if af, ok := Describe(f); ok {
		return af.Name
	}
	return "unknown"
}

// ParseFamily is Resolve with a case-insensitive fallback on canonical names,
// used by config files and flags where "INET6" is a reasonable spelling.
func ParseFamily(s string) Family {
	if f := Resolve(s); f != Unspecified {
		return f
	}
	for _, f := range families {
		if strings.EqualFold(f.Name, s) {
			return f.ID
		}
	}
	return Unspecified
}
