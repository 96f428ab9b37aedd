// Package media is the static catalog of link-layer media types and their
// negotiable sub-modes.
package media

import "strings"

// Type is the coarse link technology. Generic entries apply to every type.
type Type uint8

const (
	Generic Type = iota
	Ethernet
)

// Subtype is a negotiable sub-mode of a Type.
type Subtype uint8

const (
	SubtypeNone Subtype = iota
	Auto
	Ether10BaseT
	Ether100BaseTX
	Ether1000BaseT
	Ether1000BaseSX
	Ether10GBaseT
)

// Options is a bit set of media options.
type Options uint8

const (
	FullDuplex Options = 1 << iota
	HalfDuplex
	Loop
)

// Media is the media word of an interface.
type Media struct {
	Type    Type
	Subtype Subtype
	Options Options
	// Active is set when the link has negotiated this media.
	Active bool
}

type subtypeEntry struct {
	subtype Subtype
	name    string
	pretty  string
	// Mbit/s; zero means negotiated.
	speed uint32
}

type optionEntry struct {
	option Options
	pretty string
}

type typeEntry struct {
	typ      Type
	name     string
	pretty   string
	subtypes []subtypeEntry
	options  []optionEntry
}

var catalog = []typeEntry{
	{
		typ:    Generic,
		name:   "all",
		pretty: "All",
		subtypes: []subtypeEntry{
			{Auto, "auto", "Auto-select", 0},
		},
		options: []optionEntry{
			{FullDuplex, "Full Duplex"},
			{HalfDuplex, "Half Duplex"},
			{Loop, "Loop"},
		},
	},
	{
		typ:    Ethernet,
		name:   "ether",
		pretty: "Ethernet",
		subtypes: []subtypeEntry{
			{Ether10BaseT, "10baseT", "10 MBit, 10BASE-T", 10},
			{Ether100BaseTX, "100baseTX", "100 MBit, 100BASE-TX", 100},
			{Ether1000BaseT, "1000baseT", "1 GBit, 1000BASE-T", 1000},
			{Ether1000BaseSX, "1000baseSX", "1 GBit, 1000BASE-SX", 1000},
			{Ether10GBaseT, "10GbaseT", "10 GBit, 10GBASE-T", 10000},
		},
	},
}

// applies reports whether catalog entry e may describe media of type t.
func (e typeEntry) applies(t Type) bool {
	return e.typ == Generic || e.typ == t
}

// ParseSubtype matches text against the subtypes valid for current's type.
// The result keeps current's type and options with the new subtype.
func ParseSubtype(text string, current Media) (Media, bool) {
	for _, e := range catalog {
		if !e.applies(current.Type) {
			continue
		}
		for _, s := range e.subtypes {
			if s.name == text {
				out := current
				out.Subtype = s.subtype
				return out, true
			}
		}
	}
	return Media{}, false
}

// Lookup returns the display name of m's subtype.
func Lookup(m Media) (string, bool) {
	for _, e := range catalog {
		if !e.applies(m.Type) {
			continue
		}
		for _, s := range e.subtypes {
			if s.subtype == m.Subtype {
				return s.pretty, true
			}
		}
	}
	return "", false
}

// PrettyName renders the subtype followed by any set options, as in
// "100 MBit, 100BASE-TX, Full Duplex". An unknown subtype renders as
// "unknown".
func PrettyName(m Media) string {
	name, ok := Lookup(m)
	if !ok {
		name = "unknown"
	}
	return strings.Join(append([]string{name}, OptionNames(m)...), ", ")
}

// TypeName returns the display name of a media type.
func TypeName(t Type) string {
	for _, e := range catalog {
		if e.typ == t {
			return e.pretty
		}
	}
	return "unknown"
}

// OptionNames lists the display names of the options set in m.
func OptionNames(m Media) []string {
	var out []string
	for _, e := range catalog {
		if !e.applies(m.Type) {
			continue
		}
		for _, o := range e.options {
			if m.Options&o.option != 0 {
				out = append(out, o.pretty)
			}
		}
	}
	return out
}

// Speed returns the fixed rate of a subtype in Mbit/s, or zero when the
// subtype negotiates.
func Speed(s Subtype) uint32 {
	for _, e := range catalog {
		for _, st := range e.subtypes {
			if st.subtype == s {
				return st.speed
			}
		}
	}
	return 0
}

// FromSpeed picks the subtype of type t that runs at speed Mbit/s. Copper
// wins over fibre when both share a rate.
func FromSpeed(t Type, speed uint32) Subtype {
	for _, e := range catalog {
		if e.typ != t {
			continue
		}
		for _, st := range e.subtypes {
			if st.speed == speed {
				return st.subtype
			}
		}
	}
	return SubtypeNone
}

// UsageLines renders one "For <type> <media> can be one of: ..." line per
// catalog entry.
func UsageLines() []string {
	lines := make([]string, 0, len(catalog))
	for _, e := range catalog {
		var b strings.Builder
		b.WriteString("For ")
		b.WriteString(e.pretty)
		b.WriteString(" <media> can be one of: ")
		for _, s := range e.subtypes {
			b.WriteString(s.name)
			b.WriteByte(' ')
		}
		lines = append(lines, b.String())
	}
	return lines
}
