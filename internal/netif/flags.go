package netif

import "strings"

// Flags is the interface flag word.
type Flags uint32

const (
	FlagUp Flags = 1 << iota
	FlagNoARP
	FlagBroadcast
	FlagLoopback
	FlagPromiscuous
	FlagAllMulti
	FlagAutoUp
	FlagLink
	FlagAutoConfigured
	FlagConfiguring
)

var flagNames = []struct {
	flag Flags
	name string
}{
	{FlagUp, "up"},
	{FlagNoARP, "noarp"},
	{FlagBroadcast, "broadcast"},
	{FlagLoopback, "loopback"},
	{FlagPromiscuous, "promiscuous"},
	{FlagAllMulti, "allmulti"},
	{FlagAutoUp, "autoup"},
	{FlagLink, "link"},
	{FlagAutoConfigured, "auto-configured"},
	{FlagConfiguring, "configuring"},
}

// Names lists the set flags in display order.
func (f Flags) Names() []string {
	var out []string
	for _, fn := range flagNames {
		if f&fn.flag != 0 {
			out = append(out, fn.name)
		}
	}
	return out
}

func (f Flags) String() string {
	return strings.Join(f.Names(), ",")
}

// Apply returns (f &^ remove) | add.
func (f Flags) Apply(add, remove Flags) Flags {
	return (f &^ remove) | add
}
