package netif

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlagNames(t *testing.T) {
	f := FlagUp | FlagBroadcast | FlagAutoConfigured
	assert.Equal(t, []string{"up", "broadcast", "auto-configured"}, f.Names())
	assert.Equal(t, "up,broadcast,auto-configured", f.String())
	assert.Empty(t, Flags(0).Names())
}

func TestFlagsApply(t *testing.T) {
	cur := FlagUp | FlagBroadcast | FlagAutoConfigured | FlagConfiguring
	got := cur.Apply(FlagPromiscuous, FlagAutoConfigured|FlagConfiguring)
	assert.Equal(t, FlagUp|FlagBroadcast|FlagPromiscuous, got)
}

func TestKindForName(t *testing.T) {
	tests := []struct {
		name   string
		kind   string
		parent string
		id     int
	}{
		{"eth0.100", "vlan", "eth0", 100},
		{"eth0.0", "dummy", "", 0},
		{"eth0.abc", "dummy", "", 0},
		{"br-lan", "bridge", "", 0},
		{"bond0", "bond", "", 0},
		{"wan", "dummy", "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k := kindForName(tt.name)
			assert.Equal(t, tt.kind, k.kind)
			assert.Equal(t, tt.parent, k.parent)
			assert.Equal(t, tt.id, k.vlanID)
		})
	}
}

func TestValidateName(t *testing.T) {
	assert.NoError(t, ValidateName("eth0"))
	assert.NoError(t, ValidateName("eth0.100"))
	assert.Error(t, ValidateName(""))
	assert.Error(t, ValidateName("averyveryverylongname"))
	assert.Error(t, ValidateName("eth/0"))
	assert.Error(t, ValidateName("eth 0"))
}
