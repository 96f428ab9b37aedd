package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"grimm.is/ifconf/internal/autoconf"
	"grimm.is/ifconf/internal/i18n"
	"grimm.is/ifconf/internal/netaddr"
	"grimm.is/ifconf/internal/netif"
	"grimm.is/ifconf/internal/wireless"
)

type harness struct {
	app    *App
	sim    *netif.Sim
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	t.Setenv("IFCONF_CONFIG", filepath.Join(t.TempDir(), "missing.hcl"))
	t.Setenv("NO_COLOR", "1")

	sim := netif.NewSim()
	sim.Seed(netif.SimLink{
		Name:      "lo",
		Flags:     netif.FlagUp | netif.FlagLoopback,
		MTU:       65536,
		LinkLevel: netif.LinkLevel{Type: netif.LinkLoopback},
	})
	sim.Seed(netif.SimLink{
		Name:      "eth0",
		Flags:     netif.FlagBroadcast,
		MTU:       1500,
		LinkLevel: netif.LinkLevel{Type: netif.LinkEthernet},
	})

	h := &harness{
		sim:    sim,
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
	}
	h.app = &App{
		Stdout:     h.stdout,
		Stderr:     h.stderr,
		Opener:     sim,
		Printer:    i18n.NewPrinter(language.English),
		IsTerminal: func(io.Writer) bool { return false },
		Device: func(name string) *wireless.Device {
			return &wireless.Device{Name: name, Exec: wireless.NewDryRunExecutor(), SysRoot: t.TempDir()}
		},
	}
	return h
}

func (h *harness) run(args ...string) int {
	return h.app.Run(context.Background(), args)
}

func TestHelp(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, 0, h.run("-h"))
	assert.Contains(t, h.stdout.String(), "usage: ifconf")
	assert.Contains(t, h.stdout.String(), "\tifconf loop 127.0.0.1 255.0.0.0 up\n")
	assert.Contains(t, h.stdout.String(), "For Ethernet <media> can be one of:")
}

func TestUnknownFlagPrintsUsage(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, 1, h.run("--sparkle"))
	assert.Contains(t, h.stderr.String(), "usage: ifconf")
}

func TestListAll(t *testing.T) {
	h := newHarness(t)
	require.Equal(t, 0, h.run())

	out := h.stdout.String()
	assert.True(t, strings.HasPrefix(out, "lo\t"), out)
	assert.Contains(t, out, "eth0\tHardware type: Ethernet")
	assert.Less(t, strings.Index(out, "lo\t"), strings.Index(out, "eth0\t"))
	assert.Empty(t, h.sim.Ops())
}

func TestListOne(t *testing.T) {
	h := newHarness(t)
	require.Equal(t, 0, h.run("eth0"))
	assert.True(t, strings.HasPrefix(h.stdout.String(), "eth0\t"))
	assert.NotContains(t, h.stdout.String(), "lo\t")
}

func TestListMissingInterface(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, 1, h.run("eth9"))
	assert.Equal(t, "eth9\tInterface not found!\n", h.stdout.String())
}

func TestListJSON(t *testing.T) {
	h := newHarness(t)
	require.Equal(t, 0, h.run("--json", "eth0"))

	var out []map[string]any
	require.NoError(t, json.Unmarshal(h.stdout.Bytes(), &out))
	require.Len(t, out, 1)
	assert.Equal(t, "eth0", out[0]["name"])
	assert.EqualValues(t, 1500, out[0]["mtu"])
}

func TestNetworkingStackUnavailable(t *testing.T) {
	h := newHarness(t)
	h.sim.FailOpen(syscall.EAFNOSUPPORT)
	assert.Equal(t, 1, h.run("eth0"))
	assert.Equal(t, "ifconf: the networking stack is not available\n", h.stderr.String())
}

func TestConfigureScenario(t *testing.T) {
	h := newHarness(t)
	require.Equal(t, 0, h.run("eth0", "inet", "192.0.2.5", "255.255.255.0", "up"))

	assert.Equal(t, []string{
		"ip addr add 192.0.2.5/24 dev eth0",
		"ip link set eth0 up",
	}, h.sim.Ops())
	link, ok := h.sim.Link("eth0")
	require.True(t, ok)
	assert.NotZero(t, link.Flags&netif.FlagUp)
	assert.Equal(t, 1500, link.MTU)
}

func TestConfigureParseErrorIssuesNoRequest(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, 1, h.run("eth0", "prefixlen", "33"))
	assert.Empty(t, h.sim.Ops())
	assert.Contains(t, h.stderr.String(), "ifconf: ")
}

func TestConfigureUsageErrorPrintsUsage(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, 1, h.run("eth0", "frobnicate"))
	assert.Empty(t, h.sim.Ops())
	assert.Contains(t, h.stderr.String(), "ifconf: unknown option \"frobnicate\"\n")
	assert.Contains(t, h.stderr.String(), "usage: ifconf")

	h.stderr.Reset()
	assert.Equal(t, 1, h.run("eth0", "mtu"))
	assert.Contains(t, h.stderr.String(), "usage: ifconf")

	h.stderr.Reset()
	assert.Equal(t, 1, h.run("--delete", "eth0", "inet"))
	assert.Contains(t, h.stderr.String(), "usage: ifconf")
	assert.Empty(t, h.sim.Ops())
}

func TestConfigurePartialFailureWarns(t *testing.T) {
	h := newHarness(t)
	h.sim.Fail("SetMTU", syscall.EINVAL)

	assert.Equal(t, 0, h.run("eth0", "mtu", "9000", "up"))
	assert.Contains(t, h.stderr.String(), "ifconf: set mtu: ")
	assert.Equal(t, []string{"ip link set eth0 up"}, h.sim.Ops())
}

func TestAutoConfigWithoutService(t *testing.T) {
	h := newHarness(t)
	t.Setenv("IFCONF_RUN_DIR", t.TempDir())

	assert.Equal(t, 0, h.run("eth0", "auto-config"))
	assert.Contains(t, h.stderr.String(), "the auto-configuration service needs to run for the auto configuration")
}

func TestAutoConfigThroughService(t *testing.T) {
	h := newHarness(t)
	socket := filepath.Join(t.TempDir(), "autoconf.sock")
	cfgPath := filepath.Join(t.TempDir(), "ifconf.hcl")
	require.NoError(t, os.WriteFile(cfgPath, []byte("autoconf {\n  socket = \""+socket+"\"\n  timeout = \"2s\"\n}\n"), 0644))

	worker := new(autoconf.MockWorker)
	svc := autoconf.NewService(netif.NewRoster(h.sim), autoconf.Options{
		Workers: map[netaddr.Family]autoconf.Worker{netaddr.INET: worker},
	})
	defer svc.Stop()
	srv, err := autoconf.NewServer(socket, svc)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, srv.Start(ctx))
	defer srv.Stop()

	addr, _ := netaddr.Parse(new(netaddr.Family), "192.0.2.50")
	mask, _ := netaddr.MaskFromPrefix(netaddr.INET, 24)
	worker.On("Acquire", mock.Anything, "eth0").Return(&autoconf.Lease{
		Interface:  "eth0",
		Family:     netaddr.INET,
		Addresses:  []netif.AddressEntry{{Address: addr, Mask: mask}},
		Duration:   time.Hour,
		ObtainedAt: time.Now(),
	}, nil).Once()

	require.Equal(t, 0, h.run("--config", cfgPath, "eth0", "auto-config"))
	assert.NotContains(t, h.stderr.String(), "auto-configure inet")
	link, ok := h.sim.Link("eth0")
	require.True(t, ok)
	assert.NotZero(t, link.Flags&netif.FlagAutoConfigured)
	worker.AssertExpectations(t)

	h.stdout.Reset()
	require.Equal(t, 0, h.run("--config", cfgPath, "autoconfd", "--status"))
	assert.Contains(t, h.stdout.String(), "INTERFACE")
	assert.Contains(t, h.stdout.String(), "192.0.2.50")
}

func TestDelete(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"long flag", []string{"--delete", "eth0", "192.0.2.5"}},
		{"short flag", []string{"-d", "eth0", "192.0.2.5"}},
		{"word", []string{"del", "eth0", "192.0.2.5"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			require.Equal(t, 0, h.run("eth0", "192.0.2.5", "netmask", "255.255.255.0"))
			require.Equal(t, 0, h.run(tt.args...))

			link, _ := h.sim.Link("eth0")
			assert.Empty(t, link.Addresses)
		})
	}
}

func TestDeleteInterface(t *testing.T) {
	h := newHarness(t)
	require.Equal(t, 0, h.run("delete", "eth0"))
	_, ok := h.sim.Link("eth0")
	assert.False(t, ok)
	assert.Equal(t, []string{"ip link del eth0"}, h.sim.Ops())
}

func TestDryRunLeavesSystemUntouched(t *testing.T) {
	h := newHarness(t)
	require.Equal(t, 0, h.run("--dry-run", "eth0", "mtu", "1400"))

	assert.Empty(t, h.sim.Ops())
	link, _ := h.sim.Link("eth0")
	assert.Equal(t, 1500, link.MTU)

	out := h.stdout.String()
	assert.Contains(t, out, "[DRY RUN] Requests:\n")
	assert.Contains(t, out, "  ip link set eth0 mtu 1400\n")
	assert.Contains(t, out, "--- before\n+++ after\n")
	assert.Contains(t, out, "-\tMTU: 1500")
	assert.Contains(t, out, "+\tMTU: 1400")
}

func TestDryRunRecordsAutoConfig(t *testing.T) {
	h := newHarness(t)
	require.Equal(t, 0, h.run("--dry-run", "eth0", "auto-config"))
	assert.Contains(t, h.stdout.String(), "  autoconf eth0 inet\n")
	assert.Empty(t, h.sim.Ops())
}

func TestDryRunListIsQuiet(t *testing.T) {
	h := newHarness(t)
	require.Equal(t, 0, h.run("--dry-run", "eth0"))
	assert.NotContains(t, h.stdout.String(), "[DRY RUN]")
}

func TestRoute(t *testing.T) {
	h := newHarness(t)
	require.Equal(t, 0, h.run("route", "eth0", "add", "default", "192.0.2.1"))
	assert.Equal(t, []string{"ip route add default via 192.0.2.1 dev eth0"}, h.sim.Ops())

	h.stdout.Reset()
	require.Equal(t, 0, h.run("route", "eth0"))
	assert.Equal(t, "inet default via 192.0.2.1\n", h.stdout.String())

	require.Equal(t, 0, h.run("route", "eth0", "del", "default", "inet"))
	link, _ := h.sim.Link("eth0")
	assert.Empty(t, link.Routes)

	// Family names are matched without regard to case.
	require.Equal(t, 0, h.run("route", "eth0", "add", "default", "192.0.2.1"))
	require.Equal(t, 0, h.run("route", "eth0", "del", "default", "INET"))
	link, _ = h.sim.Link("eth0")
	assert.Empty(t, link.Routes)
	assert.Empty(t, h.stderr.String())
}

func TestRouteErrors(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, 1, h.run("route", "eth0", "add", "default", "not-an-address"))
	assert.Contains(t, h.stderr.String(), "invalid gateway")

	h.stderr.Reset()
	assert.Equal(t, 1, h.run("route", "eth0", "del", "default"))
	assert.Contains(t, h.stderr.String(), "no inet default route")

	assert.Equal(t, 1, h.run("route", "eth9"))
	assert.Equal(t, 1, h.run("route", "eth0", "flip", "default", "192.0.2.1"))
	assert.Empty(t, h.sim.Ops())
}

func TestWirelessChecks(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, 1, h.run("wlan9", "scan"))
	assert.Equal(t, "ifconf: \"wlan9\" does not exist!\n", h.stderr.String())

	h.stderr.Reset()
	assert.Equal(t, 1, h.run("eth0", "join", "home"))
	assert.Equal(t, "ifconf: \"eth0\" is not a WLAN device!\n", h.stderr.String())
}

func TestWirelessJoin(t *testing.T) {
	h := newHarness(t)
	h.sim.Seed(netif.SimLink{Name: "wlan0", Flags: netif.FlagBroadcast, MTU: 1500})

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "class", "net", "wlan0", "wireless"), 0755))
	exec := wireless.NewDryRunExecutor()
	exec.Replies["wpa_cli -i wlan0 add_network"] = "0"
	h.app.Device = func(name string) *wireless.Device {
		return &wireless.Device{Name: name, Exec: exec, SysRoot: root}
	}

	require.Equal(t, 0, h.run("wlan0", "join", "home", "secret"))
	assert.Contains(t, exec.Commands, "wpa_cli -i wlan0 select_network 0")

	assert.Equal(t, 1, h.run("wlan0", "join"))
	assert.Equal(t, 1, h.run("wlan0", "leave"))
}

func TestConfigPrint(t *testing.T) {
	h := newHarness(t)
	require.Equal(t, 0, h.run("config", "print"))
	assert.Contains(t, h.stdout.String(), `log_level = "warn"`)
	assert.Contains(t, h.stdout.String(), "autoconf {")
}

func TestConfigCheck(t *testing.T) {
	h := newHarness(t)
	path := filepath.Join(t.TempDir(), "ifconf.hcl")
	require.NoError(t, os.WriteFile(path, []byte("log_level = \"debug\"\noutput {\n  format = \"json\"\n}\n"), 0644))

	require.Equal(t, 0, h.run("--config", path, "config", "check"))
	assert.Equal(t, "Configuration valid: "+path+"\n", h.stdout.String())

	bad := filepath.Join(t.TempDir(), "bad.hcl")
	require.NoError(t, os.WriteFile(bad, []byte("output {\n"), 0644))
	assert.Equal(t, 1, h.run("--config", bad, "config", "check"))
}

func TestConfigSelectsFormat(t *testing.T) {
	h := newHarness(t)
	path := filepath.Join(t.TempDir(), "ifconf.hcl")
	require.NoError(t, os.WriteFile(path, []byte("output {\n  format = \"json\"\n}\n"), 0644))

	require.Equal(t, 0, h.run("--config", path, "eth0"))
	assert.True(t, strings.HasPrefix(h.stdout.String(), "["), h.stdout.String())
}

func TestMissingConfigFileIsAnError(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, 1, h.run("--config", filepath.Join(t.TempDir(), "nope.hcl"), "eth0"))
	assert.Contains(t, h.stderr.String(), "nope.hcl")
}
