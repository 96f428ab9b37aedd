package wireless

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	ierrors "grimm.is/ifconf/internal/errors"
)

const scanOutput = "bssid / frequency / signal level / flags / ssid\n" +
	"00:11:22:33:44:55\t2412\t-45\t[WPA2-PSK-CCMP][ESS]\tHomeNet\n" +
	"66:77:88:99:aa:bb\t5180\t-70\t[ESS]\tCafe Guest\n" +
	"de:ad:be:ef:00:01\t2437\t-80\t[WEP][ESS]\t\n"

func newDevice(exec CommandExecutor) *Device {
	d := NewDevice("wlan0")
	d.Exec = exec
	return d
}

func TestIsWireless(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "class/net/wlan0/phy80211"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "class/net/eth0"), 0o755))

	d := NewDevice("wlan0")
	d.SysRoot = root
	assert.True(t, d.IsWireless())

	d = NewDevice("eth0")
	d.SysRoot = root
	assert.False(t, d.IsWireless())
}

func TestScan(t *testing.T) {
	m := new(MockCommandExecutor)
	m.On("RunCommand", "wpa_cli", "-i", "wlan0", "scan").Return("OK\n", nil).Once()
	m.On("RunCommand", "wpa_cli", "-i", "wlan0", "scan_results").Return(scanOutput, nil).Once()

	networks, err := newDevice(m).Scan()
	require.NoError(t, err)
	require.Len(t, networks, 3)

	assert.Equal(t, "HomeNet", networks[0].Name)
	assert.Equal(t, "00:11:22:33:44:55", networks[0].BSSID())
	assert.Equal(t, -45, networks[0].Signal)
	assert.Equal(t, AuthWPA2, networks[0].Authentication)
	assert.Equal(t, "PSK", networks[0].KeyMode)
	assert.Equal(t, "CCMP", networks[0].Cipher)

	assert.Equal(t, "Cafe Guest", networks[1].Name)
	assert.Equal(t, AuthNone, networks[1].Authentication)
	assert.Equal(t, AuthWEP, networks[2].Authentication)
	assert.Empty(t, networks[2].Name)
	m.AssertExpectations(t)
}

func TestScanFailure(t *testing.T) {
	m := new(MockCommandExecutor)
	m.On("RunCommand", "wpa_cli", "-i", "wlan0", "scan").Return("FAIL-BUSY\n", nil).Once()

	_, err := newDevice(m).Scan()
	require.Error(t, err)
	assert.Equal(t, ierrors.KindOperation, ierrors.GetKind(err))
}

func TestNetworkLookup(t *testing.T) {
	m := new(MockCommandExecutor)
	m.On("RunCommand", "wpa_cli", "-i", "wlan0", "scan_results").Return(scanOutput, nil)
	d := newDevice(m)

	n, err := d.Network("Cafe Guest")
	require.NoError(t, err)
	assert.Equal(t, "66:77:88:99:aa:bb", n.BSSID())

	n, err = d.Network("00:11:22:33:44:55")
	require.NoError(t, err)
	assert.Equal(t, "HomeNet", n.Name)

	_, err = d.Network("Nowhere")
	assert.Equal(t, ierrors.KindNotFound, ierrors.GetKind(err))
}

func TestAssociated(t *testing.T) {
	m := new(MockCommandExecutor)
	m.On("RunCommand", "wpa_cli", "-i", "wlan0", "status").Return(
		"bssid=00:11:22:33:44:55\nfreq=2412\nssid=HomeNet\nid=0\nmode=station\n"+
			"pairwise_cipher=CCMP\ngroup_cipher=CCMP\nkey_mgmt=WPA2-PSK\nwpa_state=COMPLETED\n", nil).Once()

	networks, err := newDevice(m).Associated()
	require.NoError(t, err)
	require.Len(t, networks, 1)
	assert.Equal(t, Network{
		Name:           "HomeNet",
		Address:        networks[0].Address,
		Authentication: AuthWPA2,
		KeyMode:        "PSK",
		Cipher:         "CCMP",
	}, networks[0])
	assert.Equal(t, "00:11:22:33:44:55", networks[0].BSSID())
}

func TestAssociatedDisconnected(t *testing.T) {
	m := new(MockCommandExecutor)
	m.On("RunCommand", "wpa_cli", "-i", "wlan0", "status").Return("wpa_state=SCANNING\n", nil).Once()

	networks, err := newDevice(m).Associated()
	require.NoError(t, err)
	assert.Empty(t, networks)
}

func TestJoin(t *testing.T) {
	m := new(MockCommandExecutor)
	m.On("RunCommand", "wpa_cli", "-i", "wlan0", "add_network").Return("1\n", nil).Once()
	m.On("RunCommand", "wpa_cli", "-i", "wlan0", "set_network", "1", "ssid", `"HomeNet"`).Return("OK\n", nil).Once()
	m.On("RunCommand", "wpa_cli", "-i", "wlan0", "set_network", "1", "psk", `"secret99"`).Return("OK\n", nil).Once()
	m.On("RunCommand", "wpa_cli", "-i", "wlan0", "select_network", "1").Return("OK\n", nil).Once()

	require.NoError(t, newDevice(m).Join("HomeNet", "secret99"))
	m.AssertExpectations(t)
}

func TestJoinOpenByBSSID(t *testing.T) {
	exec := NewDryRunExecutor()
	exec.Replies["wpa_cli -i wlan0 add_network"] = "0\n"

	require.NoError(t, newDevice(exec).Join("66:77:88:99:AA:BB", ""))
	assert.Equal(t, []string{
		"wpa_cli -i wlan0 add_network",
		"wpa_cli -i wlan0 set_network 0 bssid 66:77:88:99:aa:bb",
		"wpa_cli -i wlan0 set_network 0 key_mgmt NONE",
		"wpa_cli -i wlan0 select_network 0",
	}, exec.Commands)
}

func TestJoinRollsBack(t *testing.T) {
	m := new(MockCommandExecutor)
	m.On("RunCommand", "wpa_cli", "-i", "wlan0", "add_network").Return("2\n", nil).Once()
	m.On("RunCommand", "wpa_cli", "-i", "wlan0", "set_network", "2", "ssid", `"HomeNet"`).Return("OK\n", nil).Once()
	m.On("RunCommand", "wpa_cli", "-i", "wlan0", "set_network", "2", "psk", `"short"`).Return("FAIL\n", nil).Once()
	m.On("RunCommand", "wpa_cli", "-i", "wlan0", "remove_network", "2").Return("OK\n", nil).Once()

	err := newDevice(m).Join("HomeNet", "short")
	require.Error(t, err)
	m.AssertExpectations(t)
}

func TestLeave(t *testing.T) {
	list := "network id / ssid / bssid / flags\n0\tHomeNet\tany\t[CURRENT]\n1\tOther\t66:77:88:99:aa:bb\t\n"

	t.Run("by name", func(t *testing.T) {
		m := new(MockCommandExecutor)
		m.On("RunCommand", "wpa_cli", "-i", "wlan0", "list_networks").Return(list, nil).Once()
		m.On("RunCommand", "wpa_cli", "-i", "wlan0", "remove_network", "0").Return("OK\n", nil).Once()
		require.NoError(t, newDevice(m).Leave("HomeNet"))
		m.AssertExpectations(t)
	})

	t.Run("by bssid", func(t *testing.T) {
		m := new(MockCommandExecutor)
		m.On("RunCommand", "wpa_cli", "-i", "wlan0", "list_networks").Return(list, nil).Once()
		m.On("RunCommand", "wpa_cli", "-i", "wlan0", "remove_network", "1").Return("OK\n", nil).Once()
		require.NoError(t, newDevice(m).Leave("66:77:88:99:AA:BB"))
		m.AssertExpectations(t)
	})

	t.Run("unknown", func(t *testing.T) {
		m := new(MockCommandExecutor)
		m.On("RunCommand", "wpa_cli", "-i", "wlan0", "list_networks").Return(list, nil).Once()
		err := newDevice(m).Leave("Nowhere")
		assert.Equal(t, ierrors.KindNotFound, ierrors.GetKind(err))
		m.AssertNotCalled(t, "RunCommand", "wpa_cli", "-i", "wlan0", "remove_network", mock.Anything)
	})
}

func TestCommandFailure(t *testing.T) {
	m := new(MockCommandExecutor)
	m.On("RunCommand", "wpa_cli", "-i", "wlan0", "list_networks").Return("", errors.New("no wpa_supplicant")).Once()

	err := newDevice(m).Leave("HomeNet")
	require.Error(t, err)
	assert.Equal(t, ierrors.KindOperation, ierrors.GetKind(err))
	assert.Equal(t, "wlan0", ierrors.GetAttributes(err)["interface"])
}

func TestParseFlags(t *testing.T) {
	tests := []struct {
		flags, auth, keyMode, cipher string
	}{
		{"[ESS]", AuthNone, "", ""},
		{"[WEP][ESS]", AuthWEP, "", ""},
		{"[WPA-PSK-TKIP][ESS]", AuthWPA, "PSK", "TKIP"},
		{"[WPA-PSK-TKIP][WPA2-PSK-CCMP+TKIP][ESS]", AuthWPA2, "PSK", "CCMP+TKIP"},
		{"[RSN-EAP-CCMP]", AuthWPA2, "EAP", "CCMP"},
	}
	for _, tt := range tests {
		auth, keyMode, cipher := parseFlags(tt.flags)
		assert.Equal(t, tt.auth, auth, tt.flags)
		assert.Equal(t, tt.keyMode, keyMode, tt.flags)
		assert.Equal(t, tt.cipher, cipher, tt.flags)
	}
}
