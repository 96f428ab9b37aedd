// Package wireless lists, joins and leaves wireless networks. Requests are
// delegated to wpa_supplicant through wpa_cli.
package wireless

import (
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"grimm.is/ifconf/internal/errors"
	"grimm.is/ifconf/internal/logging"
)

// Authentication modes as listed.
const (
	AuthNone      = "-"
	AuthEncrypted = "(encrypted)"
	AuthWEP       = "WEP"
	AuthWPA       = "WPA"
	AuthWPA2      = "WPA2"
)

// Network is one wireless network as seen in a scan or association.
type Network struct {
	Name           string           `json:"name" yaml:"name"`
	Address        net.HardwareAddr `json:"-" yaml:"-"`
	Signal         int              `json:"signal_dbm" yaml:"signal_dbm"`
	Authentication string           `json:"authentication" yaml:"authentication"`
	KeyMode        string           `json:"key_mode,omitempty" yaml:"key_mode,omitempty"`
	Cipher         string           `json:"cipher,omitempty" yaml:"cipher,omitempty"`
}

// BSSID renders Address, or "" when unknown.
func (n Network) BSSID() string {
	if len(n.Address) == 0 {
		return ""
	}
	return n.Address.String()
}

// Device is a wireless-capable interface.
type Device struct {
	Name    string
	Exec    CommandExecutor
	SysRoot string
	log     *logging.Logger
}

// NewDevice returns a Device using the real executor and /sys.
func NewDevice(name string) *Device {
	return &Device{
		Name:    name,
		Exec:    DefaultCommandExecutor,
		SysRoot: "/sys",
		log:     logging.WithComponent("wireless"),
	}
}

func (d *Device) logger() *logging.Logger {
	if d.log == nil {
		d.log = logging.WithComponent("wireless")
	}
	return d.log
}

// IsWireless reports whether the kernel exposes wireless extensions or a
// cfg80211 phy for the interface.
func (d *Device) IsWireless() bool {
	base := filepath.Join(d.SysRoot, "class", "net", d.Name)
	for _, sub := range []string{"wireless", "phy80211"} {
		if _, err := os.Stat(filepath.Join(base, sub)); err == nil {
			return true
		}
	}
	return false
}

func (d *Device) cli(arg ...string) (string, error) {
	out, err := d.Exec.RunCommand("wpa_cli", append([]string{"-i", d.Name}, arg...)...)
	if err != nil {
		return "", errors.Attr(errors.Wrapf(err, errors.KindOperation, "wpa_cli %s", arg[0]), "interface", d.Name)
	}
	out = strings.TrimSpace(out)
	if out == "FAIL" || strings.HasPrefix(out, "FAIL-") {
		return "", errors.Attr(errors.Errorf(errors.KindOperation, "wpa_cli %s: %s", arg[0], out), "interface", d.Name)
	}
	return out, nil
}

// Scan triggers a scan and returns the results.
func (d *Device) Scan() ([]Network, error) {
	if _, err := d.cli("scan"); err != nil {
		return nil, err
	}
	return d.Networks()
}

// Networks returns the last scan results.
func (d *Device) Networks() ([]Network, error) {
	out, err := d.cli("scan_results")
	if err != nil {
		return nil, err
	}
	return parseScanResults(out), nil
}

// Network returns the scanned network named by ssid or BSSID.
func (d *Device) Network(id string) (Network, error) {
	networks, err := d.Networks()
	if err != nil {
		return Network{}, err
	}
	for _, n := range networks {
		if n.matches(id) {
			return n, nil
		}
	}
	return Network{}, errors.Errorf(errors.KindNotFound, "network %q not found", id)
}

func (n Network) matches(id string) bool {
	if hw, err := net.ParseMAC(id); err == nil {
		return n.Address.String() == hw.String()
	}
	return n.Name == id
}

// Associated returns the networks the device is associated with.
func (d *Device) Associated() ([]Network, error) {
	out, err := d.cli("status")
	if err != nil {
		return nil, err
	}
	n, ok := parseStatus(out)
	if !ok {
		return nil, nil
	}
	return []Network{n}, nil
}

// Join configures and selects network, addressed by name or BSSID. An
// empty password joins an open network.
func (d *Device) Join(network, password string) error {
	id, err := d.cli("add_network")
	if err != nil {
		return err
	}
	if _, err := strconv.Atoi(id); err != nil {
		return errors.Errorf(errors.KindOperation, "wpa_cli add_network returned %q", id)
	}

	settings := [][]string{}
	if hw, err := net.ParseMAC(network); err == nil {
		settings = append(settings, []string{"bssid", hw.String()})
	} else {
		settings = append(settings, []string{"ssid", strconv.Quote(network)})
	}
	if password != "" {
		settings = append(settings, []string{"psk", strconv.Quote(password)})
	} else {
		settings = append(settings, []string{"key_mgmt", "NONE"})
	}

	for _, s := range settings {
		if _, err := d.cli("set_network", id, s[0], s[1]); err != nil {
			d.removeNetwork(id)
			return err
		}
	}
	if _, err := d.cli("select_network", id); err != nil {
		d.removeNetwork(id)
		return err
	}
	d.logger().Info("joined network", "interface", d.Name, "network", network)
	return nil
}

// Leave removes the configured network named by name or BSSID.
func (d *Device) Leave(network string) error {
	out, err := d.cli("list_networks")
	if err != nil {
		return err
	}
	id, ok := findConfigured(out, network)
	if !ok {
		return errors.Errorf(errors.KindNotFound, "network %q is not configured", network)
	}
	if _, err := d.cli("remove_network", id); err != nil {
		return err
	}
	d.logger().Info("left network", "interface", d.Name, "network", network)
	return nil
}

func (d *Device) removeNetwork(id string) {
	if _, err := d.cli("remove_network", id); err != nil {
		d.logger().Warn("removing half-configured network failed", "interface", d.Name, "id", id, "error", err)
	}
}
