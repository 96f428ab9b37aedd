package wireless

import (
	"net"
	"strconv"
	"strings"
)

// parseScanResults reads wpa_cli scan_results output:
//
//	bssid / frequency / signal level / flags / ssid
//	00:11:22:33:44:55	2412	-45	[WPA2-PSK-CCMP][ESS]	HomeNet
func parseScanResults(out string) []Network {
	var networks []Network
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Split(strings.TrimRight(line, "\r"), "\t")
		if len(fields) < 4 {
			continue
		}
		hw, err := net.ParseMAC(fields[0])
		if err != nil {
			continue
		}
		n := Network{Address: hw}
		n.Signal, _ = strconv.Atoi(fields[2])
		n.Authentication, n.KeyMode, n.Cipher = parseFlags(fields[3])
		if len(fields) > 4 {
			n.Name = fields[4]
		}
		networks = append(networks, n)
	}
	return networks
}

// parseFlags maps a flags column like "[WPA2-PSK-CCMP][ESS]" to the
// authentication mode, key mode and cipher.
func parseFlags(flags string) (auth, keyMode, cipher string) {
	auth = AuthNone
	for _, f := range strings.Split(flags, "]") {
		f = strings.TrimPrefix(f, "[")
		parts := strings.Split(f, "-")
		switch parts[0] {
		case "WPA2", "RSN":
			auth = AuthWPA2
		case "WPA":
			if auth != AuthWPA2 {
				auth = AuthWPA
			}
		case "WEP":
			auth = AuthWEP
			continue
		default:
			continue
		}
		if len(parts) > 1 {
			keyMode = parts[1]
		}
		if len(parts) > 2 {
			cipher = strings.Join(parts[2:], "+")
		}
	}
	return auth, keyMode, cipher
}

// parseStatus reads wpa_cli status output. ok is false unless the device
// has completed association.
func parseStatus(out string) (Network, bool) {
	values := make(map[string]string)
	for _, line := range strings.Split(out, "\n") {
		k, v, found := strings.Cut(strings.TrimSpace(line), "=")
		if found {
			values[k] = v
		}
	}
	if values["wpa_state"] != "COMPLETED" {
		return Network{}, false
	}

	n := Network{Name: values["ssid"], Authentication: AuthNone}
	n.Address, _ = net.ParseMAC(values["bssid"])

	keyMgmt := values["key_mgmt"]
	switch {
	case strings.HasPrefix(keyMgmt, "WPA2"):
		n.Authentication = AuthWPA2
	case strings.HasPrefix(keyMgmt, "WPA"):
		n.Authentication = AuthWPA
	}
	if _, mode, ok := strings.Cut(keyMgmt, "-"); ok {
		n.KeyMode = mode
	}
	if values["pairwise_cipher"] == "WEP-40" || values["pairwise_cipher"] == "WEP-104" {
		n.Authentication = AuthWEP
	} else if n.Authentication != AuthNone {
		n.Cipher = values["pairwise_cipher"]
	}
	return n, true
}

// findConfigured returns the id of the configured network whose ssid or
// bssid equals network, from list_networks output:
//
//	network id / ssid / bssid / flags
//	0	HomeNet	any	[CURRENT]
func findConfigured(out, network string) (string, bool) {
	want := network
	if hw, err := net.ParseMAC(network); err == nil {
		want = hw.String()
	}
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Split(strings.TrimRight(line, "\r"), "\t")
		if len(fields) < 3 {
			continue
		}
		if _, err := strconv.Atoi(fields[0]); err != nil {
			continue
		}
		if fields[1] == want || strings.EqualFold(fields[2], want) {
			return fields[0], true
		}
	}
	return "", false
}
