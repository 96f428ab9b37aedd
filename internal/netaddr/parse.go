package netaddr

import (
	"net"
	"strconv"
	"strings"
)

// Parse interprets text as an address of *family. When *family is
// Unspecified the family is detected and written back. Text that parses to a
// family outside the registry is refused.
func Parse(family *Family, text string) (Address, bool) {
	if text == "" || strings.ContainsRune(text, '%') {
		return Address{}, false
	}

	var addr Address
	if ip := net.ParseIP(text); ip != nil {
		if v4 := ip.To4(); v4 != nil && !strings.Contains(text, ":") {
			addr = Address{Family: INET, IP: v4}
		} else {
			addr = Address{Family: INET6, IP: ip.To16()}
		}
	} else if hw, err := net.ParseMAC(text); err == nil {
		addr = Address{Family: Link, HW: hw}
	} else {
		return Address{}, false
	}

	if *family != Unspecified && *family != addr.Family {
		return Address{}, false
	}
	if !addr.Family.Supported() {
		return Address{}, false
	}

	*family = addr.Family
	return addr, true
}

// ParsePrefixLength converts a decimal bit count into a mask for family.
func ParsePrefixLength(family Family, text string) (Address, bool) {
	n, err := strconv.ParseUint(text, 10, 16)
	if err != nil {
		return Address{}, false
	}
	return MaskFromPrefix(family, int(n))
}
