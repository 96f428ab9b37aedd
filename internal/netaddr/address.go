package netaddr

import (
	"bytes"
	"math/bits"
	"net"
)

// Address is a typed network address. Masks are Addresses too.
type Address struct {
	Family Family
	IP     net.IP
	HW     net.HardwareAddr
	// Port is carried for completeness; nothing here sets it.
	Port uint16
}

// FromIP builds an Address from a net.IP, picking the family from its form.
func FromIP(ip net.IP) Address {
	if ip == nil {
		return Address{}
	}
	if v4 := ip.To4(); v4 != nil {
		return Address{Family: INET, IP: v4}
	}
	if v6 := ip.To16(); v6 != nil {
		return Address{Family: INET6, IP: v6}
	}
	return Address{}
}

// FromMask builds a mask Address of family f.
func FromMask(f Family, m net.IPMask) Address {
	if m == nil {
		return Address{}
	}
	return Address{Family: f, IP: net.IP(append([]byte(nil), m...))}
}

// IsEmpty reports whether the address was never set.
func (a Address) IsEmpty() bool {
	return a.Family == Unspecified && len(a.IP) == 0 && len(a.HW) == 0
}

// Equal compares family and payload.
func (a Address) Equal(b Address) bool {
	return a.Family == b.Family &&
		bytes.Equal(a.IP, b.IP) &&
		bytes.Equal(a.HW, b.HW) &&
		a.Port == b.Port
}

func (a Address) String() string {
	switch a.Family {
	case INET:
		return a.IP.To4().String()
	case INET6:
		if v4 := a.IP.To4(); v4 != nil {
			return "::ffff:" + v4.String()
		}
		return a.IP.To16().String()
	case Link:
		return a.HW.String()
	}
	return "-"
}

// Mask returns the address bytes as a net.IPMask.
func (a Address) Mask() net.IPMask {
	return net.IPMask(a.IP)
}

// PrefixLength counts the leading one bits of a mask. A non-contiguous mask
// yields -1.
func (a Address) PrefixLength() int {
	if len(a.IP) == 0 {
		return -1
	}
	n := 0
	seenZero := false
	for _, b := range []byte(a.IP) {
		if seenZero && b != 0 {
			return -1
		}
		ones := bits.LeadingZeros8(^b)
		if ones < 8 {
			if b<<uint(ones) != 0 {
				return -1
			}
			seenZero = true
		}
		n += ones
	}
	return n
}

// IPNet combines an address with a mask. An empty mask gives a host route
// length for the family.
func (a Address) IPNet(mask Address) *net.IPNet {
	if len(a.IP) == 0 {
		return nil
	}
	m := mask.Mask()
	if len(m) != len(a.IP) {
		m = net.CIDRMask(len(a.IP)*8, len(a.IP)*8)
	}
	return &net.IPNet{IP: a.IP, Mask: m}
}

// MaskFromPrefix returns the mask with n leading ones for family f.
func MaskFromPrefix(f Family, n int) (Address, bool) {
	af, ok := Describe(f)
	if !ok || n < 0 || n > af.Bits {
		return Address{}, false
	}
	return FromMask(f, net.CIDRMask(n, af.Bits)), true
}

// DefaultMask is the mask the kernel would have assumed before CIDR: the
// classful mask for inet and /64 for inet6.
func DefaultMask(a Address) Address {
	switch a.Family {
	case INET:
		return FromMask(INET, a.IP.To4().DefaultMask())
	case INET6:
		m, _ := MaskFromPrefix(INET6, 64)
		return m
	}
	return Address{}
}

// Broadcast derives the directed broadcast address of a/mask.
func Broadcast(a, mask Address) Address {
	if a.Family != INET || len(mask.IP) != 4 {
		return Address{}
	}
	ip := a.IP.To4()
	out := make(net.IP, 4)
	for i := range out {
		out[i] = ip[i] | ^mask.IP[i]
	}
	return Address{Family: INET, IP: out}
}
