//go:build linux

package netif

import (
	"golang.org/x/sys/unix"
)

// Metric ioctls; Linux answers the get with zero and rejects the set.
const (
	siocGIFMETRIC = 0x891d
	siocSIFMETRIC = 0x891e
)

var kernelFlags = []struct {
	flag Flags
	bits uint16
}{
	{FlagUp, unix.IFF_UP},
	{FlagBroadcast, unix.IFF_BROADCAST},
	{FlagLoopback, unix.IFF_LOOPBACK},
	{FlagLink, unix.IFF_RUNNING},
	{FlagNoARP, unix.IFF_NOARP},
	{FlagPromiscuous, unix.IFF_PROMISC},
	{FlagAllMulti, unix.IFF_ALLMULTI},
	{FlagAutoConfigured, unix.IFF_DYNAMIC},
}

// managedBits are the kernel bits SetFlags owns; all others are preserved.
var managedBits = func() uint16 {
	var m uint16
	for _, kf := range kernelFlags {
		m |= kf.bits
	}
	// Read-only in the kernel.
	return m &^ (unix.IFF_RUNNING | unix.IFF_LOOPBACK)
}()

func flagsFromKernel(raw uint16) Flags {
	var f Flags
	for _, kf := range kernelFlags {
		if raw&kf.bits != 0 {
			f |= kf.flag
		}
	}
	return f
}

func flagsToKernel(f Flags) uint16 {
	var raw uint16
	for _, kf := range kernelFlags {
		if f&kf.flag != 0 {
			raw |= kf.bits
		}
	}
	return raw
}

// ifreqSocket issues SIOC* ioctls on a datagram socket.
type ifreqSocket struct {
	fd int
}

func openIfreqSocket() (*ifreqSocket, error) {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_DGRAM|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return nil, err
	}
	return &ifreqSocket{fd: fd}, nil
}

func (s *ifreqSocket) rawFlags(name string) (uint16, error) {
	ifr, err := unix.NewIfreq(name)
	if err != nil {
		return 0, err
	}
	if err := unix.IoctlIfreq(s.fd, unix.SIOCGIFFLAGS, ifr); err != nil {
		return 0, err
	}
	return ifr.Uint16(), nil
}

func (s *ifreqSocket) Flags(name string) (Flags, error) {
	raw, err := s.rawFlags(name)
	if err != nil {
		return 0, err
	}
	return flagsFromKernel(raw), nil
}

// SetFlags writes the managed bits of flags. AutoUp and Configuring have no
// kernel representation and are dropped.
func (s *ifreqSocket) SetFlags(name string, flags Flags) error {
	raw, err := s.rawFlags(name)
	if err != nil {
		return err
	}
	raw = (raw &^ managedBits) | (flagsToKernel(flags) & managedBits)

	ifr, err := unix.NewIfreq(name)
	if err != nil {
		return err
	}
	ifr.SetUint16(raw)
	return unix.IoctlIfreq(s.fd, unix.SIOCSIFFLAGS, ifr)
}

func (s *ifreqSocket) Metric(name string) (int, error) {
	ifr, err := unix.NewIfreq(name)
	if err != nil {
		return 0, err
	}
	if err := unix.IoctlIfreq(s.fd, siocGIFMETRIC, ifr); err != nil {
		return 0, err
	}
	return int(int32(ifr.Uint32())), nil
}

func (s *ifreqSocket) SetMetric(name string, metric int) error {
	ifr, err := unix.NewIfreq(name)
	if err != nil {
		return err
	}
	ifr.SetUint32(uint32(int32(metric)))
	return unix.IoctlIfreq(s.fd, siocSIFMETRIC, ifr)
}

func (s *ifreqSocket) Close() error {
	return unix.Close(s.fd)
}
