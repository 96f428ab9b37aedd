//go:build linux

package netif

import "github.com/vishvananda/netlink"

// KernelOpener opens channels to the running kernel in the current network
// namespace.
type KernelOpener struct{}

func (KernelOpener) Open() (Channel, error) {
	return &kernelChannel{
		openNetlink: func() (Netlinker, error) {
			h, err := netlink.NewHandle()
			if err != nil {
				return nil, err
			}
			return h, nil
		},
		openIfreq: func() (ifreqDriver, error) {
			s, err := openIfreqSocket()
			if err != nil {
				return nil, err
			}
			return s, nil
		},
		openMedia: func() (mediaDriver, error) {
			m, err := openEthtool()
			if err != nil {
				return nil, err
			}
			return m, nil
		},
	}, nil
}
