//go:build !linux

package netif

import "grimm.is/ifconf/internal/errors"

// KernelOpener is unavailable off Linux.
type KernelOpener struct{}

func (KernelOpener) Open() (Channel, error) {
	return nil, errors.New(errors.KindUnsupported, "interface configuration requires Linux")
}
