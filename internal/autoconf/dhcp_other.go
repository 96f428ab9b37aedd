//go:build !linux

package autoconf

import (
	"context"
	"time"

	"grimm.is/ifconf/internal/clock"
	"grimm.is/ifconf/internal/errors"
)

// DHCPWorker is only implemented on Linux.
type DHCPWorker struct {
	Timeout time.Duration
	Store   *LeaseStore
	Clock   clock.Clock
}

func (w *DHCPWorker) Acquire(ctx context.Context, iface string) (*Lease, error) {
	return nil, errors.New(errors.KindUnsupported, "DHCP is only supported on Linux")
}

func (w *DHCPWorker) Renew(ctx context.Context, lease *Lease) (*Lease, error) {
	return nil, errors.New(errors.KindUnsupported, "DHCP is only supported on Linux")
}
