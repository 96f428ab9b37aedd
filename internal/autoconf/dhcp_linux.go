//go:build linux

package autoconf

import (
	"context"
	"time"

	"github.com/insomniacslk/dhcp/dhcpv4/nclient4"

	"grimm.is/ifconf/internal/clock"
	"grimm.is/ifconf/internal/errors"
	"grimm.is/ifconf/internal/logging"
)

// DHCPWorker acquires inet leases with a DHCPv4 DORA exchange.
type DHCPWorker struct {
	// Timeout bounds each exchange inside nclient4.
	Timeout time.Duration
	Store   *LeaseStore
	Clock   clock.Clock
}

type dhcpState struct {
	client *nclient4.Client
	lease  *nclient4.Lease
}

func (w *DHCPWorker) now() time.Time {
	if w.Clock == nil {
		return time.Now()
	}
	return w.Clock.Now()
}

func (w *DHCPWorker) Acquire(ctx context.Context, iface string) (*Lease, error) {
	log := logging.WithComponent("dhcp")

	var opts []nclient4.ClientOpt
	if w.Timeout > 0 {
		opts = append(opts, nclient4.WithTimeout(w.Timeout))
	}
	client, err := nclient4.New(iface, opts...)
	if err != nil {
		return nil, errors.Wrapf(err, errors.KindOperation, "failed to create DHCP client for %s", iface)
	}

	if w.Store != nil {
		if sl, err := w.Store.Load(iface); err == nil {
			if offer, ack, ok := sl.Valid(w.now()); ok {
				log.Info("reusing saved lease", "interface", iface)
				lease, err := leaseFromDHCP(iface, ack, sl.ObtainedAt)
				if err == nil {
					lease.state = &dhcpState{client: client, lease: &nclient4.Lease{Offer: offer, ACK: ack, CreationTime: sl.ObtainedAt}}
					return lease, nil
				}
			}
		}
	}

	nl, err := client.Request(ctx)
	if err != nil {
		client.Close()
		if ctx.Err() != nil {
			return nil, errors.Wrapf(err, errors.KindTimeout, "no DHCP offer on %s", iface)
		}
		return nil, errors.Wrapf(err, errors.KindOperation, "DHCP handshake failed on %s", iface)
	}
	return w.finish(iface, client, nl)
}

func (w *DHCPWorker) finish(iface string, client *nclient4.Client, nl *nclient4.Lease) (*Lease, error) {
	now := w.now()
	lease, err := leaseFromDHCP(iface, nl.ACK, now)
	if err != nil {
		client.Close()
		return nil, err
	}
	lease.state = &dhcpState{client: client, lease: nl}
	if w.Store != nil {
		if err := w.Store.Save(iface, nl.Offer, nl.ACK, now); err != nil {
			logging.WithComponent("dhcp").Warn("failed to save lease", "interface", iface, "error", err)
		}
	}
	return lease, nil
}

func (w *DHCPWorker) Renew(ctx context.Context, lease *Lease) (*Lease, error) {
	st, ok := lease.state.(*dhcpState)
	if !ok {
		return nil, errors.New(errors.KindOperation, "lease was not produced by DHCP")
	}
	nl, err := st.client.Renew(ctx, st.lease)
	if err != nil {
		return nil, errors.Wrapf(err, errors.KindOperation, "DHCP renewal failed on %s", lease.Interface)
	}
	return w.finish(lease.Interface, st.client, nl)
}

func (s *dhcpState) Close() error {
	return s.client.Close()
}
