package autoconf

import (
	"context"
	"net"
	"net/netip"
	"time"

	"github.com/mdlayher/ndp"

	"grimm.is/ifconf/internal/clock"
	"grimm.is/ifconf/internal/errors"
	"grimm.is/ifconf/internal/logging"
	"grimm.is/ifconf/internal/netaddr"
	"grimm.is/ifconf/internal/netif"
)

// solicitInterval is the gap between router solicitations.
const solicitInterval = 4 * time.Second

// RAWorker configures inet6 addresses from router advertisements.
type RAWorker struct {
	// Timeout bounds one solicitation round when ctx has no deadline.
	Timeout time.Duration
	Sysctl  SystemController
	Clock   clock.Clock
}

func (w *RAWorker) now() time.Time {
	if w.Clock == nil {
		return time.Now()
	}
	return w.Clock.Now()
}

func (w *RAWorker) Acquire(ctx context.Context, iface string) (*Lease, error) {
	log := logging.WithComponent("ra")

	ifi, err := net.InterfaceByName(iface)
	if err != nil {
		return nil, errors.Wrapf(err, errors.KindNotFound, "interface %s does not exist", iface)
	}

	// The kernel would otherwise configure the same prefixes behind our back.
	if w.Sysctl != nil {
		if err := w.Sysctl.WriteSysctl(acceptRAPath(iface), "0"); err != nil {
			log.Debug("disabling accept_ra failed", "interface", iface, "error", err)
		}
	}

	if w.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.Timeout)
		defer cancel()
	}

	conn, _, err := ndp.Listen(ifi, ndp.LinkLocal)
	if err != nil {
		return nil, errors.Wrapf(err, errors.KindOperation, "failed to listen on %s", iface)
	}
	defer conn.Close()

	rs := &ndp.RouterSolicitation{}
	if len(ifi.HardwareAddr) > 0 {
		rs.Options = []ndp.Option{&ndp.LinkLayerAddress{
			Direction: ndp.Source,
			Addr:      ifi.HardwareAddr,
		}}
	}

	for {
		if err := conn.WriteTo(rs, nil, netip.IPv6LinkLocalAllRouters()); err != nil {
			return nil, errors.Wrapf(err, errors.KindOperation, "failed to send router solicitation on %s", iface)
		}
		log.Debug("router solicitation sent", "interface", iface)

		deadline := time.Now().Add(solicitInterval)
		if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
			deadline = d
		}
		if err := conn.SetReadDeadline(deadline); err != nil {
			return nil, errors.Wrap(err, errors.KindOperation, "failed to set read deadline")
		}

		for {
			msg, _, src, err := conn.ReadFrom()
			if err != nil {
				break
			}
			ra, ok := msg.(*ndp.RouterAdvertisement)
			if !ok {
				continue
			}
			lease, err := leaseFromRA(iface, ra, src, ifi.HardwareAddr, w.now())
			if err != nil {
				log.Debug("ignoring router advertisement", "interface", iface, "router", src.String(), "error", err)
				continue
			}
			return lease, nil
		}

		if ctx.Err() != nil {
			return nil, errors.Errorf(errors.KindTimeout, "no router advertisement on %s", iface)
		}
	}
}

// Renew solicits again; routers answer with the current prefixes.
func (w *RAWorker) Renew(ctx context.Context, lease *Lease) (*Lease, error) {
	return w.Acquire(ctx, lease.Interface)
}

// leaseFromRA derives SLAAC addresses from the autonomous /64 prefixes of
// ra. The router becomes the gateway when it advertises a lifetime.
func leaseFromRA(iface string, ra *ndp.RouterAdvertisement, router netip.Addr, hw net.HardwareAddr, now time.Time) (*Lease, error) {
	id, ok := eui64(hw)
	if !ok {
		return nil, errors.Errorf(errors.KindUnsupported, "cannot derive an interface identifier from %q", hw.String())
	}

	lease := &Lease{
		Interface:  iface,
		Family:     netaddr.INET6,
		Server:     router.String(),
		ObtainedAt: now,
	}
	mask, _ := netaddr.MaskFromPrefix(netaddr.INET6, 64)

	for _, opt := range ra.Options {
		pi, ok := opt.(*ndp.PrefixInformation)
		if !ok || !pi.AutonomousAddressConfiguration || pi.PrefixLength != 64 || pi.ValidLifetime == 0 {
			continue
		}
		if pi.Prefix.IsLinkLocalUnicast() || !pi.Prefix.Is6() {
			continue
		}
		p := pi.Prefix.As16()
		copy(p[8:], id[:])
		lease.Addresses = append(lease.Addresses, netif.AddressEntry{
			Address: netaddr.FromIP(net.IP(p[:])),
			Mask:    mask,
		})
		if pi.ValidLifetime != ndp.Infinity && (lease.Duration == 0 || pi.ValidLifetime < lease.Duration) {
			lease.Duration = pi.ValidLifetime
		}
	}
	if len(lease.Addresses) == 0 {
		return nil, errors.New(errors.KindOperation, "router advertisement carries no autonomous /64 prefix")
	}
	if ra.RouterLifetime > 0 {
		lease.Gateway = netaddr.Address{Family: netaddr.INET6, IP: net.IP(router.WithZone("").AsSlice())}
	}
	return lease, nil
}

// eui64 builds a modified EUI-64 interface identifier from a MAC address.
func eui64(hw net.HardwareAddr) ([8]byte, bool) {
	var id [8]byte
	switch len(hw) {
	case 6:
		copy(id[:3], hw[:3])
		id[3], id[4] = 0xff, 0xfe
		copy(id[5:], hw[3:])
	case 8:
		copy(id[:], hw)
	default:
		return id, false
	}
	id[0] ^= 0x02
	return id, true
}
