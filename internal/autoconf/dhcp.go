package autoconf

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/insomniacslk/dhcp/dhcpv4"

	"grimm.is/ifconf/internal/errors"
	"grimm.is/ifconf/internal/netaddr"
	"grimm.is/ifconf/internal/netif"
)

// leaseFromDHCP converts an ACK into a Lease obtained at now.
func leaseFromDHCP(iface string, ack *dhcpv4.DHCPv4, now time.Time) (*Lease, error) {
	if ack == nil || ack.YourIPAddr == nil || ack.YourIPAddr.IsUnspecified() {
		return nil, errors.New(errors.KindOperation, "DHCP reply carries no address")
	}
	addr := netaddr.FromIP(ack.YourIPAddr)
	if addr.Family != netaddr.INET {
		return nil, errors.Errorf(errors.KindOperation, "DHCP reply carries non-inet address %s", ack.YourIPAddr)
	}

	mask := netaddr.FromMask(netaddr.INET, ack.SubnetMask())
	if mask.IsEmpty() {
		mask = netaddr.DefaultMask(addr)
	}
	entry := netif.AddressEntry{
		Address:   addr,
		Mask:      mask,
		Broadcast: netaddr.Broadcast(addr, mask),
	}

	lease := &Lease{
		Interface:  iface,
		Family:     netaddr.INET,
		Addresses:  []netif.AddressEntry{entry},
		Duration:   ack.IPAddressLeaseTime(0),
		Renew:      ack.IPAddressRenewalTime(0),
		ObtainedAt: now,
	}
	if routers := ack.Router(); len(routers) > 0 {
		lease.Gateway = netaddr.FromIP(routers[0])
	}
	if id := ack.ServerIdentifier(); id != nil {
		lease.Server = id.String()
	}
	return lease, nil
}

// SavedLease is a DHCP lease as persisted between daemon runs.
type SavedLease struct {
	OfferPacket []byte    `json:"offer_packet,omitempty"`
	ACKPacket   []byte    `json:"ack_packet"`
	ObtainedAt  time.Time `json:"obtained_at"`
}

// LeaseStore keeps one SavedLease per interface under Dir.
type LeaseStore struct {
	Dir string
}

func (s *LeaseStore) path(iface string) string {
	return filepath.Join(s.Dir, fmt.Sprintf("dhcp_client_%s.json", iface))
}

// Save persists the packets of a lease obtained at obtainedAt.
func (s *LeaseStore) Save(iface string, offer, ack *dhcpv4.DHCPv4, obtainedAt time.Time) error {
	if ack == nil {
		return nil
	}
	sl := SavedLease{
		ACKPacket:  ack.ToBytes(),
		ObtainedAt: obtainedAt,
	}
	if offer != nil {
		sl.OfferPacket = offer.ToBytes()
	}
	data, err := json.Marshal(sl)
	if err != nil {
		return errors.Wrap(err, errors.KindOperation, "failed to marshal lease")
	}
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return errors.Wrapf(err, errors.KindOperation, "failed to create %s", s.Dir)
	}
	if err := os.WriteFile(s.path(iface), data, 0644); err != nil {
		return errors.Wrap(err, errors.KindOperation, "failed to save lease")
	}
	return nil
}

// Load returns the saved lease for iface. A missing file is KindNotFound.
func (s *LeaseStore) Load(iface string) (*SavedLease, error) {
	data, err := os.ReadFile(s.path(iface))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Errorf(errors.KindNotFound, "no saved lease for %s", iface)
		}
		return nil, errors.Wrap(err, errors.KindOperation, "failed to read lease")
	}
	var sl SavedLease
	if err := json.Unmarshal(data, &sl); err != nil {
		return nil, errors.Wrap(err, errors.KindParse, "corrupt lease file")
	}
	return &sl, nil
}

// Valid decodes a saved lease and reports whether it is still usable at now.
func (sl *SavedLease) Valid(now time.Time) (offer, ack *dhcpv4.DHCPv4, ok bool) {
	ack, err := dhcpv4.FromBytes(sl.ACKPacket)
	if err != nil {
		return nil, nil, false
	}
	if len(sl.OfferPacket) > 0 {
		offer, _ = dhcpv4.FromBytes(sl.OfferPacket)
	}
	if now.Sub(sl.ObtainedAt) >= ack.IPAddressLeaseTime(0) {
		return nil, nil, false
	}
	return offer, ack, true
}

// Remove deletes the saved lease for iface.
func (s *LeaseStore) Remove(iface string) error {
	if err := os.Remove(s.path(iface)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
