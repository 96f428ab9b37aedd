package autoconf

import (
	"time"

	"grimm.is/ifconf/internal/netaddr"
	"grimm.is/ifconf/internal/netif"
)

// Lease is the outcome of one acquisition.
type Lease struct {
	Interface  string
	Family     netaddr.Family
	Addresses  []netif.AddressEntry
	Gateway    netaddr.Address
	Server     string
	Duration   time.Duration
	Renew      time.Duration
	ObtainedAt time.Time

	// state is private to the Worker that produced the lease.
	state any
}

// Expired reports whether the lease's validity has run out at now. A zero
// Duration never expires.
func (l *Lease) Expired(now time.Time) bool {
	return l.Duration > 0 && !now.Before(l.ObtainedAt.Add(l.Duration))
}

// renewAfter is how long after now the next renewal is due.
func (l *Lease) renewAfter(now time.Time) time.Duration {
	t1 := l.Renew
	if t1 <= 0 {
		if l.Duration > 0 {
			t1 = l.Duration / 2
		} else {
			t1 = time.Hour
		}
	}
	wait := t1 - now.Sub(l.ObtainedAt)
	if wait < time.Second {
		wait = time.Second
	}
	return wait
}

// LeaseInfo is the wire form of a Lease.
type LeaseInfo struct {
	Interface  string
	Family     string
	Addresses  []string
	Gateway    string
	Server     string
	ObtainedAt time.Time
	Expires    time.Time
}

func (l *Lease) info() LeaseInfo {
	out := LeaseInfo{
		Interface:  l.Interface,
		Family:     l.Family.String(),
		Server:     l.Server,
		ObtainedAt: l.ObtainedAt,
	}
	for _, e := range l.Addresses {
		out.Addresses = append(out.Addresses, e.Address.IPNet(e.Mask).String())
	}
	if !l.Gateway.IsEmpty() {
		out.Gateway = l.Gateway.String()
	}
	if l.Duration > 0 {
		out.Expires = l.ObtainedAt.Add(l.Duration)
	}
	return out
}

// ConfigureArgs asks the service to configure one interface.
type ConfigureArgs struct {
	RequestID string
	Interface string
	Family    int
	// Timeout bounds the server-side work; zero uses the server default.
	Timeout time.Duration
}

// ConfigureReply carries the result of a ConfigureArgs request. Errors are
// returned in-band so their kind survives the trip.
type ConfigureReply struct {
	RequestID string
	Lease     LeaseInfo
	Error     string
	ErrorKind int
}

// Empty is an empty RPC argument.
type Empty struct{}

// LeasesReply lists the leases the service maintains.
type LeasesReply struct {
	Leases []LeaseInfo
}
