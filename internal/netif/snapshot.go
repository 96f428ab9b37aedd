package netif

import "grimm.is/ifconf/internal/netaddr"

// Snapshot copies the interface table reachable through r into a new Sim.
// Reads that fail leave the field at its zero value; only listing the
// interfaces themselves must succeed.
func Snapshot(r *Roster) (*Sim, error) {
	names, err := r.Names()
	if err != nil {
		return nil, err
	}

	sim := NewSim()
	for _, name := range names {
		iface := r.Interface(name)
		l := SimLink{Name: name}

		l.Index, _ = iface.Index()
		l.Flags, _ = iface.Flags()
		l.MTU, _ = iface.MTU()
		l.Metric, _ = iface.Metric()
		l.LinkLevel, _ = iface.HardwareAddress()
		l.Stats, _ = iface.Stats()
		if m, err := iface.Media(); err == nil {
			l.Media, l.HasMedia = m, true
		}
		l.Addresses, _ = iface.Addresses()
		l.Routes, _ = iface.Routes(netaddr.Unspecified)

		sim.Seed(l)
	}
	return sim, nil
}
