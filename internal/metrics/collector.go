// Package metrics exports the auto-configuration daemon's Prometheus
// metrics and periodically samples interface counters into them.
package metrics

import (
	"context"
	"sync"
	"time"

	"grimm.is/ifconf/internal/clock"
	"grimm.is/ifconf/internal/logging"
	"grimm.is/ifconf/internal/netif"
)

// InterfaceStats is the last sample taken for one interface.
type InterfaceStats struct {
	Name      string `json:"name"`
	RxBytes   uint64 `json:"rx_bytes"`
	TxBytes   uint64 `json:"tx_bytes"`
	RxPackets uint64 `json:"rx_packets"`
	TxPackets uint64 `json:"tx_packets"`
	RxErrors  uint64 `json:"rx_errors"`
	TxErrors  uint64 `json:"tx_errors"`
	LinkUp    bool   `json:"link_up"`
}

// Collector samples interface counters from a roster.
type Collector struct {
	registry *Registry
	roster   *netif.Roster
	logger   *logging.Logger
	interval time.Duration
	clock    clock.Clock

	mu         sync.RWMutex
	lastUpdate time.Time
	stats      map[string]*InterfaceStats

	cancel context.CancelFunc
	done   chan struct{}
}

// NewCollector returns a collector sampling roster every interval.
func NewCollector(registry *Registry, roster *netif.Roster, interval time.Duration) *Collector {
	return &Collector{
		registry: registry,
		roster:   roster,
		logger:   logging.WithComponent("metrics"),
		interval: interval,
		clock:    clock.RealClock{},
		stats:    make(map[string]*InterfaceStats),
	}
}

// Start samples once and then every interval until Stop or ctx ends.
func (c *Collector) Start(ctx context.Context) {
	ctx, c.cancel = context.WithCancel(ctx)
	c.done = make(chan struct{})

	go func() {
		defer close(c.done)
		for {
			c.Collect()
			select {
			case <-ctx.Done():
				return
			case <-c.clock.After(c.interval):
			}
		}
	}()
}

// Stop ends the sampling loop.
func (c *Collector) Stop() {
	if c.cancel == nil {
		return
	}
	c.cancel()
	<-c.done
}

// Collect takes one sample of every interface.
func (c *Collector) Collect() {
	names, err := c.roster.Names()
	if err != nil {
		c.logger.Warn("listing interfaces failed", "error", err)
		return
	}

	fresh := make(map[string]*InterfaceStats, len(names))
	for _, name := range names {
		iface := c.roster.Interface(name)
		st, err := iface.Stats()
		if err != nil {
			c.logger.Debug("reading statistics failed", "interface", name, "error", err)
			continue
		}
		flags, _ := iface.Flags()

		s := &InterfaceStats{
			Name:      name,
			RxBytes:   st.Receive.Bytes,
			TxBytes:   st.Send.Bytes,
			RxPackets: st.Receive.Packets,
			TxPackets: st.Send.Packets,
			RxErrors:  st.Receive.Errors,
			TxErrors:  st.Send.Errors,
			LinkUp:    flags&netif.FlagUp != 0,
		}
		fresh[name] = s

		r := c.registry
		r.InterfaceRxBytes.WithLabelValues(name).Set(float64(s.RxBytes))
		r.InterfaceTxBytes.WithLabelValues(name).Set(float64(s.TxBytes))
		r.InterfaceRxPackets.WithLabelValues(name).Set(float64(s.RxPackets))
		r.InterfaceTxPackets.WithLabelValues(name).Set(float64(s.TxPackets))
		r.InterfaceErrors.WithLabelValues(name, "rx").Set(float64(s.RxErrors))
		r.InterfaceErrors.WithLabelValues(name, "tx").Set(float64(s.TxErrors))
		up := 0.0
		if s.LinkUp {
			up = 1
		}
		r.InterfaceUp.WithLabelValues(name).Set(up)
	}

	c.mu.Lock()
	for name := range c.stats {
		if _, ok := fresh[name]; !ok {
			c.forget(name)
		}
	}
	c.stats = fresh
	c.lastUpdate = c.clock.Now()
	c.mu.Unlock()
}

// forget drops the series of a vanished interface.
func (c *Collector) forget(name string) {
	r := c.registry
	r.InterfaceRxBytes.DeleteLabelValues(name)
	r.InterfaceTxBytes.DeleteLabelValues(name)
	r.InterfaceRxPackets.DeleteLabelValues(name)
	r.InterfaceTxPackets.DeleteLabelValues(name)
	r.InterfaceErrors.DeleteLabelValues(name, "rx")
	r.InterfaceErrors.DeleteLabelValues(name, "tx")
	r.InterfaceUp.DeleteLabelValues(name)
}

// GetInterfaceStats returns a copy of the last sample.
func (c *Collector) GetInterfaceStats() map[string]InterfaceStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]InterfaceStats, len(c.stats))
	for k, v := range c.stats {
		out[k] = *v
	}
	return out
}

// GetLastUpdate returns when the last sample was taken.
func (c *Collector) GetLastUpdate() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastUpdate
}
