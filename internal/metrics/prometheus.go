package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	once     sync.Once
	registry *Registry
)

// Registry holds the auto-configuration daemon's metrics.
type Registry struct {
	reg *prometheus.Registry

	// Auto-configuration
	AutoconfRequests *prometheus.CounterVec
	AutoconfDuration *prometheus.HistogramVec
	LeasesActive     prometheus.Gauge
	LeaseRenewals    *prometheus.CounterVec

	// Interface counters, refreshed by the Collector
	InterfaceRxBytes   *prometheus.GaugeVec
	InterfaceTxBytes   *prometheus.GaugeVec
	InterfaceRxPackets *prometheus.GaugeVec
	InterfaceTxPackets *prometheus.GaugeVec
	InterfaceErrors    *prometheus.GaugeVec
	InterfaceUp        *prometheus.GaugeVec
}

// Get returns the process-wide registry, creating it if necessary.
func Get() *Registry {
	once.Do(func() {
		registry = NewRegistry()
	})
	return registry
}

// NewRegistry returns a registry backed by its own prometheus.Registry.
func NewRegistry() *Registry {
	r := &Registry{reg: prometheus.NewRegistry()}
	f := promauto.With(r.reg)

	r.AutoconfRequests = f.NewCounterVec(prometheus.CounterOpts{
		Name: "ifconf_autoconf_requests_total",
		Help: "Total auto-configuration requests",
	}, []string{"family", "result"})

	r.AutoconfDuration = f.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ifconf_autoconf_duration_seconds",
		Help:    "Time taken to auto-configure an interface",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 20, 30},
	}, []string{"family"})

	r.LeasesActive = f.NewGauge(prometheus.GaugeOpts{
		Name: "ifconf_autoconf_leases_active",
		Help: "Interfaces currently holding an auto-configured address",
	})

	r.LeaseRenewals = f.NewCounterVec(prometheus.CounterOpts{
		Name: "ifconf_autoconf_renewals_total",
		Help: "Total lease renewals",
	}, []string{"interface", "result"})

	r.InterfaceRxBytes = f.NewGaugeVec(prometheus.GaugeOpts{
		Name: "ifconf_interface_rx_bytes",
		Help: "Bytes received on interface",
	}, []string{"interface"})

	r.InterfaceTxBytes = f.NewGaugeVec(prometheus.GaugeOpts{
		Name: "ifconf_interface_tx_bytes",
		Help: "Bytes transmitted on interface",
	}, []string{"interface"})

	r.InterfaceRxPackets = f.NewGaugeVec(prometheus.GaugeOpts{
		Name: "ifconf_interface_rx_packets",
		Help: "Packets received on interface",
	}, []string{"interface"})

	r.InterfaceTxPackets = f.NewGaugeVec(prometheus.GaugeOpts{
		Name: "ifconf_interface_tx_packets",
		Help: "Packets transmitted on interface",
	}, []string{"interface"})

	r.InterfaceErrors = f.NewGaugeVec(prometheus.GaugeOpts{
		Name: "ifconf_interface_errors",
		Help: "Interface errors",
	}, []string{"interface", "direction"})

	r.InterfaceUp = f.NewGaugeVec(prometheus.GaugeOpts{
		Name: "ifconf_interface_up",
		Help: "Whether the interface is administratively up",
	}, []string{"interface"})

	return r
}

// RecordAutoconf records one auto-configuration request.
func (r *Registry) RecordAutoconf(family string, seconds float64, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	r.AutoconfRequests.WithLabelValues(family, result).Inc()
	r.AutoconfDuration.WithLabelValues(family).Observe(seconds)
}

// RecordRenewal records one lease renewal attempt.
func (r *Registry) RecordRenewal(iface string, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	r.LeaseRenewals.WithLabelValues(iface, result).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}

// Gatherer exposes the underlying registry.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}
