package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/colonyops/violations/internal/core/eventbus"
	"github.com/colonyops/violations/internal/core/violation"
)

// Metrics exposes ledger state as Prometheus gauges and counts store
// operations. It owns a private registry so it can be written as a
// node_exporter textfile without process collectors.
type Metrics struct {
	registry   *prometheus.Registry
	records    *prometheus.GaugeVec
	total      prometheus.Gauge
	resolved   prometheus.Gauge
	active     prometheus.Gauge
	operations *prometheus.CounterVec
}

// NewMetrics registers the ledger collectors on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		records: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "violations",
			Name:      "records",
			Help:      "Number of violation records by status.",
		}, []string{"status"}),
		total: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "violations",
			Name:      "records_total",
			Help:      "Total number of violation records.",
		}),
		resolved: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "violations",
			Name:      "resolved_percent",
			Help:      "Share of records resolved, rounded to a whole percent.",
		}),
		active: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "violations",
			Name:      "active_records",
			Help:      "Records that are open or in progress.",
		}),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "violations",
			Name:      "operations_total",
			Help:      "Ledger operations observed in this process, by event.",
		}, []string{"event"}),
	}

	m.registry.MustRegister(m.records, m.total, m.resolved, m.active, m.operations)
	m.Observe(violation.Stats{})
	return m
}

// Registry returns the registry holding the ledger collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Observe sets the gauges from stats.
func (m *Metrics) Observe(stats violation.Stats) {
	for _, s := range violation.Statuses {
		m.records.WithLabelValues(string(s)).Set(float64(stats.Count(s)))
	}
	m.total.Set(float64(stats.Total))
	m.resolved.Set(float64(stats.PercentResolved()))
	m.active.Set(float64(stats.Active()))
}

// Subscribe counts every ledger event and refreshes the gauges from the
// snapshot it carries.
func (m *Metrics) Subscribe(bus *eventbus.EventBus) {
	bus.SubscribeAll(func(event eventbus.Event, payload any) {
		if event == eventbus.EventNotificationPublish {
			return
		}
		m.operations.WithLabelValues(string(event)).Inc()
		if snap, ok := eventbus.SnapshotOf(payload); ok {
			m.Observe(snap.Stats)
		}
	})
}

// WriteTextfile writes the registry in the text exposition format. The
// target must end in .prom for node_exporter to pick it up.
func (m *Metrics) WriteTextfile(path string) error {
	if !strings.HasSuffix(path, ".prom") {
		return fmt.Errorf("metrics textfile %q must end in .prom", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create metrics dir: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
