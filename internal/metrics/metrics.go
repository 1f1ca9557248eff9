// Package metrics provides the Prometheus metrics for the creature catalog.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Seed anomaly kinds.
const (
	AnomalyUnknownType   = "unknown_type"
	AnomalyEmptyTypeSet  = "empty_type_set"
	AnomalyInvalidURL    = "invalid_url"
	AnomalyInvalidEntry  = "invalid_entry"
	AnomalyRejectedEntry = "rejected_entry"
)

// Catalog operation outcomes.
const (
	OutcomeOK       = "ok"
	OutcomeNotFound = "not_found"
	OutcomeInvalid  = "invalid"
	OutcomeConflict = "conflict"
	OutcomeError    = "error"
)

// Metrics holds the catalog collectors. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	SeedRuns       *prometheus.CounterVec
	SeedRecords    prometheus.Counter
	SeedAnomalies  *prometheus.CounterVec
	Operations     *prometheus.CounterVec
	CatalogRecords prometheus.Gauge

	registry *prometheus.Registry
}

// New creates the collectors and registers them with registry.
func New(registry *prometheus.Registry) (*Metrics, error) {
	m := &Metrics{
		SeedRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dexhub_seed_runs_total",
				Help: "Seed invocations partitioned by result (seeded, already_seeded, failed).",
			},
			[]string{"result"},
		),
		SeedRecords: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "dexhub_seed_records_total",
				Help: "Creatures written by the seeding pipeline.",
			},
		),
		SeedAnomalies: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dexhub_seed_anomalies_total",
				Help: "Tolerated per-entry seed anomalies partitioned by kind.",
			},
			[]string{"kind"},
		),
		Operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dexhub_catalog_operations_total",
				Help: "Catalog service operations partitioned by operation and outcome.",
			},
			[]string{"operation", "outcome"},
		),
		CatalogRecords: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "dexhub_catalog_records",
				Help: "Creatures in the catalog as of the last seed or delete.",
			},
		),
		registry: registry,
	}

	for _, c := range []prometheus.Collector{m.SeedRuns, m.SeedRecords, m.SeedAnomalies, m.Operations, m.CatalogRecords} {
		if err := registry.Register(c); err != nil {
			return nil, fmt.Errorf("registering catalog metrics: %w", err)
		}
	}
	return m, nil
}

// Registry returns the registry the collectors were registered with.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// SeedRun records the result of one seed invocation.
func (m *Metrics) SeedRun(result string, written int) {
	if m == nil {
		return
	}
	m.SeedRuns.WithLabelValues(result).Inc()
	m.SeedRecords.Add(float64(written))
}

// SeedAnomaly records a tolerated per-entry anomaly.
func (m *Metrics) SeedAnomaly(kind string) {
	if m == nil {
		return
	}
	m.SeedAnomalies.WithLabelValues(kind).Inc()
}

// Operation records a catalog operation outcome.
func (m *Metrics) Operation(op, outcome string) {
	if m == nil {
		return
	}
	m.Operations.WithLabelValues(op, outcome).Inc()
}

// SetRecords sets the catalog size gauge.
func (m *Metrics) SetRecords(n int) {
	if m == nil {
		return
	}
	m.CatalogRecords.Set(float64(n))
}
