package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for character operations.
// Tracks mutations, import sizes and store operation durations.
type Metrics struct {
	Inserted        prometheus.Counter
	Deleted         prometheus.Counter
	Imports         prometheus.Counter
	ImportedRecords prometheus.Gauge
	StoreErrors     *prometheus.CounterVec
	OpDuration      *prometheus.HistogramVec
}

// New creates a new Metrics instance registered on reg (default registry when nil).
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		Inserted: factory.NewCounter(prometheus.CounterOpts{
			Name: "potterdex_characters_inserted_total",
			Help: "Total number of characters inserted through the form",
		}),
		Deleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "potterdex_characters_deleted_total",
			Help: "Total number of characters actually removed by delete requests",
		}),
		Imports: factory.NewCounter(prometheus.CounterOpts{
			Name: "potterdex_imports_total",
			Help: "Total number of completed seed imports",
		}),
		ImportedRecords: factory.NewGauge(prometheus.GaugeOpts{
			Name: "potterdex_last_import_records",
			Help: "Number of records written by the most recent import",
		}),
		StoreErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "potterdex_store_errors_total",
			Help: "Store failures by operation",
		}, []string{"op"}),
		OpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "potterdex_character_op_duration_seconds",
			Help:    "Duration of character service operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 5},
		}, []string{"op"}),
	}
}

// IncrementInserted records a successful insert.
func (m *Metrics) IncrementInserted() {
	m.Inserted.Inc()
}

// IncrementDeleted records a delete that removed a record.
func (m *Metrics) IncrementDeleted() {
	m.Deleted.Inc()
}

// RecordImport records a completed import of n records.
func (m *Metrics) RecordImport(n int) {
	m.Imports.Inc()
	m.ImportedRecords.Set(float64(n))
}

// IncrementStoreError records a failed store call for op.
func (m *Metrics) IncrementStoreError(op string) {
	m.StoreErrors.WithLabelValues(op).Inc()
}

// ObserveOp records the duration of op.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveOp(op string, start time.Time) {
	m.OpDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
