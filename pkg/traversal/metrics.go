package traversal

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Chunk outcomes used as the "outcome" label of ChunksProcessed.
const (
	OutcomeWritten     = "written"
	OutcomeVisited     = "visited"
	OutcomeAbsent      = "absent"
	OutcomeReadError   = "read_error"
	OutcomeDecodeError = "decode_error"
	OutcomeWriteError  = "write_error"
)

// Unit outcomes used as the "outcome" label of UnitsProcessed.
const (
	UnitCompleted   = "completed"
	UnitFailed      = "failed"
	UnitInterrupted = "interrupted"
)

// Metrics holds all Prometheus metrics for the traversal engine.
type Metrics struct {
	ChunksProcessed   *prometheus.CounterVec
	MalformedSections prometheus.Counter
	UnitsProcessed    *prometheus.CounterVec
	Progress          prometheus.Gauge
}

// NewMetrics creates and registers all metrics with the provided registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	chunks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "convertisseur_chunks_processed_total",
		Help: "Total chunks handled, by outcome",
	}, []string{"outcome"})

	malformed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "convertisseur_malformed_sections_total",
		Help: "Total sections skipped because their arrays were missing or truncated",
	})

	units := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "convertisseur_units_processed_total",
		Help: "Total regions handled, by outcome",
	}, []string{"outcome"})

	progress := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "convertisseur_progress_ratio",
		Help: "Fraction of regions completed in the current run",
	})

	reg.MustRegister(chunks, malformed, units, progress)

	return &Metrics{
		ChunksProcessed:   chunks,
		MalformedSections: malformed,
		UnitsProcessed:    units,
		Progress:          progress,
	}
}
