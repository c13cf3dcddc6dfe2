// Package metrics provides prometheus instrumentation for sparsefeed.
// The parser engine records bytes consumed, rows produced, and per-chunk
// parse latency; callers scrape them through the default registry.
package metrics

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BytesRead tracks raw bytes consumed from chunk sources.
	BytesRead = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sparsefeed_bytes_read_total",
			Help: "Total bytes consumed from chunk sources",
		},
		[]string{"format"},
	)

	// RowsParsed tracks rows produced by the parser engine.
	RowsParsed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sparsefeed_rows_parsed_total",
			Help: "Total sparse rows parsed",
		},
		[]string{"format"},
	)

	// ChunksParsed tracks chunks fully parsed and merged.
	ChunksParsed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sparsefeed_chunks_parsed_total",
			Help: "Total chunks parsed and merged",
		},
		[]string{"format"},
	)

	// ParseErrors tracks fatal parse conditions by error type.
	ParseErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sparsefeed_parse_errors_total",
			Help: "Total fatal parse errors",
		},
		[]string{"format", "error_type"},
	)

	// ChunkParseDuration tracks wall time per chunk (fan-out through merge).
	ChunkParseDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sparsefeed_chunk_parse_duration_seconds",
			Help:    "Per-chunk parse latency from dispatch through merge",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
		},
		[]string{"format"},
	)
)

// Collector records parser metrics for one format label. A nil *Collector
// is valid and records nothing, so metric updates can be disabled by
// configuration without branching at every call site.
type Collector struct {
	format string
	bytes  prometheus.Counter
	rows   prometheus.Counter
	chunks prometheus.Counter
	dur    prometheus.Observer
}

// NewCollector creates a collector bound to a format label.
func NewCollector(format string) *Collector {
	return &Collector{
		format: format,
		bytes:  BytesRead.WithLabelValues(format),
		rows:   RowsParsed.WithLabelValues(format),
		chunks: ChunksParsed.WithLabelValues(format),
		dur:    ChunkParseDuration.WithLabelValues(format),
	}
}

// ObserveChunk records one merged chunk.
func (c *Collector) ObserveChunk(bytes, rows int, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.bytes.Add(float64(bytes))
	c.rows.Add(float64(rows))
	c.chunks.Inc()
	c.dur.Observe(elapsed.Seconds())
}

// ObserveError records a fatal parse condition.
func (c *Collector) ObserveError(errType string) {
	if c == nil {
		return
	}
	ParseErrors.WithLabelValues(c.format, errType).Inc()
}

// ThroughputTracker computes a running MB/sec figure for progress logging.
type ThroughputTracker struct {
	start time.Time
	bytes int64
}

// NewThroughputTracker starts tracking from now.
func NewThroughputTracker() *ThroughputTracker {
	return &ThroughputTracker{start: time.Now()}
}

// Add accumulates bytes processed.
func (t *ThroughputTracker) Add(n int64) {
	atomic.AddInt64(&t.bytes, n)
}

// Set replaces the byte count with an absolute value.
func (t *ThroughputTracker) Set(n int64) {
	atomic.StoreInt64(&t.bytes, n)
}

// MBPerSec returns megabytes processed per second since construction.
func (t *ThroughputTracker) MBPerSec() float64 {
	elapsed := time.Since(t.start).Seconds()
	if elapsed <= 0 {
		return 0
	}
	return float64(atomic.LoadInt64(&t.bytes)) / (1 << 20) / elapsed
}
