// Package config provides the unified configuration for sparsefeed loaders.
// A single LoaderConfig structure covers the parser engine, the chunk
// source, and observability, so every entry point takes the same shape.
package config

import (
	"fmt"
	"runtime"
)

// LoaderConfig configures one dataset read pass.
type LoaderConfig struct {
	// URI locates the dataset, e.g. a local path or s3://bucket/key
	URI string `yaml:"uri" json:"uri"`
	// Format selects the iterator implementation, e.g. "libsvm"
	Format string `yaml:"format" json:"format"`
	// PartIndex is this reader's partition of the dataset
	PartIndex int `yaml:"part_index" json:"part_index"`
	// NumParts is the total number of cooperating readers
	NumParts int `yaml:"num_parts" json:"num_parts"`

	// Performance settings control throughput and resource usage
	Performance PerformanceConfig `yaml:"performance" json:"performance"`

	// Observability settings for logging and metrics
	Observability ObservabilityConfig `yaml:"observability" json:"observability"`
}

// PerformanceConfig contains throughput-related settings.
type PerformanceConfig struct {
	// Workers is the parser worker pool size (0 = NumCPU)
	Workers int `yaml:"workers" json:"workers"`
	// ChunkSizeBytes is the target raw chunk size pulled per Next (0 = default)
	ChunkSizeBytes int `yaml:"chunk_size_bytes" json:"chunk_size_bytes"`
	// ReadBufferBytes sizes the chunk source's read buffer (0 = default)
	ReadBufferBytes int `yaml:"read_buffer_bytes" json:"read_buffer_bytes"`
	// MemoryMap maps local uncompressed input files instead of using pread
	MemoryMap bool `yaml:"memory_map" json:"memory_map"`
}

// ObservabilityConfig contains logging and metrics settings.
type ObservabilityConfig struct {
	// LogLevel sets the zap log level
	LogLevel string `yaml:"log_level" json:"log_level"`
	// EnableMetrics toggles prometheus metric updates in the parser
	EnableMetrics bool `yaml:"enable_metrics" json:"enable_metrics"`
}

// Default chunk sizing. 8 MiB keeps at most ~2x chunk bytes resident per
// Next while amortizing syscall and dispatch overhead.
const (
	DefaultChunkSizeBytes  = 8 << 20
	DefaultReadBufferBytes = 1 << 20
)

// NewLoaderConfig returns a LoaderConfig with defaults applied.
func NewLoaderConfig(uri, format string) *LoaderConfig {
	return &LoaderConfig{
		URI:      uri,
		Format:   format,
		NumParts: 1,
		Performance: PerformanceConfig{
			Workers:         runtime.NumCPU(),
			ChunkSizeBytes:  DefaultChunkSizeBytes,
			ReadBufferBytes: DefaultReadBufferBytes,
		},
		Observability: ObservabilityConfig{
			LogLevel:      "info",
			EnableMetrics: true,
		},
	}
}

// ApplyDefaults fills zero-valued fields with defaults.
func (c *LoaderConfig) ApplyDefaults() {
	if c.NumParts == 0 {
		c.NumParts = 1
	}
	if c.Performance.Workers == 0 {
		c.Performance.Workers = runtime.NumCPU()
	}
	if c.Performance.ChunkSizeBytes == 0 {
		c.Performance.ChunkSizeBytes = DefaultChunkSizeBytes
	}
	if c.Performance.ReadBufferBytes == 0 {
		c.Performance.ReadBufferBytes = DefaultReadBufferBytes
	}
	if c.Observability.LogLevel == "" {
		c.Observability.LogLevel = "info"
	}
}

// Validate checks the configuration for consistency.
func (c *LoaderConfig) Validate() error {
	if c.URI == "" {
		return fmt.Errorf("uri is required")
	}
	if c.NumParts < 1 {
		return fmt.Errorf("num_parts must be >= 1, got %d", c.NumParts)
	}
	if c.PartIndex < 0 || c.PartIndex >= c.NumParts {
		return fmt.Errorf("part_index %d out of range [0,%d)", c.PartIndex, c.NumParts)
	}
	if c.Performance.Workers < 0 {
		return fmt.Errorf("workers must be >= 0, got %d", c.Performance.Workers)
	}
	if c.Performance.ChunkSizeBytes < 0 {
		return fmt.Errorf("chunk_size_bytes must be >= 0, got %d", c.Performance.ChunkSizeBytes)
	}
	return nil
}
