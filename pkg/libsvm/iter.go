// Package libsvm implements a concurrent parser for the LIBSVM text format.
// It turns a record-aligned chunk source into validated sparse row blocks
// using a fixed worker pool, preserving source row order, and exposes the
// result through a pull-style iterator.
package libsvm

import (
	"context"

	"github.com/ajitpratap0/sparsefeed/pkg/config"
	"github.com/ajitpratap0/sparsefeed/pkg/errors"
	"github.com/ajitpratap0/sparsefeed/pkg/rowblock"
	"github.com/ajitpratap0/sparsefeed/pkg/split"
)

// DataIter is the uniform pull contract over batched data.
//
// Usage:
//
//	it.BeforeFirst()
//	for {
//		ok, err := it.Next()
//		if err != nil { ... }
//		if !ok { break }
//		batch, _ := it.Value()
//		// computations
//	}
type DataIter[T any] interface {
	// BeforeFirst rewinds the iterator; the next Next starts a fresh pass.
	BeforeFirst() error
	// Next advances to the next batch, returning false at end of input.
	Next() (bool, error)
	// Value returns the batch produced by the most recent successful Next.
	// It fails with not_ready before the first successful Next.
	Value() (T, error)
}

// RowBlockIter is a DataIter over row blocks with streaming accounting.
type RowBlockIter[I rowblock.Index] interface {
	DataIter[rowblock.Block[I]]
	// NumCol returns the current known feature-space dimensionality,
	// max feature id + 1 across all rows seen so far. This is a streaming
	// estimate and may grow as more data is read.
	NumCol() uint64
	// BytesRead returns the cumulative bytes consumed from the chunk
	// source, for progress and throughput reporting only.
	BytesRead() int64
	Close() error
}

// Iterator type tags accepted by Create.
const (
	// FormatLibSVM streams row blocks chunk by chunk.
	FormatLibSVM = "libsvm"
	// FormatLibSVMInMemory drains the whole input into one block up front.
	FormatLibSVMInMemory = "libsvm-mem"
)

// Create constructs a row-block iterator over one partition of the dataset
// at uri. The type tag selects the implementation; unknown tags fail here,
// not lazily.
func Create[I rowblock.Index](ctx context.Context, uri string, partIndex, numParts int, format string) (RowBlockIter[I], error) {
	cfg := config.NewLoaderConfig(uri, format)
	cfg.PartIndex = partIndex
	cfg.NumParts = numParts
	return CreateWithConfig[I](ctx, cfg)
}

// CreateWithConfig is Create with full control over performance settings.
func CreateWithConfig[I rowblock.Index](ctx context.Context, cfg *config.LoaderConfig) (RowBlockIter[I], error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "invalid loader config")
	}

	switch cfg.Format {
	case FormatLibSVM:
		source, err := newSource(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return NewParser[I](source, cfg), nil
	case FormatLibSVMInMemory:
		source, err := newSource(ctx, cfg)
		if err != nil {
			return nil, err
		}
		// parse at full width, narrow while draining
		return NewBasic[I](NewParser[uint64](source, cfg))
	default:
		return nil, errors.Newf(errors.ErrorTypeUnsupportedFormat,
			"unknown iterator type %q", cfg.Format)
	}
}

func newSource(ctx context.Context, cfg *config.LoaderConfig) (split.InputSplit, error) {
	return split.Create(ctx, cfg.URI, cfg.PartIndex, cfg.NumParts, split.ModeText,
		split.Options{
			ChunkSize: cfg.Performance.ChunkSizeBytes,
			MemoryMap: cfg.Performance.MemoryMap,
		})
}
