// Package split supplies record-aligned chunk sources for sparsefeed's
// parsers. A split hands out sequential, non-overlapping byte ranges of one
// partition of the input, each range containing only whole records, from
// local files (optionally compressed) or S3 objects.
package split

import (
	"context"
	"strings"

	"github.com/ajitpratap0/sparsefeed/pkg/errors"
)

// Mode selects how chunk boundaries are aligned.
type Mode string

const (
	// ModeText aligns chunks on line boundaries; a record is one line.
	ModeText Mode = "text"
)

// InputSplit is the chunk-source contract the parser engine consumes.
//
// NextChunk returns the next raw byte range, or io.EOF once the partition
// is exhausted. The returned slice contains only whole records and is valid
// until the next NextChunk, Reset, or Close call. Implementations are not
// safe for concurrent NextChunk calls; the parser engine serializes access
// and computes worker sub-ranges itself.
type InputSplit interface {
	NextChunk() ([]byte, error)
	// BytesRead is the cumulative count of bytes delivered by NextChunk
	// since construction or the last Reset.
	BytesRead() int64
	// Reset rewinds the split to the start of its partition.
	Reset() error
	Close() error
}

// Options tune a split's chunking behavior.
type Options struct {
	// ChunkSize is the target bytes per NextChunk (0 = default 8 MiB).
	ChunkSize int
	// MemoryMap maps local uncompressed files instead of using pread.
	MemoryMap bool
}

// Create constructs an InputSplit for one partition of the dataset at uri.
// Supported schemes: plain paths and file:// for local files (with .gz,
// .zst, .s2 and .lz4 transparently decompressed), s3://bucket/key for S3
// objects. Partitioning is cooperative: partition partIndex of numParts
// covers byte range [size*partIndex/numParts, size*(partIndex+1)/numParts)
// adjusted forward to record boundaries.
func Create(ctx context.Context, uri string, partIndex, numParts int, mode Mode, opts Options) (InputSplit, error) {
	if mode != ModeText {
		return nil, errors.Newf(errors.ErrorTypeUnsupportedFormat,
			"unknown split mode %q", mode)
	}
	if numParts < 1 {
		return nil, errors.Newf(errors.ErrorTypeConfig,
			"num_parts must be >= 1, got %d", numParts)
	}
	if partIndex < 0 || partIndex >= numParts {
		return nil, errors.Newf(errors.ErrorTypeConfig,
			"part_index %d out of range [0,%d)", partIndex, numParts)
	}

	switch {
	case strings.HasPrefix(uri, "s3://"):
		return newS3Split(ctx, uri, partIndex, numParts, opts)
	case strings.HasPrefix(uri, "file://"):
		return newFileSplit(strings.TrimPrefix(uri, "file://"), partIndex, numParts, opts)
	case strings.Contains(uri, "://"):
		return nil, errors.Newf(errors.ErrorTypeUnsupportedFormat,
			"unsupported uri scheme in %q", uri)
	default:
		return newFileSplit(uri, partIndex, numParts, opts)
	}
}
