package split

import (
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/ajitpratap0/sparsefeed/pkg/errors"
)

// compressed reports whether the path names a compressed file this package
// can decode transparently.
func compressed(path string) bool {
	switch filepath.Ext(path) {
	case ".gz", ".zst", ".s2", ".lz4":
		return true
	default:
		return false
	}
}

type readCloser struct {
	io.Reader
	closers []func() error
}

func (rc readCloser) Close() error {
	var first error
	for i := len(rc.closers) - 1; i >= 0; i-- {
		if err := rc.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// openCompressed opens path and wraps it in the decompressor matching its
// extension.
func openCompressed(path string) (readCloser, error) {
	f, err := os.Open(path) //nolint:gosec // G304: path is caller-controlled by design
	if err != nil {
		return readCloser{}, errors.Wrap(err, errors.ErrorTypeIO, "failed to open input file")
	}

	switch filepath.Ext(path) {
	case ".gz":
		gz, err := gzip.NewReader(f)
		if err != nil {
			_ = f.Close()
			return readCloser{}, errors.Wrap(err, errors.ErrorTypeIO, "failed to open gzip stream")
		}
		return readCloser{Reader: gz, closers: []func() error{f.Close, gz.Close}}, nil
	case ".zst":
		dec, err := zstd.NewReader(f)
		if err != nil {
			_ = f.Close()
			return readCloser{}, errors.Wrap(err, errors.ErrorTypeIO, "failed to open zstd stream")
		}
		return readCloser{Reader: dec, closers: []func() error{f.Close, func() error { dec.Close(); return nil }}}, nil
	case ".s2":
		return readCloser{Reader: s2.NewReader(f), closers: []func() error{f.Close}}, nil
	case ".lz4":
		return readCloser{Reader: lz4.NewReader(f), closers: []func() error{f.Close}}, nil
	default:
		_ = f.Close()
		return readCloser{}, errors.Newf(errors.ErrorTypeUnsupportedFormat,
			"no decompressor for %q", filepath.Ext(path))
	}
}

// NewCompressedReader wraps r in the decompressor matching ext (".gz",
// ".zst", ".s2" or ".lz4"). Closing the result releases the decompressor
// but not r.
func NewCompressedReader(r io.Reader, ext string) (io.ReadCloser, error) {
	switch ext {
	case ".gz":
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeIO, "failed to open gzip stream")
		}
		return gz, nil
	case ".zst":
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeIO, "failed to open zstd stream")
		}
		return readCloser{Reader: dec, closers: []func() error{func() error { dec.Close(); return nil }}}, nil
	case ".s2":
		return io.NopCloser(s2.NewReader(r)), nil
	case ".lz4":
		return io.NopCloser(lz4.NewReader(r)), nil
	default:
		return nil, errors.Newf(errors.ErrorTypeUnsupportedFormat,
			"no decompressor for %q", ext)
	}
}

// NewCompressedWriter wraps w in the compressor matching ext (".gz",
// ".zst", ".s2" or ".lz4"). The returned close function flushes and closes
// the compressor but not w. Used by the convert tool to emit compressed
// row-block files.
func NewCompressedWriter(w io.Writer, ext string) (io.Writer, func() error, error) {
	switch ext {
	case ".gz":
		gz := gzip.NewWriter(w)
		return gz, gz.Close, nil
	case ".zst":
		enc, err := zstd.NewWriter(w)
		if err != nil {
			return nil, nil, errors.Wrap(err, errors.ErrorTypeIO, "failed to create zstd writer")
		}
		return enc, enc.Close, nil
	case ".s2":
		sw := s2.NewWriter(w)
		return sw, sw.Close, nil
	case ".lz4":
		lw := lz4.NewWriter(w)
		return lw, lw.Close, nil
	default:
		return nil, nil, errors.Newf(errors.ErrorTypeUnsupportedFormat,
			"no compressor for %q", ext)
	}
}
