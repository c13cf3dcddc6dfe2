package split

import (
	"os"

	"github.com/ajitpratap0/sparsefeed/pkg/errors"
)

// newFileSplit opens a local file split. Compressed files (by extension)
// are streamed through a decompressor and cannot be partitioned, since
// byte offsets in the compressed stream do not map to record boundaries.
func newFileSplit(path string, partIndex, numParts int, opts Options) (InputSplit, error) {
	if compressed(path) {
		if numParts != 1 {
			return nil, errors.Newf(errors.ErrorTypeConfig,
				"compressed input %q is not partitionable (num_parts=%d)", path, numParts)
		}
		return newStreamSplit(func() (readCloser, error) {
			return openCompressed(path)
		}, opts)
	}

	f, err := os.Open(path) //nolint:gosec // G304: path is caller-controlled by design
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeIO, "failed to open input file")
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, errors.Wrap(err, errors.ErrorTypeIO, "failed to stat input file")
	}

	var sec sectionReader = &fileSection{f: f, size: st.Size()}
	if opts.MemoryMap {
		sec, err = newMmapSection(f, st.Size())
		if err != nil {
			_ = f.Close()
			return nil, err
		}
	}
	return newRangeSplit(sec, partIndex, numParts, opts)
}

type fileSection struct {
	f    *os.File
	size int64
}

func (s *fileSection) ReadAt(p []byte, off int64) (int, error) { return s.f.ReadAt(p, off) }
func (s *fileSection) Size() int64                             { return s.size }
func (s *fileSection) Close() error                            { return s.f.Close() }
