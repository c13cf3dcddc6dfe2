//go:build linux || darwin

package split

import (
	"io"
	"os"
	"syscall"

	"github.com/ajitpratap0/sparsefeed/pkg/errors"
)

// mmapSection is a memory-mapped sectionReader over a local file. ReadAt
// copies out of the mapping, so chunk buffers stay valid after Close.
type mmapSection struct {
	f    *os.File
	data []byte
}

func newMmapSection(f *os.File, size int64) (sectionReader, error) {
	if size == 0 {
		// Zero-length files cannot be mapped; the plain reader handles them.
		return &fileSection{f: f, size: 0}, nil
	}
	data, err := syscall.Mmap(int(f.Fd()), 0, int(size), syscall.PROT_READ, syscall.MAP_SHARED)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeIO, "failed to mmap input file")
	}
	// Chunk reads walk the file front to back.
	_ = syscall.Madvise(data, syscall.MADV_SEQUENTIAL)
	return &mmapSection{f: f, data: data}, nil
}

func (s *mmapSection) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off >= int64(len(s.data)) {
		return 0, io.EOF
	}
	n := copy(p, s.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (s *mmapSection) Size() int64 { return int64(len(s.data)) }

func (s *mmapSection) Close() error {
	var err error
	if s.data != nil {
		err = syscall.Munmap(s.data)
		s.data = nil
	}
	if closeErr := s.f.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	return err
}
