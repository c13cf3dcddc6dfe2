package split

import (
	"bytes"
	"io"

	"github.com/ajitpratap0/sparsefeed/pkg/errors"
)

// sectionReader is a random-access byte source of known size. Local files
// and S3 objects both satisfy it, so partition alignment and chunking are
// implemented once here.
type sectionReader interface {
	io.ReaderAt
	Size() int64
	Close() error
}

const (
	defaultChunkSize = 8 << 20
	probeSize        = 64 << 10
)

// rangeSplit delivers record-aligned chunks of one partition of a
// sectionReader. Partition bounds are aligned forward to line boundaries at
// construction: partition p of n covers [align(size*p/n), align(size*(p+1)/n))
// where align(x) is the position just past the first newline at or after
// x-1 (0 for x == 0). Adjacent partitions computed this way are disjoint
// and cover the input exactly.
type rangeSplit struct {
	r         sectionReader
	chunkSize int

	start, end int64
	pos        int64
	bytesRead  int64
	buf        []byte
}

func newRangeSplit(r sectionReader, partIndex, numParts int, opts Options) (*rangeSplit, error) {
	chunkSize := opts.ChunkSize
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}
	size := r.Size()
	s := &rangeSplit{r: r, chunkSize: chunkSize}

	var err error
	if s.start, err = s.align(size * int64(partIndex) / int64(numParts)); err != nil {
		return nil, err
	}
	if s.end, err = s.align(size * int64(partIndex+1) / int64(numParts)); err != nil {
		return nil, err
	}
	s.pos = s.start
	return s, nil
}

// align returns the first record boundary at or after x. The record
// containing byte x-1 belongs to the preceding partition, so alignment
// scans from x-1 for the newline that terminates it.
func (s *rangeSplit) align(x int64) (int64, error) {
	size := s.r.Size()
	if x <= 0 {
		return 0, nil
	}
	if x >= size {
		return size, nil
	}

	probe := make([]byte, probeSize)
	for off := x - 1; off < size; {
		want := int64(len(probe))
		if off+want > size {
			want = size - off
		}
		n, err := s.r.ReadAt(probe[:want], off)
		if err != nil && !(err == io.EOF && int64(n) == want) {
			return 0, errors.Wrap(err, errors.ErrorTypeIO, "failed to scan for record boundary")
		}
		if idx := bytes.IndexByte(probe[:n], '\n'); idx >= 0 {
			return off + int64(idx) + 1, nil
		}
		off += int64(n)
	}
	// no newline after x: the final record runs to end of input
	return size, nil
}

// NextChunk reads up to chunkSize bytes and trims them back to the last
// record boundary. Oversized records grow the read until their terminating
// newline (or the partition end) is found, so a chunk always holds whole
// records.
func (s *rangeSplit) NextChunk() ([]byte, error) {
	if s.pos >= s.end {
		return nil, io.EOF
	}

	want := int64(s.chunkSize)
	if s.pos+want > s.end {
		want = s.end - s.pos
	}

	for {
		if int64(cap(s.buf)) < want {
			s.buf = make([]byte, want)
		}
		buf := s.buf[:want]
		n, err := s.r.ReadAt(buf, s.pos)
		if err != nil && !(err == io.EOF && int64(n) == want) {
			return nil, errors.Wrap(err, errors.ErrorTypeIO, "failed to read chunk")
		}

		if s.pos+want == s.end {
			s.pos += want
			s.bytesRead += want
			return buf, nil
		}
		if idx := bytes.LastIndexByte(buf, '\n'); idx >= 0 {
			delivered := int64(idx) + 1
			s.pos += delivered
			s.bytesRead += delivered
			return buf[:delivered], nil
		}
		// a single record longer than the chunk size: widen the read
		want *= 2
		if s.pos+want > s.end {
			want = s.end - s.pos
		}
	}
}

func (s *rangeSplit) BytesRead() int64 { return s.bytesRead }

func (s *rangeSplit) Reset() error {
	s.pos = s.start
	s.bytesRead = 0
	return nil
}

func (s *rangeSplit) Close() error { return s.r.Close() }
