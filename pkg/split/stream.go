package split

import (
	"bytes"
	"io"

	"github.com/ajitpratap0/sparsefeed/pkg/errors"
	"github.com/ajitpratap0/sparsefeed/pkg/pool"
)

// streamSplit chunks a sequential byte stream on record boundaries. It
// backs compressed inputs, which cannot be read at arbitrary offsets;
// Reset reopens the stream from the start.
type streamSplit struct {
	open      func() (readCloser, error)
	rc        readCloser
	chunkSize int

	buf       []byte
	carry     []byte
	eof       bool
	bytesRead int64
}

func newStreamSplit(open func() (readCloser, error), opts Options) (*streamSplit, error) {
	chunkSize := opts.ChunkSize
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}
	s := &streamSplit{open: open, chunkSize: chunkSize}
	rc, err := open()
	if err != nil {
		return nil, err
	}
	s.rc = rc
	return s, nil
}

func (s *streamSplit) NextChunk() ([]byte, error) {
	if s.eof && len(s.carry) == 0 {
		return nil, io.EOF
	}

	data := append(s.buf[:0], s.carry...)
	target := s.chunkSize

	for !s.eof {
		if len(data) >= target {
			if bytes.IndexByte(data, '\n') >= 0 {
				break
			}
			// a single record longer than the chunk size: widen the read
			target *= 2
		}
		if cap(data) < target {
			grown := make([]byte, len(data), target)
			copy(grown, data)
			data = grown
		}
		n, err := s.rc.Read(data[len(data):target])
		data = data[:len(data)+n]
		if err == io.EOF {
			s.eof = true
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeIO, "failed to read stream")
		}
	}
	s.buf = data

	if s.eof {
		s.putCarry()
		if len(data) == 0 {
			return nil, io.EOF
		}
		s.bytesRead += int64(len(data))
		return data, nil
	}

	idx := bytes.LastIndexByte(data, '\n')
	delivered := data[:idx+1]
	carry := append(pool.GlobalBufferPool.Get(len(data)-idx-1), data[idx+1:]...)
	s.putCarry()
	s.carry = carry
	s.bytesRead += int64(len(delivered))
	return delivered, nil
}

func (s *streamSplit) putCarry() {
	if s.carry != nil {
		pool.GlobalBufferPool.Put(s.carry)
		s.carry = nil
	}
}

func (s *streamSplit) BytesRead() int64 { return s.bytesRead }

func (s *streamSplit) Reset() error {
	_ = s.rc.Close()
	rc, err := s.open()
	if err != nil {
		return err
	}
	s.rc = rc
	s.putCarry()
	s.eof = false
	s.bytesRead = 0
	return nil
}

func (s *streamSplit) Close() error { return s.rc.Close() }
