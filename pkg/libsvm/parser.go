package libsvm

import (
	"bytes"
	goerrors "errors"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/ajitpratap0/sparsefeed/pkg/config"
	"github.com/ajitpratap0/sparsefeed/pkg/errors"
	"github.com/ajitpratap0/sparsefeed/pkg/logger"
	"github.com/ajitpratap0/sparsefeed/pkg/metrics"
	"github.com/ajitpratap0/sparsefeed/pkg/rowblock"
	"github.com/ajitpratap0/sparsefeed/pkg/split"
)

// Parser is the streaming multi-worker LIBSVM iterator. Each Next pulls
// one raw chunk from the source, fans record-aligned sub-ranges out to a
// fixed worker pool, joins, and merges the workers' private containers in
// sub-range order, so the merged row order always equals source byte order
// regardless of worker count or completion order.
//
// The pool is sized once at construction and reused for every chunk. Next
// blocks the caller until the chunk's workers finish; chunk i+1 is not
// requested before chunk i's merge completes, which bounds live memory to
// roughly one chunk's worth of per-worker containers.
//
// Only the calling goroutine may use the iterator; workers never touch
// shared state outside their own container and assigned input slice.
type Parser[I rowblock.Index] struct {
	source  split.InputSplit
	workers int
	log     *zap.Logger
	coll    *metrics.Collector

	tasks      chan parseTask
	results    chan error
	parts      [][]byte
	workerData []*rowblock.Container[uint64]

	data      *rowblock.Container[I]
	block     rowblock.Block[I]
	ready     bool
	fatal     error
	maxIndex  uint64
	bytesRead int64
	closed    bool
}

type parseTask struct {
	data   []byte
	dst    *rowblock.Container[uint64]
	result chan<- error
}

// NewParser creates a streaming parser over source. The worker count comes
// from cfg; the parser takes ownership of source and closes it on Close.
func NewParser[I rowblock.Index](source split.InputSplit, cfg *config.LoaderConfig) *Parser[I] {
	workers := cfg.Performance.Workers
	if workers < 1 {
		workers = 1
	}

	p := &Parser[I]{
		source:     source,
		workers:    workers,
		log:        logger.With(zap.String("component", "libsvm_parser")),
		tasks:      make(chan parseTask),
		results:    make(chan error, workers),
		parts:      make([][]byte, 0, workers),
		workerData: make([]*rowblock.Container[uint64], workers),
		data:       rowblock.NewContainer[I](),
	}
	if cfg.Observability.EnableMetrics {
		p.coll = metrics.NewCollector(FormatLibSVM)
	}
	for i := range p.workerData {
		p.workerData[i] = rowblock.NewContainer[uint64]()
	}
	for i := 0; i < workers; i++ {
		go parseWorker(p.tasks)
	}
	return p
}

func parseWorker(tasks <-chan parseTask) {
	sc := scratchPool.Get()
	defer scratchPool.Put(sc)
	for t := range tasks {
		t.result <- parseRange(t.dst, t.data, sc)
	}
}

// BeforeFirst rewinds the source and discards any buffered block. It is
// valid at any time; no workers are in flight between Next calls, so the
// reset cannot race with their private containers.
func (p *Parser[I]) BeforeFirst() error {
	if err := p.source.Reset(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeIO, "failed to rewind chunk source")
	}
	p.ready = false
	p.fatal = nil
	p.maxIndex = 0
	p.bytesRead = 0
	p.data.Clear()
	return nil
}

// Next parses the next chunk. It returns false only when the source is
// exhausted. A worker's parse failure aborts the whole read pass, not just
// the chunk: the error sticks and every later Next returns it, so rows
// after a bad record can never be silently surfaced. Only BeforeFirst
// clears the fault.
func (p *Parser[I]) Next() (bool, error) {
	if p.fatal != nil {
		return false, p.fatal
	}
	chunk, err := p.source.NextChunk()
	if goerrors.Is(err, io.EOF) {
		return false, nil
	}
	if err != nil {
		return false, p.fail(errors.Wrap(err, errors.ErrorTypeIO, "chunk source read failed"))
	}

	start := time.Now()
	p.parts = subRanges(chunk, p.workers, p.parts[:0])
	for i := range p.parts {
		p.tasks <- parseTask{data: p.parts[i], dst: p.workerData[i], result: p.results}
	}
	// barrier: every worker for this chunk must finish before merging
	var firstErr error
	for range p.parts {
		if err := <-p.results; err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		return false, p.fail(firstErr)
	}

	p.data.Clear()
	for i := range p.parts {
		if err := rowblock.PushBlock(p.data, p.workerData[i].Block()); err != nil {
			return false, p.fail(err)
		}
	}
	p.block = p.data.Block()
	p.ready = true
	p.bytesRead = p.source.BytesRead()
	if m := uint64(p.data.MaxIndex()); m > p.maxIndex {
		p.maxIndex = m
	}

	elapsed := time.Since(start)
	p.coll.ObserveChunk(len(chunk), p.block.Size(), elapsed)
	p.log.Debug("chunk parsed",
		zap.Int("bytes", len(chunk)),
		zap.Int("rows", p.block.Size()),
		zap.Duration("elapsed", elapsed))
	return true, nil
}

func (p *Parser[I]) fail(err error) error {
	p.ready = false
	p.fatal = err
	var e *errors.Error
	if goerrors.As(err, &e) {
		p.coll.ObserveError(string(e.Type))
	}
	return err
}

// Value returns the block merged by the most recent successful Next. The
// block borrows the parser's internal container and is invalidated by the
// next Next or BeforeFirst call.
func (p *Parser[I]) Value() (rowblock.Block[I], error) {
	if !p.ready {
		return rowblock.Block[I]{}, errors.New(errors.ErrorTypeNotReady,
			"Value called before a successful Next")
	}
	return p.block, nil
}

// NumCol returns max feature id + 1 across all rows seen so far.
func (p *Parser[I]) NumCol() uint64 { return p.maxIndex + 1 }

// BytesRead returns cumulative bytes consumed from the chunk source. It
// advances only after a chunk parses successfully, so a failed chunk never
// looks consumed.
func (p *Parser[I]) BytesRead() int64 { return p.bytesRead }

// Close stops the worker pool and closes the chunk source.
func (p *Parser[I]) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true
	close(p.tasks)
	return p.source.Close()
}

// subRanges partitions a chunk into n contiguous record-aligned slices.
// The split points are byte targets advanced to the next line boundary, so
// concatenating the slices in order reproduces the chunk exactly. Slices
// may be empty when the chunk holds fewer records than workers.
func subRanges(data []byte, n int, out [][]byte) [][]byte {
	prev := 0
	for i := 1; i <= n; i++ {
		end := len(data)
		if i < n {
			target := len(data) * i / n
			if target < prev {
				target = prev
			}
			if idx := bytes.IndexByte(data[target:], '\n'); idx >= 0 {
				end = target + idx + 1
			}
		}
		if end < prev {
			end = prev
		}
		out = append(out, data[prev:end])
		prev = end
	}
	return out
}
