package libsvm

import (
	"go.uber.org/zap"

	"github.com/ajitpratap0/sparsefeed/pkg/errors"
	"github.com/ajitpratap0/sparsefeed/pkg/logger"
	"github.com/ajitpratap0/sparsefeed/pkg/metrics"
	"github.com/ajitpratap0/sparsefeed/pkg/rowblock"
)

// progressEvery is how many source bytes pass between throughput log lines
// while draining.
const progressEvery = 10 << 20

// Basic drains an entire parser into one in-memory block at construction
// and then serves it as a single-batch iterator. Suited to datasets that
// fit in memory and algorithms that want random access to all rows.
type Basic[I rowblock.Index] struct {
	data    *rowblock.Container[I]
	block   rowblock.Block[I]
	bytes   int64
	atHead  bool
	started bool
}

// NewBasic consumes parser to exhaustion, narrowing rows to index type I,
// and closes it. Any parse or overflow fault surfaces here: the adapter
// inherits the parser's no-partial-data policy.
func NewBasic[I rowblock.Index](parser RowBlockIter[uint64]) (*Basic[I], error) {
	defer parser.Close() //nolint:errcheck

	b := &Basic[I]{
		data:   rowblock.NewContainer[I](),
		atHead: true,
	}
	log := logger.With(zap.String("component", "libsvm_basic_iter"))
	tracker := metrics.NewThroughputTracker()
	nextReport := int64(progressEvery)

	for {
		ok, err := parser.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		blk, err := parser.Value()
		if err != nil {
			return nil, err
		}
		if err := rowblock.PushBlock(b.data, blk); err != nil {
			return nil, err
		}
		if read := parser.BytesRead(); read >= nextReport {
			tracker.Set(read)
			log.Info("reading",
				zap.Int64("mb_read", read>>20),
				zap.Float64("mb_per_sec", tracker.MBPerSec()))
			nextReport += progressEvery
		}
	}

	b.bytes = parser.BytesRead()
	b.block = b.data.Block()
	tracker.Set(b.bytes)
	log.Info("finished reading",
		zap.Int("rows", b.data.Size()),
		zap.Int64("mb_read", b.bytes>>20),
		zap.Float64("mb_per_sec", tracker.MBPerSec()))
	return b, nil
}

// BeforeFirst rewinds to the in-memory block. Value is not observable
// again until the next Next, matching the streaming parser's behavior.
func (b *Basic[I]) BeforeFirst() error {
	b.atHead = true
	b.started = false
	return nil
}

func (b *Basic[I]) Next() (bool, error) {
	if b.atHead {
		b.atHead = false
		b.started = true
		return true, nil
	}
	return false, nil
}

func (b *Basic[I]) Value() (rowblock.Block[I], error) {
	if !b.started {
		return rowblock.Block[I]{}, errors.New(errors.ErrorTypeNotReady,
			"Value called before a successful Next")
	}
	return b.block, nil
}

// NumCol returns max feature id + 1 in the loaded dataset.
func (b *Basic[I]) NumCol() uint64 { return uint64(b.data.MaxIndex()) + 1 }

// BytesRead returns the total bytes the drained parser consumed.
func (b *Basic[I]) BytesRead() int64 { return b.bytes }

func (b *Basic[I]) Close() error { return nil }
