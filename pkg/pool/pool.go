// Package pool provides typed object pooling for sparsefeed's hot paths.
// Chunk buffers and per-worker parse state are recycled between Next calls
// so that steady-state parsing allocates close to nothing.
package pool

import (
	"sync"
	"sync/atomic"
)

// Pool represents a generic object pool with type safety.
// It wraps sync.Pool with statistics tracking and automatic reset.
// The pool is safe for concurrent use.
type Pool[T any] struct {
	pool  sync.Pool
	new   func() T
	reset func(T)
	stats struct {
		allocated int64
		inUse     int64
		hits      int64
	}
}

// New creates a new typed pool with custom allocation and reset functions.
// The reset function, if non-nil, is called before an object is returned
// to the pool.
func New[T any](newFn func() T, reset func(T)) *Pool[T] {
	p := &Pool[T]{
		new:   newFn,
		reset: reset,
	}
	p.pool.New = func() interface{} {
		atomic.AddInt64(&p.stats.allocated, 1)
		return newFn()
	}
	return p
}

// Get retrieves an object from the pool, creating one if the pool is empty.
func (p *Pool[T]) Get() T {
	atomic.AddInt64(&p.stats.inUse, 1)
	obj := p.pool.Get().(T)
	atomic.AddInt64(&p.stats.hits, 1)
	return obj
}

// Put returns an object to the pool for reuse.
func (p *Pool[T]) Put(obj T) {
	if p.reset != nil {
		p.reset(obj)
	}
	atomic.AddInt64(&p.stats.inUse, -1)
	p.pool.Put(obj)
}

// Stats returns current pool statistics.
func (p *Pool[T]) Stats() (allocated, inUse, hits int64) {
	return atomic.LoadInt64(&p.stats.allocated),
		atomic.LoadInt64(&p.stats.inUse),
		atomic.LoadInt64(&p.stats.hits)
}

// BufferPool pools byte slices in power-of-two size buckets. Buffers are
// handed out with zero length and at least the requested capacity.
type BufferPool struct {
	buckets [numBuckets]sync.Pool
}

const (
	minBucketBits = 12 // 4 KiB
	numBuckets    = 14 // up to 32 MiB
)

// GlobalBufferPool is the shared buffer pool used for chunk I/O.
var GlobalBufferPool = &BufferPool{}

func bucketFor(size int) int {
	b := 0
	for s := size - 1; s >= 1<<minBucketBits; s >>= 1 {
		b++
	}
	if b >= numBuckets {
		return -1
	}
	return b
}

// Get returns a zero-length buffer with capacity >= size.
func (bp *BufferPool) Get(size int) []byte {
	b := bucketFor(size)
	if b < 0 {
		return make([]byte, 0, size)
	}
	if v := bp.buckets[b].Get(); v != nil {
		buf := v.([]byte)
		if cap(buf) >= size {
			return buf[:0]
		}
	}
	return make([]byte, 0, 1<<(minBucketBits+b))
}

// Put returns a buffer to its size bucket. Oversized buffers are dropped.
func (bp *BufferPool) Put(buf []byte) {
	b := bucketFor(cap(buf))
	if b < 0 {
		return
	}
	bp.buckets[b].Put(buf[:0]) //nolint:staticcheck // SA6002: slice header is small
}
