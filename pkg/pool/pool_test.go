package pool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counter struct {
	n int
}

func TestPoolResetOnPut(t *testing.T) {
	p := New(
		func() *counter { return &counter{} },
		func(c *counter) { c.n = 0 },
	)

	c := p.Get()
	c.n = 42
	p.Put(c)

	again := p.Get()
	assert.Equal(t, 0, again.n)
}

func TestPoolStats(t *testing.T) {
	p := New(func() *counter { return &counter{} }, nil)

	a := p.Get()
	b := p.Get()
	allocated, inUse, _ := p.Stats()
	assert.Equal(t, int64(2), allocated)
	assert.Equal(t, int64(2), inUse)

	p.Put(a)
	p.Put(b)
	_, inUse, _ = p.Stats()
	assert.Equal(t, int64(0), inUse)
}

func TestBufferPoolCapacityAndReuse(t *testing.T) {
	bp := &BufferPool{}

	buf := bp.Get(10_000)
	require.Zero(t, len(buf))
	require.GreaterOrEqual(t, cap(buf), 10_000)

	buf = append(buf, make([]byte, 10_000)...)
	bp.Put(buf)

	again := bp.Get(10_000)
	assert.Zero(t, len(again))
	assert.GreaterOrEqual(t, cap(again), 10_000)
}

func TestBufferPoolOversized(t *testing.T) {
	bp := &BufferPool{}

	// beyond the largest bucket: still served, just not pooled
	huge := bp.Get(64 << 20)
	assert.GreaterOrEqual(t, cap(huge), 64<<20)
	bp.Put(huge)
}
