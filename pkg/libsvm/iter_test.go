package libsvm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/sparsefeed/pkg/errors"
)

func TestCreateUnknownTypeTag(t *testing.T) {
	_, err := Create[uint32](context.Background(), "data.libsvm", 0, 1, "recordio")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeUnsupportedFormat))
}

func TestCreateInvalidPartition(t *testing.T) {
	_, err := Create[uint32](context.Background(), "data.libsvm", 2, 2, FormatLibSVM)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
}

func TestCreateStreamingIterator(t *testing.T) {
	path := writeDataset(t, "1 1:0.5 3:2.0\n-1 2:1.0\n")

	it, err := Create[uint32](context.Background(), path, 0, 1, FormatLibSVM)
	require.NoError(t, err)
	defer it.Close() //nolint:errcheck

	all := drainAll(t, it)
	assert.Equal(t, 2, all.Size())
}

func TestCreateInMemoryIterator(t *testing.T) {
	path := writeDataset(t, bigDataset(50))

	it, err := Create[uint32](context.Background(), path, 0, 1, FormatLibSVMInMemory)
	require.NoError(t, err)
	defer it.Close() //nolint:errcheck

	// before the first Next the block is not observable
	_, err = it.Value()
	assert.True(t, errors.IsType(err, errors.ErrorTypeNotReady))

	ok, err := it.Next()
	require.NoError(t, err)
	require.True(t, ok)

	b, err := it.Value()
	require.NoError(t, err)
	assert.Equal(t, 50, b.Size())
	assert.Greater(t, it.BytesRead(), int64(0))
	assert.Greater(t, it.NumCol(), uint64(1))

	// single-batch semantics
	ok, err = it.Next()
	require.NoError(t, err)
	assert.False(t, ok)

	// BeforeFirst rewinds; the block is unobservable until the next Next
	require.NoError(t, it.BeforeFirst())
	_, err = it.Value()
	assert.True(t, errors.IsType(err, errors.ErrorTypeNotReady))
	ok, err = it.Next()
	require.NoError(t, err)
	require.True(t, ok)
	again, err := it.Value()
	require.NoError(t, err)
	assert.Equal(t, b.Size(), again.Size())
}

func TestCreateInMemoryIteratorSurfacesParseFault(t *testing.T) {
	path := writeDataset(t, "1 1:0.5\n1 notanumber\n")

	_, err := Create[uint32](context.Background(), path, 0, 1, FormatLibSVMInMemory)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeFormat))
}
