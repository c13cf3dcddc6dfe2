package errors

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCarriesTypeAndStack(t *testing.T) {
	err := New(ErrorTypeFormat, "bad token")

	assert.True(t, IsType(err, ErrorTypeFormat))
	assert.False(t, IsType(err, ErrorTypeIO))
	assert.Contains(t, err.Error(), "format")
	assert.Contains(t, err.Error(), "bad token")
	assert.NotEmpty(t, err.Stack)
}

func TestWrapPreservesCauseChain(t *testing.T) {
	err := Wrap(io.ErrUnexpectedEOF, ErrorTypeCorruptData, "truncated stream")

	require.NotNil(t, err)
	assert.True(t, IsType(err, ErrorTypeCorruptData))
	assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))
	assert.Contains(t, err.Error(), "unexpected EOF")
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrorTypeIO, "unused"))
}

func TestIsTypeThroughWrapping(t *testing.T) {
	inner := New(ErrorTypeIndexOverflow, "feature index too wide")
	outer := fmt.Errorf("merging chunk: %w", inner)

	assert.True(t, IsType(outer, ErrorTypeIndexOverflow))
}

func TestWithDetail(t *testing.T) {
	err := New(ErrorTypeIO, "read failed").
		WithDetail("uri", "s3://bucket/key").
		WithDetail("part", 3)

	assert.Equal(t, "s3://bucket/key", err.Details["uri"])
	assert.Equal(t, 3, err.Details["part"])
}

func TestIsFatal(t *testing.T) {
	assert.True(t, IsFatal(New(ErrorTypeFormat, "x")))
	assert.True(t, IsFatal(New(ErrorTypeIndexOverflow, "x")))
	assert.True(t, IsFatal(New(ErrorTypeCorruptData, "x")))
	assert.True(t, IsFatal(New(ErrorTypeIO, "x")))
	assert.False(t, IsFatal(New(ErrorTypeNotReady, "x")))
	assert.False(t, IsFatal(nil))
	assert.True(t, IsFatal(errors.New("unclassified")))
}
