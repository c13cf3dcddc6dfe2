package libsvm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/sparsefeed/pkg/errors"
	"github.com/ajitpratap0/sparsefeed/pkg/rowblock"
)

func parseInto(t *testing.T, input string) (*rowblock.Container[uint64], error) {
	t.Helper()
	dst := rowblock.NewContainer[uint64]()
	err := parseRange(dst, []byte(input), &scratch{})
	return dst, err
}

func TestParseRangeBasic(t *testing.T) {
	c, err := parseInto(t, "1 1:0.5 3:2.0\n-1 2:1.0\n")
	require.NoError(t, err)

	b := c.Block()
	assert.Equal(t, []float32{1, -1}, b.Label)
	assert.Equal(t, []uint64{0, 2, 3}, b.Offset)
	assert.Equal(t, []uint64{1, 3, 2}, b.Index)
	assert.Equal(t, []float32{0.5, 2.0, 1.0}, b.Value)
}

func TestParseRangeCRLFAndBlankLines(t *testing.T) {
	c, err := parseInto(t, "1 1:0.5\r\n\r\n   \n-1 2:1.0\r\n")
	require.NoError(t, err)
	assert.Equal(t, 2, c.Size())
}

func TestParseRangeNoTrailingNewline(t *testing.T) {
	c, err := parseInto(t, "1 1:0.5\n-1 2:1.0")
	require.NoError(t, err)
	assert.Equal(t, 2, c.Size())
}

func TestParseRangeImplicitValues(t *testing.T) {
	// bare indices mean value 1.0 for the whole row
	c, err := parseInto(t, "1 3 5 9\n0 2\n")
	require.NoError(t, err)

	b := c.Block()
	assert.Nil(t, b.Value)
	assert.Equal(t, []uint64{3, 5, 9, 2}, b.Index)
	assert.Equal(t, float32(1.0), b.Row(0).ValueAt(2))
}

func TestParseRangeBarePairMixedWithinRow(t *testing.T) {
	// one explicit pair makes the row's values explicit; bare tokens get 1.0
	c, err := parseInto(t, "1 3:0.5 5\n")
	require.NoError(t, err)

	b := c.Block()
	assert.Equal(t, []float32{0.5, 1.0}, b.Value)
}

func TestParseRangeLabelOnlyAndMissingLabel(t *testing.T) {
	c, err := parseInto(t, "1\n2:0.5\n")
	require.NoError(t, err)

	b := c.Block()
	require.Equal(t, 2, b.Size())
	assert.Equal(t, 0, b.Row(0).Length())
	// a line starting with a pair has no label token; label defaults to 0
	assert.Equal(t, float32(0), b.Row(1).Label)
	assert.Equal(t, []uint64{2}, b.Row(1).Index)
}

func TestParseRangeMalformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"non-numeric value", "1 1:abc\n"},
		{"non-numeric label", "x 1:0.5\n"},
		{"non-numeric index", "1 a:0.5\n"},
		{"negative index", "1 -2:0.5\n"},
		{"empty value", "1 1:\n"},
		{"double colon", "1 1:2:3\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseInto(t, tt.input)
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.ErrorTypeFormat), "got %v", err)
		})
	}
}

func TestSubRangesReassembleChunk(t *testing.T) {
	data := []byte("a 1:1\nbb 2:2\nccc 3:3\ndddd 4:4\neeeee 5:5\n")
	for n := 1; n <= 8; n++ {
		parts := subRanges(data, n, nil)
		require.Len(t, parts, n)
		var joined []byte
		for _, p := range parts {
			joined = append(joined, p...)
		}
		assert.Equal(t, data, joined, "n=%d", n)
		for i, p := range parts {
			if len(p) > 0 && i < len(parts)-1 {
				assert.Equal(t, byte('\n'), p[len(p)-1], "n=%d part=%d", n, i)
			}
		}
	}
}
