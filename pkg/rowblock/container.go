package rowblock

import (
	"github.com/ajitpratap0/sparsefeed/pkg/errors"
)

// Container owns the growable arrays backing a Block. It is the build-time
// counterpart of Block: rows are appended one at a time with Push or merged
// in bulk with PushBlock, then exported as an immutable view with Block.
//
// Invariants held after every successful mutation:
//
//	len(label)+1 == len(offset)
//	offset[len(offset)-1] == len(index)
//	len(value) == len(index) or len(value) == 0
//
// The value array is all-or-nothing: a container holds either explicit
// values for every entry or none at all. Mixing is rejected at push time.
//
// A Container is not safe for concurrent use.
type Container[I Index] struct {
	offset   []uint64
	label    []float32
	index    []I
	value    []float32
	maxIndex I
}

// NewContainer returns an empty container.
func NewContainer[I Index]() *Container[I] {
	c := &Container[I]{}
	c.Clear()
	return c
}

// Clear resets the container to its empty state for reuse. Any Block
// previously exported from it is invalidated.
func (c *Container[I]) Clear() {
	c.offset = append(c.offset[:0], 0)
	c.label = c.label[:0]
	c.index = c.index[:0]
	c.value = c.value[:0]
	c.maxIndex = 0
}

// Size returns the number of rows in the container.
func (c *Container[I]) Size() int { return len(c.offset) - 1 }

// MaxIndex returns the largest feature id pushed so far, 0 if none.
func (c *Container[I]) MaxIndex() I { return c.maxIndex }

// NNZ returns the total number of nonzero entries in the container.
func (c *Container[I]) NNZ() uint64 { return uint64(len(c.index)) }

// Block exports a view over the container's current memory. The view is
// invalidated by any subsequent Clear, Push, PushBlock, or Load.
//
// Block panics if the container invariants do not hold; that indicates a
// bug in the push/merge logic, not bad input, and is not recoverable.
func (c *Container[I]) Block() Block[I] {
	if len(c.label)+1 != len(c.offset) {
		panic(errors.Newf(errors.ErrorTypeInternal,
			"row block corrupted: %d labels for %d offsets", len(c.label), len(c.offset)))
	}
	if c.offset[len(c.offset)-1] != uint64(len(c.index)) {
		panic(errors.Newf(errors.ErrorTypeInternal,
			"row block corrupted: last offset %d != %d indices",
			c.offset[len(c.offset)-1], len(c.index)))
	}
	if len(c.value) != 0 && len(c.value) != len(c.index) {
		panic(errors.Newf(errors.ErrorTypeInternal,
			"row block corrupted: %d values for %d indices", len(c.value), len(c.index)))
	}
	b := Block[I]{
		Offset: c.offset,
		Label:  c.label,
		Index:  c.index,
	}
	if len(c.value) != 0 {
		b.Value = c.value
	}
	return b
}

// indexLimit is the first unrepresentable feature id for I. Ids at or above
// it are a data-format violation, never a silent truncation.
func indexLimit[I Index]() uint64 { return uint64(^I(0)) }

// checkValuePolicy rejects mixing explicit and implicit values within one
// container. Entry-less pushes carry no value information and pass.
func (c *Container[I]) checkValuePolicy(incomingHasValues bool, incomingEntries int) error {
	if incomingEntries == 0 {
		return nil
	}
	if len(c.index) == 0 {
		return nil
	}
	hasValues := len(c.value) != 0
	if hasValues != incomingHasValues {
		return errors.New(errors.ErrorTypeValidation,
			"cannot mix rows with explicit values and rows with implicit values in one container")
	}
	return nil
}

// Push appends one row, converting its feature ids to the container's index
// width. It fails with index_overflow if any id is not representable,
// leaving the container unchanged. The source row may use any index width.
func Push[I, J Index](c *Container[I], row Row[J]) error {
	if row.Value != nil && len(row.Value) != len(row.Index) {
		return errors.Newf(errors.ErrorTypeValidation,
			"row has %d values for %d indices", len(row.Value), len(row.Index))
	}
	if err := c.checkValuePolicy(row.Value != nil, len(row.Index)); err != nil {
		return err
	}
	limit := indexLimit[I]()
	for _, id := range row.Index {
		if uint64(id) >= limit {
			return errors.Newf(errors.ErrorTypeIndexOverflow,
				"feature index %d exceeds numeric bound %d of index type", id, limit)
		}
	}

	c.label = append(c.label, row.Label)
	for _, id := range row.Index {
		fid := I(id)
		c.index = append(c.index, fid)
		if fid > c.maxIndex {
			c.maxIndex = fid
		}
	}
	if row.Value != nil {
		c.value = append(c.value, row.Value...)
	}
	c.offset = append(c.offset, uint64(len(c.index)))
	return nil
}

// PushBlock bulk-appends a foreign block: one amortized grow per backing
// array, labels and values copied wholesale, feature ids converted and
// validated, and incoming offsets rebased onto the current total. The whole
// incoming range is validated before any mutation, so a failed push leaves
// the container unchanged.
//
// This is the merge path for pre-parsed worker output; appending the same
// rows one at a time yields an identical container state, just slower.
func PushBlock[I, J Index](c *Container[I], b Block[J]) error {
	n := b.Size()
	if n == 0 {
		return nil
	}
	ndata := b.Offset[n]
	if err := c.checkValuePolicy(b.Value != nil, int(ndata)); err != nil {
		return err
	}
	limit := indexLimit[I]()
	for _, id := range b.Index[:ndata] {
		if uint64(id) >= limit {
			return errors.Newf(errors.ErrorTypeIndexOverflow,
				"feature index %d exceeds numeric bound %d of index type", id, limit)
		}
	}

	c.label = append(c.label, b.Label...)

	start := len(c.index)
	c.index = append(c.index, make([]I, ndata)...)
	dst := c.index[start:]
	for i, id := range b.Index[:ndata] {
		fid := I(id)
		dst[i] = fid
		if fid > c.maxIndex {
			c.maxIndex = fid
		}
	}

	if b.Value != nil {
		c.value = append(c.value, b.Value[:ndata]...)
	}

	base := c.offset[len(c.offset)-1]
	for r := 1; r <= n; r++ {
		c.offset = append(c.offset, base+b.Offset[r])
	}
	return nil
}
