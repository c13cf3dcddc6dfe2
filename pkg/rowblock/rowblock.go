// Package rowblock implements the sparse row-block data model used by
// sparsefeed's loaders: immutable compressed-row views (Row, Block), the
// growable Container that builds them, and a binary codec for persisting
// blocks.
//
// A Block stores a batch of sparse rows in prefix-summed offset form, the
// same layout as a compressed-sparse-row matrix. Views borrow the backing
// arrays of the Container that produced them and are invalidated by any
// subsequent mutation of that Container.
package rowblock

import (
	"github.com/ajitpratap0/sparsefeed/pkg/errors"
)

// Index is the set of unsigned integer widths usable as feature ids.
type Index interface {
	~uint16 | ~uint32 | ~uint64
}

// Float constrains the weight element type of Dot.
type Float interface {
	~float32 | ~float64
}

// Row is one training instance: a label plus a sparse feature vector.
// A nil Value slice means every feature value is implicitly 1.0.
type Row[I Index] struct {
	Label float32
	Index []I
	Value []float32
}

// Length returns the number of nonzero features in the row.
func (r Row[I]) Length() int { return len(r.Index) }

// ValueAt returns the i-th feature value, 1.0 when values are implicit.
// It is total for 0 <= i < Length regardless of value presence.
func (r Row[I]) ValueAt(i int) float32 {
	if r.Value == nil {
		return 1.0
	}
	return r.Value[i]
}

// Dot computes the weighted sum of w over the row's features:
// sum over i of w[Index[i]] * ValueAt(i). A feature id not less than
// len(w) yields an out_of_range error.
func Dot[I Index, V Float](r Row[I], w []V) (V, error) {
	var sum V
	for i, id := range r.Index {
		if uint64(id) >= uint64(len(w)) {
			return 0, errors.Newf(errors.ErrorTypeOutOfRange,
				"feature index %d exceeds weight vector length %d", id, len(w))
		}
		sum += w[id] * V(r.ValueAt(i))
	}
	return sum, nil
}

// Block is a batch of sparse rows in compressed form. Offset has length
// Size()+1 with Offset[0] == 0; row r occupies Index[Offset[r]:Offset[r+1]].
// A nil Value means every value is implicitly 1.0.
//
// A Block borrows the memory of the Container that exported it; it must not
// be retained across a mutating call on that Container.
type Block[I Index] struct {
	Offset []uint64
	Label  []float32
	Index  []I
	Value  []float32
}

// Size returns the number of rows in the block.
func (b Block[I]) Size() int { return len(b.Offset) - 1 }

// NNZ returns the total number of nonzero entries in the block.
func (b Block[I]) NNZ() uint64 { return b.Offset[len(b.Offset)-1] }

// Row returns a view of row r sharing the block's backing memory.
// It panics if r is out of range; that is caller misuse, not a data fault.
func (b Block[I]) Row(r int) Row[I] {
	if r < 0 || r >= b.Size() {
		panic(errors.Newf(errors.ErrorTypeOutOfRange,
			"row %d out of range [0,%d)", r, b.Size()))
	}
	lo, hi := b.Offset[r], b.Offset[r+1]
	row := Row[I]{
		Label: b.Label[r],
		Index: b.Index[lo:hi],
	}
	if b.Value != nil {
		row.Value = b.Value[lo:hi]
	}
	return row
}
