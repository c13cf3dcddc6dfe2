package rowblock

import (
	"encoding/binary"
	"io"

	"github.com/ajitpratap0/sparsefeed/pkg/errors"
)

// Binary stream layout: four length-prefixed arrays in fixed order —
// offset, label, index, value. Each array is a little-endian uint64 element
// count followed by the raw little-endian elements (offset uint64,
// label/value float32, index at the container's exact width). There is no
// header or version field; compatibility is positional and width-exact.

// maxElements caps a single array's element count on load so a corrupted
// length prefix cannot trigger an enormous allocation.
const maxElements = 1 << 40

// Save writes the container to w in the binary row-block format.
func (c *Container[I]) Save(w io.Writer) error {
	if err := writeArray(w, c.offset); err != nil {
		return err
	}
	if err := writeArray(w, c.label); err != nil {
		return err
	}
	if err := writeArray(w, c.index); err != nil {
		return err
	}
	return writeArray(w, c.value)
}

// Load replaces the container's contents from r. A truncated or oversized
// stream fails with corrupt_data. Load restores maxIndex by rescanning the
// index array but does not re-check the coherence invariants; Block
// performs that check lazily on first use.
func (c *Container[I]) Load(r io.Reader) error {
	offset, err := readArray[uint64](r, "offset")
	if err != nil {
		return err
	}
	label, err := readArray[float32](r, "label")
	if err != nil {
		return err
	}
	index, err := readArray[I](r, "index")
	if err != nil {
		return err
	}
	value, err := readArray[float32](r, "value")
	if err != nil {
		return err
	}

	c.offset = offset
	c.label = label
	c.index = index
	c.value = value
	c.maxIndex = 0
	for _, id := range c.index {
		if id > c.maxIndex {
			c.maxIndex = id
		}
	}
	return nil
}

func writeArray[E any](w io.Writer, data []E) error {
	if err := binary.Write(w, binary.LittleEndian, uint64(len(data))); err != nil {
		return errors.Wrap(err, errors.ErrorTypeIO, "failed to write array length")
	}
	if len(data) == 0 {
		return nil
	}
	if err := binary.Write(w, binary.LittleEndian, data); err != nil {
		return errors.Wrap(err, errors.ErrorTypeIO, "failed to write array data")
	}
	return nil
}

func readArray[E any](r io.Reader, name string) ([]E, error) {
	var count uint64
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeCorruptData,
			"truncated row block stream reading "+name+" length")
	}
	if count > maxElements {
		return nil, errors.Newf(errors.ErrorTypeCorruptData,
			"implausible %s array length %d", name, count)
	}
	data := make([]E, count)
	if count == 0 {
		return data, nil
	}
	if err := binary.Read(r, binary.LittleEndian, data); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeCorruptData,
			"truncated row block stream reading "+name+" data")
	}
	return data, nil
}
