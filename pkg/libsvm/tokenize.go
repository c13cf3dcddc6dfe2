package libsvm

import (
	"bytes"
	"strconv"

	"github.com/ajitpratap0/sparsefeed/pkg/errors"
	"github.com/ajitpratap0/sparsefeed/pkg/pool"
	"github.com/ajitpratap0/sparsefeed/pkg/rowblock"
)

// scratch holds a worker's reusable per-row buffers.
type scratch struct {
	index []uint64
	value []float32
}

var scratchPool = pool.New(
	func() *scratch { return &scratch{} },
	func(sc *scratch) { sc.index = sc.index[:0]; sc.value = sc.value[:0] },
)

// parseRange tokenizes one record-aligned byte range into dst. Feature ids
// are parsed at full width; narrowing to the caller's index type happens at
// merge time. Any malformed record aborts the whole range: skipping rows
// would break row alignment for downstream consumers.
func parseRange(dst *rowblock.Container[uint64], data []byte, sc *scratch) error {
	dst.Clear()
	for len(data) > 0 {
		line := data
		if nl := bytes.IndexByte(data, '\n'); nl >= 0 {
			line = data[:nl]
			data = data[nl+1:]
		} else {
			data = nil
		}
		if n := len(line); n > 0 && line[n-1] == '\r' {
			line = line[:n-1]
		}
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		if err := parseLine(dst, line, sc); err != nil {
			return err
		}
	}
	return nil
}

// parseLine parses one record: an optional leading label, then zero or more
// whitespace-separated index:value pairs, the value defaulting to 1.0 when
// a pair omits ":value". The leading token is the label iff it carries no
// colon. A row stores explicit values iff at least one of its pairs does.
func parseLine(dst *rowblock.Container[uint64], line []byte, sc *scratch) error {
	sc.index = sc.index[:0]
	sc.value = sc.value[:0]

	var label float32
	explicit := false
	first := true

	for i := 0; i < len(line); {
		for i < len(line) && (line[i] == ' ' || line[i] == '\t') {
			i++
		}
		if i >= len(line) {
			break
		}
		j := i
		for j < len(line) && line[j] != ' ' && line[j] != '\t' {
			j++
		}
		tok := line[i:j]
		i = j

		colon := bytes.IndexByte(tok, ':')
		switch {
		case first && colon < 0:
			v, err := strconv.ParseFloat(string(tok), 32)
			if err != nil {
				return errors.Newf(errors.ErrorTypeFormat, "invalid label %q", tok)
			}
			label = float32(v)
		case colon < 0:
			id, err := strconv.ParseUint(string(tok), 10, 64)
			if err != nil {
				return errors.Newf(errors.ErrorTypeFormat, "invalid feature index %q", tok)
			}
			sc.index = append(sc.index, id)
			sc.value = append(sc.value, 1.0)
		default:
			id, err := strconv.ParseUint(string(tok[:colon]), 10, 64)
			if err != nil {
				return errors.Newf(errors.ErrorTypeFormat, "invalid feature index %q", tok[:colon])
			}
			v, err := strconv.ParseFloat(string(tok[colon+1:]), 32)
			if err != nil {
				return errors.Newf(errors.ErrorTypeFormat, "invalid feature value %q", tok[colon+1:])
			}
			sc.index = append(sc.index, id)
			sc.value = append(sc.value, float32(v))
			explicit = true
		}
		first = false
	}

	row := rowblock.Row[uint64]{Label: label, Index: sc.index}
	if explicit {
		row.Value = sc.value
	}
	return rowblock.Push(dst, row)
}
