// Package sparsefeed provides a high-throughput loader for sparse machine
// learning datasets in the LIBSVM text format, designed so that parsing is
// never the bottleneck ahead of training.
//
// Input bytes are pulled in large record-aligned chunks, split across a
// fixed pool of parser workers, and merged back in source order into
// compact sparse row blocks. Feature indices are stored at a caller-chosen
// width (uint16, uint32 or uint64) and per-feature values are elided
// entirely when every entry is implicit 1.0.
//
// # Quick Start
//
// Stream a dataset partition block by block:
//
//	import (
//	    "context"
//	    "github.com/ajitpratap0/sparsefeed/pkg/libsvm"
//	)
//
//	it, err := libsvm.Create[uint32](context.Background(),
//	    "train.libsvm", 0, 1, libsvm.FormatLibSVM)
//	if err != nil { ... }
//	defer it.Close()
//
//	for {
//	    ok, err := it.Next()
//	    if err != nil { ... }
//	    if !ok {
//	        break
//	    }
//	    block, _ := it.Value()
//	    for r := 0; r < block.Size(); r++ {
//	        row := block.Row(r)
//	        // row.Label, row.Index, row.ValueAt(i)
//	    }
//	}
//
// # Key Packages
//
//	pkg/rowblock - sparse row and row-block views, containers, binary codec
//	pkg/libsvm   - concurrent LIBSVM parser and pull iterators
//	pkg/split    - record-aligned chunk sources: local files, compressed
//	               streams, S3 objects, cooperative partitioning
//	pkg/config   - unified loader configuration with YAML support
//	pkg/errors   - structured error taxonomy with stack capture
//	pkg/logger   - zap-based structured logging
//	pkg/metrics  - prometheus instrumentation and throughput tracking
//	pkg/pool     - generic object pooling for parse scratch state
//
// The sparsefeed command (cmd/sparsefeed) benchmarks read throughput,
// converts text datasets to the binary row-block format, and inspects
// converted files.
package sparsefeed
