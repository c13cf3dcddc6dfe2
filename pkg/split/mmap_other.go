//go:build !(linux || darwin)

package split

import "os"

// newMmapSection falls back to plain pread on platforms without a memory
// mapping wrapper.
func newMmapSection(f *os.File, size int64) (sectionReader, error) {
	return &fileSection{f: f, size: size}, nil
}
