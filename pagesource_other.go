// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build !unix

package tieralloc

// heapPageSource is the fallback PageSource for non-unix targets: it
// serves page-aligned memory carved out of the Go heap instead of raw
// OS pages. Correctness is identical; only the provenance of the bytes
// differs.
type heapPageSource struct{}

// NewPageSource returns the platform-default PageSource.
func NewPageSource() PageSource {
	return heapPageSource{}
}

// Alloc returns size bytes of page-aligned, zero-filled Go heap memory.
func (heapPageSource) Alloc(size uintptr) []byte {
	if size == 0 {
		return nil
	}
	n := int(roundUp(size, PageSize))
	return AlignedMem(n, PageSize)
}

// Free is a no-op: heap memory is reclaimed by the garbage collector once
// the tier that owned it drops its last reference.
func (heapPageSource) Free(b []byte) {}
