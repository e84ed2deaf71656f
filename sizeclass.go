// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tieralloc

import (
	"unsafe"

	"code.hybscloud.com/tieralloc/internal"
)

// Fixed-size-pool size classes, smallest to largest. Every class is
// already a multiple of Alignment and at least Alignment bytes, so each
// pool can thread its intrusive free-list index through the first
// machine word of a free block (spec FixedPool §4.1).
const (
	ClassSize16 = 16
	ClassSize32 = 32
	ClassSize64 = 64
	ClassSize128 = 128
	ClassSize256 = 256
	ClassSize512 = 512
)

// classSizes holds the size classes in ascending order. Index i is the
// "S[i]" of spec.md's FSA_CLASSES.
var classSizes = [...]uintptr{
	ClassSize16, ClassSize32, ClassSize64, ClassSize128, ClassSize256, ClassSize512,
}

// NumSizeClasses is the number of FixedPool size classes (K in spec.md).
const NumSizeClasses = len(classSizes)

// FixedPoolBlockCount is the fixed block_count every FixedPool size
// class is created with.
const FixedPoolBlockCount = 1024

// classForSize returns the index of the smallest size class able to
// hold m bytes. ok is false when no size class is large enough (m >
// the largest class), in which case the caller falls through to the
// CoalesceArena.
func classForSize(m uintptr) (idx int, ok bool) {
	for i, s := range classSizes {
		if m <= s {
			return i, true
		}
	}
	return 0, false
}

// CacheLineSize is the CPU L1 cache line size for the current
// architecture, detected at compile time; see internal/cacheline_*.go.
// FixedPool and CoalesceArena use it to trim their PageSource-acquired
// backing region to a cache-line boundary (see cacheLineAlign below),
// so a tier's metadata never straddles a line with whatever memory
// precedes it.
const CacheLineSize = internal.CacheLineSize

// AlignedMem returns a byte slice of the requested size whose starting
// address is aligned to pageSize.
//
// The returned slice shares underlying memory with a larger allocation;
// do not assume len(result) == cap(result).
func AlignedMem(size int, pageSize uintptr) []byte {
	p := make([]byte, uintptr(size)+pageSize-1)
	base := unsafe.Pointer(unsafe.SliceData(p))
	offset := ((uintptr(base)+pageSize-1)/pageSize)*pageSize - uintptr(base)
	return unsafe.Slice((*byte)(unsafe.Add(base, offset)), size)
}

// cacheLineAlign returns the cache-line-aligned subview of exactly n
// bytes within raw. raw must be at least n+CacheLineSize-1 bytes, which
// is what a tier requests from its PageSource before calling this, so
// an aligned window of length n always fits after trimming.
func cacheLineAlign(raw []byte, n uintptr) []byte {
	if raw == nil {
		return nil
	}
	align := uintptr(CacheLineSize)
	base := unsafe.Pointer(unsafe.SliceData(raw))
	offset := ((uintptr(base)+align-1)/align)*align - uintptr(base)
	return unsafe.Slice((*byte)(unsafe.Add(base, offset)), n)
}
