// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tieralloc

import "unsafe"

// FixedPool allocates fixed-size blocks in O(1) using an intrusive,
// index-based free list threaded through the blocks themselves: a free
// block's first machine word holds the index of the next free block, or
// blockCount as the end-of-list sentinel meaning "end of list". A used
// block carries no bookkeeping at all — its contents are entirely owned
// by the caller (spec invariant F1).
//
// Indices, not pointers, keep the free-list entry to one machine word,
// which is what lets a size-Alignment class exist without any external
// metadata.
//
// FixedPool is not safe for concurrent use.
type FixedPool struct {
	_ noCopy

	blockSize  uintptr
	blockCount uintptr
	src        PageSource

	raw     []byte        // exact slice returned by src.Alloc; kept for src.Free
	backing []byte        // cache-line-aligned subview of raw that blocks live in
	start   uintptr        // address of backing[0]; 0 means uninitialized
	head    unsafe.Pointer // nil means "no free blocks"
}

// NewFixedPool constructs an uninitialized pool for blockCount blocks of
// blockSize bytes each. blockSize must already be a multiple of
// Alignment and at least Alignment bytes, large enough to hold one free
// list index. A nil src uses the platform-default PageSource.
func NewFixedPool(blockSize, blockCount uintptr, src PageSource) *FixedPool {
	if blockSize < Alignment || blockSize%Alignment != 0 || blockCount == 0 {
		panic(ErrInvalidCapacity)
	}
	if src == nil {
		src = NewPageSource()
	}
	return &FixedPool{blockSize: blockSize, blockCount: blockCount, src: src}
}

// Init acquires the pool's backing memory, trims it to a cache-line
// boundary, and threads every block onto the free list in ascending
// order (block 0 -> 1 -> ... -> blockCount-1 -> sentinel), with the
// head set to block 0. Init is idempotent: it is a no-op on an
// already-initialized pool.
func (p *FixedPool) Init() {
	if p.start != 0 {
		return
	}
	n := p.blockSize * p.blockCount
	p.raw = p.src.Alloc(n + uintptr(CacheLineSize) - 1)
	if p.raw == nil {
		return
	}
	p.backing = cacheLineAlign(p.raw, n)
	p.start = addrOf(p.backing)

	for i := uintptr(0); i < p.blockCount; i++ {
		p.setIndexAt(p.blockPtr(i), i+1)
	}
	p.head = p.blockPtr(0)
}

// Destroy releases the pool's backing memory and resets the head to the
// null sentinel. Destroy is idempotent: it is a no-op on an
// uninitialized pool.
func (p *FixedPool) Destroy() {
	if p.start == 0 {
		return
	}
	p.src.Free(p.raw)
	p.raw = nil
	p.backing = nil
	p.start = 0
	p.head = nil
}

// Alloc returns the address of a free block, or nil if the pool is
// exhausted. The returned pointer is Alignment-aligned because every
// block is.
func (p *FixedPool) Alloc() unsafe.Pointer {
	if p.head == nil {
		return nil
	}
	old := p.head
	next := p.indexAt(old)
	if next == p.blockCount {
		p.head = nil
	} else {
		p.head = p.blockPtr(next)
	}
	return old
}

// Free returns ptr to the pool. The caller must ensure Belongs(ptr);
// Free performs no validation of its own in release builds, matching
// spec.md §4.1 ("Double-free is undefined behavior"). In debug builds, a
// pointer that does not belong to this pool panics.
func (p *FixedPool) Free(ptr unsafe.Pointer) {
	if debug && !p.Belongs(ptr) {
		panic(ErrLifecycle)
	}
	var headIdx uintptr
	if p.head == nil {
		headIdx = p.blockCount
	} else {
		headIdx = (uintptr(p.head) - p.start) / p.blockSize
	}
	p.setIndexAt(ptr, headIdx)
	p.head = ptr
}

// Belongs reports whether ptr lies within this pool's backing region at
// a block-aligned offset. It is false for nil and for an uninitialized
// pool.
func (p *FixedPool) Belongs(ptr unsafe.Pointer) bool {
	if ptr == nil || p.start == 0 {
		return false
	}
	addr := uintptr(ptr)
	end := p.start + p.blockSize*p.blockCount
	if addr < p.start || addr >= end {
		return false
	}
	return (addr-p.start)%p.blockSize == 0
}

// BlockSize returns the fixed size of every block in this pool.
func (p *FixedPool) BlockSize() uintptr { return p.blockSize }

func (p *FixedPool) blockPtr(i uintptr) unsafe.Pointer {
	return unsafe.Pointer(p.start + i*p.blockSize)
}

func (p *FixedPool) indexAt(addr unsafe.Pointer) uintptr {
	return *(*uintptr)(addr)
}

func (p *FixedPool) setIndexAt(addr unsafe.Pointer, idx uintptr) {
	*(*uintptr)(addr) = idx
}
