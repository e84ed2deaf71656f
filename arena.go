// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tieralloc

import "unsafe"

const (
	ptrSize    = unsafe.Sizeof(uintptr(0))
	footerSize = ptrSize

	// hdrOff is the smallest multiple of Alignment that can hold the
	// block header's size (uintptr) and is_free (bool) fields. next_free
	// and prev_free are NOT counted here: they live at hdrOff, aliasing
	// the start of the user data region, and are only meaningful while
	// the block is free (spec.md §3's "repurposed for user data").
	hdrOff = 16 // roundUp(ptrSize+1, Alignment), computed as a constant

	// minBlockSize is the smallest legal block. A free block must be
	// able to hold both next_free and prev_free (two pointers) in its
	// data region, since the free list is explicitly doubly linked, so
	// the floor is hdrOff + 2*ptrSize + footerSize rather than the
	// single-aligned-word figure spec.md §3's prose arithmetic suggests
	// (see DESIGN.md for why the stricter bound was chosen).
	minBlockSize = hdrOff + 2*ptrSize + footerSize
)

// blkSize also doubles as the footer reader: a footer is just a size
// word, binary-identical to the header's size field.
func blkSize(b uintptr) uintptr    { return *(*uintptr)(unsafe.Pointer(b)) }
func setBlkSize(b, n uintptr)      { *(*uintptr)(unsafe.Pointer(b)) = n }
func blkFree(b uintptr) bool       { return *(*bool)(unsafe.Pointer(b + ptrSize)) }
func setBlkFree(b uintptr, f bool) { *(*bool)(unsafe.Pointer(b + ptrSize)) = f }
func blkNext(b uintptr) uintptr    { return *(*uintptr)(unsafe.Pointer(b + hdrOff)) }
func setBlkNext(b, v uintptr)      { *(*uintptr)(unsafe.Pointer(b + hdrOff)) = v }
func blkPrev(b uintptr) uintptr    { return *(*uintptr)(unsafe.Pointer(b + hdrOff + ptrSize)) }
func setBlkPrev(b, v uintptr)      { *(*uintptr)(unsafe.Pointer(b + hdrOff + ptrSize)) = v }
func setFooter(b uintptr)          { *(*uintptr)(unsafe.Pointer(b + blkSize(b) - footerSize)) = blkSize(b) }

// CoalesceArena is a variable-size allocator over a single contiguous
// region, tiled into boundary-tag blocks (header + footer). Free blocks
// are threaded onto an explicit doubly linked free list (LIFO
// insertion); Alloc is first-fit over that list, and Free coalesces
// with both neighbors before reinserting, so the arena never carries two
// adjacent free blocks (spec invariant C3).
//
// CoalesceArena is not safe for concurrent use.
type CoalesceArena struct {
	_ noCopy

	src      PageSource
	raw      []byte // exact slice returned by src.Alloc; kept for src.Free
	backing  []byte // cache-line-aligned subview of raw the arena tiles
	start    uintptr
	end      uintptr
	poolSize uintptr

	freeHead uintptr // 0 means the free list is empty
}

// NewCoalesceArena constructs an uninitialized arena. A nil src uses the
// platform-default PageSource.
func NewCoalesceArena(src PageSource) *CoalesceArena {
	if src == nil {
		src = NewPageSource()
	}
	return &CoalesceArena{src: src}
}

// Init rounds requestedSize up to at least the minimum legal block size
// and up to Alignment, acquires the backing region, trims it to a
// cache-line boundary, and installs one giant free block spanning the
// whole arena. Init is idempotent: it is a no-op on an already-
// initialized arena.
func (a *CoalesceArena) Init(requestedSize uintptr) {
	if a.start != 0 {
		return
	}
	want := requestedSize
	if want < minBlockSize {
		want = minBlockSize
	}
	want = roundUp(want, Alignment)

	a.raw = a.src.Alloc(want + uintptr(CacheLineSize) - 1)
	if a.raw == nil {
		return
	}
	a.backing = cacheLineAlign(a.raw, want)
	a.start = addrOf(a.backing)
	a.poolSize = uintptr(len(a.backing))
	a.end = a.start + a.poolSize

	setBlkSize(a.start, a.poolSize)
	setBlkNext(a.start, 0)
	setBlkPrev(a.start, 0)
	setFooter(a.start)
	setBlkFree(a.start, true)
	a.freeHead = a.start
}

// Destroy releases the arena's backing region. Destroy is idempotent: it
// is a no-op on an uninitialized arena.
func (a *CoalesceArena) Destroy() {
	if a.start == 0 {
		return
	}
	a.src.Free(a.raw)
	a.raw = nil
	a.backing = nil
	a.start, a.end, a.poolSize, a.freeHead = 0, 0, 0, 0
}

// PoolSize returns the arena's total size in bytes, 0 if uninitialized.
func (a *CoalesceArena) PoolSize() uintptr { return a.poolSize }

// Alloc finds the first free block able to hold size bytes of user data,
// splits it if the remainder would itself be a legal block, and returns
// a pointer to the user data region. It returns nil if size is 0, the
// arena is uninitialized, or no free block is large enough.
func (a *CoalesceArena) Alloc(size uintptr) unsafe.Pointer {
	if size == 0 || a.start == 0 {
		return nil
	}
	dataSize := roundUp(size, Alignment)
	occupied := roundUp(hdrOff+dataSize+footerSize, Alignment)
	if occupied < minBlockSize {
		occupied = minBlockSize
	}

	cur := a.freeHead
	for cur != 0 && blkSize(cur) < occupied {
		cur = blkNext(cur)
	}
	if cur == 0 {
		return nil
	}
	a.removeFree(cur)

	if remaining := blkSize(cur) - occupied; remaining >= minBlockSize {
		setBlkSize(cur, occupied)
		setFooter(cur)

		next := cur + occupied
		setBlkSize(next, remaining)
		setFooter(next)
		a.insertFree(next)
	}

	setBlkFree(cur, false)
	return unsafe.Pointer(cur + hdrOff)
}

// Free recovers the block header from ptr, validates it, coalesces it
// with any free neighbor on either side, and reinserts the result at the
// head of the free list. An invalid pointer (outside the arena, or
// structurally inconsistent) is ignored. A pointer to an already-free
// block is a double free: debug builds panic, release builds ignore it
// (spec.md §7).
func (a *CoalesceArena) Free(ptr unsafe.Pointer) {
	if ptr == nil || a.start == 0 {
		return
	}
	b := uintptr(ptr) - hdrOff
	if !a.validBlock(b) {
		return
	}
	if blkFree(b) {
		if debug {
			panic(ErrDoubleFree)
		}
		return
	}

	cur := b
	if cur != a.start {
		predSize := blkSize(cur - footerSize)
		if predSize <= cur-a.start {
			pred := cur - predSize
			if a.validBlock(pred) && pred+blkSize(pred) == cur && blkFree(pred) {
				a.removeFree(pred)
				setBlkSize(pred, blkSize(pred)+blkSize(cur))
				setFooter(pred)
				cur = pred
			}
		}
	}

	if next := cur + blkSize(cur); a.validBlock(next) && blkFree(next) {
		a.removeFree(next)
		setBlkSize(cur, blkSize(cur)+blkSize(next))
		setFooter(cur)
	}

	a.insertFree(cur)
}

// validBlock reports whether addr is the header address of a
// structurally consistent block fully contained within the arena:
// addr+minBlockSize must not overrun the arena (so the size field is
// safe to read), and the block's own size must keep it within bounds.
func (a *CoalesceArena) validBlock(addr uintptr) bool {
	if addr < a.start || addr+minBlockSize > a.end {
		return false
	}
	sz := blkSize(addr)
	if sz < minBlockSize || addr+sz > a.end {
		return false
	}
	return true
}

func (a *CoalesceArena) removeFree(b uintptr) {
	prev, next := blkPrev(b), blkNext(b)
	if prev != 0 {
		setBlkNext(prev, next)
	} else {
		a.freeHead = next
	}
	if next != 0 {
		setBlkPrev(next, prev)
	}
	setBlkNext(b, 0)
	setBlkPrev(b, 0)
}

func (a *CoalesceArena) insertFree(b uintptr) {
	setBlkFree(b, true)
	setBlkPrev(b, 0)
	setBlkNext(b, a.freeHead)
	if a.freeHead != 0 {
		setBlkPrev(a.freeHead, b)
	}
	a.freeHead = b
}

// belongs reports whether ptr's recovered block header lies within this
// arena's backing region. Unlike FixedPool.Belongs, this does not check
// that ptr sits on a block boundary, and neither check says whether the
// block is currently allocated; Free performs the full structural
// validation.
func (a *CoalesceArena) belongs(ptr unsafe.Pointer) bool {
	if ptr == nil || a.start == 0 {
		return false
	}
	addr := uintptr(ptr)
	return addr >= a.start+hdrOff && addr < a.end
}

// freeBlockCount walks the free list and returns its length, for tests
// and diagnostics.
func (a *CoalesceArena) freeBlockCount() int {
	n := 0
	for cur := a.freeHead; cur != 0; cur = blkNext(cur) {
		n++
	}
	return n
}
