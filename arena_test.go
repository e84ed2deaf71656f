// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tieralloc

import (
	"testing"
	"unsafe"
)

func TestCoalesceArenaAllocFree(t *testing.T) {
	a := NewCoalesceArena(nil)
	a.Init(4096)
	defer a.Destroy()

	if a.PoolSize() < 4096 {
		t.Fatalf("pool size %d smaller than requested 4096", a.PoolSize())
	}

	p1 := a.Alloc(64)
	p2 := a.Alloc(128)
	if p1 == nil || p2 == nil {
		t.Fatalf("alloc failed: p1=%v p2=%v", p1, p2)
	}
	if p1 == p2 {
		t.Fatalf("two live allocations alias at %p", p1)
	}

	a.Free(p1)
	a.Free(p2)

	// A fully freed small arena must have coalesced back to one block.
	if n := a.freeBlockCount(); n != 1 {
		t.Fatalf("free block count after freeing everything: got %d, want 1", n)
	}
}

func TestCoalesceArenaCoalescesBothNeighbors(t *testing.T) {
	a := NewCoalesceArena(nil)
	a.Init(4096)
	defer a.Destroy()

	p1 := a.Alloc(64)
	p2 := a.Alloc(64)
	p3 := a.Alloc(64)
	if p1 == nil || p2 == nil || p3 == nil {
		t.Fatalf("alloc failed: p1=%v p2=%v p3=%v", p1, p2, p3)
	}

	a.Free(p1)
	a.Free(p3)
	if n := a.freeBlockCount(); n < 2 {
		t.Fatalf("expected at least two disjoint free regions, got %d", n)
	}

	a.Free(p2)
	if n := a.freeBlockCount(); n != 1 {
		t.Fatalf("expected full coalescing back to one block, got %d free blocks", n)
	}
}

func TestCoalesceArenaFirstFitReusesFreedBlock(t *testing.T) {
	a := NewCoalesceArena(nil)
	a.Init(4096)
	defer a.Destroy()

	p1 := a.Alloc(64)
	a.Free(p1)

	p2 := a.Alloc(64)
	if p2 != p1 {
		t.Fatalf("expected freed block to be reused at same address, got %p want %p", p2, p1)
	}
}

func TestCoalesceArenaAllocTooLargeFails(t *testing.T) {
	a := NewCoalesceArena(nil)
	a.Init(256)
	defer a.Destroy()

	if ptr := a.Alloc(a.PoolSize() * 2); ptr != nil {
		t.Fatalf("alloc larger than pool: got %v, want nil", ptr)
	}
}

func TestCoalesceArenaAllocZeroReturnsNil(t *testing.T) {
	a := NewCoalesceArena(nil)
	a.Init(4096)
	defer a.Destroy()

	if ptr := a.Alloc(0); ptr != nil {
		t.Fatalf("alloc(0): got %v, want nil", ptr)
	}
}

func TestCoalesceArenaFreeInvalidPointerIgnored(t *testing.T) {
	a := NewCoalesceArena(nil)
	a.Init(4096)
	defer a.Destroy()

	// A pointer well outside the arena must be silently ignored, not
	// crash the process.
	var x [8]byte
	a.Free(unsafe.Pointer(&x[0]))
	if n := a.freeBlockCount(); n != 1 {
		t.Fatalf("free of foreign pointer altered arena state: free blocks = %d", n)
	}
}

func TestCoalesceArenaInitDestroyIdempotent(t *testing.T) {
	a := NewCoalesceArena(nil)
	a.Init(4096)
	a.Init(8192) // second call must be a no-op
	if a.PoolSize() >= 8192 {
		t.Fatalf("second Init grew the arena: pool size %d", a.PoolSize())
	}
	a.Destroy()
	a.Destroy()
	if a.start != 0 {
		t.Fatalf("start not reset after Destroy")
	}
}
