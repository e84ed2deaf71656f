// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tieralloc

import (
	"testing"
	"unsafe"
)

func TestFixedPoolAllocFreeRoundTrip(t *testing.T) {
	p := NewFixedPool(32, 4, nil)
	p.Init()
	defer p.Destroy()

	var got []unsafe.Pointer
	for i := 0; i < 4; i++ {
		ptr := p.Alloc()
		if ptr == nil {
			t.Fatalf("alloc %d: unexpected nil", i)
		}
		if !p.Belongs(ptr) {
			t.Fatalf("alloc %d: pool does not recognize its own block", i)
		}
		got = append(got, ptr)
	}
	if ptr := p.Alloc(); ptr != nil {
		t.Fatalf("alloc past capacity: got %v, want nil", ptr)
	}

	for i, a := range got {
		for j, b := range got {
			if i != j && a == b {
				t.Fatalf("blocks %d and %d alias: %p", i, j, a)
			}
		}
	}

	p.Free(got[0])
	if ptr := p.Alloc(); ptr == nil {
		t.Fatalf("alloc after free: unexpected nil")
	}
}

func TestFixedPoolLIFOReuse(t *testing.T) {
	p := NewFixedPool(16, 3, nil)
	p.Init()
	defer p.Destroy()

	a := p.Alloc()
	b := p.Alloc()
	_ = p.Alloc()

	p.Free(b)
	p.Free(a)

	if got := p.Alloc(); got != a {
		t.Fatalf("expected most-recently-freed block %p first, got %p", a, got)
	}
	if got := p.Alloc(); got != b {
		t.Fatalf("expected second most-recently-freed block %p next, got %p", b, got)
	}
}

func TestFixedPoolBelongsRejectsForeignPointer(t *testing.T) {
	p := NewFixedPool(32, 2, nil)
	p.Init()
	defer p.Destroy()

	other := NewFixedPool(32, 2, nil)
	other.Init()
	defer other.Destroy()

	foreign := other.Alloc()
	if p.Belongs(foreign) {
		t.Fatalf("pool incorrectly claims a foreign block")
	}
	if p.Belongs(nil) {
		t.Fatalf("pool incorrectly claims nil")
	}
}

func TestFixedPoolInitDestroyIdempotent(t *testing.T) {
	p := NewFixedPool(16, 8, nil)
	p.Init()
	p.Init()
	first := p.Alloc()
	if first == nil {
		t.Fatalf("alloc after double Init: unexpected nil")
	}
	p.Destroy()
	p.Destroy()
	if p.start != 0 {
		t.Fatalf("start not reset after Destroy")
	}
}

func TestNewFixedPoolRejectsInvalidCapacity(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for zero block count")
		}
	}()
	NewFixedPool(16, 0, nil)
}

func TestNewFixedPoolRejectsUnalignedBlockSize(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for unaligned block size")
		}
	}()
	NewFixedPool(17, 4, nil)
}

func TestFixedPoolFreeCount(t *testing.T) {
	p := NewFixedPool(16, 4, nil)
	p.Init()
	defer p.Destroy()

	if got := p.freeCount(); got != 4 {
		t.Fatalf("freeCount before any alloc: got %d, want 4", got)
	}
	a := p.Alloc()
	if got := p.freeCount(); got != 3 {
		t.Fatalf("freeCount after one alloc: got %d, want 3", got)
	}
	p.Free(a)
	if got := p.freeCount(); got != 4 {
		t.Fatalf("freeCount after free: got %d, want 4", got)
	}
}
