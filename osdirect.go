// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tieralloc

import "unsafe"

// osBlock is one outstanding large allocation record.
type osBlock struct {
	addr uintptr
	mem  []byte
}

// OSDirect passes requests above the Allocator's large-allocation
// threshold straight through to a PageSource, keeping an ordered record
// of every outstanding block so Free can locate it by address and
// Destroy can release anything the caller never freed (spec.md §5's
// leak-policy safety net).
//
// OSDirect is not safe for concurrent use.
type OSDirect struct {
	_ noCopy

	src      PageSource
	blocks   []osBlock
}

// NewOSDirect constructs an OSDirect tier. A nil src uses the
// platform-default PageSource.
func NewOSDirect(src PageSource) *OSDirect {
	if src == nil {
		src = NewPageSource()
	}
	return &OSDirect{src: src}
}

// Alloc requests size bytes from the page source and, on success,
// records the resulting block before returning its address. It returns
// nil if the page source cannot satisfy the request.
func (o *OSDirect) Alloc(size uintptr) unsafe.Pointer {
	mem := o.src.Alloc(size)
	if mem == nil {
		return nil
	}
	addr := addrOf(mem)
	o.blocks = append(o.blocks, osBlock{addr: addr, mem: mem})
	return unsafe.Pointer(addr)
}

// Free releases the block whose address equals ptr and removes its
// record. It is a no-op if ptr does not match any outstanding block.
func (o *OSDirect) Free(ptr unsafe.Pointer) {
	addr := uintptr(ptr)
	for i, b := range o.blocks {
		if b.addr == addr {
			o.src.Free(b.mem)
			o.blocks = append(o.blocks[:i], o.blocks[i+1:]...)
			return
		}
	}
}

// Owns reports whether ptr is the address of a currently outstanding
// OSDirect block.
func (o *OSDirect) Owns(ptr unsafe.Pointer) bool {
	addr := uintptr(ptr)
	for _, b := range o.blocks {
		if b.addr == addr {
			return true
		}
	}
	return false
}

// ReleaseAll frees every outstanding block, regardless of whether the
// caller ever called Free on it. Destroy calls this so no mapping
// outlives the Allocator.
func (o *OSDirect) ReleaseAll() {
	for _, b := range o.blocks {
		o.src.Free(b.mem)
	}
	o.blocks = nil
}

// Outstanding returns the number of currently outstanding OSDirect
// blocks.
func (o *OSDirect) Outstanding() int { return len(o.blocks) }
