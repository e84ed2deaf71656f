// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tieralloc

import "unsafe"

// PageSize is the memory page size (4 KiB by default) that page-aligned
// backing regions are rounded up to.
var PageSize uintptr = 4096

// SetPageSize updates the package-level page size used for alignment.
func SetPageSize(size int) {
	PageSize = uintptr(size)
}

// Alignment is the universal byte alignment for every user-visible
// pointer this package returns and for every internal structure it
// builds. All requested sizes are rounded up to a multiple of Alignment
// before being routed to a tier.
const Alignment = 8

// roundUp rounds n up to the next multiple of align. align must be a
// power of two.
func roundUp(n, align uintptr) uintptr {
	return (n + align - 1) &^ (align - 1)
}

// noCopy is a sentinel used to prevent copying of types that embed
// addresses into their own backing memory (FixedPool, CoalesceArena).
// go vet's copylocks check flags any value embedding a noCopy as soon as
// it is copied, because copying would duplicate a pointer that is only
// valid for one owner.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// PageSource is the abstract backing-memory provider every tier
// allocates from. It models the operating system's page allocator
// without committing this package to any particular syscall surface;
// see pagesource_unix.go and pagesource_other.go for the concrete
// implementations selected by build tag.
type PageSource interface {
	// Alloc returns size bytes of zero-filled, contiguous memory aligned
	// to at least Alignment, or nil if no such memory is available.
	Alloc(size uintptr) []byte

	// Free releases memory previously returned by Alloc. Freeing memory
	// not obtained from this PageSource, or double-freeing, is
	// undefined.
	Free(b []byte)
}

// addrOf returns the address of the first byte of b, or 0 for an empty
// slice.
func addrOf(b []byte) uintptr {
	if len(b) == 0 {
		return 0
	}
	return uintptr(unsafe.Pointer(&b[0]))
}
