// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build unix

package tieralloc

import (
	"golang.org/x/sys/unix"
)

// mmapPageSource is the default PageSource on unix targets: it acquires
// anonymous, zero-filled pages directly from the kernel with mmap and
// returns them to the kernel with munmap, so the three tiers' backing
// regions are genuine OS pages rather than Go-heap memory.
type mmapPageSource struct{}

// NewPageSource returns the platform-default PageSource.
func NewPageSource() PageSource {
	return mmapPageSource{}
}

// Alloc rounds size up to a whole number of OS pages and mmaps that many
// bytes PROT_READ|PROT_WRITE, MAP_PRIVATE|MAP_ANONYMOUS. It returns nil
// if the kernel refuses the mapping.
func (mmapPageSource) Alloc(size uintptr) []byte {
	if size == 0 {
		return nil
	}
	n := int(roundUp(size, PageSize))
	b, err := unix.Mmap(-1, 0, n, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		return nil
	}
	return b
}

// Free munmaps memory previously returned by Alloc.
func (mmapPageSource) Free(b []byte) {
	if len(b) == 0 {
		return
	}
	_ = unix.Munmap(b)
}
