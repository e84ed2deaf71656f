// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tieralloc

import (
	"fmt"
	"io"
)

// maxDumpBlocks caps how many free-list entries DumpBlocks will print for
// a single tier, so a pathological arena can't turn a diagnostic dump
// into an unbounded write.
const maxDumpBlocks = 1000

// PoolStat is a point-in-time snapshot of one FixedPool size class.
type PoolStat struct {
	BlockSize  uintptr
	BlockCount uintptr
	FreeCount  uintptr
}

// ArenaStat is a point-in-time snapshot of the CoalesceArena.
type ArenaStat struct {
	PoolSize   uintptr
	FreeBlocks int
}

// Stats is a point-in-time snapshot of every tier an Allocator owns,
// modeled on the counters kept by size-classed pool allocators in the
// wild (PoolStats-style accounting) rather than anything this package
// tracks continuously — each call walks live state to build it.
type Stats struct {
	Pools        [NumSizeClasses]PoolStat
	Arena        ArenaStat
	OSOutstanding int
}

// Stats walks every tier and returns a snapshot of its current
// occupancy. It is safe to call at any point in the Allocator's
// lifecycle; an uninitialized or destroyed tier reports zero free
// blocks, a zero arena size and no outstanding OSDirect blocks, while
// each pool still reports its configured BlockSize and BlockCount.
func (d *Allocator) Stats() Stats {
	var s Stats
	for i, p := range d.pools {
		s.Pools[i] = PoolStat{
			BlockSize:  p.blockSize,
			BlockCount: p.blockCount,
			FreeCount:  p.freeCount(),
		}
	}
	s.Arena = ArenaStat{
		PoolSize:   d.arena.PoolSize(),
		FreeBlocks: d.arena.freeBlockCount(),
	}
	s.OSOutstanding = d.osd.Outstanding()
	return s
}

// DumpStat writes a one-line-per-tier human-readable summary of the
// Allocator's current state to w.
func (d *Allocator) DumpStat(w io.Writer) {
	s := d.Stats()
	for i, p := range s.Pools {
		fmt.Fprintf(w, "pool[%d] block_size=%d block_count=%d free=%d\n",
			i, p.BlockSize, p.BlockCount, p.FreeCount)
	}
	fmt.Fprintf(w, "arena pool_size=%d free_blocks=%d\n", s.Arena.PoolSize, s.Arena.FreeBlocks)
	fmt.Fprintf(w, "osdirect outstanding=%d\n", s.OSOutstanding)
}

// DumpBlocks writes up to limit free-list entries per tier (capped at
// maxDumpBlocks) to w: each FixedPool's free chain by index, and the
// CoalesceArena's free list by block address and size.
func (d *Allocator) DumpBlocks(w io.Writer, limit int) {
	if limit <= 0 || limit > maxDumpBlocks {
		limit = maxDumpBlocks
	}
	for i, p := range d.pools {
		fmt.Fprintf(w, "pool[%d] free blocks:\n", i)
		n := 0
		for cur := p.head; cur != nil && n < limit; n++ {
			fmt.Fprintf(w, "  index=%d addr=%p\n", (uintptr(cur)-p.start)/p.blockSize, cur)
			next := p.indexAt(cur)
			if next == p.blockCount {
				break
			}
			cur = p.blockPtr(next)
		}
	}
	fmt.Fprintf(w, "arena free blocks:\n")
	n := 0
	for cur := d.arena.freeHead; cur != 0 && n < limit; cur, n = blkNext(cur), n+1 {
		fmt.Fprintf(w, "  addr=%#x size=%d\n", cur, blkSize(cur))
	}
}

// freeCount walks the FixedPool's free list and returns its length, for
// Stats and tests.
func (p *FixedPool) freeCount() uintptr {
	var n uintptr
	for cur := p.head; cur != nil; {
		n++
		next := p.indexAt(cur)
		if next == p.blockCount {
			break
		}
		cur = p.blockPtr(next)
	}
	return n
}
