// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tieralloc

import "unsafe"

// Default tier-sizing constants (spec.md §4.4).
const (
	DefaultOSThreshold       = 10 * 1024 * 1024
	DefaultArenaInitialSize  = 4 * 1024 * 1024
)

var (
	osThreshold      uintptr = DefaultOSThreshold
	arenaInitialSize uintptr = DefaultArenaInitialSize
)

// SetOSThreshold updates the package-level size, in bytes, above which a
// new Allocator routes requests directly to OSDirect. It only affects
// Allocators constructed after the call.
func SetOSThreshold(n int) { osThreshold = uintptr(n) }

// SetArenaInitialSize updates the package-level initial CoalesceArena
// size, in bytes, used by Allocators constructed after the call.
func SetArenaInitialSize(n int) { arenaInitialSize = uintptr(n) }

type lifecycleState int

const (
	stateFresh lifecycleState = iota
	stateInitialized
	stateDestroyed
)

// Allocator is the dispatcher that unifies the three tiers: it routes
// Alloc(n) to a tier by size and Free(p) to a tier by pointer ownership,
// and owns the lifecycle of every tier it holds.
//
// Allocator is not safe for concurrent use.
type Allocator struct {
	_ noCopy

	src PageSource

	pools [NumSizeClasses]*FixedPool
	arena *CoalesceArena
	osd   *OSDirect

	osThreshold  uintptr
	arenaInitial uintptr

	state lifecycleState
}

// New constructs an Allocator with the default tier configuration
// (six FixedPool size classes of 1024 blocks each, a 4 MiB
// CoalesceArena, and an OSDirect tier), backed by the platform-default
// PageSource. The Allocator is fresh; call Init before using it.
func New() *Allocator {
	return NewWithPageSource(nil)
}

// NewWithPageSource is like New but lets the caller supply the
// PageSource every tier acquires its backing memory from — useful for
// tests that want a deterministic or fault-injecting source.
func NewWithPageSource(src PageSource) *Allocator {
	if src == nil {
		src = NewPageSource()
	}
	d := &Allocator{
		src:          src,
		osThreshold:  osThreshold,
		arenaInitial: arenaInitialSize,
	}
	for i, sz := range classSizes {
		d.pools[i] = NewFixedPool(sz, FixedPoolBlockCount, src)
	}
	d.arena = NewCoalesceArena(src)
	d.osd = NewOSDirect(src)
	return d
}

// Init transitions the Allocator from fresh to initialized, acquiring
// backing memory for every FixedPool size class and the CoalesceArena.
// It is a precondition violation to call Init on an already-initialized
// or destroyed Allocator; release builds treat the call as a no-op,
// debug builds panic.
func (d *Allocator) Init() {
	if d.state != stateFresh {
		if debug {
			panic(ErrLifecycle)
		}
		return
	}
	for _, p := range d.pools {
		p.Init()
	}
	d.arena.Init(d.arenaInitial)
	d.state = stateInitialized
}

// Destroy releases every outstanding OSDirect block, destroys the
// arena, destroys every pool, and marks the Allocator terminal. Further
// Alloc/Free calls after Destroy are precondition violations: release
// builds return nil/no-op, debug builds panic.
func (d *Allocator) Destroy() {
	if d.state == stateDestroyed {
		return
	}
	d.osd.ReleaseAll()
	d.arena.Destroy()
	for _, p := range d.pools {
		p.Destroy()
	}
	d.state = stateDestroyed
}

// Alloc routes a request of n bytes to the most appropriate tier:
//
//  1. n == 0 returns nil.
//  2. m = roundUp(n, Alignment); m > osThreshold goes straight to
//     OSDirect.
//  3. Otherwise the smallest size class S[i] >= m is tried first; on
//     success that pointer is returned.
//  4. If the chosen pool is exhausted (or m exceeds every size class),
//     the request falls through to the CoalesceArena.
//  5. If the arena also returns nil, Alloc returns nil. There is no
//     further fallback to OSDirect for mid-sized requests (spec.md §9's
//     "arena exhaustion path never grows the arena").
func (d *Allocator) Alloc(n uintptr) unsafe.Pointer {
	if d.state != stateInitialized {
		if debug {
			panic(ErrLifecycle)
		}
		return nil
	}
	if n == 0 {
		return nil
	}
	m := roundUp(n, Alignment)

	if m > d.osThreshold {
		return d.osd.Alloc(m)
	}

	if idx, ok := classForSize(m); ok {
		if p := d.pools[idx].Alloc(); p != nil {
			return p
		}
	}
	return d.arena.Alloc(m)
}

// Free routes ptr to its owning tier by address: OSDirect's outstanding
// table is checked first, then each FixedPool's Belongs range check,
// then the CoalesceArena (which validates the pointer internally). nil
// is a no-op. This ordering is unambiguous only because the three tiers
// allocate from disjoint backing regions.
func (d *Allocator) Free(ptr unsafe.Pointer) {
	if ptr == nil {
		return
	}
	if d.state != stateInitialized {
		if debug {
			panic(ErrLifecycle)
		}
		return
	}
	if d.osd.Owns(ptr) {
		d.osd.Free(ptr)
		return
	}
	for _, p := range d.pools {
		if p.Belongs(ptr) {
			p.Free(ptr)
			return
		}
	}
	d.arena.Free(ptr)
}

// Pool returns the FixedPool for size class index i, for diagnostics and
// tests. i must be in [0, NumSizeClasses).
func (d *Allocator) Pool(i int) *FixedPool { return d.pools[i] }

// Arena returns the Allocator's CoalesceArena, for diagnostics and
// tests.
func (d *Allocator) Arena() *CoalesceArena { return d.arena }

// OSDirect returns the Allocator's OSDirect tier, for diagnostics and
// tests.
func (d *Allocator) OSDirect() *OSDirect { return d.osd }
