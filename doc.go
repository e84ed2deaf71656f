// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package tieralloc implements a user-space, process-local memory allocator
// built from three size-routed tiers and a dispatcher that unifies them.
//
// # Tiers
//
//	Tier          Share   Responsibility
//	────          ─────   ──────────────
//	FixedPool     ~25%    Constant-time alloc/free of uniform-size blocks
//	                      from a pre-sized arena, using an intrusive
//	                      index-based free list (no per-block header).
//	CoalesceArena ~45%    Variable-size allocation inside a single arena
//	                      using boundary-tag blocks, first-fit on an
//	                      explicit doubly linked free list, and immediate
//	                      bidirectional coalescing on free.
//	OSDirect      ~5%     Passthrough to a PageSource for requests above
//	                      the large-allocation threshold.
//	Allocator     ~25%    Routes Alloc(n) to a tier by size and Free(p) to
//	                      a tier by pointer ownership.
//
// # Routing
//
// Alloc classifies by size: zero-byte requests return nil, requests above
// the OS threshold (DefaultOSThreshold unless changed with SetOSThreshold)
// go straight to OSDirect, requests that fit a FixedPool size
// class try that pool first and fall back to the CoalesceArena on
// exhaustion, and everything else goes directly to the arena. Free has no
// size information, so the Allocator identifies the owning tier by
// address: OSDirect's outstanding table first, then each FixedPool's
// Belongs range check, then the arena (which validates the pointer
// internally). This works only because the three tiers allocate from
// disjoint backing regions.
//
// # Thread safety
//
// This package is NOT goroutine-safe. Every operation is synchronous,
// CPU-bound, and assumes a single caller; there are no suspension points
// and no internal locking. Callers that need concurrent access must
// serialize externally.
//
// # Page sources
//
// Each tier acquires its backing memory through a PageSource rather than
// calling into the OS directly. The default PageSource mmaps anonymous,
// zero-filled memory on unix targets and falls back to pinned Go byte
// slices elsewhere; see pagesource_unix.go and pagesource_other.go.
//
// # Non-goals
//
// No thread safety, no realloc, no relocation or compaction, no tracking
// of requested-vs-usable size, no security hardening, no NUMA awareness,
// no precise OOM recovery beyond returning a nil pointer from Alloc.
package tieralloc
