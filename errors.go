// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tieralloc

import "errors"

// ErrDoubleFree is raised, in debug builds only, when free is called
// twice on the same CoalesceArena block without an intervening alloc.
// Release builds ignore the condition instead, per spec.md §7.
var ErrDoubleFree = errors.New("tieralloc: double free")

// ErrInvalidCapacity is raised, in every build, when NewFixedPool is
// asked for a zero block count or a block size that is smaller than
// Alignment or not a multiple of it. CoalesceArena never raises it: Init
// rounds a too-small size up to the minimum block size instead.
var ErrInvalidCapacity = errors.New("tieralloc: invalid capacity")

// ErrLifecycle is raised, in debug builds only, for use-before-init,
// double-init or use-after-destroy misuse of the Allocator, and by
// FixedPool.Free for a pointer the pool does not own.
var ErrLifecycle = errors.New("tieralloc: lifecycle misuse")
