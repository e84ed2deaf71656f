// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build !tieralloc_debug

package tieralloc

// debug is false in release builds: lifecycle misuse and double frees
// are silently ignored rather than panicking, matching spec.md §7's
// "release builds, ignore" propagation policy.
const debug = false
