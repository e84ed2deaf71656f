// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build tieralloc_debug

package tieralloc

// debug is true when built with -tags tieralloc_debug: lifecycle misuse
// and double frees abort via panic instead of being silently ignored,
// matching spec.md §7's "debug builds, abort" propagation policy.
const debug = true
