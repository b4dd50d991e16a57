// SPDX-License-Identifier: MIT
/*
Package bitint provides power-of-two helpers for sizing FFT windows and
wavetables. All functions are O(1), allocation free and safe to call from a
render callback.

Usage:

	// Round an analysis window up to an FFT-friendly size
	size := bitint.NextPowerOfTwo(1000) // 1024

	// Warn when a table length defeats mask-based wrapping
	if !bitint.IsPowerOfTwo(tableSize) { ... }

NextPowerOfTwo subtracts one before taking the bit length so exact powers of
two are preserved: bits.Len(7) = 3 and 1<<3 = 8, whereas bits.Len(8) = 4
would double the input.
*/
package bitint

import "math/bits"

// NextPowerOfTwo returns the smallest power of 2 >= size, or 1 for
// size <= 0.
//
//	Input  Output
//	4      4
//	5      8
//	0      1
//	-1     1
func NextPowerOfTwo(size int) int {
	if size <= 0 {
		return 1
	}
	return 1 << bits.Len(uint(size-1))
}

// IsPowerOfTwo reports whether n is a positive power of 2. Powers of 2 have
// exactly one bit set, so n&(n-1) clears it to zero.
//
//	Input  Output  Binary
//	8      true    1000 & 0111 = 0000
//	7      false   0111 & 0110 = 0110
//	0      false   Not positive
func IsPowerOfTwo(n int) bool {
	return n > 0 && (n&(n-1)) == 0
}
