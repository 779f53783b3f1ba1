// Package reduce holds the two decisions that shape a shortest decimal before
// it is rendered: which neighbour wins an exact midpoint tie, and how many
// trailing zero digits the significand can shed.
//
// Both functions are pure and allocation free.
package reduce

import (
	"math/bits"

	"github.com/lattice-substrate/numcanon/numerr"
)

// maxSignificand is the exclusive upper bound of a shortest double significand
// (at most 17 decimal digits).
const maxSignificand = 100_000_000_000_000_000

// PreferRoundDown reports whether a midpoint tie should resolve to the lower
// candidate. It does exactly when significand is odd, so the surviving
// candidate is always the even one.
func PreferRoundDown(significand uint64) bool {
	return significand%2 != 0
}

// RemoveTrailingZeros strips every trailing decimal zero from significand and
// adds the number of stripped digits to exponent, so that
// significand*10^exponent is unchanged.
//
// Divisibility by 10^k is tested by multiplying with the inverse of 5^k modulo
// 2^64 and rotating right by k: the result is below floor(2^64/10^k)+1 exactly
// when the input was a multiple of 10^k, and it is then the quotient. The
// search runs over chunks of 8, 4, 2 and 1 digits, then one more single digit
// so that the 16 zeros of d*10^16 are all removed.
//
// significand must be nonzero and below 10^17.
func RemoveTrailingZeros(significand uint64, exponent int32) (uint64, int32) {
	if significand == 0 || significand >= maxSignificand {
		numerr.Violation("reduce: significand %d outside [1, 10^17)", significand)
	}

	var s int32

	r := bits.RotateLeft64(significand*28999941890838049, -8)
	if r < 184467440738 {
		s = 8
		significand = r
	}

	r = bits.RotateLeft64(significand*182622766329724561, -4)
	if r < 1844674407370956 {
		s += 4
		significand = r
	}

	r = bits.RotateLeft64(significand*10330176681277348905, -2)
	if r < 184467440737095517 {
		s += 2
		significand = r
	}

	r = bits.RotateLeft64(significand*14757395258967641293, -1)
	if r < 1844674407370955162 {
		s++
		significand = r
	}

	// Succeeds only for d*10^16, after all four rounds above have.
	r = bits.RotateLeft64(significand*14757395258967641293, -1)
	if r < 1844674407370955162 {
		s++
		significand = r
	}

	return significand, exponent + s
}
