// Package shortest finds, for a finite positive double, the decimal value with
// the fewest significant digits that reads back as the same double.
//
// The search is the Burger-Dybvig free-format algorithm over exact math/big
// integers. It is not the fast path of a production engine, but it is exact
// for every input and small enough to audit.
package shortest

import (
	"math"
	"math/big"

	"github.com/lattice-substrate/numcanon/numerr"
)

// MaxDigits is the most significant digits a shortest double can need.
const MaxDigits = 17

// Decimal is the value Significand * 10^Exponent.
//
// The significand produced by ToDecimal is shortest but may still end in zero
// digits when the last digit was rounded up with a carry.
type Decimal struct {
	Significand uint64
	Exponent    int32
}

// TieBreaker decides an exact midpoint between two candidates. It receives
// the upper candidate significand and returns true to keep the lower one.
type TieBreaker func(significand uint64) bool

var (
	bigTen = big.NewInt(10)
)

// ToDecimal returns the shortest decimal that rounds back to f. f must be
// finite and greater than zero; preferRoundDown must not be nil.
//
//nolint:gocyclo,cyclop // The termination conditions mirror the published algorithm step by step.
func ToDecimal(f float64, preferRoundDown TieBreaker) Decimal {
	if !(f > 0) || math.IsInf(f, 1) {
		numerr.Violation("shortest: input %v is not finite and positive", f)
	}
	if preferRoundDown == nil {
		numerr.Violation("shortest: nil tie breaker")
	}

	bits := math.Float64bits(f)
	mantissa := bits & ((1 << 52) - 1)
	biasedExp := int((bits >> 52) & 0x7FF)

	var fMant uint64
	var fExp int
	if biasedExp == 0 {
		fMant = mantissa
		fExp = 1 - 1023 - 52 // -1074
	} else {
		fMant = (1 << 52) | mantissa
		fExp = biasedExp - 1023 - 52
	}

	// At the bottom of a binade the gap below f is half the gap above it.
	lowerBoundary := biasedExp > 1 && mantissa == 0

	// A reader rounding half to even maps both interval ends back to f
	// when fMant is even.
	inclusive := fMant%2 == 0

	// Scaled integers with r/s = f and mPlus/s, mMinus/s the distances to the
	// upper and lower rounding boundaries.
	r := new(big.Int)
	s := new(big.Int)
	mPlus := new(big.Int)
	mMinus := new(big.Int)

	r.SetUint64(fMant)
	if fExp >= 0 {
		be := uint(fExp)
		if !lowerBoundary {
			r.Lsh(r, be+1)
			s.SetInt64(2)
			mPlus.Lsh(bigOne(), be)
			mMinus.Set(mPlus)
		} else {
			r.Lsh(r, be+2)
			s.SetInt64(4)
			mPlus.Lsh(bigOne(), be+1)
			mMinus.Lsh(bigOne(), be)
		}
	} else {
		nbe := uint(-fExp)
		if !lowerBoundary {
			r.Lsh(r, 1)
			s.Lsh(bigOne(), nbe+1)
			mPlus.SetInt64(1)
			mMinus.SetInt64(1)
		} else {
			r.Lsh(r, 2)
			s.Lsh(bigOne(), nbe+2)
			mPlus.SetInt64(2)
			mMinus.SetInt64(1)
		}
	}

	k := estimateK(f)
	if k > 0 {
		s.Mul(s, pow10(k))
	} else if k < 0 {
		p := pow10(-k)
		r.Mul(r, p)
		mPlus.Mul(mPlus, p)
		mMinus.Mul(mMinus, p)
	}

	// n is the decimal point position of 0.d1d2...dk * 10^n.
	n := k

	// Correct the estimate upwards when the interval reaches 10^n.
	high := new(big.Int).Add(r, mPlus)
	if reaches(high.Cmp(s), inclusive) {
		s.Mul(s, bigTen)
		n++
	}

	// And downwards while the leading digit would be zero.
	tmp := new(big.Int)
	for {
		tmp.Mul(r, bigTen)
		if !below(tmp.Cmp(s), inclusive) {
			break
		}
		tmp.Add(r, mPlus)
		tmp.Mul(tmp, bigTen)
		if !below(tmp.Cmp(s), inclusive) {
			break
		}
		r.Mul(r, bigTen)
		mPlus.Mul(mPlus, bigTen)
		mMinus.Mul(mMinus, bigTen)
		n--
	}

	var significand uint64
	var digits int32
	quot := new(big.Int)
	rem := new(big.Int)
	for {
		r.Mul(r, bigTen)
		mPlus.Mul(mPlus, bigTen)
		mMinus.Mul(mMinus, bigTen)

		quot.QuoRem(r, s, rem)
		r, rem = rem, r
		significand = significand*10 + quot.Uint64()
		digits++
		if digits > MaxDigits {
			numerr.Violation("shortest: %v needs more than %d digits", f, MaxDigits)
		}

		// canDown: truncating here stays inside the interval.
		// canUp: rounding the last digit up stays inside the interval.
		canDown := reaches(mMinus.Cmp(r), inclusive)
		high.Add(r, mPlus)
		canUp := reaches(high.Cmp(s), inclusive)

		if !canDown && !canUp {
			continue
		}
		cmp := 0
		if canDown && canUp {
			tmp.Lsh(r, 1)
			cmp = tmp.Cmp(s)
		} else if canUp {
			cmp = 1
		} else {
			cmp = -1
		}
		significand = finishDigit(significand, cmp, preferRoundDown)
		break
	}

	return Decimal{Significand: significand, Exponent: int32(n) - digits}
}

// finishDigit settles the last digit. cmp orders twice the remainder against
// the scale: below keeps significand, above rounds it up, and an exact
// midpoint is handed to preferRoundDown.
func finishDigit(significand uint64, cmp int, preferRoundDown TieBreaker) uint64 {
	switch {
	case cmp < 0:
		return significand
	case cmp > 0:
		return significand + 1
	case preferRoundDown(significand + 1):
		return significand
	default:
		return significand + 1
	}
}

// reaches reports a >= b (cmp = a.Cmp(b)), or a > b for exclusive bounds.
func reaches(cmp int, inclusive bool) bool {
	if inclusive {
		return cmp >= 0
	}
	return cmp > 0
}

// below reports a < b (cmp = a.Cmp(b)), or a <= b for exclusive bounds.
func below(cmp int, inclusive bool) bool {
	if inclusive {
		return cmp < 0
	}
	return cmp <= 0
}

func bigOne() *big.Int {
	return big.NewInt(1)
}

// estimateK returns an estimate of ceil(log10(f)) for f > 0. It may be off by
// one; ToDecimal corrects it.
func estimateK(f float64) int {
	bits := math.Float64bits(f)
	biasedExp := int((bits >> 52) & 0x7FF)

	var log2f float64
	if biasedExp == 0 {
		log2f = math.Log2(f)
	} else {
		log2f = float64(biasedExp-1023) + math.Log2(1.0+float64(bits&((1<<52)-1))/float64(uint64(1)<<52))
	}
	return int(math.Ceil(log2f / math.Log2(10)))
}

// pow10Cache covers every power ToDecimal can ask for: doubles span roughly
// 10^-324 to 10^308.
var pow10Cache [700]*big.Int

func init() {
	pow10Cache[0] = big.NewInt(1)
	for i := 1; i < len(pow10Cache); i++ {
		pow10Cache[i] = new(big.Int).Mul(pow10Cache[i-1], bigTen)
	}
}

// pow10 returns 10^n. The result is shared and must not be mutated.
func pow10(n int) *big.Int {
	if n >= 0 && n < len(pow10Cache) {
		return pow10Cache[n]
	}
	return new(big.Int).Exp(bigTen, big.NewInt(int64(n)), nil)
}
