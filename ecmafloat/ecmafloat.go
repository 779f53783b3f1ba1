// Package ecmafloat implements the ECMAScript Number::toString algorithm for
// IEEE 754 double-precision floating-point values, radix 10.
//
// The algorithm is specified in ECMA-262 as Number::toString (§9.8.1 in the
// 5th Edition; §7.1.12.1 in ES2015; §6.1.6.1.20 in the living standard).
// The output of FormatDouble is byte-identical to ECMAScript's String(number)
// for all finite doubles.
//
// A conversion runs in three steps: shortest.ToDecimal finds the shortest
// round-tripping decimal, reduce.RemoveTrailingZeros brings it to canonical
// form, and the renderer turns digits and decimal point position into one of
// the four ECMA-262 layouts. Rendering writes straight into the caller's
// buffer; only the exact shortest search allocates.
package ecmafloat

import (
	"math"

	"github.com/lattice-substrate/numcanon/numerr"
	"github.com/lattice-substrate/numcanon/reduce"
	"github.com/lattice-substrate/numcanon/shortest"
)

const (
	// MaxLength is the longest text WriteDouble produces for a non-negative
	// value.
	MaxLength = 25

	// MaxSignedLength adds room for the leading '-'. It is the buffer size
	// WriteDouble requires.
	MaxSignedLength = MaxLength + 1
)

// ErrNotFinite is returned by AppendDouble and FormatDouble for NaN and ±Infinity.
var ErrNotFinite = numerr.New(numerr.NotFinite, -1, "ecmafloat: value is not finite (NaN or Infinity)")

const (
	signMask     = 1 << 63
	exponentMask = 0x7FF << 52
)

func isNegative(bits uint64) bool {
	return bits&signMask != 0
}

// isNonzero reports whether bits encode anything but ±0.
func isNonzero(bits uint64) bool {
	return bits&^signMask != 0
}

func isFinite(bits uint64) bool {
	return bits&exponentMask != exponentMask
}

// WriteDouble writes the Number::toString text of f to the start of buf and
// returns the number of bytes written. No terminator is appended.
//
// buf must be at least MaxSignedLength bytes long and f must be finite; both
// are checked once on entry and a violation panics. Negative zero is written
// as "0", like String(-0).
func WriteDouble(buf []byte, f float64) int {
	if len(buf) < MaxSignedLength {
		numerr.Violation("ecmafloat: buffer of %d bytes, need %d", len(buf), MaxSignedLength)
	}
	bits := math.Float64bits(f)
	if !isFinite(bits) {
		numerr.Violation("ecmafloat: %v is not finite", f)
	}

	if !isNonzero(bits) {
		buf[0] = '0'
		return 1
	}

	pos := 0
	if isNegative(bits) {
		buf[0] = '-'
		pos = 1
		f = -f
	}

	d := shortest.ToDecimal(f, reduce.PreferRoundDown)
	significand, exponent := reduce.RemoveTrailingZeros(d.Significand, d.Exponent)
	return pos + renderDecimal(buf[pos:], significand, exponent)
}

// AppendDouble appends the Number::toString text of f to dst.
// NaN and ±Infinity return ErrNotFinite and leave dst unchanged.
func AppendDouble(dst []byte, f float64) ([]byte, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return dst, ErrNotFinite
	}
	var buf [MaxSignedLength]byte
	n := WriteDouble(buf[:], f)
	return append(dst, buf[:n]...), nil
}

// FormatDouble formats an IEEE 754 double-precision value exactly as specified
// by the ECMAScript Number::toString algorithm (radix 10).
//
// Special cases:
//   - Negative zero (-0) returns "0".
//   - NaN and ±Infinity return an error (ErrNotFinite).
func FormatDouble(f float64) (string, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", ErrNotFinite
	}
	var buf [MaxSignedLength]byte
	n := WriteDouble(buf[:], f)
	return string(buf[:n]), nil
}
