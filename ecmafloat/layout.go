package ecmafloat

// renderDecimal writes significand*10^exponent in the Number::toString
// layout (ECMA-262 §9.8.1 steps 6 to 10) and returns the bytes written.
// significand must already be free of trailing zeros; buf must hold
// MaxLength bytes.
func renderDecimal(buf []byte, significand uint64, exponent int32) int {
	_ = buf[MaxLength-1]

	var digits [17]byte
	k := significandToChars(digits[:], significand)

	// Decimal point position: the value is 0.d1...dk * 10^n.
	n := k + int(exponent)

	switch {
	case k <= n && n <= 21:
		// Step 6: integer, padded with zeros.
		pos := copy(buf, digits[:k])
		for ; pos < n; pos++ {
			buf[pos] = '0'
		}
		return pos

	case 0 < n && n <= 21:
		// Step 7: the point falls inside the digits.
		pos := copy(buf, digits[:n])
		buf[pos] = '.'
		pos++
		pos += copy(buf[pos:], digits[n:k])
		return pos

	case -6 < n && n <= 0:
		// Step 8: 0.000ddd
		buf[0] = '0'
		buf[1] = '.'
		pos := 2
		for i := 0; i < -n; i++ {
			buf[pos] = '0'
			pos++
		}
		pos += copy(buf[pos:], digits[:k])
		return pos

	default:
		// Steps 9 and 10: d.ddde±x
		buf[0] = digits[0]
		pos := 1
		if k > 1 {
			buf[pos] = '.'
			pos++
			pos += copy(buf[pos:], digits[1:k])
		}
		buf[pos] = 'e'
		pos++
		exp := n - 1
		if exp >= 0 {
			buf[pos] = '+'
		} else {
			buf[pos] = '-'
			exp = -exp
		}
		pos++
		pos += addExponent(buf[pos:], exp)
		return pos
	}
}
