package ecmafloat

import "github.com/lattice-substrate/numcanon/numerr"

// radix100Table maps n in [0, 100) to its two ASCII digits at [2n, 2n+2).
const radix100Table = "" +
	"00010203040506070809" +
	"10111213141516171819" +
	"20212223242526272829" +
	"30313233343536373839" +
	"40414243444546474849" +
	"50515253545556575859" +
	"60616263646566676869" +
	"70717273747576777879" +
	"80818283848586878889" +
	"90919293949596979899"

// radix100HeadTable is radix100Table with the leading zero of n < 10 moved
// out: the single digit sits first, so a head group never prints '0'.
const radix100HeadTable = "" +
	"\x00\x001\x002\x003\x004\x005\x006\x007\x008\x009\x00" +
	"10111213141516171819" +
	"20212223242526272829" +
	"30313233343536373839" +
	"40414243444546474849" +
	"50515253545556575859" +
	"60616263646566676869" +
	"70717273747576777879" +
	"80818283848586878889" +
	"90919293949596979899"

// maxSignificand bounds the significands digit extraction accepts (17 digits).
const maxSignificand = 100_000_000_000_000_000

const uint32Mask = 1<<32 - 1

// convert2Digits writes n < 100 as exactly two digits.
func convert2Digits(buf []byte, n uint64) {
	_ = buf[1]
	buf[0] = radix100Table[2*n]
	buf[1] = radix100Table[2*n+1]
}

// convertHeadDigits writes 0 < n < 100 without a leading zero and returns the
// digit count.
func convertHeadDigits(buf []byte, n uint64) int {
	if n >= 10 {
		buf[0] = radix100HeadTable[2*n]
		buf[1] = radix100HeadTable[2*n+1]
		return 2
	}
	buf[0] = radix100HeadTable[2*n]
	return 1
}

// convert8Digits writes n < 10^8 as exactly eight digits, zero padded.
//
// The first multiply turns n into a 32.32 fixed-point fraction of 10^8 whose
// integer part is the top two digits; each following multiply by 100 moves
// the next two digits into the integer part.
func convert8Digits(buf []byte, n uint32) {
	_ = buf[7]
	// 281474978 = ceil(2^48 / 1,000,000) + 1
	prod := uint64(n) * 281474978
	prod >>= 16
	prod++
	convert2Digits(buf[0:], prod>>32)
	prod = (prod & uint32Mask) * 100
	convert2Digits(buf[2:], prod>>32)
	prod = (prod & uint32Mask) * 100
	convert2Digits(buf[4:], prod>>32)
	prod = (prod & uint32Mask) * 100
	convert2Digits(buf[6:], prod>>32)
}

// convertUpTo9Digits writes 0 < n < 10^9 without leading zeros and returns
// the digit count.
func convertUpTo9Digits(buf []byte, n uint32) int {
	switch {
	case n >= 100_000_000:
		// 1441151882 = ceil(2^57 / 100,000,000) + 1
		prod := uint64(n) * 1441151882
		prod >>= 25
		buf[0] = '0' + byte(prod>>32)
		prod = (prod & uint32Mask) * 100
		convert2Digits(buf[1:], prod>>32)
		prod = (prod & uint32Mask) * 100
		convert2Digits(buf[3:], prod>>32)
		prod = (prod & uint32Mask) * 100
		convert2Digits(buf[5:], prod>>32)
		prod = (prod & uint32Mask) * 100
		convert2Digits(buf[7:], prod>>32)
		return 9

	case n >= 1_000_000:
		// 281474978 = ceil(2^48 / 1,000,000) + 1
		prod := uint64(n) * 281474978
		prod >>= 16
		head := convertHeadDigits(buf, prod>>32)
		prod = (prod & uint32Mask) * 100
		convert2Digits(buf[head:], prod>>32)
		prod = (prod & uint32Mask) * 100
		convert2Digits(buf[head+2:], prod>>32)
		prod = (prod & uint32Mask) * 100
		convert2Digits(buf[head+4:], prod>>32)
		return head + 6

	case n >= 10_000:
		// 429497 = ceil(2^32 / 10,000)
		prod := uint64(n) * 429497
		head := convertHeadDigits(buf, prod>>32)
		prod = (prod & uint32Mask) * 100
		convert2Digits(buf[head:], prod>>32)
		prod = (prod & uint32Mask) * 100
		convert2Digits(buf[head+2:], prod>>32)
		return head + 4

	case n >= 100:
		// 42949673 = ceil(2^32 / 100)
		prod := uint64(n) * 42949673
		head := convertHeadDigits(buf, prod>>32)
		prod = (prod & uint32Mask) * 100
		convert2Digits(buf[head:], prod>>32)
		return head + 2

	default:
		return convertHeadDigits(buf, uint64(n))
	}
}

// significandToChars writes the decimal digits of 0 < n < 10^17 into buf
// (at least 17 bytes) and returns the digit count. Trailing zeros of n are
// written as digits.
func significandToChars(buf []byte, n uint64) int {
	if n == 0 || n >= maxSignificand {
		numerr.Violation("ecmafloat: significand %d outside [1, 10^17)", n)
	}
	if n < 100_000_000 {
		return convertUpTo9Digits(buf, uint32(n))
	}
	// At least 9 digits: a head block of 1 to 9 digits, then exactly 8.
	high := uint32(n / 100_000_000)
	low := uint32(n - uint64(high)*100_000_000)
	head := convertUpTo9Digits(buf, high)
	convert8Digits(buf[head:], low)
	return head + 8
}

// addExponent writes 0 <= exp <= 999 without leading zeros and returns the
// number of bytes written.
func addExponent(buf []byte, exp int) int {
	if exp < 0 || exp > 999 {
		numerr.Violation("ecmafloat: exponent magnitude %d outside [0, 999]", exp)
	}
	switch {
	case exp >= 100:
		// 6554 = ceil(2^16 / 10)
		d1 := (uint64(exp) * 6554) >> 16
		d2 := uint64(exp) - 10*d1
		convert2Digits(buf, d1)
		buf[2] = '0' + byte(d2)
		return 3
	case exp >= 10:
		convert2Digits(buf, uint64(exp))
		return 2
	default:
		buf[0] = '0' + byte(exp)
		return 1
	}
}
