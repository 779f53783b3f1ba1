package ecmafloat

import (
	"bufio"
	"errors"
	"math"
	"os"
	"strconv"
	"strings"
	"testing"

	"github.com/lattice-substrate/numcanon/numerr"
)

const goldenVectorCount = 8618

func TestFormatDoubleGoldenVectors(t *testing.T) {
	f, err := os.Open("testdata/golden_vectors.csv")
	if err != nil {
		t.Fatalf("open golden vectors: %v", err)
	}
	defer f.Close()

	s := bufio.NewScanner(f)
	lineNo := 0
	for s.Scan() {
		lineNo++
		line := strings.TrimSpace(s.Text())
		if line == "" {
			continue
		}
		hexBits, expect, ok := strings.Cut(line, ",")
		if !ok {
			t.Fatalf("line %d malformed: %q", lineNo, line)
		}

		bits, err := strconv.ParseUint(hexBits, 16, 64)
		if err != nil {
			t.Fatalf("line %d bad bits %q: %v", lineNo, hexBits, err)
		}
		got, err := FormatDouble(math.Float64frombits(bits))
		if err != nil {
			t.Fatalf("line %d unexpected error for %016x: %v", lineNo, bits, err)
		}
		if got != expect {
			t.Fatalf("line %d bits=%016x: got %q want %q", lineNo, bits, got, expect)
		}
	}
	if err := s.Err(); err != nil {
		t.Fatalf("scan golden vectors: %v", err)
	}
	if lineNo != goldenVectorCount {
		t.Fatalf("golden vector line count mismatch: got %d want %d", lineNo, goldenVectorCount)
	}
}

func TestFormatDoubleConcreteCases(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{1, "1"},
		{100, "100"},
		{0.1, "0.1"},
		{-0.1, "-0.1"},
		{123456789012345, "123456789012345"},
		{1234.5, "1234.5"},
		{0.001, "0.001"},
		{1e21, "1e+21"},
		{1e-7, "1e-7"},
		{1e300, "1e+300"},
		{-1e-300, "-1e-300"},
		{1.2345e-300, "1.2345e-300"},
		{123e-20, "1.23e-18"},
		{5e-324, "5e-324"},
		{math.MaxFloat64, "1.7976931348623157e+308"},
	}
	for _, tc := range cases {
		got, err := FormatDouble(tc.in)
		if err != nil {
			t.Fatalf("FormatDouble(%v): %v", tc.in, err)
		}
		if got != tc.want {
			t.Errorf("FormatDouble(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

// Each case pins the decimal point position n = k + exponent at or next to a
// layout boundary.
func TestFormatDoubleLayoutBoundaries(t *testing.T) {
	cases := []struct {
		name string
		in   float64
		want string
	}{
		{"n=21 integer", 1e20, "100000000000000000000"},
		{"n=21 all digits", 1.2345e20, "123450000000000000000"},
		{"n=22 exponential", 1e21, "1e+21"},
		{"n=22 exponential with fraction", 1.5e21, "1.5e+21"},
		{"n=k integer", 12345, "12345"},
		{"n=1 fixed", 1.5, "1.5"},
		{"n=2 fixed", 12.25, "12.25"},
		{"n=0 leading zero", 0.5, "0.5"},
		{"n=-1 leading zeros", 0.015, "0.015"},
		{"n=-5 leading zeros", 1e-6, "0.000001"},
		{"n=-5 leading zeros with digits", 1.5e-6, "0.0000015"},
		{"n=-6 exponential", 1e-7, "1e-7"},
		{"n=-6 exponential with fraction", 1.5e-7, "1.5e-7"},
		{"three digit exponent", 1.5e-100, "1.5e-100"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := FormatDouble(tc.in)
			if err != nil {
				t.Fatalf("FormatDouble(%v): %v", tc.in, err)
			}
			if got != tc.want {
				t.Fatalf("FormatDouble(%v) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
	if got, _ := FormatDouble(1e20); len(got) != 21 {
		t.Fatalf("1e20 renders with %d characters, want 21", len(got))
	}
}

func TestFormatDoubleRejectsNonFinite(t *testing.T) {
	cases := []float64{math.NaN(), math.Inf(+1), math.Inf(-1)}
	for _, c := range cases {
		_, err := FormatDouble(c)
		if !errors.Is(err, ErrNotFinite) {
			t.Fatalf("expected ErrNotFinite for %v, got %v", c, err)
		}
		var ne *numerr.Error
		if !errors.As(err, &ne) || ne.Class != numerr.NotFinite {
			t.Fatalf("expected NOT_FINITE class for %v", c)
		}
	}
}

func TestFormatDoubleNegativeZero(t *testing.T) {
	got, err := FormatDouble(math.Copysign(0, -1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "0" {
		t.Fatalf("got %q want %q", got, "0")
	}
}

func TestAppendDouble(t *testing.T) {
	dst := []byte(`{"n":`)
	dst, err := AppendDouble(dst, -2.5e-8)
	if err != nil {
		t.Fatalf("AppendDouble: %v", err)
	}
	dst = append(dst, '}')
	if string(dst) != `{"n":-2.5e-8}` {
		t.Fatalf("got %q", dst)
	}

	before := string(dst)
	dst, err = AppendDouble(dst, math.NaN())
	if !errors.Is(err, ErrNotFinite) {
		t.Fatalf("expected ErrNotFinite, got %v", err)
	}
	if string(dst) != before {
		t.Fatalf("dst modified on error: %q", dst)
	}
}

func TestWriteDoubleReturnsPositionPastLastByte(t *testing.T) {
	buf := make([]byte, MaxSignedLength+4)
	for i := range buf {
		buf[i] = '#'
	}
	n := WriteDouble(buf, -1234.5)
	if n != 7 || string(buf[:n]) != "-1234.5" {
		t.Fatalf("WriteDouble wrote %q (n=%d)", buf[:n], n)
	}
	if buf[n] != '#' {
		t.Fatalf("WriteDouble wrote past the returned position: %q", buf)
	}
}

func TestWriteDoubleContractViolations(t *testing.T) {
	cases := []struct {
		name string
		buf  []byte
		in   float64
	}{
		{"short buffer", make([]byte, MaxSignedLength-1), 1},
		{"nan", make([]byte, MaxSignedLength), math.NaN()},
		{"infinity", make([]byte, MaxSignedLength), math.Inf(-1)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			defer func() {
				e, ok := recover().(*numerr.Error)
				if !ok || e.Class != numerr.ContractViolation {
					t.Fatal("expected contract violation panic")
				}
			}()
			WriteDouble(tc.buf, tc.in)
		})
	}
}

func sweep(fn func(bits uint64, f float64)) {
	for i := uint64(1); i < 50000; i += 7 {
		bits := i * 0x9e3779b97f4a7c15
		f := math.Float64frombits(bits)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			continue
		}
		fn(bits, f)
	}
}

func TestFormatDoubleRoundTripProperty(t *testing.T) {
	sweep(func(bits uint64, f float64) {
		s, err := FormatDouble(f)
		if err != nil {
			t.Fatalf("format bits=%016x: %v", bits, err)
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			t.Fatalf("parse bits=%016x text=%q: %v", bits, s, err)
		}
		if f == 0 {
			if parsed != 0 {
				t.Fatalf("zero bits=%016x parsed as %v", bits, parsed)
			}
			return
		}
		if math.Float64bits(parsed) != bits {
			t.Fatalf("round-trip mismatch bits=%016x text=%q parsed=%016x", bits, s, math.Float64bits(parsed))
		}
	})
}

func TestFormatDoubleLengthBound(t *testing.T) {
	sweep(func(bits uint64, f float64) {
		s, _ := FormatDouble(f)
		s = strings.TrimPrefix(s, "-")
		if len(s) > MaxLength {
			t.Fatalf("bits=%016x: %q is %d bytes, bound is %d", bits, s, len(s), MaxLength)
		}
	})
	// The leading-zero layout with 17 digits is the longest reachable form.
	s, _ := FormatDouble(0.0000015809161985788154)
	if s != "0.0000015809161985788154" || len(s) > MaxLength {
		t.Fatalf("longest form %q", s)
	}
}

func TestFormatDoubleNoRedundantTrailingZero(t *testing.T) {
	sweep(func(bits uint64, f float64) {
		s, _ := FormatDouble(f)
		mantissa, _, _ := strings.Cut(s, "e")
		if strings.Contains(mantissa, ".") && strings.HasSuffix(mantissa, "0") {
			t.Fatalf("bits=%016x: %q ends its fraction with zero", bits, s)
		}
	})
}

func TestFormatDoubleMatchesStrconvShortestDigits(t *testing.T) {
	sweep(func(bits uint64, f float64) {
		if f == 0 {
			return
		}
		got, _ := FormatDouble(f)
		want := strconv.FormatFloat(f, 'e', -1, 64)
		gotDigits := significantDigits(got)
		wantDigits := significantDigits(want)
		if gotDigits != wantDigits {
			t.Fatalf("bits=%016x: digits %q (%q) want %q (%q)", bits, gotDigits, got, wantDigits, want)
		}
	})
}

// significantDigits strips sign, point, exponent and leading or trailing
// zeros, leaving the digit string.
func significantDigits(s string) string {
	s = strings.TrimPrefix(s, "-")
	if i := strings.IndexByte(s, 'e'); i >= 0 {
		s = s[:i]
	}
	s = strings.Replace(s, ".", "", 1)
	s = strings.TrimLeft(s, "0")
	return strings.TrimRight(s, "0")
}

func BenchmarkFormatDouble(b *testing.B) {
	inputs := []float64{0.1, 1, 123456789012345, 1e21, 1e-7, math.MaxFloat64, 5e-324, 0.30000000000000004}
	var buf [MaxSignedLength]byte
	for i := 0; i < b.N; i++ {
		WriteDouble(buf[:], inputs[i%len(inputs)])
	}
}
