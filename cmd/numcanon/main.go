// Command numcanon renders doubles as ECMAScript Number::toString text and
// verifies golden vectors against the renderer.
//
// Commands:
//
//	numcanon format [--csv] [file|-]
//	    Read one value per line (decimal literal or 0x-prefixed 16-digit bit
//	    pattern), emit its canonical text per line. With --csv, emit
//	    "<bits>,<text>" golden-vector lines.
//
//	numcanon verify [--quiet] [file|-]
//	    Check "<bits>,<expected>" lines against the renderer.
//
// Exit codes:
//
//	0  success
//	2  invalid input or vector mismatch
//	10 internal error
package main

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/lattice-substrate/numcanon/ecmafloat"
	"github.com/lattice-substrate/numcanon/numerr"
)

const (
	exitSuccess  = 0
	exitInvalid  = 2
	exitInternal = 10
)

// DefaultMaxInputSize bounds a single input stream (64 MiB).
const DefaultMaxInputSize = 64 * 1024 * 1024

const usage = "usage: numcanon <format|verify> [options] [file|-]"

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout io.Writer, stderr io.Writer) int {
	if len(args) == 0 {
		if err := writeLine(stderr, usage); err != nil {
			return exitInternal
		}
		return exitInvalid
	}

	switch args[0] {
	case "format":
		return cmdFormat(args[1:], stdin, stdout, stderr)
	case "verify":
		return cmdVerify(args[1:], stdin, stderr)
	default:
		if err := writef(stderr, "unknown command: %s\n", args[0]); err != nil {
			return exitInternal
		}
		if err := writeLine(stderr, usage); err != nil {
			return exitInternal
		}
		return exitInvalid
	}
}

type flags struct {
	csv   bool
	quiet bool
	help  bool
}

func parseFlags(args []string) (flags, []string, error) {
	var f flags
	var positional []string
	consumeAsPositional := false
	for _, arg := range args {
		if consumeAsPositional {
			positional = append(positional, arg)
			continue
		}

		switch arg {
		case "--csv":
			f.csv = true
		case "--quiet", "-q":
			f.quiet = true
		case "--help", "-h":
			f.help = true
		case "--":
			consumeAsPositional = true
		case "-":
			positional = append(positional, arg)
		default:
			if strings.HasPrefix(arg, "-") {
				return flags{}, nil, numerr.New(numerr.CLIUsage, -1, "unknown option: "+arg)
			}
			positional = append(positional, arg)
		}
	}
	return f, positional, nil
}

func cmdFormat(args []string, stdin io.Reader, stdout io.Writer, stderr io.Writer) int {
	fl, positional, err := parseFlags(args)
	if err != nil {
		return writeClassifiedError(stderr, err)
	}
	if fl.help {
		if err := writeFormatHelp(stderr); err != nil {
			return exitInternal
		}
		return exitSuccess
	}
	if exitCode, ok := ensureSingleInput(positional, stderr); ok {
		return exitCode
	}

	input, err := readInput(positional, stdin, DefaultMaxInputSize)
	if err != nil {
		return writeClassifiedError(stderr, err)
	}

	out, err := formatLines(input, fl.csv)
	if err != nil {
		return writeClassifiedError(stderr, err)
	}

	if _, err := stdout.Write(out); err != nil {
		return writeClassifiedError(stderr, numerr.Wrap(numerr.InternalIO, -1, "writing output", err))
	}
	return exitSuccess
}

func cmdVerify(args []string, stdin io.Reader, stderr io.Writer) int {
	fl, positional, err := parseFlags(args)
	if err != nil {
		return writeClassifiedError(stderr, err)
	}
	if fl.help {
		if err := writeVerifyHelp(stderr); err != nil {
			return exitInternal
		}
		return exitSuccess
	}
	if exitCode, ok := ensureSingleInput(positional, stderr); ok {
		return exitCode
	}

	input, err := readInput(positional, stdin, DefaultMaxInputSize)
	if err != nil {
		return writeClassifiedError(stderr, err)
	}

	count, err := verifyVectors(input)
	if err != nil {
		return writeClassifiedError(stderr, err)
	}

	if !fl.quiet {
		if err := writef(stderr, "ok %d vectors\n", count); err != nil {
			return exitInternal
		}
	}
	return exitSuccess
}

// formatLines renders every non-blank line of input. Offsets in errors are
// the byte offset of the offending line.
func formatLines(input []byte, csv bool) ([]byte, error) {
	var out []byte
	err := eachLine(input, func(offset int, line string) error {
		f, err := parseValue(line)
		if err != nil {
			return numerr.Wrap(numerr.InvalidNumber, offset, fmt.Sprintf("cannot parse %q", line), err)
		}
		if csv {
			out = appendBits(out, math.Float64bits(f))
			out = append(out, ',')
		}
		out, err = ecmafloat.AppendDouble(out, f)
		if err != nil {
			return numerr.Wrap(numerr.NotFinite, offset, fmt.Sprintf("%q has no Number::toString form", line), err)
		}
		out = append(out, '\n')
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// verifyVectors checks "<bits>,<expected>" lines and returns how many passed.
func verifyVectors(input []byte) (int, error) {
	count := 0
	err := eachLine(input, func(offset int, line string) error {
		hexBits, expect, ok := strings.Cut(line, ",")
		if !ok {
			return numerr.New(numerr.MalformedVector, offset, fmt.Sprintf("missing ',' in %q", line))
		}
		bits, err := strconv.ParseUint(hexBits, 16, 64)
		if err != nil || len(hexBits) != 16 {
			return numerr.New(numerr.MalformedVector, offset, fmt.Sprintf("bad bit pattern %q", hexBits))
		}
		got, err := ecmafloat.FormatDouble(math.Float64frombits(bits))
		if err != nil {
			return numerr.Wrap(numerr.NotFinite, offset, fmt.Sprintf("bits %s", hexBits), err)
		}
		if got != expect {
			return numerr.New(numerr.VectorMismatch, offset, fmt.Sprintf("bits %s: got %q want %q", hexBits, got, expect))
		}
		count++
		return nil
	})
	return count, err
}

func eachLine(input []byte, fn func(offset int, line string) error) error {
	s := bufio.NewScanner(bytes.NewReader(input))
	s.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	offset := 0
	for s.Scan() {
		raw := s.Text()
		line := strings.TrimSpace(raw)
		if line != "" {
			if err := fn(offset, line); err != nil {
				return err
			}
		}
		offset += len(raw) + 1
	}
	if err := s.Err(); err != nil {
		return numerr.Wrap(numerr.BoundExceeded, offset, "scanning input", err)
	}
	return nil
}

// parseValue accepts a decimal literal or a 0x-prefixed 16-digit bit pattern.
func parseValue(s string) (float64, error) {
	if hexBits, ok := strings.CutPrefix(s, "0x"); ok {
		if len(hexBits) != 16 {
			return 0, fmt.Errorf("bit pattern must have 16 hex digits, got %d", len(hexBits))
		}
		bits, err := strconv.ParseUint(hexBits, 16, 64)
		if err != nil {
			return 0, err
		}
		return math.Float64frombits(bits), nil
	}
	return strconv.ParseFloat(s, 64)
}

func appendBits(dst []byte, bits uint64) []byte {
	const hexDigits = "0123456789abcdef"
	for shift := 60; shift >= 0; shift -= 4 {
		dst = append(dst, hexDigits[(bits>>uint(shift))&0xF])
	}
	return dst
}

func readInput(positional []string, stdin io.Reader, maxInputSize int) ([]byte, error) {
	if len(positional) == 0 || positional[0] == "-" {
		return readBounded(stdin, maxInputSize)
	}

	f, err := os.Open(positional[0])
	if err != nil {
		return nil, numerr.Wrap(numerr.InternalIO, -1, fmt.Sprintf("read file %q", positional[0]), err)
	}
	defer func() {
		_ = f.Close()
	}()

	return readBounded(f, maxInputSize)
}

func readBounded(r io.Reader, maxInputSize int) ([]byte, error) {
	lr := io.LimitReader(r, int64(maxInputSize)+1)
	data, err := io.ReadAll(lr)
	if err != nil {
		return nil, numerr.Wrap(numerr.InternalIO, -1, "reading input", err)
	}
	if len(data) > maxInputSize {
		return nil, numerr.New(numerr.BoundExceeded, -1, fmt.Sprintf("input exceeds maximum size %d bytes", maxInputSize))
	}
	return data, nil
}

func ensureSingleInput(positional []string, stderr io.Writer) (int, bool) {
	if len(positional) <= 1 {
		return 0, false
	}
	return writeClassifiedError(stderr, numerr.New(numerr.CLIUsage, -1, "multiple input files specified")), true
}

// writeClassifiedError reports err on stderr and returns the exit code of its
// failure class. Unclassified errors count as internal.
func writeClassifiedError(stderr io.Writer, err error) int {
	code := numerr.InternalError.ExitCode()
	var ne *numerr.Error
	if errors.As(err, &ne) {
		code = ne.Class.ExitCode()
	}
	if werr := writef(stderr, "error: %v\n", err); werr != nil {
		return exitInternal
	}
	return code
}

func writeFormatHelp(stderr io.Writer) error {
	if err := writeLine(stderr, "usage: numcanon format [--csv] [file|-]"); err != nil {
		return err
	}
	if err := writeLine(stderr, "  Read one value per line (decimal or 0x bit pattern), emit canonical text."); err != nil {
		return err
	}
	return writeLine(stderr, "  --csv     Emit <bits>,<text> golden-vector lines")
}

func writeVerifyHelp(stderr io.Writer) error {
	if err := writeLine(stderr, "usage: numcanon verify [--quiet] [file|-]"); err != nil {
		return err
	}
	if err := writeLine(stderr, "  Check <bits>,<expected> lines against the renderer."); err != nil {
		return err
	}
	return writeLine(stderr, "  --quiet  Suppress success messages")
}

func writeLine(w io.Writer, msg string) error {
	return writef(w, "%s\n", msg)
}

func writef(w io.Writer, format string, args ...any) error {
	if _, err := fmt.Fprintf(w, format, args...); err != nil {
		return fmt.Errorf("write stream: %w", err)
	}
	return nil
}
