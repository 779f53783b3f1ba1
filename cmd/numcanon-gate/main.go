// Command numcanon-gate runs the repository's required verification gates in order.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/lattice-substrate/numcanon/gate"
)

type commandRunner interface {
	Run(ctx context.Context, name string, args []string, stdout io.Writer, stderr io.Writer) error
}

type realRunner struct{}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr, realRunner{}))
}

//nolint:gocyclo,cyclop // Gate orchestration dispatch is intentionally explicit and linear.
func run(args []string, stdout, stderr io.Writer, runner commandRunner) int {
	cfg := gate.Default()
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--help", "-h":
			if err := writeUsage(stdout); err != nil {
				return 1
			}
			return 0
		case "--config":
			if i+1 >= len(args) {
				if err := writeLine(stderr, "error: --config requires a path"); err != nil {
					return 1
				}
				return 2
			}
			i++
			loaded, err := gate.Load(args[i])
			if err != nil {
				if werr := writef(stderr, "error: %v\n", err); werr != nil {
					return 1
				}
				return 2
			}
			cfg = loaded
		default:
			if err := writef(stderr, "error: unknown argument %q\n", args[i]); err != nil {
				return 1
			}
			if err := writeUsage(stderr); err != nil {
				return 1
			}
			return 2
		}
	}

	ctx := context.Background()
	for i, step := range cfg.Steps {
		if err := writef(stdout, "[%d/%d] %s\n", i+1, len(cfg.Steps), step.Label); err != nil {
			return 1
		}
		if err := runner.Run(ctx, "go", step.Args, stdout, stderr); err != nil {
			if writeErr := writef(stderr, "gate failed: %s: %v\n", step.Label, err); writeErr != nil {
				return 1
			}
			return 1
		}
	}

	if err := writeLine(stdout, "all gates passed"); err != nil {
		return 1
	}
	return 0
}

func (realRunner) Run(ctx context.Context, name string, args []string, stdout io.Writer, stderr io.Writer) error {
	// #nosec G204 -- command is fixed to the go tool; args come from the gate config.
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s %v: %w", name, args, err)
	}
	return nil
}

func writeUsage(w io.Writer) error {
	if err := writeLine(w, "usage: go run ./cmd/numcanon-gate [--config gates.yaml] [--help]"); err != nil {
		return err
	}
	return writeLine(w, "runs: vet, tests, race, conformance (or the steps listed in --config)")
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
