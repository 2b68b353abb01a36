// Package backend selects the execution backend for a token stream.
package backend

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/retroenv/bfjit/internal/interpreter"
	"github.com/retroenv/bfjit/internal/jit"
	"github.com/retroenv/bfjit/internal/options"
	"github.com/retroenv/bfjit/internal/token"
	"github.com/retroenv/retrogolib/log"
)

// Runner executes a token stream once.
type Runner interface {
	Run(ctx context.Context, tokens token.Stream) error
}

var (
	_ Runner = &interpreter.Interpreter{}
	_ Runner = &jit.Compiler{}
)

// Names returns the names of all backends.
func Names() []string {
	return []string{options.JIT, options.Interpreter}
}

// Validate returns an error if the backend name is not supported.
func Validate(name string) error {
	switch strings.ToLower(name) {
	case options.JIT, options.Interpreter:
		return nil
	default:
		return fmt.Errorf("unsupported backend '%s', valid options: %s", name, strings.Join(Names(), ", "))
	}
}

// New returns the runner for the named backend that reads program input
// from in and writes program output to out.
func New(name string, logger *log.Logger, in, out *os.File) (Runner, error) {
	switch strings.ToLower(name) {
	case options.JIT:
		opts := jit.Options{
			InputFD:  int(in.Fd()),
			OutputFD: int(out.Fd()),
		}
		return jit.New(logger, opts), nil

	case options.Interpreter:
		return interpreter.New(logger, in, out), nil

	default:
		return nil, Validate(name)
	}
}
