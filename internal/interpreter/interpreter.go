// Package interpreter executes a token stream directly and defines the
// reference semantics for the native backend.
package interpreter

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/retroenv/bfjit/internal/machine"
	"github.com/retroenv/bfjit/internal/token"
	"github.com/retroenv/retrogolib/log"
)

// cancelCheckInterval is the number of executed tokens between two checks
// of the context.
const cancelCheckInterval = 1 << 16

// Interpreter executes token streams against a fresh tape per run.
type Interpreter struct {
	logger *log.Logger
	in     io.Reader
	out    io.Writer
}

// New returns a new interpreter that reads program input from in and
// writes program output to out.
func New(logger *log.Logger, in io.Reader, out io.Writer) *Interpreter {
	return &Interpreter{
		logger: logger,
		in:     in,
		out:    out,
	}
}

// Run executes the token stream on a fresh tape.
func (i *Interpreter) Run(ctx context.Context, tokens token.Stream) error {
	return i.Execute(ctx, tokens, machine.NewTape())
}

// Execute runs the token stream against the given tape until the program
// counter reaches the end of the stream or the context is cancelled.
// A read that blocks on input is not interrupted by the context.
func (i *Interpreter) Execute(ctx context.Context, tokens token.Stream, tape *machine.Tape) error {
	out := bufio.NewWriter(i.out)
	var input [1]byte
	var steps int

	for pc := 0; pc < len(tokens); steps++ {
		if steps%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				_ = out.Flush()
				return fmt.Errorf("interpreter stopped after %d steps: %w", steps, err)
			}
		}

		tok := tokens[pc]

		switch tok.Kind {
		case token.MoveRight:
			tape.MoveRight(tok.Count)

		case token.MoveLeft:
			tape.MoveLeft(tok.Count)

		case token.Increment:
			tape.Add(tok.Count)

		case token.Decrement:
			tape.Sub(tok.Count)

		case token.Output:
			for range tok.Count {
				if err := out.WriteByte(tape.Cell()); err != nil {
					return &machine.IOError{Op: machine.OpWrite, Err: err}
				}
			}

		case token.Input:
			// pending output has to be visible before blocking on input
			if err := out.Flush(); err != nil {
				return &machine.IOError{Op: machine.OpWrite, Err: err}
			}
			for range tok.Count {
				if _, err := io.ReadFull(i.in, input[:]); err != nil {
					return &machine.IOError{Op: machine.OpRead, Err: err}
				}
				tape.SetCell(input[0])
			}

		case token.JumpIfZero:
			if tape.Cell() == 0 {
				pc = tok.Target
				continue
			}

		case token.JumpIfNotZero:
			if tape.Cell() != 0 {
				pc = tok.Target
				continue
			}
		}

		pc++
	}

	if err := out.Flush(); err != nil {
		return &machine.IOError{Op: machine.OpWrite, Err: err}
	}

	i.logger.Debug("Interpreter finished",
		log.Int("tokens", len(tokens)),
		log.Int("steps", steps),
		log.Uint16("pointer", tape.Pointer()))
	return nil
}
