// Package jit compiles a token stream to x86-64 machine code and executes it.
//
// Compilation runs in two passes. The emission pass walks the token stream
// once, records the code offset of every token in the address table and
// writes a 4 byte placeholder for every loop jump. The relocation pass runs
// after the address table is complete and replaces every placeholder with the
// displacement to its destination.
//
// The generated routine follows the System V calling convention: it takes the
// tape base address as its only argument and returns a status in eax. Output
// and input use the Linux write and read system calls directly on the
// configured file descriptors. A system call that does not transfer exactly
// one byte leaves the routine through a fault exit with a non zero status.
//
// The code is copied into an anonymous mapping that is writable while the
// code is copied in and executable only afterwards, it is never both.
package jit

import (
	"context"
	"fmt"
	"math"

	"github.com/retroenv/bfjit/internal/machine"
	"github.com/retroenv/bfjit/internal/token"
	"github.com/retroenv/retrogolib/log"
)

// Status values returned by the generated routine.
const (
	statusOK          = 0
	statusOutputFault = 1
	statusInputFault  = 2
)

// Options of the compiler.
type Options struct {
	InputFD  int // file descriptor that input operations read from
	OutputFD int // file descriptor that output operations write to
}

// DefaultOptions returns options that use the process standard input and output.
func DefaultOptions() Options {
	return Options{
		InputFD:  0,
		OutputFD: 1,
	}
}

// Program is the result of compiling a token stream.
type Program struct {
	Code []byte

	// Addresses contains the code offset of every token and one trailing
	// entry for the end of the token stream.
	Addresses []int

	relocations []relocation
	faults      map[label]int
}

// TokenCode returns the machine code generated for the token at index.
func (p *Program) TokenCode(index int) []byte {
	return p.Code[p.Addresses[index]:p.Addresses[index+1]]
}

// Compiler translates token streams to native code.
type Compiler struct {
	logger  *log.Logger
	options Options
}

// New returns a new compiler.
func New(logger *log.Logger, options Options) *Compiler {
	return &Compiler{
		logger:  logger,
		options: options,
	}
}

// Run compiles the token stream and executes it once on a fresh tape.
// Native code can not observe the context once it is running, it is only
// checked before the call.
func (c *Compiler) Run(ctx context.Context, tokens token.Stream) error {
	prog, err := c.Compile(tokens)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("before native code: %w", err)
	}

	tape := machine.NewTape()
	status, err := execute(prog.Code, tape)
	if err != nil {
		return err
	}

	c.logger.Debug("Native code finished", log.Int("status", int(status)))

	switch status {
	case statusOK:
		return nil
	case statusOutputFault:
		return &machine.IOError{Op: machine.OpWrite, Err: machine.ErrNativeIO}
	case statusInputFault:
		return &machine.IOError{Op: machine.OpRead, Err: machine.ErrNativeIO}
	default:
		return fmt.Errorf("unexpected native code status %d", status)
	}
}

// Compile generates the machine code for the token stream and resolves all
// jump displacements.
func (c *Compiler) Compile(tokens token.Stream) (*Program, error) {
	buf := &codeBuffer{}
	addresses := make([]int, 0, len(tokens)+1)

	buf.emitPrologue()

	for _, tok := range tokens {
		addresses = append(addresses, buf.len())
		c.emitToken(buf, tok)
	}
	addresses = append(addresses, buf.len())

	buf.emitStatus(statusOK)
	buf.emitReturn()

	faults := map[label]int{}
	faults[labelOutputFault] = buf.len()
	buf.emitStatus(statusOutputFault)
	buf.emitReturn()
	faults[labelInputFault] = buf.len()
	buf.emitStatus(statusInputFault)
	buf.emitReturn()

	prog := &Program{
		Code:        buf.code,
		Addresses:   addresses,
		relocations: buf.relocations,
		faults:      faults,
	}
	if err := prog.relocate(); err != nil {
		return nil, err
	}

	c.logger.Debug("Compiled token stream",
		log.Int("tokens", len(tokens)),
		log.Int("code_size", len(prog.Code)),
		log.Int("relocations", len(prog.relocations)))
	return prog, nil
}

func (c *Compiler) emitToken(buf *codeBuffer, tok token.Token) {
	switch tok.Kind {
	case token.MoveRight:
		buf.emitAddPointer(uint16(tok.Count))

	case token.MoveLeft:
		buf.emitSubPointer(uint16(tok.Count))

	case token.Increment:
		buf.emitAddCell(byte(tok.Count))

	case token.Decrement:
		buf.emitSubCell(byte(tok.Count))

	case token.Output:
		for range tok.Count {
			buf.emitCellSyscall(sysWrite, c.options.OutputFD, labelOutputFault)
		}

	case token.Input:
		for range tok.Count {
			buf.emitCellSyscall(sysRead, c.options.InputFD, labelInputFault)
		}

	case token.JumpIfZero:
		buf.emitTestCell()
		buf.emitJumpIfZero(label(tok.Target))

	case token.JumpIfNotZero:
		buf.emitTestCell()
		buf.emitJumpIfNotZero(label(tok.Target))
	}
}

// relocate writes the displacement of every recorded jump. It must only run
// after the address table is complete.
func (p *Program) relocate() error {
	buf := codeBuffer{code: p.Code}

	for _, rel := range p.relocations {
		destination, err := p.resolve(rel.target)
		if err != nil {
			return err
		}

		displacement := destination - rel.origin
		if displacement < math.MinInt32 || displacement > math.MaxInt32 {
			return &CodegenError{
				Op:  OpRelocate,
				Err: fmt.Errorf("displacement %d at offset %d exceeds 32 bits", displacement, rel.offset),
			}
		}
		buf.patchRel32(rel.offset, int32(displacement))
	}
	return nil
}

func (p *Program) resolve(target label) (int, error) {
	if target < 0 {
		offset, ok := p.faults[target]
		if !ok {
			return 0, &CodegenError{Op: OpRelocate, Err: fmt.Errorf("unknown fault label %d", target)}
		}
		return offset, nil
	}

	if int(target) >= len(p.Addresses) {
		return 0, &CodegenError{
			Op:  OpRelocate,
			Err: fmt.Errorf("jump target %d outside of token stream", target),
		}
	}
	return p.Addresses[target], nil
}
