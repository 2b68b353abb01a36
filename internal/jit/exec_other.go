//go:build !linux || !amd64

package jit

import "github.com/retroenv/bfjit/internal/machine"

// Supported reports whether native code can be executed on this platform.
const Supported = false

func execute([]byte, *machine.Tape) (uint64, error) {
	return 0, &CodegenError{Op: OpUnsupported, Err: ErrUnsupported}
}
