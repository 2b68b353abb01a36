package jit

import (
	"errors"
	"fmt"
)

// Operations reported by CodegenError.
const (
	OpMmap        = "mmap"
	OpMprotect    = "mprotect"
	OpMunmap      = "munmap"
	OpRelocate    = "relocate"
	OpUnsupported = "unsupported"
)

// ErrUnsupported is returned on platforms that native code can not be generated for.
var ErrUnsupported = errors.New("native code generation is only supported on linux/amd64")

// CodegenError is returned when native code can not be generated or mapped executable.
type CodegenError struct {
	Op  string
	Err error
}

func (e *CodegenError) Error() string {
	return fmt.Sprintf("code generation %s: %v", e.Op, e.Err)
}

func (e *CodegenError) Unwrap() error {
	return e.Err
}
