package machine

import (
	"errors"
	"fmt"
)

// I/O operations reported by IOError.
const (
	OpRead  = "read"
	OpWrite = "write"
)

// ErrNativeIO is the cause of an IOError that was detected inside generated
// native code, where only the failing operation is known.
var ErrNativeIO = errors.New("system call failed in generated code")

// IOError is returned when reading program input or writing program output fails.
type IOError struct {
	Op  string
	Err error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}
