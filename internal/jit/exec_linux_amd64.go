//go:build linux && amd64

package jit

import (
	"errors"
	"runtime"
	"unsafe"

	"github.com/retroenv/bfjit/internal/machine"
	"golang.org/x/sys/unix"
)

// Supported reports whether native code can be executed on this platform.
const Supported = true

// writableRegion is an anonymous mapping that code can be copied into.
// It can not be executed.
type writableRegion struct {
	mem []byte
}

// executableRegion is a sealed mapping that can only be executed.
type executableRegion struct {
	mem []byte
}

func newWritableRegion(size int) (*writableRegion, error) {
	mem, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, &CodegenError{Op: OpMmap, Err: err}
	}
	return &writableRegion{mem: mem}, nil
}

// seal revokes write access and makes the region executable. The writable
// region must not be used afterwards.
func (r *writableRegion) seal() (*executableRegion, error) {
	mem := r.mem
	r.mem = nil

	if err := unix.Mprotect(mem, unix.PROT_EXEC); err != nil {
		_ = unix.Munmap(mem)
		return nil, &CodegenError{Op: OpMprotect, Err: err}
	}
	return &executableRegion{mem: mem}, nil
}

// call invokes the code at the start of the region with the tape base
// address as argument and returns the status of the routine.
func (r *executableRegion) call(tape *machine.Tape) uint64 {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	status := callNative(uintptr(unsafe.Pointer(&r.mem[0])), unsafe.Pointer(tape.Base()))
	runtime.KeepAlive(tape)
	return status
}

func (r *executableRegion) release() error {
	if err := unix.Munmap(r.mem); err != nil {
		return &CodegenError{Op: OpMunmap, Err: err}
	}
	r.mem = nil
	return nil
}

// execute maps the code executable and runs it once against the tape.
func execute(code []byte, tape *machine.Tape) (uint64, error) {
	if len(code) == 0 {
		return 0, &CodegenError{Op: OpMmap, Err: errors.New("empty code buffer")}
	}

	writable, err := newWritableRegion(len(code))
	if err != nil {
		return 0, err
	}
	copy(writable.mem, code)

	executable, err := writable.seal()
	if err != nil {
		return 0, err
	}

	status := executable.call(tape)

	if err := executable.release(); err != nil {
		return status, err
	}
	return status, nil
}

// callNative calls the machine code at code with tape in rdi and returns rax.
// It is implemented in call_linux_amd64.s.
//
//go:noescape
func callNative(code uintptr, tape unsafe.Pointer) uint64
