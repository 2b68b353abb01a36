package jit

import "encoding/binary"

// label identifies a jump destination. Non negative labels are token indices
// resolved through the address table, negative labels are fault exits.
type label int

const (
	labelOutputFault label = -1
	labelInputFault  label = -2
)

// relocation describes a 4 byte relative displacement that is written once
// the final code layout is known.
type relocation struct {
	offset int   // position of the placeholder in the code buffer
	origin int   // position after the placeholder, the base of the displacement
	target label // destination of the jump
}

// Linux x86-64 system call numbers.
const (
	sysRead  = 0
	sysWrite = 1
)

// codeBuffer encodes the x86-64 instructions used by the generated code.
//
// Register usage of the generated routine:
//
//	rdi      tape base address on entry (System V first argument)
//	rbx      tape base address for the whole run
//	r12w     16 bit data pointer, upper bits stay zero
//	rax..rdx scratch and system call arguments
type codeBuffer struct {
	code        []byte
	relocations []relocation
}

func (b *codeBuffer) len() int {
	return len(b.code)
}

func (b *codeBuffer) emit(data ...byte) {
	b.code = append(b.code, data...)
}

func (b *codeBuffer) emitU16(value uint16) {
	b.code = binary.LittleEndian.AppendUint16(b.code, value)
}

func (b *codeBuffer) emitU32(value uint32) {
	b.code = binary.LittleEndian.AppendUint32(b.code, value)
}

// emitRel32 writes a displacement placeholder and records its relocation.
func (b *codeBuffer) emitRel32(target label) {
	offset := len(b.code)
	b.emitU32(0)
	b.relocations = append(b.relocations, relocation{
		offset: offset,
		origin: len(b.code),
		target: target,
	})
}

// patchRel32 overwrites the placeholder at offset with the displacement.
func (b *codeBuffer) patchRel32(offset int, displacement int32) {
	binary.LittleEndian.PutUint32(b.code[offset:], uint32(displacement))
}

// emitPrologue saves the callee saved registers that hold the tape state and
// initializes them from the routine argument.
func (b *codeBuffer) emitPrologue() {
	b.emit(0x53)             // push rbx
	b.emit(0x41, 0x54)       // push r12
	b.emit(0x48, 0x89, 0xfb) // mov rbx, rdi
	b.emit(0x45, 0x31, 0xe4) // xor r12d, r12d
}

// emitReturn restores the saved registers and returns the status in eax.
func (b *codeBuffer) emitReturn() {
	b.emit(0x41, 0x5c) // pop r12
	b.emit(0x5b)       // pop rbx
	b.emit(0xc3)       // ret
}

// emitStatus sets the return status.
func (b *codeBuffer) emitStatus(status uint32) {
	if status == 0 {
		b.emit(0x31, 0xc0) // xor eax, eax
		return
	}
	b.emit(0xb8) // mov eax, imm32
	b.emitU32(status)
}

// emitAddPointer emits add r12w, imm16.
func (b *codeBuffer) emitAddPointer(n uint16) {
	b.emit(0x66, 0x41, 0x81, 0xc4)
	b.emitU16(n)
}

// emitSubPointer emits sub r12w, imm16.
func (b *codeBuffer) emitSubPointer(n uint16) {
	b.emit(0x66, 0x41, 0x81, 0xec)
	b.emitU16(n)
}

// emitAddCell emits add byte [rbx+r12], imm8.
func (b *codeBuffer) emitAddCell(n byte) {
	b.emit(0x42, 0x80, 0x04, 0x23, n)
}

// emitSubCell emits sub byte [rbx+r12], imm8.
func (b *codeBuffer) emitSubCell(n byte) {
	b.emit(0x42, 0x80, 0x2c, 0x23, n)
}

// emitTestCell loads the current cell into al and sets the zero flag from it.
func (b *codeBuffer) emitTestCell() {
	b.emit(0x42, 0x8a, 0x04, 0x23) // mov al, [rbx+r12]
	b.emit(0x84, 0xc0)             // test al, al
}

// emitJumpIfZero emits jz rel32.
func (b *codeBuffer) emitJumpIfZero(target label) {
	b.emit(0x0f, 0x84)
	b.emitRel32(target)
}

// emitJumpIfNotZero emits jnz rel32.
func (b *codeBuffer) emitJumpIfNotZero(target label) {
	b.emit(0x0f, 0x85)
	b.emitRel32(target)
}

// emitCellSyscall emits a one byte read or write system call on the current
// cell, followed by a jump to fault when the call did not transfer a byte.
func (b *codeBuffer) emitCellSyscall(number uint32, fd int, fault label) {
	b.emit(0x4a, 0x8d, 0x34, 0x23) // lea rsi, [rbx+r12]
	b.emitStatus(number)           // mov eax, number
	b.emit(0xbf)                   // mov edi, imm32
	b.emitU32(uint32(fd))
	b.emit(0xba) // mov edx, imm32
	b.emitU32(1)
	b.emit(0x0f, 0x05)       // syscall
	b.emit(0x48, 0x85, 0xc0) // test rax, rax
	b.emit(0x0f, 0x8e)       // jle rel32
	b.emitRel32(fault)
}
