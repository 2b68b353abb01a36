// Package machine contains the tape memory model shared by the execution backends.
package machine

// TapeSize is the number of cells of the tape, all values of a 16 bit pointer.
const TapeSize = 1 << 16

// Tape is the cell memory with its data pointer. Pointer motion and cell
// arithmetic wrap around without faults.
type Tape struct {
	cells   [TapeSize]byte
	pointer uint16
}

// NewTape returns a zero initialized tape. It is heap allocated so that its
// cells never move while native code holds their address.
func NewTape() *Tape {
	return &Tape{}
}

// Pointer returns the current data pointer.
func (t *Tape) Pointer() uint16 {
	return t.pointer
}

// MoveRight moves the pointer n cells to the right.
func (t *Tape) MoveRight(n int) {
	t.pointer += uint16(n)
}

// MoveLeft moves the pointer n cells to the left.
func (t *Tape) MoveLeft(n int) {
	t.pointer -= uint16(n)
}

// Add adds n to the current cell.
func (t *Tape) Add(n int) {
	t.cells[t.pointer] += byte(n)
}

// Sub subtracts n from the current cell.
func (t *Tape) Sub(n int) {
	t.cells[t.pointer] -= byte(n)
}

// Cell returns the value of the current cell.
func (t *Tape) Cell() byte {
	return t.cells[t.pointer]
}

// SetCell sets the value of the current cell.
func (t *Tape) SetCell(b byte) {
	t.cells[t.pointer] = b
}

// CellAt returns the value of the cell at the given address.
func (t *Tape) CellAt(address uint16) byte {
	return t.cells[address]
}

// Base returns the address of the first cell, the only value the native
// code receives from the host.
func (t *Tape) Base() *byte {
	return &t.cells[0]
}
