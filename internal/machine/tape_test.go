package machine

import (
	"errors"
	"io"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestTape_CellWraparound(t *testing.T) {
	tape := NewTape()
	tape.SetCell(42)

	for range 256 {
		tape.Add(1)
	}
	assert.Equal(t, byte(42), tape.Cell())

	tape.Sub(43)
	assert.Equal(t, byte(255), tape.Cell())
	tape.Add(1)
	assert.Equal(t, byte(0), tape.Cell())

	tape.Add(300)
	assert.Equal(t, byte(44), tape.Cell())
}

func TestTape_PointerWraparound(t *testing.T) {
	tape := NewTape()
	tape.MoveRight(7)

	for range TapeSize {
		tape.MoveRight(1)
	}
	assert.Equal(t, uint16(7), tape.Pointer())

	for range TapeSize {
		tape.MoveLeft(1)
	}
	assert.Equal(t, uint16(7), tape.Pointer())

	tape.MoveLeft(8)
	assert.Equal(t, uint16(0xffff), tape.Pointer())
	tape.SetCell(9)
	assert.Equal(t, byte(9), tape.CellAt(0xffff))

	tape.MoveRight(1)
	assert.Equal(t, uint16(0), tape.Pointer())
	assert.Equal(t, byte(0), tape.Cell())
}

func TestIOError(t *testing.T) {
	err := &IOError{Op: OpRead, Err: io.EOF}
	assert.Equal(t, "read failed: EOF", err.Error())
	assert.True(t, errors.Is(err, io.EOF))
}
