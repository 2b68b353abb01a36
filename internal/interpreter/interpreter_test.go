package interpreter

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/retroenv/bfjit/internal/lexer"
	"github.com/retroenv/bfjit/internal/machine"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

const helloWorld = "++++++++[>++++[>++>+++>+++>+<<<<-]>+>+>->>+[<]<-]>>.>---.+++++++..+++.>>.<-.<.+++.------.--------.>>+.>++."

var errBroken = errors.New("broken")

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errBroken
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errBroken
}

func run(t *testing.T, source string, input []byte) ([]byte, *machine.Tape, error) {
	t.Helper()

	tokens, err := lexer.Tokenize([]byte(source))
	assert.NoError(t, err)

	var out bytes.Buffer
	tape := machine.NewTape()
	intp := New(log.NewTestLogger(t), bytes.NewReader(input), &out)
	err = intp.Execute(context.Background(), tokens, tape)
	return out.Bytes(), tape, err
}

func TestInterpreter_Programs(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		input    []byte
		expected []byte
	}{
		{"increment and output", "++.", nil, []byte{2}},
		{"echo input", ",.", []byte{65}, []byte{65}},
		{"repeated output", "+++...", nil, []byte{3, 3, 3}},
		{"hello world", helloWorld, nil, []byte("Hello World!\n")},
		{"echo until zero", ",[.,]", []byte("abc\x00"), []byte("abc")},
		{"cell wraps below zero", "-.", nil, []byte{255}},
		{"cell wraps above 255", strings.Repeat("+", 257) + ".", nil, []byte{1}},
		{"multiple input reads keep last byte", ",,,.", []byte("xyz"), []byte("z")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := run(t, tt.source, tt.input)
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, out)
		})
	}
}

func TestInterpreter_Empty(t *testing.T) {
	var out bytes.Buffer
	intp := New(log.NewTestLogger(t), failingReader{}, &out)
	assert.NoError(t, intp.Run(context.Background(), nil))
	assert.Equal(t, 0, out.Len())
}

func TestInterpreter_LoopTerminates(t *testing.T) {
	out, tape, err := run(t, "+[-]", nil)
	assert.NoError(t, err)
	assert.Len(t, out, 0)
	assert.Equal(t, byte(0), tape.Cell())
	assert.Equal(t, uint16(0), tape.Pointer())
}

func TestInterpreter_PointerWraparound(t *testing.T) {
	_, tape, err := run(t, "<+++", nil)
	assert.NoError(t, err)
	assert.Equal(t, uint16(0xffff), tape.Pointer())
	assert.Equal(t, byte(3), tape.CellAt(0xffff))

	_, tape, err = run(t, "+"+strings.Repeat(">", machine.TapeSize)+".", nil)
	assert.NoError(t, err)
	assert.Equal(t, uint16(0), tape.Pointer())
	assert.Equal(t, byte(1), tape.Cell())
}

func TestInterpreter_InputEOF(t *testing.T) {
	_, _, err := run(t, ",", nil)

	var ioErr *machine.IOError
	assert.True(t, errors.As(err, &ioErr))
	assert.Equal(t, machine.OpRead, ioErr.Op)
	assert.True(t, errors.Is(err, io.EOF))
}

func TestInterpreter_IOFailures(t *testing.T) {
	tokens, err := lexer.Tokenize([]byte("+."))
	assert.NoError(t, err)

	intp := New(log.NewTestLogger(t), failingReader{}, failingWriter{})
	err = intp.Run(context.Background(), tokens)
	var ioErr *machine.IOError
	assert.True(t, errors.As(err, &ioErr))
	assert.Equal(t, machine.OpWrite, ioErr.Op)
	assert.True(t, errors.Is(err, errBroken))

	tokens, err = lexer.Tokenize([]byte(","))
	assert.NoError(t, err)

	err = intp.Run(context.Background(), tokens)
	assert.True(t, errors.As(err, &ioErr))
	assert.Equal(t, machine.OpRead, ioErr.Op)
	assert.True(t, errors.Is(err, errBroken))
}

func TestInterpreter_OutputFlushedBeforeInput(t *testing.T) {
	tokens, err := lexer.Tokenize([]byte("+.,"))
	assert.NoError(t, err)

	var out bytes.Buffer
	intp := New(log.NewTestLogger(t), failingReader{}, &out)
	err = intp.Run(context.Background(), tokens)
	assert.Error(t, err)
	assert.Equal(t, []byte{1}, out.Bytes())
}

func TestInterpreter_Cancel(t *testing.T) {
	tokens, err := lexer.Tokenize([]byte("+.+[]"))
	assert.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	var out bytes.Buffer
	intp := New(log.NewTestLogger(t), failingReader{}, &out)

	done := make(chan error, 1)
	go func() {
		done <- intp.Run(ctx, tokens)
	}()
	cancel()

	err = <-done
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestInterpreter_CancelBeforeStart(t *testing.T) {
	tokens, err := lexer.Tokenize([]byte("+."))
	assert.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	err = New(log.NewTestLogger(t), failingReader{}, &out).Run(ctx, tokens)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, 0, out.Len())
}
