package verification

import (
	"context"
	"errors"
	"testing"

	"github.com/retroenv/bfjit/internal/jit"
	"github.com/retroenv/bfjit/internal/lexer"
	"github.com/retroenv/bfjit/internal/machine"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

func TestVerifyOutput(t *testing.T) {
	if !jit.Supported {
		t.Skip("native code is not supported on this platform")
	}

	tests := []struct {
		name     string
		source   string
		input    []byte
		expected string
		ioOp     string
	}{
		{"output", "++++++++[>++++++++<-]>+.+.", nil, "AB", ""},
		{"echo", ",[.,]", []byte("go\x00"), "go", ""},
		{"both hit end of input", ",[.,]", []byte("go"), "go", machine.OpRead},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := lexer.Tokenize([]byte(tt.source))
			assert.NoError(t, err)

			result, err := VerifyOutput(context.Background(), log.NewTestLogger(t), tokens, tt.input)
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, string(result.Output))
			assert.Equal(t, tt.ioOp, errorClass(result.Err))
		})
	}
}

func TestVerifyOutput_Unsupported(t *testing.T) {
	if jit.Supported {
		t.Skip("native code is supported on this platform")
	}

	tokens, err := lexer.Tokenize([]byte("+."))
	assert.NoError(t, err)

	_, err = VerifyOutput(context.Background(), log.NewTestLogger(t), tokens, nil)
	assert.True(t, errors.Is(err, jit.ErrUnsupported))
}

func TestCheckBufferEqual(t *testing.T) {
	logger := log.NewTestLogger(t)

	assert.NoError(t, checkBufferEqual(logger, []byte{1, 2}, []byte{1, 2}))
	assert.ErrorContains(t, checkBufferEqual(logger, []byte{1}, []byte{1, 2}), "mismatched lengths")
	assert.ErrorContains(t, checkBufferEqual(logger, []byte{1, 2, 3}, []byte{1, 0, 0}), "2 offset mismatches")
}

func TestErrorClass(t *testing.T) {
	assert.Equal(t, "", errorClass(nil))
	assert.Equal(t, machine.OpWrite, errorClass(&machine.IOError{Op: machine.OpWrite, Err: machine.ErrNativeIO}))
}

func TestVerifyOutput_Canceled(t *testing.T) {
	tokens, err := lexer.Tokenize([]byte("+[]"))
	assert.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = VerifyOutput(ctx, log.NewTestLogger(t), tokens, nil)
	assert.True(t, errors.Is(err, context.Canceled))

	var mismatchErr *MismatchError
	assert.False(t, errors.As(err, &mismatchErr))
}
