package token

import (
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestKindOf(t *testing.T) {
	for _, op := range []byte("><+-.,[]") {
		kind, ok := KindOf(op)
		assert.True(t, ok)
		assert.Equal(t, op, kind.Operator())
	}

	_, ok := KindOf('a')
	assert.False(t, ok)
}

func TestToken_String(t *testing.T) {
	tests := []struct {
		name     string
		token    Token
		expected string
	}{
		{"single", Token{Kind: Increment, Count: 1}, "+"},
		{"run", Token{Kind: MoveLeft, Count: 5}, "< x5"},
		{"jump", Token{Kind: JumpIfZero, Count: 1, Target: 7}, "[ -> 7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.token.String())
		})
	}
}

func TestStream_Validate(t *testing.T) {
	valid := Stream{
		{Kind: Increment, Count: 1},
		{Kind: JumpIfZero, Count: 1, Target: 4},
		{Kind: Decrement, Count: 1},
		{Kind: JumpIfNotZero, Count: 1, Target: 2},
	}
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		stream Stream
	}{
		{"unmatched end", Stream{{Kind: JumpIfNotZero, Count: 1, Target: 0}}},
		{"unmatched start", Stream{{Kind: JumpIfZero, Count: 1, Target: 1}}},
		{"wrong end target", Stream{
			{Kind: JumpIfZero, Count: 1, Target: 2},
			{Kind: JumpIfNotZero, Count: 1, Target: 0},
		}},
		{"wrong start target", Stream{
			{Kind: JumpIfZero, Count: 1, Target: 0},
			{Kind: JumpIfNotZero, Count: 1, Target: 1},
		}},
		{"zero count", Stream{{Kind: Output, Count: 0}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.stream.Validate())
		})
	}
}
