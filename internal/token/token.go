// Package token defines the instruction stream produced by the lexer and consumed by both execution backends.
package token

import (
	"fmt"
	"strings"
)

// Kind defines the operation of a token.
type Kind uint8

// token kinds, each one maps to one source operator.
const (
	MoveRight Kind = iota
	MoveLeft
	Increment
	Decrement
	Output
	Input
	JumpIfZero
	JumpIfNotZero
)

var kindOperators = [...]byte{
	MoveRight:     '>',
	MoveLeft:      '<',
	Increment:     '+',
	Decrement:     '-',
	Output:        '.',
	Input:         ',',
	JumpIfZero:    '[',
	JumpIfNotZero: ']',
}

var kindNames = [...]string{
	MoveRight:     "MoveRight",
	MoveLeft:      "MoveLeft",
	Increment:     "Increment",
	Decrement:     "Decrement",
	Output:        "Output",
	Input:         "Input",
	JumpIfZero:    "JumpIfZero",
	JumpIfNotZero: "JumpIfNotZero",
}

// String returns the name of the kind.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Operator returns the source operator of the kind.
func (k Kind) Operator() byte {
	if int(k) < len(kindOperators) {
		return kindOperators[k]
	}
	return '?'
}

// IsJump returns whether the kind is one of the two loop bracket kinds.
func (k Kind) IsJump() bool {
	return k == JumpIfZero || k == JumpIfNotZero
}

// KindOf returns the kind for the given source byte and whether the byte is an operator.
func KindOf(b byte) (Kind, bool) {
	switch b {
	case '>':
		return MoveRight, true
	case '<':
		return MoveLeft, true
	case '+':
		return Increment, true
	case '-':
		return Decrement, true
	case '.':
		return Output, true
	case ',':
		return Input, true
	case '[':
		return JumpIfZero, true
	case ']':
		return JumpIfNotZero, true
	default:
		return 0, false
	}
}

// Token is a single run-length compressed instruction.
type Token struct {
	Kind   Kind
	Count  int // number of merged source operators, always 1 for jumps
	Target int // token index to continue at, only set for jumps
}

// String returns a short textual form like "+ x5" or "[ -> 7".
func (t Token) String() string {
	op := string(t.Kind.Operator())
	if t.Kind.IsJump() {
		return fmt.Sprintf("%s -> %d", op, t.Target)
	}
	if t.Count == 1 {
		return op
	}
	return fmt.Sprintf("%s x%d", op, t.Count)
}

// Stream is an index addressable sequence of tokens.
type Stream []Token

// String returns all tokens separated by spaces.
func (s Stream) String() string {
	parts := make([]string, len(s))
	for i, t := range s {
		parts[i] = t.String()
	}
	return strings.Join(parts, " ")
}

// Validate checks that every jump pair points one past its matching bracket
// in both directions and that no run-length count is below 1.
func (s Stream) Validate() error {
	var open []int

	for i, t := range s {
		switch t.Kind {
		case JumpIfZero:
			open = append(open, i)

		case JumpIfNotZero:
			if len(open) == 0 {
				return fmt.Errorf("jump at index %d has no matching loop start", i)
			}
			start := open[len(open)-1]
			open = open[:len(open)-1]

			if t.Target != start+1 {
				return fmt.Errorf("jump at index %d targets %d, expected %d", i, t.Target, start+1)
			}
			if s[start].Target != i+1 {
				return fmt.Errorf("jump at index %d targets %d, expected %d", start, s[start].Target, i+1)
			}

		default:
			if t.Count < 1 {
				return fmt.Errorf("token at index %d has invalid count %d", i, t.Count)
			}
		}
	}

	if len(open) > 0 {
		return fmt.Errorf("jump at index %d has no matching loop end", open[len(open)-1])
	}
	return nil
}
