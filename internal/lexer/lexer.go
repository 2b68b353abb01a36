// Package lexer turns source bytes into a run-length compressed token stream
// with resolved loop jump targets.
package lexer

import (
	"fmt"

	"github.com/retroenv/bfjit/internal/token"
)

// UnbalancedBracketError is returned for a loop bracket without a matching counterpart.
type UnbalancedBracketError struct {
	Bracket byte // '[' or ']'
	Offset  int  // byte offset in the source
}

func (e *UnbalancedBracketError) Error() string {
	return fmt.Sprintf("unbalanced bracket '%c' at offset %d", e.Bracket, e.Offset)
}

// loopStart is an entry of the open loop stack.
type loopStart struct {
	next   int // stream index after the opening jump
	offset int // source offset of the opening bracket
}

// Tokenize scans the source and returns the token stream.
// Bytes that are not operators are ignored. Identical operators are merged
// into one token even when separated by ignored bytes.
func Tokenize(source []byte) (token.Stream, error) {
	var (
		stream token.Stream
		stack  []loopStart
	)

	for pos := 0; pos < len(source); pos++ {
		kind, ok := token.KindOf(source[pos])
		if !ok {
			continue
		}

		switch kind {
		case token.JumpIfZero:
			stack = append(stack, loopStart{next: len(stream) + 1, offset: pos})
			// target gets patched when the matching end is found
			stream = append(stream, token.Token{Kind: token.JumpIfZero, Count: 1})

		case token.JumpIfNotZero:
			if len(stack) == 0 {
				return nil, &UnbalancedBracketError{Bracket: ']', Offset: pos}
			}
			start := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			stream[start.next-1] = token.Token{Kind: token.JumpIfZero, Count: 1, Target: len(stream) + 1}
			stream = append(stream, token.Token{Kind: token.JumpIfNotZero, Count: 1, Target: start.next})

		default:
			count, last := runLength(source, pos)
			stream = append(stream, token.Token{Kind: kind, Count: count})
			pos = last
		}
	}

	if len(stack) > 0 {
		return nil, &UnbalancedBracketError{Bracket: '[', Offset: stack[len(stack)-1].offset}
	}
	return stream, nil
}

// runLength counts the occurrences of the operator at pos that follow each
// other in the operator-only view of the source. It returns the count and the
// source position of the last merged operator.
func runLength(source []byte, pos int) (int, int) {
	op := source[pos]
	count := 1
	last := pos

	for i := pos + 1; i < len(source); i++ {
		b := source[i]
		if b == op {
			count++
			last = i
			continue
		}
		if _, isOperator := token.KindOf(b); isOperator {
			break
		}
	}
	return count, last
}
