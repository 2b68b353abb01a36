// Package writer implements the listing output of a token stream and its generated code.
package writer

import (
	"fmt"
	"io"
	"strings"

	"github.com/retroenv/bfjit/internal/jit"
	"github.com/retroenv/bfjit/internal/token"
)

const dataBytesPerLine = 16

type lineWriterFunc func(line string, byteCount int) error

// Writer writes a listing with one line per token. Tokens that are jump
// destinations get a label. If a compiled program is set, the code offset
// and the generated machine code bytes are written as comments.
type Writer struct {
	tokens  token.Stream
	program *jit.Program
	options Options
	writer  io.Writer
}

// Options of the writer.
type Options struct {
	HexComments    bool // output generated code bytes
	OffsetComments bool // output code offsets
}

// New creates a new writer. prog can be nil if the tokens were not compiled.
func New(tokens token.Stream, prog *jit.Program, writer io.Writer, options Options) *Writer {
	return &Writer{
		tokens:  tokens,
		program: prog,
		options: options,
		writer:  writer,
	}
}

// Write writes the complete listing.
func (w Writer) Write() error {
	if err := w.writeCommentHeader(); err != nil {
		return err
	}

	labels := w.jumpDestinations()

	for i, tok := range w.tokens {
		if err := w.writeLabel(i, labels); err != nil {
			return err
		}
		if err := w.writeTokenLine(i, tok); err != nil {
			return fmt.Errorf("writing token %d: %w", i, err)
		}
	}

	// the end of the stream is a valid jump destination
	return w.writeLabel(len(w.tokens), labels)
}

// BundleDataWrites bundles writes of code bytes to print dataBytesPerLine bytes per line.
func (w Writer) BundleDataWrites(data []byte, lineWriter lineWriterFunc) error {
	remaining := len(data)
	for i := 0; remaining > 0; {
		toWrite := min(remaining, dataBytesPerLine)

		buf := &strings.Builder{}
		for j := range toWrite {
			if _, err := fmt.Fprintf(buf, "%02x ", data[i+j]); err != nil {
				return fmt.Errorf("writing data byte: %w", err)
			}
		}

		line := strings.TrimRight(buf.String(), " ")
		if err := lineWriter(line, i); err != nil {
			return fmt.Errorf("writing data line: %w", err)
		}

		i += toWrite
		remaining -= toWrite
	}

	return nil
}

func (w Writer) writeCommentHeader() error {
	if _, err := fmt.Fprintf(w.writer, "; tokens: %d\n", len(w.tokens)); err != nil {
		return fmt.Errorf("writing token count: %w", err)
	}
	if w.program != nil {
		if _, err := fmt.Fprintf(w.writer, "; code size: %d bytes\n", len(w.program.Code)); err != nil {
			return fmt.Errorf("writing code size: %w", err)
		}
	}
	if _, err := fmt.Fprintln(w.writer); err != nil {
		return fmt.Errorf("writing line: %w", err)
	}
	return nil
}

func (w Writer) jumpDestinations() map[int]struct{} {
	labels := map[int]struct{}{}
	for _, tok := range w.tokens {
		if tok.Kind.IsJump() {
			labels[tok.Target] = struct{}{}
		}
	}
	return labels
}

func (w Writer) writeLabel(index int, labels map[int]struct{}) error {
	if _, ok := labels[index]; !ok {
		return nil
	}

	var err error
	if w.program != nil && w.options.OffsetComments {
		_, err = fmt.Fprintf(w.writer, "%-32s ; $%04X\n", labelName(index)+":", w.program.Addresses[index])
	} else {
		_, err = fmt.Fprintf(w.writer, "%s:\n", labelName(index))
	}
	if err != nil {
		return fmt.Errorf("writing label: %w", err)
	}
	return nil
}

func (w Writer) writeTokenLine(index int, tok token.Token) error {
	code := tokenText(tok)

	if w.program == nil || (!w.options.HexComments && !w.options.OffsetComments) {
		_, err := fmt.Fprintf(w.writer, "  %s\n", code)
		return err
	}

	start := w.program.Addresses[index]
	data := w.program.TokenCode(index)
	if !w.options.HexComments {
		_, err := fmt.Fprintf(w.writer, "  %-30s ; $%04X\n", code, start)
		return err
	}

	lineWriter := func(line string, byteIndex int) error {
		comment := line
		if w.options.OffsetComments {
			comment = fmt.Sprintf("$%04X  %s", start+byteIndex, line)
		}
		if byteIndex > 0 {
			code = ""
		}
		_, err := fmt.Fprintf(w.writer, "  %-30s ; %s\n", code, comment)
		return err
	}
	return w.BundleDataWrites(data, lineWriter)
}

func tokenText(tok token.Token) string {
	if tok.Kind.IsJump() {
		return fmt.Sprintf("%c %s", tok.Kind.Operator(), labelName(tok.Target))
	}
	if tok.Count == 1 {
		return string(tok.Kind.Operator())
	}
	return fmt.Sprintf("%c x%d", tok.Kind.Operator(), tok.Count)
}

func labelName(index int) string {
	return fmt.Sprintf("_token_%04d", index)
}
