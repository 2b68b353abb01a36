// Package verification verifies that the native backend produces the same
// output as the interpreter.
package verification

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/retroenv/bfjit/internal/interpreter"
	"github.com/retroenv/bfjit/internal/jit"
	"github.com/retroenv/bfjit/internal/machine"
	"github.com/retroenv/bfjit/internal/token"
	"github.com/retroenv/retrogolib/log"
)

// MismatchError is returned when the backends disagree.
type MismatchError struct {
	Err error
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("backend output mismatch: %v", e.Err)
}

func (e *MismatchError) Unwrap() error {
	return e.Err
}

// Result contains the output of a verified run.
type Result struct {
	Output []byte // program output, identical for both backends
	Err    error  // I/O error that ended both runs, if any
}

// VerifyOutput runs the tokens with both backends on the same input and
// compares their output byte by byte and the class of their I/O errors.
func VerifyOutput(ctx context.Context, logger *log.Logger, tokens token.Stream, input []byte) (Result, error) {
	var expected bytes.Buffer
	intp := interpreter.New(logger, bytes.NewReader(input), &expected)
	expectedErr := intp.Run(ctx, tokens)

	if errors.Is(expectedErr, context.Canceled) {
		return Result{}, expectedErr
	}

	actual, actualErr := runNative(ctx, logger, tokens, input)
	var codegenErr *jit.CodegenError
	if errors.As(actualErr, &codegenErr) || errors.Is(actualErr, context.Canceled) {
		return Result{}, fmt.Errorf("running native code: %w", actualErr)
	}

	if errorClass(expectedErr) != errorClass(actualErr) {
		return Result{}, &MismatchError{
			Err: fmt.Errorf("interpreter ended with '%v' but native code with '%v'", expectedErr, actualErr),
		}
	}

	if err := checkBufferEqual(logger, expected.Bytes(), actual); err != nil {
		return Result{}, &MismatchError{Err: err}
	}

	return Result{
		Output: expected.Bytes(),
		Err:    expectedErr,
	}, nil
}

// runNative runs the tokens as native code with temporary files as input and output.
func runNative(ctx context.Context, logger *log.Logger, tokens token.Stream, input []byte) ([]byte, error) {
	inputFile, err := os.CreateTemp("", "bfjit.*.in")
	if err != nil {
		return nil, fmt.Errorf("creating temp file: %w", err)
	}
	defer func() {
		_ = inputFile.Close()
		_ = os.Remove(inputFile.Name())
	}()

	if _, err := inputFile.Write(input); err != nil {
		return nil, fmt.Errorf("writing temp file: %w", err)
	}
	if _, err := inputFile.Seek(0, 0); err != nil {
		return nil, fmt.Errorf("seeking temp file: %w", err)
	}

	outputFile, err := os.CreateTemp("", "bfjit.*.out")
	if err != nil {
		return nil, fmt.Errorf("creating temp file: %w", err)
	}
	defer func() {
		_ = outputFile.Close()
		_ = os.Remove(outputFile.Name())
	}()

	options := jit.Options{
		InputFD:  int(inputFile.Fd()),
		OutputFD: int(outputFile.Fd()),
	}
	runErr := jit.New(logger, options).Run(ctx, tokens)

	output, err := os.ReadFile(outputFile.Name())
	if err != nil {
		return nil, fmt.Errorf("reading native output for comparison: %w", err)
	}
	return output, runErr
}

// errorClass returns the failed I/O operation or an empty string for a successful run.
func errorClass(err error) string {
	if err == nil {
		return ""
	}
	var ioErr *machine.IOError
	if errors.As(err, &ioErr) {
		return ioErr.Op
	}
	return err.Error()
}

func checkBufferEqual(logger *log.Logger, input, output []byte) error {
	if len(input) != len(output) {
		return fmt.Errorf("mismatched lengths, %d != %d", len(input), len(output))
	}

	var diffs uint64
	for i := range input {
		if input[i] == output[i] {
			continue
		}

		diffs++
		if diffs < 10 {
			logger.Error("Offset mismatch",
				log.Hex("offset", i),
				log.Hex("expected", input[i]),
				log.Hex("got", output[i]))
		}
	}
	if diffs == 0 {
		return nil
	}
	return fmt.Errorf("%d offset mismatches", diffs)
}
