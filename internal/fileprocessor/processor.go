// Package fileprocessor handles file loading and processing operations
package fileprocessor

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/retroenv/bfjit/internal/backend"
	"github.com/retroenv/bfjit/internal/jit"
	"github.com/retroenv/bfjit/internal/lexer"
	"github.com/retroenv/bfjit/internal/options"
	"github.com/retroenv/bfjit/internal/token"
	"github.com/retroenv/bfjit/internal/verification"
	"github.com/retroenv/bfjit/internal/writer"
	"github.com/retroenv/retrogolib/buildinfo"
	"github.com/retroenv/retrogolib/log"
)

// OpenError is returned when the source file can not be read.
type OpenError struct {
	Path string
	Err  error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("opening file '%s': %v", e.Path, e.Err)
}

func (e *OpenError) Unwrap() error {
	return e.Err
}

// Streams are the files the program reads its input from and writes its
// output to, and the writer that receives listings.
type Streams struct {
	In      *os.File
	Out     *os.File
	Listing io.Writer
}

// StandardStreams returns the process standard streams.
func StandardStreams() Streams {
	return Streams{
		In:      os.Stdin,
		Out:     os.Stdout,
		Listing: os.Stderr,
	}
}

// ProcessFile handles the complete file processing workflow
func ProcessFile(ctx context.Context, logger *log.Logger, opts options.Program, streams Streams) error {
	tokens, err := loadTokens(logger, opts.Input)
	if err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("before execution: %w", err)
	}

	switch {
	case opts.Dump:
		return writeListing(logger, opts, tokens, streams.Listing)

	case opts.Verify:
		return verifyBackends(ctx, logger, tokens, streams)

	default:
		runner, err := backend.New(opts.Backend, logger, streams.In, streams.Out)
		if err != nil {
			return fmt.Errorf("creating backend: %w", err)
		}

		logger.Debug("Running program", log.String("backend", opts.Backend))
		if err := runner.Run(ctx, tokens); err != nil {
			return fmt.Errorf("running program: %w", err)
		}
		return nil
	}
}

func loadTokens(logger *log.Logger, path string) (token.Stream, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, &OpenError{Path: path, Err: err}
	}

	tokens, err := lexer.Tokenize(source)
	if err != nil {
		return nil, fmt.Errorf("tokenizing: %w", err)
	}

	logger.Debug("Tokenized source",
		log.String("file", path),
		log.Int("bytes", len(source)),
		log.Int("tokens", len(tokens)))
	return tokens, nil
}

func writeListing(logger *log.Logger, opts options.Program, tokens token.Stream, w io.Writer) error {
	var prog *jit.Program
	if opts.Backend == options.JIT {
		var err error
		prog, err = jit.New(logger, jit.DefaultOptions()).Compile(tokens)
		if err != nil {
			return fmt.Errorf("compiling: %w", err)
		}
	}

	listing := writer.New(tokens, prog, w, writer.Options{
		HexComments:    true,
		OffsetComments: true,
	})
	if err := listing.Write(); err != nil {
		return fmt.Errorf("writing listing: %w", err)
	}
	return nil
}

func verifyBackends(ctx context.Context, logger *log.Logger, tokens token.Stream, streams Streams) error {
	input, err := io.ReadAll(streams.In)
	if err != nil {
		return fmt.Errorf("reading program input: %w", err)
	}

	result, err := verification.VerifyOutput(ctx, logger, tokens, input)
	if err != nil {
		return fmt.Errorf("verification failed: %w", err)
	}

	if _, err := streams.Out.Write(result.Output); err != nil {
		return fmt.Errorf("writing program output: %w", err)
	}
	logger.Debug("Verification successful", log.Int("output_bytes", len(result.Output)))

	if result.Err != nil {
		return fmt.Errorf("running program: %w", result.Err)
	}
	return nil
}

// PrintBanner prints application version information
func PrintBanner(logger *log.Logger, opts options.Program, version, commit, date string) {
	if opts.Quiet {
		return
	}

	logger.Info("bfjit", log.String("version", buildinfo.Version(version, commit, date)))
}
