// Package main implements the entry point of a runner for the eight operator
// tape language with an interpreter and a native x86-64 JIT backend.
package main

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/retroenv/bfjit/internal/cli"
	"github.com/retroenv/bfjit/internal/config"
	"github.com/retroenv/bfjit/internal/fileprocessor"
	"github.com/retroenv/bfjit/internal/jit"
	"github.com/retroenv/bfjit/internal/lexer"
	"github.com/retroenv/bfjit/internal/machine"
	"github.com/retroenv/bfjit/internal/verification"
	"github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/log"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

// process exit codes.
const (
	exitSuccess = iota
	exitUsage
	exitOpen
	exitUnbalanced
	exitIO
	exitCodegen
	exitMismatch

	exitInterrupted = 130
)

// cancelGracePeriod is the time a cancelled run gets to return on its own.
const cancelGracePeriod = 500 * time.Millisecond

func main() {
	ctx := app.Context()

	opts, err := cli.ParseFlags()
	if err != nil {
		logger := config.CreateLogger(opts.Debug, opts.Quiet)
		var usageErr *cli.UsageError
		if errors.As(err, &usageErr) {
			fileprocessor.PrintBanner(logger, opts, version, commit, date)
			usageErr.ShowUsage()
		}
		logger.Error("Invalid arguments", log.Err(err))
		os.Exit(exitUsage)
	}

	logger := config.CreateLogger(opts.Debug, opts.Quiet)
	if opts.Debug {
		fileprocessor.PrintBanner(logger, opts, version, commit, date)
	}

	go exitAfterCancel(ctx, cancelGracePeriod, os.Exit)

	if err := fileprocessor.ProcessFile(ctx, logger, opts, fileprocessor.StandardStreams()); err != nil {
		// Handle context cancellation (Ctrl+C) gracefully
		if errors.Is(err, context.Canceled) {
			logger.Info("Operation cancelled")
			os.Exit(exitInterrupted)
		}
		logger.Error("Running failed", log.Err(err))
		os.Exit(exitCode(err))
	}
}

// exitAfterCancel terminates the process when a cancelled run does not
// return within the grace period. Native code and reads blocked on input
// can not observe the context.
func exitAfterCancel(ctx context.Context, grace time.Duration, exit func(code int)) {
	<-ctx.Done()
	time.Sleep(grace)
	exit(exitInterrupted)
}

// exitCode maps the error classes to distinct process exit codes.
func exitCode(err error) int {
	var (
		openErr     *fileprocessor.OpenError
		bracketErr  *lexer.UnbalancedBracketError
		ioErr       *machine.IOError
		codegenErr  *jit.CodegenError
		mismatchErr *verification.MismatchError
	)

	switch {
	case err == nil:
		return exitSuccess
	case errors.As(err, &openErr):
		return exitOpen
	case errors.As(err, &bracketErr):
		return exitUnbalanced
	case errors.As(err, &mismatchErr):
		return exitMismatch
	case errors.As(err, &codegenErr):
		return exitCodegen
	case errors.As(err, &ioErr):
		return exitIO
	default:
		return exitUsage
	}
}
