// Package cli handles command line interface logic
package cli

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/retroenv/bfjit/internal/backend"
	"github.com/retroenv/bfjit/internal/config"
	"github.com/retroenv/bfjit/internal/options"
)

// ParseFlags parses command line flags and returns the program options.
// Defaults from a config file passed with -c are applied to all flags that
// were not set explicitly.
func ParseFlags() (options.Program, error) {
	flags := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	// errors and usage are reported by UsageError
	flags.SetOutput(io.Discard)
	opts := options.New()
	var useInterpreter bool
	readOptionFlags(flags, &opts, &useInterpreter)

	if err := flags.Parse(os.Args[1:]); err != nil {
		return opts, &UsageError{flags: flags, msg: err.Error()}
	}
	args := flags.Args()
	if len(args) == 0 {
		return opts, &UsageError{flags: flags}
	}

	if err := validateArgs(args); err != nil {
		return opts, err
	}
	opts.Input = args[0]

	explicit := map[string]bool{}
	flags.Visit(func(f *flag.Flag) {
		explicit[f.Name] = true
	})

	if opts.Config != "" {
		file, err := config.LoadFile(opts.Config)
		if err != nil {
			return opts, err
		}
		file.Apply(&opts, explicit)
	}

	if useInterpreter {
		opts.Backend = options.Interpreter
	}

	if err := normalizeOptions(&opts); err != nil {
		return opts, err
	}
	return opts, nil
}

// UsageError represents an error that should show usage information
type UsageError struct {
	flags *flag.FlagSet
	msg   string
}

func (e *UsageError) Error() string {
	if e.msg == "" {
		return "missing file to run"
	}
	return e.msg
}

// ShowUsage prints the usage information and all flag defaults.
func (e *UsageError) ShowUsage() {
	fmt.Fprintf(os.Stderr, "usage: bfjit [options] <file to run>\n\n")
	if e.flags != nil {
		e.flags.SetOutput(os.Stderr)
		e.flags.PrintDefaults()
	}
	fmt.Fprintln(os.Stderr)
}

// validateArgs checks if arguments are in correct order
func validateArgs(args []string) error {
	for i, arg := range args {
		if i > 0 && arg != "" && arg[0] == '-' {
			return &UsageError{
				msg: fmt.Sprintf("Potential argument %s found after file to run, please pass the file to run as last argument", arg),
			}
		}
	}
	if len(args) > 1 {
		return &UsageError{
			msg: fmt.Sprintf("only one file can be run, got %d", len(args)),
		}
	}
	return nil
}

// normalizeOptions normalizes and validates option values
func normalizeOptions(opts *options.Program) error {
	opts.Backend = strings.ToLower(opts.Backend)
	if err := backend.Validate(opts.Backend); err != nil {
		return err
	}

	if opts.Verify && opts.Dump {
		return &UsageError{msg: "-verify and -dump can not be combined"}
	}
	return nil
}

func readOptionFlags(flags *flag.FlagSet, opts *options.Program, useInterpreter *bool) {
	flags.StringVar(&opts.Backend, "b", options.JIT, "execution backend (jit/interpreter)")
	flags.BoolVar(useInterpreter, "i", false, "use the interpreter backend, same as -b interpreter")
	flags.StringVar(&opts.Config, "c", "", "TOML config file with option defaults")
	flags.BoolVar(&opts.Verify, "verify", false, "run the program with both backends and compare their output")
	flags.BoolVar(&opts.Dump, "dump", false, "write a listing of the tokens and generated code to stderr instead of running")
	flags.BoolVar(&opts.Debug, "debug", false, "enable debugging options for extended logging")
	flags.BoolVar(&opts.Quiet, "q", false, "perform operations quietly")
}
