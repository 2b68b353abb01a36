// Package options contains the program options.
package options

// Backend names.
const (
	JIT         = "jit"
	Interpreter = "interpreter"
)

// Parameters contains file path options.
type Parameters struct {
	Input  string // source file to run
	Config string // TOML file with option defaults
}

// Flags contains behavior options.
type Flags struct {
	Backend string
	Debug   bool
	Dump    bool
	Quiet   bool
	Verify  bool
}

// Program options of the runner.
type Program struct {
	Parameters
	Flags
}

// New returns program options with the default settings.
func New() Program {
	return Program{
		Flags: Flags{
			Backend: JIT,
		},
	}
}
