// Package config handles application configuration and setup
package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/retroenv/bfjit/internal/options"
	"github.com/retroenv/retrogolib/log"
)

// File contains the option defaults that can be set in a TOML config file.
// Unset values keep the built in defaults.
type File struct {
	Backend string `toml:"backend"`
	Debug   *bool  `toml:"debug"`
	Quiet   *bool  `toml:"quiet"`
	Verify  *bool  `toml:"verify"`
}

// CreateLogger creates a logger with appropriate settings
func CreateLogger(debug, quiet bool) *log.Logger {
	cfg := log.DefaultConfig()
	if debug {
		cfg.Level = log.DebugLevel
	} else if quiet {
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}

// LoadFile reads a config file. Unknown keys are reported as error to catch typos.
func LoadFile(path string) (File, error) {
	var file File
	meta, err := toml.DecodeFile(path, &file)
	if err != nil {
		return File{}, fmt.Errorf("decoding config file '%s': %w", path, err)
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, key := range undecoded {
			keys = append(keys, key.String())
		}
		sort.Strings(keys)
		return File{}, fmt.Errorf("unknown keys in config file '%s': %s", path, strings.Join(keys, ", "))
	}

	return file, nil
}

// Apply sets all options of the file that were not explicitly set on the
// command line. explicit contains the names of the flags that were passed.
func (f File) Apply(opts *options.Program, explicit map[string]bool) {
	if f.Backend != "" && !explicit["b"] && !explicit["i"] {
		opts.Backend = strings.ToLower(f.Backend)
	}
	if f.Debug != nil && !explicit["debug"] {
		opts.Debug = *f.Debug
	}
	if f.Quiet != nil && !explicit["q"] {
		opts.Quiet = *f.Quiet
	}
	// an explicit -dump excludes verification
	if f.Verify != nil && !explicit["verify"] && !explicit["dump"] {
		opts.Verify = *f.Verify
	}
}
