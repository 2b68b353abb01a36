package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/retroenv/bfjit/internal/options"
	"github.com/retroenv/retrogolib/assert"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	name := filepath.Join(t.TempDir(), "bfjit.toml")
	assert.NoError(t, os.WriteFile(name, []byte(content), 0o600))
	return name
}

func TestLoadFile(t *testing.T) {
	name := writeConfig(t, "backend = \"Interpreter\"\nquiet = true\n")

	file, err := LoadFile(name)
	assert.NoError(t, err)
	assert.Equal(t, "Interpreter", file.Backend)
	assert.NotNil(t, file.Quiet)
	assert.True(t, *file.Quiet)
	assert.True(t, file.Debug == nil)
}

func TestLoadFile_Errors(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	_, err = LoadFile(writeConfig(t, "backend = \n"))
	assert.Error(t, err)

	_, err = LoadFile(writeConfig(t, "backnd = \"jit\"\n"))
	assert.ErrorContains(t, err, "unknown keys")
}

func TestFile_Apply(t *testing.T) {
	debug := true
	verify := true
	file := File{
		Backend: "Interpreter",
		Debug:   &debug,
		Verify:  &verify,
	}

	opts := options.New()
	file.Apply(&opts, map[string]bool{})
	assert.Equal(t, options.Interpreter, opts.Backend)
	assert.True(t, opts.Debug)
	assert.True(t, opts.Verify)
	assert.False(t, opts.Quiet)

	opts = options.New()
	file.Apply(&opts, map[string]bool{"b": true, "debug": true})
	assert.Equal(t, options.JIT, opts.Backend)
	assert.False(t, opts.Debug)
	assert.True(t, opts.Verify)
}

func TestFile_ApplyExplicitDump(t *testing.T) {
	verify := true
	file := File{Verify: &verify}

	opts := options.New()
	opts.Dump = true
	file.Apply(&opts, map[string]bool{"dump": true})
	assert.False(t, opts.Verify)
	assert.True(t, opts.Dump)
}

func TestCreateLogger(t *testing.T) {
	assert.NotNil(t, CreateLogger(true, false))
	assert.NotNil(t, CreateLogger(false, true))
}
