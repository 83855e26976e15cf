package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"plvm/internal/config"

	"github.com/nalgeon/be"
)

func TestDefault(t *testing.T) {
	c := config.Default()
	be.Equal(t, c.Engine.MaxSteps, 1_000_000)
	be.Equal(t, c.Engine.MaxDepth, 4096)
	be.Equal(t, c.Log.Color, true)

	d, err := c.Timeout()
	be.Err(t, err, nil)
	be.Equal(t, d, time.Duration(0))
}

func TestParse(t *testing.T) {
	c, err := config.Parse(`
[engine]
max_steps = 500
max_depth = 64
timeout = "250ms"

[log]
verbose = true

[output]
snapshot = "memory.cbor"
`)
	be.Err(t, err, nil)
	be.Equal(t, c.Engine.MaxSteps, 500)
	be.Equal(t, c.Engine.MaxDepth, 64)
	be.Equal(t, c.Log.Verbose, true)
	be.Equal(t, c.Log.Color, true)
	be.Equal(t, c.Output.Snapshot, "memory.cbor")

	d, err := c.Timeout()
	be.Err(t, err, nil)
	be.Equal(t, d, 250*time.Millisecond)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"syntax", "[engine\n", "parse error"},
		{"negative steps", "[engine]\nmax_steps = -1\n", "must not be negative"},
		{"negative depth", "[engine]\nmax_depth = -5\n", "engine.max_depth"},
		{"bad timeout", "[engine]\ntimeout = \"soon\"\n", "engine.timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Parse(tt.text)
			be.Err(t, err, tt.want)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plvm.toml")
	be.Err(t, os.WriteFile(path, []byte("[log]\ncolor = false\n"), 0o644), nil)

	c, err := config.Load(path)
	be.Err(t, err, nil)
	be.Equal(t, c.Log.Color, false)

	_, err = config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	be.Err(t, err, "cannot read")
}
