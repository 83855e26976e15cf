package compiler_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"plvm/internal/compiler"
	"plvm/pkg/color"
	"plvm/pkg/explorer"
	"plvm/pkg/interpreter"
	"plvm/pkg/parser"
	"plvm/pkg/types"

	"github.com/nalgeon/be"
)

func setup(t *testing.T, src string) (*compiler.Compiler, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	color.EnableColor(false)

	dir := t.TempDir()
	path := filepath.Join(dir, "main.pl")
	be.Err(t, os.WriteFile(path, []byte(src), 0o644), nil)

	var stdout, stderr bytes.Buffer
	c := &compiler.Compiler{
		ShouldInterpret: true,
		SourceFile:      path,
		Stdout:          &stdout,
		Stderr:          &stderr,
	}
	be.Err(t, c.Configure(), nil)
	return c, &stdout, &stderr
}

func TestRun(t *testing.T) {
	c, stdout, _ := setup(t, `std.console.log("hello"); var x: int = 2; return: x + 3;`)
	be.Err(t, c.Compile(), nil)
	be.Equal(t, stdout.String(), "hello\n5\n")
}

func TestCheckOnly(t *testing.T) {
	c, stdout, _ := setup(t, `std.console.log("hello");`)
	c.CheckOnly = true
	be.Err(t, c.Compile(), nil)
	be.True(t, strings.Contains(stdout.String(), "no errors found"))
	be.True(t, !strings.Contains(stdout.String(), "hello"))
}

func TestSyntaxErrorReport(t *testing.T) {
	c, _, stderr := setup(t, "var x = 1\nvar y = 2;")
	err := c.Compile()
	var list parser.ErrorList
	be.True(t, errors.As(err, &list))
	be.True(t, strings.Contains(stderr.String(), "main.pl:2:1"))
	be.True(t, strings.Contains(stderr.String(), "Missing semicolon"))
}

func TestTypeErrorReport(t *testing.T) {
	c, stdout, stderr := setup(t, `std.console.log("side"); var x: int = "a";`)
	err := c.Compile()
	be.Err(t, err, types.ErrTypeMismatch)
	be.True(t, strings.Contains(stderr.String(), "error: type mismatch"))
	be.Equal(t, stdout.Len(), 0)
}

func TestRunErrorReport(t *testing.T) {
	c, _, stderr := setup(t, "function f(): int { return: 1 / 0; }\nreturn: f();")
	err := c.Compile()
	be.Err(t, err, "run failed")
	be.True(t, strings.Contains(stderr.String(), "at f (1:"))
}

func TestDumpAndSnapshot(t *testing.T) {
	c, stdout, _ := setup(t, `public var a: int = 7; var b: string = "x";`)
	c.Dump = true
	c.SnapshotFile = filepath.Join(t.TempDir(), "memory.cbor")
	be.Err(t, c.Compile(), nil)

	be.True(t, strings.Contains(stdout.String(), "public var a: int = 7"))
	be.True(t, strings.Contains(stdout.String(), `var b: string = "x"`))

	data, err := os.ReadFile(c.SnapshotFile)
	be.Err(t, err, nil)
	m, err := explorer.ReadSnapshot(data)
	be.Err(t, err, nil)
	be.Equal(t, m, map[string]any{"a": uint64(7)})
}

func TestConfigLimitsSteps(t *testing.T) {
	c, _, _ := setup(t, `while (true) { }`)
	cfg := filepath.Join(t.TempDir(), "plvm.toml")
	be.Err(t, os.WriteFile(cfg, []byte("[engine]\nmax_steps = 100\n"), 0o644), nil)

	c.ConfigFile = cfg
	c.MaxSteps = 0
	be.Err(t, c.Configure(), nil)
	be.Equal(t, c.MaxSteps, 100)
	be.Err(t, c.Compile(), interpreter.ErrMaxStepsExceeded)
}

func TestFlagsOverrideConfig(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "plvm.toml")
	be.Err(t, os.WriteFile(cfg, []byte("[engine]\nmax_steps = 100\n[output]\nsnapshot = \"a.cbor\"\n"), 0o644), nil)

	c := &compiler.Compiler{ConfigFile: cfg, MaxSteps: 5, SnapshotFile: "b.cbor"}
	be.Err(t, c.Configure(), nil)
	be.Equal(t, c.MaxSteps, 5)
	be.Equal(t, c.SnapshotFile, "b.cbor")
}

func TestRunScenarios(t *testing.T) {
	color.EnableColor(false)
	var stdout bytes.Buffer
	c := &compiler.Compiler{ScenarioFile: "../scenario/testdata/scenarios.md", Stdout: &stdout}
	be.Err(t, c.Configure(), nil)
	be.Err(t, c.RunScenarios(), nil)
	be.True(t, strings.Contains(stdout.String(), "PASS substring"))
	be.True(t, !strings.Contains(stdout.String(), "FAIL"))
}

func TestCallDepthFromConfig(t *testing.T) {
	src := "function down(n: int): int { return: down(n + 1); }\nreturn: down(0);"
	c, _, stderr := setup(t, src)
	be.Equal(t, c.MaxDepth, 4096)

	c.MaxDepth = 16
	err := c.Compile()
	be.Err(t, err, interpreter.ErrStackOverflow)
	be.True(t, strings.Contains(stderr.String(), "stack overflow"))
}
