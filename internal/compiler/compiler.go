package compiler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"plvm/internal/config"
	"plvm/internal/scenario"
	"plvm/pkg/color"
	"plvm/pkg/explorer"
	"plvm/pkg/inst"
	"plvm/pkg/interpreter"
	"plvm/pkg/parser"
	"plvm/pkg/types"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

type Compiler struct {
	Help            bool   // Show help message
	Verbose         bool   // Enable verbose output
	ShouldInterpret bool   // Whether to run the script
	CheckOnly       bool   // Stop after type checking
	Dump            bool   // Print the global frame after the run
	NoColor         bool   // Disable colored output
	MaxSteps        int    // Instruction limit, 0 takes the config value
	MaxDepth        int    // Call nesting limit, 0 takes the config value
	SourceFile      string // Path to the source file
	SnapshotFile    string // Path of the CBOR memory snapshot, "" for none
	ConfigFile      string // Path to a plvm.toml file
	ScenarioFile    string // Path to a markdown scenario file

	Stdout io.Writer // script output and results, os.Stdout when nil
	Stderr io.Writer // diagnostics, os.Stderr when nil

	timeout time.Duration
}

// Configure loads the config file, if any, under the flags already set
func (opts *Compiler) Configure() error {
	cfg := config.Default()
	if opts.ConfigFile != "" {
		c, err := config.Load(opts.ConfigFile)
		if err != nil {
			return err
		}
		cfg = c
	}

	opts.Verbose = opts.Verbose || cfg.Log.Verbose
	opts.NoColor = opts.NoColor || !cfg.Log.Color
	if opts.MaxSteps == 0 {
		opts.MaxSteps = cfg.Engine.MaxSteps
	}
	if opts.MaxDepth == 0 {
		opts.MaxDepth = cfg.Engine.MaxDepth
	}
	if opts.SnapshotFile == "" {
		opts.SnapshotFile = cfg.Output.Snapshot
	}

	timeout, err := cfg.Timeout()
	if err != nil {
		return err
	}
	opts.timeout = timeout
	return nil
}

func (opts *Compiler) stdout() io.Writer {
	if opts.Stdout == nil {
		return os.Stdout
	}
	return opts.Stdout
}

func (opts *Compiler) stderr() io.Writer {
	if opts.Stderr == nil {
		return os.Stderr
	}
	return opts.Stderr
}

func (opts *Compiler) context() (context.Context, context.CancelFunc) {
	if opts.timeout > 0 {
		return context.WithTimeout(context.Background(), opts.timeout)
	}
	return context.WithCancel(context.Background())
}

// Compile checks the source file and, unless only checking, runs it.
func (opts *Compiler) Compile() error {
	runID := uuid.NewString()
	log.Info("Processing file", "file", opts.SourceFile, "run", runID)

	input, err := os.ReadFile(opts.SourceFile)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", opts.SourceFile, err)
	}
	src := string(input)

	it, err := interpreter.Compile(src,
		interpreter.WithWriter(opts.stdout()),
		interpreter.WithMaxSteps(opts.MaxSteps),
		interpreter.WithMaxCallDepth(opts.MaxDepth),
		interpreter.WithLogger(log.Default().With("run", runID)))
	if err != nil {
		opts.report(src, err)
		return err
	}

	if opts.Verbose {
		fmt.Fprintln(opts.stdout(), color.GreenText("=== Checked Program ==="))
		fmt.Fprintln(opts.stdout(), it.Program())
		fmt.Fprintln(opts.stdout(), color.GrayText("returns "+it.ReturnType().String()))
	}

	if opts.CheckOnly || !opts.ShouldInterpret {
		fmt.Fprintln(opts.stdout(), color.Success("no errors found"))
		return nil
	}

	ctx, cancel := opts.context()
	defer cancel()

	if opts.Verbose {
		fmt.Fprintln(opts.stdout(), color.GreenText("\n=== Program Output ==="))
	}
	v, err := it.Run(ctx)
	if err != nil {
		opts.report(src, err)
		return fmt.Errorf("run failed: %w", err)
	}

	if !v.IsVoid() {
		fmt.Fprintln(opts.stdout(), color.BoldText(v.String()))
	}

	ex := explorer.New(it.Frame())
	if opts.Dump {
		fmt.Fprintln(opts.stdout(), color.GreenText("\n=== Global Memory ==="))
		if err := ex.Inspect(opts.stdout()); err != nil {
			return err
		}
	}

	if opts.SnapshotFile != "" {
		data, err := ex.Snapshot()
		if err != nil {
			return fmt.Errorf("snapshot failed: %w", err)
		}
		if err := os.WriteFile(opts.SnapshotFile, data, 0o644); err != nil {
			return fmt.Errorf("snapshot failed: %w", err)
		}
		log.Info("Snapshot written", "file", opts.SnapshotFile, "bytes", len(data))
	}

	return nil
}

// report prints a compile or run failure against the source
func (opts *Compiler) report(src string, err error) {
	var syntax parser.ErrorList
	var check *types.CheckError
	var exec *inst.ExecError

	switch {
	case errors.As(err, &syntax):
		fmt.Fprintln(opts.stderr(), syntax.Render(opts.SourceFile, src))
	case errors.As(err, &check):
		fmt.Fprintln(opts.stderr(), color.Diagnostic(opts.SourceFile, src, check.Pos.Line, check.Pos.Column, check.Kind.Error(), check.Msg))
	case errors.As(err, &exec):
		fmt.Fprintln(opts.stderr(), color.Error(exec.FormatTrace()))
	default:
		fmt.Fprintln(opts.stderr(), color.Error(err.Error()))
	}
}

// RunScenarios runs every case of the scenario file and fails if any does
func (opts *Compiler) RunScenarios() error {
	cases, err := scenario.Load(opts.ScenarioFile)
	if err != nil {
		return err
	}

	failed := 0
	for _, c := range cases {
		ctx, cancel := opts.context()
		res := c.Run(ctx, interpreter.WithMaxSteps(opts.MaxSteps), interpreter.WithMaxCallDepth(opts.MaxDepth))
		cancel()

		if res.Passed() {
			fmt.Fprintf(opts.stdout(), "%s %s\n", color.GreenText("PASS"), c.Name)
			continue
		}
		failed++
		fmt.Fprintf(opts.stdout(), "%s %s (%s): %s\n", color.RedText("FAIL"), c.Name,
			color.Position(c.Line, 1), res.Failure)
	}

	log.Info("Scenarios finished", "file", opts.ScenarioFile, "total", len(cases), "failed", failed)
	if failed > 0 {
		return fmt.Errorf("%d of %d scenarios failed", failed, len(cases))
	}
	return nil
}
