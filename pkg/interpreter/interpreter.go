package interpreter

import (
	"context"
	"io"
	"os"
	"sync"

	"plvm/pkg/ast"
	"plvm/pkg/inst"
	"plvm/pkg/lang"
	"plvm/pkg/mem"
	"plvm/pkg/parser"
	"plvm/pkg/types"

	"github.com/charmbracelet/log"
)

// Interpreter runs one checked script. The script is compiled once by New;
// every Run starts from a fresh global frame.
type Interpreter struct {
	prog   *ast.Program
	code   inst.Instruction // instruction tree of the script
	global *types.TypeContext
	alloc  *mem.Allocator // shapes the global frame
	std    *lang.Runtime

	out      io.Writer // std.console output
	maxSteps int       // 0 => unlimited
	maxCalls int       // 0 => inst.DefaultMaxCallDepth
	logger   *log.Logger

	mu    sync.Mutex
	frame *Frame // global frame of the last run
}

type Option func(*Interpreter)

// WithWriter sets the writer std.console prints to
func WithWriter(w io.Writer) Option {
	return func(i *Interpreter) { i.out = w }
}

// WithMaxSteps sets a maximum number of instructions before a run fails with ErrMaxStepsExceeded
func WithMaxSteps(n int) Option {
	return func(i *Interpreter) { i.maxSteps = n }
}

// WithMaxCallDepth sets how deep calls may nest before a run fails with
// ErrStackOverflow. The failure can be caught by the script.
func WithMaxCallDepth(n int) Option {
	return func(i *Interpreter) { i.maxCalls = n }
}

// WithLogger sets the logger used for run diagnostics
func WithLogger(l *log.Logger) Option {
	return func(i *Interpreter) { i.logger = l }
}

var (
	ErrMaxStepsExceeded = inst.ErrMaxStepsExceeded
	ErrAborted          = inst.ErrAborted
	ErrStackOverflow    = inst.ErrStackOverflow
)

// New checks prog and lowers it into an instruction tree
func New(prog *ast.Program, opts ...Option) (*Interpreter, error) {
	it := &Interpreter{
		prog:  prog,
		alloc: mem.NewAllocator(),
	}

	for _, o := range opts {
		o(it)
	}

	if it.out == nil {
		it.out = os.Stdout
	}

	if it.logger == nil {
		it.logger = log.Default()
	}

	it.global = types.NewGlobalContext(types.NewRootContext(), it.alloc)
	std, err := lang.Install(it.global)
	if err != nil {
		return nil, err
	}
	it.std = std

	if err := prog.Check(it.global); err != nil {
		return nil, err
	}

	it.code = prog.GenerateInstruction()
	it.logger.Debug("Script compiled", "frame", it.alloc.Total(), "returns", prog.ReturnType())

	return it, nil
}

// Compile parses and checks src. Syntax errors come back as a parser.ErrorList,
// type errors as a *types.CheckError.
func Compile(src string, opts ...Option) (*Interpreter, error) {
	prog, err := parser.Parse(src)
	if err != nil {
		return nil, err
	}
	return New(prog, opts...)
}

// Program returns the checked script
func (i *Interpreter) Program() *ast.Program {
	return i.prog
}

// ReturnType is the static type of the script result
func (i *Interpreter) ReturnType() types.TypeInstance {
	return i.prog.ReturnType()
}

// Output returns the writer std.console prints to
func (i *Interpreter) Output() io.Writer {
	return i.out
}

// Variables lists the global declarations in declaration order, std first
func (i *Interpreter) Variables() []*types.Variable {
	vars := append([]*types.Variable(nil), i.global.Variables()...)
	return append(vars, i.prog.Context().Variables()...)
}

// Frame returns the global frame of the last run, nil before the first one
func (i *Interpreter) Frame() *Frame {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.frame
}

func (i *Interpreter) setFrame(f *Frame) {
	i.mu.Lock()
	i.frame = f
	i.mu.Unlock()
}

// Run executes the script to completion
func (i *Interpreter) Run(ctx context.Context) (Value, error) {
	return i.run(ctx, nil)
}

func (i *Interpreter) run(ctx context.Context, hook func(*inst.StackInfo) error) (Value, error) {
	top := inst.NewActionContext(i.alloc.Total(), nil)
	i.std.Bind(top.CurrentMem())
	i.setFrame(&Frame{Vars: i.Variables(), Mem: top.CurrentMem()})

	opts := []inst.ExecOption{
		inst.WithOutput(i.out),
		inst.WithStepLimit(i.maxSteps),
		inst.WithCallDepthLimit(i.maxCalls),
	}
	if hook != nil {
		opts = append(opts, inst.WithBoundaryHook(hook))
	}
	exec := inst.NewExecution(ctx, opts...)

	err := inst.Run(i.code, top, exec)
	i.logger.Debug("Run finished", "steps", exec.Steps(), "error", err)
	if err != nil {
		return Value{}, err
	}

	t := i.prog.ReturnType()
	if !top.ReturnImmediately || t == types.Void {
		return Value{Type: types.Void}, nil
	}

	return Value{Type: t, Raw: exec.Values.Read(t.Kind())}, nil
}
