package inst

import (
	"context"
	"errors"
	"fmt"
	"io"

	"plvm/pkg/stack"
)

// Execution is the state shared by every instruction of one run.
type Execution struct {
	Values     ValueHolder // accumulator
	ErrorValue error       // error published to the running catch block

	ctx      context.Context
	out      io.Writer
	trace    *stack.Stack[*StackInfo]
	steps    int
	maxSteps int // 0 => unlimited
	calls    int // activations currently open
	maxCalls int
	hook     func(info *StackInfo) error // called at every instruction boundary
}

type ExecOption func(*Execution)

// DefaultMaxCallDepth bounds nested calls when WithCallDepthLimit is not given
const DefaultMaxCallDepth = 4096

// WithCallDepthLimit fails a call with ErrStackOverflow once n calls are
// open. n <= 0 keeps the default.
func WithCallDepthLimit(n int) ExecOption {
	return func(e *Execution) {
		if n > 0 {
			e.maxCalls = n
		}
	}
}

// WithStepLimit aborts the run with ErrMaxStepsExceeded after n instructions
func WithStepLimit(n int) ExecOption {
	return func(e *Execution) { e.maxSteps = n }
}

// WithOutput sets the writer std.console prints to
func WithOutput(w io.Writer) ExecOption {
	return func(e *Execution) { e.out = w }
}

// WithBoundaryHook installs a function called before every instruction.
// A non-nil error aborts the run.
func WithBoundaryHook(fn func(info *StackInfo) error) ExecOption {
	return func(e *Execution) { e.hook = fn }
}

// NewExecution creates the shared state of one run
func NewExecution(ctx context.Context, opts ...ExecOption) *Execution {
	if ctx == nil {
		ctx = context.Background()
	}

	e := &Execution{
		ctx:      ctx,
		out:      io.Discard,
		trace:    stack.NewStack[*StackInfo](),
		maxCalls: DefaultMaxCallDepth,
	}

	for _, o := range opts {
		o(e)
	}

	return e
}

// Out is the writer of script output
func (e *Execution) Out() io.Writer {
	return e.out
}

// Steps returns the number of instructions started so far
func (e *Execution) Steps() int {
	return e.steps
}

// Trace returns the frames currently recorded, outermost first
func (e *Execution) Trace() []StackInfo {
	infos := e.trace.Array()
	out := make([]StackInfo, len(infos))
	for i, info := range infos {
		out[i] = *info
	}
	return out
}

// Fail builds an ExecError at the current point of execution
func (e *Execution) Fail(message string, cause error) *ExecError {
	return &ExecError{Message: message, Cause: cause, Trace: e.Trace()}
}

// CallDepth returns the number of calls currently running
func (e *Execution) CallDepth() int {
	return e.calls
}

// call runs body in frame as one more nested activation
func (e *Execution) call(body Instruction, frame *ActionContext) error {
	if e.calls >= e.maxCalls {
		return fmt.Errorf("%w: more than %d nested calls", ErrStackOverflow, e.maxCalls)
	}
	e.calls++
	defer func() { e.calls-- }()
	return Run(body, frame, e)
}

// boundary runs before each instruction
func (e *Execution) boundary(info *StackInfo) error {
	e.steps++
	if e.maxSteps > 0 && e.steps > e.maxSteps {
		return ErrMaxStepsExceeded
	}

	select {
	case <-e.ctx.Done():
		return e.ctx.Err()
	default:
	}

	if e.hook != nil {
		return e.hook(info)
	}
	return nil
}

// capture turns a plain failure into an ExecError carrying the trace
func (e *Execution) capture(err error) error {
	if IsHostAbort(err) {
		return err
	}
	var ee *ExecError
	if errors.As(err, &ee) {
		return err
	}
	return e.Fail(err.Error(), err)
}

// Run executes one instruction. Every child instruction is executed
// through Run so that limits, hooks and traces apply uniformly.
func Run(i Instruction, ctx *ActionContext, exec *Execution) error {
	info := i.StackInfo()
	if err := exec.boundary(info); err != nil {
		return err
	}

	if info == nil {
		return i.Execute(ctx, exec)
	}

	exec.trace.Push(info)
	err := i.Execute(ctx, exec)
	if err != nil {
		err = exec.capture(err)
	}
	exec.trace.Pop()

	return err
}
