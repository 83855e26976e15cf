package inst

import "fmt"

// If runs Then or Else depending on the bool left by Cond
type If struct {
	Info
	Cond Instruction
	Then Instruction
	Else Instruction // may be nil
}

func (i *If) Execute(ctx *ActionContext, exec *Execution) error {
	if err := Run(i.Cond, ctx, exec); err != nil {
		return err
	}
	if exec.Values.Bool {
		return Run(i.Then, ctx, exec)
	}
	if i.Else != nil {
		return Run(i.Else, ctx, exec)
	}
	return nil
}

// loopSignal consumes one level of break or continue after a loop body.
// It reports whether the loop has to stop.
func loopSignal(ctx *ActionContext) bool {
	if ctx.ReturnImmediately {
		return true
	}
	if ctx.BreakImmediately > 0 {
		ctx.BreakImmediately--
		return true
	}
	if ctx.ContinueImmediately > 0 {
		ctx.ContinueImmediately--
		return ctx.ContinueImmediately > 0
	}
	return false
}

type While struct {
	Info
	Cond Instruction
	Body Instruction
}

func (w *While) Execute(ctx *ActionContext, exec *Execution) error {
	for {
		if err := Run(w.Cond, ctx, exec); err != nil {
			return err
		}
		if !exec.Values.Bool {
			return nil
		}
		if err := Run(w.Body, ctx, exec); err != nil {
			return err
		}
		if loopSignal(ctx) {
			return nil
		}
	}
}

type For struct {
	Info
	Init Instruction
	Cond Instruction
	Incr Instruction
	Body Instruction
}

func (f *For) Execute(ctx *ActionContext, exec *Execution) error {
	if err := Run(f.Init, ctx, exec); err != nil {
		return err
	}
	for {
		if err := Run(f.Cond, ctx, exec); err != nil {
			return err
		}
		if !exec.Values.Bool {
			return nil
		}
		if err := Run(f.Body, ctx, exec); err != nil {
			return err
		}
		if loopSignal(ctx) {
			return nil
		}
		if err := Run(f.Incr, ctx, exec); err != nil {
			return err
		}
	}
}

type Break struct {
	Level int
}

func (b *Break) Execute(ctx *ActionContext, _ *Execution) error {
	ctx.BreakImmediately = b.Level
	return nil
}

func (b *Break) StackInfo() *StackInfo { return nil }

type Continue struct {
	Level int
}

func (c *Continue) Execute(ctx *ActionContext, _ *Execution) error {
	ctx.ContinueImmediately = c.Level
	return nil
}

func (c *Continue) StackInfo() *StackInfo { return nil }

// Return leaves the value of Value (if any) in the holder and raises the return signal
type Return struct {
	Value Instruction // nil for a bare return
}

func (r *Return) Execute(ctx *ActionContext, exec *Execution) error {
	if r.Value != nil {
		if err := Run(r.Value, ctx, exec); err != nil {
			return err
		}
	}
	ctx.ReturnImmediately = true
	return nil
}

func (r *Return) StackInfo() *StackInfo { return nil }

// ThrowKind tells Throw how to read its operand
type ThrowKind int

const (
	ThrowNothing ThrowKind = iota
	ThrowMessage
	ThrowError
)

type Throw struct {
	Info
	Kind  ThrowKind
	Value Instruction
}

func (t *Throw) Execute(ctx *ActionContext, exec *Execution) error {
	switch t.Kind {
	case ThrowMessage:
		if err := Run(t.Value, ctx, exec); err != nil {
			return err
		}
		return exec.Fail(Stringify(exec.Values.Ref), ErrThrown)
	case ThrowError:
		if err := Run(t.Value, ctx, exec); err != nil {
			return err
		}
		if err, ok := exec.Values.Ref.(error); ok && err != nil {
			return err
		}
		return exec.Fail("throwing null error", ErrNullPointer)
	default:
		return exec.Fail("exception", ErrThrown)
	}
}

// GetLastError loads the error published to the running catch block
type GetLastError struct{}

func (GetLastError) Execute(_ *ActionContext, exec *Execution) error {
	if exec.ErrorValue == nil {
		exec.Values.Ref = nil
	} else {
		exec.Values.Ref = exec.ErrorValue
	}
	return nil
}

func (GetLastError) StackInfo() *StackInfo { return nil }

// ErrorHandling runs Try; a failure runs Catch with the error published,
// a clean completion without signals runs Else.
type ErrorHandling struct {
	Info
	Try   Instruction
	Catch Instruction
	Else  Instruction // may be nil
}

func (e *ErrorHandling) Execute(ctx *ActionContext, exec *Execution) error {
	err := Run(e.Try, ctx, exec)
	if err != nil {
		if IsHostAbort(err) {
			return err
		}
		prev := exec.ErrorValue
		exec.ErrorValue = err
		err = Run(e.Catch, ctx, exec)
		exec.ErrorValue = prev
		return err
	}
	if ctx.NeedReturn() || e.Else == nil {
		return nil
	}
	return Run(e.Else, ctx, exec)
}

// Stringify renders a reference slot the way string concatenation does
func Stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return x
	case error:
		return ErrorMessage(x)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprintf("%v", x)
	}
}
