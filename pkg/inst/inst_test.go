package inst_test

import (
	"context"
	"errors"
	"plvm/pkg/inst"
	"plvm/pkg/lexer"
	"plvm/pkg/mem"
	"testing"

	"github.com/nalgeon/be"
)

func intLit(v int32) inst.Instruction {
	return &inst.Literal[int32]{Acc: inst.Ints, Value: v}
}

func boolLit(v bool) inst.Instruction {
	return &inst.Literal[bool]{Acc: inst.Bools, Value: v}
}

func seq(children ...inst.Instruction) inst.Instruction {
	return &inst.Composite{Children: children}
}

func info(fn string, line int) *inst.StackInfo {
	return &inst.StackInfo{Function: fn, Pos: lexer.NewPosition(line, 1, 0)}
}

func run(t *testing.T, total mem.Total, code inst.Instruction) (*inst.ActionContext, *inst.Execution, error) {
	t.Helper()
	ctx := inst.NewActionContext(total, nil)
	exec := inst.NewExecution(context.Background())
	err := inst.Run(code, ctx, exec)
	return ctx, exec, err
}

func TestCompositeStopsOnReturn(t *testing.T) {
	code := seq(
		inst.SetVarOf(mem.KindInt, 0, 0, intLit(1)),
		&inst.Return{Value: intLit(7)},
		inst.SetVarOf(mem.KindInt, 0, 0, intLit(2)),
	)

	ctx, exec, err := run(t, mem.Total{Ints: 1}, code)

	be.Err(t, err, nil)
	be.Equal(t, exec.Values.Int, int32(7))
	be.Equal(t, ctx.CurrentMem().GetInt(0), int32(1))
	be.True(t, ctx.ReturnImmediately)
}

// counts inner iterations of two nested while(true) loops exited with break 2
func TestBreakTwoLevels(t *testing.T) {
	counter := inst.SetVarOf(mem.KindInt, 0, 0,
		inst.ArithOf(mem.KindInt, inst.OpAdd, inst.GetVarOf(mem.KindInt, 0, 0), intLit(1), nil))

	inner := &inst.While{Cond: boolLit(true), Body: seq(counter, &inst.Break{Level: 2})}
	outer := &inst.While{Cond: boolLit(true), Body: seq(inner, inst.SetVarOf(mem.KindInt, 0, 1, intLit(99)))}

	ctx, _, err := run(t, mem.Total{Ints: 2}, seq(outer, inst.SetVarOf(mem.KindInt, 0, 1, intLit(5))))

	be.Err(t, err, nil)
	be.Equal(t, ctx.CurrentMem().GetInt(0), int32(1))
	be.Equal(t, ctx.CurrentMem().GetInt(1), int32(5))
	be.Equal(t, ctx.BreakImmediately, 0)
}

// continue 2 from the inner loop moves on to the next outer iteration
func TestContinueTwoLevels(t *testing.T) {
	// slot 0: outer counter, slot 1: inner body runs, slot 2: outer tail runs
	incr := func(slot int) inst.Instruction {
		return inst.SetVarOf(mem.KindInt, 0, slot,
			inst.ArithOf(mem.KindInt, inst.OpAdd, inst.GetVarOf(mem.KindInt, 0, slot), intLit(1), nil))
	}
	inner := &inst.While{Cond: boolLit(true), Body: seq(incr(1), &inst.Continue{Level: 2})}
	outer := &inst.For{
		Init: inst.SetVarOf(mem.KindInt, 0, 0, intLit(0)),
		Cond: inst.CompareOf(mem.KindInt, inst.OpLT, inst.GetVarOf(mem.KindInt, 0, 0), intLit(3)),
		Incr: incr(0),
		Body: seq(inner, incr(2)),
	}

	ctx, _, err := run(t, mem.Total{Ints: 3}, outer)

	be.Err(t, err, nil)
	be.Equal(t, ctx.CurrentMem().GetInt(0), int32(3))
	be.Equal(t, ctx.CurrentMem().GetInt(1), int32(3))
	be.Equal(t, ctx.CurrentMem().GetInt(2), int32(0))
	be.Equal(t, ctx.ContinueImmediately, 0)
}

func TestDivisionByZeroCarriesTrace(t *testing.T) {
	div := inst.ArithOf(mem.KindInt, inst.OpDiv, intLit(1), intLit(0), info("f", 3))
	call := &inst.Invoke{
		Info: inst.Info{Stack: info("", 1)},
		Fn:   &inst.Literal[any]{Acc: inst.Refs, Value: &inst.Closure{Name: "f", Body: div}},
	}

	_, _, err := run(t, mem.Total{}, call)

	be.Err(t, err, inst.ErrDivisionByZero)
	var ee *inst.ExecError
	be.True(t, errors.As(err, &ee))
	be.Equal(t, len(ee.Trace), 2)
	be.Equal(t, ee.Trace[0].Pos.Line, 1)
	be.Equal(t, ee.Trace[1].Function, "f")
}

func TestErrorHandlingCatchAndElse(t *testing.T) {
	failing := inst.ArithOf(mem.KindInt, inst.OpMod, intLit(1), intLit(0), info("", 1))
	code := &inst.ErrorHandling{
		Try:   failing,
		Catch: inst.SetVarOf(mem.KindRef, 0, 0, inst.GetLastError{}),
		Else:  inst.SetVarOf(mem.KindInt, 0, 0, intLit(1)),
	}

	ctx, exec, err := run(t, mem.Total{Ints: 1, Refs: 1}, code)

	be.Err(t, err, nil)
	caught, ok := ctx.CurrentMem().GetRef(0).(error)
	be.True(t, ok)
	be.Err(t, caught, inst.ErrDivisionByZero)
	be.Equal(t, ctx.CurrentMem().GetInt(0), int32(0))
	be.Err(t, exec.ErrorValue, nil)

	ctx, _, err = run(t, mem.Total{Ints: 1, Refs: 1}, &inst.ErrorHandling{
		Try:   intLit(3),
		Catch: inst.Nop{},
		Else:  inst.SetVarOf(mem.KindInt, 0, 0, intLit(1)),
	})
	be.Err(t, err, nil)
	be.Equal(t, ctx.CurrentMem().GetInt(0), int32(1))
}

func TestThrowMessage(t *testing.T) {
	code := &inst.Throw{
		Info:  inst.Info{Stack: info("g", 2)},
		Kind:  inst.ThrowMessage,
		Value: &inst.Literal[any]{Acc: inst.Refs, Value: "boom"},
	}

	_, _, err := run(t, mem.Total{}, code)

	be.Err(t, err, inst.ErrThrown)
	be.Equal(t, err.Error(), "boom")
	be.Equal(t, inst.ErrorMessage(err), "boom")
}

func TestClosureOutlivesFrame(t *testing.T) {
	// make() { var x = 41; return function() { return x + 1 } }
	body := &inst.Return{Value: inst.ArithOf(mem.KindInt, inst.OpAdd, inst.GetVarOf(mem.KindInt, 1, 0), intLit(1), nil)}
	maker := &inst.Closure{Name: "make", Total: mem.Total{Ints: 1}, Body: seq(
		inst.SetVarOf(mem.KindInt, 0, 0, intLit(41)),
		&inst.Return{Value: &inst.MakeClosure{Name: "inner", Body: body}},
	)}

	code := seq(
		inst.SetVarOf(mem.KindRef, 0, 0, &inst.Invoke{Fn: &inst.Literal[any]{Acc: inst.Refs, Value: maker}}),
		&inst.Invoke{Fn: inst.GetVarOf(mem.KindRef, 0, 0)},
	)

	_, exec, err := run(t, mem.Total{Refs: 1}, code)

	be.Err(t, err, nil)
	be.Equal(t, exec.Values.Int, int32(42))
}

func TestReturnDoesNotLeakFromCallee(t *testing.T) {
	callee := &inst.Closure{Name: "f", Body: &inst.Return{Value: intLit(5)}}
	code := seq(
		&inst.Invoke{Fn: &inst.Literal[any]{Acc: inst.Refs, Value: callee}},
		inst.SetVarOf(mem.KindInt, 0, 0, intLit(9)),
	)

	ctx, _, err := run(t, mem.Total{Ints: 1}, code)

	be.Err(t, err, nil)
	be.Equal(t, ctx.CurrentMem().GetInt(0), int32(9))
	be.True(t, !ctx.ReturnImmediately)
}

func TestStepLimitIsNotCatchable(t *testing.T) {
	loop := &inst.While{Cond: boolLit(true), Body: inst.Nop{}}
	code := &inst.ErrorHandling{Try: loop, Catch: inst.Nop{}}

	ctx := inst.NewActionContext(mem.Total{}, nil)
	exec := inst.NewExecution(context.Background(), inst.WithStepLimit(100))
	err := inst.Run(code, ctx, exec)

	be.Err(t, err, inst.ErrMaxStepsExceeded)
	be.Equal(t, exec.Steps(), 101)
}

func TestCancelledContextStopsRun(t *testing.T) {
	cctx, cancel := context.WithCancel(context.Background())
	cancel()

	ctx := inst.NewActionContext(mem.Total{}, nil)
	exec := inst.NewExecution(cctx)
	err := inst.Run(intLit(1), ctx, exec)

	be.Err(t, err, context.Canceled)
}

func TestArrayBounds(t *testing.T) {
	code := seq(
		inst.SetVarOf(mem.KindRef, 0, 0, inst.NewArrayOf(mem.KindLong, intLit(2), nil)),
		inst.SetIndexOf(mem.KindLong, inst.GetVarOf(mem.KindRef, 0, 0), intLit(1),
			&inst.Literal[int64]{Acc: inst.Longs, Value: 8}, nil),
		inst.GetIndexOf(mem.KindLong, inst.GetVarOf(mem.KindRef, 0, 0), intLit(1), nil),
	)

	ctx, exec, err := run(t, mem.Total{Refs: 1}, code)
	be.Err(t, err, nil)
	be.Equal(t, exec.Values.Long, int64(8))

	bad := inst.GetIndexOf(mem.KindLong, inst.GetVarOf(mem.KindRef, 0, 0), intLit(2), info("", 4))
	err = inst.Run(bad, ctx, inst.NewExecution(context.Background()))
	be.Err(t, err, inst.ErrIndexOutOfRange)
}

func TestIntegerWraps(t *testing.T) {
	code := inst.ArithOf(mem.KindInt, inst.OpAdd, intLit(2147483647), intLit(1), nil)

	_, exec, err := run(t, mem.Total{}, code)

	be.Err(t, err, nil)
	be.Equal(t, exec.Values.Int, int32(-2147483648))
}

func TestCallDepthLimit(t *testing.T) {
	// function down() { down() }
	recurse := seq(
		inst.SetVarOf(mem.KindRef, 0, 0, &inst.MakeClosure{Name: "down", Body: &inst.Invoke{Fn: inst.GetVarOf(mem.KindRef, 1, 0)}}),
		&inst.Invoke{Fn: inst.GetVarOf(mem.KindRef, 0, 0)},
	)

	ctx := inst.NewActionContext(mem.Total{Refs: 1}, nil)
	exec := inst.NewExecution(context.Background(), inst.WithCallDepthLimit(10))
	err := inst.Run(recurse, ctx, exec)

	be.Err(t, err, inst.ErrStackOverflow)
	be.True(t, !inst.IsHostAbort(err))
	be.Equal(t, exec.CallDepth(), 0)
}

func TestStackOverflowIsCatchable(t *testing.T) {
	code := seq(
		inst.SetVarOf(mem.KindRef, 0, 0, &inst.MakeClosure{Name: "down", Body: &inst.Invoke{Fn: inst.GetVarOf(mem.KindRef, 1, 0)}}),
		&inst.ErrorHandling{
			Try:   &inst.Invoke{Fn: inst.GetVarOf(mem.KindRef, 0, 0)},
			Catch: inst.SetVarOf(mem.KindInt, 0, 0, intLit(-1)),
		},
	)

	ctx := inst.NewActionContext(mem.Total{Ints: 1, Refs: 1}, nil)
	exec := inst.NewExecution(context.Background(), inst.WithCallDepthLimit(10))
	err := inst.Run(code, ctx, exec)

	be.Err(t, err, nil)
	be.Equal(t, ctx.CurrentMem().GetInt(0), int32(-1))
}

func TestDefaultArguments(t *testing.T) {
	// function f(a: int = 7) { return a }
	fn := &inst.MakeClosure{
		Name:     "f",
		Body:     &inst.Return{Value: inst.GetVarOf(mem.KindInt, 0, 0)},
		Total:    mem.Total{Ints: 1},
		Params:   1,
		Defaults: []inst.Arg{{Value: intLit(7), Store: inst.StoreArg(mem.KindInt, 0)}},
	}
	code := seq(
		inst.SetVarOf(mem.KindRef, 0, 0, fn),
		inst.SetVarOf(mem.KindInt, 0, 0, &inst.Invoke{Fn: inst.GetVarOf(mem.KindRef, 0, 0)}),
		inst.SetVarOf(mem.KindInt, 0, 1, &inst.Invoke{
			Fn:   inst.GetVarOf(mem.KindRef, 0, 0),
			Args: []inst.Arg{{Value: intLit(3), Store: inst.StoreArg(mem.KindInt, 0)}},
		}),
	)

	ctx, _, err := run(t, mem.Total{Ints: 2, Refs: 1}, code)

	be.Err(t, err, nil)
	be.Equal(t, ctx.CurrentMem().GetInt(0), int32(7))
	be.Equal(t, ctx.CurrentMem().GetInt(1), int32(3))
}

func TestArrayLiteral(t *testing.T) {
	code := inst.ArrayLiteralOf(mem.KindInt, []inst.Instruction{intLit(1), intLit(2), intLit(3)}, nil)
	_, exec, err := run(t, mem.Total{}, code)

	be.Err(t, err, nil)
	arr, ok := exec.Values.Ref.(*inst.Array[int32])
	be.True(t, ok)
	be.Equal(t, arr.Elems, []int32{1, 2, 3})
}

func TestStringLengthCountsCharacters(t *testing.T) {
	code := seq(&inst.Literal[any]{Acc: inst.Refs, Value: "añb"}, inst.Length)
	_, exec, err := run(t, mem.Total{}, code)

	be.Err(t, err, nil)
	be.Equal(t, exec.Values.Int, int32(3))
}
