package lang_test

import (
	"bytes"
	"context"
	"plvm/pkg/inst"
	"plvm/pkg/lang"
	"plvm/pkg/mem"
	"plvm/pkg/types"
	"testing"

	"github.com/nalgeon/be"
)

func newGlobal() *types.TypeContext {
	return types.NewGlobalContext(types.NewRootContext(), mem.NewAllocator())
}

func concrete(t *testing.T, ctx *types.TypeContext, tmpl types.TypeInstance, params ...types.TypeInstance) types.TypeInstance {
	t.Helper()
	c, err := tmpl.Concrete(ctx, params)
	be.Err(t, err, nil)
	return c
}

// construct runs the native constructor of typ
func construct(t *testing.T, exec *inst.Execution, typ types.TypeInstance) any {
	t.Helper()
	c, ok := typ.(types.Constructible)
	be.True(t, ok)
	err := inst.Run(c.Construct(), inst.NewActionContext(mem.Total{}, nil), exec)
	be.Err(t, err, nil)
	return exec.Values.Ref
}

// call reads method name of recv and invokes it with args, leaving the
// result in the holder
func call(t *testing.T, ctx *types.TypeContext, exec *inst.Execution, typ types.TypeInstance, recv any, name string, args ...any) error {
	t.Helper()
	f := typ.Field(ctx, name, nil)
	be.True(t, f != nil)

	exec.Values.Ref = recv
	if err := inst.Run(f.Native, inst.NewActionContext(mem.Total{}, nil), exec); err != nil {
		return err
	}
	if f.Type.FunctionDescriptor(ctx) == nil {
		return nil
	}

	fn := exec.Values.Ref.(*inst.Closure)
	frame := inst.NewActionContext(fn.Total, fn.Env)
	params := f.Type.FunctionDescriptor(ctx).Params
	for i, a := range args {
		idx := params[i].Index
		switch v := a.(type) {
		case int32:
			frame.CurrentMem().SetInt(idx, v)
		case int64:
			frame.CurrentMem().SetLong(idx, v)
		case bool:
			frame.CurrentMem().SetBool(idx, v)
		default:
			frame.CurrentMem().SetRef(idx, v)
		}
	}
	return inst.Run(fn.Body, frame, exec)
}

func TestTemplateInterning(t *testing.T) {
	ctx := newGlobal()

	a := concrete(t, ctx, lang.List, types.Int)
	b := concrete(t, ctx, lang.List, types.Int)
	c := concrete(t, ctx, lang.List, types.String)

	be.Equal(t, a, b)
	be.True(t, a != c)
	be.Equal(t, a.String(), "std.List<int>")
	be.Equal(t, a.TemplateType(), types.TypeInstance(lang.List))

	other := newGlobal()
	be.True(t, concrete(t, other, lang.List, types.Int) != a)
}

func TestTemplateParams(t *testing.T) {
	ctx := newGlobal()

	_, err := lang.List.Concrete(ctx, nil)
	be.Err(t, err, types.ErrTemplateParams)

	_, err = lang.Map.Concrete(ctx, []types.TypeInstance{types.Int})
	be.Err(t, err, types.ErrTemplateParams)

	_, err = lang.List.Concrete(ctx, []types.TypeInstance{types.Void})
	be.Err(t, err, types.ErrTemplateParams)

	_, err = lang.Set.Concrete(ctx, []types.TypeInstance{lang.List})
	be.Err(t, err, types.ErrTemplateParams)

	m := concrete(t, ctx, lang.Map, types.String, types.Int)
	be.Equal(t, m.String(), "std.Map<string, int>")
}

func TestListOperations(t *testing.T) {
	ctx := newGlobal()
	exec := inst.NewExecution(context.Background())
	typ := concrete(t, ctx, lang.List, types.Int)
	l := construct(t, exec, typ)

	for _, v := range []int32{3, 1, 2} {
		be.Err(t, call(t, ctx, exec, typ, l, "add", v), nil)
	}

	be.Err(t, call(t, ctx, exec, typ, l, "size"), nil)
	be.Equal(t, exec.Values.Int, int32(3))

	be.Err(t, call(t, ctx, exec, typ, l, "get", int32(1)), nil)
	be.Equal(t, exec.Values.Int, int32(1))

	be.Err(t, call(t, ctx, exec, typ, l, "indexOf", int32(2)), nil)
	be.Equal(t, exec.Values.Int, int32(2))

	be.Err(t, call(t, ctx, exec, typ, l, "toString"), nil)
	be.Equal(t, exec.Values.Ref, any("[3, 1, 2]"))

	be.Err(t, call(t, ctx, exec, typ, l, "removeAt", int32(0)), nil)
	be.Equal(t, exec.Values.Int, int32(3))

	be.Err(t, call(t, ctx, exec, typ, l, "insert", int32(2), int32(9)), nil)
	be.Equal(t, lang.Export(l), any([]any{int32(1), int32(2), int32(9)}))

	be.Err(t, call(t, ctx, exec, typ, l, "get", int32(5)), inst.ErrIndexOutOfRange)
	be.Err(t, call(t, ctx, exec, typ, l, "subList", int32(2), int32(1)), inst.ErrIndexOutOfRange)

	be.Err(t, call(t, ctx, exec, typ, l, "subList", int32(1), int32(3)), nil)
	be.Equal(t, lang.Export(exec.Values.Ref), any([]any{int32(2), int32(9)}))
}

func TestListIterator(t *testing.T) {
	ctx := newGlobal()
	exec := inst.NewExecution(context.Background())
	typ := concrete(t, ctx, lang.List, types.String)
	l := construct(t, exec, typ)
	be.Err(t, call(t, ctx, exec, typ, l, "add", "a"), nil)

	be.Err(t, call(t, ctx, exec, typ, l, "iterator"), nil)
	it := exec.Values.Ref
	itType := concrete(t, ctx, lang.Iterator, types.String)

	be.Err(t, call(t, ctx, exec, itType, it, "hasNext"), nil)
	be.True(t, exec.Values.Bool)
	be.Err(t, call(t, ctx, exec, itType, it, "next"), nil)
	be.Equal(t, exec.Values.Ref, any("a"))
	be.Err(t, call(t, ctx, exec, itType, it, "hasNext"), nil)
	be.True(t, !exec.Values.Bool)
	be.Err(t, call(t, ctx, exec, itType, it, "next"), inst.ErrIndexOutOfRange)
}

func TestSetKeepsInsertionOrder(t *testing.T) {
	ctx := newGlobal()
	exec := inst.NewExecution(context.Background())
	typ := concrete(t, ctx, lang.LinkedHashSet, types.Long)
	s := construct(t, exec, typ)

	for _, v := range []int64{5, 3, 5, 1} {
		be.Err(t, call(t, ctx, exec, typ, s, "add", v), nil)
	}
	be.Equal(t, s.(interface{ String() string }).String(), "[5, 3, 1]")

	be.Err(t, call(t, ctx, exec, typ, s, "add", int64(3)), nil)
	be.True(t, !exec.Values.Bool)

	be.Err(t, call(t, ctx, exec, typ, s, "remove", int64(3)), nil)
	be.True(t, exec.Values.Bool)
	be.Err(t, call(t, ctx, exec, typ, s, "contains", int64(3)), nil)
	be.True(t, !exec.Values.Bool)
	be.Err(t, call(t, ctx, exec, typ, s, "size"), nil)
	be.Equal(t, exec.Values.Int, int32(2))
}

func TestMapOperations(t *testing.T) {
	ctx := newGlobal()
	exec := inst.NewExecution(context.Background())
	typ := concrete(t, ctx, lang.Map, types.String, types.Int)
	m := construct(t, exec, typ)

	be.Err(t, call(t, ctx, exec, typ, m, "put", "b", int32(2)), nil)
	be.Err(t, call(t, ctx, exec, typ, m, "put", "a", int32(1)), nil)
	be.Err(t, call(t, ctx, exec, typ, m, "put", "b", int32(3)), nil)

	be.Err(t, call(t, ctx, exec, typ, m, "get", "b"), nil)
	be.Equal(t, exec.Values.Int, int32(3))
	be.Err(t, call(t, ctx, exec, typ, m, "get", "z"), nil)
	be.Equal(t, exec.Values.Int, int32(0))

	be.Err(t, call(t, ctx, exec, typ, m, "containsKey", "a"), nil)
	be.True(t, exec.Values.Bool)

	be.Err(t, call(t, ctx, exec, typ, m, "toString"), nil)
	be.Equal(t, exec.Values.Ref, any("{b=3, a=1}"))

	be.Err(t, call(t, ctx, exec, typ, m, "keySet"), nil)
	be.Equal(t, lang.Export(exec.Values.Ref), any([]any{"b", "a"}))

	keySet := typ.Field(ctx, "keySet", nil).Type.FunctionDescriptor(ctx).Return
	be.Equal(t, keySet, concrete(t, ctx, lang.Set, types.String))

	be.Err(t, call(t, ctx, exec, typ, m, "remove", "b"), nil)
	be.Equal(t, exec.Values.Int, int32(3))
	be.Equal(t, lang.Export(m), any(map[string]any{"a": int32(1)}))
}

func TestUnknownMember(t *testing.T) {
	ctx := newGlobal()
	typ := concrete(t, ctx, lang.List, types.Int)
	be.True(t, typ.Field(ctx, "push", nil) == nil)
}

func TestInstallAndConsole(t *testing.T) {
	global := newGlobal()
	rt, err := lang.Install(global)
	be.Err(t, err, nil)

	v, err := global.GetVariable("std")
	be.Err(t, err, nil)
	be.True(t, !v.Modifiable)
	be.Equal(t, v.Type, types.TypeInstance(lang.Namespace))

	typ, err := global.GetType("std.List")
	be.Err(t, err, nil)
	be.Equal(t, typ, types.TypeInstance(lang.List))

	_, err = lang.Install(global)
	be.Err(t, err, types.ErrTypeAlreadyDefined)

	var out bytes.Buffer
	exec := inst.NewExecution(context.Background(), inst.WithOutput(&out))
	frame := inst.NewActionContext(global.MemoryAllocator().Total(), nil)
	rt.Bind(frame.CurrentMem())

	be.Err(t, call(t, global, exec, lang.Namespace, frame.CurrentMem().GetRef(v.Pos.Index), "console"), nil)
	console := exec.Values.Ref
	be.Err(t, call(t, global, exec, lang.Console, console, "log", "hello"), nil)
	be.Err(t, call(t, global, exec, lang.Console, console, "log", nil), nil)
	be.Equal(t, out.String(), "hello\nnull\n")
}

func TestNullReceiver(t *testing.T) {
	ctx := newGlobal()
	exec := inst.NewExecution(context.Background())
	typ := concrete(t, ctx, lang.List, types.Int)
	be.Err(t, call(t, ctx, exec, typ, nil, "add", int32(1)), inst.ErrNullPointer)
}

func TestExport(t *testing.T) {
	be.Equal(t, lang.Export(nil), nil)
	be.Equal(t, lang.Export(int32(4)), any(int32(4)))
	be.Equal(t, lang.Export("x"), any("x"))
	be.Equal(t, lang.Export(inst.ErrDivisionByZero), any("division by zero"))

	arr := &inst.Array[int32]{Elems: []int32{1, 2}}
	be.Equal(t, lang.Export(arr), any([]any{int32(1), int32(2)}))
}
