package ast_test

import (
	"errors"
	"fmt"
	"testing"

	"plvm/pkg/ast"
	"plvm/pkg/lang"
	"plvm/pkg/mem"
	"plvm/pkg/parser"
	"plvm/pkg/types"

	"github.com/nalgeon/be"
)

// check parses and checks src in a fresh global context
func check(t *testing.T, src string) (*ast.Program, *mem.Allocator, error) {
	t.Helper()
	prog, err := parser.Parse(src)
	be.Err(t, err, nil)

	alloc := mem.NewAllocator()
	global := types.NewGlobalContext(types.NewRootContext(), alloc)
	_, err = lang.Install(global)
	be.Err(t, err, nil)
	return prog, alloc, prog.Check(global)
}

func TestCheckErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want error
	}{
		{"undefined variable", `return: y;`, types.ErrUndefinedVariable},
		{"undefined type", `var x: Foo = null;`, types.ErrUndefinedType},
		{"duplicate variable", `var a: int = 1; var a: int = 2;`, types.ErrVariableAlreadyDefined},
		{"duplicate function", `var f: int = 1; function f() { }`, types.ErrVariableAlreadyDefined},
		{"duplicate class", `class C() { } class C() { }`, types.ErrTypeAlreadyDefined},
		{"arity", `function f(a: int): int { return: a; } return: f();`, types.ErrArity},
		{"argument type", `function f(a: int): int { return: a; } return: f("x");`, types.ErrTypeMismatch},
		{"constructor arity", `class P(x: int) { } var p = new P();`, types.ErrArity},
		{"operator", `return: 1 + true;`, types.ErrTypeMismatch},
		{"modulo on double", `return: 1.5 % 2.0;`, types.ErrTypeMismatch},
		{"declared type", `var x: int = "a";`, types.ErrTypeMismatch},
		{"return type", `function f(): int { return: "a"; }`, types.ErrTypeMismatch},
		{"return in class body", `class C() { return: 1; }`, types.ErrReturnOutsideFunction},
		{"unreachable", `return: 1; var x: int = 2;`, types.ErrUnreachable},
		{"unreachable after break", `while (true) { break; var x: int = 1; }`, types.ErrUnreachable},
		{"const assignment", `const var c: int = 1; c = 2;`, types.ErrNotModifiable},
		{"assign to call", `function f(): int { return: 1; } f() = 2;`, types.ErrNotAssignable},
		{"break outside loop", `break;`, types.ErrBreakOutsideLoop},
		{"break too deep", `while (true) { break 2; }`, types.ErrBreakOutsideLoop},
		{"missing return", `function f(): int { var x: int = 1; }`, types.ErrMissingReturn},
		{"no such field", `var s: string = "a"; return: s.nope;`, types.ErrNoSuchField},
		{"private member", `class P() { private var x: int = 1; } var p = new P(); return: p.x;`, types.ErrNoSuchField},
		{"not callable", `var x: int = 1; x();`, types.ErrNotCallable},
		{"template without params", `template<T> class B(v: T) { } var b = new B(1);`, types.ErrTemplateParams},
		{"template arity", `let L = std.Map<int>;`, types.ErrTemplateParams},
		{"null inference", `var x = null;`, types.ErrTypeMismatch},
		{"throw int", `throw 1;`, types.ErrTypeMismatch},
		{"int literal too large", `var x: int = 2147483648;`, types.ErrTypeMismatch},
		{"negative int literal too large", `var x: int = -2147483649;`, types.ErrTypeMismatch},
		{"required after default", `function f(a: int = 1, b: int) { }`, types.ErrDefaultValue},
		{"default of wrong type", `function f(a: int = "x") { }`, types.ErrTypeMismatch},
		{"default sees later param", `function f(a: int = b, b: int = 1) { }`, types.ErrUndefinedVariable},
		{"too few arguments", `function f(a: int, b: int = 1) { } f();`, types.ErrArity},
		{"too many arguments", `function f(a: int = 1) { } f(1, 2);`, types.ErrArity},
		{"unknown object key", `class P(x: int) { } var p = new P { y: 1 };`, types.ErrNoSuchField},
		{"missing object key", `class P(x: int) { } var p = new P { };`, types.ErrArity},
		{"object of host type without key", `let L = std.List<int>; var l = new L { size: 1 };`, types.ErrNoSuchField},
		{"unreachable after infinite loop", `while (true) { } var x: int = 1;`, types.ErrUnreachable},
		{"unreachable after endless for", `for (;;) { } var x: int = 1;`, types.ErrUnreachable},
		{"loop left by inner break 2", `function f(): int { while (true) { while (true) { break 2; } } }`, types.ErrMissingReturn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := check(t, tt.src)
			be.Err(t, err, tt.want)
		})
	}
}

func TestCheckErrorPosition(t *testing.T) {
	_, _, err := check(t, "var a: int = 1;\nvar b: int = zz;")
	var ce *types.CheckError
	be.True(t, errors.As(err, &ce))
	be.Equal(t, ce.Pos.Line, 2)
}

func TestInferredReturn(t *testing.T) {
	prog, _, err := check(t, `function f() { return: 2L; } return: f();`)
	be.Err(t, err, nil)
	be.Equal(t, prog.ReturnType(), types.TypeInstance(types.Long))

	f := prog.Statements[0].(*ast.FunctionDefinition)
	be.Equal(t, f.Descriptor().Return, types.TypeInstance(types.Long))
}

func TestScriptWithoutReturnIsVoid(t *testing.T) {
	prog, _, err := check(t, `var a: int = 1;`)
	be.Err(t, err, nil)
	be.Equal(t, prog.ReturnType(), types.TypeInstance(types.Void))
}

func TestSlotLayout(t *testing.T) {
	src := `
var a: int = 1;
var b: long = 2L;
var c: int = 3;
var s: string = "s";
function f(x: double): double { var y: bool = true; return: x; }
`
	layout := func() string {
		prog, alloc, err := check(t, src)
		be.Err(t, err, nil)
		out := alloc.Total().String()
		for _, v := range prog.Context().Variables() {
			out += fmt.Sprintf(" %s=%s#%d", v.Name, v.Type.Kind(), v.Pos.Index)
		}
		return out
	}

	first := layout()
	be.Equal(t, first, layout())

	prog, alloc, err := check(t, src)
	be.Err(t, err, nil)
	be.Equal(t, alloc.Total(), mem.Total{Ints: 2, Longs: 1, Refs: 3})

	vars := prog.Context().Variables()
	be.Equal(t, vars[2].Pos, types.MemPos{Depth: 0, Index: 1})
	be.Equal(t, vars[3].Pos, types.MemPos{Depth: 0, Index: 1})

	f := prog.Statements[4].(*ast.FunctionDefinition)
	be.Equal(t, f.MemoryAllocator().Total(), mem.Total{Doubles: 1, Bools: 1})
}

func TestClassMembers(t *testing.T) {
	prog, _, err := check(t, `class P(x: int) { public var y: int = x; private var z: string = "z"; }`)
	be.Err(t, err, nil)

	cls := prog.Statements[0].(*ast.ClassDefinition)
	var names []string
	for _, m := range cls.Type().Members() {
		names = append(names, m.Name)
	}
	be.Equal(t, names, []string{"x", "y", "z"})
	be.Equal(t, cls.MemoryAllocator().Total(), mem.Total{Ints: 2, Refs: 1})
}

func TestCopyIsIndependent(t *testing.T) {
	prog, err := parser.Parse(`function f(a: int): int { var b: int = a; return: b; }`)
	be.Err(t, err, nil)

	orig := prog.Statements[0].(*ast.FunctionDefinition)
	cp := orig.Copy().(*ast.FunctionDefinition)
	be.Equal(t, cp.String(), orig.String())

	cp.Body[0].(*ast.VariableDefinition).Name = "c"
	be.Equal(t, orig.Body[0].(*ast.VariableDefinition).Name, "b")
}

func TestTemplateInstancesShared(t *testing.T) {
	prog, _, err := check(t, `
template<T> class Box(v: T) { public function get(): T { return: v; } }
let A = Box<int>;
let B = Box<int>;
let C = Box<string>;
`)
	be.Err(t, err, nil)

	ctx := prog.Context()
	a, _ := ctx.GetType("A")
	b, _ := ctx.GetType("B")
	c, _ := ctx.GetType("C")
	be.True(t, a == b)
	be.True(t, a != c)
	be.Equal(t, a.String(), "Box<int>")
	be.Equal(t, c.TemplateTypeParams(), []types.TypeInstance{types.String})
}
