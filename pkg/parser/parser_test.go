package parser_test

import (
	"errors"
	"plvm/pkg/ast"
	"plvm/pkg/inst"
	"plvm/pkg/parser"
	"strings"
	"testing"

	"github.com/nalgeon/be"
)

func parse(t *testing.T, src string) []ast.Statement {
	t.Helper()
	prog, err := parser.Parse(src)
	be.Err(t, err, nil)
	return prog.Statements
}

func syntaxErrors(t *testing.T, src string) parser.ErrorList {
	t.Helper()
	_, err := parser.Parse(src)
	var list parser.ErrorList
	be.True(t, errors.As(err, &list))
	return list
}

func TestForLoopScript(t *testing.T) {
	stmts := parse(t, `var x: int = 1; for (var i: int = 0; i < 3; i += 1) { x += i; } return: x;`)
	be.Equal(t, len(stmts), 3)

	v := stmts[0].(*ast.VariableDefinition)
	be.Equal(t, v.Name, "x")
	be.Equal(t, v.Type.Name, "int")

	loop := stmts[1].(*ast.ForLoop)
	be.Equal(t, loop.Init.(*ast.VariableDefinition).Name, "i")
	be.Equal(t, loop.Cond.(*ast.BinOp).Op, inst.OpLT)
	be.Equal(t, loop.Incr.(*ast.OpAssignment).Op, inst.OpAdd)
	be.Equal(t, len(loop.Body), 1)

	ret := stmts[2].(*ast.ReturnStatement)
	be.Equal(t, ret.Value.(*ast.Access).Name, "x")
}

func TestPrecedence(t *testing.T) {
	stmts := parse(t, `return 1 + 2 * 3 < 4 && !b || c;`)
	or := stmts[0].(*ast.ReturnStatement).Value.(*ast.BinOp)
	be.Equal(t, or.Op, inst.OpOr)

	and := or.Left.(*ast.BinOp)
	be.Equal(t, and.Op, inst.OpAnd)
	_, ok := and.Right.(*ast.LogicNot)
	be.True(t, ok)

	lt := and.Left.(*ast.BinOp)
	be.Equal(t, lt.Op, inst.OpLT)
	sum := lt.Left.(*ast.BinOp)
	be.Equal(t, sum.Op, inst.OpAdd)
	be.Equal(t, sum.Right.(*ast.BinOp).Op, inst.OpMul)
}

func TestLiterals(t *testing.T) {
	stmts := parse(t, `f(1, 2L, 1.5, 2.5f, "s\n", true, null, -3);`)
	call := stmts[0].(*ast.ExprStatement).Expr.(*ast.FunctionInvocation)
	be.Equal(t, len(call.Args), 8)

	be.Equal(t, call.Args[0].(*ast.IntegerLiteral).Long, false)
	be.Equal(t, call.Args[1].(*ast.IntegerLiteral).Long, true)
	be.Equal(t, call.Args[2].(*ast.FloatLiteral).Float, false)
	be.Equal(t, call.Args[3].(*ast.FloatLiteral).Value, 2.5)
	be.Equal(t, call.Args[4].(*ast.StringLiteral).Value, "s\n")
	be.Equal(t, call.Args[5].(*ast.BoolLiteral).Value, true)
	_, ok := call.Args[6].(*ast.NullLiteral)
	be.True(t, ok)
	be.Equal(t, call.Args[7].(*ast.Negative).Value.(*ast.IntegerLiteral).Value, int64(3))
}

func TestPostfixChain(t *testing.T) {
	stmts := parse(t, `std.console.log(a[1].toString());`)
	call := stmts[0].(*ast.ExprStatement).Expr.(*ast.FunctionInvocation)

	log := call.Fn.(*ast.Access)
	be.Equal(t, log.Name, "log")
	be.Equal(t, log.Object.(*ast.Access).Name, "console")

	arg := call.Args[0].(*ast.FunctionInvocation).Fn.(*ast.Access)
	be.Equal(t, arg.Name, "toString")
	_, ok := arg.Object.(*ast.AccessIndex)
	be.True(t, ok)
}

func TestDeclarations(t *testing.T) {
	src := `
class Point(x: int, y: int) {
	public var sum = x + y;
	public executable function len(): int { return: x; }
}
template<T> class Box(v: T) { public function get(): T { return: v; } }
let IntBox = Box<int>;
let IntList = std.List<int>;
const var f: function(int, string): bool = null;
var grid = new int[][3];
var p = new Point(1, 2);
var l = new IntList;
`
	stmts := parse(t, src)
	be.Equal(t, len(stmts), 8)

	class := stmts[0].(*ast.ClassDefinition)
	be.Equal(t, class.Name, "Point")
	be.Equal(t, len(class.Params), 2)
	fn := class.Body[1].(*ast.FunctionDefinition)
	be.Equal(t, fn.Modifiers.String(), "public executable ")

	tmpl := stmts[1].(*ast.TemplateClassDefinition)
	be.Equal(t, tmpl.TypeParams, []string{"T"})
	be.Equal(t, tmpl.Class.Name, "Box")

	list := stmts[3].(*ast.TemplateTypeInstantiation)
	be.Equal(t, list.Type.String(), "std.List<int>")

	f := stmts[4].(*ast.VariableDefinition)
	be.Equal(t, f.Type.String(), "function(int, string): bool")
	be.Equal(t, f.Modifiers.String(), "const ")

	arr := stmts[5].(*ast.VariableDefinition).Value.(*ast.NewArray)
	be.Equal(t, arr.Elem.Dims, 1)

	be.Equal(t, len(stmts[6].(*ast.VariableDefinition).Value.(*ast.NewInstance).Args), 2)
	be.Equal(t, len(stmts[7].(*ast.VariableDefinition).Value.(*ast.NewInstance).Args), 0)
}

func TestControlFlow(t *testing.T) {
	src := `
while (true) { while (true) { break 2; } continue; }
if (a) { } else if (b) { throw "x"; } else { throw; }
try { f(); } catch { return: err.message; } else { return: 0; }
`
	stmts := parse(t, src)

	outer := stmts[0].(*ast.WhileLoop)
	inner := outer.Body[0].(*ast.WhileLoop)
	be.Equal(t, inner.Body[0].(*ast.BreakStatement).Level, 2)
	be.Equal(t, outer.Body[1].(*ast.ContinueStatement).Level, 0)

	ifs := stmts[1].(*ast.IfStatement)
	elseIf := ifs.Else[0].(*ast.IfStatement)
	be.True(t, elseIf.Then[0].(*ast.ThrowStatement).Value != nil)
	be.True(t, elseIf.Else[0].(*ast.ThrowStatement).Value == nil)

	try := stmts[2].(*ast.ErrorHandlingStatement)
	be.Equal(t, len(try.Try), 1)
	be.Equal(t, len(try.Catch), 1)
	be.Equal(t, len(try.Else), 1)
}

func TestMissingSemicolon(t *testing.T) {
	errs := syntaxErrors(t, "var x = 1\nvar y = 2;")
	be.Equal(t, len(errs), 1)
	be.Equal(t, errs[0].Msg, "Missing semicolon")
	be.Equal(t, errs[0].Pos.Line, 2)
}

func TestReportsEveryStatement(t *testing.T) {
	errs := syntaxErrors(t, "var = 1;\nx = (1;\nfunction f( { }\nvar ok = 3;")
	be.Equal(t, len(errs), 3)
	be.Equal(t, errs[0].Msg, "Missing identifier")
	be.Equal(t, errs[1].Msg, "Missing closing parenthesis")
	be.Equal(t, errs[2].Pos.Line, 3)
}

func TestKeywordAsIdentifier(t *testing.T) {
	errs := syntaxErrors(t, "var class = 1;")
	be.True(t, strings.Contains(errs[0].Msg, "reserved keyword"))
}

func TestIllegalCharacter(t *testing.T) {
	errs := syntaxErrors(t, "var x = 1 # 2;")
	be.Equal(t, errs[0].Msg, "Illegal character '#'")
}

func TestUnclosedBlock(t *testing.T) {
	errs := syntaxErrors(t, "while (true) { x += 1;")
	be.Equal(t, errs[len(errs)-1].Msg, "Missing closing brace")
}

func TestRender(t *testing.T) {
	errs := syntaxErrors(t, "var x = 1\nvar y = 2;")
	out := errs.Render("main.pl", "var x = 1\nvar y = 2;")
	be.True(t, strings.Contains(out, "main.pl:2:1"))
	be.True(t, strings.Contains(out, "Missing semicolon"))
	be.True(t, strings.Contains(errs.Error(), "2:1: Missing semicolon"))
}
