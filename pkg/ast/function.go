package ast

import (
	"fmt"
	"strings"

	"plvm/pkg/inst"
	"plvm/pkg/lexer"
	"plvm/pkg/mem"
	"plvm/pkg/types"
)

// FunctionDefinition declares a function variable in the current scope.
// Without a declared return type the type of the first return is used,
// void if there is none.
type FunctionDefinition struct {
	Pos       lexer.Position
	Name      string
	Params    []*ParamDef
	Return    *TypeRef // nil when inferred
	Body      []Statement
	Modifiers types.Modifiers

	alloc  *mem.Allocator
	ret    types.TypeInstance
	params []types.Param
	desc   *types.FunctionDescriptor
	v      *types.Variable
}

func (f *FunctionDefinition) ScopeKind() types.ScopeKind      { return types.ScopeFunction }
func (f *FunctionDefinition) ScopeName() string               { return f.Name }
func (f *FunctionDefinition) MemoryAllocator() *mem.Allocator { return f.alloc }

func (f *FunctionDefinition) returnType() types.TypeInstance { return f.ret }
func (f *FunctionDefinition) inferReturn(t types.TypeInstance) {
	f.ret = t
}

func (f *FunctionDefinition) Check(ctx *types.TypeContext) error {
	if err := checkModifiers(f.Pos, f.Name, f.Modifiers); err != nil {
		return err
	}
	if ctx.HasVariableInThisContext(f.Name) {
		return types.Errorf(types.ErrVariableAlreadyDefined, f.Pos, "%s", f.Name)
	}

	f.alloc = mem.NewAllocator()
	f.ret = nil
	inner := ctx.Child(f)
	params, err := declareParams(ctx, inner, f.alloc, f.Params)
	if err != nil {
		return err
	}
	f.params = params
	index := ctx.MemoryAllocator().NextRefIndex()

	if f.Return != nil {
		if f.ret, err = f.Return.Resolve(ctx); err != nil {
			return err
		}
		// declared before the body so that it can call itself
		if err := f.declare(ctx, params, index); err != nil {
			return err
		}
	}

	if err := types.CheckStatements(inner, f.Body); err != nil {
		return err
	}

	if f.ret == nil {
		f.ret = types.Void
	}
	if f.v == nil {
		if err := f.declare(ctx, params, index); err != nil {
			return err
		}
	}
	if f.ret != types.Void && !terminates(f.Body) {
		return types.Errorf(types.ErrMissingReturn, f.Pos, "function %s must return %s", f.Name, f.ret)
	}
	return nil
}

func (f *FunctionDefinition) declare(ctx *types.TypeContext, params []types.Param, index int) error {
	f.desc = ctx.FunctionDescriptor(params, f.ret, f.alloc)
	f.v = &types.Variable{
		Name:      f.Name,
		Type:      ctx.FunctionType(f.desc),
		Modifiers: f.Modifiers,
		Pos:       types.MemPos{Depth: ctx.MemoryDepth(), Index: index},
	}
	return at(f.Pos, ctx.AddVariable(f.v))
}

// Descriptor is the signature of the function, nil before Check
func (f *FunctionDefinition) Descriptor() *types.FunctionDescriptor {
	return f.desc
}

func (f *FunctionDefinition) GenerateInstruction() inst.Instruction {
	fn := &inst.MakeClosure{
		Name:     f.Name,
		Body:     block(f.Body),
		Total:    f.alloc.Total(),
		Params:   len(f.params),
		Defaults: defaultArgs(f.Params, f.params),
	}
	return inst.SetVarOf(mem.KindRef, 0, f.v.Pos.Index, fn)
}

func (f *FunctionDefinition) Terminates() bool         { return false }
func (f *FunctionDefinition) Position() lexer.Position { return f.Pos }

func (f *FunctionDefinition) Copy() Statement {
	return &FunctionDefinition{
		Pos:       f.Pos,
		Name:      f.Name,
		Params:    copyParams(f.Params),
		Return:    f.Return.Copy(),
		Body:      copyStatements(f.Body),
		Modifiers: f.Modifiers,
	}
}

func (f *FunctionDefinition) String() string {
	s := fmt.Sprintf("%sfunction %s(%s)", f.Modifiers, f.Name, paramList(f.Params))
	if f.Return != nil {
		s += ": " + f.Return.String()
	}
	return s + " { ... }"
}

// FunctionInvocation calls a function value: "f(1, 2)", "list.add(3)"
type FunctionInvocation struct {
	Pos  lexer.Position
	Fn   Expr
	Args []Expr

	desc *types.FunctionDescriptor
	info *inst.StackInfo
}

// checkArgs checks args against the parameters of desc
func checkArgs(ctx *types.TypeContext, pos lexer.Position, what string, desc *types.FunctionDescriptor, args []Expr) error {
	if n, min := len(desc.Params), desc.Required(); len(args) < min || len(args) > n {
		if min == n {
			return types.Errorf(types.ErrArity, pos, "%s expects %d arguments, got %d", what, n, len(args))
		}
		return types.Errorf(types.ErrArity, pos, "%s expects %d to %d arguments, got %d", what, min, n, len(args))
	}
	for i, a := range args {
		want := desc.Params[i].Type
		got, err := a.Check(ctx, want)
		if err != nil {
			return err
		}
		if !types.AssignableFrom(want, got) {
			return mismatch(a.Position(), want, got, fmt.Sprintf("argument %d of %s", i+1, what))
		}
	}
	return nil
}

// generateArgs lowers args into stores to the parameter slots of desc
func generateArgs(desc *types.FunctionDescriptor, args []Expr) []inst.Arg {
	out := make([]inst.Arg, len(args))
	for i, a := range args {
		p := desc.Params[i]
		out[i] = inst.Arg{Value: a.GenerateInstruction(), Store: inst.StoreArg(p.Type.Kind(), p.Index)}
	}
	return out
}

func (c *FunctionInvocation) Check(ctx *types.TypeContext, _ types.TypeInstance) (types.TypeInstance, error) {
	c.info = ctx.StackInfo(c.Pos)
	ft, err := c.Fn.Check(ctx, nil)
	if err != nil {
		return nil, err
	}
	c.desc = ft.FunctionDescriptor(ctx)
	if c.desc == nil {
		return nil, types.Errorf(types.ErrNotCallable, c.Pos, "%s of type %s is not a function", c.Fn, ft)
	}
	if err := checkArgs(ctx, c.Pos, c.Fn.String(), c.desc, c.Args); err != nil {
		return nil, err
	}
	return c.desc.Return, nil
}

func (c *FunctionInvocation) TypeInstance() types.TypeInstance { return c.desc.Return }
func (c *FunctionInvocation) Position() lexer.Position         { return c.Pos }

func (c *FunctionInvocation) GenerateInstruction() inst.Instruction {
	return &inst.Invoke{
		Info: inst.Info{Stack: c.info},
		Fn:   c.Fn.GenerateInstruction(),
		Args: generateArgs(c.desc, c.Args),
	}
}

func (c *FunctionInvocation) Copy() Expr {
	return &FunctionInvocation{Pos: c.Pos, Fn: c.Fn.Copy(), Args: copyExprs(c.Args)}
}

func (c *FunctionInvocation) String() string {
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = a.String()
	}
	return c.Fn.String() + "(" + strings.Join(args, ", ") + ")"
}

// ReturnStatement leaves the enclosing function or the script
type ReturnStatement struct {
	Pos   lexer.Position
	Value Expr // nil for a bare return
}

func (r *ReturnStatement) Check(ctx *types.TypeContext) error {
	scope := ctx.Nearest(types.ScopeFunction, types.ScopeClass, types.ScopeScript)
	if scope == nil || scope.Node().ScopeKind() == types.ScopeClass {
		return types.Errorf(types.ErrReturnOutsideFunction, r.Pos, "return is only allowed in a function body")
	}
	fn := scope.Node().(returner)
	want := fn.returnType()

	if r.Value == nil {
		switch want {
		case nil:
			fn.inferReturn(types.Void)
		case types.Void:
		default:
			return types.Errorf(types.ErrTypeMismatch, r.Pos, "missing return value of type %s", want)
		}
		return nil
	}

	got, err := r.Value.Check(ctx, want)
	if err != nil {
		return err
	}
	switch {
	case want == nil && (got == types.Null || got == types.Void):
		return types.Errorf(types.ErrTypeMismatch, r.Value.Position(), "cannot infer the return type from %s", got)
	case want == nil:
		fn.inferReturn(got)
	case want == types.Void || !types.AssignableFrom(want, got):
		return mismatch(r.Value.Position(), want, got, "return value")
	}
	return nil
}

func (r *ReturnStatement) GenerateInstruction() inst.Instruction {
	if r.Value == nil {
		return &inst.Return{}
	}
	return &inst.Return{Value: r.Value.GenerateInstruction()}
}

func (r *ReturnStatement) Terminates() bool         { return true }
func (r *ReturnStatement) Position() lexer.Position { return r.Pos }

func (r *ReturnStatement) Copy() Statement {
	return &ReturnStatement{Pos: r.Pos, Value: copyExpr(r.Value)}
}

func (r *ReturnStatement) String() string {
	if r.Value == nil {
		return "return;"
	}
	return "return: " + r.Value.String() + ";"
}
