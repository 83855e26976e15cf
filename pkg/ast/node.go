package ast

import (
	"errors"
	"strings"

	"plvm/pkg/inst"
	"plvm/pkg/lexer"
	"plvm/pkg/mem"
	"plvm/pkg/types"
)

// Statement is a checked statement node. Check must succeed before
// GenerateInstruction is called.
type Statement interface {
	Check(ctx *types.TypeContext) error
	GenerateInstruction() inst.Instruction
	// Terminates reports that control never reaches the next statement
	Terminates() bool
	Copy() Statement
	Position() lexer.Position
	String() string
}

// Expr is a checked expression node. hint is the type the surrounding
// code expects, if known; literals use it to pick their type.
type Expr interface {
	Check(ctx *types.TypeContext, hint types.TypeInstance) (types.TypeInstance, error)
	TypeInstance() types.TypeInstance
	GenerateInstruction() inst.Instruction
	Copy() Expr
	Position() lexer.Position
	String() string
}

// Target is an expression that can be assigned to
type Target interface {
	Expr
	Modifiable() bool
	GenerateSet(value inst.Instruction) inst.Instruction
	// GenerateUpdate combines the current value with rhs using op
	GenerateUpdate(op inst.Op, rhs inst.Instruction) inst.Instruction
}

// TypeRef names a type in source: "int", "std.List<int>", "Point[]" or
// "function(int, string): bool"
type TypeRef struct {
	Pos    lexer.Position
	Name   string
	Params []*TypeRef // template arguments
	Dims   int        // array dimensions
	Func   *FuncTypeRef
}

type FuncTypeRef struct {
	Params []*TypeRef
	Return *TypeRef
}

func (t *TypeRef) String() string {
	var sb strings.Builder
	if t.Func != nil {
		sb.WriteString("function(")
		for i, p := range t.Func.Params {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(p.String())
		}
		sb.WriteString("): ")
		sb.WriteString(t.Func.Return.String())
	} else {
		sb.WriteString(t.Name)
	}
	if len(t.Params) > 0 {
		parts := make([]string, len(t.Params))
		for i, p := range t.Params {
			parts[i] = p.String()
		}
		sb.WriteString("<" + strings.Join(parts, ", ") + ">")
	}
	sb.WriteString(strings.Repeat("[]", t.Dims))
	return sb.String()
}

func (t *TypeRef) Copy() *TypeRef {
	if t == nil {
		return nil
	}
	c := &TypeRef{Pos: t.Pos, Name: t.Name, Dims: t.Dims, Params: copyTypeRefs(t.Params)}
	if t.Func != nil {
		c.Func = &FuncTypeRef{Params: copyTypeRefs(t.Func.Params), Return: t.Func.Return.Copy()}
	}
	return c
}

func copyTypeRefs(refs []*TypeRef) []*TypeRef {
	if refs == nil {
		return nil
	}
	out := make([]*TypeRef, len(refs))
	for i, r := range refs {
		out[i] = r.Copy()
	}
	return out
}

// Resolve finds the type named by t in ctx
func (t *TypeRef) Resolve(ctx *types.TypeContext) (types.TypeInstance, error) {
	var typ types.TypeInstance
	if t.Func != nil {
		params, err := resolveAll(ctx, t.Func.Params)
		if err != nil {
			return nil, err
		}
		ret, err := t.Func.Return.Resolve(ctx)
		if err != nil {
			return nil, err
		}
		ps, fixed := types.Signature(params...)
		typ = ctx.FunctionType(ctx.FunctionDescriptor(ps, ret, fixed))
	} else {
		named, err := ctx.GetType(t.Name)
		if err != nil {
			return nil, at(t.Pos, err)
		}
		typ = named
	}

	if len(t.Params) > 0 {
		params, err := resolveAll(ctx, t.Params)
		if err != nil {
			return nil, err
		}
		if typ, err = concrete(ctx, typ, params, t.Pos); err != nil {
			return nil, err
		}
	}

	for range t.Dims {
		typ = ctx.ArrayType(typ)
	}
	return typ, nil
}

func resolveAll(ctx *types.TypeContext, refs []*TypeRef) ([]types.TypeInstance, error) {
	out := make([]types.TypeInstance, len(refs))
	for i, r := range refs {
		t, err := r.Resolve(ctx)
		if err != nil {
			return nil, err
		}
		out[i] = t
	}
	return out, nil
}

// concrete instantiates template with params after checking the count
func concrete(ctx *types.TypeContext, template types.TypeInstance, params []types.TypeInstance, pos lexer.Position) (types.TypeInstance, error) {
	names := template.TypeParameters()
	if len(names) == 0 {
		return nil, types.Errorf(types.ErrTemplateParams, pos, "%s is not a template", template)
	}
	if len(names) != len(params) {
		return nil, types.Errorf(types.ErrTemplateParams, pos, "%s expects %d type parameters, got %d",
			template, len(names), len(params))
	}
	t, err := template.Concrete(ctx, params)
	if err != nil {
		return nil, at(pos, err)
	}
	return t, nil
}

// at attaches pos to a CheckError raised without one
func at(pos lexer.Position, err error) error {
	if err == nil {
		return nil
	}
	var ce *types.CheckError
	if errors.As(err, &ce) {
		if !ce.Pos.IsValid() {
			ce.Pos = pos
		}
		return err
	}
	return &types.CheckError{Kind: err, Pos: pos, Msg: err.Error()}
}

// ParamDef is a declared parameter of a function or class:
// "x: int" or "x: int = 1"
type ParamDef struct {
	Pos     lexer.Position
	Name    string
	Type    *TypeRef
	Default Expr // nil when the parameter is required
}

func (p *ParamDef) String() string {
	s := p.Name + ": " + p.Type.String()
	if p.Default != nil {
		s += " = " + p.Default.String()
	}
	return s
}

func copyParams(params []*ParamDef) []*ParamDef {
	out := make([]*ParamDef, len(params))
	for i, p := range params {
		out[i] = &ParamDef{Pos: p.Pos, Name: p.Name, Type: p.Type.Copy(), Default: copyExpr(p.Default)}
	}
	return out
}

func paramList(params []*ParamDef) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = p.String()
	}
	return strings.Join(parts, ", ")
}

// declareParams resolves params in outer and binds them in inner, taking
// slots from alloc in declaration order. A default value is checked in
// inner and sees the parameters before it.
func declareParams(outer, inner *types.TypeContext, alloc *mem.Allocator, params []*ParamDef) ([]types.Param, error) {
	out := make([]types.Param, len(params))
	optional := false
	for i, p := range params {
		t, err := p.Type.Resolve(outer)
		if err != nil {
			return nil, err
		}
		if t == types.Void {
			return nil, types.Errorf(types.ErrTypeMismatch, p.Pos, "parameter %s cannot be void", p.Name)
		}

		switch {
		case p.Default != nil:
			got, err := p.Default.Check(inner, t)
			if err != nil {
				return nil, err
			}
			if !types.AssignableFrom(t, got) {
				return nil, mismatch(p.Default.Position(), t, got, "default value of "+p.Name)
			}
			optional = true
		case optional:
			return nil, types.Errorf(types.ErrDefaultValue, p.Pos,
				"parameter %s follows a parameter with a default value and needs one too", p.Name)
		}

		index := alloc.NextIndex(t.Kind())
		if err := inner.AddVariable(&types.Variable{
			Name:       p.Name,
			Type:       t,
			Modifiable: true,
			Modifiers:  types.ModPrivate,
			Pos:        types.MemPos{Depth: inner.MemoryDepth(), Index: index},
		}); err != nil {
			return nil, at(p.Pos, err)
		}
		out[i] = types.Param{Name: p.Name, Type: t, Index: index, Optional: p.Default != nil}
	}
	return out, nil
}

// defaultArgs lowers the default values of defs, which are declared as
// params, into stores run in the callee frame
func defaultArgs(defs []*ParamDef, params []types.Param) []inst.Arg {
	var out []inst.Arg
	for i, d := range defs {
		if d.Default == nil {
			continue
		}
		p := params[i]
		out = append(out, inst.Arg{Value: d.Default.GenerateInstruction(), Store: inst.StoreArg(p.Type.Kind(), p.Index)})
	}
	return out
}

func copyStatements(stmts []Statement) []Statement {
	if stmts == nil {
		return nil
	}
	out := make([]Statement, len(stmts))
	for i, s := range stmts {
		out[i] = s.Copy()
	}
	return out
}

func copyExprs(exprs []Expr) []Expr {
	out := make([]Expr, len(exprs))
	for i, e := range exprs {
		out[i] = e.Copy()
	}
	return out
}

func copyExpr(e Expr) Expr {
	if e == nil {
		return nil
	}
	return e.Copy()
}

func copyStatement(s Statement) Statement {
	if s == nil {
		return nil
	}
	return s.Copy()
}

// terminates reports whether a statement list always leaves its block
func terminates(stmts []Statement) bool {
	return len(stmts) > 0 && stmts[len(stmts)-1].Terminates()
}

// block lowers a statement list
func block(stmts []Statement) inst.Instruction {
	children := make([]inst.Instruction, len(stmts))
	for i, s := range stmts {
		children[i] = s.GenerateInstruction()
	}
	return &inst.Composite{Children: children}
}

// scope is the ScopeNode of blocks that do not start a frame
type scope struct {
	kind types.ScopeKind
}

func (s scope) ScopeKind() types.ScopeKind { return s.kind }
func (s scope) ScopeName() string          { return "" }

// checkBlock checks stmts in a new child scope of kind k
func checkBlock(ctx *types.TypeContext, k types.ScopeKind, stmts []Statement) error {
	return types.CheckStatements(ctx.Child(scope{kind: k}), stmts)
}

// mismatch reports a value of type got where want is required
func mismatch(pos lexer.Position, want, got types.TypeInstance, what string) error {
	return types.Errorf(types.ErrTypeMismatch, pos, "%s: expecting %s, got %s", what, want, got)
}

// fieldInstruction loads field f of the object produced by object
func fieldInstruction(object inst.Instruction, f *types.Field, info *inst.StackInfo) inst.Instruction {
	var load inst.Instruction
	if f.Native != nil {
		load = &inst.ExecutableField{Info: inst.Info{Stack: info}, Receiver: object, Field: f.Native}
	} else {
		load = inst.GetFieldOf(f.Type.Kind(), object, f.Pos.Index, info)
	}
	if f.Executable {
		load = &inst.Invoke{Info: inst.Info{Stack: info}, Fn: load}
	}
	return load
}
