package ast

import (
	"fmt"

	"plvm/pkg/inst"
	"plvm/pkg/lexer"
	"plvm/pkg/types"
)

// VariableDefinition declares a variable in the current scope:
// "var x: int = 1", "const var s = "a"", "public var p: Point"
type VariableDefinition struct {
	Pos       lexer.Position
	Name      string
	Type      *TypeRef // nil when inferred from Value
	Value     Expr     // nil for the zero value
	Modifiers types.Modifiers

	v *types.Variable
}

func checkModifiers(pos lexer.Position, name string, m types.Modifiers) error {
	if m.Has(types.ModPublic) && m.Has(types.ModPrivate) {
		return types.Errorf(types.ErrTypeMismatch, pos, "%s cannot be both public and private", name)
	}
	return nil
}

func (v *VariableDefinition) Check(ctx *types.TypeContext) error {
	if err := checkModifiers(v.Pos, v.Name, v.Modifiers); err != nil {
		return err
	}
	if ctx.HasVariableInThisContext(v.Name) {
		return types.Errorf(types.ErrVariableAlreadyDefined, v.Pos, "%s", v.Name)
	}

	var typ types.TypeInstance
	if v.Type != nil {
		t, err := v.Type.Resolve(ctx)
		if err != nil {
			return err
		}
		typ = t
	}

	switch {
	case v.Value != nil:
		got, err := v.Value.Check(ctx, typ)
		if err != nil {
			return err
		}
		if typ == nil {
			if got == types.Null {
				return types.Errorf(types.ErrTypeMismatch, v.Pos, "the type of %s cannot be inferred from null", v.Name)
			}
			typ = got
		} else if !types.AssignableFrom(typ, got) {
			return mismatch(v.Value.Position(), typ, got, "variable "+v.Name)
		}
	case typ == nil:
		return types.Errorf(types.ErrTypeMismatch, v.Pos, "%s needs a type or an initial value", v.Name)
	}
	if typ == types.Void {
		return types.Errorf(types.ErrTypeMismatch, v.Pos, "variable %s cannot be void", v.Name)
	}

	v.v = &types.Variable{
		Name:       v.Name,
		Type:       typ,
		Modifiable: !v.Modifiers.Has(types.ModConst),
		Modifiers:  v.Modifiers,
		Pos:        types.MemPos{Depth: ctx.MemoryDepth(), Index: ctx.MemoryAllocator().NextIndex(typ.Kind())},
	}
	return at(v.Pos, ctx.AddVariable(v.v))
}

// Variable is the declared variable, nil before Check
func (v *VariableDefinition) Variable() *types.Variable {
	return v.v
}

func (v *VariableDefinition) GenerateInstruction() inst.Instruction {
	k := v.v.Type.Kind()
	var value inst.Instruction
	if v.Value != nil {
		value = v.Value.GenerateInstruction()
	} else {
		value = inst.ZeroOf(k)
	}
	return inst.SetVarOf(k, 0, v.v.Pos.Index, value)
}

func (v *VariableDefinition) Terminates() bool         { return false }
func (v *VariableDefinition) Position() lexer.Position { return v.Pos }

func (v *VariableDefinition) Copy() Statement {
	return &VariableDefinition{
		Pos:       v.Pos,
		Name:      v.Name,
		Type:      v.Type.Copy(),
		Value:     copyExpr(v.Value),
		Modifiers: v.Modifiers,
	}
}

func (v *VariableDefinition) String() string {
	s := v.Modifiers.String() + "var " + v.Name
	if v.Type != nil {
		s += ": " + v.Type.String()
	}
	if v.Value != nil {
		s += " = " + v.Value.String()
	}
	return s + ";"
}

// Access reads a variable ("x") or a member of an object ("p.x")
type Access struct {
	Pos    lexer.Position
	Object Expr // nil for a plain name
	Name   string

	typ   types.TypeInstance
	v     *types.Variable
	f     *types.Field
	depth int // memory depth of the accessing scope
	info  *inst.StackInfo
}

func (a *Access) Check(ctx *types.TypeContext, _ types.TypeInstance) (types.TypeInstance, error) {
	a.info = ctx.StackInfo(a.Pos)
	a.depth = ctx.MemoryDepth()

	if a.Object == nil {
		v, err := ctx.GetVariable(a.Name)
		if err != nil {
			return nil, at(a.Pos, err)
		}
		a.v = v
		a.typ = v.Type
		return a.typ, nil
	}

	ot, err := a.Object.Check(ctx, nil)
	if err != nil {
		return nil, err
	}
	if ot == types.Void || ot == types.Null {
		return nil, types.Errorf(types.ErrNoSuchField, a.Pos, "%s has no field %s", ot, a.Name)
	}
	f := ot.Field(ctx, a.Name, ctx.ContextType())
	if f == nil {
		return nil, types.Errorf(types.ErrNoSuchField, a.Pos, "%s has no field %s", ot, a.Name)
	}
	a.f = f
	a.typ = f.Type
	if f.Executable {
		a.typ = f.Type.FunctionDescriptor(ctx).Return
	}
	return a.typ, nil
}

func (a *Access) TypeInstance() types.TypeInstance { return a.typ }
func (a *Access) Position() lexer.Position         { return a.Pos }

func (a *Access) Modifiable() bool {
	switch {
	case a.v != nil:
		return a.v.Modifiable
	case a.f != nil:
		return a.f.Modifiable && a.f.Native == nil && !a.f.Executable
	}
	return false
}

func (a *Access) GenerateInstruction() inst.Instruction {
	switch {
	case a.v != nil:
		return inst.GetVarOf(a.typ.Kind(), a.depth-a.v.Pos.Depth, a.v.Pos.Index)
	default:
		return fieldInstruction(a.Object.GenerateInstruction(), a.f, a.info)
	}
}

func (a *Access) GenerateSet(value inst.Instruction) inst.Instruction {
	k := a.typ.Kind()
	if a.v != nil {
		return inst.SetVarOf(k, a.depth-a.v.Pos.Depth, a.v.Pos.Index, value)
	}
	return inst.SetFieldOf(k, a.Object.GenerateInstruction(), a.f.Pos.Index, value, a.info)
}

func (a *Access) GenerateUpdate(op inst.Op, rhs inst.Instruction) inst.Instruction {
	k := a.typ.Kind()
	if a.v != nil {
		depth := a.depth - a.v.Pos.Depth
		current := inst.GetVarOf(k, depth, a.v.Pos.Index)
		return inst.SetVarOf(k, depth, a.v.Pos.Index, inst.ArithOf(k, op, current, rhs, a.info))
	}
	return inst.UpdateFieldOf(k, op, a.Object.GenerateInstruction(), a.f.Pos.Index, rhs, a.info)
}

func (a *Access) Copy() Expr {
	return &Access{Pos: a.Pos, Object: copyExpr(a.Object), Name: a.Name}
}

func (a *Access) String() string {
	if a.Object == nil {
		return a.Name
	}
	return a.Object.String() + "." + a.Name
}

// Assignment stores a value into a variable, field or array element
type Assignment struct {
	Pos    lexer.Position
	Target Expr
	Value  Expr
}

// checkTarget checks e as the left side of an assignment
func checkTarget(ctx *types.TypeContext, e Expr) (Target, types.TypeInstance, error) {
	t, ok := e.(Target)
	if !ok {
		return nil, nil, types.Errorf(types.ErrNotAssignable, e.Position(), "cannot assign to %s", e)
	}
	typ, err := t.Check(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	if !t.Modifiable() {
		return nil, nil, types.Errorf(types.ErrNotModifiable, e.Position(), "%s cannot be modified", e)
	}
	return t, typ, nil
}

func (s *Assignment) Check(ctx *types.TypeContext) error {
	t, typ, err := checkTarget(ctx, s.Target)
	if err != nil {
		return err
	}
	got, err := s.Value.Check(ctx, typ)
	if err != nil {
		return err
	}
	if !types.AssignableFrom(typ, got) {
		return mismatch(s.Value.Position(), typ, got, "assignment to "+t.String())
	}
	return nil
}

func (s *Assignment) GenerateInstruction() inst.Instruction {
	return s.Target.(Target).GenerateSet(s.Value.GenerateInstruction())
}

func (s *Assignment) Terminates() bool         { return false }
func (s *Assignment) Position() lexer.Position { return s.Pos }

func (s *Assignment) Copy() Statement {
	return &Assignment{Pos: s.Pos, Target: s.Target.Copy(), Value: s.Value.Copy()}
}

func (s *Assignment) String() string {
	return s.Target.String() + " = " + s.Value.String() + ";"
}

// OpAssignment is "x += v" and the other arithmetic forms
type OpAssignment struct {
	Pos    lexer.Position
	Target Expr
	Op     inst.Op
	Value  Expr

	toString *types.Field // set when a non string is appended to a string
	info     *inst.StackInfo
}

func (s *OpAssignment) Check(ctx *types.TypeContext) error {
	s.info = ctx.StackInfo(s.Pos)
	t, typ, err := checkTarget(ctx, s.Target)
	if err != nil {
		return err
	}
	what := fmt.Sprintf("%s %s= %s", t, s.Op, s.Value)

	if typ == types.String && s.Op == inst.OpAdd {
		got, err := s.Value.Check(ctx, nil)
		if err != nil {
			return err
		}
		if err := types.CheckStringConcat(ctx, got, what, s.Value.Position()); err != nil {
			return err
		}
		if got != types.String && got != types.Null {
			s.toString = types.ToStringField(ctx, got)
		}
		return nil
	}

	if !types.IsNumeric(typ) {
		return types.Errorf(types.ErrTypeMismatch, s.Pos, "%s: %s is not numeric", what, typ)
	}
	if s.Op == inst.OpMod && !types.IsIntegral(typ) {
		return types.Errorf(types.ErrTypeMismatch, s.Pos, "%s: %% needs int or long, got %s", what, typ)
	}
	got, err := s.Value.Check(ctx, typ)
	if err != nil {
		return err
	}
	if got != typ {
		return mismatch(s.Value.Position(), typ, got, what)
	}
	return nil
}

func (s *OpAssignment) GenerateInstruction() inst.Instruction {
	return s.Target.(Target).GenerateUpdate(s.Op, stringOf(s.Value, s.toString, s.info))
}

func (s *OpAssignment) Terminates() bool         { return false }
func (s *OpAssignment) Position() lexer.Position { return s.Pos }

func (s *OpAssignment) Copy() Statement {
	return &OpAssignment{Pos: s.Pos, Target: s.Target.Copy(), Op: s.Op, Value: s.Value.Copy()}
}

func (s *OpAssignment) String() string {
	return fmt.Sprintf("%s %s= %s;", s.Target, s.Op, s.Value)
}
