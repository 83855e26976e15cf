package ast

import (
	"fmt"

	"plvm/pkg/inst"
	"plvm/pkg/lexer"
	"plvm/pkg/mem"
	"plvm/pkg/types"
)

// invokeField calls the function stored in field f of object
func invokeField(object inst.Instruction, f *types.Field, info *inst.StackInfo) inst.Instruction {
	load := fieldInstruction(object, f, info)
	if f.Executable {
		return load
	}
	return &inst.Invoke{Info: inst.Info{Stack: info}, Fn: load}
}

// stringOf lowers e as a string operand: through its toString member when
// toString is set, as is otherwise
func stringOf(e Expr, toString *types.Field, info *inst.StackInfo) inst.Instruction {
	if toString == nil {
		return e.GenerateInstruction()
	}
	return invokeField(e.GenerateInstruction(), toString, info)
}

// BinOp is a binary operation. Arithmetic needs operands of one numeric
// type, + with a string operand concatenates, == and != compare values of
// one type or a reference with null.
type BinOp struct {
	Pos   lexer.Position
	Op    inst.Op
	Left  Expr
	Right Expr

	typ     types.TypeInstance // result
	operand types.TypeInstance
	concat  bool
	lstr    *types.Field // toString of a non string left operand
	rstr    *types.Field
	info    *inst.StackInfo
}

// checkOperands checks a numeric literal operand after the other side so
// that it takes the other side's type
func (b *BinOp) checkOperands(ctx *types.TypeContext, hint types.TypeInstance) (types.TypeInstance, types.TypeInstance, error) {
	if !types.IsNumeric(hint) {
		hint = nil
	}
	if isLiteral(b.Left) && !isLiteral(b.Right) {
		rt, err := b.Right.Check(ctx, hint)
		if err != nil {
			return nil, nil, err
		}
		lt, err := b.Left.Check(ctx, rt)
		return lt, rt, err
	}
	lt, err := b.Left.Check(ctx, hint)
	if err != nil {
		return nil, nil, err
	}
	rt, err := b.Right.Check(ctx, lt)
	return lt, rt, err
}

func (b *BinOp) Check(ctx *types.TypeContext, hint types.TypeInstance) (types.TypeInstance, error) {
	b.info = ctx.StackInfo(b.Pos)
	if b.Op.IsComparison() || b.Op.IsLogic() {
		hint = nil
	}
	lt, rt, err := b.checkOperands(ctx, hint)
	if err != nil {
		return nil, err
	}

	switch {
	case b.Op.IsLogic():
		if lt != types.Bool || rt != types.Bool {
			return nil, b.operandError(lt, rt)
		}
		b.typ = types.Bool

	case b.Op == inst.OpAdd && (lt == types.String || rt == types.String):
		for _, side := range []struct {
			e   Expr
			t   types.TypeInstance
			str **types.Field
		}{{b.Left, lt, &b.lstr}, {b.Right, rt, &b.rstr}} {
			if err := types.CheckStringConcat(ctx, side.t, b.String(), side.e.Position()); err != nil {
				return nil, err
			}
			if side.t != types.String && side.t != types.Null {
				*side.str = types.ToStringField(ctx, side.t)
			}
		}
		b.concat = true
		b.typ = types.String

	case b.Op.IsArithmetic():
		if lt != rt || !types.IsNumeric(lt) {
			return nil, b.operandError(lt, rt)
		}
		if b.Op == inst.OpMod && !types.IsIntegral(lt) {
			return nil, types.Errorf(types.ErrTypeMismatch, b.Pos, "%s: %% needs int or long, got %s", b, lt)
		}
		b.operand = lt
		b.typ = lt

	case b.Op == inst.OpEQ || b.Op == inst.OpNE:
		switch {
		case lt == rt && lt != types.Void:
			b.operand = lt
		case lt == types.Null && rt.Kind() == mem.KindRef:
			b.operand = rt
		case rt == types.Null && lt.Kind() == mem.KindRef:
			b.operand = lt
		default:
			return nil, b.operandError(lt, rt)
		}
		b.typ = types.Bool

	default:
		if lt != rt || !types.IsNumeric(lt) {
			return nil, b.operandError(lt, rt)
		}
		b.operand = lt
		b.typ = types.Bool
	}
	return b.typ, nil
}

func (b *BinOp) operandError(lt, rt types.TypeInstance) error {
	return types.Errorf(types.ErrTypeMismatch, b.Pos, "%s: cannot apply %s to %s and %s", b, b.Op, lt, rt)
}

func (b *BinOp) TypeInstance() types.TypeInstance { return b.typ }
func (b *BinOp) Position() lexer.Position         { return b.Pos }

func (b *BinOp) GenerateInstruction() inst.Instruction {
	switch {
	case b.Op.IsLogic():
		return &inst.Logic{Or: b.Op == inst.OpOr, Left: b.Left.GenerateInstruction(), Right: b.Right.GenerateInstruction()}
	case b.concat:
		return &inst.Concat{Left: stringOf(b.Left, b.lstr, b.info), Right: stringOf(b.Right, b.rstr, b.info)}
	case b.Op.IsArithmetic():
		return inst.ArithOf(b.operand.Kind(), b.Op, b.Left.GenerateInstruction(), b.Right.GenerateInstruction(), b.info)
	default:
		return inst.CompareOf(b.operand.Kind(), b.Op, b.Left.GenerateInstruction(), b.Right.GenerateInstruction())
	}
}

func (b *BinOp) Copy() Expr {
	return &BinOp{Pos: b.Pos, Op: b.Op, Left: b.Left.Copy(), Right: b.Right.Copy()}
}

func (b *BinOp) String() string {
	return fmt.Sprintf("(%s %s %s)", b.Left, b.Op, b.Right)
}

// Negative is unary minus
type Negative struct {
	Pos   lexer.Position
	Value Expr

	typ types.TypeInstance
}

func (n *Negative) Check(ctx *types.TypeContext, hint types.TypeInstance) (types.TypeInstance, error) {
	if lit, ok := n.Value.(*IntegerLiteral); ok {
		lit.negated = true
	}
	t, err := n.Value.Check(ctx, hint)
	if err != nil {
		return nil, err
	}
	if !types.IsNumeric(t) {
		return nil, types.Errorf(types.ErrTypeMismatch, n.Pos, "cannot negate %s", t)
	}
	n.typ = t
	return t, nil
}

func (n *Negative) TypeInstance() types.TypeInstance { return n.typ }
func (n *Negative) Position() lexer.Position         { return n.Pos }

func (n *Negative) GenerateInstruction() inst.Instruction {
	return inst.NegateOf(n.typ.Kind(), n.Value.GenerateInstruction())
}

func (n *Negative) Copy() Expr     { return &Negative{Pos: n.Pos, Value: n.Value.Copy()} }
func (n *Negative) String() string { return "-" + n.Value.String() }

// LogicNot is "!b"
type LogicNot struct {
	Pos   lexer.Position
	Value Expr
}

func (n *LogicNot) Check(ctx *types.TypeContext, _ types.TypeInstance) (types.TypeInstance, error) {
	t, err := n.Value.Check(ctx, types.Bool)
	if err != nil {
		return nil, err
	}
	if t != types.Bool {
		return nil, mismatch(n.Pos, types.Bool, t, "operand of !")
	}
	return types.Bool, nil
}

func (n *LogicNot) TypeInstance() types.TypeInstance { return types.Bool }
func (n *LogicNot) Position() lexer.Position         { return n.Pos }

func (n *LogicNot) GenerateInstruction() inst.Instruction {
	return &inst.Not{Value: n.Value.GenerateInstruction()}
}

func (n *LogicNot) Copy() Expr     { return &LogicNot{Pos: n.Pos, Value: n.Value.Copy()} }
func (n *LogicNot) String() string { return "!" + n.Value.String() }

// NewArray allocates an array of zero values: "new int[n]"
type NewArray struct {
	Pos    lexer.Position
	Elem   *TypeRef
	Length Expr

	elem types.TypeInstance
	typ  types.TypeInstance
	info *inst.StackInfo
}

func (n *NewArray) Check(ctx *types.TypeContext, _ types.TypeInstance) (types.TypeInstance, error) {
	n.info = ctx.StackInfo(n.Pos)
	elem, err := n.Elem.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	if elem == types.Void {
		return nil, types.Errorf(types.ErrTypeMismatch, n.Pos, "array of void")
	}
	t, err := n.Length.Check(ctx, types.Int)
	if err != nil {
		return nil, err
	}
	if t != types.Int {
		return nil, mismatch(n.Length.Position(), types.Int, t, "array length")
	}
	n.elem = elem
	n.typ = ctx.ArrayType(elem)
	return n.typ, nil
}

func (n *NewArray) TypeInstance() types.TypeInstance { return n.typ }
func (n *NewArray) Position() lexer.Position         { return n.Pos }

func (n *NewArray) GenerateInstruction() inst.Instruction {
	return inst.NewArrayOf(n.elem.Kind(), n.Length.GenerateInstruction(), n.info)
}

func (n *NewArray) Copy() Expr {
	return &NewArray{Pos: n.Pos, Elem: n.Elem.Copy(), Length: n.Length.Copy()}
}

func (n *NewArray) String() string {
	return fmt.Sprintf("new %s[%s]", n.Elem, n.Length)
}

// AccessIndex reads or writes an array element: "a[i]"
type AccessIndex struct {
	Pos   lexer.Position
	Array Expr
	Index Expr

	typ  types.TypeInstance
	info *inst.StackInfo
}

func (a *AccessIndex) Check(ctx *types.TypeContext, _ types.TypeInstance) (types.TypeInstance, error) {
	a.info = ctx.StackInfo(a.Pos)
	arr, err := a.Array.Check(ctx, nil)
	if err != nil {
		return nil, err
	}
	elem := arr.ElementType(ctx)
	if elem == nil {
		return nil, types.Errorf(types.ErrTypeMismatch, a.Pos, "%s of type %s is not an array", a.Array, arr)
	}
	it, err := a.Index.Check(ctx, types.Int)
	if err != nil {
		return nil, err
	}
	if it != types.Int {
		return nil, mismatch(a.Index.Position(), types.Int, it, "array index")
	}
	a.typ = elem
	return elem, nil
}

func (a *AccessIndex) TypeInstance() types.TypeInstance { return a.typ }
func (a *AccessIndex) Position() lexer.Position         { return a.Pos }
func (a *AccessIndex) Modifiable() bool                 { return true }

func (a *AccessIndex) GenerateInstruction() inst.Instruction {
	return inst.GetIndexOf(a.typ.Kind(), a.Array.GenerateInstruction(), a.Index.GenerateInstruction(), a.info)
}

func (a *AccessIndex) GenerateSet(value inst.Instruction) inst.Instruction {
	return inst.SetIndexOf(a.typ.Kind(), a.Array.GenerateInstruction(), a.Index.GenerateInstruction(), value, a.info)
}

func (a *AccessIndex) GenerateUpdate(op inst.Op, rhs inst.Instruction) inst.Instruction {
	return inst.UpdateIndexOf(a.typ.Kind(), op, a.Array.GenerateInstruction(), a.Index.GenerateInstruction(), rhs, a.info)
}

func (a *AccessIndex) Copy() Expr {
	return &AccessIndex{Pos: a.Pos, Array: a.Array.Copy(), Index: a.Index.Copy()}
}

func (a *AccessIndex) String() string {
	return a.Array.String() + "[" + a.Index.String() + "]"
}
