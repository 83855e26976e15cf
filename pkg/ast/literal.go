package ast

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"plvm/pkg/inst"
	"plvm/pkg/lexer"
	"plvm/pkg/types"
)

// IntegerLiteral is an integer constant. Without the L suffix it takes the
// numeric type of the hint, int by default.
type IntegerLiteral struct {
	Pos   lexer.Position
	Value int64
	Long  bool // written with the L suffix
	typ   types.TypeInstance

	negated bool // operand of unary minus, so -2147483648 is an int
}

func (l *IntegerLiteral) Check(_ *types.TypeContext, hint types.TypeInstance) (types.TypeInstance, error) {
	switch {
	case l.Long:
		l.typ = types.Long
	case types.IsNumeric(hint):
		l.typ = hint
	default:
		l.typ = types.Int
	}

	v := l.Value
	if l.negated {
		v = -v
	}
	if l.typ == types.Int && (v < math.MinInt32 || v > math.MaxInt32) {
		return nil, types.Errorf(types.ErrTypeMismatch, l.Pos, "%s does not fit in int, use %sL", l, l)
	}
	return l.typ, nil
}

func (l *IntegerLiteral) TypeInstance() types.TypeInstance { return l.typ }
func (l *IntegerLiteral) Position() lexer.Position         { return l.Pos }

func (l *IntegerLiteral) String() string {
	s := strconv.FormatInt(l.Value, 10)
	if l.Long {
		s += "L"
	}
	return s
}

func (l *IntegerLiteral) Copy() Expr {
	return &IntegerLiteral{Pos: l.Pos, Value: l.Value, Long: l.Long}
}

func (l *IntegerLiteral) GenerateInstruction() inst.Instruction {
	switch l.typ {
	case types.Long:
		return &inst.Literal[int64]{Acc: inst.Longs, Value: l.Value}
	case types.Float:
		return &inst.Literal[float32]{Acc: inst.Floats, Value: float32(l.Value)}
	case types.Double:
		return &inst.Literal[float64]{Acc: inst.Doubles, Value: float64(l.Value)}
	default:
		return &inst.Literal[int32]{Acc: inst.Ints, Value: int32(l.Value)}
	}
}

// FloatLiteral is a floating point constant, double unless suffixed with f
// or hinted as float
type FloatLiteral struct {
	Pos   lexer.Position
	Value float64
	Float bool // written with the f suffix
	typ   types.TypeInstance
}

func (l *FloatLiteral) Check(_ *types.TypeContext, hint types.TypeInstance) (types.TypeInstance, error) {
	if l.Float || hint == types.Float {
		l.typ = types.Float
	} else {
		l.typ = types.Double
	}
	return l.typ, nil
}

func (l *FloatLiteral) TypeInstance() types.TypeInstance { return l.typ }
func (l *FloatLiteral) Position() lexer.Position         { return l.Pos }

func (l *FloatLiteral) String() string {
	s := strconv.FormatFloat(l.Value, 'g', -1, 64)
	if l.Float {
		s += "f"
	}
	return s
}

func (l *FloatLiteral) Copy() Expr {
	return &FloatLiteral{Pos: l.Pos, Value: l.Value, Float: l.Float}
}

func (l *FloatLiteral) GenerateInstruction() inst.Instruction {
	if l.typ == types.Float {
		return &inst.Literal[float32]{Acc: inst.Floats, Value: float32(l.Value)}
	}
	return &inst.Literal[float64]{Acc: inst.Doubles, Value: l.Value}
}

type BoolLiteral struct {
	Pos   lexer.Position
	Value bool
}

func (l *BoolLiteral) Check(*types.TypeContext, types.TypeInstance) (types.TypeInstance, error) {
	return types.Bool, nil
}

func (l *BoolLiteral) TypeInstance() types.TypeInstance { return types.Bool }
func (l *BoolLiteral) Position() lexer.Position         { return l.Pos }
func (l *BoolLiteral) String() string                   { return strconv.FormatBool(l.Value) }
func (l *BoolLiteral) Copy() Expr                       { return &BoolLiteral{Pos: l.Pos, Value: l.Value} }

func (l *BoolLiteral) GenerateInstruction() inst.Instruction {
	return &inst.Literal[bool]{Acc: inst.Bools, Value: l.Value}
}

type StringLiteral struct {
	Pos   lexer.Position
	Value string
}

func (l *StringLiteral) Check(*types.TypeContext, types.TypeInstance) (types.TypeInstance, error) {
	return types.String, nil
}

func (l *StringLiteral) TypeInstance() types.TypeInstance { return types.String }
func (l *StringLiteral) Position() lexer.Position         { return l.Pos }
func (l *StringLiteral) String() string                   { return strconv.Quote(l.Value) }
func (l *StringLiteral) Copy() Expr                       { return &StringLiteral{Pos: l.Pos, Value: l.Value} }

func (l *StringLiteral) GenerateInstruction() inst.Instruction {
	return &inst.Literal[any]{Acc: inst.Refs, Value: l.Value}
}

type NullLiteral struct {
	Pos lexer.Position
}

func (l *NullLiteral) Check(*types.TypeContext, types.TypeInstance) (types.TypeInstance, error) {
	return types.Null, nil
}

func (l *NullLiteral) TypeInstance() types.TypeInstance { return types.Null }
func (l *NullLiteral) Position() lexer.Position         { return l.Pos }
func (l *NullLiteral) String() string                   { return "null" }
func (l *NullLiteral) Copy() Expr                       { return &NullLiteral{Pos: l.Pos} }

func (l *NullLiteral) GenerateInstruction() inst.Instruction {
	return &inst.Literal[any]{Acc: inst.Refs}
}

// isLiteral reports numeric literals whose type follows the other operand
func isLiteral(e Expr) bool {
	switch e.(type) {
	case *IntegerLiteral, *FloatLiteral:
		return true
	case *Negative:
		return isLiteral(e.(*Negative).Value)
	}
	return false
}

// ArrayLiteral lists the elements of an array inside an object literal:
// "[1, 2, 3]". Its type is the array type its position expects.
type ArrayLiteral struct {
	Pos   lexer.Position
	Elems []Expr

	elem types.TypeInstance
	typ  types.TypeInstance
	info *inst.StackInfo
}

func (a *ArrayLiteral) Check(ctx *types.TypeContext, hint types.TypeInstance) (types.TypeInstance, error) {
	a.info = ctx.StackInfo(a.Pos)
	arr, ok := hint.(*types.ArrayType)
	if !ok {
		if hint == nil {
			return nil, types.Errorf(types.ErrTypeMismatch, a.Pos, "type of array literal is unknown")
		}
		return nil, types.Errorf(types.ErrTypeMismatch, a.Pos, "array literal where %s is expected", hint)
	}
	a.elem = arr.ElementType(ctx)
	for i, e := range a.Elems {
		got, err := e.Check(ctx, a.elem)
		if err != nil {
			return nil, err
		}
		if !types.AssignableFrom(a.elem, got) {
			return nil, mismatch(e.Position(), a.elem, got, fmt.Sprintf("element %d", i))
		}
	}
	a.typ = arr
	return arr, nil
}

func (a *ArrayLiteral) TypeInstance() types.TypeInstance { return a.typ }
func (a *ArrayLiteral) Position() lexer.Position         { return a.Pos }

func (a *ArrayLiteral) GenerateInstruction() inst.Instruction {
	elems := make([]inst.Instruction, len(a.Elems))
	for i, e := range a.Elems {
		elems[i] = e.GenerateInstruction()
	}
	return inst.ArrayLiteralOf(a.elem.Kind(), elems, a.info)
}

func (a *ArrayLiteral) Copy() Expr {
	return &ArrayLiteral{Pos: a.Pos, Elems: copyExprs(a.Elems)}
}

func (a *ArrayLiteral) String() string {
	elems := make([]string, len(a.Elems))
	for i, e := range a.Elems {
		elems[i] = e.String()
	}
	return "[" + strings.Join(elems, ", ") + "]"
}
