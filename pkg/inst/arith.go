package inst

import (
	"cmp"
	"fmt"
)

// Op is a binary operator
type Op int

const (
	OpAdd Op = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpLT
	OpLE
	OpGT
	OpGE
	OpEQ
	OpNE
	OpAnd
	OpOr
)

var opNames = map[Op]string{
	OpAdd: "+", OpSub: "-", OpMul: "*", OpDiv: "/", OpMod: "%",
	OpLT: "<", OpLE: "<=", OpGT: ">", OpGE: ">=", OpEQ: "==", OpNE: "!=",
	OpAnd: "&&", OpOr: "||",
}

func (o Op) String() string {
	if s, ok := opNames[o]; ok {
		return s
	}
	return fmt.Sprintf("UNKNOWN(%d)", int(o))
}

// IsArithmetic reports + - * / %
func (o Op) IsArithmetic() bool {
	return o <= OpMod
}

// IsComparison reports < <= > >= == !=
func (o Op) IsComparison() bool {
	return o >= OpLT && o <= OpNE
}

// IsLogic reports && ||
func (o Op) IsLogic() bool {
	return o == OpAnd || o == OpOr
}

type Integer interface{ ~int32 | ~int64 }
type Float interface{ ~float32 | ~float64 }
type Number interface{ Integer | Float }

// IntArith returns the wrapping integer implementation of op
func IntArith[T Integer](op Op) func(a, b T) (T, error) {
	switch op {
	case OpAdd:
		return func(a, b T) (T, error) { return a + b, nil }
	case OpSub:
		return func(a, b T) (T, error) { return a - b, nil }
	case OpMul:
		return func(a, b T) (T, error) { return a * b, nil }
	case OpDiv:
		return func(a, b T) (T, error) {
			if b == 0 {
				return 0, ErrDivisionByZero
			}
			return a / b, nil
		}
	case OpMod:
		return func(a, b T) (T, error) {
			if b == 0 {
				return 0, ErrDivisionByZero
			}
			return a % b, nil
		}
	default:
		return nil
	}
}

// FloatArith returns the IEEE implementation of op, nil for %
func FloatArith[T Float](op Op) func(a, b T) (T, error) {
	switch op {
	case OpAdd:
		return func(a, b T) (T, error) { return a + b, nil }
	case OpSub:
		return func(a, b T) (T, error) { return a - b, nil }
	case OpMul:
		return func(a, b T) (T, error) { return a * b, nil }
	case OpDiv:
		return func(a, b T) (T, error) { return a / b, nil }
	default:
		return nil
	}
}

// Compare returns the ordering predicate of op
func Compare[T cmp.Ordered](op Op) func(a, b T) bool {
	switch op {
	case OpLT:
		return func(a, b T) bool { return a < b }
	case OpLE:
		return func(a, b T) bool { return a <= b }
	case OpGT:
		return func(a, b T) bool { return a > b }
	case OpGE:
		return func(a, b T) bool { return a >= b }
	case OpEQ:
		return func(a, b T) bool { return a == b }
	case OpNE:
		return func(a, b T) bool { return a != b }
	default:
		return nil
	}
}

// Equality returns == or != for comparable kinds
func Equality[T comparable](op Op) func(a, b T) bool {
	switch op {
	case OpEQ:
		return func(a, b T) bool { return a == b }
	case OpNE:
		return func(a, b T) bool { return a != b }
	default:
		return nil
	}
}

// Arith evaluates Left then Right and combines them with Fn
type Arith[T any] struct {
	Info
	Acc   Accessor[T]
	Fn    func(a, b T) (T, error)
	Left  Instruction
	Right Instruction
}

func (a *Arith[T]) Execute(ctx *ActionContext, exec *Execution) error {
	if err := Run(a.Left, ctx, exec); err != nil {
		return err
	}
	l := a.Acc.Get(&exec.Values)
	if err := Run(a.Right, ctx, exec); err != nil {
		return err
	}
	v, err := a.Fn(l, a.Acc.Get(&exec.Values))
	if err != nil {
		return err
	}
	a.Acc.Put(&exec.Values, v)
	return nil
}

// Cmp evaluates Left then Right and leaves Fn's verdict in the bool slot
type Cmp[T any] struct {
	Acc   Accessor[T]
	Fn    func(a, b T) bool
	Left  Instruction
	Right Instruction
}

func (c *Cmp[T]) Execute(ctx *ActionContext, exec *Execution) error {
	if err := Run(c.Left, ctx, exec); err != nil {
		return err
	}
	l := c.Acc.Get(&exec.Values)
	if err := Run(c.Right, ctx, exec); err != nil {
		return err
	}
	exec.Values.Bool = c.Fn(l, c.Acc.Get(&exec.Values))
	return nil
}

func (c *Cmp[T]) StackInfo() *StackInfo { return nil }

// Negate flips the sign of a number
type Negate[T Number] struct {
	Acc   Accessor[T]
	Value Instruction
}

func (n *Negate[T]) Execute(ctx *ActionContext, exec *Execution) error {
	if err := Run(n.Value, ctx, exec); err != nil {
		return err
	}
	n.Acc.Put(&exec.Values, -n.Acc.Get(&exec.Values))
	return nil
}

func (n *Negate[T]) StackInfo() *StackInfo { return nil }

type Not struct {
	Value Instruction
}

func (n *Not) Execute(ctx *ActionContext, exec *Execution) error {
	if err := Run(n.Value, ctx, exec); err != nil {
		return err
	}
	exec.Values.Bool = !exec.Values.Bool
	return nil
}

func (n *Not) StackInfo() *StackInfo { return nil }

// Logic is a short-circuit && or ||
type Logic struct {
	Or    bool
	Left  Instruction
	Right Instruction
}

func (l *Logic) Execute(ctx *ActionContext, exec *Execution) error {
	if err := Run(l.Left, ctx, exec); err != nil {
		return err
	}
	if exec.Values.Bool == l.Or {
		return nil
	}
	return Run(l.Right, ctx, exec)
}

func (l *Logic) StackInfo() *StackInfo { return nil }

// Concat joins two string operands
type Concat struct {
	Left  Instruction
	Right Instruction
}

func (c *Concat) Execute(ctx *ActionContext, exec *Execution) error {
	if err := Run(c.Left, ctx, exec); err != nil {
		return err
	}
	l := Stringify(exec.Values.Ref)
	if err := Run(c.Right, ctx, exec); err != nil {
		return err
	}
	exec.Values.Ref = l + Stringify(exec.Values.Ref)
	return nil
}

func (c *Concat) StackInfo() *StackInfo { return nil }

// ConcatStrings is the op-assignment form of Concat
func ConcatStrings(a, b any) (any, error) {
	return Stringify(a) + Stringify(b), nil
}
