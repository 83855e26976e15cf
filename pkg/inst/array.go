package inst

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Array is the run-time value of a T[] expression
type Array[T any] struct {
	Elems []T
}

func (a *Array[T]) Len() int {
	return len(a.Elems)
}

func (a *Array[T]) String() string {
	parts := make([]string, len(a.Elems))
	for i, e := range a.Elems {
		parts[i] = Stringify(e)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Values copies the elements into a slice of untyped values
func (a *Array[T]) Values() []any {
	out := make([]any, len(a.Elems))
	for i, e := range a.Elems {
		out[i] = e
	}
	return out
}

// Sized is implemented by every array and host collection
type Sized interface {
	Len() int
}

// CheckIndex validates i against a length of n
func CheckIndex(i int32, n int) error {
	if i < 0 || int(i) >= n {
		return fmt.Errorf("%w: index %d, length %d", ErrIndexOutOfRange, i, n)
	}
	return nil
}

// NewArray allocates an array of the length left in the int slot by Length
type NewArray[T any] struct {
	Info
	Length Instruction
}

func (n *NewArray[T]) Execute(ctx *ActionContext, exec *Execution) error {
	if err := Run(n.Length, ctx, exec); err != nil {
		return err
	}
	size := exec.Values.Int
	if size < 0 {
		return fmt.Errorf("%w: negative array length %d", ErrInvalidArgument, size)
	}
	exec.Values.Ref = &Array[T]{Elems: make([]T, size)}
	return nil
}

// ArrayLiteral builds an array from the values of Elems in order
type ArrayLiteral[T any] struct {
	Info
	Acc   Accessor[T]
	Elems []Instruction
}

func (a *ArrayLiteral[T]) Execute(ctx *ActionContext, exec *Execution) error {
	elems := make([]T, len(a.Elems))
	for i, e := range a.Elems {
		if err := Run(e, ctx, exec); err != nil {
			return err
		}
		elems[i] = a.Acc.Get(&exec.Values)
	}
	exec.Values.Ref = &Array[T]{Elems: elems}
	return nil
}

func array[T any](exec *Execution) (*Array[T], error) {
	arr, ok := exec.Values.Ref.(*Array[T])
	if !ok || arr == nil {
		return nil, ErrNullPointer
	}
	return arr, nil
}

type GetIndex[T any] struct {
	Info
	Acc   Accessor[T]
	Array Instruction
	Index Instruction
}

func (g *GetIndex[T]) Execute(ctx *ActionContext, exec *Execution) error {
	if err := Run(g.Array, ctx, exec); err != nil {
		return err
	}
	arr, err := array[T](exec)
	if err != nil {
		return err
	}
	if err := Run(g.Index, ctx, exec); err != nil {
		return err
	}
	i := exec.Values.Int
	if err := CheckIndex(i, len(arr.Elems)); err != nil {
		return err
	}
	g.Acc.Put(&exec.Values, arr.Elems[i])
	return nil
}

type SetIndex[T any] struct {
	Info
	Acc   Accessor[T]
	Array Instruction
	Index Instruction
	Value Instruction
}

func (s *SetIndex[T]) Execute(ctx *ActionContext, exec *Execution) error {
	if err := Run(s.Array, ctx, exec); err != nil {
		return err
	}
	arr, err := array[T](exec)
	if err != nil {
		return err
	}
	if err := Run(s.Index, ctx, exec); err != nil {
		return err
	}
	i := exec.Values.Int
	if err := CheckIndex(i, len(arr.Elems)); err != nil {
		return err
	}
	if err := Run(s.Value, ctx, exec); err != nil {
		return err
	}
	arr.Elems[i] = s.Acc.Get(&exec.Values)
	return nil
}

// UpdateIndex applies Op to an element and the value of Rhs
type UpdateIndex[T any] struct {
	Info
	Acc   Accessor[T]
	Array Instruction
	Index Instruction
	Op    func(a, b T) (T, error)
	Rhs   Instruction
}

func (u *UpdateIndex[T]) Execute(ctx *ActionContext, exec *Execution) error {
	if err := Run(u.Array, ctx, exec); err != nil {
		return err
	}
	arr, err := array[T](exec)
	if err != nil {
		return err
	}
	if err := Run(u.Index, ctx, exec); err != nil {
		return err
	}
	i := exec.Values.Int
	if err := CheckIndex(i, len(arr.Elems)); err != nil {
		return err
	}
	if err := Run(u.Rhs, ctx, exec); err != nil {
		return err
	}
	v, err := u.Op(arr.Elems[i], u.Acc.Get(&exec.Values))
	if err != nil {
		return err
	}
	arr.Elems[i] = v
	return nil
}

// Length is the native length field of arrays, strings and collections.
// Strings count characters, not bytes.
var Length = Func(func(_ *ActionContext, exec *Execution) error {
	switch v := exec.Values.Ref.(type) {
	case string:
		exec.Values.Int = int32(utf8.RuneCountInString(v))
	case Sized:
		exec.Values.Int = int32(v.Len())
	default:
		return ErrNullPointer
	}
	return nil
})
