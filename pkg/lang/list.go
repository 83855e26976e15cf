package lang

import (
	"fmt"
	"slices"
	"strings"

	"plvm/pkg/inst"
	"plvm/pkg/mem"
	"plvm/pkg/types"
)

// list is the run-time value of std.List. Elements of primitive types are
// stored unboxed.
type list[T comparable] struct {
	elems []T
}

func (l *list[T]) Len() int { return len(l.elems) }

func (l *list[T]) String() string {
	return render("[", "]", l.elems)
}

func (l *list[T]) Export() any {
	return export(l.elems)
}

func render[T any](left, right string, elems []T) string {
	parts := make([]string, len(elems))
	for i, e := range elems {
		parts[i] = inst.Stringify(e)
	}
	return left + strings.Join(parts, ", ") + right
}

func export[T any](elems []T) []any {
	out := make([]any, len(elems))
	for i, e := range elems {
		out[i] = Export(e)
	}
	return out
}

type ListType struct {
	concrete
	elem types.TypeInstance
	ops  listOps
}

type listOps interface {
	construct() inst.Instruction
	field(ctx *types.TypeContext, t *ListType, name string) *types.Field
}

func newListType(_ *types.TypeContext, t *Template, params []types.TypeInstance) types.TypeInstance {
	elem := params[0]
	l := &ListType{concrete: concrete{template: t, params: params}, elem: elem}
	switch elem.Kind() {
	case mem.KindInt:
		l.ops = listKind[int32]{inst.Ints}
	case mem.KindLong:
		l.ops = listKind[int64]{inst.Longs}
	case mem.KindFloat:
		l.ops = listKind[float32]{inst.Floats}
	case mem.KindDouble:
		l.ops = listKind[float64]{inst.Doubles}
	case mem.KindBool:
		l.ops = listKind[bool]{inst.Bools}
	default:
		l.ops = listKind[any]{inst.Refs}
	}
	return l
}

func (t *ListType) Constructor(ctx *types.TypeContext) *types.FunctionDescriptor {
	return constructor(ctx)
}

func (t *ListType) Construct() inst.Instruction {
	return t.ops.construct()
}

func (t *ListType) Field(ctx *types.TypeContext, name string, _ types.TypeInstance) *types.Field {
	return t.ops.field(ctx, t, name)
}

// checkRange validates a [from, to) range of a sequence of length n
func checkRange(from, to int32, n int) error {
	if from < 0 || to < from || int(to) > n {
		return fmt.Errorf("%w: range [%d, %d), length %d", inst.ErrIndexOutOfRange, from, to, n)
	}
	return nil
}

type listKind[T comparable] struct {
	acc inst.Accessor[T]
}

func (k listKind[T]) construct() inst.Instruction {
	return inst.Func(func(_ *inst.ActionContext, exec *inst.Execution) error {
		exec.Values.Ref = &list[T]{}
		return nil
	})
}

func (k listKind[T]) field(ctx *types.TypeContext, t *ListType, name string) *types.Field {
	method := func(ret types.TypeInstance, params []types.TypeInstance,
		body func(l *list[T], args types.Args, exec *inst.Execution) error) *types.Field {
		return types.NativeMethod(ctx, t.String(), name, ret, params, inst.Receiver[*list[T]], body)
	}
	elem := []types.TypeInstance{t.elem}
	index := []types.TypeInstance{types.Int}

	switch name {
	case "size":
		return types.Property(name, types.Int, inst.Length)
	case "add":
		return method(types.Void, elem, func(l *list[T], args types.Args, _ *inst.Execution) error {
			l.elems = append(l.elems, types.Arg(args, k.acc, 0))
			return nil
		})
	case "remove":
		return method(types.Bool, elem, func(l *list[T], args types.Args, exec *inst.Execution) error {
			i := slices.Index(l.elems, types.Arg(args, k.acc, 0))
			if i >= 0 {
				l.elems = slices.Delete(l.elems, i, i+1)
			}
			exec.Values.Bool = i >= 0
			return nil
		})
	case "contains":
		return method(types.Bool, elem, func(l *list[T], args types.Args, exec *inst.Execution) error {
			exec.Values.Bool = slices.Contains(l.elems, types.Arg(args, k.acc, 0))
			return nil
		})
	case "indexOf":
		return method(types.Int, elem, func(l *list[T], args types.Args, exec *inst.Execution) error {
			exec.Values.Int = int32(slices.Index(l.elems, types.Arg(args, k.acc, 0)))
			return nil
		})
	case "get":
		return method(t.elem, index, func(l *list[T], args types.Args, exec *inst.Execution) error {
			i := args.Int(0)
			if err := inst.CheckIndex(i, len(l.elems)); err != nil {
				return err
			}
			k.acc.Put(&exec.Values, l.elems[i])
			return nil
		})
	case "set":
		return method(types.Void, []types.TypeInstance{types.Int, t.elem}, func(l *list[T], args types.Args, _ *inst.Execution) error {
			i := args.Int(0)
			if err := inst.CheckIndex(i, len(l.elems)); err != nil {
				return err
			}
			l.elems[i] = types.Arg(args, k.acc, 1)
			return nil
		})
	case "insert":
		return method(types.Void, []types.TypeInstance{types.Int, t.elem}, func(l *list[T], args types.Args, _ *inst.Execution) error {
			i := args.Int(0)
			if err := inst.CheckIndex(i, len(l.elems)+1); err != nil {
				return err
			}
			l.elems = slices.Insert(l.elems, int(i), types.Arg(args, k.acc, 1))
			return nil
		})
	case "removeAt":
		return method(t.elem, index, func(l *list[T], args types.Args, exec *inst.Execution) error {
			i := args.Int(0)
			if err := inst.CheckIndex(i, len(l.elems)); err != nil {
				return err
			}
			k.acc.Put(&exec.Values, l.elems[i])
			l.elems = slices.Delete(l.elems, int(i), int(i)+1)
			return nil
		})
	case "subList":
		return method(t, []types.TypeInstance{types.Int, types.Int}, func(l *list[T], args types.Args, exec *inst.Execution) error {
			from, to := args.Int(0), args.Int(1)
			if err := checkRange(from, to, len(l.elems)); err != nil {
				return err
			}
			exec.Values.Ref = &list[T]{elems: slices.Clone(l.elems[from:to])}
			return nil
		})
	case "iterator":
		it := instantiate(ctx, Iterator, t.elem)
		if it == nil {
			return nil
		}
		return method(it, nil, func(l *list[T], _ types.Args, exec *inst.Execution) error {
			exec.Values.Ref = &iterator[T]{elems: slices.Clone(l.elems)}
			return nil
		})
	case "toString":
		return method(types.String, nil, func(l *list[T], _ types.Args, exec *inst.Execution) error {
			exec.Values.Ref = l.String()
			return nil
		})
	}
	return nil
}
