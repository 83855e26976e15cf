package lang

import (
	"slices"

	"plvm/pkg/inst"
	"plvm/pkg/mem"
	"plvm/pkg/types"
)

// set is the run-time value of std.Set and std.LinkedHashSet. Both keep
// insertion order so that iteration is deterministic.
type set[T comparable] struct {
	index map[T]struct{}
	elems []T
}

func newSet[T comparable]() *set[T] {
	return &set[T]{index: make(map[T]struct{})}
}

func (s *set[T]) Len() int { return len(s.elems) }

func (s *set[T]) has(v T) bool {
	_, ok := s.index[v]
	return ok
}

// add reports whether v was not in the set yet
func (s *set[T]) add(v T) bool {
	if s.has(v) {
		return false
	}
	s.index[v] = struct{}{}
	s.elems = append(s.elems, v)
	return true
}

// remove reports whether v was in the set
func (s *set[T]) remove(v T) bool {
	if !s.has(v) {
		return false
	}
	delete(s.index, v)
	s.elems = slices.DeleteFunc(s.elems, func(e T) bool { return e == v })
	return true
}

func (s *set[T]) String() string {
	return render("[", "]", s.elems)
}

func (s *set[T]) Export() any {
	return export(s.elems)
}

type SetType struct {
	concrete
	elem types.TypeInstance
	ops  setOps
}

type setOps interface {
	construct() inst.Instruction
	field(ctx *types.TypeContext, t *SetType, name string) *types.Field
}

func newSetType(_ *types.TypeContext, t *Template, params []types.TypeInstance) types.TypeInstance {
	elem := params[0]
	s := &SetType{concrete: concrete{template: t, params: params}, elem: elem}
	s.ops = setOpsOf(elem.Kind())
	return s
}

func setOpsOf(k mem.Kind) setOps {
	switch k {
	case mem.KindInt:
		return setKind[int32]{inst.Ints}
	case mem.KindLong:
		return setKind[int64]{inst.Longs}
	case mem.KindFloat:
		return setKind[float32]{inst.Floats}
	case mem.KindDouble:
		return setKind[float64]{inst.Doubles}
	case mem.KindBool:
		return setKind[bool]{inst.Bools}
	default:
		return setKind[any]{inst.Refs}
	}
}

func (t *SetType) Constructor(ctx *types.TypeContext) *types.FunctionDescriptor {
	return constructor(ctx)
}

func (t *SetType) Construct() inst.Instruction {
	return t.ops.construct()
}

func (t *SetType) Field(ctx *types.TypeContext, name string, _ types.TypeInstance) *types.Field {
	return t.ops.field(ctx, t, name)
}

type setKind[T comparable] struct {
	acc inst.Accessor[T]
}

func (k setKind[T]) construct() inst.Instruction {
	return inst.Func(func(_ *inst.ActionContext, exec *inst.Execution) error {
		exec.Values.Ref = newSet[T]()
		return nil
	})
}

func (k setKind[T]) field(ctx *types.TypeContext, t *SetType, name string) *types.Field {
	method := func(ret types.TypeInstance, params []types.TypeInstance,
		body func(s *set[T], args types.Args, exec *inst.Execution) error) *types.Field {
		return types.NativeMethod(ctx, t.String(), name, ret, params, inst.Receiver[*set[T]], body)
	}
	elem := []types.TypeInstance{t.elem}

	switch name {
	case "size":
		return types.Property(name, types.Int, inst.Length)
	case "add":
		return method(types.Bool, elem, func(s *set[T], args types.Args, exec *inst.Execution) error {
			exec.Values.Bool = s.add(types.Arg(args, k.acc, 0))
			return nil
		})
	case "remove":
		return method(types.Bool, elem, func(s *set[T], args types.Args, exec *inst.Execution) error {
			exec.Values.Bool = s.remove(types.Arg(args, k.acc, 0))
			return nil
		})
	case "contains":
		return method(types.Bool, elem, func(s *set[T], args types.Args, exec *inst.Execution) error {
			exec.Values.Bool = s.has(types.Arg(args, k.acc, 0))
			return nil
		})
	case "iterator":
		it := instantiate(ctx, Iterator, t.elem)
		if it == nil {
			return nil
		}
		return method(it, nil, func(s *set[T], _ types.Args, exec *inst.Execution) error {
			exec.Values.Ref = &iterator[T]{elems: slices.Clone(s.elems)}
			return nil
		})
	case "toString":
		return method(types.String, nil, func(s *set[T], _ types.Args, exec *inst.Execution) error {
			exec.Values.Ref = s.String()
			return nil
		})
	}
	return nil
}
