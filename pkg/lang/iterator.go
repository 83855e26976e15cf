package lang

import (
	"fmt"

	"plvm/pkg/inst"
	"plvm/pkg/mem"
	"plvm/pkg/types"
)

// iterator walks a snapshot of a collection
type iterator[T any] struct {
	elems []T
	next  int
}

func (it *iterator[T]) String() string {
	return fmt.Sprintf("iterator(%d/%d)", it.next, len(it.elems))
}

type IteratorType struct {
	concrete
	elem types.TypeInstance
	ops  iteratorOps
}

type iteratorOps interface {
	field(ctx *types.TypeContext, t *IteratorType, name string) *types.Field
}

func newIteratorType(_ *types.TypeContext, t *Template, params []types.TypeInstance) types.TypeInstance {
	elem := params[0]
	it := &IteratorType{concrete: concrete{template: t, params: params}, elem: elem}
	switch elem.Kind() {
	case mem.KindInt:
		it.ops = iteratorKind[int32]{inst.Ints}
	case mem.KindLong:
		it.ops = iteratorKind[int64]{inst.Longs}
	case mem.KindFloat:
		it.ops = iteratorKind[float32]{inst.Floats}
	case mem.KindDouble:
		it.ops = iteratorKind[float64]{inst.Doubles}
	case mem.KindBool:
		it.ops = iteratorKind[bool]{inst.Bools}
	default:
		it.ops = iteratorKind[any]{inst.Refs}
	}
	return it
}

func (t *IteratorType) Field(ctx *types.TypeContext, name string, _ types.TypeInstance) *types.Field {
	return t.ops.field(ctx, t, name)
}

type iteratorKind[T any] struct {
	acc inst.Accessor[T]
}

func (k iteratorKind[T]) field(ctx *types.TypeContext, t *IteratorType, name string) *types.Field {
	method := func(ret types.TypeInstance, body func(it *iterator[T], exec *inst.Execution) error) *types.Field {
		return types.NativeMethod(ctx, t.String(), name, ret, nil, inst.Receiver[*iterator[T]],
			func(it *iterator[T], _ types.Args, exec *inst.Execution) error { return body(it, exec) })
	}

	switch name {
	case "hasNext":
		return method(types.Bool, func(it *iterator[T], exec *inst.Execution) error {
			exec.Values.Bool = it.next < len(it.elems)
			return nil
		})
	case "next":
		return method(t.elem, func(it *iterator[T], exec *inst.Execution) error {
			if it.next >= len(it.elems) {
				return fmt.Errorf("%w: iterator has no more elements", inst.ErrIndexOutOfRange)
			}
			k.acc.Put(&exec.Values, it.elems[it.next])
			it.next++
			return nil
		})
	case "toString":
		return method(types.String, func(it *iterator[T], exec *inst.Execution) error {
			exec.Values.Ref = it.String()
			return nil
		})
	}
	return nil
}
