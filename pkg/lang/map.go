package lang

import (
	"slices"
	"strings"

	"plvm/pkg/inst"
	"plvm/pkg/mem"
	"plvm/pkg/types"
)

// dict is the run-time value of std.Map and std.LinkedHashMap, ordered by
// first insertion of each key
type dict[K comparable, V any] struct {
	keys []K
	vals map[K]V
}

func newDict[K comparable, V any]() *dict[K, V] {
	return &dict[K, V]{vals: make(map[K]V)}
}

func (d *dict[K, V]) Len() int { return len(d.keys) }

func (d *dict[K, V]) put(k K, v V) {
	if _, ok := d.vals[k]; !ok {
		d.keys = append(d.keys, k)
	}
	d.vals[k] = v
}

// remove deletes k and returns its value, the zero value if absent
func (d *dict[K, V]) remove(k K) V {
	v, ok := d.vals[k]
	if ok {
		delete(d.vals, k)
		d.keys = slices.DeleteFunc(d.keys, func(e K) bool { return e == k })
	}
	return v
}

func (d *dict[K, V]) String() string {
	parts := make([]string, len(d.keys))
	for i, k := range d.keys {
		parts[i] = inst.Stringify(k) + "=" + inst.Stringify(d.vals[k])
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Export renders the map with string keys
func (d *dict[K, V]) Export() any {
	out := make(map[string]any, len(d.keys))
	for _, k := range d.keys {
		out[inst.Stringify(k)] = Export(d.vals[k])
	}
	return out
}

type MapType struct {
	concrete
	key, val types.TypeInstance
	keySet   *Template
	ops      mapOps
}

type mapOps interface {
	construct() inst.Instruction
	field(ctx *types.TypeContext, t *MapType, name string) *types.Field
}

// newMapType returns the builder of a map template, keySet() returning an
// instance of keySet
func newMapType(keySet *Template) func(*types.TypeContext, *Template, []types.TypeInstance) types.TypeInstance {
	return func(_ *types.TypeContext, t *Template, params []types.TypeInstance) types.TypeInstance {
		m := &MapType{concrete: concrete{template: t, params: params}, key: params[0], val: params[1], keySet: keySet}
		switch m.key.Kind() {
		case mem.KindInt:
			m.ops = mapOpsOf(inst.Ints, m.val.Kind())
		case mem.KindLong:
			m.ops = mapOpsOf(inst.Longs, m.val.Kind())
		case mem.KindFloat:
			m.ops = mapOpsOf(inst.Floats, m.val.Kind())
		case mem.KindDouble:
			m.ops = mapOpsOf(inst.Doubles, m.val.Kind())
		case mem.KindBool:
			m.ops = mapOpsOf(inst.Bools, m.val.Kind())
		default:
			m.ops = mapOpsOf(inst.Refs, m.val.Kind())
		}
		return m
	}
}

func mapOpsOf[K comparable](key inst.Accessor[K], v mem.Kind) mapOps {
	switch v {
	case mem.KindInt:
		return mapKind[K, int32]{key, inst.Ints}
	case mem.KindLong:
		return mapKind[K, int64]{key, inst.Longs}
	case mem.KindFloat:
		return mapKind[K, float32]{key, inst.Floats}
	case mem.KindDouble:
		return mapKind[K, float64]{key, inst.Doubles}
	case mem.KindBool:
		return mapKind[K, bool]{key, inst.Bools}
	default:
		return mapKind[K, any]{key, inst.Refs}
	}
}

func (t *MapType) Constructor(ctx *types.TypeContext) *types.FunctionDescriptor {
	return constructor(ctx)
}

func (t *MapType) Construct() inst.Instruction {
	return t.ops.construct()
}

func (t *MapType) Field(ctx *types.TypeContext, name string, _ types.TypeInstance) *types.Field {
	return t.ops.field(ctx, t, name)
}

type mapKind[K comparable, V any] struct {
	key inst.Accessor[K]
	val inst.Accessor[V]
}

func (k mapKind[K, V]) construct() inst.Instruction {
	return inst.Func(func(_ *inst.ActionContext, exec *inst.Execution) error {
		exec.Values.Ref = newDict[K, V]()
		return nil
	})
}

func (k mapKind[K, V]) field(ctx *types.TypeContext, t *MapType, name string) *types.Field {
	method := func(ret types.TypeInstance, params []types.TypeInstance,
		body func(d *dict[K, V], args types.Args, exec *inst.Execution) error) *types.Field {
		return types.NativeMethod(ctx, t.String(), name, ret, params, inst.Receiver[*dict[K, V]], body)
	}
	key := []types.TypeInstance{t.key}

	switch name {
	case "size":
		return types.Property(name, types.Int, inst.Length)
	case "put":
		return method(types.Void, []types.TypeInstance{t.key, t.val}, func(d *dict[K, V], args types.Args, _ *inst.Execution) error {
			d.put(types.Arg(args, k.key, 0), types.Arg(args, k.val, 1))
			return nil
		})
	case "get":
		return method(t.val, key, func(d *dict[K, V], args types.Args, exec *inst.Execution) error {
			k.val.Put(&exec.Values, d.vals[types.Arg(args, k.key, 0)])
			return nil
		})
	case "remove":
		return method(t.val, key, func(d *dict[K, V], args types.Args, exec *inst.Execution) error {
			k.val.Put(&exec.Values, d.remove(types.Arg(args, k.key, 0)))
			return nil
		})
	case "containsKey":
		return method(types.Bool, key, func(d *dict[K, V], args types.Args, exec *inst.Execution) error {
			_, ok := d.vals[types.Arg(args, k.key, 0)]
			exec.Values.Bool = ok
			return nil
		})
	case "keySet":
		st := instantiate(ctx, t.keySet, t.key)
		if st == nil {
			return nil
		}
		return method(st, nil, func(d *dict[K, V], _ types.Args, exec *inst.Execution) error {
			keys := newSet[K]()
			for _, e := range d.keys {
				keys.add(e)
			}
			exec.Values.Ref = keys
			return nil
		})
	case "toString":
		return method(types.String, nil, func(d *dict[K, V], _ types.Args, exec *inst.Execution) error {
			exec.Values.Ref = d.String()
			return nil
		})
	}
	return nil
}
