// Package lang provides the std namespace of scripts: console output and
// the generic collections.
package lang

import (
	"fmt"

	"plvm/pkg/inst"
	"plvm/pkg/types"
)

var (
	Iterator      = &Template{name: "std.Iterator", params: []string{"E"}, build: newIteratorType}
	List          = &Template{name: "std.List", params: []string{"E"}, build: newListType}
	Set           = &Template{name: "std.Set", params: []string{"E"}, build: newSetType}
	LinkedHashSet = &Template{name: "std.LinkedHashSet", params: []string{"E"}, build: newSetType}
	Map           = &Template{name: "std.Map", params: []string{"K", "V"}, build: newMapType(Set)}
	LinkedHashMap = &Template{name: "std.LinkedHashMap", params: []string{"K", "V"}, build: newMapType(LinkedHashSet)}

	// Namespace is the type of the std variable
	Namespace = &namespaceType{}
	// Console is the type of std.console
	Console = &consoleType{}
)

// Std is the run-time value of the std variable
type Std struct {
	console *console
}

func (*Std) String() string { return "std" }

type console struct{}

func (*console) String() string { return "console" }

type namespaceType struct {
	types.Base
}

func (*namespaceType) String() string { return "std" }

func (*namespaceType) Field(_ *types.TypeContext, name string, _ types.TypeInstance) *types.Field {
	if name != "console" {
		return nil
	}
	return types.Property(name, Console, inst.Func(func(_ *inst.ActionContext, exec *inst.Execution) error {
		s, err := inst.Receiver[*Std](&exec.Values)
		if err != nil {
			return err
		}
		exec.Values.Ref = s.console
		return nil
	}))
}

type consoleType struct {
	types.Base
}

func (*consoleType) String() string { return "std.Console" }

func (*consoleType) Field(ctx *types.TypeContext, name string, _ types.TypeInstance) *types.Field {
	if name != "log" {
		return nil
	}
	return types.NativeMethod(ctx, "std.Console", name, types.Void, []types.TypeInstance{types.String},
		inst.Receiver[*console],
		func(_ *console, args types.Args, exec *inst.Execution) error {
			_, err := fmt.Fprintln(exec.Out(), inst.Stringify(args.Ref(0)))
			return err
		})
}

// Runtime fills the std slot of the global frame
type Runtime struct {
	index int
}

// Install declares std and the std types in the global context
func Install(global *types.TypeContext) (*Runtime, error) {
	for _, t := range []types.TypeInstance{Namespace, Console, Iterator, List, Set, LinkedHashSet, Map, LinkedHashMap} {
		if err := global.AddType(t.String(), t); err != nil {
			return nil, err
		}
	}

	index := global.MemoryAllocator().NextRefIndex()
	err := global.AddVariable(&types.Variable{
		Name:      "std",
		Type:      Namespace,
		Modifiers: types.ModConst,
		Pos:       types.MemPos{Depth: global.MemoryDepth(), Index: index},
	})
	if err != nil {
		return nil, err
	}

	return &Runtime{index: index}, nil
}

// Bind stores a fresh std value into the global frame m
func (r *Runtime) Bind(m *inst.RuntimeMemory) {
	m.SetRef(r.index, &Std{console: &console{}})
}

// Export converts a run-time value into plain Go values: collections and
// arrays become slices and maps, errors their message, functions and
// objects their rendering.
func Export(v any) any {
	switch x := v.(type) {
	case nil, int32, int64, float32, float64, bool, string:
		return x
	case interface{ Export() any }:
		return x.Export()
	case interface{ Values() []any }:
		return export(x.Values())
	case error:
		return inst.ErrorMessage(x)
	default:
		return inst.Stringify(x)
	}
}
