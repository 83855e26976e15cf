package interpreter

import (
	"plvm/pkg/inst"
	"plvm/pkg/types"
)

// Frame is the global activation of a run together with the variables
// declared in it.
type Frame struct {
	Vars []*types.Variable   // declaration order, std first
	Mem  *inst.RuntimeMemory // slots of the global activation
}

// Lookup finds a global variable by name
func (f *Frame) Lookup(name string) (*types.Variable, bool) {
	for _, v := range f.Vars {
		if v.Name == name {
			return v, true
		}
	}
	return nil, false
}

// Read returns the current content of v's slot
func (f *Frame) Read(v *types.Variable) any {
	return f.Mem.Read(v.Type.Kind(), v.Pos.Index)
}
