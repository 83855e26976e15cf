package types

import (
	"strings"

	"plvm/pkg/inst"
	"plvm/pkg/mem"
)

// TypeInstance describes a type. Two types are the same type only when
// they are the same TypeInstance value.
type TypeInstance interface {
	// Field looks up a member; accessFrom is the class the access is written in
	Field(ctx *TypeContext, name string, accessFrom TypeInstance) *Field
	Constructor(ctx *TypeContext) *FunctionDescriptor
	FunctionDescriptor(ctx *TypeContext) *FunctionDescriptor
	ElementType(ctx *TypeContext) TypeInstance
	TemplateType() TypeInstance
	TemplateTypeParams() []TypeInstance
	TypeParameters() []string
	Concrete(ctx *TypeContext, params []TypeInstance) (TypeInstance, error)
	Kind() mem.Kind
	String() string
}

// Constructible is implemented by host types built by a native instruction.
// The instruction runs in a frame holding the constructor arguments.
type Constructible interface {
	Construct() inst.Instruction
}

// Base answers "not supported" for every capability, types embed it and
// override what they provide.
type Base struct{}

func (Base) Field(*TypeContext, string, TypeInstance) *Field     { return nil }
func (Base) Constructor(*TypeContext) *FunctionDescriptor        { return nil }
func (Base) FunctionDescriptor(*TypeContext) *FunctionDescriptor { return nil }
func (Base) ElementType(*TypeContext) TypeInstance               { return nil }
func (Base) TemplateType() TypeInstance                          { return nil }
func (Base) TemplateTypeParams() []TypeInstance                  { return nil }
func (Base) TypeParameters() []string                            { return nil }
func (Base) Kind() mem.Kind                                      { return mem.KindRef }
func (Base) Concrete(*TypeContext, []TypeInstance) (TypeInstance, error) {
	return nil, ErrTemplateParams
}

// MemPos is the address of a variable: the absolute memory depth of the
// frame that owns it and the slot index inside that frame
type MemPos struct {
	Depth int
	Index int
}

// Field is a member of a type. Stored fields live at Pos in the object
// frame; native fields compute their value from the receiver in the holder.
type Field struct {
	Name       string
	Type       TypeInstance
	Pos        MemPos
	Modifiable bool
	Native     inst.Instruction
	Executable bool // zero argument function read as a property
}

type Modifiers uint8

const (
	ModPublic Modifiers = 1 << iota
	ModPrivate
	ModConst
	ModExecutable
)

func (m Modifiers) Has(o Modifiers) bool {
	return m&o != 0
}

func (m Modifiers) IsPublic() bool {
	return m.Has(ModPublic)
}

// String renders the modifiers with a trailing space each, "" when none
func (m Modifiers) String() string {
	var sb strings.Builder
	for _, p := range []struct {
		mod  Modifiers
		name string
	}{{ModPublic, "public"}, {ModPrivate, "private"}, {ModConst, "const"}, {ModExecutable, "executable"}} {
		if m.Has(p.mod) {
			sb.WriteString(p.name)
			sb.WriteByte(' ')
		}
	}
	return sb.String()
}

// Variable is a named slot visible in a TypeContext
type Variable struct {
	Name       string
	Type       TypeInstance
	Modifiable bool
	Modifiers  Modifiers
	Pos        MemPos
}

// Param is one parameter of a function descriptor
type Param struct {
	Name     string
	Type     TypeInstance
	Index    int  // slot index in the activation frame
	Optional bool // has a default value, callers may leave it out
}

// FunctionDescriptor is the signature of a callable plus the provider of
// its activation frame size. Use TypeContext.FunctionDescriptor to get
// interned instances.
type FunctionDescriptor struct {
	Params []Param
	Return TypeInstance
	Mem    mem.Provider
}

func (d *FunctionDescriptor) equal(o *FunctionDescriptor) bool {
	if d.Return != o.Return || d.Mem != o.Mem || len(d.Params) != len(o.Params) {
		return false
	}
	for i := range d.Params {
		p, q := d.Params[i], o.Params[i]
		if p.Type != q.Type || p.Index != q.Index || p.Optional != q.Optional {
			return false
		}
	}
	return true
}

// Required counts the parameters a call must supply
func (d *FunctionDescriptor) Required() int {
	n := 0
	for _, p := range d.Params {
		if !p.Optional {
			n++
		}
	}
	return n
}

// sameSignature ignores the memory provider
func (d *FunctionDescriptor) sameSignature(o *FunctionDescriptor) bool {
	if d.Return != o.Return || len(d.Params) != len(o.Params) {
		return false
	}
	for i := range d.Params {
		if d.Params[i].Type != o.Params[i].Type {
			return false
		}
	}
	return true
}

func (d *FunctionDescriptor) String() string {
	parts := make([]string, len(d.Params))
	for i, p := range d.Params {
		parts[i] = p.Type.String()
	}
	return "function(" + strings.Join(parts, ", ") + "): " + d.Return.String()
}

// Signature lays out parameters of the given types the way a function
// body allocates them: one slot per parameter, in order, per kind.
func Signature(ts ...TypeInstance) ([]Param, mem.Fixed) {
	alloc := mem.NewAllocator()
	params := make([]Param, len(ts))
	for i, t := range ts {
		params[i] = Param{Type: t, Index: alloc.NextIndex(t.Kind())}
	}
	return params, mem.Fixed(alloc.Total())
}
