package types

import (
	"plvm/pkg/inst"
)

// ArrayType is T[]; get one through TypeContext.ArrayType
type ArrayType struct {
	Base
	elem TypeInstance
}

func (a *ArrayType) ElementType(*TypeContext) TypeInstance {
	return a.elem
}

func (a *ArrayType) String() string {
	return a.elem.String() + "[]"
}

func (a *ArrayType) Field(ctx *TypeContext, name string, _ TypeInstance) *Field {
	switch name {
	case "length":
		return Property(name, Int, inst.Length)
	case "toString":
		return NativeMethod(ctx, a.String(), name, String, nil, inst.Receiver[inst.Sized],
			func(arr inst.Sized, _ Args, exec *inst.Execution) error {
				exec.Values.Ref = inst.Stringify(arr)
				return nil
			})
	}
	return nil
}

// FunctionType is the type of function values; get one through
// TypeContext.FunctionType
type FunctionType struct {
	Base
	desc *FunctionDescriptor
}

func (f *FunctionType) FunctionDescriptor(*TypeContext) *FunctionDescriptor {
	return f.desc
}

func (f *FunctionType) String() string {
	return f.desc.String()
}
