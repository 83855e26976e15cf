package types

import (
	"plvm/pkg/lexer"
	"plvm/pkg/mem"
)

// AssignableFrom reports whether a value of type child may be stored where
// parent is expected
func AssignableFrom(parent, child TypeInstance) bool {
	if parent == child {
		return true
	}
	if child == Null {
		return parent.Kind() == mem.KindRef && parent != Void
	}

	// a declared function signature accepts any function with that signature
	if pf, ok := parent.(*FunctionType); ok {
		if cf, ok := child.(*FunctionType); ok {
			if _, declared := pf.desc.Mem.(mem.Fixed); declared {
				return pf.desc.sameSignature(cf.desc)
			}
		}
		return false
	}

	pt, ct := parent.TemplateType(), child.TemplateType()
	if pt == nil || ct == nil || pt != ct {
		return false
	}
	pp, cp := parent.TemplateTypeParams(), child.TemplateTypeParams()
	if len(pp) != len(cp) {
		return false
	}
	for i := range pp {
		if !AssignableFrom(pp[i], cp[i]) {
			return false
		}
	}
	return true
}

// ToStringField finds the zero argument toString member of t returning string
func ToStringField(ctx *TypeContext, t TypeInstance) *Field {
	f := t.Field(ctx, "toString", ctx.ContextType())
	if f == nil {
		return nil
	}
	desc := f.Type.FunctionDescriptor(ctx)
	if desc == nil || len(desc.Params) != 0 || desc.Return != String {
		return nil
	}
	return f
}

// CheckStringConcat verifies that t can take part in a string concatenation
func CheckStringConcat(ctx *TypeContext, t TypeInstance, expr string, pos lexer.Position) error {
	if t == String || t == Null {
		return nil
	}
	if ToStringField(ctx, t) == nil {
		return Errorf(ErrToString, pos, "%s has no toString(): string member, required by %s", t, expr)
	}
	return nil
}
