package ast

import (
	"strings"

	"plvm/pkg/inst"
	"plvm/pkg/lexer"
	"plvm/pkg/mem"
	"plvm/pkg/types"
)

// TemplateClassDefinition declares a generic class: "template<T> class Box(v: T) {...}".
// The body is only checked per instantiation.
type TemplateClassDefinition struct {
	Pos        lexer.Position
	TypeParams []string
	Class      *ClassDefinition

	typ    *TemplateClassType
	defCtx *types.TypeContext
}

func (t *TemplateClassDefinition) Check(ctx *types.TypeContext) error {
	seen := make(map[string]bool, len(t.TypeParams))
	for _, name := range t.TypeParams {
		if seen[name] {
			return types.Errorf(types.ErrTypeAlreadyDefined, t.Pos, "type parameter %s", name)
		}
		seen[name] = true
	}

	t.defCtx = ctx
	t.typ = &TemplateClassType{def: t}
	return at(t.Pos, ctx.AddType(t.Class.Name, t.typ))
}

func (t *TemplateClassDefinition) GenerateInstruction() inst.Instruction { return inst.Nop{} }
func (t *TemplateClassDefinition) Terminates() bool                      { return false }
func (t *TemplateClassDefinition) Position() lexer.Position              { return t.Pos }

func (t *TemplateClassDefinition) Copy() Statement {
	return &TemplateClassDefinition{
		Pos:        t.Pos,
		TypeParams: append([]string(nil), t.TypeParams...),
		Class:      t.Class.copy(),
	}
}

func (t *TemplateClassDefinition) String() string {
	return "template<" + strings.Join(t.TypeParams, ", ") + "> " + t.Class.String()
}

// TemplateClassType is the type named by a template declaration. It has
// no members itself; Concrete produces the class for a parameter list.
type TemplateClassType struct {
	types.Base
	def *TemplateClassDefinition
}

func (t *TemplateClassType) String() string {
	return t.def.Class.Name
}

func (t *TemplateClassType) TypeParameters() []string {
	return t.def.TypeParams
}

// Concrete returns the class for params. Every parameter list is
// instantiated once: a copy of the class is checked with each type
// parameter bound in a scope of its own, then lowered.
func (t *TemplateClassType) Concrete(ctx *types.TypeContext, params []types.TypeInstance) (types.TypeInstance, error) {
	if len(params) != len(t.def.TypeParams) {
		return nil, types.ErrTemplateParams
	}
	if c := ctx.Instantiation(t, params); c != nil {
		return c, nil
	}

	names := make([]string, len(params))
	for i, p := range params {
		names[i] = p.String()
	}

	cls := t.def.Class.copy()
	cls.Name = cls.Name + "<" + strings.Join(names, ", ") + ">"
	cls.alloc = mem.NewAllocator()
	cls.typ = &ClassType{def: cls, template: t, params: append([]types.TypeInstance(nil), params...)}

	bound := t.def.defCtx.Child(scope{kind: types.ScopeTemplate})
	for i, name := range t.def.TypeParams {
		if err := bound.AddType(name, params[i]); err != nil {
			return nil, at(t.def.Pos, err)
		}
	}

	ctx.AddInstantiation(t, params, cls.typ)
	if err := cls.checkBody(bound); err != nil {
		return nil, err
	}
	cls.GenerateInstruction()
	return cls.typ, nil
}

// TemplateTypeInstantiation names a concrete template type: "let IntList = std.List<int>;"
type TemplateTypeInstantiation struct {
	Pos  lexer.Position
	Name string
	Type *TypeRef
}

func (t *TemplateTypeInstantiation) Check(ctx *types.TypeContext) error {
	if ctx.HasTypeInThisContext(t.Name) {
		return types.Errorf(types.ErrTypeAlreadyDefined, t.Pos, "%s", t.Name)
	}
	if len(t.Type.Params) == 0 {
		return types.Errorf(types.ErrTemplateParams, t.Pos, "%s is not a template instantiation", t.Type)
	}
	typ, err := t.Type.Resolve(ctx)
	if err != nil {
		return err
	}
	return at(t.Pos, ctx.AddType(t.Name, typ))
}

func (t *TemplateTypeInstantiation) GenerateInstruction() inst.Instruction { return inst.Nop{} }
func (t *TemplateTypeInstantiation) Terminates() bool                      { return false }
func (t *TemplateTypeInstantiation) Position() lexer.Position              { return t.Pos }

func (t *TemplateTypeInstantiation) Copy() Statement {
	return &TemplateTypeInstantiation{Pos: t.Pos, Name: t.Name, Type: t.Type.Copy()}
}

func (t *TemplateTypeInstantiation) String() string {
	return "let " + t.Name + " = " + t.Type.String() + ";"
}
