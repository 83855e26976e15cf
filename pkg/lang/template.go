package lang

import (
	"strings"

	"plvm/pkg/lexer"
	"plvm/pkg/mem"
	"plvm/pkg/types"
)

// Template is a built-in generic type such as std.List. Each distinct
// parameter list is built once per compilation.
type Template struct {
	types.Base
	name   string
	params []string
	build  func(ctx *types.TypeContext, t *Template, params []types.TypeInstance) types.TypeInstance
}

func (t *Template) String() string           { return t.name }
func (t *Template) TypeParameters() []string { return t.params }

func (t *Template) Concrete(ctx *types.TypeContext, params []types.TypeInstance) (types.TypeInstance, error) {
	if len(params) != len(t.params) {
		return nil, types.ErrTemplateParams
	}
	for _, p := range params {
		if p.Kind() == mem.KindNone || p == types.Null {
			return nil, types.Errorf(types.ErrTemplateParams, lexer.Position{}, "%s cannot hold %s", t.name, p)
		}
		if len(p.TypeParameters()) > 0 {
			return nil, types.Errorf(types.ErrTemplateParams, lexer.Position{}, "%s needs type parameters", p)
		}
	}
	if c := ctx.Instantiation(t, params); c != nil {
		return c, nil
	}
	c := t.build(ctx, t, params)
	ctx.AddInstantiation(t, params, c)
	return c, nil
}

// concrete is the part every instantiated collection shares
type concrete struct {
	types.Base
	template *Template
	params   []types.TypeInstance
}

func (c *concrete) TemplateType() types.TypeInstance         { return c.template }
func (c *concrete) TemplateTypeParams() []types.TypeInstance { return c.params }

func (c *concrete) String() string {
	names := make([]string, len(c.params))
	for i, p := range c.params {
		names[i] = p.String()
	}
	return c.template.name + "<" + strings.Join(names, ", ") + ">"
}

// constructor is the descriptor of the parameterless constructors
func constructor(ctx *types.TypeContext) *types.FunctionDescriptor {
	_, fixed := types.Signature()
	return ctx.FunctionDescriptor(nil, types.Void, fixed)
}

// instantiate builds a collection type that a member returns
func instantiate(ctx *types.TypeContext, t *Template, params ...types.TypeInstance) types.TypeInstance {
	c, err := t.Concrete(ctx, params)
	if err != nil {
		return nil
	}
	return c
}
