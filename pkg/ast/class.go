package ast

import (
	"fmt"
	"strings"

	"plvm/pkg/inst"
	"plvm/pkg/lexer"
	"plvm/pkg/mem"
	"plvm/pkg/types"
)

// ClassDefinition declares a class. The constructor parameters and the
// variables of the body are the fields of each instance; the body runs in
// the object frame when an instance is built.
type ClassDefinition struct {
	Pos    lexer.Position
	Name   string
	Params []*ParamDef
	Body   []Statement

	alloc  *mem.Allocator
	typ    *ClassType
	params []types.Param
	ctor   *types.FunctionDescriptor
	defCtx *types.TypeContext // scope the class is declared in
	ctx    *types.TypeContext // scope of the class body
	body   inst.Instruction
}

func (c *ClassDefinition) ScopeKind() types.ScopeKind      { return types.ScopeClass }
func (c *ClassDefinition) ScopeName() string               { return c.Name }
func (c *ClassDefinition) MemoryAllocator() *mem.Allocator { return c.alloc }

func (c *ClassDefinition) Check(ctx *types.TypeContext) error {
	c.alloc = mem.NewAllocator()
	c.typ = &ClassType{def: c}
	if err := ctx.AddType(c.Name, c.typ); err != nil {
		return at(c.Pos, err)
	}
	return c.checkBody(ctx)
}

// checkBody checks the class in ctx once its type is known
func (c *ClassDefinition) checkBody(ctx *types.TypeContext) error {
	c.defCtx = ctx
	inner := ctx.Child(c)
	inner.SetContextType(c.typ)
	c.ctx = inner

	params, err := declareParams(ctx, inner, c.alloc, c.Params)
	if err != nil {
		return err
	}
	c.params = params
	c.ctor = ctx.FunctionDescriptor(params, types.Void, c.alloc)
	return types.CheckStatements(inner, c.Body)
}

// Type is the class type, nil before Check
func (c *ClassDefinition) Type() *ClassType {
	return c.typ
}

// GenerateInstruction lowers the constructor body. Declaring a class has
// no run-time effect of its own.
func (c *ClassDefinition) GenerateInstruction() inst.Instruction {
	c.body = block(c.Body)
	return inst.Nop{}
}

func (c *ClassDefinition) Terminates() bool         { return false }
func (c *ClassDefinition) Position() lexer.Position { return c.Pos }

func (c *ClassDefinition) Copy() Statement {
	return c.copy()
}

func (c *ClassDefinition) copy() *ClassDefinition {
	return &ClassDefinition{
		Pos:    c.Pos,
		Name:   c.Name,
		Params: copyParams(c.Params),
		Body:   copyStatements(c.Body),
	}
}

func (c *ClassDefinition) String() string {
	return fmt.Sprintf("class %s(%s) { ... }", c.Name, paramList(c.Params))
}

// ClassType is the type of the instances of a class. Instances of a
// template are classes tagged with the template and its arguments.
type ClassType struct {
	types.Base
	def      *ClassDefinition
	template types.TypeInstance
	params   []types.TypeInstance
}

func (t *ClassType) String() string {
	return t.def.Name
}

func (t *ClassType) Constructor(*types.TypeContext) *types.FunctionDescriptor {
	return t.def.ctor
}

func (t *ClassType) TemplateType() types.TypeInstance {
	return t.template
}

func (t *ClassType) TemplateTypeParams() []types.TypeInstance {
	return t.params
}

// Field finds a member declared in the class body or a constructor
// parameter. Private members are only visible from inside the class.
func (t *ClassType) Field(ctx *types.TypeContext, name string, accessFrom types.TypeInstance) *types.Field {
	if t.def.ctx == nil {
		return nil
	}
	v := t.def.ctx.LocalVariable(name)
	if v == nil {
		return nil
	}
	if !v.Modifiers.IsPublic() && accessFrom != types.TypeInstance(t) {
		return nil
	}

	f := &types.Field{Name: v.Name, Type: v.Type, Pos: v.Pos, Modifiable: v.Modifiable}
	if v.Modifiers.Has(types.ModExecutable) {
		if desc := v.Type.FunctionDescriptor(ctx); desc != nil && len(desc.Params) == 0 {
			f.Executable = true
		}
	}
	return f
}

// Members returns the variables of the class body in declaration order
func (t *ClassType) Members() []*types.Variable {
	if t.def.ctx == nil {
		return nil
	}
	return t.def.ctx.Variables()
}

// NewInstance builds an object of a class or a host type: "new Point(1, 2)"
type NewInstance struct {
	Pos  lexer.Position
	Type *TypeRef
	Args []Expr

	typ   types.TypeInstance
	desc  *types.FunctionDescriptor
	depth int
	info  *inst.StackInfo
}

func (n *NewInstance) Check(ctx *types.TypeContext, _ types.TypeInstance) (types.TypeInstance, error) {
	n.info = ctx.StackInfo(n.Pos)
	n.depth = ctx.MemoryDepth()

	t, err := n.Type.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	if len(t.TypeParameters()) > 0 {
		return nil, types.Errorf(types.ErrTemplateParams, n.Pos, "%s needs type parameters", t)
	}
	n.desc = t.Constructor(ctx)
	if n.desc == nil {
		return nil, types.Errorf(types.ErrNotCallable, n.Pos, "%s cannot be constructed", t)
	}
	if err := checkArgs(ctx, n.Pos, "new "+t.String(), n.desc, n.Args); err != nil {
		return nil, err
	}
	n.typ = t
	return t, nil
}

func (n *NewInstance) TypeInstance() types.TypeInstance { return n.typ }
func (n *NewInstance) Position() lexer.Position         { return n.Pos }

func (n *NewInstance) GenerateInstruction() inst.Instruction {
	args := generateArgs(n.desc, n.Args)
	if c, ok := n.typ.(types.Constructible); ok {
		return &inst.NewNative{
			Info:  inst.Info{Stack: n.info},
			Args:  args,
			Total: n.desc.Mem.MemoryTotal(),
			Body:  c.Construct(),
		}
	}

	def := n.typ.(*ClassType).def
	given := len(n.Args)
	return &inst.NewInstance{
		Info:     inst.Info{Stack: n.info},
		Depth:    n.depth - def.defCtx.MemoryDepth(),
		Args:     args,
		Defaults: defaultArgs(def.Params[given:], def.params[given:]),
		Total:    def.alloc.Total,
		Body:     func() inst.Instruction { return def.body },
	}
}

func (n *NewInstance) Copy() Expr {
	return &NewInstance{Pos: n.Pos, Type: n.Type.Copy(), Args: copyExprs(n.Args)}
}

func (n *NewInstance) String() string {
	args := make([]string, len(n.Args))
	for i, a := range n.Args {
		args[i] = a.String()
	}
	return "new " + n.Type.String() + "(" + strings.Join(args, ", ") + ")"
}

// ObjectLiteral builds an object from named constructor arguments:
// "new Line { from: { x: 1, y: 2 }, to: p, tags: ["a"] }". A key matches
// the parameter of the same name, ignoring one leading underscore. Type is
// nil for a nested literal, which takes the type its position expects.
type ObjectLiteral struct {
	Pos     lexer.Position
	Type    *TypeRef
	Entries []*ObjectEntry

	typ     types.TypeInstance
	desc    *types.FunctionDescriptor
	args    []inst.Arg
	missing []int // parameters left to their default values
	depth   int
	info    *inst.StackInfo
}

type ObjectEntry struct {
	Pos   lexer.Position
	Key   string
	Value Expr

	param int
}

func (o *ObjectLiteral) Check(ctx *types.TypeContext, hint types.TypeInstance) (types.TypeInstance, error) {
	o.info = ctx.StackInfo(o.Pos)
	o.depth = ctx.MemoryDepth()

	t := hint
	if o.Type != nil {
		var err error
		if t, err = o.Type.Resolve(ctx); err != nil {
			return nil, err
		}
	}
	if t == nil {
		return nil, types.Errorf(types.ErrTypeMismatch, o.Pos, "type of object literal is unknown, use new T { ... }")
	}
	if len(t.TypeParameters()) > 0 {
		return nil, types.Errorf(types.ErrTemplateParams, o.Pos, "%s needs type parameters", t)
	}
	o.desc = t.Constructor(ctx)
	if o.desc == nil {
		return nil, types.Errorf(types.ErrNotCallable, o.Pos, "%s cannot be constructed", t)
	}

	given := make([]bool, len(o.desc.Params))
	for _, e := range o.Entries {
		i := paramNamed(o.desc, e.Key)
		if i < 0 {
			return nil, types.Errorf(types.ErrNoSuchField, e.Pos, "%s has no parameter %s", t, e.Key)
		}
		if given[i] {
			return nil, types.Errorf(types.ErrVariableAlreadyDefined, e.Pos, "%s is given twice", e.Key)
		}
		given[i] = true
		e.param = i

		want := o.desc.Params[i].Type
		got, err := e.Value.Check(ctx, want)
		if err != nil {
			return nil, err
		}
		if !types.AssignableFrom(want, got) {
			return nil, mismatch(e.Value.Position(), want, got, "field "+e.Key+" of "+t.String())
		}
	}

	o.missing = o.missing[:0]
	for i, p := range o.desc.Params {
		if given[i] {
			continue
		}
		if !p.Optional {
			return nil, types.Errorf(types.ErrArity, o.Pos, "missing argument for parameter %s of %s", p.Name, t)
		}
		o.missing = append(o.missing, i)
	}
	o.typ = t
	return t, nil
}

func paramNamed(desc *types.FunctionDescriptor, key string) int {
	key = strings.TrimPrefix(key, "_")
	for i, p := range desc.Params {
		if strings.TrimPrefix(p.Name, "_") == key {
			return i
		}
	}
	return -1
}

func (o *ObjectLiteral) TypeInstance() types.TypeInstance { return o.typ }
func (o *ObjectLiteral) Position() lexer.Position         { return o.Pos }

func (o *ObjectLiteral) GenerateInstruction() inst.Instruction {
	args := make([]inst.Arg, len(o.Entries))
	for i, e := range o.Entries {
		p := o.desc.Params[e.param]
		args[i] = inst.Arg{Value: e.Value.GenerateInstruction(), Store: inst.StoreArg(p.Type.Kind(), p.Index)}
	}
	if c, ok := o.typ.(types.Constructible); ok {
		return &inst.NewNative{
			Info:  inst.Info{Stack: o.info},
			Args:  args,
			Total: o.desc.Mem.MemoryTotal(),
			Body:  c.Construct(),
		}
	}

	def := o.typ.(*ClassType).def
	defs := make([]*ParamDef, len(o.missing))
	params := make([]types.Param, len(o.missing))
	for i, m := range o.missing {
		defs[i], params[i] = def.Params[m], def.params[m]
	}
	return &inst.NewInstance{
		Info:     inst.Info{Stack: o.info},
		Depth:    o.depth - def.defCtx.MemoryDepth(),
		Args:     args,
		Defaults: defaultArgs(defs, params),
		Total:    def.alloc.Total,
		Body:     func() inst.Instruction { return def.body },
	}
}

func (o *ObjectLiteral) Copy() Expr {
	out := &ObjectLiteral{Pos: o.Pos, Entries: make([]*ObjectEntry, len(o.Entries))}
	if o.Type != nil {
		out.Type = o.Type.Copy()
	}
	for i, e := range o.Entries {
		out.Entries[i] = &ObjectEntry{Pos: e.Pos, Key: e.Key, Value: e.Value.Copy()}
	}
	return out
}

func (o *ObjectLiteral) String() string {
	entries := make([]string, len(o.Entries))
	for i, e := range o.Entries {
		entries[i] = e.Key + ": " + e.Value.String()
	}
	s := "{ " + strings.Join(entries, ", ") + " }"
	if o.Type != nil {
		s = "new " + o.Type.String() + " " + s
	}
	return s
}
