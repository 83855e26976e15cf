package types

import (
	"strings"

	"plvm/pkg/inst"
	"plvm/pkg/lexer"
	"plvm/pkg/mem"
)

// ScopeKind classifies the syntax node that opened a TypeContext
type ScopeKind int

const (
	ScopeBlock ScopeKind = iota
	ScopeScript
	ScopeFunction
	ScopeClass
	ScopeLoop
	ScopeCatch
	ScopeTemplate
)

// ScopeNode is the syntax node a child context is opened for.
// Nodes that also implement AllocatorProvider get their own frame.
type ScopeNode interface {
	ScopeKind() ScopeKind
	ScopeName() string
}

// AllocatorProvider is implemented by functions and classes: every
// invocation of them runs in a frame sized by their allocator.
type AllocatorProvider interface {
	MemoryAllocator() *mem.Allocator
}

// registry holds everything interned for one compilation
type registry struct {
	descriptors []*FunctionDescriptor
	functions   map[*FunctionDescriptor]*FunctionType
	arrays      map[TypeInstance]*ArrayType
	concrete    map[TypeInstance][]instantiation
}

type instantiation struct {
	params []TypeInstance
	typ    TypeInstance
}

// TypeContext is one lexical scope of the checker.
type TypeContext struct {
	parent      *TypeContext
	reg         *registry
	node        ScopeNode
	contextType TypeInstance
	alloc       *mem.Allocator
	depth       int

	types map[string]TypeInstance
	vars  map[string]*Variable
	order []*Variable
}

// NewRootContext creates the built-in scope of a compilation
func NewRootContext() *TypeContext {
	root := &TypeContext{
		reg: &registry{
			functions: make(map[*FunctionDescriptor]*FunctionType),
			arrays:    make(map[TypeInstance]*ArrayType),
			concrete:  make(map[TypeInstance][]instantiation),
		},
		depth: -1,
		types: make(map[string]TypeInstance),
		vars:  make(map[string]*Variable),
	}

	for _, t := range []TypeInstance{Int, Long, Float, Double, String, Bool, Void, Error} {
		root.types[t.String()] = t
	}

	return root
}

// NewGlobalContext creates the top level scope, memory depth 0, using alloc
// for the script frame
func NewGlobalContext(root *TypeContext, alloc *mem.Allocator) *TypeContext {
	return &TypeContext{
		parent: root,
		reg:    root.reg,
		alloc:  alloc,
		depth:  0,
		types:  make(map[string]TypeInstance),
		vars:   make(map[string]*Variable),
	}
}

// Child opens a scope for node. Function and class nodes start a new frame.
func (c *TypeContext) Child(node ScopeNode) *TypeContext {
	child := &TypeContext{
		parent:      c,
		reg:         c.reg,
		node:        node,
		contextType: c.contextType,
		alloc:       c.alloc,
		depth:       c.depth,
		types:       make(map[string]TypeInstance),
		vars:        make(map[string]*Variable),
	}

	if p, ok := node.(AllocatorProvider); ok {
		child.alloc = p.MemoryAllocator()
		child.depth++
	}

	return child
}

func (c *TypeContext) Parent() *TypeContext {
	return c.parent
}

func (c *TypeContext) Node() ScopeNode {
	return c.node
}

func (c *TypeContext) MemoryDepth() int {
	return c.depth
}

func (c *TypeContext) MemoryAllocator() *mem.Allocator {
	return c.alloc
}

// ContextType is the class whose body encloses this scope, nil outside classes
func (c *TypeContext) ContextType() TypeInstance {
	return c.contextType
}

func (c *TypeContext) SetContextType(t TypeInstance) {
	c.contextType = t
}

func (c *TypeContext) HasType(name string) bool {
	return c.lookupType(name) != nil
}

func (c *TypeContext) HasTypeInThisContext(name string) bool {
	_, ok := c.types[name]
	return ok
}

func (c *TypeContext) lookupType(name string) TypeInstance {
	for cur := c; cur != nil; cur = cur.parent {
		if t, ok := cur.types[name]; ok {
			return t
		}
	}
	return nil
}

// GetType resolves a type name, "T[]" names resolve to array types
func (c *TypeContext) GetType(name string) (TypeInstance, error) {
	if elem, ok := strings.CutSuffix(name, "[]"); ok {
		t, err := c.GetType(elem)
		if err != nil {
			return nil, err
		}
		return c.ArrayType(t), nil
	}

	if t := c.lookupType(name); t != nil {
		return t, nil
	}
	return nil, Errorf(ErrUndefinedType, lexer.Position{}, "%s", name)
}

// AddType binds name in this scope only
func (c *TypeContext) AddType(name string, t TypeInstance) error {
	if c.HasTypeInThisContext(name) {
		return Errorf(ErrTypeAlreadyDefined, lexer.Position{}, "%s", name)
	}
	c.types[name] = t
	return nil
}

func (c *TypeContext) HasVariable(name string) bool {
	return c.lookupVariable(name) != nil
}

func (c *TypeContext) HasVariableInThisContext(name string) bool {
	_, ok := c.vars[name]
	return ok
}

func (c *TypeContext) lookupVariable(name string) *Variable {
	for cur := c; cur != nil; cur = cur.parent {
		if v, ok := cur.vars[name]; ok {
			return v
		}
	}
	return nil
}

func (c *TypeContext) GetVariable(name string) (*Variable, error) {
	if v := c.lookupVariable(name); v != nil {
		return v, nil
	}
	return nil, Errorf(ErrUndefinedVariable, lexer.Position{}, "%s", name)
}

// LocalVariable returns the variable bound in this scope only, nil if absent
func (c *TypeContext) LocalVariable(name string) *Variable {
	return c.vars[name]
}

// AddVariable binds v in this scope only
func (c *TypeContext) AddVariable(v *Variable) error {
	if c.HasVariableInThisContext(v.Name) {
		return Errorf(ErrVariableAlreadyDefined, lexer.Position{}, "%s", v.Name)
	}
	c.vars[v.Name] = v
	c.order = append(c.order, v)
	return nil
}

// Variables returns the variables of this scope in declaration order
func (c *TypeContext) Variables() []*Variable {
	return append([]*Variable(nil), c.order...)
}

// FunctionDescriptor returns the interned descriptor for the signature
func (c *TypeContext) FunctionDescriptor(params []Param, ret TypeInstance, provider mem.Provider) *FunctionDescriptor {
	desc := &FunctionDescriptor{Params: params, Return: ret, Mem: provider}
	for _, d := range c.reg.descriptors {
		if d.equal(desc) {
			return d
		}
	}
	c.reg.descriptors = append(c.reg.descriptors, desc)
	return desc
}

// FunctionType returns the type of function values with descriptor desc
func (c *TypeContext) FunctionType(desc *FunctionDescriptor) *FunctionType {
	if t, ok := c.reg.functions[desc]; ok {
		return t
	}
	t := &FunctionType{desc: desc}
	c.reg.functions[desc] = t
	return t
}

// ArrayType returns the interned array type of elem
func (c *TypeContext) ArrayType(elem TypeInstance) *ArrayType {
	if t, ok := c.reg.arrays[elem]; ok {
		return t
	}
	t := &ArrayType{elem: elem}
	c.reg.arrays[elem] = t
	return t
}

// Instantiation returns the concrete type registered for template and
// params, nil if there is none yet
func (c *TypeContext) Instantiation(template TypeInstance, params []TypeInstance) TypeInstance {
	for _, in := range c.reg.concrete[template] {
		if sameTypes(in.params, params) {
			return in.typ
		}
	}
	return nil
}

// AddInstantiation registers t as the concrete type of template for params.
// Register before checking the instantiated body so it can refer to itself.
func (c *TypeContext) AddInstantiation(template TypeInstance, params []TypeInstance, t TypeInstance) {
	c.reg.concrete[template] = append(c.reg.concrete[template], instantiation{
		params: append([]TypeInstance(nil), params...),
		typ:    t,
	})
}

func sameTypes(a, b []TypeInstance) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Nearest returns the closest scope (c included) whose node is of one of kinds
func (c *TypeContext) Nearest(kinds ...ScopeKind) *TypeContext {
	for cur := c; cur != nil; cur = cur.parent {
		if cur.node == nil {
			continue
		}
		for _, k := range kinds {
			if cur.node.ScopeKind() == k {
				return cur
			}
		}
	}
	return nil
}

// LoopDepth counts the loops enclosing c inside the current function
func (c *TypeContext) LoopDepth() int {
	n := 0
	for cur := c; cur != nil && cur.node != nil; cur = cur.parent {
		switch cur.node.ScopeKind() {
		case ScopeLoop:
			n++
		case ScopeFunction, ScopeClass, ScopeScript:
			return n
		}
	}
	return n
}

// StackInfo tags an instruction with the enclosing class and function names.
// A function declared around the class (not inside it) is not reported.
func (c *TypeContext) StackInfo(pos lexer.Position) *inst.StackInfo {
	info := &inst.StackInfo{Pos: pos}
	fn := c.Nearest(ScopeFunction)
	cls := c.Nearest(ScopeClass)
	if cls != nil {
		info.Class = cls.node.ScopeName()
	}
	if fn != nil && (cls == nil || cls.depth < fn.depth) {
		info.Function = fn.node.ScopeName()
	}
	return info
}

// Statement is what CheckStatements needs from a statement node
type Statement interface {
	Check(ctx *TypeContext) error
	Terminates() bool
	Position() lexer.Position
}

// CheckStatements checks stmts in order and rejects anything that follows
// a statement after which control never continues
func CheckStatements[S Statement](ctx *TypeContext, stmts []S) error {
	for i, stmt := range stmts {
		if err := stmt.Check(ctx); err != nil {
			return err
		}
		if stmt.Terminates() && i+1 < len(stmts) {
			return Errorf(ErrUnreachable, stmts[i+1].Position(), "no statement may follow %v", stmt)
		}
	}
	return nil
}
