package inst

import "plvm/pkg/mem"

// ActionContext is an activation: its frame, the lexically enclosing
// activation, and the control signals of the sequence running in it.
type ActionContext struct {
	mem    *RuntimeMemory // frame owned by this activation
	parent *ActionContext // lexically enclosing activation, nil at the top

	ReturnImmediately   bool // set by return, cleared with the activation
	BreakImmediately    int  // loop levels still to break out of
	ContinueImmediately int  // loop levels still to continue
}

// NewActionContext creates an activation with a fresh frame shaped by total
func NewActionContext(total mem.Total, parent *ActionContext) *ActionContext {
	return &ActionContext{
		mem:    NewRuntimeMemory(total),
		parent: parent,
	}
}

// Parent returns the lexically enclosing activation
func (c *ActionContext) Parent() *ActionContext {
	return c.parent
}

// Context walks depth parent links, 0 being c itself
func (c *ActionContext) Context(depth int) *ActionContext {
	cur := c
	for range depth {
		cur = cur.parent
	}
	return cur
}

// Mem returns the frame depth parent links away
func (c *ActionContext) Mem(depth int) *RuntimeMemory {
	return c.Context(depth).mem
}

// CurrentMem returns the frame of this activation
func (c *ActionContext) CurrentMem() *RuntimeMemory {
	return c.mem
}

// NeedReturn reports whether the running sequence must stop
func (c *ActionContext) NeedReturn() bool {
	return c.ReturnImmediately || c.BreakImmediately > 0 || c.ContinueImmediately > 0
}

// String is used when an object ends up in a host collection rendering
func (c *ActionContext) String() string {
	return "object"
}
