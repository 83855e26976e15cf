package inst

import (
	"fmt"

	"plvm/pkg/mem"
)

// Closure is a function value: a body plus the activation it was created in.
// Invoking it builds a frame of Total whose parent is Env.
type Closure struct {
	Name   string
	Body   Instruction
	Env    *ActionContext // nil for host functions
	Total  mem.Total
	Params int

	// Defaults fill the trailing parameters a call leaves out. They run
	// in the callee frame, after the supplied arguments are stored.
	Defaults []Arg
}

// defaults returns the Defaults needed when supplied arguments are given
func (c *Closure) defaults(supplied int) []Arg {
	missing := c.Params - supplied
	if missing <= 0 || missing > len(c.Defaults) {
		return nil
	}
	return c.Defaults[len(c.Defaults)-missing:]
}

func (c *Closure) String() string {
	return "function " + c.Name
}

// MakeClosure captures the running activation
type MakeClosure struct {
	Name     string
	Body     Instruction
	Total    mem.Total
	Params   int
	Defaults []Arg
}

func (m *MakeClosure) Execute(ctx *ActionContext, exec *Execution) error {
	exec.Values.Ref = &Closure{
		Name:     m.Name,
		Body:     m.Body,
		Env:      ctx,
		Total:    m.Total,
		Params:   m.Params,
		Defaults: m.Defaults,
	}
	return nil
}

func (m *MakeClosure) StackInfo() *StackInfo { return nil }

// Arg evaluates one argument in the caller and stores it into the callee frame
type Arg struct {
	Value Instruction
	Store func(h *ValueHolder, m *RuntimeMemory)
}

// StoreArg returns the Arg.Store function for a slot of kind k
func StoreArg(k mem.Kind, index int) func(h *ValueHolder, m *RuntimeMemory) {
	switch k {
	case mem.KindInt:
		return func(h *ValueHolder, m *RuntimeMemory) { m.SetInt(index, h.Int) }
	case mem.KindLong:
		return func(h *ValueHolder, m *RuntimeMemory) { m.SetLong(index, h.Long) }
	case mem.KindFloat:
		return func(h *ValueHolder, m *RuntimeMemory) { m.SetFloat(index, h.Float) }
	case mem.KindDouble:
		return func(h *ValueHolder, m *RuntimeMemory) { m.SetDouble(index, h.Double) }
	case mem.KindBool:
		return func(h *ValueHolder, m *RuntimeMemory) { m.SetBool(index, h.Bool) }
	default:
		return func(h *ValueHolder, m *RuntimeMemory) { m.SetRef(index, h.Ref) }
	}
}

func storeArgs(args []Arg, ctx *ActionContext, frame *ActionContext, exec *Execution) error {
	for _, a := range args {
		if err := Run(a.Value, ctx, exec); err != nil {
			return err
		}
		a.Store(&exec.Values, frame.mem)
	}
	return nil
}

// fillDefaults evaluates default parameter values inside the callee frame
func fillDefaults(defaults []Arg, frame *ActionContext, exec *Execution) error {
	return storeArgs(defaults, frame, frame, exec)
}

// Invoke calls the closure produced by Fn. The callee runs in its own
// activation, so its return signal never reaches the caller.
type Invoke struct {
	Info
	Fn   Instruction
	Args []Arg
}

func (i *Invoke) Execute(ctx *ActionContext, exec *Execution) error {
	if err := Run(i.Fn, ctx, exec); err != nil {
		return err
	}
	fn, ok := exec.Values.Ref.(*Closure)
	if !ok || fn == nil {
		return fmt.Errorf("%w: invoking a null function", ErrNullPointer)
	}

	frame := NewActionContext(fn.Total, fn.Env)
	if err := storeArgs(i.Args, ctx, frame, exec); err != nil {
		return err
	}
	if err := fillDefaults(fn.defaults(len(i.Args)), frame, exec); err != nil {
		return err
	}
	return exec.call(fn.Body, frame)
}

// NewInstance builds an object: a frame of Total whose parent is the frame
// the class was declared in (Depth links up), filled by the constructor body.
// Body is looked up at run time because a class may instantiate itself.
type NewInstance struct {
	Info
	Depth    int
	Args     []Arg
	Defaults []Arg // values of the parameters Args leaves out
	Total    func() mem.Total
	Body     func() Instruction
}

func (n *NewInstance) Execute(ctx *ActionContext, exec *Execution) error {
	frame := NewActionContext(n.Total(), ctx.Context(n.Depth))
	if err := storeArgs(n.Args, ctx, frame, exec); err != nil {
		return err
	}
	if err := fillDefaults(n.Defaults, frame, exec); err != nil {
		return err
	}
	if err := exec.call(n.Body(), frame); err != nil {
		return err
	}
	exec.Values.Ref = frame
	return nil
}

// NewNative calls a host constructor: the body reads the arguments from
// its own frame and leaves the new value in the holder.
type NewNative struct {
	Info
	Args  []Arg
	Total mem.Total
	Body  Instruction
}

func (n *NewNative) Execute(ctx *ActionContext, exec *Execution) error {
	frame := NewActionContext(n.Total, nil)
	if err := storeArgs(n.Args, ctx, frame, exec); err != nil {
		return err
	}
	return Run(n.Body, frame, exec)
}

// Method builds the field instruction of a host method. The receiver is
// read from the holder when the field is accessed and bound into the
// returned closure; body reads arguments from the invocation frame.
func Method[R any](name string, info *StackInfo, total mem.Total, recv func(h *ValueHolder) (R, error),
	body func(r R, args *RuntimeMemory, exec *Execution) error) Instruction {
	return Func(func(_ *ActionContext, exec *Execution) error {
		r, err := recv(&exec.Values)
		if err != nil {
			return err
		}
		exec.Values.Ref = &Closure{
			Name:  name,
			Body:  &native[R]{Info: Info{Stack: info}, r: r, body: body},
			Total: total,
		}
		return nil
	})
}

type native[R any] struct {
	Info
	r    R
	body func(r R, args *RuntimeMemory, exec *Execution) error
}

func (n *native[R]) Execute(ctx *ActionContext, exec *Execution) error {
	return n.body(n.r, ctx.mem, exec)
}

// Receiver reads a reference receiver of type R out of the holder
func Receiver[R any](h *ValueHolder) (R, error) {
	r, ok := h.Ref.(R)
	if !ok || h.Ref == nil {
		var zero R
		return zero, ErrNullPointer
	}
	return r, nil
}
