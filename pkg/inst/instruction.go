package inst

// Instruction is one immutable node of a compiled program.
type Instruction interface {
	Execute(ctx *ActionContext, exec *Execution) error
	StackInfo() *StackInfo
}

// Info carries the optional diagnostics tag of an instruction.
// Leaves that are cheap and cannot fail leave it nil.
type Info struct {
	Stack *StackInfo
}

func (i Info) StackInfo() *StackInfo {
	return i.Stack
}

// Func adapts a function to an Instruction without stack info
type Func func(ctx *ActionContext, exec *Execution) error

func (f Func) Execute(ctx *ActionContext, exec *Execution) error {
	return f(ctx, exec)
}

func (f Func) StackInfo() *StackInfo {
	return nil
}

// Nop does nothing, used for declarations without run-time effect
type Nop struct{}

func (Nop) Execute(*ActionContext, *Execution) error { return nil }
func (Nop) StackInfo() *StackInfo                    { return nil }

// Composite runs its children in order and stops as soon as one of them
// raises a return, break or continue signal.
type Composite struct {
	Info
	Children []Instruction
}

func (c *Composite) Execute(ctx *ActionContext, exec *Execution) error {
	for _, child := range c.Children {
		if err := Run(child, ctx, exec); err != nil {
			return err
		}
		if ctx.NeedReturn() {
			return nil
		}
	}
	return nil
}

// Literal loads a constant into the holder
type Literal[T any] struct {
	Acc   Accessor[T]
	Value T
}

func (l *Literal[T]) Execute(_ *ActionContext, exec *Execution) error {
	l.Acc.Put(&exec.Values, l.Value)
	return nil
}

func (l *Literal[T]) StackInfo() *StackInfo { return nil }

// GetVar loads a variable Depth frames up
type GetVar[T any] struct {
	Acc   Accessor[T]
	Depth int
	Index int
}

func (g *GetVar[T]) Execute(ctx *ActionContext, exec *Execution) error {
	g.Acc.Put(&exec.Values, g.Acc.Load(ctx.Mem(g.Depth), g.Index))
	return nil
}

func (g *GetVar[T]) StackInfo() *StackInfo { return nil }

// SetVar evaluates Value and stores it Depth frames up
type SetVar[T any] struct {
	Acc   Accessor[T]
	Depth int
	Index int
	Value Instruction
}

func (s *SetVar[T]) Execute(ctx *ActionContext, exec *Execution) error {
	if err := Run(s.Value, ctx, exec); err != nil {
		return err
	}
	s.Acc.Store(ctx.Mem(s.Depth), s.Index, s.Acc.Get(&exec.Values))
	return nil
}

func (s *SetVar[T]) StackInfo() *StackInfo { return nil }

// Frame is the object frame read out of the holder
func Frame(exec *Execution) (*ActionContext, error) {
	obj, ok := exec.Values.Ref.(*ActionContext)
	if !ok || obj == nil {
		return nil, ErrNullPointer
	}
	return obj, nil
}

// GetField evaluates Object and loads a slot of its frame
type GetField[T any] struct {
	Info
	Acc    Accessor[T]
	Object Instruction
	Index  int
}

func (g *GetField[T]) Execute(ctx *ActionContext, exec *Execution) error {
	if err := Run(g.Object, ctx, exec); err != nil {
		return err
	}
	obj, err := Frame(exec)
	if err != nil {
		return err
	}
	g.Acc.Put(&exec.Values, g.Acc.Load(obj.mem, g.Index))
	return nil
}

// SetField evaluates Object then Value and stores into the object frame
type SetField[T any] struct {
	Info
	Acc    Accessor[T]
	Object Instruction
	Index  int
	Value  Instruction
}

func (s *SetField[T]) Execute(ctx *ActionContext, exec *Execution) error {
	if err := Run(s.Object, ctx, exec); err != nil {
		return err
	}
	obj, err := Frame(exec)
	if err != nil {
		return err
	}
	if err := Run(s.Value, ctx, exec); err != nil {
		return err
	}
	s.Acc.Store(obj.mem, s.Index, s.Acc.Get(&exec.Values))
	return nil
}

// UpdateField applies Op to a field and the value of Rhs, evaluating Object once
type UpdateField[T any] struct {
	Info
	Acc    Accessor[T]
	Object Instruction
	Index  int
	Op     func(a, b T) (T, error)
	Rhs    Instruction
}

func (u *UpdateField[T]) Execute(ctx *ActionContext, exec *Execution) error {
	if err := Run(u.Object, ctx, exec); err != nil {
		return err
	}
	obj, err := Frame(exec)
	if err != nil {
		return err
	}
	if err := Run(u.Rhs, ctx, exec); err != nil {
		return err
	}
	v, err := u.Op(u.Acc.Load(obj.mem, u.Index), u.Acc.Get(&exec.Values))
	if err != nil {
		return err
	}
	u.Acc.Store(obj.mem, u.Index, v)
	return nil
}

// ExecutableField evaluates Receiver and then the native Field on it
type ExecutableField struct {
	Info
	Receiver Instruction
	Field    Instruction
}

func (e *ExecutableField) Execute(ctx *ActionContext, exec *Execution) error {
	if err := Run(e.Receiver, ctx, exec); err != nil {
		return err
	}
	return Run(e.Field, ctx, exec)
}
