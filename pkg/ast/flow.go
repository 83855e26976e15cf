package ast

import (
	"fmt"

	"plvm/pkg/inst"
	"plvm/pkg/lexer"
	"plvm/pkg/mem"
	"plvm/pkg/types"
)

// checkCondition checks e as the condition of an if or a loop
func checkCondition(ctx *types.TypeContext, e Expr, what string) error {
	t, err := e.Check(ctx, types.Bool)
	if err != nil {
		return err
	}
	if t != types.Bool {
		return mismatch(e.Position(), types.Bool, t, what+" condition")
	}
	return nil
}

// IfStatement is "if (c) {...} else {...}"; else if chains nest an
// IfStatement as the only statement of Else.
type IfStatement struct {
	Pos  lexer.Position
	Cond Expr
	Then []Statement
	Else []Statement // nil without else

	info *inst.StackInfo
}

func (s *IfStatement) Check(ctx *types.TypeContext) error {
	s.info = ctx.StackInfo(s.Pos)
	if err := checkCondition(ctx, s.Cond, "if"); err != nil {
		return err
	}
	if err := checkBlock(ctx, types.ScopeBlock, s.Then); err != nil {
		return err
	}
	if s.Else != nil {
		return checkBlock(ctx, types.ScopeBlock, s.Else)
	}
	return nil
}

func (s *IfStatement) GenerateInstruction() inst.Instruction {
	i := &inst.If{Info: inst.Info{Stack: s.info}, Cond: s.Cond.GenerateInstruction(), Then: block(s.Then)}
	if s.Else != nil {
		i.Else = block(s.Else)
	}
	return i
}

func (s *IfStatement) Terminates() bool {
	return s.Else != nil && terminates(s.Then) && terminates(s.Else)
}

func (s *IfStatement) Position() lexer.Position { return s.Pos }

func (s *IfStatement) Copy() Statement {
	return &IfStatement{Pos: s.Pos, Cond: s.Cond.Copy(), Then: copyStatements(s.Then), Else: copyStatements(s.Else)}
}

func (s *IfStatement) String() string {
	if s.Else != nil {
		return fmt.Sprintf("if (%s) { ... } else { ... }", s.Cond)
	}
	return fmt.Sprintf("if (%s) { ... }", s.Cond)
}

type WhileLoop struct {
	Pos  lexer.Position
	Cond Expr
	Body []Statement

	info *inst.StackInfo
}

func (w *WhileLoop) Check(ctx *types.TypeContext) error {
	w.info = ctx.StackInfo(w.Pos)
	if err := checkCondition(ctx, w.Cond, "while"); err != nil {
		return err
	}
	return checkBlock(ctx, types.ScopeLoop, w.Body)
}

func (w *WhileLoop) GenerateInstruction() inst.Instruction {
	return &inst.While{Info: inst.Info{Stack: w.info}, Cond: w.Cond.GenerateInstruction(), Body: block(w.Body)}
}

// Terminates holds for while (true) when no break or continue leaves it
func (w *WhileLoop) Terminates() bool {
	return isTrue(w.Cond) && !exitsLoop(w.Body, 0)
}

func (w *WhileLoop) Position() lexer.Position { return w.Pos }

func (w *WhileLoop) Copy() Statement {
	return &WhileLoop{Pos: w.Pos, Cond: w.Cond.Copy(), Body: copyStatements(w.Body)}
}

func (w *WhileLoop) String() string {
	return fmt.Sprintf("while (%s) { ... }", w.Cond)
}

// ForLoop is "for (init; cond; incr) {...}". Every part of the header is
// optional, a missing condition is true. Variables of init are scoped to the loop.
type ForLoop struct {
	Pos  lexer.Position
	Init Statement
	Cond Expr
	Incr Statement
	Body []Statement

	info *inst.StackInfo
}

func (f *ForLoop) Check(ctx *types.TypeContext) error {
	f.info = ctx.StackInfo(f.Pos)
	loop := ctx.Child(scope{kind: types.ScopeLoop})
	if f.Init != nil {
		if err := f.Init.Check(loop); err != nil {
			return err
		}
	}
	if f.Cond != nil {
		if err := checkCondition(loop, f.Cond, "for"); err != nil {
			return err
		}
	}
	if f.Incr != nil {
		if err := f.Incr.Check(loop); err != nil {
			return err
		}
	}
	return checkBlock(loop, types.ScopeBlock, f.Body)
}

func optional(s Statement) inst.Instruction {
	if s == nil {
		return inst.Nop{}
	}
	return s.GenerateInstruction()
}

func (f *ForLoop) GenerateInstruction() inst.Instruction {
	var cond inst.Instruction = &inst.Literal[bool]{Acc: inst.Bools, Value: true}
	if f.Cond != nil {
		cond = f.Cond.GenerateInstruction()
	}
	return &inst.For{
		Info: inst.Info{Stack: f.info},
		Init: optional(f.Init),
		Cond: cond,
		Incr: optional(f.Incr),
		Body: block(f.Body),
	}
}

func (f *ForLoop) Terminates() bool {
	return (f.Cond == nil || isTrue(f.Cond)) && !exitsLoop(f.Body, 0)
}

func (f *ForLoop) Position() lexer.Position { return f.Pos }

func isTrue(e Expr) bool {
	lit, ok := e.(*BoolLiteral)
	return ok && lit.Value
}

// exitsLoop reports whether a break or continue in stmts leaves the loop
// whose body they are. inner counts the loops in between.
func exitsLoop(stmts []Statement, inner int) bool {
	for _, s := range stmts {
		switch s := s.(type) {
		case *BreakStatement:
			if s.level() > inner {
				return true
			}
		case *ContinueStatement:
			if s.level() > inner+1 {
				return true
			}
		case *IfStatement:
			if exitsLoop(s.Then, inner) || exitsLoop(s.Else, inner) {
				return true
			}
		case *ErrorHandlingStatement:
			if exitsLoop(s.Try, inner) || exitsLoop(s.Catch, inner) || exitsLoop(s.Else, inner) {
				return true
			}
		case *WhileLoop:
			if exitsLoop(s.Body, inner+1) {
				return true
			}
		case *ForLoop:
			if exitsLoop(s.Body, inner+1) {
				return true
			}
		}
	}
	return false
}

func (f *ForLoop) Copy() Statement {
	return &ForLoop{
		Pos:  f.Pos,
		Init: copyStatement(f.Init),
		Cond: copyExpr(f.Cond),
		Incr: copyStatement(f.Incr),
		Body: copyStatements(f.Body),
	}
}

func (f *ForLoop) String() string {
	return "for (...) { ... }"
}

// checkLevel validates the loop level of a break or continue
func checkLevel(ctx *types.TypeContext, pos lexer.Position, what string, level int) error {
	if level < 1 {
		return types.Errorf(types.ErrBreakOutsideLoop, pos, "%s level must be positive, got %d", what, level)
	}
	if depth := ctx.LoopDepth(); level > depth {
		return types.Errorf(types.ErrBreakOutsideLoop, pos, "%s %d inside %d loops", what, level, depth)
	}
	return nil
}

// BreakStatement leaves Level enclosing loops, 1 when not written
type BreakStatement struct {
	Pos   lexer.Position
	Level int
}

func (b *BreakStatement) level() int {
	if b.Level == 0 {
		return 1
	}
	return b.Level
}

func (b *BreakStatement) Check(ctx *types.TypeContext) error {
	return checkLevel(ctx, b.Pos, "break", b.level())
}

func (b *BreakStatement) GenerateInstruction() inst.Instruction {
	return &inst.Break{Level: b.level()}
}

func (b *BreakStatement) Terminates() bool         { return true }
func (b *BreakStatement) Position() lexer.Position { return b.Pos }
func (b *BreakStatement) Copy() Statement          { return &BreakStatement{Pos: b.Pos, Level: b.Level} }

func (b *BreakStatement) String() string {
	if b.Level > 1 {
		return fmt.Sprintf("break %d;", b.Level)
	}
	return "break;"
}

// ContinueStatement skips to the next iteration of the Level-th enclosing loop
type ContinueStatement struct {
	Pos   lexer.Position
	Level int
}

func (c *ContinueStatement) level() int {
	if c.Level == 0 {
		return 1
	}
	return c.Level
}

func (c *ContinueStatement) Check(ctx *types.TypeContext) error {
	return checkLevel(ctx, c.Pos, "continue", c.level())
}

func (c *ContinueStatement) GenerateInstruction() inst.Instruction {
	return &inst.Continue{Level: c.level()}
}

func (c *ContinueStatement) Terminates() bool         { return true }
func (c *ContinueStatement) Position() lexer.Position { return c.Pos }
func (c *ContinueStatement) Copy() Statement          { return &ContinueStatement{Pos: c.Pos, Level: c.Level} }

func (c *ContinueStatement) String() string {
	if c.Level > 1 {
		return fmt.Sprintf("continue %d;", c.Level)
	}
	return "continue;"
}

// ThrowStatement raises a failure: "throw;", "throw "message";" or "throw err;"
type ThrowStatement struct {
	Pos   lexer.Position
	Value Expr // nil for a generic failure

	kind inst.ThrowKind
	info *inst.StackInfo
}

func (t *ThrowStatement) Check(ctx *types.TypeContext) error {
	t.info = ctx.StackInfo(t.Pos)
	if t.Value == nil {
		t.kind = inst.ThrowNothing
		return nil
	}
	typ, err := t.Value.Check(ctx, nil)
	if err != nil {
		return err
	}
	switch typ {
	case types.String:
		t.kind = inst.ThrowMessage
	case types.Error:
		t.kind = inst.ThrowError
	default:
		return types.Errorf(types.ErrTypeMismatch, t.Value.Position(), "can only throw string or error, got %s", typ)
	}
	return nil
}

func (t *ThrowStatement) GenerateInstruction() inst.Instruction {
	th := &inst.Throw{Info: inst.Info{Stack: t.info}, Kind: t.kind}
	if t.Value != nil {
		th.Value = t.Value.GenerateInstruction()
	}
	return th
}

func (t *ThrowStatement) Terminates() bool         { return true }
func (t *ThrowStatement) Position() lexer.Position { return t.Pos }

func (t *ThrowStatement) Copy() Statement {
	return &ThrowStatement{Pos: t.Pos, Value: copyExpr(t.Value)}
}

func (t *ThrowStatement) String() string {
	if t.Value == nil {
		return "throw;"
	}
	return "throw " + t.Value.String() + ";"
}

// ErrorHandlingStatement is "try {...} catch {...} else {...}". Inside the
// catch block err is a constant holding the caught error; it lives in a
// slot of the enclosing frame so closures created in the catch keep it.
type ErrorHandlingStatement struct {
	Pos   lexer.Position
	Try   []Statement
	Catch []Statement
	Else  []Statement // nil without else

	info   *inst.StackInfo
	errVar *types.Variable
}

func (e *ErrorHandlingStatement) Check(ctx *types.TypeContext) error {
	e.info = ctx.StackInfo(e.Pos)
	if err := checkBlock(ctx, types.ScopeBlock, e.Try); err != nil {
		return err
	}

	catch := ctx.Child(scope{kind: types.ScopeCatch})
	e.errVar = &types.Variable{
		Name:      "err",
		Type:      types.Error,
		Modifiers: types.ModConst,
		Pos:       types.MemPos{Depth: ctx.MemoryDepth(), Index: ctx.MemoryAllocator().NextRefIndex()},
	}
	if err := catch.AddVariable(e.errVar); err != nil {
		return at(e.Pos, err)
	}
	if err := checkBlock(catch, types.ScopeBlock, e.Catch); err != nil {
		return err
	}
	if e.Else != nil {
		return checkBlock(ctx, types.ScopeBlock, e.Else)
	}
	return nil
}

func (e *ErrorHandlingStatement) GenerateInstruction() inst.Instruction {
	store := inst.SetVarOf(mem.KindRef, 0, e.errVar.Pos.Index, inst.GetLastError{})
	h := &inst.ErrorHandling{
		Info:  inst.Info{Stack: e.info},
		Try:   block(e.Try),
		Catch: &inst.Composite{Children: []inst.Instruction{store, block(e.Catch)}},
	}
	if e.Else != nil {
		h.Else = block(e.Else)
	}
	return h
}

// Terminates when both the failing and the succeeding path leave the block
func (e *ErrorHandlingStatement) Terminates() bool {
	if !terminates(e.Catch) {
		return false
	}
	return terminates(e.Try) || (e.Else != nil && terminates(e.Else))
}

func (e *ErrorHandlingStatement) Position() lexer.Position { return e.Pos }

func (e *ErrorHandlingStatement) Copy() Statement {
	return &ErrorHandlingStatement{
		Pos:   e.Pos,
		Try:   copyStatements(e.Try),
		Catch: copyStatements(e.Catch),
		Else:  copyStatements(e.Else),
	}
}

func (e *ErrorHandlingStatement) String() string {
	return "try { ... } catch { ... }"
}

// ExprStatement evaluates an expression for its effect
type ExprStatement struct {
	Expr Expr
}

func (s *ExprStatement) Check(ctx *types.TypeContext) error {
	_, err := s.Expr.Check(ctx, nil)
	return err
}

func (s *ExprStatement) GenerateInstruction() inst.Instruction { return s.Expr.GenerateInstruction() }
func (s *ExprStatement) Terminates() bool                      { return false }
func (s *ExprStatement) Position() lexer.Position              { return s.Expr.Position() }
func (s *ExprStatement) Copy() Statement                       { return &ExprStatement{Expr: s.Expr.Copy()} }
func (s *ExprStatement) String() string                        { return s.Expr.String() + ";" }
