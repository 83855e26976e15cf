package ast

import (
	"strings"

	"plvm/pkg/inst"
	"plvm/pkg/lexer"
	"plvm/pkg/types"
)

// returner is a scope a return statement leaves: a function or the script
type returner interface {
	// returnType is the type returns must produce, nil while still inferred
	returnType() types.TypeInstance
	// inferReturn fixes the return type from the first return found
	inferReturn(t types.TypeInstance)
}

// Program is the top level script. It runs like the body of a function
// without parameters, directly in the global frame.
type Program struct {
	Statements []Statement

	ctx *types.TypeContext
	ret types.TypeInstance
}

func (p *Program) ScopeKind() types.ScopeKind { return types.ScopeScript }
func (p *Program) ScopeName() string          { return "" }

func (p *Program) returnType() types.TypeInstance { return p.ret }
func (p *Program) inferReturn(t types.TypeInstance) {
	p.ret = t
}

// Check validates the script in a child of global. It must be called once.
func (p *Program) Check(global *types.TypeContext) error {
	p.ctx = global.Child(p)
	p.ret = nil
	if err := types.CheckStatements(p.ctx, p.Statements); err != nil {
		return err
	}
	if p.ret == nil {
		p.ret = types.Void
	}
	return nil
}

// GenerateInstruction lowers the checked script
func (p *Program) GenerateInstruction() inst.Instruction {
	return block(p.Statements)
}

// ReturnType is the type of the script result, void when it returns nothing
func (p *Program) ReturnType() types.TypeInstance {
	return p.ret
}

// Context is the scope the top level declarations were added to
func (p *Program) Context() *types.TypeContext {
	return p.ctx
}

func (p *Program) Position() lexer.Position {
	if len(p.Statements) == 0 {
		return lexer.Position{}
	}
	return p.Statements[0].Position()
}

func (p *Program) String() string {
	lines := make([]string, len(p.Statements))
	for i, s := range p.Statements {
		lines[i] = s.String()
	}
	return strings.Join(lines, "\n")
}
