package parser

import (
	"strconv"
	"strings"

	"plvm/pkg/ast"
	"plvm/pkg/inst"
	"plvm/pkg/lexer"
	"plvm/pkg/types"
)

type Parser struct {
	lexer        *lexer.Lexer // lexer instance
	currentToken lexer.Token  // current token
	depth        int          // open blocks
	errors       ErrorList    // list of errors
}

// bailout unwinds a statement that failed to parse
type bailout struct{}

// NewParser creates a new parser instance
func NewParser(l *lexer.Lexer) *Parser {
	p := &Parser{lexer: l}

	// Initialize current token
	p.nextToken()

	return p
}

// Parse parses a whole source text
func Parse(src string) (*ast.Program, error) {
	return NewParser(lexer.NewLexer(src)).Parse()
}

// Parse reads statements up to the end of input. Statements that fail to
// parse are skipped so that every syntax error of the input is reported.
func (p *Parser) Parse() (*ast.Program, error) {
	prog := &ast.Program{}
	for p.currentToken.Type != lexer.EOF {
		if s := p.statementRecover(); s != nil {
			prog.Statements = append(prog.Statements, s)
		}
	}

	if len(p.errors) > 0 {
		return nil, p.errors
	}
	return prog, nil
}

// Errors returns the list of parsing errors
func (p *Parser) Errors() ErrorList {
	return p.errors
}

// nextToken advances to the next token from the lexer
func (p *Parser) nextToken() {
	p.currentToken = p.lexer.NextToken()
	for p.currentToken.Type == lexer.ILLEGAL {
		p.addError(p.currentToken.Pos, "Illegal character '"+p.currentToken.Lexeme+"'")
		p.currentToken = p.lexer.NextToken()
	}
}

func (p *Parser) at(t lexer.TokenType) bool {
	return p.currentToken.Type == t
}

// accept consumes the current token if it has type t
func (p *Parser) accept(t lexer.TokenType) bool {
	if p.at(t) {
		p.nextToken()
		return true
	}
	return false
}

// expect consumes a token of type t or fails the statement
func (p *Parser) expect(t lexer.TokenType) lexer.Token {
	tok := p.currentToken
	if tok.Type != t {
		p.fail(p.categorizeError(t, tok))
	}
	p.nextToken()
	return tok
}

func (p *Parser) ident() lexer.Token {
	return p.expect(lexer.ID)
}

func (p *Parser) statementRecover() (s ast.Statement) {
	start := p.currentToken.Pos.Offset
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(bailout); !ok {
				panic(r)
			}
			p.synchronize(start)
			s = nil
		}
	}()
	return p.statement()
}

// block parses "{ statements }"
func (p *Parser) block() []ast.Statement {
	p.expect(lexer.LBRACE)
	p.depth++
	defer func() { p.depth-- }()

	stmts := []ast.Statement{}
	for !p.at(lexer.RBRACE) {
		if p.at(lexer.EOF) {
			p.fail("Missing closing brace")
		}
		if s := p.statementRecover(); s != nil {
			stmts = append(stmts, s)
		}
	}
	p.nextToken()
	return stmts
}

func (p *Parser) statement() ast.Statement {
	tok := p.currentToken
	switch tok.Type {
	case lexer.PUBLIC, lexer.PRIVATE, lexer.CONST, lexer.EXECUTABLE:
		return p.declaration(p.modifiers())
	case lexer.VAR, lexer.FUNCTION, lexer.CLASS:
		return p.declaration(0)
	case lexer.TEMPLATE:
		return p.templateClass()
	case lexer.LET:
		p.nextToken()
		name := p.ident()
		p.expect(lexer.ASSIGN)
		typ := p.typeRef()
		p.expect(lexer.SEMICOLON)
		return &ast.TemplateTypeInstantiation{Pos: tok.Pos, Name: name.Lexeme, Type: typ}
	case lexer.IF:
		return p.ifStatement()
	case lexer.WHILE:
		p.nextToken()
		cond := p.condition()
		return &ast.WhileLoop{Pos: tok.Pos, Cond: cond, Body: p.block()}
	case lexer.FOR:
		return p.forLoop()
	case lexer.BREAK:
		p.nextToken()
		s := &ast.BreakStatement{Pos: tok.Pos, Level: p.level()}
		p.expect(lexer.SEMICOLON)
		return s
	case lexer.CONTINUE:
		p.nextToken()
		s := &ast.ContinueStatement{Pos: tok.Pos, Level: p.level()}
		p.expect(lexer.SEMICOLON)
		return s
	case lexer.RETURN:
		p.nextToken()
		p.accept(lexer.COLON)
		s := &ast.ReturnStatement{Pos: tok.Pos}
		if !p.at(lexer.SEMICOLON) {
			s.Value = p.expr()
		}
		p.expect(lexer.SEMICOLON)
		return s
	case lexer.THROW:
		p.nextToken()
		s := &ast.ThrowStatement{Pos: tok.Pos}
		if !p.at(lexer.SEMICOLON) {
			s.Value = p.expr()
		}
		p.expect(lexer.SEMICOLON)
		return s
	case lexer.TRY:
		p.nextToken()
		s := &ast.ErrorHandlingStatement{Pos: tok.Pos, Try: p.block()}
		p.expect(lexer.CATCH)
		s.Catch = p.block()
		if p.accept(lexer.ELSE) {
			s.Else = p.block()
		}
		return s
	case lexer.SEMICOLON:
		p.fail("Empty statement")
	}

	s := p.simple()
	p.expect(lexer.SEMICOLON)
	return s
}

func (p *Parser) modifiers() types.Modifiers {
	var m types.Modifiers
	for {
		var mod types.Modifiers
		switch p.currentToken.Type {
		case lexer.PUBLIC:
			mod = types.ModPublic
		case lexer.PRIVATE:
			mod = types.ModPrivate
		case lexer.CONST:
			mod = types.ModConst
		case lexer.EXECUTABLE:
			mod = types.ModExecutable
		default:
			return m
		}
		if m.Has(mod) {
			p.fail("Duplicate modifier '" + p.currentToken.Lexeme + "'")
		}
		m |= mod
		p.nextToken()
	}
}

func (p *Parser) declaration(m types.Modifiers) ast.Statement {
	switch p.currentToken.Type {
	case lexer.VAR:
		s := p.variable(m)
		p.expect(lexer.SEMICOLON)
		return s
	case lexer.FUNCTION:
		return p.function(m)
	case lexer.CLASS:
		if m != 0 {
			p.fail("Modifiers are not allowed on classes")
		}
		return p.class()
	}
	p.fail("Expected var, function or class after modifiers")
	return nil
}

// variable parses "var name: type = value" without the semicolon
func (p *Parser) variable(m types.Modifiers) *ast.VariableDefinition {
	pos := p.expect(lexer.VAR).Pos
	v := &ast.VariableDefinition{Pos: pos, Name: p.ident().Lexeme, Modifiers: m}
	if p.accept(lexer.COLON) {
		v.Type = p.typeRef()
	}
	if p.accept(lexer.ASSIGN) {
		v.Value = p.expr()
	}
	if v.Type == nil && v.Value == nil {
		p.fail("Variable needs a type or a value")
	}
	return v
}

func (p *Parser) params() []*ast.ParamDef {
	p.expect(lexer.LPAREN)
	params := []*ast.ParamDef{}
	for !p.at(lexer.RPAREN) {
		if len(params) > 0 {
			p.expect(lexer.COMMA)
		}
		name := p.ident()
		p.expect(lexer.COLON)
		param := &ast.ParamDef{Pos: name.Pos, Name: name.Lexeme, Type: p.typeRef()}
		if p.accept(lexer.ASSIGN) {
			param.Default = p.expr()
		}
		params = append(params, param)
	}
	p.nextToken()
	return params
}

func (p *Parser) function(m types.Modifiers) *ast.FunctionDefinition {
	pos := p.expect(lexer.FUNCTION).Pos
	f := &ast.FunctionDefinition{Pos: pos, Name: p.ident().Lexeme, Modifiers: m}
	f.Params = p.params()
	if p.accept(lexer.COLON) {
		f.Return = p.typeRef()
	}
	f.Body = p.block()
	return f
}

func (p *Parser) class() *ast.ClassDefinition {
	pos := p.expect(lexer.CLASS).Pos
	c := &ast.ClassDefinition{Pos: pos, Name: p.ident().Lexeme, Params: []*ast.ParamDef{}}
	if p.at(lexer.LPAREN) {
		c.Params = p.params()
	}
	c.Body = p.block()
	return c
}

func (p *Parser) templateClass() *ast.TemplateClassDefinition {
	pos := p.expect(lexer.TEMPLATE).Pos
	p.expect(lexer.LT)
	var names []string
	for {
		names = append(names, p.ident().Lexeme)
		if !p.accept(lexer.COMMA) {
			break
		}
	}
	p.expect(lexer.GT)
	return &ast.TemplateClassDefinition{Pos: pos, TypeParams: names, Class: p.class()}
}

func (p *Parser) ifStatement() *ast.IfStatement {
	pos := p.expect(lexer.IF).Pos
	s := &ast.IfStatement{Pos: pos, Cond: p.condition(), Then: p.block()}
	if p.accept(lexer.ELSE) {
		if p.at(lexer.IF) {
			s.Else = []ast.Statement{p.ifStatement()}
		} else {
			s.Else = p.block()
		}
	}
	return s
}

// condition parses "( expr )"
func (p *Parser) condition() ast.Expr {
	p.expect(lexer.LPAREN)
	if p.at(lexer.RPAREN) {
		p.fail("Empty condition")
	}
	cond := p.expr()
	p.expect(lexer.RPAREN)
	return cond
}

func (p *Parser) forLoop() *ast.ForLoop {
	pos := p.expect(lexer.FOR).Pos
	f := &ast.ForLoop{Pos: pos}
	p.expect(lexer.LPAREN)
	switch {
	case p.at(lexer.VAR):
		f.Init = p.variable(0)
	case !p.at(lexer.SEMICOLON):
		f.Init = p.simple()
	}
	p.expect(lexer.SEMICOLON)
	if !p.at(lexer.SEMICOLON) {
		f.Cond = p.expr()
	}
	p.expect(lexer.SEMICOLON)
	if !p.at(lexer.RPAREN) {
		f.Incr = p.simple()
	}
	p.expect(lexer.RPAREN)
	f.Body = p.block()
	return f
}

// level parses the optional loop count of break and continue
func (p *Parser) level() int {
	if !p.at(lexer.NUM) {
		return 0
	}
	tok := p.currentToken
	n, err := strconv.Atoi(tok.Lexeme)
	if err != nil || n < 1 {
		p.fail("Loop level must be a positive integer")
	}
	p.nextToken()
	return n
}

var assignOps = map[lexer.TokenType]inst.Op{
	lexer.PLUS_EQ:  inst.OpAdd,
	lexer.MINUS_EQ: inst.OpSub,
	lexer.MULT_EQ:  inst.OpMul,
	lexer.DIV_EQ:   inst.OpDiv,
	lexer.MOD_EQ:   inst.OpMod,
}

// simple parses an expression statement or an assignment
func (p *Parser) simple() ast.Statement {
	lhs := p.expr()
	tok := p.currentToken
	if !tok.Type.IsAssignOp() {
		return &ast.ExprStatement{Expr: lhs}
	}
	p.nextToken()
	rhs := p.expr()
	if tok.Type == lexer.ASSIGN {
		return &ast.Assignment{Pos: tok.Pos, Target: lhs, Value: rhs}
	}
	return &ast.OpAssignment{Pos: tok.Pos, Target: lhs, Op: assignOps[tok.Type], Value: rhs}
}

// typeRef parses "name", "pkg.Name<T, U>", "T[]" and "function(T): R"
func (p *Parser) typeRef() *ast.TypeRef {
	tok := p.currentToken
	ref := &ast.TypeRef{Pos: tok.Pos}
	if p.accept(lexer.FUNCTION) {
		p.expect(lexer.LPAREN)
		ref.Func = &ast.FuncTypeRef{}
		for !p.at(lexer.RPAREN) {
			if len(ref.Func.Params) > 0 {
				p.expect(lexer.COMMA)
			}
			ref.Func.Params = append(ref.Func.Params, p.typeRef())
		}
		p.nextToken()
		p.expect(lexer.COLON)
		ref.Func.Return = p.typeRef()
	} else {
		ref.Name = p.qualifiedName()
		if p.accept(lexer.LT) {
			ref.Params = p.typeArgs()
		}
	}
	for p.at(lexer.LSBRACE) {
		p.nextToken()
		p.expect(lexer.RSBRACE)
		ref.Dims++
	}
	return ref
}

func (p *Parser) qualifiedName() string {
	parts := []string{p.ident().Lexeme}
	for p.accept(lexer.DOT) {
		parts = append(parts, p.ident().Lexeme)
	}
	return strings.Join(parts, ".")
}

// typeArgs parses the rest of "<T, U>" after the "<"
func (p *Parser) typeArgs() []*ast.TypeRef {
	var args []*ast.TypeRef
	for {
		args = append(args, p.typeRef())
		if !p.accept(lexer.COMMA) {
			break
		}
	}
	p.expect(lexer.GT)
	return args
}

// binary operator levels, loosest first
var binaryLevels = []map[lexer.TokenType]inst.Op{
	{lexer.OR: inst.OpOr},
	{lexer.AND: inst.OpAnd},
	{lexer.EQ: inst.OpEQ, lexer.NE: inst.OpNE},
	{lexer.LT: inst.OpLT, lexer.LE: inst.OpLE, lexer.GT: inst.OpGT, lexer.GE: inst.OpGE},
	{lexer.PLUS: inst.OpAdd, lexer.MINUS: inst.OpSub},
	{lexer.MULT: inst.OpMul, lexer.DIV: inst.OpDiv, lexer.MOD: inst.OpMod},
}

func (p *Parser) expr() ast.Expr {
	return p.binary(0)
}

func (p *Parser) binary(level int) ast.Expr {
	if level == len(binaryLevels) {
		return p.unary()
	}
	left := p.binary(level + 1)
	for {
		tok := p.currentToken
		op, ok := binaryLevels[level][tok.Type]
		if !ok {
			return left
		}
		p.nextToken()
		left = &ast.BinOp{Pos: tok.Pos, Op: op, Left: left, Right: p.binary(level + 1)}
	}
}

func (p *Parser) unary() ast.Expr {
	tok := p.currentToken
	switch {
	case p.accept(lexer.MINUS):
		return &ast.Negative{Pos: tok.Pos, Value: p.unary()}
	case p.accept(lexer.NOT):
		return &ast.LogicNot{Pos: tok.Pos, Value: p.unary()}
	}
	return p.postfix(p.primary())
}

func (p *Parser) postfix(e ast.Expr) ast.Expr {
	for {
		tok := p.currentToken
		switch tok.Type {
		case lexer.DOT:
			p.nextToken()
			e = &ast.Access{Pos: tok.Pos, Object: e, Name: p.ident().Lexeme}
		case lexer.LPAREN:
			e = &ast.FunctionInvocation{Pos: tok.Pos, Fn: e, Args: p.args()}
		case lexer.LSBRACE:
			p.nextToken()
			index := p.expr()
			p.expect(lexer.RSBRACE)
			e = &ast.AccessIndex{Pos: tok.Pos, Array: e, Index: index}
		default:
			return e
		}
	}
}

// args parses "(a, b)"
func (p *Parser) args() []ast.Expr {
	p.expect(lexer.LPAREN)
	args := []ast.Expr{}
	for !p.at(lexer.RPAREN) {
		if len(args) > 0 {
			p.expect(lexer.COMMA)
		}
		if p.at(lexer.SEMICOLON) || p.at(lexer.EOF) {
			p.fail("Missing closing parenthesis")
		}
		args = append(args, p.expr())
	}
	p.nextToken()
	return args
}

func (p *Parser) primary() ast.Expr {
	tok := p.currentToken
	switch tok.Type {
	case lexer.NUM:
		p.nextToken()
		return p.number(tok)
	case lexer.STRING:
		p.nextToken()
		return &ast.StringLiteral{Pos: tok.Pos, Value: tok.Literal}
	case lexer.TRUE, lexer.FALSE:
		p.nextToken()
		return &ast.BoolLiteral{Pos: tok.Pos, Value: tok.Type == lexer.TRUE}
	case lexer.NULL:
		p.nextToken()
		return &ast.NullLiteral{Pos: tok.Pos}
	case lexer.ID:
		p.nextToken()
		return &ast.Access{Pos: tok.Pos, Name: tok.Lexeme}
	case lexer.LPAREN:
		p.nextToken()
		e := p.expr()
		p.expect(lexer.RPAREN)
		return e
	case lexer.NEW:
		return p.newExpr()
	}

	if tok.Type.GetCategory() == lexer.KEYWORD {
		p.fail("Cannot use reserved keyword '" + tok.Lexeme + "' as identifier")
	}
	p.fail("Missing expression")
	return nil
}

func (p *Parser) number(tok lexer.Token) ast.Expr {
	text := tok.Lexeme
	suffix := text[len(text)-1]
	switch suffix {
	case 'l', 'L', 'f', 'F':
		text = text[:len(text)-1]
	}

	if suffix == 'f' || suffix == 'F' || strings.ContainsAny(text, ".eE") {
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			p.failAt(tok.Pos, "Number out of range")
		}
		return &ast.FloatLiteral{Pos: tok.Pos, Value: v, Float: suffix == 'f' || suffix == 'F'}
	}

	v, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		p.failAt(tok.Pos, "Number out of range")
	}
	return &ast.IntegerLiteral{Pos: tok.Pos, Value: v, Long: suffix == 'l' || suffix == 'L'}
}

// newExpr parses "new T(args)", "new T" and "new T[n]"
func (p *Parser) newExpr() ast.Expr {
	pos := p.expect(lexer.NEW).Pos
	ref := &ast.TypeRef{Pos: p.currentToken.Pos, Name: p.qualifiedName()}
	if p.accept(lexer.LT) {
		ref.Params = p.typeArgs()
	}

	if p.at(lexer.LSBRACE) {
		p.nextToken()
		for p.accept(lexer.RSBRACE) {
			ref.Dims++
			p.expect(lexer.LSBRACE)
		}
		length := p.expr()
		p.expect(lexer.RSBRACE)
		return &ast.NewArray{Pos: pos, Elem: ref, Length: length}
	}

	if p.at(lexer.LBRACE) {
		o := p.object()
		o.Pos, o.Type = pos, ref
		return o
	}

	n := &ast.NewInstance{Pos: pos, Type: ref, Args: []ast.Expr{}}
	if p.at(lexer.LPAREN) {
		n.Args = p.args()
	}
	return n
}

// object parses "{ key: value, ... }". Keys are names or strings.
func (p *Parser) object() *ast.ObjectLiteral {
	o := &ast.ObjectLiteral{Pos: p.expect(lexer.LBRACE).Pos}
	for !p.accept(lexer.RBRACE) {
		if len(o.Entries) > 0 {
			p.expect(lexer.COMMA)
		}
		key := p.currentToken
		switch key.Type {
		case lexer.ID:
			key.Literal = key.Lexeme
		case lexer.STRING:
		default:
			p.fail("Expected field name, found " + key.Lexeme)
		}
		p.nextToken()
		p.expect(lexer.COLON)
		o.Entries = append(o.Entries, &ast.ObjectEntry{Pos: key.Pos, Key: key.Literal, Value: p.objectValue()})
	}
	return o
}

func (p *Parser) objectValue() ast.Expr {
	switch {
	case p.at(lexer.LBRACE):
		return p.object()
	case p.at(lexer.LSBRACE):
		a := &ast.ArrayLiteral{Pos: p.expect(lexer.LSBRACE).Pos, Elems: []ast.Expr{}}
		for !p.accept(lexer.RSBRACE) {
			if len(a.Elems) > 0 {
				p.expect(lexer.COMMA)
			}
			a.Elems = append(a.Elems, p.objectValue())
		}
		return a
	}
	return p.expr()
}
