package parser

import (
	"fmt"
	"strings"

	"plvm/pkg/color"
	"plvm/pkg/lexer"
)

// SyntaxError is one parse failure at a source position
type SyntaxError struct {
	Pos lexer.Position
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
}

// Render formats the error against the source it was found in
func (e *SyntaxError) Render(file, src string) string {
	return color.Diagnostic(file, src, e.Pos.Line, e.Pos.Column, "syntax error", e.Msg)
}

// ErrorList is every syntax error of one parse, in source order
type ErrorList []*SyntaxError

func (l ErrorList) Error() string {
	switch len(l) {
	case 0:
		return "no errors"
	case 1:
		return l[0].Error()
	}
	return fmt.Sprintf("%s (and %d more errors)", l[0], len(l)-1)
}

// Render formats all errors, separated by blank lines
func (l ErrorList) Render(file, src string) string {
	parts := make([]string, len(l))
	for i, e := range l {
		parts[i] = e.Render(file, src)
	}
	return strings.Join(parts, "\n\n")
}

// addError records a parsing error with location
func (p *Parser) addError(pos lexer.Position, msg string) {
	p.errors = append(p.errors, &SyntaxError{Pos: pos, Msg: msg})
}

// fail reports msg at the current token and abandons the statement
func (p *Parser) fail(msg string) {
	p.failAt(p.currentToken.Pos, msg)
}

func (p *Parser) failAt(pos lexer.Position, msg string) {
	p.addError(pos, msg)
	panic(bailout{})
}

// synchronize skips to the start of the next statement or the end of the
// enclosing block. It always moves past the token a failed statement
// started at.
func (p *Parser) synchronize(start int) {
	if p.currentToken.Pos.Offset == start && !p.at(lexer.EOF) {
		p.nextToken()
	}
	for {
		switch {
		case p.at(lexer.EOF), p.at(lexer.RBRACE) && p.depth > 0:
			return
		case p.accept(lexer.SEMICOLON):
			return
		case p.isStatementBoundary(p.currentToken.Type):
			return
		}
		p.nextToken()
	}
}

// isStatementBoundary checks if a token type starts a new statement
func (p *Parser) isStatementBoundary(t lexer.TokenType) bool {
	switch t {
	case lexer.VAR, lexer.FUNCTION, lexer.CLASS, lexer.TEMPLATE, lexer.LET, lexer.IF, lexer.WHILE, lexer.FOR,
		lexer.RETURN, lexer.CONTINUE, lexer.BREAK, lexer.THROW, lexer.TRY,
		lexer.PUBLIC, lexer.PRIVATE, lexer.CONST, lexer.EXECUTABLE:
		return true
	default:
		return false
	}
}

// categorizeError provides a specific error message based on expected token and current token
func (p *Parser) categorizeError(expected lexer.TokenType, current lexer.Token) string {
	// Delimiters
	switch expected {
	case lexer.RPAREN:
		return "Missing closing parenthesis"
	case lexer.RBRACE:
		return "Missing closing brace"
	case lexer.RSBRACE:
		return "Missing closing bracket"
	case lexer.LBRACE:
		return "Missing opening brace"
	case lexer.SEMICOLON:
		return "Missing semicolon"
	case lexer.ASSIGN:
		return "Missing assignment operator"
	case lexer.COLON:
		return "Missing colon"
	case lexer.GT:
		return "Missing closing angle bracket"
	case lexer.LPAREN:
		if current.Type == lexer.LBRACE {
			return "Wrong bracket type - expected parenthesis"
		}
		return "Missing opening parenthesis"
	}

	// Identifiers
	if expected == lexer.ID {
		if current.Type == lexer.ASSIGN || current.Type == lexer.SEMICOLON {
			return "Missing identifier"
		}
		if current.Type.GetCategory() == lexer.KEYWORD {
			return "Cannot use reserved keyword '" + current.Lexeme + "' as identifier"
		}
		return "Expected identifier"
	}

	return fmt.Sprintf("Expected '%s', found '%s'", expected, current.Type)
}
