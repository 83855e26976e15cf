package lexer

import (
	"fmt"
)

type TokenType int
type TokenCategory int

type Token struct {
	Type    TokenType // Type of the token
	Lexeme  string    // Actual string from source code
	Literal string    // Literal value (if applicable), empty string if not
	Pos     Position  // Position in source code
}

// NewToken creates a new Token instance
func NewToken(tokenType TokenType, lexeme string, literal string, Pos Position) Token {
	return Token{
		Type:    tokenType,
		Lexeme:  lexeme,
		Literal: literal,
		Pos:     Pos,
	}
}

const (
	NONE TokenCategory = iota
	KEYWORD
	IDENTIFIER
	LITERAL
	OPERATOR
	DELIMITER
)

const (
	EOF TokenType = iota // End of file

	VAR        // var
	CONST      // const
	PUBLIC     // public
	PRIVATE    // private
	EXECUTABLE // executable
	FUNCTION   // function
	CLASS      // class
	TEMPLATE   // template
	LET        // let
	NEW        // new
	RETURN     // return
	IF         // if
	ELSE       // else
	WHILE      // while
	FOR        // for
	BREAK      // break
	CONTINUE   // continue
	THROW      // throw
	TRY        // try
	CATCH      // catch
	TRUE       // true
	FALSE      // false
	NULL       // null

	ID     // id (identifier)
	NUM    // num (number)
	STRING // string literal

	ASSIGN   // =
	PLUS_EQ  // +=
	MINUS_EQ // -=
	MULT_EQ  // *=
	DIV_EQ   // /=
	MOD_EQ   // %=
	PLUS     // +
	MINUS    // -
	MULT     // *
	DIV      // /
	MOD      // %
	LT       // <
	GT       // >
	LE       // <=
	GE       // >=
	EQ       // ==
	NE       // !=
	AND      // &&
	OR       // ||
	NOT      // !

	SEMICOLON // ;
	COMMA     // ,
	COLON     // :
	DOT       // .
	LPAREN    // (
	RPAREN    // )
	LBRACE    // {
	RBRACE    // }
	LSBRACE   // [
	RSBRACE   // ]

	ILLEGAL // illegal token
)

var Keywords = map[string]TokenType{
	"var":        VAR,
	"const":      CONST,
	"public":     PUBLIC,
	"private":    PRIVATE,
	"executable": EXECUTABLE,
	"function":   FUNCTION,
	"class":      CLASS,
	"template":   TEMPLATE,
	"let":        LET,
	"new":        NEW,
	"return":     RETURN,
	"if":         IF,
	"else":       ELSE,
	"while":      WHILE,
	"for":        FOR,
	"break":      BREAK,
	"continue":   CONTINUE,
	"throw":      THROW,
	"try":        TRY,
	"catch":      CATCH,
	"true":       TRUE,
	"false":      FALSE,
	"null":       NULL,
}

var symbols = map[TokenType]string{
	ASSIGN:    "=",
	PLUS_EQ:   "+=",
	MINUS_EQ:  "-=",
	MULT_EQ:   "*=",
	DIV_EQ:    "/=",
	MOD_EQ:    "%=",
	PLUS:      "+",
	MINUS:     "-",
	MULT:      "*",
	DIV:       "/",
	MOD:       "%",
	LT:        "<",
	GT:        ">",
	LE:        "<=",
	GE:        ">=",
	EQ:        "==",
	NE:        "!=",
	AND:       "&&",
	OR:        "||",
	NOT:       "!",
	SEMICOLON: ";",
	COMMA:     ",",
	COLON:     ":",
	DOT:       ".",
	LPAREN:    "(",
	RPAREN:    ")",
	LBRACE:    "{",
	RBRACE:    "}",
	LSBRACE:   "[",
	RSBRACE:   "]",
	ID:        "id",
	NUM:       "num",
	STRING:    "string",
	EOF:       "$",
}

// TokenToString converts a TokenType to its string representation
func (t Token) TokenToString() (string, bool) {
	for word, typ := range Keywords {
		if typ == t.Type {
			return word, true
		}
	}
	str, ok := symbols[t.Type]
	return str, ok
}

// String returns a string representation of the Token
func (t Token) String() string {
	if t.Literal == "" {
		return fmt.Sprintf("T_{%s, %v, nil, %s}",
			t.Type, t.Lexeme, t.Pos.String())
	}

	return fmt.Sprintf("T_{%s, %v, %q, %s}",
		t.Type, t.Lexeme, t.Literal, t.Pos.String())
}

// String returns a string representation of the TokenType
func (t TokenType) String() string {
	if str, ok := (Token{Type: t}).TokenToString(); ok {
		return str
	}

	return fmt.Sprintf("UNKNOWN(%d)", int(t))
}

// GetCategory returns the category of the token
func (t TokenType) GetCategory() TokenCategory {
	switch {
	case t >= VAR && t <= NULL:
		return KEYWORD
	case t == ID:
		return IDENTIFIER
	case t == NUM || t == STRING:
		return LITERAL
	case t >= ASSIGN && t <= NOT:
		return OPERATOR
	case t >= SEMICOLON && t <= RSBRACE:
		return DELIMITER
	default:
		return NONE
	}
}

// IsKeyword checks if the given identifier is a keyword and returns its TokenType if it is
func IsKeyword(identifier string) (TokenType, bool) {
	tokenType, ok := Keywords[identifier]
	return tokenType, ok
}

// IsAssignOp reports the assignment operators, plain and compound
func (t TokenType) IsAssignOp() bool {
	return t >= ASSIGN && t <= MOD_EQ
}
