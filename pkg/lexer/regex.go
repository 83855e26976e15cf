package lexer

import (
	"regexp"
)

var rx = regexp.MustCompile

// Token regex patterns
var tokenRegexes = map[TokenType]*regexp.Regexp{
	PLUS_EQ:  rx(`^\+=`),
	MINUS_EQ: rx(`^-=`),
	MULT_EQ:  rx(`^\*=`),
	DIV_EQ:   rx(`^/=`),
	MOD_EQ:   rx(`^%=`),
	LE:       rx(`^<=`),
	GE:       rx(`^>=`),
	EQ:       rx(`^==`),
	NE:       rx(`^!=`),
	AND:      rx(`^&&`),
	OR:       rx(`^\|\|`),

	ASSIGN: rx(`^=`),
	PLUS:   rx(`^\+`),
	MINUS:  rx(`^-`),
	MULT:   rx(`^\*`),
	DIV:    rx(`^/`),
	MOD:    rx(`^%`),
	LT:     rx(`^<`),
	GT:     rx(`^>`),
	NOT:    rx(`^!`),

	SEMICOLON: rx(`^;`),
	COMMA:     rx(`^,`),
	COLON:     rx(`^:`),
	DOT:       rx(`^\.`),
	LPAREN:    rx(`^\(`),
	RPAREN:    rx(`^\)`),
	LBRACE:    rx(`^\{`),
	RBRACE:    rx(`^\}`),
	LSBRACE:   rx(`^\[`),
	RSBRACE:   rx(`^\]`),

	NUM:    rx(`^\d+(\.\d+)?([eE][+-]?\d+)?[lLfF]?\b`),
	STRING: rx(`^"([^"\\\n]|\\.)*"`),
	ID:     rx(`^[a-zA-Z_][a-zA-Z0-9_]*`),
}

var (
	whitespaceRegex = regexp.MustCompile(`^\s+`)
	commentRegex    = regexp.MustCompile(`^//.*`)
	blockRegex      = regexp.MustCompile(`^/\*(?s:.*?)\*/`)
)

// Token precedence order for matching (longer patterns first). Keywords
// are recognized from ID matches.
var tokenPrecedenceOrder = []TokenType{
	PLUS_EQ, MINUS_EQ, MULT_EQ, DIV_EQ, MOD_EQ, LE, GE, EQ, NE, AND, OR,
	ASSIGN, PLUS, MINUS, MULT, DIV, MOD, LT, GT, NOT,
	SEMICOLON, COMMA, COLON, DOT, LPAREN, RPAREN, LBRACE, RBRACE, LSBRACE, RSBRACE,
	NUM, STRING, ID,
}

// Match the longest token at the start of the string. Whitespace and
// comments come back as EOF with the skipped text.
func MatchToken(s string) (TokenType, string, bool) {
	if s == "" {
		return EOF, "", false
	} else if match := whitespaceRegex.FindString(s); match != "" {
		return EOF, match, true
	} else if match := commentRegex.FindString(s); match != "" {
		return EOF, match, true
	} else if match := blockRegex.FindString(s); match != "" {
		return EOF, match, true
	}

	for _, tokenType := range tokenPrecedenceOrder {
		if regex, ok := tokenRegexes[tokenType]; ok {
			if match := regex.FindString(s); match != "" {
				if tokenType == ID {
					if kw, ok := IsKeyword(match); ok {
						return kw, match, true
					}
				}
				return tokenType, match, true
			}
		}
	}

	return ILLEGAL, string(s[0]), false
}
