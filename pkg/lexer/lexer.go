package lexer

import "strconv"

// Lexer splits pl source into tokens on demand. Whitespace and both comment
// forms are skipped; an unterminated block comment runs to the end of input.
type Lexer struct {
	src string
	pos Position // position of the next unread byte
}

func NewLexer(src string) *Lexer {
	return &Lexer{src: src, pos: Position{Line: 1, Column: 1}}
}

// NextToken returns the next token, or EOF forever once the input is used up.
func (l *Lexer) NextToken() Token {
	l.skipTrivia()

	start := l.pos
	if l.done() {
		return NewToken(EOF, "", "", start)
	}

	kind, lexeme, ok := MatchToken(l.src[l.pos.Offset:])
	if !ok || kind == EOF {
		// nothing matched, give up on a single byte
		lexeme = l.src[start.Offset : start.Offset+1]
		l.advance(1)
		return NewToken(ILLEGAL, lexeme, "", start)
	}
	l.advance(len(lexeme))

	literal, ok := literalOf(kind, lexeme)
	if !ok {
		return NewToken(ILLEGAL, lexeme, "", start)
	}
	return NewToken(kind, lexeme, literal, start)
}

// Tokens reads the whole input. The last token is EOF.
func (l *Lexer) Tokens() []Token {
	var toks []Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Type == EOF {
			return toks
		}
	}
}

// literalOf is the value a token carries: string contents with escapes
// resolved, the keyword text for booleans, the lexeme otherwise.
func literalOf(kind TokenType, lexeme string) (string, bool) {
	switch kind {
	case TRUE:
		return "true", true
	case FALSE:
		return "false", true
	case STRING:
		s, err := strconv.Unquote(lexeme)
		return s, err == nil
	}
	return lexeme, true
}

func (l *Lexer) done() bool {
	return l.pos.Offset >= len(l.src)
}

func (l *Lexer) at(s string) bool {
	rest := l.src[l.pos.Offset:]
	return len(rest) >= len(s) && rest[:len(s)] == s
}

func (l *Lexer) skipTrivia() {
	for !l.done() {
		switch ch := l.src[l.pos.Offset]; {
		case ch == ' ', ch == '\t', ch == '\n', ch == '\r':
			l.advance(1)
		case l.at("//"):
			for !l.done() && l.src[l.pos.Offset] != '\n' {
				l.advance(1)
			}
		case l.at("/*"):
			l.advance(2)
			for !l.done() && !l.at("*/") {
				l.advance(1)
			}
			if !l.done() {
				l.advance(2)
			}
		default:
			return
		}
	}
}

// advance moves n bytes forward, keeping line and column in step
func (l *Lexer) advance(n int) {
	for ; n > 0 && !l.done(); n-- {
		if l.src[l.pos.Offset] == '\n' {
			l.pos.Line++
			l.pos.Column = 1
		} else {
			l.pos.Column++
		}
		l.pos.Offset++
	}
}
