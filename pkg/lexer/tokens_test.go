package lexer_test

import (
	"plvm/pkg/lexer"
	"testing"
)

func TestTokens(t *testing.T) {
	input := "var x: int = 10 / 2;\n" +
		"while (x >= 1 && !done) {\n" +
		"	x -= 1;\n" +
		"	if (x == 5) { break 2; }\n" +
		"}\n" +
		"return: std.List<int>;"
	mylexer := lexer.NewLexer(input)

	expectedTokens := []lexer.TokenType{
		lexer.VAR, lexer.ID, lexer.COLON, lexer.ID, lexer.ASSIGN, lexer.NUM, lexer.DIV, lexer.NUM, lexer.SEMICOLON,
		lexer.WHILE, lexer.LPAREN, lexer.ID, lexer.GE, lexer.NUM, lexer.AND, lexer.NOT, lexer.ID, lexer.RPAREN, lexer.LBRACE,
		lexer.ID, lexer.MINUS_EQ, lexer.NUM, lexer.SEMICOLON,
		lexer.IF, lexer.LPAREN, lexer.ID, lexer.EQ, lexer.NUM, lexer.RPAREN, lexer.LBRACE,
		lexer.BREAK, lexer.NUM, lexer.SEMICOLON, lexer.RBRACE,
		lexer.RBRACE,
		lexer.RETURN, lexer.COLON, lexer.ID, lexer.DOT, lexer.ID, lexer.LT, lexer.ID, lexer.GT, lexer.SEMICOLON,
		lexer.EOF,
	}

	for i, expected := range expectedTokens {
		token := mylexer.NextToken()
		if token.Type != expected {
			t.Errorf("Token %d: expected %s, got %s", i, expected, token.Type)
		}
	}
}

func TestKeywordsNeedWordBoundary(t *testing.T) {
	tests := []struct {
		input    string
		expected lexer.TokenType
	}{
		{"var", lexer.VAR},
		{"variable", lexer.ID},
		{"newest", lexer.ID},
		{"new", lexer.NEW},
		{"_tmp", lexer.ID},
		{"executable", lexer.EXECUTABLE},
	}

	for _, test := range tests {
		tokenType, lexeme, _ := lexer.MatchToken(test.input)
		if tokenType != test.expected || lexeme != test.input {
			t.Errorf("Input %s: expected %s, got %s %q", test.input, test.expected, tokenType, lexeme)
		}
	}
}

func TestStringLiterals(t *testing.T) {
	mylexer := lexer.NewLexer(`"a\tb\n" "q\"uote"`)

	first := mylexer.NextToken()
	if first.Type != lexer.STRING || first.Literal != "a\tb\n" {
		t.Errorf("expected escaped string, got %s", first)
	}
	second := mylexer.NextToken()
	if second.Literal != `q"uote` {
		t.Errorf("expected escaped quote, got %s", second)
	}
}

func TestIllegalCharacter(t *testing.T) {
	mylexer := lexer.NewLexer("x # y")
	mylexer.NextToken()

	tok := mylexer.NextToken()
	if tok.Type != lexer.ILLEGAL || tok.Lexeme != "#" || tok.Pos.Column != 3 {
		t.Errorf("expected illegal # at column 3, got %s", tok)
	}
	if next := mylexer.NextToken(); next.Type != lexer.ID {
		t.Errorf("expected lexing to resume, got %s", next)
	}
}

func TestTokensEndWithEOF(t *testing.T) {
	toks := lexer.NewLexer("a\n  b").Tokens()
	if len(toks) != 3 || toks[2].Type != lexer.EOF {
		t.Fatalf("expected a, b, EOF, got %v", toks)
	}
	if toks[1].Pos.Line != 2 || toks[1].Pos.Column != 3 || toks[1].Pos.Offset != 4 {
		t.Errorf("expected b at 2:3 offset 4, got %+v", toks[1].Pos)
	}
}
