package lexer_test

import (
	"plvm/pkg/lexer"
	"testing"
)

func TestNumbers(t *testing.T) {
	tests := []struct {
		input       string
		expected    lexer.TokenType
		description string
	}{
		{"42", lexer.NUM, "integer"},
		{"0", lexer.NUM, "zero"},
		{"42L", lexer.NUM, "long"},
		{"7l", lexer.NUM, "long lower case"},

		{"3.14", lexer.NUM, "simple double"},
		{"0.5", lexer.NUM, "double starting with zero"},
		{"1.5f", lexer.NUM, "float"},
		{"2F", lexer.NUM, "integral float"},

		{"1e5", lexer.NUM, "scientific notation with e"},
		{"1e+5", lexer.NUM, "scientific notation with e+"},
		{"1e-5", lexer.NUM, "scientific notation with e-"},
		{"2.5e10", lexer.NUM, "double with scientific notation"},
		{"3.14E-2", lexer.NUM, "double with negative exponent E"},
		{"1.23e+10f", lexer.NUM, "float with positive exponent"},

		{"1000000", lexer.NUM, "large integer"},
	}

	for _, test := range tests {
		tokenType, lexeme, matched := lexer.MatchToken(test.input)
		if !matched {
			t.Errorf("Failed to match %s (%s)", test.input, test.description)
		}
		if tokenType != test.expected {
			t.Errorf("Input %s (%s): expected %s, got %s", test.input, test.description, test.expected, tokenType)
		}
		if lexeme != test.input {
			t.Errorf("Input %s (%s): expected lexeme %s, got %s", test.input, test.description, test.input, lexeme)
		}
	}
}

func TestNumberFollowedByMember(t *testing.T) {
	mylexer := lexer.NewLexer("5.toString()")
	expected := []lexer.TokenType{lexer.NUM, lexer.DOT, lexer.ID, lexer.LPAREN, lexer.RPAREN, lexer.EOF}

	for i, want := range expected {
		token := mylexer.NextToken()
		if token.Type != want {
			t.Errorf("Token %d: expected %s, got %s", i, want, token.Type)
		}
	}
}
