package lexer_test

import (
	"plvm/pkg/lexer"
	"testing"
)

func TestComments(t *testing.T) {
	input := `// test comment
var x: int = 10; // another test comment
/* a block
   comment */
var y: float = 20.0f;`

	mylexer := lexer.NewLexer(input)
	expectedTokens := []lexer.TokenType{
		lexer.VAR, lexer.ID, lexer.COLON, lexer.ID, lexer.ASSIGN, lexer.NUM, lexer.SEMICOLON,
		lexer.VAR, lexer.ID, lexer.COLON, lexer.ID, lexer.ASSIGN, lexer.NUM, lexer.SEMICOLON,
		lexer.EOF,
	}

	for i, expected := range expectedTokens {
		token := mylexer.NextToken()
		if token.Type != expected {
			t.Errorf("Token %d: expected %s, got %s", i, expected, token.Type)
		}
	}
}

func TestCommentPositions(t *testing.T) {
	mylexer := lexer.NewLexer("/* one\ntwo */ x")
	token := mylexer.NextToken()

	if token.Type != lexer.ID || token.Pos.Line != 2 || token.Pos.Column != 8 {
		t.Errorf("expected id at 2:8, got %s", token)
	}
}
