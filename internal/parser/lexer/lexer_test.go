package lexer

import (
	"testing"
)

func TestNextToken(t *testing.T) {
	input := `from users | where age__gte=10 email='a@x.io' | slice -3 -1;
push into users email=ann@x.io tags=[a, 'b]'] score=1.25 active=true`

	tests := []struct {
		expectedType    TokenType
		expectedLiteral string
	}{
		{FROM, "from"},
		{IDENTIFIER, "users"},
		{PIPE, "|"},
		{WHERE, "where"},
		{IDENTIFIER, "age__gte"},
		{EQUALS, "="},
		{NUMBER, "10"},
		{IDENTIFIER, "email"},
		{EQUALS, "="},
		{STRING, "a@x.io"},
		{PIPE, "|"},
		{SLICE, "slice"},
		{NUMBER, "-3"},
		{NUMBER, "-1"},
		{SEMICOLON, ";"},
		{PUSH, "push"},
		{INTO, "into"},
		{IDENTIFIER, "users"},
		{IDENTIFIER, "email"},
		{EQUALS, "="},
		{IDENTIFIER, "ann@x.io"},
		{IDENTIFIER, "tags"},
		{EQUALS, "="},
		{SEQUENCE, "[a, 'b]']"},
		{IDENTIFIER, "score"},
		{EQUALS, "="},
		{NUMBER, "1.25"},
		{IDENTIFIER, "active"},
		{EQUALS, "="},
		{TRUE, "true"},
		{EOF, ""},
	}

	l := New(input)

	for i, tt := range tests {
		tok := l.NextToken()

		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%d, got=%d (%q)",
				i, tt.expectedType, tok.Type, tok.Literal)
		}

		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q",
				i, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestQuotedStrings(t *testing.T) {
	tokens, err := Tokenize(`"Ann Lee" 'it''s'`)
	if err != nil {
		t.Fatalf("Tokenize error: %v", err)
	}
	if len(tokens) != 2 {
		t.Fatalf("Expected 2 tokens, got %d", len(tokens))
	}
	if tokens[0].Literal != "Ann Lee" {
		t.Errorf("Expected Ann Lee, got %q", tokens[0].Literal)
	}
	if tokens[1].Literal != "it's" {
		t.Errorf("Expected it's, got %q", tokens[1].Literal)
	}
}

func TestTokenizeRejectsUnterminated(t *testing.T) {
	for _, input := range []string{`'open`, `[1, 2`, `age > 3`} {
		if _, err := Tokenize(input); err == nil {
			t.Errorf("Tokenize(%q): expected error", input)
		}
	}
}
