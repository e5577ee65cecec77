package parser

import (
	"github.com/leengari/recordstore/internal/parser/lexer"
)

// isWord checks if a token can be used as a collection or attribute name.
// Keywords qualify, so an attribute may be called "key" or "count".
func isWord(t lexer.TokenType) bool {
	return t == lexer.IDENTIFIER || lexer.IsKeyword(t)
}

// isValue checks if a token can be a literal value. Keywords other than
// TRUE, FALSE and NULL read as bare strings.
func isValue(t lexer.TokenType) bool {
	switch t {
	case lexer.STRING, lexer.NUMBER, lexer.SEQUENCE:
		return true
	}
	return isWord(t)
}

// isStatementEnd checks if a token closes the current statement
func isStatementEnd(t lexer.TokenType) bool {
	return t == lexer.EOF || t == lexer.SEMICOLON
}
