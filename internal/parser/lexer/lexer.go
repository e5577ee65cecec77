package lexer

import (
	"fmt"
	"strings"
)

type TokenType int

const (
	// Special
	ILLEGAL TokenType = iota
	EOF
	WS // Whitespace

	// Literals
	IDENTIFIER // users, age__gte, ann@example.com
	STRING     // 'value' or "value"
	NUMBER     // 123, -4, 1.23
	SEQUENCE   // [1, 2, 'a'] kept raw for the YAML decoder

	// Keywords
	LS
	USE
	SCHEMA
	VERIFY
	PUSH
	INTO
	UPDATE
	SET
	FROM
	WHERE
	HEAD
	TAIL
	SLICE
	LOOKUP
	ALL
	COUNT
	FIRST
	LAST
	KEY
	TRUE
	FALSE
	NULL

	// Operators & Punctuation
	PIPE      // |
	COMMA     // ,
	EQUALS    // =
	SEMICOLON // ;
)

var keywords = map[string]TokenType{
	"LS":     LS,
	"LIST":   LS,
	"USE":    USE,
	"SCHEMA": SCHEMA,
	"VERIFY": VERIFY,
	"PUSH":   PUSH,
	"INTO":   INTO,
	"UPDATE": UPDATE,
	"SET":    SET,
	"FROM":   FROM,
	"WHERE":  WHERE,
	"HEAD":   HEAD,
	"TAIL":   TAIL,
	"SLICE":  SLICE,
	"LOOKUP": LOOKUP,
	"ALL":    ALL,
	"COUNT":  COUNT,
	"FIRST":  FIRST,
	"LAST":   LAST,
	"KEY":    KEY,
	"TRUE":   TRUE,
	"FALSE":  FALSE,
	"NULL":   NULL,
}

// IsKeyword reports whether t is a reserved word. Keywords are still
// accepted as attribute names where the grammar expects one.
func IsKeyword(t TokenType) bool {
	return t >= LS && t <= NULL
}

type Token struct {
	Type    TokenType
	Literal string
	Line    int
	Column  int
}

func (t Token) String() string {
	return fmt.Sprintf("Token(%d, %q)", t.Type, t.Literal)
}

type Lexer struct {
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           byte // current char under examination
	line         int
	column       int
}

func New(input string) *Lexer {
	l := &Lexer{input: input, line: 1, column: 0}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition += 1
	l.column++
}

func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

func (l *Lexer) NextToken() Token {
	var tok Token

	l.skipWhitespace()

	tok.Line = l.line
	tok.Column = l.column

	switch l.ch {
	case '|':
		tok = newToken(PIPE, l.ch, l.line, l.column)
	case ',':
		tok = newToken(COMMA, l.ch, l.line, l.column)
	case '=':
		tok = newToken(EQUALS, l.ch, l.line, l.column)
	case ';':
		tok = newToken(SEMICOLON, l.ch, l.line, l.column)
	case '\'', '"':
		lit, ok := l.readString(l.ch)
		if !ok {
			tok.Type = ILLEGAL
			tok.Literal = lit
			return tok
		}
		tok.Type = STRING
		tok.Literal = lit
		return tok
	case '[':
		lit, ok := l.readSequence()
		if !ok {
			tok.Type = ILLEGAL
			tok.Literal = lit
			return tok
		}
		tok.Type = SEQUENCE
		tok.Literal = lit
		return tok
	case 0:
		tok.Literal = ""
		tok.Type = EOF
	default:
		if isLetter(l.ch) {
			tok.Literal = l.readIdentifier()
			tok.Type = LookupIdent(tok.Literal)
			return tok
		} else if isDigit(l.ch) || (l.ch == '-' && isDigit(l.peekChar())) {
			tok.Type = NUMBER
			tok.Literal = l.readNumber()
			return tok
		} else {
			tok = newToken(ILLEGAL, l.ch, l.line, l.column)
		}
	}

	l.readChar()
	return tok
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		if l.ch == '\n' {
			l.line++
			l.column = 0
		}
		l.readChar()
	}
}

// readIdentifier reads a bare word. Besides letters, digits and '_' a word
// may contain '@', '.', '-', ':' and '/' so that e-mail addresses, dates and
// paths need no quoting.
func (l *Lexer) readIdentifier() string {
	position := l.position
	for isLetter(l.ch) || isDigit(l.ch) || strings.IndexByte("@.-:/", l.ch) >= 0 {
		l.readChar()
	}
	return l.input[position:l.position]
}

func (l *Lexer) readNumber() string {
	position := l.position
	if l.ch == '-' {
		l.readChar()
	}
	for isDigit(l.ch) {
		l.readChar()
	}
	// Support simple floats
	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	return l.input[position:l.position]
}

// readString reads a quoted string. A doubled quote character inside the
// string stands for one quote.
func (l *Lexer) readString(quote byte) (string, bool) {
	var b strings.Builder
	for {
		l.readChar()
		switch l.ch {
		case 0:
			return b.String(), false
		case quote:
			if l.peekChar() == quote {
				b.WriteByte(quote)
				l.readChar()
				continue
			}
			// Consume the closing quote
			l.readChar()
			return b.String(), true
		default:
			b.WriteByte(l.ch)
		}
	}
}

// readSequence reads a bracketed flow sequence, nesting and quotes
// included, and returns it verbatim.
func (l *Lexer) readSequence() (string, bool) {
	position := l.position
	depth := 0
	var quote byte
	for {
		switch {
		case l.ch == 0:
			return l.input[position:l.position], false
		case quote != 0:
			if l.ch == quote {
				quote = 0
			}
		case l.ch == '\'' || l.ch == '"':
			quote = l.ch
		case l.ch == '[':
			depth++
		case l.ch == ']':
			depth--
			if depth == 0 {
				l.readChar()
				return l.input[position:l.position], true
			}
		}
		l.readChar()
	}
}

func newToken(tokenType TokenType, ch byte, line, col int) Token {
	return Token{Type: tokenType, Literal: string(ch), Line: line, Column: col}
}

func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[strings.ToUpper(ident)]; ok {
		return tok
	}
	return IDENTIFIER
}

func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

// Helper to tokenize entire string at once
func Tokenize(input string) ([]Token, error) {
	l := New(input)
	var tokens []Token
	for {
		tok := l.NextToken()
		if tok.Type == EOF {
			break
		}
		if tok.Type == ILLEGAL {
			return nil, fmt.Errorf("illegal token at line %d, col %d: %s", tok.Line, tok.Column, tok.Literal)
		}
		tokens = append(tokens, tok)
	}
	return tokens, nil
}
