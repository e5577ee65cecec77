package parser

import (
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/leengari/recordstore/internal/parser/ast"
	"github.com/leengari/recordstore/internal/parser/lexer"
)

type Parser struct {
	tokens  []lexer.Token
	curPos  int
	curTok  lexer.Token
	peekTok lexer.Token
}

func New(tokens []lexer.Token) *Parser {
	p := &Parser{tokens: tokens, curPos: 0}
	// Read two tokens to set curTok and peekTok
	p.nextToken()
	p.nextToken()
	return p
}

// ParseString tokenizes and parses a single statement.
func ParseString(input string) (ast.Statement, error) {
	tokens, err := lexer.Tokenize(input)
	if err != nil {
		return nil, err
	}
	return New(tokens).Parse()
}

func (p *Parser) nextToken() {
	p.curTok = p.peekTok
	if p.curPos < len(p.tokens) {
		p.peekTok = p.tokens[p.curPos]
		p.curPos++
	} else {
		p.peekTok = lexer.Token{Type: lexer.EOF}
	}
}

func (p *Parser) Parse() (ast.Statement, error) {
	var (
		stmt ast.Statement
		err  error
	)
	switch p.curTok.Type {
	case lexer.LS:
		p.nextToken()
		stmt = &ast.ListStatement{}
	case lexer.USE:
		stmt, err = p.parseUse()
	case lexer.SCHEMA:
		p.nextToken()
		stmt = &ast.SchemaStatement{Collection: p.optionalName()}
	case lexer.VERIFY:
		p.nextToken()
		stmt = &ast.VerifyStatement{Collection: p.optionalName()}
	case lexer.PUSH:
		stmt, err = p.parsePush()
	case lexer.UPDATE:
		stmt, err = p.parseUpdate()
	case lexer.EOF:
		return nil, fmt.Errorf("empty statement")
	default:
		stmt, err = p.parseQuery()
	}
	if err != nil {
		return nil, err
	}

	// Semicolon (Optional)
	if p.curTok.Type == lexer.SEMICOLON {
		p.nextToken()
	}
	if p.curTok.Type != lexer.EOF {
		return nil, fmt.Errorf("unexpected %q after statement", p.curTok.Literal)
	}
	return stmt, nil
}

func (p *Parser) parseUse() (*ast.UseStatement, error) {
	// USE
	p.nextToken()

	if !isWord(p.curTok.Type) {
		return nil, fmt.Errorf("expected collection name, got %q", p.curTok.Literal)
	}
	stmt := &ast.UseStatement{Collection: p.curTok.Literal}
	p.nextToken()
	return stmt, nil
}

func (p *Parser) optionalName() string {
	if !isWord(p.curTok.Type) {
		return ""
	}
	name := p.curTok.Literal
	p.nextToken()
	return name
}

func (p *Parser) parsePush() (*ast.PushStatement, error) {
	stmt := &ast.PushStatement{}

	// PUSH
	p.nextToken()

	// INTO (Optional)
	if p.curTok.Type == lexer.INTO {
		p.nextToken()
		if !isWord(p.curTok.Type) {
			return nil, fmt.Errorf("expected collection name, got %q", p.curTok.Literal)
		}
		stmt.Collection = p.curTok.Literal
		p.nextToken()
	}

	assignments, err := p.parseAssignments()
	if err != nil {
		return nil, err
	}
	if len(assignments) == 0 {
		return nil, fmt.Errorf("PUSH needs at least one attr=value")
	}
	stmt.Assignments = assignments
	return stmt, nil
}

func (p *Parser) parseUpdate() (*ast.UpdateStatement, error) {
	stmt := &ast.UpdateStatement{}

	// UPDATE
	p.nextToken()

	// Collection (Optional)
	if p.curTok.Type != lexer.KEY {
		if !isWord(p.curTok.Type) {
			return nil, fmt.Errorf("expected collection name or KEY, got %q", p.curTok.Literal)
		}
		stmt.Collection = p.curTok.Literal
		p.nextToken()
	}

	// KEY
	if p.curTok.Type != lexer.KEY {
		return nil, fmt.Errorf("expected KEY, got %q", p.curTok.Literal)
	}
	p.nextToken()

	key, err := p.parseLiteral()
	if err != nil {
		return nil, err
	}
	stmt.Key = key

	// SET
	if p.curTok.Type != lexer.SET {
		return nil, fmt.Errorf("expected SET, got %q", p.curTok.Literal)
	}
	p.nextToken()

	assignments, err := p.parseAssignments()
	if err != nil {
		return nil, err
	}
	if len(assignments) == 0 {
		return nil, fmt.Errorf("UPDATE needs at least one attr=value")
	}
	stmt.Assignments = assignments
	return stmt, nil
}

func (p *Parser) parseQuery() (*ast.QueryStatement, error) {
	stmt := &ast.QueryStatement{}

	// FROM (Optional)
	if p.curTok.Type == lexer.FROM {
		p.nextToken()
		if !isWord(p.curTok.Type) {
			return nil, fmt.Errorf("expected collection name, got %q", p.curTok.Literal)
		}
		stmt.Collection = p.curTok.Literal
		p.nextToken()

		if isStatementEnd(p.curTok.Type) {
			return stmt, nil
		}
		if p.curTok.Type != lexer.PIPE {
			return nil, fmt.Errorf("expected | after FROM %s, got %q", stmt.Collection, p.curTok.Literal)
		}
	}

	// A leading pipe is allowed, as in "| head 3".
	if p.curTok.Type == lexer.PIPE {
		p.nextToken()
	}

	for {
		stage, err := p.parseStage()
		if err != nil {
			return nil, err
		}
		if stmt.Terminal() != nil {
			return nil, fmt.Errorf("%s must be the last stage", stmt.Stages[len(stmt.Stages)-1].TokenLiteral())
		}
		stmt.Stages = append(stmt.Stages, stage)

		if p.curTok.Type != lexer.PIPE {
			break
		}
		p.nextToken()
	}
	return stmt, nil
}

func (p *Parser) parseStage() (ast.Stage, error) {
	tok := p.curTok
	p.nextToken()

	switch tok.Type {
	case lexer.WHERE:
		conds, err := p.parseAssignments()
		if err != nil {
			return nil, err
		}
		if len(conds) == 0 {
			return nil, fmt.Errorf("WHERE needs at least one condition")
		}
		return &ast.WhereStage{Conditions: conds}, nil
	case lexer.HEAD:
		n, err := p.optionalInt()
		return &ast.HeadStage{N: n}, err
	case lexer.TAIL:
		n, err := p.optionalInt()
		return &ast.TailStage{N: n}, err
	case lexer.SLICE:
		start, err := p.parseInt()
		if err != nil {
			return nil, err
		}
		stop, err := p.parseInt()
		if err != nil {
			return nil, err
		}
		return &ast.SliceStage{Start: start, Stop: stop}, nil
	case lexer.LOOKUP:
		group, err := p.parseGroup()
		if err != nil {
			return nil, err
		}
		value, err := p.parseLiteral()
		if err != nil {
			return nil, err
		}
		return &ast.LookupStage{Group: group, Value: value}, nil
	case lexer.ALL:
		return &ast.AllStage{}, nil
	case lexer.COUNT:
		return &ast.CountStage{}, nil
	case lexer.FIRST:
		return &ast.FirstStage{}, nil
	case lexer.LAST:
		return &ast.LastStage{}, nil
	case lexer.KEY:
		key, err := p.parseLiteral()
		if err != nil {
			return nil, err
		}
		return &ast.KeyStage{Key: key}, nil
	default:
		return nil, fmt.Errorf("unexpected %q, expected a stage (WHERE, HEAD, TAIL, SLICE, LOOKUP, ALL, COUNT, FIRST, LAST, KEY)", tok.Literal)
	}
}

// parseAssignments reads attr=value pairs up to the next pipe or the end
// of the statement.
func (p *Parser) parseAssignments() ([]*ast.Assignment, error) {
	var list []*ast.Assignment
	for isWord(p.curTok.Type) {
		attr := p.curTok.Literal
		p.nextToken()

		if p.curTok.Type != lexer.EQUALS {
			return nil, fmt.Errorf("expected = after %s, got %q", attr, p.curTok.Literal)
		}
		p.nextToken()

		value, err := p.parseLiteral()
		if err != nil {
			return nil, err
		}
		list = append(list, &ast.Assignment{Attribute: attr, Value: value})

		// Commas between pairs are optional
		if p.curTok.Type == lexer.COMMA {
			p.nextToken()
		}
	}
	return list, nil
}

// parseGroup reads attr[,attr...].
func (p *Parser) parseGroup() ([]string, error) {
	if !isWord(p.curTok.Type) {
		return nil, fmt.Errorf("expected attribute name, got %q", p.curTok.Literal)
	}
	group := []string{p.curTok.Literal}
	p.nextToken()

	for p.curTok.Type == lexer.COMMA {
		p.nextToken()
		if !isWord(p.curTok.Type) {
			return nil, fmt.Errorf("expected attribute name after comma, got %q", p.curTok.Literal)
		}
		group = append(group, p.curTok.Literal)
		p.nextToken()
	}
	return group, nil
}

func (p *Parser) optionalInt() (*int, error) {
	if p.curTok.Type != lexer.NUMBER {
		return nil, nil
	}
	n, err := p.parseInt()
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (p *Parser) parseInt() (int, error) {
	if p.curTok.Type != lexer.NUMBER {
		return 0, fmt.Errorf("expected integer, got %q", p.curTok.Literal)
	}
	n, err := strconv.Atoi(p.curTok.Literal)
	if err != nil {
		return 0, fmt.Errorf("invalid integer: %s", p.curTok.Literal)
	}
	p.nextToken()
	return n, nil
}

func (p *Parser) parseLiteral() (*ast.Literal, error) {
	tok := p.curTok
	if !isValue(tok.Type) {
		return nil, fmt.Errorf("unexpected token in value: %q", tok.Literal)
	}
	p.nextToken()

	switch tok.Type {
	case lexer.STRING:
		return &ast.Literal{TokenLiteralValue: strconv.Quote(tok.Literal), Value: tok.Literal}, nil
	case lexer.TRUE:
		return &ast.Literal{TokenLiteralValue: "true", Value: true}, nil
	case lexer.FALSE:
		return &ast.Literal{TokenLiteralValue: "false", Value: false}, nil
	case lexer.NULL:
		return &ast.Literal{TokenLiteralValue: "null", Value: nil}, nil
	}

	// Numbers, bare words and sequences are YAML flow scalars.
	v, err := DecodeValue(tok.Literal)
	if err != nil {
		return nil, err
	}
	return &ast.Literal{TokenLiteralValue: tok.Literal, Value: v}, nil
}

// DecodeValue decodes a YAML flow scalar or sequence: "10" is an int,
// "1.5" a float64, "[a, 2]" a []any and anything else a string.
func DecodeValue(text string) (any, error) {
	var v any
	if err := yaml.Unmarshal([]byte(text), &v); err != nil {
		return nil, fmt.Errorf("invalid value %q: %w", text, err)
	}
	if v == nil {
		return text, nil
	}
	if m, ok := v.(map[string]any); ok {
		return nil, fmt.Errorf("invalid value %q: mappings are not supported (%d keys)", text, len(m))
	}
	return v, nil
}
