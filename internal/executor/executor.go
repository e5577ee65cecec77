// Package executor runs parsed shell statements against a registry of
// collections.
package executor

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/leengari/recordstore/internal/domain/data"
	"github.com/leengari/recordstore/internal/engine"
	"github.com/leengari/recordstore/internal/parser"
	"github.com/leengari/recordstore/internal/parser/ast"
	"github.com/leengari/recordstore/internal/storage/manager"
)

type Result struct {
	Columns []string
	Records []*data.Record
	Message string
}

// Session executes statements for one shell or CLI invocation and
// remembers the collection selected with USE.
type Session struct {
	registry *manager.Registry
	current  string
	logger   *slog.Logger
}

// NewSession creates a session over reg. A nil logger uses slog.Default().
func NewSession(reg *manager.Registry, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{registry: reg, logger: logger}
}

// Current returns the collection selected with USE, if any.
func (s *Session) Current() string {
	return s.current
}

// ExecuteString parses and executes one statement.
func (s *Session) ExecuteString(input string) (*Result, error) {
	stmt, err := parser.ParseString(input)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	return s.Execute(stmt)
}

func (s *Session) Execute(stmt ast.Statement) (*Result, error) {
	s.logger.Debug("executing statement", "statement", stmt.String(), "collection", s.current)

	switch st := stmt.(type) {
	case *ast.ListStatement:
		return s.executeList()
	case *ast.UseStatement:
		return s.executeUse(st)
	case *ast.SchemaStatement:
		return s.executeSchema(st)
	case *ast.VerifyStatement:
		return s.executeVerify(st)
	case *ast.PushStatement:
		return s.executePush(st)
	case *ast.UpdateStatement:
		return s.executeUpdate(st)
	case *ast.QueryStatement:
		return s.executeQuery(st)
	default:
		return nil, fmt.Errorf("unsupported statement type: %T", stmt)
	}
}

// collection resolves name, falling back to the current collection.
func (s *Session) collection(name string) (*engine.Collection, error) {
	if name == "" {
		name = s.current
	}
	if name == "" {
		return nil, fmt.Errorf("no collection selected: run USE <name> or name one with FROM/INTO")
	}
	c, ok := s.registry.Get(name)
	if !ok {
		return nil, fmt.Errorf("collection not found: %s", name)
	}
	return c, nil
}

func (s *Session) executeList() (*Result, error) {
	names := s.registry.List()
	if len(names) == 0 {
		return &Result{Message: "no collections"}, nil
	}

	lines := make([]string, len(names))
	for i, name := range names {
		marker := " "
		if name == s.current {
			marker = "*"
		}
		n := 0
		if c, ok := s.registry.Get(name); ok {
			n = c.Len()
		}
		lines[i] = fmt.Sprintf("%s %s (%d records)", marker, name, n)
	}
	return &Result{Message: strings.Join(lines, "\n")}, nil
}

func (s *Session) executeUse(st *ast.UseStatement) (*Result, error) {
	if _, ok := s.registry.Get(st.Collection); !ok {
		return nil, fmt.Errorf("collection not found: %s", st.Collection)
	}
	s.current = st.Collection
	return &Result{Message: fmt.Sprintf("using %s", st.Collection)}, nil
}

func (s *Session) executeSchema(st *ast.SchemaStatement) (*Result, error) {
	c, err := s.collection(st.Collection)
	if err != nil {
		return nil, err
	}
	sc := c.Schema()

	var b strings.Builder
	fmt.Fprintf(&b, "%s -> %s (%d records)\n", c.Name(), sc.Name(), c.Len())
	fmt.Fprintf(&b, "  keys:    %s\n", joinGroups(sc.Keys()))
	fmt.Fprintf(&b, "  indexes: %s", joinGroups(sc.Indexes()))
	return &Result{Message: b.String()}, nil
}

func (s *Session) executeVerify(st *ast.VerifyStatement) (*Result, error) {
	c, err := s.collection(st.Collection)
	if err != nil {
		return nil, err
	}
	if err := c.Verify(); err != nil {
		return nil, err
	}
	return &Result{Message: fmt.Sprintf("%s: %d records, indexes consistent", c.Name(), c.Len())}, nil
}

// Columns returns "id" followed by the key attributes of c in declaration
// order and then every other attribute present in records, sorted.
func Columns(c *engine.Collection, records []*data.Record) []string {
	cols := []string{"id"}
	seen := map[string]bool{"id": true}
	for _, g := range c.Schema().Keys() {
		for _, attr := range g {
			if !seen[attr] {
				seen[attr] = true
				cols = append(cols, attr)
			}
		}
	}

	var rest []string
	for _, r := range records {
		for _, attr := range r.Names() {
			if !seen[attr] {
				seen[attr] = true
				rest = append(rest, attr)
			}
		}
	}
	slices.Sort(rest)
	return append(cols, rest...)
}

func joinGroups[G ~[]string](groups []G) string {
	if len(groups) == 0 {
		return "-"
	}
	parts := make([]string, len(groups))
	for i, g := range groups {
		parts[i] = "(" + strings.Join(g, ", ") + ")"
	}
	return strings.Join(parts, ", ")
}
