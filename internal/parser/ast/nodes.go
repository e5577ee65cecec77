package ast

import (
	"bytes"
	"fmt"
	"strings"
)

// Node is the base interface for all AST nodes
type Node interface {
	TokenLiteral() string
	String() string
}

// Statement represents a standalone shell command (LS, PUSH, a query, ...)
type Statement interface {
	Node
	statementNode()
}

// Stage represents one step of a query pipeline
type Stage interface {
	Node
	stageNode()
}

// Literal represents a fixed value decoded from the command line
type Literal struct {
	TokenLiteralValue string
	Value             any // string, int, float64, bool, nil, []any
}

func (l *Literal) TokenLiteral() string { return l.TokenLiteralValue }
func (l *Literal) String() string       { return l.TokenLiteralValue }

// Assignment: attribute=value, also used for where conditions
type Assignment struct {
	Attribute string
	Value     *Literal
}

func (a *Assignment) TokenLiteral() string { return a.Attribute }
func (a *Assignment) String() string {
	return fmt.Sprintf("%s=%s", a.Attribute, a.Value.String())
}

// ListStatement: LS
type ListStatement struct{}

func (s *ListStatement) statementNode()       {}
func (s *ListStatement) TokenLiteral() string { return "LS" }
func (s *ListStatement) String() string       { return "LS" }

// UseStatement: USE collection
type UseStatement struct {
	Collection string
}

func (s *UseStatement) statementNode()       {}
func (s *UseStatement) TokenLiteral() string { return "USE" }
func (s *UseStatement) String() string       { return "USE " + s.Collection }

// SchemaStatement: SCHEMA [collection]
type SchemaStatement struct {
	Collection string // empty means the current collection
}

func (s *SchemaStatement) statementNode()       {}
func (s *SchemaStatement) TokenLiteral() string { return "SCHEMA" }
func (s *SchemaStatement) String() string {
	return strings.TrimSpace("SCHEMA " + s.Collection)
}

// VerifyStatement: VERIFY [collection]
type VerifyStatement struct {
	Collection string
}

func (s *VerifyStatement) statementNode()       {}
func (s *VerifyStatement) TokenLiteral() string { return "VERIFY" }
func (s *VerifyStatement) String() string {
	return strings.TrimSpace("VERIFY " + s.Collection)
}

// PushStatement: PUSH [INTO collection] attr=value ...
type PushStatement struct {
	Collection  string
	Assignments []*Assignment
}

func (s *PushStatement) statementNode()       {}
func (s *PushStatement) TokenLiteral() string { return "PUSH" }
func (s *PushStatement) String() string {
	var out bytes.Buffer
	out.WriteString("PUSH")
	if s.Collection != "" {
		out.WriteString(" INTO ")
		out.WriteString(s.Collection)
	}
	writeAssignments(&out, s.Assignments)
	return out.String()
}

// UpdateStatement: UPDATE [collection] KEY value SET attr=value ...
type UpdateStatement struct {
	Collection  string
	Key         *Literal
	Assignments []*Assignment
}

func (s *UpdateStatement) statementNode()       {}
func (s *UpdateStatement) TokenLiteral() string { return "UPDATE" }
func (s *UpdateStatement) String() string {
	var out bytes.Buffer
	out.WriteString("UPDATE ")
	if s.Collection != "" {
		out.WriteString(s.Collection)
		out.WriteString(" ")
	}
	out.WriteString("KEY ")
	out.WriteString(s.Key.String())
	out.WriteString(" SET")
	writeAssignments(&out, s.Assignments)
	return out.String()
}

// QueryStatement: [FROM collection] stage | stage ...
type QueryStatement struct {
	Collection string
	Stages     []Stage
}

func (s *QueryStatement) statementNode()       {}
func (s *QueryStatement) TokenLiteral() string { return "FROM" }
func (s *QueryStatement) String() string {
	parts := make([]string, 0, len(s.Stages)+1)
	if s.Collection != "" {
		parts = append(parts, "FROM "+s.Collection)
	}
	for _, st := range s.Stages {
		parts = append(parts, st.String())
	}
	return strings.Join(parts, " | ")
}

// Terminal returns the final stage when it materializes a single answer
// (COUNT, FIRST, LAST, KEY), or nil when the query lists records.
func (s *QueryStatement) Terminal() Stage {
	if len(s.Stages) == 0 {
		return nil
	}
	switch st := s.Stages[len(s.Stages)-1].(type) {
	case *CountStage, *FirstStage, *LastStage, *KeyStage:
		return st
	}
	return nil
}

// WhereStage: WHERE attr__op=value ...
type WhereStage struct {
	Conditions []*Assignment
}

func (s *WhereStage) stageNode()           {}
func (s *WhereStage) TokenLiteral() string { return "WHERE" }
func (s *WhereStage) String() string {
	var out bytes.Buffer
	out.WriteString("WHERE")
	writeAssignments(&out, s.Conditions)
	return out.String()
}

// HeadStage: HEAD [n]
type HeadStage struct {
	N *int // nil means the default window
}

func (s *HeadStage) stageNode()           {}
func (s *HeadStage) TokenLiteral() string { return "HEAD" }
func (s *HeadStage) String() string       { return windowString("HEAD", s.N) }

// TailStage: TAIL [n]
type TailStage struct {
	N *int
}

func (s *TailStage) stageNode()           {}
func (s *TailStage) TokenLiteral() string { return "TAIL" }
func (s *TailStage) String() string       { return windowString("TAIL", s.N) }

// SliceStage: SLICE start stop
type SliceStage struct {
	Start int
	Stop  int
}

func (s *SliceStage) stageNode()           {}
func (s *SliceStage) TokenLiteral() string { return "SLICE" }
func (s *SliceStage) String() string       { return fmt.Sprintf("SLICE %d %d", s.Start, s.Stop) }

// LookupStage: LOOKUP attr[,attr...] value
type LookupStage struct {
	Group []string
	Value *Literal
}

func (s *LookupStage) stageNode()           {}
func (s *LookupStage) TokenLiteral() string { return "LOOKUP" }
func (s *LookupStage) String() string {
	return fmt.Sprintf("LOOKUP %s %s", strings.Join(s.Group, ","), s.Value.String())
}

// AllStage: ALL
type AllStage struct{}

func (s *AllStage) stageNode()           {}
func (s *AllStage) TokenLiteral() string { return "ALL" }
func (s *AllStage) String() string       { return "ALL" }

// CountStage: COUNT
type CountStage struct{}

func (s *CountStage) stageNode()           {}
func (s *CountStage) TokenLiteral() string { return "COUNT" }
func (s *CountStage) String() string       { return "COUNT" }

// FirstStage: FIRST
type FirstStage struct{}

func (s *FirstStage) stageNode()           {}
func (s *FirstStage) TokenLiteral() string { return "FIRST" }
func (s *FirstStage) String() string       { return "FIRST" }

// LastStage: LAST
type LastStage struct{}

func (s *LastStage) stageNode()           {}
func (s *LastStage) TokenLiteral() string { return "LAST" }
func (s *LastStage) String() string       { return "LAST" }

// KeyStage: KEY value
type KeyStage struct {
	Key *Literal
}

func (s *KeyStage) stageNode()           {}
func (s *KeyStage) TokenLiteral() string { return "KEY" }
func (s *KeyStage) String() string       { return "KEY " + s.Key.String() }

func windowString(name string, n *int) string {
	if n == nil {
		return name
	}
	return fmt.Sprintf("%s %d", name, *n)
}

func writeAssignments(out *bytes.Buffer, as []*Assignment) {
	for _, a := range as {
		out.WriteString(" ")
		out.WriteString(a.String())
	}
}
