package executor

import (
	"fmt"

	"github.com/leengari/recordstore/internal/domain/data"
	"github.com/leengari/recordstore/internal/engine"
	"github.com/leengari/recordstore/internal/parser/ast"
	"github.com/leengari/recordstore/internal/query"
)

func (s *Session) executeQuery(st *ast.QueryStatement) (*Result, error) {
	c, err := s.collection(st.Collection)
	if err != nil {
		return nil, err
	}

	cursor, err := BuildCursor(c, st)
	if err != nil {
		return nil, err
	}

	switch t := st.Terminal().(type) {
	case *ast.CountStage:
		return &Result{Message: fmt.Sprintf("%d", cursor.Count())}, nil
	case *ast.FirstStage:
		r, ok := cursor.First()
		return single(c, r, ok), nil
	case *ast.LastStage:
		r, ok := cursor.Last()
		return single(c, r, ok), nil
	case *ast.KeyStage:
		r, err := cursor.Key(t.Key.Value)
		if err != nil {
			return nil, err
		}
		return single(c, r, true), nil
	}

	records := cursor.Records()
	return &Result{
		Columns: Columns(c, records),
		Records: records,
		Message: fmt.Sprintf("(%d records)", len(records)),
	}, nil
}

// BuildCursor translates the non-terminal stages of st into a cursor over c.
func BuildCursor(c *engine.Collection, st *ast.QueryStatement) (query.Cursor, error) {
	cursor := c.All()
	for i, stage := range st.Stages {
		switch sg := stage.(type) {
		case *ast.WhereStage:
			conds := make([]query.Condition, len(sg.Conditions))
			for j, a := range sg.Conditions {
				attr, op := query.ParseLookup(a.Attribute)
				conds[j] = query.Cond(attr, op, a.Value.Value)
			}
			cursor = cursor.Filter(conds...)
		case *ast.HeadStage:
			cursor = cursor.Head(window(sg.N))
		case *ast.TailStage:
			cursor = cursor.Tail(window(sg.N))
		case *ast.SliceStage:
			cursor = cursor.Slice(sg.Start, sg.Stop)
		case *ast.LookupStage:
			if i != 0 {
				return query.Cursor{}, fmt.Errorf("LOOKUP must be the first stage")
			}
			lc, err := c.Lookup(sg.Group, sg.Value.Value)
			if err != nil {
				return query.Cursor{}, err
			}
			cursor = lc
		case *ast.AllStage, *ast.CountStage, *ast.FirstStage, *ast.LastStage, *ast.KeyStage:
		default:
			return query.Cursor{}, fmt.Errorf("unsupported stage: %T", stage)
		}
	}
	return cursor, nil
}

func window(n *int) int {
	if n == nil {
		return query.DefaultWindow
	}
	return *n
}

func single(c *engine.Collection, r *data.Record, ok bool) *Result {
	if !ok {
		return &Result{Message: "(no records)"}
	}
	records := []*data.Record{r}
	return &Result{Columns: Columns(c, records), Records: records}
}
