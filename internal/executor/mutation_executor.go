package executor

import (
	"fmt"

	"github.com/leengari/recordstore/internal/domain/data"
	"github.com/leengari/recordstore/internal/parser/ast"
)

func (s *Session) executePush(st *ast.PushStatement) (*Result, error) {
	c, err := s.collection(st.Collection)
	if err != nil {
		return nil, err
	}

	r := data.New(c.Schema())
	if err := assign(r, st.Assignments); err != nil {
		return nil, err
	}
	if err := c.Push(r); err != nil {
		return nil, err
	}

	records := []*data.Record{r}
	return &Result{
		Columns: Columns(c, records),
		Records: records,
		Message: fmt.Sprintf("pushed %s as id %d", r.Repr(), r.ID()),
	}, nil
}

func (s *Session) executeUpdate(st *ast.UpdateStatement) (*Result, error) {
	c, err := s.collection(st.Collection)
	if err != nil {
		return nil, err
	}

	r, err := c.All().Key(st.Key.Value)
	if err != nil {
		return nil, err
	}
	if err := assign(r, st.Assignments); err != nil {
		return nil, err
	}
	if err := c.Push(r); err != nil {
		return nil, err
	}

	records := []*data.Record{r}
	return &Result{
		Columns: Columns(c, records),
		Records: records,
		Message: fmt.Sprintf("updated id %d", r.ID()),
	}, nil
}

func assign(r *data.Record, assignments []*ast.Assignment) error {
	for _, a := range assignments {
		if err := r.Set(a.Attribute, a.Value.Value); err != nil {
			return err
		}
	}
	return nil
}
