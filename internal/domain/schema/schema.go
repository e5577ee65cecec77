package schema

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/leengari/recordstore/internal/domain/errors"
)

// Group is an ordered tuple of attribute names. A singleton group names one
// attribute; a composite group names several whose combined value is treated
// as one key.
type Group []string

// Composite reports whether the group spans more than one attribute.
func (g Group) Composite() bool {
	return len(g) > 1
}

// Contains reports whether attr participates in the group.
func (g Group) Contains(attr string) bool {
	for _, a := range g {
		if a == attr {
			return true
		}
	}
	return false
}

func (g Group) String() string {
	if len(g) == 1 {
		return g[0]
	}
	return "(" + strings.Join(g, ", ") + ")"
}

func (g Group) equal(o Group) bool {
	if len(g) != len(o) {
		return false
	}
	for i := range g {
		if g[i] != o[i] {
			return false
		}
	}
	return true
}

// Schema describes a record type: its unique key groups, its non-unique
// index groups and, optionally, the name of the collection it is stored in.
// A Schema is immutable once declared.
type Schema struct {
	name       string
	keys       []Group
	indexes    []Group
	collection string
	keyAttrs   map[string]struct{}
}

// Option configures a Schema at declaration time.
type Option func(*Schema)

// WithCollection binds the schema to a collection name resolved through a
// registry.
func WithCollection(name string) Option {
	return func(s *Schema) {
		s.collection = name
	}
}

// Declare creates the schema for a record type.
func Declare(name string, keys, indexes []Group, opts ...Option) (*Schema, error) {
	if name == "" {
		return nil, fmt.Errorf("schema name is required")
	}

	s := &Schema{
		name:     name,
		keyAttrs: make(map[string]struct{}),
	}

	var err error
	if s.keys, err = cloneGroups(name, "key", keys); err != nil {
		return nil, err
	}
	if s.indexes, err = cloneGroups(name, "index", indexes); err != nil {
		return nil, err
	}

	for _, g := range s.keys {
		for _, attr := range g {
			s.keyAttrs[attr] = struct{}{}
		}
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// MustDeclare is like Declare but panics on an invalid declaration.
func MustDeclare(name string, keys, indexes []Group, opts ...Option) *Schema {
	s, err := Declare(name, keys, indexes, opts...)
	if err != nil {
		panic(err)
	}
	return s
}

func cloneGroups(schema, kind string, groups []Group) ([]Group, error) {
	out := make([]Group, 0, len(groups))
	for i, g := range groups {
		if len(g) == 0 {
			return nil, fmt.Errorf("schema %s: %s group %d is empty", schema, kind, i)
		}
		seen := make(map[string]struct{}, len(g))
		for _, attr := range g {
			if attr == "" {
				return nil, fmt.Errorf("schema %s: %s group %d has an empty attribute name", schema, kind, i)
			}
			if _, dup := seen[attr]; dup {
				return nil, fmt.Errorf("schema %s: %s group %s repeats attribute %q", schema, kind, g, attr)
			}
			seen[attr] = struct{}{}
		}
		for _, prev := range out {
			if prev.equal(g) {
				return nil, fmt.Errorf("schema %s: %s group %s declared twice", schema, kind, g)
			}
		}
		out = append(out, append(Group(nil), g...))
	}
	return out, nil
}

// Name returns the record type name.
func (s *Schema) Name() string {
	return s.name
}

// Keys returns the key groups in declaration order.
func (s *Schema) Keys() []Group {
	return copyGroups(s.keys)
}

// Indexes returns the index groups in declaration order.
func (s *Schema) Indexes() []Group {
	return copyGroups(s.indexes)
}

// Collection returns the bound collection name, if any.
func (s *Schema) Collection() (string, bool) {
	return s.collection, s.collection != ""
}

// IsKeyAttribute reports whether attr participates in any key group.
func (s *Schema) IsKeyAttribute(attr string) bool {
	_, ok := s.keyAttrs[attr]
	return ok
}

// ValidateAssignment rejects null or empty values for key attributes.
// Every attribute write goes through it.
func (s *Schema) ValidateAssignment(attr string, value any) error {
	if s.IsKeyAttribute(attr) && IsNull(value) {
		return errors.NewInvalidKey(s.name, attr)
	}
	return nil
}

// IsNull reports whether v counts as unset: nil, a typed nil or "".
func IsNull(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return s == ""
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

func copyGroups(groups []Group) []Group {
	out := make([]Group, len(groups))
	for i, g := range groups {
		out[i] = append(Group(nil), g...)
	}
	return out
}
