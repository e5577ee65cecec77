package data

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/leengari/recordstore/internal/domain/schema"
)

// Tuple is the value of a composite key or index group, in group order.
type Tuple []any

func (t Tuple) String() string {
	parts := make([]string, len(t))
	for i, v := range t {
		parts[i] = fmt.Sprint(v)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// Meta is the engine-managed part of a record.
type Meta struct {
	ID       int64     // 0 until the first successful push
	PushedAt time.Time // time of the latest successful push
}

// Record is an application entity: free-form attributes validated against
// its schema, plus engine metadata.
//
// Every attribute write goes through Set, so a record holding a null key
// attribute can never be built.
type Record struct {
	schema *schema.Schema
	attrs  map[string]any
	meta   Meta
	token  uuid.UUID
}

// New creates an empty record of the given type.
func New(s *schema.Schema) *Record {
	return &Record{
		schema: s,
		attrs:  make(map[string]any),
		token:  uuid.New(),
	}
}

// NewRecord creates a record and assigns attrs through Set.
// Attributes are applied in sorted name order so the reported error is stable.
func NewRecord(s *schema.Schema, attrs map[string]any) (*Record, error) {
	r := New(s)
	for _, name := range sortedKeys(attrs) {
		if err := r.Set(name, attrs[name]); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Schema returns the record type descriptor.
func (r *Record) Schema() *schema.Schema {
	return r.schema
}

// Set assigns an attribute after validating it against the schema.
func (r *Record) Set(attr string, value any) error {
	if err := r.schema.ValidateAssignment(attr, value); err != nil {
		return err
	}
	r.attrs[attr] = value
	return nil
}

// Get returns an attribute value and whether it is set.
func (r *Record) Get(attr string) (any, bool) {
	v, ok := r.attrs[attr]
	return v, ok
}

// Value returns an attribute value, or nil when it is not set.
func (r *Record) Value(attr string) any {
	return r.attrs[attr]
}

// Attributes returns a deep copy of every attribute.
func (r *Record) Attributes() map[string]any {
	out := make(map[string]any, len(r.attrs))
	for k, v := range r.attrs {
		out[k] = CloneValue(v)
	}
	return out
}

// Names returns the set attribute names in sorted order.
func (r *Record) Names() []string {
	return sortedKeys(r.attrs)
}

// ID returns the engine-issued identity, or 0 if the record was never pushed.
func (r *Record) ID() int64 {
	return r.meta.ID
}

// PushedAt returns the time of the latest successful push.
func (r *Record) PushedAt() time.Time {
	return r.meta.PushedAt
}

// Meta returns the engine-managed metadata.
func (r *Record) Meta() Meta {
	return r.meta
}

// Stamp records a successful push. It is called by storage engines only.
// The identity cannot change once issued.
func (r *Record) Stamp(id int64, at time.Time) error {
	if id <= 0 {
		return fmt.Errorf("invalid identity %d", id)
	}
	if r.meta.ID != 0 && r.meta.ID != id {
		return fmt.Errorf("identity %d is immutable (got %d)", r.meta.ID, id)
	}
	r.meta.ID = id
	r.meta.PushedAt = at
	return nil
}

// KeyValue returns the value of group on this record: the scalar for a
// singleton group, a Tuple for a composite one. ok is false when any
// component is unset.
func (r *Record) KeyValue(g schema.Group) (value any, ok bool) {
	if len(g) == 1 {
		v, set := r.attrs[g[0]]
		if !set || schema.IsNull(v) {
			return nil, false
		}
		return v, true
	}

	t := make(Tuple, len(g))
	for i, attr := range g {
		v, set := r.attrs[attr]
		if !set || schema.IsNull(v) {
			return nil, false
		}
		t[i] = v
	}
	return t, true
}

// Clone returns a deep copy with its own instance token.
func (r *Record) Clone() *Record {
	return &Record{
		schema: r.schema,
		attrs:  r.Attributes(),
		meta:   r.meta,
		token:  uuid.New(),
	}
}

// Equal reports whether both records share schema, identity and attributes.
// Instance tokens and push times are ignored.
func (r *Record) Equal(o *Record) bool {
	if r == nil || o == nil {
		return r == o
	}
	return r.schema == o.schema &&
		r.meta.ID == o.meta.ID &&
		reflect.DeepEqual(r.attrs, o.attrs)
}

// String renders the first fully populated key group. Records without one
// render as their opaque instance token. The rendering is cosmetic and must
// not be used for lookups.
func (r *Record) String() string {
	for _, g := range r.schema.Keys() {
		v, ok := r.KeyValue(g)
		if !ok {
			continue
		}
		if t, composite := v.(Tuple); composite {
			return t.String()
		}
		return fmt.Sprint(v)
	}
	return r.Token()
}

// Repr renders the record with its type name, e.g. "<User: ann@example.com>".
func (r *Record) Repr() string {
	return fmt.Sprintf("<%s: %s>", r.schema.Name(), r.String())
}

// Token returns the opaque per-instance identifier.
func (r *Record) Token() string {
	return "0x" + strings.ReplaceAll(r.token.String(), "-", "")
}
