// Package errors defines the failure taxonomy shared by schemas, records,
// collections and the collection registry.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

var (
	// ErrDoesNotExist is matched by every lookup miss.
	ErrDoesNotExist = stderrors.New("does not exist")
	// ErrDuplicateKey is matched when a push would break key uniqueness.
	ErrDuplicateKey = stderrors.New("duplicate key")
	// ErrInvalidKey is matched when a key attribute is assigned a null value.
	ErrInvalidKey = stderrors.New("invalid key")
	// ErrUndefined is matched when a schema is not bound to a collection.
	ErrUndefined = stderrors.New("undefined")
)

// Constraint names used by ConstraintError.
const (
	ConstraintUnique  = "unique"
	ConstraintNotNull = "not_null"
)

// ConstraintError represents a violation of a key constraint.
type ConstraintError struct {
	Collection string   // collection name (empty when raised by a record)
	Schema     string   // record type name
	Group      []string // key group involved
	Attribute  string   // attribute being assigned (not_null only)
	Value      any      // offending key value
	Constraint string   // ConstraintUnique or ConstraintNotNull
	Reason     string
	ExistingID int64 // identity already holding Value (unique only)
}

func (e *ConstraintError) Error() string {
	var parts []string

	target := e.Schema
	if e.Collection != "" {
		target = e.Collection
	}
	switch {
	case e.Attribute != "":
		parts = append(parts, fmt.Sprintf("constraint violation in %s.%s", target, e.Attribute))
	case len(e.Group) > 0:
		parts = append(parts, fmt.Sprintf("constraint violation in %s(%s)", target, strings.Join(e.Group, ", ")))
	default:
		parts = append(parts, fmt.Sprintf("constraint violation in %s", target))
	}

	if e.Constraint != "" {
		parts = append(parts, fmt.Sprintf("(%s)", e.Constraint))
	}
	if e.Value != nil {
		parts = append(parts, fmt.Sprintf("value=%v", e.Value))
	}
	if e.Reason != "" {
		parts = append(parts, e.Reason)
	}
	if e.ExistingID > 0 {
		parts = append(parts, fmt.Sprintf("held by id %d", e.ExistingID))
	}

	return strings.Join(parts, " - ")
}

// Is maps the constraint onto its sentinel.
func (e *ConstraintError) Is(target error) bool {
	switch target {
	case ErrDuplicateKey:
		return e.Constraint == ConstraintUnique
	case ErrInvalidKey:
		return e.Constraint == ConstraintNotNull
	}
	return false
}

// NewDuplicateKey reports that value is already held by another identity.
func NewDuplicateKey(collection string, group []string, value any, existing int64) *ConstraintError {
	return &ConstraintError{
		Collection: collection,
		Group:      group,
		Value:      value,
		Constraint: ConstraintUnique,
		Reason:     "an item with this key already exists",
		ExistingID: existing,
	}
}

// NewInvalidKey reports a null assignment to a key attribute.
func NewInvalidKey(schema, attribute string) *ConstraintError {
	return &ConstraintError{
		Schema:     schema,
		Attribute:  attribute,
		Constraint: ConstraintNotNull,
		Reason:     "a key cannot have a null value",
	}
}

// NotFoundError is returned by key lookups.
// Filtered distinguishes a key that exists in the collection but is excluded
// by the active filters from a key that is not present at all.
type NotFoundError struct {
	Collection string
	Key        any
	Filtered   bool
}

func (e *NotFoundError) Error() string {
	msg := fmt.Sprintf("an item with the key '%v' does not exist", e.Key)
	if e.Filtered {
		msg += " in this subset"
	}
	if e.Collection != "" {
		msg += fmt.Sprintf(" (collection %s)", e.Collection)
	}
	return msg
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrDoesNotExist
}

// UndefinedError is returned when a schema is not bound to a collection or
// its bound collection has not been created.
type UndefinedError struct {
	Schema     string
	Collection string
}

func (e *UndefinedError) Error() string {
	if e.Collection == "" {
		return fmt.Sprintf("%s has no collection binding", e.Schema)
	}
	return fmt.Sprintf("%s is bound to collection '%s' which is undefined", e.Schema, e.Collection)
}

func (e *UndefinedError) Is(target error) bool {
	return target == ErrUndefined
}

// IsDoesNotExist reports whether err is a lookup miss.
func IsDoesNotExist(err error) bool { return stderrors.Is(err, ErrDoesNotExist) }

// IsDuplicateKey reports whether err is a uniqueness violation.
func IsDuplicateKey(err error) bool { return stderrors.Is(err, ErrDuplicateKey) }

// IsInvalidKey reports whether err is a null key assignment.
func IsInvalidKey(err error) bool { return stderrors.Is(err, ErrInvalidKey) }

// IsUndefined reports whether err is a missing collection binding.
func IsUndefined(err error) bool { return stderrors.Is(err, ErrUndefined) }

// IsFiltered reports whether err is a lookup miss caused by active filters.
func IsFiltered(err error) bool {
	var nf *NotFoundError
	return stderrors.As(err, &nf) && nf.Filtered
}
