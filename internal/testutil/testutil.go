// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/leengari/recordstore/internal/domain/data"
	"github.com/leengari/recordstore/internal/domain/schema"
)

// UserSchema has a unique email, a unique (first, last) pair and a city index.
var UserSchema = schema.MustDeclare("User",
	[]schema.Group{{"email"}, {"first", "last"}},
	[]schema.Group{{"city"}},
	schema.WithCollection("users"),
)

// Record builds a record of s, failing the test on an invalid assignment.
func Record(t testing.TB, s *schema.Schema, attrs map[string]any) *data.Record {
	t.Helper()
	r, err := data.NewRecord(s, attrs)
	require.NoError(t, err)
	return r
}

// User builds a UserSchema record.
func User(t testing.TB, email, first, last, city string, age int) *data.Record {
	t.Helper()
	return Record(t, UserSchema, map[string]any{
		"email": email,
		"first": first,
		"last":  last,
		"city":  city,
		"age":   age,
	})
}

// Logger returns a logger that discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Clock returns a time source that advances one second per call.
func Clock(start time.Time) func() time.Time {
	now := start
	return func() time.Time {
		now = now.Add(time.Second)
		return now
	}
}
