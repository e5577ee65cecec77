package schema

import (
	"testing"

	"github.com/leengari/recordstore/internal/domain/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeclare(t *testing.T) {
	s, err := Declare("User",
		[]Group{{"email"}, {"first", "last"}},
		[]Group{{"team"}},
		WithCollection("users"),
	)
	require.NoError(t, err)

	assert.Equal(t, "User", s.Name())
	assert.Equal(t, []Group{{"email"}, {"first", "last"}}, s.Keys())
	assert.Equal(t, []Group{{"team"}}, s.Indexes())

	name, ok := s.Collection()
	assert.True(t, ok)
	assert.Equal(t, "users", name)

	assert.True(t, s.IsKeyAttribute("email"))
	assert.True(t, s.IsKeyAttribute("last"))
	assert.False(t, s.IsKeyAttribute("team"))
}

func TestDeclareIsolatesGroups(t *testing.T) {
	keys := []Group{{"email"}}
	s := MustDeclare("User", keys, nil)

	keys[0][0] = "changed"
	assert.Equal(t, []Group{{"email"}}, s.Keys())

	got := s.Keys()
	got[0][0] = "changed"
	assert.Equal(t, []Group{{"email"}}, s.Keys())
}

func TestDeclareRejectsInvalidGroups(t *testing.T) {
	tests := []struct {
		name    string
		schema  string
		keys    []Group
		indexes []Group
	}{
		{"missing name", "", nil, nil},
		{"empty key group", "User", []Group{{}}, nil},
		{"empty attribute", "User", []Group{{""}}, nil},
		{"repeated attribute", "User", []Group{{"a", "a"}}, nil},
		{"duplicate group", "User", []Group{{"a", "b"}, {"a", "b"}}, nil},
		{"empty index group", "User", nil, []Group{{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Declare(tt.schema, tt.keys, tt.indexes)
			assert.Error(t, err)
		})
	}
}

func TestValidateAssignment(t *testing.T) {
	s := MustDeclare("User", []Group{{"email"}, {"first", "last"}}, nil)

	var nilPtr *string
	assert.True(t, errors.IsInvalidKey(s.ValidateAssignment("email", nil)))
	assert.True(t, errors.IsInvalidKey(s.ValidateAssignment("email", "")))
	assert.True(t, errors.IsInvalidKey(s.ValidateAssignment("last", nilPtr)))

	assert.NoError(t, s.ValidateAssignment("email", "a@example.com"))
	assert.NoError(t, s.ValidateAssignment("email", 0))
	assert.NoError(t, s.ValidateAssignment("nickname", nil))
	assert.NoError(t, s.ValidateAssignment("nickname", ""))
}

func TestGroupString(t *testing.T) {
	assert.Equal(t, "email", Group{"email"}.String())
	assert.Equal(t, "(first, last)", Group{"first", "last"}.String())
	assert.True(t, Group{"first", "last"}.Composite())
	assert.False(t, Group{"email"}.Composite())
}
