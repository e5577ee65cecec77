package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
logging:
  level: debug
collections:
  - name: users
    schema: User
    keys: [[email], [first, last]]
    indexes: [[team]]
    records:
      - {email: a@example.com, first: Ann, last: Lee, age: 30, team: red}
      - {email: b@example.com, first: Bo, last: Kim, age: 12, team: blue}
  - name: teams
    keys: [[name]]
`

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(sample))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	require.Len(t, cfg.Collections, 2)

	users := cfg.Collections[0]
	assert.Equal(t, [][]string{{"email"}, {"first", "last"}}, users.Keys)
	require.Len(t, users.Records, 2)
	assert.Equal(t, 30, users.Records[0]["age"])

	// Schema defaults to the collection name.
	assert.Equal(t, "teams", cfg.Collections[1].Schema)

	s, err := users.Declare()
	require.NoError(t, err)
	assert.Equal(t, "User", s.Name())
	name, ok := s.Collection()
	assert.True(t, ok)
	assert.Equal(t, "users", name)
	assert.True(t, s.IsKeyAttribute("last"))
	assert.False(t, s.IsKeyAttribute("team"))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"bad level", "logging: {level: loud}"},
		{"missing name", "collections: [{keys: [[id]]}]"},
		{"duplicate name", "collections: [{name: a}, {name: a}]"},
		{"empty group", "collections: [{name: a, keys: [[]]}]"},
		{"repeated attribute", "collections: [{name: a, keys: [[id, id]]}]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	level, err := cfg.Logging.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, "INFO", level.String())
	assert.Empty(t, cfg.Collections)
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg, err := Parse([]byte(sample))
	require.NoError(t, err)
	require.NoError(t, cfg.Save(path))

	loaded, got, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, path, got)
	assert.Equal(t, cfg.Summary(), loaded.Summary())
	assert.Equal(t, cfg.Collections[0].Keys, loaded.Collections[0].Keys)
}

func TestFindConfigPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "explicit.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging: {level: warn}"), 0644))

	t.Setenv(EnvConfigPath, path)
	assert.Equal(t, path, FindConfigPath())

	cfg, found, err := Load()
	require.NoError(t, err)
	assert.Equal(t, path, found)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadMissingFile(t *testing.T) {
	_, _, err := LoadFromPath(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
