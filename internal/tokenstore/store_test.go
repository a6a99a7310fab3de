package tokenstore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteStore_RoundTrip(t *testing.T) {
	t.Parallel()

	s, err := NewSQLite(filepath.Join(t.TempDir(), "tokens.db"))
	require.NoError(t, err)
	defer s.Close()

	token, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, token)

	require.NoError(t, s.Save("tok-1"))
	token, err = s.Load()
	require.NoError(t, err)
	assert.Equal(t, "tok-1", token)

	// Overwrite, the store holds a single key.
	require.NoError(t, s.Save("tok-2"))
	token, err = s.Load()
	require.NoError(t, err)
	assert.Equal(t, "tok-2", token)

	require.NoError(t, s.Clear())
	token, err = s.Load()
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestSQLiteStore_SurvivesReopen(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "tokens.db")

	s1, err := NewSQLite(path)
	require.NoError(t, err)
	require.NoError(t, s1.Save("persisted"))
	require.NoError(t, s1.Close())

	s2, err := NewSQLite(path)
	require.NoError(t, err)
	defer s2.Close()

	token, err := s2.Load()
	require.NoError(t, err)
	assert.Equal(t, "persisted", token)
}

func TestMemoryStore(t *testing.T) {
	t.Parallel()

	m := &Memory{}
	require.NoError(t, m.Save("x"))
	token, err := m.Load()
	require.NoError(t, err)
	assert.Equal(t, "x", token)

	require.NoError(t, m.Clear())
	token, err = m.Load()
	require.NoError(t, err)
	assert.Empty(t, token)
}
