package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(t.TempDir())
	require.NoError(t, err)
	return m
}

func TestManager_OpenCreatesSession(t *testing.T) {
	m := newTestManager(t)

	session, err := m.Open("work")

	require.NoError(t, err)
	assert.Equal(t, "work", session.Name())
	assert.Empty(t, session.GrantedTools())
}

func TestManager_OpenEmptyNameGeneratesOne(t *testing.T) {
	m := newTestManager(t)

	session, err := m.Open("")

	require.NoError(t, err)
	assert.NotEmpty(t, session.Name())
}

func TestManager_NewNameIsUnique(t *testing.T) {
	m := newTestManager(t)

	assert.NotEqual(t, m.NewName(), m.NewName())
}

func TestManager_GrantsSurviveReopen(t *testing.T) {
	m := newTestManager(t)

	session, err := m.Open("work")
	require.NoError(t, err)
	require.NoError(t, session.AddGrantedTool("mcp__files__read"))
	require.NoError(t, session.AddGrantedTool("mcp__web__fetch"))

	reopened, err := m.Open("work")
	require.NoError(t, err)
	assert.Equal(t, []string{"mcp__files__read", "mcp__web__fetch"}, reopened.GrantedTools())
}

func TestManager_List(t *testing.T) {
	m := newTestManager(t)

	// Unsaved sessions do not appear in the listing.
	_, err := m.Open("ephemeral")
	require.NoError(t, err)

	for _, name := range []string{"zeta", "alpha"} {
		session, err := m.Open(name)
		require.NoError(t, err)
		require.NoError(t, session.AddGrantedTool("mcp__files__read"))
	}

	names, err := m.List()

	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "zeta"}, names)
}

func TestManager_OpenRejectsUnsafeNames(t *testing.T) {
	m := newTestManager(t)

	for _, name := range []string{"../escape", "a/b", "a\\b", "nul\x00byte"} {
		_, err := m.Open(name)
		assert.Error(t, err, name)
	}
}

func TestSession_AddGrantedToolIdempotent(t *testing.T) {
	m := newTestManager(t)

	session, err := m.Open("work")
	require.NoError(t, err)
	require.NoError(t, session.AddGrantedTool("mcp__files__read"))
	require.NoError(t, session.AddGrantedTool("mcp__files__read"))

	assert.Equal(t, []string{"mcp__files__read"}, session.GrantedTools())
}
