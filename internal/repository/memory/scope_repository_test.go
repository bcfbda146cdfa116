package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"war-room-be/pkg/thread"
)

func TestScopeRepositorySaveAndGet(t *testing.T) {
	repo := NewScopeRepository()

	repo.Save(&ScopeState{
		SessionID: "s1",
		Scope:     thread.Scope{Room: thread.RoomWarRoom, Mode: "planning", SessionID: "s1"},
		Persona:   "skeptic",
	})

	state, found := repo.Get("s1")
	require.True(t, found)
	assert.Equal(t, "planning", state.Scope.Mode)
	assert.Equal(t, "skeptic", state.Persona)
	assert.False(t, state.UpdatedAt.IsZero())
}

func TestScopeRepositoryMissingSession(t *testing.T) {
	repo := NewScopeRepository()

	state, found := repo.Get("missing")
	assert.False(t, found)
	assert.Nil(t, state)
}

func TestScopeRepositorySaveOverwrites(t *testing.T) {
	repo := NewScopeRepository()

	repo.Save(&ScopeState{SessionID: "s1", Persona: "general"})
	repo.Save(&ScopeState{SessionID: "s1", Persona: "scribe"})

	state, found := repo.Get("s1")
	require.True(t, found)
	assert.Equal(t, "scribe", state.Persona)
}

func TestScopeRepositoryDelete(t *testing.T) {
	repo := NewScopeRepository()

	repo.Save(&ScopeState{SessionID: "s1"})
	repo.Delete("s1")

	_, found := repo.Get("s1")
	assert.False(t, found)

	// deleting an absent session is a no-op
	repo.Delete("missing")
}
