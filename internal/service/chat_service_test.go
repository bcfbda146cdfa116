package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"war-room-be/internal/constant"
	"war-room-be/internal/dto"
	"war-room-be/internal/pkg/logger"
	"war-room-be/internal/repository/memory"
	"war-room-be/pkg/prompt"
	"war-room-be/pkg/thread"
)

// newScopeTestService builds a ChatService with only the collaborators the
// scope-resolution path touches. The unit of work stays nil: mission lookups
// are exercised elsewhere against a database.
func newScopeTestService() (*ChatService, *memory.ScopeRepository) {
	scopeRepo := memory.NewScopeRepository()
	cs := NewChatService(nil, scopeRepo, nil, nil, logger.NewNopLogger())
	return cs, scopeRepo
}

func TestResolveScopeDefaultsWithoutCachedState(t *testing.T) {
	cs, _ := newScopeTestService()
	sessionId := uuid.New()

	scope, persona, active, err := cs.resolveScope(context.Background(), nil, uuid.New(), &dto.SendChatRequest{
		ChatSessionId: sessionId,
	})

	require.NoError(t, err)
	assert.Equal(t, thread.RoomWarRoom, scope.Room)
	assert.Equal(t, sessionId.String(), scope.SessionID)
	assert.Empty(t, scope.Mode)
	assert.Equal(t, prompt.PersonaGeneral, persona)
	assert.False(t, active.Restricted())
}

func TestResolveScopeUsesCachedState(t *testing.T) {
	cs, scopeRepo := newScopeTestService()
	sessionId := uuid.New()

	scopeRepo.Save(&memory.ScopeState{
		SessionID:     sessionId.String(),
		Scope:         thread.Scope{Room: thread.RoomWarRoom, Mode: constant.ModeIntel, SessionID: sessionId.String()},
		Persona:       "skeptic",
		ActiveContext: []string{"doc-1", "doc-2"},
	})

	scope, persona, active, err := cs.resolveScope(context.Background(), nil, uuid.New(), &dto.SendChatRequest{
		ChatSessionId: sessionId,
	})

	require.NoError(t, err)
	assert.Equal(t, constant.ModeIntel, scope.Mode)
	assert.Equal(t, prompt.PersonaSkeptic, persona)
	assert.True(t, active.Contains("doc-1"))
	assert.True(t, active.Contains("doc-2"))
}

func TestResolveScopeModeOverride(t *testing.T) {
	cs, scopeRepo := newScopeTestService()
	sessionId := uuid.New()

	scopeRepo.Save(&memory.ScopeState{
		SessionID: sessionId.String(),
		Scope:     thread.Scope{Room: thread.RoomMissions, Mission: "m-1", SessionID: sessionId.String()},
	})

	scope, _, _, err := cs.resolveScope(context.Background(), nil, uuid.New(), &dto.SendChatRequest{
		ChatSessionId: sessionId,
		Mode:          constant.ModeTactical,
	})

	require.NoError(t, err)
	assert.Equal(t, thread.RoomWarRoom, scope.Room)
	assert.Equal(t, constant.ModeTactical, scope.Mode)
	assert.Empty(t, scope.Mission, "switching to a mode leaves the missions surface")
}

func TestResolveScopeRejectsUnknownMode(t *testing.T) {
	cs, _ := newScopeTestService()

	_, _, _, err := cs.resolveScope(context.Background(), nil, uuid.New(), &dto.SendChatRequest{
		ChatSessionId: uuid.New(),
		Mode:          "stealth",
	})

	assert.Error(t, err)
}

func TestResolveScopePersonaOverrideWinsOverCached(t *testing.T) {
	cs, scopeRepo := newScopeTestService()
	sessionId := uuid.New()

	scopeRepo.Save(&memory.ScopeState{
		SessionID: sessionId.String(),
		Scope:     thread.Scope{Room: thread.RoomWarRoom, SessionID: sessionId.String()},
		Persona:   "skeptic",
	})

	_, persona, _, err := cs.resolveScope(context.Background(), nil, uuid.New(), &dto.SendChatRequest{
		ChatSessionId: sessionId,
		Persona:       "scribe",
	})

	require.NoError(t, err)
	assert.Equal(t, prompt.PersonaScribe, persona)
}

func TestResolveScopeActiveContextOverrideLeavesCacheIntact(t *testing.T) {
	cs, scopeRepo := newScopeTestService()
	sessionId := uuid.New()

	scopeRepo.Save(&memory.ScopeState{
		SessionID:     sessionId.String(),
		Scope:         thread.Scope{Room: thread.RoomWarRoom, SessionID: sessionId.String()},
		ActiveContext: []string{"doc-a", "doc-b", "doc-c"},
	})

	override := uuid.New()
	_, _, active, err := cs.resolveScope(context.Background(), nil, uuid.New(), &dto.SendChatRequest{
		ChatSessionId: sessionId,
		ActiveContext: []uuid.UUID{override},
	})

	require.NoError(t, err)

	// the request sees only its own override
	assert.True(t, active.Contains(override.String()))
	assert.False(t, active.Contains("doc-a"))
	assert.Len(t, active.IDs(), 1)

	// the cached set the user curated is untouched
	state, found := scopeRepo.Get(sessionId.String())
	require.True(t, found)
	assert.Equal(t, []string{"doc-a", "doc-b", "doc-c"}, state.ActiveContext)
}

func TestResolveScopeNoOverrideKeepsCachedActiveContext(t *testing.T) {
	cs, scopeRepo := newScopeTestService()
	sessionId := uuid.New()

	scopeRepo.Save(&memory.ScopeState{
		SessionID:     sessionId.String(),
		Scope:         thread.Scope{Room: thread.RoomWarRoom, SessionID: sessionId.String()},
		ActiveContext: []string{"doc-a"},
	})

	_, _, active, err := cs.resolveScope(context.Background(), nil, uuid.New(), &dto.SendChatRequest{
		ChatSessionId: sessionId,
	})

	require.NoError(t, err)
	assert.True(t, active.Contains("doc-a"))
	assert.Len(t, active.IDs(), 1)
}
