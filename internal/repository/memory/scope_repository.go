package memory

import (
	"time"

	"war-room-be/pkg/thread"

	"github.com/patrickmn/go-cache"
)

// ScopeState tracks the live conversational scope of a session: which room,
// mode or mission the operator is looking at, which persona answers, and
// which documents the retrieval is restricted to.
type ScopeState struct {
	SessionID     string
	Scope         thread.Scope
	Persona       string
	ActiveContext []string
	Suggestions   []string
	UpdatedAt     time.Time
}

type ScopeRepository struct {
	cache *cache.Cache
}

func NewScopeRepository() *ScopeRepository {
	// Default expiration of 1 hour, purge expired entries every 10 minutes
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &ScopeRepository{
		cache: c,
	}
}

func (r *ScopeRepository) Save(state *ScopeState) {
	state.UpdatedAt = time.Now()
	r.cache.Set(state.SessionID, state, cache.DefaultExpiration)
}

func (r *ScopeRepository) Get(sessionID string) (*ScopeState, bool) {
	if x, found := r.cache.Get(sessionID); found {
		return x.(*ScopeState), true
	}
	return nil, false
}

func (r *ScopeRepository) Delete(sessionID string) {
	r.cache.Delete(sessionID)
}
