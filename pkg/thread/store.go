package thread

import (
	"encoding/json"
	"sort"
	"sync"
	"time"
)

// Store multiplexes conversation history across thread keys. Values are
// replaced wholesale on write; callers read the current sequence, build a new
// one and write it back. Missing keys read as empty, never as an error.
type Store struct {
	mu      sync.RWMutex
	threads map[string][]Message
	traces  map[string][]ThinkingStep
}

// NewStore returns an empty thread store.
func NewStore() *Store {
	return &Store{
		threads: make(map[string][]Message),
		traces:  make(map[string][]ThinkingStep),
	}
}

// Get returns a copy of the thread for key, or an empty slice if absent.
func (s *Store) Get(key string) []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	messages, ok := s.threads[key]
	if !ok {
		return []Message{}
	}
	out := make([]Message, len(messages))
	copy(out, messages)
	return out
}

// Set replaces the thread under key with a copy of messages. The key is
// created lazily on first write.
func (s *Store) Set(key string, messages []Message) {
	stored := make([]Message, len(messages))
	copy(stored, messages)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.threads[key] = stored
}

// Append appends messages to the thread under key using read-modify-write
// semantics, and returns the new length.
func (s *Store) Append(key string, messages ...Message) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.threads[key]
	next := make([]Message, 0, len(current)+len(messages))
	next = append(next, current...)
	next = append(next, messages...)
	s.threads[key] = next
	return len(next)
}

// Clear removes the thread under key. A subsequent Get returns empty.
func (s *Store) Clear(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.threads, key)
}

// Len returns the number of messages stored under key.
func (s *Store) Len(key string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.threads[key])
}

// Keys returns the thread keys in sorted order.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.threads))
	for k := range s.threads {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SetTrace records the thinking trace for an assistant message id.
func (s *Store) SetTrace(messageID string, steps []ThinkingStep) {
	if len(steps) == 0 {
		return
	}
	stored := make([]ThinkingStep, len(steps))
	copy(stored, steps)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.traces[messageID] = stored
}

// Trace returns the thinking trace recorded for a message id, if any.
func (s *Store) Trace(messageID string) []ThinkingStep {
	s.mu.RLock()
	defer s.mu.RUnlock()

	steps, ok := s.traces[messageID]
	if !ok {
		return nil
	}
	out := make([]ThinkingStep, len(steps))
	copy(out, steps)
	return out
}

// snapshotMessage is the serialized form of a Message. Timestamps travel as
// RFC3339 strings so snapshots stay portable across runtimes.
type snapshotMessage struct {
	ID        string     `json:"id"`
	Role      string     `json:"role"`
	Content   string     `json:"content"`
	Citations []Citation `json:"citations,omitempty"`
	CreatedAt string     `json:"created_at"`
}

// Snapshot is the plain key/value form of a Store.
type Snapshot struct {
	Threads map[string][]snapshotMessage `json:"threads"`
	Traces  map[string][]ThinkingStep    `json:"traces,omitempty"`
}

// Serialize renders the store as a JSON document.
func (s *Store) Serialize() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Threads: make(map[string][]snapshotMessage, len(s.threads)),
		Traces:  make(map[string][]ThinkingStep, len(s.traces)),
	}
	for key, messages := range s.threads {
		out := make([]snapshotMessage, len(messages))
		for i, m := range messages {
			out[i] = snapshotMessage{
				ID:        m.ID,
				Role:      m.Role,
				Content:   m.Content,
				Citations: m.Citations,
				CreatedAt: m.CreatedAt.UTC().Format(time.RFC3339Nano),
			}
		}
		snap.Threads[key] = out
	}
	for id, steps := range s.traces {
		snap.Traces[id] = steps
	}

	return json.Marshal(snap)
}

// Deserialize rebuilds a store from a serialized snapshot. Corrupt or foreign
// data yields an empty store and a non-nil error the caller may log; the
// returned store is always usable.
func Deserialize(data []byte) (*Store, error) {
	store := NewStore()
	if len(data) == 0 {
		return store, nil
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return NewStore(), err
	}

	for key, messages := range snap.Threads {
		out := make([]Message, len(messages))
		for i, m := range messages {
			createdAt, err := time.Parse(time.RFC3339Nano, m.CreatedAt)
			if err != nil {
				return NewStore(), err
			}
			out[i] = Message{
				ID:        m.ID,
				Role:      m.Role,
				Content:   m.Content,
				Citations: m.Citations,
				CreatedAt: createdAt,
			}
		}
		store.threads[key] = out
	}
	for id, steps := range snap.Traces {
		store.traces[id] = steps
	}

	return store, nil
}
