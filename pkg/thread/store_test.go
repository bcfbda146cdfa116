package thread

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreGetMissingKey(t *testing.T) {
	store := NewStore()

	messages := store.Get("nope")
	require.NotNil(t, messages)
	assert.Empty(t, messages)
}

func TestStoreAppendAndGet(t *testing.T) {
	store := NewStore()

	n := store.Append("planning-s1", Message{ID: "1", Role: RoleUser, Content: "hello"})
	assert.Equal(t, 1, n)

	n = store.Append("planning-s1", Message{ID: "2", Role: RoleAssistant, Content: "hi"})
	assert.Equal(t, 2, n)

	messages := store.Get("planning-s1")
	require.Len(t, messages, 2)
	assert.Equal(t, "hello", messages[0].Content)
	assert.Equal(t, RoleAssistant, messages[1].Role)
}

func TestStoreThreadsAreIsolated(t *testing.T) {
	store := NewStore()

	store.Append("planning-s1", Message{ID: "1", Role: RoleUser, Content: "a"})
	store.Append("recon-s1", Message{ID: "2", Role: RoleUser, Content: "b"})

	assert.Equal(t, 1, store.Len("planning-s1"))
	assert.Equal(t, 1, store.Len("recon-s1"))
	assert.Equal(t, "a", store.Get("planning-s1")[0].Content)
	assert.Equal(t, "b", store.Get("recon-s1")[0].Content)
}

func TestStoreGetReturnsCopy(t *testing.T) {
	store := NewStore()
	store.Append("k", Message{ID: "1", Role: RoleUser, Content: "original"})

	messages := store.Get("k")
	messages[0].Content = "mutated"

	assert.Equal(t, "original", store.Get("k")[0].Content)
}

func TestStoreClear(t *testing.T) {
	store := NewStore()
	store.Append("k", Message{ID: "1", Role: RoleUser, Content: "a"})

	store.Clear("k")

	assert.Empty(t, store.Get("k"))
	assert.Equal(t, 0, store.Len("k"))

	// clearing an absent key is a no-op
	store.Clear("missing")
}

func TestStoreKeysSorted(t *testing.T) {
	store := NewStore()
	store.Append("b-key", Message{ID: "1"})
	store.Append("a-key", Message{ID: "2"})
	store.Append("c-key", Message{ID: "3"})

	assert.Equal(t, []string{"a-key", "b-key", "c-key"}, store.Keys())
}

func TestStoreTraces(t *testing.T) {
	store := NewStore()

	assert.Nil(t, store.Trace("msg-1"))

	store.SetTrace("msg-1", []ThinkingStep{
		{Step: 1, Thought: "searching context", DurationMS: 12},
		{Step: 2, Thought: "composing prompt", DurationMS: 3},
	})

	steps := store.Trace("msg-1")
	require.Len(t, steps, 2)
	assert.Equal(t, "searching context", steps[0].Thought)

	// empty traces are not recorded
	store.SetTrace("msg-2", nil)
	assert.Nil(t, store.Trace("msg-2"))
}

func TestStoreConcurrentAppend(t *testing.T) {
	store := NewStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			store.Append("shared", Message{Role: RoleUser, Content: "x"})
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, store.Len("shared"))
}

func TestSerializeRoundTrip(t *testing.T) {
	store := NewStore()
	createdAt := time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC)
	store.Append("planning-s1", Message{
		ID:        "m1",
		Role:      RoleAssistant,
		Content:   "answer",
		Citations: []Citation{{Title: "Briefing Doc"}},
		CreatedAt: createdAt,
	})
	store.SetTrace("m1", []ThinkingStep{{Step: 1, Thought: "t", DurationMS: 5}})

	data, err := store.Serialize()
	require.NoError(t, err)

	restored, err := Deserialize(data)
	require.NoError(t, err)

	messages := restored.Get("planning-s1")
	require.Len(t, messages, 1)
	assert.Equal(t, "m1", messages[0].ID)
	assert.Equal(t, "answer", messages[0].Content)
	require.Len(t, messages[0].Citations, 1)
	assert.Equal(t, "Briefing Doc", messages[0].Citations[0].Title)
	assert.True(t, messages[0].CreatedAt.Equal(createdAt))

	require.Len(t, restored.Trace("m1"), 1)
}

func TestDeserializeCorruptDataYieldsEmptyStore(t *testing.T) {
	store, err := Deserialize([]byte("{not json"))
	require.Error(t, err)
	require.NotNil(t, store)
	assert.Empty(t, store.Keys())
}

func TestDeserializeEmpty(t *testing.T) {
	store, err := Deserialize(nil)
	require.NoError(t, err)
	assert.Empty(t, store.Keys())
}
