package orchestrator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"war-room-be/pkg/llm"
	"war-room-be/pkg/prompt"
	"war-room-be/pkg/retrieval"
	"war-room-be/pkg/thread"
)

// fakeLLM answers with a canned string or error. The answer func lets a test
// block the model call to simulate a slow provider.
type fakeLLM struct {
	answer func(prompt string) (string, error)
}

func (f *fakeLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	return "", errors.New("not used")
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return f.answer(prompt)
}

type fakeSink struct {
	mu    sync.Mutex
	calls []sinkCall
	err   error
}

type sinkCall struct {
	sessionID string
	threadKey string
	role      string
	content   string
	citations []string
}

func (f *fakeSink) AddMessage(ctx context.Context, sessionID, threadKey, role, content string, citations []string) (thread.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, sinkCall{sessionID, threadKey, role, content, citations})
	if f.err != nil {
		return thread.Message{}, f.err
	}
	return thread.Message{
		ID:        "remote-" + role,
		Role:      role,
		Content:   content,
		Citations: thread.ToCitations(citations),
		CreatedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}, nil
}

func syncDispatcher() Dispatcher {
	return func(fn func()) { fn() }
}

func newTestOrchestrator(answer string, opts ...Option) *Orchestrator {
	return New(
		thread.NewStore(),
		retrieval.NewRetriever(nil),
		prompt.NewAssembler(),
		&fakeLLM{answer: func(string) (string, error) { return answer, nil }},
		nil,
		nil,
		opts...,
	)
}

func TestSubmitRejectsEmptyInput(t *testing.T) {
	o := newTestOrchestrator("answer")

	_, err := o.Submit(context.Background(), Request{
		Scope: thread.Scope{Room: thread.RoomWarRoom, SessionID: "s1"},
		Text:  "   ",
	})

	assert.ErrorIs(t, err, ErrEmptyInput)
	assert.Equal(t, StateIdle, o.State())
}

func TestSubmitRejectsMissingSession(t *testing.T) {
	o := newTestOrchestrator("answer")

	_, err := o.Submit(context.Background(), Request{
		Scope: thread.Scope{Room: thread.RoomWarRoom},
		Text:  "hello",
	})

	assert.ErrorIs(t, err, ErrNoSession)
}

func TestSubmitBasicExchange(t *testing.T) {
	o := newTestOrchestrator("the answer")
	scope := thread.Scope{Room: thread.RoomWarRoom, Mode: "planning", SessionID: "s1"}

	outcome, err := o.Submit(context.Background(), Request{
		Scope:   scope,
		Persona: prompt.PersonaGeneral,
		Text:    "what next?",
	})

	require.NoError(t, err)
	assert.Equal(t, "planning-s1", outcome.Key)
	assert.Equal(t, thread.RoleUser, outcome.UserMessage.Role)
	assert.Equal(t, "what next?", outcome.UserMessage.Content)
	assert.Equal(t, "the answer", outcome.AssistantMessage.Content)
	assert.Equal(t, StateIdle, o.State())

	messages := o.Store().Get("planning-s1")
	require.Len(t, messages, 2)
	assert.Equal(t, thread.RoleUser, messages[0].Role)
	assert.Equal(t, thread.RoleAssistant, messages[1].Role)
}

func TestSubmitAttachesTrace(t *testing.T) {
	o := newTestOrchestrator("answer")
	scope := thread.Scope{Room: thread.RoomWarRoom, SessionID: "s1"}

	outcome, err := o.Submit(context.Background(), Request{Scope: scope, Text: "q"})

	require.NoError(t, err)
	require.Len(t, outcome.Trace, 3)
	assert.Equal(t, 1, outcome.Trace[0].Step)
	assert.Equal(t, 3, outcome.Trace[2].Step)

	// trace is readable back from the store by assistant message id
	assert.Len(t, o.Store().Trace(outcome.AssistantMessage.ID), 3)
}

func TestSubmitModelFailureKeepsUserMessage(t *testing.T) {
	o := New(
		thread.NewStore(),
		retrieval.NewRetriever(nil),
		prompt.NewAssembler(),
		&fakeLLM{answer: func(string) (string, error) { return "", errors.New("provider down") }},
		nil,
		nil,
	)
	scope := thread.Scope{Room: thread.RoomWarRoom, SessionID: "s1"}

	_, err := o.Submit(context.Background(), Request{Scope: scope, Text: "hello"})

	assert.ErrorIs(t, err, ErrModelCall)
	assert.Equal(t, StateIdle, o.State())

	// the optimistic user append survives the failure
	messages := o.Store().Get("default-s1")
	require.Len(t, messages, 1)
	assert.Equal(t, thread.RoleUser, messages[0].Role)
	assert.Equal(t, "hello", messages[0].Content)
}

func TestSubmitUsesRetrievedCitations(t *testing.T) {
	o := newTestOrchestrator("grounded answer")
	scope := thread.Scope{Room: thread.RoomWarRoom, SessionID: "s1"}
	search := func(ctx context.Context, query string) ([]retrieval.Chunk, error) {
		return []retrieval.Chunk{
			{DocID: "d1", DocTitle: "Alpha Brief", Content: "facts", Similarity: 0.9},
		}, nil
	}

	outcome, err := o.Submit(context.Background(), Request{
		Scope:  scope,
		Text:   "q",
		Search: search,
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"Alpha Brief"}, outcome.Citations)
	require.Len(t, outcome.AssistantMessage.Citations, 1)
	assert.Equal(t, "Alpha Brief", outcome.AssistantMessage.Citations[0].Title)
}

func TestSubmitReplyLandsInCapturedThreadAfterScopeSwitch(t *testing.T) {
	// The model call blocks until released; meanwhile the submitting scope is
	// no longer current. The reply must still land under the key captured at
	// submission time.
	release := make(chan struct{})
	store := thread.NewStore()
	o := New(
		store,
		retrieval.NewRetriever(nil),
		prompt.NewAssembler(),
		&fakeLLM{answer: func(string) (string, error) {
			<-release
			return "late answer", nil
		}},
		nil,
		nil,
	)

	submitted := thread.Scope{Room: thread.RoomWarRoom, Mode: "planning", SessionID: "s1"}

	done := make(chan *Outcome, 1)
	go func() {
		outcome, err := o.Submit(context.Background(), Request{Scope: submitted, Text: "slow question"})
		assert.NoError(t, err)
		done <- outcome
	}()

	// wait for the optimistic user append, then "switch" scope and release
	require.Eventually(t, func() bool {
		return store.Len("planning-s1") == 1
	}, time.Second, 5*time.Millisecond)

	close(release)
	outcome := <-done

	assert.Equal(t, "planning-s1", outcome.Key)
	assert.Equal(t, 2, store.Len("planning-s1"))
	assert.Equal(t, 0, store.Len("recon-s1"))
}

func TestSubmitReportsRemoteSinkIDs(t *testing.T) {
	sink := &fakeSink{}
	o := newTestOrchestrator("answer", WithMessageSink(sink))
	scope := thread.Scope{Room: thread.RoomWarRoom, Mode: "planning", SessionID: "s1"}

	outcome, err := o.Submit(context.Background(), Request{Scope: scope, Text: "q"})

	require.NoError(t, err)
	assert.Equal(t, "remote-user", outcome.UserMessage.ID)
	assert.Equal(t, "remote-assistant", outcome.AssistantMessage.ID)

	require.Len(t, sink.calls, 2)
	assert.Equal(t, "s1", sink.calls[0].sessionID)
	assert.Equal(t, "planning-s1", sink.calls[0].threadKey)
	assert.Equal(t, thread.RoleUser, sink.calls[0].role)
	assert.Equal(t, thread.RoleAssistant, sink.calls[1].role)
}

func TestSubmitSinkFailureKeepsLocalIDs(t *testing.T) {
	sink := &fakeSink{err: errors.New("db down")}
	o := newTestOrchestrator("answer", WithMessageSink(sink))
	scope := thread.Scope{Room: thread.RoomWarRoom, SessionID: "s1"}

	outcome, err := o.Submit(context.Background(), Request{Scope: scope, Text: "q"})

	require.NoError(t, err)
	assert.NotEmpty(t, outcome.UserMessage.ID)
	assert.NotEqual(t, "remote-user", outcome.UserMessage.ID)
}

type fakeSuggestions struct {
	items []string
}

func (f *fakeSuggestions) Generate(ctx context.Context, messages []thread.Message) []string {
	return f.items
}

func TestSubmitDeliversSuggestions(t *testing.T) {
	var gotKey string
	var gotItems []string
	o := newTestOrchestrator("answer",
		WithDispatcher(syncDispatcher()),
		WithSuggestions(&fakeSuggestions{items: []string{"follow up?"}}, func(key string, items []string) {
			gotKey = key
			gotItems = items
		}),
	)
	scope := thread.Scope{Room: thread.RoomWarRoom, Mode: "planning", SessionID: "s1"}

	_, err := o.Submit(context.Background(), Request{Scope: scope, Text: "q"})

	require.NoError(t, err)
	assert.Equal(t, "planning-s1", gotKey)
	assert.Equal(t, []string{"follow up?"}, gotItems)
}

type fakeSynth struct {
	url string
	err error
}

func (f *fakeSynth) Speak(ctx context.Context, sessionID string, text string) (string, error) {
	return f.url, f.err
}

func TestSubmitSynthesizerFailureDoesNotAffectOutcome(t *testing.T) {
	o := newTestOrchestrator("answer",
		WithDispatcher(syncDispatcher()),
		WithSynthesizer(&fakeSynth{err: errors.New("tts down")}, func(sessionID, audioURL string) {
			t.Fatal("onSpeech must not fire on failure")
		}),
	)
	scope := thread.Scope{Room: thread.RoomWarRoom, SessionID: "s1"}

	outcome, err := o.Submit(context.Background(), Request{Scope: scope, Text: "q"})

	require.NoError(t, err)
	assert.Equal(t, "answer", outcome.AssistantMessage.Content)
	assert.Equal(t, StateIdle, o.State())
}

func TestSubmitSynthesizerSuccessFiresCallback(t *testing.T) {
	var gotURL string
	o := newTestOrchestrator("answer",
		WithDispatcher(syncDispatcher()),
		WithSynthesizer(&fakeSynth{url: "http://tts/audio.mp3"}, func(sessionID, audioURL string) {
			gotURL = audioURL
		}),
	)
	scope := thread.Scope{Room: thread.RoomWarRoom, SessionID: "s1"}

	_, err := o.Submit(context.Background(), Request{Scope: scope, Text: "q"})

	require.NoError(t, err)
	assert.Equal(t, "http://tts/audio.mp3", gotURL)
}

func TestClearThread(t *testing.T) {
	o := newTestOrchestrator("answer")
	scope := thread.Scope{Room: thread.RoomWarRoom, SessionID: "s1"}

	_, err := o.Submit(context.Background(), Request{Scope: scope, Text: "q"})
	require.NoError(t, err)
	require.Equal(t, 2, o.Store().Len("default-s1"))

	o.ClearThread(context.Background(), "default-s1")

	assert.Equal(t, 0, o.Store().Len("default-s1"))
}
