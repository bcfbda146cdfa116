package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"war-room-be/internal/pkg/logger"
	"war-room-be/pkg/llm"
	"war-room-be/pkg/persist"
	"war-room-be/pkg/prompt"
	"war-room-be/pkg/retrieval"
	"war-room-be/pkg/thread"
)

var (
	// ErrEmptyInput rejects blank submissions before any state transition.
	ErrEmptyInput = errors.New("orchestrator: empty input")
	// ErrNoSession rejects submissions without a selected session.
	ErrNoSession = errors.New("orchestrator: no session selected")
	// ErrModelCall wraps model-call failures. The user's message has already
	// been appended by the time this is returned and is never rolled back.
	ErrModelCall = errors.New("orchestrator: model call failed")
)

// MessageSink is the remote system of record for message ids and timestamps.
// The local ThreadStore stays the cache used for reads.
type MessageSink interface {
	AddMessage(ctx context.Context, sessionID, threadKey, role, content string, citations []string) (thread.Message, error)
}

// Synthesizer matches voice.Synthesizer without importing it.
type Synthesizer interface {
	Speak(ctx context.Context, sessionID string, text string) (string, error)
}

// SuggestionGenerator regenerates follow-up suggestions for a thread.
type SuggestionGenerator interface {
	Generate(ctx context.Context, messages []thread.Message) []string
}

// Dispatcher runs a side effect. The default dispatcher starts a goroutine;
// tests inject a synchronous one.
type Dispatcher func(fn func())

// Request describes one exchange submission.
type Request struct {
	Scope   thread.Scope
	Persona prompt.Persona
	Text    string
	Search  retrieval.SearchFn
	Active  retrieval.ActiveContextSet
}

// Outcome reports a completed exchange.
type Outcome struct {
	Key              string
	UserMessage      thread.Message
	AssistantMessage thread.Message
	Citations        []string
	Trace            []thread.ThinkingStep
}

// Orchestrator drives one exchange: user input, retrieval, prompt assembly,
// model call, thread update, side effects. The thread key is captured at
// submission time, so a reply whose model call outlives a scope switch still
// lands in the thread the user submitted under.
type Orchestrator struct {
	store       *thread.Store
	retriever   *retrieval.Retriever
	assembler   *prompt.Assembler
	llmProvider llm.LLMProvider
	persister   *persist.Adapter
	logger      logger.ILogger

	// Optional collaborators; all best-effort
	sink          MessageSink
	synthesizer   Synthesizer
	suggestions   SuggestionGenerator
	onSuggestions func(key string, suggestions []string)
	onSpeech      func(sessionID, audioURL string)

	dispatch Dispatcher

	mu    sync.Mutex
	state State
}

// Option configures optional collaborators.
type Option func(*Orchestrator)

func WithMessageSink(sink MessageSink) Option {
	return func(o *Orchestrator) { o.sink = sink }
}

func WithSynthesizer(s Synthesizer, onSpeech func(sessionID, audioURL string)) Option {
	return func(o *Orchestrator) {
		o.synthesizer = s
		o.onSpeech = onSpeech
	}
}

func WithSuggestions(g SuggestionGenerator, deliver func(key string, suggestions []string)) Option {
	return func(o *Orchestrator) {
		o.suggestions = g
		o.onSuggestions = deliver
	}
}

func WithDispatcher(d Dispatcher) Option {
	return func(o *Orchestrator) { o.dispatch = d }
}

func New(
	store *thread.Store,
	retriever *retrieval.Retriever,
	assembler *prompt.Assembler,
	llmProvider llm.LLMProvider,
	persister *persist.Adapter,
	log logger.ILogger,
	opts ...Option,
) *Orchestrator {
	o := &Orchestrator{
		store:       store,
		retriever:   retriever,
		assembler:   assembler,
		llmProvider: llmProvider,
		persister:   persister,
		logger:      log,
		state:       StateIdle,
		dispatch:    func(fn func()) { go fn() },
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// State returns the current lifecycle state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

func (o *Orchestrator) setState(s State) {
	o.mu.Lock()
	o.state = s
	o.mu.Unlock()
}

// Store exposes the thread store for read paths (history, suggestions).
func (o *Orchestrator) Store() *thread.Store {
	return o.store
}

// Submit runs one exchange. The user's message is appended optimistically
// before the model call; a model failure therefore never costs the user
// their own turn.
func (o *Orchestrator) Submit(ctx context.Context, req Request) (*Outcome, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, ErrEmptyInput
	}
	if req.Scope.SessionID == "" {
		return nil, ErrNoSession
	}

	// Captured once; every later store access uses this key
	key := req.Scope.Key()
	sessionID := req.Scope.SessionID

	userMsg := o.recordMessage(ctx, sessionID, key, thread.RoleUser, req.Text, nil)
	o.store.Append(key, userMsg)
	o.snapshot(ctx)

	var trace []thread.ThinkingStep

	// Retrieval (best-effort; failures inside degrade to empty context)
	o.setState(StateRetrieving)
	start := time.Now()
	result := o.retriever.Retrieve(ctx, req.Text, req.Search, req.Active)
	trace = append(trace, thread.ThinkingStep{
		Step:       1,
		Thought:    fmt.Sprintf("retrieved %d sources", len(result.Citations)),
		DurationMS: time.Since(start).Milliseconds(),
	})

	// Prompt assembly (pure, cannot fail)
	o.setState(StateComposing)
	start = time.Now()
	promptText := o.assembler.Assemble(req.Persona, result.ContextText, result.Citations, req.Text)
	trace = append(trace, thread.ThinkingStep{
		Step:       2,
		Thought:    fmt.Sprintf("assembled prompt as %s persona", req.Persona),
		DurationMS: time.Since(start).Milliseconds(),
	})

	// Model call
	o.setState(StateAwaitingModel)
	start = time.Now()
	answer, err := o.llmProvider.Generate(ctx, promptText)
	if err != nil {
		o.setState(StateErrored)
		o.logError("model call failed", err, key)
		o.setState(StateIdle)
		return nil, fmt.Errorf("%w: %v", ErrModelCall, err)
	}
	trace = append(trace, thread.ThinkingStep{
		Step:       3,
		Thought:    "generated response",
		DurationMS: time.Since(start).Milliseconds(),
	})

	// Integration under the captured key
	o.setState(StateIntegrating)
	assistantMsg := o.recordMessage(ctx, sessionID, key, thread.RoleAssistant, answer, result.Citations)
	o.store.Append(key, assistantMsg)
	o.store.SetTrace(assistantMsg.ID, trace)
	o.snapshot(ctx)

	outcome := &Outcome{
		Key:              key,
		UserMessage:      userMsg,
		AssistantMessage: assistantMsg,
		Citations:        result.Citations,
		Trace:            trace,
	}

	o.dispatchSideEffects(sessionID, key, answer)

	o.setState(StateIdle)
	return outcome, nil
}

// ClearThread empties the thread for key, as when the user starts a new
// session for a scope, and snapshots the store.
func (o *Orchestrator) ClearThread(ctx context.Context, key string) {
	o.store.Clear(key)
	o.snapshot(ctx)
}

// recordMessage builds the local message, letting the remote sink assign the
// canonical id and timestamp when it is reachable.
func (o *Orchestrator) recordMessage(ctx context.Context, sessionID, key, role, content string, citations []string) thread.Message {
	msg := thread.Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Citations: thread.ToCitations(citations),
		CreatedAt: time.Now().UTC(),
	}

	if o.sink != nil {
		remote, err := o.sink.AddMessage(ctx, sessionID, key, role, content, citations)
		if err != nil {
			o.logWarn("remote message persistence failed, keeping local id", err)
		} else {
			msg.ID = remote.ID
			if !remote.CreatedAt.IsZero() {
				msg.CreatedAt = remote.CreatedAt
			}
		}
	}

	return msg
}

// dispatchSideEffects fires voice synthesis and suggestion regeneration.
// Neither blocks the transition back to Idle nor propagates failure into the
// conversation state.
func (o *Orchestrator) dispatchSideEffects(sessionID, key, answer string) {
	if o.synthesizer != nil {
		o.dispatch(func() {
			audioURL, err := o.synthesizer.Speak(context.Background(), sessionID, answer)
			if err != nil {
				o.logWarn("voice synthesis failed", err)
				return
			}
			if o.onSpeech != nil && audioURL != "" {
				o.onSpeech(sessionID, audioURL)
			}
		})
	}

	if o.suggestions != nil {
		o.dispatch(func() {
			items := o.suggestions.Generate(context.Background(), o.store.Get(key))
			if len(items) > 0 && o.onSuggestions != nil {
				o.onSuggestions(key, items)
			}
		})
	}
}

func (o *Orchestrator) snapshot(ctx context.Context) {
	if o.persister != nil {
		o.persister.Save(ctx, o.store)
	}
}

func (o *Orchestrator) logWarn(message string, err error) {
	if o.logger != nil {
		o.logger.Warn("Orchestrator", message, map[string]interface{}{"error": err.Error()})
	}
}

func (o *Orchestrator) logError(message string, err error, key string) {
	if o.logger != nil {
		o.logger.Error("Orchestrator", message, map[string]interface{}{"error": err.Error(), "thread": key})
	}
}
