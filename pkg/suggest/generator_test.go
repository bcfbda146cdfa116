package suggest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"war-room-be/pkg/llm"
	"war-room-be/pkg/thread"
)

type stubLLM struct {
	reply      string
	err        error
	lastPrompt string
}

func (s *stubLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	return "", errors.New("not used")
}

func (s *stubLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	s.lastPrompt = prompt
	return s.reply, s.err
}

func TestGenerateEmptyThread(t *testing.T) {
	g := NewGenerator(&stubLLM{reply: "anything"}, nil)

	assert.Nil(t, g.Generate(context.Background(), nil))
}

func TestGenerateNilProvider(t *testing.T) {
	g := NewGenerator(nil, nil)

	assert.Nil(t, g.Generate(context.Background(), []thread.Message{{Role: thread.RoleUser, Content: "q"}}))
}

func TestGenerateParsesLines(t *testing.T) {
	stub := &stubLLM{reply: "What is the timeline?\n- Who owns this?\n2. What are the risks?"}
	g := NewGenerator(stub, nil)

	items := g.Generate(context.Background(), []thread.Message{
		{Role: thread.RoleUser, Content: "status?"},
		{Role: thread.RoleAssistant, Content: "on track"},
	})

	assert.Equal(t, []string{"What is the timeline?", "Who owns this?", "What are the risks?"}, items)
}

func TestGenerateCapsAtThree(t *testing.T) {
	stub := &stubLLM{reply: "a?\nb?\nc?\nd?\ne?"}
	g := NewGenerator(stub, nil)

	items := g.Generate(context.Background(), []thread.Message{{Role: thread.RoleUser, Content: "q"}})

	assert.Len(t, items, 3)
}

func TestGenerateProviderFailure(t *testing.T) {
	stub := &stubLLM{err: errors.New("timeout")}
	g := NewGenerator(stub, nil)

	assert.Nil(t, g.Generate(context.Background(), []thread.Message{{Role: thread.RoleUser, Content: "q"}}))
}

func TestGenerateUsesThreadTail(t *testing.T) {
	stub := &stubLLM{reply: "next?"}
	g := NewGenerator(stub, nil)

	var messages []thread.Message
	for i := 0; i < 10; i++ {
		role := thread.RoleUser
		if i%2 == 1 {
			role = thread.RoleAssistant
		}
		messages = append(messages, thread.Message{Role: role, Content: string(rune('a' + i))})
	}

	items := g.Generate(context.Background(), messages)

	require.Len(t, items, 1)
	// only the last 6 turns are included
	assert.NotContains(t, stub.lastPrompt, "user: a\n")
	assert.Contains(t, stub.lastPrompt, "user: e\n")
	assert.Contains(t, stub.lastPrompt, "assistant: j\n")
}
