package suggest

import (
	"context"
	"fmt"
	"strings"

	"war-room-be/internal/pkg/logger"
	"war-room-be/pkg/llm"
	"war-room-be/pkg/thread"
)

const maxSuggestions = 3

// Generator produces follow-up question suggestions for a thread. It runs as
// a fire-and-forget side effect after an exchange completes.
type Generator struct {
	llmProvider llm.LLMProvider
	logger      logger.ILogger
}

func NewGenerator(llmProvider llm.LLMProvider, log logger.ILogger) *Generator {
	return &Generator{
		llmProvider: llmProvider,
		logger:      log,
	}
}

// Generate asks the model for follow-up questions based on the last turns of
// the thread. Returns nil on any failure; suggestions are never required.
func (g *Generator) Generate(ctx context.Context, messages []thread.Message) []string {
	if g.llmProvider == nil || len(messages) == 0 {
		return nil
	}

	var b strings.Builder
	b.WriteString("Based on this conversation, suggest up to 3 short follow-up questions the user might ask next.\n")
	b.WriteString("Reply with one question per line, no numbering, no extra text.\n\nCONVERSATION:\n")

	// Only the tail of the thread matters for follow-ups
	start := 0
	if len(messages) > 6 {
		start = len(messages) - 6
	}
	for _, m := range messages[start:] {
		fmt.Fprintf(&b, "%s: %s\n", m.Role, m.Content)
	}

	raw, err := g.llmProvider.Generate(ctx, b.String(), llm.WithTemperature(0.9))
	if err != nil {
		if g.logger != nil {
			g.logger.Warn("SuggestionGenerator", "suggestion generation failed", map[string]interface{}{"error": err.Error()})
		}
		return nil
	}

	return parseSuggestions(raw)
}

func parseSuggestions(raw string) []string {
	var out []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "-*0123456789. ")
		if line == "" {
			continue
		}
		out = append(out, line)
		if len(out) == maxSuggestions {
			break
		}
	}
	return out
}
