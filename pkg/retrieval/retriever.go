package retrieval

import (
	"context"
	"fmt"
	"strings"

	"war-room-be/internal/pkg/logger"
)

// Chunk is one candidate returned by the upstream similarity search.
type Chunk struct {
	DocID      string
	DocTitle   string
	Content    string
	Similarity float64
}

// SearchFn is the external similarity-search boundary. Ordering of the
// returned chunks is taken as-is; no re-ranking happens downstream.
type SearchFn func(ctx context.Context, query string) ([]Chunk, error)

// Result packages the assembled context block with its citation titles.
type Result struct {
	ContextText string
	Citations   []string
}

const (
	restrictedPreamble = "You have access to the user's ACTIVE CONTEXT documents below. " +
		"Only use these active-context documents to answer; ignore any other knowledge base content.\n\n"
	openPreamble = "You have access to the user's knowledge base. " +
		"Use the document excerpts below to ground your answer.\n\n"
)

// Retriever filters and packages similarity-search output into a bounded
// context block with citation obligations.
type Retriever struct {
	logger logger.ILogger
}

// NewRetriever creates a retriever. The logger may be nil.
func NewRetriever(log logger.ILogger) *Retriever {
	return &Retriever{logger: log}
}

// Retrieve runs the similarity search and assembles the context block.
// Retrieval is best-effort: a search failure degrades to the empty result so
// the exchange can continue ungrounded.
func (r *Retriever) Retrieve(ctx context.Context, query string, search SearchFn, active ActiveContextSet) Result {
	if search == nil {
		return Result{}
	}

	chunks, err := search(ctx, query)
	if err != nil {
		r.warn("similarity search failed, continuing without context", err)
		return Result{}
	}

	if active.Restricted() {
		filtered := chunks[:0]
		for _, c := range chunks {
			if active.Contains(c.DocID) {
				filtered = append(filtered, c)
			}
		}
		chunks = filtered
	}

	if len(chunks) == 0 {
		return Result{}
	}

	var b strings.Builder
	if active.Restricted() {
		b.WriteString(restrictedPreamble)
	} else {
		b.WriteString(openPreamble)
	}

	var citations []string
	seen := make(map[string]bool)
	for i, c := range chunks {
		fmt.Fprintf(&b, "SOURCE %d: %s (%.0f%% match)\n%s\n\n", i+1, c.DocTitle, c.Similarity*100, c.Content)
		if !seen[c.DocTitle] {
			seen[c.DocTitle] = true
			citations = append(citations, c.DocTitle)
		}
	}

	return Result{
		ContextText: strings.TrimRight(b.String(), "\n"),
		Citations:   citations,
	}
}

func (r *Retriever) warn(message string, err error) {
	if r.logger == nil {
		return
	}
	r.logger.Warn("Retriever", message, map[string]interface{}{"error": err.Error()})
}
