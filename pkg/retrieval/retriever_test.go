package retrieval

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func staticSearch(chunks []Chunk, err error) SearchFn {
	return func(ctx context.Context, query string) ([]Chunk, error) {
		return chunks, err
	}
}

func TestRetrieveNoSearchFn(t *testing.T) {
	r := NewRetriever(nil)

	result := r.Retrieve(context.Background(), "query", nil, nil)

	assert.Empty(t, result.ContextText)
	assert.Empty(t, result.Citations)
}

func TestRetrieveSearchFailureDegradesToEmpty(t *testing.T) {
	r := NewRetriever(nil)
	search := staticSearch(nil, errors.New("pgvector down"))

	result := r.Retrieve(context.Background(), "query", search, nil)

	assert.Empty(t, result.ContextText)
	assert.Empty(t, result.Citations)
}

func TestRetrieveNoMatches(t *testing.T) {
	r := NewRetriever(nil)
	search := staticSearch([]Chunk{}, nil)

	result := r.Retrieve(context.Background(), "query", search, nil)

	assert.Empty(t, result.ContextText)
	assert.Empty(t, result.Citations)
}

func TestRetrieveLabelsSourcesInOrder(t *testing.T) {
	r := NewRetriever(nil)
	search := staticSearch([]Chunk{
		{DocID: "d1", DocTitle: "Alpha Brief", Content: "alpha content", Similarity: 0.91},
		{DocID: "d2", DocTitle: "Bravo Notes", Content: "bravo content", Similarity: 0.62},
	}, nil)

	result := r.Retrieve(context.Background(), "query", search, nil)

	assert.Contains(t, result.ContextText, "SOURCE 1: Alpha Brief (91% match)")
	assert.Contains(t, result.ContextText, "SOURCE 2: Bravo Notes (62% match)")
	assert.Contains(t, result.ContextText, "alpha content")
	assert.Equal(t, []string{"Alpha Brief", "Bravo Notes"}, result.Citations)
}

func TestRetrieveDeduplicatesCitations(t *testing.T) {
	r := NewRetriever(nil)
	search := staticSearch([]Chunk{
		{DocID: "d1", DocTitle: "Alpha Brief", Content: "chunk one", Similarity: 0.9},
		{DocID: "d1", DocTitle: "Alpha Brief", Content: "chunk two", Similarity: 0.8},
	}, nil)

	result := r.Retrieve(context.Background(), "query", search, nil)

	assert.Equal(t, []string{"Alpha Brief"}, result.Citations)
}

func TestRetrieveActiveContextFilters(t *testing.T) {
	r := NewRetriever(nil)
	search := staticSearch([]Chunk{
		{DocID: "d1", DocTitle: "Alpha Brief", Content: "in scope", Similarity: 0.9},
		{DocID: "d2", DocTitle: "Bravo Notes", Content: "out of scope", Similarity: 0.95},
	}, nil)

	result := r.Retrieve(context.Background(), "query", search, NewActiveContextSet("d1"))

	assert.Contains(t, result.ContextText, "Alpha Brief")
	assert.NotContains(t, result.ContextText, "Bravo Notes")
	assert.Contains(t, result.ContextText, "ACTIVE CONTEXT")
	assert.Equal(t, []string{"Alpha Brief"}, result.Citations)
}

func TestRetrieveActiveContextAllFilteredOut(t *testing.T) {
	r := NewRetriever(nil)
	search := staticSearch([]Chunk{
		{DocID: "d2", DocTitle: "Bravo Notes", Content: "c", Similarity: 0.95},
	}, nil)

	result := r.Retrieve(context.Background(), "query", search, NewActiveContextSet("d1"))

	assert.Empty(t, result.ContextText)
	assert.Empty(t, result.Citations)
}

func TestRetrieveEmptySetSearchesEverything(t *testing.T) {
	r := NewRetriever(nil)
	search := staticSearch([]Chunk{
		{DocID: "d1", DocTitle: "Alpha Brief", Content: "c1", Similarity: 0.9},
		{DocID: "d2", DocTitle: "Bravo Notes", Content: "c2", Similarity: 0.8},
	}, nil)

	result := r.Retrieve(context.Background(), "query", search, NewActiveContextSet())

	require.Len(t, result.Citations, 2)
	assert.Contains(t, result.ContextText, "knowledge base")
	assert.NotContains(t, result.ContextText, "ACTIVE CONTEXT")
}

func TestActiveContextSet(t *testing.T) {
	set := NewActiveContextSet("a", "b")

	assert.True(t, set.Contains("a"))
	assert.False(t, set.Contains("c"))
	assert.True(t, set.Restricted())
	assert.ElementsMatch(t, []string{"a", "b"}, set.IDs())

	empty := NewActiveContextSet()
	assert.False(t, empty.Restricted())
}
