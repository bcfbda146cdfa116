package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitTextShortInput(t *testing.T) {
	chunks := SplitText("short", 100, 10)

	require.Len(t, chunks, 1)
	assert.Equal(t, "short", chunks[0])
}

func TestSplitTextOverlap(t *testing.T) {
	text := strings.Repeat("a", 10) + strings.Repeat("b", 10)
	chunks := SplitText(text, 12, 4)

	require.True(t, len(chunks) >= 2)
	// each chunk starts with the tail of the previous one
	tail := chunks[0][len(chunks[0])-4:]
	assert.True(t, strings.HasPrefix(chunks[1], tail))
}

func TestSplitTextCoversWholeInput(t *testing.T) {
	text := strings.Repeat("x", 95)
	chunks := SplitText(text, 30, 5)

	last := chunks[len(chunks)-1]
	assert.True(t, strings.HasSuffix(text, last))

	total := 0
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c), 30)
		total += len(c)
	}
	assert.GreaterOrEqual(t, total, len(text))
}

func TestSplitTextOverlapLargerThanChunk(t *testing.T) {
	text := strings.Repeat("y", 50)

	// must not loop forever; falls back to stepping a full chunk
	chunks := SplitText(text, 10, 10)

	assert.Len(t, chunks, 5)
}

func TestSplitTextMultibyte(t *testing.T) {
	text := strings.Repeat("日", 25)
	chunks := SplitText(text, 100, 0)

	require.Len(t, chunks, 1)
	assert.Equal(t, text, chunks[0])
}
