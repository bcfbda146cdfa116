package thread

import "time"

// Message roles. Messages are immutable once appended to a thread.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Citation names a document that grounded an assistant response.
type Citation struct {
	Title string `json:"title"`
}

// Message is one turn in a conversation thread.
type Message struct {
	ID        string     `json:"id"`
	Role      string     `json:"role"`
	Content   string     `json:"content"`
	Citations []Citation `json:"citations,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// ThinkingStep is one entry of the diagnostic trace attached to an assistant
// message. It is never required for correctness.
type ThinkingStep struct {
	Step       int    `json:"step"`
	Thought    string `json:"thought"`
	DurationMS int64  `json:"duration_ms"`
}

// CitationTitles extracts the plain titles from a citation list.
func CitationTitles(citations []Citation) []string {
	if len(citations) == 0 {
		return nil
	}
	titles := make([]string, len(citations))
	for i, c := range citations {
		titles[i] = c.Title
	}
	return titles
}

// ToCitations wraps raw titles as citation values.
func ToCitations(titles []string) []Citation {
	if len(titles) == 0 {
		return nil
	}
	citations := make([]Citation, len(titles))
	for i, t := range titles {
		citations[i] = Citation{Title: t}
	}
	return citations
}
