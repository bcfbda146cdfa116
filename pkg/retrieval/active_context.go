package retrieval

// ActiveContextSet is the user-curated set of document ids that scopes
// retrieval. The empty set means "search all completed documents", not
// "search nothing".
type ActiveContextSet map[string]struct{}

// NewActiveContextSet builds a set from document ids.
func NewActiveContextSet(ids ...string) ActiveContextSet {
	set := make(ActiveContextSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// Contains reports whether id is part of the set.
func (s ActiveContextSet) Contains(id string) bool {
	_, ok := s[id]
	return ok
}

// Restricted reports whether the set actually narrows the search scope.
func (s ActiveContextSet) Restricted() bool {
	return len(s) > 0
}

// IDs returns the member ids in arbitrary order.
func (s ActiveContextSet) IDs() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	return ids
}
