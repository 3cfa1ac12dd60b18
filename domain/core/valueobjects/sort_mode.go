package valueobjects

import "strings"

// SortMode selects the ordering of the question list.
type SortMode string

const (
	SortNewest     SortMode = "newest"
	SortActive     SortMode = "active"
	SortVotes      SortMode = "votes"
	SortUnanswered SortMode = "unanswered"
)

// ParseSortMode maps s to a SortMode, defaulting to newest.
func ParseSortMode(s string) SortMode {
	switch mode := SortMode(strings.ToLower(strings.TrimSpace(s))); mode {
	case SortNewest, SortActive, SortVotes, SortUnanswered:
		return mode
	default:
		return SortNewest
	}
}

// IsValid reports whether m is a known mode.
func (m SortMode) IsValid() bool {
	switch m {
	case SortNewest, SortActive, SortVotes, SortUnanswered:
		return true
	}
	return false
}
