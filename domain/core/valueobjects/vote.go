package valueobjects

import (
	"fmt"
	"strings"

	pkgerrors "stackecho/pkg/errors"
)

// VoteDirection is the viewer's vote on a question or answer.
// The zero value means no vote.
type VoteDirection string

const (
	VoteNone VoteDirection = ""
	VoteUp   VoteDirection = "up"
	VoteDown VoteDirection = "down"
)

// ParseVoteDirection accepts "up" or "down" (case-insensitive).
func ParseVoteDirection(s string) (VoteDirection, error) {
	switch VoteDirection(strings.ToLower(strings.TrimSpace(s))) {
	case VoteUp:
		return VoteUp, nil
	case VoteDown:
		return VoteDown, nil
	default:
		return VoteNone, pkgerrors.NewValidation(fmt.Sprintf("invalid vote direction %q", s))
	}
}

// IsValid reports whether d is a castable direction.
func (d VoteDirection) IsValid() bool {
	return d == VoteUp || d == VoteDown
}

// Delta is +1 for up and -1 for down.
func (d VoteDirection) Delta() int {
	switch d {
	case VoteUp:
		return 1
	case VoteDown:
		return -1
	default:
		return 0
	}
}

// ApplyVote runs the tally state machine for one vote action.
//
//	same direction again  -> retract (tally -= delta, none)
//	opposite direction    -> switch  (tally += 2*delta)
//	no previous vote      -> cast    (tally += delta)
//
// Invalid directions leave the state untouched.
func ApplyVote(votes int, current, dir VoteDirection) (int, VoteDirection) {
	if !dir.IsValid() {
		return votes, current
	}

	switch {
	case current == dir:
		return votes - dir.Delta(), VoteNone
	case current != VoteNone:
		return votes + 2*dir.Delta(), dir
	default:
		return votes + dir.Delta(), dir
	}
}
