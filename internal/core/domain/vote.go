package domain

import "fmt"

// VoteValue is what a voter casts on a content item.
type VoteValue int

const (
	VoteNone VoteValue = 0
	VoteUp   VoteValue = 1
	VoteDown VoteValue = 2
)

// ParseVote validates the wire representation (0 remove, 1 up, 2 down).
func ParseVote(v int) (VoteValue, error) {
	switch VoteValue(v) {
	case VoteNone, VoteUp, VoteDown:
		return VoteValue(v), nil
	}
	return VoteNone, NewValidationError("vote", fmt.Sprintf("must be one of 0, 1, 2 (got %d)", v))
}

// Flag maps a cast to the stored boolean (true = upvote). Only valid for up/down.
func (v VoteValue) Flag() bool { return v == VoteUp }

func (v VoteValue) String() string {
	switch v {
	case VoteUp:
		return "up"
	case VoteDown:
		return "down"
	default:
		return "none"
	}
}

// VoteChange reports what a ledger write did to the (item, voter) row.
type VoteChange int

const (
	VoteUnchanged VoteChange = iota
	VoteCreated
	VoteUpdated
	VoteRemoved
)

// Notifies reports whether the owner should hear about this change.
func (c VoteChange) Notifies() bool {
	return c == VoteCreated || c == VoteUpdated
}

// VoteTally is the read model returned after a vote.
type VoteTally struct {
	ItemID     string `json:"id"`
	Upvotes    int64  `json:"upvotes"`
	Downvotes  int64  `json:"downvotes"`
	ViewerVote *bool  `json:"viewer_vote"`
}
