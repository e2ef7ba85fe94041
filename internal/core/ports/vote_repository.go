package ports

import (
	"context"

	"github.com/sal22/qanda-api/internal/core/domain"
)

// VoteRepository is the ledger for one item kind. At most one row exists per
// (item, voter); the store enforces it with a unique index.
type VoteRepository interface {
	// Set finds-or-creates the (item, voter) row and sets its flag in a single
	// atomic write. A lost insert race surfaces as domain.ErrDuplicate.
	Set(ctx context.Context, itemID, voterID string, up bool) (domain.VoteChange, error)
	// Remove deletes the row if present. Absent rows yield VoteUnchanged.
	Remove(ctx context.Context, itemID, voterID string) (domain.VoteChange, error)
	// Get returns nil when the voter has not voted on the item.
	Get(ctx context.Context, itemID, voterID string) (*bool, error)
	Count(ctx context.Context, itemID string, up bool) (int64, error)
	DeleteByItems(ctx context.Context, itemIDs ...string) error
}

// VoteLedgers resolves the ledger of a given item kind.
type VoteLedgers interface {
	Ledger(kind domain.ItemKind) VoteRepository
}
