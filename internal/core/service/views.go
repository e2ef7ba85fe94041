package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/sal22/qanda-api/internal/core/domain"
	"github.com/sal22/qanda-api/internal/core/ports"
)

// questionURL is the client route of a question page.
func questionURL(questionID string) string {
	return "/questions/" + questionID
}

func answerURL(questionID, answerID string) string {
	return questionURL(questionID) + "#answer-" + answerID
}

func summarize(u *domain.User) *ports.UserSummary {
	if u == nil {
		return nil
	}
	return &ports.UserSummary{
		ID:        u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Job:       u.Job,
		Avatar:    u.Avatar,
	}
}

// authorCache resolves owner summaries once per listing.
type authorCache struct {
	users ports.UserRepository
	seen  map[string]*ports.UserSummary
}

func newAuthorCache(users ports.UserRepository) *authorCache {
	return &authorCache{users: users, seen: make(map[string]*ports.UserSummary)}
}

// get returns nil for owners that no longer exist.
func (c *authorCache) get(ctx context.Context, userID string) (*ports.UserSummary, error) {
	if s, ok := c.seen[userID]; ok {
		return s, nil
	}
	u, err := c.users.FindByID(ctx, userID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("load author %s: %w", userID, err)
	}
	s := summarize(u)
	c.seen[userID] = s
	return s, nil
}

// tally reads the live counts of an item plus the viewer's own vote.
func tally(ctx context.Context, ledger ports.VoteRepository, itemID string, viewer *domain.Principal) (domain.VoteTally, error) {
	t := domain.VoteTally{ItemID: itemID}
	var err error
	if t.Upvotes, err = ledger.Count(ctx, itemID, true); err != nil {
		return t, fmt.Errorf("count upvotes: %w", err)
	}
	if t.Downvotes, err = ledger.Count(ctx, itemID, false); err != nil {
		return t, fmt.Errorf("count downvotes: %w", err)
	}
	if viewer != nil {
		if t.ViewerVote, err = ledger.Get(ctx, itemID, viewer.UserID); err != nil {
			return t, fmt.Errorf("viewer vote: %w", err)
		}
	}
	return t, nil
}

// deletedBy labels who removed content for metrics.
func deletedBy(p *domain.Principal, res domain.Ownable) string {
	if p.Owns(res) {
		return "owner"
	}
	return "moderator"
}
