package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/sal22/qanda-api/internal/core/domain"
	"github.com/sal22/qanda-api/internal/core/ports"
	"github.com/sal22/qanda-api/internal/pkg/metrics"
)

type voteService struct {
	ledgers   ports.VoteLedgers
	questions ports.QuestionRepository
	answers   ports.AnswerRepository
	notifier  ports.Notifier
	log       zerolog.Logger
}

// NewVoteService returns a VoteService backed by one ledger per item kind.
func NewVoteService(
	ledgers ports.VoteLedgers,
	questions ports.QuestionRepository,
	answers ports.AnswerRepository,
	notifier ports.Notifier,
	log zerolog.Logger,
) ports.VoteService {
	return &voteService{
		ledgers:   ledgers,
		questions: questions,
		answers:   answers,
		notifier:  notifier,
		log:       log.With().Str("component", "votes").Logger(),
	}
}

// votedItem is the part of a content item a vote needs.
type votedItem struct {
	ownerID string
	url     string
}

func (s *voteService) target(ctx context.Context, kind domain.ItemKind, itemID string) (*votedItem, error) {
	switch kind {
	case domain.KindQuestion:
		q, err := s.questions.FindByID(ctx, itemID)
		if err != nil {
			return nil, err
		}
		return &votedItem{ownerID: q.UserID, url: questionURL(q.ID)}, nil
	case domain.KindAnswer:
		a, err := s.answers.FindByID(ctx, itemID)
		if err != nil {
			return nil, err
		}
		return &votedItem{ownerID: a.UserID, url: answerURL(a.QuestionID, a.ID)}, nil
	}
	return nil, domain.NewValidationError("kind", fmt.Sprintf("unknown item kind %q", kind))
}

// Cast records the principal's vote and returns the fresh tally. A lost
// insert race on the (item, voter) key is retried once.
func (s *voteService) Cast(ctx context.Context, p *domain.Principal, kind domain.ItemKind, itemID string, value domain.VoteValue) (*domain.VoteTally, error) {
	if p == nil {
		return nil, domain.ErrUnauthenticated
	}
	if _, err := domain.ParseVote(int(value)); err != nil {
		return nil, err
	}

	item, err := s.target(ctx, kind, itemID)
	if err != nil {
		return nil, fmt.Errorf("cast vote: %w", err)
	}
	ledger := s.ledgers.Ledger(kind)

	change, err := s.write(ctx, ledger, itemID, p.UserID, value)
	if errors.Is(err, domain.ErrDuplicate) {
		metrics.VoteRetriesTotal.WithLabelValues(string(kind)).Inc()
		s.log.Debug().Str("kind", string(kind)).Str("item_id", itemID).Str("voter", p.UserID).Msg("vote insert race, retrying")
		change, err = s.write(ctx, ledger, itemID, p.UserID, value)
	}
	if err != nil {
		return nil, fmt.Errorf("cast vote: %w", err)
	}
	metrics.VotesCastTotal.WithLabelValues(string(kind), value.String(), changeLabel(change)).Inc()

	if change.Notifies() {
		verb := "upvoted"
		if value == domain.VoteDown {
			verb = "downvoted"
		}
		s.notifier.Notify(WithActor(ctx, p.UserID), item.ownerID, fmt.Sprintf("%s %s your %s", p.Username, verb, kind), item.url)
	}

	t, err := tally(ctx, ledger, itemID, p)
	if err != nil {
		return nil, fmt.Errorf("cast vote: %w", err)
	}
	return &t, nil
}

func (s *voteService) write(ctx context.Context, ledger ports.VoteRepository, itemID, voterID string, value domain.VoteValue) (domain.VoteChange, error) {
	if value == domain.VoteNone {
		return ledger.Remove(ctx, itemID, voterID)
	}
	return ledger.Set(ctx, itemID, voterID, value.Flag())
}

// Tally reads the counts of an item. viewer may be nil.
func (s *voteService) Tally(ctx context.Context, kind domain.ItemKind, itemID string, viewer *domain.Principal) (domain.VoteTally, error) {
	if _, err := s.target(ctx, kind, itemID); err != nil {
		return domain.VoteTally{}, err
	}
	return tally(ctx, s.ledgers.Ledger(kind), itemID, viewer)
}

func changeLabel(c domain.VoteChange) string {
	switch c {
	case domain.VoteCreated:
		return "created"
	case domain.VoteUpdated:
		return "updated"
	case domain.VoteRemoved:
		return "removed"
	default:
		return "unchanged"
	}
}
