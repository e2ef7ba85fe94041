package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sal22/qanda-api/internal/core/domain"
	"github.com/sal22/qanda-api/internal/core/ports"
)

// VoteRepository is the vote ledger of one item kind. Rows are keyed by
// (<kind>_id, user_id) under a unique index.
type VoteRepository struct {
	col       *mongo.Collection
	itemField string
}

func NewQuestionVoteRepository(db *mongo.Database) *VoteRepository {
	return &VoteRepository{col: db.Collection(collectionQuestionsVotes), itemField: "question_id"}
}

func NewAnswerVoteRepository(db *mongo.Database) *VoteRepository {
	return &VoteRepository{col: db.Collection(collectionAnswersVotes), itemField: "answer_id"}
}

type mongoVote struct {
	Vote      bool      `bson:"vote"`
	CreatedAt time.Time `bson:"created_at"`
}

func (r *VoteRepository) key(itemID, voterID string) bson.M {
	return bson.M{r.itemField: itemID, "user_id": voterID}
}

// Set finds-or-creates the row and sets its flag in one upsert. Setting the
// value already stored modifies nothing and reports VoteUnchanged. Two racing
// inserts for the same key make one of them fail with domain.ErrDuplicate.
func (r *VoteRepository) Set(ctx context.Context, itemID, voterID string, up bool) (domain.VoteChange, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx,
		r.key(itemID, voterID),
		bson.M{
			"$set":         bson.M{"vote": up},
			"$setOnInsert": bson.M{"created_at": now()},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.VoteUnchanged, domain.ErrDuplicate
		}
		return domain.VoteUnchanged, fmt.Errorf("set vote: %w", err)
	}

	switch {
	case res.UpsertedCount > 0:
		return domain.VoteCreated, nil
	case res.ModifiedCount > 0:
		return domain.VoteUpdated, nil
	default:
		return domain.VoteUnchanged, nil
	}
}

func (r *VoteRepository) Remove(ctx context.Context, itemID, voterID string) (domain.VoteChange, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, r.key(itemID, voterID))
	if err != nil {
		return domain.VoteUnchanged, fmt.Errorf("remove vote: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.VoteUnchanged, nil
	}
	return domain.VoteRemoved, nil
}

func (r *VoteRepository) Get(ctx context.Context, itemID, voterID string) (*bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mv mongoVote
	err := r.col.FindOne(ctx, r.key(itemID, voterID)).Decode(&mv)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get vote: %w", err)
	}
	return &mv.Vote, nil
}

func (r *VoteRepository) Count(ctx context.Context, itemID string, up bool) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, bson.M{r.itemField: itemID, "vote": up})
	if err != nil {
		return 0, fmt.Errorf("count votes: %w", err)
	}
	return n, nil
}

func (r *VoteRepository) DeleteByItems(ctx context.Context, itemIDs ...string) error {
	if len(itemIDs) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.DeleteMany(ctx, bson.M{r.itemField: bson.M{"$in": itemIDs}}); err != nil {
		return fmt.Errorf("delete votes: %w", err)
	}
	return nil
}

// VoteLedgers routes an item kind to its ledger.
type VoteLedgers struct {
	Questions *VoteRepository
	Answers   *VoteRepository
}

func NewVoteLedgers(db *mongo.Database) *VoteLedgers {
	return &VoteLedgers{
		Questions: NewQuestionVoteRepository(db),
		Answers:   NewAnswerVoteRepository(db),
	}
}

func (l *VoteLedgers) Ledger(kind domain.ItemKind) ports.VoteRepository {
	if kind == domain.KindAnswer {
		return l.Answers
	}
	return l.Questions
}
