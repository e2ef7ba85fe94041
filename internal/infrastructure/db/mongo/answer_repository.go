package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sal22/qanda-api/internal/core/domain"
)

// AnswerRepository implements ports.AnswerRepository using MongoDB.
type AnswerRepository struct {
	col *mongo.Collection
}

func NewAnswerRepository(db *mongo.Database) *AnswerRepository {
	return &AnswerRepository{col: db.Collection(collectionAnswers)}
}

type mongoAnswer struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	UserID     string             `bson:"user_id"`
	QuestionID string             `bson:"question_id"`
	Content    string             `bson:"content"`
	CreatedAt  time.Time          `bson:"created_at"`
}

func (ma mongoAnswer) toDomain() *domain.Answer {
	return &domain.Answer{
		ID:         ma.ID.Hex(),
		UserID:     ma.UserID,
		QuestionID: ma.QuestionID,
		Content:    ma.Content,
		CreatedAt:  ma.CreatedAt.UTC(),
	}
}

func (r *AnswerRepository) Create(ctx context.Context, a *domain.Answer) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if a.CreatedAt.IsZero() {
		a.CreatedAt = now()
	}
	res, err := r.col.InsertOne(ctx, mongoAnswer{
		UserID:     a.UserID,
		QuestionID: a.QuestionID,
		Content:    a.Content,
		CreatedAt:  a.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("insert answer: %w", err)
	}
	a.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return nil
}

func (r *AnswerRepository) FindByID(ctx context.Context, id string) (*domain.Answer, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, domain.ErrAnswerNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var ma mongoAnswer
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&ma); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAnswerNotFound
		}
		return nil, fmt.Errorf("find answer: %w", err)
	}
	return ma.toDomain(), nil
}

// ListByQuestion returns one page of a question's answers, newest first.
func (r *AnswerRepository) ListByQuestion(ctx context.Context, questionID string, page domain.PageRequest) ([]*domain.Answer, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"question_id": questionID}
	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count answers: %w", err)
	}

	opts := options.Find().SetSort(newestFirst).SetSkip(page.Offset()).SetLimit(int64(page.PerPage))
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list answers: %w", err)
	}
	defer cur.Close(ctx)

	var docs []mongoAnswer
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("decode answers: %w", err)
	}
	items := make([]*domain.Answer, 0, len(docs))
	for _, d := range docs {
		items = append(items, d.toDomain())
	}
	return items, total, nil
}

func (r *AnswerRepository) Update(ctx context.Context, a *domain.Answer) error {
	oid, ok := objectID(a.ID)
	if !ok {
		return domain.ErrAnswerNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{"content": a.Content}})
	if err != nil {
		return fmt.Errorf("update answer: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrAnswerNotFound
	}
	return nil
}

func (r *AnswerRepository) Delete(ctx context.Context, id string) error {
	oid, ok := objectID(id)
	if !ok {
		return domain.ErrAnswerNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete answer: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrAnswerNotFound
	}
	return nil
}

// ClaimForQuestion stamps accepted_at on the answer. The write makes a
// concurrent delete of the same answer a write conflict, so inside a
// transaction one of the two retries and sees the other's result.
func (r *AnswerRepository) ClaimForQuestion(ctx context.Context, answerID, questionID string) error {
	oid, ok := objectID(answerID)
	if !ok {
		return domain.ErrAnswerNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": oid, "question_id": questionID},
		bson.M{"$set": bson.M{"accepted_at": now()}},
	)
	if err != nil {
		return fmt.Errorf("claim answer: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrAnswerNotFound
	}
	return nil
}

// DeleteByQuestion removes every answer of a question and returns the removed ids
// so their votes can be purged in the same transaction.
func (r *AnswerRepository) DeleteByQuestion(ctx context.Context, questionID string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"question_id": questionID}
	cur, err := r.col.Find(ctx, filter, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, fmt.Errorf("find answers: %w", err)
	}
	var docs []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode answer ids: %w", err)
	}

	ids := make([]string, 0, len(docs))
	oids := make([]primitive.ObjectID, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID.Hex())
		oids = append(oids, d.ID)
	}
	if len(oids) == 0 {
		return ids, nil
	}
	if _, err := r.col.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": oids}}); err != nil {
		return nil, fmt.Errorf("delete answers: %w", err)
	}
	return ids, nil
}

func (r *AnswerRepository) CountByQuestion(ctx context.Context, questionID string) (int64, error) {
	return r.count(ctx, bson.M{"question_id": questionID})
}

func (r *AnswerRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	return r.count(ctx, bson.M{"user_id": userID})
}

func (r *AnswerRepository) count(ctx context.Context, filter bson.M) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("count answers: %w", err)
	}
	return n, nil
}
