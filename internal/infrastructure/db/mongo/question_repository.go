package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sal22/qanda-api/internal/core/domain"
	"github.com/sal22/qanda-api/internal/core/ports"
)

// QuestionRepository implements ports.QuestionRepository using MongoDB.
type QuestionRepository struct {
	col *mongo.Collection
}

func NewQuestionRepository(db *mongo.Database) *QuestionRepository {
	return &QuestionRepository{col: db.Collection(collectionQuestions)}
}

type mongoQuestion struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	UserID         string             `bson:"user_id"`
	Content        string             `bson:"content"`
	AcceptedAnswer string             `bson:"accepted_answer,omitempty"`
	CreatedAt      time.Time          `bson:"created_at"`
}

func (mq mongoQuestion) toDomain() *domain.Question {
	return &domain.Question{
		ID:             mq.ID.Hex(),
		UserID:         mq.UserID,
		Content:        mq.Content,
		AcceptedAnswer: mq.AcceptedAnswer,
		CreatedAt:      mq.CreatedAt.UTC(),
	}
}

// newestFirst orders listings; _id breaks ties between equal timestamps.
var newestFirst = bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}

// Create inserts q and sets its ID.
func (r *QuestionRepository) Create(ctx context.Context, q *domain.Question) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if q.CreatedAt.IsZero() {
		q.CreatedAt = now()
	}
	res, err := r.col.InsertOne(ctx, mongoQuestion{
		UserID:    q.UserID,
		Content:   q.Content,
		CreatedAt: q.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("insert question: %w", err)
	}
	q.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return nil
}

func (r *QuestionRepository) FindByID(ctx context.Context, id string) (*domain.Question, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, domain.ErrQuestionNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mq mongoQuestion
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&mq); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrQuestionNotFound
		}
		return nil, fmt.Errorf("find question: %w", err)
	}
	return mq.toDomain(), nil
}

// List returns one page of questions matching filter and the total match count.
func (r *QuestionRepository) List(ctx context.Context, filter ports.QuestionFilter) ([]*domain.Question, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := bson.M{}
	if filter.UserID != "" {
		query["user_id"] = filter.UserID
	}
	if filter.Search != "" {
		query["content"] = primitive.Regex{Pattern: regexp.QuoteMeta(filter.Search), Options: "i"}
	}

	total, err := r.col.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("count questions: %w", err)
	}

	opts := options.Find().
		SetSort(newestFirst).
		SetSkip(filter.Page.Offset()).
		SetLimit(int64(filter.Page.PerPage))
	cur, err := r.col.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list questions: %w", err)
	}
	defer cur.Close(ctx)

	items := make([]*domain.Question, 0, filter.Page.PerPage)
	for cur.Next(ctx) {
		var mq mongoQuestion
		if err := cur.Decode(&mq); err != nil {
			return nil, 0, fmt.Errorf("decode question: %w", err)
		}
		items = append(items, mq.toDomain())
	}
	if err := cur.Err(); err != nil {
		return nil, 0, fmt.Errorf("list questions: %w", err)
	}
	return items, total, nil
}

// UpdateFields applies only the fields present in patch, so a content edit
// never rewrites a pointer that a concurrent answer delete has cleared.
func (r *QuestionRepository) UpdateFields(ctx context.Context, id string, patch domain.QuestionPatch) (*domain.Question, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, domain.ErrQuestionNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set := bson.M{}
	unset := bson.M{}
	if patch.Content != nil {
		set["content"] = *patch.Content
	}
	if patch.AcceptedAnswer != nil {
		if *patch.AcceptedAnswer == "" {
			unset["accepted_answer"] = ""
		} else {
			set["accepted_answer"] = *patch.AcceptedAnswer
		}
	}

	filter := bson.M{"_id": oid}
	var mq mongoQuestion
	if len(set) == 0 && len(unset) == 0 {
		if err := r.col.FindOne(ctx, filter).Decode(&mq); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return nil, domain.ErrQuestionNotFound
			}
			return nil, fmt.Errorf("find question: %w", err)
		}
		return mq.toDomain(), nil
	}

	update := bson.M{}
	if len(set) > 0 {
		update["$set"] = set
	}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&mq); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrQuestionNotFound
		}
		return nil, fmt.Errorf("update question: %w", err)
	}
	return mq.toDomain(), nil
}

func (r *QuestionRepository) Delete(ctx context.Context, id string) error {
	oid, ok := objectID(id)
	if !ok {
		return domain.ErrQuestionNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete question: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrQuestionNotFound
	}
	return nil
}

// ClearAcceptedAnswer is conditional on the pointer still naming answerID, so
// a concurrent re-accept of another answer is left alone.
func (r *QuestionRepository) ClearAcceptedAnswer(ctx context.Context, questionID, answerID string) error {
	oid, ok := objectID(questionID)
	if !ok {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.UpdateOne(ctx,
		bson.M{"_id": oid, "accepted_answer": answerID},
		bson.M{"$unset": bson.M{"accepted_answer": ""}},
	)
	if err != nil {
		return fmt.Errorf("clear accepted answer: %w", err)
	}
	return nil
}

func (r *QuestionRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, fmt.Errorf("count questions: %w", err)
	}
	return n, nil
}
