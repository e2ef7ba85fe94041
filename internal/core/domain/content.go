package domain

import "time"

// ItemKind tags the content type a vote or permission check refers to.
type ItemKind string

const (
	KindQuestion ItemKind = "question"
	KindAnswer   ItemKind = "answer"
)

// DeletePermission returns the permission that lets a non-owner delete items of this kind.
func (k ItemKind) DeletePermission() Permission {
	if k == KindAnswer {
		return PermDeleteAnswers
	}
	return PermDeleteQuestions
}

// Question is a user's post. AcceptedAnswer, when set, must reference an
// answer whose QuestionID equals this question's ID.
type Question struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	Content        string    `json:"content"`
	AcceptedAnswer string    `json:"accepted_answer,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

func (q *Question) OwnerID() string { return q.UserID }

// Answer belongs to exactly one question.
type Answer struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	QuestionID string    `json:"question_id"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

func (a *Answer) OwnerID() string { return a.UserID }

// QuestionPatch is an owner edit of a question. Nil fields are left untouched.
type QuestionPatch struct {
	Content        *string
	AcceptedAnswer *string
}

// AnswerPatch is an owner edit of an answer.
type AnswerPatch struct {
	Content *string
}
