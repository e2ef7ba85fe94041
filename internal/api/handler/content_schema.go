package handler

import (
	"time"

	"github.com/sal22/qanda-api/internal/core/domain"
	"github.com/sal22/qanda-api/internal/core/ports"
)

type createQuestionRequest struct {
	Content string `json:"content" validate:"required,max=10000"`
}

type updateQuestionRequest struct {
	Content *string `json:"content" validate:"omitempty,min=1,max=10000"`
	// AcceptedAnswer set to "" clears the pointer.
	AcceptedAnswer *string `json:"accepted_answer"`
}

type createAnswerRequest struct {
	QuestionID string `json:"question_id" validate:"required"`
	Content    string `json:"content"     validate:"required,max=10000"`
}

type updateAnswerRequest struct {
	Content *string `json:"content" validate:"omitempty,min=1,max=10000"`
}

// voteRequest: 1 upvote, 2 downvote, 0 removes the caller's vote.
type voteRequest struct {
	Vote *int `json:"vote" validate:"required"`
}

type questionResponse struct {
	ID             string               `json:"id"`
	Content        string               `json:"content"`
	AcceptedAnswer string               `json:"accepted_answer,omitempty"`
	CreatedAt      time.Time            `json:"created_at"`
	User           *userSummaryResponse `json:"user"`
	Upvotes        int64                `json:"upvotes"`
	Downvotes      int64                `json:"downvotes"`
	ViewerVote     *bool                `json:"viewer_vote"`
	AnswersCount   int64                `json:"answers_count"`
}

type answerResponse struct {
	ID         string               `json:"id"`
	QuestionID string               `json:"question_id"`
	Content    string               `json:"content"`
	CreatedAt  time.Time            `json:"created_at"`
	User       *userSummaryResponse `json:"user"`
	Upvotes    int64                `json:"upvotes"`
	Downvotes  int64                `json:"downvotes"`
	ViewerVote *bool                `json:"viewer_vote"`
}

type questionListResponse struct {
	Data []questionResponse `json:"data"`
	Meta domain.PageMeta    `json:"meta"`
}

type answerListResponse struct {
	Data []answerResponse `json:"data"`
	Meta domain.PageMeta  `json:"meta"`
}

type reportQuestionRequest struct {
	QuestionID string `json:"question_id" validate:"required"`
}

type reportAnswerRequest struct {
	AnswerID string `json:"answer_id" validate:"required"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func toQuestionResponse(v *ports.QuestionView) questionResponse {
	return questionResponse{
		ID:             v.Question.ID,
		Content:        v.Question.Content,
		AcceptedAnswer: v.Question.AcceptedAnswer,
		CreatedAt:      v.Question.CreatedAt,
		User:           toUserSummary(v.Author),
		Upvotes:        v.Votes.Upvotes,
		Downvotes:      v.Votes.Downvotes,
		ViewerVote:     v.Votes.ViewerVote,
		AnswersCount:   v.AnswersCount,
	}
}

func toAnswerResponse(v *ports.AnswerView) answerResponse {
	return answerResponse{
		ID:         v.Answer.ID,
		QuestionID: v.Answer.QuestionID,
		Content:    v.Answer.Content,
		CreatedAt:  v.Answer.CreatedAt,
		User:       toUserSummary(v.Author),
		Upvotes:    v.Votes.Upvotes,
		Downvotes:  v.Votes.Downvotes,
		ViewerVote: v.Votes.ViewerVote,
	}
}

func toQuestionList(page *ports.QuestionPage) questionListResponse {
	data := make([]questionResponse, 0, len(page.Items))
	for i := range page.Items {
		data = append(data, toQuestionResponse(&page.Items[i]))
	}
	return questionListResponse{Data: data, Meta: page.Meta}
}

func toAnswerList(page *ports.AnswerPage) answerListResponse {
	data := make([]answerResponse, 0, len(page.Items))
	for i := range page.Items {
		data = append(data, toAnswerResponse(&page.Items[i]))
	}
	return answerListResponse{Data: data, Meta: page.Meta}
}
