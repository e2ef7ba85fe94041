package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sal22/qanda-api/internal/core/domain"
	"github.com/sal22/qanda-api/internal/core/ports"
)

type QuestionHandler struct {
	questionService ports.QuestionService
	answerService   ports.AnswerService
	voteService     ports.VoteService
}

func NewQuestionHandler(questions ports.QuestionService, answers ports.AnswerService, votes ports.VoteService) *QuestionHandler {
	return &QuestionHandler{
		questionService: questions,
		answerService:   answers,
		voteService:     votes,
	}
}

// List returns questions newest first, optionally filtered by a search term.
//
// @Summary      List questions
// @Tags         questions
// @Produce      json
// @Param        page    query     int     false  "Page number (1-indexed)"
// @Param        search  query     string  false  "Case-insensitive substring of the content"
// @Success      200     {object}  questionListResponse
// @Router       /api/questions [get]
func (h *QuestionHandler) List(c echo.Context) error {
	page, err := h.questionService.List(c.Request().Context(), ports.ListQuestionsInput{
		Search: c.QueryParam("search"),
		Page:   pageParam(c),
		Viewer: viewer(c),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toQuestionList(page))
}

// Get returns a single question.
//
// @Summary      Get question
// @Tags         questions
// @Produce      json
// @Param        id   path      string  true  "Question ID"
// @Success      200  {object}  questionResponse
// @Failure      404  {object}  map[string]string
// @Router       /api/questions/{id} [get]
func (h *QuestionHandler) Get(c echo.Context) error {
	v, err := h.questionService.Get(c.Request().Context(), c.Param("id"), viewer(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toQuestionResponse(v))
}

// Create posts a new question.
//
// @Summary      Ask a question
// @Tags         questions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createQuestionRequest  true  "Question"
// @Success      201   {object}  questionResponse
// @Failure      401   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /api/questions [post]
func (h *QuestionHandler) Create(c echo.Context) error {
	p, err := actor(c)
	if err != nil {
		return err
	}
	var req createQuestionRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	v, err := h.questionService.Create(c.Request().Context(), p, req.Content)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toQuestionResponse(v))
}

// Update edits the content or accepted answer of the caller's question.
//
// @Summary      Update question
// @Tags         questions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                 true  "Question ID"
// @Param        body  body      updateQuestionRequest  true  "Fields to change"
// @Success      200   {object}  questionResponse
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /api/questions/{id} [patch]
func (h *QuestionHandler) Update(c echo.Context) error {
	p, err := actor(c)
	if err != nil {
		return err
	}
	var req updateQuestionRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	v, err := h.questionService.Update(c.Request().Context(), p, c.Param("id"), domain.QuestionPatch{
		Content:        req.Content,
		AcceptedAnswer: req.AcceptedAnswer,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toQuestionResponse(v))
}

// Delete removes a question with its answers and votes.
//
// @Summary      Delete question
// @Tags         questions
// @Security     BearerAuth
// @Param        id   path  string  true  "Question ID"
// @Success      204
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/questions/{id} [delete]
func (h *QuestionHandler) Delete(c echo.Context) error {
	p, err := actor(c)
	if err != nil {
		return err
	}
	if err := h.questionService.Delete(c.Request().Context(), p, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ListAnswers pages through a question's answers.
//
// @Summary      Answers of a question
// @Tags         questions
// @Produce      json
// @Param        id    path      string  true   "Question ID"
// @Param        page  query     int     false  "Page number (1-indexed)"
// @Success      200   {object}  answerListResponse
// @Failure      404   {object}  map[string]string
// @Router       /api/questions/{id}/answers [get]
func (h *QuestionHandler) ListAnswers(c echo.Context) error {
	page, err := h.answerService.ListForQuestion(c.Request().Context(), c.Param("id"), pageParam(c), viewer(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAnswerList(page))
}

// Vote casts the caller's vote on a question.
//
// @Summary      Vote on a question
// @Tags         votes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string       true  "Question ID"
// @Param        body  body      voteRequest  true  "0 remove, 1 up, 2 down"
// @Success      200   {object}  domain.VoteTally
// @Failure      404   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /api/questions/{id}/vote [post]
func (h *QuestionHandler) Vote(c echo.Context) error {
	return castVote(c, h.voteService, domain.KindQuestion)
}

// castVote is shared by the question and answer vote routes.
func castVote(c echo.Context, votes ports.VoteService, kind domain.ItemKind) error {
	p, err := actor(c)
	if err != nil {
		return err
	}
	var req voteRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	value, err := domain.ParseVote(*req.Vote)
	if err != nil {
		return err
	}
	tally, err := votes.Cast(c.Request().Context(), p, kind, c.Param("id"), value)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tally)
}
