package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sal22/qanda-api/internal/core/domain"
	"github.com/sal22/qanda-api/internal/core/ports"
)

type AnswerHandler struct {
	answerService ports.AnswerService
	voteService   ports.VoteService
}

func NewAnswerHandler(answers ports.AnswerService, votes ports.VoteService) *AnswerHandler {
	return &AnswerHandler{answerService: answers, voteService: votes}
}

// Get returns a single answer.
//
// @Summary      Get answer
// @Tags         answers
// @Produce      json
// @Param        id   path      string  true  "Answer ID"
// @Success      200  {object}  answerResponse
// @Failure      404  {object}  map[string]string
// @Router       /api/answers/{id} [get]
func (h *AnswerHandler) Get(c echo.Context) error {
	v, err := h.answerService.Get(c.Request().Context(), c.Param("id"), viewer(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAnswerResponse(v))
}

// Create posts an answer and notifies the question owner.
//
// @Summary      Answer a question
// @Tags         answers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createAnswerRequest  true  "Answer"
// @Success      201   {object}  answerResponse
// @Failure      401   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /api/answers [post]
func (h *AnswerHandler) Create(c echo.Context) error {
	p, err := actor(c)
	if err != nil {
		return err
	}
	var req createAnswerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	v, err := h.answerService.Create(c.Request().Context(), p, req.QuestionID, req.Content)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toAnswerResponse(v))
}

// Update edits the caller's answer.
//
// @Summary      Update answer
// @Tags         answers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string               true  "Answer ID"
// @Param        body  body      updateAnswerRequest  true  "Fields to change"
// @Success      200   {object}  answerResponse
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/answers/{id} [patch]
func (h *AnswerHandler) Update(c echo.Context) error {
	p, err := actor(c)
	if err != nil {
		return err
	}
	var req updateAnswerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	v, err := h.answerService.Update(c.Request().Context(), p, c.Param("id"), domain.AnswerPatch{Content: req.Content})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAnswerResponse(v))
}

// Delete removes an answer and its votes.
//
// @Summary      Delete answer
// @Tags         answers
// @Security     BearerAuth
// @Param        id   path  string  true  "Answer ID"
// @Success      204
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/answers/{id} [delete]
func (h *AnswerHandler) Delete(c echo.Context) error {
	p, err := actor(c)
	if err != nil {
		return err
	}
	if err := h.answerService.Delete(c.Request().Context(), p, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Vote casts the caller's vote on an answer.
//
// @Summary      Vote on an answer
// @Tags         votes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string       true  "Answer ID"
// @Param        body  body      voteRequest  true  "0 remove, 1 up, 2 down"
// @Success      200   {object}  domain.VoteTally
// @Failure      404   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /api/answers/{id}/vote [post]
func (h *AnswerHandler) Vote(c echo.Context) error {
	return castVote(c, h.voteService, domain.KindAnswer)
}
