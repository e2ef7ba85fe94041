package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sal22/qanda-api/internal/core/ports"
)

type ReportHandler struct {
	reportService ports.ReportService
}

func NewReportHandler(reports ports.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reports}
}

// ReportQuestion mails the administrator about an abusive question.
//
// @Summary      Report a question
// @Tags         reports
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      reportQuestionRequest  true  "Reported question"
// @Success      200   {object}  messageResponse
// @Failure      404   {object}  map[string]string
// @Failure      503   {object}  map[string]string
// @Router       /api/report/question [post]
func (h *ReportHandler) ReportQuestion(c echo.Context) error {
	p, err := actor(c)
	if err != nil {
		return err
	}
	var req reportQuestionRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if err := h.reportService.ReportQuestion(c.Request().Context(), p, req.QuestionID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "report sent"})
}

// ReportAnswer mails the administrator about an abusive answer.
//
// @Summary      Report an answer
// @Tags         reports
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      reportAnswerRequest  true  "Reported answer"
// @Success      200   {object}  messageResponse
// @Failure      404   {object}  map[string]string
// @Failure      503   {object}  map[string]string
// @Router       /api/report/answer [post]
func (h *ReportHandler) ReportAnswer(c echo.Context) error {
	p, err := actor(c)
	if err != nil {
		return err
	}
	var req reportAnswerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if err := h.reportService.ReportAnswer(c.Request().Context(), p, req.AnswerID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "report sent"})
}
