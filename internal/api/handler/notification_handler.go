package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sal22/qanda-api/internal/core/domain"
	"github.com/sal22/qanda-api/internal/core/ports"
)

type NotificationHandler struct {
	notificationService ports.NotificationService
}

func NewNotificationHandler(notifications ports.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notifications}
}

// List returns the caller's notifications newest first with the unread count.
//
// @Summary      List notifications
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Param        page  query     int  false  "Page number (1-indexed)"
// @Success      200   {object}  notificationListResponse
// @Failure      401   {object}  map[string]string
// @Router       /api/notifications [get]
func (h *NotificationHandler) List(c echo.Context) error {
	p, err := actor(c)
	if err != nil {
		return err
	}
	page, err := h.notificationService.ListFor(c.Request().Context(), p, pageParam(c))
	if err != nil {
		return err
	}
	items := page.Items
	if items == nil {
		items = []*domain.Notification{}
	}
	return c.JSON(http.StatusOK, notificationListResponse{
		Data:        items,
		UnreadCount: page.UnreadCount,
		Meta:        page.Meta,
	})
}

// MarkRead flags one of the caller's notifications as read.
//
// @Summary      Mark notification read
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Notification ID"
// @Success      200  {object}  domain.Notification
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/notifications/{id}/read [post]
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	p, err := actor(c)
	if err != nil {
		return err
	}
	n, err := h.notificationService.MarkRead(c.Request().Context(), p, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, n)
}
