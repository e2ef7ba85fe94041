package handler

import "github.com/sal22/qanda-api/internal/core/domain"

type notificationListResponse struct {
	Data        []*domain.Notification `json:"data"`
	UnreadCount int64                  `json:"unread_count"`
	Meta        domain.PageMeta        `json:"meta"`
}

type uploadResponse struct {
	Path string `json:"path"`
}
