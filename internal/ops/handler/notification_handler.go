package handler

import (
	"math"

	"github.com/akzente/fieldops/internal/ops/service"
	"github.com/gin-gonic/gin"
)

// NotificationHandler exposes the caller's in-app notification feed.
type NotificationHandler struct {
	notifySvc *service.NotifyService
}

func NewNotificationHandler(notifySvc *service.NotifyService) *NotificationHandler {
	return &NotificationHandler{notifySvc: notifySvc}
}

// List returns the caller's notifications, newest first, with the unread
// count alongside.
func (h *NotificationHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	userID := GetUserID(c)

	items, total, err := h.notifySvc.Notifications(c.Request.Context(), userID, page, pageSize)
	if err != nil {
		InternalError(c, err.Error())
		return
	}

	unread, err := h.notifySvc.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		InternalError(c, err.Error())
		return
	}

	Success(c, gin.H{
		"items":  items,
		"unread": unread,
		"pagination": Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      int(total),
			TotalPages: int(math.Ceil(float64(total) / float64(pageSize))),
		},
	})
}

// MarkRead marks one of the caller's notifications as read.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	if err := h.notifySvc.MarkRead(c.Request.Context(), c.Param("id"), GetUserID(c)); err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, nil)
}
