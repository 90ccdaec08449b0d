package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ronsuru/VeriFund-version2-sub003/internal/logic"
)

type NotificationHandler struct {
	notificationLogic *logic.NotificationLogic
}

func NewNotificationHandler(db *gorm.DB) *NotificationHandler {
	return &NotificationHandler{
		notificationLogic: logic.NewNotificationLogic(db),
	}
}

// GetNotifications 当前用户的通知，unread=true 时只返回未读
func (h *NotificationHandler) GetNotifications(c *gin.Context) {
	userId, ok := currentUser(c)
	if !ok {
		return
	}
	page, pageSize := pageParams(c)
	unreadOnly := c.Query("unread") == "true"

	notifications, total, err := h.notificationLogic.ListForUser(c.Request.Context(), userId, unreadOnly, page, pageSize)
	if err != nil {
		HandleError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "OK", NotificationListResponse{
		Notifications: notifications,
		Pagination:    newPagination(page, pageSize, total),
	})
}

// MarkRead 标记通知已读
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userId, id, ok := actorAndTarget(c)
	if !ok {
		return
	}
	if err := h.notificationLogic.MarkRead(c.Request.Context(), userId, id); err != nil {
		HandleError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Notification marked as read", nil)
}
