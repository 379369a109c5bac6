package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/domainping/domainping/internal/core"
	"github.com/domainping/domainping/internal/storage/postgres"
)

type NotificationHandler struct {
	notifications *postgres.NotificationRepo
}

func NewNotificationHandler(notifications *postgres.NotificationRepo) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

func (h *NotificationHandler) ListByDomain(c *gin.Context) {
	domainID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid domain id"})
		return
	}

	notifications, err := h.notifications.ListByDomain(domainID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list notifications"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": notifications, "count": len(notifications)})
}

// Cancel administratively cancels a pending or failed notification.
func (h *NotificationHandler) Cancel(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid notification id"})
		return
	}

	if err := h.notifications.Cancel(id); err != nil {
		if errors.Is(err, core.ErrNotificationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found or already terminal"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to cancel notification"})
		return
	}
	c.Status(http.StatusNoContent)
}
