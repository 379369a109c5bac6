package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/domainping/domainping/internal/storage/postgres"
)

type StatsHandler struct {
	domains       *postgres.DomainRepo
	notifications *postgres.NotificationRepo
}

func NewStatsHandler(domains *postgres.DomainRepo, notifications *postgres.NotificationRepo) *StatsHandler {
	return &StatsHandler{domains: domains, notifications: notifications}
}

func (h *StatsHandler) GetOverview(c *gin.Context) {
	stats, err := h.domains.Statistics()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute statistics"})
		return
	}

	counts, err := h.notifications.CountByStatus()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count notifications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"domains":       stats,
		"notifications": counts,
	})
}
