package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/domainping/domainping/internal/core"
	"github.com/domainping/domainping/internal/scheduler"
	"github.com/domainping/domainping/internal/storage/postgres"
)

type DomainHandler struct {
	domains   *postgres.DomainRepo
	scheduler *scheduler.Scheduler
}

func NewDomainHandler(domains *postgres.DomainRepo, sched *scheduler.Scheduler) *DomainHandler {
	return &DomainHandler{domains: domains, scheduler: sched}
}

type CreateDomainRequest struct {
	Name                 string    `json:"name" binding:"required"`
	ExpirationDate       time.Time `json:"expiration_date" binding:"required"`
	Registrar            *string   `json:"registrar"`
	AutoRenew            bool      `json:"auto_renew"`
	RenewalCost          *float64  `json:"renewal_cost"`
	RenewalPeriodYears   int       `json:"renewal_period_years"`
	AdminEmail           *string   `json:"admin_email"`
	AdminPhone           *string   `json:"admin_phone"`
	EmailNotifications   *bool     `json:"email_notifications"`
	SMSNotifications     bool      `json:"sms_notifications"`
	DesktopNotifications *bool     `json:"desktop_notifications"`
	ReminderDays         []int     `json:"reminder_days"`
	Notes                *string   `json:"notes"`
	Tags                 []string  `json:"tags"`
}

type UpdateDomainRequest struct {
	Registrar            *string    `json:"registrar"`
	RegistrationDate     *time.Time `json:"registration_date"`
	ExpirationDate       *time.Time `json:"expiration_date"`
	AutoRenew            *bool      `json:"auto_renew"`
	RenewalCost          *float64   `json:"renewal_cost"`
	RenewalPeriodYears   *int       `json:"renewal_period_years"`
	AdminEmail           *string    `json:"admin_email"`
	AdminPhone           *string    `json:"admin_phone"`
	Active               *bool      `json:"active"`
	EmailNotifications   *bool      `json:"email_notifications"`
	SMSNotifications     *bool      `json:"sms_notifications"`
	DesktopNotifications *bool      `json:"desktop_notifications"`
	ReminderDays         []int      `json:"reminder_days"`
	Notes                *string    `json:"notes"`
	Tags                 []string   `json:"tags"`
}

// domainResponse decorates a domain with its derived status.
type domainResponse struct {
	*core.Domain
	Status   core.DomainStatus `json:"status"`
	DaysLeft *int              `json:"days_until_expiration"`
}

func toResponse(d *core.Domain) domainResponse {
	resp := domainResponse{Domain: d, Status: core.StatusOf(d, time.Now())}
	if days, ok := core.DaysUntilExpiration(d, time.Now()); ok {
		resp.DaysLeft = &days
	}
	return resp
}

func (h *DomainHandler) ListDomains(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	domains, err := h.domains.List(core.DomainFilter{
		Status: c.Query("status"),
		Search: c.Query("search"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list domains"})
		return
	}

	responses := make([]domainResponse, 0, len(domains))
	for _, d := range domains {
		responses = append(responses, toResponse(d))
	}
	c.JSON(http.StatusOK, gin.H{"domains": responses, "count": len(responses)})
}

func (h *DomainHandler) CreateDomain(c *gin.Context) {
	var req CreateDomainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	now := time.Now()
	domain := &core.Domain{
		ID:                   uuid.New(),
		Name:                 core.NormalizeName(req.Name),
		Registrar:            req.Registrar,
		ExpirationDate:       req.ExpirationDate,
		AutoRenew:            req.AutoRenew,
		RenewalCost:          req.RenewalCost,
		RenewalPeriodYears:   req.RenewalPeriodYears,
		AdminEmail:           req.AdminEmail,
		AdminPhone:           req.AdminPhone,
		Active:               true,
		EmailNotifications:   true,
		SMSNotifications:     req.SMSNotifications,
		DesktopNotifications: true,
		ReminderDays:         req.ReminderDays,
		Notes:                req.Notes,
		Tags:                 req.Tags,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if domain.RenewalPeriodYears <= 0 {
		domain.RenewalPeriodYears = 1
	}
	if req.EmailNotifications != nil {
		domain.EmailNotifications = *req.EmailNotifications
	}
	if req.DesktopNotifications != nil {
		domain.DesktopNotifications = *req.DesktopNotifications
	}

	if err := h.domains.Create(domain); err != nil {
		if errors.Is(err, core.ErrDuplicateDomain) {
			c.JSON(http.StatusConflict, gin.H{"error": "Domain already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create domain"})
		return
	}

	// Pull WHOIS data and plan reminders off the request path.
	// RefreshDomain mutates its argument, so the goroutine gets its own
	// copy while the response marshals the original.
	cp := *domain
	go h.scheduler.RefreshDomain(context.Background(), &cp)

	c.JSON(http.StatusCreated, toResponse(domain))
}

func (h *DomainHandler) GetDomain(c *gin.Context) {
	domain, ok := h.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, toResponse(domain))
}

func (h *DomainHandler) UpdateDomain(c *gin.Context) {
	domain, ok := h.lookup(c)
	if !ok {
		return
	}

	var req UpdateDomainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	update := core.DomainUpdate{
		Registrar:            req.Registrar,
		RegistrationDate:     req.RegistrationDate,
		ExpirationDate:       req.ExpirationDate,
		AutoRenew:            req.AutoRenew,
		RenewalCost:          req.RenewalCost,
		RenewalPeriodYears:   req.RenewalPeriodYears,
		AdminEmail:           req.AdminEmail,
		AdminPhone:           req.AdminPhone,
		Active:               req.Active,
		EmailNotifications:   req.EmailNotifications,
		SMSNotifications:     req.SMSNotifications,
		DesktopNotifications: req.DesktopNotifications,
		ReminderDays:         req.ReminderDays,
		Notes:                req.Notes,
		Tags:                 req.Tags,
	}

	if err := h.domains.Update(domain.ID, update); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update domain"})
		return
	}

	updated, err := h.domains.GetByID(domain.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load domain"})
		return
	}
	c.JSON(http.StatusOK, toResponse(updated))
}

func (h *DomainHandler) DeleteDomain(c *gin.Context) {
	domain, ok := h.lookup(c)
	if !ok {
		return
	}

	if err := h.domains.Delete(domain.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete domain"})
		return
	}
	c.Status(http.StatusNoContent)
}

// TriggerRefresh runs a synchronous WHOIS refresh for one domain.
func (h *DomainHandler) TriggerRefresh(c *gin.Context) {
	domain, ok := h.lookup(c)
	if !ok {
		return
	}

	h.scheduler.RefreshDomain(c.Request.Context(), domain)

	refreshed, err := h.domains.GetByID(domain.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load domain"})
		return
	}
	c.JSON(http.StatusOK, toResponse(refreshed))
}

func (h *DomainHandler) ListExpiring(c *gin.Context) {
	within, err := strconv.Atoi(c.DefaultQuery("within_days", "30"))
	if err != nil || within < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "within_days must be a non-negative integer"})
		return
	}

	domains, err := h.domains.ListExpiring(within)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list expiring domains"})
		return
	}

	responses := make([]domainResponse, 0, len(domains))
	for _, d := range domains {
		responses = append(responses, toResponse(d))
	}
	c.JSON(http.StatusOK, gin.H{"domains": responses, "count": len(responses)})
}

func (h *DomainHandler) lookup(c *gin.Context) (*core.Domain, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid domain id"})
		return nil, false
	}

	domain, err := h.domains.GetByID(id)
	if errors.Is(err, core.ErrDomainNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Domain not found"})
		return nil, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load domain"})
		return nil, false
	}
	return domain, true
}
