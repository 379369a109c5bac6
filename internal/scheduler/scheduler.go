// Package scheduler owns the three recurring jobs of the service: the
// domain-refresh sweep, the notification-dispatch sweep and the daily
// summary. Jobs run on independent cron timers and are registered
// idempotently by id, so re-registering a job replaces its schedule
// instead of doubling it.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/domainping/domainping/internal/config"
	"github.com/domainping/domainping/internal/core"
	"github.com/domainping/domainping/internal/dispatch"
	"github.com/domainping/domainping/internal/metrics"
	"github.com/domainping/domainping/internal/whois"
)

const (
	JobRefresh  = "domain_refresh"
	JobDispatch = "notification_dispatch"
	JobSummary  = "daily_summary"
)

type DomainStore interface {
	ListNeedingCheck(olderThan time.Duration) ([]*core.Domain, error)
	ListExpiring(withinDays int) ([]*core.Domain, error)
	Update(id uuid.UUID, u core.DomainUpdate) error
	Statistics() (*core.DomainStatistics, error)
}

type NotificationCounter interface {
	CountByStatus() (map[core.NotificationStatus]int, error)
}

type Refresher interface {
	Refresh(ctx context.Context, domain *core.Domain) (core.DomainUpdate, error)
}

type Planner interface {
	Plan(domain *core.Domain) (int, error)
}

type Dispatcher interface {
	DispatchDueAndRetryable() dispatch.Result
}

type Scheduler struct {
	cron          *cron.Cron
	domains       DomainStore
	notifications NotificationCounter
	refresher     Refresher
	planner       Planner
	dispatcher    Dispatcher
	metrics       *metrics.Collector
	cfg           config.SchedulerConfig
	logger        *zap.Logger

	mu      sync.Mutex
	entries map[string]cron.EntryID

	ctx    context.Context
	cancel context.CancelFunc
}

func New(
	domains DomainStore,
	notifications NotificationCounter,
	refresher Refresher,
	planner Planner,
	dispatcher Dispatcher,
	collector *metrics.Collector,
	cfg config.SchedulerConfig,
	logger *zap.Logger,
) *Scheduler {
	return &Scheduler{
		cron:          cron.New(),
		domains:       domains,
		notifications: notifications,
		refresher:     refresher,
		planner:       planner,
		dispatcher:    dispatcher,
		metrics:       collector,
		cfg:           cfg,
		logger:        logger,
		entries:       make(map[string]cron.EntryID),
	}
}

// Start registers the three jobs and starts the cron loop. Registration
// failures are fatal; a service without its jobs is not running.
func (s *Scheduler) Start() error {
	s.ctx, s.cancel = context.WithCancel(context.Background())

	checkInterval := time.Duration(s.cfg.CheckIntervalHours) * time.Hour
	if err := s.register(JobRefresh, fmt.Sprintf("@every %s", checkInterval), s.runRefreshSweep); err != nil {
		return fmt.Errorf("register %s: %w", JobRefresh, err)
	}
	if err := s.register(JobDispatch, fmt.Sprintf("@every %s", s.cfg.DispatchInterval), s.runDispatchSweep); err != nil {
		return fmt.Errorf("register %s: %w", JobDispatch, err)
	}
	summarySpec := fmt.Sprintf("%d %d * * *", s.cfg.SummaryMinute, s.cfg.SummaryHour)
	if err := s.register(JobSummary, summarySpec, s.runDailySummary); err != nil {
		return fmt.Errorf("register %s: %w", JobSummary, err)
	}

	s.cron.Start()
	s.logger.Info("scheduler started",
		zap.Duration("check_interval", checkInterval),
		zap.Duration("dispatch_interval", s.cfg.DispatchInterval),
		zap.String("summary_at", fmt.Sprintf("%02d:%02d", s.cfg.SummaryHour, s.cfg.SummaryMinute)),
	)
	return nil
}

// register adds a job under a stable id, replacing any previous schedule
// for that id.
func (s *Scheduler) register(id, spec string, job func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.entries[id]; ok {
		s.cron.Remove(old)
	}
	entry, err := s.cron.AddFunc(spec, job)
	if err != nil {
		return err
	}
	s.entries[id] = entry
	return nil
}

// Stop halts the timers and waits for any in-flight sweep to finish or
// for the context to run out. Per-item writes are independently
// transactional, so abandoning a sweep mid-way loses no state.
func (s *Scheduler) Stop(ctx context.Context) {
	if s.cancel != nil {
		s.cancel()
	}
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.logger.Info("scheduler stopped")
	case <-ctx.Done():
		s.logger.Warn("scheduler stop timed out, abandoning in-flight sweep")
	}
}

func (s *Scheduler) runRefreshSweep()  { s.RefreshSweep(s.ctx) }
func (s *Scheduler) runDispatchSweep() { s.DispatchSweep() }
func (s *Scheduler) runDailySummary()  { s.DailySummary() }

// RefreshSweep refreshes WHOIS data for every domain whose last check is
// stale and re-plans its reminders. One domain's failure never stops the
// sweep.
func (s *Scheduler) RefreshSweep(ctx context.Context) {
	start := time.Now()
	defer func() { s.metrics.ObserveSweep(JobRefresh, time.Since(start)) }()

	olderThan := time.Duration(s.cfg.CheckIntervalHours) * time.Hour
	domains, err := s.domains.ListNeedingCheck(olderThan)
	if err != nil {
		s.logger.Error("failed to list domains needing check", zap.Error(err))
		return
	}
	s.logger.Info("refresh sweep started", zap.Int("domains", len(domains)))

	for _, domain := range domains {
		if ctx.Err() != nil {
			s.logger.Warn("refresh sweep cancelled", zap.Error(ctx.Err()))
			return
		}
		s.RefreshDomain(ctx, domain)
	}
	s.logger.Info("refresh sweep completed", zap.Duration("duration", time.Since(start)))
}

// RefreshDomain refreshes one domain and re-plans its reminders. The
// API's manual refresh trigger calls this directly. The domain is
// mutated in place with the refreshed field values; callers that keep
// reading their own copy concurrently must pass a private one.
func (s *Scheduler) RefreshDomain(ctx context.Context, domain *core.Domain) {
	started := time.Now()
	update, err := s.refresher.Refresh(ctx, domain)

	// The update is applied even when the lookup failed: it carries the
	// last_checked stamp that keeps broken domains from being retried
	// every sweep.
	if uerr := s.domains.Update(domain.ID, update); uerr != nil {
		s.logger.Error("failed to apply refresh update",
			zap.String("domain", domain.Name),
			zap.Error(uerr),
		)
	}

	result := "success"
	if err != nil {
		result = refreshResult(err)
		s.logger.Error("domain refresh failed",
			zap.String("domain", domain.Name),
			zap.String("classification", result),
			zap.Error(err),
		)
	}
	s.metrics.RecordRefresh(result, time.Since(started))

	// Plan against the freshest field values we have. A failed lookup
	// still plans from the stored expiration date.
	applyUpdate(domain, update)
	if _, perr := s.planner.Plan(domain); perr != nil {
		s.logger.Error("failed to plan reminders",
			zap.String("domain", domain.Name),
			zap.Error(perr),
		)
	}
}

// DispatchSweep sends every due and retryable notification.
func (s *Scheduler) DispatchSweep() {
	start := time.Now()
	result := s.dispatcher.DispatchDueAndRetryable()
	s.metrics.ObserveSweep(JobDispatch, time.Since(start))

	if counts, err := s.notifications.CountByStatus(); err == nil {
		s.metrics.SetNotificationCounts(counts)
	}

	s.logger.Info("dispatch sweep finished",
		zap.Int("sent", result.Sent),
		zap.Int("failed", result.Failed),
		zap.Int("skipped", result.Skipped),
	)
}

// DailySummary logs aggregate expiry statistics when anything needs
// attention and refreshes the status gauges.
func (s *Scheduler) DailySummary() {
	start := time.Now()
	defer func() { s.metrics.ObserveSweep(JobSummary, time.Since(start)) }()

	stats, err := s.domains.Statistics()
	if err != nil {
		s.logger.Error("failed to compute domain statistics", zap.Error(err))
		return
	}
	s.metrics.SetDomainStatistics(stats)

	expiring, err := s.domains.ListExpiring(core.WarningThresholdDays)
	if err != nil {
		s.logger.Error("failed to list expiring domains", zap.Error(err))
		return
	}

	if stats.Expired == 0 && stats.Critical == 0 && stats.Warning == 0 {
		return
	}

	names := make([]string, 0, len(expiring))
	for _, d := range expiring {
		names = append(names, d.Name)
	}
	s.logger.Info("daily domain summary",
		zap.Int("total", stats.Total),
		zap.Int("expired", stats.Expired),
		zap.Int("critical", stats.Critical),
		zap.Int("warning", stats.Warning),
		zap.Strings("expiring_soon", names),
	)
}

func refreshResult(err error) string {
	var rerr *whois.RefreshError
	if errors.As(err, &rerr) {
		return string(rerr.Kind)
	}
	return string(whois.FailureUnexpected)
}

func applyUpdate(d *core.Domain, u core.DomainUpdate) {
	if u.ExpirationDate != nil {
		d.ExpirationDate = *u.ExpirationDate
	}
	if u.Registrar != nil {
		d.Registrar = u.Registrar
	}
	if u.RegistrationDate != nil {
		d.RegistrationDate = u.RegistrationDate
	}
	if u.AdminEmail != nil {
		d.AdminEmail = u.AdminEmail
	}
	if u.Nameservers != nil {
		d.Nameservers = u.Nameservers
	}
	if u.LastChecked != nil {
		d.LastChecked = u.LastChecked
	}
	if u.WhoisLastUpdated != nil {
		d.WhoisLastUpdated = u.WhoisLastUpdated
	}
}
