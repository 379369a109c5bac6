// Package dispatch delivers due and retryable notifications through
// their channel senders and drives the notification state machine:
// pending -> sent | failed, failed -> sent | failed, with a bounded
// retry budget per notification.
package dispatch

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/domainping/domainping/internal/core"
	"github.com/domainping/domainping/internal/metrics"
	"github.com/domainping/domainping/internal/notify"
)

type NotificationStore interface {
	ListDue(now time.Time) ([]*core.Notification, error)
	ListRetryable() ([]*core.Notification, error)
	MarkSent(id uuid.UUID, at time.Time) error
	MarkFailed(id uuid.UUID, reason string) error
	MarkFailedTerminal(id uuid.UUID, reason string) error
}

type DomainStore interface {
	GetByID(id uuid.UUID) (*core.Domain, error)
}

// Result counts the outcomes of one dispatch sweep. Skipped
// notifications were left untouched and stay eligible for the next
// sweep.
type Result struct {
	Sent    int
	Failed  int
	Skipped int
}

type outcome int

const (
	outcomeSent outcome = iota
	outcomeFailed
	outcomeSkipped
)

type Dispatcher struct {
	notifications NotificationStore
	domains       DomainStore
	senders       map[core.Channel]notify.Sender
	metrics       *metrics.Collector
	logger        *zap.Logger
	now           func() time.Time
}

func New(
	notifications NotificationStore,
	domains DomainStore,
	senders map[core.Channel]notify.Sender,
	collector *metrics.Collector,
	logger *zap.Logger,
) *Dispatcher {
	return &Dispatcher{
		notifications: notifications,
		domains:       domains,
		senders:       senders,
		metrics:       collector,
		logger:        logger,
		now:           time.Now,
	}
}

// DispatchDueAndRetryable processes every due pending notification and
// every failed one with remaining retry budget. Failures are isolated
// per notification; a broken sender or row never aborts the sweep.
func (d *Dispatcher) DispatchDueAndRetryable() Result {
	var result Result
	now := d.now()

	due, err := d.notifications.ListDue(now)
	if err != nil {
		d.logger.Error("failed to list due notifications", zap.Error(err))
	}
	retryable, err := d.notifications.ListRetryable()
	if err != nil {
		d.logger.Error("failed to list retryable notifications", zap.Error(err))
	}

	for _, n := range append(due, retryable...) {
		switch d.dispatchOne(n, now) {
		case outcomeSent:
			result.Sent++
		case outcomeFailed:
			result.Failed++
		case outcomeSkipped:
			result.Skipped++
		}
	}

	d.logger.Info("dispatch sweep completed",
		zap.Int("sent", result.Sent),
		zap.Int("failed", result.Failed),
		zap.Int("skipped", result.Skipped),
	)
	return result
}

func (d *Dispatcher) dispatchOne(n *core.Notification, now time.Time) outcome {
	domain, err := d.domains.GetByID(n.DomainID)
	if err != nil {
		if errors.Is(err, core.ErrDomainNotFound) {
			// Data-integrity failure; retrying cannot bring the row back.
			d.fail(n, "Domain not found", true)
			return outcomeFailed
		}
		// Transient store failure: leave the notification untouched so a
		// flaky database does not burn its retry budget.
		d.logger.Warn("domain lookup failed, skipping notification this sweep",
			zap.String("notification_id", n.ID.String()),
			zap.Error(err),
		)
		return outcomeSkipped
	}

	sender, ok := d.senders[n.Channel]
	if !ok {
		d.fail(n, "no sender for channel "+string(n.Channel), false)
		return outcomeFailed
	}

	if err := sender.Send(n.Recipient, n.Subject, n.Message); err != nil {
		d.logger.Warn("notification delivery failed",
			zap.String("notification_id", n.ID.String()),
			zap.String("domain", domain.Name),
			zap.String("channel", string(n.Channel)),
			zap.Int("retry_count", n.RetryCount),
			zap.Error(err),
		)
		d.fail(n, err.Error(), false)
		return outcomeFailed
	}

	if err := d.notifications.MarkSent(n.ID, now); err != nil {
		d.logger.Error("failed to record sent notification",
			zap.String("notification_id", n.ID.String()),
			zap.Error(err),
		)
	}
	d.metrics.RecordNotification(n.Channel, true)
	d.logger.Info("notification sent",
		zap.String("domain", domain.Name),
		zap.String("channel", string(n.Channel)),
		zap.Int("days_before", n.DaysBefore),
	)
	return outcomeSent
}

func (d *Dispatcher) fail(n *core.Notification, reason string, terminal bool) {
	var err error
	if terminal {
		err = d.notifications.MarkFailedTerminal(n.ID, reason)
	} else {
		err = d.notifications.MarkFailed(n.ID, reason)
	}
	if err != nil {
		d.logger.Error("failed to record notification failure",
			zap.String("notification_id", n.ID.String()),
			zap.Error(err),
		)
	}
	d.metrics.RecordNotification(n.Channel, false)
}
