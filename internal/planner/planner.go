// Package planner materializes due renewal reminders as persisted
// notifications. It is invoked after every domain refresh, so a domain
// whose expiration moved gets its reminder schedule re-evaluated on the
// next sweep.
package planner

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/domainping/domainping/internal/core"
	"github.com/domainping/domainping/internal/notify"
)

// NotificationStore is the slice of the notification repository the
// planner needs.
type NotificationStore interface {
	CreateIfAbsent(n *core.Notification) (bool, error)
}

type Planner struct {
	store       NotificationStore
	defaultDays []int
	logger      *zap.Logger
	now         func() time.Time
}

func New(store NotificationStore, defaultReminderDays []int, logger *zap.Logger) *Planner {
	return &Planner{
		store:       store,
		defaultDays: defaultReminderDays,
		logger:      logger,
		now:         time.Now,
	}
}

// Plan creates one pending notification per enabled channel for every
// reminder offset the domain has already crossed. A reminder whose
// scheduled time is in the past is still created as immediately due;
// scheduler downtime must not silently swallow reminders. Existing
// (domain, channel, offset) notifications are left alone.
//
// Returns the number of notifications actually created.
func (p *Planner) Plan(domain *core.Domain) (int, error) {
	if !domain.Active || domain.ExpirationDate.IsZero() {
		return 0, nil
	}

	now := p.now()
	created := 0

	for _, offset := range domain.EffectiveReminderDays(p.defaultDays) {
		scheduledAt := domain.ExpirationDate.AddDate(0, 0, -offset)
		if now.Before(scheduledAt) {
			continue
		}

		for _, channel := range core.Channels {
			if !domain.ChannelEnabled(channel) {
				continue
			}

			content, err := notify.Render(channel, domain, offset)
			if err != nil {
				return created, err
			}

			n := &core.Notification{
				ID:          uuid.New(),
				DomainID:    domain.ID,
				Channel:     channel,
				Status:      core.NotificationPending,
				DaysBefore:  offset,
				Subject:     content.Subject,
				Message:     content.Body,
				Recipient:   domain.Recipient(channel),
				ScheduledAt: scheduledAt,
				MaxRetries:  core.DefaultMaxRetries,
				CreatedAt:   now,
				UpdatedAt:   now,
			}

			inserted, err := p.store.CreateIfAbsent(n)
			if err != nil {
				return created, err
			}
			if inserted {
				created++
				p.logger.Info("scheduled reminder",
					zap.String("domain", domain.Name),
					zap.String("channel", string(channel)),
					zap.Int("days_before", offset),
					zap.Time("scheduled_at", scheduledAt),
				)
			}
		}
	}

	return created, nil
}
