package core

import (
	"time"

	"github.com/google/uuid"
)

type Channel string

const (
	ChannelEmail   Channel = "email"
	ChannelSMS     Channel = "sms"
	ChannelDesktop Channel = "desktop"
)

// Channels lists every delivery channel in planning order.
var Channels = []Channel{ChannelEmail, ChannelSMS, ChannelDesktop}

type NotificationStatus string

const (
	NotificationPending   NotificationStatus = "pending"
	NotificationSent      NotificationStatus = "sent"
	NotificationFailed    NotificationStatus = "failed"
	NotificationCancelled NotificationStatus = "cancelled"
)

// DefaultMaxRetries bounds delivery attempts for a single notification.
const DefaultMaxRetries = 3

// Notification is one scheduled reminder for a domain. The
// (DomainID, Channel, DaysBefore) tuple is unique, which is what keeps
// repeated planning sweeps from materializing duplicate reminders.
type Notification struct {
	ID       uuid.UUID `json:"id" db:"id"`
	DomainID uuid.UUID `json:"domain_id" db:"domain_id"`

	Channel    Channel            `json:"channel" db:"channel"`
	Status     NotificationStatus `json:"status" db:"status"`
	DaysBefore int                `json:"days_before_expiration" db:"days_before"`

	Subject   string `json:"subject" db:"subject"`
	Message   string `json:"message" db:"message"`
	Recipient string `json:"recipient" db:"recipient"`

	ScheduledAt time.Time  `json:"scheduled_at" db:"scheduled_at"`
	SentAt      *time.Time `json:"sent_at" db:"sent_at"`

	LastError  *string `json:"last_error" db:"last_error"`
	RetryCount int     `json:"retry_count" db:"retry_count"`
	MaxRetries int     `json:"max_retries" db:"max_retries"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// IsDue reports whether the notification should be picked up by the
// dispatch sweep: still pending and past its scheduled time.
func (n *Notification) IsDue(now time.Time) bool {
	return n.Status == NotificationPending && !now.Before(n.ScheduledAt)
}

// CanRetry reports whether a failed notification still has retry budget.
func (n *Notification) CanRetry() bool {
	return n.Status == NotificationFailed && n.RetryCount < n.MaxRetries
}
