// Package notify holds the delivery channels for renewal reminders.
// Every channel reduces to a single Send capability; the dispatcher
// treats any returned error as a delivery failure.
package notify

import (
	"github.com/domainping/domainping/internal/config"
	"github.com/domainping/domainping/internal/core"
)

type Sender interface {
	Send(recipient, subject, body string) error
}

// NewSenders builds one sender per channel from the notification config.
// Misconfigured channels still get a sender; it fails at send time and
// the failure goes through normal retry accounting.
func NewSenders(cfg config.NotificationsConfig) map[core.Channel]Sender {
	return map[core.Channel]Sender{
		core.ChannelEmail:   NewEmailSender(cfg.SMTP),
		core.ChannelSMS:     NewSMSSender(cfg.Twilio),
		core.ChannelDesktop: NewDesktopSender(cfg.Desktop),
	}
}
