package notify

import (
	"fmt"

	"github.com/gen2brain/beeep"

	"github.com/domainping/domainping/internal/config"
)

// DesktopSender raises a local desktop notification. The recipient is a
// sentinel; delivery targets whatever desktop session the process owns.
type DesktopSender struct {
	cfg config.DesktopConfig
}

func NewDesktopSender(cfg config.DesktopConfig) *DesktopSender {
	return &DesktopSender{cfg: cfg}
}

func (s *DesktopSender) Send(_ string, subject, body string) error {
	if !s.cfg.Enabled {
		return fmt.Errorf("desktop notifications are disabled")
	}

	if err := beeep.Notify(subject, body, ""); err != nil {
		return fmt.Errorf("desktop notification failed: %w", err)
	}
	return nil
}
