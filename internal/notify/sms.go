package notify

import (
	"fmt"

	"github.com/twilio/twilio-go"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/domainping/domainping/internal/config"
)

// SMSSender delivers reminders through the Twilio messaging API.
type SMSSender struct {
	cfg    config.TwilioConfig
	client *twilio.RestClient
}

func NewSMSSender(cfg config.TwilioConfig) *SMSSender {
	var client *twilio.RestClient
	if cfg.AccountSID != "" && cfg.AuthToken != "" {
		client = twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: cfg.AccountSID,
			Password: cfg.AuthToken,
		})
	}
	return &SMSSender{cfg: cfg, client: client}
}

func (s *SMSSender) Send(recipient, _ string, body string) error {
	if s.client == nil {
		return fmt.Errorf("twilio credentials are not configured")
	}
	if recipient == "" {
		return fmt.Errorf("no recipient phone number")
	}

	params := &twilioapi.CreateMessageParams{}
	params.SetTo(recipient)
	params.SetFrom(s.cfg.FromNumber)
	params.SetBody(body)

	if _, err := s.client.Api.CreateMessage(params); err != nil {
		return fmt.Errorf("twilio send failed: %w", err)
	}
	return nil
}
