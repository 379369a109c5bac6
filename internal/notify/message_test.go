package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/domainping/domainping/internal/core"
)

func TestRenderEmail(t *testing.T) {
	registrar := "Example Registrar"
	cost := 12.99
	d := &core.Domain{
		Name:           "example.com",
		Registrar:      &registrar,
		RenewalCost:    &cost,
		ExpirationDate: time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
	}

	content, err := Render(core.ChannelEmail, d, 30)
	require.NoError(t, err)

	assert.Equal(t, "Domain renewal alert: example.com expires in 30 day(s)", content.Subject)
	assert.Contains(t, content.Body, "March 15, 2026")
	assert.Contains(t, content.Body, "Example Registrar")
	assert.Contains(t, content.Body, "$12.99")
	assert.NotContains(t, content.Body, "CRITICAL")
}

func TestRenderEmailUrgency(t *testing.T) {
	d := &core.Domain{Name: "example.com", ExpirationDate: time.Now().AddDate(0, 0, 3)}

	content, err := Render(core.ChannelEmail, d, 3)
	require.NoError(t, err)
	assert.Contains(t, content.Body, "CRITICAL")

	content, err = Render(core.ChannelEmail, d, 0)
	require.NoError(t, err)
	assert.Contains(t, content.Body, "EXPIRED")
}

func TestRenderSMSIsShort(t *testing.T) {
	d := &core.Domain{
		Name:           "example.com",
		ExpirationDate: time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
	}

	content, err := Render(core.ChannelSMS, d, 7)
	require.NoError(t, err)
	assert.Contains(t, content.Body, "example.com")
	assert.Contains(t, content.Body, "03/15/2026")
	assert.Less(t, len(content.Body), 160, "SMS body must fit a single segment")
}

func TestRenderUnknownChannel(t *testing.T) {
	_, err := Render(core.Channel("pigeon"), &core.Domain{Name: "example.com"}, 7)
	require.Error(t, err)
}
