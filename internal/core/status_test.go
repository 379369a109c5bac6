package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func domainExpiringIn(days int) *Domain {
	return &Domain{
		Name:           "example.com",
		Active:         true,
		ExpirationDate: time.Now().AddDate(0, 0, days).Add(time.Hour),
	}
}

func TestStatusOf(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name   string
		domain *Domain
		want   DomainStatus
	}{
		{"far from expiration", domainExpiringIn(365), StatusActive},
		{"just above warning boundary", domainExpiringIn(31), StatusActive},
		{"exactly 30 days is warning", domainExpiringIn(30), StatusWarning},
		{"between thresholds", domainExpiringIn(14), StatusWarning},
		{"just above critical boundary", domainExpiringIn(8), StatusWarning},
		{"exactly 7 days is critical", domainExpiringIn(7), StatusCritical},
		{"one day left", domainExpiringIn(1), StatusCritical},
		{"already expired", domainExpiringIn(-1), StatusExpired},
		{"no expiration date", &Domain{Name: "example.com", Active: true}, StatusUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusOf(tt.domain, now))
		})
	}
}

func TestStatusOfInactiveWins(t *testing.T) {
	// Inactive overrides even an expired date.
	d := domainExpiringIn(-30)
	d.Active = false
	assert.Equal(t, StatusInactive, StatusOf(d, time.Now()))

	d = domainExpiringIn(3)
	d.Active = false
	assert.Equal(t, StatusInactive, StatusOf(d, time.Now()))
}

func TestDaysUntilExpiration(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	d := &Domain{ExpirationDate: now.AddDate(0, 0, 10)}
	days, ok := DaysUntilExpiration(d, now)
	require.True(t, ok)
	assert.Equal(t, 10, days)

	// Partial days truncate toward zero: 9 days 23 hours left is 9 days.
	d = &Domain{ExpirationDate: now.Add(9*24*time.Hour + 23*time.Hour)}
	days, ok = DaysUntilExpiration(d, now)
	require.True(t, ok)
	assert.Equal(t, 9, days)

	_, ok = DaysUntilExpiration(&Domain{}, now)
	assert.False(t, ok)
}

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Example.COM", "example.com"},
		{"https://example.com", "example.com"},
		{"http://example.com/path/to/page", "example.com"},
		{"  example.com  ", "example.com"},
		{"example.com/", "example.com"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeName(tt.in), "input %q", tt.in)
	}
}

func TestEffectiveReminderDays(t *testing.T) {
	defaults := []int{90, 30, 14, 7, 3, 1}

	d := &Domain{}
	assert.Equal(t, defaults, d.EffectiveReminderDays(defaults))

	d = &Domain{ReminderDays: []int{60, 10}}
	assert.Equal(t, []int{60, 10}, d.EffectiveReminderDays(defaults))
}
