package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNotificationIsDue(t *testing.T) {
	now := time.Now()

	n := &Notification{Status: NotificationPending, ScheduledAt: now.Add(-time.Minute)}
	assert.True(t, n.IsDue(now))

	n.ScheduledAt = now
	assert.True(t, n.IsDue(now))

	n.ScheduledAt = now.Add(time.Minute)
	assert.False(t, n.IsDue(now))

	n.ScheduledAt = now.Add(-time.Minute)
	n.Status = NotificationSent
	assert.False(t, n.IsDue(now))
}

func TestNotificationCanRetry(t *testing.T) {
	n := &Notification{Status: NotificationFailed, RetryCount: 2, MaxRetries: 3}
	assert.True(t, n.CanRetry())

	// At the ceiling the notification parks as failed for good.
	n.RetryCount = 3
	assert.False(t, n.CanRetry())

	n.RetryCount = 1
	n.Status = NotificationCancelled
	assert.False(t, n.CanRetry())
}
