package planner

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/domainping/domainping/internal/core"
)

type identity struct {
	domainID   uuid.UUID
	channel    core.Channel
	daysBefore int
}

// fakeStore mimics the repository's (domain, channel, days_before)
// uniqueness without a database.
type fakeStore struct {
	created []*core.Notification
	seen    map[identity]bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{seen: make(map[identity]bool)}
}

func (s *fakeStore) CreateIfAbsent(n *core.Notification) (bool, error) {
	key := identity{n.DomainID, n.Channel, n.DaysBefore}
	if s.seen[key] {
		return false, nil
	}
	s.seen[key] = true
	s.created = append(s.created, n)
	return true, nil
}

var defaultDays = []int{90, 30, 14, 7, 3, 1}

func newTestPlanner(store NotificationStore, now time.Time) *Planner {
	p := New(store, defaultDays, zap.NewNop())
	p.now = func() time.Time { return now }
	return p
}

func emailDomain(expiresIn time.Duration, now time.Time) *core.Domain {
	email := "admin@example.com"
	return &core.Domain{
		ID:                 uuid.New(),
		Name:               "example.com",
		Active:             true,
		ExpirationDate:     now.Add(expiresIn),
		AdminEmail:         &email,
		EmailNotifications: true,
	}
}

func TestPlanCreatesCrossedOffsets(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	store := newFakeStore()
	p := newTestPlanner(store, now)

	// 20 days out: the 90 and 30 day offsets are crossed, 14 and below
	// are still in the future.
	created, err := p.Plan(emailDomain(20*24*time.Hour, now))
	require.NoError(t, err)
	assert.Equal(t, 2, created)

	offsets := make([]int, 0, len(store.created))
	for _, n := range store.created {
		assert.Equal(t, core.NotificationPending, n.Status)
		assert.Equal(t, core.ChannelEmail, n.Channel)
		assert.Equal(t, "admin@example.com", n.Recipient)
		offsets = append(offsets, n.DaysBefore)
	}
	assert.ElementsMatch(t, []int{90, 30}, offsets)
}

func TestPlanIsIdempotent(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	store := newFakeStore()
	p := newTestPlanner(store, now)
	d := emailDomain(20*24*time.Hour, now)

	created, err := p.Plan(d)
	require.NoError(t, err)
	assert.Equal(t, 2, created)

	created, err = p.Plan(d)
	require.NoError(t, err)
	assert.Zero(t, created)
	assert.Len(t, store.created, 2)
}

func TestPlanPastDueRemindersStillCreated(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	store := newFakeStore()
	p := newTestPlanner(store, now)

	// Two days out: every offset has been crossed, including ones whose
	// scheduled time is long past.
	created, err := p.Plan(emailDomain(48*time.Hour, now))
	require.NoError(t, err)
	assert.Equal(t, 5, created)

	for _, n := range store.created {
		assert.True(t, n.IsDue(now), "offset %d should be due", n.DaysBefore)
	}
}

func TestPlanRespectsChannelToggles(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	store := newFakeStore()
	p := newTestPlanner(store, now)

	phone := "+15555550123"
	d := emailDomain(5*24*time.Hour, now)
	d.AdminPhone = &phone
	d.SMSNotifications = true
	d.DesktopNotifications = false

	created, err := p.Plan(d)
	require.NoError(t, err)
	// Offsets 90, 30, 14, 7 crossed, on two channels each.
	assert.Equal(t, 8, created)

	for _, n := range store.created {
		assert.NotEqual(t, core.ChannelDesktop, n.Channel)
	}
}

func TestPlanCustomReminderDays(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	store := newFakeStore()
	p := newTestPlanner(store, now)

	d := emailDomain(20*24*time.Hour, now)
	d.ReminderDays = []int{60, 21}

	created, err := p.Plan(d)
	require.NoError(t, err)
	assert.Equal(t, 2, created)

	offsets := []int{store.created[0].DaysBefore, store.created[1].DaysBefore}
	assert.ElementsMatch(t, []int{60, 21}, offsets)
}

func TestPlanSkipsInactiveAndUnknown(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	store := newFakeStore()
	p := newTestPlanner(store, now)

	inactive := emailDomain(5*24*time.Hour, now)
	inactive.Active = false
	created, err := p.Plan(inactive)
	require.NoError(t, err)
	assert.Zero(t, created)

	noExpiration := emailDomain(0, now)
	noExpiration.ExpirationDate = time.Time{}
	created, err = p.Plan(noExpiration)
	require.NoError(t, err)
	assert.Zero(t, created)
	assert.Empty(t, store.created)
}
