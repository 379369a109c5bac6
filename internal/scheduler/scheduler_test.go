package scheduler

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/domainping/domainping/internal/config"
	"github.com/domainping/domainping/internal/core"
	"github.com/domainping/domainping/internal/dispatch"
	"github.com/domainping/domainping/internal/metrics"
	"github.com/domainping/domainping/internal/whois"
)

// Prometheus collectors register globally, so the package shares one.
var testCollector = metrics.NewCollector()

type fakeDomainStore struct {
	needingCheck []*core.Domain
	expiring     []*core.Domain
	stats        *core.DomainStatistics

	updates map[uuid.UUID]core.DomainUpdate
}

func newFakeDomainStore() *fakeDomainStore {
	return &fakeDomainStore{
		stats:   &core.DomainStatistics{},
		updates: make(map[uuid.UUID]core.DomainUpdate),
	}
}

func (s *fakeDomainStore) ListNeedingCheck(olderThan time.Duration) ([]*core.Domain, error) {
	return s.needingCheck, nil
}

func (s *fakeDomainStore) ListExpiring(withinDays int) ([]*core.Domain, error) {
	return s.expiring, nil
}

func (s *fakeDomainStore) Update(id uuid.UUID, u core.DomainUpdate) error {
	s.updates[id] = u
	return nil
}

func (s *fakeDomainStore) Statistics() (*core.DomainStatistics, error) {
	return s.stats, nil
}

type fakeNotificationCounter struct{}

func (fakeNotificationCounter) CountByStatus() (map[core.NotificationStatus]int, error) {
	return map[core.NotificationStatus]int{}, nil
}

// fakeRefresher fails for domain names listed in failFor but still
// returns a stamped update, matching the real refresher's contract.
type fakeRefresher struct {
	failFor map[string]error
	calls   []string
}

func (f *fakeRefresher) Refresh(ctx context.Context, domain *core.Domain) (core.DomainUpdate, error) {
	f.calls = append(f.calls, domain.Name)
	now := time.Now()
	update := core.DomainUpdate{LastChecked: &now, WhoisLastUpdated: &now}
	if err, ok := f.failFor[domain.Name]; ok {
		return update, err
	}
	exp := now.AddDate(1, 0, 0)
	update.ExpirationDate = &exp
	return update, nil
}

type fakePlanner struct {
	planned []*core.Domain
}

func (f *fakePlanner) Plan(domain *core.Domain) (int, error) {
	f.planned = append(f.planned, domain)
	return 0, nil
}

type fakeDispatcher struct {
	result dispatch.Result
	calls  int
}

func (f *fakeDispatcher) DispatchDueAndRetryable() dispatch.Result {
	f.calls++
	return f.result
}

func testConfig() config.SchedulerConfig {
	return config.SchedulerConfig{
		CheckIntervalHours: 6,
		DispatchInterval:   5 * time.Minute,
		SummaryHour:        9,
		SummaryMinute:      0,
	}
}

func newTestScheduler(domains *fakeDomainStore, refresher *fakeRefresher, planner *fakePlanner, dispatcher *fakeDispatcher) *Scheduler {
	return New(domains, fakeNotificationCounter{}, refresher, planner, dispatcher, testCollector, testConfig(), zap.NewNop())
}

func TestRegisterReplacesExistingJob(t *testing.T) {
	s := newTestScheduler(newFakeDomainStore(), &fakeRefresher{}, &fakePlanner{}, &fakeDispatcher{})

	require.NoError(t, s.register("job", "@every 1h", func() {}))
	first := s.entries["job"]

	require.NoError(t, s.register("job", "@every 2h", func() {}))
	second := s.entries["job"]

	assert.NotEqual(t, first, second)
	assert.Len(t, s.cron.Entries(), 1)
}

func TestRegisterRejectsBadSpec(t *testing.T) {
	s := newTestScheduler(newFakeDomainStore(), &fakeRefresher{}, &fakePlanner{}, &fakeDispatcher{})
	require.Error(t, s.register("job", "not a cron spec", func() {}))
	assert.Empty(t, s.entries)
}

func TestStartRegistersAllJobsAndStops(t *testing.T) {
	s := newTestScheduler(newFakeDomainStore(), &fakeRefresher{}, &fakePlanner{}, &fakeDispatcher{})

	require.NoError(t, s.Start())
	assert.Len(t, s.cron.Entries(), 3)
	assert.Contains(t, s.entries, JobRefresh)
	assert.Contains(t, s.entries, JobDispatch)
	assert.Contains(t, s.entries, JobSummary)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
}

func TestRefreshSweepIsolatesFailures(t *testing.T) {
	good := &core.Domain{ID: uuid.New(), Name: "good.com", Active: true}
	bad := &core.Domain{ID: uuid.New(), Name: "bad.com", Active: true}

	domains := newFakeDomainStore()
	domains.needingCheck = []*core.Domain{bad, good}
	refresher := &fakeRefresher{failFor: map[string]error{
		"bad.com": &whois.RefreshError{Kind: whois.FailureNetwork, Domain: "bad.com", Err: errors.New("timeout")},
	}}
	planner := &fakePlanner{}

	s := newTestScheduler(domains, refresher, planner, &fakeDispatcher{})
	s.RefreshSweep(context.Background())

	// Both domains were attempted and both got their stamps persisted.
	assert.Equal(t, []string{"bad.com", "good.com"}, refresher.calls)
	require.Contains(t, domains.updates, bad.ID)
	require.Contains(t, domains.updates, good.ID)
	assert.NotNil(t, domains.updates[bad.ID].LastChecked)

	// Planning still ran for the failed domain, from stored fields.
	assert.Len(t, planner.planned, 2)
}

func TestRefreshSweepStopsOnCancelledContext(t *testing.T) {
	domains := newFakeDomainStore()
	domains.needingCheck = []*core.Domain{
		{ID: uuid.New(), Name: "a.com", Active: true},
		{ID: uuid.New(), Name: "b.com", Active: true},
	}
	refresher := &fakeRefresher{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := newTestScheduler(domains, refresher, &fakePlanner{}, &fakeDispatcher{})
	s.RefreshSweep(ctx)

	assert.Empty(t, refresher.calls)
}

func TestRefreshDomainAppliesUpdateBeforePlanning(t *testing.T) {
	domain := &core.Domain{ID: uuid.New(), Name: "example.com", Active: true}
	domains := newFakeDomainStore()
	planner := &fakePlanner{}

	s := newTestScheduler(domains, &fakeRefresher{}, planner, &fakeDispatcher{})
	s.RefreshDomain(context.Background(), domain)

	// The planner saw the refreshed expiration, not the zero value.
	require.Len(t, planner.planned, 1)
	assert.False(t, planner.planned[0].ExpirationDate.IsZero())
	assert.NotNil(t, planner.planned[0].LastChecked)
}

func TestRefreshDomainMutatesOnlyItsArgument(t *testing.T) {
	domain := &core.Domain{ID: uuid.New(), Name: "example.com", Active: true}
	domains := newFakeDomainStore()
	s := newTestScheduler(domains, &fakeRefresher{}, &fakePlanner{}, &fakeDispatcher{})

	// Callers that keep reading the original hand RefreshDomain a
	// private copy; reading the original while the refresh runs must be
	// safe. The race detector guards this invariant.
	cp := *domain
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.RefreshDomain(context.Background(), &cp)
	}()

	for i := 0; i < 100; i++ {
		if _, err := json.Marshal(domain); err != nil {
			t.Fatalf("marshal: %v", err)
		}
	}
	<-done

	assert.True(t, domain.ExpirationDate.IsZero())
	assert.False(t, cp.ExpirationDate.IsZero())
	require.Contains(t, domains.updates, domain.ID)
}

func TestDispatchSweepRunsDispatcher(t *testing.T) {
	dispatcher := &fakeDispatcher{result: dispatch.Result{Sent: 3, Failed: 1}}
	s := newTestScheduler(newFakeDomainStore(), &fakeRefresher{}, &fakePlanner{}, dispatcher)

	s.DispatchSweep()
	assert.Equal(t, 1, dispatcher.calls)
}

func TestRefreshResultClassification(t *testing.T) {
	assert.Equal(t, "network_error", refreshResult(&whois.RefreshError{Kind: whois.FailureNetwork}))
	assert.Equal(t, "whois_error", refreshResult(&whois.RefreshError{Kind: whois.FailureWhois}))
	assert.Equal(t, "unexpected_error", refreshResult(errors.New("boom")))
}
