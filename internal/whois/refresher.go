package whois

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/domainping/domainping/internal/core"
)

// FailureKind classifies a refresh that ran out of options.
type FailureKind string

const (
	FailureNetwork    FailureKind = "network_error"
	FailureWhois      FailureKind = "whois_error"
	FailureUnexpected FailureKind = "unexpected_error"
)

// RefreshError is the terminal outcome of a refresh attempt. Callers log
// it and move on; it must never abort a sweep.
type RefreshError struct {
	Kind   FailureKind
	Domain string
	Err    error
}

func (e *RefreshError) Error() string {
	return fmt.Sprintf("refresh %s for %s: %v", e.Kind, e.Domain, e.Err)
}

func (e *RefreshError) Unwrap() error {
	return e.Err
}

// Refresher pulls registration data for a domain through a Transport and
// proposes field updates. Transient transport failures are retried up to
// maxRetries independent attempts.
type Refresher struct {
	transport  Transport
	maxRetries int
	logger     *zap.Logger
	now        func() time.Time
}

func NewRefresher(transport Transport, maxRetries int, logger *zap.Logger) *Refresher {
	if maxRetries <= 0 {
		maxRetries = 3
	}
	return &Refresher{
		transport:  transport,
		maxRetries: maxRetries,
		logger:     logger,
		now:        time.Now,
	}
}

// Refresh queries WHOIS for the domain and returns the proposed update.
// The update always stamps last_checked and whois_last_updated, failure
// included, so domains with broken lookups are not hammered every sweep.
// On failure the returned error is a *RefreshError and the update still
// carries the timestamps.
func (r *Refresher) Refresh(ctx context.Context, domain *core.Domain) (core.DomainUpdate, error) {
	name := core.NormalizeName(domain.Name)
	now := r.now()
	update := core.DomainUpdate{
		LastChecked:      &now,
		WhoisLastUpdated: &now,
	}

	record, err := r.lookup(ctx, name)
	if err != nil {
		return update, err
	}

	if len(record.ExpirationDates) > 0 {
		update.ExpirationDate = &record.ExpirationDates[0]
	}
	if len(record.RegistrationDates) > 0 {
		update.RegistrationDate = &record.RegistrationDates[0]
	}
	if len(record.Registrars) > 0 {
		update.Registrar = &record.Registrars[0]
	}
	if len(record.AdminEmails) > 0 && domain.AdminEmail == nil {
		// WHOIS contact data fills the gap but never overwrites an
		// address the operator set by hand.
		update.AdminEmail = &record.AdminEmails[0]
	}
	if len(record.Nameservers) > 0 {
		update.Nameservers = record.Nameservers
	}

	return update, nil
}

func (r *Refresher) lookup(ctx context.Context, name string) (*Record, error) {
	var lastErr error

	for attempt := 1; attempt <= r.maxRetries; attempt++ {
		record, err := r.transport.Lookup(ctx, name)
		if err == nil {
			return record, nil
		}
		lastErr = err

		var terr *TransportError
		if !errors.As(err, &terr) {
			return nil, &RefreshError{Kind: FailureUnexpected, Domain: name, Err: err}
		}
		if !terr.Transient() {
			return nil, &RefreshError{Kind: FailureWhois, Domain: name, Err: err}
		}

		r.logger.Warn("whois lookup attempt failed",
			zap.String("domain", name),
			zap.Int("attempt", attempt),
			zap.Int("max_retries", r.maxRetries),
			zap.Error(err),
		)
	}

	return nil, &RefreshError{Kind: FailureNetwork, Domain: name, Err: lastErr}
}
