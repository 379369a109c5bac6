package whois

import (
	"context"
	"fmt"
	"time"
)

// Record is a raw WHOIS answer. Registries disagree on cardinality, so
// every field is a candidate list; the refresher picks the first entry
// as the canonical value.
type Record struct {
	ExpirationDates   []time.Time
	RegistrationDates []time.Time
	Registrars        []string
	Nameservers       []string
	Statuses          []string
	AdminEmails       []string
}

// ErrorKind classifies transport failures.
type ErrorKind string

const (
	KindTimeout  ErrorKind = "timeout"
	KindNetwork  ErrorKind = "network"
	KindProtocol ErrorKind = "protocol"
)

// TransportError is returned by a Transport when a lookup fails.
// Timeout and network errors are transient and worth retrying; protocol
// errors mean the registry answered but the lookup itself failed.
type TransportError struct {
	Kind ErrorKind
	Err  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("whois %s error: %v", e.Kind, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Transient reports whether the failure is worth another attempt.
func (e *TransportError) Transient() bool {
	return e.Kind == KindTimeout || e.Kind == KindNetwork
}

// Transport performs a single WHOIS lookup for a normalized name.
type Transport interface {
	Lookup(ctx context.Context, name string) (*Record, error)
}
