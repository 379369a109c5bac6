package core

import "time"

// DomainStatus is the derived lifecycle state of a tracked domain.
type DomainStatus string

const (
	StatusInactive DomainStatus = "inactive"
	StatusExpired  DomainStatus = "expired"
	StatusCritical DomainStatus = "critical"
	StatusWarning  DomainStatus = "warning"
	StatusActive   DomainStatus = "active"
	StatusUnknown  DomainStatus = "unknown"
)

// Urgency thresholds in days. Boundaries are inclusive on the stricter
// side: exactly 7 days left is critical, exactly 30 is warning.
const (
	CriticalThresholdDays = 7
	WarningThresholdDays  = 30
)

// DaysUntilExpiration returns whole days between now and the domain's
// expiration, truncated toward zero. The second return is false when the
// expiration date is unset.
func DaysUntilExpiration(d *Domain, now time.Time) (int, bool) {
	if d.ExpirationDate.IsZero() {
		return 0, false
	}
	return int(d.ExpirationDate.Sub(now).Hours() / 24), true
}

// IsExpired reports whether the domain's expiration has already passed.
func IsExpired(d *Domain, now time.Time) bool {
	return !d.ExpirationDate.IsZero() && now.After(d.ExpirationDate)
}

// StatusOf derives the domain's lifecycle status at the given instant.
// An inactive flag wins over everything else.
func StatusOf(d *Domain, now time.Time) DomainStatus {
	if !d.Active {
		return StatusInactive
	}
	if IsExpired(d, now) {
		return StatusExpired
	}

	daysLeft, ok := DaysUntilExpiration(d, now)
	switch {
	case !ok:
		return StatusUnknown
	case daysLeft <= 0:
		return StatusExpired
	case daysLeft <= CriticalThresholdDays:
		return StatusCritical
	case daysLeft <= WarningThresholdDays:
		return StatusWarning
	default:
		return StatusActive
	}
}
