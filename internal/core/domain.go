package core

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Domain struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Registrar *string   `json:"registrar" db:"registrar"`

	// Registration lifecycle
	RegistrationDate *time.Time `json:"registration_date" db:"registration_date"`
	ExpirationDate   time.Time  `json:"expiration_date" db:"expiration_date"`
	Nameservers      []string   `json:"nameservers"`

	// Renewal metadata
	AutoRenew          bool     `json:"auto_renew" db:"auto_renew"`
	RenewalCost        *float64 `json:"renewal_cost" db:"renewal_cost"`
	RenewalPeriodYears int      `json:"renewal_period_years" db:"renewal_period_years"`

	// Contact information
	AdminEmail *string `json:"admin_email" db:"admin_email"`
	AdminPhone *string `json:"admin_phone" db:"admin_phone"`

	// Status tracking
	Active           bool       `json:"active" db:"active"`
	LastChecked      *time.Time `json:"last_checked" db:"last_checked"`
	WhoisLastUpdated *time.Time `json:"whois_last_updated" db:"whois_last_updated"`

	// Notification preferences
	EmailNotifications   bool  `json:"email_notifications" db:"email_notifications"`
	SMSNotifications     bool  `json:"sms_notifications" db:"sms_notifications"`
	DesktopNotifications bool  `json:"desktop_notifications" db:"desktop_notifications"`
	ReminderDays         []int `json:"reminder_days"`

	Notes *string  `json:"notes" db:"notes"`
	Tags  []string `json:"tags"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// DomainUpdate names the mutable fields of a Domain. Nil fields are left
// untouched by the repository, so a refresh cycle only writes what the
// WHOIS answer actually carried.
type DomainUpdate struct {
	Registrar            *string
	RegistrationDate     *time.Time
	ExpirationDate       *time.Time
	Nameservers          []string
	AutoRenew            *bool
	RenewalCost          *float64
	RenewalPeriodYears   *int
	AdminEmail           *string
	AdminPhone           *string
	Active               *bool
	LastChecked          *time.Time
	WhoisLastUpdated     *time.Time
	EmailNotifications   *bool
	SMSNotifications     *bool
	DesktopNotifications *bool
	ReminderDays         []int
	Notes                *string
	Tags                 []string
}

// NormalizeName lowercases a domain name and strips any URL scheme and
// path component, so "HTTPS://Example.com/foo" and "example.com" map to
// the same tracked name.
func NormalizeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if i := strings.Index(name, "://"); i >= 0 {
		name = name[i+3:]
	}
	if i := strings.Index(name, "/"); i >= 0 {
		name = name[:i]
	}
	return name
}

// EffectiveReminderDays returns the domain's custom reminder offsets, or
// the given defaults when none are configured.
func (d *Domain) EffectiveReminderDays(defaults []int) []int {
	if len(d.ReminderDays) > 0 {
		return d.ReminderDays
	}
	return defaults
}

// ChannelEnabled reports whether notifications on the given channel are
// switched on for this domain.
func (d *Domain) ChannelEnabled(ch Channel) bool {
	switch ch {
	case ChannelEmail:
		return d.EmailNotifications
	case ChannelSMS:
		return d.SMSNotifications
	case ChannelDesktop:
		return d.DesktopNotifications
	}
	return false
}

// Recipient returns the channel-appropriate delivery address. Desktop
// notifications have no address; they use a fixed local target.
func (d *Domain) Recipient(ch Channel) string {
	switch ch {
	case ChannelEmail:
		if d.AdminEmail != nil {
			return *d.AdminEmail
		}
	case ChannelSMS:
		if d.AdminPhone != nil {
			return *d.AdminPhone
		}
	case ChannelDesktop:
		return "desktop"
	}
	return ""
}

type DomainStatistics struct {
	Total    int `json:"total_domains" db:"total"`
	Expired  int `json:"expired_domains" db:"expired"`
	Critical int `json:"critical_domains" db:"critical"`
	Warning  int `json:"warning_domains" db:"warning"`
	Active   int `json:"active_domains" db:"active"`
}

type DomainFilter struct {
	Status string
	Search string
	Limit  int
	Offset int
}
