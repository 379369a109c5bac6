package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/domainping/domainping/internal/core"
)

type DomainRepo struct {
	db *DB
}

func NewDomainRepo(db *DB) *DomainRepo {
	return &DomainRepo{db: db}
}

const domainColumns = `
    id, name, registrar, registration_date, expiration_date, nameservers,
    auto_renew, renewal_cost, renewal_period_years,
    admin_email, admin_phone, active, last_checked, whois_last_updated,
    email_notifications, sms_notifications, desktop_notifications,
    reminder_days, notes, tags, created_at, updated_at`

func (r *DomainRepo) Create(d *core.Domain) error {
	query := `
        INSERT INTO domains (
            id, name, registrar, registration_date, expiration_date, nameservers,
            auto_renew, renewal_cost, renewal_period_years,
            admin_email, admin_phone, active, last_checked, whois_last_updated,
            email_notifications, sms_notifications, desktop_notifications,
            reminder_days, notes, tags, created_at, updated_at
        ) VALUES (
            $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
            $14, $15, $16, $17, $18, $19, $20, $21, $22
        )`

	_, err := r.db.Exec(query,
		d.ID, d.Name, d.Registrar, d.RegistrationDate, d.ExpirationDate,
		pq.Array(d.Nameservers),
		d.AutoRenew, d.RenewalCost, d.RenewalPeriodYears,
		d.AdminEmail, d.AdminPhone, d.Active, d.LastChecked, d.WhoisLastUpdated,
		d.EmailNotifications, d.SMSNotifications, d.DesktopNotifications,
		pq.Array(intsToInt64(d.ReminderDays)), d.Notes, pq.Array(d.Tags),
		d.CreatedAt, d.UpdatedAt,
	)

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return core.ErrDuplicateDomain
	}
	return err
}

func (r *DomainRepo) GetByID(id uuid.UUID) (*core.Domain, error) {
	query := `SELECT ` + domainColumns + ` FROM domains WHERE id = $1`
	return r.scanDomain(r.db.QueryRow(query, id))
}

func (r *DomainRepo) GetByName(name string) (*core.Domain, error) {
	query := `SELECT ` + domainColumns + ` FROM domains WHERE LOWER(name) = LOWER($1)`
	return r.scanDomain(r.db.QueryRow(query, core.NormalizeName(name)))
}

func (r *DomainRepo) List(f core.DomainFilter) ([]*core.Domain, error) {
	var (
		conds []string
		args  []interface{}
	)

	if f.Search != "" {
		args = append(args, "%"+strings.ToLower(f.Search)+"%")
		conds = append(conds, fmt.Sprintf("name LIKE $%d", len(args)))
	}

	// Status is derived from expiration_date, so the filter reproduces
	// the same day boundaries the status engine uses.
	switch f.Status {
	case string(core.StatusExpired):
		conds = append(conds, "expiration_date < NOW()")
	case string(core.StatusCritical):
		conds = append(conds, "expiration_date >= NOW() AND expiration_date <= NOW() + INTERVAL '7 days'")
	case string(core.StatusWarning):
		conds = append(conds, "expiration_date > NOW() + INTERVAL '7 days' AND expiration_date <= NOW() + INTERVAL '30 days'")
	case string(core.StatusActive):
		conds = append(conds, "expiration_date > NOW() + INTERVAL '30 days'")
	case string(core.StatusInactive):
		conds = append(conds, "active = FALSE")
	}

	query := `SELECT ` + domainColumns + ` FROM domains`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY expiration_date"

	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit)
	query += fmt.Sprintf(" LIMIT $%d", len(args))
	args = append(args, f.Offset)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	return r.queryDomains(query, args...)
}

// Update applies the non-nil fields of the partial update. Identity and
// derived fields are not reachable from here.
func (r *DomainRepo) Update(id uuid.UUID, u core.DomainUpdate) error {
	var (
		sets []string
		args []interface{}
	)

	set := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if u.Registrar != nil {
		set("registrar", *u.Registrar)
	}
	if u.RegistrationDate != nil {
		set("registration_date", *u.RegistrationDate)
	}
	if u.ExpirationDate != nil {
		set("expiration_date", *u.ExpirationDate)
	}
	if u.Nameservers != nil {
		set("nameservers", pq.Array(u.Nameservers))
	}
	if u.AutoRenew != nil {
		set("auto_renew", *u.AutoRenew)
	}
	if u.RenewalCost != nil {
		set("renewal_cost", *u.RenewalCost)
	}
	if u.RenewalPeriodYears != nil {
		set("renewal_period_years", *u.RenewalPeriodYears)
	}
	if u.AdminEmail != nil {
		set("admin_email", *u.AdminEmail)
	}
	if u.AdminPhone != nil {
		set("admin_phone", *u.AdminPhone)
	}
	if u.Active != nil {
		set("active", *u.Active)
	}
	if u.LastChecked != nil {
		set("last_checked", *u.LastChecked)
	}
	if u.WhoisLastUpdated != nil {
		set("whois_last_updated", *u.WhoisLastUpdated)
	}
	if u.EmailNotifications != nil {
		set("email_notifications", *u.EmailNotifications)
	}
	if u.SMSNotifications != nil {
		set("sms_notifications", *u.SMSNotifications)
	}
	if u.DesktopNotifications != nil {
		set("desktop_notifications", *u.DesktopNotifications)
	}
	if u.ReminderDays != nil {
		set("reminder_days", pq.Array(intsToInt64(u.ReminderDays)))
	}
	if u.Notes != nil {
		set("notes", *u.Notes)
	}
	if u.Tags != nil {
		set("tags", pq.Array(u.Tags))
	}

	if len(sets) == 0 {
		return nil
	}
	set("updated_at", time.Now())

	args = append(args, id)
	query := fmt.Sprintf("UPDATE domains SET %s WHERE id = $%d",
		strings.Join(sets, ", "), len(args))

	res, err := r.db.Exec(query, args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrDomainNotFound
	}
	return nil
}

func (r *DomainRepo) Delete(id uuid.UUID) error {
	res, err := r.db.Exec(`DELETE FROM domains WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrDomainNotFound
	}
	return nil
}

func (r *DomainRepo) ListExpiring(withinDays int) ([]*core.Domain, error) {
	query := `SELECT ` + domainColumns + `
        FROM domains
        WHERE active = TRUE
        AND expiration_date <= NOW() + ($1 || ' days')::interval
        ORDER BY expiration_date`

	return r.queryDomains(query, withinDays)
}

func (r *DomainRepo) ListNeedingCheck(olderThan time.Duration) ([]*core.Domain, error) {
	query := `SELECT ` + domainColumns + `
        FROM domains
        WHERE active = TRUE
        AND (last_checked IS NULL OR last_checked < $1)
        ORDER BY last_checked NULLS FIRST`

	return r.queryDomains(query, time.Now().Add(-olderThan))
}

func (r *DomainRepo) Statistics() (*core.DomainStatistics, error) {
	var stats core.DomainStatistics
	query := `
        SELECT
            COUNT(*) AS total,
            COUNT(*) FILTER (WHERE expiration_date < NOW()) AS expired,
            COUNT(*) FILTER (WHERE expiration_date >= NOW()
                AND expiration_date <= NOW() + INTERVAL '7 days') AS critical,
            COUNT(*) FILTER (WHERE expiration_date > NOW() + INTERVAL '7 days'
                AND expiration_date <= NOW() + INTERVAL '30 days') AS warning
        FROM domains
        WHERE active = TRUE`

	err := r.db.QueryRow(query).Scan(&stats.Total, &stats.Expired, &stats.Critical, &stats.Warning)
	if err != nil {
		return nil, err
	}
	stats.Active = stats.Total - stats.Expired
	return &stats, nil
}

func (r *DomainRepo) queryDomains(query string, args ...interface{}) ([]*core.Domain, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	domains := []*core.Domain{}
	for rows.Next() {
		d, err := r.scanDomain(rows)
		if err != nil {
			return nil, err
		}
		domains = append(domains, d)
	}
	return domains, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *DomainRepo) scanDomain(row rowScanner) (*core.Domain, error) {
	var (
		d            core.Domain
		nameservers  pq.StringArray
		reminderDays pq.Int64Array
		tags         pq.StringArray
	)

	err := row.Scan(
		&d.ID, &d.Name, &d.Registrar, &d.RegistrationDate, &d.ExpirationDate,
		&nameservers,
		&d.AutoRenew, &d.RenewalCost, &d.RenewalPeriodYears,
		&d.AdminEmail, &d.AdminPhone, &d.Active, &d.LastChecked, &d.WhoisLastUpdated,
		&d.EmailNotifications, &d.SMSNotifications, &d.DesktopNotifications,
		&reminderDays, &d.Notes, &tags, &d.CreatedAt, &d.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrDomainNotFound
	}
	if err != nil {
		return nil, err
	}

	d.Nameservers = []string(nameservers)
	d.ReminderDays = int64sToInts(reminderDays)
	d.Tags = []string(tags)
	return &d, nil
}

func intsToInt64(in []int) []int64 {
	out := make([]int64, len(in))
	for i, v := range in {
		out[i] = int64(v)
	}
	return out
}

func int64sToInts(in []int64) []int {
	out := make([]int, len(in))
	for i, v := range in {
		out[i] = int(v)
	}
	return out
}
