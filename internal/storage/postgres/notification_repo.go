package postgres

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/domainping/domainping/internal/core"
)

type NotificationRepo struct {
	db *DB
}

func NewNotificationRepo(db *DB) *NotificationRepo {
	return &NotificationRepo{db: db}
}

const notificationColumns = `
    id, domain_id, channel, status, days_before, subject, message,
    recipient, scheduled_at, sent_at, last_error, retry_count, max_retries,
    created_at, updated_at`

// CreateIfAbsent inserts the notification unless one already exists for
// the same (domain, channel, offset) identity. Returns false when the
// insert was skipped.
func (r *NotificationRepo) CreateIfAbsent(n *core.Notification) (bool, error) {
	query := `
        INSERT INTO notifications (
            id, domain_id, channel, status, days_before, subject, message,
            recipient, scheduled_at, sent_at, last_error, retry_count,
            max_retries, created_at, updated_at
        ) VALUES (
            $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15
        )
        ON CONFLICT (domain_id, channel, days_before) DO NOTHING`

	res, err := r.db.Exec(query,
		n.ID, n.DomainID, n.Channel, n.Status, n.DaysBefore, n.Subject,
		n.Message, n.Recipient, n.ScheduledAt, n.SentAt, n.LastError,
		n.RetryCount, n.MaxRetries, n.CreatedAt, n.UpdatedAt,
	)
	if err != nil {
		return false, err
	}
	inserted, _ := res.RowsAffected()
	return inserted > 0, nil
}

func (r *NotificationRepo) GetByID(id uuid.UUID) (*core.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE id = $1`
	return r.scanNotification(r.db.QueryRow(query, id))
}

// ListDue returns pending notifications whose scheduled time has passed.
func (r *NotificationRepo) ListDue(now time.Time) ([]*core.Notification, error) {
	query := `SELECT ` + notificationColumns + `
        FROM notifications
        WHERE status = 'pending' AND scheduled_at <= $1
        ORDER BY scheduled_at`

	return r.queryNotifications(query, now)
}

// ListRetryable returns failed notifications with remaining retry budget.
func (r *NotificationRepo) ListRetryable() ([]*core.Notification, error) {
	query := `SELECT ` + notificationColumns + `
        FROM notifications
        WHERE status = 'failed' AND retry_count < max_retries
        ORDER BY updated_at`

	return r.queryNotifications(query)
}

func (r *NotificationRepo) ListByDomain(domainID uuid.UUID) ([]*core.Notification, error) {
	query := `SELECT ` + notificationColumns + `
        FROM notifications
        WHERE domain_id = $1
        ORDER BY scheduled_at DESC`

	return r.queryNotifications(query, domainID)
}

func (r *NotificationRepo) MarkSent(id uuid.UUID, at time.Time) error {
	query := `
        UPDATE notifications SET
            status = 'sent',
            sent_at = $2,
            last_error = NULL,
            updated_at = NOW()
        WHERE id = $1`

	return r.exec(query, id, at)
}

// MarkFailed records a delivery failure and consumes one retry.
func (r *NotificationRepo) MarkFailed(id uuid.UUID, reason string) error {
	query := `
        UPDATE notifications SET
            status = 'failed',
            last_error = $2,
            retry_count = retry_count + 1,
            updated_at = NOW()
        WHERE id = $1`

	return r.exec(query, id, reason)
}

// MarkFailedTerminal records a failure that retrying cannot fix, burning
// the whole retry budget so the dispatch sweep stops selecting it.
func (r *NotificationRepo) MarkFailedTerminal(id uuid.UUID, reason string) error {
	query := `
        UPDATE notifications SET
            status = 'failed',
            last_error = $2,
            retry_count = max_retries,
            updated_at = NOW()
        WHERE id = $1`

	return r.exec(query, id, reason)
}

// Cancel moves a notification to the cancelled terminal state. Sent
// notifications stay sent.
func (r *NotificationRepo) Cancel(id uuid.UUID) error {
	query := `
        UPDATE notifications SET
            status = 'cancelled',
            updated_at = NOW()
        WHERE id = $1 AND status IN ('pending', 'failed')`

	return r.exec(query, id)
}

func (r *NotificationRepo) CountByStatus() (map[core.NotificationStatus]int, error) {
	rows, err := r.db.Query(`SELECT status, COUNT(*) FROM notifications GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[core.NotificationStatus]int)
	for rows.Next() {
		var (
			status core.NotificationStatus
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

func (r *NotificationRepo) exec(query string, args ...interface{}) error {
	res, err := r.db.Exec(query, args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotificationNotFound
	}
	return nil
}

func (r *NotificationRepo) queryNotifications(query string, args ...interface{}) ([]*core.Notification, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notifications := []*core.Notification{}
	for rows.Next() {
		n, err := r.scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func (r *NotificationRepo) scanNotification(row rowScanner) (*core.Notification, error) {
	var n core.Notification
	err := row.Scan(
		&n.ID, &n.DomainID, &n.Channel, &n.Status, &n.DaysBefore,
		&n.Subject, &n.Message, &n.Recipient, &n.ScheduledAt, &n.SentAt,
		&n.LastError, &n.RetryCount, &n.MaxRetries, &n.CreatedAt, &n.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotificationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}
