package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/maeumssi/maeumssi/internal/modules/notification/domain"
)

const (
	notificationColumns = `id, user_id, type, icon, title, message, category, is_read, created_at, meta`

	insertNotification = `
		INSERT INTO notifications (` + notificationColumns + `)
		VALUES (:id, :user_id, :type, :icon, :title, :message, :category, :is_read, :created_at, :meta)`

	selectByUser = `
		SELECT ` + notificationColumns + `
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3`

	markOneRead = `UPDATE notifications SET is_read = TRUE WHERE id = $1 AND user_id = $2`

	markAllRead = `UPDATE notifications SET is_read = TRUE WHERE user_id = $1 AND NOT is_read`

	countUnread = `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND NOT is_read`

	purgeRead = `DELETE FROM notifications WHERE is_read AND created_at < $1`
)

type PgNotificationRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewPgNotificationRepository(db *sqlx.DB) *PgNotificationRepository {
	return &PgNotificationRepository{db: db, now: time.Now}
}

var _ domain.Repository = (*PgNotificationRepository)(nil)

func (r *PgNotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = r.now()
	}
	if _, err := r.db.NamedExecContext(ctx, insertNotification, n); err != nil {
		return fmt.Errorf("insert notification %s: %w", n.ID, err)
	}
	return nil
}

func (r *PgNotificationRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.Notification, error) {
	items := []domain.Notification{}
	if err := r.db.SelectContext(ctx, &items, selectByUser, userID, limit, offset); err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return items, nil
}

func (r *PgNotificationRepository) MarkAsRead(ctx context.Context, notificationID, userID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, markOneRead, notificationID, userID)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotificationNotFound
	}
	return nil
}

func (r *PgNotificationRepository) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, markAllRead, userID); err != nil {
		return fmt.Errorf("mark all notifications read: %w", err)
	}
	return nil
}

func (r *PgNotificationRepository) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, countUnread, userID); err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return count, nil
}

func (r *PgNotificationRepository) PurgeReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, purgeRead, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge read notifications: %w", err)
	}
	return res.RowsAffected()
}
