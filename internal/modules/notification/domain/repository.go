package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository stores notification records. Every read and mutation except
// PurgeReadBefore is scoped to one owner.
type Repository interface {
	Create(ctx context.Context, n *Notification) error
	// ListByUser returns newest first.
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Notification, error)
	// MarkAsRead reports ErrNotificationNotFound when the id does not belong
	// to userID.
	MarkAsRead(ctx context.Context, notificationID, userID uuid.UUID) error
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) error
	UnreadCount(ctx context.Context, userID uuid.UUID) (int, error)
	// PurgeReadBefore deletes read records created before the cutoff and
	// returns how many were removed. Unread records are never purged.
	PurgeReadBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
