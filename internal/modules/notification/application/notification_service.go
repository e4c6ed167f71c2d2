package application

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/maeumssi/maeumssi/internal/modules/notification/domain"
	"github.com/maeumssi/maeumssi/internal/modules/notification/infrastructure/websocket"
	"github.com/maeumssi/maeumssi/internal/shared/logger"
	"github.com/maeumssi/maeumssi/internal/shared/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var notificationsCreated = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "notifications_created_total",
		Help: "Notification records created, by type",
	},
	[]string{"type"},
)

var notificationsPurged = promauto.NewCounter(prometheus.CounterOpts{
	Name: "notifications_purged_total",
	Help: "Read notifications removed by retention",
})

// Pusher delivers a frame to the open sockets of one user.
type Pusher interface {
	Push(userID uuid.UUID, frame []byte)
}

type NotificationService struct {
	repo   domain.Repository
	pusher Pusher
	log    *slog.Logger
	now    func() time.Time
}

func NewNotificationService(repo domain.Repository, pusher Pusher, log *slog.Logger) *NotificationService {
	return &NotificationService{
		repo:   repo,
		pusher: pusher,
		log:    logger.OrDiscard(log).With("component", "notification_service"),
		now:    time.Now,
	}
}

// Create renders the record for t, persists it and pushes it to the user's
// open sockets. A push is best effort; persistence is not.
func (s *NotificationService) Create(ctx context.Context, userID uuid.UUID, t domain.Type, meta domain.Meta) (*domain.Notification, error) {
	notification, err := domain.New(userID, t, meta, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, notification); err != nil {
		return nil, fmt.Errorf("create notification: %w", err)
	}
	notificationsCreated.WithLabelValues(t.String()).Inc()

	if s.pusher != nil {
		msg, err := json.Marshal(notification)
		if err != nil {
			s.log.Warn("encode push frame", "notification_id", notification.ID, "error", err)
		} else {
			s.pusher.Push(userID, msg)
		}
	}
	return notification, nil
}

// Notify is Create for callers that only care about failure, such as the
// auth and pin lock modules. Errors are logged, not returned.
func (s *NotificationService) Notify(ctx context.Context, userID uuid.UUID, t domain.Type, meta domain.Meta) {
	if _, err := s.Create(ctx, userID, t, meta); err != nil {
		s.log.Error("notify", "user_id", userID, "type", t, "error", err)
	}
}

func (s *NotificationService) GetUserNotifications(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.Notification, error) {
	return s.repo.ListByUser(ctx, userID, limit, offset)
}

func (s *NotificationService) MarkAsRead(ctx context.Context, notificationID, userID uuid.UUID) error {
	return s.repo.MarkAsRead(ctx, notificationID, userID)
}

func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.repo.UnreadCount(ctx, userID)
}

// Purge deletes read notifications older than maxAge.
func (s *NotificationService) Purge(ctx context.Context, maxAge time.Duration) (int64, error) {
	n, err := s.repo.PurgeReadBefore(ctx, s.now().Add(-maxAge))
	if err != nil {
		return 0, err
	}
	notificationsPurged.Add(float64(n))
	if n > 0 {
		s.log.Info("purged read notifications", "count", n, "max_age", maxAge)
	}
	return n, nil
}

// RunRetention purges every interval until ctx is done. A non-positive
// interval or age disables retention.
func (s *NotificationService) RunRetention(ctx context.Context, every, maxAge time.Duration) {
	if every <= 0 || maxAge <= 0 {
		s.log.Info("notification retention disabled")
		return
	}
	utils.RunEvery(ctx, every, func(ctx context.Context) {
		if _, err := s.Purge(ctx, maxAge); err != nil && ctx.Err() == nil {
			s.log.Warn("retention purge failed", "error", err)
		}
	})
}

var _ Pusher = (*websocket.Hub)(nil)
