package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	fileDomain "github.com/maeumssi/maeumssi/internal/modules/filestorage/domain"
	notificationDomain "github.com/maeumssi/maeumssi/internal/modules/notification/domain"
	"github.com/maeumssi/maeumssi/internal/modules/sharecard/domain"
	"github.com/maeumssi/maeumssi/internal/modules/sharecard/infrastructure/render"
	"github.com/maeumssi/maeumssi/internal/shared/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	folder         = "cards"
	contentType    = "image/png"
	DefaultExpiry  = 24 * time.Hour
	downloadPrefix = "maeumssi-"
)

var cardsRendered = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "share_cards_rendered_total",
	Help: "Share cards rendered, by bloom stage",
}, []string{"stage"})

// Files stores rendered cards.
type Files interface {
	UploadBytes(ctx context.Context, folder, ext string, data []byte, contentType string) (*fileDomain.File, error)
	DownloadURL(ctx context.Context, key, filename string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, t notificationDomain.Type, meta notificationDomain.Meta)
}

type Service struct {
	files    Files
	notifier Notifier
	expiry   time.Duration
	log      *slog.Logger
	now      func() time.Time
	render   func(domain.Request) ([]byte, error)
}

func NewService(files Files, notifier Notifier, expiry time.Duration, log *slog.Logger) *Service {
	if expiry <= 0 {
		expiry = DefaultExpiry
	}
	return &Service{
		files:    files,
		notifier: notifier,
		expiry:   expiry,
		log:      logger.OrDiscard(log).With("component", "sharecard"),
		now:      time.Now,
		render:   render.Render,
	}
}

// Create renders the card, stores it and returns a time-limited link.
// The owner gets a share_card_ready notification.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, req domain.Request) (*domain.Card, error) {
	if err := req.Normalize(); err != nil {
		return nil, err
	}

	data, err := s.render(req)
	if err != nil {
		return nil, err
	}

	file, err := s.files.UploadBytes(ctx, folder, ".png", data, contentType)
	if err != nil {
		return nil, fmt.Errorf("store share card: %w", err)
	}

	stage := domain.StageFor(req.StreakDays)
	filename := downloadPrefix + stage.String() + ".png"
	url, err := s.files.DownloadURL(ctx, file.Key, filename, s.expiry)
	if err != nil {
		if derr := s.files.Delete(ctx, file.Key); derr != nil {
			s.log.Warn("remove unsigned share card", "key", file.Key, "error", derr)
		}
		return nil, fmt.Errorf("sign share card: %w", err)
	}

	cardsRendered.WithLabelValues(stage.String()).Inc()
	s.log.Info("share card created", "user_id", userID, "key", file.Key, "stage", stage.String(), "bytes", file.Size)

	card := &domain.Card{
		Key:        file.Key,
		URL:        url,
		Flower:     req.Flower,
		StreakDays: req.StreakDays,
		Stage:      stage,
		Width:      domain.Width,
		Height:     domain.Height,
		ExpiresAt:  s.now().Add(s.expiry),
	}

	if s.notifier != nil {
		s.notifier.Notify(ctx, userID, notificationDomain.TypeShareCardReady, notificationDomain.Meta{
			"key":   card.Key,
			"stage": stage.String(),
		})
	}
	return card, nil
}
