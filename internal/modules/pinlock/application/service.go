package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	notificationDomain "github.com/maeumssi/maeumssi/internal/modules/notification/domain"
	"github.com/maeumssi/maeumssi/internal/modules/pinlock/domain"
	"github.com/maeumssi/maeumssi/internal/shared/logger"
	"golang.org/x/crypto/bcrypt"
)

const (
	actionEnabled  = "설정"
	actionDisabled = "해제"
)

// Store is the best-effort key-value storage holding PIN hashes.
type Store interface {
	GetItem(ctx context.Context, key string) (string, bool)
	SetItem(ctx context.Context, key, value string)
	RemoveItem(ctx context.Context, key string)
}

type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, t notificationDomain.Type, meta notificationDomain.Meta)
}

type Service struct {
	store    Store
	notifier Notifier
	log      *slog.Logger
	cost     int
	now      func() time.Time
}

func NewService(store Store, notifier Notifier, log *slog.Logger) *Service {
	return &Service{
		store:    store,
		notifier: notifier,
		log:      logger.OrDiscard(log).With("component", "pinlock"),
		cost:     bcrypt.DefaultCost,
		now:      time.Now,
	}
}

// Enabled reports whether the user has a PIN.
func (s *Service) Enabled(ctx context.Context, userID uuid.UUID) bool {
	_, ok := s.store.GetItem(ctx, domain.StorageKey(userID))
	return ok
}

// Set installs pin. Changing an existing PIN requires the current one.
func (s *Service) Set(ctx context.Context, userID uuid.UUID, pin, current string) error {
	if err := domain.ValidatePIN(pin); err != nil {
		return err
	}
	if s.Enabled(ctx, userID) {
		if err := s.Verify(ctx, userID, current); err != nil {
			return err
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(pin), s.cost)
	if err != nil {
		return fmt.Errorf("hash pin: %w", err)
	}
	s.store.SetItem(ctx, domain.StorageKey(userID), string(hash))
	s.log.Info("pin lock enabled", "user_id", userID)
	s.notify(ctx, userID, actionEnabled)
	return nil
}

// Verify checks pin against the stored hash. After MaxAttempts wrong PINs in
// a row it returns ErrPINLocked until the lockout passes, even for the right PIN.
func (s *Service) Verify(ctx context.Context, userID uuid.UUID, pin string) error {
	hash, ok := s.store.GetItem(ctx, domain.StorageKey(userID))
	if !ok {
		return domain.ErrPINNotSet
	}

	now := s.now()
	key := domain.AttemptsKey(userID)
	raw, seen := s.store.GetItem(ctx, key)
	attempts := domain.ParseAttempts(raw)
	if attempts.Locked(now) {
		return domain.ErrPINLocked
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(pin)); err != nil {
		attempts = attempts.Fail(now)
		s.store.SetItem(ctx, key, attempts.String())
		if attempts.Locked(now) {
			s.log.Warn("pin lock locked out", "user_id", userID, "until", attempts.LockedUntil)
			return domain.ErrPINLocked
		}
		return domain.ErrPINMismatch
	}
	if seen {
		s.store.RemoveItem(ctx, key)
	}
	return nil
}

// Clear removes the PIN after checking it.
func (s *Service) Clear(ctx context.Context, userID uuid.UUID, pin string) error {
	if err := s.Verify(ctx, userID, pin); err != nil {
		return err
	}
	s.store.RemoveItem(ctx, domain.StorageKey(userID))
	s.log.Info("pin lock disabled", "user_id", userID)
	s.notify(ctx, userID, actionDisabled)
	return nil
}

func (s *Service) notify(ctx context.Context, userID uuid.UUID, action string) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(ctx, userID, notificationDomain.TypePinLockChanged, notificationDomain.Meta{"action": action})
}
