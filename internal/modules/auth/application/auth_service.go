package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/maeumssi/maeumssi/internal/modules/auth/domain"
	"github.com/maeumssi/maeumssi/internal/modules/auth/infrastructure/jwt"
	notificationDomain "github.com/maeumssi/maeumssi/internal/modules/notification/domain"
	"github.com/maeumssi/maeumssi/internal/modules/session"
	"github.com/maeumssi/maeumssi/internal/shared/logger"
	"github.com/maeumssi/maeumssi/internal/shared/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/crypto/bcrypt"
	"google.golang.org/api/idtoken"
)

const (
	minPasswordLength = 8
	maxNicknameLength = 20
	guestNickname     = "게스트"
)

var guestsPurged = promauto.NewCounter(prometheus.CounterOpts{
	Name: "auth_guests_purged_total",
	Help: "Expired guest accounts deleted",
})

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Nickname string `json:"nickname"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type GoogleLoginRequest struct {
	Token string `json:"token"`
}

// TokenResponse is returned by every sign-in flow.
type TokenResponse struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

// Notifier records an in-app notification for a user. Failures are the
// notifier's concern.
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, t notificationDomain.Type, meta notificationDomain.Meta)
}

type TokenConfig struct {
	Secret      string
	Expiry      time.Duration
	GuestExpiry time.Duration
}

type AuthService struct {
	repo                 domain.UserRepository
	tokens               TokenConfig
	notifier             Notifier
	log                  *slog.Logger
	now                  func() time.Time
	googleTokenValidator func(ctx context.Context, token string, audience string) (*idtoken.Payload, error)
}

func NewAuthService(repo domain.UserRepository, tokens TokenConfig, notifier Notifier, log *slog.Logger) *AuthService {
	if tokens.GuestExpiry <= 0 {
		tokens.GuestExpiry = tokens.Expiry
	}
	return &AuthService{
		repo:                 repo,
		tokens:               tokens,
		notifier:             notifier,
		log:                  logger.OrDiscard(log).With("component", "auth_service"),
		now:                  time.Now,
		googleTokenValidator: idtoken.Validate,
	}
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrInvalidInput, fmt.Sprintf(format, args...))
}

// Register creates a member account and sends the welcome notification.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	email := strings.TrimSpace(strings.ToLower(req.Email))
	nickname := strings.TrimSpace(req.Nickname)

	if email == "" {
		return nil, invalid("email is required")
	}
	if !utils.IsValidEmail(email) {
		return nil, invalid("invalid email format")
	}
	if len(req.Password) < minPasswordLength {
		return nil, invalid("password must be at least %d characters", minPasswordLength)
	}
	if nickname == "" {
		return nil, invalid("nickname is required")
	}
	if utf8.RuneCountInString(nickname) > maxNicknameLength {
		return nil, invalid("nickname must be at most %d characters", maxNicknameLength)
	}

	hashedPass, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := s.now()
	user := &domain.User{
		ID:           uuid.New(),
		Email:        &email,
		PasswordHash: string(hashedPass),
		Nickname:     nickname,
		Role:         domain.RoleMember,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.welcome(ctx, user)
	return user, nil
}

// Login checks email and password and issues a member token.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	if req.Email == "" || req.Password == "" {
		return nil, invalid("missing email or password")
	}

	user, err := s.repo.GetByEmail(ctx, strings.TrimSpace(strings.ToLower(req.Email)))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if user.PasswordHash == "" {
		return nil, domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	return s.issue(user)
}

// GuestLogin creates a throwaway guest account. Guests can read but every
// write endpoint rejects them.
func (s *AuthService) GuestLogin(ctx context.Context) (*TokenResponse, error) {
	now := s.now()
	user := &domain.User{
		ID:        uuid.New(),
		Nickname:  guestNickname,
		Role:      domain.RoleGuest,
		IsGuest:   true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return s.issue(user)
}

// GoogleLogin verifies a Google ID token for clientID and signs the account
// in, creating it on first use.
func (s *AuthService) GoogleLogin(ctx context.Context, clientID string, req GoogleLoginRequest) (*TokenResponse, error) {
	validate := s.googleTokenValidator
	if validate == nil {
		validate = idtoken.Validate
	}

	payload, err := validate(ctx, req.Token, clientID)
	if err != nil {
		s.log.Warn("google token rejected", "error", err)
		return nil, domain.ErrInvalidGoogleToken
	}

	email, _ := payload.Claims["email"].(string)
	name, _ := payload.Claims["name"].(string)
	picture, _ := payload.Claims["picture"].(string)
	email = strings.ToLower(email)

	if email == "" {
		return nil, fmt.Errorf("%w: email not provided by google", domain.ErrInvalidGoogleToken)
	}

	user, err := s.repo.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		if name == "" {
			name = strings.SplitN(email, "@", 2)[0]
		}
		now := s.now()
		user = &domain.User{
			ID:        uuid.New(),
			Email:     &email,
			Nickname:  name,
			Role:      domain.RoleMember,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if picture != "" {
			user.AvatarURL = &picture
		}
		if err := s.repo.Create(ctx, user); err != nil {
			return nil, err
		}
		s.log.Info("created account from google sign-in", "user_id", user.ID)
		s.welcome(ctx, user)
	case err != nil:
		return nil, err
	}

	return s.issue(user)
}

// PurgeGuests deletes guest accounts whose token can no longer be valid,
// that is accounts older than the guest token lifetime.
func (s *AuthService) PurgeGuests(ctx context.Context) (int64, error) {
	n, err := s.repo.DeleteGuestsBefore(ctx, s.now().Add(-s.tokens.GuestExpiry))
	if err != nil {
		return 0, err
	}
	guestsPurged.Add(float64(n))
	if n > 0 {
		s.log.Info("purged expired guest accounts", "count", n)
	}
	return n, nil
}

// RunGuestCleanup calls PurgeGuests every interval until ctx is done.
func (s *AuthService) RunGuestCleanup(ctx context.Context, every time.Duration) {
	if every <= 0 || s.tokens.GuestExpiry <= 0 {
		s.log.Info("guest cleanup disabled")
		return
	}
	utils.RunEvery(ctx, every, func(ctx context.Context) {
		if _, err := s.PurgeGuests(ctx); err != nil && ctx.Err() == nil {
			s.log.Warn("guest cleanup failed", "error", err)
		}
	})
}

func (s *AuthService) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *AuthService) ValidateToken(tokenStr string) (*jwt.Claims, error) {
	return jwt.ValidateToken(tokenStr, s.tokens.Secret)
}

func (s *AuthService) issue(user *domain.User) (*TokenResponse, error) {
	expiry := s.tokens.Expiry
	if user.IsGuest {
		expiry = s.tokens.GuestExpiry
	}
	token, err := jwt.GenerateToken(s.tokens.Secret, expiry, session.Session{
		UserID: user.ID,
		Role:   string(user.Role),
		Guest:  user.IsGuest,
	})
	if err != nil {
		return nil, err
	}
	return &TokenResponse{Token: token, User: user}, nil
}

func (s *AuthService) welcome(ctx context.Context, user *domain.User) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(ctx, user.ID, notificationDomain.TypeWelcome, notificationDomain.Meta{"nickname": user.Nickname})
}
