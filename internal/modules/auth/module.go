package auth

import (
	"context"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/maeumssi/maeumssi/internal/modules/auth/application"
	"github.com/maeumssi/maeumssi/internal/modules/auth/infrastructure/persistence/postgres"
	auth_http "github.com/maeumssi/maeumssi/internal/modules/auth/interfaces/http"
)

// Options carries what the auth module needs from its neighbours.
type Options struct {
	Tokens         application.TokenConfig
	GoogleClientID string

	// GuestPurgeInterval paces the deletion of expired guest accounts.
	GuestPurgeInterval time.Duration

	Notifier application.Notifier
	Files    auth_http.FileService
	Logger   *slog.Logger
}

// Module owns accounts, token issuing and the /auth and /me endpoints.
type Module struct {
	service    *application.AuthService
	handler    *auth_http.AuthHandler
	guestPurge time.Duration
}

func NewModule(db *sqlx.DB, opts Options) *Module {
	service := application.NewAuthService(postgres.NewUserRepository(db), opts.Tokens, opts.Notifier, opts.Logger)
	return &Module{
		service:    service,
		handler:    auth_http.NewAuthHandler(service, opts.Files, opts.GoogleClientID, opts.Logger),
		guestPurge: opts.GuestPurgeInterval,
	}
}

// Start runs the guest cleanup loop until ctx is done.
func (m *Module) Start(ctx context.Context) {
	go m.service.RunGuestCleanup(ctx, m.guestPurge)
}

func (m *Module) Service() *application.AuthService {
	return m.service
}

func (m *Module) HTTPHandler() *auth_http.AuthHandler {
	return m.handler
}
