package auth

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/maeumssi/maeumssi/internal/modules/auth/application"
	notificationDomain "github.com/maeumssi/maeumssi/internal/modules/notification/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noopNotifier struct{}

func (noopNotifier) Notify(context.Context, uuid.UUID, notificationDomain.Type, notificationDomain.Meta) {
}

type noopFiles struct{}

func (noopFiles) SignStoredURL(_ context.Context, rawURL string, _ time.Duration) (string, error) {
	return rawURL, nil
}

func TestModule_StartPurgesGuests(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	mock.ExpectExec("DELETE FROM users WHERE is_guest").WillReturnResult(sqlmock.NewResult(0, 2))

	m := NewModule(sqlx.NewDb(sqlDB, "sqlmock"), Options{
		Tokens:             application.TokenConfig{Secret: "secret", Expiry: time.Hour, GuestExpiry: time.Hour},
		GuestPurgeInterval: 5 * time.Millisecond,
		Notifier:           noopNotifier{},
		Files:              noopFiles{},
	})
	require.NotNil(t, m.Service())
	require.NotNil(t, m.HTTPHandler())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.Start(ctx)

	assert.Eventually(t, func() bool { return mock.ExpectationsWereMet() == nil }, 2*time.Second, 5*time.Millisecond)
}
