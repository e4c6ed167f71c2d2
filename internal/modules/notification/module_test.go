package notification_test

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/maeumssi/maeumssi/internal/modules/notification"
	"github.com/maeumssi/maeumssi/internal/modules/notification/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestModule_CreateAndShutdown(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	m := notification.NewModule(sqlx.NewDb(sqlDB, "sqlmock"), nil)
	require.NotNil(t, m.HTTPHandler())

	mock.ExpectExec("INSERT INTO notifications").WillReturnResult(sqlmock.NewResult(0, 1))
	n, err := m.Service().Create(context.Background(), uuid.New(), domain.TypeWelcome, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.TypeWelcome, n.Type)
	require.NoError(t, mock.ExpectationsWereMet())

	m.Shutdown()
	m.Shutdown()
}
