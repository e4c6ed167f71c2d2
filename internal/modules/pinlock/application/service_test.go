package application

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/maeumssi/maeumssi/internal/modules/kvstore"
	notificationDomain "github.com/maeumssi/maeumssi/internal/modules/notification/domain"
	"github.com/maeumssi/maeumssi/internal/modules/pinlock/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type notifierSpy struct {
	types []notificationDomain.Type
	metas []notificationDomain.Meta
}

func (n *notifierSpy) Notify(_ context.Context, _ uuid.UUID, t notificationDomain.Type, meta notificationDomain.Meta) {
	n.types = append(n.types, t)
	n.metas = append(n.metas, meta)
}

func newService(t *testing.T) (*Service, *kvstore.SafeStore, *notifierSpy) {
	t.Helper()
	store := kvstore.New(nil, nil)
	spy := &notifierSpy{}
	svc := NewService(store, spy, nil)
	svc.cost = bcrypt.MinCost
	return svc, store, spy
}

func TestService_SetVerifyClear(t *testing.T) {
	ctx := context.Background()
	svc, store, spy := newService(t)
	userID := uuid.New()

	assert.False(t, svc.Enabled(ctx, userID))
	assert.ErrorIs(t, svc.Verify(ctx, userID, "1234"), domain.ErrPINNotSet)

	require.NoError(t, svc.Set(ctx, userID, "1234", ""))
	assert.True(t, svc.Enabled(ctx, userID))

	hash, ok := store.GetItem(ctx, domain.StorageKey(userID))
	require.True(t, ok)
	assert.NotEqual(t, "1234", hash)

	assert.NoError(t, svc.Verify(ctx, userID, "1234"))
	assert.ErrorIs(t, svc.Verify(ctx, userID, "4321"), domain.ErrPINMismatch)

	assert.ErrorIs(t, svc.Clear(ctx, userID, "0000"), domain.ErrPINMismatch)
	require.NoError(t, svc.Clear(ctx, userID, "1234"))
	assert.False(t, svc.Enabled(ctx, userID))

	require.Len(t, spy.types, 2)
	assert.Equal(t, notificationDomain.TypePinLockChanged, spy.types[0])
	assert.Equal(t, "설정", spy.metas[0]["action"])
	assert.Equal(t, "해제", spy.metas[1]["action"])
}

func TestService_ChangeRequiresCurrentPIN(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)
	userID := uuid.New()

	require.NoError(t, svc.Set(ctx, userID, "1234", ""))
	assert.ErrorIs(t, svc.Set(ctx, userID, "5678", ""), domain.ErrPINMismatch)
	assert.ErrorIs(t, svc.Set(ctx, userID, "5678", "9999"), domain.ErrPINMismatch)
	require.NoError(t, svc.Set(ctx, userID, "5678", "1234"))
	assert.NoError(t, svc.Verify(ctx, userID, "5678"))
}

func TestService_RejectsMalformedPIN(t *testing.T) {
	svc, _, spy := newService(t)
	assert.ErrorIs(t, svc.Set(context.Background(), uuid.New(), "12", ""), domain.ErrInvalidPIN)
	assert.Empty(t, spy.types)
}

func TestService_PINsArePerUser(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)
	a, b := uuid.New(), uuid.New()

	require.NoError(t, svc.Set(ctx, a, "1111", ""))
	assert.ErrorIs(t, svc.Verify(ctx, b, "1111"), domain.ErrPINNotSet)
}

func TestService_NilNotifier(t *testing.T) {
	svc := NewService(kvstore.New(nil, nil), nil, nil)
	svc.cost = bcrypt.MinCost
	assert.NoError(t, svc.Set(context.Background(), uuid.New(), "1234", ""))
}

func TestService_LocksOutAfterRepeatedFailures(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newService(t)
	now := time.Unix(1_700_000_000, 0)
	svc.now = func() time.Time { return now }
	userID := uuid.New()
	require.NoError(t, svc.Set(ctx, userID, "1234", ""))

	for i := 1; i < domain.MaxAttempts; i++ {
		assert.ErrorIs(t, svc.Verify(ctx, userID, "0000"), domain.ErrPINMismatch, "attempt %d", i)
	}
	assert.ErrorIs(t, svc.Verify(ctx, userID, "0000"), domain.ErrPINLocked)
	assert.ErrorIs(t, svc.Verify(ctx, userID, "1234"), domain.ErrPINLocked, "right pin is refused while locked")
	assert.ErrorIs(t, svc.Clear(ctx, userID, "1234"), domain.ErrPINLocked)

	now = now.Add(domain.LockoutDuration)
	require.NoError(t, svc.Verify(ctx, userID, "1234"))
	_, ok := store.GetItem(ctx, domain.AttemptsKey(userID))
	assert.False(t, ok, "success clears the counter")
}

func TestService_SuccessResetsFailures(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)
	userID := uuid.New()
	require.NoError(t, svc.Set(ctx, userID, "1234", ""))

	for range domain.MaxAttempts - 1 {
		assert.ErrorIs(t, svc.Verify(ctx, userID, "0000"), domain.ErrPINMismatch)
	}
	require.NoError(t, svc.Verify(ctx, userID, "1234"))
	assert.ErrorIs(t, svc.Verify(ctx, userID, "0000"), domain.ErrPINMismatch)
}
