package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	fileDomain "github.com/maeumssi/maeumssi/internal/modules/filestorage/domain"
	notificationDomain "github.com/maeumssi/maeumssi/internal/modules/notification/domain"
	"github.com/maeumssi/maeumssi/internal/modules/sharecard/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFiles struct {
	uploadErr  error
	signErr    error
	uploaded   []byte
	folder     string
	signedKey  string
	signedName string
	expiry     time.Duration
	deleted    []string
}

func (f *fakeFiles) UploadBytes(_ context.Context, folder, ext string, data []byte, ct string) (*fileDomain.File, error) {
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	f.uploaded, f.folder = data, folder
	key := folder + "/card" + ext
	return &fileDomain.File{Key: key, URL: "http://store/" + key, ContentType: ct, Size: int64(len(data))}, nil
}

func (f *fakeFiles) DownloadURL(_ context.Context, key, filename string, exp time.Duration) (string, error) {
	if f.signErr != nil {
		return "", f.signErr
	}
	f.signedKey, f.signedName, f.expiry = key, filename, exp
	return "http://signed/" + key, nil
}

func (f *fakeFiles) Delete(_ context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	return nil
}

type notifierSpy struct {
	calls []notificationDomain.Type
	metas []notificationDomain.Meta
}

func (n *notifierSpy) Notify(_ context.Context, _ uuid.UUID, t notificationDomain.Type, meta notificationDomain.Meta) {
	n.calls = append(n.calls, t)
	n.metas = append(n.metas, meta)
}

func newTestService(files *fakeFiles, spy *notifierSpy) *Service {
	svc := NewService(files, spy, time.Hour, nil)
	svc.now = func() time.Time { return time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC) }
	svc.render = func(domain.Request) ([]byte, error) { return []byte("png"), nil }
	return svc
}

func TestService_Create(t *testing.T) {
	files := &fakeFiles{}
	spy := &notifierSpy{}
	svc := newTestService(files, spy)

	card, err := svc.Create(context.Background(), uuid.New(), domain.Request{Flower: " 튤립 ", StreakDays: 15})
	require.NoError(t, err)

	assert.Equal(t, "cards/card.png", card.Key)
	assert.Equal(t, "http://signed/cards/card.png", card.URL)
	assert.Equal(t, "튤립", card.Flower)
	assert.Equal(t, domain.StageBloom, card.Stage)
	assert.Equal(t, time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC), card.ExpiresAt)
	assert.Equal(t, []byte("png"), files.uploaded)
	assert.Equal(t, "cards", files.folder)
	assert.Equal(t, "maeumssi-bloom.png", files.signedName)
	assert.Equal(t, time.Hour, files.expiry)

	require.Equal(t, []notificationDomain.Type{notificationDomain.TypeShareCardReady}, spy.calls)
	assert.Equal(t, "cards/card.png", spy.metas[0]["key"])
}

func TestService_CreateFailures(t *testing.T) {
	spy := &notifierSpy{}

	_, err := newTestService(&fakeFiles{}, spy).Create(context.Background(), uuid.New(), domain.Request{StreakDays: -1})
	require.ErrorIs(t, err, domain.ErrInvalidCard)

	_, err = newTestService(&fakeFiles{uploadErr: errors.New("s3 down")}, spy).Create(context.Background(), uuid.New(), domain.Request{})
	require.ErrorContains(t, err, "store share card")

	unsigned := &fakeFiles{signErr: errors.New("sign")}
	_, err = newTestService(unsigned, spy).Create(context.Background(), uuid.New(), domain.Request{})
	require.ErrorContains(t, err, "sign share card")
	assert.Equal(t, []string{"cards/card.png"}, unsigned.deleted)

	svc := newTestService(&fakeFiles{}, spy)
	svc.render = func(domain.Request) ([]byte, error) { return nil, errors.New("encode") }
	_, err = svc.Create(context.Background(), uuid.New(), domain.Request{})
	require.Error(t, err)

	assert.Empty(t, spy.calls)
}

func TestNewService_DefaultExpiry(t *testing.T) {
	svc := NewService(&fakeFiles{}, nil, 0, nil)
	assert.Equal(t, DefaultExpiry, svc.expiry)

	_, err := svc.Create(context.Background(), uuid.New(), domain.Request{Flower: "수국", StreakDays: 3})
	require.NoError(t, err)
}
