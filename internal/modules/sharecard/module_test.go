package sharecard

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	fileapp "github.com/maeumssi/maeumssi/internal/modules/filestorage/application"
	"github.com/maeumssi/maeumssi/internal/modules/filestorage/infrastructure/local"
	"github.com/maeumssi/maeumssi/internal/modules/sharecard/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModule_RendersToLocalStorage(t *testing.T) {
	storage, err := local.New(t.TempDir(), "http://localhost:8080/uploads")
	require.NoError(t, err)

	m := NewModule(fileapp.NewFileService(storage), nil, time.Hour, nil)
	require.NotNil(t, m.HTTPHandler())

	card, err := m.Service().Create(context.Background(), uuid.New(), domain.Request{Flower: "장미", StreakDays: 31})
	require.NoError(t, err)
	assert.Equal(t, domain.StageFullBloom, card.Stage)
	assert.Equal(t, "http://localhost:8080/uploads/"+card.Key, card.URL)
}
