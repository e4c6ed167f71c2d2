package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanKey(t *testing.T) {
	tests := []struct {
		key     string
		want    string
		wantErr bool
	}{
		{"cards/a.png", "cards/a.png", false},
		{"/cards/a.png", "cards/a.png", false},
		{"", "", true},
		{"../etc/passwd", "", true},
		{"cards/../../x", "", true},
		{"cards//a.png", "", true},
		{`cards\a.png`, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, err := CleanKey(tt.key)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidKey)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDownloadName(t *testing.T) {
	assert.Equal(t, DefaultDownloadName, DownloadName(""))
	assert.Equal(t, DefaultDownloadName, DownloadName(".."))
	assert.Equal(t, "card.png", DownloadName("cards/card.png"))
	assert.Equal(t, "card.png", DownloadName(`..\..\card.png`))
	assert.Equal(t, "장미.png", DownloadName("장미.png"))
}
