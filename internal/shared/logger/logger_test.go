package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_ProductionWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	l := newWithWriter("production", &buf)

	l.Info("notification pushed", "user_id", "u1")
	l.Debug("hidden")

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "notification pushed", line["msg"])
	assert.Equal(t, "u1", line["user_id"])
}

func TestNew_DevelopmentWritesTextAtDebug(t *testing.T) {
	var buf bytes.Buffer
	l := newWithWriter("development", &buf)

	l.Debug("poll tick")
	assert.Contains(t, buf.String(), "poll tick")
}

func TestOrDiscard(t *testing.T) {
	assert.NotNil(t, OrDiscard(nil))
	l := Discard()
	assert.Same(t, l, OrDiscard(l))
}
