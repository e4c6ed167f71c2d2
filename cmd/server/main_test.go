package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/maeumssi/maeumssi/internal/modules/kvstore"
	"github.com/maeumssi/maeumssi/internal/shared/infrastructure/config"
	"github.com/maeumssi/maeumssi/internal/shared/infrastructure/database"
	"github.com/maeumssi/maeumssi/internal/shared/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStore_FallsBackToMemory(t *testing.T) {
	ctx := context.Background()
	store, closeStore := newStore(ctx, database.RedisConfig{Host: "127.0.0.1", Port: "1"}, logger.Discard())
	defer closeStore()

	store.SetItem(ctx, "k", "v")
	v, ok := store.GetItem(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, "v", v)
}

func TestBuildServer_Routes(t *testing.T) {
	cfg := config.Config{
		Server: config.ServerConfig{Port: "0", AllowedOrigins: "http://localhost:5173"},
		JWT:    config.JWTConfig{Secret: "secret"},
		FileStorage: config.FileStorageConfig{
			LocalPath:    t.TempDir(),
			LocalBaseURL: "http://localhost:8080/uploads",
		},
	}

	server, err := buildServer(context.Background(), cfg, &sqlx.DB{}, kvstore.New(nil, nil), logger.Discard())
	require.NoError(t, err)
	require.NotNil(t, server)

	h := server.Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	req := httptest.NewRequest(http.MethodOptions, "/notifications", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/notifications", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMigrationConfig(t *testing.T) {
	cfg := config.Config{Database: database.PostgresConfig{Host: "db", Port: "5432", User: "maeum", DBName: "maeumssi"}}

	mc := migrationConfig(cfg, nil)
	assert.NotNil(t, mc.Source)
	assert.Empty(t, mc.Dir)
	assert.Equal(t, cfg.Database.URL(), mc.DatabaseURL)

	cfg.Server.MigrationsPath = "file:///srv/migrations"
	mc = migrationConfig(cfg, nil)
	assert.Nil(t, mc.Source)
	assert.Equal(t, "file:///srv/migrations", mc.Dir)
}
