package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"
	"github.com/maeumssi/maeumssi/internal/gateway"
	"github.com/maeumssi/maeumssi/internal/gateway/middleware"
	"github.com/maeumssi/maeumssi/internal/modules/auth"
	"github.com/maeumssi/maeumssi/internal/modules/auth/application"
	"github.com/maeumssi/maeumssi/internal/modules/filestorage"
	"github.com/maeumssi/maeumssi/internal/modules/kvstore"
	"github.com/maeumssi/maeumssi/internal/modules/notification"
	"github.com/maeumssi/maeumssi/internal/modules/pinlock"
	"github.com/maeumssi/maeumssi/internal/modules/sharecard"
	"github.com/maeumssi/maeumssi/internal/shared/infrastructure/config"
	"github.com/maeumssi/maeumssi/internal/shared/infrastructure/database"
	"github.com/maeumssi/maeumssi/internal/shared/logger"
	"github.com/maeumssi/maeumssi/migrations"
	"github.com/maeumssi/maeumssi/pkg/migration"
)

const kvPrefix = "maeumssi:"

func main() {
	cfg := config.Load()
	log := logger.Init(cfg.Server.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	log.Info("connecting to database", "host", cfg.Database.Host, "db", cfg.Database.DBName)
	db, err := database.NewPostgresDB(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := migration.AutoMigrate(migrationConfig(cfg, log)); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	store, closeStore := newStore(ctx, cfg.Redis, log)
	defer closeStore()

	server, err := buildServer(ctx, cfg, db, store, log)
	if err != nil {
		return err
	}
	return server.Run(ctx)
}

func migrationConfig(cfg config.Config, log *slog.Logger) migration.Config {
	mc := migration.Config{Dir: cfg.Server.MigrationsPath, DatabaseURL: cfg.Database.URL(), Logger: log}
	if mc.Dir == "" {
		mc.Source = migrations.FS
	}
	return mc
}

// newStore backs the safe store with Redis when it is reachable and with
// process memory otherwise.
func newStore(ctx context.Context, cfg database.RedisConfig, log *slog.Logger) (*kvstore.SafeStore, func()) {
	client, err := database.NewRedis(ctx, cfg)
	if err != nil {
		log.Warn("redis unavailable, using in-memory storage", "addr", cfg.Addr(), "error", err)
		return kvstore.New(nil, log), func() {}
	}
	return kvstore.New(kvstore.NewRedisBackend(client, kvPrefix, 0), log), func() { client.Close() }
}

func buildServer(ctx context.Context, cfg config.Config, db *sqlx.DB, store *kvstore.SafeStore, log *slog.Logger) (*gateway.Server, error) {
	files, err := filestorage.NewModule(ctx, cfg.FileStorage, log)
	if err != nil {
		return nil, err
	}

	notifications := notification.NewModule(db, log)
	notifier := notifications.Service()
	go notifier.RunRetention(ctx, cfg.Notification.PurgeInterval, cfg.Notification.Retention)

	authModule := auth.NewModule(db, auth.Options{
		Tokens: application.TokenConfig{
			Secret:      cfg.JWT.Secret,
			Expiry:      cfg.JWT.Expiry,
			GuestExpiry: cfg.JWT.GuestExpiry,
		},
		GoogleClientID:     cfg.Google.ClientID,
		GuestPurgeInterval: cfg.JWT.GuestPurgeInterval,
		Notifier:           notifier,
		Files:              files.Service(),
		Logger:             log,
	})
	authModule.Start(ctx)
	pins := pinlock.NewModule(store, notifier, log)
	cards := sharecard.NewModule(files.Service(), notifier, cfg.FileStorage.LinkExpiry, log)

	routes := gateway.RouterConfig{
		AuthHandler:         authModule.HTTPHandler(),
		AuthMiddleware:      middleware.NewAuthMiddleware(cfg.JWT.Secret),
		NotificationHandler: notifications.HTTPHandler(),
		PinHandler:          pins.HTTPHandler(),
		ShareCardHandler:    cards.HTTPHandler(),
	}
	if files.ServesLocally() {
		routes.UploadsDir = cfg.FileStorage.LocalPath
	}

	handler := gateway.Chain(gateway.SetupRoutes(routes),
		middleware.PrometheusMiddleware,
		func(next http.Handler) http.Handler { return middleware.CORSMiddleware(next, cfg.Server.AllowedOrigins) },
	)

	server := gateway.NewServer(cfg.Server.Port, handler, log)
	server.OnShutdown(notifications.Shutdown)
	return server, nil
}
