package filestorage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/maeumssi/maeumssi/internal/modules/filestorage/application"
	"github.com/maeumssi/maeumssi/internal/modules/filestorage/domain"
	"github.com/maeumssi/maeumssi/internal/modules/filestorage/infrastructure/local"
	"github.com/maeumssi/maeumssi/internal/modules/filestorage/infrastructure/s3"
	"github.com/maeumssi/maeumssi/internal/shared/infrastructure/config"
	"github.com/maeumssi/maeumssi/internal/shared/logger"
)

// Module owns the object store behind share cards and avatars.
type Module struct {
	service *application.FileService
	local   bool
}

// NewModule opens S3 (or MinIO) when USE_S3 is set and a local directory
// otherwise.
func NewModule(ctx context.Context, cfg config.FileStorageConfig, log *slog.Logger) (*Module, error) {
	store, err := open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	log = logger.OrDiscard(log)
	if cfg.UseS3 {
		log.Info("file storage ready", "backend", "s3", "bucket", cfg.S3BucketName, "endpoint", cfg.S3Endpoint)
	} else {
		log.Info("file storage ready", "backend", "local", "path", cfg.LocalPath)
	}

	return &Module{
		service: application.NewFileService(store),
		local:   !cfg.UseS3,
	}, nil
}

func open(ctx context.Context, cfg config.FileStorageConfig) (domain.Store, error) {
	if !cfg.UseS3 {
		store, err := local.New(cfg.LocalPath, cfg.LocalBaseURL)
		if err != nil {
			return nil, fmt.Errorf("open local storage: %w", err)
		}
		return store, nil
	}

	store, err := s3.New(ctx, s3.Config{
		Bucket:         cfg.S3BucketName,
		Region:         cfg.S3Region,
		Endpoint:       cfg.S3Endpoint,
		PublicEndpoint: cfg.S3PublicEndpoint,
		AccessKey:      cfg.S3AccessKey,
		SecretKey:      cfg.S3SecretKey,
		UseSSL:         cfg.S3UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("open s3 storage: %w", err)
	}
	return store, nil
}

func (m *Module) Service() *application.FileService {
	return m.service
}

// ServesLocally reports whether the gateway has to serve uploaded files.
func (m *Module) ServesLocally() bool {
	return m.local
}
