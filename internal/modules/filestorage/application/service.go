package application

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/maeumssi/maeumssi/internal/modules/filestorage/domain"
)

// FileService names uploads and hands out links for a Store.
type FileService struct {
	store domain.Store
	newID func() uuid.UUID
}

func NewFileService(store domain.Store) *FileService {
	return &FileService{store: store, newID: uuid.New}
}

// UploadBytes stores data as folder/<random id><ext>.
func (s *FileService) UploadBytes(ctx context.Context, folder, ext string, data []byte, contentType string) (*domain.File, error) {
	key := path.Join(folder, s.newID().String()+ext)
	url, err := s.store.Put(ctx, key, bytes.NewReader(data), contentType)
	if err != nil {
		return nil, fmt.Errorf("upload %s: %w", key, err)
	}
	return &domain.File{
		Key:         key,
		URL:         url,
		ContentType: contentType,
		Size:        int64(len(data)),
	}, nil
}

func (s *FileService) SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	return s.store.SignedURL(ctx, key, ttl)
}

func (s *FileService) DownloadURL(ctx context.Context, key, filename string, ttl time.Duration) (string, error) {
	return s.store.DownloadURL(ctx, key, filename, ttl)
}

// SignStoredURL re-signs a URL previously returned by an upload. URLs that
// belong to another host are returned unchanged.
func (s *FileService) SignStoredURL(ctx context.Context, rawURL string, ttl time.Duration) (string, error) {
	key, err := s.store.KeyFromURL(rawURL)
	if err != nil {
		return rawURL, nil
	}
	return s.store.SignedURL(ctx, key, ttl)
}

func (s *FileService) Delete(ctx context.Context, key string) error {
	return s.store.Remove(ctx, key)
}
