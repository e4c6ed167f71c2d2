package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/maeumssi/maeumssi/internal/modules/filestorage/domain"
)

// Store keeps objects under a directory that the gateway serves at baseURL.
// Links are not signed, so SignedURL and DownloadURL return the plain URL.
type Store struct {
	root    string
	baseURL *url.URL
}

var _ domain.Store = (*Store)(nil)

func New(root, baseURL string) (*Store, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("local storage base url: %w", err)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("local storage root: %w", err)
	}
	return &Store{root: root, baseURL: u}, nil
}

func (s *Store) resolve(key string) (string, string, error) {
	key, err := domain.CleanKey(key)
	if err != nil {
		return "", "", err
	}
	return key, filepath.Join(s.root, filepath.FromSlash(key)), nil
}

func (s *Store) url(key string) string {
	u := *s.baseURL
	u.Path += key
	return u.String()
}

// Put writes through a temporary file so readers never see a partial object.
func (s *Store) Put(_ context.Context, key string, r io.Reader, _ string) (string, error) {
	key, dst, err := s.resolve(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("local put %s: %w", key, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".upload-*")
	if err != nil {
		return "", fmt.Errorf("local put %s: %w", key, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return "", fmt.Errorf("local put %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("local put %s: %w", key, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return "", fmt.Errorf("local put %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return "", fmt.Errorf("local put %s: %w", key, err)
	}
	return s.url(key), nil
}

// Remove succeeds for keys that are already gone.
func (s *Store) Remove(_ context.Context, key string) error {
	key, path, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("local remove %s: %w", key, err)
	}
	return nil
}

func (s *Store) SignedURL(_ context.Context, key string, _ time.Duration) (string, error) {
	key, _, err := s.resolve(key)
	if err != nil {
		return "", err
	}
	return s.url(key), nil
}

func (s *Store) DownloadURL(ctx context.Context, key, _ string, ttl time.Duration) (string, error) {
	return s.SignedURL(ctx, key, ttl)
}

func (s *Store) KeyFromURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err == nil && strings.EqualFold(u.Host, s.baseURL.Host) {
		if key, ok := strings.CutPrefix(u.Path, s.baseURL.Path); ok {
			return domain.CleanKey(key)
		}
	}
	return "", fmt.Errorf("%w: %s", domain.ErrURLMismatch, rawURL)
}
