package domain

import (
	"context"
	"io"
	"time"
)

// Store is an object store addressed by slash separated keys. Keys are
// passed through CleanKey before they reach the backend.
type Store interface {
	// Put writes r under key and returns the object's URL.
	Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	Remove(ctx context.Context, key string) error

	// SignedURL grants read access to key for ttl.
	SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
	// DownloadURL is SignedURL with the response forced to an attachment
	// named filename.
	DownloadURL(ctx context.Context, key, filename string, ttl time.Duration) (string, error)

	// KeyFromURL maps a URL returned by Put back to its key. URLs of other
	// stores yield ErrURLMismatch.
	KeyFromURL(rawURL string) (string, error)
}
