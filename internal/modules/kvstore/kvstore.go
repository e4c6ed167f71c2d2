// Package kvstore is best-effort key/value storage. Callers never see a
// storage error: after the first failure of the primary backend the store
// keeps working from memory for the rest of the process lifetime.
package kvstore

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/maeumssi/maeumssi/internal/shared/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var fallbacks = promauto.NewCounter(prometheus.CounterOpts{
	Name: "kvstore_fallbacks_total",
	Help: "Times a SafeStore switched from its primary backend to memory",
})

// Backend is the primary storage behind a SafeStore.
type Backend interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

type SafeStore struct {
	primary  Backend
	memory   *MemoryBackend
	degraded atomic.Bool
	once     sync.Once
	log      *slog.Logger
}

// New wraps primary. A nil primary means memory only.
func New(primary Backend, log *slog.Logger) *SafeStore {
	s := &SafeStore{
		primary: primary,
		memory:  NewMemoryBackend(),
		log:     logger.OrDiscard(log).With("component", "kvstore"),
	}
	if primary == nil {
		s.degraded.Store(true)
	}
	return s
}

// Degraded reports whether the store is serving from memory.
func (s *SafeStore) Degraded() bool {
	return s.degraded.Load()
}

func (s *SafeStore) GetItem(ctx context.Context, key string) (string, bool) {
	if !s.degraded.Load() {
		v, ok, err := s.primary.Get(ctx, key)
		if err == nil {
			return v, ok
		}
		s.degrade("get", key, err)
	}
	v, ok, _ := s.memory.Get(ctx, key)
	return v, ok
}

func (s *SafeStore) SetItem(ctx context.Context, key, value string) {
	if !s.degraded.Load() {
		err := s.primary.Set(ctx, key, value)
		if err == nil {
			return
		}
		s.degrade("set", key, err)
	}
	_ = s.memory.Set(ctx, key, value)
}

func (s *SafeStore) RemoveItem(ctx context.Context, key string) {
	if !s.degraded.Load() {
		err := s.primary.Remove(ctx, key)
		if err == nil {
			return
		}
		s.degrade("remove", key, err)
	}
	_ = s.memory.Remove(ctx, key)
}

func (s *SafeStore) degrade(op, key string, err error) {
	s.once.Do(func() {
		s.degraded.Store(true)
		fallbacks.Inc()
		s.log.Warn("primary storage failed, using memory from now on", "op", op, "key", key, "error", err)
	})
}

// MemoryBackend is a map guarded by a mutex. It never fails.
type MemoryBackend struct {
	mu sync.RWMutex
	m  map[string]string
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{m: make(map[string]string)}
}

func (b *MemoryBackend) Get(_ context.Context, key string) (string, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	v, ok := b.m[key]
	return v, ok, nil
}

func (b *MemoryBackend) Set(_ context.Context, key, value string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.m[key] = value
	return nil
}

func (b *MemoryBackend) Remove(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.m, key)
	return nil
}
