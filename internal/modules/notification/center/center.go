// Package center keeps a user's notification list in memory, refreshed on
// an interval, on demand and after every mutation.
package center

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/maeumssi/maeumssi/internal/modules/notification/domain"
	"github.com/maeumssi/maeumssi/internal/shared/logger"
)

const (
	DefaultPollInterval = 60 * time.Second
	DefaultPageSize     = 50
	// MaxPageSize matches the server's cap on the list endpoint's limit.
	MaxPageSize         = 100

	fetchTimeout = 30 * time.Second
)

var ErrNoUser = errors.New("notification center has no user")

// Backend is the persistence the center reads from and mutates through.
type Backend interface {
	GetUserNotifications(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.Notification, error)
	Create(ctx context.Context, userID uuid.UUID, t domain.Type, meta domain.Meta) (*domain.Notification, error)
	MarkAsRead(ctx context.Context, notificationID, userID uuid.UUID) error
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) error
}

type Options struct {
	PollInterval time.Duration
	PageSize     int
	// Hook, when set, is wired to this center while it has a user.
	Hook     *RefreshHook
	OnChange func(Snapshot)
	Logger   *slog.Logger
}

type Snapshot struct {
	UserID     uuid.UUID
	Items      []domain.Notification
	BadgeCount int
}

type Center struct {
	backend  Backend
	interval time.Duration
	pageSize int
	hook     *RefreshHook
	onChange func(Snapshot)
	log      *slog.Logger

	mu     sync.Mutex
	userID uuid.UUID
	items  []domain.Notification
	// issued is the token of the most recently started fetch, applied the
	// token of the response currently shown. Responses older than applied
	// are dropped.
	issued  uint64
	applied uint64

	// epoch changes on every SetUser and Close so a slow SetUser does not
	// start polling after it has been superseded.
	epoch  uint64
	loop   *pollLoop
	unhook func()
}

func New(backend Backend, opts Options) *Center {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	opts.PageSize = min(opts.PageSize, MaxPageSize)
	return &Center{
		backend:  backend,
		interval: opts.PollInterval,
		pageSize: opts.PageSize,
		hook:     opts.Hook,
		onChange: opts.OnChange,
		log:      logger.OrDiscard(opts.Logger).With("component", "notification_center"),
	}
}

// SetUser switches the center to userID. The previous polling loop is torn
// down first. uuid.Nil clears the list and leaves polling off; any other id
// is fetched before SetUser returns and then polled. A failed initial fetch
// is returned but polling still starts.
func (c *Center) SetUser(ctx context.Context, userID uuid.UUID) error {
	c.detach()

	c.mu.Lock()
	c.epoch++
	epoch := c.epoch
	c.userID = userID
	c.items = nil
	c.applied = c.issued
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.notify(snap)

	if userID == uuid.Nil {
		return nil
	}

	err := c.refresh(ctx, userID)

	loop := newPollLoop(c.interval)
	c.mu.Lock()
	if c.epoch != epoch {
		// Raced with another SetUser or Close.
		c.mu.Unlock()
		loop.cancel()
		return err
	}
	c.loop = loop
	c.unhook = c.hook.install(loop.trigger)
	c.mu.Unlock()

	go loop.run(func(ctx context.Context) {
		if err := c.refresh(ctx, userID); err != nil {
			c.log.Warn("poll failed, keeping last list", "user_id", userID, "error", err)
		}
	})
	return err
}

// Close stops polling and detaches the refresh hook. The list is kept.
func (c *Center) Close() {
	c.mu.Lock()
	c.epoch++
	c.mu.Unlock()
	c.detach()
}

func (c *Center) detach() {
	c.mu.Lock()
	loop, unhook := c.loop, c.unhook
	c.loop, c.unhook = nil, nil
	c.mu.Unlock()

	if unhook != nil {
		unhook()
	}
	if loop != nil {
		loop.stop()
	}
}

func (c *Center) UserID() uuid.UUID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.userID
}

func (c *Center) Items() []domain.Notification {
	return c.Snapshot().Items
}

// BadgeCount is the number of unread records in the in-memory list.
func (c *Center) BadgeCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return domain.CountUnread(c.items)
}

func (c *Center) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Refresh fetches the list now.
func (c *Center) Refresh(ctx context.Context) error {
	userID := c.UserID()
	if userID == uuid.Nil {
		return ErrNoUser
	}
	return c.refresh(ctx, userID)
}

// MarkRead marks one record read and re-fetches the list whether or not the
// mutation succeeded. The mutation error wins over a fetch error.
func (c *Center) MarkRead(ctx context.Context, notificationID uuid.UUID) error {
	userID := c.UserID()
	if userID == uuid.Nil {
		return ErrNoUser
	}
	err := c.backend.MarkAsRead(ctx, notificationID, userID)
	return firstErr(err, c.refresh(ctx, userID))
}

func (c *Center) MarkAll(ctx context.Context) error {
	userID := c.UserID()
	if userID == uuid.Nil {
		return ErrNoUser
	}
	err := c.backend.MarkAllAsRead(ctx, userID)
	return firstErr(err, c.refresh(ctx, userID))
}

// Push creates a record of type t for the current user and re-fetches.
func (c *Center) Push(ctx context.Context, t domain.Type, meta domain.Meta) error {
	userID := c.UserID()
	if userID == uuid.Nil {
		return ErrNoUser
	}
	if _, err := c.backend.Create(ctx, userID, t, meta); err != nil {
		return err
	}
	return c.refresh(ctx, userID)
}

func (c *Center) refresh(ctx context.Context, userID uuid.UUID) error {
	c.mu.Lock()
	c.issued++
	token := c.issued
	c.mu.Unlock()

	items, err := c.fetchAll(ctx, userID)
	if err != nil {
		return err
	}

	c.mu.Lock()
	if c.userID != userID || token <= c.applied {
		c.mu.Unlock()
		c.log.Debug("dropping stale fetch", "user_id", userID, "token", token)
		return nil
	}
	c.applied = token
	c.items = items
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(snap)
	return nil
}

// fetchAll pages through the user's records until a short page comes back.
func (c *Center) fetchAll(ctx context.Context, userID uuid.UUID) ([]domain.Notification, error) {
	var items []domain.Notification
	for {
		page, err := c.backend.GetUserNotifications(ctx, userID, c.pageSize, len(items))
		if err != nil {
			return nil, err
		}
		items = append(items, page...)
		if len(page) < c.pageSize {
			return items, nil
		}
	}
}

func (c *Center) snapshotLocked() Snapshot {
	items := make([]domain.Notification, len(c.items))
	copy(items, c.items)
	return Snapshot{
		UserID:     c.userID,
		Items:      items,
		BadgeCount: domain.CountUnread(c.items),
	}
}

func (c *Center) notify(s Snapshot) {
	if c.onChange != nil {
		c.onChange(s)
	}
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
