package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrUnknownType          = errors.New("unknown notification type")
)

// Meta carries per-event values such as a streak length or a flower name.
// Template text may reference them as {key}.
type Meta map[string]string

func (m Meta) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

func (m *Meta) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*m = Meta{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("meta: unsupported source %T", src)
	}
	out := Meta{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			return fmt.Errorf("meta: %w", err)
		}
	}
	*m = out
	return nil
}

// Notification is a persisted entry of the in-app notification list.
type Notification struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Type      Type      `json:"type" db:"type"`
	Icon      string    `json:"icon" db:"icon"`
	Title     string    `json:"title" db:"title"`
	Message   string    `json:"message" db:"message"`
	Category  Category  `json:"category" db:"category"`
	IsRead    bool      `json:"is_read" db:"is_read"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	Meta      Meta      `json:"meta" db:"meta"`
}

// New renders t's template with meta into an unread record for userID.
func New(userID uuid.UUID, t Type, meta Meta, now time.Time) (*Notification, error) {
	tpl, ok := t.Template()
	if !ok {
		return nil, ErrUnknownType
	}
	if meta == nil {
		meta = Meta{}
	}
	return &Notification{
		ID:        uuid.New(),
		UserID:    userID,
		Type:      t,
		Icon:      tpl.Icon,
		Title:     render(tpl.Title, meta),
		Message:   render(tpl.Message, meta),
		Category:  tpl.Category,
		IsRead:    false,
		CreatedAt: now,
		Meta:      meta,
	}, nil
}

// CountUnread counts records with IsRead == false.
func CountUnread(items []Notification) int {
	n := 0
	for _, it := range items {
		if !it.IsRead {
			n++
		}
	}
	return n
}
