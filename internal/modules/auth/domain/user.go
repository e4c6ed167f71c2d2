package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type UserRole string

const (
	RoleMember UserRole = "member"
	RoleGuest  UserRole = "guest"
)

// User is an account. Guest accounts have no email or password and are
// replaced when the person signs up.
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Email        *string   `json:"email,omitempty" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Nickname     string    `json:"nickname" db:"nickname"`
	Role         UserRole  `json:"role" db:"role"`
	IsGuest      bool      `json:"is_guest" db:"is_guest"`
	AvatarURL    *string   `json:"avatar_url,omitempty" db:"avatar_url"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// UserRepository stores accounts. Lookups report ErrUserNotFound for
// unknown users.
type UserRepository interface {
	// Create fails with ErrUserAlreadyExists when the email is taken.
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)

	// DeleteGuestsBefore removes guest accounts created before cutoff,
	// together with their notifications, and returns how many went.
	DeleteGuestsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
