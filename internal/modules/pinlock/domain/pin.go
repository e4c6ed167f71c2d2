package domain

import (
	"errors"

	"github.com/google/uuid"
)

const (
	MinLength = 4
	MaxLength = 6
)

var (
	ErrInvalidPIN  = errors.New("pin must be 4 to 6 digits")
	ErrPINMismatch = errors.New("pin does not match")
	ErrPINNotSet   = errors.New("pin lock is not enabled")
)

// ValidatePIN checks the format only.
func ValidatePIN(pin string) error {
	if len(pin) < MinLength || len(pin) > MaxLength {
		return ErrInvalidPIN
	}
	for i := 0; i < len(pin); i++ {
		if pin[i] < '0' || pin[i] > '9' {
			return ErrInvalidPIN
		}
	}
	return nil
}

// StorageKey is the key-value key holding a user's PIN hash.
func StorageKey(userID uuid.UUID) string {
	return "pin:" + userID.String()
}
