package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	MaxAttempts     = 5
	LockoutDuration = 15 * time.Minute
)

var ErrPINLocked = errors.New("too many wrong pins, try again later")

// Attempts tracks consecutive wrong PINs for one user.
type Attempts struct {
	Failures    int
	LockedUntil time.Time
}

// AttemptsKey is the key-value key holding a user's failure counter.
func AttemptsKey(userID uuid.UUID) string {
	return "pin_attempts:" + userID.String()
}

func (a Attempts) Locked(now time.Time) bool {
	return now.Before(a.LockedUntil)
}

// Fail records one wrong PIN. The MaxAttempts-th failure locks verification
// for LockoutDuration; a failure after an expired lockout starts over.
func (a Attempts) Fail(now time.Time) Attempts {
	if !a.LockedUntil.IsZero() && !a.Locked(now) {
		a = Attempts{}
	}
	a.Failures++
	if a.Failures >= MaxAttempts {
		a.LockedUntil = now.Add(LockoutDuration)
	}
	return a
}

// String encodes a as "<failures>:<locked-until unix seconds>".
func (a Attempts) String() string {
	var until int64
	if !a.LockedUntil.IsZero() {
		until = a.LockedUntil.Unix()
	}
	return fmt.Sprintf("%d:%d", a.Failures, until)
}

// ParseAttempts decodes String output. Garbage decodes as no failures.
func ParseAttempts(s string) Attempts {
	var failures int
	var until int64
	if _, err := fmt.Sscanf(s, "%d:%d", &failures, &until); err != nil || failures < 0 {
		return Attempts{}
	}
	a := Attempts{Failures: failures}
	if until > 0 {
		a.LockedUntil = time.Unix(until, 0)
	}
	return a
}
