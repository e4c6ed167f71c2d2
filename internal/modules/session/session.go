// Package session describes who is using the app right now: nobody yet
// known, nobody, a guest, or a signed-in member.
package session

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Session is an authenticated identity. Guests carry a user id too, but are
// not allowed to perform write actions.
type Session struct {
	UserID uuid.UUID
	Role   string
	Guest  bool
}

// State separates "not resolved yet" (Initialized == false) from "resolved
// and absent" (Initialized == true, Session == nil).
type State struct {
	Session     *Session
	Initialized bool
}

// Present reports whether a session exists, guest or not.
func (s State) Present() bool {
	return s.Session != nil
}

// Guest reports whether the current session is a guest session.
func (s State) Guest() bool {
	return s.Session != nil && s.Session.Guest
}

// UserID returns the session's user or uuid.Nil.
func (s State) UserID() uuid.UUID {
	if s.Session == nil {
		return uuid.Nil
	}
	return s.Session.UserID
}

// Source exposes the current session state. It is read-only to consumers.
type Source interface {
	State() State
}

// Holder is a Source whose state is written by the auth flow of a client.
type Holder struct {
	mu    sync.RWMutex
	state State
	subs  map[int]func(State)
	next  int
}

func NewHolder() *Holder {
	return &Holder{subs: make(map[int]func(State))}
}

func (h *Holder) State() State {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.state
}

// SignIn marks the state initialized with the given session.
func (h *Holder) SignIn(s Session) {
	h.set(State{Session: &s, Initialized: true})
}

// SignOut marks the state initialized with no session.
func (h *Holder) SignOut() {
	h.set(State{Initialized: true})
}

// OnChange registers fn to run after each state change.
func (h *Holder) OnChange(fn func(State)) (cancel func()) {
	h.mu.Lock()
	id := h.next
	h.next++
	h.subs[id] = fn
	h.mu.Unlock()

	return func() {
		h.mu.Lock()
		delete(h.subs, id)
		h.mu.Unlock()
	}
}

func (h *Holder) set(st State) {
	h.mu.Lock()
	h.state = st
	subs := make([]func(State), 0, len(h.subs))
	for _, fn := range h.subs {
		subs = append(subs, fn)
	}
	h.mu.Unlock()

	for _, fn := range subs {
		fn(st)
	}
}

type contextKey struct{}

// WithState stores a resolved request state in ctx.
func WithState(ctx context.Context, st State) context.Context {
	return context.WithValue(ctx, contextKey{}, st)
}

// FromContext returns the state stored by WithState. A context without one
// is treated as resolved and anonymous.
func FromContext(ctx context.Context) State {
	if st, ok := ctx.Value(contextKey{}).(State); ok {
		return st
	}
	return State{Initialized: true}
}

// ContextSource adapts a request context to Source.
type ContextSource struct {
	Ctx context.Context
}

func (c ContextSource) State() State {
	return FromContext(c.Ctx)
}
