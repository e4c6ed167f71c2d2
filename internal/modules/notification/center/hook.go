package center

import "sync"

// RefreshHook lets code that holds no reference to a Center ask it to
// re-fetch. A Center installs itself while it has a user and removes itself
// on Close or when the user is cleared. RequestRefresh with nothing
// installed does nothing.
type RefreshHook struct {
	mu  sync.Mutex
	fn  func()
	gen uint64
}

func NewRefreshHook() *RefreshHook {
	return &RefreshHook{}
}

func (h *RefreshHook) RequestRefresh() {
	if h == nil {
		return
	}
	h.mu.Lock()
	fn := h.fn
	h.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Installed reports whether a refresher is currently attached.
func (h *RefreshHook) Installed() bool {
	if h == nil {
		return false
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.fn != nil
}

// install attaches fn and returns a remover that only detaches this
// installation, not a later one.
func (h *RefreshHook) install(fn func()) func() {
	if h == nil {
		return func() {}
	}
	h.mu.Lock()
	h.gen++
	gen := h.gen
	h.fn = fn
	h.mu.Unlock()

	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if h.gen == gen {
			h.fn = nil
		}
	}
}
