package notify

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/maeumssi/maeumssi/internal/shared/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var eventsEmitted = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "notify_events_emitted_total",
	Help: "Transient notification events emitted on the bus.",
}, []string{"kind"})

// Listener receives every event emitted after it subscribed.
type Listener func(Event)

// Bus decouples code that wants to show feedback from the host that
// renders it. Emit is synchronous; delivery order across listeners is not
// defined.
type Bus struct {
	mu        sync.RWMutex
	listeners map[uint64]Listener
	nextSub   uint64

	// pending holds payloads whose callbacks are still owed to the caller.
	pending map[string]Payload
	seq     atomic.Uint64

	logger *slog.Logger
}

func NewBus(l *slog.Logger) *Bus {
	return &Bus{
		listeners: make(map[uint64]Listener),
		pending:   make(map[string]Payload),
		logger:    logger.OrDiscard(l),
	}
}

// Subscribe registers fn and returns a function that removes it. Calling the
// returned function more than once is harmless.
func (b *Bus) Subscribe(fn Listener) (unsubscribe func()) {
	b.mu.Lock()
	id := b.nextSub
	b.nextSub++
	b.listeners[id] = fn
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.listeners, id)
			b.mu.Unlock()
		})
	}
}

// Emit delivers p to every current listener and returns the event id. With
// no listeners the event is dropped silently.
func (b *Bus) Emit(p Payload) string {
	if p == nil {
		return ""
	}
	kind := p.Kind()
	id := fmt.Sprintf("%s-%d", kind, b.seq.Add(1))
	ev := Event{ID: id, Payload: p}

	b.mu.Lock()
	if !p.hidden() && hasCallback(p) {
		b.pending[id] = p
	}
	listeners := make([]Listener, 0, len(b.listeners))
	for _, fn := range b.listeners {
		listeners = append(listeners, fn)
	}
	b.mu.Unlock()

	eventsEmitted.WithLabelValues(kind.String()).Inc()
	b.logger.Debug("notify event emitted", "id", id, "kind", kind.String(), "listeners", len(listeners))

	for _, fn := range listeners {
		fn(ev)
	}
	return id
}

// Toast, Banner and Modal are shorthands for Emit.
func (b *Bus) Toast(t Toast) string    { return b.Emit(t) }
func (b *Bus) Banner(bn Banner) string { return b.Emit(bn) }
func (b *Bus) Modal(m Modal) string    { return b.Emit(m) }

// DismissToast tells the caller that emitted the toast that it went away.
func (b *Bus) DismissToast(id string) {
	if t, ok := b.take(id, KindToast).(Toast); ok && t.OnDismiss != nil {
		t.OnDismiss()
	}
}

// DismissBanner tells the caller that emitted the banner that it went away.
func (b *Bus) DismissBanner(id string) {
	if bn, ok := b.take(id, KindBanner).(Banner); ok && bn.OnDismiss != nil {
		bn.OnDismiss()
	}
}

// CloseModal reports the user's decision to the caller that opened the modal.
func (b *Bus) CloseModal(id string, confirmed bool) {
	m, ok := b.take(id, KindModal).(Modal)
	if !ok {
		return
	}
	if confirmed {
		if m.OnConfirm != nil {
			m.OnConfirm()
		}
		return
	}
	if m.OnCancel != nil {
		m.OnCancel()
	}
}

// discard forgets an event's callbacks without running them.
func (b *Bus) discard(id string) {
	b.mu.Lock()
	delete(b.pending, id)
	b.mu.Unlock()
}

func (b *Bus) take(id string, kind Kind) Payload {
	b.mu.Lock()
	defer b.mu.Unlock()

	p, ok := b.pending[id]
	if !ok || p.Kind() != kind {
		return nil
	}
	delete(b.pending, id)
	return p
}

func hasCallback(p Payload) bool {
	switch v := p.(type) {
	case Toast:
		return v.OnDismiss != nil
	case Banner:
		return v.OnDismiss != nil
	case Modal:
		return v.OnConfirm != nil || v.OnCancel != nil
	}
	return false
}
