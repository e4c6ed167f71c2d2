package notify

import (
	"log/slog"
	"sync"
	"time"

	"github.com/maeumssi/maeumssi/internal/shared/logger"
)

const DefaultToastDuration = 2 * time.Second

// SlotState is the per-kind state of the render host.
type SlotState int

const (
	Idle SlotState = iota
	Showing
)

// Slot is what the host currently displays for one kind.
type Slot struct {
	State SlotState
	Event Event
}

// Snapshot is the full host state after a transition.
type Snapshot struct {
	slots [kindCount]Slot
}

func (s Snapshot) Slot(k Kind) Slot {
	return s.slots[k]
}

func (s Snapshot) Showing(k Kind) bool {
	return s.slots[k].State == Showing
}

type ProviderOptions struct {
	// ToastDuration defaults to DefaultToastDuration.
	ToastDuration time.Duration
	// OnChange runs after every transition, outside the provider's lock.
	OnChange func(Snapshot)
	Logger   *slog.Logger
}

type stopper interface {
	Stop() bool
}

// Provider is the single render host for bus events. It shows at most one
// event per kind; a newer event of a kind replaces the displayed one.
type Provider struct {
	bus      *Bus
	toastTTL time.Duration
	onChange func(Snapshot)
	logger   *slog.Logger

	// after is replaced in tests.
	after func(time.Duration, func()) stopper

	mu          sync.Mutex
	slots       [kindCount]Slot
	toastTimer  stopper
	closed      bool
	unsubscribe func()
}

// NewProvider subscribes a host to bus. Call Close to detach it.
func NewProvider(bus *Bus, opts ProviderOptions) *Provider {
	ttl := opts.ToastDuration
	if ttl <= 0 {
		ttl = DefaultToastDuration
	}
	p := &Provider{
		bus:      bus,
		toastTTL: ttl,
		onChange: opts.OnChange,
		logger:   logger.OrDiscard(opts.Logger),
		after: func(d time.Duration, f func()) stopper {
			return time.AfterFunc(d, f)
		},
	}
	p.unsubscribe = bus.Subscribe(p.handle)
	return p
}

// Snapshot returns the current host state.
func (p *Provider) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Snapshot{slots: p.slots}
}

func (p *Provider) handle(ev Event) {
	k := ev.Kind()

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	prev := p.slots[k]
	if ev.Hidden() {
		if prev.State == Idle {
			p.mu.Unlock()
			return
		}
		p.slots[k] = Slot{}
		if k == KindToast {
			p.stopToastTimerLocked()
		}
	} else {
		p.slots[k] = Slot{State: Showing, Event: ev}
		if k == KindToast {
			p.stopToastTimerLocked()
			id := ev.ID
			p.toastTimer = p.after(p.toastTTL, func() { p.expireToast(id) })
		}
	}
	snap := Snapshot{slots: p.slots}
	p.mu.Unlock()

	if prev.State == Showing {
		p.bus.discard(prev.Event.ID)
	}
	p.logger.Debug("notify slot updated", "kind", k.String(), "id", ev.ID, "hidden", ev.Hidden())
	p.notify(snap)
}

func (p *Provider) expireToast(id string) {
	p.mu.Lock()
	if p.closed || p.slots[KindToast].State != Showing || p.slots[KindToast].Event.ID != id {
		p.mu.Unlock()
		return
	}
	p.slots[KindToast] = Slot{}
	p.toastTimer = nil
	snap := Snapshot{slots: p.slots}
	p.mu.Unlock()

	p.bus.DismissToast(id)
	p.notify(snap)
}

// DismissToast closes the displayed toast before it expires.
func (p *Provider) DismissToast() {
	if id, ok := p.clear(KindToast); ok {
		p.bus.DismissToast(id)
		p.notify(p.Snapshot())
	}
}

// DismissBanner closes the displayed banner.
func (p *Provider) DismissBanner() {
	if id, ok := p.clear(KindBanner); ok {
		p.bus.DismissBanner(id)
		p.notify(p.Snapshot())
	}
}

// ConfirmModal closes the displayed modal with a positive decision.
func (p *Provider) ConfirmModal() {
	p.closeModal(true)
}

// CancelModal closes the displayed modal with a negative decision.
func (p *Provider) CancelModal() {
	p.closeModal(false)
}

func (p *Provider) closeModal(confirmed bool) {
	if id, ok := p.clear(KindModal); ok {
		p.bus.CloseModal(id, confirmed)
		p.notify(p.Snapshot())
	}
}

func (p *Provider) clear(k Kind) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed || p.slots[k].State != Showing {
		return "", false
	}
	id := p.slots[k].Event.ID
	p.slots[k] = Slot{}
	if k == KindToast {
		p.stopToastTimerLocked()
	}
	return id, true
}

// Close detaches the host from the bus and stops its timer.
func (p *Provider) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.stopToastTimerLocked()
	p.mu.Unlock()

	p.unsubscribe()
}

func (p *Provider) stopToastTimerLocked() {
	if p.toastTimer != nil {
		p.toastTimer.Stop()
		p.toastTimer = nil
	}
}

func (p *Provider) notify(s Snapshot) {
	if p.onChange != nil {
		p.onChange(s)
	}
}
