package center

import (
	"context"
	"time"
)

// pollLoop runs fetch on every tick and on every trigger until stopped.
type pollLoop struct {
	interval  time.Duration
	triggerCh chan struct{}
	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}
}

func newPollLoop(interval time.Duration) *pollLoop {
	ctx, cancel := context.WithCancel(context.Background())
	return &pollLoop{
		interval:  interval,
		triggerCh: make(chan struct{}, 1),
		ctx:       ctx,
		cancel:    cancel,
		done:      make(chan struct{}),
	}
}

func (p *pollLoop) run(fetch func(ctx context.Context)) {
	defer close(p.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
		case <-p.triggerCh:
		}
		ctx, cancel := context.WithTimeout(p.ctx, fetchTimeout)
		fetch(ctx)
		cancel()
	}
}

// trigger requests an immediate fetch; requests made while one is pending
// collapse into it.
func (p *pollLoop) trigger() {
	select {
	case p.triggerCh <- struct{}{}:
	default:
	}
}

// stop cancels any in-flight fetch and waits for the loop to exit.
func (p *pollLoop) stop() {
	p.cancel()
	<-p.done
}
