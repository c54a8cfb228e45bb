// Package publisher decouples audit emission from persistence. Domain
// services call Emit; the configured store decides where events land.
package publisher

import (
	"context"
	"sync"
	"time"

	audit "nestly/pkg/platform/audit"
)

// Publisher captures structured audit events. Synchronous by default; with
// WithAsyncBuffer events flow through a channel drained by a background
// goroutine so emission never blocks the request path.
type Publisher struct {
	store audit.Store

	inbox  chan audit.Event
	done   chan struct{}
	closed sync.Once
	wg     sync.WaitGroup
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithAsyncBuffer switches the publisher to asynchronous mode with the given
// channel capacity. When the buffer is full events are dropped rather than
// blocking the caller; audit is best-effort by design on the hot path.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		p.inbox = make(chan audit.Event, size)
	}
}

func NewPublisher(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{store: store, done: make(chan struct{})}
	for _, opt := range opts {
		opt(p)
	}
	if p.inbox != nil {
		p.wg.Add(1)
		go p.drain()
	}
	return p
}

// Emit records an event, stamping the timestamp and category when unset.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.Category == "" {
		event.Category = audit.AuditEvent(event.Action).Category()
	}

	if p.inbox == nil {
		return p.store.Append(ctx, event)
	}

	select {
	case p.inbox <- event:
	default:
		// Buffer full: drop. The store must never back-pressure typing.
	}
	return nil
}

// List returns the events recorded for an agreement.
func (p *Publisher) List(ctx context.Context, agreementID string) ([]audit.Event, error) {
	return p.store.ListByAgreement(ctx, agreementID)
}

// Close drains any buffered events and stops the background worker. Safe to
// call more than once.
func (p *Publisher) Close() {
	p.closed.Do(func() {
		close(p.done)
		p.wg.Wait()
	})
}

func (p *Publisher) drain() {
	defer p.wg.Done()
	for {
		select {
		case event := <-p.inbox:
			// Persist with a background context: the originating request
			// may already be gone.
			_ = p.store.Append(context.Background(), event)
		case <-p.done:
			for {
				select {
				case event := <-p.inbox:
					_ = p.store.Append(context.Background(), event)
				default:
					return
				}
			}
		}
	}
}
