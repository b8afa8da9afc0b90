package testutil

import (
	"context"
	"sync"

	"github.com/inmoval/billing/internal/publisher"
	"github.com/inmoval/billing/internal/types"
)

// InMemoryEventPublisher records published webhook events for assertions.
type InMemoryEventPublisher struct {
	mu     sync.RWMutex
	events []*types.WebhookEvent
}

var _ publisher.EventPublisher = (*InMemoryEventPublisher)(nil)

// NewInMemoryEventPublisher creates a new in-memory event publisher
func NewInMemoryEventPublisher() *InMemoryEventPublisher {
	return &InMemoryEventPublisher{
		events: make([]*types.WebhookEvent, 0),
	}
}

func (p *InMemoryEventPublisher) Publish(ctx context.Context, event *types.WebhookEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *InMemoryEventPublisher) Close() error {
	return nil
}

// Events returns a snapshot of everything published so far.
func (p *InMemoryEventPublisher) Events() []*types.WebhookEvent {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]*types.WebhookEvent, len(p.events))
	copy(out, p.events)
	return out
}

// EventsByName filters recorded events by event name.
func (p *InMemoryEventPublisher) EventsByName(name string) []*types.WebhookEvent {
	p.mu.RLock()
	defer p.mu.RUnlock()
	var out []*types.WebhookEvent
	for _, e := range p.events {
		if e.EventName == name {
			out = append(out, e)
		}
	}
	return out
}
