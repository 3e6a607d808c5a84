package session

import (
	"context"

	"github.com/felixgeelhaar/trainer/internal/domain"
)

// NopPublisher discards events
type NopPublisher struct{}

// Publish implements Publisher
func (NopPublisher) Publish(context.Context, domain.Event) error { return nil }

// DispatcherPublisher forwards events to an in-process dispatcher
type DispatcherPublisher struct {
	dispatcher *domain.EventDispatcher
}

// NewDispatcherPublisher wraps d as a Publisher
func NewDispatcherPublisher(d *domain.EventDispatcher) *DispatcherPublisher {
	return &DispatcherPublisher{dispatcher: d}
}

// Publish implements Publisher
func (p *DispatcherPublisher) Publish(_ context.Context, event domain.Event) error {
	p.dispatcher.Publish(event)
	return nil
}

// MultiPublisher fans events out to several publishers.
// Every publisher is called; the first error is returned.
type MultiPublisher []Publisher

// Publish implements Publisher
func (m MultiPublisher) Publish(ctx context.Context, event domain.Event) error {
	var first error
	for _, p := range m {
		if err := p.Publish(ctx, event); err != nil && first == nil {
			first = err
		}
	}
	return first
}
