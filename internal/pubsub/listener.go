package pubsub

import "context"

// Listener pulls events from a broker subscription one at a time.
type Listener[T any] struct {
	ch <-chan Event[T]
}

// NewListener subscribes to broker for as long as ctx lives, optionally limited
// to the given event types.
func NewListener[T any](ctx context.Context, broker Subscriber[T], types ...EventType) *Listener[T] {
	return &Listener[T]{ch: broker.Subscribe(ctx, types...)}
}

// Next blocks until an event arrives. ok is false once ctx is done or the
// subscription has ended.
func (l *Listener[T]) Next(ctx context.Context) (Event[T], bool) {
	select {
	case <-ctx.Done():
		return Event[T]{}, false
	case event, ok := <-l.ch:
		return event, ok
	}
}

// Drain calls fn for every event until the subscription ends.
func (l *Listener[T]) Drain(fn func(Event[T])) {
	for event := range l.ch {
		fn(event)
	}
}
