package pubsub

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"
	"time"
)

const defaultBufferSize = 64

type subscription[T any] struct {
	ch    chan Event[T]
	types []EventType // empty means every type
}

func (s *subscription[T]) wants(t EventType) bool {
	return len(s.types) == 0 || slices.Contains(s.types, t)
}

// Broker fans events out to subscribers. Publish never blocks: a subscriber whose
// buffer is full misses the event and the drop is counted.
type Broker[T any] struct {
	mu         sync.RWMutex
	subs       map[*subscription[T]]struct{}
	done       chan struct{}
	bufferSize int
	seq        atomic.Uint64
	dropped    atomic.Int64
}

var (
	_ Subscriber[string] = (*Broker[string])(nil)
	_ Publisher[string]  = (*Broker[string])(nil)
)

func NewBroker[T any]() *Broker[T] {
	return NewBrokerWithBuffer[T](defaultBufferSize)
}

// NewBrokerWithBuffer sets the per-subscriber buffer size.
func NewBrokerWithBuffer[T any](size int) *Broker[T] {
	return &Broker[T]{
		subs:       make(map[*subscription[T]]struct{}),
		done:       make(chan struct{}),
		bufferSize: max(size, 0),
	}
}

func (b *Broker[T]) closed() bool {
	select {
	case <-b.done:
		return true
	default:
		return false
	}
}

// Subscribe returns a channel receiving events of the given types, or of every type
// when none are given. The channel is closed when ctx ends or the broker closes.
func (b *Broker[T]) Subscribe(ctx context.Context, types ...EventType) <-chan Event[T] {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed() {
		ch := make(chan Event[T])
		close(ch)
		return ch
	}

	sub := &subscription[T]{ch: make(chan Event[T], b.bufferSize), types: slices.Clone(types)}
	b.subs[sub] = struct{}{}

	go func() {
		select {
		case <-ctx.Done():
			b.unsubscribe(sub)
		case <-b.done:
		}
	}()
	return sub.ch
}

func (b *Broker[T]) unsubscribe(sub *subscription[T]) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.subs[sub]; ok {
		delete(b.subs, sub)
		close(sub.ch)
	}
}

// Publish stamps payload with the next sequence number and delivers it to every
// interested subscriber.
func (b *Broker[T]) Publish(eventType EventType, payload T) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed() {
		return
	}
	event := Event[T]{
		Seq:       b.seq.Add(1),
		Type:      eventType,
		Payload:   payload,
		Timestamp: time.Now(),
	}
	for sub := range b.subs {
		if !sub.wants(eventType) {
			continue
		}
		select {
		case sub.ch <- event:
		default:
			b.dropped.Add(1)
		}
	}
}

// Close ends every subscription. Buffered events are still delivered before a
// channel reports closed. Close is idempotent.
func (b *Broker[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed() {
		return
	}
	close(b.done)
	for sub := range b.subs {
		close(sub.ch)
	}
	clear(b.subs)
}

func (b *Broker[T]) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Dropped counts deliveries skipped because a subscriber's buffer was full.
func (b *Broker[T]) Dropped() int64 {
	return b.dropped.Load()
}
