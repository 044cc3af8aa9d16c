// Package pubsub provides a generic publish/subscribe event system used to fan
// registry changes and log entries out to in-process listeners.
package pubsub

import (
	"context"
	"time"
)

type EventType string

const (
	StoredEvent   EventType = "stored"   // a coordinate system was persisted
	LinkedEvent   EventType = "linked"   // a feature table was associated with a system
	DeclaredEvent EventType = "declared" // a mapping declaration was persisted
	LoggedEvent   EventType = "logged"   // a log entry was written
)

// Event is one published payload. Seq increases with every Publish on a broker.
type Event[T any] struct {
	Seq       uint64
	Type      EventType
	Payload   T
	Timestamp time.Time
}

type Subscriber[T any] interface {
	Subscribe(ctx context.Context, types ...EventType) <-chan Event[T]
}

type Publisher[T any] interface {
	Publish(eventType EventType, payload T)
}
