package pubsub

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestListener_Next(t *testing.T) {
	broker := NewBroker[string]()
	defer broker.Close()

	listener := NewListener[string](context.Background(), broker)
	broker.Publish(DeclaredEvent, "chromosome|contig")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	event, ok := listener.Next(ctx)
	require.True(t, ok)
	require.Equal(t, DeclaredEvent, event.Type)
	require.Equal(t, "chromosome|contig", event.Payload)
}

func TestListener_NextStopsOnContext(t *testing.T) {
	broker := NewBroker[string]()
	defer broker.Close()

	listener := NewListener[string](context.Background(), broker)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, ok := listener.Next(ctx)
	require.False(t, ok)
}

func TestListener_NextAfterBrokerClose(t *testing.T) {
	broker := NewBroker[int]()
	listener := NewListener[int](context.Background(), broker)
	broker.Close()

	_, ok := listener.Next(context.Background())
	require.False(t, ok)
}

func TestListener_Drain(t *testing.T) {
	broker := NewBroker[int]()
	listener := NewListener[int](context.Background(), broker)

	for i := 1; i <= 3; i++ {
		broker.Publish(StoredEvent, i)
	}
	broker.Close()

	var sum int
	listener.Drain(func(e Event[int]) { sum += e.Payload })
	require.Equal(t, 6, sum)
}
