package stream

import (
	"context"
	"sync"

	"ocenmock.org/internal/consent"
)

// Stream fans out consent transitions to all active subscribers (SSE clients).
// It satisfies consent.Publisher.
type Stream struct {
	mu     sync.RWMutex
	subs   map[int]chan consent.Event
	next   int
	buffer int
}

// New initialises an empty stream.
func New() *Stream {
	return &Stream{
		subs:   make(map[int]chan consent.Event),
		buffer: 16,
	}
}

// Subscribe registers a subscriber and returns a channel which will receive events.
// The channel is closed when the provided context ends.
func (s *Stream) Subscribe(ctx context.Context) <-chan consent.Event {
	ch := make(chan consent.Event, s.buffer)

	s.mu.Lock()
	id := s.next
	s.next++
	s.subs[id] = ch
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.subs, id)
		close(ch)
		s.mu.Unlock()
	}()

	return ch
}

// Publish fan-outs the event to all subscribers.
func (s *Stream) Publish(evt consent.Event) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ch := range s.subs {
		select {
		case ch <- evt:
		default:
			// slow subscriber, drop
		}
	}
}

// Subscribers returns the number of live subscriptions.
func (s *Stream) Subscribers() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs)
}
