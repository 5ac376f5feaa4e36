package broker

import (
	"context"
	"sync"
)

// Memory fans messages out to subscribers inside this process.
type Memory struct {
	mu     sync.RWMutex
	topics map[string]map[chan []byte]struct{}
	closed bool
}

func NewMemory() *Memory {
	return &Memory{
		topics: make(map[string]map[chan []byte]struct{}),
	}
}

func (that *Memory) Publish(_ context.Context, topic string, payload []byte) error {
	that.mu.RLock()
	defer that.mu.RUnlock()

	if that.closed {
		return ErrClosed
	}

	for ch := range that.topics[topic] {
		select {
		case ch <- payload:
		default:
		}
	}

	return nil
}

func (that *Memory) Subscribe(ctx context.Context, topic string) (*Subscription, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.closed {
		return nil, ErrClosed
	}

	ch := make(chan []byte, subscriptionBuffer)
	if that.topics[topic] == nil {
		that.topics[topic] = make(map[chan []byte]struct{})
	}
	that.topics[topic][ch] = struct{}{}

	return newSubscription(ctx, ch, func() error {
		that.unsubscribe(topic, ch)
		return nil
	}), nil
}

func (that *Memory) unsubscribe(topic string, ch chan []byte) {
	that.mu.Lock()
	defer that.mu.Unlock()

	subs, ok := that.topics[topic]
	if !ok {
		return
	}

	if _, ok = subs[ch]; !ok {
		return
	}

	delete(subs, ch)
	close(ch)

	if len(subs) == 0 {
		delete(that.topics, topic)
	}
}

func (that *Memory) Close() error {
	that.mu.Lock()
	defer that.mu.Unlock()

	for topic, subs := range that.topics {
		for ch := range subs {
			close(ch)
		}
		delete(that.topics, topic)
	}

	that.closed = true

	return nil
}
