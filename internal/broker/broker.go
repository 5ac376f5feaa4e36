package broker

import (
	"context"
	"errors"
	"sync"
)

// subscriptionBuffer is how many messages a slow subscriber may lag before
// further messages are dropped for it.
const subscriptionBuffer = 64

var ErrClosed = errors.New("broker is closed")

type Broker interface {
	Publish(ctx context.Context, topic string, payload []byte) error
	Subscribe(ctx context.Context, topic string) (*Subscription, error)
	Close() error
}

// GameTopic carries snapshots of one game.
func GameTopic(gameID string) string {
	return "game:" + gameID
}

// ChatTopic carries chat messages of one game.
func ChatTopic(gameID string) string {
	return "game:" + gameID + ":chat"
}

// Subscription delivers messages on C until Close is called or the subscribing
// context is done. C is closed afterwards.
type Subscription struct {
	C <-chan []byte

	once    sync.Once
	stop    chan struct{}
	cleanup func() error
	err     error
}

func newSubscription(ctx context.Context, ch <-chan []byte, cleanup func() error) *Subscription {
	sub := &Subscription{C: ch, stop: make(chan struct{}), cleanup: cleanup}

	go func() {
		select {
		case <-ctx.Done():
			_ = sub.Close()
		case <-sub.stop:
		}
	}()

	return sub
}

func (that *Subscription) Close() error {
	that.once.Do(func() {
		close(that.stop)
		that.err = that.cleanup()
	})

	return that.err
}

// forward copies in to a buffered channel until in is closed or done fires,
// dropping messages the reader is too slow to take.
func forward[T any](in <-chan T, done <-chan struct{}, payload func(T) []byte) <-chan []byte {
	out := make(chan []byte, subscriptionBuffer)

	go func() {
		defer close(out)

		for {
			select {
			case <-done:
				return
			case msg, ok := <-in:
				if !ok {
					return
				}

				select {
				case out <- payload(msg):
				default:
				}
			}
		}
	}()

	return out
}
