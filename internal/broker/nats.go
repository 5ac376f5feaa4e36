package broker

import (
	"context"
	"fmt"

	"github.com/nats-io/nats.go"
)

// NATS relays messages through core NATS subjects.
type NATS struct {
	conn *nats.Conn
}

func NewNATS(url string) (*NATS, error) {
	conn, err := nats.Connect(url, nats.Name("tictactoe-live"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &NATS{conn: conn}, nil
}

func (that *NATS) Publish(_ context.Context, topic string, payload []byte) error {
	if err := that.conn.Publish(topic, payload); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}

	return nil
}

func (that *NATS) Subscribe(ctx context.Context, topic string) (*Subscription, error) {
	msgs := make(chan *nats.Msg, subscriptionBuffer)

	sub, err := that.conn.ChanSubscribe(topic, msgs)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", topic, err)
	}

	// make sure the server registered the interest before returning
	if err = that.conn.Flush(); err != nil {
		_ = sub.Unsubscribe()
		return nil, fmt.Errorf("failed to flush subscription to %s: %w", topic, err)
	}

	done := make(chan struct{})
	out := forward(msgs, done, func(msg *nats.Msg) []byte {
		return msg.Data
	})

	return newSubscription(ctx, out, func() error {
		close(done)
		if err := sub.Unsubscribe(); err != nil {
			return fmt.Errorf("failed to unsubscribe from %s: %w", topic, err)
		}

		return nil
	}), nil
}

func (that *NATS) Close() error {
	if err := that.conn.Drain(); err != nil {
		return fmt.Errorf("failed to drain nats connection: %w", err)
	}

	return nil
}
