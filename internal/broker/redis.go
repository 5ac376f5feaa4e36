package broker

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Redis relays messages through Redis PUBLISH/SUBSCRIBE so every server
// instance sees them.
type Redis struct {
	client *redis.Client
}

func NewRedis(ctx context.Context, addr string) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Redis{client: client}, nil
}

func NewRedisFromClient(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func (that *Redis) Publish(ctx context.Context, topic string, payload []byte) error {
	if err := that.client.Publish(ctx, topic, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}

	return nil
}

func (that *Redis) Subscribe(ctx context.Context, topic string) (*Subscription, error) {
	pubsub := that.client.Subscribe(ctx, topic)

	// wait for the subscription confirmation so no message published after
	// Subscribe returns is missed
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", topic, err)
	}

	done := make(chan struct{})
	out := forward(pubsub.Channel(), done, func(msg *redis.Message) []byte {
		return []byte(msg.Payload)
	})

	return newSubscription(ctx, out, func() error {
		close(done)
		if err := pubsub.Close(); err != nil {
			return fmt.Errorf("failed to close subscription to %s: %w", topic, err)
		}

		return nil
	}), nil
}

func (that *Redis) Close() error {
	if err := that.client.Close(); err != nil {
		return fmt.Errorf("failed to close redis client: %w", err)
	}

	return nil
}
