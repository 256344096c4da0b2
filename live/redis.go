package live

import (
	"context"
	"fmt"
	"shopadmin_server/structs"
	"strings"

	"github.com/MonkyMars/gecho"
	"github.com/redis/go-redis/v9"
)

// RedisChannel listens on pub/sub channels named after the event kinds,
// optionally prefixed. Reconnection is left to go-redis.
type RedisChannel struct {
	client *redis.Client
	prefix string
	logger *gecho.Logger
}

func NewRedisChannel(cfg *structs.LiveConfig, logger *gecho.Logger) *RedisChannel {
	return NewRedisChannelWithClient(redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddress,
		Username: cfg.RedisUsername,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}), cfg.RedisPrefix, logger)
}

func NewRedisChannelWithClient(client *redis.Client, prefix string, logger *gecho.Logger) *RedisChannel {
	return &RedisChannel{client: client, prefix: prefix, logger: logger}
}

// Topic is the pub/sub channel carrying events of kind k
func (c *RedisChannel) Topic(k Kind) string {
	return c.prefix + string(k)
}

func (c *RedisChannel) Subscribe(ctx context.Context) (<-chan Event, error) {
	topics := make([]string, 0, len(Kinds))
	for _, k := range Kinds {
		topics = append(topics, c.Topic(k))
	}

	pubsub := c.client.Subscribe(ctx, topics...)
	// wait for the subscription to be confirmed
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("subscribe to %s: %w", strings.Join(topics, ","), err)
	}
	c.logger.Info("Subscribed to order events", gecho.Field("channels", topics))

	out := make(chan Event, len(Kinds))
	go func() {
		defer close(out)
		defer pubsub.Close()

		msgs := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				kind := Kind(strings.TrimPrefix(msg.Channel, c.prefix))
				if !kind.Valid() {
					continue
				}
				select {
				case out <- Event{Kind: kind}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

func (c *RedisChannel) Close() error {
	return c.client.Close()
}
