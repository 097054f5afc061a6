package broker

import (
	"context"
	"encoding/json"

	"github.com/Baaaki/market-square/pkg/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	eventsChannel = "listings:events"
	recentKey     = "listings:recent"
	recentLimit   = 50
)

// RedisListingBroker implements ListingBroker with Redis pub/sub and a capped
// list for the backlog.
type RedisListingBroker struct {
	client *redis.Client
}

func NewRedisListingBroker(ctx context.Context, redisURL string) (*RedisListingBroker, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	return &RedisListingBroker{client: client}, nil
}

func (r *RedisListingBroker) Publish(ctx context.Context, event ListingEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, recentKey, data)
		pipe.LTrim(ctx, recentKey, 0, recentLimit-1)
		pipe.Publish(ctx, eventsChannel, data)
		return nil
	})
	return err
}

func (r *RedisListingBroker) Subscribe(ctx context.Context) (<-chan ListingEvent, error) {
	pubsub := r.client.Subscribe(ctx, eventsChannel)
	// Wait for the subscription to be confirmed so no event published after
	// Subscribe returns is missed.
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, err
	}

	events := make(chan ListingEvent, 100)

	go func() {
		defer close(events)
		defer pubsub.Close()

		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var event ListingEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					logger.Log.Warn("Dropping malformed listing event", zap.Error(err))
					continue
				}
				select {
				case events <- event:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return events, nil
}

func (r *RedisListingBroker) Recent(ctx context.Context, limit int) ([]ListingEvent, error) {
	if limit <= 0 || limit > recentLimit {
		limit = recentLimit
	}

	raw, err := r.client.LRange(ctx, recentKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	events := make([]ListingEvent, 0, len(raw))
	for _, item := range raw {
		var event ListingEvent
		if err := json.Unmarshal([]byte(item), &event); err != nil {
			continue
		}
		events = append(events, event)
	}
	return events, nil
}

func (r *RedisListingBroker) Close() error {
	return r.client.Close()
}
