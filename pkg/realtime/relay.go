package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"hirfa/pkg/logger"

	"github.com/redis/go-redis/v9"
)

type envelope struct {
	UserID  string  `json:"user_id"`
	Message Message `json:"message"`
}

// RedisRelay fans messages out through a Redis channel so a user connected
// to any replica receives them. Processes without a hub (the notifier) only
// publish.
type RedisRelay struct {
	rdb     *redis.Client
	channel string
	hub     *Hub
	log     *logger.Logger
}

func NewRedisRelay(rdb *redis.Client, channel string, hub *Hub, log *logger.Logger) *RedisRelay {
	return &RedisRelay{rdb: rdb, channel: channel, hub: hub, log: log}
}

func (r *RedisRelay) Publish(ctx context.Context, userID, msgType string, payload any) error {
	data, err := json.Marshal(envelope{
		UserID:  userID,
		Message: Message{Type: msgType, Payload: payload, Timestamp: time.Now().UTC()},
	})
	if err != nil {
		return fmt.Errorf("marshal realtime envelope: %w", err)
	}
	if err := r.rdb.Publish(ctx, r.channel, data).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", r.channel, err)
	}
	return nil
}

// Run subscribes to the channel and hands every envelope to the local hub
// until ctx is cancelled.
func (r *RedisRelay) Run(ctx context.Context) error {
	if r.hub == nil {
		return fmt.Errorf("relay has no hub to deliver to")
	}

	pubsub := r.rdb.Subscribe(ctx, r.channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe to %s: %w", r.channel, err)
	}
	r.log.Info("Realtime relay subscribed", "channel", r.channel)

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			r.dispatch(msg.Payload)
		}
	}
}

func (r *RedisRelay) dispatch(raw string) {
	var env envelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		r.log.Warn("Dropping malformed realtime envelope", "error", err)
		return
	}
	if env.UserID == "" {
		return
	}
	data, err := json.Marshal(env.Message)
	if err != nil {
		r.log.Warn("Dropping realtime message", "error", err)
		return
	}
	r.hub.deliver(env.UserID, data)
}
