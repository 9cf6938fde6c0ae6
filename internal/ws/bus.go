package ws

import (
	"context"
	"encoding/json"

	"log/slog"

	"github.com/redis/go-redis/v9"
	"github.com/rs/xid"

	"github.com/UTKARSHJHA-2005/CODIFY/internal/app"
	"github.com/UTKARSHJHA-2005/CODIFY/internal/room"
)

// RedisBus relays room events across server instances with redis pub/sub.
// Each instance tags what it publishes with its own origin id and skips
// its own messages on the way back in; local members already got the
// event directly from the coordinator.
type RedisBus struct {
	rdb    *redis.Client
	log    *slog.Logger
	origin string
}

// NewRedisBus connects to redis and verifies connectivity
func NewRedisBus(ctx context.Context, cfg app.Config, log *slog.Logger) (*RedisBus, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
		DB:   cfg.RedisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return &RedisBus{rdb: rdb, log: log, origin: xid.New().String()}, nil
}

// Publish sends a room event to the channel for its room.
func (b *RedisBus) Publish(ctx context.Context, evt room.BusEvent) error {
	evt.Origin = b.origin
	raw, _ := json.Marshal(evt)
	return b.rdb.Publish(ctx, channel(evt.Room), raw).Err()
}

// Subscribe listens to all room channels and invokes fn for each event
// published by another instance.
func (b *RedisBus) Subscribe(ctx context.Context, fn func(room.BusEvent)) {
	pubsub := b.rdb.PSubscribe(ctx, channel("*"))
	ch := pubsub.Channel()

	for {
		select {
		case <-ctx.Done():
			_ = pubsub.Close()
			return
		case msg := <-ch:
			var evt room.BusEvent
			_ = json.Unmarshal([]byte(msg.Payload), &evt)
			if evt.Room == "" || evt.Origin == b.origin {
				continue
			}
			fn(evt)
		}
	}
}

// Close shuts down the redis connection
func (b *RedisBus) Close() { _ = b.rdb.Close() }

// channel namespacing for room pub/sub
func channel(roomID string) string { return "room:" + roomID }
