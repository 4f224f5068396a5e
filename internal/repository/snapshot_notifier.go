package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// SnapshotEvent announces that a new document version was persisted.
type SnapshotEvent struct {
	Origin  string `json:"origin"`
	Version int64  `json:"version"`
}

// RedisSnapshotNotifier propagates snapshot versions between instances over Redis pub/sub.
type RedisSnapshotNotifier struct {
	client     *redis.Client
	channel    string
	instanceID string
	logger     *zap.Logger
}

// NewRedisSnapshotNotifier constructs a notifier publishing on a channel derived from the storage key.
func NewRedisSnapshotNotifier(client *redis.Client, storageKey, instanceID string, logger *zap.Logger) *RedisSnapshotNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisSnapshotNotifier{
		client:     client,
		channel:    SnapshotChannel(storageKey),
		instanceID: instanceID,
		logger:     logger,
	}
}

// SnapshotChannel returns the pub/sub channel for a storage key.
func SnapshotChannel(storageKey string) string {
	return "ridersbud:snapshot:" + storageKey
}

// Publish announces version to the other instances.
func (n *RedisSnapshotNotifier) Publish(ctx context.Context, version int64) error {
	if n.client == nil {
		return nil
	}
	payload, err := json.Marshal(SnapshotEvent{Origin: n.instanceID, Version: version})
	if err != nil {
		return fmt.Errorf("encode snapshot event: %w", err)
	}
	if err := n.client.Publish(ctx, n.channel, payload).Err(); err != nil {
		return fmt.Errorf("redis publish %s: %w", n.channel, err)
	}
	return nil
}

// Listen calls fn for every version announced by another instance until ctx is cancelled.
func (n *RedisSnapshotNotifier) Listen(ctx context.Context, fn func(version int64)) error {
	if n.client == nil {
		<-ctx.Done()
		return nil
	}
	sub := n.client.Subscribe(ctx, n.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("redis subscribe %s: %w", n.channel, err)
	}

	messages := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			event, err := n.decode(msg.Payload)
			if err != nil {
				n.logger.Warn("ignoring malformed snapshot event", zap.String("channel", n.channel), zap.Error(err))
				continue
			}
			if event.Origin == n.instanceID {
				continue
			}
			fn(event.Version)
		}
	}
}

func (n *RedisSnapshotNotifier) decode(payload string) (SnapshotEvent, error) {
	var event SnapshotEvent
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		return SnapshotEvent{}, err
	}
	if event.Version <= 0 {
		return SnapshotEvent{}, fmt.Errorf("invalid snapshot version %d", event.Version)
	}
	return event, nil
}

