package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"median/listview"
)

// RedisNotifier keeps one Redis list per user. The list expires TTL after
// the latest push.
type RedisNotifier struct {
	client *redis.Client
	config Config
	now    func() time.Time
}

// RedisConfig holds connection settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Config   Config
}

// NewRedisNotifier connects to Redis and verifies the connection.
func NewRedisNotifier(ctx context.Context, config RedisConfig) (*RedisNotifier, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return NewRedisNotifierWithClient(client, config.Config), nil
}

// NewRedisNotifierWithClient wraps an existing client.
func NewRedisNotifierWithClient(client *redis.Client, config Config) *RedisNotifier {
	return &RedisNotifier{client: client, config: config, now: time.Now}
}

func (r *RedisNotifier) key(userID string) string {
	return r.config.Prefix + userID
}

// Push appends a notification to the user's list.
func (r *RedisNotifier) Push(ctx context.Context, userID string, kind listview.NotificationKind, message string) (Notification, error) {
	n := newNotification(kind, message, r.now())
	payload, err := json.Marshal(n)
	if err != nil {
		return Notification{}, fmt.Errorf("failed to encode notification: %w", err)
	}

	key := r.key(userID)
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, key, payload)
		if r.config.MaxPerUser > 0 {
			pipe.LTrim(ctx, key, int64(-r.config.MaxPerUser), -1)
		}
		if r.config.TTL > 0 {
			pipe.Expire(ctx, key, r.config.TTL)
		}
		return nil
	})
	if err != nil {
		return Notification{}, fmt.Errorf("failed to push notification: %w", err)
	}
	return n, nil
}

// Drain atomically reads and deletes the user's list.
func (r *RedisNotifier) Drain(ctx context.Context, userID string) ([]Notification, error) {
	key := r.key(userID)

	var entries *redis.StringSliceCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		entries = pipe.LRange(ctx, key, 0, -1)
		pipe.Del(ctx, key)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to drain notifications: %w", err)
	}

	out := make([]Notification, 0, len(entries.Val()))
	for _, raw := range entries.Val() {
		var n Notification
		if err := json.Unmarshal([]byte(raw), &n); err != nil {
			return nil, fmt.Errorf("failed to decode notification: %w", err)
		}
		out = append(out, n)
	}
	return out, nil
}

// Close closes the Redis client.
func (r *RedisNotifier) Close() error {
	return r.client.Close()
}
