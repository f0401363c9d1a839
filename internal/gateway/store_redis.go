package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/narratives/internal/platform/constants"
)

// # Session Store

// RedisSessionStore keeps OAuth state and sessions in Redis.
type RedisSessionStore struct {
	client *redis.Client
}

// NewRedisSessionStore creates a store on client.
func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client}
}

func (store *RedisSessionStore) SaveState(ctx context.Context, state, redirectTo string, ttl time.Duration) error {
	return store.client.Set(ctx, constants.RedisPrefixOAuthState+state, redirectTo, ttl).Err()
}

func (store *RedisSessionStore) TakeState(ctx context.Context, state string) (string, error) {
	redirectTo, err := store.client.GetDel(ctx, constants.RedisPrefixOAuthState+state).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrStateNotFound
	}
	return redirectTo, err
}

func (store *RedisSessionStore) SaveSession(ctx context.Context, session *Session, ttl time.Duration) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("gateway: encode session: %w", err)
	}
	return store.client.Set(ctx, constants.RedisPrefixSession+session.ID, payload, ttl).Err()
}

func (store *RedisSessionStore) LoadSession(ctx context.Context, id string) (*Session, error) {
	payload, err := store.client.Get(ctx, constants.RedisPrefixSession+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var session Session
	if err := json.Unmarshal(payload, &session); err != nil {
		return nil, fmt.Errorf("gateway: decode session: %w", err)
	}
	return &session, nil
}

func (store *RedisSessionStore) DeleteSession(ctx context.Context, id string) error {
	return store.client.Del(ctx, constants.RedisPrefixSession+id).Err()
}

// # Event Bus

// RedisEventBus publishes auth changes over Redis pub/sub so every server
// process sees sign-ins and sign-outs.
type RedisEventBus struct {
	client  *redis.Client
	channel string
	logger  *slog.Logger
}

// NewRedisEventBus creates a bus on channel.
func NewRedisEventBus(client *redis.Client, channel string, logger *slog.Logger) *RedisEventBus {
	return &RedisEventBus{client: client, channel: channel, logger: logger}
}

func (bus *RedisEventBus) Publish(ctx context.Context, change AuthChange) error {
	payload, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("gateway: encode auth change: %w", err)
	}
	return bus.client.Publish(ctx, bus.channel, payload).Err()
}

// Subscribe starts a receive loop. cancel closes the subscription and waits
// for the loop to exit; it must not be called from inside handler.
func (bus *RedisEventBus) Subscribe(ctx context.Context, handler func(AuthChange)) (func(), error) {
	pubsub := bus.client.Subscribe(ctx, bus.channel)

	// Wait for the subscription confirmation so no event published after
	// this call returns is missed.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, err
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for message := range pubsub.Channel() {
			var change AuthChange
			if err := json.Unmarshal([]byte(message.Payload), &change); err != nil {
				bus.logger.Warn("auth_event_invalid", slog.String("error", err.Error()))
				continue
			}
			handler(change)
		}
	}()

	return func() {
		_ = pubsub.Close()
		<-done
	}, nil
}
