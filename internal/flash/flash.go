// Package flash carries messages from one request to the next render of
// the same session. Messages are read at most once.
package flash

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store puts and takes a session's pending messages.
type Store interface {
	Put(ctx context.Context, session string, messages []string) error
	// Take returns the pending messages and clears them.
	Take(ctx context.Context, session string) ([]string, error)
}

type Memory struct {
	mu   sync.Mutex
	data map[string][]string
}

func NewMemory() *Memory {
	return &Memory{data: map[string][]string{}}
}

func (m *Memory) Put(_ context.Context, session string, messages []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[session] = append([]string(nil), messages...)
	return nil
}

func (m *Memory) Take(_ context.Context, session string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	messages := m.data[session]
	delete(m.data, session)
	return messages, nil
}

// Redis keeps messages under one key per session with a TTL so that
// abandoned wizards do not leak.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

func key(session string) string { return "flash:" + session }

func (r *Redis) Put(ctx context.Context, session string, messages []string) error {
	raw, err := json.Marshal(messages)
	if err != nil {
		return fmt.Errorf("encode flash: %w", err)
	}
	if err := r.client.Set(ctx, key(session), raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("store flash: %w", err)
	}
	return nil
}

func (r *Redis) Take(ctx context.Context, session string) ([]string, error) {
	raw, err := r.client.GetDel(ctx, key(session)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("take flash: %w", err)
	}
	var messages []string
	if err := json.Unmarshal(raw, &messages); err != nil {
		return nil, fmt.Errorf("decode flash: %w", err)
	}
	return messages, nil
}
