package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aretw0/digest/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// Log implements ports.MemoryLog on a Redis list.
// RPUSH is atomic, so concurrent appends from any number of replicas never interleave.
type Log struct {
	client *backend.Client
	key    string
}

// NewLog creates a history log on an existing client.
func NewLog(client *backend.Client, opts ...Option) *Log {
	o := collect(opts)
	return &Log{
		client: client,
		key:    o.prefix + "memory",
	}
}

// Append pushes the entry to the tail of the list.
func (l *Log) Append(ctx context.Context, entry domain.MemoryEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal entry: %w", err)
	}
	if err := l.client.RPush(ctx, l.key, data).Err(); err != nil {
		return fmt.Errorf("failed to append to redis: %w", err)
	}
	return nil
}

// ReadAll returns the whole list in append order.
func (l *Log) ReadAll(ctx context.Context) ([]domain.MemoryEntry, error) {
	raw, err := l.client.LRange(ctx, l.key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read history from redis: %w", err)
	}

	entries := make([]domain.MemoryEntry, 0, len(raw))
	for i, item := range raw {
		var e domain.MemoryEntry
		if err := json.Unmarshal([]byte(item), &e); err != nil {
			return nil, fmt.Errorf("corrupt history entry %d: %w", i, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Clear deletes the list.
func (l *Log) Clear(ctx context.Context) error {
	return l.client.Del(ctx, l.key).Err()
}
