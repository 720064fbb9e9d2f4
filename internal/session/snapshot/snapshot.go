// Package snapshot persists live game sessions to redis so stakes held by a
// crashed process can be found and refunded on the next start.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// DefaultPrefix namespaces session keys.
const DefaultPrefix = "purgatory:session:"

// Record is the persisted form of one live session.
type Record struct {
	Key       string                    `json:"key"`
	ID        uuid.UUID                 `json:"id"`
	Kind      string                    `json:"kind"`
	Players   []int64                   `json:"players"`
	ChatID    int64                     `json:"chat_id"`
	Wager     decimal.Decimal           `json:"wager"`
	Escrow    map[int64]decimal.Decimal `json:"escrow"`
	Seed      string                    `json:"seed"`
	CreatedAt time.Time                 `json:"created_at"`
	UpdatedAt time.Time                 `json:"updated_at"`
	State     map[string]any            `json:"state"`
}

// Store saves and loads session records.
type Store interface {
	Save(ctx context.Context, rec *Record) error
	Delete(ctx context.Context, key string) error
	LoadAll(ctx context.Context) ([]*Record, error)
}

// Redis stores one JSON document per session under prefix+key.
type Redis struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// Options configures the redis connection.
type Options struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
	TTL      time.Duration
}

// NewRedis connects and pings redis.
func NewRedis(ctx context.Context, opts Options) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return NewRedisWithClient(client, opts.Prefix, opts.TTL), nil
}

// NewRedisWithClient wraps an existing client. An empty prefix selects
// DefaultPrefix; a zero ttl keeps records until deleted.
func NewRedisWithClient(client *redis.Client, prefix string, ttl time.Duration) *Redis {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Redis{client: client, prefix: prefix, ttl: ttl}
}

func (r *Redis) Save(ctx context.Context, rec *Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode session %s: %w", rec.Key, err)
	}
	if err := r.client.Set(ctx, r.prefix+rec.Key, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session %s: %w", rec.Key, err)
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.prefix+key).Err(); err != nil {
		return fmt.Errorf("failed to delete session %s: %w", key, err)
	}
	return nil
}

// Load returns one record, or nil if it does not exist.
func (r *Redis) Load(ctx context.Context, key string) (*Record, error) {
	data, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load session %s: %w", key, err)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode session %s: %w", key, err)
	}
	return &rec, nil
}

// LoadAll scans every record under the prefix.
func (r *Redis) LoadAll(ctx context.Context) ([]*Record, error) {
	var out []*Record
	iter := r.client.Scan(ctx, 0, r.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()[len(r.prefix):]
		rec, err := r.Load(ctx, key)
		if err != nil {
			return nil, err
		}
		if rec != nil {
			out = append(out, rec)
		}
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan sessions: %w", err)
	}
	return out, nil
}

// Close closes the redis client.
func (r *Redis) Close() error {
	return r.client.Close()
}
