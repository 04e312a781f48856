package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"marquee/internal/metadata"
	"marquee/internal/services"
)

// DefaultKeyPrefix namespaces record keys.
const DefaultKeyPrefix = "marquee:record:"

// recencyKey suffixes the prefix for the sorted set ordering records by
// update time.
const recencyKey = "index"

// RedisOptions configures OpenRedis.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// Redis stores each record as a JSON string under Prefix+id.
type Redis struct {
	client *redis.Client
	prefix string
}

// OpenRedis connects and pings the server.
func OpenRedis(ctx context.Context, opts RedisOptions) (*Redis, error) {
	if strings.TrimSpace(opts.Addr) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "store", "open", "redis address required", nil)
	}
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", opts.Addr, err)
	}
	return NewRedis(client, opts.Prefix), nil
}

// NewRedis wraps an existing client.
func NewRedis(client *redis.Client, prefix string) *Redis {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &Redis{client: client, prefix: prefix}
}

func (r *Redis) key(id string) string { return r.prefix + id }

func (r *Redis) Load(ctx context.Context, id string) (metadata.Record, bool, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return metadata.Record{}, false, nil
	}
	data, err := r.client.Get(ctx, r.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return metadata.Record{}, false, nil
	}
	if err != nil {
		return metadata.Record{}, false, fmt.Errorf("load record %s: %w", id, err)
	}
	rec, err := decodeRecord(id, data)
	if err != nil {
		return metadata.Record{}, false, err
	}
	return rec, true, nil
}

func (r *Redis) Save(ctx context.Context, rec metadata.Record) error {
	id, err := recordKey(rec)
	if err != nil {
		return err
	}
	payload, err := encodeRecord(rec)
	if err != nil {
		return err
	}
	updated := rec.UpdatedAt
	if updated.IsZero() {
		updated = time.Now()
	}
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.key(id), payload, 0)
		pipe.ZAdd(ctx, r.prefix+recencyKey, redis.Z{Score: float64(updated.UnixMilli()), Member: id})
		return nil
	})
	if err != nil {
		return fmt.Errorf("save record %s: %w", id, err)
	}
	return nil
}

func (r *Redis) List(ctx context.Context, limit int) ([]metadata.Record, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit - 1)
	}
	ids, err := r.client.ZRevRange(ctx, r.prefix+recencyKey, 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.key(id)
	}
	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	out := make([]metadata.Record, 0, len(values))
	for i, value := range values {
		text, ok := value.(string)
		if !ok {
			continue
		}
		rec, err := decodeRecord(ids[i], []byte(text))
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// Close closes the client.
func (r *Redis) Close() error {
	return r.client.Close()
}
