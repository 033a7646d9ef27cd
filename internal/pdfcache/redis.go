package pdfcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/permitdesk/permitdesk/internal/shared"
)

const (
	entryKeyPrefix = "pdfcache:entry:"
	indexKey       = "pdfcache:index"

	// Upper bound on entry lifetime. The download flow purges entries much
	// earlier; the TTL only catches blobs that were never fetched.
	defaultTTL = 24 * time.Hour
)

// Redis shares cached blobs across server instances. The capacity bound is
// enforced through a sorted index scored by creation time.
type Redis struct {
	client *redis.Client
	cap    int
	ttl    time.Duration
}

func NewRedis(client *redis.Client, capacity int) *Redis {
	if capacity <= 0 {
		capacity = 10
	}
	return &Redis{client: client, cap: capacity, ttl: defaultTTL}
}

func (r *Redis) Put(ctx context.Context, entry Entry) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, entryKeyPrefix+entry.ID, payload, r.ttl)
	pipe.ZAdd(ctx, indexKey, redis.Z{
		Score:  float64(entry.CreatedAt.UnixNano()),
		Member: entry.ID,
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store cache entry: %w", err)
	}
	return r.trim(ctx)
}

// trim drops the oldest index members until the cache is back at capacity.
func (r *Redis) trim(ctx context.Context) error {
	size, err := r.client.ZCard(ctx, indexKey).Result()
	if err != nil {
		return fmt.Errorf("read cache index: %w", err)
	}
	excess := size - int64(r.cap)
	if excess <= 0 {
		return nil
	}

	oldest, err := r.client.ZRange(ctx, indexKey, 0, excess-1).Result()
	if err != nil {
		return fmt.Errorf("read oldest cache entries: %w", err)
	}

	pipe := r.client.TxPipeline()
	for _, id := range oldest {
		pipe.Del(ctx, entryKeyPrefix+id)
	}
	pipe.ZRemRangeByRank(ctx, indexKey, 0, excess-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("evict cache entries: %w", err)
	}
	return nil
}

func (r *Redis) Get(ctx context.Context, id string) (*Entry, error) {
	raw, err := r.client.Get(ctx, entryKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("cache entry %s: %w", id, shared.ErrNotFound)
		}
		return nil, fmt.Errorf("read cache entry: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, fmt.Errorf("decode cache entry: %w", err)
	}
	return &entry, nil
}

func (r *Redis) Delete(ctx context.Context, id string) error {
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, entryKeyPrefix+id)
	pipe.ZRem(ctx, indexKey, id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("delete cache entry: %w", err)
	}
	return nil
}
