package pdfcache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/permitdesk/permitdesk/internal/shared"
)

func entryAt(id string, created time.Time) Entry {
	return Entry{
		ID:          id,
		FileName:    id + ".pdf",
		ContentType: "application/pdf",
		Payload:     []byte("%PDF-1.4 " + id),
		CreatedAt:   created,
	}
}

func TestMemoryPutGetDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMemory(10)

	entry := entryAt("a", time.Now())
	require.NoError(t, store.Put(ctx, entry))

	got, err := store.Get(ctx, "a")
	require.NoError(t, err)
	require.Equal(t, entry.Payload, got.Payload)
	require.Equal(t, "a.pdf", got.FileName)

	require.NoError(t, store.Delete(ctx, "a"))
	_, err = store.Get(ctx, "a")
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestMemoryEvictsOldestPastCapacity(t *testing.T) {
	ctx := context.Background()
	store := NewMemory(10)

	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 10; i++ {
		id := fmt.Sprintf("doc-%02d", i)
		require.NoError(t, store.Put(ctx, entryAt(id, base.Add(time.Duration(i)*time.Second))))
	}
	require.Equal(t, 10, store.Len())

	require.NoError(t, store.Put(ctx, entryAt("doc-10", base.Add(10*time.Second))))
	require.Equal(t, 10, store.Len())

	_, err := store.Get(ctx, "doc-00")
	require.ErrorIs(t, err, shared.ErrNotFound)
	_, err = store.Get(ctx, "doc-10")
	require.NoError(t, err)
}

func TestMemoryGetMissing(t *testing.T) {
	store := NewMemory(10)
	_, err := store.Get(context.Background(), "nope")
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func redisStore(t *testing.T, capacity int) *Redis {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedis(client, capacity)
}

func TestRedisPutGetDelete(t *testing.T) {
	ctx := context.Background()
	store := redisStore(t, 10)

	entry := entryAt("a", time.Now().UTC())
	require.NoError(t, store.Put(ctx, entry))

	got, err := store.Get(ctx, "a")
	require.NoError(t, err)
	require.Equal(t, entry.Payload, got.Payload)
	require.Equal(t, entry.FileName, got.FileName)

	require.NoError(t, store.Delete(ctx, "a"))
	_, err = store.Get(ctx, "a")
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestRedisTrimsIndexPastCapacity(t *testing.T) {
	ctx := context.Background()
	store := redisStore(t, 10)

	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 11; i++ {
		id := fmt.Sprintf("doc-%02d", i)
		require.NoError(t, store.Put(ctx, entryAt(id, base.Add(time.Duration(i)*time.Second))))
	}

	_, err := store.Get(ctx, "doc-00")
	require.ErrorIs(t, err, shared.ErrNotFound)
	for i := 1; i < 11; i++ {
		_, err := store.Get(ctx, fmt.Sprintf("doc-%02d", i))
		require.NoError(t, err)
	}
}
