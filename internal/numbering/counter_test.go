package numbering

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemoryCounterSequence(t *testing.T) {
	c := NewMemoryCounter()
	ctx := context.Background()
	now := time.Date(2026, time.March, 4, 10, 0, 0, 0, time.UTC)

	first, err := c.Next(ctx, now)
	require.NoError(t, err)
	require.Equal(t, "26-001", first)

	second, err := c.Next(ctx, now)
	require.NoError(t, err)
	require.Equal(t, "26-002", second)
}

func TestMemoryCounterYearRollover(t *testing.T) {
	c := NewMemoryCounter()
	ctx := context.Background()

	decemberish := time.Date(2025, time.December, 31, 23, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		_, err := c.Next(ctx, decemberish)
		require.NoError(t, err)
	}

	newYear := time.Date(2026, time.January, 1, 0, 5, 0, 0, time.UTC)
	got, err := c.Next(ctx, newYear)
	require.NoError(t, err)
	require.Equal(t, "26-001", got)
}

func TestMemoryCounterConcurrentIncrements(t *testing.T) {
	c := NewMemoryCounter()
	ctx := context.Background()
	now := time.Date(2026, time.June, 1, 9, 0, 0, 0, time.UTC)

	const n = 50
	var wg sync.WaitGroup
	results := make(chan string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			num, err := c.Next(ctx, now)
			require.NoError(t, err)
			results <- num
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[string]bool)
	for num := range results {
		require.False(t, seen[num], "duplicate permit number %s", num)
		seen[num] = true
	}
	require.Len(t, seen, n)
}

func TestFormatPadsSequence(t *testing.T) {
	require.Equal(t, "26-007", Format(2026, 7))
	require.Equal(t, "26-123", Format(2026, 123))
	require.Equal(t, "00-001", Format(2100, 1))
}
