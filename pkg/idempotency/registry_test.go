package idempotency

import (
	"context"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestMemoryRegistry(t *testing.T) {
	reg := NewMemoryRegistry()
	ctx := context.Background()

	first, err := reg.Register(ctx, "ABC123")
	require.NoError(t, err)
	require.True(t, first)

	second, err := reg.Register(ctx, "ABC123")
	require.NoError(t, err)
	require.False(t, second)

	other, err := reg.Register(ctx, "XYZ789")
	require.NoError(t, err)
	require.True(t, other)
}

func TestMemoryRegistryConcurrent(t *testing.T) {
	reg := NewMemoryRegistry()
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	firsts := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			first, err := reg.Register(ctx, "RACE-1")
			if err != nil {
				t.Error(err)
				return
			}
			if first {
				mu.Lock()
				firsts++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if firsts != 1 {
		t.Fatalf("expected exactly one first registration, got %d", firsts)
	}
}

func TestRedisRegistry(t *testing.T) {
	srv := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	reg := NewRedisRegistry(rdb, 0)
	ctx := context.Background()

	first, err := reg.Register(ctx, "ABC123")
	require.NoError(t, err)
	require.True(t, first)

	second, err := reg.Register(ctx, "ABC123")
	require.NoError(t, err)
	require.False(t, second)
}

func TestRedisRegistryServerDown(t *testing.T) {
	srv := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	srv.Close()

	reg := NewRedisRegistry(rdb, 0)
	_, err := reg.Register(context.Background(), "ABC123")
	require.Error(t, err)
}
