package storage

import (
	"context"
	"os"
	"testing"

	"github.com/MarxCha/poa-dashboard/internal/domain/session"
	"github.com/MarxCha/poa-dashboard/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newSQLiteStore(t *testing.T) session.Store {
	t.Helper()
	s, err := OpenSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newMemStore(t *testing.T) session.Store {
	t.Helper()
	return NewMemoryStore()
}

// newRedisStore needs a live server; REDIS_ADDR opts in
func newRedisStore(t *testing.T) session.Store {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	s, err := NewRedisStore(RedisConfig{Addr: addr, KeyPrefix: "poa-test:" + t.Name() + ":"})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = s.Teardown(context.Background(), session.KeyToken, session.KeyUser, session.KeyDemoMode, session.KeyTheme)
		_ = s.Close()
	})
	return s
}

func TestStoreDrivers(t *testing.T) {
	drivers := map[string]func(t *testing.T) session.Store{
		"memory": newMemStore,
		"sqlite": newSQLiteStore,
		"redis":  newRedisStore,
	}

	for name, build := range drivers {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			t.Run("get missing key", func(t *testing.T) {
				s := build(t)
				require.NoError(t, s.Init(ctx))

				_, err := s.Get(ctx, session.KeyToken)
				assert.ErrorIs(t, err, session.ErrKeyNotFound)
			})

			t.Run("set overwrites only its key", func(t *testing.T) {
				s := build(t)
				require.NoError(t, s.Init(ctx))

				require.NoError(t, s.Set(ctx, session.KeyToken, "tok-1"))
				require.NoError(t, s.Set(ctx, session.KeyTheme, "ocean"))
				require.NoError(t, s.Set(ctx, session.KeyToken, "tok-2"))

				tok, err := s.Get(ctx, session.KeyToken)
				require.NoError(t, err)
				assert.Equal(t, "tok-2", tok)

				theme, err := s.Get(ctx, session.KeyTheme)
				require.NoError(t, err)
				assert.Equal(t, "ocean", theme)
			})

			t.Run("teardown clears auth keys and keeps theme", func(t *testing.T) {
				s := build(t)
				require.NoError(t, s.Init(ctx))

				require.NoError(t, s.Set(ctx, session.KeyToken, "tok"))
				require.NoError(t, s.Set(ctx, session.KeyUser, `{"id":1}`))
				require.NoError(t, s.Set(ctx, session.KeyDemoMode, "true"))
				require.NoError(t, s.Set(ctx, session.KeyTheme, "royal"))

				require.NoError(t, s.Teardown(ctx, session.AuthKeys()...))

				for _, k := range session.AuthKeys() {
					_, err := s.Get(ctx, k)
					assert.ErrorIs(t, err, session.ErrKeyNotFound, k)
				}
				theme, err := s.Get(ctx, session.KeyTheme)
				require.NoError(t, err)
				assert.Equal(t, "royal", theme)
			})

			t.Run("delete of absent keys is not an error", func(t *testing.T) {
				s := build(t)
				require.NoError(t, s.Init(ctx))

				assert.NoError(t, s.Delete(ctx, "nope"))
				assert.NoError(t, s.Delete(ctx))
				assert.NoError(t, s.Teardown(ctx))
			})

			t.Run("init is idempotent", func(t *testing.T) {
				s := build(t)
				require.NoError(t, s.Init(ctx))
				require.NoError(t, s.Set(ctx, session.KeyDemoMode, "true"))
				require.NoError(t, s.Init(ctx))

				v, err := s.Get(ctx, session.KeyDemoMode)
				require.NoError(t, err)
				assert.Equal(t, "true", v)
			})
		})
	}
}

func TestMemoryStore_Len(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, s.Set(ctx, "a", "1"))
	require.NoError(t, s.Set(ctx, "b", "2"))
	assert.Equal(t, 2, s.Len())
	require.NoError(t, s.Close())
	assert.Equal(t, 0, s.Len())
}

func TestStoreFactory(t *testing.T) {
	t.Run("memory driver", func(t *testing.T) {
		s, err := NewStoreFactory(config.StoreConfig{Driver: "memory"}).CreateStore()
		require.NoError(t, err)
		assert.IsType(t, &MemoryStore{}, s)
	})

	t.Run("sqlite driver", func(t *testing.T) {
		s, err := NewStoreFactory(config.StoreConfig{Driver: "sqlite", SQLitePath: ":memory:"}).CreateStore()
		require.NoError(t, err)
		defer s.Close()
		assert.IsType(t, &GormStore{}, s)
	})

	t.Run("unreachable redis without fallback fails", func(t *testing.T) {
		cfg := config.StoreConfig{Driver: "redis", RedisHost: "127.0.0.1", RedisPort: 1}
		_, err := NewStoreFactory(cfg, WithInMemoryFallback(false)).CreateStore()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "redis")
	})

	t.Run("unreachable redis falls back to memory", func(t *testing.T) {
		cfg := config.StoreConfig{Driver: "redis", RedisHost: "127.0.0.1", RedisPort: 1, Fallback: true}
		s, err := NewStoreFactory(cfg, WithLogger(zap.NewNop())).CreateStore()
		require.NoError(t, err)
		assert.IsType(t, &MemoryStore{}, s)
	})

	t.Run("unknown driver", func(t *testing.T) {
		_, err := NewStoreFactory(config.StoreConfig{Driver: "etcd"}).CreateStore()
		require.Error(t, err)
	})
}
