package session

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePending(t *testing.T) {
	tests := []struct {
		in      string
		want    Pending
		wantErr bool
	}{
		{"", PendingNone, false},
		{"none", PendingNone, false},
		{"location", PendingLocation, false},
		{"destination", PendingDestination, false},
		{"country", PendingCountry, false},
		{"attraction_location", PendingAttractionLocation, false},
		{"flight", PendingNone, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePending(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestState_Awaiting(t *testing.T) {
	assert.False(t, Idle().Awaiting())
	assert.False(t, State{}.Awaiting())
	assert.True(t, State{Pending: PendingCountry}.Awaiting())
}

// exerciseStore runs the behaviour every backend must share.
func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	state, err := store.Load(ctx, "unknown")
	require.NoError(t, err)
	assert.Equal(t, PendingNone, state.Pending)

	require.NoError(t, store.Save(ctx, "s1", State{Pending: PendingLocation}))
	require.NoError(t, store.Save(ctx, "s2", State{Pending: PendingCountry}))

	state, err = store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, PendingLocation, state.Pending)
	assert.False(t, state.UpdatedAt.IsZero())

	// A new request overwrites the pending kind.
	require.NoError(t, store.Save(ctx, "s1", State{Pending: PendingDestination}))
	state, err = store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, PendingDestination, state.Pending)

	require.NoError(t, store.Clear(ctx, "s1"))
	state, err = store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, PendingNone, state.Pending)

	// Other sessions are untouched.
	state, err = store.Load(ctx, "s2")
	require.NoError(t, err)
	assert.Equal(t, PendingCountry, state.Pending)

	require.NoError(t, store.Clear(ctx, "never-saved"))
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore(time.Hour))
}

func TestMemoryStore_Expiry(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "s", State{Pending: PendingLocation}))

	now = now.Add(30 * time.Second)
	state, err := store.Load(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, PendingLocation, state.Pending)

	now = now.Add(2 * time.Minute)
	state, err = store.Load(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, PendingNone, state.Pending)
}

func TestMemoryStore_EmptyPendingIsNone(t *testing.T) {
	store := NewMemoryStore(0)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "s", State{}))
	state, err := store.Load(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, PendingNone, state.Pending)
	assert.Equal(t, 1, store.Len())
}

func TestMemoryStore_Concurrent(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("s%d", i)
			_ = store.Save(ctx, id, State{Pending: PendingLocation})
			_, _ = store.Load(ctx, id)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 50, store.Len())
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisStore(t *testing.T) {
	_, client := newTestRedis(t)
	exerciseStore(t, NewRedisStore(client, time.Hour))
}

func TestRedisStore_Expiry(t *testing.T) {
	mr, client := newTestRedis(t)
	store := NewRedisStore(client, time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "s", State{Pending: PendingAttractionLocation}))
	assert.True(t, mr.Exists(redisKeyPrefix+"s"))
	assert.Equal(t, time.Minute, mr.TTL(redisKeyPrefix+"s"))

	mr.FastForward(2 * time.Minute)

	state, err := store.Load(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, PendingNone, state.Pending)
}

func TestRedisStore_CorruptValue(t *testing.T) {
	mr, client := newTestRedis(t)
	store := NewRedisStore(client, time.Minute)
	ctx := context.Background()

	require.NoError(t, mr.Set(redisKeyPrefix+"bad-json", "{"))
	_, err := store.Load(ctx, "bad-json")
	assert.Error(t, err)

	require.NoError(t, mr.Set(redisKeyPrefix+"bad-kind", `{"pending":"flight"}`))
	_, err = store.Load(ctx, "bad-kind")
	assert.Error(t, err)
}

func TestRedisStore_Unreachable(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()

	client := redis.NewClient(&redis.Options{Addr: addr, MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })

	store := NewRedisStore(client, time.Minute)
	_, err = store.Load(context.Background(), "s")
	assert.Error(t, err)
}

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("TRIPBOT_TEST_DSN")
	if dsn == "" {
		t.Skip("TRIPBOT_TEST_DSN not set; skipping DB-backed session tests")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	store := NewPostgresStore(pool, time.Hour)
	require.NoError(t, store.Migrate(ctx))
	_, err = pool.Exec(ctx, `DELETE FROM chat_sessions WHERE session_id IN ('unknown', 's1', 's2', 'never-saved')`)
	require.NoError(t, err)

	exerciseStore(t, store)
}
