package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/kmilodenisglez/task-backend/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, ttl time.Duration) (*miniredis.Miniredis, Storage) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := NewRedisClient(mr.Addr(), "", 0)
	t.Cleanup(func() { rdb.Close() })
	return mr, NewRedisStorage(rdb, ttl)
}

func TestUserCache_RoundTrip(t *testing.T) {
	mr, cs := newTestCache(t, time.Minute)
	ctx := context.Background()
	name := "Ann"

	user := &store.User{ID: 7, Email: "ann@example.com", Name: &name, PasswordHash: "secret"}
	require.NoError(t, cs.Users.Set(ctx, user))
	assert.True(t, mr.Exists("user-7"))
	assert.Equal(t, time.Minute, mr.TTL("user-7"))

	got, err := cs.Users.Get(ctx, 7)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "ann@example.com", got.Email)
	assert.Equal(t, "Ann", *got.Name)
	assert.Empty(t, got.PasswordHash, "hash must never be cached")
}

func TestUserCache_MissIsNotAnError(t *testing.T) {
	_, cs := newTestCache(t, time.Minute)

	got, err := cs.Users.Get(context.Background(), 42)
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestUserCache_Expires(t *testing.T) {
	mr, cs := newTestCache(t, 0)
	ctx := context.Background()

	require.NoError(t, cs.Users.Set(ctx, &store.User{ID: 1, Email: "a@b.com"}))
	assert.Equal(t, DefaultUserTTL, mr.TTL("user-1"))

	mr.FastForward(DefaultUserTTL + time.Second)
	got, err := cs.Users.Get(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.False(t, mr.Exists("user-1"))
}

func TestUserCache_RejectsUnsavedUser(t *testing.T) {
	_, cs := newTestCache(t, time.Minute)
	assert.Error(t, cs.Users.Set(context.Background(), &store.User{Email: "x@y.com"}))
}

func TestPing(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := NewRedisClient(mr.Addr(), "", 0)
	defer rdb.Close()

	assert.NoError(t, Ping(context.Background(), rdb))

	mr.Close()
	assert.Error(t, Ping(context.Background(), rdb))
}
