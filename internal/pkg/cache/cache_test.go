package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type profile struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func newTestHelper(t *testing.T) (*CacheHelper, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCacheHelper(client, "test:", time.Minute), mr
}

func TestCacheHelper_SetGet(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestHelper(t)

	require.NoError(t, c.Set(ctx, "p1", profile{ID: "1", Name: "Sari"}, 0))
	assert.True(t, mr.Exists("test:p1"))
	assert.Equal(t, time.Minute, mr.TTL("test:p1"))

	var got profile
	require.NoError(t, c.Get(ctx, "p1", &got))
	assert.Equal(t, "Sari", got.Name)

	err := c.Get(ctx, "missing", &got)
	assert.ErrorIs(t, err, ErrCacheNotFound)
}

func TestCacheHelper_Expiry(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestHelper(t)

	require.NoError(t, c.Set(ctx, "short", "v", 2*time.Second))
	mr.FastForward(3 * time.Second)

	var v string
	assert.ErrorIs(t, c.Get(ctx, "short", &v), ErrCacheNotFound)
}

func TestCacheHelper_Delete(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestHelper(t)

	require.NoError(t, c.Set(ctx, "a", 1, 0))
	require.NoError(t, c.Set(ctx, "b", 2, 0))
	require.NoError(t, c.Delete(ctx, "a", "b", "never-set"))
	assert.False(t, mr.Exists("test:a"))
	assert.False(t, mr.Exists("test:b"))
}

func TestCacheHelper_Claim(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestHelper(t)

	first, err := c.Claim(ctx, "summary:2025-01-06", time.Hour)
	require.NoError(t, err)
	assert.True(t, first)

	second, err := c.Claim(ctx, "summary:2025-01-06", time.Hour)
	require.NoError(t, err)
	assert.False(t, second)
}

func TestCacheHelper_Disabled(t *testing.T) {
	ctx := context.Background()
	c := NewCacheHelper(nil, "x:", time.Minute)

	assert.NoError(t, c.Set(ctx, "k", 1, 0))
	assert.NoError(t, c.Delete(ctx, "k"))

	var v int
	assert.ErrorIs(t, c.Get(ctx, "k", &v), ErrCacheNotAvailable)

	ok, err := c.Claim(ctx, "k", 0)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestGetOrLoad(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestHelper(t)

	calls := 0
	load := func(ctx context.Context) ([]string, error) {
		calls++
		return []string{"Budi", "Sari"}, nil
	}

	got, err := GetOrLoad(ctx, c, "teachers", load)
	require.NoError(t, err)
	assert.Equal(t, []string{"Budi", "Sari"}, got)

	got, err = GetOrLoad(ctx, c, "teachers", load)
	require.NoError(t, err)
	assert.Equal(t, []string{"Budi", "Sari"}, got)
	assert.Equal(t, 1, calls)
}

func TestGetOrLoad_LoadError(t *testing.T) {
	ctx := context.Background()
	c := NewCacheHelper(nil, "", 0)
	boom := errors.New("boom")

	_, err := GetOrLoad(ctx, c, "k", func(ctx context.Context) (int, error) { return 0, boom })
	assert.ErrorIs(t, err, boom)
}
