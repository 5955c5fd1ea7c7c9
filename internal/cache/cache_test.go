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

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func useMiniRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = Close() })
	return mr
}

func TestAside_MissThenHit(t *testing.T) {
	mr := useMiniRedis(t)
	ctx := context.Background()

	calls := 0
	fetch := func(dest *payload) func() error {
		return func() error {
			calls++
			*dest = payload{Name: "design", Count: 3}
			return nil
		}
	}

	var first payload
	require.NoError(t, Aside(ctx, CategoriesKey, &first, time.Minute, fetch(&first)))
	assert.Equal(t, payload{Name: "design", Count: 3}, first)
	assert.True(t, mr.Exists(CategoriesKey))

	var second payload
	require.NoError(t, Aside(ctx, CategoriesKey, &second, time.Minute, fetch(&second)))
	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)

	mr.FastForward(2 * time.Minute)
	var third payload
	require.NoError(t, Aside(ctx, CategoriesKey, &third, time.Minute, fetch(&third)))
	assert.Equal(t, 2, calls)
}

func TestAside_FetchErrorIsNotCached(t *testing.T) {
	mr := useMiniRedis(t)
	boom := errors.New("db down")

	var dest payload
	err := Aside(context.Background(), TopSellersKey(8, 0), &dest, time.Minute, func() error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists(TopSellersKey(8, 0)))
}

func TestAside_WithoutRedis(t *testing.T) {
	SetClient(nil)

	var dest payload
	err := Aside(context.Background(), "anything", &dest, time.Minute, func() error {
		dest.Name = "fresh"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "fresh", dest.Name)
}

func TestAside_RedisDownFallsBackToFetch(t *testing.T) {
	mr := useMiniRedis(t)
	mr.Close()

	var dest payload
	err := Aside(context.Background(), CategoriesKey, &dest, time.Minute, func() error {
		dest.Count = 42
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, dest.Count)
}

func TestInvalidateCatalog(t *testing.T) {
	mr := useMiniRedis(t)
	ctx := context.Background()

	require.NoError(t, mr.Set(CategoriesKey, "[]"))
	require.NoError(t, mr.Set(TopSellersKey(8, 0), "[]"))
	require.NoError(t, mr.Set(SearchKey("abc"), "{}"))
	require.NoError(t, mr.Set(UserKey(1), "{}"))

	InvalidateCatalog(ctx)

	assert.False(t, mr.Exists(CategoriesKey))
	assert.False(t, mr.Exists(TopSellersKey(8, 0)))
	assert.False(t, mr.Exists(SearchKey("abc")))
	assert.True(t, mr.Exists(UserKey(1)))
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "user:7", UserKey(7))
	assert.Equal(t, "catalog:top:8:16", TopSellersKey(8, 16))
	assert.Equal(t, "banner:3:impressions", BannerImpressionsKey(3))
	assert.Equal(t, "catalog_search", family(SearchKey("x")))
	assert.Equal(t, "user", family(UserKey(1)))
}
