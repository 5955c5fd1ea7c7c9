package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMiniRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestCheckRateLimit(t *testing.T) {
	mr, rdb := newMiniRedis(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, err := CheckRateLimit(ctx, rdb, "login", "ip:1.2.3.4", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed, "attempt %d", i+1)
	}

	allowed, err := CheckRateLimit(ctx, rdb, "login", "ip:1.2.3.4", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed)

	assert.True(t, mr.Exists("rl:login:ip:1.2.3.4"))
	assert.Equal(t, time.Minute, mr.TTL("rl:login:ip:1.2.3.4"))

	mr.FastForward(time.Minute + time.Second)
	allowed, err = CheckRateLimit(ctx, rdb, "login", "ip:1.2.3.4", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed, "window resets after expiry")
}

func TestCheckRateLimit_NilRedis(t *testing.T) {
	allowed, err := CheckRateLimit(context.Background(), nil, "x", "1", 1, time.Minute)
	assert.Error(t, err)
	assert.False(t, allowed)
}

func TestRateLimitMiddleware(t *testing.T) {
	ok := func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) }

	t.Run("Bypass in test mode", func(t *testing.T) {
		t.Setenv("APP_ENV", "test")
		app := fiber.New()
		app.Get("/test", RateLimit(nil, 1, time.Minute), ok)

		for i := 0; i < 3; i++ {
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/test", nil))
			require.NoError(t, err)
			assert.Equal(t, http.StatusOK, resp.StatusCode)
		}
	})

	t.Run("Limits in production", func(t *testing.T) {
		t.Setenv("APP_ENV", "production")
		_, rdb := newMiniRedis(t)
		app := fiber.New()
		app.Post("/login", RateLimit(rdb, 2, time.Minute, "login"), ok)

		codes := make([]int, 0, 3)
		for i := 0; i < 3; i++ {
			resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/login", nil))
			require.NoError(t, err)
			codes = append(codes, resp.StatusCode)
		}
		assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
	})

	t.Run("FailOpen with nil redis in production", func(t *testing.T) {
		t.Setenv("APP_ENV", "production")
		app := fiber.New()
		app.Get("/test", RateLimit(nil, 1, time.Minute), ok)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/test", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("FailClosed with nil redis in production", func(t *testing.T) {
		t.Setenv("APP_ENV", "production")
		app := fiber.New()
		app.Get("/sensitive", RateLimitWithPolicy(nil, 1, time.Minute, FailClosed), ok)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/sensitive", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	})
}
