package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartnotes/api/internal/config"
)

// asUser injects the id the JWT middleware would normally resolve.
func asUser(uid uint64) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("user_id", uid)
			return next(c)
		}
	}
}

func newLimitedServer(cfg config.RateLimitConfig, rdb *redis.Client, uid uint64) *echo.Echo {
	e := echo.New()
	e.GET("/notes", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"ok": true})
	}, asUser(uid), NewRateLimiter(cfg, rdb))
	return e
}

func limitedGet(e *echo.Echo) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/notes", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRateLimiterDrainsBucket(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	cfg := config.RateLimitConfig{
		Enabled:        true,
		Capacity:       2,
		RefillTokens:   1,
		RefillInterval: time.Hour, // no refill within the test
		TTL:            time.Hour,
		Prefix:         "rl",
	}
	e := newLimitedServer(cfg, rdb, 7)

	rec := limitedGet(e)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", rec.Header().Get("X-RateLimit-Remaining"))

	rec = limitedGet(e)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

	rec = limitedGet(e)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "Rate limit exceeded")
}

func TestRateLimiterBucketsPerUser(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	cfg := config.RateLimitConfig{
		Enabled:        true,
		Capacity:       1,
		RefillTokens:   1,
		RefillInterval: time.Hour,
		TTL:            time.Hour,
		Prefix:         "rl",
	}

	alice := newLimitedServer(cfg, rdb, 1)
	bob := newLimitedServer(cfg, rdb, 2)

	require.Equal(t, http.StatusOK, limitedGet(alice).Code)
	assert.Equal(t, http.StatusTooManyRequests, limitedGet(alice).Code)

	// Draining one user's bucket never affects another's.
	assert.Equal(t, http.StatusOK, limitedGet(bob).Code)
}

func TestRateLimiterFailsOpen(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	mr.Close() // Redis is down from the first request

	cfg := config.RateLimitConfig{
		Enabled:        true,
		Capacity:       1,
		RefillTokens:   1,
		RefillInterval: time.Hour,
		TTL:            time.Hour,
		Prefix:         "rl",
	}
	e := newLimitedServer(cfg, rdb, 7)

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, limitedGet(e).Code)
	}
}

func TestRateLimiterDisabledIsPassThrough(t *testing.T) {
	cfg := config.RateLimitConfig{Enabled: false}
	e := newLimitedServer(cfg, nil, 7)

	rec := limitedGet(e)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
}
