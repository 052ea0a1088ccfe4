package middleware

import (
	"context"
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

func testCacheConfig() config.CacheConfig {
	return config.CacheConfig{Enabled: true, TTL: time.Minute, Prefix: "share", MaxBodyBytes: 1 << 20}
}

func newCacheServer(t *testing.T, rc *ResponseCache, h echo.HandlerFunc) *echo.Echo {
	t.Helper()
	e := echo.New()
	e.GET("/share/:token", h, rc.Middleware())
	return e
}

func get(e *echo.Echo, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestResponseCacheHitMissInvalidate(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	rc := NewResponseCache(testCacheConfig(), rdb)
	hits := 0
	e := newCacheServer(t, rc, func(c echo.Context) error {
		hits++
		return c.JSON(http.StatusOK, echo.Map{"title": "shared note"})
	})

	// First read fills the cache.
	rec := get(e, "/share/tok-1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	assert.Equal(t, 1, hits)
	body := rec.Body.String()

	// Second read is replayed without touching the handler.
	rec = get(e, "/share/tok-1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))
	assert.Equal(t, 1, hits)
	assert.Equal(t, body, rec.Body.String())

	// A different token has its own entry.
	rec = get(e, "/share/tok-2")
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	assert.Equal(t, 2, hits)

	// Invalidation drops exactly the named token.
	require.NoError(t, rc.Invalidate(context.Background(), "tok-1"))
	rec = get(e, "/share/tok-1")
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	assert.Equal(t, 3, hits)
	rec = get(e, "/share/tok-2")
	assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))
	assert.Equal(t, 3, hits)
}

func TestResponseCacheSkipsNon200(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	rc := NewResponseCache(testCacheConfig(), rdb)
	hits := 0
	e := newCacheServer(t, rc, func(c echo.Context) error {
		hits++
		return c.JSON(http.StatusNotFound, echo.Map{"message": "gone"})
	})

	get(e, "/share/missing")
	rec := get(e, "/share/missing")
	// Both requests reach the handler; failures are never cached.
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, 2, hits)
}

func TestResponseCacheSkipsOversizedBody(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	cfg := testCacheConfig()
	cfg.MaxBodyBytes = 8
	rc := NewResponseCache(cfg, rdb)
	hits := 0
	e := newCacheServer(t, rc, func(c echo.Context) error {
		hits++
		return c.String(http.StatusOK, "this body exceeds the eight byte cap")
	})

	get(e, "/share/big")
	get(e, "/share/big")
	assert.Equal(t, 2, hits)
}

func TestResponseCacheWithoutRedisIsPassThrough(t *testing.T) {
	rc := NewResponseCache(testCacheConfig(), nil)
	hits := 0
	e := newCacheServer(t, rc, func(c echo.Context) error {
		hits++
		return c.JSON(http.StatusOK, echo.Map{"ok": true})
	})

	rec := get(e, "/share/tok")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-Cache"))
	get(e, "/share/tok")
	assert.Equal(t, 2, hits)

	// Invalidate is a no-op, not a panic.
	assert.NoError(t, rc.Invalidate(context.Background(), "tok"))
}
