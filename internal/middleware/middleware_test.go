package middleware

import (
	"context"
	"io"
	"net"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestIdentity(t *testing.T) {
	req := require.New(t)
	app := fiber.New()
	app.Get("/", Identity(), func(c *fiber.Ctx) error {
		return c.SendString(UserFrom(c))
	})

	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("user", "alice")
	resp, err := app.Test(r)
	req.NoError(err)
	body, _ := io.ReadAll(resp.Body)
	req.Equal("alice", string(body))

	resp, err = app.Test(httptest.NewRequest("GET", "/", nil))
	req.NoError(err)
	body, _ = io.ReadAll(resp.Body)
	req.Empty(string(body))
}

func TestUserFrom_WithoutIdentity(t *testing.T) {
	req := require.New(t)
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("[" + UserFrom(c) + "]")
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	req.NoError(err)
	body, _ := io.ReadAll(resp.Body)
	req.Equal("[]", string(body))
}

func TestRequestLogger_LevelsByStatus(t *testing.T) {
	req := require.New(t)
	core, logs := observer.New(zapcore.InfoLevel)
	app := fiber.New()
	app.Use(RequestLogger(zap.New(core)))
	app.Get("/ok", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })
	app.Get("/gone", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNotFound) })
	app.Get("/boom", func(c *fiber.Ctx) error { return fiber.NewError(fiber.StatusServiceUnavailable, "down") })

	for path, want := range map[string]int{
		"/ok":   fiber.StatusNoContent,
		"/gone": fiber.StatusNotFound,
		"/boom": fiber.StatusServiceUnavailable,
	} {
		r := httptest.NewRequest("GET", path, nil)
		r.Header.Set(UserHeader, "alice")
		resp, err := app.Test(r)
		req.NoError(err)
		req.Equal(want, resp.StatusCode)
	}

	req.Equal(3, logs.Len())
	byPath := map[string]observer.LoggedEntry{}
	for _, e := range logs.All() {
		byPath[e.ContextMap()["path"].(string)] = e
	}
	req.Equal(zapcore.InfoLevel, byPath["/ok"].Level)
	req.Equal(zapcore.WarnLevel, byPath["/gone"].Level)
	req.Equal(zapcore.ErrorLevel, byPath["/boom"].Level)
	req.Equal(int64(fiber.StatusServiceUnavailable), byPath["/boom"].ContextMap()["status"])
	req.Equal("alice", byPath["/ok"].ContextMap()["user"])
}

func TestIPRateLimiter(t *testing.T) {
	req := require.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	limiter := NewIPRateLimiter(ctx, 60, 2, zap.NewNop())
	app := fiber.New()
	app.Use(limiter.Handler())
	app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	for i := 0; i < 2; i++ {
		resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
		req.NoError(err)
		req.Equal(fiber.StatusOK, resp.StatusCode)
	}
	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	req.NoError(err)
	req.Equal(fiber.StatusTooManyRequests, resp.StatusCode)
}

func TestIPRateLimiter_EvictIdle(t *testing.T) {
	req := require.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	limiter := NewIPRateLimiter(ctx, 60, 1, zap.NewNop())
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return start }
	req.True(limiter.allow("10.0.0.1"))
	req.False(limiter.allow("10.0.0.1"))

	req.Equal(1, limiter.evictIdle(start.Add(-time.Minute)))
	req.Equal(0, limiter.evictIdle(start.Add(time.Second)))

	req.True(limiter.allow("10.0.0.1"))
}

func TestRedisRateLimiter_StoreUnavailable(t *testing.T) {
	req := require.New(t)
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer rdb.Close()

	app := fiber.New()
	app.Use(NewRedisRateLimiter(rdb, "test", 10, time.Minute, zap.NewNop()).Handler())
	app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil), 2000)
	req.NoError(err)
	req.Equal(fiber.StatusInternalServerError, resp.StatusCode)
}

// counterHook answers SET and INCR in memory so the limiter runs without a
// Redis server.
type counterHook struct {
	mu     sync.Mutex
	counts map[string]int64
	sets   [][]any
}

func (h *counterHook) DialHook(next redis.DialHook) redis.DialHook {
	return func(context.Context, string, string) (net.Conn, error) {
		return nil, io.ErrClosedPipe
	}
}

func (h *counterHook) ProcessHook(redis.ProcessHook) redis.ProcessHook {
	return func(_ context.Context, cmd redis.Cmder) error {
		h.apply(cmd)
		return nil
	}
}

func (h *counterHook) ProcessPipelineHook(redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(_ context.Context, cmds []redis.Cmder) error {
		for _, cmd := range cmds {
			h.apply(cmd)
		}
		return nil
	}
}

func (h *counterHook) apply(cmd redis.Cmder) {
	h.mu.Lock()
	defer h.mu.Unlock()
	args := cmd.Args()
	switch cmd.Name() {
	case "set":
		h.sets = append(h.sets, args)
		key := args[1].(string)
		_, exists := h.counts[key]
		if !exists {
			h.counts[key] = 0
		}
		if b, ok := cmd.(*redis.BoolCmd); ok {
			b.SetVal(!exists)
		}
	case "incr":
		key := args[1].(string)
		h.counts[key]++
		cmd.(*redis.IntCmd).SetVal(h.counts[key])
	}
}

func TestRedisRateLimiter_FixedWindow(t *testing.T) {
	req := require.New(t)
	hook := &counterHook{counts: make(map[string]int64)}
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	rdb.AddHook(hook)
	defer rdb.Close()

	app := fiber.New()
	app.Use(NewRedisRateLimiter(rdb, "rl", 2, time.Minute, zap.NewNop()).Handler())
	app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	for _, want := range []int{fiber.StatusOK, fiber.StatusOK, fiber.StatusTooManyRequests} {
		resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
		req.NoError(err)
		req.Equal(want, resp.StatusCode)
	}

	hook.mu.Lock()
	defer hook.mu.Unlock()
	req.Len(hook.sets, 3)
	for _, args := range hook.sets {
		req.Contains(args, "ex")
		req.Contains(args, "nx")
	}
}
