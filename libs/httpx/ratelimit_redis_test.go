package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedisLimiter(t *testing.T, limit int) (*RedisRateLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisRateLimiter(rdb, limit, time.Minute, "rl-test"), mr
}

func TestRedisRateLimiterEnforcesLimit(t *testing.T) {
	rl, _ := newTestRedisLimiter(t, 3)
	h := rl.Middleware(nil, false)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "http://example.com/api/v1/public/slots", nil)
		req.RemoteAddr = "203.0.113.7:1234"
		rw := httptest.NewRecorder()
		h.ServeHTTP(rw, req)
		if rw.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, rw.Code)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "http://example.com/api/v1/public/slots", nil)
	req.RemoteAddr = "203.0.113.7:1234"
	rw := httptest.NewRecorder()
	h.ServeHTTP(rw, req)
	if rw.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after limit, got %d", rw.Code)
	}
}

func TestRedisRateLimiterSeparatesClients(t *testing.T) {
	rl, _ := newTestRedisLimiter(t, 1)
	h := rl.Middleware(nil, false)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	first := httptest.NewRequest(http.MethodGet, "http://example.com/", nil)
	first.Header.Set("X-Forwarded-For", "198.51.100.1")
	rw := httptest.NewRecorder()
	h.ServeHTTP(rw, first)
	if rw.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rw.Code)
	}

	second := httptest.NewRequest(http.MethodGet, "http://example.com/", nil)
	second.Header.Set("X-Forwarded-For", "198.51.100.2")
	rw = httptest.NewRecorder()
	h.ServeHTTP(rw, second)
	if rw.Code != http.StatusOK {
		t.Fatalf("different client should have its own window, got %d", rw.Code)
	}
}

func TestRedisRateLimiterWindowExpiry(t *testing.T) {
	rl, mr := newTestRedisLimiter(t, 1)
	h := rl.Middleware(nil, false)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	send := func() int {
		req := httptest.NewRequest(http.MethodGet, "http://example.com/", nil)
		req.RemoteAddr = "203.0.113.9:4321"
		rw := httptest.NewRecorder()
		h.ServeHTTP(rw, req)
		return rw.Code
	}

	if code := send(); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if code := send(); code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", code)
	}

	mr.FastForward(2 * time.Minute)
	if code := send(); code != http.StatusOK {
		t.Fatalf("expected 200 after window reset, got %d", code)
	}
}

func TestRedisRateLimiterFailOpen(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	rl := NewRedisRateLimiter(rdb, 1, time.Minute, "rl-test")
	mr.Close()

	h := rl.Middleware(nil, true)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	req := httptest.NewRequest(http.MethodGet, "http://example.com/", nil)
	rw := httptest.NewRecorder()
	h.ServeHTTP(rw, req)
	if rw.Code != http.StatusOK {
		t.Fatalf("fail-open should pass requests through, got %d", rw.Code)
	}

	closed := rl.Middleware(nil, false)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	rw = httptest.NewRecorder()
	closed.ServeHTTP(rw, req)
	if rw.Code != http.StatusServiceUnavailable {
		t.Fatalf("fail-closed should return 503, got %d", rw.Code)
	}
}
