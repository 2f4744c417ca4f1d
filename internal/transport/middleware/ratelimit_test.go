package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/heartmarshall/flashquest-backend/internal/config"
	"github.com/heartmarshall/flashquest-backend/pkg/ctxutil"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func doRequest(ctx context.Context, h http.Handler, remote string) int {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/card_reviews", nil).WithContext(ctx)
	req.RemoteAddr = remote
	h.ServeHTTP(rec, req)
	return rec.Code
}

func TestRateLimiter_BurstThenBlocks(t *testing.T) {
	rl := NewRateLimiter(config.RateLimitConfig{Enabled: true, RPS: 0.001, Burst: 5}, time.Minute)
	defer rl.Stop()

	handler := rl.Limit()(okHandler())

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, doRequest(context.Background(), handler, "1.2.3.4:1234"), "request %d should be allowed", i)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/card_reviews", nil)
	req.RemoteAddr = "1.2.3.4:9999"
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code, "same host on another port shares the bucket")
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestRateLimiter_ClientsIndependent(t *testing.T) {
	rl := NewRateLimiter(config.RateLimitConfig{Enabled: true, RPS: 0.001, Burst: 1}, time.Minute)
	defer rl.Stop()

	handler := rl.Limit()(okHandler())

	assert.Equal(t, http.StatusOK, doRequest(context.Background(), handler, "1.1.1.1:1"))
	assert.Equal(t, http.StatusTooManyRequests, doRequest(context.Background(), handler, "1.1.1.1:1"))
	assert.Equal(t, http.StatusOK, doRequest(context.Background(), handler, "2.2.2.2:1"))

	// Two learners behind the same address get separate buckets.
	a := ctxutil.WithLearnerID(context.Background(), uuid.New())
	b := ctxutil.WithLearnerID(context.Background(), uuid.New())
	assert.Equal(t, http.StatusOK, doRequest(a, handler, "3.3.3.3:1"))
	assert.Equal(t, http.StatusOK, doRequest(b, handler, "3.3.3.3:1"))
	assert.Equal(t, http.StatusTooManyRequests, doRequest(a, handler, "3.3.3.3:1"))
}

func TestRateLimiter_Refill(t *testing.T) {
	rl := NewRateLimiter(config.RateLimitConfig{Enabled: true, RPS: 20, Burst: 1}, time.Minute)
	defer rl.Stop()

	handler := rl.Limit()(okHandler())

	assert.Equal(t, http.StatusOK, doRequest(context.Background(), handler, "4.4.4.4:1"))
	assert.Equal(t, http.StatusTooManyRequests, doRequest(context.Background(), handler, "4.4.4.4:1"))

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, http.StatusOK, doRequest(context.Background(), handler, "4.4.4.4:1"))
}

func TestRateLimiter_EvictIdle(t *testing.T) {
	rl := NewRateLimiter(config.RateLimitConfig{Enabled: true, RPS: 1, Burst: 1}, time.Hour)
	defer rl.Stop()

	rl.limiter("ip:5.5.5.5")
	rl.evictIdle(time.Now())
	assert.Len(t, rl.clients, 1)

	rl.evictIdle(time.Now().Add(idleTTL + time.Second))
	assert.Empty(t, rl.clients)
}
