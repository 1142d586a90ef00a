package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func TestRateLimiterRejectsBurst(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RateLimiter(2, zap.NewNop()))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:4000"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestLimiterStoreDropsIdleClients(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	store := newLimiterStore(rate.Every(time.Second), 1)
	store.now = func() time.Time { return now }
	store.lastSweep = now

	for _, ip := range []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"} {
		store.get(ip)
	}
	require.Len(t, store.limiters, 3)

	now = now.Add(limiterIdle / 2)
	store.get("10.0.0.1")
	assert.Len(t, store.limiters, 3, "no sweep before the idle window passes")

	now = now.Add(limiterIdle/2 + time.Second)
	store.get("10.0.0.4")

	assert.Len(t, store.limiters, 2)
	assert.Contains(t, store.limiters, "10.0.0.1")
	assert.Contains(t, store.limiters, "10.0.0.4")
}

func TestLimiterStoreKeepsStateForActiveClient(t *testing.T) {
	store := newLimiterStore(rate.Every(time.Hour), 1)

	assert.True(t, store.get("10.0.0.1").Allow())
	assert.False(t, store.get("10.0.0.1").Allow())
	assert.True(t, store.get("10.0.0.2").Allow())
}
