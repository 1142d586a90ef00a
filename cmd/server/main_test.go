package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/DeveloperForam/test-house-design/internal/config"
	"github.com/DeveloperForam/test-house-design/internal/handler"
	"github.com/DeveloperForam/test-house-design/internal/metrics"
	"github.com/DeveloperForam/test-house-design/internal/service"
)

type fakePinger struct{ err error }

func (p fakePinger) PingContext(ctx context.Context) error { return p.err }
func (p fakePinger) Ping(ctx context.Context) error        { return p.err }

func testRouter(ready func(ctx context.Context) error) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{Environment: "test", AllowedOrigins: "*", MaxRequestsPerMin: 1000, MaxUploadMB: 1}
	auth := handler.NewAuthHandler(service.NewAuthService("admin", "", "secret", time.Hour, nil, zap.NewNop()), zap.NewNop())
	return setupRouter(cfg, zap.NewNop(), metrics.New(prometheus.NewRegistry()), auth, nil, ready)
}

func TestHealthAndReadiness(t *testing.T) {
	down := errors.New("connection refused")
	tests := []struct {
		name   string
		db     error
		redis  error
		status int
	}{
		{"all up", nil, nil, http.StatusOK},
		{"database down", down, nil, http.StatusServiceUnavailable},
		{"redis down", nil, down, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := testRouter(readiness(fakePinger{tt.db}, fakePinger{tt.redis}))

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
			assert.Equal(t, http.StatusOK, w.Code)

			w = httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
			assert.Equal(t, tt.status, w.Code)
		})
	}
}
