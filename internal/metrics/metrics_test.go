package metrics

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/DeveloperForam/test-house-design/internal/ledger"
	"github.com/DeveloperForam/test-house-design/internal/models"
	"github.com/DeveloperForam/test-house-design/internal/money"
)

func TestPaymentRecorded(t *testing.T) {
	m := New(prometheus.NewRegistry())
	b := &models.Booking{ID: "bk-1"}

	m.PaymentRecorded(context.Background(), b, &models.Payment{PaymentMethod: models.PaymentMethodUPI, AmountReceived: money.Rupees(150000)}, money.Rupees(250000))
	m.PaymentRecorded(context.Background(), b, &models.Payment{PaymentMethod: models.PaymentMethodCash, AmountReceived: money.Rupees(250000)}, money.Zero)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.PaymentsRecorded.WithLabelValues("upi")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PaymentsRecorded.WithLabelValues("cash")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BookingsSold))
}

func TestRejected(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.Rejected(fmt.Errorf("amountReceived: %w", ledger.ErrExceedsPending))
	m.Rejected(ledger.ErrSoldAlready)
	m.Rejected(fmt.Errorf("unrelated"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.LedgerRejections.WithLabelValues("exceeds_pending")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LedgerRejections.WithLabelValues("sold_already")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.LedgerRejections))
}

func TestMiddlewareUsesRoutePattern(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New(prometheus.NewRegistry())
	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/api/payment-history/:bookingId", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/payment-history/bk-1", nil))

	assert.Equal(t, 1, testutil.CollectAndCount(m.HTTPDuration))
}

func TestCacheSizeGauge(t *testing.T) {
	n := 3
	g := RegisterCacheSize(prometheus.NewRegistry(), func() int { return n })

	assert.Equal(t, 3.0, testutil.ToFloat64(g))
	n = 5
	assert.Equal(t, 5.0, testutil.ToFloat64(g))
}
