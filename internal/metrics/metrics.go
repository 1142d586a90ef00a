// Package metrics exposes Prometheus collectors for the booking ledger.
package metrics

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/DeveloperForam/test-house-design/internal/ledger"
	"github.com/DeveloperForam/test-house-design/internal/models"
	"github.com/DeveloperForam/test-house-design/internal/money"
)

type Metrics struct {
	BookingsCreated  prometheus.Counter
	PaymentsRecorded *prometheus.CounterVec
	PaymentAmount    prometheus.Histogram
	BookingsSold     prometheus.Counter
	LedgerRejections *prometheus.CounterVec
	HTTPDuration     *prometheus.HistogramVec
}

// New builds the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		BookingsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bookings_created_total",
			Help: "Bookings created.",
		}),
		PaymentsRecorded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "payments_recorded_total",
			Help: "Payments recorded, by payment method.",
		}, []string{"method"}),
		PaymentAmount: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "payment_amount_rupees",
			Help:    "Size of recorded payments in rupees.",
			Buckets: prometheus.ExponentialBuckets(1000, 10, 7),
		}),
		BookingsSold: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bookings_sold_total",
			Help: "Bookings whose pending amount reached zero.",
		}),
		LedgerRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_rejections_total",
			Help: "Payments refused by the ledger rules, by reason.",
		}, []string{"reason"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
	reg.MustRegister(
		m.BookingsCreated,
		m.PaymentsRecorded,
		m.PaymentAmount,
		m.BookingsSold,
		m.LedgerRejections,
		m.HTTPDuration,
	)
	return m
}

// RegisterCacheSize publishes size as the summary_cache_entries gauge.
func RegisterCacheSize(reg prometheus.Registerer, size func() int) prometheus.GaugeFunc {
	g := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "summary_cache_entries",
		Help: "Booking summaries held in the in-memory cache layer.",
	}, func() float64 { return float64(size()) })
	reg.MustRegister(g)
	return g
}

func (m *Metrics) BookingCreated(ctx context.Context, b *models.Booking) {
	m.BookingsCreated.Inc()
	if ledger.IsSold(b.PendingAmount) {
		m.BookingsSold.Inc()
	}
}

func (m *Metrics) PaymentRecorded(ctx context.Context, b *models.Booking, p *models.Payment, pendingAfter money.Money) {
	m.PaymentsRecorded.WithLabelValues(string(p.PaymentMethod)).Inc()
	amount, _ := p.AmountReceived.Decimal().Float64()
	m.PaymentAmount.Observe(amount)
	if ledger.IsSold(pendingAfter) {
		m.BookingsSold.Inc()
	}
}

// Rejected counts err if it is one of the ledger rules.
func (m *Metrics) Rejected(err error) {
	switch {
	case errors.Is(err, ledger.ErrExceedsPending):
		m.LedgerRejections.WithLabelValues("exceeds_pending").Inc()
	case errors.Is(err, ledger.ErrSoldAlready):
		m.LedgerRejections.WithLabelValues("sold_already").Inc()
	case errors.Is(err, ledger.ErrNonPositiveAmount):
		m.LedgerRejections.WithLabelValues("non_positive").Inc()
	}
}

// Middleware times each request by its route pattern.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.HTTPDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
