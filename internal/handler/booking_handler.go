package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/DeveloperForam/test-house-design/internal/booking"
	"github.com/DeveloperForam/test-house-design/internal/metrics"
	"github.com/DeveloperForam/test-house-design/internal/models"
	"github.com/DeveloperForam/test-house-design/internal/money"
	"github.com/DeveloperForam/test-house-design/internal/service"
)

const IdempotencyKeyHeader = "Idempotency-Key"

type BookingHandler struct {
	bookings    *booking.Service
	cache       *service.SummaryCache
	idempotency *service.IdempotencyStore
	metrics     *metrics.Metrics
	parser      money.Parser
	logger      *zap.Logger
}

func NewBookingHandler(
	bookings *booking.Service,
	cache *service.SummaryCache,
	idempotency *service.IdempotencyStore,
	m *metrics.Metrics,
	parser money.Parser,
	logger *zap.Logger,
) *BookingHandler {
	return &BookingHandler{
		bookings:    bookings,
		cache:       cache,
		idempotency: idempotency,
		metrics:     m,
		parser:      parser,
		logger:      logger,
	}
}

func (h *BookingHandler) Register(api *gin.RouterGroup, auth gin.HandlerFunc) {
	api.GET("/bookings", auth, h.ListBookings)
	api.POST("/bookings/create", auth, h.CreateBooking)

	history := api.Group("/payment-history", auth)
	history.GET("", h.PaymentHistory)
	history.GET("/:bookingId", h.Summary)
	history.POST("/add-payment", h.AddPayment)
}

// ListBookings handles GET /api/bookings
func (h *BookingHandler) ListBookings(c *gin.Context) {
	bookings, err := h.bookings.ListBookings(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, "error", "Failed to load bookings")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": bookings})
}

// CreateBooking handles POST /api/bookings/create. Errors are reported under "message".
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var req models.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	advance, err := h.parser.Parse(req.AdvancePayment)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "advancePayment: " + err.Error()})
		return
	}
	var bookingDate models.Date
	if strings.TrimSpace(req.BookingDate) != "" {
		if bookingDate, err = models.ParseDate(req.BookingDate); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "bookingDate: " + err.Error()})
			return
		}
	}

	created, err := h.bookings.CreateBooking(c.Request.Context(), booking.CreateBookingInput{
		ProjectID:    req.ProjectID,
		HouseNumber:  req.HouseNumber,
		CustomerName: req.CustomerName,
		MobileNo:     req.MobileNo,
		PaymentType:  models.PaymentType(req.PaymentType),
		Advance:      advance,
		BookingDate:  bookingDate,
	})
	if err != nil {
		respondError(c, h.logger, err, "message", "Failed to create booking")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": created})
}

// Summary handles GET /api/payment-history/:bookingId
func (h *BookingHandler) Summary(c *gin.Context) {
	id := c.Param("bookingId")
	ctx := c.Request.Context()

	if cached, err := h.cache.Get(ctx, id); err == nil {
		c.JSON(http.StatusOK, gin.H{"data": cached})
		return
	}

	gen, genErr := h.cache.Generation(ctx, id)
	summary, err := h.bookings.Summary(ctx, id)
	if err != nil {
		respondError(c, h.logger, err, "error", "Failed to load booking")
		return
	}
	if genErr == nil {
		h.cache.Set(ctx, id, gen, summary)
	}
	c.JSON(http.StatusOK, gin.H{"data": summary})
}

// PaymentHistory handles GET /api/payment-history?bookingId=
func (h *BookingHandler) PaymentHistory(c *gin.Context) {
	id := c.Query("bookingId")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bookingId is required"})
		return
	}

	history, err := h.bookings.LoadBookingWithHistory(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err, "error", "Failed to load payment history")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data":          booking.Rows(history.Rows),
		"pendingAmount": history.Pending,
		"state":         history.State,
	})
}

// AddPayment handles POST /api/payment-history/add-payment
func (h *BookingHandler) AddPayment(c *gin.Context) {
	var req models.AddPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	amount, err := h.parser.Parse(req.AmountReceived)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amountReceived: " + err.Error()})
		return
	}
	details, err := models.DecodePaymentDetails(models.PaymentMethod(req.PaymentMethod), req.PaymentDetails)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	received, err := models.ParseDate(req.PaymentReceivedDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "paymentReceivedDate: " + err.Error()})
		return
	}

	ctx := c.Request.Context()
	input := booking.AddPaymentInput{
		BookingID:    req.BookingID,
		Amount:       amount,
		Details:      details,
		ReceivedDate: received,
	}
	record := func() (*models.Payment, error) {
		return h.bookings.AddPayment(ctx, input)
	}

	var (
		payment  *models.Payment
		replayed bool
	)
	if key := c.GetHeader(IdempotencyKeyHeader); key != "" {
		payment, replayed, err = h.idempotency.Do(ctx, key, record)
	} else {
		payment, err = record()
	}
	if err != nil {
		h.metrics.Rejected(err)
		respondError(c, h.logger, err, "error", "Failed to add payment")
		return
	}

	if replayed {
		c.Header("Idempotent-Replayed", "true")
	}
	c.JSON(http.StatusCreated, gin.H{"data": payment})
}
