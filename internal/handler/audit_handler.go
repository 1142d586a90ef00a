package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/DeveloperForam/test-house-design/internal/audit"
	"github.com/DeveloperForam/test-house-design/internal/booking"
)

// AuditHandler serves the event trail of a booking. It is only mounted when
// events are stored somewhere that can be queried.
type AuditHandler struct {
	events   audit.Reader
	bookings *booking.Service
	logger   *zap.Logger
}

func NewAuditHandler(events audit.Reader, bookings *booking.Service, logger *zap.Logger) *AuditHandler {
	return &AuditHandler{events: events, bookings: bookings, logger: logger}
}

func (h *AuditHandler) Register(api *gin.RouterGroup, auth gin.HandlerFunc) {
	api.GET("/bookings/:bookingId/events", auth, h.Events)
}

// Events handles GET /api/bookings/:bookingId/events. The id may be the uuid or the display code.
func (h *AuditHandler) Events(c *gin.Context) {
	ctx := c.Request.Context()
	b, err := h.bookings.Summary(ctx, c.Param("bookingId"))
	if err != nil {
		respondError(c, h.logger, err, "error", "Failed to load booking")
		return
	}

	events, err := h.events.ForBooking(ctx, b.ID)
	if err != nil {
		respondError(c, h.logger, err, "error", "Failed to load booking events")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": events, "bookingId": b.BookingCode})
}
