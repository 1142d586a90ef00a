package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/DeveloperForam/test-house-design/internal/booking"
	"github.com/DeveloperForam/test-house-design/internal/models"
	"github.com/DeveloperForam/test-house-design/internal/money"
	"github.com/DeveloperForam/test-house-design/internal/repository"
	"github.com/DeveloperForam/test-house-design/internal/service"
	"github.com/DeveloperForam/test-house-design/internal/storage"
	"github.com/DeveloperForam/test-house-design/pkg/middleware"
)

// statusFor maps an error to the HTTP status the console expects.
func statusFor(err error) int {
	switch {
	case errors.Is(err, booking.ErrHouseUnavailable):
		return http.StatusConflict
	case booking.IsValidation(err):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, booking.ErrExceedsPending),
		errors.Is(err, booking.ErrSoldAlready),
		errors.Is(err, models.ErrDuplicate),
		errors.Is(err, repository.ErrHasBookings),
		errors.Is(err, service.ErrRequestInFlight):
		return http.StatusConflict
	case errors.Is(err, service.ErrInvalidProject),
		errors.Is(err, money.ErrInvalidAmount),
		errors.Is(err, models.ErrInvalidPaymentDetails),
		errors.Is(err, models.ErrUnknownPaymentMethod),
		errors.Is(err, storage.ErrTooManyFiles),
		errors.Is(err, storage.ErrFileTooLarge),
		errors.Is(err, storage.ErrInvalidExtension):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrInvalidToken):
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

// respondError writes err under key ("error" or "message"). Server errors are
// logged and replaced by fallback so internals never reach the client.
func respondError(c *gin.Context, log *zap.Logger, err error, key, fallback string) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Error(fallback,
			zap.String("request_id", c.GetString(middleware.RequestIDKey)),
			zap.Error(err))
		c.JSON(status, gin.H{key: fallback})
		return
	}
	c.JSON(status, gin.H{key: err.Error()})
}
