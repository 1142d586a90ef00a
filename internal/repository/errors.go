package repository

import (
	"errors"

	"github.com/lib/pq"

	"github.com/DeveloperForam/test-house-design/internal/ledger"
	"github.com/DeveloperForam/test-house-design/internal/models"
)

var (
	ErrNotFound         = models.ErrNotFound
	ErrDuplicate        = models.ErrDuplicate
	ErrHouseUnavailable = models.ErrHouseUnavailable
	// ErrExceedsPending is returned when the pending check fails inside the write transaction.
	ErrExceedsPending = ledger.ErrExceedsPending
	ErrHasBookings    = errors.New("project has bookings")
)

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
