// Package ledger derives the financial state of a booking from its total,
// its advance and the ordered list of payments received since. Nothing here
// performs I/O; the pending balance is always recomputed, never stored.
package ledger

import (
	"errors"
	"sort"

	"github.com/DeveloperForam/test-house-design/internal/models"
	"github.com/DeveloperForam/test-house-design/internal/money"
)

var (
	ErrExceedsPending    = errors.New("payment exceeds pending amount")
	ErrNonPositiveAmount = errors.New("payment amount must be greater than zero")
	ErrSoldAlready       = errors.New("booking is already fully paid")
)

// State of a booking. OPEN moves to SOLD once and never back.
type State string

const (
	StateOpen State = "OPEN"
	StateSold State = "SOLD"
)

// Row is one line of the payment history with the balance left after it.
type Row struct {
	Payment      models.Payment
	PendingAfter money.Money
}

// Opening is the balance owed right after booking: total minus advance, never negative.
func Opening(total, advance money.Money) money.Money {
	pending, _ := money.Subtract(total, advance)
	return pending
}

// PendingAfterPaid is max(0, total - advance - paid).
func PendingAfterPaid(total, advance, paid money.Money) money.Money {
	pending, _ := money.Subtract(Opening(total, advance), paid)
	return pending
}

// CurrentPending is max(0, total - advance - sum of payments).
func CurrentPending(total, advance money.Money, payments []models.Payment) money.Money {
	return PendingAfterPaid(total, advance, Paid(payments))
}

// Paid sums the amounts received.
func Paid(payments []models.Payment) money.Money {
	var paid money.Money
	for i := range payments {
		paid = money.Add(paid, payments[i].AmountReceived)
	}
	return paid
}

// Ordered returns a copy sorted by received date, keeping input order for ties.
func Ordered(payments []models.Payment) []models.Payment {
	ordered := make([]models.Payment, len(payments))
	copy(ordered, payments)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].PaymentReceivedDate.Before(ordered[j].PaymentReceivedDate.Time)
	})
	return ordered
}

// RunningBalances folds the ledger in received-date order. The last row's
// PendingAfter always equals CurrentPending over the same inputs.
func RunningBalances(total, advance money.Money, payments []models.Payment) []Row {
	rows := make([]Row, 0, len(payments))
	pending := Opening(total, advance)
	for _, p := range Ordered(payments) {
		pending, _ = money.Subtract(pending, p.AmountReceived)
		rows = append(rows, Row{Payment: p, PendingAfter: pending})
	}
	return rows
}

// IsSold reports whether nothing is left to pay.
func IsSold(pending money.Money) bool {
	return pending == 0
}

// StateOf maps a pending balance to the booking state.
func StateOf(pending money.Money) State {
	if IsSold(pending) {
		return StateSold
	}
	return StateOpen
}

// ValidatePayment checks a new payment against the balance currently owed.
func ValidatePayment(amount, currentPending money.Money) error {
	if currentPending <= 0 {
		return ErrSoldAlready
	}
	if amount <= 0 {
		return ErrNonPositiveAmount
	}
	if amount > currentPending {
		return ErrExceedsPending
	}
	return nil
}

// DeriveHouseStatus returns the admin override when present, otherwise
// available without a booking, sold once the booking is paid off, booked in between.
func DeriveHouseStatus(override *models.HouseStatus, hasBooking bool, pending money.Money) models.HouseStatus {
	if override != nil {
		return *override
	}
	switch {
	case !hasBooking:
		return models.HouseStatusAvailable
	case IsSold(pending):
		return models.HouseStatusSold
	default:
		return models.HouseStatusBooked
	}
}
