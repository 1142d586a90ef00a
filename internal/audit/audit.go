// Package audit keeps an append-only trail of booking events.
package audit

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/DeveloperForam/test-house-design/internal/models"
	"github.com/DeveloperForam/test-house-design/internal/money"
)

const (
	EventBookingCreated        = "booking.created"
	EventPaymentRecorded       = "payment.recorded"
	EventHouseStatusOverridden = "house.status_overridden"
)

// Event is one entry of the trail. Amounts are in paise.
type Event struct {
	Type         string    `bson:"type" json:"type"`
	BookingID    string    `bson:"booking_id,omitempty" json:"bookingId,omitempty"`
	BookingCode  string    `bson:"booking_code,omitempty" json:"bookingCode,omitempty"`
	PaymentID    string    `bson:"payment_id,omitempty" json:"paymentId,omitempty"`
	ProjectID    string    `bson:"project_id" json:"projectId"`
	HouseNumber  string    `bson:"house_number" json:"houseNumber"`
	Amount       int64     `bson:"amount,omitempty" json:"amount,omitempty"`
	PendingAfter int64     `bson:"pending_after,omitempty" json:"pendingAfter,omitempty"`
	Status       string    `bson:"status,omitempty" json:"status,omitempty"`
	At           time.Time `bson:"at" json:"at"`
}

type Recorder interface {
	Record(ctx context.Context, e Event) error
}

// LogRecorder writes events to the log only.
type LogRecorder struct {
	logger *zap.Logger
}

func NewLogRecorder(logger *zap.Logger) *LogRecorder {
	return &LogRecorder{logger: logger}
}

func (r *LogRecorder) Record(ctx context.Context, e Event) error {
	r.logger.Info("audit event",
		zap.String("type", e.Type),
		zap.String("booking_id", e.BookingID),
		zap.String("payment_id", e.PaymentID),
		zap.String("project_id", e.ProjectID),
		zap.String("house_number", e.HouseNumber),
		zap.Int64("amount_paise", e.Amount),
		zap.Int64("pending_after_paise", e.PendingAfter),
		zap.String("status", e.Status),
		zap.Time("at", e.At))
	return nil
}

// Trail turns booking and house events into audit records. A failed write is
// logged and never fails the operation that caused it.
type Trail struct {
	recorder Recorder
	logger   *zap.Logger
	now      func() time.Time
}

func NewTrail(recorder Recorder, logger *zap.Logger) *Trail {
	return &Trail{recorder: recorder, logger: logger, now: time.Now}
}

func (t *Trail) BookingCreated(ctx context.Context, b *models.Booking) {
	t.record(ctx, Event{
		Type:         EventBookingCreated,
		BookingID:    b.ID,
		BookingCode:  b.BookingCode,
		ProjectID:    b.ProjectID,
		HouseNumber:  b.HouseNumber,
		Amount:       b.AdvancePayment.Paise(),
		PendingAfter: b.PendingAmount.Paise(),
	})
}

func (t *Trail) PaymentRecorded(ctx context.Context, b *models.Booking, p *models.Payment, pendingAfter money.Money) {
	t.record(ctx, Event{
		Type:         EventPaymentRecorded,
		BookingID:    b.ID,
		BookingCode:  b.BookingCode,
		PaymentID:    p.ID,
		ProjectID:    b.ProjectID,
		HouseNumber:  b.HouseNumber,
		Amount:       p.AmountReceived.Paise(),
		PendingAfter: pendingAfter.Paise(),
	})
}

// StatusOverridden records an admin pinning a house status. Empty status means the override was cleared.
func (t *Trail) StatusOverridden(ctx context.Context, projectID, houseNumber, status string) {
	t.record(ctx, Event{
		Type:        EventHouseStatusOverridden,
		ProjectID:   projectID,
		HouseNumber: houseNumber,
		Status:      status,
	})
}

func (t *Trail) record(ctx context.Context, e Event) {
	e.At = t.now().UTC()
	if err := t.recorder.Record(ctx, e); err != nil {
		t.logger.Error("failed to record audit event",
			zap.String("type", e.Type),
			zap.String("booking_id", e.BookingID),
			zap.Error(err))
	}
}

// Reader lists the recorded events of one booking.
type Reader interface {
	ForBooking(ctx context.Context, bookingID string) ([]Event, error)
}
