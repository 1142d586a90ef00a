// Package booking orchestrates booking creation and payment recording against
// a persistence backend, enforcing the ledger rules before any write.
package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/DeveloperForam/test-house-design/internal/ledger"
	"github.com/DeveloperForam/test-house-design/internal/models"
	"github.com/DeveloperForam/test-house-design/internal/money"
)

// Backend is the persistence API bookings are stored behind. It is either the
// database directly (server) or the REST API (adminctl).
//
// CreateBooking must move the house to booked atomically with the insert and
// fail with models.ErrHouseUnavailable if someone got there first. AddPayment
// must repeat the pending check at write time and fail with
// ledger.ErrExceedsPending when it no longer holds.
type Backend interface {
	GetHouse(ctx context.Context, projectID, houseNumber string) (*models.House, error)
	CreateBooking(ctx context.Context, b *models.Booking) (*models.Booking, error)
	GetBooking(ctx context.Context, bookingID string) (*models.Booking, error)
	ListBookings(ctx context.Context) ([]*models.Booking, error)
	ListPayments(ctx context.Context, bookingID string) ([]models.Payment, error)
	AddPayment(ctx context.Context, p *models.Payment) (*models.Payment, error)
}

// Observer is told about successful writes.
type Observer interface {
	BookingCreated(ctx context.Context, b *models.Booking)
	PaymentRecorded(ctx context.Context, b *models.Booking, p *models.Payment, pendingAfter money.Money)
}

type Service struct {
	backend   Backend
	observers []Observer
	logger    *zap.Logger
	now       func() time.Time
}

func NewService(backend Backend, logger *zap.Logger, observers ...Observer) *Service {
	return &Service{
		backend:   backend,
		observers: observers,
		logger:    logger,
		now:       time.Now,
	}
}

// CreateBookingInput is what the booking form collects.
type CreateBookingInput struct {
	ProjectID    string
	HouseNumber  string
	CustomerName string
	MobileNo     string
	PaymentType  models.PaymentType
	Advance      money.Money
	BookingDate  models.Date
}

// AddPaymentInput is what the add-payment form collects.
type AddPaymentInput struct {
	BookingID    string
	Amount       money.Money
	Details      models.PaymentDetails
	ReceivedDate models.Date
}

// History is a booking with its payment log and everything derived from it.
type History struct {
	Booking  *models.Booking
	Payments []models.Payment
	Rows     []ledger.Row
	Pending  money.Money
	State    ledger.State
}

// CreateBooking books an available house.
func (s *Service) CreateBooking(ctx context.Context, in CreateBookingInput) (*models.Booking, error) {
	mobile := strings.TrimSpace(in.MobileNo)
	if len(mobile) != 10 || !models.IsDigits(mobile) {
		return nil, invalid("mobileNo", ErrInvalidMobile)
	}
	if strings.TrimSpace(in.CustomerName) == "" {
		return nil, invalid("customerName", errors.New("customer name is required"))
	}
	if in.PaymentType != models.PaymentTypeCash && in.PaymentType != models.PaymentTypeBank {
		return nil, invalid("paymentType", fmt.Errorf("unsupported payment type %q", in.PaymentType))
	}
	if in.Advance <= 0 {
		return nil, invalid("advancePayment", ErrInvalidAdvance)
	}

	house, err := s.backend.GetHouse(ctx, in.ProjectID, in.HouseNumber)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, invalid("houseNumber", fmt.Errorf("%w: house %s does not exist", ErrHouseUnavailable, in.HouseNumber))
		}
		return nil, &FetchError{Op: "load house", Err: err}
	}
	if house.Status != models.HouseStatusAvailable {
		return nil, invalid("houseNumber", fmt.Errorf("%w: house %s is %s", ErrHouseUnavailable, house.HouseNumber, house.Status))
	}

	total := house.EffectivePrice()
	if in.Advance > total {
		return nil, invalid("advancePayment", ErrInvalidAdvance)
	}

	bookingDate := in.BookingDate
	if bookingDate.IsZero() {
		bookingDate = models.NewDate(s.now())
	}

	b := &models.Booking{
		ID:             uuid.New().String(),
		BookingCode:    NewBookingCode(s.now()),
		ProjectID:      house.ProjectID,
		ProjectName:    house.ProjectName,
		HouseNumber:    house.HouseNumber,
		CustomerName:   strings.TrimSpace(in.CustomerName),
		MobileNo:       mobile,
		PaymentType:    in.PaymentType,
		TotalAmount:    total,
		AdvancePayment: in.Advance,
		BookingDate:    bookingDate,
		CreatedAt:      s.now(),
	}

	created, err := s.backend.CreateBooking(ctx, b)
	if err != nil {
		return nil, mutationError("create booking", err)
	}
	fillDerived(created, nil)

	s.logger.Info("booking created",
		zap.String("booking_id", created.ID),
		zap.String("booking_code", created.BookingCode),
		zap.String("project_id", created.ProjectID),
		zap.String("house_number", created.HouseNumber))

	for _, o := range s.observers {
		o.BookingCreated(ctx, created)
	}
	return created, nil
}

// AddPayment records a payment after checking it against a freshly loaded balance.
func (s *Service) AddPayment(ctx context.Context, in AddPaymentInput) (*models.Payment, error) {
	if in.Details == nil {
		return nil, invalid("paymentMethod", models.ErrUnknownPaymentMethod)
	}
	if err := in.Details.Validate(); err != nil {
		return nil, invalid("paymentDetails", err)
	}
	if in.Amount <= 0 {
		return nil, invalid("amountReceived", ErrNonPositiveAmount)
	}
	if in.ReceivedDate.IsZero() {
		return nil, invalid("paymentReceivedDate", errors.New("payment received date is required"))
	}

	// Reload right before validating so the check never runs on a balance
	// computed before an earlier write completed.
	history, err := s.LoadBookingWithHistory(ctx, in.BookingID)
	if err != nil {
		return nil, err
	}
	if err := ledger.ValidatePayment(in.Amount, history.Pending); err != nil {
		s.logger.Info("payment rejected",
			zap.String("booking_id", history.Booking.ID),
			zap.Int64("amount_paise", in.Amount.Paise()),
			zap.Int64("pending_paise", history.Pending.Paise()),
			zap.Error(err))
		return nil, invalid("amountReceived", err)
	}

	p := &models.Payment{
		ID:                  uuid.New().String(),
		BookingID:           history.Booking.ID,
		AmountReceived:      in.Amount,
		PaymentMethod:       in.Details.Method(),
		PaymentDetails:      in.Details,
		PaymentReceivedDate: in.ReceivedDate,
		CreatedAt:           s.now(),
	}

	recorded, err := s.backend.AddPayment(ctx, p)
	if err != nil {
		return nil, mutationError("add payment", err)
	}

	pendingAfter, _ := money.Subtract(history.Pending, recorded.AmountReceived)
	s.logger.Info("payment recorded",
		zap.String("booking_id", history.Booking.ID),
		zap.String("payment_id", recorded.ID),
		zap.Int64("amount_paise", recorded.AmountReceived.Paise()),
		zap.Int64("pending_after_paise", pendingAfter.Paise()),
		zap.Bool("sold", ledger.IsSold(pendingAfter)))

	for _, o := range s.observers {
		o.PaymentRecorded(ctx, history.Booking, recorded, pendingAfter)
	}
	return recorded, nil
}

// LoadBookingWithHistory fetches the booking and its payments. Either fetch
// failing fails the whole load; callers never get partial data.
func (s *Service) LoadBookingWithHistory(ctx context.Context, bookingID string) (*History, error) {
	b, err := s.backend.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, &FetchError{Op: "load booking", Err: err}
	}
	payments, err := s.backend.ListPayments(ctx, b.ID)
	if err != nil {
		return nil, &FetchError{Op: "load payment history", Err: err}
	}

	fillDerived(b, payments)
	return &History{
		Booking:  b,
		Payments: payments,
		Rows:     ledger.RunningBalances(b.TotalAmount, b.AdvancePayment, payments),
		Pending:  b.PendingAmount,
		State:    ledger.StateOf(b.PendingAmount),
	}, nil
}

// Summary is the booking with its pending amount recomputed.
func (s *Service) Summary(ctx context.Context, bookingID string) (*models.Booking, error) {
	h, err := s.LoadBookingWithHistory(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	return h.Booking, nil
}

// ListBookings returns every booking with its pending amount recomputed from
// the paid total the backend reports.
func (s *Service) ListBookings(ctx context.Context) ([]*models.Booking, error) {
	bookings, err := s.backend.ListBookings(ctx)
	if err != nil {
		return nil, &FetchError{Op: "list bookings", Err: err}
	}
	for _, b := range bookings {
		b.PendingAmount = ledger.PendingAfterPaid(b.TotalAmount, b.AdvancePayment, b.PaidAmount)
		b.State = string(ledger.StateOf(b.PendingAmount))
	}
	return bookings, nil
}

// fillDerived recomputes the fields that are never stored.
func fillDerived(b *models.Booking, payments []models.Payment) {
	b.PaidAmount = ledger.Paid(payments)
	b.PendingAmount = ledger.CurrentPending(b.TotalAmount, b.AdvancePayment, payments)
	b.State = string(ledger.StateOf(b.PendingAmount))
}

// Rows converts ledger rows into their wire form.
func Rows(rows []ledger.Row) []models.PaymentRow {
	out := make([]models.PaymentRow, len(rows))
	for i, r := range rows {
		out[i] = models.PaymentRow{
			Payment:      r.Payment,
			PendingAfter: r.PendingAfter,
			Sold:         ledger.IsSold(r.PendingAfter),
		}
	}
	return out
}

// NewBookingCode builds the display id, e.g. BK-20240115-3F9A1C.
func NewBookingCode(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:6])
	return fmt.Sprintf("BK-%s-%s", now.Format("20060102"), suffix)
}

func mutationError(op string, err error) error {
	var m *MutationError
	if errors.As(err, &m) {
		return err
	}
	return &MutationError{Op: op, Err: err}
}
