package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/DeveloperForam/test-house-design/internal/ledger"
	"github.com/DeveloperForam/test-house-design/internal/models"
	"github.com/DeveloperForam/test-house-design/internal/money"
)

type fakeBackend struct {
	house    *models.House
	booking  *models.Booking
	payments []models.Payment

	getHouseErr   error
	getBookingErr error
	listErr       error
	addErr        error

	getHouseCalls, createCalls, getBookingCalls, listCalls, addCalls int
}

func (f *fakeBackend) GetHouse(ctx context.Context, projectID, houseNumber string) (*models.House, error) {
	f.getHouseCalls++
	if f.getHouseErr != nil {
		return nil, f.getHouseErr
	}
	h := *f.house
	return &h, nil
}

func (f *fakeBackend) CreateBooking(ctx context.Context, b *models.Booking) (*models.Booking, error) {
	f.createCalls++
	f.booking = b
	f.house.Status = models.HouseStatusBooked
	cp := *b
	return &cp, nil
}

func (f *fakeBackend) GetBooking(ctx context.Context, bookingID string) (*models.Booking, error) {
	f.getBookingCalls++
	if f.getBookingErr != nil {
		return nil, f.getBookingErr
	}
	if f.booking == nil {
		return nil, models.ErrNotFound
	}
	cp := *f.booking
	return &cp, nil
}

func (f *fakeBackend) ListBookings(ctx context.Context) ([]*models.Booking, error) {
	if f.booking == nil {
		return []*models.Booking{}, nil
	}
	cp := *f.booking
	cp.PaidAmount = ledger.Paid(f.payments)
	return []*models.Booking{&cp}, nil
}

func (f *fakeBackend) ListPayments(ctx context.Context, bookingID string) ([]models.Payment, error) {
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]models.Payment(nil), f.payments...), nil
}

func (f *fakeBackend) AddPayment(ctx context.Context, p *models.Payment) (*models.Payment, error) {
	f.addCalls++
	if f.addErr != nil {
		return nil, f.addErr
	}
	f.payments = append(f.payments, *p)
	return p, nil
}

type recordingObserver struct {
	bookings []string
	pending  []money.Money
}

func (r *recordingObserver) BookingCreated(ctx context.Context, b *models.Booking) {
	r.bookings = append(r.bookings, b.ID)
}

func (r *recordingObserver) PaymentRecorded(ctx context.Context, b *models.Booking, p *models.Payment, pendingAfter money.Money) {
	r.pending = append(r.pending, pendingAfter)
}

func availableHouse(price int64) *models.House {
	return &models.House{
		ProjectID:   "proj-1",
		ProjectName: "Lily Residency",
		HouseNumber: "A-101",
		Price:       money.Rupees(price),
		Status:      models.HouseStatusAvailable,
	}
}

func bookedWith(total, advance int64) *models.Booking {
	return &models.Booking{
		ID:             "bk-1",
		BookingCode:    "BK-20240101-ABCDEF",
		ProjectID:      "proj-1",
		HouseNumber:    "A-101",
		TotalAmount:    money.Rupees(total),
		AdvancePayment: money.Rupees(advance),
	}
}

func paymentInput(rupees int64) AddPaymentInput {
	return AddPaymentInput{
		BookingID:    "bk-1",
		Amount:       money.Rupees(rupees),
		Details:      models.CashDetails{},
		ReceivedDate: models.NewDate(time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)),
	}
}

func bookingInput() CreateBookingInput {
	return CreateBookingInput{
		ProjectID:    "proj-1",
		HouseNumber:  "A-101",
		CustomerName: "Asha Patil",
		MobileNo:     "9876543210",
		PaymentType:  models.PaymentTypeCash,
		Advance:      money.Rupees(100000),
	}
}

func TestCreateBooking(t *testing.T) {
	backend := &fakeBackend{house: availableHouse(500000)}
	observer := &recordingObserver{}
	svc := NewService(backend, zap.NewNop(), observer)

	b, err := svc.CreateBooking(context.Background(), bookingInput())

	require.NoError(t, err)
	assert.Equal(t, money.Rupees(500000), b.TotalAmount)
	assert.Equal(t, money.Rupees(400000), b.PendingAmount)
	assert.Equal(t, string(ledger.StateOpen), b.State)
	assert.Regexp(t, `^BK-\d{8}-[0-9A-F]{6}$`, b.BookingCode)
	assert.False(t, b.BookingDate.IsZero())
	assert.Equal(t, []string{b.ID}, observer.bookings)
	assert.Equal(t, 1, backend.createCalls)
}

func TestCreateBookingValidation(t *testing.T) {
	tests := []struct {
		name         string
		mutate       func(*CreateBookingInput)
		house        *models.House
		wantErr      error
		wantGetHouse int
	}{
		{
			name:    "short mobile",
			mutate:  func(in *CreateBookingInput) { in.MobileNo = "12345" },
			house:   availableHouse(500000),
			wantErr: ErrInvalidMobile,
		},
		{
			name:    "mobile with letters",
			mutate:  func(in *CreateBookingInput) { in.MobileNo = "98765abcde" },
			house:   availableHouse(500000),
			wantErr: ErrInvalidMobile,
		},
		{
			name:    "zero advance",
			mutate:  func(in *CreateBookingInput) { in.Advance = 0 },
			house:   availableHouse(500000),
			wantErr: ErrInvalidAdvance,
		},
		{
			name:         "advance above total",
			mutate:       func(in *CreateBookingInput) { in.Advance = money.Rupees(600000) },
			house:        availableHouse(500000),
			wantErr:      ErrInvalidAdvance,
			wantGetHouse: 1,
		},
		{
			name:   "house already booked",
			mutate: func(in *CreateBookingInput) {},
			house: func() *models.House {
				h := availableHouse(500000)
				h.Status = models.HouseStatusBooked
				return h
			}(),
			wantErr:      ErrHouseUnavailable,
			wantGetHouse: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &fakeBackend{house: tt.house}
			svc := NewService(backend, zap.NewNop())
			in := bookingInput()
			tt.mutate(&in)

			_, err := svc.CreateBooking(context.Background(), in)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.True(t, IsValidation(err))
			assert.Equal(t, tt.wantGetHouse, backend.getHouseCalls)
			assert.Zero(t, backend.createCalls, "no write may happen")
		})
	}
}

func TestCreateBookingUnknownHouse(t *testing.T) {
	backend := &fakeBackend{getHouseErr: models.ErrNotFound}
	svc := NewService(backend, zap.NewNop())

	_, err := svc.CreateBooking(context.Background(), bookingInput())

	assert.ErrorIs(t, err, ErrHouseUnavailable)
	assert.Zero(t, backend.createCalls)
}

func TestCreateBookingFullyPaidAtBooking(t *testing.T) {
	backend := &fakeBackend{house: availableHouse(300000)}
	svc := NewService(backend, zap.NewNop())
	in := bookingInput()
	in.Advance = money.Rupees(300000)

	b, err := svc.CreateBooking(context.Background(), in)

	require.NoError(t, err)
	assert.Equal(t, money.Zero, b.PendingAmount)
	assert.Equal(t, string(ledger.StateSold), b.State)
}

func TestAddPaymentSequence(t *testing.T) {
	backend := &fakeBackend{booking: bookedWith(500000, 100000)}
	observer := &recordingObserver{}
	svc := NewService(backend, zap.NewNop(), observer)
	ctx := context.Background()

	_, err := svc.AddPayment(ctx, paymentInput(150000))
	require.NoError(t, err)
	_, err = svc.AddPayment(ctx, paymentInput(250000))
	require.NoError(t, err)

	assert.Equal(t, []money.Money{money.Rupees(250000), money.Zero}, observer.pending)

	h, err := svc.LoadBookingWithHistory(ctx, "bk-1")
	require.NoError(t, err)
	assert.Equal(t, ledger.StateSold, h.State)
	assert.Len(t, h.Rows, 2)

	_, err = svc.AddPayment(ctx, paymentInput(1))
	assert.ErrorIs(t, err, ErrSoldAlready)
	assert.Equal(t, 2, backend.addCalls)
}

func TestAddPaymentExceedsPendingMakesNoWrite(t *testing.T) {
	backend := &fakeBackend{
		booking:  bookedWith(500000, 100000),
		payments: []models.Payment{{ID: "p1", AmountReceived: money.Rupees(150000)}},
	}
	svc := NewService(backend, zap.NewNop())

	_, err := svc.AddPayment(context.Background(), paymentInput(600000))

	assert.ErrorIs(t, err, ErrExceedsPending)
	assert.True(t, IsValidation(err))
	assert.Zero(t, backend.addCalls)
}

func TestAddPaymentRefetchesEveryTime(t *testing.T) {
	backend := &fakeBackend{booking: bookedWith(500000, 100000)}
	svc := NewService(backend, zap.NewNop())
	ctx := context.Background()

	_, err := svc.AddPayment(ctx, paymentInput(100000))
	require.NoError(t, err)

	// Another admin records a payment behind our back.
	backend.payments = append(backend.payments, models.Payment{ID: "other", AmountReceived: money.Rupees(250000)})

	_, err = svc.AddPayment(ctx, paymentInput(100000))
	assert.ErrorIs(t, err, ErrExceedsPending)
	assert.Equal(t, 2, backend.getBookingCalls)
	assert.Equal(t, 2, backend.listCalls)
	assert.Equal(t, 1, backend.addCalls)
}

func TestAddPaymentInvalidDetails(t *testing.T) {
	backend := &fakeBackend{booking: bookedWith(500000, 100000)}
	svc := NewService(backend, zap.NewNop())
	in := paymentInput(1000)
	in.Details = models.UPIDetails{TxnID: "short"}

	_, err := svc.AddPayment(context.Background(), in)

	assert.ErrorIs(t, err, models.ErrInvalidPaymentDetails)
	assert.Zero(t, backend.getBookingCalls, "details are checked before any fetch")
}

func TestAddPaymentNonPositive(t *testing.T) {
	backend := &fakeBackend{booking: bookedWith(500000, 100000)}
	svc := NewService(backend, zap.NewNop())

	_, err := svc.AddPayment(context.Background(), paymentInput(0))

	assert.ErrorIs(t, err, ErrNonPositiveAmount)
	assert.Zero(t, backend.addCalls)
}

func TestAddPaymentWriteTimeConflict(t *testing.T) {
	backend := &fakeBackend{booking: bookedWith(500000, 100000), addErr: ledger.ErrExceedsPending}
	svc := NewService(backend, zap.NewNop())

	_, err := svc.AddPayment(context.Background(), paymentInput(1000))

	var mutation *MutationError
	require.ErrorAs(t, err, &mutation)
	assert.ErrorIs(t, err, ErrExceedsPending)
	assert.False(t, IsValidation(err))
}

func TestLoadBookingWithHistoryPartialFailure(t *testing.T) {
	backend := &fakeBackend{booking: bookedWith(500000, 100000), listErr: errors.New("connection reset")}
	svc := NewService(backend, zap.NewNop())

	h, err := svc.LoadBookingWithHistory(context.Background(), "bk-1")

	assert.Nil(t, h)
	var fetch *FetchError
	require.ErrorAs(t, err, &fetch)
	assert.Equal(t, "load payment history", fetch.Op)
}

func TestLoadBookingWithHistoryMissingBooking(t *testing.T) {
	svc := NewService(&fakeBackend{}, zap.NewNop())

	_, err := svc.LoadBookingWithHistory(context.Background(), "nope")

	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestListBookingsDerivesPending(t *testing.T) {
	backend := &fakeBackend{
		booking:  bookedWith(500000, 100000),
		payments: []models.Payment{{ID: "p1", AmountReceived: money.Rupees(150000)}},
	}
	svc := NewService(backend, zap.NewNop())

	bookings, err := svc.ListBookings(context.Background())

	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.Equal(t, money.Rupees(250000), bookings[0].PendingAmount)
	assert.Equal(t, string(ledger.StateOpen), bookings[0].State)
}
