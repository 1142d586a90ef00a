package repository

import (
	"context"

	"github.com/DeveloperForam/test-house-design/internal/models"
)

// Backend serves booking orchestration straight from the database.
type Backend struct {
	houses   *HouseRepository
	bookings *BookingRepository
	payments *PaymentRepository
}

func NewBackend(houses *HouseRepository, bookings *BookingRepository, payments *PaymentRepository) *Backend {
	return &Backend{houses: houses, bookings: bookings, payments: payments}
}

func (b *Backend) GetHouse(ctx context.Context, projectID, houseNumber string) (*models.House, error) {
	return b.houses.Get(ctx, projectID, houseNumber)
}

func (b *Backend) CreateBooking(ctx context.Context, booking *models.Booking) (*models.Booking, error) {
	if err := b.bookings.Create(ctx, booking); err != nil {
		return nil, err
	}
	return booking, nil
}

func (b *Backend) GetBooking(ctx context.Context, bookingID string) (*models.Booking, error) {
	return b.bookings.Get(ctx, bookingID)
}

func (b *Backend) ListBookings(ctx context.Context) ([]*models.Booking, error) {
	return b.bookings.List(ctx)
}

func (b *Backend) ListPayments(ctx context.Context, bookingID string) ([]models.Payment, error) {
	return b.payments.ListByBooking(ctx, bookingID)
}

func (b *Backend) AddPayment(ctx context.Context, p *models.Payment) (*models.Payment, error) {
	if err := b.payments.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}
