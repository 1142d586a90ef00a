//go:build integration

package repository

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DeveloperForam/test-house-design/internal/booking"
	"github.com/DeveloperForam/test-house-design/internal/models"
	"github.com/DeveloperForam/test-house-design/internal/money"
	"github.com/DeveloperForam/test-house-design/pkg/database"
)

// Run with: TEST_DATABASE_URL=postgres://... go test -tags integration ./internal/repository/
func openTestDB(t *testing.T) *database.PostgresDB {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := database.NewPostgresDB(ctx, url, database.DefaultPoolConfig)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(ctx, models.Schema...))
	t.Cleanup(func() { db.Close() })
	return db
}

func seedProject(t *testing.T, db *database.PostgresDB) *models.Project {
	t.Helper()
	now := time.Now().UTC()
	p := &models.Project{
		ID:           uuid.NewString(),
		ProjectName:  "Integration Heights",
		ProjectType:  models.ProjectTypeBungalow,
		Location:     "Pune",
		PerHouseCost: money.Rupees(500000),
		TotalPlots:   1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	houses := []models.House{{ProjectID: p.ID, HouseNumber: "P-1", Price: p.PerHouseCost, CreatedAt: now}}
	require.NoError(t, NewProjectRepository(db.DB).Create(context.Background(), p, houses))
	t.Cleanup(func() { NewProjectRepository(db.DB).Delete(context.Background(), p.ID) })
	return p
}

func newBooking(p *models.Project) *models.Booking {
	now := time.Now()
	return &models.Booking{
		ID:             uuid.NewString(),
		BookingCode:    booking.NewBookingCode(now),
		ProjectID:      p.ID,
		HouseNumber:    "P-1",
		CustomerName:   "Asha Patil",
		MobileNo:       "9876543210",
		PaymentType:    models.PaymentTypeCash,
		TotalAmount:    money.Rupees(500000),
		AdvancePayment: money.Rupees(100000),
		BookingDate:    models.NewDate(now),
		CreatedAt:      now,
	}
}

func TestConcurrentBookingsOfOneHouse(t *testing.T) {
	db := openTestDB(t)
	p := seedProject(t, db)
	repo := NewBookingRepository(db.DB)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok, lost int
	)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := repo.Create(context.Background(), newBooking(p))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, ErrHouseUnavailable):
				lost++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, lost)

	house, err := NewHouseRepository(db.DB).Get(context.Background(), p.ID, "P-1")
	require.NoError(t, err)
	assert.Equal(t, models.HouseStatusBooked, house.Status)
}

func TestConcurrentPaymentsNeverOvershoot(t *testing.T) {
	db := openTestDB(t)
	p := seedProject(t, db)
	b := newBooking(p)
	require.NoError(t, NewBookingRepository(db.DB).Create(context.Background(), b))
	payments := NewPaymentRepository(db.DB)

	// 4,00,000 is pending; each payment fits alone but not together.
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok, lost int
	)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := payments.Create(context.Background(), &models.Payment{
				ID:                  uuid.NewString(),
				BookingID:           b.ID,
				AmountReceived:      money.Rupees(300000),
				PaymentMethod:       models.PaymentMethodCash,
				PaymentDetails:      models.CashDetails{},
				PaymentReceivedDate: models.NewDate(time.Now()),
				CreatedAt:           time.Now(),
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, ErrExceedsPending):
				lost++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, lost)

	got, err := NewBookingRepository(db.DB).Get(context.Background(), b.BookingCode)
	require.NoError(t, err)
	assert.Equal(t, money.Rupees(300000), got.PaidAmount)
}

func TestLayoutUpdateKeepsBookedHouses(t *testing.T) {
	db := openTestDB(t)
	p := seedProject(t, db)
	b := newBooking(p)
	require.NoError(t, NewBookingRepository(db.DB).Create(context.Background(), b))

	p.TotalPlots = 2
	p.UpdatedAt = time.Now().UTC()
	houses := []models.House{
		{ProjectID: p.ID, HouseNumber: "P-1", Price: p.PerHouseCost, CreatedAt: p.UpdatedAt},
		{ProjectID: p.ID, HouseNumber: "P-2", Price: p.PerHouseCost, CreatedAt: p.UpdatedAt},
	}
	err := NewProjectRepository(db.DB).Update(context.Background(), p, houses)
	assert.ErrorIs(t, err, ErrHasBookings)

	got, err := NewBookingRepository(db.DB).Get(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.BookingCode, got.BookingCode)
}
