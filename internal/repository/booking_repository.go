package repository

import (
	"context"
	"database/sql"

	"github.com/DeveloperForam/test-house-design/internal/models"
)

type BookingRepository struct {
	db *sql.DB
}

func NewBookingRepository(db *sql.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

const bookingQuery = `
	SELECT b.id, b.booking_code, b.project_id, p.project_name, b.house_number, b.customer_name,
		   b.mobile_no, b.payment_type, b.total_amount, b.advance_payment, b.booking_date,
		   b.created_at,
		   COALESCE((SELECT SUM(amount_received) FROM payments WHERE booking_id = b.id), 0)::BIGINT
	FROM bookings b
	JOIN projects p ON p.id = b.project_id
`

// Create books the house. The house row is locked, must not already be booked
// or pinned to a non-available status, and any override is cleared in the same
// transaction so the house reads as booked the moment the booking exists.
func (r *BookingRepository) Create(ctx context.Context, b *models.Booking) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var (
		override    sql.NullString
		projectName string
	)
	err = tx.QueryRowContext(ctx, `
		SELECT h.status_override, p.project_name
		FROM houses h
		JOIN projects p ON p.id = h.project_id
		WHERE h.project_id = $1 AND h.house_number = $2
		FOR UPDATE OF h
	`, b.ProjectID, b.HouseNumber).Scan(&override, &projectName)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if override.Valid && override.String != string(models.HouseStatusAvailable) {
		return ErrHouseUnavailable
	}

	var booked bool
	err = tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM bookings WHERE project_id = $1 AND house_number = $2)`,
		b.ProjectID, b.HouseNumber).Scan(&booked)
	if err != nil {
		return err
	}
	if booked {
		return ErrHouseUnavailable
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE houses SET status_override = NULL WHERE project_id = $1 AND house_number = $2`,
		b.ProjectID, b.HouseNumber)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO bookings (
			id, booking_code, project_id, house_number, customer_name, mobile_no,
			payment_type, total_amount, advance_payment, booking_date, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err = tx.ExecContext(ctx, query,
		b.ID,
		b.BookingCode,
		b.ProjectID,
		b.HouseNumber,
		b.CustomerName,
		b.MobileNo,
		b.PaymentType,
		b.TotalAmount,
		b.AdvancePayment,
		b.BookingDate,
		b.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrHouseUnavailable
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	b.ProjectName = projectName
	return nil
}

// Get looks a booking up by its id or its display code. PaidAmount is filled in.
func (r *BookingRepository) Get(ctx context.Context, idOrCode string) (*models.Booking, error) {
	query := bookingQuery + `WHERE b.id = $1 OR b.booking_code = $1`

	b, err := scanBooking(r.db.QueryRowContext(ctx, query, idOrCode))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return b, err
}

// List returns every booking, newest first, with PaidAmount filled in.
func (r *BookingRepository) List(ctx context.Context) ([]*models.Booking, error) {
	rows, err := r.db.QueryContext(ctx, bookingQuery+`ORDER BY b.created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := []*models.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

func scanBooking(row rowScanner) (*models.Booking, error) {
	b := &models.Booking{}
	err := row.Scan(
		&b.ID,
		&b.BookingCode,
		&b.ProjectID,
		&b.ProjectName,
		&b.HouseNumber,
		&b.CustomerName,
		&b.MobileNo,
		&b.PaymentType,
		&b.TotalAmount,
		&b.AdvancePayment,
		&b.BookingDate,
		&b.CreatedAt,
		&b.PaidAmount,
	)
	if err != nil {
		return nil, err
	}
	return b, nil
}
