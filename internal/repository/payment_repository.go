package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/DeveloperForam/test-house-design/internal/ledger"
	"github.com/DeveloperForam/test-house-design/internal/models"
	"github.com/DeveloperForam/test-house-design/internal/money"
)

type PaymentRepository struct {
	db *sql.DB
}

func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Create appends a payment. The booking row is locked and the pending balance
// recomputed inside the transaction, so two concurrent payments can never
// together overshoot what is owed.
func (r *PaymentRepository) Create(ctx context.Context, p *models.Payment) error {
	details, err := json.Marshal(p.PaymentDetails)
	if err != nil {
		return fmt.Errorf("failed to encode payment details: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var total, advance money.Money
	err = tx.QueryRowContext(ctx,
		`SELECT total_amount, advance_payment FROM bookings WHERE id = $1 FOR UPDATE`,
		p.BookingID).Scan(&total, &advance)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	var paid money.Money
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount_received), 0)::BIGINT FROM payments WHERE booking_id = $1`,
		p.BookingID).Scan(&paid)
	if err != nil {
		return err
	}
	if err := ledger.ValidatePayment(p.AmountReceived, ledger.PendingAfterPaid(total, advance, paid)); err != nil {
		return err
	}

	query := `
		INSERT INTO payments (
			id, booking_id, amount_received, payment_method, payment_details,
			payment_received_date, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = tx.ExecContext(ctx, query,
		p.ID,
		p.BookingID,
		p.AmountReceived,
		p.PaymentMethod,
		details,
		p.PaymentReceivedDate,
		p.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}

	return tx.Commit()
}

// ListByBooking returns the payments in received-date order, ties in insertion order.
func (r *PaymentRepository) ListByBooking(ctx context.Context, bookingID string) ([]models.Payment, error) {
	query := `
		SELECT id, booking_id, amount_received, payment_method, payment_details,
			   payment_received_date, created_at
		FROM payments
		WHERE booking_id = $1
		ORDER BY payment_received_date, seq
	`

	rows, err := r.db.QueryContext(ctx, query, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payments := []models.Payment{}
	for rows.Next() {
		var (
			p       models.Payment
			details []byte
		)
		err := rows.Scan(
			&p.ID,
			&p.BookingID,
			&p.AmountReceived,
			&p.PaymentMethod,
			&details,
			&p.PaymentReceivedDate,
			&p.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		p.PaymentDetails, err = models.DecodePaymentDetails(p.PaymentMethod, details)
		if err != nil {
			return nil, fmt.Errorf("payment %s: %w", p.ID, err)
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}
