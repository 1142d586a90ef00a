package repository

import (
	"context"
	"database/sql"

	"github.com/DeveloperForam/test-house-design/internal/ledger"
	"github.com/DeveloperForam/test-house-design/internal/models"
	"github.com/DeveloperForam/test-house-design/internal/money"
)

type HouseRepository struct {
	db *sql.DB
}

func NewHouseRepository(db *sql.DB) *HouseRepository {
	return &HouseRepository{db: db}
}

// houseQuery joins each house with its booking and the amount paid against it
// so the status can be derived without storing it.
const houseQuery = `
	SELECT h.project_id, p.project_name, p.project_type, h.house_number, h.square_feet,
		   h.price, h.price_per_sq_feet, h.status_override, h.created_at,
		   b.id, b.total_amount, b.advance_payment, COALESCE(pay.paid, 0)
	FROM houses h
	JOIN projects p ON p.id = h.project_id
	LEFT JOIN bookings b ON b.project_id = h.project_id AND b.house_number = h.house_number
	LEFT JOIN (
		SELECT booking_id, SUM(amount_received)::BIGINT AS paid FROM payments GROUP BY booking_id
	) pay ON pay.booking_id = b.id
`

// ListByProject returns one page of houses in generation order and the total count.
func (r *HouseRepository) ListByProject(ctx context.Context, projectID string, limit, offset int) ([]*models.House, int, error) {
	var total int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM houses WHERE project_id = $1`, projectID).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	query := houseQuery + `
		WHERE h.project_id = $1
		ORDER BY h.position, h.house_number
		LIMIT $2 OFFSET $3
	`
	houses, err := r.query(ctx, query, projectID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return houses, total, nil
}

func (r *HouseRepository) Get(ctx context.Context, projectID, houseNumber string) (*models.House, error) {
	query := houseQuery + `WHERE h.project_id = $1 AND h.house_number = $2`

	h, err := scanHouse(r.db.QueryRowContext(ctx, query, projectID, houseNumber))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return h, err
}

// SetOverride pins the status of a house; nil returns it to the derived status.
func (r *HouseRepository) SetOverride(ctx context.Context, projectID, houseNumber string, status *models.HouseStatus) error {
	var value interface{}
	if status != nil {
		value = string(*status)
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE houses SET status_override = $1 WHERE project_id = $2 AND house_number = $3`,
		value, projectID, houseNumber)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

// StatusCounts tallies the effective status of every house.
func (r *HouseRepository) StatusCounts(ctx context.Context) (models.HouseStatusCount, error) {
	var counts models.HouseStatusCount
	houses, err := r.query(ctx, houseQuery)
	if err != nil {
		return counts, err
	}
	for _, h := range houses {
		counts.Add(h.Status)
	}
	return counts, nil
}

func (r *HouseRepository) query(ctx context.Context, query string, args ...interface{}) ([]*models.House, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	houses := []*models.House{}
	for rows.Next() {
		h, err := scanHouse(rows)
		if err != nil {
			return nil, err
		}
		houses = append(houses, h)
	}
	return houses, rows.Err()
}

func scanHouse(row rowScanner) (*models.House, error) {
	h := &models.House{}
	var (
		override  sql.NullString
		bookingID sql.NullString
		total     sql.NullInt64
		advance   sql.NullInt64
		paid      int64
	)
	err := row.Scan(
		&h.ProjectID,
		&h.ProjectName,
		&h.ProjectType,
		&h.HouseNumber,
		&h.SquareFeet,
		&h.Price,
		&h.PricePerSqFeet,
		&override,
		&h.CreatedAt,
		&bookingID,
		&total,
		&advance,
		&paid,
	)
	if err != nil {
		return nil, err
	}

	if override.Valid {
		if s, ok := models.ParseHouseStatus(override.String); ok {
			h.StatusOverride = &s
		}
	}
	var pending money.Money
	if bookingID.Valid {
		h.BookingID = bookingID.String
		pending = ledger.PendingAfterPaid(money.Money(total.Int64), money.Money(advance.Int64), money.Money(paid))
	}
	h.Status = ledger.DeriveHouseStatus(h.StatusOverride, bookingID.Valid, pending)
	return h, nil
}
