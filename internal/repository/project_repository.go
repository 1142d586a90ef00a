package repository

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"github.com/DeveloperForam/test-house-design/internal/models"
)

type ProjectRepository struct {
	db *sql.DB
}

func NewProjectRepository(db *sql.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

const projectColumns = `
	id, project_name, project_type, location, latitude, longitude, square_feet,
	per_house_cost, total_wings, total_floors, per_floor_house, total_plots,
	amenities, images, floor_plans, created_at, updated_at`

// Create inserts the project together with its generated houses.
func (r *ProjectRepository) Create(ctx context.Context, p *models.Project, houses []models.House) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO projects (` + projectColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`
	_, err = tx.ExecContext(ctx, query,
		p.ID,
		p.ProjectName,
		p.ProjectType,
		p.Location,
		p.Latitude,
		p.Longitude,
		p.SquareFeet,
		p.PerHouseCost,
		p.TotalWings,
		p.TotalFloors,
		p.PerFloorHouse,
		p.TotalPlots,
		pq.Array(p.Amenities),
		pq.Array(p.Images),
		pq.Array(p.FloorPlans),
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}

	if err := insertHouses(ctx, tx, houses); err != nil {
		return err
	}
	return tx.Commit()
}

func insertHouses(ctx context.Context, tx *sql.Tx, houses []models.House) error {
	query := `
		INSERT INTO houses (project_id, house_number, position, square_feet, price, price_per_sq_feet, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	for i, h := range houses {
		_, err := tx.ExecContext(ctx, query,
			h.ProjectID,
			h.HouseNumber,
			i,
			h.SquareFeet,
			h.Price,
			h.PricePerSqFeet,
			h.CreatedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicate
			}
			return err
		}
	}
	return nil
}

// Update saves the project fields. When houses is non-nil the existing houses
// are replaced, which fails with ErrHasBookings if any of them is booked.
func (r *ProjectRepository) Update(ctx context.Context, p *models.Project, houses []models.House) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if houses != nil {
		if err := lockUnbooked(ctx, tx, p.ID); err != nil {
			return err
		}
	}

	query := `
		UPDATE projects
		SET project_name = $1, project_type = $2, location = $3, latitude = $4, longitude = $5,
			square_feet = $6, per_house_cost = $7, total_wings = $8, total_floors = $9,
			per_floor_house = $10, total_plots = $11, amenities = $12, images = $13,
			floor_plans = $14, updated_at = $15
		WHERE id = $16
	`
	res, err := tx.ExecContext(ctx, query,
		p.ProjectName,
		p.ProjectType,
		p.Location,
		p.Latitude,
		p.Longitude,
		p.SquareFeet,
		p.PerHouseCost,
		p.TotalWings,
		p.TotalFloors,
		p.PerFloorHouse,
		p.TotalPlots,
		pq.Array(p.Amenities),
		pq.Array(p.Images),
		pq.Array(p.FloorPlans),
		p.UpdatedAt,
		p.ID,
	)
	if err != nil {
		return err
	}
	if err := expectAffected(res); err != nil {
		return err
	}

	if houses != nil {
		if _, err := tx.ExecContext(ctx, `DELETE FROM houses WHERE project_id = $1`, p.ID); err != nil {
			return err
		}
		if err := insertHouses(ctx, tx, houses); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// lockUnbooked locks every house of the project, the same rows a booking
// insert locks, and then checks that none of them is booked.
func lockUnbooked(ctx context.Context, tx *sql.Tx, projectID string) error {
	rows, err := tx.QueryContext(ctx,
		`SELECT house_number FROM houses WHERE project_id = $1 FOR UPDATE`, projectID)
	if err != nil {
		return err
	}
	for rows.Next() {
		// drained so every row is locked before the check
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	var booked bool
	err = tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM bookings WHERE project_id = $1)`, projectID).Scan(&booked)
	if err != nil {
		return err
	}
	if booked {
		return ErrHasBookings
	}
	return nil
}

func (r *ProjectRepository) GetByID(ctx context.Context, id string) (*models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1`

	p, err := scanProject(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return p, err
}

func (r *ProjectRepository) List(ctx context.Context) ([]*models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	projects := []*models.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// Delete removes the project; houses, bookings and payments go with it.
func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

func (r *ProjectRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM projects`).Scan(&n)
	return n, err
}

// HasBookings reports whether any house of the project has been booked.
func (r *ProjectRepository) HasBookings(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM bookings WHERE project_id = $1)`, id).Scan(&exists)
	return exists, err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProject(row rowScanner) (*models.Project, error) {
	p := &models.Project{}
	var lat, lng sql.NullFloat64
	err := row.Scan(
		&p.ID,
		&p.ProjectName,
		&p.ProjectType,
		&p.Location,
		&lat,
		&lng,
		&p.SquareFeet,
		&p.PerHouseCost,
		&p.TotalWings,
		&p.TotalFloors,
		&p.PerFloorHouse,
		&p.TotalPlots,
		pq.Array(&p.Amenities),
		pq.Array(&p.Images),
		pq.Array(&p.FloorPlans),
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if lat.Valid {
		p.Latitude = &lat.Float64
	}
	if lng.Valid {
		p.Longitude = &lng.Float64
	}
	p.Normalize()
	return p, nil
}

func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
