package repository

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"github.com/DeveloperForam/test-house-design/internal/models"
)

type ServiceRepository struct {
	db *sql.DB
}

func NewServiceRepository(db *sql.DB) *ServiceRepository {
	return &ServiceRepository{db: db}
}

func (r *ServiceRepository) Create(ctx context.Context, s *models.Service) error {
	query := `
		INSERT INTO services (
			id, title, short_description, description, image, features, amenities,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.ExecContext(ctx, query,
		s.ID,
		s.Title,
		s.ShortDescription,
		s.Description,
		s.Image,
		pq.Array(s.Features),
		pq.Array(s.Amenities),
		s.CreatedAt,
		s.UpdatedAt,
	)
	return err
}

func (r *ServiceRepository) Update(ctx context.Context, s *models.Service) error {
	query := `
		UPDATE services
		SET title = $1, short_description = $2, description = $3, image = $4,
			features = $5, amenities = $6, updated_at = $7
		WHERE id = $8
	`
	res, err := r.db.ExecContext(ctx, query,
		s.Title,
		s.ShortDescription,
		s.Description,
		s.Image,
		pq.Array(s.Features),
		pq.Array(s.Amenities),
		s.UpdatedAt,
		s.ID,
	)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

func (r *ServiceRepository) GetByID(ctx context.Context, id string) (*models.Service, error) {
	query := `
		SELECT id, title, short_description, description, image, features, amenities,
			   created_at, updated_at
		FROM services WHERE id = $1
	`
	s, err := scanService(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return s, err
}

func (r *ServiceRepository) List(ctx context.Context) ([]*models.Service, error) {
	query := `
		SELECT id, title, short_description, description, image, features, amenities,
			   created_at, updated_at
		FROM services ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	services := []*models.Service{}
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, err
		}
		services = append(services, s)
	}
	return services, rows.Err()
}

func (r *ServiceRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM services WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

func scanService(row rowScanner) (*models.Service, error) {
	s := &models.Service{}
	err := row.Scan(
		&s.ID,
		&s.Title,
		&s.ShortDescription,
		&s.Description,
		&s.Image,
		pq.Array(&s.Features),
		pq.Array(&s.Amenities),
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if s.Features == nil {
		s.Features = []string{}
	}
	if s.Amenities == nil {
		s.Amenities = []string{}
	}
	return s, nil
}
