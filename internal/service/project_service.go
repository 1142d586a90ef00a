package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/DeveloperForam/test-house-design/internal/models"
	"github.com/DeveloperForam/test-house-design/internal/money"
)

var ErrInvalidProject = errors.New("invalid project")

// ProjectStore is the persistence the project service needs.
type ProjectStore interface {
	Create(ctx context.Context, p *models.Project, houses []models.House) error
	Update(ctx context.Context, p *models.Project, houses []models.House) error
	GetByID(ctx context.Context, id string) (*models.Project, error)
	List(ctx context.Context) ([]*models.Project, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
	HasBookings(ctx context.Context, id string) (bool, error)
}

type ProjectService struct {
	repo   ProjectStore
	parser money.Parser
	logger *zap.Logger
	now    func() time.Time
}

func NewProjectService(repo ProjectStore, parser money.Parser, logger *zap.Logger) *ProjectService {
	return &ProjectService{repo: repo, parser: parser, logger: logger, now: time.Now}
}

// ProjectInput is a validated create or update request plus the paths of any
// files uploaded with it.
type ProjectInput struct {
	Request    models.ProjectRequest
	Images     []string
	FloorPlans []string
}

// Create stores the project and generates its houses.
func (s *ProjectService) Create(ctx context.Context, in ProjectInput) (*models.Project, error) {
	p, err := s.build(in.Request)
	if err != nil {
		return nil, err
	}
	now := s.now()
	p.ID = uuid.New().String()
	p.Images = in.Images
	p.FloorPlans = in.FloorPlans
	p.CreatedAt = now
	p.UpdatedAt = now
	p.Normalize()

	houses := GenerateHouses(p)
	if err := s.repo.Create(ctx, p, houses); err != nil {
		return nil, fmt.Errorf("failed to save project: %w", err)
	}

	s.logger.Info("project created",
		zap.String("project_id", p.ID),
		zap.String("project_type", string(p.ProjectType)),
		zap.Int("houses", len(houses)))
	return p, nil
}

// Update saves the new fields. Houses are regenerated when the layout changes,
// which is refused once any house is booked. New uploads are appended.
func (s *ProjectService) Update(ctx context.Context, id string, in ProjectInput) (*models.Project, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p, err := s.build(in.Request)
	if err != nil {
		return nil, err
	}
	p.ID = existing.ID
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = s.now()
	p.Images = append(existing.Images, in.Images...)
	p.FloorPlans = append(existing.FloorPlans, in.FloorPlans...)
	p.Normalize()

	var houses []models.House
	if layoutChanged(existing, p) {
		booked, err := s.repo.HasBookings(ctx, id)
		if err != nil {
			return nil, err
		}
		if booked {
			return nil, fmt.Errorf("%w: layout cannot change once a house is booked", ErrInvalidProject)
		}
		houses = GenerateHouses(p)
	}

	if err := s.repo.Update(ctx, p, houses); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}
	s.logger.Info("project updated", zap.String("project_id", p.ID), zap.Bool("houses_regenerated", houses != nil))
	return p, nil
}

func (s *ProjectService) Get(ctx context.Context, id string) (*models.Project, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *ProjectService) List(ctx context.Context) ([]*models.Project, error) {
	return s.repo.List(ctx)
}

func (s *ProjectService) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

// Delete removes the project with its houses, bookings and payments. It
// returns the project so the caller can clean up its files.
func (s *ProjectService) Delete(ctx context.Context, id string) (*models.Project, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, err
	}
	s.logger.Info("project deleted", zap.String("project_id", id))
	return p, nil
}

func (s *ProjectService) build(req models.ProjectRequest) (*models.Project, error) {
	projectType, ok := models.ParseProjectType(req.ProjectType)
	if !ok {
		return nil, fmt.Errorf("%w: unknown project type %q", ErrInvalidProject, req.ProjectType)
	}
	cost, err := s.parser.Parse(req.RawPerHouseCost())
	if err != nil {
		return nil, fmt.Errorf("%w: perHouseCost: %v", ErrInvalidProject, err)
	}

	p := &models.Project{
		ProjectName:   strings.TrimSpace(req.ProjectName),
		ProjectType:   projectType,
		Location:      strings.TrimSpace(req.Location),
		Latitude:      req.Latitude,
		Longitude:     req.Longitude,
		SquareFeet:    req.SquareFeet,
		PerHouseCost:  cost,
		TotalWings:    req.TotalWings,
		TotalFloors:   req.TotalFloors,
		PerFloorHouse: req.PerFloorHouse,
		TotalPlots:    req.TotalPlots,
		Amenities:     splitList(req.Amenities),
	}
	if p.HouseCount() <= 0 {
		if projectType.HasPlots() {
			return nil, fmt.Errorf("%w: totalPlots must be greater than zero", ErrInvalidProject)
		}
		return nil, fmt.Errorf("%w: totalWings, totalFloors and perFloorHouse must be greater than zero", ErrInvalidProject)
	}
	if !projectType.HasPlots() && p.TotalWings > 26 {
		return nil, fmt.Errorf("%w: at most 26 wings", ErrInvalidProject)
	}
	return p, nil
}

func layoutChanged(old, updated *models.Project) bool {
	return old.ProjectType != updated.ProjectType ||
		old.TotalWings != updated.TotalWings ||
		old.TotalFloors != updated.TotalFloors ||
		old.PerFloorHouse != updated.PerFloorHouse ||
		old.TotalPlots != updated.TotalPlots ||
		old.SquareFeet != updated.SquareFeet ||
		old.PerHouseCost != updated.PerHouseCost
}

// GenerateHouses lays out the houses of a project. Flats are numbered by wing
// letter, floor and position on the floor (A-101, A-102, ..., B-101); plots
// are numbered P-1 upwards.
func GenerateHouses(p *models.Project) []models.House {
	houses := make([]models.House, 0, p.HouseCount())
	add := func(number string) {
		houses = append(houses, models.House{
			ProjectID:   p.ID,
			ProjectName: p.ProjectName,
			ProjectType: p.ProjectType,
			HouseNumber: number,
			SquareFeet:  p.SquareFeet,
			Price:       p.PerHouseCost,
			Status:      models.HouseStatusAvailable,
			CreatedAt:   p.UpdatedAt,
		})
	}

	if p.ProjectType.HasPlots() {
		for i := 1; i <= p.TotalPlots; i++ {
			add(fmt.Sprintf("P-%d", i))
		}
		return houses
	}
	for w := 0; w < p.TotalWings; w++ {
		for f := 1; f <= p.TotalFloors; f++ {
			for h := 1; h <= p.PerFloorHouse; h++ {
				add(fmt.Sprintf("%c-%d%02d", 'A'+w, f, h))
			}
		}
	}
	return houses
}

// splitList accepts either repeated form values or one comma separated value.
func splitList(values []string) []string {
	out := []string{}
	for _, v := range values {
		for _, item := range strings.Split(v, ",") {
			if item = strings.TrimSpace(item); item != "" {
				out = append(out, item)
			}
		}
	}
	return out
}
