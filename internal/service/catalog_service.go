package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/DeveloperForam/test-house-design/internal/models"
)

type ServiceStore interface {
	Create(ctx context.Context, s *models.Service) error
	Update(ctx context.Context, s *models.Service) error
	GetByID(ctx context.Context, id string) (*models.Service, error)
	List(ctx context.Context) ([]*models.Service, error)
	Delete(ctx context.Context, id string) error
}

// CatalogService manages the services offered alongside the projects.
type CatalogService struct {
	repo   ServiceStore
	logger *zap.Logger
	now    func() time.Time
}

func NewCatalogService(repo ServiceStore, logger *zap.Logger) *CatalogService {
	return &CatalogService{repo: repo, logger: logger, now: time.Now}
}

// Create saves a service; image is the public path of its uploaded image, if any.
func (s *CatalogService) Create(ctx context.Context, req models.ServiceRequest, image string) (*models.Service, error) {
	now := s.now()
	svc := &models.Service{
		ID:               uuid.New().String(),
		Title:            strings.TrimSpace(req.Title),
		ShortDescription: strings.TrimSpace(req.ShortDescription),
		Description:      strings.TrimSpace(req.Description),
		Image:            image,
		Features:         splitList([]string{req.Features}),
		Amenities:        splitList([]string{req.Amenities}),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.repo.Create(ctx, svc); err != nil {
		return nil, err
	}
	s.logger.Info("service created", zap.String("service_id", svc.ID))
	return svc, nil
}

// Update replaces the fields; the image is kept unless a new one is given.
// It returns the previous image path when it was replaced.
func (s *CatalogService) Update(ctx context.Context, id string, req models.ServiceRequest, image string) (*models.Service, string, error) {
	svc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	var replaced string
	if image != "" {
		replaced = svc.Image
		svc.Image = image
	}
	svc.Title = strings.TrimSpace(req.Title)
	svc.ShortDescription = strings.TrimSpace(req.ShortDescription)
	svc.Description = strings.TrimSpace(req.Description)
	svc.Features = splitList([]string{req.Features})
	svc.Amenities = splitList([]string{req.Amenities})
	svc.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, svc); err != nil {
		return nil, "", err
	}
	return svc, replaced, nil
}

func (s *CatalogService) List(ctx context.Context) ([]*models.Service, error) {
	return s.repo.List(ctx)
}

// Delete removes the service and returns it so its image can be cleaned up.
func (s *CatalogService) Delete(ctx context.Context, id string) (*models.Service, error) {
	svc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, err
	}
	s.logger.Info("service deleted", zap.String("service_id", id))
	return svc, nil
}
