package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/DeveloperForam/test-house-design/internal/models"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 200
)

type HouseStore interface {
	ListByProject(ctx context.Context, projectID string, limit, offset int) ([]*models.House, int, error)
	Get(ctx context.Context, projectID, houseNumber string) (*models.House, error)
	SetOverride(ctx context.Context, projectID, houseNumber string, status *models.HouseStatus) error
	StatusCounts(ctx context.Context) (models.HouseStatusCount, error)
}

// StatusAuditor is told when an admin pins or clears a house status.
type StatusAuditor interface {
	StatusOverridden(ctx context.Context, projectID, houseNumber, status string)
}

type HouseService struct {
	repo    HouseStore
	auditor StatusAuditor
	logger  *zap.Logger
}

func NewHouseService(repo HouseStore, auditor StatusAuditor, logger *zap.Logger) *HouseService {
	return &HouseService{repo: repo, auditor: auditor, logger: logger}
}

// HousePage is one page of a project's houses.
type HousePage struct {
	Houses     []*models.House `json:"data"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	Total      int             `json:"total"`
	TotalPages int             `json:"totalPages"`
}

// List returns a page of houses; page numbers start at 1.
func (s *HouseService) List(ctx context.Context, projectID string, page, limit int) (*HousePage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	houses, total, err := s.repo.ListByProject(ctx, projectID, limit, (page-1)*limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list houses: %w", err)
	}
	return &HousePage{
		Houses:     houses,
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: (total + limit - 1) / limit,
	}, nil
}

func (s *HouseService) Get(ctx context.Context, projectID, houseNumber string) (*models.House, error) {
	return s.repo.Get(ctx, projectID, houseNumber)
}

// SetStatus pins the house to status, or clears the pin when status is "auto".
func (s *HouseService) SetStatus(ctx context.Context, projectID, houseNumber, status string) error {
	var override *models.HouseStatus
	if status != "auto" {
		parsed, ok := models.ParseHouseStatus(status)
		if !ok {
			return fmt.Errorf("unknown house status %q", status)
		}
		override = &parsed
	}

	if err := s.repo.SetOverride(ctx, projectID, houseNumber, override); err != nil {
		return err
	}

	recorded := ""
	if override != nil {
		recorded = string(*override)
	}
	s.logger.Info("house status overridden",
		zap.String("project_id", projectID),
		zap.String("house_number", houseNumber),
		zap.String("status", status))
	s.auditor.StatusOverridden(ctx, projectID, houseNumber, recorded)
	return nil
}

func (s *HouseService) StatusCounts(ctx context.Context) (models.HouseStatusCount, error) {
	return s.repo.StatusCounts(ctx)
}
