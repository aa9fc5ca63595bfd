package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/noah-isme/canteen-vms-api/internal/models"
	appErrors "github.com/noah-isme/canteen-vms-api/pkg/errors"
)

type canteenRepository interface {
	List(ctx context.Context) ([]models.Canteen, error)
	FindByID(ctx context.Context, id string) (*models.Canteen, error)
}

// CanteenService exposes the canteen directory.
type CanteenService struct {
	repo   canteenRepository
	logger *zap.Logger
}

// NewCanteenService constructs the canteen service.
func NewCanteenService(repo canteenRepository, logger *zap.Logger) *CanteenService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CanteenService{repo: repo, logger: logger}
}

// List returns all canteens with their locations.
func (s *CanteenService) List(ctx context.Context) ([]models.Canteen, error) {
	canteens, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list canteens")
	}
	return canteens, nil
}

// Get returns one canteen by id.
func (s *CanteenService) Get(ctx context.Context, id string) (*models.Canteen, error) {
	canteen, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "canteen not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load canteen")
	}
	return canteen, nil
}
