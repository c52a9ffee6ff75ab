package repository

import (
	"context"
	"virtual-env-server/internal/models"
)

// RequestRepository defines the interface for access-log persistence
type RequestRepository interface {
	SaveRequest(ctx context.Context, rec *models.RequestRecord) error
	ListRecent(ctx context.Context, limit int) ([]*models.RequestRecord, error)
	CountByClass(ctx context.Context) (map[models.StatusClass]int, error)
	Close() error
}
