package contract

import (
	"context"

	"safebites-be/internal/entity"

	"github.com/google/uuid"
)

type IngestionStatusRepository interface {
	Save(ctx context.Context, status *entity.IngestionStatus) error
	// Get returns nil, nil when no job is known for the restaurant.
	Get(ctx context.Context, restaurantId uuid.UUID) (*entity.IngestionStatus, error)
}
