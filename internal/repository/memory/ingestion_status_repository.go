package memory

import (
	"context"
	"time"

	"safebites-be/internal/entity"
	"safebites-be/internal/repository/contract"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// IngestionStatusRepository is the in-process fallback used when Redis is unreachable.
type IngestionStatusRepository struct {
	cache *cache.Cache
}

func NewIngestionStatusRepository() contract.IngestionStatusRepository {
	return &IngestionStatusRepository{
		cache: cache.New(24*time.Hour, time.Hour),
	}
}

func (r *IngestionStatusRepository) Save(ctx context.Context, status *entity.IngestionStatus) error {
	copied := *status
	r.cache.Set(status.RestaurantId.String(), &copied, cache.DefaultExpiration)
	return nil
}

func (r *IngestionStatusRepository) Get(ctx context.Context, restaurantId uuid.UUID) (*entity.IngestionStatus, error) {
	if x, found := r.cache.Get(restaurantId.String()); found {
		copied := *x.(*entity.IngestionStatus)
		return &copied, nil
	}
	return nil, nil
}
