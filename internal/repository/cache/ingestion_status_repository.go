package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"safebites-be/internal/entity"
	"safebites-be/internal/repository/contract"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	ingestionKeyPrefix = "safebites:ingestion:"
	ingestionTTL       = 24 * time.Hour
)

type IngestionStatusRepository struct {
	client *redis.Client
}

func NewIngestionStatusRepository(client *redis.Client) contract.IngestionStatusRepository {
	return &IngestionStatusRepository{client: client}
}

func ingestionKey(restaurantId uuid.UUID) string {
	return ingestionKeyPrefix + restaurantId.String()
}

func (r *IngestionStatusRepository) Save(ctx context.Context, status *entity.IngestionStatus) error {
	payload, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("failed to marshal ingestion status: %w", err)
	}
	return r.client.Set(ctx, ingestionKey(status.RestaurantId), payload, ingestionTTL).Err()
}

func (r *IngestionStatusRepository) Get(ctx context.Context, restaurantId uuid.UUID) (*entity.IngestionStatus, error) {
	raw, err := r.client.Get(ctx, ingestionKey(restaurantId)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var status entity.IngestionStatus
	if err := json.Unmarshal(raw, &status); err != nil {
		return nil, fmt.Errorf("failed to decode ingestion status: %w", err)
	}
	return &status, nil
}
