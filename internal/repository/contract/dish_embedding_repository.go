package contract

import (
	"context"

	"safebites-be/internal/entity"

	"github.com/google/uuid"
)

type DishEmbeddingRepository interface {
	Upsert(ctx context.Context, embedding *entity.DishEmbedding) error
	DeleteByDishIds(ctx context.Context, dishIds []uuid.UUID) error
	DeleteByRestaurant(ctx context.Context, restaurantId uuid.UUID) error
	// SearchSimilarWithScore searches every restaurant when restaurantId is uuid.Nil.
	SearchSimilarWithScore(ctx context.Context, restaurantId uuid.UUID, embedding []float32, limit int) ([]*entity.DishEmbeddingMatch, error)
	Count(ctx context.Context) (int64, error)
}
