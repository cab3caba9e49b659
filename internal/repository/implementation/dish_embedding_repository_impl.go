package implementation

import (
	"context"

	"safebites-be/internal/entity"
	"safebites-be/internal/mapper"
	"safebites-be/internal/model"
	"safebites-be/internal/repository/contract"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DishEmbeddingRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.DishEmbeddingMapper
}

func NewDishEmbeddingRepository(db *gorm.DB) contract.DishEmbeddingRepository {
	return &DishEmbeddingRepositoryImpl{
		db:     db,
		mapper: mapper.NewDishEmbeddingMapper(),
	}
}

func (r *DishEmbeddingRepositoryImpl) Upsert(ctx context.Context, embedding *entity.DishEmbedding) error {
	if embedding.Id == uuid.Nil {
		embedding.Id = uuid.New()
	}
	m := r.mapper.ToModel(embedding)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "dish_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"restaurant_id", "document", "embedding", "updated_at"}),
		}).
		Create(m).Error
}

func (r *DishEmbeddingRepositoryImpl) DeleteByDishIds(ctx context.Context, dishIds []uuid.UUID) error {
	if len(dishIds) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Where("dish_id IN ?", dishIds).Delete(&model.DishEmbedding{}).Error
}

func (r *DishEmbeddingRepositoryImpl) DeleteByRestaurant(ctx context.Context, restaurantId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("restaurant_id = ?", restaurantId).Delete(&model.DishEmbedding{}).Error
}

// SearchSimilarWithScore ranks by cosine similarity; pgvector's <=> is cosine distance.
func (r *DishEmbeddingRepositoryImpl) SearchSimilarWithScore(ctx context.Context, restaurantId uuid.UUID, embedding []float32, limit int) ([]*entity.DishEmbeddingMatch, error) {
	if limit <= 0 {
		limit = 20
	}

	type result struct {
		model.DishEmbedding
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	query := r.db.WithContext(ctx).
		Table("dish_embeddings").
		Select("dish_embeddings.*, 1 - (embedding <=> ?) as similarity", queryVector)
	if restaurantId != uuid.Nil {
		query = query.Where("restaurant_id = ?", restaurantId)
	}
	err := query.
		Order("similarity DESC").
		Limit(limit).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	matches := make([]*entity.DishEmbeddingMatch, len(results))
	for i, res := range results {
		matches[i] = &entity.DishEmbeddingMatch{
			DishEmbedding: *r.mapper.ToEntity(&res.DishEmbedding),
			Similarity:    res.Similarity,
		}
	}
	return matches, nil
}

func (r *DishEmbeddingRepositoryImpl) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.DishEmbedding{}).Count(&count).Error
	return count, err
}
