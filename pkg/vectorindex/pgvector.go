package vectorindex

import (
	"context"
	"fmt"

	"safebites-be/internal/entity"
	"safebites-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

// PgvectorIndex stores dish embeddings in Postgres through the dish_embeddings table.
type PgvectorIndex struct {
	uowFactory unitofwork.RepositoryFactory
}

var _ Index = (*PgvectorIndex)(nil)

func NewPgvectorIndex(uowFactory unitofwork.RepositoryFactory) *PgvectorIndex {
	return &PgvectorIndex{uowFactory: uowFactory}
}

func (p *PgvectorIndex) Upsert(ctx context.Context, docs ...Document) error {
	uow := p.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	repo := uow.DishEmbeddingRepository()
	for _, d := range docs {
		dishID, err := uuid.Parse(d.DishID)
		if err != nil {
			return fmt.Errorf("invalid dish id %q: %w", d.DishID, err)
		}
		restaurantID, err := uuid.Parse(d.RestaurantID)
		if err != nil {
			return fmt.Errorf("invalid restaurant id %q: %w", d.RestaurantID, err)
		}
		if err := repo.Upsert(ctx, &entity.DishEmbedding{
			DishId:       dishID,
			RestaurantId: restaurantID,
			Document:     d.Content,
			Embedding:    d.Embedding,
		}); err != nil {
			return err
		}
	}
	return uow.Commit()
}

func (p *PgvectorIndex) Delete(ctx context.Context, restaurantID string, dishIDs ...string) error {
	ids := make([]uuid.UUID, 0, len(dishIDs))
	for _, raw := range dishIDs {
		if id, err := uuid.Parse(raw); err == nil {
			ids = append(ids, id)
		}
	}
	return p.uowFactory.NewUnitOfWork(ctx).DishEmbeddingRepository().DeleteByDishIds(ctx, ids)
}

func (p *PgvectorIndex) DeleteRestaurant(ctx context.Context, restaurantID string) error {
	id, err := uuid.Parse(restaurantID)
	if err != nil {
		return fmt.Errorf("invalid restaurant id %q: %w", restaurantID, err)
	}
	return p.uowFactory.NewUnitOfWork(ctx).DishEmbeddingRepository().DeleteByRestaurant(ctx, id)
}

func (p *PgvectorIndex) Search(ctx context.Context, restaurantID string, query []float32, topK int) ([]Match, error) {
	id := uuid.Nil
	if restaurantID != "" {
		parsed, err := uuid.Parse(restaurantID)
		if err != nil {
			return nil, fmt.Errorf("invalid restaurant id %q: %w", restaurantID, err)
		}
		id = parsed
	}

	results, err := p.uowFactory.NewUnitOfWork(ctx).DishEmbeddingRepository().SearchSimilarWithScore(ctx, id, query, topK)
	if err != nil {
		return nil, err
	}

	matches := make([]Match, 0, len(results))
	for _, r := range results {
		matches = append(matches, Match{
			DishID:     r.DishId.String(),
			Similarity: r.Similarity,
			Embedding:  r.Embedding,
		})
	}
	return matches, nil
}

func (p *PgvectorIndex) Empty(ctx context.Context) (bool, error) {
	count, err := p.uowFactory.NewUnitOfWork(ctx).DishEmbeddingRepository().Count(ctx)
	if err != nil {
		return false, err
	}
	return count == 0, nil
}
