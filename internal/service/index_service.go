package service

import (
	"context"
	"fmt"

	"safebites-be/internal/entity"
	"safebites-be/internal/pkg/logger"
	"safebites-be/internal/repository/specification"
	"safebites-be/internal/repository/unitofwork"
	"safebites-be/pkg/embedding"
	"safebites-be/pkg/vectorindex"

	"github.com/google/uuid"
)

const rebuildBatchSize = 64

// IIndexService keeps the dish vector index in step with the dish table.
type IIndexService interface {
	IndexDishes(ctx context.Context, restaurantId uuid.UUID, dishIds ...uuid.UUID) (int, error)
	RemoveDishes(ctx context.Context, restaurantId uuid.UUID, dishIds ...uuid.UUID) error
	RemoveRestaurant(ctx context.Context, restaurantId uuid.UUID) error
	// ReindexRestaurant drops and re-embeds every dish of one restaurant.
	ReindexRestaurant(ctx context.Context, restaurantId uuid.UUID) (int, error)
	// EnsureIndex rebuilds the index when it is empty while dishes exist.
	EnsureIndex(ctx context.Context) (bool, error)
	Rebuild(ctx context.Context) (int, error)
}

type indexService struct {
	uowFactory        unitofwork.RepositoryFactory
	index             vectorindex.Index
	embeddingProvider embedding.EmbeddingProvider
	logger            logger.ILogger
}

func NewIndexService(
	uowFactory unitofwork.RepositoryFactory,
	index vectorindex.Index,
	embeddingProvider embedding.EmbeddingProvider,
	logger logger.ILogger,
) IIndexService {
	return &indexService{
		uowFactory:        uowFactory,
		index:             index,
		embeddingProvider: embeddingProvider,
		logger:            logger,
	}
}

func (s *indexService) IndexDishes(ctx context.Context, restaurantId uuid.UUID, dishIds ...uuid.UUID) (int, error) {
	if len(dishIds) == 0 {
		return 0, nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	dishes, err := uow.DishRepository().FindAll(ctx,
		specification.ByIDs{IDs: dishIds},
		specification.ByRestaurant{RestaurantID: restaurantId},
	)
	if err != nil {
		return 0, fmt.Errorf("failed to load dishes for indexing: %w", err)
	}
	return s.indexBatch(ctx, dishes)
}

func (s *indexService) indexBatch(ctx context.Context, dishes []*entity.Dish) (int, error) {
	if len(dishes) == 0 {
		return 0, nil
	}

	docs := make([]vectorindex.Document, 0, len(dishes))
	for _, d := range dishes {
		content := d.Document()
		res, err := s.embeddingProvider.Generate(ctx, content, embedding.TaskRetrievalDocument)
		if err != nil {
			return 0, fmt.Errorf("failed to embed dish %s: %w", d.Id, err)
		}
		docs = append(docs, vectorindex.Document{
			DishID:       d.Id.String(),
			RestaurantID: d.RestaurantId.String(),
			Content:      content,
			Embedding:    res.Embedding.Values,
		})
	}

	if err := s.index.Upsert(ctx, docs...); err != nil {
		return 0, fmt.Errorf("failed to upsert %d documents: %w", len(docs), err)
	}
	return len(docs), nil
}

func (s *indexService) RemoveDishes(ctx context.Context, restaurantId uuid.UUID, dishIds ...uuid.UUID) error {
	ids := make([]string, 0, len(dishIds))
	for _, id := range dishIds {
		ids = append(ids, id.String())
	}
	return s.index.Delete(ctx, restaurantId.String(), ids...)
}

func (s *indexService) RemoveRestaurant(ctx context.Context, restaurantId uuid.UUID) error {
	return s.index.DeleteRestaurant(ctx, restaurantId.String())
}

func (s *indexService) ReindexRestaurant(ctx context.Context, restaurantId uuid.UUID) (int, error) {
	dishes, err := s.uowFactory.NewUnitOfWork(ctx).DishRepository().FindAll(ctx,
		specification.ByRestaurant{RestaurantID: restaurantId},
	)
	if err != nil {
		return 0, fmt.Errorf("failed to load dishes for indexing: %w", err)
	}
	if err := s.RemoveRestaurant(ctx, restaurantId); err != nil {
		return 0, err
	}
	return s.indexBatch(ctx, dishes)
}

func (s *indexService) EnsureIndex(ctx context.Context) (bool, error) {
	empty, err := s.index.Empty(ctx)
	if err != nil {
		return false, err
	}
	if !empty {
		return false, nil
	}

	count, err := s.uowFactory.NewUnitOfWork(ctx).DishRepository().Count(ctx)
	if err != nil {
		return false, err
	}
	if count == 0 {
		return false, nil
	}

	s.logger.Warn("IndexService", "Vector index is empty, rebuilding", map[string]interface{}{"dishes": count})
	if _, err := s.Rebuild(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// Rebuild re-embeds every dish in pages of rebuildBatchSize.
func (s *indexService) Rebuild(ctx context.Context) (int, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	total := 0

	for offset := 0; ; offset += rebuildBatchSize {
		dishes, err := uow.DishRepository().FindAll(ctx,
			specification.OrderBy{Field: "created_at"},
			specification.OrderBy{Field: "id"},
			specification.Pagination{Limit: rebuildBatchSize, Offset: offset},
		)
		if err != nil {
			return total, fmt.Errorf("failed to page dishes at offset %d: %w", offset, err)
		}

		indexed, err := s.indexBatch(ctx, dishes)
		total += indexed
		if err != nil {
			return total, err
		}
		if len(dishes) < rebuildBatchSize {
			break
		}
	}

	s.logger.Info("IndexService", "Vector index rebuilt", map[string]interface{}{"documents": total})
	return total, nil
}
