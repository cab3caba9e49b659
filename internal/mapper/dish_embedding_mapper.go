package mapper

import (
	"safebites-be/internal/entity"
	"safebites-be/internal/model"

	"github.com/pgvector/pgvector-go"
)

type DishEmbeddingMapper struct{}

func NewDishEmbeddingMapper() *DishEmbeddingMapper {
	return &DishEmbeddingMapper{}
}

func (m *DishEmbeddingMapper) ToEntity(e *model.DishEmbedding) *entity.DishEmbedding {
	if e == nil {
		return nil
	}
	return &entity.DishEmbedding{
		Id:           e.Id,
		DishId:       e.DishId,
		RestaurantId: e.RestaurantId,
		Document:     e.Document,
		Embedding:    e.Embedding.Slice(),
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}

func (m *DishEmbeddingMapper) ToModel(e *entity.DishEmbedding) *model.DishEmbedding {
	if e == nil {
		return nil
	}
	return &model.DishEmbedding{
		Id:           e.Id,
		DishId:       e.DishId,
		RestaurantId: e.RestaurantId,
		Document:     e.Document,
		Embedding:    pgvector.NewVector(e.Embedding),
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}
