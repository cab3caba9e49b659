package entity

import (
	"time"

	"github.com/google/uuid"
)

type DishEmbedding struct {
	Id           uuid.UUID
	DishId       uuid.UUID
	RestaurantId uuid.UUID
	Document     string
	Embedding    []float32
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// DishEmbeddingMatch is a similarity search hit.
type DishEmbeddingMatch struct {
	DishEmbedding
	Similarity float64
}
