package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// DishEmbedding is only migrated on Postgres (VECTOR_BACKEND=pgvector).
type DishEmbedding struct {
	Id           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	DishId       uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	RestaurantId uuid.UUID       `gorm:"type:uuid;not null;index"`
	Document     string          `gorm:"type:text"`
	Embedding    pgvector.Vector `gorm:"type:vector"`
	CreatedAt    time.Time       `gorm:"autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime"`
}

func (DishEmbedding) TableName() string {
	return "dish_embeddings"
}
