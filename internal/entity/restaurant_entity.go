package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	MinRating = 0.0
	MaxRating = 5.0
)

type Restaurant struct {
	Id        uuid.UUID
	Name      string
	Location  string
	Cuisine   []string
	Rating    float64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ClampRating keeps a rating inside [0,5].
func ClampRating(r float64) float64 {
	if r < MinRating {
		return MinRating
	}
	if r > MaxRating {
		return MaxRating
	}
	return r
}
