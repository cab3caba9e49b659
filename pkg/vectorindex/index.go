// Package vectorindex stores one embedding per dish, partitioned by restaurant.
package vectorindex

import "context"

type Document struct {
	DishID       string
	RestaurantID string
	Content      string
	Embedding    []float32
}

type Match struct {
	DishID     string
	Similarity float64
	Embedding  []float32
}

type Index interface {
	Upsert(ctx context.Context, docs ...Document) error
	Delete(ctx context.Context, restaurantID string, dishIDs ...string) error
	DeleteRestaurant(ctx context.Context, restaurantID string) error
	// Search returns at most topK matches ordered by descending similarity. An
	// empty restaurantID searches every restaurant.
	Search(ctx context.Context, restaurantID string, query []float32, topK int) ([]Match, error)
	// Empty reports whether nothing has been indexed yet (fresh install or lost store).
	Empty(ctx context.Context) (bool, error)
}
