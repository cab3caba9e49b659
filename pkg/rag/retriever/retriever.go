// Package retriever holds the three retrieval branches of a chat turn.
package retriever

import (
	"context"
	"fmt"

	"safebites-be/internal/entity"
)

const defaultConcurrency = 4

// DishSource hydrates dish ids from the vector index into dish records,
// preserving the order of ids and skipping unknown ones.
type DishSource interface {
	DishesByIDs(ctx context.Context, restaurantID string, ids []string) ([]entity.DishData, error)
}

// WithSummary appends the conversation summary to a sub-query.
func WithSummary(query, summary string) string {
	if summary == "" {
		return query
	}
	return fmt.Sprintf("%s\nContext: %s", query, summary)
}
