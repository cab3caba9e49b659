package vectorindex

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"strings"

	"github.com/philippgille/chromem-go"
)

const collectionPrefix = "restaurant_"

// ChromemIndex keeps a persistent chromem collection per restaurant on local disk.
type ChromemIndex struct {
	db *chromem.DB
	ef chromem.EmbeddingFunc
}

var _ Index = (*ChromemIndex)(nil)

// NewChromemIndex opens (or creates) the store at path. An empty path keeps everything in memory.
func NewChromemIndex(path string, ef chromem.EmbeddingFunc) (*ChromemIndex, error) {
	var (
		db  *chromem.DB
		err error
	)
	if path != "" {
		db, err = chromem.NewPersistentDB(path, false)
		if err != nil {
			return nil, fmt.Errorf("failed to open vector store at %s: %w", path, err)
		}
	} else {
		db = chromem.NewDB()
	}
	return &ChromemIndex{db: db, ef: ef}, nil
}

func collectionName(restaurantID string) string {
	return collectionPrefix + restaurantID
}

func (c *ChromemIndex) Upsert(ctx context.Context, docs ...Document) error {
	byRestaurant := make(map[string][]chromem.Document)
	for _, d := range docs {
		byRestaurant[d.RestaurantID] = append(byRestaurant[d.RestaurantID], chromem.Document{
			ID:        d.DishID,
			Content:   d.Content,
			Embedding: d.Embedding,
			Metadata:  map[string]string{"restaurant_id": d.RestaurantID},
		})
	}

	for restaurantID, chromemDocs := range byRestaurant {
		col, err := c.db.GetOrCreateCollection(collectionName(restaurantID), nil, c.ef)
		if err != nil {
			return fmt.Errorf("failed to open collection for restaurant %s: %w", restaurantID, err)
		}
		if err := col.AddDocuments(ctx, chromemDocs, runtime.NumCPU()); err != nil {
			return fmt.Errorf("failed to index dishes for restaurant %s: %w", restaurantID, err)
		}
	}
	return nil
}

func (c *ChromemIndex) Delete(ctx context.Context, restaurantID string, dishIDs ...string) error {
	if len(dishIDs) == 0 {
		return nil
	}
	col := c.db.GetCollection(collectionName(restaurantID), c.ef)
	if col == nil {
		return nil
	}
	return col.Delete(ctx, nil, nil, dishIDs...)
}

func (c *ChromemIndex) DeleteRestaurant(ctx context.Context, restaurantID string) error {
	if c.db.GetCollection(collectionName(restaurantID), c.ef) == nil {
		return nil
	}
	return c.db.DeleteCollection(collectionName(restaurantID))
}

// Search queries one restaurant's collection, or every restaurant collection
// when restaurantID is empty, merging by similarity.
func (c *ChromemIndex) Search(ctx context.Context, restaurantID string, query []float32, topK int) ([]Match, error) {
	if restaurantID != "" {
		return c.searchCollection(ctx, c.db.GetCollection(collectionName(restaurantID), c.ef), query, topK)
	}

	matches := make([]Match, 0)
	for name, col := range c.db.ListCollections() {
		if !strings.HasPrefix(name, collectionPrefix) {
			continue
		}
		found, err := c.searchCollection(ctx, col, query, topK)
		if err != nil {
			return nil, err
		}
		matches = append(matches, found...)
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})
	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

func (c *ChromemIndex) searchCollection(ctx context.Context, col *chromem.Collection, query []float32, topK int) ([]Match, error) {
	if col == nil {
		return nil, nil
	}

	// chromem rejects nResults larger than the collection.
	n := topK
	if count := col.Count(); count < n {
		n = count
	}
	if n <= 0 {
		return nil, nil
	}

	results, err := col.QueryEmbedding(ctx, query, n, nil, nil)
	if err != nil {
		return nil, err
	}

	matches := make([]Match, 0, len(results))
	for _, r := range results {
		matches = append(matches, Match{
			DishID:     r.ID,
			Similarity: float64(r.Similarity),
			Embedding:  r.Embedding,
		})
	}
	return matches, nil
}

func (c *ChromemIndex) Empty(ctx context.Context) (bool, error) {
	for _, col := range c.db.ListCollections() {
		if col.Count() > 0 {
			return false, nil
		}
	}
	return true, nil
}
