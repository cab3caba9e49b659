package search

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"safebites-be/internal/constant"
	"safebites-be/internal/pkg/logger"
	"safebites-be/pkg/embedding"
	"safebites-be/pkg/llm"
	"safebites-be/pkg/rag/llmjson"
	"safebites-be/pkg/rag/result"
	"safebites-be/pkg/vectorindex"
)

// QueryIntent separates what the user wants from what they want excluded.
type QueryIntent struct {
	Positive []string `json:"positive"`
	Negative []string `json:"negative"`
}

// Hit is a dish that survived negation and centroid re-scoring.
type Hit struct {
	DishID             string
	Similarity         float64
	CentroidSimilarity float64
	Embedding          []float32
}

// Config encapsulates search parameters
type Config struct {
	TopK              int
	HitThreshold      float64
	CentroidThreshold float64
}

func DefaultConfig() Config {
	return Config{
		TopK:              20,
		HitThreshold:      0.35,
		CentroidThreshold: 0.30,
	}
}

// Orchestrator runs semantic retrieval with negation against one restaurant's index.
type Orchestrator struct {
	llmProvider       llm.LLMProvider
	embeddingProvider embedding.EmbeddingProvider
	index             vectorindex.Index
	config            Config
	logger            logger.ILogger
	options           []llm.Option
}

func NewOrchestrator(
	llmProvider llm.LLMProvider,
	embeddingProvider embedding.EmbeddingProvider,
	index vectorindex.Index,
	config Config,
	logger logger.ILogger,
	options ...llm.Option,
) *Orchestrator {
	return &Orchestrator{
		llmProvider:       llmProvider,
		embeddingProvider: embeddingProvider,
		index:             index,
		config:            config,
		logger:            logger,
		options:           options,
	}
}

// ExtractQueryIntent falls back to {positive:[query], negative:[]} on any failure.
func (o *Orchestrator) ExtractQueryIntent(ctx context.Context, query string) result.Outcome[QueryIntent] {
	fallback := QueryIntent{Positive: []string{query}, Negative: []string{}}

	response, err := o.llmProvider.Generate(ctx, fmt.Sprintf(constant.QueryIntentPrompt, query), o.options...)
	if err != nil {
		return result.Fallback(fallback, err)
	}

	var qi QueryIntent
	if err := llmjson.Decode(response, &qi); err != nil {
		return result.Fallback(fallback, err)
	}
	qi.Positive = compact(qi.Positive)
	qi.Negative = compact(qi.Negative)
	if len(qi.Positive) == 0 {
		qi.Positive = []string{query}
	}
	return result.Ok(qi)
}

// Execute returns dish hits for query ordered by centroid similarity. A degraded
// outcome means the negation split fell back to the raw query.
func (o *Orchestrator) Execute(ctx context.Context, restaurantID string, query string) (result.Outcome[[]Hit], error) {
	intent := o.ExtractQueryIntent(ctx, query)
	if intent.Degraded() {
		o.logger.Warn("SearchOrchestrator", "Query intent extraction failed, searching raw query", map[string]interface{}{
			"error": intent.Err.Error(),
		})
	}

	positiveHits := make([]vectorindex.Match, 0)
	positiveEmbeddings := make([][]float32, 0, len(intent.Value.Positive))
	for _, term := range intent.Value.Positive {
		emb, matches, err := o.searchTerm(ctx, restaurantID, term)
		if err != nil {
			return result.Outcome[[]Hit]{}, err
		}
		positiveEmbeddings = append(positiveEmbeddings, emb)
		positiveHits = append(positiveHits, matches...)
	}

	negativeIDs := make(map[string]struct{})
	for _, term := range intent.Value.Negative {
		_, matches, err := o.searchTerm(ctx, restaurantID, term)
		if err != nil {
			return result.Outcome[[]Hit]{}, err
		}
		for _, m := range matches {
			negativeIDs[m.DishID] = struct{}{}
		}
	}

	seen := make(map[string]struct{})
	unique := make([]vectorindex.Match, 0, len(positiveHits))
	for _, m := range positiveHits {
		if _, excluded := negativeIDs[m.DishID]; excluded {
			continue
		}
		if _, dup := seen[m.DishID]; dup {
			continue
		}
		seen[m.DishID] = struct{}{}
		unique = append(unique, m)
	}

	hits := refineWithCentroid(unique, centroid(positiveEmbeddings), o.config.CentroidThreshold)

	o.logger.Debug("SearchOrchestrator", "Semantic retrieval finished", map[string]interface{}{
		"restaurant_id": restaurantID,
		"positive":      intent.Value.Positive,
		"negative":      intent.Value.Negative,
		"positive_hits": len(positiveHits),
		"negative_hits": len(negativeIDs),
		"unique_hits":   len(unique),
		"refined_hits":  len(hits),
	})

	return result.Outcome[[]Hit]{Value: hits, Err: intent.Err}, nil
}

func (o *Orchestrator) searchTerm(ctx context.Context, restaurantID, term string) ([]float32, []vectorindex.Match, error) {
	res, err := o.embeddingProvider.Generate(ctx, term, embedding.TaskRetrievalQuery)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to embed %q: %w", term, err)
	}
	if len(res.Embedding.Values) == 0 {
		return nil, nil, errors.New("embedding provider returned an empty vector")
	}

	matches, err := o.index.Search(ctx, restaurantID, res.Embedding.Values, o.config.TopK)
	if err != nil {
		return nil, nil, fmt.Errorf("vector search failed: %w", err)
	}

	kept := make([]vectorindex.Match, 0, len(matches))
	for _, m := range matches {
		if m.Similarity >= o.config.HitThreshold {
			kept = append(kept, m)
		}
	}
	return res.Embedding.Values, kept, nil
}

func refineWithCentroid(matches []vectorindex.Match, center []float32, threshold float64) []Hit {
	hits := make([]Hit, 0, len(matches))
	if center == nil {
		return hits
	}
	for _, m := range matches {
		if len(m.Embedding) != len(center) {
			continue
		}
		sim := cosine(center, m.Embedding)
		if sim < threshold {
			continue
		}
		hits = append(hits, Hit{
			DishID:             m.DishID,
			Similarity:         m.Similarity,
			CentroidSimilarity: sim,
			Embedding:          m.Embedding,
		})
	}
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].CentroidSimilarity > hits[j].CentroidSimilarity
	})
	return hits
}

func centroid(vectors [][]float32) []float32 {
	if len(vectors) == 0 {
		return nil
	}
	dim := len(vectors[0])
	sum := make([]float64, dim)
	n := 0
	for _, v := range vectors {
		if len(v) != dim {
			continue
		}
		for i, x := range v {
			sum[i] += float64(x)
		}
		n++
	}
	out := make([]float32, dim)
	for i := range sum {
		out[i] = float32(sum[i] / float64(n))
	}
	return out
}

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func compact(terms []string) []string {
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
