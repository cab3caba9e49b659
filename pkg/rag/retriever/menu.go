package retriever

import (
	"context"
	"errors"
	"fmt"

	"safebites-be/internal/entity"
	"safebites-be/internal/pkg/logger"
	"safebites-be/pkg/rag/filter"
	"safebites-be/pkg/rag/result"
	"safebites-be/pkg/rag/search"

	"golang.org/x/sync/errgroup"
)

type MenuRetriever struct {
	searcher    *search.Orchestrator
	dishes      DishSource
	extractor   *filter.Extractor
	validator   *filter.Validator
	logger      logger.ILogger
	concurrency int
}

func NewMenuRetriever(
	searcher *search.Orchestrator,
	dishes DishSource,
	extractor *filter.Extractor,
	validator *filter.Validator,
	logger logger.ILogger,
	concurrency int,
) *MenuRetriever {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &MenuRetriever{
		searcher:    searcher,
		dishes:      dishes,
		extractor:   extractor,
		validator:   validator,
		logger:      logger,
		concurrency: concurrency,
	}
}

// Retrieve runs every sub-query concurrently. Results keep sub-query order and a
// failing sub-query contributes an empty dish list. Degraded sub-queries keep
// their dishes and report the cause in the outcome error.
func (m *MenuRetriever) Retrieve(ctx context.Context, restaurantID string, queries []string, summary string) result.Outcome[[]entity.MenuResult] {
	results := make([]entity.MenuResult, len(queries))
	errs := make([]error, len(queries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.concurrency)
	for i, q := range queries {
		g.Go(func() error {
			out, err := m.retrieveOne(gctx, restaurantID, WithSummary(q, summary))
			switch {
			case err != nil:
				m.logger.Error("MenuRetriever", "Menu sub-query failed", map[string]interface{}{
					"query": q,
					"error": err.Error(),
				})
				out = result.Ok([]entity.DishData{})
				errs[i] = err
			case out.Degraded():
				m.logger.Warn("MenuRetriever", "Menu sub-query degraded", map[string]interface{}{
					"query": q,
					"error": out.Err.Error(),
				})
				errs[i] = fmt.Errorf("query %q: %w", q, out.Err)
			}
			results[i] = entity.MenuResult{Query: q, Dishes: out.Value}
			return nil
		})
	}
	_ = g.Wait()

	return result.Outcome[[]entity.MenuResult]{Value: results, Err: errors.Join(errs...)}
}

// retrieveOne errors only when nothing usable came back. Search, filter and
// validation fallbacks are joined into the outcome error.
func (m *MenuRetriever) retrieveOne(ctx context.Context, restaurantID, query string) (result.Outcome[[]entity.DishData], error) {
	hits, err := m.searcher.Execute(ctx, restaurantID, query)
	if err != nil {
		return result.Outcome[[]entity.DishData]{}, err
	}
	if len(hits.Value) == 0 {
		return result.Fallback([]entity.DishData{}, hits.Err), nil
	}

	ids := make([]string, 0, len(hits.Value))
	for _, h := range hits.Value {
		ids = append(ids, h.DishID)
	}
	dishes, err := m.dishes.DishesByIDs(ctx, restaurantID, ids)
	if err != nil {
		return result.Outcome[[]entity.DishData]{}, fmt.Errorf("failed to load dishes: %w", err)
	}

	filtered := m.extractor.FilterDishes(ctx, query, dishes)
	validated := m.validator.Validate(ctx, query, filtered.Value)
	return result.Fallback(validated.Value, errors.Join(hits.Err, filtered.Err, validated.Err)), nil
}
