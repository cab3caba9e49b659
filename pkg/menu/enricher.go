package menu

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"safebites-be/internal/constant"
	"safebites-be/internal/entity"
	"safebites-be/internal/pkg/logger"
	"safebites-be/pkg/llm"
	"safebites-be/pkg/rag/filter"
	"safebites-be/pkg/rag/llmjson"

	"golang.org/x/sync/errgroup"
)

type enrichment struct {
	Ingredients    []string              `json:"ingredients"`
	Allergens      []entity.AllergenInfo `json:"allergens"`
	NutritionFacts json.RawMessage       `json:"nutrition_facts"`
	Summary        string                `json:"summary"`
}

// Enricher fills the gaps a menu CSV leaves: ingredients, allergens,
// nutrition facts and a description. Fields already present are never overwritten.
type Enricher struct {
	llmProvider llm.LLMProvider
	logger      logger.ILogger
	concurrency int
	options     []llm.Option
}

func NewEnricher(llmProvider llm.LLMProvider, logger logger.ILogger, concurrency int, options ...llm.Option) *Enricher {
	if concurrency <= 0 {
		concurrency = 4
	}
	return &Enricher{
		llmProvider: llmProvider,
		logger:      logger,
		concurrency: concurrency,
		options:     options,
	}
}

// EnrichAll enriches dishes in place and returns how many were enriched.
// A failed dish is left exactly as parsed.
func (e *Enricher) EnrichAll(ctx context.Context, dishes []*entity.Dish) int {
	enriched := make([]bool, len(dishes))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i, d := range dishes {
		g.Go(func() error {
			if err := e.Enrich(gctx, d); err != nil {
				e.logger.Warn("MenuEnricher", "Enrichment failed, keeping parsed dish", map[string]interface{}{
					"dish":  d.Name,
					"error": err.Error(),
				})
				return nil
			}
			enriched[i] = true
			return nil
		})
	}
	_ = g.Wait()

	n := 0
	for _, ok := range enriched {
		if ok {
			n++
		}
	}
	return n
}

func (e *Enricher) Enrich(ctx context.Context, d *entity.Dish) error {
	prompt := fmt.Sprintf(constant.DishEnrichmentPrompt, d.Name, d.Description, strings.Join(d.Ingredients, ", "))
	response, err := e.llmProvider.Generate(ctx, prompt, e.options...)
	if err != nil {
		return err
	}
	if strings.TrimSpace(response) == "" {
		return fmt.Errorf("empty enrichment response")
	}

	var out enrichment
	if err := llmjson.Decode(response, &out); err != nil {
		return err
	}

	if len(d.Ingredients) == 0 {
		d.Ingredients = splitList(strings.Join(out.Ingredients, ","))
	}
	if len(d.Allergens) == 0 {
		d.Allergens = canonicalAllergens(out.Allergens)
	}
	if len(d.NutritionFacts) == 0 && len(out.NutritionFacts) > 0 {
		if facts, err := ParseNutrition(out.NutritionFacts); err == nil {
			d.NutritionFacts = facts
		}
	}
	if d.Description == "" {
		d.Description = strings.TrimSpace(out.Summary)
	}
	return nil
}

// canonicalAllergens keeps only allergens from the canonical set, normalized and de-duplicated.
func canonicalAllergens(in []entity.AllergenInfo) []entity.AllergenInfo {
	allowed := make(map[string]struct{}, len(entity.CanonicalAllergens))
	for _, a := range entity.CanonicalAllergens {
		allowed[a] = struct{}{}
	}

	seen := make(map[string]struct{})
	out := make([]entity.AllergenInfo, 0, len(in))
	for _, a := range in {
		name := filter.NormalizeAllergen(a.Allergen)
		if _, ok := allowed[name]; !ok {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		a.Allergen = name
		out = append(out, a)
	}
	return out
}
