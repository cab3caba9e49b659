package retriever

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"safebites-be/internal/constant"
	"safebites-be/internal/entity"
	"safebites-be/internal/pkg/logger"
	"safebites-be/pkg/llm"
	"safebites-be/pkg/rag/filter"
	"safebites-be/pkg/rag/llmjson"
	"safebites-be/pkg/rag/result"
	"safebites-be/pkg/rag/search"

	"golang.org/x/sync/errgroup"
)

const (
	infoRequiresMenuData   = "requires_menu_data"
	infoGeneralKnowledge   = "general_knowledge"
	generalKnowledgeFailed = "I apologize, but I couldn't generate a response. Please try again."
)

var errNoRelevantDishes = errors.New("no relevant dishes")

// DishInfoRetriever answers questions about dishes, either from general food
// knowledge or from the restaurant's menu data. It never returns an error.
type DishInfoRetriever struct {
	llmProvider llm.LLMProvider
	searcher    *search.Orchestrator
	dishes      DishSource
	extractor   *filter.Extractor
	validator   *filter.Validator
	logger      logger.ILogger
	concurrency int
	options     []llm.Option
}

func NewDishInfoRetriever(
	llmProvider llm.LLMProvider,
	searcher *search.Orchestrator,
	dishes DishSource,
	extractor *filter.Extractor,
	validator *filter.Validator,
	logger logger.ILogger,
	concurrency int,
	options ...llm.Option,
) *DishInfoRetriever {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &DishInfoRetriever{
		llmProvider: llmProvider,
		searcher:    searcher,
		dishes:      dishes,
		extractor:   extractor,
		validator:   validator,
		logger:      logger,
		concurrency: concurrency,
		options:     options,
	}
}

func (d *DishInfoRetriever) Retrieve(ctx context.Context, restaurantID string, queries []string, summary string) result.Outcome[[]entity.InfoResult] {
	results := make([]entity.InfoResult, len(queries))
	errs := make([]error, len(queries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.concurrency)
	for i, q := range queries {
		g.Go(func() error {
			answer, err := d.answer(gctx, restaurantID, WithSummary(q, summary))
			if err != nil {
				d.logger.Warn("DishInfoRetriever", "Dish info degraded", map[string]interface{}{
					"query": q,
					"error": err.Error(),
				})
			}
			results[i] = entity.InfoResult{Query: q, Answer: answer}
			errs[i] = err
			return nil
		})
	}
	_ = g.Wait()

	return result.Outcome[[]entity.InfoResult]{Value: results, Err: errors.Join(errs...)}
}

func textAnswer(text string) entity.InfoAnswer {
	return entity.InfoAnswer{RequestedInfo: text, SourceData: []interface{}{}}
}

// answer always produces an InfoAnswer; the error says why it is degraded.
func (d *DishInfoRetriever) answer(ctx context.Context, restaurantID, query string) (entity.InfoAnswer, error) {
	kind, err := d.deriveIntent(ctx, query)
	if err != nil {
		return textAnswer(constant.IntentDerivationFailed), err
	}

	if kind == infoGeneralKnowledge {
		return d.generalKnowledge(ctx, query)
	}

	found, err := d.menuDishes(ctx, restaurantID, query)
	if errors.Is(err, errNoRelevantDishes) {
		return textAnswer(fmt.Sprintf(constant.NoRelevantDishesTemplate, query)), found.Err
	}
	if err != nil {
		return textAnswer(fmt.Sprintf(constant.UnexpectedErrorTemplate, err.Error())), err
	}
	answer, err := d.synthesize(ctx, query, found.Value)
	return answer, errors.Join(found.Err, err)
}

// deriveIntent errors only when the model call itself fails.
func (d *DishInfoRetriever) deriveIntent(ctx context.Context, query string) (string, error) {
	response, err := d.llmProvider.Generate(ctx, fmt.Sprintf(constant.DishInfoIntentPrompt, query), d.options...)
	if err != nil {
		return "", err
	}

	var parsed struct {
		Type string `json:"type"`
	}
	if strings.TrimSpace(response) == "" || llmjson.Decode(response, &parsed) != nil {
		return infoGeneralKnowledge, nil
	}
	if parsed.Type == infoRequiresMenuData {
		return infoRequiresMenuData, nil
	}
	return infoGeneralKnowledge, nil
}

func (d *DishInfoRetriever) generalKnowledge(ctx context.Context, query string) (entity.InfoAnswer, error) {
	response, err := d.llmProvider.Generate(ctx, fmt.Sprintf(constant.GeneralKnowledgePrompt, query), d.options...)
	if err != nil {
		return textAnswer(fmt.Sprintf(constant.UnexpectedErrorTemplate, err.Error())), err
	}
	if strings.TrimSpace(response) == "" {
		return textAnswer(generalKnowledgeFailed), errors.New("empty general knowledge response")
	}

	var parsed struct {
		Answer string `json:"answer"`
	}
	if err := llmjson.Decode(response, &parsed); err != nil {
		return textAnswer(fmt.Sprintf("I understand you're asking: %s. However, I encountered an error processing the response. Please try rephrasing your question.", query)), err
	}
	return textAnswer(parsed.Answer), nil
}

// menuDishes returns errNoRelevantDishes when the search found nothing. The
// outcome error carries search, filter and validation fallbacks either way.
func (d *DishInfoRetriever) menuDishes(ctx context.Context, restaurantID, query string) (result.Outcome[[]entity.DishData], error) {
	hits, err := d.searcher.Execute(ctx, restaurantID, query)
	if err != nil {
		return result.Outcome[[]entity.DishData]{}, err
	}
	if len(hits.Value) == 0 {
		return result.Fallback[[]entity.DishData](nil, hits.Err), errNoRelevantDishes
	}

	ids := make([]string, 0, len(hits.Value))
	for _, h := range hits.Value {
		ids = append(ids, h.DishID)
	}
	dishes, err := d.dishes.DishesByIDs(ctx, restaurantID, ids)
	if err != nil {
		return result.Outcome[[]entity.DishData]{}, err
	}
	if len(dishes) == 0 {
		return result.Fallback[[]entity.DishData](nil, hits.Err), errNoRelevantDishes
	}

	filtered := d.extractor.FilterDishes(ctx, query, dishes)
	validated := d.validator.Validate(ctx, query, filtered.Value)
	return result.Fallback(validated.Value, errors.Join(hits.Err, filtered.Err, validated.Err)), nil
}

func (d *DishInfoRetriever) synthesize(ctx context.Context, query string, dishes []entity.DishData) (entity.InfoAnswer, error) {
	response, err := d.llmProvider.Generate(ctx, fmt.Sprintf(constant.DishInfoSynthesisPrompt, query, describeDishes(dishes)), d.options...)
	if err != nil {
		return textAnswer(fmt.Sprintf(constant.UnexpectedErrorTemplate, err.Error())), err
	}
	if strings.TrimSpace(response) == "" {
		return textAnswer(constant.NoDishInfoResponse), errors.New("empty dish info response")
	}

	var answer entity.InfoAnswer
	if err := llmjson.Decode(response, &answer); err != nil {
		return textAnswer(constant.UnparsableDishInfo), err
	}
	if answer.SourceData == nil {
		answer.SourceData = []interface{}{}
	}
	return answer, nil
}

func describeDishes(dishes []entity.DishData) string {
	var sb strings.Builder
	for _, d := range dishes {
		serving := d.ServingSize
		if serving == "" {
			serving = "N/A"
		}
		keys := make([]string, 0, len(d.NutritionFacts))
		for k := range d.NutritionFacts {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		nutrition := make([]string, 0, len(keys))
		for _, k := range keys {
			nutrition = append(nutrition, fmt.Sprintf("%s: %g", k, d.NutritionFacts[k].Value))
		}
		fmt.Fprintf(&sb, "Dish Name: %s\nDescription: %s\nPrice: %.2f\nIngredients: %s\nServing Size: %s\nAvailability: %t\nAllergens: %s\nNutrition: %s\n\n",
			d.Name, d.Description, d.Price,
			strings.Join(d.Ingredients, ", "), serving, d.Available,
			strings.Join(d.Allergens, ", "), strings.Join(nutrition, ", "))
	}
	return sb.String()
}
