package filter

import (
	"context"
	"encoding/json"
	"fmt"

	"safebites-be/internal/constant"
	"safebites-be/internal/entity"
	"safebites-be/internal/pkg/logger"
	"safebites-be/pkg/llm"
	"safebites-be/pkg/rag/llmjson"
	"safebites-be/pkg/rag/result"
)

type validationVerdict struct {
	DishID  string `json:"dish_id"`
	Include bool   `json:"include"`
	Reason  string `json:"reason"`
}

// dishSummary is the slice of a dish shown to the model for relevance checks.
type dishSummary struct {
	DishID      string   `json:"dish_id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Ingredients []string `json:"ingredients"`
	Allergens   []string `json:"allergens"`
}

// Validator asks the model which retrieved dishes actually answer the query.
type Validator struct {
	llmProvider llm.LLMProvider
	logger      logger.ILogger
	options     []llm.Option
}

func NewValidator(llmProvider llm.LLMProvider, logger logger.ILogger, options ...llm.Option) *Validator {
	return &Validator{
		llmProvider: llmProvider,
		logger:      logger,
		options:     options,
	}
}

// Validate keeps the included dishes in input order and fails open.
func (v *Validator) Validate(ctx context.Context, query string, dishes []entity.DishData) result.Outcome[[]entity.DishData] {
	if len(dishes) == 0 {
		return result.Ok([]entity.DishData{})
	}

	summaries := make([]dishSummary, 0, len(dishes))
	for _, d := range dishes {
		summaries = append(summaries, dishSummary{
			DishID:      d.DishId,
			Name:        d.Name,
			Description: d.Description,
			Price:       d.Price,
			Ingredients: d.Ingredients,
			Allergens:   d.Allergens,
		})
	}
	payload, err := json.Marshal(summaries)
	if err != nil {
		return result.Fallback(dishes, err)
	}

	response, err := v.llmProvider.Generate(ctx, fmt.Sprintf(constant.DishValidationPrompt, query, payload), v.options...)
	if err != nil {
		v.logger.Warn("DishValidator", "Validation call failed, keeping all dishes", map[string]interface{}{"error": err.Error()})
		return result.Fallback(dishes, err)
	}

	var verdicts []validationVerdict
	if err := llmjson.Decode(response, &verdicts); err != nil {
		v.logger.Warn("DishValidator", "Validation reply unparsable, keeping all dishes", map[string]interface{}{"error": err.Error()})
		return result.Fallback(dishes, err)
	}

	included := make(map[string]struct{}, len(verdicts))
	for _, vd := range verdicts {
		if vd.Include {
			included[vd.DishID] = struct{}{}
		}
	}

	kept := make([]entity.DishData, 0, len(included))
	for _, d := range dishes {
		if _, ok := included[d.DishId]; ok {
			kept = append(kept, d)
		}
	}
	return result.Ok(kept)
}
