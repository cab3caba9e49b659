package filter

import (
	"context"
	"fmt"

	"safebites-be/internal/constant"
	"safebites-be/internal/entity"
	"safebites-be/internal/pkg/logger"
	"safebites-be/pkg/llm"
	"safebites-be/pkg/rag/llmjson"
	"safebites-be/pkg/rag/result"
)

type Extractor struct {
	llmProvider llm.LLMProvider
	logger      logger.ILogger
	options     []llm.Option
}

func NewExtractor(llmProvider llm.LLMProvider, logger logger.ILogger, options ...llm.Option) *Extractor {
	return &Extractor{
		llmProvider: llmProvider,
		logger:      logger,
		options:     options,
	}
}

// Extract asks the model for the constraints expressed in query.
func (e *Extractor) Extract(ctx context.Context, query string) (DishFilter, error) {
	response, err := e.llmProvider.Generate(ctx, fmt.Sprintf(constant.FilterExtractionPrompt, query), e.options...)
	if err != nil {
		return DishFilter{}, err
	}

	var raw rawFilter
	if err := llmjson.Decode(response, &raw); err != nil {
		return DishFilter{}, err
	}
	return raw.toDishFilter(), nil
}

// FilterDishes extracts filters from query and applies them. An empty input
// makes no model call; an extraction failure returns the input unchanged.
func (e *Extractor) FilterDishes(ctx context.Context, query string, dishes []entity.DishData) result.Outcome[[]entity.DishData] {
	if len(dishes) == 0 {
		return result.Ok([]entity.DishData{})
	}

	f, err := e.Extract(ctx, query)
	if err != nil {
		e.logger.Warn("FilterExtractor", "Filter extraction failed, returning dishes unfiltered", map[string]interface{}{
			"error": err.Error(),
		})
		return result.Fallback(dishes, err)
	}
	return result.Ok(Apply(dishes, f))
}
