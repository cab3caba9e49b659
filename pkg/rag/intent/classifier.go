package intent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"safebites-be/internal/constant"
	"safebites-be/internal/entity"
	"safebites-be/internal/pkg/logger"
	"safebites-be/pkg/llm"
	"safebites-be/pkg/rag/llmjson"
	"safebites-be/pkg/rag/result"
)

var (
	ErrEmptyQuery     = errors.New("missing query in state during extraction")
	errNoIntents      = errors.New("model returned no intents")
	errEmptyModelText = errors.New("empty model response")
)

// Classifier splits a query into typed sub-queries.
type Classifier struct {
	llmProvider llm.LLMProvider
	logger      logger.ILogger
	options     []llm.Option
}

func NewClassifier(llmProvider llm.LLMProvider, logger logger.ILogger, options ...llm.Option) *Classifier {
	return &Classifier{
		llmProvider: llmProvider,
		logger:      logger,
		options:     options,
	}
}

// Classify returns intents in the fixed type order. Any model or parse failure
// degrades to a single irrelevant intent wrapping the original query.
func (c *Classifier) Classify(ctx context.Context, query string) (result.Outcome[[]entity.IntentQuery], error) {
	if strings.TrimSpace(query) == "" {
		return result.Outcome[[]entity.IntentQuery]{}, ErrEmptyQuery
	}

	fallback := []entity.IntentQuery{{Type: entity.IntentIrrelevant, Query: query}}

	response, err := c.llmProvider.Generate(ctx, fmt.Sprintf(constant.IntentClassificationPrompt, query), c.options...)
	if err != nil {
		c.logger.Error("IntentClassifier", "Intent extraction failed", map[string]interface{}{"error": err.Error()})
		return result.Fallback(fallback, err), nil
	}
	if strings.TrimSpace(response) == "" {
		c.logger.Warn("IntentClassifier", "Empty model response, treating as irrelevant", map[string]interface{}{"query": query})
		return result.Fallback(fallback, errEmptyModelText), nil
	}

	intents, err := parseIntents(response)
	if err != nil {
		c.logger.Warn("IntentClassifier", "Intent parsing failed, treating as irrelevant", map[string]interface{}{"error": err.Error()})
		return result.Fallback(fallback, err), nil
	}
	if len(intents) == 0 {
		return result.Fallback(fallback, errNoIntents), nil
	}
	return result.Ok(intents), nil
}

func parseIntents(response string) ([]entity.IntentQuery, error) {
	var raw map[string]json.RawMessage
	if err := llmjson.Decode(response, &raw); err != nil {
		return nil, err
	}

	var intents []entity.IntentQuery
	for _, intentType := range entity.IntentTypes {
		payload, ok := raw[string(intentType)]
		if !ok {
			continue
		}
		var queries []string
		if err := json.Unmarshal(payload, &queries); err != nil {
			continue
		}
		for _, q := range queries {
			if q = strings.TrimSpace(q); q != "" {
				intents = append(intents, entity.IntentQuery{Type: intentType, Query: q})
			}
		}
	}
	return intents, nil
}
