package retriever

import (
	"context"
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

const noPreferencesAnswer = "You haven't set any allergen preferences yet."

// PreferencesRetriever answers questions about the user's own preferences from
// the conversation context. It never reads the dish store.
type PreferencesRetriever struct {
	llmProvider llm.LLMProvider
	logger      logger.ILogger
	options     []llm.Option
}

func NewPreferencesRetriever(llmProvider llm.LLMProvider, logger logger.ILogger, options ...llm.Option) *PreferencesRetriever {
	return &PreferencesRetriever{
		llmProvider: llmProvider,
		logger:      logger,
		options:     options,
	}
}

// UserAllergens returns the allergens from the first context item that carries them.
func UserAllergens(history []entity.ContextItem) []string {
	for _, item := range history {
		if len(item.UserAllergens) > 0 {
			return item.UserAllergens
		}
	}
	return nil
}

func (p *PreferencesRetriever) Retrieve(ctx context.Context, queries []string, history []entity.ContextItem) result.Outcome[[]entity.PreferenceResult] {
	allergens := UserAllergens(history)
	results := make([]entity.PreferenceResult, 0, len(queries))
	var errs []error

	for _, q := range queries {
		if len(allergens) == 0 {
			results = append(results, entity.PreferenceResult{Query: q, Answer: noPreferencesAnswer})
			continue
		}

		answer, err := p.answer(ctx, q, allergens)
		if err != nil {
			p.logger.Warn("PreferencesRetriever", "Preference answer degraded", map[string]interface{}{
				"query": q,
				"error": err.Error(),
			})
			answer = fmt.Sprintf("You are allergic to: %s.", strings.Join(allergens, ", "))
			errs = append(errs, err)
		}
		results = append(results, entity.PreferenceResult{Query: q, Answer: answer})
	}

	return result.Outcome[[]entity.PreferenceResult]{Value: results, Err: errors.Join(errs...)}
}

func (p *PreferencesRetriever) answer(ctx context.Context, query string, allergens []string) (string, error) {
	listed := constant.NoAllergenPreferences
	if len(allergens) > 0 {
		listed = strings.Join(allergens, ", ")
	}

	response, err := p.llmProvider.Generate(ctx, fmt.Sprintf(constant.UserPreferencesPrompt, query, listed), p.options...)
	if err != nil {
		return "", err
	}

	var parsed struct {
		Answer string `json:"answer"`
	}
	if err := llmjson.Decode(response, &parsed); err != nil {
		return "", err
	}
	if strings.TrimSpace(parsed.Answer) == "" {
		return "", errors.New("empty preference answer")
	}
	return parsed.Answer, nil
}
