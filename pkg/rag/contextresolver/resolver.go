// Package contextresolver rewrites a follow-up query into a self-contained one
// and summarizes the conversation that led to it.
package contextresolver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"safebites-be/internal/constant"
	"safebites-be/internal/entity"
	"safebites-be/internal/pkg/apperror"
	"safebites-be/internal/pkg/logger"
	"safebites-be/pkg/llm"
)

const maxSummaryWords = 300

type Resolution struct {
	Query   string
	Summary string
}

type Resolver struct {
	llmProvider llm.LLMProvider
	logger      logger.ILogger
	options     []llm.Option
}

func NewResolver(llmProvider llm.LLMProvider, logger logger.ILogger, options ...llm.Option) *Resolver {
	return &Resolver{
		llmProvider: llmProvider,
		logger:      logger,
		options:     options,
	}
}

// Resolve makes two model calls: one to rewrite the query, one to summarize
// history against the rewritten query. It never retries.
func (r *Resolver) Resolve(ctx context.Context, query string, history []entity.ContextItem) (*Resolution, error) {
	if strings.TrimSpace(query) == "" {
		return nil, apperror.BadRequest("missing user query")
	}

	contextJSON, err := encodeHistory(history)
	if err != nil {
		return nil, apperror.BadRequest("invalid data format: %v", err)
	}

	rewritten, err := r.llmProvider.Generate(ctx, fmt.Sprintf(constant.ContextRewritePrompt, query, contextJSON), r.options...)
	if err != nil {
		r.logger.Error("ContextResolver", "Query rewrite failed", map[string]interface{}{"error": err.Error()})
		return nil, apperror.Generic(err, "unexpected error in context resolver")
	}
	rewritten = strings.Trim(strings.TrimSpace(rewritten), "\"")
	if rewritten == "" {
		return nil, apperror.Generic(nil, "LLM returned an empty rewritten query")
	}

	summary, err := r.llmProvider.Generate(ctx, fmt.Sprintf(constant.ContextSummaryPrompt, contextJSON, rewritten), r.options...)
	if err != nil {
		r.logger.Error("ContextResolver", "Context summary failed", map[string]interface{}{"error": err.Error()})
		return nil, apperror.Generic(err, "unexpected error in context resolver")
	}

	resolution := &Resolution{
		Query:   rewritten,
		Summary: limitWords(strings.TrimSpace(summary), maxSummaryWords),
	}
	r.logger.Debug("ContextResolver", "Resolved query", map[string]interface{}{
		"original":  query,
		"rewritten": resolution.Query,
	})
	return resolution, nil
}

func encodeHistory(history []entity.ContextItem) (string, error) {
	if len(history) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(history)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func limitWords(text string, n int) string {
	words := strings.Fields(text)
	if len(words) <= n {
		return text
	}
	return strings.Join(words[:n], " ")
}
