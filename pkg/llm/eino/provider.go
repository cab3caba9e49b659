package eino

import (
	"context"
	"errors"
	"time"

	"safebites-be/internal/pkg/logger"
	"safebites-be/pkg/llm"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// Provider adapts any eino chat model to llm.LLMProvider and records per-call usage.
type Provider struct {
	chatModel model.BaseChatModel
	modelName string
	usageLog  logger.ILogger
}

var _ llm.LLMProvider = (*Provider)(nil)

func NewProvider(chatModel model.BaseChatModel, modelName string, usageLog logger.ILogger) *Provider {
	return &Provider{
		chatModel: chatModel,
		modelName: modelName,
		usageLog:  usageLog,
	}
}

func (p *Provider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, options...)
}

func (p *Provider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	if len(history) == 0 {
		return "", errors.New("empty chat history")
	}

	messages := make([]*schema.Message, 0, len(history))
	for _, m := range history {
		messages = append(messages, toSchemaMessage(m))
	}

	opts := llm.ApplyOptions(options...)
	modelName := p.modelName
	var einoOpts []model.Option
	if opts.Temperature != nil {
		einoOpts = append(einoOpts, model.WithTemperature(float32(*opts.Temperature)))
	}
	if opts.MaxTokens > 0 {
		einoOpts = append(einoOpts, model.WithMaxTokens(opts.MaxTokens))
	}
	if opts.Model != "" {
		modelName = opts.Model
		einoOpts = append(einoOpts, model.WithModel(opts.Model))
	}

	start := time.Now()
	resp, err := p.chatModel.Generate(ctx, messages, einoOpts...)
	latency := time.Since(start)
	if err != nil {
		p.logUsage(modelName, latency, nil, err)
		return "", err
	}

	p.logUsage(modelName, latency, resp, nil)
	return resp.Content, nil
}

func (p *Provider) logUsage(modelName string, latency time.Duration, resp *schema.Message, callErr error) {
	if p.usageLog == nil {
		return
	}
	details := map[string]interface{}{
		"model":      modelName,
		"latency_ms": latency.Milliseconds(),
	}
	if callErr != nil {
		details["error"] = callErr.Error()
		p.usageLog.Warn("LLM", "Model call failed", details)
		return
	}
	if resp != nil && resp.ResponseMeta != nil && resp.ResponseMeta.Usage != nil {
		details["input_tokens"] = resp.ResponseMeta.Usage.PromptTokens
		details["output_tokens"] = resp.ResponseMeta.Usage.CompletionTokens
		details["total_tokens"] = resp.ResponseMeta.Usage.TotalTokens
	}
	p.usageLog.Info("LLM", "Model call finished", details)
}

func toSchemaMessage(m llm.Message) *schema.Message {
	switch m.Role {
	case "system":
		return schema.SystemMessage(m.Content)
	case "assistant":
		return &schema.Message{Role: schema.Assistant, Content: m.Content}
	default:
		return schema.UserMessage(m.Content)
	}
}
