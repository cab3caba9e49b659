package eino

import (
	"context"
	"errors"
	"testing"

	"safebites-be/internal/pkg/logger"
	"safebites-be/pkg/llm"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingModel struct {
	input []*schema.Message
	opts  *model.Options
	reply *schema.Message
	err   error
}

func (m *recordingModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	m.input = input
	m.opts = model.GetCommonOptions(nil, opts...)
	return m.reply, m.err
}

func (m *recordingModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("not supported")
}

func TestProvider_GeneratePassesOptions(t *testing.T) {
	fake := &recordingModel{reply: &schema.Message{
		Role:    schema.Assistant,
		Content: `{"menu_search":["pizza"]}`,
		ResponseMeta: &schema.ResponseMeta{
			Usage: &schema.TokenUsage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
		},
	}}
	p := NewProvider(fake, "gpt-4o-mini", logger.NewNopLogger())

	out, err := p.Generate(context.Background(), "classify this", llm.WithTemperature(0), llm.WithMaxTokens(256))
	require.NoError(t, err)
	assert.Equal(t, `{"menu_search":["pizza"]}`, out)

	require.Len(t, fake.input, 1)
	assert.Equal(t, schema.User, fake.input[0].Role)
	assert.Equal(t, "classify this", fake.input[0].Content)

	require.NotNil(t, fake.opts.Temperature)
	assert.Equal(t, float32(0), *fake.opts.Temperature)
	require.NotNil(t, fake.opts.MaxTokens)
	assert.Equal(t, 256, *fake.opts.MaxTokens)
}

func TestProvider_ChatMapsRoles(t *testing.T) {
	fake := &recordingModel{reply: &schema.Message{Role: schema.Assistant, Content: "ok"}}
	p := NewProvider(fake, "llama3", nil)

	_, err := p.Chat(context.Background(), []llm.Message{
		{Role: "system", Content: "be brief"},
		{Role: "user", Content: "hi"},
		{Role: "assistant", Content: "hello"},
	})
	require.NoError(t, err)
	require.Len(t, fake.input, 3)
	assert.Equal(t, schema.System, fake.input[0].Role)
	assert.Equal(t, schema.User, fake.input[1].Role)
	assert.Equal(t, schema.Assistant, fake.input[2].Role)
}

func TestProvider_PropagatesErrors(t *testing.T) {
	p := NewProvider(&recordingModel{err: errors.New("rate limited")}, "gpt-4o-mini", logger.NewNopLogger())

	_, err := p.Generate(context.Background(), "x")
	assert.EqualError(t, err, "rate limited")

	_, err = p.Chat(context.Background(), nil)
	assert.Error(t, err)
}
