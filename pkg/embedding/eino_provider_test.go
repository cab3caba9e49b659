package embedding

import (
	"context"
	"errors"
	"math"
	"testing"

	einoembedding "github.com/cloudwego/eino/components/embedding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticEmbedder struct {
	vectors [][]float64
	err     error
}

func (e *staticEmbedder) EmbedStrings(ctx context.Context, texts []string, opts ...einoembedding.Option) ([][]float64, error) {
	return e.vectors, e.err
}

func TestEinoProvider_NormalizesOutput(t *testing.T) {
	p := NewEinoProvider(&staticEmbedder{vectors: [][]float64{{3, 4}}})

	resp, err := p.Generate(context.Background(), "margherita", TaskRetrievalQuery)
	require.NoError(t, err)

	values := resp.Embedding.Values
	require.Len(t, values, 2)
	assert.InDelta(t, 0.6, values[0], 1e-6)
	assert.InDelta(t, 0.8, values[1], 1e-6)

	var norm float64
	for _, v := range values {
		norm += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-6)
}

func TestEinoProvider_Errors(t *testing.T) {
	_, err := NewEinoProvider(&staticEmbedder{err: errors.New("quota")}).Generate(context.Background(), "x", "")
	assert.EqualError(t, err, "quota")

	_, err = NewEinoProvider(&staticEmbedder{}).Generate(context.Background(), "x", "")
	assert.Error(t, err)
}

func TestNormalizeVector_ZeroVector(t *testing.T) {
	assert.Equal(t, []float32{0, 0}, normalizeVector([]float32{0, 0}))
}

func TestNewEmbeddingProvider_UnknownProvider(t *testing.T) {
	_, err := NewEmbeddingProvider(context.Background(), Config{Provider: "gemini"})
	assert.Error(t, err)
}
