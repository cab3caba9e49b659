package integration

import (
	"context"
	"math"
	"os"
	"testing"
	"time"

	"safebites-be/pkg/embedding"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runs against a local Ollama, e.g. OLLAMA_EMBED_MODEL=nomic-embed-text.
func TestOllamaEmbeddings(t *testing.T) {
	model := os.Getenv("OLLAMA_EMBED_MODEL")
	if model == "" {
		t.Skip("Skipping integration test: OLLAMA_EMBED_MODEL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	provider, err := embedding.NewEmbeddingProvider(ctx, embedding.Config{
		Provider: "ollama",
		Model:    model,
		BaseURL:  os.Getenv("OLLAMA_BASE_URL"),
	})
	require.NoError(t, err)

	pizza, err := provider.Generate(ctx, "margherita pizza with basil", embedding.TaskRetrievalDocument)
	require.NoError(t, err)
	query, err := provider.Generate(ctx, "something with tomato and cheese", embedding.TaskRetrievalQuery)
	require.NoError(t, err)
	dessert, err := provider.Generate(ctx, "chocolate lava cake", embedding.TaskRetrievalDocument)
	require.NoError(t, err)

	assert.InDelta(t, 1.0, norm(pizza.Embedding.Values), 1e-3)
	assert.Greater(t, dot(query.Embedding.Values, pizza.Embedding.Values), dot(query.Embedding.Values, dessert.Embedding.Values))
}

func dot(a, b []float32) float64 {
	var s float64
	for i := range a {
		s += float64(a[i]) * float64(b[i])
	}
	return s
}

func norm(v []float32) float64 {
	return math.Sqrt(dot(v, v))
}
