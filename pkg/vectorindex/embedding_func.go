package vectorindex

import (
	"context"

	"safebites-be/pkg/embedding"

	"github.com/philippgille/chromem-go"
)

// EmbeddingFunc exposes an EmbeddingProvider to chromem for documents added without a vector.
func EmbeddingFunc(provider embedding.EmbeddingProvider) chromem.EmbeddingFunc {
	return func(ctx context.Context, text string) ([]float32, error) {
		resp, err := provider.Generate(ctx, text, embedding.TaskRetrievalDocument)
		if err != nil {
			return nil, err
		}
		return resp.Embedding.Values, nil
	}
}
