// Package embeddings
package embeddings

import "context"

// Embedder provides text embedding capabilities.
type Embedder interface {
	// Embed converts text into a vector embedding using the default model.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedWithModel converts text into a vector embedding using the given
	// model. An empty model falls back to the configured default.
	EmbedWithModel(ctx context.Context, text, model string) ([]float32, error)

	// Model returns the default model identifier.
	Model() string

	// Close releases any resources held by the embedder.
	Close() error
}
