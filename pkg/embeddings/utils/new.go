// Package embeddingutils is the embeddings utility package
package embeddingutils

import (
	"fmt"

	"github.com/quarrylabs/strata/pkg/embeddings"
	"github.com/quarrylabs/strata/pkg/embeddings/ollama"
	"github.com/quarrylabs/strata/pkg/embeddings/siliconflow"
)

type NewEmbedderOpts struct {
	ProviderType string
	TargetURL    string
	Token        string
	Model        string
}

func NewEmbedder(o *NewEmbedderOpts) (embeddings.Embedder, error) {
	switch o.ProviderType {
	case "siliconflow":
		return siliconflow.NewEmbedder(siliconflow.EmbedderConfig{
			Endpoint: o.TargetURL,
			Token:    o.Token,
			Model:    o.Model,
		})
	case "ollama":
		return ollama.NewEmbedder(ollama.EmbedderConfig{
			BaseURL: o.TargetURL,
			Model:   o.Model,
		})
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", o.ProviderType)
	}
}
