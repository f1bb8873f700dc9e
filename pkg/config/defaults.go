package config

import (
	"github.com/quarrylabs/strata/pkg/embeddings/siliconflow"
	"github.com/quarrylabs/strata/pkg/knowledge"
)

const (
	defaultIndexHost = "localhost"
	defaultIndexPort = 9200
	defaultIndexName = "knowledge"

	defaultEmbeddingProvider = "siliconflow"

	defaultMCPListen = ":8080"
	defaultAPIListen = ":8081"

	defaultClientAPITarget = "http://localhost:8081"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Index: IndexConfig{
			Host: defaultIndexHost,
			Port: defaultIndexPort,
			Name: defaultIndexName,
		},
		Embedding: EmbeddingConfig{
			Provider:    defaultEmbeddingProvider,
			Endpoint:    siliconflow.DefaultEndpoint,
			Model:       siliconflow.DefaultEmbeddingModel,
			Dimensions:  knowledge.DefaultDimensions,
			VectorField: knowledge.DefaultVectorField,
		},
		MCP: MCPConfig{
			Listen: defaultMCPListen,
		},
		API: APIConfig{
			Listen: defaultAPIListen,
		},
		Client: ClientConfig{
			APITarget: defaultClientAPITarget,
		},
	}
}
