// Package knowledge provides the document indexing and retrieval workflows
// shared by the REST API endpoints and the MCP server tools. Each operation
// composes the embedding client and the index client into a single
// request/response call; no state is held between calls.
package knowledge

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/quarrylabs/strata/pkg/embeddings"
	"github.com/quarrylabs/strata/pkg/index"
)

const (
	// DefaultVectorField is the reserved document field holding the
	// embedding vector.
	DefaultVectorField = "dense_vector"

	// DefaultDimensions is the expected embedding vector length.
	DefaultDimensions = 1024

	// TextField is the reserved document field holding the embedded text.
	TextField = "text"
)

// Params holds the immutable vector settings for a Service.
type Params struct {
	// VectorField is the document field the embedding vector is stored
	// under. Defaults to DefaultVectorField if empty.
	VectorField string

	// Dimensions is the required vector length. Defaults to
	// DefaultDimensions if zero.
	Dimensions int
}

// Service runs the embedding-augmented indexing and retrieval workflows.
type Service struct {
	embedder embeddings.Embedder
	client   index.Client
	params   Params
	logger   *zap.Logger
}

// NewService creates a new knowledge service.
func NewService(embedder embeddings.Embedder, client index.Client, params Params, logger *zap.Logger) (*Service, error) {
	if embedder == nil {
		return nil, errors.New("embedder is required")
	}
	if client == nil {
		return nil, errors.New("index client is required")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}

	if params.VectorField == "" {
		params.VectorField = DefaultVectorField
	}
	if params.Dimensions <= 0 {
		params.Dimensions = DefaultDimensions
	}

	return &Service{
		embedder: embedder,
		client:   client,
		params:   params,
		logger:   logger,
	}, nil
}

// Params returns the vector settings the service was built with.
func (s *Service) Params() Params {
	return s.params
}

// EmbedText generates an embedding for the given text, falling back to the
// default model when model is empty. It returns the vector and the model
// that produced it.
func (s *Service) EmbedText(ctx context.Context, text, model string) ([]float32, string, error) {
	if model == "" {
		model = s.embedder.Model()
	}

	vec, err := s.embedder.EmbedWithModel(ctx, text, model)
	if err != nil {
		return nil, "", err
	}

	return vec, model, nil
}

// validateDimensions rejects vectors whose length does not match the
// configured dimension before any remote call is made.
func (s *Service) validateDimensions(vec []float32) error {
	if len(vec) != s.params.Dimensions {
		return fmt.Errorf("%w: vector dimension mismatch: expected %d, got %d",
			index.ErrValidation, s.params.Dimensions, len(vec))
	}
	return nil
}

// cloneDoc shallow-copies a document so workflows never mutate caller input.
func cloneDoc(doc map[string]any) map[string]any {
	out := make(map[string]any, len(doc)+2)
	for k, v := range doc {
		out[k] = v
	}
	return out
}
