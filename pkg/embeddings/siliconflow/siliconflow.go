// Package siliconflow implements pkg/embeddings' Embedder client for the
// SiliconFlow embedding API.
package siliconflow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/quarrylabs/strata/pkg/embeddings"
	"github.com/quarrylabs/strata/pkg/index"
)

const (
	// DefaultEmbeddingModel is the default model used for embeddings.
	DefaultEmbeddingModel = "Pro/BAAI/bge-m3"

	// DefaultEndpoint is the default SiliconFlow embeddings endpoint.
	DefaultEndpoint = "https://api.siliconflow.cn/v1/embeddings"
)

// Embedder wraps SiliconFlow's embedding API.
type Embedder struct {
	endpoint   string
	token      string
	model      string
	httpClient *http.Client
}

// EmbedderConfig holds configuration for the SiliconFlow embedder.
type EmbedderConfig struct {
	// Endpoint is the embeddings API URL. Defaults to DefaultEndpoint
	// if empty.
	Endpoint string

	// Token is the bearer token for the API. Requests fail with a
	// configuration error before any network call when unset.
	Token string

	// Model is the embedding model to use (e.g. "Pro/BAAI/bge-m3").
	// Defaults to DefaultEmbeddingModel if empty.
	Model string
}

// embedRequest is the request body for the embeddings API.
type embedRequest struct {
	Model          string `json:"model"`
	Input          string `json:"input"`
	EncodingFormat string `json:"encoding_format"`
}

// embedResponse is the response from the embeddings API.
type embedResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// NewEmbedder creates a new embedder using the SiliconFlow embedding API.
// A missing token is not an error here; it surfaces on the first Embed call
// so the server can start without embedding credentials.
func NewEmbedder(cfg EmbedderConfig) (*Embedder, error) {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	model := cfg.Model
	if model == "" {
		model = DefaultEmbeddingModel
	}

	return &Embedder{
		endpoint:   endpoint,
		token:      cfg.Token,
		model:      model,
		httpClient: &http.Client{},
	}, nil
}

// Embed converts text into a vector embedding using the default model.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return e.EmbedWithModel(ctx, text, "")
}

// EmbedWithModel converts text into a vector embedding using the given model.
func (e *Embedder) EmbedWithModel(ctx context.Context, text, model string) ([]float32, error) {
	if e.token == "" {
		return nil, fmt.Errorf("%w: API token not configured for embedding service", index.ErrConfiguration)
	}
	if text == "" {
		return nil, fmt.Errorf("%w: text must not be empty", index.ErrValidation)
	}

	if model == "" {
		model = e.model
	}

	reqBody := embedRequest{
		Model:          model,
		Input:          text,
		EncodingFormat: "float",
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("%w: marshaling request: %v", index.ErrUnexpected, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("%w: creating request: %v", index.ErrTransport, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.token)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: API request failed: %v", index.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: embedding API returned status %d: %s", index.ErrTransport, resp.StatusCode, string(body))
	}

	var embedResp embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&embedResp); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", index.ErrUnexpected, err)
	}

	if len(embedResp.Data) == 0 || len(embedResp.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("%w: no embeddings returned", index.ErrUnexpected)
	}

	return embedResp.Data[0].Embedding, nil
}

// Model returns the default model identifier.
func (e *Embedder) Model() string {
	return e.model
}

// Close releases resources held by the embedder.
func (e *Embedder) Close() error {
	// HTTP client doesn't require explicit cleanup
	return nil
}

// Ensure Embedder implements embeddings.Embedder
var _ embeddings.Embedder = (*Embedder)(nil)
