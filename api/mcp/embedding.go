package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/quarrylabs/strata/pkg/index"
	"github.com/quarrylabs/strata/pkg/knowledge"
)

var (
	generateEmbeddingToolName    = "generate_embedding"
	generateEmbeddingDescription = "Generate a vector embedding for the provided text using the configured embedding service."

	knnSearchToolName    = "knn_search"
	knnSearchDescription = "Perform a k-nearest-neighbor search using a query vector. Returns simplified results without raw vectors."

	textSimilaritySearchToolName    = "text_similarity_search"
	textSimilaritySearchDescription = "Search the knowledge base for similar documents by converting text to an embedding and performing a kNN search."

	indexTextToolName    = "index_text_with_embedding"
	indexTextDescription = "Ingest a document into the knowledge base by converting text to an embedding and writing text and embedding to the index."

	bulkIndexEmbeddingsToolName    = "bulk_index_with_embeddings"
	bulkIndexEmbeddingsDescription = "Generate embeddings for multiple documents and index them in a single bulk operation. Documents that cannot be embedded are skipped, not fatal."
)

// GenerateEmbeddingInput represents the input arguments for the generate_embedding tool.
type GenerateEmbeddingInput struct {
	Text  string `json:"text" jsonschema:"the text to convert to a vector embedding"`
	Model string `json:"model,omitempty" jsonschema:"the model to use for embedding (defaults to the configured model)"`
}

// GenerateEmbeddingOutput represents the output of the generate_embedding tool.
type GenerateEmbeddingOutput struct {
	Status    string    `json:"status"`
	Message   string    `json:"message,omitempty"`
	Embedding []float32 `json:"embedding,omitempty"`
	Model     string    `json:"model,omitempty"`
}

// handleGenerateEmbedding converts text into a vector embedding.
func (s *Server) handleGenerateEmbedding(ctx context.Context, _ *mcp.CallToolRequest, input GenerateEmbeddingInput) (*mcp.CallToolResult, GenerateEmbeddingOutput, error) {
	vec, model, err := s.config.Service.EmbedText(ctx, input.Text, input.Model)
	if err != nil {
		s.config.Logger.Error("generate_embedding failed", zap.Error(err))
		out := GenerateEmbeddingOutput{Status: StatusError, Message: err.Error()}
		return result(out, true), out, nil
	}

	out := GenerateEmbeddingOutput{
		Status:    StatusSuccess,
		Embedding: vec,
		Model:     model,
	}
	return result(out, false), out, nil
}

// KNNSearchInput represents the input arguments for the knn_search tool.
type KNNSearchInput struct {
	Vector []float32 `json:"vector" jsonschema:"the query vector to search with; must match the configured dimension"`
	K      int       `json:"k,omitempty" jsonschema:"number of nearest neighbors to return (default: 10)"`
}

// KNNSearchOutput represents the output of the knn_search tool.
type KNNSearchOutput struct {
	Status  string                       `json:"status"`
	Message string                       `json:"message,omitempty"`
	Results []knowledge.SearchResultItem `json:"results,omitempty"`
	Total   int                          `json:"total"`
}

// handleKNNSearch performs a k-nearest-neighbor search with a raw vector.
func (s *Server) handleKNNSearch(ctx context.Context, _ *mcp.CallToolRequest, input KNNSearchInput) (*mcp.CallToolResult, KNNSearchOutput, error) {
	knn, err := s.config.Service.KNNSearch(ctx, input.Vector, input.K)
	if err != nil {
		out := KNNSearchOutput{Status: StatusError, Message: err.Error()}
		return result(out, true), out, nil
	}

	out := KNNSearchOutput{
		Status:  StatusSuccess,
		Results: knn.Results,
		Total:   knn.Total,
	}
	return result(out, false), out, nil
}

// TextSimilaritySearchInput represents the input arguments for the text_similarity_search tool.
type TextSimilaritySearchInput struct {
	Text string `json:"text" jsonschema:"the text to search for similar documents"`
	K    int    `json:"k,omitempty" jsonschema:"number of similar documents to return (default: 10)"`
}

// TextSimilaritySearchOutput represents the output of the text_similarity_search tool.
type TextSimilaritySearchOutput struct {
	Status    string                       `json:"status"`
	Message   string                       `json:"message,omitempty"`
	QueryText string                       `json:"query_text,omitempty"`
	Results   []knowledge.SearchResultItem `json:"results,omitempty"`
	Total     int                          `json:"total"`
}

// handleTextSimilaritySearch embeds the query text and searches for similar documents.
func (s *Server) handleTextSimilaritySearch(ctx context.Context, _ *mcp.CallToolRequest, input TextSimilaritySearchInput) (*mcp.CallToolResult, TextSimilaritySearchOutput, error) {
	s.config.Logger.Debug("MCP similarity search request",
		zap.String("text", input.Text),
		zap.Int("k", input.K),
	)

	similarity, err := s.config.Service.TextSimilaritySearch(ctx, input.Text, input.K)
	if err != nil {
		s.config.Logger.Error("text_similarity_search failed", zap.Error(err))
		out := TextSimilaritySearchOutput{Status: StatusError, Message: err.Error()}
		return result(out, true), out, nil
	}

	out := TextSimilaritySearchOutput{
		Status:    StatusSuccess,
		QueryText: similarity.QueryText,
		Results:   similarity.Results,
		Total:     similarity.Total,
	}
	return result(out, false), out, nil
}

// IndexTextInput represents the input arguments for the index_text_with_embedding tool.
type IndexTextInput struct {
	Text       string         `json:"text" jsonschema:"the text to convert and index"`
	DocumentID string         `json:"document_id,omitempty" jsonschema:"optional ID for the document (auto-generated if not provided)"`
	Metadata   map[string]any `json:"metadata,omitempty" jsonschema:"optional metadata to store with the document"`
}

// IndexTextOutput represents the output of the index_text_with_embedding tool.
type IndexTextOutput struct {
	Status   string          `json:"status"`
	Message  string          `json:"message,omitempty"`
	Response *index.WriteAck `json:"response,omitempty"`
}

// handleIndexTextWithEmbedding embeds text and writes it with its vector.
func (s *Server) handleIndexTextWithEmbedding(ctx context.Context, _ *mcp.CallToolRequest, input IndexTextInput) (*mcp.CallToolResult, IndexTextOutput, error) {
	ack, err := s.config.Service.IndexText(ctx, input.Text, input.DocumentID, input.Metadata)
	if err != nil {
		s.config.Logger.Error("index_text_with_embedding failed", zap.Error(err))
		out := IndexTextOutput{Status: StatusError, Message: err.Error()}
		return result(out, true), out, nil
	}

	out := IndexTextOutput{Status: StatusSuccess, Response: ack}
	return result(out, false), out, nil
}

// BulkIndexEmbeddingsInput represents the input arguments for the bulk_index_with_embeddings tool.
type BulkIndexEmbeddingsInput struct {
	Documents []map[string]any `json:"documents" jsonschema:"list of documents to process and index"`
	TextField string           `json:"text_field,omitempty" jsonschema:"the field name containing text to embed (default: text)"`
}

// BulkIndexEmbeddingsOutput represents the output of the bulk_index_with_embeddings tool.
type BulkIndexEmbeddingsOutput struct {
	Status         string              `json:"status"`
	Message        string              `json:"message,omitempty"`
	Response       *index.BulkResponse `json:"response,omitempty"`
	ProcessedCount int                 `json:"processed_count"`
	FailedCount    int                 `json:"failed_count"`
	FailedDocs     []knowledge.Failure `json:"failed_docs,omitempty"`
}

// handleBulkIndexWithEmbeddings embeds and indexes a batch of documents.
// Per-document failures are reported in the output, never as a batch fault;
// only an all-documents-failed batch surfaces as an error.
func (s *Server) handleBulkIndexWithEmbeddings(ctx context.Context, _ *mcp.CallToolRequest, input BulkIndexEmbeddingsInput) (*mcp.CallToolResult, BulkIndexEmbeddingsOutput, error) {
	outcome, err := s.config.Service.BulkIndexWithEmbeddings(ctx, input.Documents, input.TextField)
	if err != nil {
		s.config.Logger.Error("bulk_index_with_embeddings failed",
			zap.Int("failed", outcome.FailedCount),
			zap.Error(err),
		)
		out := BulkIndexEmbeddingsOutput{
			Status:         StatusError,
			Message:        err.Error(),
			ProcessedCount: outcome.ProcessedCount,
			FailedCount:    outcome.FailedCount,
			FailedDocs:     outcome.Failures,
		}
		return result(out, true), out, nil
	}

	out := BulkIndexEmbeddingsOutput{
		Status:         StatusSuccess,
		Response:       outcome.Response,
		ProcessedCount: outcome.ProcessedCount,
		FailedCount:    outcome.FailedCount,
		FailedDocs:     outcome.Failures,
	}
	return result(out, false), out, nil
}
