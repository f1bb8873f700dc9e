package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/quarrylabs/strata/pkg/index"
)

var (
	searchDocumentsToolName    = "search_documents"
	searchDocumentsDescription = "Search for documents in the index using a raw query in the index service's DSL format. Returns the unmodified search response."

	getDocumentToolName    = "get_document"
	getDocumentDescription = "Retrieve a specific document by its ID."

	putToolName    = "put"
	putDescription = "Write or update a document in the index under the given ID."

	deleteDocumentToolName    = "delete_document"
	deleteDocumentDescription = "Delete a document from the index by its ID."

	bulkIndexToolName    = "bulk_index_documents"
	bulkIndexDescription = "Index multiple documents in a single bulk operation. Documents carrying an _id field are written under that id unless generate_ids is set."
)

// SearchDocumentsInput represents the input arguments for the search_documents tool.
type SearchDocumentsInput struct {
	Query string `json:"query" jsonschema:"the search query in the index service's DSL format, JSON-encoded"`
	Size  int    `json:"size,omitempty" jsonschema:"maximum number of results to return (default: 10)"`
}

// SearchDocumentsOutput represents the output of the search_documents tool.
type SearchDocumentsOutput struct {
	Status  string                `json:"status"`
	Message string                `json:"message,omitempty"`
	Results *index.SearchResponse `json:"results,omitempty"`
}

// handleSearchDocuments processes a raw document search request.
func (s *Server) handleSearchDocuments(ctx context.Context, _ *mcp.CallToolRequest, input SearchDocumentsInput) (*mcp.CallToolResult, SearchDocumentsOutput, error) {
	size := input.Size
	if size <= 0 {
		size = 10
	}

	resp, err := s.config.Service.SearchDocuments(ctx, input.Query, size)
	if err != nil {
		s.config.Logger.Error("search_documents failed", zap.Error(err))
		out := SearchDocumentsOutput{Status: StatusError, Message: err.Error()}
		return result(out, true), out, nil
	}

	out := SearchDocumentsOutput{Status: StatusSuccess, Results: resp}
	return result(out, false), out, nil
}

// GetDocumentInput represents the input arguments for the get_document tool.
type GetDocumentInput struct {
	DocumentID string `json:"document_id" jsonschema:"the ID of the document to retrieve"`
}

// GetDocumentOutput represents the output of the get_document tool.
type GetDocumentOutput struct {
	Status   string     `json:"status"`
	Message  string     `json:"message,omitempty"`
	Document *index.Hit `json:"document,omitempty"`
}

// handleGetDocument retrieves a single document by id.
func (s *Server) handleGetDocument(ctx context.Context, _ *mcp.CallToolRequest, input GetDocumentInput) (*mcp.CallToolResult, GetDocumentOutput, error) {
	hit, err := s.config.Service.GetDocument(ctx, input.DocumentID)
	if err != nil {
		out := GetDocumentOutput{Status: StatusError, Message: err.Error()}
		return result(out, true), out, nil
	}

	out := GetDocumentOutput{Status: StatusSuccess, Document: hit}
	return result(out, false), out, nil
}

// PutInput represents the input arguments for the put tool.
type PutInput struct {
	DocumentID string         `json:"document_id" jsonschema:"the ID for the document"`
	Document   map[string]any `json:"document" jsonschema:"the document content to write"`
}

// PutOutput represents the output of the put tool.
type PutOutput struct {
	Status   string          `json:"status"`
	Message  string          `json:"message,omitempty"`
	Response *index.WriteAck `json:"response,omitempty"`
}

// handlePut writes or updates a document.
func (s *Server) handlePut(ctx context.Context, _ *mcp.CallToolRequest, input PutInput) (*mcp.CallToolResult, PutOutput, error) {
	ack, err := s.config.Service.Put(ctx, input.DocumentID, input.Document)
	if err != nil {
		s.config.Logger.Error("put failed", zap.Error(err))
		out := PutOutput{Status: StatusError, Message: err.Error()}
		return result(out, true), out, nil
	}

	out := PutOutput{Status: StatusSuccess, Response: ack}
	return result(out, false), out, nil
}

// DeleteDocumentInput represents the input arguments for the delete_document tool.
type DeleteDocumentInput struct {
	DocumentID string `json:"document_id" jsonschema:"the ID of the document to delete"`
}

// DeleteDocumentOutput represents the output of the delete_document tool.
type DeleteDocumentOutput struct {
	Status   string          `json:"status"`
	Message  string          `json:"message,omitempty"`
	Response *index.WriteAck `json:"response,omitempty"`
}

// handleDeleteDocument removes a document by id.
func (s *Server) handleDeleteDocument(ctx context.Context, _ *mcp.CallToolRequest, input DeleteDocumentInput) (*mcp.CallToolResult, DeleteDocumentOutput, error) {
	ack, err := s.config.Service.DeleteDocument(ctx, input.DocumentID)
	if err != nil {
		out := DeleteDocumentOutput{Status: StatusError, Message: err.Error()}
		return result(out, true), out, nil
	}

	out := DeleteDocumentOutput{Status: StatusSuccess, Response: ack}
	return result(out, false), out, nil
}

// BulkIndexDocumentsInput represents the input arguments for the bulk_index_documents tool.
type BulkIndexDocumentsInput struct {
	Documents   []map[string]any `json:"documents" jsonschema:"list of documents to index"`
	GenerateIDs bool             `json:"generate_ids,omitempty" jsonschema:"when true the index service generates IDs for all documents"`
}

// BulkIndexDocumentsOutput represents the output of the bulk_index_documents tool.
type BulkIndexDocumentsOutput struct {
	Status   string              `json:"status"`
	Message  string              `json:"message,omitempty"`
	Response *index.BulkResponse `json:"response,omitempty"`
}

// handleBulkIndexDocuments indexes multiple documents in one bulk call.
func (s *Server) handleBulkIndexDocuments(ctx context.Context, _ *mcp.CallToolRequest, input BulkIndexDocumentsInput) (*mcp.CallToolResult, BulkIndexDocumentsOutput, error) {
	resp, err := s.config.Service.BulkIndexDocuments(ctx, input.Documents, input.GenerateIDs)
	if err != nil {
		s.config.Logger.Error("bulk_index_documents failed", zap.Error(err))
		out := BulkIndexDocumentsOutput{Status: StatusError, Message: err.Error()}
		return result(out, true), out, nil
	}

	out := BulkIndexDocumentsOutput{Status: StatusSuccess, Response: resp}
	return result(out, false), out, nil
}
