// Package mcp provides an MCP (Model Context Protocol) server exposing the
// strata document and embedding tools.
package mcp

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/quarrylabs/strata/pkg/knowledge"
	"github.com/quarrylabs/strata/pkg/utils"
)

const (
	// StatusSuccess and StatusError discriminate every tool result.
	StatusSuccess = "success"
	StatusError   = "error"
)

type Config struct {
	// Service runs the indexing and retrieval workflows behind the tools.
	Service *knowledge.Service

	// Noop for empty MCP server
	Noop bool

	// Logger is the configured zap logger
	Logger *zap.Logger
}

type Server struct {
	config    Config
	mcpServer *mcp.Server
	handler   *mcp.StreamableHTTPHandler
}

// NewServer creates a new MCP server with the document and embedding tools.
func NewServer(c Config) (*Server, error) {
	s := &Server{
		config: c,
	}

	// Create the MCP server
	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "strata",
			Version: utils.Version,
		},
		&mcp.ServerOptions{},
	)

	if c.Noop {
		// return the empty MCP server with no tools configured
		// if the noop flag is set (i.e., MCP capabilities are disabled)
		s.mcpServer = mcpServer
		return s, nil
	}

	if c.Service == nil {
		return nil, errors.New("knowledge service is required")
	}
	if c.Logger == nil {
		return nil, errors.New("logger is required")
	}

	// Document tools
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        searchDocumentsToolName,
		Description: searchDocumentsDescription,
	}, s.handleSearchDocuments)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        getDocumentToolName,
		Description: getDocumentDescription,
	}, s.handleGetDocument)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        putToolName,
		Description: putDescription,
	}, s.handlePut)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        deleteDocumentToolName,
		Description: deleteDocumentDescription,
	}, s.handleDeleteDocument)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        bulkIndexToolName,
		Description: bulkIndexDescription,
	}, s.handleBulkIndexDocuments)

	// Embedding tools
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        generateEmbeddingToolName,
		Description: generateEmbeddingDescription,
	}, s.handleGenerateEmbedding)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        knnSearchToolName,
		Description: knnSearchDescription,
	}, s.handleKNNSearch)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        textSimilaritySearchToolName,
		Description: textSimilaritySearchDescription,
	}, s.handleTextSimilaritySearch)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        indexTextToolName,
		Description: indexTextDescription,
	}, s.handleIndexTextWithEmbedding)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        bulkIndexEmbeddingsToolName,
		Description: bulkIndexEmbeddingsDescription,
	}, s.handleBulkIndexWithEmbeddings)

	// Cluster tools
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        clusterHealthToolName,
		Description: clusterHealthDescription,
	}, s.handleClusterHealth)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        clusterStatsToolName,
		Description: clusterStatsDescription,
	}, s.handleClusterStats)

	s.mcpServer = mcpServer

	// Create a streamable HTTP net/http handler for stateless operations
	s.handler = mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server {
			return mcpServer
		},
		&mcp.StreamableHTTPOptions{
			Stateless: true,
		},
	)

	return s, nil
}

// Handler returns the HTTP handler for the MCP server.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// result serializes the structured output as JSON for the text field.
// Per MCP spec: tools returning structured content should also return
// serialized JSON in a TextContent block for backwards compatibility.
// isError marks expected failures without surfacing a protocol fault.
func result(out any, isError bool) *mcp.CallToolResult {
	jsonBytes, err := json.Marshal(out)
	if err != nil {
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("Failed to serialize results: %v", err)},
			},
		}
	}

	return &mcp.CallToolResult{
		IsError: isError,
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(jsonBytes)},
		},
	}
}
