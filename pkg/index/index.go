// Package index provides interfaces and types for talking to an
// OpenSearch-compatible document index service.
package index

import "context"

// Hit is a single search hit as returned by the index service.
type Hit struct {
	// ID is the document identifier assigned by the index.
	ID string `json:"_id"`

	// Score is the relevance score for this hit.
	Score float64 `json:"_score"`

	// Source is the stored document body.
	Source map[string]any `json:"_source"`
}

// Hits is the hit envelope of a search response.
type Hits struct {
	Hits []Hit `json:"hits"`
}

// SearchResponse is the raw response of a search call.
type SearchResponse struct {
	Hits Hits `json:"hits"`
}

// WriteAck acknowledges a single-document write or delete.
type WriteAck struct {
	// ID is the identifier of the affected document.
	ID string `json:"_id"`

	// Result is the index service's result verb ("created", "updated", "deleted").
	Result string `json:"result"`
}

// BulkAction is one action of a bulk request. A non-empty ID upserts the
// document under that id; an empty ID lets the index assign one.
type BulkAction struct {
	ID  string
	Doc map[string]any
}

// BulkResponse is the raw response of a bulk call.
type BulkResponse struct {
	Took   int              `json:"took"`
	Errors bool             `json:"errors"`
	Items  []map[string]any `json:"items"`
}

// Client handles document storage and retrieval against a single configured
// index. Every operation is request/response and stateless between calls.
type Client interface {
	// Search executes a raw query body against the index, returning at
	// most size hits.
	Search(ctx context.Context, body map[string]any, size int) (*SearchResponse, error)

	// Write stores a document under the given id, replacing any existing one.
	Write(ctx context.Context, id string, doc map[string]any) (*WriteAck, error)

	// Index stores a document and lets the index service assign its id.
	Index(ctx context.Context, doc map[string]any) (*WriteAck, error)

	// Delete removes the document with the given id.
	Delete(ctx context.Context, id string) (*WriteAck, error)

	// Bulk executes several write actions in one request. Writes are
	// visible to immediately subsequent reads.
	Bulk(ctx context.Context, actions []BulkAction) (*BulkResponse, error)

	// Health returns the cluster health document.
	Health(ctx context.Context) (map[string]any, error)

	// Stats returns the cluster statistics document.
	Stats(ctx context.Context) (map[string]any, error)

	// Close releases any resources held by the client.
	Close() error
}
