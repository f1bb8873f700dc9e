package knowledge

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/quarrylabs/strata/pkg/index"
)

// SearchDocuments executes a raw query (index service DSL, JSON-encoded)
// against the index and returns the unmodified response.
func (s *Service) SearchDocuments(ctx context.Context, query string, size int) (*index.SearchResponse, error) {
	if size <= 0 {
		size = 10
	}

	var body map[string]any
	if err := json.Unmarshal([]byte(query), &body); err != nil {
		return nil, fmt.Errorf("%w: query is not valid JSON: %v", index.ErrValidation, err)
	}

	return s.client.Search(ctx, body, size)
}

// GetDocument retrieves a single document by id, implemented as a term
// query on the identifier field.
func (s *Service) GetDocument(ctx context.Context, id string) (*index.Hit, error) {
	query := map[string]any{
		"query": map[string]any{
			"term": map[string]any{
				"_id": id,
			},
		},
	}

	resp, err := s.client.Search(ctx, query, 1)
	if err != nil {
		return nil, err
	}

	if len(resp.Hits.Hits) == 0 {
		return nil, fmt.Errorf("%w: document with ID %s not found", index.ErrNotFound, id)
	}

	hit := resp.Hits.Hits[0]
	return &hit, nil
}

// Put writes or updates a document under the given id.
func (s *Service) Put(ctx context.Context, id string, doc map[string]any) (*index.WriteAck, error) {
	return s.client.Write(ctx, id, doc)
}

// DeleteDocument removes the document with the given id.
func (s *Service) DeleteDocument(ctx context.Context, id string) (*index.WriteAck, error) {
	return s.client.Delete(ctx, id)
}

// BulkIndexDocuments indexes multiple documents in a single bulk call.
// Unless generateIDs is set, a document's "_id" field is popped from the
// body and promoted into the bulk action header so the document upserts
// under that id.
func (s *Service) BulkIndexDocuments(ctx context.Context, docs []map[string]any, generateIDs bool) (*index.BulkResponse, error) {
	actions := make([]index.BulkAction, 0, len(docs))

	for _, doc := range docs {
		body := cloneDoc(doc)
		action := index.BulkAction{Doc: body}

		if id, ok := body["_id"].(string); ok && !generateIDs {
			delete(body, "_id")
			action.ID = id
		}

		actions = append(actions, action)
	}

	resp, err := s.client.Bulk(ctx, actions)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("bulk indexed documents",
		zap.Int("count", len(actions)),
		zap.Bool("errors", resp.Errors),
	)

	return resp, nil
}
