package testutils

import (
	"context"
	"fmt"
	"strconv"

	"github.com/quarrylabs/strata/pkg/index"
)

// MockIndexClient is a test index client backed by an in-memory document map.
type MockIndexClient struct {
	// Docs maps document id to its stored body.
	Docs map[string]map[string]any

	// SearchResponse, when set, is returned verbatim by Search.
	SearchResponse *index.SearchResponse

	// SearchErr, WriteErr, and BulkErr force the corresponding calls
	// to fail.
	SearchErr error
	WriteErr  error
	BulkErr   error

	// SearchBodies records every query body passed to Search.
	SearchBodies []map[string]any

	// BulkActions records every bulk action list passed to Bulk.
	BulkActions [][]index.BulkAction

	nextID int
}

func NewMockIndexClient() *MockIndexClient {
	return &MockIndexClient{
		Docs: make(map[string]map[string]any),
	}
}

func (m *MockIndexClient) Search(_ context.Context, body map[string]any, _ int) (*index.SearchResponse, error) {
	m.SearchBodies = append(m.SearchBodies, body)

	if m.SearchErr != nil {
		return nil, m.SearchErr
	}
	if m.SearchResponse != nil {
		return m.SearchResponse, nil
	}

	// Serve term queries on _id from the stored documents so get-by-id
	// round-trips work without canned responses.
	if id, ok := termID(body); ok {
		if doc, found := m.Docs[id]; found {
			return &index.SearchResponse{Hits: index.Hits{Hits: []index.Hit{
				{ID: id, Score: 1.0, Source: doc},
			}}}, nil
		}
		return &index.SearchResponse{}, nil
	}

	return &index.SearchResponse{}, nil
}

func (m *MockIndexClient) Write(_ context.Context, id string, doc map[string]any) (*index.WriteAck, error) {
	if m.WriteErr != nil {
		return nil, m.WriteErr
	}

	result := "created"
	if _, exists := m.Docs[id]; exists {
		result = "updated"
	}
	m.Docs[id] = doc

	return &index.WriteAck{ID: id, Result: result}, nil
}

func (m *MockIndexClient) Index(_ context.Context, doc map[string]any) (*index.WriteAck, error) {
	if m.WriteErr != nil {
		return nil, m.WriteErr
	}

	m.nextID++
	id := "generated-" + strconv.Itoa(m.nextID)
	m.Docs[id] = doc

	return &index.WriteAck{ID: id, Result: "created"}, nil
}

func (m *MockIndexClient) Delete(_ context.Context, id string) (*index.WriteAck, error) {
	if _, exists := m.Docs[id]; !exists {
		return nil, fmt.Errorf("%w: document with ID %s not found", index.ErrNotFound, id)
	}
	delete(m.Docs, id)

	return &index.WriteAck{ID: id, Result: "deleted"}, nil
}

func (m *MockIndexClient) Bulk(_ context.Context, actions []index.BulkAction) (*index.BulkResponse, error) {
	m.BulkActions = append(m.BulkActions, actions)

	if m.BulkErr != nil {
		return nil, m.BulkErr
	}

	for _, action := range actions {
		id := action.ID
		if id == "" {
			m.nextID++
			id = "generated-" + strconv.Itoa(m.nextID)
		}
		m.Docs[id] = action.Doc
	}

	return &index.BulkResponse{Took: 1, Items: make([]map[string]any, len(actions))}, nil
}

func (m *MockIndexClient) Health(_ context.Context) (map[string]any, error) {
	return map[string]any{"status": "green"}, nil
}

func (m *MockIndexClient) Stats(_ context.Context) (map[string]any, error) {
	return map[string]any{"indices": map[string]any{"count": float64(len(m.Docs))}}, nil
}

func (m *MockIndexClient) Close() error {
	return nil
}

// termID extracts the id of a {"query":{"term":{"_id": ...}}} body.
func termID(body map[string]any) (string, bool) {
	query, ok := body["query"].(map[string]any)
	if !ok {
		return "", false
	}
	term, ok := query["term"].(map[string]any)
	if !ok {
		return "", false
	}
	id, ok := term["_id"].(string)
	return id, ok
}

// Ensure MockIndexClient implements index.Client
var _ index.Client = (*MockIndexClient)(nil)
