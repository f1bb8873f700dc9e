package testutils

import (
	"context"
	"fmt"
)

// MockEmbedder is a test embedder that returns predictable embeddings
type MockEmbedder struct {
	Embeddings map[string][]float32

	// Dimensions is the length of the default vector returned for
	// unknown text.
	Dimensions int

	// FailOn causes Embed to return an error when the input text matches
	FailOn string

	// Calls records every embedded text in order.
	Calls []string
}

func NewMockEmbedder() *MockEmbedder {
	return &MockEmbedder{
		Embeddings: make(map[string][]float32),
		Dimensions: 3,
	}
}

func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return m.EmbedWithModel(ctx, text, "")
}

func (m *MockEmbedder) EmbedWithModel(_ context.Context, text, _ string) ([]float32, error) {
	m.Calls = append(m.Calls, text)

	if m.FailOn != "" && text == m.FailOn {
		return nil, fmt.Errorf("mock embedding failure for: %s", text)
	}

	if emb, ok := m.Embeddings[text]; ok {
		return emb, nil
	}

	// Return a default embedding for any text
	emb := make([]float32, m.Dimensions)
	for i := range emb {
		emb[i] = 0.1
	}
	return emb, nil
}

func (m *MockEmbedder) Model() string {
	return "test-model"
}

func (m *MockEmbedder) Close() error {
	return nil
}
