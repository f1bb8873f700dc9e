package knowledge

import (
	"context"

	"go.uber.org/zap"

	"github.com/quarrylabs/strata/pkg/utils"
)

// SearchResultItem is the simplified view of a single search hit. Metadata
// carries every stored field except the text and the vector field; raw
// vectors are never returned to the caller.
type SearchResultItem struct {
	ID       string         `json:"id"`
	Score    float64        `json:"score"`
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata"`
}

// KNNOutput is the result of a k-nearest-neighbor search.
type KNNOutput struct {
	Results []SearchResultItem `json:"results"`
	Total   int                `json:"total"`
}

// SimilarityOutput is the result of a text similarity search.
type SimilarityOutput struct {
	QueryText string             `json:"query_text"`
	Results   []SearchResultItem `json:"results"`
	Total     int                `json:"total"`
}

// KNNSearch finds the k stored documents whose vectors are nearest to the
// given vector. The vector must match the configured dimension; mismatches
// fail before any remote call. The vector field is excluded from returned
// source data.
func (s *Service) KNNSearch(ctx context.Context, vector []float32, k int) (*KNNOutput, error) {
	if k <= 0 {
		k = 10
	}

	if err := s.validateDimensions(vector); err != nil {
		return nil, err
	}

	query := map[string]any{
		"size": k,
		"query": map[string]any{
			"knn": map[string]any{
				s.params.VectorField: map[string]any{
					"vector": vector,
					"k":      k,
				},
			},
		},
		"_source": map[string]any{
			"excludes": []string{s.params.VectorField},
		},
	}

	resp, err := s.client.Search(ctx, query, k)
	if err != nil {
		return nil, err
	}

	results := make([]SearchResultItem, 0, len(resp.Hits.Hits))
	for _, hit := range resp.Hits.Hits {
		item := SearchResultItem{
			ID:       hit.ID,
			Score:    hit.Score,
			Metadata: make(map[string]any, len(hit.Source)),
		}

		for field, value := range hit.Source {
			switch field {
			case TextField:
				item.Text, _ = value.(string)
			case s.params.VectorField:
				// Excluded in the query; dropped again here in case
				// the store echoes it anyway.
			default:
				item.Metadata[field] = value
			}
		}

		results = append(results, item)
	}

	s.logger.Debug("knn search",
		zap.Int("k", k),
		zap.Int("results", len(results)),
	)

	return &KNNOutput{Results: results, Total: len(results)}, nil
}

// TextSimilaritySearch embeds the query text and runs a kNN search with the
// resulting vector. Both the embedding and the search failure propagate
// unchanged.
func (s *Service) TextSimilaritySearch(ctx context.Context, text string, k int) (*SimilarityOutput, error) {
	s.logger.Debug("text similarity search",
		zap.String("text", utils.Truncate(text, 80)),
		zap.Int("k", k),
	)

	vec, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	knn, err := s.KNNSearch(ctx, vec, k)
	if err != nil {
		return nil, err
	}

	return &SimilarityOutput{
		QueryText: text,
		Results:   knn.Results,
		Total:     knn.Total,
	}, nil
}
