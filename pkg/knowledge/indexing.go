package knowledge

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/quarrylabs/strata/pkg/index"
	"github.com/quarrylabs/strata/pkg/utils"
)

// Failure records one document that could not be embedded or was missing
// its text field during a bulk indexing run.
type Failure struct {
	// Doc is the original input document.
	Doc map[string]any `json:"doc"`

	// Reason describes why the document was skipped.
	Reason string `json:"reason"`
}

// BulkOutcome aggregates the result of a bulk embedding-and-index run.
// ProcessedCount plus FailedCount always equals the input document count.
type BulkOutcome struct {
	ProcessedCount int `json:"processed_count"`
	FailedCount    int `json:"failed_count"`

	// Failures lists the skipped documents with their reasons. Empty
	// when every document was processed.
	Failures []Failure `json:"failed_docs,omitempty"`

	// Response is the raw bulk response from the index service. Nil when
	// no write was performed.
	Response *index.BulkResponse `json:"response,omitempty"`
}

// IndexText embeds the given text and writes a document carrying the text,
// the vector, and any caller metadata. A non-empty documentID upserts under
// that id; otherwise the index service assigns one. Embedding failures
// short-circuit and propagate unchanged.
func (s *Service) IndexText(ctx context.Context, text, documentID string, metadata map[string]any) (*index.WriteAck, error) {
	vec, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	doc := cloneDoc(metadata)
	doc[TextField] = text
	doc[s.params.VectorField] = vec

	s.logger.Debug("indexing text with embedding",
		zap.String("text", utils.Truncate(text, 80)),
		zap.String("document_id", documentID),
		zap.Int("dimensions", len(vec)),
	)

	if documentID != "" {
		return s.client.Write(ctx, documentID, doc)
	}
	return s.client.Index(ctx, doc)
}

// BulkIndexWithEmbeddings embeds the textField content of every input
// document and indexes the successfully embedded ones in a single bulk
// call. A failing document never aborts the batch; it is recorded in the
// outcome and skipped. When no document survives, an error is returned
// alongside the outcome and no write is performed. Documents carrying an
// "_id" field upsert under that id, the rest get index-assigned ids.
func (s *Service) BulkIndexWithEmbeddings(ctx context.Context, docs []map[string]any, textField string) (*BulkOutcome, error) {
	if textField == "" {
		textField = TextField
	}

	outcome := &BulkOutcome{}
	actions := make([]index.BulkAction, 0, len(docs))

	for _, doc := range docs {
		text, ok := doc[textField].(string)
		if !ok {
			outcome.Failures = append(outcome.Failures, Failure{
				Doc:    doc,
				Reason: fmt.Sprintf("Missing text field '%s'", textField),
			})
			continue
		}

		vec, err := s.embedder.Embed(ctx, text)
		if err != nil {
			outcome.Failures = append(outcome.Failures, Failure{
				Doc:    doc,
				Reason: err.Error(),
			})
			continue
		}

		body := cloneDoc(doc)
		body[s.params.VectorField] = vec

		action := index.BulkAction{Doc: body}
		if id, ok := body["_id"].(string); ok {
			delete(body, "_id")
			action.ID = id
		}

		actions = append(actions, action)
	}

	outcome.ProcessedCount = len(actions)
	outcome.FailedCount = len(outcome.Failures)

	if len(actions) == 0 {
		return outcome, fmt.Errorf("%w: no documents were processed successfully", index.ErrValidation)
	}

	resp, err := s.client.Bulk(ctx, actions)
	if err != nil {
		return outcome, err
	}
	outcome.Response = resp

	s.logger.Debug("bulk indexed documents with embeddings",
		zap.Int("processed", outcome.ProcessedCount),
		zap.Int("failed", outcome.FailedCount),
	)

	return outcome, nil
}
