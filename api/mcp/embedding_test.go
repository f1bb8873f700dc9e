package mcp

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/quarrylabs/strata/pkg/index"
	"github.com/quarrylabs/strata/pkg/knowledge"
	stratalogger "github.com/quarrylabs/strata/pkg/logger"
	testutils "github.com/quarrylabs/strata/pkg/utils/test"
)

// newTestServer wires a Server around the given mocks.
func newTestServer(embedder *testutils.MockEmbedder, client *testutils.MockIndexClient, dims int) *Server {
	service, err := knowledge.NewService(embedder, client, knowledge.Params{
		Dimensions: dims,
	}, stratalogger.Nop())
	Expect(err).NotTo(HaveOccurred())

	server, err := NewServer(Config{
		Service: service,
		Logger:  stratalogger.Nop(),
	})
	Expect(err).NotTo(HaveOccurred())

	return server
}

func testVector(dims int) []float32 {
	vec := make([]float32, dims)
	for i := range vec {
		vec[i] = 0.1
	}
	return vec
}

var _ = Describe("Embedding tools", func() {
	var (
		ctx      context.Context
		embedder *testutils.MockEmbedder
		client   *testutils.MockIndexClient
		server   *Server
	)

	BeforeEach(func() {
		ctx = context.Background()
		embedder = testutils.NewMockEmbedder()
		embedder.Dimensions = 4
		client = testutils.NewMockIndexClient()
		server = newTestServer(embedder, client, 4)
	})

	Describe("generate_embedding", func() {
		It("returns the vector and the model used", func() {
			embedder.Embeddings["hello"] = []float32{1, 2, 3, 4}

			res, out, err := server.handleGenerateEmbedding(ctx, nil, GenerateEmbeddingInput{Text: "hello"})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.IsError).To(BeFalse())

			Expect(out.Status).To(Equal(StatusSuccess))
			Expect(out.Embedding).To(Equal([]float32{1, 2, 3, 4}))
			Expect(out.Model).To(Equal("test-model"))
		})

		It("returns an error output when embedding fails", func() {
			embedder.FailOn = "hello"

			res, out, err := server.handleGenerateEmbedding(ctx, nil, GenerateEmbeddingInput{Text: "hello"})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.IsError).To(BeTrue())

			Expect(out.Status).To(Equal(StatusError))
			Expect(out.Message).To(ContainSubstring("mock embedding failure"))
			Expect(out.Embedding).To(BeEmpty())
		})
	})

	Describe("knn_search", func() {
		It("rejects dimension mismatches without calling the index", func() {
			res, out, err := server.handleKNNSearch(ctx, nil, KNNSearchInput{
				Vector: []float32{0.1},
				K:      3,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.IsError).To(BeTrue())

			Expect(out.Status).To(Equal(StatusError))
			Expect(out.Message).To(ContainSubstring("expected 4, got 1"))
			Expect(client.SearchBodies).To(BeEmpty())
		})

		It("returns at most k simplified items", func() {
			hits := make([]index.Hit, 3)
			for i := range hits {
				hits[i] = index.Hit{
					ID:     "doc",
					Score:  0.5,
					Source: map[string]any{"text": "t", "tag": "x"},
				}
			}
			client.SearchResponse = &index.SearchResponse{Hits: index.Hits{Hits: hits}}

			res, out, err := server.handleKNNSearch(ctx, nil, KNNSearchInput{
				Vector: testVector(4),
				K:      3,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.IsError).To(BeFalse())

			Expect(out.Status).To(Equal(StatusSuccess))
			Expect(out.Total).To(Equal(3))
			for _, item := range out.Results {
				Expect(item.Metadata).NotTo(HaveKey(knowledge.DefaultVectorField))
				Expect(item.Metadata).NotTo(HaveKey("text"))
			}
		})
	})

	Describe("text_similarity_search", func() {
		It("wraps the query text and results", func() {
			embedder.Embeddings["find"] = testVector(4)
			client.SearchResponse = &index.SearchResponse{Hits: index.Hits{Hits: []index.Hit{
				{ID: "doc-1", Score: 0.9, Source: map[string]any{"text": "found"}},
			}}}

			res, out, err := server.handleTextSimilaritySearch(ctx, nil, TextSimilaritySearchInput{
				Text: "find",
				K:    5,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.IsError).To(BeFalse())

			Expect(out.Status).To(Equal(StatusSuccess))
			Expect(out.QueryText).To(Equal("find"))
			Expect(out.Total).To(Equal(1))
			Expect(out.Results[0].Text).To(Equal("found"))
		})

		It("surfaces embedding failures as error outputs", func() {
			embedder.FailOn = "broken"

			res, out, err := server.handleTextSimilaritySearch(ctx, nil, TextSimilaritySearchInput{
				Text: "broken",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.IsError).To(BeTrue())
			Expect(out.Status).To(Equal(StatusError))
		})
	})

	Describe("index_text_with_embedding", func() {
		It("indexes the text with its vector and metadata", func() {
			res, out, err := server.handleIndexTextWithEmbedding(ctx, nil, IndexTextInput{
				Text:       "hello world",
				DocumentID: "doc-1",
				Metadata:   map[string]any{"source": "test"},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.IsError).To(BeFalse())

			Expect(out.Status).To(Equal(StatusSuccess))
			Expect(out.Response.ID).To(Equal("doc-1"))

			doc := client.Docs["doc-1"]
			Expect(doc).To(HaveKeyWithValue("text", "hello world"))
			Expect(doc).To(HaveKeyWithValue("source", "test"))
			Expect(doc).To(HaveKey(knowledge.DefaultVectorField))
		})
	})

	Describe("bulk_index_with_embeddings", func() {
		It("reports per-document failures alongside the processed count", func() {
			res, out, err := server.handleBulkIndexWithEmbeddings(ctx, nil, BulkIndexEmbeddingsInput{
				Documents: []map[string]any{
					{"text": "a"},
					{"foo": "b"},
				},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.IsError).To(BeFalse())

			Expect(out.Status).To(Equal(StatusSuccess))
			Expect(out.ProcessedCount).To(Equal(1))
			Expect(out.FailedCount).To(Equal(1))
			Expect(out.FailedDocs[0].Reason).To(ContainSubstring("Missing text field 'text'"))
		})

		It("returns an error output when every document fails", func() {
			res, out, err := server.handleBulkIndexWithEmbeddings(ctx, nil, BulkIndexEmbeddingsInput{
				Documents: []map[string]any{
					{"foo": "a"},
				},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.IsError).To(BeTrue())

			Expect(out.Status).To(Equal(StatusError))
			Expect(out.FailedCount).To(Equal(1))
			Expect(out.FailedDocs).To(HaveLen(1))
			Expect(client.BulkActions).To(BeEmpty())
		})
	})
})
