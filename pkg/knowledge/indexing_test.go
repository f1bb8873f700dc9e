package knowledge_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/quarrylabs/strata/pkg/index"
	"github.com/quarrylabs/strata/pkg/knowledge"
	testutils "github.com/quarrylabs/strata/pkg/utils/test"
)

var _ = Describe("Indexing workflows", func() {
	var (
		ctx      context.Context
		embedder *testutils.MockEmbedder
		client   *testutils.MockIndexClient
		service  *knowledge.Service
	)

	BeforeEach(func() {
		ctx = context.Background()
		embedder = testutils.NewMockEmbedder()
		embedder.Dimensions = 4
		client = testutils.NewMockIndexClient()
		service = newService(embedder, client, 4)
	})

	Describe("IndexText", func() {
		It("writes text, vector, and metadata under the given id", func() {
			ack, err := service.IndexText(ctx, "hello world", "doc-1", map[string]any{
				"category": "greeting",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(ack.ID).To(Equal("doc-1"))

			doc := client.Docs["doc-1"]
			Expect(doc).To(HaveKeyWithValue("text", "hello world"))
			Expect(doc).To(HaveKeyWithValue("category", "greeting"))

			vec, ok := doc[knowledge.DefaultVectorField].([]float32)
			Expect(ok).To(BeTrue())
			Expect(vec).To(HaveLen(4))
		})

		It("round-trips through GetDocument", func() {
			_, err := service.IndexText(ctx, "round trip", "doc-rt", nil)
			Expect(err).NotTo(HaveOccurred())

			hit, err := service.GetDocument(ctx, "doc-rt")
			Expect(err).NotTo(HaveOccurred())
			Expect(hit.Source).To(HaveKeyWithValue("text", "round trip"))
		})

		It("lets the index assign an id when none is given", func() {
			ack, err := service.IndexText(ctx, "hello", "", nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(ack.ID).To(HavePrefix("generated-"))
		})

		It("does not mutate the caller's metadata", func() {
			metadata := map[string]any{"category": "notes"}

			_, err := service.IndexText(ctx, "hello", "doc-1", metadata)
			Expect(err).NotTo(HaveOccurred())
			Expect(metadata).To(HaveLen(1))
		})

		It("short-circuits when embedding fails", func() {
			embedder.FailOn = "cannot embed"

			_, err := service.IndexText(ctx, "cannot embed", "doc-1", nil)
			Expect(err).To(HaveOccurred())
			Expect(client.Docs).To(BeEmpty())
		})
	})

	Describe("BulkIndexWithEmbeddings", func() {
		It("processes every document with the text field", func() {
			outcome, err := service.BulkIndexWithEmbeddings(ctx, []map[string]any{
				{"text": "first"},
				{"text": "second"},
			}, "text")
			Expect(err).NotTo(HaveOccurred())

			Expect(outcome.ProcessedCount).To(Equal(2))
			Expect(outcome.FailedCount).To(Equal(0))
			Expect(outcome.Failures).To(BeEmpty())
			Expect(outcome.Response).NotTo(BeNil())
			Expect(client.BulkActions).To(HaveLen(1))
		})

		It("isolates per-document failures without aborting the batch", func() {
			outcome, err := service.BulkIndexWithEmbeddings(ctx, []map[string]any{
				{"text": "a"},
				{"foo": "b"},
			}, "text")
			Expect(err).NotTo(HaveOccurred())

			Expect(outcome.ProcessedCount).To(Equal(1))
			Expect(outcome.FailedCount).To(Equal(1))
			Expect(outcome.ProcessedCount + outcome.FailedCount).To(Equal(2))
			Expect(outcome.Failures).To(HaveLen(1))
			Expect(outcome.Failures[0].Reason).To(Equal("Missing text field 'text'"))
			Expect(outcome.Failures[0].Doc).To(HaveKeyWithValue("foo", "b"))
		})

		It("records embedding failures as per-document reasons", func() {
			embedder.FailOn = "poison"

			outcome, err := service.BulkIndexWithEmbeddings(ctx, []map[string]any{
				{"text": "fine"},
				{"text": "poison"},
			}, "text")
			Expect(err).NotTo(HaveOccurred())

			Expect(outcome.ProcessedCount).To(Equal(1))
			Expect(outcome.FailedCount).To(Equal(1))
			Expect(outcome.Failures[0].Reason).To(ContainSubstring("mock embedding failure"))
		})

		It("returns an error and performs no write when nothing survives", func() {
			outcome, err := service.BulkIndexWithEmbeddings(ctx, []map[string]any{
				{"foo": "a"},
				{"bar": "b"},
			}, "text")

			Expect(err).To(HaveOccurred())
			Expect(errors.Is(err, index.ErrValidation)).To(BeTrue())
			Expect(outcome.ProcessedCount).To(Equal(0))
			Expect(outcome.FailedCount).To(Equal(2))
			Expect(client.BulkActions).To(BeEmpty())
		})

		It("promotes a document's _id into the bulk action header", func() {
			_, err := service.BulkIndexWithEmbeddings(ctx, []map[string]any{
				{"_id": "keep-me", "text": "pinned"},
				{"text": "floating"},
			}, "text")
			Expect(err).NotTo(HaveOccurred())

			actions := client.BulkActions[0]
			Expect(actions[0].ID).To(Equal("keep-me"))
			Expect(actions[0].Doc).NotTo(HaveKey("_id"))
			Expect(actions[1].ID).To(BeEmpty())
		})

		It("attaches the vector under the reserved field", func() {
			_, err := service.BulkIndexWithEmbeddings(ctx, []map[string]any{
				{"text": "a"},
			}, "")
			Expect(err).NotTo(HaveOccurred())

			doc := client.BulkActions[0][0].Doc
			vec, ok := doc[knowledge.DefaultVectorField].([]float32)
			Expect(ok).To(BeTrue())
			Expect(vec).To(HaveLen(4))
		})

		It("defaults the text field name to text", func() {
			outcome, err := service.BulkIndexWithEmbeddings(ctx, []map[string]any{
				{"text": "a"},
				{"body": "b"},
			}, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(outcome.Failures[0].Reason).To(Equal("Missing text field 'text'"))
		})

		It("propagates bulk write failures", func() {
			client.BulkErr = errors.New("bulk rejected")

			_, err := service.BulkIndexWithEmbeddings(ctx, []map[string]any{
				{"text": "a"},
			}, "text")
			Expect(err).To(MatchError(client.BulkErr))
		})
	})
})
