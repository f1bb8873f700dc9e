package mcp

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	testutils "github.com/quarrylabs/strata/pkg/utils/test"
)

var _ = Describe("Document tools", func() {
	var (
		ctx      context.Context
		embedder *testutils.MockEmbedder
		client   *testutils.MockIndexClient
		server   *Server
	)

	BeforeEach(func() {
		ctx = context.Background()
		embedder = testutils.NewMockEmbedder()
		client = testutils.NewMockIndexClient()
		server = newTestServer(embedder, client, 3)
	})

	Describe("search_documents", func() {
		It("passes the parsed query through and returns the raw response", func() {
			res, out, err := server.handleSearchDocuments(ctx, nil, SearchDocumentsInput{
				Query: `{"query":{"match_all":{}}}`,
				Size:  5,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.IsError).To(BeFalse())

			Expect(out.Status).To(Equal(StatusSuccess))
			Expect(out.Results).NotTo(BeNil())
			Expect(client.SearchBodies).To(HaveLen(1))
			Expect(client.SearchBodies[0]).To(HaveKey("query"))
		})

		It("rejects malformed query JSON without calling the index", func() {
			res, out, err := server.handleSearchDocuments(ctx, nil, SearchDocumentsInput{
				Query: `{"query":`,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.IsError).To(BeTrue())

			Expect(out.Status).To(Equal(StatusError))
			Expect(out.Message).To(ContainSubstring("invalid query JSON"))
			Expect(client.SearchBodies).To(BeEmpty())
		})
	})

	Describe("get_document", func() {
		It("returns the stored document", func() {
			client.Docs["doc-1"] = map[string]any{"title": "hello"}

			res, out, err := server.handleGetDocument(ctx, nil, GetDocumentInput{DocumentID: "doc-1"})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.IsError).To(BeFalse())

			Expect(out.Status).To(Equal(StatusSuccess))
			Expect(out.Document.ID).To(Equal("doc-1"))
			Expect(out.Document.Source).To(HaveKeyWithValue("title", "hello"))
		})

		It("reports a missing document as an error output", func() {
			res, out, err := server.handleGetDocument(ctx, nil, GetDocumentInput{DocumentID: "missing"})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.IsError).To(BeTrue())

			Expect(out.Status).To(Equal(StatusError))
			Expect(out.Message).To(ContainSubstring("document with ID missing not found"))
		})
	})

	Describe("put", func() {
		It("writes the document under the given id", func() {
			res, out, err := server.handlePut(ctx, nil, PutInput{
				DocumentID: "doc-1",
				Document:   map[string]any{"title": "hello"},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.IsError).To(BeFalse())

			Expect(out.Status).To(Equal(StatusSuccess))
			Expect(out.Response.ID).To(Equal("doc-1"))
			Expect(out.Response.Result).To(Equal("created"))
			Expect(client.Docs).To(HaveKey("doc-1"))
		})

		It("reports an update on an existing id", func() {
			client.Docs["doc-1"] = map[string]any{"title": "old"}

			_, out, err := server.handlePut(ctx, nil, PutInput{
				DocumentID: "doc-1",
				Document:   map[string]any{"title": "new"},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(out.Response.Result).To(Equal("updated"))
		})
	})

	Describe("delete_document", func() {
		It("removes the document", func() {
			client.Docs["doc-1"] = map[string]any{"title": "hello"}

			res, out, err := server.handleDeleteDocument(ctx, nil, DeleteDocumentInput{DocumentID: "doc-1"})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.IsError).To(BeFalse())

			Expect(out.Status).To(Equal(StatusSuccess))
			Expect(out.Response.Result).To(Equal("deleted"))
			Expect(client.Docs).NotTo(HaveKey("doc-1"))
		})

		It("reports a missing document as an error output", func() {
			res, out, err := server.handleDeleteDocument(ctx, nil, DeleteDocumentInput{DocumentID: "missing"})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.IsError).To(BeTrue())
			Expect(out.Status).To(Equal(StatusError))
		})
	})

	Describe("bulk_index_documents", func() {
		It("writes documents under their _id fields", func() {
			res, out, err := server.handleBulkIndexDocuments(ctx, nil, BulkIndexDocumentsInput{
				Documents: []map[string]any{
					{"_id": "doc-1", "title": "a"},
					{"title": "b"},
				},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.IsError).To(BeFalse())

			Expect(out.Status).To(Equal(StatusSuccess))
			Expect(client.BulkActions).To(HaveLen(1))
			Expect(client.BulkActions[0][0].ID).To(Equal("doc-1"))
			Expect(client.BulkActions[0][0].Doc).NotTo(HaveKey("_id"))
			Expect(client.BulkActions[0][1].ID).To(BeEmpty())
		})

		It("ignores _id fields when generate_ids is set", func() {
			_, _, err := server.handleBulkIndexDocuments(ctx, nil, BulkIndexDocumentsInput{
				Documents: []map[string]any{
					{"_id": "doc-1", "title": "a"},
				},
				GenerateIDs: true,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(client.BulkActions[0][0].ID).To(BeEmpty())
		})
	})

	Describe("cluster tools", func() {
		It("returns the cluster health document", func() {
			res, out, err := server.handleClusterHealth(ctx, nil, ClusterHealthInput{})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.IsError).To(BeFalse())

			Expect(out.Status).To(Equal(StatusSuccess))
			Expect(out.Health).To(HaveKeyWithValue("status", "green"))
		})

		It("returns the cluster stats document", func() {
			res, out, err := server.handleClusterStats(ctx, nil, ClusterStatsInput{})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.IsError).To(BeFalse())

			Expect(out.Status).To(Equal(StatusSuccess))
			Expect(out.Stats).To(HaveKey("indices"))
		})
	})
})
