package siliconflow_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/quarrylabs/strata/pkg/index"
	"github.com/quarrylabs/strata/pkg/embeddings/siliconflow"
)

var _ = Describe("Embedder", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	Describe("EmbedWithModel", func() {
		It("sends the expected wire format with bearer auth", func() {
			var gotAuth string
			var gotBody map[string]any

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotAuth = r.Header.Get("Authorization")
				Expect(json.NewDecoder(r.Body).Decode(&gotBody)).To(Succeed())

				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"data":[{"embedding":[0.1,0.2,0.3]}]}`))
			}))
			defer server.Close()

			embedder, err := siliconflow.NewEmbedder(siliconflow.EmbedderConfig{
				Endpoint: server.URL,
				Token:    "test-token",
			})
			Expect(err).NotTo(HaveOccurred())

			vec, err := embedder.Embed(ctx, "hello world")
			Expect(err).NotTo(HaveOccurred())
			Expect(vec).To(Equal([]float32{0.1, 0.2, 0.3}))

			Expect(gotAuth).To(Equal("Bearer test-token"))
			Expect(gotBody).To(HaveKeyWithValue("model", siliconflow.DefaultEmbeddingModel))
			Expect(gotBody).To(HaveKeyWithValue("input", "hello world"))
			Expect(gotBody).To(HaveKeyWithValue("encoding_format", "float"))
		})

		It("uses an explicit model over the default", func() {
			var gotModel string

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				var body map[string]any
				Expect(json.NewDecoder(r.Body).Decode(&body)).To(Succeed())
				gotModel, _ = body["model"].(string)
				_, _ = w.Write([]byte(`{"data":[{"embedding":[1]}]}`))
			}))
			defer server.Close()

			embedder, err := siliconflow.NewEmbedder(siliconflow.EmbedderConfig{
				Endpoint: server.URL,
				Token:    "test-token",
				Model:    "BAAI/bge-large-zh-v1.5",
			})
			Expect(err).NotTo(HaveOccurred())

			_, err = embedder.EmbedWithModel(ctx, "hello", "Pro/BAAI/bge-m3")
			Expect(err).NotTo(HaveOccurred())
			Expect(gotModel).To(Equal("Pro/BAAI/bge-m3"))
		})

		It("fails without a token before making any network call", func() {
			var calls atomic.Int32

			server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
				calls.Add(1)
			}))
			defer server.Close()

			embedder, err := siliconflow.NewEmbedder(siliconflow.EmbedderConfig{
				Endpoint: server.URL,
			})
			Expect(err).NotTo(HaveOccurred())

			_, err = embedder.Embed(ctx, "hello")
			Expect(err).To(HaveOccurred())
			Expect(errors.Is(err, index.ErrConfiguration)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("API token not configured"))
			Expect(calls.Load()).To(BeZero())
		})

		It("rejects empty text locally", func() {
			embedder, err := siliconflow.NewEmbedder(siliconflow.EmbedderConfig{
				Token: "test-token",
			})
			Expect(err).NotTo(HaveOccurred())

			_, err = embedder.Embed(ctx, "")
			Expect(err).To(HaveOccurred())
			Expect(errors.Is(err, index.ErrValidation)).To(BeTrue())
		})

		It("maps HTTP failures to transport errors", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "rate limited", http.StatusTooManyRequests)
			}))
			defer server.Close()

			embedder, err := siliconflow.NewEmbedder(siliconflow.EmbedderConfig{
				Endpoint: server.URL,
				Token:    "test-token",
			})
			Expect(err).NotTo(HaveOccurred())

			_, err = embedder.Embed(ctx, "hello")
			Expect(err).To(HaveOccurred())
			Expect(errors.Is(err, index.ErrTransport)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("429"))
		})

		It("maps an empty data payload to an unexpected error", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"data":[]}`))
			}))
			defer server.Close()

			embedder, err := siliconflow.NewEmbedder(siliconflow.EmbedderConfig{
				Endpoint: server.URL,
				Token:    "test-token",
			})
			Expect(err).NotTo(HaveOccurred())

			_, err = embedder.Embed(ctx, "hello")
			Expect(err).To(HaveOccurred())
			Expect(errors.Is(err, index.ErrUnexpected)).To(BeTrue())
		})

		It("maps malformed JSON to an unexpected error", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte("not json"))
			}))
			defer server.Close()

			embedder, err := siliconflow.NewEmbedder(siliconflow.EmbedderConfig{
				Endpoint: server.URL,
				Token:    "test-token",
			})
			Expect(err).NotTo(HaveOccurred())

			_, err = embedder.Embed(ctx, "hello")
			Expect(err).To(HaveOccurred())
			Expect(errors.Is(err, index.ErrUnexpected)).To(BeTrue())
		})
	})

	Describe("Model", func() {
		It("returns the configured default model", func() {
			embedder, err := siliconflow.NewEmbedder(siliconflow.EmbedderConfig{Token: "t"})
			Expect(err).NotTo(HaveOccurred())
			Expect(embedder.Model()).To(Equal(siliconflow.DefaultEmbeddingModel))
		})
	})
})
