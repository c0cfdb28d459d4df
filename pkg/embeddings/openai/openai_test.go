package openai_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/smartread/pkg/embeddings"
	"github.com/papercomputeco/smartread/pkg/embeddings/openai"
)

var _ = Describe("Embedder", func() {
	var (
		server  *httptest.Server
		gotBody map[string]any
		status  int
	)

	BeforeEach(func() {
		status = http.StatusOK
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer GinkgoRecover()
			Expect(r.URL.Path).To(Equal("/v1/embeddings"))
			Expect(r.Header.Get("Authorization")).To(Equal("Bearer sk-test"))
			Expect(json.NewDecoder(r.Body).Decode(&gotBody)).To(Succeed())

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			if status != http.StatusOK {
				_, _ = w.Write([]byte(`{"error":{"message":"bad key","type":"invalid_request_error"}}`))
				return
			}
			_, _ = w.Write([]byte(`{"object":"list","model":"text-embedding-3-small","data":[{"object":"embedding","index":0,"embedding":[0.1,0.2]}]}`))
		}))
	})

	AfterEach(func() {
		server.Close()
	})

	It("requires an API key", func() {
		_, err := openai.NewEmbedder(openai.EmbedderConfig{})
		Expect(err).To(HaveOccurred())
	})

	It("embeds through an OpenAI-compatible endpoint", func() {
		e, err := openai.NewEmbedder(openai.EmbedderConfig{APIKey: "sk-test", BaseURL: server.URL + "/v1"})
		Expect(err).NotTo(HaveOccurred())

		vec, err := e.Embed(context.Background(), "hello")
		Expect(err).NotTo(HaveOccurred())
		Expect(vec).To(Equal([]float32{0.1, 0.2}))
		Expect(gotBody).To(HaveKeyWithValue("model", openai.DefaultEmbeddingModel))
	})

	It("wraps API errors", func() {
		status = http.StatusUnauthorized
		e, _ := openai.NewEmbedder(openai.EmbedderConfig{APIKey: "sk-test", BaseURL: server.URL + "/v1"})
		_, err := e.Embed(context.Background(), "hello")
		Expect(errors.Is(err, embeddings.ErrEmbedding)).To(BeTrue())
	})
})
