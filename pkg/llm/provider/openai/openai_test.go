package openai_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/smartread/pkg/llm"
	"github.com/papercomputeco/smartread/pkg/llm/provider/openai"
)

var _ = Describe("OpenAI Generator", func() {
	var (
		server  *httptest.Server
		reply   string
		status  int
		gotBody map[string]any
	)

	BeforeEach(func() {
		status = http.StatusOK
		reply = `{"id":"c1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"[\"Go\"]"},"finish_reason":"stop"}]}`
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer GinkgoRecover()
			Expect(r.URL.Path).To(Equal("/v1/chat/completions"))
			Expect(json.NewDecoder(r.Body).Decode(&gotBody)).To(Succeed())
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			_, _ = w.Write([]byte(reply))
		}))
	})

	AfterEach(func() {
		server.Close()
	})

	It("requires an API key", func() {
		_, err := openai.New(openai.Config{})
		Expect(err).To(HaveOccurred())
	})

	It("sends the prompt as a single user message", func() {
		g, err := openai.New(openai.Config{APIKey: "sk", BaseURL: server.URL + "/v1", Model: "gpt-test"})
		Expect(err).NotTo(HaveOccurred())

		out, err := g.Generate(context.Background(), "list topics")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal(`["Go"]`))

		Expect(gotBody).To(HaveKeyWithValue("model", "gpt-test"))
		msgs := gotBody["messages"].([]any)
		Expect(msgs).To(HaveLen(1))
		Expect(msgs[0]).To(HaveKeyWithValue("role", "user"))
		Expect(msgs[0]).To(HaveKeyWithValue("content", "list topics"))
	})

	It("reports empty choices", func() {
		reply = `{"id":"c1","object":"chat.completion","choices":[]}`
		g, _ := openai.New(openai.Config{APIKey: "sk", BaseURL: server.URL + "/v1"})
		_, err := g.Generate(context.Background(), "x")
		Expect(err).To(MatchError(llm.ErrEmptyResponse))
	})

	It("wraps API errors", func() {
		status = http.StatusTooManyRequests
		reply = `{"error":{"message":"slow down","type":"rate_limit"}}`
		g, _ := openai.New(openai.Config{APIKey: "sk", BaseURL: server.URL + "/v1"})
		_, err := g.Generate(context.Background(), "x")
		Expect(err).To(MatchError(ContainSubstring("openai completion failed")))
	})
})
