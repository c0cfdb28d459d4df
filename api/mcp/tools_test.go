package mcp

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/smartread/pkg/dedup"
	"github.com/papercomputeco/smartread/pkg/ingest"
	"github.com/papercomputeco/smartread/pkg/kv/inmemory"
	"github.com/papercomputeco/smartread/pkg/logger"
	"github.com/papercomputeco/smartread/pkg/memory"
	"github.com/papercomputeco/smartread/pkg/rephrase"
	"github.com/papercomputeco/smartread/pkg/retrieval"
	"github.com/papercomputeco/smartread/pkg/topics"
	testutils "github.com/papercomputeco/smartread/pkg/utils/test"
)

func textOf(res *mcp.CallToolResult) string {
	Expect(res.Content).To(HaveLen(1))
	tc, ok := res.Content[0].(*mcp.TextContent)
	Expect(ok).To(BeTrue())
	return tc.Text
}

var _ = Describe("Tools", func() {
	var (
		ctx    context.Context
		gen    *testutils.MockGenerator
		mems   *testutils.MockMemoryStore
		server *Server
	)

	BeforeEach(func() {
		ctx = context.Background()
		gen = testutils.NewMockGenerator()
		gen.On("memory snippets", `["Snippet one.", "Snippet two."]`)
		gen.On("key topics", `["Focus"]`)
		gen.Default = "rewritten"
		mems = testutils.NewMockMemoryStore()

		var err error
		server, err = NewServer(Config{
			Ingester:  ingest.New(dedup.New(inmemory.NewStore()), gen, mems),
			Rephraser: rephrase.New(retrieval.New(topics.New(gen), mems), gen),
			Memories:  mems,
			UserID:    "alice",
			Logger:    logger.Nop(),
		})
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("memory_search", func() {
		It("returns scored memories with their source", func() {
			mems.Results["focus"] = []memory.Memory{
				{ID: "a", Text: "focus matters", Score: 0.7, Metadata: map[string]any{"source_url": "https://a.example"}},
			}

			res, out, err := server.handleMemorySearch(ctx, nil, MemorySearchInput{Query: "focus"})

			Expect(err).NotTo(HaveOccurred())
			Expect(res.IsError).To(BeFalse())
			Expect(out.Count).To(Equal(1))
			Expect(out.Memories[0].SourceURL).To(Equal("https://a.example"))
			Expect(textOf(res)).To(ContainSubstring(`"focus matters"`))
			Expect(mems.SearchUserIDs()).To(Equal([]string{"alice"}))
			Expect(mems.SearchLimits()).To(Equal([]int{defaultSearchLimit}))
		})

		It("requires a query", func() {
			res, _, err := server.handleMemorySearch(ctx, nil, MemorySearchInput{})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.IsError).To(BeTrue())
		})

		It("reports store failures as tool errors", func() {
			mems.FailQueries["focus"] = true
			res, _, err := server.handleMemorySearch(ctx, nil, MemorySearchInput{Query: "focus"})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.IsError).To(BeTrue())
			Expect(textOf(res)).To(ContainSubstring("Memory search failed"))
		})
	})

	Describe("page_add", func() {
		It("ingests the page", func() {
			res, out, err := server.handlePageAdd(ctx, nil, PageAddInput{Content: "a page", SourceURL: "https://p.example"})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.IsError).To(BeFalse())
			Expect(out.SnippetsCount).To(Equal(2))
			Expect(mems.Written).To(HaveLen(2))
			Expect(mems.Written[0].Metadata).To(HaveKeyWithValue("user_id", ingest.DefaultUserID))
		})

		It("flags unsuccessful ingestion", func() {
			res, out, err := server.handlePageAdd(ctx, nil, PageAddInput{Content: "a page"})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.IsError).To(BeTrue())
			Expect(out.Success).To(BeFalse())
		})
	})

	Describe("page_rephrase", func() {
		It("rephrases with merged options", func() {
			mems.Results["Focus"] = []memory.Memory{
				{ID: "a", Text: "strong", Score: 0.9},
				{ID: "b", Text: "weak", Score: 0.2},
			}
			threshold := 0.1

			res, out, err := server.handlePageRephrase(ctx, nil, PageRephraseInput{
				Content:            "a page about focus",
				RelevanceThreshold: &threshold,
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(res.IsError).To(BeFalse())
			Expect(out.Success).To(BeTrue())
			Expect(out.RephrasedContent).To(Equal("rewritten"))
			Expect(out.RelevantMemoriesCount).To(Equal(2))
		})

		It("flags failures", func() {
			gen.DefaultErr = errors.New("offline")
			res, out, err := server.handlePageRephrase(ctx, nil, PageRephraseInput{Content: "a page"})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.IsError).To(BeTrue())
			Expect(out.Success).To(BeFalse())
		})
	})
})
