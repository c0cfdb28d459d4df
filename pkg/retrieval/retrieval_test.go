package retrieval_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/smartread/pkg/memory"
	"github.com/papercomputeco/smartread/pkg/retrieval"
	"github.com/papercomputeco/smartread/pkg/topics"
	testutils "github.com/papercomputeco/smartread/pkg/utils/test"
)

func mem(id string, score float64) memory.Memory {
	return memory.Memory{ID: id, Text: "text " + id, Score: score}
}

func ids(ms []memory.Memory) []string {
	out := make([]string, 0, len(ms))
	for _, m := range ms {
		out = append(out, m.ID)
	}
	return out
}

var _ = Describe("SelectRelevant", func() {
	It("keeps the first occurrence of each id", func() {
		got := retrieval.SelectRelevant([][]memory.Memory{
			{mem("a", 0.5)},
			{mem("a", 0.9), mem("b", 0.6)},
		}, 10, 0.3)
		Expect(ids(got)).To(Equal([]string{"b", "a"}))
		Expect(got[1].Score).To(Equal(0.5))
	})

	It("drops scores equal to the threshold", func() {
		got := retrieval.SelectRelevant([][]memory.Memory{
			{mem("a", 0.3), mem("b", 0.31)},
		}, 10, 0.3)
		Expect(ids(got)).To(Equal([]string{"b"}))
	})

	It("sorts descending and keeps merge order for ties", func() {
		got := retrieval.SelectRelevant([][]memory.Memory{
			{mem("a", 0.5), mem("b", 0.7)},
			{mem("c", 0.5), mem("d", 0.9)},
		}, 10, 0.0)
		Expect(ids(got)).To(Equal([]string{"d", "b", "a", "c"}))
	})

	It("truncates to the maximum", func() {
		got := retrieval.SelectRelevant([][]memory.Memory{
			{mem("a", 0.5), mem("b", 0.7), mem("c", 0.9)},
		}, 2, 0.0)
		Expect(ids(got)).To(Equal([]string{"c", "b"}))
	})

	It("returns an empty slice for a non-positive maximum", func() {
		got := retrieval.SelectRelevant([][]memory.Memory{{mem("a", 0.9)}}, 0, 0.0)
		Expect(got).NotTo(BeNil())
		Expect(got).To(BeEmpty())
	})

	It("ignores nil slots", func() {
		got := retrieval.SelectRelevant([][]memory.Memory{nil, {mem("a", 0.9)}}, 3, 0.1)
		Expect(ids(got)).To(Equal([]string{"a"}))
	})
})

var _ = Describe("Retriever", func() {
	var (
		ctx   context.Context
		gen   *testutils.MockGenerator
		store *testutils.MockMemoryStore
	)

	BeforeEach(func() {
		ctx = context.Background()
		gen = testutils.NewMockGenerator()
		store = testutils.NewMockMemoryStore()
	})

	It("searches once per topic with the default user and limit", func() {
		gen.Default = `["Go", "Rust"]`
		r := retrieval.New(topics.New(gen), store)

		r.SearchRelevantMemories(ctx, "content", 5, 0.3)

		Expect(store.Searches()).To(ConsistOf("Go", "Rust"))
		Expect(store.SearchUserIDs()).To(HaveEach(retrieval.DefaultUserID))
		Expect(store.SearchLimits()).To(HaveEach(retrieval.SearchLimit))
	})

	It("honours a custom user id", func() {
		gen.Default = `["Go"]`
		r := retrieval.New(topics.New(gen), store, retrieval.WithUserID("alice"))
		r.SearchRelevantMemories(ctx, "content", 5, 0.3)
		Expect(store.SearchUserIDs()).To(Equal([]string{"alice"}))
		Expect(r.UserID()).To(Equal("alice"))
	})

	It("merges topic results in topic order", func() {
		gen.Default = `["Go", "Rust"]`
		store.Results["Go"] = []memory.Memory{mem("a", 0.8), mem("shared", 0.6)}
		store.Results["Rust"] = []memory.Memory{mem("shared", 0.95), mem("b", 0.8)}

		got := retrieval.New(topics.New(gen), store, retrieval.WithConcurrency(1)).
			SearchRelevantMemories(ctx, "content", 5, 0.3)

		Expect(ids(got)).To(Equal([]string{"a", "b", "shared"}))
		Expect(got[2].Score).To(Equal(0.6))
	})

	It("skips failing topics", func() {
		gen.Default = `["Go", "Rust"]`
		store.FailQueries["Go"] = true
		store.Results["Rust"] = []memory.Memory{mem("b", 0.8)}

		got := retrieval.New(topics.New(gen), store).SearchRelevantMemories(ctx, "content", 5, 0.3)
		Expect(ids(got)).To(Equal([]string{"b"}))
	})

	It("returns empty when every search fails", func() {
		gen.Default = `["Go"]`
		store.FailQueries["Go"] = true
		got := retrieval.New(topics.New(gen), store).SearchRelevantMemories(ctx, "content", 5, 0.3)
		Expect(got).To(BeEmpty())
	})

	It("does not search when no topics are extracted", func() {
		gen.Default = "no idea"
		got := retrieval.New(topics.New(gen), store).SearchRelevantMemories(ctx, "content", 5, 0.3)
		Expect(got).To(BeEmpty())
		Expect(store.Searches()).To(BeEmpty())
	})
})
