package topics_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/smartread/pkg/topics"
	testutils "github.com/papercomputeco/smartread/pkg/utils/test"
)

var _ = Describe("Extractor", func() {
	var (
		ctx context.Context
		gen *testutils.MockGenerator
	)

	BeforeEach(func() {
		ctx = context.Background()
		gen = testutils.NewMockGenerator()
	})

	It("embeds the content in the prompt", func() {
		gen.Default = `["Go"]`
		topics.New(gen).Extract(ctx, "an article about goroutines")
		Expect(gen.LastPrompt()).To(ContainSubstring("an article about goroutines"))
		Expect(gen.LastPrompt()).To(ContainSubstring("JSON array"))
	})

	It("returns parsed topics", func() {
		gen.Default = `["Deep Work", "Time Blocking", "Focus Techniques"]`
		Expect(topics.New(gen).Extract(ctx, "content")).To(Equal([]string{"Deep Work", "Time Blocking", "Focus Techniques"}))
	})

	It("tolerates prose and fences around the array", func() {
		gen.Default = "Sure!\n```json\n[\"Go\", \"Rust\"]\n```"
		Expect(topics.New(gen).Extract(ctx, "content")).To(Equal([]string{"Go", "Rust"}))
	})

	DescribeTable("yields no topics on failure",
		func(response string, err error) {
			gen.Default = response
			gen.DefaultErr = err
			out := topics.New(gen).Extract(ctx, "content")
			Expect(out).NotTo(BeNil())
			Expect(out).To(BeEmpty())
		},
		Entry("generator error", "", errors.New("quota")),
		Entry("no brackets", "Go, Rust", nil),
		Entry("bad JSON", `["Go",`, nil),
		Entry("non-string elements", `["Go", 3]`, nil),
		Entry("object instead of array", `{"topics": "Go"}`, nil),
	)
})

var _ = Describe("Parse", func() {
	It("trims, drops blanks and dedupes case-insensitively", func() {
		out, err := topics.Parse(`["  Go  ", "", "go", "GO", "Rust", "   "]`)
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal([]string{"Go", "Rust"}))
	})

	It("caps the list at five", func() {
		out, err := topics.Parse(`["A", "B", "C", "D", "E", "F", "G"]`)
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal([]string{"A", "B", "C", "D", "E"}))
	})

	It("keeps the first spelling of a duplicate", func() {
		out, _ := topics.Parse(`["Deep Work", "deep work"]`)
		Expect(out).To(Equal([]string{"Deep Work"}))
	})

	It("counts only kept topics toward the cap", func() {
		out, _ := topics.Parse(`["A", "a", "B", "b", "C", "D", "E", "F"]`)
		Expect(out).To(Equal([]string{"A", "B", "C", "D", "E"}))
	})
})
