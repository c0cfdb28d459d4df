package llm_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/smartread/pkg/llm"
)

var _ = Describe("Func", func() {
	It("adapts a function to Generator", func() {
		var g llm.Generator = llm.Func(func(_ context.Context, prompt string) (string, error) {
			return "echo: " + prompt, nil
		})
		out, err := g.Generate(context.Background(), "hi")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal("echo: hi"))
	})
})

var _ = Describe("ParseStringArray", func() {
	DescribeTable("extracts arrays from model output",
		func(response string, expected []string) {
			out, err := llm.ParseStringArray(response)
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(Equal(expected))
		},
		Entry("bare array", `["Go", "Rust"]`, []string{"Go", "Rust"}),
		Entry("markdown fence", "```json\n[\"Go\"]\n```", []string{"Go"}),
		Entry("prose around it", `Here you go: ["A", "B"] hope that helps`, []string{"A", "B"}),
		Entry("empty array", `[]`, []string{}),
	)

	It("fails without brackets", func() {
		_, err := llm.ParseStringArray("no array here")
		Expect(err).To(MatchError(llm.ErrNoJSONArray))
	})

	It("fails on reversed brackets", func() {
		_, err := llm.ParseStringArray("] oops [")
		Expect(err).To(MatchError(llm.ErrNoJSONArray))
	})

	It("fails on non-string elements", func() {
		_, err := llm.ParseStringArray(`["a", 2]`)
		Expect(err).To(HaveOccurred())
	})

	It("fails on malformed JSON", func() {
		_, err := llm.ParseStringArray(`["a", ]`)
		Expect(err).To(HaveOccurred())
	})
})
