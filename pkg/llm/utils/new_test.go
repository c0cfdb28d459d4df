package llmutils_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/smartread/pkg/llm/provider/anthropic"
	"github.com/papercomputeco/smartread/pkg/llm/provider/ollama"
	"github.com/papercomputeco/smartread/pkg/llm/provider/openai"
	llmutils "github.com/papercomputeco/smartread/pkg/llm/utils"
)

var _ = Describe("NewGenerator", func() {
	ctx := context.Background()

	BeforeEach(func() {
		GinkgoT().Setenv("OPENAI_API_KEY", "")
		GinkgoT().Setenv("ANTHROPIC_API_KEY", "")
		GinkgoT().Setenv("GEMINI_API_KEY", "")
	})

	It("builds ollama without credentials", func() {
		g, closer, err := llmutils.NewGenerator(ctx, &llmutils.NewGeneratorOpts{Provider: "ollama"})
		Expect(err).NotTo(HaveOccurred())
		Expect(g).To(BeAssignableToTypeOf(&ollama.Generator{}))
		Expect(closer.Close()).To(Succeed())
	})

	It("uses an explicit key", func() {
		g, _, err := llmutils.NewGenerator(ctx, &llmutils.NewGeneratorOpts{Provider: "openai", APIKey: "sk"})
		Expect(err).NotTo(HaveOccurred())
		Expect(g).To(BeAssignableToTypeOf(&openai.Generator{}))
	})

	It("falls back to the environment", func() {
		GinkgoT().Setenv("ANTHROPIC_API_KEY", "sk-env")
		g, _, err := llmutils.NewGenerator(ctx, &llmutils.NewGeneratorOpts{Provider: "Anthropic"})
		Expect(err).NotTo(HaveOccurred())
		Expect(g).To(BeAssignableToTypeOf(&anthropic.Generator{}))
	})

	It("fails without any key", func() {
		_, closer, err := llmutils.NewGenerator(ctx, &llmutils.NewGeneratorOpts{Provider: "gemini"})
		Expect(err).To(MatchError(ContainSubstring("GEMINI_API_KEY")))
		Expect(closer).NotTo(BeNil())
	})

	It("rejects unknown providers", func() {
		_, _, err := llmutils.NewGenerator(ctx, &llmutils.NewGeneratorOpts{Provider: "cohere"})
		Expect(err).To(MatchError(ContainSubstring("unsupported llm provider")))
	})
})
