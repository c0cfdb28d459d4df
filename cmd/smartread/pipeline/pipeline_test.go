package pipeline_test

import (
	"context"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/smartread/cmd/smartread/pipeline"
	"github.com/papercomputeco/smartread/pkg/config"
	"github.com/papercomputeco/smartread/pkg/eventstream"
	"github.com/papercomputeco/smartread/pkg/ingest"
	"github.com/papercomputeco/smartread/pkg/rephrase"
	testutils "github.com/papercomputeco/smartread/pkg/utils/test"
)

const page = "Go schedules goroutines onto OS threads with a work stealing scheduler."

var _ = Describe("Pipeline", func() {
	var (
		ctx       context.Context
		cfg       *config.Config
		configDir string
		gen       *testutils.MockGenerator
	)

	BeforeEach(func() {
		ctx = context.Background()
		configDir = GinkgoT().TempDir()
		GinkgoT().Setenv("GEMINI_API_KEY", "")

		cfg = config.NewDefaultConfig()
		cfg.Storage.Driver = "inmemory"
		cfg.Memory.Provider = "local"
		cfg.Embedding.Provider = ""

		gen = testutils.NewMockGenerator().
			On("memory snippets", `["goroutine scheduling", "work stealing"]`).
			On("key topics", `["goroutine scheduling"]`)
		gen.Default = "## SECTION 1 – Recap & References\nrecap"
	})

	It("wires an ingest and rephrase pipeline end to end", func() {
		p, err := pipeline.New(ctx, pipeline.Options{
			Config:    cfg,
			ConfigDir: configDir,
			Generator: gen,
		})
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(p.Close)

		Expect(p.Dedup).NotTo(BeNil())
		Expect(p.Memories).NotTo(BeNil())
		Expect(p.Ingester).NotTo(BeNil())
		Expect(p.Rephraser).NotTo(BeNil())
		Expect(p.Sessions).NotTo(BeNil())

		added, err := p.Ingester.AddPageToMemory(ctx, page, "https://go.dev/sched", ingest.Options{})
		Expect(err).NotTo(HaveOccurred())
		Expect(added.Success).To(BeTrue())
		Expect(added.SnippetsCount).To(Equal(2))

		again, err := p.Ingester.AddPageToMemory(ctx, page, "https://go.dev/sched", ingest.Options{})
		Expect(err).NotTo(HaveOccurred())
		Expect(again.Duplicate).To(BeTrue())

		res := p.Rephraser.Rephrase(ctx, "Another article about the runtime.", p.RephraseDefaults())
		Expect(res.Success).To(BeTrue())
		Expect(res.RelevantMemoriesCount).To(Equal(1))
		Expect(res.RelevantMemories[0].Text).To(Equal("goroutine scheduling"))

		Eventually(func() []eventstream.Kind {
			var kinds []eventstream.Kind
			for _, e := range p.Events.History(0) {
				kinds = append(kinds, e.Kind)
			}
			return kinds
		}).Should(ContainElements(
			eventstream.KindMemoryAddSuccess,
			eventstream.KindMemoryAddDuplicate,
			eventstream.KindRephraseSuccess,
		))
	})

	It("leaves the generator-backed components nil when skipped", func() {
		p, err := pipeline.New(ctx, pipeline.Options{
			Config:        cfg,
			ConfigDir:     configDir,
			SkipGenerator: true,
		})
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(p.Close)

		Expect(p.Memories).NotTo(BeNil())
		Expect(p.Generator).To(BeNil())
		Expect(p.Ingester).To(BeNil())
		Expect(p.Rephraser).To(BeNil())
	})

	It("builds only the dedup cache when memory is skipped", func() {
		p, err := pipeline.New(ctx, pipeline.Options{
			Config:     cfg,
			ConfigDir:  configDir,
			SkipMemory: true,
		})
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(p.Close)

		Expect(p.Dedup).NotTo(BeNil())
		Expect(p.Memories).To(BeNil())
	})

	It("creates the sqlite dedup database inside the config dir", func() {
		cfg.Storage.Driver = "sqlite"

		p, err := pipeline.New(ctx, pipeline.Options{
			Config:     cfg,
			ConfigDir:  configDir,
			SkipMemory: true,
		})
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(p.Close)

		Expect(filepath.Join(configDir, "smartread.db")).To(BeAnExistingFile())
	})

	It("fails on an unsupported storage driver", func() {
		cfg.Storage.Driver = "cassandra"

		_, err := pipeline.New(ctx, pipeline.Options{Config: cfg, ConfigDir: configDir})
		Expect(err).To(MatchError(ContainSubstring("unsupported storage driver")))
	})

	It("fails when the generator has no credentials", func() {
		cfg.LLM.Provider = "gemini"

		_, err := pipeline.New(ctx, pipeline.Options{Config: cfg, ConfigDir: configDir})
		Expect(err).To(MatchError(ContainSubstring("no API key for gemini")))
	})
})

var _ = Describe("RephraseOptions", func() {
	It("maps the rephrase section", func() {
		cfg := config.NewDefaultConfig()
		cfg.Rephrase.MaxMemories = 3
		cfg.Rephrase.RelevanceThreshold = 0.5

		Expect(pipeline.RephraseOptions(cfg)).To(Equal(rephrase.Options{
			MaxMemories:        3,
			RelevanceThreshold: 0.5,
		}))
	})

	It("keeps the default for a non-positive max", func() {
		cfg := config.NewDefaultConfig()
		cfg.Rephrase.MaxMemories = 0

		Expect(pipeline.RephraseOptions(cfg).MaxMemories).To(Equal(rephrase.DefaultMaxMemories))
	})
})
