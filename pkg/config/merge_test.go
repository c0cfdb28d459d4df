package config_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/smartread/pkg/config"
)

var _ = Describe("Merge", func() {
	It("applies non-zero overlay fields", func() {
		base := config.NewDefaultConfig()
		overlay := &config.Config{
			Rephrase: config.RephraseConfig{MaxMemories: 2},
			LLM:      config.LLMConfig{Provider: "ollama"},
			Events:   config.EventsConfig{KafkaBrokers: []string{"k:9092"}},
		}

		merged := config.Merge(base, overlay)
		Expect(merged.Rephrase.MaxMemories).To(Equal(2))
		Expect(merged.Rephrase.RelevanceThreshold).To(Equal(base.Rephrase.RelevanceThreshold))
		Expect(merged.LLM.Provider).To(Equal("ollama"))
		Expect(merged.LLM.Model).To(Equal(base.LLM.Model))
		Expect(merged.Events.KafkaBrokers).To(Equal([]string{"k:9092"}))
	})

	It("does not modify either argument", func() {
		base := config.NewDefaultConfig()
		overlay := &config.Config{
			Dedup:  config.DedupConfig{MaxCacheSize: 10},
			Events: config.EventsConfig{KafkaBrokers: []string{"k:9092"}},
		}

		merged := config.Merge(base, overlay)
		merged.Events.KafkaBrokers[0] = "changed"

		Expect(base).To(Equal(config.NewDefaultConfig()))
		Expect(overlay.Events.KafkaBrokers[0]).To(Equal("k:9092"))
		Expect(merged).NotTo(BeIdenticalTo(base))
	})

	It("copies base when overlay is nil", func() {
		base := config.NewDefaultConfig()
		merged := config.Merge(base, nil)
		Expect(merged).To(Equal(base))
		Expect(merged).NotTo(BeIdenticalTo(base))
	})

	It("tolerates a nil base", func() {
		merged := config.Merge(nil, &config.Config{Log: config.LogConfig{Level: "debug"}})
		Expect(merged.Log.Level).To(Equal("debug"))
	})
})

var _ = Describe("DedupConfig.Expiry", func() {
	It("converts days to a duration", func() {
		Expect(config.DedupConfig{AllowDuplicateAfterDays: 2}.Expiry()).To(Equal(48 * time.Hour))
	})
})
