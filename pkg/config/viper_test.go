package config_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/cobra"

	"github.com/papercomputeco/smartread/pkg/config"
)

var _ = Describe("InitViper", func() {
	var tmpDir string

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "config-viper-test-*")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	It("returns viper with defaults when no config file exists", func() {
		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())
		cfg := config.FromViper(v)
		defaults := config.NewDefaultConfig()
		Expect(cfg.Rephrase).To(Equal(defaults.Rephrase))
		Expect(cfg.Dedup).To(Equal(defaults.Dedup))
		Expect(cfg.LLM).To(Equal(defaults.LLM))
		Expect(cfg.Memory).To(Equal(defaults.Memory))
		Expect(cfg.Server).To(Equal(defaults.Server))
		Expect(cfg.Events.KafkaBrokers).To(BeEmpty())
	})

	It("reads config file values over defaults", func() {
		data := `[server]
listen = ":9999"
`
		Expect(os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(data), 0o600)).To(Succeed())

		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(v.GetString("server.listen")).To(Equal(":9999"))
		Expect(v.GetString("llm.provider")).To(Equal("gemini"))
	})

	It("env vars take precedence over config file values", func() {
		data := `[llm]
provider = "openai"
`
		Expect(os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(data), 0o600)).To(Succeed())
		GinkgoT().Setenv("SMARTREAD_LLM_PROVIDER", "ollama")

		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(config.FromViper(v).LLM.Provider).To(Equal("ollama"))
	})
})

var _ = Describe("Flag registry", func() {
	var tmpDir string

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "config-flags-test-*")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	It("binds cobra flags to viper keys", func() {
		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		cmd := &cobra.Command{Use: "test"}
		var threshold float64
		var maxMemories int
		config.AddFloatFlag(cmd, config.Flags, config.FlagRelevanceThreshold, &threshold)
		config.AddIntFlag(cmd, config.Flags, config.FlagMaxMemories, &maxMemories)

		Expect(cmd.Flags().Set("relevance-threshold", "0.1")).To(Succeed())
		config.BindRegisteredFlags(v, cmd, config.Flags, []string{config.FlagRelevanceThreshold, config.FlagMaxMemories})

		cfg := config.FromViper(v)
		Expect(cfg.Rephrase.RelevanceThreshold).To(Equal(0.1))
		Expect(cfg.Rephrase.MaxMemories).To(Equal(6))
	})

	It("pulls name, shorthand, default and description from the registry", func() {
		cmd := &cobra.Command{Use: "test"}
		var listen string
		config.AddStringFlag(cmd, config.Flags, config.FlagListen, &listen)

		f := cmd.Flags().Lookup("listen")
		Expect(f).NotTo(BeNil())
		Expect(f.Shorthand).To(Equal("l"))
		Expect(f.DefValue).To(Equal(":8787"))
		Expect(f.Usage).To(Equal(config.Flags[config.FlagListen].Description))
	})

	It("registers uint flags", func() {
		cmd := &cobra.Command{Use: "test"}
		var dims uint
		config.AddUintFlag(cmd, config.Flags, config.FlagEmbeddingDims, &dims)

		f := cmd.Flags().Lookup("embedding-dimensions")
		Expect(f).NotTo(BeNil())
		Expect(f.DefValue).To(Equal("768"))
	})

	It("skips bindings for nonexistent registry keys", func() {
		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		cmd := &cobra.Command{Use: "test"}
		config.BindRegisteredFlags(v, cmd, config.Flags, []string{"nonexistent", config.FlagListen})

		Expect(v.GetString("server.listen")).To(Equal(":8787"))
	})
})
