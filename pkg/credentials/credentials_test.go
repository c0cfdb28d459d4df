package credentials_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/smartread/pkg/credentials"
)

var _ = Describe("Manager", func() {
	var (
		tmpDir string
		mgr    *credentials.Manager
	)

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "credentials-test-*")
		Expect(err).NotTo(HaveOccurred())

		mgr, err = credentials.NewManager(tmpDir)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	It("targets credentials.toml in the override directory", func() {
		Expect(mgr.GetTarget()).To(HaveSuffix(filepath.Join(filepath.Base(tmpDir), "credentials.toml")))
	})

	Describe("Load", func() {
		It("returns empty credentials when no file exists", func() {
			creds, err := mgr.Load()
			Expect(err).NotTo(HaveOccurred())
			Expect(creds.Providers).To(BeEmpty())
		})

		It("loads existing credentials", func() {
			data := `version = 0

[providers.gemini]
api_key = "g-test-key"
`
			Expect(os.WriteFile(mgr.GetTarget(), []byte(data), 0o600)).To(Succeed())

			creds, err := mgr.Load()
			Expect(err).NotTo(HaveOccurred())
			Expect(creds.Providers).To(HaveKeyWithValue("gemini", credentials.ProviderCredential{APIKey: "g-test-key"}))
		})

		It("returns error for malformed TOML", func() {
			Expect(os.WriteFile(mgr.GetTarget(), []byte("[providers"), 0o600)).To(Succeed())

			_, err := mgr.Load()
			Expect(err).To(MatchError(ContainSubstring("parsing credentials")))
		})
	})

	Describe("Save", func() {
		It("persists credentials with restricted permissions", func() {
			err := mgr.Save(&credentials.Credentials{
				Providers: map[string]credentials.ProviderCredential{
					"openai": {APIKey: "sk-test"},
				},
			})
			Expect(err).NotTo(HaveOccurred())

			info, err := os.Stat(mgr.GetTarget())
			Expect(err).NotTo(HaveOccurred())
			Expect(info.Mode().Perm()).To(Equal(os.FileMode(0o600)))
		})

		It("returns error for nil credentials", func() {
			Expect(mgr.Save(nil)).To(MatchError("cannot save nil credentials"))
		})
	})

	Describe("SetKey / GetKey / RemoveKey", func() {
		It("stores, overwrites and removes keys per provider", func() {
			Expect(mgr.SetKey("openai", "sk-old")).To(Succeed())
			Expect(mgr.SetKey("openai", "sk-new")).To(Succeed())
			Expect(mgr.SetKey("anthropic", "sk-ant")).To(Succeed())

			key, err := mgr.GetKey("openai")
			Expect(err).NotTo(HaveOccurred())
			Expect(key).To(Equal("sk-new"))

			Expect(mgr.RemoveKey("openai")).To(Succeed())
			key, err = mgr.GetKey("openai")
			Expect(err).NotTo(HaveOccurred())
			Expect(key).To(BeEmpty())

			providers, err := mgr.ListProviders()
			Expect(err).NotTo(HaveOccurred())
			Expect(providers).To(Equal([]string{"anthropic"}))
		})
	})

	Describe("Resolve", func() {
		It("prefers the explicit key", func() {
			Expect(mgr.SetKey("gemini", "stored")).To(Succeed())

			key, err := mgr.Resolve("gemini", "explicit")
			Expect(err).NotTo(HaveOccurred())
			Expect(key).To(Equal("explicit"))
		})

		It("uses the stored key before the environment", func() {
			GinkgoT().Setenv("GEMINI_API_KEY", "from-env")
			Expect(mgr.SetKey("gemini", "stored")).To(Succeed())

			key, err := mgr.Resolve("gemini", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(key).To(Equal("stored"))
		})

		It("falls back to the environment variable", func() {
			GinkgoT().Setenv("ANTHROPIC_API_KEY", "from-env")

			key, err := mgr.Resolve("anthropic", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(key).To(Equal("from-env"))
		})

		It("works on a nil manager", func() {
			GinkgoT().Setenv("OPENAI_API_KEY", "from-env")

			var none *credentials.Manager
			key, err := none.Resolve("openai", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(key).To(Equal("from-env"))
		})
	})
})

var _ = Describe("providers", func() {
	It("maps providers to environment variables", func() {
		Expect(credentials.EnvVarForProvider("gemini")).To(Equal("GEMINI_API_KEY"))
		Expect(credentials.EnvVarForProvider("qdrant")).To(Equal("QDRANT_API_KEY"))
		Expect(credentials.EnvVarForProvider("ollama")).To(BeEmpty())
	})

	It("lists supported providers", func() {
		Expect(credentials.SupportedProviders()).To(ConsistOf("gemini", "openai", "anthropic", "qdrant"))
		Expect(credentials.IsSupportedProvider("ollama")).To(BeFalse())
	})
})
