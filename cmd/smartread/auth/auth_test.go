package authcmder_test

import (
	"bytes"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/cobra"

	authcmder "github.com/papercomputeco/smartread/cmd/smartread/auth"
	"github.com/papercomputeco/smartread/pkg/credentials"
)

var _ = Describe("NewAuthCmd", func() {
	var (
		tmpDir string
		out    *bytes.Buffer
	)

	newCmd := func(stdin string, args ...string) *cobra.Command {
		cmd := authcmder.NewAuthCmd()
		cmd.PersistentFlags().String("config-dir", "", "")
		cmd.SetOut(out)
		cmd.SetIn(strings.NewReader(stdin))
		cmd.SetArgs(append(args, "--config-dir", tmpDir))
		return cmd
	}

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
		out = &bytes.Buffer{}
	})

	It("creates a command with the correct use string", func() {
		cmd := authcmder.NewAuthCmd()
		Expect(cmd.Use).To(Equal("auth [provider]"))
		Expect(cmd.Flags().Lookup("list")).NotTo(BeNil())
		Expect(cmd.Flags().Lookup("remove")).NotTo(BeNil())
	})

	It("requires a provider argument", func() {
		err := newCmd("").Execute()
		Expect(err).To(MatchError(ContainSubstring("provider argument required")))
	})

	It("rejects unsupported providers", func() {
		err := newCmd("key\n", "mistral").Execute()
		Expect(err).To(MatchError(ContainSubstring("unsupported provider")))
	})

	It("stores a piped key", func() {
		Expect(newCmd("sk-test-123\n", "openai").Execute()).To(Succeed())
		Expect(out.String()).To(ContainSubstring("Stored"))

		mgr, err := credentials.NewManager(tmpDir)
		Expect(err).NotTo(HaveOccurred())
		key, err := mgr.GetKey("openai")
		Expect(err).NotTo(HaveOccurred())
		Expect(key).To(Equal("sk-test-123"))
	})

	It("normalizes provider case", func() {
		Expect(newCmd("gm-key\n", "Gemini").Execute()).To(Succeed())

		mgr, err := credentials.NewManager(tmpDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(mgr.GetKey("gemini")).To(Equal("gm-key"))
	})

	It("rejects an empty key", func() {
		err := newCmd("   \n", "anthropic").Execute()
		Expect(err).To(MatchError(ContainSubstring("cannot be empty")))
	})

	It("errors when nothing is piped", func() {
		err := newCmd("", "qdrant").Execute()
		Expect(err).To(MatchError(ContainSubstring("no input")))
	})

	It("lists and removes stored credentials", func() {
		Expect(newCmd("", "--list").Execute()).To(Succeed())
		Expect(out.String()).To(ContainSubstring("No stored credentials"))

		Expect(newCmd("q-key\n", "qdrant").Execute()).To(Succeed())
		out.Reset()
		Expect(newCmd("", "--list").Execute()).To(Succeed())
		Expect(out.String()).To(ContainSubstring("qdrant"))

		out.Reset()
		Expect(newCmd("", "--remove", "qdrant").Execute()).To(Succeed())
		Expect(out.String()).To(ContainSubstring("Removed"))

		mgr, err := credentials.NewManager(tmpDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(mgr.ListProviders()).To(BeEmpty())
	})

	It("completes supported providers", func() {
		cmd := authcmder.NewAuthCmd()
		providers, directive := cmd.ValidArgsFunction(cmd, nil, "")
		Expect(providers).To(ConsistOf("gemini", "openai", "anthropic", "qdrant"))
		Expect(directive).To(Equal(cobra.ShellCompDirectiveNoFileComp))

		providers, _ = cmd.ValidArgsFunction(cmd, []string{"openai"}, "")
		Expect(providers).To(BeEmpty())
	})
})
