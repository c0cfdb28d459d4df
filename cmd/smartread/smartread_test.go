package smartreadcmder_test

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	smartreadcmder "github.com/papercomputeco/smartread/cmd/smartread"
)

var _ = Describe("NewSmartreadCmd", func() {
	It("registers every subcommand", func() {
		cmd := smartreadcmder.NewSmartreadCmd()
		names := []string{}
		for _, sub := range cmd.Commands() {
			names = append(names, sub.Name())
		}
		Expect(names).To(ContainElements(
			"serve", "add", "rephrase", "dedup", "memory", "config", "auth", "version",
		))
	})

	It("exposes the global flags", func() {
		cmd := smartreadcmder.NewSmartreadCmd()
		debug := cmd.PersistentFlags().Lookup("debug")
		Expect(debug).NotTo(BeNil())
		Expect(debug.Shorthand).To(Equal("d"))
		Expect(cmd.PersistentFlags().Lookup("config-dir")).NotTo(BeNil())
	})

	It("passes --config-dir through to subcommands", func() {
		dir := GinkgoT().TempDir()
		out := &bytes.Buffer{}

		cmd := smartreadcmder.NewSmartreadCmd()
		cmd.SetOut(out)
		cmd.SetArgs([]string{"config", "set", "llm.provider", "ollama", "--config-dir", dir})
		Expect(cmd.Execute()).To(Succeed())

		out.Reset()
		cmd = smartreadcmder.NewSmartreadCmd()
		cmd.SetOut(out)
		cmd.SetArgs([]string{"config", "get", "llm.provider", "--config-dir", dir})
		Expect(cmd.Execute()).To(Succeed())
		Expect(out.String()).To(ContainSubstring("ollama"))
	})

	It("prints the version", func() {
		out := &bytes.Buffer{}
		cmd := smartreadcmder.NewSmartreadCmd()
		cmd.SetOut(out)
		cmd.SetArgs([]string{"version"})
		Expect(cmd.Execute()).To(Succeed())
		Expect(out.String()).To(ContainSubstring("Version: dev"))
	})
})
