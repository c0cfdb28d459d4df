package rephrasecmder

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/cobra"

	"github.com/papercomputeco/smartread/cmd/smartread/pipeline"
	"github.com/papercomputeco/smartread/pkg/memory"
	"github.com/papercomputeco/smartread/pkg/rephrase"
	testutils "github.com/papercomputeco/smartread/pkg/utils/test"
)

var _ = Describe("rephrase command", func() {
	var (
		gen    *testutils.MockGenerator
		store  *testutils.MockMemoryStore
		out    *bytes.Buffer
		passed pipeline.Options
	)

	newCmd := func(stdin string, args ...string) *cobra.Command {
		cmd := newRephraseCmd(&rephraseCommander{
			build: func(ctx context.Context, o pipeline.Options) (*pipeline.Pipeline, error) {
				o.Config.Storage.Driver = "inmemory"
				o.Generator = gen
				o.Memories = store
				passed = o
				return pipeline.New(ctx, o)
			},
		})
		cmd.PersistentFlags().String("config-dir", GinkgoT().TempDir(), "")
		cmd.SetIn(strings.NewReader(stdin))
		cmd.SetOut(out)
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs(args)
		return cmd
	}

	BeforeEach(func() {
		out = &bytes.Buffer{}
		gen = testutils.NewMockGenerator().On("key topics", `["garbage collection"]`)
		gen.Default = "## SECTION 1 – Recap & References\nYou read about the GC pacer."
		store = testutils.NewMockMemoryStore()
		store.Results["garbage collection"] = []memory.Memory{
			{ID: "m1", Text: "The GC pacer targets heap growth", Score: 0.9, Metadata: map[string]any{"source_url": "https://go.dev/gc"}},
			{ID: "m2", Text: "weakly related", Score: 0.4},
		}
	})

	It("prints the memories used and the rewrite", func() {
		Expect(newCmd("An article about the Go GC.", "--raw").Execute()).To(Succeed())

		Expect(out.String()).To(ContainSubstring("Using 2 memories"))
		Expect(out.String()).To(ContainSubstring("https://go.dev/gc"))
		Expect(out.String()).To(ContainSubstring("You read about the GC pacer."))
	})

	It("applies the option flags", func() {
		Expect(newCmd("An article about the Go GC.", "--json", "--max-memories", "1", "--relevance-threshold", "0.5").Execute()).To(Succeed())
		Expect(passed.Config.Rephrase.MaxMemories).To(Equal(1))

		var res rephrase.Result
		Expect(json.Unmarshal(out.Bytes(), &res)).To(Succeed())
		Expect(res.Success).To(BeTrue())
		Expect(res.RelevantMemoriesCount).To(Equal(1))
		Expect(res.RelevantMemories[0].ID).To(Equal("m1"))
	})

	It("explains when there are no relevant memories", func() {
		Expect(newCmd("An article about the Go GC.", "--relevance-threshold", "0.95").Execute()).To(Succeed())
		Expect(out.String()).To(ContainSubstring("No relevant memories found"))
	})

	It("returns generation failures as errors", func() {
		gen.DefaultErr = errors.New("model overloaded")

		err := newCmd("An article about the Go GC.").Execute()
		Expect(err).To(MatchError(ContainSubstring("model overloaded")))
	})
})
