package cliui_test

import (
	"bytes"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/smartread/pkg/cliui"
)

var _ = Describe("Step", func() {
	It("prints the final line once for non-terminal writers", func() {
		var buf bytes.Buffer
		err := cliui.Step(&buf, "Adding page", func() error { return nil })

		Expect(err).NotTo(HaveOccurred())
		Expect(buf.String()).To(ContainSubstring("Adding page"))
		Expect(buf.String()).To(ContainSubstring(cliui.SuccessMark))
		Expect(bytes.Count(buf.Bytes(), []byte("Adding page"))).To(Equal(1))
	})

	It("returns the step error and marks it failed", func() {
		var buf bytes.Buffer
		boom := errors.New("boom")
		Expect(cliui.Step(&buf, "Rephrasing", func() error { return boom })).To(MatchError(boom))
		Expect(buf.String()).To(ContainSubstring(cliui.FailMark))
	})
})

var _ = Describe("FormatDuration", func() {
	It("uses milliseconds below a second", func() {
		Expect(cliui.FormatDuration(12 * time.Millisecond)).To(Equal("12ms"))
	})

	It("uses seconds with one decimal otherwise", func() {
		Expect(cliui.FormatDuration(3200 * time.Millisecond)).To(Equal("3.2s"))
	})
})

var _ = Describe("RenderMarkdown", func() {
	It("renders headings", func() {
		out, err := cliui.RenderMarkdown("## SECTION 1\n\nhello")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("hello"))
	})
})

var _ = Describe("IsTerminal", func() {
	It("is false for buffers", func() {
		Expect(cliui.IsTerminal(&bytes.Buffer{})).To(BeFalse())
	})
})
