package session_test

import (
	"unsafe"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/smartread/pkg/fingerprint"
	"github.com/papercomputeco/smartread/pkg/rephrase"
	"github.com/papercomputeco/smartread/pkg/session"
)

var _ = Describe("Registry", func() {
	var reg *session.Registry

	BeforeEach(func() {
		reg = session.NewRegistry(2)
	})

	It("creates a cache on first use and reuses it", func() {
		c := reg.Cache("tab-1")
		Expect(c.Capacity()).To(Equal(2))
		Expect(reg.Cache("tab-1")).To(BeIdenticalTo(c))
		Expect(reg.Len()).To(Equal(1))
	})

	It("maps the empty id to the default session", func() {
		Expect(reg.Cache("")).To(BeIdenticalTo(reg.Cache(session.DefaultID)))
	})

	It("keeps sessions isolated", func() {
		reg.Cache("a").Set("page", &rephrase.Result{Success: true})
		_, ok := reg.Cache("b").Get("page")
		Expect(ok).To(BeFalse())
		Expect(reg.IDs()).To(Equal([]string{"a", "b"}))
	})

	It("owns its copy of the session id", func() {
		buf := []byte("tab-1")
		reg.Cache(unsafe.String(&buf[0], len(buf)))
		copy(buf, "tab-2")

		Expect(reg.IDs()).To(Equal([]string{"tab-1"}))
		Expect(reg.End("tab-1")).To(BeTrue())
	})

	It("clears and forgets a session on End", func() {
		c := reg.Cache("a")
		c.Set("page", &rephrase.Result{Success: true})

		Expect(reg.End("a")).To(BeTrue())
		Expect(c.Len()).To(BeZero())
		Expect(reg.Len()).To(BeZero())
		Expect(reg.End("a")).To(BeFalse())

		_, ok := reg.Cache("a").Get("page")
		Expect(ok).To(BeFalse())
	})
})

var _ = Describe("PageKey", func() {
	It("prefers the normalized source", func() {
		a, err := session.PageKey("https://www.example.com/a/?q=1#h", "x")
		Expect(err).NotTo(HaveOccurred())
		b, err := session.PageKey("http://example.com/a", "y")
		Expect(err).NotTo(HaveOccurred())
		Expect(a).To(Equal(b))
	})

	It("falls back to the content fingerprint", func() {
		k, err := session.PageKey("", "some content")
		Expect(err).NotTo(HaveOccurred())
		Expect(k).To(HaveLen(16))
	})

	It("rejects empty content without a source", func() {
		_, err := session.PageKey("", "")
		Expect(err).To(MatchError(fingerprint.ErrInvalidInput))
	})
})
