// Package kvtest holds a shared behavioural suite run against every kv.Store
// driver.
package kvtest

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/smartread/pkg/kv"
)

// DescribeStore registers the kv.Store contract specs. newStore is called
// before each spec and the returned store is closed after it.
func DescribeStore(newStore func() kv.Store) {
	var (
		ctx   context.Context
		store kv.Store
	)

	BeforeEach(func() {
		ctx = context.Background()
		store = newStore()
	})

	AfterEach(func() {
		store.Close()
	})

	It("reports missing keys as absent", func() {
		v, ok, err := store.Get(ctx, "missing")
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeFalse())
		Expect(v).To(BeNil())
	})

	It("sets and replaces values", func() {
		Expect(store.Set(ctx, "a", []byte("one"))).To(Succeed())
		Expect(store.Set(ctx, "a", []byte("two"))).To(Succeed())

		v, ok, err := store.Get(ctx, "a")
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
		Expect(string(v)).To(Equal("two"))
	})

	It("scans by prefix, treating underscores literally", func() {
		Expect(store.Set(ctx, "dedup_cnt_1", []byte("1"))).To(Succeed())
		Expect(store.Set(ctx, "dedup_cnt_2", []byte("2"))).To(Succeed())
		Expect(store.Set(ctx, "dedup_url_x", []byte("x"))).To(Succeed())
		Expect(store.Set(ctx, "dedupXcntX3", []byte("3"))).To(Succeed())

		entries, err := store.Scan(ctx, "dedup_cnt_")
		Expect(err).NotTo(HaveOccurred())
		Expect(entries).To(HaveLen(2))
		Expect(entries).To(HaveKeyWithValue("dedup_cnt_1", []byte("1")))
		Expect(entries).To(HaveKeyWithValue("dedup_cnt_2", []byte("2")))
	})

	It("scans everything with an empty prefix", func() {
		Expect(store.Set(ctx, "a", []byte("1"))).To(Succeed())
		Expect(store.Set(ctx, "b", []byte("2"))).To(Succeed())

		entries, err := store.Scan(ctx, "")
		Expect(err).NotTo(HaveOccurred())
		Expect(entries).To(HaveLen(2))
	})

	It("deletes many keys and ignores missing ones", func() {
		Expect(store.Set(ctx, "a", []byte("1"))).To(Succeed())
		Expect(store.Set(ctx, "b", []byte("2"))).To(Succeed())
		Expect(store.Set(ctx, "c", []byte("3"))).To(Succeed())

		Expect(store.DeleteMany(ctx, []string{"a", "c", "zzz"})).To(Succeed())
		Expect(store.DeleteMany(ctx, nil)).To(Succeed())

		entries, err := store.Scan(ctx, "")
		Expect(err).NotTo(HaveOccurred())
		Expect(entries).To(HaveLen(1))
		Expect(entries).To(HaveKey("b"))
	})
}
