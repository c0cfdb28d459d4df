package inmemory_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/smartread/pkg/kv"
	"github.com/papercomputeco/smartread/pkg/kv/inmemory"
	"github.com/papercomputeco/smartread/pkg/kv/kvtest"
)

var _ = Describe("Store", func() {
	kvtest.DescribeStore(func() kv.Store { return inmemory.NewStore() })

	It("copies values so callers cannot mutate stored bytes", func() {
		s := inmemory.NewStore()
		ctx := context.Background()

		buf := []byte("abc")
		Expect(s.Set(ctx, "k", buf)).To(Succeed())
		buf[0] = 'z'

		v, _, err := s.Get(ctx, "k")
		Expect(err).NotTo(HaveOccurred())
		Expect(string(v)).To(Equal("abc"))

		v[1] = 'z'
		Expect(s.Snapshot()["k"]).To(Equal([]byte("abc")))
	})

	It("fails after Close", func() {
		s := inmemory.NewStore()
		Expect(s.Close()).To(Succeed())

		_, _, err := s.Get(context.Background(), "k")
		Expect(err).To(MatchError(kv.ErrClosed))
		Expect(s.Set(context.Background(), "k", nil)).To(MatchError(kv.ErrClosed))
	})
})
