package lru_test

import (
	"fmt"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/smartread/pkg/lru"
)

var _ = Describe("Cache", func() {
	It("falls back to the default capacity", func() {
		Expect(lru.New[string, int](0).Capacity()).To(Equal(lru.DefaultCapacity))
		Expect(lru.New[string, int](-3).Capacity()).To(Equal(lru.DefaultCapacity))
		Expect(lru.New[string, int](2).Capacity()).To(Equal(2))
	})

	It("evicts the oldest entry when a new key exceeds capacity", func() {
		c := lru.New[string, int](5)
		for i := 1; i <= 6; i++ {
			c.Set(fmt.Sprintf("k%d", i), i)
		}

		Expect(c.Len()).To(Equal(5))
		_, ok := c.Get("k1")
		Expect(ok).To(BeFalse())
		Expect(c.Keys()).To(Equal([]string{"k2", "k3", "k4", "k5", "k6"}))
	})

	It("moves a re-set key to the newest position", func() {
		c := lru.New[string, int](3)
		c.Set("a", 1)
		c.Set("b", 2)
		c.Set("c", 3)
		c.Set("a", 10)
		c.Set("d", 4)

		Expect(c.Keys()).To(Equal([]string{"c", "a", "d"}))
		v, ok := c.Get("a")
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal(10))
	})

	It("does not reorder on Get", func() {
		c := lru.New[string, int](2)
		c.Set("a", 1)
		c.Set("b", 2)
		c.Get("a")
		c.Set("c", 3)

		_, ok := c.Get("a")
		Expect(ok).To(BeFalse())
	})

	It("clears all entries", func() {
		c := lru.New[int, string](2)
		c.Set(1, "x")
		c.Clear()
		Expect(c.Len()).To(BeZero())
		c.Set(2, "y")
		Expect(c.Keys()).To(Equal([]int{2}))
	})

	It("never exceeds capacity under concurrent writers", func() {
		c := lru.New[int, int](4)
		var wg sync.WaitGroup
		for w := range 8 {
			wg.Add(1)
			go func() {
				defer GinkgoRecover()
				defer wg.Done()
				for i := range 100 {
					c.Set(w*1000+i, i)
					Expect(c.Len()).To(BeNumerically("<=", 4))
				}
			}()
		}
		wg.Wait()
		Expect(c.Len()).To(Equal(4))
	})
})
