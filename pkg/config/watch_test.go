package config_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/smartread/pkg/config"
)

var _ = Describe("Watch", func() {
	var (
		tmpDir string
		c      *config.Configer
	)

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "config-watch-test-*")
		Expect(err).NotTo(HaveOccurred())

		c, err = config.NewConfiger(tmpDir)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	It("delivers reloaded config after the file changes", func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		var (
			mu   sync.Mutex
			last *config.Config
		)
		err := c.Watch(ctx, func(cfg *config.Config) {
			mu.Lock()
			defer mu.Unlock()
			last = cfg
		}, nil)
		Expect(err).NotTo(HaveOccurred())

		Expect(c.SetConfigValue("rephrase.max_memories", "9")).To(Succeed())

		Eventually(func() int {
			mu.Lock()
			defer mu.Unlock()
			if last == nil {
				return 0
			}
			return last.Rephrase.MaxMemories
		}).Should(Equal(9))
	})

	It("reports parse errors instead of delivering config", func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		errs := make(chan error, 4)
		err := c.Watch(ctx, func(*config.Config) {}, func(err error) {
			select {
			case errs <- err:
			default:
			}
		})
		Expect(err).NotTo(HaveOccurred())

		Expect(os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte("[broken"), 0o600)).To(Succeed())
		Eventually(errs).Should(Receive(MatchError(ContainSubstring("parsing config TOML"))))
	})

	It("refuses to watch without a target", func() {
		var empty config.Configer
		Expect(empty.Watch(context.Background(), func(*config.Config) {}, nil)).To(HaveOccurred())
	})
})
