package sqlitepath

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Resolve", func() {
	var (
		homeDir string
		cwdDir  string
	)

	BeforeEach(func() {
		homeDir = GinkgoT().TempDir()
		cwdDir = GinkgoT().TempDir()

		GinkgoT().Setenv("HOME", homeDir)
		GinkgoT().Setenv("XDG_DATA_HOME", "")
		GinkgoT().Setenv("SMARTREAD_SQLITE", "")
		GinkgoT().Setenv("SMARTREAD_DB", "")
		GinkgoT().Setenv("SMARTREAD_MEMORY_DB", "")

		origCwd, err := os.Getwd()
		Expect(err).NotTo(HaveOccurred())
		Expect(os.Chdir(cwdDir)).To(Succeed())
		DeferCleanup(func() {
			Expect(os.Chdir(origCwd)).To(Succeed())
		})
	})

	It("returns the override unchanged", func() {
		path, err := Resolve("/tmp/explicit.db", "", DedupFile)
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal("/tmp/explicit.db"))
	})

	It("prefers SMARTREAD_SQLITE for the dedup database", func() {
		GinkgoT().Setenv("SMARTREAD_SQLITE", "/tmp/custom.db")

		path, err := Resolve("", "", DedupFile)
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal("/tmp/custom.db"))
	})

	It("does not apply the dedup variables to the memory database", func() {
		GinkgoT().Setenv("SMARTREAD_SQLITE", "/tmp/custom.db")
		GinkgoT().Setenv("SMARTREAD_MEMORY_DB", "/tmp/memory.db")

		path, err := Resolve("", "", MemoryFile)
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal("/tmp/memory.db"))
	})

	It("resolves an existing ~/.smartread/smartread.db", func() {
		dbPath := filepath.Join(homeDir, ".smartread", DedupFile)
		Expect(os.MkdirAll(filepath.Dir(dbPath), 0o755)).To(Succeed())
		Expect(os.WriteFile(dbPath, []byte("test"), 0o644)).To(Succeed())

		path, err := Resolve("", "", DedupFile)
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal(dbPath))
	})

	It("places a new database in the config dir", func() {
		configDir := filepath.Join(GinkgoT().TempDir(), "cfg")

		path, err := Resolve("", configDir, MemoryFile)
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal(filepath.Join(configDir, MemoryFile)))
		Expect(configDir).To(BeADirectory())
	})
})
