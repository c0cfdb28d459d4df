// Package sqlitepath resolves the SQLite files smartread keeps next to its
// config: the deduplication database and the sqlitevec memory database.
package sqlitepath

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/papercomputeco/smartread/pkg/dotdir"
)

const (
	// DedupFile holds the deduplication cache for the sqlite storage driver.
	DedupFile = "smartread.db"

	// MemoryFile holds memories for the sqlitevec memory provider.
	MemoryFile = "memory.db"
)

var envVars = map[string][]string{
	DedupFile:  {"SMARTREAD_SQLITE", "SMARTREAD_DB"},
	MemoryFile: {"SMARTREAD_MEMORY_DB"},
}

// Resolve returns the path for the named database file. The override wins,
// then the file's environment variables, then an existing file in one of the
// known locations. When nothing exists yet the path points into the
// resolved .smartread/ directory so the driver can create it there.
func Resolve(override, configDir, name string) (string, error) {
	if override != "" {
		return override, nil
	}

	for _, env := range envVars[name] {
		if p := strings.TrimSpace(os.Getenv(env)); p != "" {
			return p, nil
		}
	}

	if configDir == "" {
		for _, candidate := range candidates(name) {
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}
	}

	return dotdir.NewManager().File(configDir, name)
}

func candidates(name string) []string {
	out := []string{
		filepath.Join(dotdir.DirName, name),
	}

	if home, err := os.UserHomeDir(); err == nil {
		out = append(out, filepath.Join(home, dotdir.DirName, name))
	}

	if xdgHome := strings.TrimSpace(os.Getenv("XDG_DATA_HOME")); xdgHome != "" {
		out = append(out, filepath.Join(xdgHome, "smartread", name))
	}

	return out
}
