// Package cmdutil holds the plumbing shared by the smartread commands:
// resolving layered config, building the CLI logger and reading page
// content from a file or stdin.
package cmdutil

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/smartread/pkg/cliui"
	"github.com/papercomputeco/smartread/pkg/config"
	"github.com/papercomputeco/smartread/pkg/logger"
)

// ErrNoContent is returned when neither a file nor stdin supplied content.
var ErrNoContent = errors.New("no content: pass a file or pipe content on stdin")

// ConfigDir returns the persistent --config-dir flag value.
func ConfigDir(cmd *cobra.Command) string {
	dir, _ := cmd.Flags().GetString("config-dir")
	return dir
}

// Debug returns the persistent --debug flag value.
func Debug(cmd *cobra.Command) bool {
	debug, _ := cmd.Flags().GetBool("debug")
	return debug
}

// LoadConfig resolves the config through the viper chain
// (flags > env > config.toml > defaults), binding only the registry flags
// named by flagKeys.
func LoadConfig(cmd *cobra.Command, flagKeys ...string) (*config.Config, error) {
	v, err := config.InitViper(ConfigDir(cmd))
	if err != nil {
		return nil, err
	}

	config.BindRegisteredFlags(v, cmd, config.Flags, flagKeys)
	return config.FromViper(v), nil
}

// Logger builds the CLI logger: charmbracelet/log on a terminal, JSON when
// asked for, text otherwise. --debug overrides the configured level.
func Logger(cmd *cobra.Command, cfg *config.Config, jsonLogs bool) *slog.Logger {
	w := cmd.ErrOrStderr()

	level := cfg.Log.Level
	if Debug(cmd) {
		level = "debug"
	}

	return logger.New(
		logger.WithWriter(w),
		logger.WithLevel(level),
		logger.WithJSON(jsonLogs),
		logger.WithPretty(!jsonLogs && cliui.IsTerminal(w)),
	)
}

// ReadContent reads page content from the file named by args[0], or from in
// when there is no argument or the argument is "-".
func ReadContent(in io.Reader, args []string) (string, error) {
	var (
		data []byte
		err  error
	)

	if len(args) > 0 && args[0] != "-" {
		data, err = os.ReadFile(args[0])
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", args[0], err)
		}
	} else {
		if f, ok := in.(*os.File); ok && cliui.IsTerminal(f) {
			return "", ErrNoContent
		}
		data, err = io.ReadAll(in)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
	}

	content := string(data)
	if strings.TrimSpace(content) == "" {
		return "", ErrNoContent
	}
	return content, nil
}

// BackendFlags holds the targets for the flags that select providers and
// storage. One-shot commands register them so a single invocation can
// point at a different backend than config.toml.
type BackendFlags struct {
	LLMProvider       string
	LLMModel          string
	MemoryProvider    string
	EmbeddingProvider string
	EmbeddingTarget   string
	EmbeddingModel    string
	EmbeddingDims     uint
	StorageDriver     string
	SQLite            string
}

// Register adds the backend flags to cmd and returns their registry keys
// for LoadConfig.
func (f *BackendFlags) Register(cmd *cobra.Command) []string {
	config.AddStringFlag(cmd, config.Flags, config.FlagLLMProvider, &f.LLMProvider)
	config.AddStringFlag(cmd, config.Flags, config.FlagLLMModel, &f.LLMModel)
	config.AddStringFlag(cmd, config.Flags, config.FlagMemoryProvider, &f.MemoryProvider)
	config.AddStringFlag(cmd, config.Flags, config.FlagEmbeddingProv, &f.EmbeddingProvider)
	config.AddStringFlag(cmd, config.Flags, config.FlagEmbeddingTgt, &f.EmbeddingTarget)
	config.AddStringFlag(cmd, config.Flags, config.FlagEmbeddingModel, &f.EmbeddingModel)
	config.AddUintFlag(cmd, config.Flags, config.FlagEmbeddingDims, &f.EmbeddingDims)
	config.AddStringFlag(cmd, config.Flags, config.FlagStorageDriver, &f.StorageDriver)
	config.AddStringFlag(cmd, config.Flags, config.FlagSQLite, &f.SQLite)

	return []string{
		config.FlagLLMProvider,
		config.FlagLLMModel,
		config.FlagMemoryProvider,
		config.FlagEmbeddingProv,
		config.FlagEmbeddingTgt,
		config.FlagEmbeddingModel,
		config.FlagEmbeddingDims,
		config.FlagStorageDriver,
		config.FlagSQLite,
	}
}

// SourceID returns the source identifier for content read by ReadContent:
// the explicit source when given, a file:// URL for a file argument, or
// "stdin".
func SourceID(source string, args []string) string {
	if source != "" {
		return source
	}
	if len(args) > 0 && args[0] != "-" {
		if abs, err := filepath.Abs(args[0]); err == nil {
			return "file://" + filepath.ToSlash(abs)
		}
		return "file://" + args[0]
	}
	return "stdin"
}
