package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/skaarfundgandr/Stellaron/internal/config"
)

const (
	defaultLogLevel  = "info"
	defaultLogFormat = "text"
)

func newRootCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stellaron",
		Short: "Extract content, metadata and resources from EPUB books",
		Long: `stellaron reads EPUB containers and turns them into plain artifacts:
merged HTML with images inlined as data URIs, metadata records, cover
images, embedded fonts and SHA-256 checksums.

Extracted books can be cataloged in a local SQLite library keyed by
content checksum, so the same book is never imported twice.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_, err := loggerFromFlags(cmd)
			return err
		},
	}

	cmd.PersistentFlags().String("log-level", defaultLogLevel, "Log level: debug, info, warn or error")
	cmd.PersistentFlags().String("log-format", defaultLogFormat, "Log format: text or json")

	cmd.AddCommand(
		newMetaCmd(),
		newChecksumCmd(),
		newContentCmd(),
		newCoverCmd(cfg),
		newFontsCmd(cfg),
		newImportCmd(cfg),
		newListCmd(cfg),
	)
	return cmd
}

// loggerFromFlags validates the logging flags and builds a stderr logger
// from them. Data output stays on stdout; logs never mix into it.
func loggerFromFlags(cmd *cobra.Command) (*slog.Logger, error) {
	flags := cmd.Root().PersistentFlags()
	level, _ := flags.GetString("log-level")
	format, _ := flags.GetString("log-format")

	switch strings.ToLower(level) {
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid --log-level %q (want debug, info, warn or error)", level)
	}
	switch strings.ToLower(format) {
	case "text", "json":
	default:
		return nil, fmt.Errorf("invalid --log-format %q (want text or json)", format)
	}

	return buildLogger(os.Stderr, level, format), nil
}

func buildLogger(w io.Writer, level, format string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: lvl}
	if strings.ToLower(format) == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	if err := newRootCmd(cfg).Execute(); err != nil {
		os.Exit(1)
	}
}
