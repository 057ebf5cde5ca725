package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/dgallion1/docmask/internal/config"
	"github.com/dgallion1/docmask/internal/masker"
	"github.com/dgallion1/docmask/internal/nouns"
	"github.com/spf13/cobra"
)

var version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "docmask",
		Short: "Mask proposal documents and publish them to microCMS",
		Long: `docmask hides a share of the common nouns in Markdown proposals
while leaving headings, metadata, code and links intact, then
republishes the result to a microCMS endpoint.

Settings come from the environment, optionally loaded from .env.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(maskCmd())
	rootCmd.AddCommand(publishCmd())
	rootCmd.AddCommand(histCmd())
	rootCmd.AddCommand(serveCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads .env and the environment config. CLI commands log to stderr
// so stdout carries only command output.
func setup(logOut io.Writer) (config.Config, *slog.Logger, error) {
	log := slog.New(slog.NewJSONHandler(logOut, nil))
	loaded, err := config.LoadDotEnv(".env")
	if err != nil {
		return config.Config{}, nil, err
	}
	if loaded {
		log.Debug("loaded .env")
	}
	return config.Load(), log, nil
}

// loadOracle returns a word-list oracle when path is set and the prose
// tagger otherwise.
func loadOracle(path string, cfg config.Config, log *slog.Logger) (masker.NounOracle, error) {
	if path == "" {
		return nouns.NewTagger(cfg.NounCacheSize, log), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open nouns file: %w", err)
	}
	defer f.Close()
	set, err := nouns.ReadSet(f)
	if err != nil {
		return nil, fmt.Errorf("read nouns file: %w", err)
	}
	log.Info("loaded noun list", "path", path, "words", len(set))
	return set, nil
}
