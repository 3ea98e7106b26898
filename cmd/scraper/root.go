package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"go-jobscraper/internal/config"
	"go-jobscraper/internal/logger"
)

var flagVerbose bool

var rootCmd = &cobra.Command{
	Use:   "scraper <listing-url>",
	Short: "Scrape a career page into structured job records",
	Long: `scraper loads a Greenhouse career page in a headless browser, follows its
pagination, asks a language model for the job links and then for the details
of every job, and writes the records as JSON.

Examples:
  scraper https://boards.greenhouse.io/acme
  scraper https://boards.greenhouse.io/acme --out ./data --pdf
  scraper https://boards.greenhouse.io/acme --include golang --notify --persist
  scraper install
  scraper jobs --limit 20`,
	Args:          cobra.ExactArgs(1),
	RunE:          runScrape,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Log at debug level")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "❌", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("load config: %w", err)
	}
	if flagVerbose {
		cfg.Log.Level = "debug"
	}
	return cfg, logger.New(cfg.Log), nil
}
