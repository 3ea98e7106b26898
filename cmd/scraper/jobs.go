package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"go-jobscraper/internal/database"
)

var (
	flagLimit  int
	flagSource string
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Print the most recently stored jobs as JSON",
	Args:  cobra.NoArgs,
	RunE:  runJobs,
}

func init() {
	jobsCmd.Flags().IntVar(&flagLimit, "limit", 50, "Maximum number of jobs")
	jobsCmd.Flags().StringVar(&flagSource, "source", "", "Only jobs from this source")
	rootCmd.AddCommand(jobsCmd)
}

func runJobs(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	repo, err := database.ConnectDB(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer repo.Close()

	jobs, err := repo.ListJobs(ctx, flagSource, flagLimit)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(jobs)
}
