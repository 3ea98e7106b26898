package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"go-jobscraper/internal/app"
	"go-jobscraper/internal/dedup"
	"go-jobscraper/internal/filter"
	"go-jobscraper/internal/models"
	"go-jobscraper/internal/pdf"
	"go-jobscraper/internal/telegram"
)

// Flag variables.
var (
	flagOutputDir string
	flagNotify    bool
	flagPersist   bool
	flagPDF       bool
	flagInclude   []string
	flagExclude   []string
	flagCacheDir  string
	flagTimeout   time.Duration
)

func init() {
	rootCmd.Flags().StringVar(&flagOutputDir, "out", "", "Output directory (default: scraper.output_dir)")
	rootCmd.Flags().BoolVar(&flagNotify, "notify", false, "Send jobs not reported before to Telegram")
	rootCmd.Flags().BoolVar(&flagPersist, "persist", false, "Upsert jobs into the database at DATABASE_URL")
	rootCmd.Flags().BoolVar(&flagPDF, "pdf", false, "Also write a PDF report")
	rootCmd.Flags().StringSliceVar(&flagInclude, "include", nil, "Keep only jobs mentioning one of these keywords")
	rootCmd.Flags().StringSliceVar(&flagExclude, "exclude", nil, "Drop jobs mentioning any of these keywords")
	rootCmd.Flags().StringVar(&flagCacheDir, "cache-dir", ".cache", "Directory of the notification cache")
	rootCmd.Flags().DurationVar(&flagTimeout, "timeout", 15*time.Minute, "Abort the scrape after this long")
}

func runScrape(cmd *cobra.Command, args []string) error {
	listingURL := args[0]

	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	if flagPersist && cfg.DatabaseURL == "" {
		return fmt.Errorf("--persist needs DATABASE_URL")
	}
	if flagNotify && !cfg.TelegramEnabled() {
		return fmt.Errorf("--notify needs TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID")
	}
	matcher, err := filter.NewMatcher(flagInclude, flagExclude)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, flagTimeout)
	defer cancel()

	var bot notifier
	if flagNotify {
		if bot, err = telegram.NewBot(cfg.Telegram.Token, cfg.Telegram.ChatID); err != nil {
			return err
		}
	}

	a, err := app.New(ctx, cfg, log, flagPersist)
	if err != nil {
		return err
	}
	defer a.Close()

	log.Info().Str("listing_url", listingURL).Msg("🚀 Starting scrape")
	jobs, err := a.Pipeline.Run(ctx, listingURL)
	if err != nil {
		return reportFailure(bot, fmt.Errorf("scrape %s: %w", listingURL, err), log)
	}

	filtered := matcher.Apply(jobs)
	log.Info().Int("filtered", len(filtered)).Int("total", len(jobs)).Msg("Filtered jobs (sorted by score)")

	outDir := flagOutputDir
	if outDir == "" {
		outDir = cfg.Scraper.OutputDir
	}
	path, err := saveJobs(outDir, time.Now(), filtered)
	if err != nil {
		return err
	}
	log.Info().Str("path", path).Msg("📁 Results saved")

	if flagPDF {
		if err := writeReport(ctx, a, outDir, listingURL, filtered, log); err != nil {
			log.Warn().Err(err).Msg("⚠️ Failed to write PDF report")
		}
	}

	if a.Repo != nil {
		saved, err := a.Repo.SaveJobs(ctx, a.Pipeline.Source().Name(), listingURL, filtered)
		if err != nil {
			log.Error().Err(err).Msg("❌ Failed to persist jobs")
		} else {
			log.Info().Int("saved", saved).Msg("💾 Jobs persisted")
		}
	}

	if bot != nil {
		cache, err := dedup.NewSeenCache(flagCacheDir, dedup.DefaultRetention, log)
		if err != nil {
			return err
		}
		if err := notify(ctx, bot, cache, filtered, time.Second, log); err != nil {
			log.Error().Err(err).Msg("❌ Failed to notify")
		}
	}

	log.Info().Msg("🏁 Execution finished.")
	return nil
}

// saveJobs writes jobs to dir/job-scrape-YYYY-MM-DD.json
func saveJobs(dir string, now time.Time, jobs []models.JobInformation) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	if jobs == nil {
		jobs = []models.JobInformation{}
	}
	data, err := json.MarshalIndent(jobs, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal jobs: %w", err)
	}

	filename := fmt.Sprintf("job-scrape-%s.json", now.Format("2006-01-02"))
	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

func writeReport(ctx context.Context, a *app.App, dir, listingURL string, jobs []models.JobInformation, log zerolog.Logger) error {
	gen, err := pdf.NewGenerator(a.Browser)
	if err != nil {
		return err
	}
	now := time.Now()
	out, err := gen.Generate(ctx, pdf.Report{ListingURL: listingURL, GeneratedAt: now, Jobs: jobs})
	if err != nil {
		return err
	}
	path := filepath.Join(dir, fmt.Sprintf("job-scrape-%s.pdf", now.Format("2006-01-02")))
	if err := pdf.SaveToFile(out, path); err != nil {
		return err
	}
	log.Info().Str("path", path).Msg("📄 PDF report saved")
	return nil
}

// notifier is the subset of *telegram.Bot used by a scrape run
type notifier interface {
	SendJob(job models.JobInformation) error
	SendStatus(message string) error
	SendError(err error) error
}

// notify sends the jobs that were not reported by an earlier run, waiting
// pause between messages to stay under the Telegram rate limit.
// Only jobs with an apply URL are remembered in the cache.
func notify(ctx context.Context, bot notifier, cache *dedup.SeenCache, jobs []models.JobInformation, pause time.Duration, log zerolog.Logger) error {
	unseen := unseenJobs(cache, jobs)
	log.Info().Int("total", len(jobs)).Int("unseen", len(unseen)).Msg("🔍 Deduplication")
	if len(unseen) == 0 {
		return nil
	}

	sent := 0
	var remembered []string
	for i, job := range unseen {
		if i > 0 {
			select {
			case <-ctx.Done():
				log.Warn().Int("pending", len(unseen)-i).Msg("⚠️ Notification interrupted")
				return finishNotify(bot, cache, len(unseen), sent, remembered, log)
			case <-time.After(pause):
			}
		}
		applyURL := models.Value(job.ApplyURL)
		if err := bot.SendJob(job); err != nil {
			log.Warn().Err(err).Str("apply_url", applyURL).Msg("⚠️ Failed to send job to Telegram")
			continue
		}
		sent++
		if applyURL != "" {
			remembered = append(remembered, applyURL)
		}
	}
	return finishNotify(bot, cache, len(unseen), sent, remembered, log)
}

// reportFailure forwards a failed run to Telegram when notifications are on and returns err
func reportFailure(bot notifier, err error, log zerolog.Logger) error {
	if bot == nil {
		return err
	}
	if sendErr := bot.SendError(err); sendErr != nil {
		log.Warn().Err(sendErr).Msg("⚠️ Failed to report error to Telegram")
	}
	return err
}

func finishNotify(bot notifier, cache *dedup.SeenCache, unseen, sent int, remembered []string, log zerolog.Logger) error {
	if err := cache.Add(remembered); err != nil {
		log.Warn().Err(err).Msg("⚠️ Failed to update seen cache")
	}
	return bot.SendStatus(fmt.Sprintf("✅ Found %d new jobs, sent %d.", unseen, sent))
}

func unseenJobs(cache *dedup.SeenCache, jobs []models.JobInformation) []models.JobInformation {
	var unseen []models.JobInformation
	for _, job := range jobs {
		applyURL := models.Value(job.ApplyURL)
		if applyURL == "" || !cache.IsSeen(applyURL) {
			unseen = append(unseen, job)
		}
	}
	return unseen
}
