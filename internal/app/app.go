// Package app wires the scraping components from configuration. Both
// binaries build on it.
package app

import (
	"context"

	"github.com/rs/zerolog"

	"go-jobscraper/internal/ai"
	"go-jobscraper/internal/browser"
	"go-jobscraper/internal/config"
	"go-jobscraper/internal/database"
	"go-jobscraper/internal/extract"
	"go-jobscraper/internal/retry"
	"go-jobscraper/internal/scraper"
	"go-jobscraper/internal/scraper/greenhouse"
	"go-jobscraper/utils"
)

type App struct {
	Config   *config.Config
	Browser  *browser.PlaywrightManager
	Pipeline *scraper.Pipeline
	// Repo is nil when no database is configured
	Repo *database.Repository
	log  zerolog.Logger
}

// New starts the browser driver and builds the pipeline. With connectDB set
// and a database URL configured it also connects to Postgres.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger, connectDB bool) (*App, error) {
	opts, err := BrowserOptions(cfg.Browser, log)
	if err != nil {
		return nil, err
	}

	pwManager, err := browser.NewPlaywright(opts, log)
	if err != nil {
		return nil, err
	}
	a := &App{Config: cfg, Browser: pwManager, log: log}

	client := ai.NewOpenAIClient(ai.Options{
		APIKey:     cfg.LLM.APIKey,
		BaseURL:    cfg.LLM.BaseURL,
		Model:      cfg.LLM.Model,
		MaxRetries: *cfg.LLM.MaxRetries,
		Timeout:    cfg.LLM.RequestTimeout,
	}, log)

	extractor, err := extract.NewJobExtractor(client, ExtractConfig(cfg.LLM, log))
	if err != nil {
		a.Close()
		return nil, err
	}

	source, err := greenhouse.NewSource(cfg.Scraper.AllowedHosts, cfg.Scraper.BaseURL)
	if err != nil {
		a.Close()
		return nil, err
	}

	fetcher := browser.NewFetcher(pwManager, browser.FetchConfig{
		MaxPages:     cfg.Browser.MaxPages,
		PageDelayMin: cfg.Browser.PageDelayMin(),
		PageDelayMax: cfg.Browser.PageDelayMax(),
	}, log)

	a.Pipeline = scraper.NewPipeline(source, fetcher, extractor, scraper.Options{
		Concurrency: cfg.Scraper.Concurrency,
		CompactText: cfg.Scraper.CompactText == nil || *cfg.Scraper.CompactText,
	}, log)

	if connectDB && cfg.DatabaseURL != "" {
		repo, err := database.ConnectDB(ctx, cfg.DatabaseURL)
		if err != nil {
			a.Close()
			return nil, err
		}
		if err := repo.EnsureSchema(ctx); err != nil {
			repo.Close()
			a.Close()
			return nil, err
		}
		a.Repo = repo
		log.Info().Msg("🗄️ Database connected")
	}
	return a, nil
}

// ExtractConfig maps the model settings onto the extractor's retry policy
func ExtractConfig(cfg config.LLMConfig, log zerolog.Logger) extract.Config {
	policy := retry.DefaultPolicy()
	if cfg.MaxAttempts > 0 {
		policy.MaxAttempts = cfg.MaxAttempts
	}
	if cfg.InitialBackoff > 0 {
		policy.InitialInterval = cfg.InitialBackoff
	}
	if cfg.MaxBackoff > 0 {
		policy.MaxInterval = cfg.MaxBackoff
	}
	return extract.Config{
		Policy:      policy,
		Temperature: cfg.Temperature,
		Log:         log,
	}
}

// BrowserOptions loads cookies and prepares the screenshot directory
func BrowserOptions(cfg config.BrowserConfig, log zerolog.Logger) (browser.Options, error) {
	opts := browser.Options{
		Headless:          cfg.Headless == nil || *cfg.Headless,
		NavigationTimeout: cfg.NavigationTimeout,
		ClickTimeout:      cfg.ClickTimeout,
		UserAgent:         cfg.UserAgent,
		ExactPageLabels:   cfg.ExactPageLabels,
		Scroll:            cfg.Scroll,
	}

	if cfg.CookiesPath != "" {
		cookies, err := browser.LoadCookies(cfg.CookiesPath)
		if err != nil {
			log.Warn().Err(err).Str("path", cfg.CookiesPath).Msg("⚠️ Could not load cookies. Continuing.")
		} else {
			log.Info().Int("cookies", len(cookies)).Msg("🍪 Loaded cookies")
			opts.Cookies = cookies
		}
	}

	if cfg.ScreenshotDir != "" {
		shots, err := utils.NewScreenShotDebugger(cfg.ScreenshotDir, log)
		if err != nil {
			return browser.Options{}, err
		}
		opts.Screenshots = shots
	}
	return opts, nil
}

func (a *App) Close() {
	if a.Repo != nil {
		a.Repo.Close()
	}
	if a.Browser != nil {
		if err := a.Browser.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to stop playwright")
		}
	}
}

