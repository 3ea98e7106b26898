// Load envs from .env
// Load YAML config
// Apply env overrides and default values
// Validate config

package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const defaultConfigPath = "configs/config.yaml"

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	LLM      LLMConfig      `yaml:"llm"`
	Browser  BrowserConfig  `yaml:"browser"`
	Scraper  ScraperConfig  `yaml:"scraper"`
	Telegram TelegramConfig `yaml:"telegram"`
	Log      LogConfig      `yaml:"log"`
	//Optional, persistence is off when empty
	DatabaseURL string `yaml:"database_url" env:"DATABASE_URL"`
}

type ServerConfig struct {
	Port            int           `yaml:"port" env:"PORT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type LLMConfig struct {
	APIKey      string  `yaml:"api_key" env:"LLM_API_KEY"`
	BaseURL     string  `yaml:"base_url" env:"LLM_BASE_URL"`
	Model       string  `yaml:"model" env:"LLM_MODEL"`
	Temperature float64 `yaml:"temperature"`
	//Retry policy for answers that fail to parse
	MaxAttempts    int           `yaml:"max_attempts"`
	InitialBackoff time.Duration `yaml:"initial_backoff"`
	MaxBackoff     time.Duration `yaml:"max_backoff"`
	//Transport level, handled by the client library
	RequestTimeout time.Duration `yaml:"request_timeout"`
	MaxRetries     *int          `yaml:"max_retries"`
}

type BrowserConfig struct {
	Headless          *bool         `yaml:"headless"`
	NavigationTimeout time.Duration `yaml:"navigation_timeout"`
	ClickTimeout      time.Duration `yaml:"click_timeout"`
	MaxPages          int           `yaml:"max_pages"`
	PageDelayMinMs    int           `yaml:"page_delay_min_ms"`
	PageDelayMaxMs    int           `yaml:"page_delay_max_ms"`
	UserAgent         string        `yaml:"user_agent"`
	ExactPageLabels   bool          `yaml:"exact_page_labels"`
	Scroll            bool          `yaml:"scroll"`
	//Paths
	CookiesPath   string `yaml:"cookies_path"`
	ScreenshotDir string `yaml:"screenshot_dir"`
}

type ScraperConfig struct {
	Concurrency  int      `yaml:"concurrency"`
	AllowedHosts []string `yaml:"allowed_hosts"`
	BaseURL      string   `yaml:"base_url"`
	CompactText  *bool    `yaml:"compact_text"`
	OutputDir    string   `yaml:"output_dir"`
}

type TelegramConfig struct {
	Token  string `yaml:"token" env:"TELEGRAM_BOT_TOKEN"`
	ChatID int64  `yaml:"chat_id" env:"TELEGRAM_CHAT_ID"`
}

type LogConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`
	Pretty bool   `yaml:"pretty" env:"LOG_PRETTY"`
}

// Load reads .env, the YAML file at CONFIG_PATH and the environment, in
// that order of increasing precedence
func Load() (*Config, error) {
	_ = godotenv.Load()

	path := getEnv("CONFIG_PATH", defaultConfigPath)
	cfg, err := loadFile(path)
	if err != nil {
		return nil, err
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(path string) (*Config, error) {
	cfg := &Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Printf("⚠️ Could not read %s, using env and defaults: %v", path, err)
			return cfg, nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.DatabaseURL = getEnv("DATABASE_URL", c.DatabaseURL)

	c.LLM.APIKey = getEnv("LLM_API_KEY", c.LLM.APIKey)
	if c.LLM.APIKey == "" {
		c.LLM.APIKey = os.Getenv("GROQ_API_KEY")
	}
	c.LLM.BaseURL = getEnv("LLM_BASE_URL", c.LLM.BaseURL)
	c.LLM.Model = getEnv("LLM_MODEL", c.LLM.Model)

	c.Telegram.Token = getEnv("TELEGRAM_BOT_TOKEN", c.Telegram.Token)
	if chatID := os.Getenv("TELEGRAM_CHAT_ID"); chatID != "" {
		id, err := strconv.ParseInt(chatID, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid TELEGRAM_CHAT_ID: %w", err)
		}
		c.Telegram.ChatID = id
	}

	if port := os.Getenv("PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("invalid PORT: %w", err)
		}
		c.Server.Port = p
	}

	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	if pretty := os.Getenv("LOG_PRETTY"); pretty != "" {
		c.Log.Pretty = pretty == "1" || strings.EqualFold(pretty, "true")
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 30 * time.Second
	}

	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = "https://api.groq.com/openai/v1"
	}
	if c.LLM.Model == "" {
		c.LLM.Model = "llama-3.3-70b-versatile"
	}
	if c.LLM.MaxAttempts == 0 {
		c.LLM.MaxAttempts = 10
	}
	if c.LLM.InitialBackoff == 0 {
		c.LLM.InitialBackoff = 500 * time.Millisecond
	}
	if c.LLM.MaxBackoff == 0 {
		c.LLM.MaxBackoff = 30 * time.Second
	}
	if c.LLM.RequestTimeout == 0 {
		c.LLM.RequestTimeout = 2 * time.Minute
	}
	if c.LLM.MaxRetries == nil {
		c.LLM.MaxRetries = intPtr(2)
	}

	if c.Browser.Headless == nil {
		c.Browser.Headless = boolPtr(true)
	}
	if c.Browser.NavigationTimeout == 0 {
		c.Browser.NavigationTimeout = 45 * time.Second
	}
	if c.Browser.ClickTimeout == 0 {
		c.Browser.ClickTimeout = 5 * time.Second
	}
	if c.Browser.MaxPages == 0 {
		c.Browser.MaxPages = 50
	}

	if c.Scraper.Concurrency == 0 {
		c.Scraper.Concurrency = 4
	}
	if len(c.Scraper.AllowedHosts) == 0 {
		c.Scraper.AllowedHosts = []string{"greenhouse.io"}
	}
	if c.Scraper.BaseURL == "" {
		c.Scraper.BaseURL = "https://boards.greenhouse.io"
	}
	if c.Scraper.CompactText == nil {
		c.Scraper.CompactText = boolPtr(true)
	}
	if c.Scraper.OutputDir == "" {
		c.Scraper.OutputDir = "data"
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate reports the first setting that cannot work
func (c *Config) Validate() error {
	if c.LLM.APIKey == "" {
		return errors.New("LLM_API_KEY is required")
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return fmt.Errorf("llm.temperature must be between 0 and 2, got %v", c.LLM.Temperature)
	}
	if c.LLM.MaxAttempts < 1 {
		return fmt.Errorf("llm.max_attempts must be at least 1, got %d", c.LLM.MaxAttempts)
	}
	if *c.LLM.MaxRetries < 0 {
		return fmt.Errorf("llm.max_retries must not be negative, got %d", *c.LLM.MaxRetries)
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if c.Scraper.Concurrency < 1 {
		return fmt.Errorf("scraper.concurrency must be at least 1, got %d", c.Scraper.Concurrency)
	}
	if c.Browser.MaxPages < 1 {
		return fmt.Errorf("browser.max_pages must be at least 1, got %d", c.Browser.MaxPages)
	}
	if c.Browser.PageDelayMinMs < 0 || c.Browser.PageDelayMaxMs < c.Browser.PageDelayMinMs {
		return fmt.Errorf("browser page delay range invalid: %d..%d ms", c.Browser.PageDelayMinMs, c.Browser.PageDelayMaxMs)
	}
	return nil
}

// TelegramEnabled reports whether notifications can be sent
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.Token != "" && c.Telegram.ChatID != 0
}

func (b BrowserConfig) PageDelayMin() time.Duration {
	return time.Duration(b.PageDelayMinMs) * time.Millisecond
}

func (b BrowserConfig) PageDelayMax() time.Duration {
	return time.Duration(b.PageDelayMaxMs) * time.Millisecond
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func boolPtr(b bool) *bool { return &b }

func intPtr(n int) *int { return &n }
