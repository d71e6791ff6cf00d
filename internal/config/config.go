package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone   = "Europe/Zurich"
	configPathEnv     = "APERO_SCANNER_CONFIG"
	databaseDSNEnv    = "DATABASE_DSN"
	telegramTokenEnv  = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv = "TELEGRAM_CHAT_ID"
	feedUploadKeyEnv  = "FEED_UPLOAD_KEY"
	renderAPIKeyEnv   = "RENDER_API_KEY"
)

// Config holds high-level settings required across the application.
type Config struct {
	Database      DatabaseConfig     `yaml:"database"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	Crawler       CrawlerConfig      `yaml:"crawler"`
	Storage       StorageConfig      `yaml:"storage"`
	Feed          FeedConfig         `yaml:"feed"`
	Render        RenderConfig       `yaml:"render"`
	Notifications NotificationConfig `yaml:"notifications"`
	Logging       LoggingConfig      `yaml:"logging"`
	Sites         []SiteConfig       `yaml:"sites"`
}

// DatabaseConfig describes Postgres connection details.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// SchedulerConfig defines when discovery runs execute.
type SchedulerConfig struct {
	Enabled        bool           `yaml:"enabled"`
	CronExpression string         `yaml:"cronExpression"`
	Timezone       string         `yaml:"timezone"`
	location       *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// CrawlerConfig tunes the link crawler.
type CrawlerConfig struct {
	UserAgent      string `yaml:"userAgent"`
	TimeoutSeconds int    `yaml:"timeoutSeconds"`
	DelaySeconds   int    `yaml:"delaySeconds"`
}

// Timeout returns the per-request bound.
func (c CrawlerConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Delay returns the politeness delay between followed fetches.
func (c CrawlerConfig) Delay() time.Duration {
	if c.DelaySeconds <= 0 {
		return time.Second
	}
	return time.Duration(c.DelaySeconds) * time.Second
}

// StorageConfig locates on-disk state (visited set, feed output).
type StorageConfig struct {
	DataDir string `yaml:"dataDir"`
}

// FeedConfig wires the downstream publishing endpoint.
type FeedConfig struct {
	UploadEndpoint string `yaml:"uploadEndpoint"`
	APIKey         string `yaml:"apiKey"`
}

// RenderConfig describes the browser-automation crawling backend.
type RenderConfig struct {
	Endpoint string `yaml:"endpoint"`
	APIKey   string `yaml:"apiKey"`
}

// NotificationConfig encapsulates outbound channels (Telegram, etc.).
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// LoggingConfig selects the log level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// SiteConfig describes a single site with its discovery strategy.
type SiteConfig struct {
	Name     string            `yaml:"name"`
	Scanner  string            `yaml:"scanner"`
	URL      string            `yaml:"url"`
	MaxDepth int               `yaml:"maxDepth"`
	Options  map[string]string `yaml:"options"`
}

// Load reads YAML configuration (if present) and applies environment
// overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	if len(cfg.Sites) == 0 {
		cfg.Sites = defaultConfig().Sites
	}

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}

	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}

	if v := os.Getenv(feedUploadKeyEnv); v != "" {
		c.Feed.APIKey = v
	}

	if v := os.Getenv(renderAPIKeyEnv); v != "" {
		c.Render.APIKey = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

func mergeConfig(base, override Config) Config {
	if override.Database.DSN != "" {
		base.Database = override.Database
	}

	if override.Scheduler.Enabled {
		base.Scheduler.Enabled = true
	}
	if override.Scheduler.CronExpression != "" {
		base.Scheduler.CronExpression = override.Scheduler.CronExpression
	}
	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}

	if override.Crawler.UserAgent != "" {
		base.Crawler.UserAgent = override.Crawler.UserAgent
	}
	if override.Crawler.TimeoutSeconds > 0 {
		base.Crawler.TimeoutSeconds = override.Crawler.TimeoutSeconds
	}
	if override.Crawler.DelaySeconds > 0 {
		base.Crawler.DelaySeconds = override.Crawler.DelaySeconds
	}

	if override.Storage.DataDir != "" {
		base.Storage = override.Storage
	}

	if override.Feed.UploadEndpoint != "" {
		base.Feed.UploadEndpoint = override.Feed.UploadEndpoint
	}
	if override.Feed.APIKey != "" {
		base.Feed.APIKey = override.Feed.APIKey
	}

	if override.Render.Endpoint != "" {
		base.Render.Endpoint = override.Render.Endpoint
	}
	if override.Render.APIKey != "" {
		base.Render.APIKey = override.Render.APIKey
	}

	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if override.Notifications.Telegram.ChatID != "" {
		base.Notifications.Telegram.ChatID = override.Notifications.Telegram.ChatID
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	if len(override.Sites) > 0 {
		base.Sites = override.Sites
	}

	return base
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Scheduler: SchedulerConfig{
			CronExpression: "0 7 * * *",
			Timezone:       defaultTimezone,
			location:       tz,
		},
		Crawler: CrawlerConfig{
			UserAgent:      "AperoScanner/1.0 (+https://example.com/bot)",
			TimeoutSeconds: 10,
			DelaySeconds:   1,
		},
		Storage: StorageConfig{DataDir: "data"},
		Logging: LoggingConfig{Level: "info"},
		Sites: []SiteConfig{
			{
				Name:    "amiv",
				Scanner: "api",
				URL:     "https://api.amiv.ethz.ch/events/",
			},
			{
				Name:     "vseth",
				Scanner:  "crawl",
				URL:      "https://vseth.ethz.ch/events/",
				MaxDepth: 3,
			},
		},
	}
}
