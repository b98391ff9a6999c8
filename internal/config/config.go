package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config holds all runtime settings. Values come from environment variables,
// optionally seeded from a .env file. Secrets (bot token, API key) are never
// read from anywhere else.
type Config struct {
	// Telegram delivery
	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN" env-default:""`
	TelegramChatID   int64  `env:"TELEGRAM_CHAT_ID" env-default:"0"`

	// Anthropic API key for message composition
	AnthropicAPIKey string `env:"ANTHROPIC_API_KEY" env-default:""`

	// PostgreSQL URL for production; empty means local SQLite
	DatabaseURL string `env:"DATABASE_URL" env-default:""`

	// Path for the local SQLite database when DATABASE_URL is unset
	SQLitePath string `env:"SQLITE_PATH" env-default:"data/greekbot.db"`

	// Send scheduling
	Timezone         string `env:"TIMEZONE" env-default:"Europe/London"`
	DailyTarget      int    `env:"DAILY_TARGET" env-default:"2"`      // proactive messages per day
	ActiveHoursStart int    `env:"ACTIVE_HOURS_START" env-default:"9"` // earliest hour to send (24h)
	ActiveHoursEnd   int    `env:"ACTIVE_HOURS_END" env-default:"21"`  // latest hour to send (24h)

	// SRS tuning
	NewCardsPerDay int `env:"NEW_CARDS_PER_DAY" env-default:"10"`
	ReviewCap      int `env:"REVIEW_CAP" env-default:"50"`

	// Observability
	MetricsAddr string `env:"METRICS_ADDR" env-default:":9090"`
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first if present; real environment variables win.
func Load() (*Config, error) {
	_ = godotenv.Load() // missing .env is fine

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.ActiveHoursStart < 0 || c.ActiveHoursStart > 23 ||
		c.ActiveHoursEnd < 0 || c.ActiveHoursEnd > 24 {
		return fmt.Errorf("active hours must be within 0-24, got %d-%d", c.ActiveHoursStart, c.ActiveHoursEnd)
	}
	if c.ActiveHoursEnd <= c.ActiveHoursStart {
		return fmt.Errorf("ACTIVE_HOURS_END (%d) must be after ACTIVE_HOURS_START (%d)", c.ActiveHoursEnd, c.ActiveHoursStart)
	}
	if c.DailyTarget < 0 {
		return fmt.Errorf("DAILY_TARGET must not be negative, got %d", c.DailyTarget)
	}
	return nil
}

// Location resolves the configured timezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
