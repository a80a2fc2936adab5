package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// AppConfig holds all configuration for the application
type AppConfig struct {
	DBDriver    string `env:"DB_DRIVER" envDefault:"sqlite3"` // postgres | sqlite3
	DatabaseURL string `env:"DATABASE_URL" envDefault:"launches.db"`

	LaunchLibraryBaseURL string        `env:"LL_BASE_URL" envDefault:"https://ll.thespacedevs.com"`
	LaunchesPath         string        `env:"LL_LAUNCHES_PATH" envDefault:"/2.2.0/launch/upcoming/"`
	LaunchLibraryAPIKey  string        `env:"LL_API_KEY"`
	HTTPTimeout          time.Duration `env:"HTTP_TIMEOUT" envDefault:"15s"`

	Timezone     string        `env:"TIMEZONE" envDefault:"UTC"`
	CronSpec     string        `env:"CRON_SPEC" envDefault:"*/1 * * * *"`
	CycleTimeout time.Duration `env:"CYCLE_TIMEOUT" envDefault:"50s"`

	SMTPHost           string   `env:"SMTP_HOST"`
	SMTPPort           int      `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser           string   `env:"SMTP_USER"`
	SMTPPassword       string   `env:"SMTP_PASSWORD"`
	MailFrom           string   `env:"MAIL_FROM"`
	MailRecipients     []string `env:"MAIL_RECIPIENTS" envSeparator:","`
	MailRecipientsFile string   `env:"MAIL_RECIPIENTS_FILE"`

	TelegramToken string `env:"TELEGRAM_TOKEN"`

	MetricsAddr string `env:"METRICS_ADDR"`

	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogFile     string `env:"LOG_FILE"`
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.Environment = strings.ToLower(cfg.Environment)
	cfg.DBDriver = strings.ToLower(cfg.DBDriver)

	switch cfg.DBDriver {
	case "postgres", "sqlite3":
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q (want postgres or sqlite3)", cfg.DBDriver)
	}

	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}

	if cfg.MailRecipientsFile != "" {
		fromFile, err := LoadRecipients(cfg.MailRecipientsFile)
		if err != nil {
			return nil, err
		}
		cfg.MailRecipients = append(cfg.MailRecipients, fromFile...)
	}
	cfg.MailRecipients = normalizeRecipients(cfg.MailRecipients)

	if cfg.SMTPHost != "" && cfg.MailFrom == "" {
		cfg.MailFrom = cfg.SMTPUser
	}

	return cfg, nil
}

// Location returns the configured time zone. Load has already validated it.
func (c *AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// MailEnabled reports whether the SMTP channel has enough settings to send.
func (c *AppConfig) MailEnabled() bool {
	return c.SMTPHost != "" && c.MailFrom != "" && len(c.MailRecipients) > 0
}

// TelegramEnabled reports whether the bot and the Telegram channel should run.
func (c *AppConfig) TelegramEnabled() bool {
	return c.TelegramToken != ""
}

type recipientsFile struct {
	Emails []string `yaml:"emails"`
}

// LoadRecipients reads a YAML file of the form:
//
//	emails:
//	  - ops@example.com
//	  - launches@example.com
func LoadRecipients(path string) ([]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read recipients file: %w", err)
	}
	var rf recipientsFile
	if err := yaml.Unmarshal(b, &rf); err != nil {
		return nil, fmt.Errorf("failed to parse recipients file %s: %w", path, err)
	}
	return rf.Emails, nil
}

func normalizeRecipients(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, r := range in {
		r = strings.TrimSpace(r)
		if r == "" || seen[strings.ToLower(r)] {
			continue
		}
		seen[strings.ToLower(r)] = true
		out = append(out, r)
	}
	return out
}
