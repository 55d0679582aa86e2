package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"dropwatch/models"
)

// Config holds all process-wide settings. It is built once in main and
// passed into constructors; nothing reads the environment after startup.
type Config struct {
	DatabaseURL string

	// Plausible price range for extracted candidates. Anything outside is
	// rejected as a false detection (EMI amounts, review counts, SKUs).
	Bounds models.Bounds

	// Trailing window for the rolling low shown in price-drop alerts.
	RollingWindow time.Duration

	// Pause between two product checks in a scheduled run.
	PacingDelay time.Duration

	// Cron expression for the scheduled check loop (with seconds field).
	CheckSchedule string

	// ProductsFile is the JSON or YAML file seeding the tracked list.
	ProductsFile string

	// HistoryRetentionDays prunes observations older than N days once a day.
	// Zero keeps the history forever.
	HistoryRetentionDays int

	CSVPath   string
	GraphsDir string

	Telegram TelegramConfig
	Email    EmailConfig
	Fetch    FetchConfig
	Flipkart FlipkartConfig
	API      APIConfig
}

// TelegramConfig wires the bot used for alert delivery.
type TelegramConfig struct {
	BotToken string
	ChatID   string
}

// Enabled reports whether Telegram delivery is configured.
func (t TelegramConfig) Enabled() bool {
	return t.BotToken != "" && t.ChatID != ""
}

// EmailConfig wires the optional SMTP alert channel.
type EmailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       string
}

// Enabled reports whether e-mail delivery is configured.
func (e EmailConfig) Enabled() bool {
	return e.Host != "" && e.From != "" && e.To != ""
}

// FetchConfig controls the HTTP fetcher.
type FetchConfig struct {
	Timeout    time.Duration
	MaxRetries int
	UserAgents []string

	// UseBrowserFallback enables the headless-browser fetch when a plain
	// GET comes back looking like a bot wall.
	UseBrowserFallback bool
}

// APIConfig controls the HTTP API surface.
type APIConfig struct {
	Host              string
	Port              string
	AllowedOrigins    []string
	RequestsPerSecond float64
}

var defaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 13_6) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
}

// Load builds the configuration from environment variables with defaults.
func Load() *Config {
	return &Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		Bounds: models.Bounds{
			Min: getEnvInt("MIN_REASONABLE_PRICE", 1000),
			Max: getEnvInt("MAX_REASONABLE_PRICE", 200000),
		},
		RollingWindow:        getEnvDuration("ROLLING_WINDOW", 30*24*time.Hour),
		PacingDelay:          getEnvDuration("PACING_DELAY", 3*time.Second),
		CheckSchedule:        getEnv("CHECK_SCHEDULE", "0 0 */12 * * *"),
		ProductsFile:         getEnv("PRODUCTS_FILE", "products.json"),
		HistoryRetentionDays: getEnvInt("HISTORY_RETENTION_DAYS", 0),
		CSVPath:              getEnv("CSV_PATH", "prices.csv"),
		GraphsDir:            getEnv("GRAPHS_DIR", "graphs"),
		Telegram: TelegramConfig{
			BotToken: os.Getenv("BOT_TOKEN"),
			ChatID:   os.Getenv("CHAT_ID"),
		},
		Email: EmailConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     getEnvInt("SMTP_PORT", 587),
			Username: os.Getenv("SMTP_USERNAME"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     os.Getenv("ALERT_EMAIL_FROM"),
			To:       os.Getenv("ALERT_EMAIL_TO"),
		},
		Fetch: FetchConfig{
			Timeout:            getEnvDuration("FETCH_TIMEOUT", 20*time.Second),
			MaxRetries:         getEnvInt("FETCH_MAX_RETRIES", 2),
			UserAgents:         getEnvList("FETCH_USER_AGENTS", defaultUserAgents),
			UseBrowserFallback: getEnvBool("FETCH_BROWSER_FALLBACK", false),
		},
		Flipkart: LoadFlipkartConfig(),
		API: APIConfig{
			Host:              getEnv("HOST", "0.0.0.0"),
			Port:              getEnv("PORT", "8080"),
			AllowedOrigins:    getEnvList("ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
			RequestsPerSecond: getEnvFloat("API_RATE_LIMIT", 5),
		},
	}
}

// Helper functions for environment variables
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}
