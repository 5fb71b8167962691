// Package config builds the process configuration once at startup.
// Components receive *Config (or the pieces they need) through their
// constructors and never read the environment themselves.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	WhatsAppModeCloud  = "cloud"
	WhatsAppModeDevice = "device"
)

type Config struct {
	Port  string
	Debug bool

	// Storage: Postgres when DatabaseURL is set, SQLite otherwise.
	DatabaseURL string
	SQLitePath  string

	// Generative backend (Gemini through its OpenAI-compatible endpoint).
	GeminiAPIKey  string
	GeminiBaseURL string
	GeminiModel   string

	// NLU engine (Rasa REST channel).
	RasaBaseURL string

	WhatsAppMode          string
	WhatsAppPhoneNumberID string
	WhatsAppCloudToken    string
	WhatsAppVerifyToken   string
	WhatsAppAPIVersion    string
	WhatsAppDeviceStore   string

	TelegramBotToken string
	TelegramPolling  bool

	// Admin API. Auth is enforced only when JWTSecret is set.
	JWTSecret     string
	AdminUsername string
	AdminPassword string

	HTTPTimeout          time.Duration // per outbound call
	TaskTimeout          time.Duration // per background task
	Workers              int
	QueueSize            int
	BroadcastConcurrency int

	LogToFile    bool
	LogDir       string
	LogMaxSizeMB int
}

// Load reads .env (if present) and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:                  getEnv("PORT", "8000"),
		Debug:                 getBool("DEBUG", false),
		DatabaseURL:           os.Getenv("DATABASE_URL"),
		SQLitePath:            getEnv("SQLITE_DB", "subscribers.db"),
		GeminiAPIKey:          getEnv("GOOGLE_API_KEY", os.Getenv("GEMINI_API_KEY")),
		GeminiBaseURL:         getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta/openai/"),
		GeminiModel:           getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		RasaBaseURL:           strings.TrimRight(getEnv("RASA_BASE_URL", "http://localhost:5005"), "/"),
		WhatsAppMode:          strings.ToLower(getEnv("WHATSAPP_MODE", WhatsAppModeCloud)),
		WhatsAppPhoneNumberID: os.Getenv("WHATSAPP_PHONE_NUMBER_ID"),
		WhatsAppCloudToken:    os.Getenv("WHATSAPP_CLOUD_TOKEN"),
		WhatsAppVerifyToken:   os.Getenv("WHATSAPP_VERIFY_TOKEN"),
		WhatsAppAPIVersion:    getEnv("WHATSAPP_API_VERSION", "v18.0"),
		WhatsAppDeviceStore:   getEnv("WHATSAPP_DEVICE_STORE", "devices/whatsapp.db"),
		TelegramBotToken:      os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramPolling:       getBool("TELEGRAM_POLLING", false),
		JWTSecret:             os.Getenv("JWT_SECRET"),
		AdminUsername:         getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword:         os.Getenv("ADMIN_PASSWORD"),
		LogToFile:             getBool("LOG_TO_FILE", false),
		LogDir:                getEnv("LOG_DIR", "logs"),
	}

	var err error
	if cfg.HTTPTimeout, err = getDuration("HTTP_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.TaskTimeout, err = getDuration("TASK_TIMEOUT", 45*time.Second); err != nil {
		return nil, err
	}
	if cfg.Workers, err = getInt("WORKERS", 4); err != nil {
		return nil, err
	}
	if cfg.QueueSize, err = getInt("QUEUE_SIZE", 256); err != nil {
		return nil, err
	}
	if cfg.BroadcastConcurrency, err = getInt("BROADCAST_CONCURRENCY", 8); err != nil {
		return nil, err
	}
	if cfg.LogMaxSizeMB, err = getInt("LOG_MAX_SIZE_MB", 10); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the process cannot run with. Missing
// credentials are not errors: the affected stage or channel degrades.
func (c *Config) Validate() error {
	if c.WhatsAppMode != WhatsAppModeCloud && c.WhatsAppMode != WhatsAppModeDevice {
		return fmt.Errorf("WHATSAPP_MODE must be %q or %q, got %q", WhatsAppModeCloud, WhatsAppModeDevice, c.WhatsAppMode)
	}
	if c.Workers < 1 || c.QueueSize < 1 || c.BroadcastConcurrency < 1 {
		return fmt.Errorf("WORKERS, QUEUE_SIZE and BROADCAST_CONCURRENCY must be positive")
	}
	if c.HTTPTimeout <= 0 || c.TaskTimeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT and TASK_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) AIConfigured() bool { return c.GeminiAPIKey != "" }

func (c *Config) WhatsAppCloudConfigured() bool {
	return c.WhatsAppPhoneNumberID != "" && c.WhatsAppCloudToken != ""
}

func (c *Config) AdminAuthEnabled() bool { return c.JWTSecret != "" }

func (c *Config) UsePostgres() bool { return c.DatabaseURL != "" }

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getInt(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

// getDuration accepts Go durations ("10s") or plain seconds ("10").
func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
