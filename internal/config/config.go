package config

import (
	"fmt"
	"log"
	"time"
	_ "time/tzdata"

	"github.com/caarlos0/env/v6"
)

type LLMProvider string

const (
	ProviderOpenAI LLMProvider = "openai"
	ProviderYandex LLMProvider = "yandex"
)

type StorageBackend string

const (
	BackendFile   StorageBackend = "file"
	BackendSQLite StorageBackend = "sqlite"
)

type Config struct {
	// Session
	UserID   string `env:"LIFELOG_USER_ID" envDefault:"user-1"`
	TimeZone string `env:"TIME_ZONE" envDefault:"Asia/Seoul"`

	// LLM settings
	LLMProvider      LLMProvider `env:"LLM_PROVIDER" envDefault:"openai"`
	OpenAIAPIKey     string      `env:"OPENAI_API_KEY"`
	OpenAIBaseURL    string      `env:"OPENAI_BASE_URL"`
	OpenAIModel      string      `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	ReasoningEffort  string      `env:"LLM_REASONING_EFFORT"`
	YandexOAuthToken string      `env:"YANDEX_OAUTH_TOKEN"`
	YandexFolderID   string      `env:"YANDEX_FOLDER_ID"`
	CoachLanguage    string      `env:"COACH_LANGUAGE" envDefault:"English"`

	// OpenRouter (optional)
	OpenRouterReferrer string `env:"OPENROUTER_REFERRER"`
	OpenRouterTitle    string `env:"OPENROUTER_TITLE"`

	// Storage
	StorageBackend StorageBackend `env:"STORAGE_BACKEND" envDefault:"file"`
	StateFilePath  string         `env:"STATE_FILE_PATH" envDefault:"data/lifelog-state.json"`
	SQLitePath     string         `env:"SQLITE_PATH" envDefault:"data/lifelog.db"`
	StateVersion   string         `env:"STATE_VERSION" envDefault:"v3"`
	SeedDemoData   bool           `env:"SEED_DEMO_DATA" envDefault:"false"`
	AIJournalPath  string         `env:"AI_JOURNAL_PATH" envDefault:"logs/ai.jsonl"`

	// HTTP API
	HTTPAddr      string `env:"HTTP_ADDR" envDefault:":8080"`
	MaxImageBytes int64  `env:"MAX_IMAGE_BYTES" envDefault:"10485760"`

	// Scheduling
	MorningCron       string        `env:"MORNING_CRON" envDefault:"0 8 * * *"`
	EveningCron       string        `env:"EVENING_CRON" envDefault:"0 21 * * *"`
	AutoFeedback      bool          `env:"AUTO_FEEDBACK" envDefault:"true"`
	AutoFeedbackDelay time.Duration `env:"AUTO_FEEDBACK_DELAY" envDefault:"1s"`

	// Telegram front end (optional)
	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN"`
	// Empty allows every chat.
	TelegramAllowedUsers []int64 `env:"TELEGRAM_ALLOWED_USERS" envSeparator:","`
	MessageParseMode     string  `env:"MESSAGE_PARSE_MODE" envDefault:"HTML"`
}

// Load parses the environment into a Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	switch cfg.LLMProvider {
	case ProviderOpenAI, ProviderYandex:
	default:
		return nil, fmt.Errorf("unknown LLM_PROVIDER %q", cfg.LLMProvider)
	}
	switch cfg.StorageBackend {
	case BackendFile, BackendSQLite:
	default:
		return nil, fmt.Errorf("unknown STORAGE_BACKEND %q", cfg.StorageBackend)
	}
	if _, err := time.LoadLocation(cfg.TimeZone); err != nil {
		return nil, fmt.Errorf("invalid TIME_ZONE %q: %w", cfg.TimeZone, err)
	}
	return cfg, nil
}

func New() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	return cfg
}

// Location returns the configured zone; Load has already validated it.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// AIConfigured reports whether the selected provider has credentials.
func (c *Config) AIConfigured() bool {
	switch c.LLMProvider {
	case ProviderYandex:
		return c.YandexOAuthToken != "" && c.YandexFolderID != ""
	default:
		return c.OpenAIAPIKey != ""
	}
}
