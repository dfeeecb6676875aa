package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.UserID != "user-1" || cfg.StateVersion != "v3" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.MaxImageBytes != 10<<20 {
		t.Fatalf("want 10MiB image limit, got %d", cfg.MaxImageBytes)
	}
	if cfg.AutoFeedbackDelay != time.Second {
		t.Fatalf("want 1s delay, got %v", cfg.AutoFeedbackDelay)
	}
	if cfg.Location().String() != "Asia/Seoul" {
		t.Fatalf("unexpected zone %v", cfg.Location())
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "yandex")
	t.Setenv("YANDEX_OAUTH_TOKEN", "tok")
	t.Setenv("YANDEX_FOLDER_ID", "folder")
	t.Setenv("STORAGE_BACKEND", "sqlite")
	t.Setenv("AUTO_FEEDBACK_DELAY", "250ms")
	t.Setenv("TELEGRAM_ALLOWED_USERS", "10,20")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !cfg.AIConfigured() {
		t.Fatalf("yandex credentials should count as configured")
	}
	if cfg.StorageBackend != BackendSQLite || cfg.AutoFeedbackDelay != 250*time.Millisecond {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if len(cfg.TelegramAllowedUsers) != 2 || cfg.TelegramAllowedUsers[1] != 20 {
		t.Fatalf("allowed users not split: %v", cfg.TelegramAllowedUsers)
	}
}

func TestLoad_RejectsUnknownValues(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "gemini")
	if _, err := Load(); err == nil {
		t.Fatalf("want error for unknown provider")
	}
	t.Setenv("LLM_PROVIDER", "openai")
	t.Setenv("TIME_ZONE", "Mars/Olympus")
	if _, err := Load(); err == nil {
		t.Fatalf("want error for bad zone")
	}
}
