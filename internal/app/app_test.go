package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"lifelog-coach/internal/config"
	"lifelog-coach/internal/model"
	"lifelog-coach/internal/service"
)

func testConfig(t *testing.T, backend config.StorageBackend) *config.Config {
	dir := t.TempDir()
	return &config.Config{
		UserID:            "user-1",
		TimeZone:          "Asia/Seoul",
		LLMProvider:       config.ProviderOpenAI,
		StorageBackend:    backend,
		StateFilePath:     filepath.Join(dir, "state", "lifelog.json"),
		SQLitePath:        filepath.Join(dir, "db", "lifelog.db"),
		StateVersion:      "v3",
		AIJournalPath:     filepath.Join(dir, "logs", "ai.jsonl"),
		MaxImageBytes:     10 << 20,
		MorningCron:       "0 8 * * *",
		EveningCron:       "0 21 * * *",
		AutoFeedbackDelay: time.Second,
	}
}

func TestNew_PersistsAcrossRestarts(t *testing.T) {
	for _, backend := range []config.StorageBackend{config.BackendFile, config.BackendSQLite} {
		t.Run(string(backend), func(t *testing.T) {
			cfg := testConfig(t, backend)
			ctx := context.Background()

			a, err := New(ctx, cfg)
			if err != nil {
				t.Fatalf("new: %v", err)
			}
			if _, err := a.Service.SubmitLog(ctx, service.LogInput{Kind: model.KindWeight, Value: 70.2}); err != nil {
				t.Fatalf("submit: %v", err)
			}
			if err := a.Close(); err != nil {
				t.Fatalf("close: %v", err)
			}

			b, err := New(ctx, cfg)
			if err != nil {
				t.Fatalf("reopen: %v", err)
			}
			defer b.Close()
			logs, _ := b.Service.Logs("", model.KindWeight)
			if len(logs) != 1 || logs[0].Value != 70.2 {
				t.Fatalf("record lost across restart: %+v", logs)
			}
		})
	}
}

func TestNew_WithoutCredentialsFallsBack(t *testing.T) {
	cfg := testConfig(t, config.BackendFile)
	ctx := context.Background()
	a, err := New(ctx, cfg)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer a.Close()

	if _, err := a.Service.SubmitLog(ctx, service.LogInput{Kind: model.KindSleep, Value: 5}); err != nil {
		t.Fatal(err)
	}
	f, err := a.Service.RequestDailyFeedback(ctx, "", model.FeedbackEvening)
	if err != nil {
		t.Fatalf("feedback: %v", err)
	}
	if f.Content != "Great work today! Get plenty of rest for tomorrow." {
		t.Fatalf("want evening default without AI, got %q", f.Content)
	}
	events, err := a.Journal.LoadInteractions()
	if err != nil || len(events) != 1 || !events[0].Fallback {
		t.Fatalf("fallback should be journaled: %+v %v", events, err)
	}
}

func TestNew_SeedsDemoData(t *testing.T) {
	cfg := testConfig(t, config.BackendFile)
	cfg.SeedDemoData = true
	a, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer a.Close()
	if logs, _ := a.Service.Logs("", ""); len(logs) == 0 {
		t.Fatalf("demo data not seeded")
	}
	if _, err := a.Service.Profile(); err != nil {
		t.Fatalf("demo profile missing: %v", err)
	}
}
