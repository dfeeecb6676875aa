// Package app wires configuration, persistence, the AI coach and the service together.
package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"lifelog-coach/internal/coach"
	"lifelog-coach/internal/config"
	"lifelog-coach/internal/demo"
	"lifelog-coach/internal/llm"
	"lifelog-coach/internal/model"
	"lifelog-coach/internal/scheduler"
	"lifelog-coach/internal/service"
	"lifelog-coach/internal/storage"
	"lifelog-coach/internal/store"
)

// App owns the long-lived components of one process.
type App struct {
	Config    *config.Config
	Store     *store.Store
	Service   *service.Service
	Scheduler *scheduler.Scheduler
	Journal   *storage.FileRecorder

	debouncer *scheduler.Debouncer
	closeKV   func() error
}

// New builds every component from cfg. The scheduler is created but not started.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	loc := cfg.Location()

	kv, closeKV, err := openKV(cfg)
	if err != nil {
		return nil, err
	}

	opts := store.Options{Version: cfg.StateVersion, Location: loc}
	if cfg.SeedDemoData {
		opts.Seed = demo.Seed
	}
	st, err := store.Open(ctx, kv, opts)
	if err != nil {
		_ = closeKV()
		return nil, fmt.Errorf("failed to open state store: %w", err)
	}

	journal, err := storage.NewFileRecorder(cfg.AIJournalPath)
	if err != nil {
		_ = closeKV()
		return nil, fmt.Errorf("failed to open AI journal: %w", err)
	}

	client := newLLMClient(cfg)
	c := coach.New(client,
		coach.WithRecorder(journal),
		coach.WithLocation(loc),
		coach.WithLanguage(cfg.CoachLanguage),
	)

	var deb *scheduler.Debouncer
	if cfg.AutoFeedback {
		deb = scheduler.NewDebouncer(context.Background(), cfg.AutoFeedbackDelay)
	}

	svc := service.New(st, c, service.Options{
		UserID:        cfg.UserID,
		MaxImageBytes: cfg.MaxImageBytes,
		AIEnabled:     client != nil,
		Seed:          demo.Seed,
		AutoFeedback:  deb,
	})

	sched := scheduler.New(loc, cfg.MorningCron, cfg.EveningCron)
	sched.SetFeedbackFunction(svc.ScheduledFeedback)

	return &App{
		Config:    cfg,
		Store:     st,
		Service:   svc,
		Scheduler: sched,
		Journal:   journal,
		debouncer: deb,
		closeKV:   closeKV,
	}, nil
}

func openKV(cfg *config.Config) (storage.KV, func() error, error) {
	switch cfg.StorageBackend {
	case config.BackendSQLite:
		if err := ensureDir(cfg.SQLitePath); err != nil {
			return nil, nil, err
		}
		kv, err := storage.NewSQLiteKV(cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open sqlite storage: %w", err)
		}
		log.Printf("✅ Using SQLite storage at %s", cfg.SQLitePath)
		return kv, kv.Close, nil
	default:
		if err := ensureDir(cfg.StateFilePath); err != nil {
			return nil, nil, err
		}
		kv, err := storage.NewFileKV(cfg.StateFilePath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open file storage: %w", err)
		}
		log.Printf("✅ Using file storage at %s", cfg.StateFilePath)
		return kv, func() error { return nil }, nil
	}
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	return nil
}

// newLLMClient returns nil when the selected provider has no credentials; the coach then
// answers with its fallbacks and pattern analysis runs locally.
func newLLMClient(cfg *config.Config) llm.Client {
	if !cfg.AIConfigured() {
		log.Printf("⚠️ No credentials for LLM provider %q, AI coaching disabled", cfg.LLMProvider)
		return nil
	}
	client, err := llm.NewClient(cfg)
	if err != nil {
		log.Printf("⚠️ Failed to create LLM client: %v", err)
		return nil
	}
	log.Printf("🤖 LLM provider: %s", cfg.LLMProvider)
	return client
}

// StartScheduler starts the cron jobs. notify, when set, receives each scheduled feedback.
func (a *App) StartScheduler(notify func(model.Feedback)) error {
	if notify != nil {
		a.Scheduler.SetFeedbackFunction(func(ctx context.Context, kind model.FeedbackKind) error {
			if err := a.Service.ScheduledFeedback(ctx, kind); err != nil {
				return err
			}
			for _, f := range a.Store.FeedbackByDate(a.Service.Today()) {
				if f.Kind == kind {
					notify(f)
					break
				}
			}
			return nil
		})
	}
	return a.Scheduler.Start()
}

// Close stops background work and releases storage.
func (a *App) Close() error {
	a.Scheduler.Stop()
	if a.debouncer != nil {
		a.debouncer.Stop()
	}
	return a.closeKV()
}
