package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"lifelog-coach/internal/model"
)

// FeedbackFunc produces the daily feedback of one slot.
type FeedbackFunc func(ctx context.Context, kind model.FeedbackKind) error

// Scheduler runs the morning and evening feedback jobs.
type Scheduler struct {
	cron         *cron.Cron
	ctx          context.Context
	cancel       context.CancelFunc
	morningSpec  string
	eveningSpec  string
	feedbackFunc FeedbackFunc
}

// New creates a scheduler whose cron specs are evaluated in loc.
func New(loc *time.Location, morningSpec, eveningSpec string) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:        cron.New(cron.WithLocation(loc)),
		ctx:         ctx,
		cancel:      cancel,
		morningSpec: morningSpec,
		eveningSpec: eveningSpec,
	}
}

// SetFeedbackFunction sets the job run for each slot.
func (s *Scheduler) SetFeedbackFunction(f FeedbackFunc) {
	s.feedbackFunc = f
}

// Start registers the jobs and starts the cron loop. Without a feedback function it does nothing.
func (s *Scheduler) Start() error {
	if s.feedbackFunc == nil {
		log.Println("⚠️ Feedback function not set, scheduler will not generate feedback")
		return nil
	}

	for _, job := range []struct {
		spec string
		kind model.FeedbackKind
	}{
		{s.morningSpec, model.FeedbackMorning},
		{s.eveningSpec, model.FeedbackEvening},
	} {
		if job.spec == "" {
			continue
		}
		kind := job.kind
		if _, err := s.cron.AddFunc(job.spec, func() { s.run(kind) }); err != nil {
			return fmt.Errorf("schedule %s feedback %q: %w", kind, job.spec, err)
		}
	}

	s.cron.Start()
	log.Printf("📅 Scheduler started - morning %q, evening %q", s.morningSpec, s.eveningSpec)
	return nil
}

func (s *Scheduler) run(kind model.FeedbackKind) {
	log.Printf("🕘 Triggered %s feedback", kind)
	if err := s.feedbackFunc(s.ctx, kind); err != nil {
		log.Printf("❌ Scheduled %s feedback failed: %v", kind, err)
	}
}

// Stop cancels running jobs and waits for them to return.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
	}
	log.Println("📅 Scheduler stopped")
}

// IsRunning reports whether any job is registered.
func (s *Scheduler) IsRunning() bool {
	return s.cron != nil && len(s.cron.Entries()) > 0
}
