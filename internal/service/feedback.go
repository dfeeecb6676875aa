package service

import (
	"context"
	"errors"
	"log"
	"strings"

	"lifelog-coach/internal/analyzer"
	"lifelog-coach/internal/model"
)

func inflightKey(date string, kind model.FeedbackKind) string {
	return date + "|" + string(kind)
}

func (s *Service) begin(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inflight[key] {
		return false
	}
	s.inflight[key] = true
	return true
}

func (s *Service) end(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, key)
}

func (s *Service) existingFeedback(date string, kind model.FeedbackKind) (model.Feedback, bool) {
	for _, f := range s.store.FeedbackByDate(date) {
		if f.Kind == kind {
			return f, true
		}
	}
	return model.Feedback{}, false
}

// RequestDailyFeedback returns the morning or evening feedback for date, generating and
// storing it once. An existing feedback for the slot is returned as is; a concurrent
// request for the same slot fails with ErrFeedbackInFlight. A cancelled ctx stores nothing.
func (s *Service) RequestDailyFeedback(ctx context.Context, date string, kind model.FeedbackKind) (model.Feedback, error) {
	if !kind.Daily() {
		return model.Feedback{}, invalid("type", "must be morning or evening")
	}
	if date == "" {
		date = s.Today()
	}
	if !model.ValidDate(date) {
		return model.Feedback{}, invalid("date", "must be YYYY-MM-DD")
	}
	if f, ok := s.existingFeedback(date, kind); ok {
		return f, nil
	}
	return s.generateFeedback(ctx, date, kind)
}

// generateFeedback runs the coach for one slot under the in-flight guard.
func (s *Service) generateFeedback(ctx context.Context, date string, kind model.FeedbackKind) (model.Feedback, error) {
	key := inflightKey(date, kind)
	if !s.begin(key) {
		return model.Feedback{}, ErrFeedbackInFlight
	}
	defer s.end(key)
	// A request that finished between the first check and begin has already stored it.
	if f, ok := s.existingFeedback(date, kind); ok {
		return f, nil
	}

	log.Printf("🤖 requesting %s feedback for %s", kind, date)
	fb := s.coach.DailyFeedback(ctx, s.store.Records(), kind, s.opts.UserID, date)
	if err := ctx.Err(); err != nil {
		return model.Feedback{}, err
	}
	stored, added := s.store.AddFeedbackIfAbsent(ctx, fb)
	if added {
		log.Printf("✅ %s feedback stored for %s", kind, date)
	}
	return stored, nil
}

// PreviewDailyFeedback runs the coach over caller-supplied records without touching the
// store or the in-flight guard.
func (s *Service) PreviewDailyFeedback(ctx context.Context, records []model.EventRecord, date string, kind model.FeedbackKind) (model.Feedback, error) {
	if kind != model.FeedbackEvening {
		kind = model.FeedbackMorning
	}
	if date == "" {
		date = s.Today()
	}
	if !model.ValidDate(date) {
		return model.Feedback{}, invalid("date", "must be YYYY-MM-DD")
	}
	return s.coach.DailyFeedback(ctx, records, kind, s.opts.UserID, date), nil
}

// CurrentSlot is the daily slot for the current local time.
func (s *Service) CurrentSlot() model.FeedbackKind {
	return model.SlotAt(s.now())
}

// AutoFeedback requests today's feedback for the current slot when today has records and
// the slot is still empty. The bool reports whether a request was made.
func (s *Service) AutoFeedback(ctx context.Context) (model.Feedback, bool, error) {
	now := s.now()
	today := model.FormatDate(now)
	kind := model.SlotAt(now)
	if len(s.store.RecordsByDate(today)) == 0 || s.store.HasFeedback(today, kind) {
		return model.Feedback{}, false, nil
	}
	f, err := s.RequestDailyFeedback(ctx, today, kind)
	if err != nil {
		return model.Feedback{}, false, err
	}
	return f, true, nil
}

// ScheduledFeedback is the cron job body: today's feedback of kind, skipping days
// with nothing logged.
func (s *Service) ScheduledFeedback(ctx context.Context, kind model.FeedbackKind) error {
	today := s.Today()
	if len(s.store.RecordsByDate(today)) == 0 {
		log.Printf("⚠️ no records for %s, skipping %s feedback", today, kind)
		return nil
	}
	_, err := s.RequestDailyFeedback(ctx, today, kind)
	if errors.Is(err, ErrFeedbackInFlight) {
		return nil
	}
	return err
}

// RequestPatternAnalysis analyses records with the AI coach. When the remote call cannot
// be attempted (no records, or no AI backend configured) the local analyzer answers.
func (s *Service) RequestPatternAnalysis(ctx context.Context, records []model.EventRecord) model.Analysis {
	if len(records) == 0 || !s.opts.AIEnabled {
		log.Printf("⚠️ pattern analysis served locally (%d records, ai=%t)", len(records), s.opts.AIEnabled)
		return analyzer.AnalyzeLocal(records, s.now())
	}
	return s.coach.AnalyzePatterns(ctx, s.opts.UserID, records)
}

// Insights is the weekly view: statistics plus a pattern analysis of all stored records.
type Insights struct {
	Stats    model.WeeklyStats `json:"stats"`
	Analysis model.Analysis    `json:"analysis"`
	Feedback *model.Feedback   `json:"feedback,omitempty"`
}

// Insights runs the pattern analysis over the stored records. With save set, the result is
// also stored as a morning feedback for the selected date.
func (s *Service) Insights(ctx context.Context, save bool) (Insights, error) {
	records := s.store.Records()
	out := Insights{
		Stats:    analyzer.WeeklyStats(records, s.now()),
		Analysis: s.RequestPatternAnalysis(ctx, records),
	}
	if err := ctx.Err(); err != nil {
		return Insights{}, err
	}
	if save && len(records) > 0 {
		a := out.Analysis
		f := s.store.AddFeedback(ctx, model.Feedback{
			UserID:        s.opts.UserID,
			Date:          s.store.SelectedDate(),
			Kind:          model.FeedbackMorning,
			Content:       strings.Join(a.Patterns, " "),
			Factors:       a.Factors,
			Prescriptions: a.Recommendations,
		})
		out.Feedback = &f
	}
	return out, nil
}

func (s *Service) WeeklyStats() model.WeeklyStats {
	return analyzer.WeeklyStats(s.store.Records(), s.now())
}
