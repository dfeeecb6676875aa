// Package service exposes the operations the front ends call: logging, feedback,
// insights, food analysis, exports and profile management.
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"lifelog-coach/internal/model"
	"lifelog-coach/internal/scheduler"
	"lifelog-coach/internal/store"
)

const defaultMaxImageBytes = 10 << 20

// Coach is the AI side of the service. Implementations return fallbacks instead of errors.
type Coach interface {
	DailyFeedback(ctx context.Context, records []model.EventRecord, kind model.FeedbackKind, userID, date string) model.Feedback
	AnalyzePatterns(ctx context.Context, userID string, records []model.EventRecord) model.Analysis
	AnalyzeFood(ctx context.Context, userID string, image []byte, mimeType string) model.NutritionResult
}

type Options struct {
	// UserID is the fixed identifier of the local session.
	UserID        string
	MaxImageBytes int64
	// AIEnabled false sends pattern analysis straight to the local analyzer.
	AIEnabled bool
	Now       func() time.Time
	// Seed builds the state loaded by LoadDemo.
	Seed store.Seeder
	// AutoFeedback, when set, requests the current slot's feedback shortly after a log for today.
	AutoFeedback *scheduler.Debouncer
}

type Service struct {
	store *store.Store
	coach Coach
	opts  Options

	mu       sync.Mutex
	inflight map[string]bool
}

func New(st *store.Store, coach Coach, opts Options) *Service {
	if opts.UserID == "" {
		opts.UserID = "user-1"
	}
	if opts.MaxImageBytes <= 0 {
		opts.MaxImageBytes = defaultMaxImageBytes
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		store:    st,
		coach:    coach,
		opts:     opts,
		inflight: make(map[string]bool),
	}
}

func (s *Service) UserID() string { return s.opts.UserID }

// Location is the zone all calendar days are evaluated in.
func (s *Service) Location() *time.Location { return s.store.Location() }

func (s *Service) now() time.Time {
	return s.opts.Now().In(s.store.Location())
}

// Today is the current calendar day in the store's location.
func (s *Service) Today() string {
	return model.FormatDate(s.now())
}

// LogInput is a new record as submitted by a front end.
type LogInput struct {
	UserID   string         `json:"userId"`
	Date     string         `json:"date"`
	Kind     model.Kind     `json:"type"`
	Value    float64        `json:"value"`
	Metadata model.Metadata `json:"metadata"`
}

func validateValue(kind model.Kind, value float64, meta model.Metadata) error {
	if math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
		return invalid("value", "must be a non-negative number")
	}
	if meta.Payload != nil && meta.Payload.PayloadKind() != kind {
		return invalid("metadata", "%s fields do not belong to a %s record", meta.Payload.PayloadKind(), kind)
	}
	switch kind {
	case model.KindSleep:
		if value > 24 {
			return invalid("value", "sleep is measured in hours (0-24)")
		}
	case model.KindMood:
		if score := meta.Mood().MoodScore; score < 0 || score > 5 {
			return invalid("metadata.moodScore", "must be between 1 and 5")
		}
		if meta.Mood().MoodScore == 0 && (value < 1 || value > 5) {
			return invalid("value", "mood is a score between 1 and 5")
		}
	}
	return nil
}

// SubmitLog validates and stores a new record. A record for today schedules the
// automatic feedback of the current slot.
func (s *Service) SubmitLog(ctx context.Context, in LogInput) (model.EventRecord, error) {
	if !in.Kind.Valid() {
		return model.EventRecord{}, invalid("type", "unknown record type %q", in.Kind)
	}
	if in.Date == "" {
		in.Date = s.store.SelectedDate()
	}
	if !model.ValidDate(in.Date) {
		return model.EventRecord{}, invalid("date", "must be YYYY-MM-DD")
	}
	if in.UserID == "" {
		in.UserID = s.opts.UserID
	}
	if err := validateValue(in.Kind, in.Value, in.Metadata); err != nil {
		return model.EventRecord{}, err
	}

	r := s.store.AddRecord(ctx, model.EventRecord{
		UserID:   in.UserID,
		Date:     in.Date,
		Kind:     in.Kind,
		Value:    in.Value,
		Metadata: in.Metadata,
	})
	log.Printf("✅ %s record %s logged for %s", r.Kind, r.ID, r.Date)

	if r.Date == s.Today() && s.opts.AutoFeedback != nil {
		s.opts.AutoFeedback.Trigger(func(ctx context.Context) {
			if _, _, err := s.AutoFeedback(ctx); err != nil && !errors.Is(err, ErrFeedbackInFlight) {
				log.Printf("⚠️ automatic feedback failed: %v", err)
			}
		})
	}
	return r, nil
}

func (s *Service) UpdateLog(ctx context.Context, id string, patch store.RecordPatch) (model.EventRecord, error) {
	current, err := s.store.Record(id)
	if err != nil {
		return model.EventRecord{}, fmt.Errorf("update log: %w", err)
	}
	next := current
	if patch.Date != nil {
		if !model.ValidDate(*patch.Date) {
			return model.EventRecord{}, invalid("date", "must be YYYY-MM-DD")
		}
		next.Date = *patch.Date
	}
	if patch.Kind != nil {
		if !patch.Kind.Valid() {
			return model.EventRecord{}, invalid("type", "unknown record type %q", *patch.Kind)
		}
		next.Kind = *patch.Kind
	}
	if patch.Value != nil {
		next.Value = *patch.Value
	}
	if patch.Metadata != nil {
		next.Metadata = *patch.Metadata
	}
	if err := validateValue(next.Kind, next.Value, next.Metadata); err != nil {
		return model.EventRecord{}, err
	}
	return s.store.UpdateRecord(ctx, id, patch)
}

// Log returns the stored record with id.
func (s *Service) Log(id string) (model.EventRecord, error) {
	return s.store.Record(id)
}

func (s *Service) DeleteLog(ctx context.Context, id string) error {
	return s.store.DeleteRecord(ctx, id)
}

// Logs returns the stored records, optionally restricted to a date and a kind.
func (s *Service) Logs(date string, kind model.Kind) ([]model.EventRecord, error) {
	if date != "" && !model.ValidDate(date) {
		return nil, invalid("date", "must be YYYY-MM-DD")
	}
	if kind != "" && !kind.Valid() {
		return nil, invalid("type", "unknown record type %q", kind)
	}
	switch {
	case date == "" && kind == "":
		return s.store.Records(), nil
	case date == "":
		return s.store.RecordsByKind(kind), nil
	}
	records := s.store.RecordsByDate(date)
	if kind == "" {
		return records, nil
	}
	out := []model.EventRecord{}
	for _, r := range records {
		if r.Kind == kind {
			out = append(out, r)
		}
	}
	return out, nil
}

// Feedbacks returns stored feedback, optionally for one date.
func (s *Service) Feedbacks(date string) ([]model.Feedback, error) {
	if date == "" {
		return s.store.Feedbacks(), nil
	}
	if !model.ValidDate(date) {
		return nil, invalid("date", "must be YYYY-MM-DD")
	}
	return s.store.FeedbackByDate(date), nil
}

func (s *Service) LatestFeedback(kind model.FeedbackKind) (model.Feedback, bool, error) {
	if !kind.Valid() {
		return model.Feedback{}, false, invalid("type", "unknown feedback type %q", kind)
	}
	f, ok := s.store.LatestFeedback(kind)
	return f, ok, nil
}

func (s *Service) View() store.View { return s.store.View() }

func (s *Service) SetView(v store.View) error {
	if err := s.store.SetView(v); err != nil {
		return invalid("view", "%v", err)
	}
	return nil
}

func (s *Service) SelectedDate() string { return s.store.SelectedDate() }

func (s *Service) SetSelectedDate(date string) error {
	if err := s.store.SetSelectedDate(date); err != nil {
		return invalid("date", "must be YYYY-MM-DD")
	}
	return nil
}

// ClearAll removes every record, feedback and the profile.
func (s *Service) ClearAll(ctx context.Context) {
	s.store.Clear(ctx)
	log.Println("⚠️ all local data cleared")
}

// LoadDemo replaces the state with freshly dated demo data.
func (s *Service) LoadDemo(ctx context.Context) error {
	if s.opts.Seed == nil {
		return invalid("", "demo data is not available")
	}
	s.store.Replace(ctx, s.opts.Seed(s.opts.Now(), s.store.Location()))
	log.Println("✅ demo data loaded")
	return nil
}
