// Package store holds the session state: records, feedback and the profile, plus UI
// selection that is never persisted. Every mutation writes the state document through
// the injected storage.KV.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"lifelog-coach/internal/model"
	"lifelog-coach/internal/storage"
)

const (
	StateKey   = "lifelog-state"
	VersionKey = "lifelog-version"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrNoProfile = errors.New("profile not set")
)

// State is the persisted document.
type State struct {
	Records   []model.EventRecord `json:"records"`
	Feedbacks []model.Feedback    `json:"feedbacks"`
	Profile   *model.UserProfile  `json:"profile"`
}

// View is the active screen of the UI.
type View string

const (
	ViewHome     View = "home"
	ViewLogs     View = "logs"
	ViewInsights View = "insights"
	ViewHistory  View = "history"
	ViewProfile  View = "profile"
)

func (v View) Valid() bool {
	switch v {
	case ViewHome, ViewLogs, ViewInsights, ViewHistory, ViewProfile:
		return true
	}
	return false
}

// Seeder builds the state written after a version reset.
type Seeder func(now time.Time, loc *time.Location) State

type Options struct {
	// Version is the expected stamp; a stored stamp that differs wipes the state.
	Version string
	Seed    Seeder
	Now     func() time.Time
	// Location decides what "today" is.
	Location *time.Location
}

type Store struct {
	mu      sync.RWMutex
	kv      storage.KV
	state   State
	now     func() time.Time
	loc     *time.Location
	entropy io.Reader

	view         View
	selectedDate string
}

// RecordPatch updates the given fields of a record; nil means unchanged.
type RecordPatch struct {
	Date     *string         `json:"date,omitempty"`
	Kind     *model.Kind     `json:"type,omitempty"`
	Value    *float64        `json:"value,omitempty"`
	Metadata *model.Metadata `json:"metadata,omitempty"`
}

// Open rehydrates the store from kv. A missing or different version stamp replaces
// whatever is stored with opts.Seed (or an empty state) and writes the new stamp.
func Open(ctx context.Context, kv storage.KV, opts Options) (*Store, error) {
	s := &Store{
		kv:   kv,
		now:  opts.Now,
		loc:  opts.Location,
		view: ViewHome,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.loc == nil {
		s.loc = time.Local
	}
	s.entropy = ulid.Monotonic(rand.New(rand.NewSource(s.now().UnixNano())), 0)
	s.selectedDate = s.Today()

	stored, err := readVersion(ctx, kv)
	if err != nil {
		return nil, err
	}
	if stored != opts.Version {
		log.Printf("⚠️ state version %q does not match %q, resetting state", stored, opts.Version)
		if err := s.reset(ctx, opts); err != nil {
			return nil, err
		}
		return s, nil
	}

	raw, err := kv.Get(ctx, StateKey)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		s.state = emptyState()
	case err != nil:
		return nil, fmt.Errorf("load state: %w", err)
	default:
		var st State
		if err := json.Unmarshal(raw, &st); err != nil {
			log.Printf("❌ stored state is unreadable, resetting: %v", err)
			if err := s.reset(ctx, opts); err != nil {
				return nil, err
			}
			return s, nil
		}
		s.state = normalize(st)
	}
	log.Printf("✅ state loaded: %d records, %d feedbacks", len(s.state.Records), len(s.state.Feedbacks))
	return s, nil
}

func readVersion(ctx context.Context, kv storage.KV) (string, error) {
	raw, err := kv.Get(ctx, VersionKey)
	if errors.Is(err, storage.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load version: %w", err)
	}
	var v string
	if err := json.Unmarshal(raw, &v); err != nil {
		// unreadable stamps count as a mismatch
		return "", nil
	}
	return v, nil
}

func (s *Store) reset(ctx context.Context, opts Options) error {
	if err := s.kv.Delete(ctx, StateKey); err != nil {
		return fmt.Errorf("wipe state: %w", err)
	}
	stamp, err := json.Marshal(opts.Version)
	if err != nil {
		return err
	}
	if err := s.kv.Set(ctx, VersionKey, stamp); err != nil {
		return fmt.Errorf("write version: %w", err)
	}
	s.state = emptyState()
	if opts.Seed != nil {
		s.state = normalize(opts.Seed(s.now(), s.loc))
	}
	s.persist(ctx)
	return nil
}

func emptyState() State {
	return State{Records: []model.EventRecord{}, Feedbacks: []model.Feedback{}}
}

func normalize(st State) State {
	if st.Records == nil {
		st.Records = []model.EventRecord{}
	}
	if st.Feedbacks == nil {
		st.Feedbacks = []model.Feedback{}
	}
	return st
}

// persist writes the state document; callers hold s.mu. Failures are logged only.
func (s *Store) persist(ctx context.Context) {
	b, err := json.Marshal(s.state)
	if err != nil {
		log.Printf("❌ failed to encode state: %v", err)
		return
	}
	if err := s.kv.Set(ctx, StateKey, b); err != nil {
		log.Printf("❌ failed to persist state: %v", err)
	}
}

func (s *Store) newID(now time.Time) string {
	return ulid.MustNew(ulid.Timestamp(now), s.entropy).String()
}

// Today is the current calendar day in the store's location.
func (s *Store) Today() string {
	return model.FormatDate(s.now().In(s.loc))
}

func (s *Store) Location() *time.Location {
	return s.loc
}

// AddRecord appends r with a fresh id and the current timestamp.
func (s *Store) AddRecord(ctx context.Context, r model.EventRecord) model.EventRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	r.ID = s.newID(now)
	r.Timestamp = now
	s.state.Records = append(s.state.Records, r)
	s.persist(ctx)
	return r
}

func (s *Store) UpdateRecord(ctx context.Context, id string, patch RecordPatch) (model.EventRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.state.Records {
		if r.ID != id {
			continue
		}
		if patch.Date != nil {
			r.Date = *patch.Date
		}
		if patch.Kind != nil {
			r.Kind = *patch.Kind
		}
		if patch.Value != nil {
			r.Value = *patch.Value
		}
		if patch.Metadata != nil {
			r.Metadata = *patch.Metadata
		}
		s.state.Records[i] = r
		s.persist(ctx)
		return r, nil
	}
	return model.EventRecord{}, fmt.Errorf("update %s: %w", id, ErrNotFound)
}

func (s *Store) DeleteRecord(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.state.Records {
		if r.ID == id {
			s.state.Records = append(s.state.Records[:i:i], s.state.Records[i+1:]...)
			s.persist(ctx)
			return nil
		}
	}
	return fmt.Errorf("delete %s: %w", id, ErrNotFound)
}

// AddFeedback appends f with a fresh id and creation time.
func (s *Store) AddFeedback(ctx context.Context, f model.Feedback) model.Feedback {
	s.mu.Lock()
	defer s.mu.Unlock()
	f = s.stampFeedback(f)
	s.state.Feedbacks = append(s.state.Feedbacks, f)
	s.persist(ctx)
	return f
}

// AddFeedbackIfAbsent appends f unless a feedback of the same kind and date exists, in
// which case the existing one is returned with false.
func (s *Store) AddFeedbackIfAbsent(ctx context.Context, f model.Feedback) (model.Feedback, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.state.Feedbacks {
		if existing.Date == f.Date && existing.Kind == f.Kind {
			return existing, false
		}
	}
	f = s.stampFeedback(f)
	s.state.Feedbacks = append(s.state.Feedbacks, f)
	s.persist(ctx)
	return f, true
}

func (s *Store) stampFeedback(f model.Feedback) model.Feedback {
	now := s.now()
	f.ID = s.newID(now)
	f.CreatedAt = now
	if f.Factors == nil {
		f.Factors = []model.Factor{}
	}
	if f.Prescriptions == nil {
		f.Prescriptions = []string{}
	}
	return f
}

// SetProfile replaces the profile, filling id and creation time when missing.
func (s *Store) SetProfile(ctx context.Context, p model.UserProfile) model.UserProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == "" {
		p.ID = s.newID(s.now())
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = s.now()
	}
	s.state.Profile = &p
	s.persist(ctx)
	return p
}

func (s *Store) UpdateProfile(ctx context.Context, patch model.ProfilePatch) (model.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Profile == nil {
		return model.UserProfile{}, ErrNoProfile
	}
	p := patch.Apply(*s.state.Profile)
	s.state.Profile = &p
	s.persist(ctx)
	return p, nil
}

// Clear drops all records, feedback and the profile and resets the selected date.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = emptyState()
	s.selectedDate = s.Today()
	s.persist(ctx)
}

// Replace swaps in a whole state document, e.g. demo data.
func (s *Store) Replace(ctx context.Context, st State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = normalize(st)
	s.persist(ctx)
}

// Snapshot returns a copy of the persisted part of the state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := State{
		Records:   append([]model.EventRecord{}, s.state.Records...),
		Feedbacks: append([]model.Feedback{}, s.state.Feedbacks...),
	}
	if s.state.Profile != nil {
		p := *s.state.Profile
		st.Profile = &p
	}
	return st
}

func (s *Store) Records() []model.EventRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.EventRecord{}, s.state.Records...)
}

func (s *Store) Record(id string) (model.EventRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.state.Records {
		if r.ID == id {
			return r, nil
		}
	}
	return model.EventRecord{}, ErrNotFound
}

func (s *Store) RecordsByDate(date string) []model.EventRecord {
	return s.filterRecords(func(r model.EventRecord) bool { return r.Date == date })
}

func (s *Store) RecordsByKind(kind model.Kind) []model.EventRecord {
	return s.filterRecords(func(r model.EventRecord) bool { return r.Kind == kind })
}

func (s *Store) filterRecords(keep func(model.EventRecord) bool) []model.EventRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []model.EventRecord{}
	for _, r := range s.state.Records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

func (s *Store) Feedbacks() []model.Feedback {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Feedback{}, s.state.Feedbacks...)
}

func (s *Store) FeedbackByDate(date string) []model.Feedback {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []model.Feedback{}
	for _, f := range s.state.Feedbacks {
		if f.Date == date {
			out = append(out, f)
		}
	}
	return out
}

// HasFeedback reports whether a feedback of kind exists for date.
func (s *Store) HasFeedback(date string, kind model.FeedbackKind) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, f := range s.state.Feedbacks {
		if f.Date == date && f.Kind == kind {
			return true
		}
	}
	return false
}

// LatestFeedback returns the feedback of kind with the greatest CreatedAt.
func (s *Store) LatestFeedback(kind model.FeedbackKind) (model.Feedback, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var matches []model.Feedback
	for _, f := range s.state.Feedbacks {
		if f.Kind == kind {
			matches = append(matches, f)
		}
	}
	if len(matches) == 0 {
		return model.Feedback{}, false
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].CreatedAt.After(matches[j].CreatedAt) })
	return matches[0], true
}

func (s *Store) Profile() (model.UserProfile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state.Profile == nil {
		return model.UserProfile{}, false
	}
	return *s.state.Profile, true
}

func (s *Store) View() View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view
}

func (s *Store) SetView(v View) error {
	if !v.Valid() {
		return fmt.Errorf("unknown view %q", v)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view = v
	return nil
}

func (s *Store) SelectedDate() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectedDate
}

func (s *Store) SetSelectedDate(date string) error {
	if !model.ValidDate(date) {
		return fmt.Errorf("invalid date %q", date)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectedDate = date
	return nil
}
