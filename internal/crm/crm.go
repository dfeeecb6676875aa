// Package crm derives per-day summary records from event records and feedback.
package crm

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"lifelog-coach/internal/model"
)

const (
	summarySeparator = " | "
	noRecords        = "No records"
	noActionNeeded   = "No action needed"
	logHeader        = "=== Daily Log ==="
	analysisHeader   = "=== AI Analysis ==="
)

// DateRange is an inclusive [From, To] filter on YYYY-MM-DD dates.
type DateRange struct {
	From string `json:"from"`
	To   string `json:"to"`
}

func (r DateRange) Contains(date string) bool {
	return date >= r.From && date <= r.To
}

// Validate checks both bounds are calendar days and From is not after To.
func (r DateRange) Validate() error {
	if !model.ValidDate(r.From) || !model.ValidDate(r.To) {
		return fmt.Errorf("date range must use YYYY-MM-DD, got %q..%q", r.From, r.To)
	}
	if r.From > r.To {
		return fmt.Errorf("date range start %s is after end %s", r.From, r.To)
	}
	return nil
}

type Options struct {
	// Now stamps CreatedAt on every record; zero means time.Now().
	Now time.Time
	// Location renders record times in the message log; nil means UTC.
	Location *time.Location
	// Range restricts records and feedbacks before grouping.
	Range *DateRange
}

// RecordID is the deterministic id of a user's summary for a date.
func RecordID(userID, date string) string {
	return "crm-" + userID + "-" + date
}

// BuildDaySummaries groups records by date and renders one summary per date, newest first.
// Dates that only have feedback produce no summary.
func BuildDaySummaries(userID string, records []model.EventRecord, feedbacks []model.Feedback, opts Options) []model.DaySummaryRecord {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	createdAt := opts.Now
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	byDate := make(map[string][]model.EventRecord)
	var dates []string
	for _, r := range records {
		if opts.Range != nil && !opts.Range.Contains(r.Date) {
			continue
		}
		if _, ok := byDate[r.Date]; !ok {
			dates = append(dates, r.Date)
		}
		byDate[r.Date] = append(byDate[r.Date], r)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))

	out := make([]model.DaySummaryRecord, 0, len(dates))
	for _, date := range dates {
		var dayFeedbacks []model.Feedback
		for _, f := range feedbacks {
			if f.Date == date {
				dayFeedbacks = append(dayFeedbacks, f)
			}
		}
		out = append(out, buildDay(userID, date, byDate[date], dayFeedbacks, loc, createdAt))
	}
	return out
}

func buildDay(userID, date string, records []model.EventRecord, feedbacks []model.Feedback, loc *time.Location, createdAt time.Time) model.DaySummaryRecord {
	hasWarning := false
	highest := model.RiskLow
	factors := []model.Factor{}
	action := ""
	for _, f := range feedbacks {
		if f.Kind == model.FeedbackWarning {
			hasWarning = true
		}
		if f.RiskLevel.Rank() > highest.Rank() {
			highest = f.RiskLevel
		}
		factors = append(factors, f.Factors...)
		for _, p := range f.Prescriptions {
			if action == "" && p != "" {
				action = p
			}
		}
	}
	if action == "" {
		action = noActionNeeded
	}

	return model.DaySummaryRecord{
		ID:                RecordID(userID, date),
		UserID:            userID,
		Date:              date,
		Summary:           Summary(records),
		RiskFlag:          hasWarning || highest == model.RiskHigh,
		RiskLevel:         highest,
		RecommendedAction: action,
		MessageLog:        MessageLog(records, feedbacks, loc),
		Factors:           factors,
		CreatedAt:         createdAt,
	}
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func first(records []model.EventRecord, kind model.Kind) (model.EventRecord, bool) {
	for _, r := range records {
		if r.Kind == kind {
			return r, true
		}
	}
	return model.EventRecord{}, false
}

// Summary renders the one-line digest of a day in the order sleep, activity, weight, mood, diet.
// Sleep, weight and mood show the day's first record of that kind.
func Summary(records []model.EventRecord) string {
	var parts []string
	if r, ok := first(records, model.KindSleep); ok {
		parts = append(parts, fmt.Sprintf("Sleep %sh", num(r.Value)))
	}

	activities, minutes := 0, 0.0
	meals := 0
	for _, r := range records {
		switch r.Kind {
		case model.KindActivity:
			activities++
			minutes += r.Duration()
		case model.KindDiet:
			meals++
		}
	}
	if activities > 0 {
		parts = append(parts, fmt.Sprintf("Activity %smin", num(minutes)))
	}
	if r, ok := first(records, model.KindWeight); ok {
		parts = append(parts, fmt.Sprintf("Weight %skg", num(r.Value)))
	}
	if r, ok := first(records, model.KindMood); ok {
		parts = append(parts, fmt.Sprintf("Mood %s/5", num(r.MoodScore())))
	}
	if meals > 0 {
		parts = append(parts, fmt.Sprintf("Meals %d", meals))
	}

	if len(parts) == 0 {
		return noRecords
	}
	return strings.Join(parts, summarySeparator)
}

// MessageLog renders the transcript of a day: its records, then its feedback if any.
func MessageLog(records []model.EventRecord, feedbacks []model.Feedback, loc *time.Location) string {
	lines := []string{logHeader}
	for _, r := range records {
		desc := r.Describe()
		if desc == "" {
			desc = num(r.Value)
		}
		lines = append(lines, fmt.Sprintf("[%s] %s: %s", r.Timestamp.In(loc).Format("15:04"), r.Kind.Label(), desc))
	}

	if len(feedbacks) > 0 {
		lines = append(lines, "", analysisHeader)
		for _, f := range feedbacks {
			lines = append(lines, fmt.Sprintf("[%s] %s", f.Kind, f.Content))
			if len(f.Prescriptions) > 0 {
				lines = append(lines, "Action: "+strings.Join(f.Prescriptions, ", "))
			}
		}
	}
	return strings.Join(lines, "\n")
}
