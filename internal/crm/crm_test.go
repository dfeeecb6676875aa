package crm

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"lifelog-coach/internal/model"
)

var (
	seoul = time.FixedZone("KST", 9*60*60)
	stamp = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
)

func rec(date string, hour int, kind model.Kind, value float64, meta model.Metadata) model.EventRecord {
	day, _ := time.ParseInLocation(model.DateLayout, date, seoul)
	return model.EventRecord{
		ID:        date + string(kind),
		UserID:    "user-1",
		Timestamp: day.Add(time.Duration(hour) * time.Hour),
		Date:      date,
		Kind:      kind,
		Value:     value,
		Metadata:  meta,
	}
}

func opts() Options {
	return Options{Now: stamp, Location: seoul}
}

func TestBuildDaySummaries_DietSleepMoodDay(t *testing.T) {
	records := []model.EventRecord{
		rec("2025-03-09", 8, model.KindDiet, 0, model.Metadata{Payload: model.DietMeta{Calories: 300, MealDescription: "Oatmeal"}}),
		rec("2025-03-09", 7, model.KindSleep, 8, model.Metadata{}),
		rec("2025-03-09", 13, model.KindDiet, 0, model.Metadata{Payload: model.DietMeta{Calories: 700}}),
		rec("2025-03-09", 21, model.KindMood, 3, model.Metadata{Payload: model.MoodMeta{MoodScore: 5}}),
	}
	got := BuildDaySummaries("user-1", records, nil, opts())
	if len(got) != 1 {
		t.Fatalf("want 1 day, got %d", len(got))
	}
	day := got[0]
	if day.Summary != "Sleep 8h | Mood 5/5 | Meals 2" {
		t.Fatalf("unexpected summary %q", day.Summary)
	}
	if day.RiskFlag || day.RiskLevel != model.RiskLow || day.RecommendedAction != noActionNeeded {
		t.Fatalf("unexpected risk/action: %+v", day)
	}
	if day.ID != "crm-user-1-2025-03-09" || !day.CreatedAt.Equal(stamp) {
		t.Fatalf("unexpected id/createdAt: %s %v", day.ID, day.CreatedAt)
	}
	wantLog := strings.Join([]string{
		"=== Daily Log ===",
		"[08:00] Meal: Oatmeal",
		"[07:00] Sleep: 8",
		"[13:00] Meal: 0",
		"[21:00] Mood: 3",
	}, "\n")
	if day.MessageLog != wantLog {
		t.Fatalf("unexpected message log:\n%s", day.MessageLog)
	}
	if day.Factors == nil {
		t.Fatalf("factors should be an empty slice, not nil")
	}
}

func TestBuildDaySummaries_SortedDescendingNoLoss(t *testing.T) {
	dates := []string{"2025-03-08", "2025-03-10", "2025-03-09", "2025-03-08", "2025-02-28"}
	var records []model.EventRecord
	for i, d := range dates {
		records = append(records, rec(d, i, model.KindWeight, 70+float64(i), model.Metadata{}))
	}
	got := BuildDaySummaries("user-1", records, nil, opts())
	want := []string{"2025-03-10", "2025-03-09", "2025-03-08", "2025-02-28"}
	if len(got) != len(want) {
		t.Fatalf("want %d days, got %d", len(want), len(got))
	}
	total := 0
	for i, d := range got {
		if d.Date != want[i] {
			t.Fatalf("day %d = %s, want %s", i, d.Date, want[i])
		}
		total += strings.Count(d.MessageLog, "Weight:")
	}
	if total != len(records) {
		t.Fatalf("grouping lost or duplicated records: %d vs %d", total, len(records))
	}
	if got[2].Summary != "Weight 70kg" {
		t.Fatalf("first weight of the day should be shown, got %q", got[2].Summary)
	}
}

func TestBuildDaySummaries_Idempotent(t *testing.T) {
	records := []model.EventRecord{
		rec("2025-03-09", 9, model.KindActivity, 30, model.Metadata{Payload: model.ActivityMeta{Duration: 30}}),
		rec("2025-03-10", 9, model.KindActivity, 10, model.Metadata{Payload: model.ActivityMeta{Duration: 12.5}}),
		rec("2025-03-10", 18, model.KindSleep, 6.5, model.Metadata{Description: "restless"}),
	}
	feedbacks := []model.Feedback{
		{Date: "2025-03-10", Kind: model.FeedbackMorning, Content: "Hi", Prescriptions: []string{"Walk"}, Factors: []model.Factor{{ID: "factor-0", Name: "Sleep"}}},
	}
	a, _ := json.Marshal(BuildDaySummaries("user-1", records, feedbacks, opts()))
	b, _ := json.Marshal(BuildDaySummaries("user-1", records, feedbacks, opts()))
	if string(a) != string(b) {
		t.Fatalf("output differs between runs:\n%s\n%s", a, b)
	}
}

func TestBuildDaySummaries_RiskAndActions(t *testing.T) {
	records := []model.EventRecord{
		rec("2025-03-10", 9, model.KindSleep, 4, model.Metadata{}),
		rec("2025-03-09", 9, model.KindSleep, 7, model.Metadata{}),
		rec("2025-03-08", 9, model.KindSleep, 7, model.Metadata{}),
	}
	feedbacks := []model.Feedback{
		{Date: "2025-03-10", Kind: model.FeedbackWarning, Content: "Too little sleep", Prescriptions: []string{""}},
		{Date: "2025-03-10", Kind: model.FeedbackMorning, Content: "Morning", Prescriptions: []string{"Nap 20 minutes", "Skip coffee"}, RiskLevel: model.RiskMedium,
			Factors: []model.Factor{{ID: "factor-0", Name: "Sleep"}}},
		{Date: "2025-03-10", Kind: model.FeedbackEvening, Content: "Evening", Factors: []model.Factor{{ID: "factor-0", Name: "Mood"}}},
		{Date: "2025-03-09", Kind: model.FeedbackEvening, Content: "Rough", RiskLevel: model.RiskHigh},
		{Date: "2025-03-08", Kind: model.FeedbackMorning, Content: "Fine", RiskLevel: "severe"},
	}
	got := BuildDaySummaries("user-1", records, feedbacks, opts())

	warn := got[0]
	if !warn.RiskFlag || warn.RiskLevel != model.RiskMedium {
		t.Fatalf("warning day should be flagged with medium level: %+v", warn)
	}
	if warn.RecommendedAction != "Nap 20 minutes" {
		t.Fatalf("want first non-empty prescription, got %q", warn.RecommendedAction)
	}
	if len(warn.Factors) != 2 || warn.Factors[0].Name != "Sleep" || warn.Factors[1].Name != "Mood" {
		t.Fatalf("factor union order broken: %+v", warn.Factors)
	}
	for _, want := range []string{"\n\n=== AI Analysis ===\n", "[warning] Too little sleep", "Action: Nap 20 minutes, Skip coffee", "[evening] Evening"} {
		if !strings.Contains(warn.MessageLog, want) {
			t.Fatalf("message log missing %q:\n%s", want, warn.MessageLog)
		}
	}

	if high := got[1]; !high.RiskFlag || high.RiskLevel != model.RiskHigh {
		t.Fatalf("high risk should set the flag: %+v", high)
	}
	if unknown := got[2]; unknown.RiskFlag || unknown.RiskLevel != model.RiskLow {
		t.Fatalf("unknown level should leave the default: %+v", unknown)
	}
}

func TestBuildDaySummaries_Range(t *testing.T) {
	records := []model.EventRecord{
		rec("2025-03-07", 9, model.KindMood, 2, model.Metadata{}),
		rec("2025-03-08", 9, model.KindMood, 3, model.Metadata{}),
		rec("2025-03-10", 9, model.KindMood, 4, model.Metadata{}),
		rec("2025-03-11", 9, model.KindMood, 5, model.Metadata{}),
	}
	o := opts()
	o.Range = &DateRange{From: "2025-03-08", To: "2025-03-10"}
	got := BuildDaySummaries("user-1", records, nil, o)
	if len(got) != 2 || got[0].Date != "2025-03-10" || got[1].Date != "2025-03-08" {
		t.Fatalf("range filter failed: %+v", got)
	}
}

func TestSummary_Empty(t *testing.T) {
	if got := Summary(nil); got != noRecords {
		t.Fatalf("want placeholder, got %q", got)
	}
}

func TestDateRange_Validate(t *testing.T) {
	if err := (DateRange{From: "2025-03-01", To: "2025-03-01"}).Validate(); err != nil {
		t.Fatalf("single day range should be valid: %v", err)
	}
	if err := (DateRange{From: "2025-03-02", To: "2025-03-01"}).Validate(); err == nil {
		t.Fatalf("reversed range should be rejected")
	}
	if err := (DateRange{From: "03/01/2025", To: "2025-03-01"}).Validate(); err == nil {
		t.Fatalf("bad layout should be rejected")
	}
}
