package analytics

import (
	"strings"
	"testing"
	"time"

	"lifelog-coach/internal/storage"
)

func TestAnalyzeDailyLogs(t *testing.T) {
	testDate := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	events := []storage.Event{
		{Timestamp: testDate.Add(2 * time.Hour), UserID: "user-1", Operation: "daily_feedback", Duration: 1200},
		{Timestamp: testDate.Add(4 * time.Hour), UserID: "user-1", Operation: "daily_feedback", Duration: 800, Fallback: true, Error: "parse"},
		{Timestamp: testDate.Add(6 * time.Hour), UserID: "user-2", Operation: "food_analysis", Duration: 3000},
		// next day, must be ignored
		{Timestamp: testDate.AddDate(0, 0, 1), UserID: "user-3", Operation: "pattern_analysis"},
		// previous day, must be ignored
		{Timestamp: testDate.Add(-time.Minute), UserID: "user-3", Operation: "pattern_analysis"},
	}

	stats := AnalyzeDailyLogs(events, testDate.Add(15*time.Hour))

	if stats.Date != "2024-01-15" {
		t.Errorf("Expected date '2024-01-15', got '%s'", stats.Date)
	}
	if stats.TotalCalls != 3 {
		t.Errorf("Expected 3 calls, got %d", stats.TotalCalls)
	}
	if stats.UniqueUsers != 2 {
		t.Errorf("Expected 2 unique users, got %d", stats.UniqueUsers)
	}
	if stats.Fallbacks != 1 {
		t.Errorf("Expected 1 fallback, got %d", stats.Fallbacks)
	}

	daily := stats.ByOperation["daily_feedback"]
	if daily.Calls != 2 || daily.Fallbacks != 1 || daily.AvgDurationMs != 1000 {
		t.Errorf("unexpected daily_feedback stats: %+v", daily)
	}
	if _, ok := stats.ByOperation["pattern_analysis"]; ok {
		t.Errorf("out-of-day operation leaked into stats")
	}
}

func TestGenerateReportSummary(t *testing.T) {
	stats := AnalyzeDailyLogs([]storage.Event{
		{Timestamp: time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC), UserID: "u", Operation: "pattern_analysis", Fallback: true},
		{Timestamp: time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC), UserID: "u", Operation: "daily_feedback"},
	}, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))

	summary := stats.GenerateReportSummary()
	for _, want := range []string{"2024-01-15", "Calls: 2", "Fallbacks: 1 (50%)", "daily_feedback: 1 calls"} {
		if !strings.Contains(summary, want) {
			t.Errorf("summary missing %q:\n%s", want, summary)
		}
	}
	if strings.Index(summary, "daily_feedback") > strings.Index(summary, "pattern_analysis") {
		t.Errorf("operations should be sorted by name:\n%s", summary)
	}
}

func TestEmptyStats(t *testing.T) {
	stats := AnalyzeDailyLogs(nil, time.Now())
	if stats.FallbackRate() != 0 || stats.TotalCalls != 0 {
		t.Errorf("unexpected empty stats: %+v", stats)
	}
	js, err := stats.ToJSON()
	if err != nil || !strings.Contains(js, `"total_calls": 0`) {
		t.Errorf("unexpected json %q, %v", js, err)
	}
}
