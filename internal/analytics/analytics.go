package analytics

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"lifelog-coach/internal/storage"
)

// DailyStats summarises one day of the AI exchange journal.
type DailyStats struct {
	Date        string                    `json:"date"`
	TotalCalls  int                       `json:"total_calls"`
	Fallbacks   int                       `json:"fallbacks"`
	UniqueUsers int                       `json:"unique_users"`
	ByOperation map[string]OperationStats `json:"by_operation"`
}

// OperationStats covers a single coach operation (daily_feedback, pattern_analysis, ...).
type OperationStats struct {
	Operation     string `json:"operation"`
	Calls         int    `json:"calls"`
	Fallbacks     int    `json:"fallbacks"`
	AvgDurationMs int64  `json:"avg_duration_ms"`
	totalDuration int64
}

// AnalyzeDailyLogs aggregates the events whose timestamp falls on targetDate in targetDate's location.
func AnalyzeDailyLogs(events []storage.Event, targetDate time.Time) *DailyStats {
	startOfDay := time.Date(targetDate.Year(), targetDate.Month(), targetDate.Day(), 0, 0, 0, 0, targetDate.Location())
	endOfDay := startOfDay.AddDate(0, 0, 1)

	stats := &DailyStats{
		Date:        startOfDay.Format("2006-01-02"),
		ByOperation: make(map[string]OperationStats),
	}
	uniqueUsers := make(map[string]bool)

	for _, event := range events {
		if event.Timestamp.Before(startOfDay) || !event.Timestamp.Before(endOfDay) {
			continue
		}
		stats.TotalCalls++
		uniqueUsers[event.UserID] = true

		op, ok := stats.ByOperation[event.Operation]
		if !ok {
			op = OperationStats{Operation: event.Operation}
		}
		op.Calls++
		op.totalDuration += event.Duration
		if event.Fallback {
			op.Fallbacks++
			stats.Fallbacks++
		}
		op.AvgDurationMs = op.totalDuration / int64(op.Calls)
		stats.ByOperation[event.Operation] = op
	}

	stats.UniqueUsers = len(uniqueUsers)
	return stats
}

// FallbackRate is the share of calls that ended in a substituted default, 0 when idle.
func (ds *DailyStats) FallbackRate() float64 {
	if ds.TotalCalls == 0 {
		return 0
	}
	return float64(ds.Fallbacks) / float64(ds.TotalCalls)
}

// GenerateReportSummary renders a plain-text report, operations sorted by name.
func (ds *DailyStats) GenerateReportSummary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "AI coach usage for %s:\n\n", ds.Date)
	fmt.Fprintf(&b, "- Calls: %d\n", ds.TotalCalls)
	fmt.Fprintf(&b, "- Fallbacks: %d (%.0f%%)\n", ds.Fallbacks, ds.FallbackRate()*100)
	fmt.Fprintf(&b, "- Users: %d\n", ds.UniqueUsers)

	if len(ds.ByOperation) > 0 {
		names := make([]string, 0, len(ds.ByOperation))
		for name := range ds.ByOperation {
			names = append(names, name)
		}
		sort.Strings(names)
		b.WriteString("\nBy operation:\n")
		for _, name := range names {
			op := ds.ByOperation[name]
			fmt.Fprintf(&b, "- %s: %d calls, %d fallbacks, avg %dms\n", name, op.Calls, op.Fallbacks, op.AvgDurationMs)
		}
	}
	return b.String()
}

// ToJSON renders the stats as indented JSON.
func (ds *DailyStats) ToJSON() (string, error) {
	data, err := json.MarshalIndent(ds, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
