package telegram

import (
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"

	"lifelog-coach/internal/model"
	"lifelog-coach/internal/service"
)

func (b *Bot) escapeIfNeeded(s string) string {
	if b.html() {
		return html.EscapeString(s)
	}
	return s
}

func esc(s string, isHTML bool) string {
	if isHTML {
		return html.EscapeString(s)
	}
	return s
}

func bold(s string, isHTML bool) string {
	if isHTML {
		return "<b>" + html.EscapeString(s) + "</b>"
	}
	return s
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// describe renders a record as "<value><unit>" plus its note.
func describe(r model.EventRecord) string {
	s := num(r.Value) + r.Kind.Unit()
	if r.Kind == model.KindMood {
		s = num(r.MoodScore()) + r.Kind.Unit()
	}
	if d := r.Describe(); d != "" {
		s += " (" + d + ")"
	}
	return s
}

func formatFeedback(f model.Feedback, isHTML bool) string {
	var bld strings.Builder
	title := "Morning feedback"
	switch f.Kind {
	case model.FeedbackEvening:
		title = "Evening review"
	case model.FeedbackWarning:
		title = "Warning"
	}
	bld.WriteString(bold(fmt.Sprintf("%s · %s", title, f.Date), isHTML))
	bld.WriteString("\n\n")
	bld.WriteString(esc(f.Content, isHTML))
	if len(f.Prescriptions) > 0 {
		bld.WriteString("\n\n")
		for _, p := range f.Prescriptions {
			bld.WriteString("• " + esc(p, isHTML) + "\n")
		}
	}
	if f.RiskLevel != "" {
		bld.WriteString(fmt.Sprintf("\nRisk: %s", esc(string(f.RiskLevel), isHTML)))
		if f.RiskReason != "" {
			bld.WriteString(" - " + esc(f.RiskReason, isHTML))
		}
	}
	return strings.TrimRight(bld.String(), "\n")
}

func formatLogs(date string, logs []model.EventRecord, loc *time.Location, isHTML bool) string {
	if len(logs) == 0 {
		return esc("No records for "+date+".", isHTML)
	}
	var bld strings.Builder
	bld.WriteString(bold("Records for "+date, isHTML))
	for _, r := range logs {
		bld.WriteString(fmt.Sprintf("\n[%s] %s: %s", r.Timestamp.In(loc).Format("15:04"), r.Kind.Label(), esc(describe(r), isHTML)))
	}
	return bld.String()
}

func formatInsights(in service.Insights, isHTML bool) string {
	var bld strings.Builder
	bld.WriteString(formatStats(in.Stats, isHTML))
	bld.WriteString("\n\n" + bold("Patterns", isHTML))
	for _, p := range in.Analysis.Patterns {
		bld.WriteString("\n• " + esc(p, isHTML))
	}
	if len(in.Analysis.Factors) > 0 {
		bld.WriteString("\n\n" + bold("Factors", isHTML))
		for _, f := range in.Analysis.Factors {
			bld.WriteString(fmt.Sprintf("\n• %s (%s): %s", esc(f.Name, isHTML), f.Impact, esc(f.Evidence, isHTML)))
		}
	}
	bld.WriteString("\n\n" + bold("Recommendations", isHTML))
	for _, r := range in.Analysis.Recommendations {
		bld.WriteString("\n• " + esc(r, isHTML))
	}
	return bld.String()
}

func formatStats(s model.WeeklyStats, isHTML bool) string {
	lines := []string{
		bold("Last 7 days", isHTML),
		fmt.Sprintf("Records: %d", s.TotalLogs),
		fmt.Sprintf("Average sleep: %sh", num(s.AvgSleep)),
		fmt.Sprintf("Activity: %smin", num(s.TotalActivity)),
		fmt.Sprintf("Average mood: %s/5", num(s.AvgMood)),
	}
	if s.LatestWeight > 0 {
		lines = append(lines, fmt.Sprintf("Weight: %skg (%+.1fkg)", num(s.LatestWeight), s.WeightChange))
	}
	return strings.Join(lines, "\n")
}

func formatNutrition(r model.NutritionResult, isHTML bool) string {
	if !r.Success {
		return esc(r.Error, isHTML)
	}
	var bld strings.Builder
	bld.WriteString(bold(fmt.Sprintf("%s kcal · %s", num(r.TotalNutrition.Calories), r.SuggestedMealType), isHTML))
	for _, f := range r.Foods {
		name := f.Name
		if f.Portion != "" {
			name += " (" + f.Portion + ")"
		}
		bld.WriteString(fmt.Sprintf("\n• %s: %skcal", esc(name, isHTML), num(f.Calories)))
	}
	t := r.TotalNutrition
	bld.WriteString(fmt.Sprintf("\nProtein %sg · Carbs %sg · Fat %sg · Sodium %smg", num(t.Protein), num(t.Carbs), num(t.Fat), num(t.Sodium)))
	if r.Description != "" {
		bld.WriteString("\n\n" + esc(r.Description, isHTML))
	}
	bld.WriteString(fmt.Sprintf("\nConfidence: %s", r.Confidence))
	return bld.String()
}

func formatDays(days []model.DaySummaryRecord, isHTML bool) string {
	if len(days) == 0 {
		return esc("No records to export.", isHTML)
	}
	parts := make([]string, 0, len(days))
	for _, d := range days {
		head := d.Date + ": " + d.Summary
		if d.RiskFlag {
			head += " ⚠️"
		}
		parts = append(parts, bold(head, isHTML)+"\n"+esc(d.MessageLog, isHTML))
	}
	return strings.Join(parts, "\n\n")
}
