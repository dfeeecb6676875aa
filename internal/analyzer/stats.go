package analyzer

import (
	"math"
	"sort"
	"time"

	"lifelog-coach/internal/model"
)

// WeeklyStats computes the home-screen figures over the same window as AnalyzeLocal.
// Weight change is latest minus oldest by timestamp; averages are rounded to one decimal.
func WeeklyStats(records []model.EventRecord, now time.Time) model.WeeklyStats {
	week := Window(records, now)
	stats := model.WeeklyStats{TotalLogs: len(week)}

	weights := byKind(week, model.KindWeight)
	sort.SliceStable(weights, func(i, j int) bool { return weights[i].Timestamp.After(weights[j].Timestamp) })
	if len(weights) > 0 {
		stats.LatestWeight = weights[0].Value
		stats.WeightChange = round1(weights[0].Value - weights[len(weights)-1].Value)
	}

	if sleep := byKind(week, model.KindSleep); len(sleep) > 0 {
		sum := 0.0
		for _, r := range sleep {
			sum += r.Value
		}
		stats.AvgSleep = round1(sum / float64(len(sleep)))
	}

	for _, r := range byKind(week, model.KindActivity) {
		stats.TotalActivity += r.Duration()
	}

	if mood := byKind(week, model.KindMood); len(mood) > 0 {
		sum := 0.0
		for _, r := range mood {
			sum += r.MoodScore()
		}
		stats.AvgMood = round1(sum / float64(len(mood)))
	}
	return stats
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
