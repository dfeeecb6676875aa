package analyzer

import (
	"math/rand"
	"strings"
	"testing"
	"time"

	"lifelog-coach/internal/model"
)

var now = time.Date(2025, 1, 20, 12, 0, 0, 0, time.UTC)

func day(offset int) string {
	return model.FormatDate(now.AddDate(0, 0, offset))
}

func rec(kind model.Kind, date string, value float64, payload model.Payload) model.EventRecord {
	return model.EventRecord{
		UserID:    "user-1",
		Timestamp: now,
		Date:      date,
		Kind:      kind,
		Value:     value,
		Metadata:  model.Metadata{Payload: payload},
	}
}

func activity(date string, minutes float64) model.EventRecord {
	return rec(model.KindActivity, date, minutes, model.ActivityMeta{Duration: minutes})
}

func hasFactor(a model.Analysis, name string, impact model.Impact) bool {
	for _, f := range a.Factors {
		if f.Name == name && f.Impact == impact {
			return true
		}
	}
	return false
}

func TestAnalyzeLocal_EmptyInputUsesDefaults(t *testing.T) {
	a := AnalyzeLocal(nil, now)
	if len(a.Patterns) != 1 || a.Patterns[0] != patternNeedData {
		t.Fatalf("unexpected patterns: %v", a.Patterns)
	}
	if len(a.Recommendations) != 2 || a.Recommendations[0] != recKeepGoing || a.Recommendations[1] != recDrinkWater {
		t.Fatalf("unexpected recommendations: %v", a.Recommendations)
	}
	if len(a.Factors) != 0 {
		t.Fatalf("want no factors, got %v", a.Factors)
	}
}

func TestAnalyzeLocal_RecordsOutsideWindowAreIgnored(t *testing.T) {
	old := []model.EventRecord{rec(model.KindSleep, day(-7), 3, nil), activity(day(-30), 10)}
	a := AnalyzeLocal(old, now)
	if len(a.Factors) != 0 || a.Patterns[0] != patternNeedData {
		t.Fatalf("old records leaked into window: %+v", a)
	}

	edge := AnalyzeLocal([]model.EventRecord{rec(model.KindSleep, day(-6), 5, nil)}, now)
	if !hasFactor(edge, "Sleep deficit", model.ImpactNegative) {
		t.Fatalf("record six days back should count: %+v", edge)
	}
}

func TestAnalyzeLocal_SleepThresholdIsStrict(t *testing.T) {
	records := []model.EventRecord{
		rec(model.KindSleep, day(0), 6, nil),
		rec(model.KindSleep, day(-1), 8, nil),
		activity(day(0), 200),
	}
	a := AnalyzeLocal(records, now)
	if !hasFactor(a, "Sufficient sleep", model.ImpactPositive) {
		t.Fatalf("average of exactly 7h should be positive: %+v", a.Factors)
	}
	for _, r := range a.Recommendations {
		if r == recSleepEarlier {
			t.Fatalf("no sleep recommendation expected at 7h")
		}
	}

	a = AnalyzeLocal([]model.EventRecord{rec(model.KindSleep, day(0), 6.9, nil)}, now)
	if !hasFactor(a, "Sleep deficit", model.ImpactNegative) || a.Recommendations[0] != recSleepEarlier {
		t.Fatalf("6.9h should be a deficit: %+v", a)
	}
	if !strings.Contains(a.Patterns[0], "6.9 hours") {
		t.Fatalf("pattern should carry the average: %q", a.Patterns[0])
	}
}

func TestAnalyzeLocal_ActivityThresholdIsStrict(t *testing.T) {
	a := AnalyzeLocal([]model.EventRecord{activity(day(0), 100), activity(day(-2), 50)}, now)
	if !hasFactor(a, "Active lifestyle", model.ImpactPositive) {
		t.Fatalf("150 minutes should be positive: %+v", a.Factors)
	}
	if a.Recommendations[0] != recKeepGoing {
		t.Fatalf("positive activity alone should fall back to defaults: %v", a.Recommendations)
	}

	a = AnalyzeLocal([]model.EventRecord{activity(day(0), 149)}, now)
	if !hasFactor(a, "Low physical activity", model.ImpactNegative) || a.Recommendations[0] != recWalkAfterLunch {
		t.Fatalf("149 minutes should be low: %+v", a)
	}
}

func TestAnalyzeLocal_MissingDurationCountsAsZero(t *testing.T) {
	a := AnalyzeLocal([]model.EventRecord{rec(model.KindActivity, day(0), 60, nil)}, now)
	if !hasFactor(a, "Low physical activity", model.ImpactNegative) {
		t.Fatalf("activity without duration should count 0 minutes: %+v", a.Factors)
	}
	if a.Factors[0].Evidence != "0 minutes of activity over the last 7 days" {
		t.Fatalf("unexpected evidence %q", a.Factors[0].Evidence)
	}
}

func TestAnalyzeLocal_NoActivityWhenOtherKindsLogged(t *testing.T) {
	a := AnalyzeLocal([]model.EventRecord{rec(model.KindMood, day(0), 3, nil)}, now)
	if a.Patterns[0] != patternNoActivity || a.Recommendations[0] != recStartWalking {
		t.Fatalf("missing activity should be reported: %+v", a)
	}
}

func TestAnalyzeLocal_WeightChangeThreshold(t *testing.T) {
	flat := []model.EventRecord{
		rec(model.KindWeight, day(0), 71, nil),
		rec(model.KindWeight, day(-3), 70, nil),
	}
	a := AnalyzeLocal(flat, now)
	if hasFactor(a, "Weight gain", model.ImpactNegative) {
		t.Fatalf("1.0kg change must not trigger: %+v", a.Factors)
	}

	gain := []model.EventRecord{
		rec(model.KindWeight, day(0), 71.1, nil),
		rec(model.KindWeight, day(-3), 70, nil),
	}
	a = AnalyzeLocal(gain, now)
	if !hasFactor(a, "Weight gain", model.ImpactNegative) {
		t.Fatalf("1.1kg gain should trigger: %+v", a.Factors)
	}
	found := false
	for _, p := range a.Patterns {
		if strings.Contains(p, "1.1kg") {
			found = true
		}
	}
	if !found {
		t.Fatalf("pattern should mention 1.1kg: %v", a.Patterns)
	}

	loss := []model.EventRecord{
		rec(model.KindWeight, day(-5), 72, nil),
		rec(model.KindWeight, day(0), 70.5, nil),
	}
	a = AnalyzeLocal(loss, now)
	if !hasFactor(a, "Weight loss in progress", model.ImpactPositive) {
		t.Fatalf("loss should be positive: %+v", a.Factors)
	}
	for _, r := range a.Recommendations {
		if r == recCutEveningCarb {
			t.Fatalf("loss must not add a recommendation")
		}
	}
}

func TestAnalyzeLocal_DietAveragesOverSevenDays(t *testing.T) {
	meal := func(date string, kcal float64) model.EventRecord {
		return rec(model.KindDiet, date, kcal, model.DietMeta{Calories: kcal})
	}
	a := AnalyzeLocal([]model.EventRecord{meal(day(0), 14000)}, now)
	for _, p := range a.Patterns {
		if strings.Contains(p, "kcal") {
			t.Fatalf("exactly 2000kcal/day must not be reported: %v", a.Patterns)
		}
	}

	a = AnalyzeLocal([]model.EventRecord{meal(day(0), 7100), meal(day(-1), 7100)}, now)
	found := false
	for _, p := range a.Patterns {
		if p == "Average daily calorie intake is 2029kcal." {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected fixed seven-day average, got %v", a.Patterns)
	}
	if len(a.Factors) != 0 {
		t.Fatalf("diet is informational only: %v", a.Factors)
	}
}

func TestAnalyzeLocal_MoodBands(t *testing.T) {
	mood := func(score int) model.EventRecord {
		return rec(model.KindMood, day(0), 1, model.MoodMeta{MoodScore: score})
	}
	low := AnalyzeLocal([]model.EventRecord{mood(2)}, now)
	if !hasFactor(low, "Low mood", model.ImpactNegative) {
		t.Fatalf("mood 2 should be low: %+v", low.Factors)
	}
	mid := AnalyzeLocal([]model.EventRecord{mood(3), mood(4)}, now)
	if len(mid.Factors) != 0 {
		t.Fatalf("3.5 should produce no factor: %+v", mid.Factors)
	}
	high := AnalyzeLocal([]model.EventRecord{mood(4)}, now)
	if !hasFactor(high, "Positive mood", model.ImpactPositive) {
		t.Fatalf("mood 4 should be positive: %+v", high.Factors)
	}
}

func TestAnalyzeLocal_TruncatesInEvaluationOrder(t *testing.T) {
	records := []model.EventRecord{
		rec(model.KindSleep, day(0), 5, nil),
		activity(day(0), 20),
		rec(model.KindWeight, day(-4), 70, nil),
		rec(model.KindWeight, day(0), 73, nil),
		rec(model.KindMood, day(0), 1, nil),
	}
	a := AnalyzeLocal(records, now)
	if len(a.Factors) != 3 {
		t.Fatalf("want 3 factors, got %d", len(a.Factors))
	}
	wantNames := []string{"Sleep deficit", "Low physical activity", "Weight gain"}
	for i, name := range wantNames {
		if a.Factors[i].Name != name || a.Factors[i].ID != model.FactorID(i) {
			t.Fatalf("factor %d = %+v, want %s", i, a.Factors[i], name)
		}
	}
	if len(a.Recommendations) != 2 || a.Recommendations[0] != recSleepEarlier || a.Recommendations[1] != recWalkAfterLunch {
		t.Fatalf("unexpected recommendations: %v", a.Recommendations)
	}
	if len(a.Patterns) != 4 {
		t.Fatalf("patterns are never truncated, got %v", a.Patterns)
	}
}

func TestAnalyzeLocal_Bounds(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 300; i++ {
		var records []model.EventRecord
		for n := rng.Intn(25); n > 0; n-- {
			kind := model.Kinds[rng.Intn(len(model.Kinds))]
			date := day(-rng.Intn(12))
			v := rng.Float64() * 10
			var payload model.Payload
			switch kind {
			case model.KindActivity:
				payload = model.ActivityMeta{Duration: rng.Float64() * 90}
			case model.KindDiet:
				payload = model.DietMeta{Calories: rng.Float64() * 5000}
			case model.KindMood:
				payload = model.MoodMeta{MoodScore: 1 + rng.Intn(5)}
			}
			records = append(records, rec(kind, date, v, payload))
		}
		a := AnalyzeLocal(records, now)
		if len(a.Factors) > 3 || len(a.Recommendations) > 2 || len(a.Patterns) < 1 {
			t.Fatalf("bounds violated for %d records: %+v", len(records), a)
		}
		if len(a.Recommendations) == 0 {
			t.Fatalf("recommendations must never be empty")
		}
	}
}

func TestWeeklyStats(t *testing.T) {
	w1 := rec(model.KindWeight, day(-3), 70, nil)
	w1.Timestamp = now.Add(-72 * time.Hour)
	w2 := rec(model.KindWeight, day(0), 69.2, nil)
	records := []model.EventRecord{
		w1, w2,
		rec(model.KindSleep, day(0), 6, nil),
		rec(model.KindSleep, day(-1), 7.5, nil),
		activity(day(0), 30),
		activity(day(-2), 45),
		rec(model.KindMood, day(0), 4, nil),
		rec(model.KindMood, day(-9), 1, nil),
	}
	s := WeeklyStats(records, now)
	if s.TotalLogs != 7 {
		t.Fatalf("want 7 logs in window, got %d", s.TotalLogs)
	}
	if s.LatestWeight != 69.2 || s.WeightChange != -0.8 {
		t.Fatalf("weight stats: %+v", s)
	}
	if s.AvgSleep != 6.8 || s.TotalActivity != 75 || s.AvgMood != 4 {
		t.Fatalf("unexpected stats: %+v", s)
	}
}
