// Package demo builds a week of sample data anchored on the current day.
package demo

import (
	"fmt"
	"time"

	"lifelog-coach/internal/model"
	"lifelog-coach/internal/store"
)

// UserID is the identifier every demo entity belongs to.
const UserID = "user-1"

type entry struct {
	day    int // offset from today, 0 or negative
	hour   int
	minute int
	kind   model.Kind
	value  float64
	meta   model.Metadata
}

type feedbackEntry struct {
	day           int
	hour          int
	kind          model.FeedbackKind
	content       string
	factors       []model.Factor
	prescriptions []string
	risk          model.RiskLevel
	riskReason    string
}

func meal(t model.MealType, desc string, kcal, protein, carbs, fat float64) model.Metadata {
	return model.Metadata{Payload: model.DietMeta{
		MealType: t, MealDescription: desc, Calories: kcal, Protein: protein, Carbs: carbs, Fat: fat,
	}}
}

func sleep(quality int, bed, wake string) model.Metadata {
	return model.Metadata{Payload: model.SleepMeta{SleepQuality: quality, Bedtime: bed, WakeTime: wake}}
}

func workout(kind string, intensity model.Intensity, minutes float64) model.Metadata {
	return model.Metadata{Payload: model.ActivityMeta{ActivityType: kind, Intensity: intensity, Duration: minutes}}
}

func mood(score int, note string) model.Metadata {
	return model.Metadata{Payload: model.MoodMeta{MoodScore: score, MoodNote: note}}
}

var entries = []entry{
	{-6, 7, 10, model.KindSleep, 6.5, sleep(3, "00:40", "07:10")},
	{-6, 7, 30, model.KindWeight, 72.4, model.Metadata{Payload: model.WeightMeta{WeightTime: model.WeightMorning}}},
	{-6, 8, 0, model.KindDiet, 420, meal(model.MealBreakfast, "Toast and eggs", 420, 22, 38, 18)},
	{-6, 12, 30, model.KindDiet, 780, meal(model.MealLunch, "Kimchi stew with rice", 780, 30, 95, 24)},
	{-6, 19, 0, model.KindDiet, 650, meal(model.MealDinner, "Grilled mackerel set", 650, 38, 60, 22)},
	{-6, 21, 0, model.KindMood, 3, mood(3, "Busy day at work")},
	{-5, 7, 0, model.KindSleep, 5.8, sleep(2, "01:10", "07:00")},
	{-5, 12, 40, model.KindDiet, 900, meal(model.MealLunch, "Pork cutlet", 900, 35, 90, 40)},
	{-5, 18, 30, model.KindActivity, 30, workout("walking", model.IntensityLow, 30)},
	{-5, 20, 0, model.KindDiet, 700, meal(model.MealDinner, "Fried chicken", 700, 40, 30, 45)},
	{-5, 22, 0, model.KindMood, 2, mood(2, "Tired")},
	{-4, 7, 20, model.KindSleep, 7.2, sleep(4, "23:50", "07:05")},
	{-4, 7, 40, model.KindWeight, 72.8, model.Metadata{Payload: model.WeightMeta{WeightTime: model.WeightMorning}}},
	{-4, 8, 10, model.KindDiet, 350, meal(model.MealBreakfast, "Greek yogurt and granola", 350, 18, 45, 10)},
	{-4, 13, 0, model.KindDiet, 620, meal(model.MealLunch, "Bibimbap", 620, 20, 88, 16)},
	{-4, 19, 0, model.KindActivity, 45, workout("running", model.IntensityHigh, 45)},
	{-4, 21, 30, model.KindMood, 4, mood(4, "Good run")},
	{-3, 7, 0, model.KindSleep, 5.2, sleep(2, "01:40", "06:50")},
	{-3, 12, 20, model.KindDiet, 850, meal(model.MealLunch, "Ramen and gimbap", 850, 24, 120, 28)},
	{-3, 21, 0, model.KindDiet, 500, meal(model.MealSnack, "Late-night snack", 500, 8, 60, 25)},
	{-3, 22, 30, model.KindMood, 2, mood(2, "Stressed")},
	{-2, 7, 30, model.KindSleep, 6.8, sleep(3, "00:30", "07:20")},
	{-2, 7, 45, model.KindWeight, 73.1, model.Metadata{Payload: model.WeightMeta{WeightTime: model.WeightMorning}}},
	{-2, 12, 30, model.KindDiet, 680, meal(model.MealLunch, "Chicken salad wrap", 680, 36, 60, 26)},
	{-2, 18, 0, model.KindActivity, 40, workout("cycling", model.IntensityMedium, 40)},
	{-2, 21, 0, model.KindMood, 3, mood(3, "")},
	{-1, 7, 0, model.KindSleep, 7.5, sleep(4, "23:20", "06:50")},
	{-1, 8, 0, model.KindDiet, 380, meal(model.MealBreakfast, "Oatmeal with banana", 380, 12, 65, 8)},
	{-1, 12, 50, model.KindDiet, 720, meal(model.MealLunch, "Bulgogi rice bowl", 720, 34, 85, 22)},
	{-1, 18, 30, model.KindActivity, 25, workout("yoga", model.IntensityLow, 25)},
	{-1, 21, 30, model.KindMood, 4, mood(4, "Relaxed evening")},
	{0, 7, 10, model.KindSleep, 6.2, sleep(3, "00:50", "07:00")},
	{0, 7, 25, model.KindWeight, 73.0, model.Metadata{Payload: model.WeightMeta{WeightTime: model.WeightMorning}}},
	{0, 8, 0, model.KindDiet, 400, meal(model.MealBreakfast, "Egg sandwich", 400, 20, 40, 16)},
}

var feedbacks = []feedbackEntry{
	{-5, 8, model.FeedbackMorning, "You slept under six hours. Take it easy today and keep caffeine before noon.",
		[]model.Factor{{Name: "Sleep deficit", Impact: model.ImpactNegative, Evidence: "5.8 hours of sleep"}},
		[]string{"Take a 10-minute walk after lunch", "Stop caffeine after 2 PM"}, model.RiskMedium, "Short sleep two days in a row"},
	{-4, 22, model.FeedbackEvening, "Great run today! Your mood picked up after exercising.",
		[]model.Factor{{Name: "Exercise", Impact: model.ImpactPositive, Evidence: "45 minutes of running"}},
		[]string{"Keep the same bedtime tomorrow"}, model.RiskLow, ""},
	{-3, 23, model.FeedbackWarning, "Sleep has dropped to 5.2 hours and stress is high. Consider a lighter schedule.",
		[]model.Factor{
			{Name: "Sleep deficit", Impact: model.ImpactNegative, Evidence: "5.2 hours of sleep"},
			{Name: "Late snacking", Impact: model.ImpactNegative, Evidence: "500kcal snack at 21:00"},
		},
		[]string{"Go to bed before midnight"}, model.RiskHigh, "Repeated short sleep with high stress"},
	{-1, 22, model.FeedbackEvening, "A balanced day with good meals and some yoga. Nicely done.",
		[]model.Factor{{Name: "Balanced diet", Impact: model.ImpactPositive, Evidence: "1100kcal over two meals"}},
		[]string{"Try a 20-minute walk tomorrow"}, "", ""},
}

func at(today time.Time, day, hour, minute int, loc *time.Location) (time.Time, string) {
	d := today.AddDate(0, 0, day)
	ts := time.Date(d.Year(), d.Month(), d.Day(), hour, minute, 0, 0, loc)
	return ts, model.FormatDate(ts)
}

// Seed returns the demo state with every date shifted so the last day is today in loc.
// It matches store.Seeder.
func Seed(now time.Time, loc *time.Location) store.State {
	if loc == nil {
		loc = time.Local
	}
	today := now.In(loc)

	st := store.State{
		Records:   make([]model.EventRecord, 0, len(entries)),
		Feedbacks: make([]model.Feedback, 0, len(feedbacks)),
	}
	for i, e := range entries {
		ts, date := at(today, e.day, e.hour, e.minute, loc)
		if ts.After(now) {
			// keep "today" entries in the past relative to now
			ts = now
		}
		st.Records = append(st.Records, model.EventRecord{
			ID:        fmt.Sprintf("demo-log-%d", i+1),
			UserID:    UserID,
			Timestamp: ts,
			Date:      date,
			Kind:      e.kind,
			Value:     e.value,
			Metadata:  e.meta,
		})
	}
	for i, f := range feedbacks {
		ts, date := at(today, f.day, f.hour, 0, loc)
		factors := make([]model.Factor, len(f.factors))
		for j, factor := range f.factors {
			factor.ID = model.FactorID(j)
			factor.Description = factor.Evidence
			factors[j] = factor
		}
		st.Feedbacks = append(st.Feedbacks, model.Feedback{
			ID:            fmt.Sprintf("demo-feedback-%d", i+1),
			UserID:        UserID,
			Date:          date,
			Kind:          f.kind,
			Content:       f.content,
			Factors:       factors,
			Prescriptions: f.prescriptions,
			RiskLevel:     f.risk,
			RiskReason:    f.riskReason,
			CreatedAt:     ts,
		})
	}

	createdAt, _ := at(today, -30, 9, 0, loc)
	st.Profile = &model.UserProfile{
		ID:           UserID,
		Name:         "Demo User",
		Age:          34,
		Gender:       model.GenderFemale,
		Height:       165,
		TargetWeight: 68,
		HealthGoals:  []string{"Sleep 7 hours", "Exercise 150 minutes a week", "Lose 5kg"},
		CreatedAt:    createdAt,
	}
	return st
}
