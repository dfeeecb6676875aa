// Package analyzer computes the deterministic health-pattern summary used when the
// remote coach cannot be reached.
package analyzer

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"lifelog-coach/internal/model"
)

const (
	// WindowDays is the length of the trailing analysis window, today included.
	WindowDays = 7

	sleepTargetHours      = 7.0
	activityTargetMinutes = 150.0
	weightChangeThreshold = 1.0
	dailyCalorieCeiling   = 2000.0
	lowMood               = 3.0
	goodMood              = 4.0

	maxFactors         = 3
	maxRecommendations = 2
)

const (
	recSleepEarlier   = "Try going to bed 30 minutes earlier tonight."
	recWalkAfterLunch = "Take a 10-minute walk after lunch."
	recStartWalking   = "Aim for a 20-minute walk today."
	recCutEveningCarb = "Cut back on carbohydrates after 6 PM and review your activity."
	recEnjoyActivity  = "Spend 10 minutes on an activity you enjoy today."
	recKeepGoing      = "Keep up your current routine and keep logging consistently."
	recDrinkWater     = "Remember to drink enough water (about 2L a day)."
	patternNeedData   = "Collect more data to unlock a detailed pattern analysis."
	patternNoActivity = "No recent activity recorded. Start with some light exercise."
)

// Window returns the records whose date falls within the trailing WindowDays calendar
// days of now, evaluated in now's location. Input order is preserved.
func Window(records []model.EventRecord, now time.Time) []model.EventRecord {
	to := model.FormatDate(now)
	from := model.FormatDate(now.AddDate(0, 0, -(WindowDays - 1)))
	var out []model.EventRecord
	for _, r := range records {
		if r.Date >= from && r.Date <= to {
			out = append(out, r)
		}
	}
	return out
}

func byKind(records []model.EventRecord, kind model.Kind) []model.EventRecord {
	var out []model.EventRecord
	for _, r := range records {
		if r.Kind == kind {
			out = append(out, r)
		}
	}
	return out
}

type finding struct {
	name     string
	impact   model.Impact
	evidence string
}

// AnalyzeLocal summarises the trailing week into patterns, at most three factors and at
// most two recommendations. Kinds are evaluated in the order sleep, activity, weight,
// diet, mood; that order decides which factors and recommendations survive truncation.
func AnalyzeLocal(records []model.EventRecord, now time.Time) model.Analysis {
	week := Window(records, now)

	var (
		patterns        []string
		findings        []finding
		recommendations []string
	)

	if sleep := byKind(week, model.KindSleep); len(sleep) > 0 {
		avg := 0.0
		for _, r := range sleep {
			avg += r.Value
		}
		avg /= float64(len(sleep))
		evidence := fmt.Sprintf("7-day average of %.1f hours of sleep", avg)
		if avg < sleepTargetHours {
			patterns = append(patterns, fmt.Sprintf("Average sleep is %.1f hours, below the recommended 7 hours.", avg))
			findings = append(findings, finding{"Sleep deficit", model.ImpactNegative, evidence})
			recommendations = append(recommendations, recSleepEarlier)
		} else {
			patterns = append(patterns, fmt.Sprintf("Average sleep is %.1f hours, a healthy sleep pattern!", avg))
			findings = append(findings, finding{"Sufficient sleep", model.ImpactPositive, evidence})
		}
	}

	if activity := byKind(week, model.KindActivity); len(activity) > 0 {
		total := 0.0
		for _, r := range activity {
			total += r.Duration()
		}
		minutes := strconv.FormatFloat(total, 'f', -1, 64)
		evidence := fmt.Sprintf("%s minutes of activity over the last 7 days", minutes)
		if total < activityTargetMinutes {
			patterns = append(patterns, fmt.Sprintf("Weekly activity is %s minutes, below the recommended 150 minutes.", minutes))
			findings = append(findings, finding{"Low physical activity", model.ImpactNegative, evidence})
			recommendations = append(recommendations, recWalkAfterLunch)
		} else {
			findings = append(findings, finding{"Active lifestyle", model.ImpactPositive, evidence})
		}
	} else if len(week) > 0 {
		// An empty window skips every kind block so that only the defaults apply.
		patterns = append(patterns, patternNoActivity)
		recommendations = append(recommendations, recStartWalking)
	}

	if weight := byKind(week, model.KindWeight); len(weight) >= 2 {
		// Same-date entries keep their input order.
		sort.SliceStable(weight, func(i, j int) bool { return weight[i].Date < weight[j].Date })
		change := weight[len(weight)-1].Value - weight[0].Value
		if math.Abs(change) > weightChangeThreshold {
			if change > 0 {
				patterns = append(patterns, fmt.Sprintf("Weight increased by %.1fkg. Check your diet and activity.", change))
				findings = append(findings, finding{"Weight gain", model.ImpactNegative, fmt.Sprintf("%.1fkg gained over the last 7 days", change)})
				recommendations = append(recommendations, recCutEveningCarb)
			} else {
				patterns = append(patterns, fmt.Sprintf("Weight decreased by %.1fkg.", math.Abs(change)))
				findings = append(findings, finding{"Weight loss in progress", model.ImpactPositive, fmt.Sprintf("%.1fkg lost over the last 7 days", math.Abs(change))})
			}
		}
	}

	if diet := byKind(week, model.KindDiet); len(diet) > 0 {
		total := 0.0
		for _, r := range diet {
			total += r.Calories()
		}
		// Always averaged over the whole window, not over the days that have meals.
		avg := total / WindowDays
		if avg > dailyCalorieCeiling {
			patterns = append(patterns, fmt.Sprintf("Average daily calorie intake is %dkcal.", int(math.Round(avg))))
		}
	}

	if mood := byKind(week, model.KindMood); len(mood) > 0 {
		avg := 0.0
		for _, r := range mood {
			avg += r.MoodScore()
		}
		avg /= float64(len(mood))
		evidence := fmt.Sprintf("Recent average mood score %.1f/5", avg)
		switch {
		case avg < lowMood:
			patterns = append(patterns, "Your mood has been low recently.")
			findings = append(findings, finding{"Low mood", model.ImpactNegative, evidence})
			recommendations = append(recommendations, recEnjoyActivity)
		case avg >= goodMood:
			findings = append(findings, finding{"Positive mood", model.ImpactPositive, evidence})
		}
	}

	if len(recommendations) == 0 {
		recommendations = append(recommendations, recKeepGoing, recDrinkWater)
	}
	if len(patterns) == 0 {
		patterns = append(patterns, patternNeedData)
	}

	if len(findings) > maxFactors {
		findings = findings[:maxFactors]
	}
	if len(recommendations) > maxRecommendations {
		recommendations = recommendations[:maxRecommendations]
	}

	factors := make([]model.Factor, 0, len(findings))
	for i, f := range findings {
		factors = append(factors, model.Factor{
			ID:          model.FactorID(i),
			Name:        f.name,
			Description: f.evidence,
			Evidence:    f.evidence,
			Impact:      f.impact,
		})
	}

	return model.Analysis{
		Patterns:        patterns,
		Factors:         factors,
		Recommendations: recommendations,
	}
}
