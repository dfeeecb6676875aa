package model

import "time"

// DaySummaryRecord is the per-date CRM digest. It is always derived and never stored.
type DaySummaryRecord struct {
	ID                string    `json:"id"`
	UserID            string    `json:"userId"`
	Date              string    `json:"date"`
	Summary           string    `json:"summary"`
	RiskFlag          bool      `json:"riskFlag"`
	RiskLevel         RiskLevel `json:"riskLevel"`
	RecommendedAction string    `json:"recommendedAction"`
	MessageLog        string    `json:"messageLog"`
	Factors           []Factor  `json:"factors"`
	CreatedAt         time.Time `json:"createdAt"`
}

// Analysis is the shared shape of local and remote pattern analysis.
type Analysis struct {
	Patterns        []string `json:"patterns"`
	Factors         []Factor `json:"factors"`
	Recommendations []string `json:"recommendations"`
}

// WeeklyStats are the home-screen figures over the trailing 7-day window.
type WeeklyStats struct {
	LatestWeight  float64 `json:"latestWeight"`
	WeightChange  float64 `json:"weightChange"`
	AvgSleep      float64 `json:"avgSleep"`
	TotalActivity float64 `json:"totalActivity"`
	AvgMood       float64 `json:"avgMood"`
	TotalLogs     int     `json:"totalLogs"`
}

type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

type Nutrition struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
	Sodium   float64 `json:"sodium"`
}

type FoodItem struct {
	Name    string `json:"name"`
	NameKr  string `json:"nameKr"`
	Portion string `json:"portion"`
	Nutrition
}

// NutritionResult is the outcome of a food photo analysis.
type NutritionResult struct {
	Success           bool       `json:"success"`
	Error             string     `json:"error,omitempty"`
	Foods             []FoodItem `json:"foods"`
	TotalNutrition    Nutrition  `json:"totalNutrition"`
	Description       string     `json:"description"`
	Confidence        Confidence `json:"confidence"`
	SuggestedMealType MealType   `json:"suggestedMealType"`
}
