package coach

import "lifelog-coach/internal/model"

const foodFailureMessage = "Food analysis failed. Please try again."

// DefaultFeedback is the fixed feedback returned when there is nothing recent to analyse
// or the remote call fails. It carries no factors and no risk fields.
func DefaultFeedback(userID, date string, kind model.FeedbackKind) model.Feedback {
	if kind == model.FeedbackEvening {
		return model.Feedback{
			UserID:        userID,
			Date:          date,
			Kind:          model.FeedbackEvening,
			Content:       "Great work today! Get plenty of rest for tomorrow.",
			Factors:       []model.Factor{},
			Prescriptions: []string{"Go to bed a little early tonight"},
		}
	}
	return model.Feedback{
		UserID:  userID,
		Date:    date,
		Kind:    model.FeedbackMorning,
		Content: "Good morning! Start your day in good health. Log your meals, sleep and mood to get personalised advice.",
		Factors: []model.Factor{},
		Prescriptions: []string{
			"Don't skip breakfast",
			"Start the day with a glass of water",
		},
	}
}

// InsufficientDataAnalysis is the pattern-analysis fallback.
func InsufficientDataAnalysis() model.Analysis {
	return model.Analysis{
		Patterns: []string{
			"Something went wrong while analysing your data, so a basic result is shown.",
			"Logging more data will make the analysis more accurate.",
		},
		Factors: []model.Factor{{
			ID:          model.FactorID(0),
			Name:        "More data needed",
			Description: "A detailed analysis becomes available once enough data is collected.",
			Evidence:    "A detailed analysis becomes available once enough data is collected.",
			Impact:      model.ImpactNeutral,
		}},
		Recommendations: []string{
			"Build a habit of logging every day.",
			"Drink plenty of water and keep a regular routine.",
		},
	}
}

// FailedNutritionResult is the zeroed, low-confidence food analysis result.
func FailedNutritionResult() model.NutritionResult {
	return model.NutritionResult{
		Success:           false,
		Error:             foodFailureMessage,
		Foods:             []model.FoodItem{},
		Description:       "",
		Confidence:        model.ConfidenceLow,
		SuggestedMealType: model.MealSnack,
	}
}
