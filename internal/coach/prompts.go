package coach

import (
	"encoding/json"
	"fmt"
	"strings"

	"lifelog-coach/internal/model"
)

const factorShape = `{"name": "factor name", "impact": "positive or negative or neutral", "evidence": "the observation supporting it"}`

type promptRecord struct {
	Kind      model.Kind     `json:"kind"`
	Value     float64        `json:"value"`
	LocalTime string         `json:"localTime"`
	Metadata  model.Metadata `json:"metadata"`
}

// weekSummary is the per-kind count header of the pattern prompt.
type weekSummary struct {
	Total    int `json:"총_기록_수"`
	Diet     int `json:"식사_기록"`
	Sleep    int `json:"수면_기록"`
	Activity int `json:"활동_기록"`
	Weight   int `json:"체중_기록"`
	Mood     int `json:"기분_기록"`
}

func (c *Coach) promptRecords(records []model.EventRecord) []promptRecord {
	out := make([]promptRecord, 0, len(records))
	for _, r := range records {
		out = append(out, promptRecord{
			Kind:      r.Kind,
			Value:     r.Value,
			LocalTime: r.Timestamp.In(c.loc).Format("15:04"),
			Metadata:  r.Metadata,
		})
	}
	return out
}

func mustIndent(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		// only plain data types are passed in
		return "[]"
	}
	return string(b)
}

func (c *Coach) dailyPrompt(records []model.EventRecord, kind model.FeedbackKind, date string) string {
	var b strings.Builder
	b.WriteString("You are a friendly health coach.\n")
	if kind == model.FeedbackEvening {
		b.WriteString("Review the user's day based on today's records.\n\n")
	} else {
		b.WriteString("Greet the user and give advice to start the day based on their recent records.\n\n")
	}
	fmt.Fprintf(&b, "## Date: %s\n", date)
	b.WriteString("## Records:\n")
	b.WriteString(mustIndent(c.promptRecords(records)))
	b.WriteString("\n\n")

	if kind == model.FeedbackEvening {
		b.WriteString(`## Evening review:
1. Give an overall assessment of the day.
2. Point out what went well and what to improve.
3. Give one short piece of advice for tomorrow.

`)
	} else {
		b.WriteString(`## Morning feedback:
1. Based on yesterday and the recent data, say what to focus on today.
2. Suggest 1-2 concrete actions for today.
3. Point out risk signals if any (for example ongoing sleep deficit, sudden weight change).

`)
	}

	b.WriteString("## Reply format (strictly this JSON):\n")
	b.WriteString("{\n")
	b.WriteString(`  "content": "2-3 warm, encouraging sentences",` + "\n")
	fmt.Fprintf(&b, "  \"factors\": [%s],\n", factorShape)
	if kind == model.FeedbackEvening {
		b.WriteString(`  "prescriptions": ["advice for tomorrow"],` + "\n")
	} else {
		b.WriteString(`  "prescriptions": ["action for today 1", "action for today 2"],` + "\n")
	}
	b.WriteString(`  "riskLevel": "low or medium or high (only when there is a risk)",` + "\n")
	b.WriteString(`  "riskReason": "why (only when there is a risk)"` + "\n")
	b.WriteString("}\n\n")
	fmt.Fprintf(&b, "Respond in %s only.", c.language)
	return b.String()
}

func (c *Coach) patternPrompt(week []model.EventRecord) string {
	summary := weekSummary{Total: len(week)}
	for _, r := range week {
		switch r.Kind {
		case model.KindDiet:
			summary.Diet++
		case model.KindSleep:
			summary.Sleep++
		case model.KindActivity:
			summary.Activity++
		case model.KindWeight:
			summary.Weight++
		case model.KindMood:
			summary.Mood++
		}
	}

	var b strings.Builder
	b.WriteString("You are a health assistant. Analyse the user's lifelog data to find health patterns and points to improve.\n\n")
	b.WriteString("## User data (last 7 days):\n")
	b.WriteString(mustIndent(summary))
	b.WriteString("\n\n## Detailed log:\n")
	b.WriteString(mustIndent(week))
	b.WriteString(`

## Analysis:
1. Patterns: summarise the health patterns found in the data in 2-3 sentences.
2. Factors: find the top 3 factors affecting the user's health, each with a name, whether it is positive or negative, and the supporting data.
3. Recommendations: suggest 1-2 concrete actions for today.

## Reply format (strictly this JSON):
{
  "patterns": ["pattern 1", "pattern 2"],
`)
	fmt.Fprintf(&b, "  \"factors\": [%s],\n", factorShape)
	b.WriteString(`  "recommendations": ["action 1", "action 2"]` + "\n}\n\n")
	fmt.Fprintf(&b, "Respond in %s, JSON only.", c.language)
	return b.String()
}

func (c *Coach) foodPrompt() string {
	return fmt.Sprintf(`You are a nutritionist. Analyse this food photo and give detailed nutrition information.

## Tasks:
1. Identify every food in the photo.
2. Estimate the portion and nutrients of each food.
3. Sum up total calories and nutrients.
4. Guess whether this is breakfast, lunch, dinner or a snack.

## Reply format (strictly this JSON only):
{
  "foods": [
    {
      "name": "English name",
      "nameKr": "Korean name",
      "portion": "portion, e.g. 1 serving, 200g",
      "calories": number,
      "protein": number (g),
      "carbs": number (g),
      "fat": number (g),
      "sodium": number (mg)
    }
  ],
  "totalNutrition": {"calories": number, "protein": number, "carbs": number, "fat": number, "sodium": number},
  "description": "short description of the meal (%s, at most 20 characters)",
  "confidence": "high or medium or low",
  "suggestedMealType": "breakfast or lunch or dinner or snack"
}

Important:
- Reply with JSON only.
- Use integers or one decimal place for numbers.
- Mark foods you cannot identify as "unknown".
- When unsure about nutrients, use typical estimates and set confidence to "low".`, c.language)
}
