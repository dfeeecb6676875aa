// Package coach turns event records into AI coaching: daily feedback, weekly pattern
// analysis and food photo nutrition estimates. Every operation degrades to a fixed
// fallback result instead of returning an error.
package coach

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"lifelog-coach/internal/analyzer"
	"lifelog-coach/internal/llm"
	"lifelog-coach/internal/llmjson"
	"lifelog-coach/internal/model"
	"lifelog-coach/internal/storage"
)

// RecentWindow bounds the records considered for daily feedback, by timestamp.
const RecentWindow = 48 * time.Hour

const (
	OpDailyFeedback   = "daily_feedback"
	OpPatternAnalysis = "pattern_analysis"
	OpFoodAnalysis    = "food_analysis"
)

var (
	errNoClient     = errors.New("no AI client configured")
	errEmptyContent = errors.New("reply has no content")
	errNoFactors    = errors.New("reply has no factors array")
	errEmptyReply   = errors.New("reply has no patterns, factors or recommendations")
	errNoFoods      = errors.New("reply lists no foods")
)

type Coach struct {
	client   llm.Client
	recorder storage.Recorder
	now      func() time.Time
	loc      *time.Location
	language string
}

type Option func(*Coach)

// WithRecorder journals every exchange with the AI service.
func WithRecorder(r storage.Recorder) Option {
	return func(c *Coach) { c.recorder = r }
}

func WithClock(now func() time.Time) Option {
	return func(c *Coach) { c.now = now }
}

// WithLocation sets the zone used for the local times shown to the model.
func WithLocation(loc *time.Location) Option {
	return func(c *Coach) {
		if loc != nil {
			c.loc = loc
		}
	}
}

// WithLanguage sets the language the model is asked to reply in.
func WithLanguage(lang string) Option {
	return func(c *Coach) {
		if lang != "" {
			c.language = lang
		}
	}
}

func New(client llm.Client, opts ...Option) *Coach {
	c := &Coach{
		client:   client,
		now:      time.Now,
		loc:      time.Local,
		language: "English",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Recent returns the records whose timestamp is no older than RecentWindow before now.
func Recent(records []model.EventRecord, now time.Time) []model.EventRecord {
	cutoff := now.Add(-RecentWindow)
	var out []model.EventRecord
	for _, r := range records {
		if !r.Timestamp.Before(cutoff) {
			out = append(out, r)
		}
	}
	return out
}

type factorReply struct {
	Name     string `json:"name"`
	Impact   string `json:"impact"`
	Evidence string `json:"evidence"`
}

type dailyReply struct {
	Content string `json:"content"`
	// Nil when the reply omits the key, which counts as malformed.
	Factors       *[]factorReply `json:"factors"`
	Prescriptions []string       `json:"prescriptions"`
	RiskLevel     string         `json:"riskLevel"`
	RiskReason    string         `json:"riskReason"`
}

type patternReply struct {
	Patterns        []string      `json:"patterns"`
	Factors         []factorReply `json:"factors"`
	Recommendations []string      `json:"recommendations"`
}

type foodReply struct {
	Foods             []model.FoodItem `json:"foods"`
	TotalNutrition    model.Nutrition  `json:"totalNutrition"`
	Description       string           `json:"description"`
	Confidence        string           `json:"confidence"`
	SuggestedMealType string           `json:"suggestedMealType"`
}

// toFactors assigns sequential ids and reuses evidence as the description.
func toFactors(in []factorReply) []model.Factor {
	out := make([]model.Factor, 0, len(in))
	for i, f := range in {
		out = append(out, model.Factor{
			ID:          model.FactorID(i),
			Name:        f.Name,
			Description: f.Evidence,
			Evidence:    f.Evidence,
			Impact:      model.NormalizeImpact(f.Impact),
		})
	}
	return out
}

func nonEmpty(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}

// DailyFeedback produces the morning or evening feedback for date. With no record in the
// last 48 hours it returns DefaultFeedback without calling the service.
func (c *Coach) DailyFeedback(ctx context.Context, records []model.EventRecord, kind model.FeedbackKind, userID, date string) model.Feedback {
	if kind != model.FeedbackEvening {
		kind = model.FeedbackMorning
	}
	recent := Recent(records, c.now())
	if len(recent) == 0 {
		return DefaultFeedback(userID, date, kind)
	}

	start := time.Now()
	prompt := c.dailyPrompt(recent, kind, date)
	text, err := c.collect(ctx, []llm.Message{{Role: "user", Content: prompt}})
	var reply dailyReply
	if err == nil {
		err = llmjson.Decode(text, &reply)
	}
	if err == nil && strings.TrimSpace(reply.Content) == "" {
		err = errEmptyContent
	}
	if err == nil && reply.Factors == nil {
		err = errNoFactors
	}
	c.journal(OpDailyFeedback, userID, date, prompt, text, err, start)
	if err != nil {
		log.Printf("❌ %s feedback for %s failed, using default: %v", kind, date, err)
		return DefaultFeedback(userID, date, kind)
	}

	return model.Feedback{
		UserID:        userID,
		Date:          date,
		Kind:          kind,
		Content:       reply.Content,
		Factors:       toFactors(*reply.Factors),
		Prescriptions: nonEmpty(reply.Prescriptions),
		RiskLevel:     model.NormalizeRisk(reply.RiskLevel),
		RiskReason:    reply.RiskReason,
	}
}

// AnalyzePatterns asks the service for a pattern analysis of the trailing week.
// Any failure yields InsufficientDataAnalysis, never the local analyzer.
func (c *Coach) AnalyzePatterns(ctx context.Context, userID string, records []model.EventRecord) model.Analysis {
	now := c.now().In(c.loc)
	week := analyzer.Window(records, now)

	start := time.Now()
	prompt := c.patternPrompt(week)
	text, err := c.collect(ctx, []llm.Message{{Role: "user", Content: prompt}})
	var reply patternReply
	if err == nil {
		err = llmjson.Decode(text, &reply)
	}
	patterns := nonEmpty(reply.Patterns)
	recommendations := nonEmpty(reply.Recommendations)
	if err == nil && len(patterns) == 0 && len(reply.Factors) == 0 && len(recommendations) == 0 {
		err = errEmptyReply
	}
	c.journal(OpPatternAnalysis, userID, model.FormatDate(now), prompt, text, err, start)
	if err != nil {
		log.Printf("❌ pattern analysis failed, using fallback: %v", err)
		return InsufficientDataAnalysis()
	}

	return model.Analysis{
		Patterns:        patterns,
		Factors:         toFactors(reply.Factors),
		Recommendations: recommendations,
	}
}

// AnalyzeFood estimates the nutrition of one meal photo in a single, non-streamed call.
func (c *Coach) AnalyzeFood(ctx context.Context, userID string, image []byte, mimeType string) model.NutritionResult {
	start := time.Now()
	prompt := c.foodPrompt()
	msg := llm.Message{
		Role:    "user",
		Content: prompt,
		Images:  []llm.InlineImage{{MIMEType: mimeType, Data: image}},
	}

	var (
		text  string
		err   error
		reply foodReply
	)
	if c.client == nil {
		err = errNoClient
	} else {
		var resp llm.Response
		resp, err = c.client.Generate(ctx, []llm.Message{msg})
		text = resp.Content
	}
	if err == nil {
		err = llmjson.Decode(text, &reply)
	}
	if err == nil && len(reply.Foods) == 0 {
		err = errNoFoods
	}
	c.journal(OpFoodAnalysis, userID, model.FormatDate(c.now().In(c.loc)), prompt, text, err, start)
	if err != nil {
		log.Printf("❌ food analysis failed: %v", err)
		return FailedNutritionResult()
	}

	return model.NutritionResult{
		Success:           true,
		Foods:             reply.Foods,
		TotalNutrition:    reply.TotalNutrition,
		Description:       reply.Description,
		Confidence:        normalizeConfidence(reply.Confidence),
		SuggestedMealType: normalizeMealType(reply.SuggestedMealType),
	}
}

func normalizeConfidence(s string) model.Confidence {
	switch c := model.Confidence(s); c {
	case model.ConfidenceHigh, model.ConfidenceMedium, model.ConfidenceLow:
		return c
	}
	return model.ConfidenceLow
}

func normalizeMealType(s string) model.MealType {
	switch m := model.MealType(s); m {
	case model.MealBreakfast, model.MealLunch, model.MealDinner, model.MealSnack:
		return m
	}
	return model.MealSnack
}

func (c *Coach) collect(ctx context.Context, msgs []llm.Message) (string, error) {
	if c.client == nil {
		return "", errNoClient
	}
	return llm.Collect(ctx, c.client, msgs)
}

func (c *Coach) journal(op, userID, date, prompt, reply string, err error, start time.Time) {
	if c.recorder == nil {
		return
	}
	ev := storage.Event{
		Timestamp: c.now(),
		UserID:    userID,
		Operation: op,
		Date:      date,
		Prompt:    prompt,
		Reply:     reply,
		Fallback:  err != nil,
		Duration:  time.Since(start).Milliseconds(),
	}
	if err != nil {
		ev.Error = err.Error()
	}
	if jerr := c.recorder.AppendInteraction(ev); jerr != nil {
		log.Printf("⚠️ failed to journal %s: %v", op, fmt.Errorf("append: %w", jerr))
	}
}
