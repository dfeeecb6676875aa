package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"lifelog-coach/internal/model"
)

var dataURLPrefix = regexp.MustCompile(`^data:(image/[\w.+-]+);base64,`)

// DecodeImage turns a base64 payload, with or without a data URL prefix, into bytes.
// The returned MIME type comes from the prefix, or is sniffed when there is none.
func DecodeImage(payload string) ([]byte, string, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return nil, "", &ResourceError{Message: "An image is required."}
	}
	mimeType := ""
	if m := dataURLPrefix.FindStringSubmatch(payload); m != nil {
		mimeType = m[1]
		payload = payload[len(m[0]):]
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", &ResourceError{Message: "The image could not be read."}
	}
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}
	return data, mimeType, nil
}

// AnalyzeFood checks the image and asks the coach for a nutrition estimate. Image problems
// are returned as *ResourceError; analysis failures come back as an unsuccessful result.
func (s *Service) AnalyzeFood(ctx context.Context, image []byte, mimeType string) (model.NutritionResult, error) {
	if len(image) == 0 {
		return model.NutritionResult{}, &ResourceError{Message: "An image is required."}
	}
	if int64(len(image)) > s.opts.MaxImageBytes {
		return model.NutritionResult{}, &ResourceError{
			Message:   fmt.Sprintf("The image is too large (max %dMB).", s.opts.MaxImageBytes>>20),
			Oversized: true,
		}
	}
	if mimeType == "" {
		mimeType = http.DetectContentType(image)
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return model.NutritionResult{}, &ResourceError{Message: "Only image files can be analysed."}
	}
	return s.coach.AnalyzeFood(ctx, s.opts.UserID, image, mimeType), nil
}

// FoodLogInput turns a nutrition result into a meal record.
type FoodLogInput struct {
	Date     string                `json:"date"`
	MealType model.MealType        `json:"mealType"`
	PhotoURL string                `json:"photoUrl"`
	Result   model.NutritionResult `json:"result"`
}

func (s *Service) SubmitFoodLog(ctx context.Context, in FoodLogInput) (model.EventRecord, error) {
	if !in.Result.Success {
		return model.EventRecord{}, invalid("result", "only a successful analysis can be logged")
	}
	mealType := in.MealType
	if mealType == "" {
		mealType = in.Result.SuggestedMealType
	}
	total := in.Result.TotalNutrition
	desc := in.Result.Description
	if desc == "" {
		names := make([]string, 0, len(in.Result.Foods))
		for _, f := range in.Result.Foods {
			names = append(names, f.Name)
		}
		desc = strings.Join(names, ", ")
	}
	return s.SubmitLog(ctx, LogInput{
		Date:  in.Date,
		Kind:  model.KindDiet,
		Value: total.Calories,
		Metadata: model.Metadata{Payload: model.DietMeta{
			MealType:        mealType,
			MealDescription: desc,
			Calories:        total.Calories,
			Protein:         total.Protein,
			Carbs:           total.Carbs,
			Fat:             total.Fat,
			Sodium:          total.Sodium,
			PhotoURL:        in.PhotoURL,
		}},
	})
}
