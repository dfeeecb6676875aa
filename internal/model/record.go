// Package model defines the records exchanged between the store, the analyzers
// and the front ends.
package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout is the calendar-day format used by EventRecord.Date and Feedback.Date.
const DateLayout = "2006-01-02"

// Kind selects what an EventRecord measures. The unit of Value is implied by the kind:
//
//	diet     kcal estimate (not used consistently; Metadata calories is authoritative)
//	sleep    hours slept
//	activity minutes active
//	weight   kilograms
//	mood     score 1-5
type Kind string

const (
	KindDiet     Kind = "diet"
	KindSleep    Kind = "sleep"
	KindActivity Kind = "activity"
	KindWeight   Kind = "weight"
	KindMood     Kind = "mood"
)

// Kinds lists every kind in declaration order.
var Kinds = []Kind{KindDiet, KindSleep, KindActivity, KindWeight, KindMood}

func (k Kind) Valid() bool {
	switch k {
	case KindDiet, KindSleep, KindActivity, KindWeight, KindMood:
		return true
	}
	return false
}

// Unit returns the unit of EventRecord.Value for the kind.
func (k Kind) Unit() string {
	switch k {
	case KindDiet:
		return "kcal"
	case KindSleep:
		return "h"
	case KindActivity:
		return "min"
	case KindWeight:
		return "kg"
	case KindMood:
		return "/5"
	}
	return ""
}

// Label is the human-readable name used in transcripts.
func (k Kind) Label() string {
	switch k {
	case KindDiet:
		return "Meal"
	case KindSleep:
		return "Sleep"
	case KindActivity:
		return "Activity"
	case KindWeight:
		return "Weight"
	case KindMood:
		return "Mood"
	}
	return string(k)
}

// EventRecord is one logged health observation.
// Date drives all daily grouping; Timestamp only orders records within a day.
type EventRecord struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Timestamp time.Time `json:"timestamp"`
	Date      string    `json:"date"`
	Kind      Kind      `json:"type"`
	Value     float64   `json:"value"`
	Metadata  Metadata  `json:"metadata"`
}

type eventRecordJSON struct {
	ID        string          `json:"id"`
	UserID    string          `json:"userId"`
	Timestamp time.Time       `json:"timestamp"`
	Date      string          `json:"date"`
	Kind      Kind            `json:"type"`
	Value     float64         `json:"value"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
}

// UnmarshalJSON decodes the flat metadata object into the payload selected by the kind.
func (r *EventRecord) UnmarshalJSON(data []byte) error {
	var raw eventRecordJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	meta, err := DecodeMetadata(raw.Kind, raw.Metadata)
	if err != nil {
		return fmt.Errorf("record %s metadata: %w", raw.ID, err)
	}
	*r = EventRecord{
		ID:        raw.ID,
		UserID:    raw.UserID,
		Timestamp: raw.Timestamp,
		Date:      raw.Date,
		Kind:      raw.Kind,
		Value:     raw.Value,
		Metadata:  meta,
	}
	return nil
}

// Duration is the activity duration in minutes, 0 when missing.
func (r EventRecord) Duration() float64 {
	return r.Metadata.Activity().Duration
}

// Calories is the meal calorie estimate, 0 when missing.
func (r EventRecord) Calories() float64 {
	return r.Metadata.Diet().Calories
}

// MoodScore returns the explicit mood score, falling back to Value when absent.
func (r EventRecord) MoodScore() float64 {
	if s := r.Metadata.Mood().MoodScore; s != 0 {
		return float64(s)
	}
	return r.Value
}

// Describe returns the description-like metadata text of the record, if any.
func (r EventRecord) Describe() string {
	if r.Metadata.Description != "" {
		return r.Metadata.Description
	}
	switch r.Kind {
	case KindDiet:
		return r.Metadata.Diet().MealDescription
	case KindMood:
		return r.Metadata.Mood().MoodNote
	}
	return ""
}

// FormatDate renders t as a calendar day in t's location.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ValidDate reports whether s is a YYYY-MM-DD calendar day.
func ValidDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}
