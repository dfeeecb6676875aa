package model

import (
	"encoding/json"
	"fmt"
)

type MealType string

const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealDinner    MealType = "dinner"
	MealSnack     MealType = "snack"
)

type Intensity string

const (
	IntensityLow    Intensity = "low"
	IntensityMedium Intensity = "medium"
	IntensityHigh   Intensity = "high"
)

type WeightTime string

const (
	WeightMorning WeightTime = "am"
	WeightEvening WeightTime = "pm"
)

// Payload is the kind-specific part of Metadata. Only the types in this file implement it.
type Payload interface {
	PayloadKind() Kind
}

type DietMeta struct {
	MealType        MealType `json:"mealType,omitempty"`
	MealDescription string   `json:"mealDescription,omitempty"`
	Calories        float64  `json:"calories,omitempty"`
	Protein         float64  `json:"protein,omitempty"`
	Carbs           float64  `json:"carbs,omitempty"`
	Fat             float64  `json:"fat,omitempty"`
	Sodium          float64  `json:"sodium,omitempty"`
	PhotoURL        string   `json:"photoUrl,omitempty"`
}

type SleepMeta struct {
	SleepQuality int    `json:"sleepQuality,omitempty"`
	Bedtime      string `json:"bedtime,omitempty"`
	WakeTime     string `json:"wakeTime,omitempty"`
}

type ActivityMeta struct {
	ActivityType string    `json:"activityType,omitempty"`
	Intensity    Intensity `json:"intensity,omitempty"`
	Duration     float64   `json:"duration,omitempty"`
}

type WeightMeta struct {
	WeightTime WeightTime `json:"weightTime,omitempty"`
}

type MoodMeta struct {
	MoodScore int    `json:"moodScore,omitempty"`
	MoodNote  string `json:"moodNote,omitempty"`
}

func (DietMeta) PayloadKind() Kind     { return KindDiet }
func (SleepMeta) PayloadKind() Kind    { return KindSleep }
func (ActivityMeta) PayloadKind() Kind { return KindActivity }
func (WeightMeta) PayloadKind() Kind   { return KindWeight }
func (MoodMeta) PayloadKind() Kind     { return KindMood }

var payloadKeys = map[Kind][]string{
	KindDiet:     {"mealType", "mealDescription", "calories", "protein", "carbs", "fat", "sodium", "photoUrl"},
	KindSleep:    {"sleepQuality", "bedtime", "wakeTime"},
	KindActivity: {"activityType", "intensity", "duration"},
	KindWeight:   {"weightTime"},
	KindMood:     {"moodScore", "moodNote"},
}

// Metadata holds the kind-specific attributes of a record. On the wire it is one flat
// object; unknown keys survive a decode/encode round trip in Extra.
type Metadata struct {
	Description string
	Payload     Payload
	Extra       map[string]json.RawMessage
}

func (m Metadata) Diet() DietMeta {
	switch p := m.Payload.(type) {
	case DietMeta:
		return p
	case *DietMeta:
		if p != nil {
			return *p
		}
	}
	return DietMeta{}
}

func (m Metadata) Sleep() SleepMeta {
	switch p := m.Payload.(type) {
	case SleepMeta:
		return p
	case *SleepMeta:
		if p != nil {
			return *p
		}
	}
	return SleepMeta{}
}

func (m Metadata) Activity() ActivityMeta {
	switch p := m.Payload.(type) {
	case ActivityMeta:
		return p
	case *ActivityMeta:
		if p != nil {
			return *p
		}
	}
	return ActivityMeta{}
}

func (m Metadata) Weight() WeightMeta {
	switch p := m.Payload.(type) {
	case WeightMeta:
		return p
	case *WeightMeta:
		if p != nil {
			return *p
		}
	}
	return WeightMeta{}
}

func (m Metadata) Mood() MoodMeta {
	switch p := m.Payload.(type) {
	case MoodMeta:
		return p
	case *MoodMeta:
		if p != nil {
			return *p
		}
	}
	return MoodMeta{}
}

// MarshalJSON flattens description, payload and extra keys into one object.
func (m Metadata) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(m.Extra)+4)
	for k, v := range m.Extra {
		out[k] = v
	}
	if m.Payload != nil {
		b, err := json.Marshal(m.Payload)
		if err != nil {
			return nil, err
		}
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(b, &fields); err != nil {
			return nil, err
		}
		for k, v := range fields {
			out[k] = v
		}
	}
	if m.Description != "" {
		b, err := json.Marshal(m.Description)
		if err != nil {
			return nil, err
		}
		out["description"] = b
	}
	return json.Marshal(out)
}

// DecodeMetadata parses a flat metadata object into the payload selected by kind.
func DecodeMetadata(kind Kind, raw json.RawMessage) (Metadata, error) {
	var m Metadata
	if len(raw) == 0 || string(raw) == "null" {
		return m, nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return m, fmt.Errorf("decode metadata: %w", err)
	}
	if d, ok := fields["description"]; ok {
		if err := json.Unmarshal(d, &m.Description); err != nil {
			return m, fmt.Errorf("decode description: %w", err)
		}
	}

	var payload Payload
	switch kind {
	case KindDiet:
		var p DietMeta
		if err := json.Unmarshal(raw, &p); err != nil {
			return m, fmt.Errorf("decode diet metadata: %w", err)
		}
		payload = p
	case KindSleep:
		var p SleepMeta
		if err := json.Unmarshal(raw, &p); err != nil {
			return m, fmt.Errorf("decode sleep metadata: %w", err)
		}
		payload = p
	case KindActivity:
		var p ActivityMeta
		if err := json.Unmarshal(raw, &p); err != nil {
			return m, fmt.Errorf("decode activity metadata: %w", err)
		}
		payload = p
	case KindWeight:
		var p WeightMeta
		if err := json.Unmarshal(raw, &p); err != nil {
			return m, fmt.Errorf("decode weight metadata: %w", err)
		}
		payload = p
	case KindMood:
		var p MoodMeta
		if err := json.Unmarshal(raw, &p); err != nil {
			return m, fmt.Errorf("decode mood metadata: %w", err)
		}
		payload = p
	}
	m.Payload = payload

	known := map[string]bool{"description": true}
	for _, k := range payloadKeys[kind] {
		known[k] = true
	}
	for k, v := range fields {
		if known[k] {
			continue
		}
		if m.Extra == nil {
			m.Extra = make(map[string]json.RawMessage)
		}
		m.Extra[k] = v
	}
	return m, nil
}
