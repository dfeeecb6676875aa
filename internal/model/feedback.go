package model

import (
	"strconv"
	"time"
)

type Impact string

const (
	ImpactPositive Impact = "positive"
	ImpactNegative Impact = "negative"
	ImpactNeutral  Impact = "neutral"
)

// NormalizeImpact maps anything outside the three known values to neutral.
func NormalizeImpact(s string) Impact {
	switch Impact(s) {
	case ImpactPositive, ImpactNegative, ImpactNeutral:
		return Impact(s)
	}
	return ImpactNeutral
}

// Factor is one named influence backing a feedback or an analysis.
type Factor struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Evidence    string `json:"evidence"`
	Impact      Impact `json:"impact"`
}

// FactorID returns the synthetic id of the i-th factor of a reply.
func FactorID(i int) string {
	return "factor-" + strconv.Itoa(i)
}

type FeedbackKind string

const (
	FeedbackMorning FeedbackKind = "morning"
	FeedbackEvening FeedbackKind = "evening"
	FeedbackWarning FeedbackKind = "warning"
)

func (k FeedbackKind) Valid() bool {
	switch k {
	case FeedbackMorning, FeedbackEvening, FeedbackWarning:
		return true
	}
	return false
}

// Daily reports whether the kind is one of the two daily slots.
func (k FeedbackKind) Daily() bool {
	return k == FeedbackMorning || k == FeedbackEvening
}

// SlotAt picks the daily slot for a local wall-clock time: morning before 18:00.
func SlotAt(t time.Time) FeedbackKind {
	if t.Hour() < 18 {
		return FeedbackMorning
	}
	return FeedbackEvening
}

type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Rank orders risk levels low < medium < high; unknown and empty levels rank 0.
func (r RiskLevel) Rank() int {
	switch r {
	case RiskLow:
		return 1
	case RiskMedium:
		return 2
	case RiskHigh:
		return 3
	}
	return 0
}

// NormalizeRisk returns the level when it is known and "" otherwise.
func NormalizeRisk(s string) RiskLevel {
	if r := RiskLevel(s); r.Rank() > 0 {
		return r
	}
	return ""
}

// Feedback is one AI- or rule-generated coaching message for a date.
type Feedback struct {
	ID            string       `json:"id"`
	UserID        string       `json:"userId"`
	Date          string       `json:"date"`
	Kind          FeedbackKind `json:"type"`
	Content       string       `json:"content"`
	Factors       []Factor     `json:"factors"`
	Prescriptions []string     `json:"prescriptions"`
	RiskLevel     RiskLevel    `json:"riskLevel,omitempty"`
	RiskReason    string       `json:"riskReason,omitempty"`
	CreatedAt     time.Time    `json:"createdAt"`
}
