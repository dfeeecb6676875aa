package model

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestEventRecord_DecodesKindPayload(t *testing.T) {
	raw := `{"id":"a","userId":"user-1","timestamp":"2025-01-20T07:00:00Z","date":"2025-01-20","type":"activity","value":40,
		"metadata":{"activityType":"running","intensity":"high","duration":40,"description":"park run","shoeSize":270}}`
	var r EventRecord
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if r.Kind != KindActivity || r.Duration() != 40 {
		t.Fatalf("unexpected record: %+v", r)
	}
	act := r.Metadata.Activity()
	if act.ActivityType != "running" || act.Intensity != IntensityHigh {
		t.Fatalf("payload not decoded: %+v", act)
	}
	if r.Describe() != "park run" {
		t.Fatalf("description lost: %q", r.Describe())
	}
	if _, ok := r.Metadata.Extra["shoeSize"]; !ok {
		t.Fatalf("unknown key not preserved: %+v", r.Metadata.Extra)
	}

	out, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(out)
	for _, want := range []string{`"type":"activity"`, `"duration":40`, `"shoeSize":270`, `"description":"park run"`} {
		if !strings.Contains(s, want) {
			t.Fatalf("encoded record missing %s: %s", want, s)
		}
	}
}

func TestEventRecord_MoodScoreFallsBackToValue(t *testing.T) {
	withScore := EventRecord{Kind: KindMood, Value: 2, Metadata: Metadata{Payload: MoodMeta{MoodScore: 5}}}
	if withScore.MoodScore() != 5 {
		t.Fatalf("want explicit score 5, got %v", withScore.MoodScore())
	}
	bare := EventRecord{Kind: KindMood, Value: 3}
	if bare.MoodScore() != 3 {
		t.Fatalf("want fallback to value 3, got %v", bare.MoodScore())
	}
}

func TestEventRecord_DescribeUsesMealDescription(t *testing.T) {
	r := EventRecord{Kind: KindDiet, Metadata: Metadata{Payload: &DietMeta{MealDescription: "bibimbap", Calories: 650}}}
	if r.Describe() != "bibimbap" {
		t.Fatalf("got %q", r.Describe())
	}
	if r.Calories() != 650 {
		t.Fatalf("pointer payload not read: %v", r.Calories())
	}
	if (EventRecord{Kind: KindSleep, Value: 7}).Describe() != "" {
		t.Fatalf("sleep without description should describe as empty")
	}
}

func TestSlotAt(t *testing.T) {
	loc := time.UTC
	if SlotAt(time.Date(2025, 1, 1, 17, 59, 0, 0, loc)) != FeedbackMorning {
		t.Fatalf("17:59 should be morning")
	}
	if SlotAt(time.Date(2025, 1, 1, 18, 0, 0, 0, loc)) != FeedbackEvening {
		t.Fatalf("18:00 should be evening")
	}
}

func TestRiskRankAndNormalize(t *testing.T) {
	if !(RiskLow.Rank() < RiskMedium.Rank() && RiskMedium.Rank() < RiskHigh.Rank()) {
		t.Fatalf("risk order broken")
	}
	if NormalizeRisk("severe") != "" || NormalizeRisk("high") != RiskHigh {
		t.Fatalf("normalize risk mismatch")
	}
	if NormalizeImpact("great") != ImpactNeutral {
		t.Fatalf("unknown impact should be neutral")
	}
}
