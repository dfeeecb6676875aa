package demo

import (
	"testing"
	"time"

	"lifelog-coach/internal/analyzer"
	"lifelog-coach/internal/model"
	"lifelog-coach/internal/store"
)

var _ store.Seeder = Seed

func TestSeed_DatesEndToday(t *testing.T) {
	loc := time.FixedZone("KST", 9*3600)
	now := time.Date(2025, 6, 30, 20, 0, 0, 0, time.UTC) // 05:00 on Jul 1 in KST
	st := Seed(now, loc)

	latest := ""
	for _, r := range st.Records {
		if r.Date > latest {
			latest = r.Date
		}
		if r.Timestamp.After(now) {
			t.Fatalf("record %s is in the future: %v", r.ID, r.Timestamp)
		}
		if !model.ValidDate(r.Date) || !r.Kind.Valid() {
			t.Fatalf("bad record %+v", r)
		}
	}
	if latest != "2025-07-01" {
		t.Fatalf("demo data should end today in loc, got %s", latest)
	}
	if st.Profile == nil || st.Profile.ID != UserID {
		t.Fatalf("profile missing")
	}
	if got := analyzer.Window(st.Records, now.In(loc)); len(got) != len(st.Records) {
		t.Fatalf("all demo records should fall in the 7-day window: %d of %d", len(got), len(st.Records))
	}
}

func TestSeed_FeedbackFactorsHaveIDs(t *testing.T) {
	st := Seed(time.Now(), time.UTC)
	warnings := 0
	for _, f := range st.Feedbacks {
		if f.Kind == model.FeedbackWarning {
			warnings++
		}
		for i, factor := range f.Factors {
			if factor.ID != model.FactorID(i) || factor.Description != factor.Evidence {
				t.Fatalf("factor not normalised: %+v", factor)
			}
		}
	}
	if warnings != 1 {
		t.Fatalf("want one warning feedback, got %d", warnings)
	}
}
