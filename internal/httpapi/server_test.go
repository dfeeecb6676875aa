package httpapi

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"lifelog-coach/internal/model"
	"lifelog-coach/internal/service"
	"lifelog-coach/internal/storage"
	"lifelog-coach/internal/store"
)

var now = time.Date(2025, 3, 10, 1, 0, 0, 0, time.UTC)

type stubCoach struct {
	daily int
	food  int
}

func (c *stubCoach) DailyFeedback(ctx context.Context, records []model.EventRecord, kind model.FeedbackKind, userID, date string) model.Feedback {
	c.daily++
	return model.Feedback{UserID: userID, Date: date, Kind: kind, Content: fmt.Sprintf("%d records", len(records))}
}

func (c *stubCoach) AnalyzePatterns(ctx context.Context, userID string, records []model.EventRecord) model.Analysis {
	return model.Analysis{Patterns: []string{"remote"}, Recommendations: []string{"rest"}}
}

func (c *stubCoach) AnalyzeFood(ctx context.Context, userID string, image []byte, mimeType string) model.NutritionResult {
	c.food++
	return model.NutritionResult{Success: true, Confidence: model.ConfidenceMedium, SuggestedMealType: model.MealDinner}
}

func newTestServer(t *testing.T, opts service.Options) (*Server, *stubCoach) {
	t.Helper()
	st, err := store.Open(context.Background(), storage.NewMemoryKV(), store.Options{
		Version:  "v3",
		Now:      func() time.Time { return now },
		Location: time.FixedZone("KST", 9*3600),
	})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	c := &stubCoach{}
	opts.Now = func() time.Time { return now }
	return NewServer(service.New(st, c, opts), ":0", 1<<20), c
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
}

func TestStatus(t *testing.T) {
	s, _ := newTestServer(t, service.Options{})
	rr := do(t, s, http.MethodGet, "/api/status", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status code %d", rr.Code)
	}
	var body map[string]interface{}
	decodeBody(t, rr, &body)
	if body["status"] != "healthy" {
		t.Fatalf("unexpected body %v", body)
	}
	if rr := do(t, s, http.MethodPost, "/api/status", ""); rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("want 405, got %d", rr.Code)
	}
}

func TestAnalyze(t *testing.T) {
	s, _ := newTestServer(t, service.Options{})
	if rr := do(t, s, http.MethodPost, "/api/analyze", `{"logs":[]}`); rr.Code != http.StatusBadRequest {
		t.Fatalf("empty logs: want 400, got %d", rr.Code)
	}
	if rr := do(t, s, http.MethodPost, "/api/analyze", `{"logs":`); rr.Code != http.StatusBadRequest {
		t.Fatalf("broken JSON: want 400, got %d", rr.Code)
	}

	rr := do(t, s, http.MethodPost, "/api/analyze", `{"logs":[{"id":"a","date":"2025-03-10","type":"sleep","value":5}]}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("want 200, got %d: %s", rr.Code, rr.Body)
	}
	var a model.Analysis
	decodeBody(t, rr, &a)
	// AI is not enabled, so the local analyzer answers.
	if len(a.Factors) != 1 || a.Factors[0].Name != "Sleep deficit" {
		t.Fatalf("unexpected analysis %+v", a)
	}
}

func TestAnalyzeDaily(t *testing.T) {
	s, c := newTestServer(t, service.Options{})
	rr := do(t, s, http.MethodPost, "/api/analyze/daily",
		`{"logs":[{"id":"a","timestamp":"2025-03-10T00:30:00Z","date":"2025-03-10","type":"mood","value":4}],"feedbackType":"evening","userId":"user-1","date":"2025-03-10"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("want 200, got %d: %s", rr.Code, rr.Body)
	}
	var out struct {
		Feedback model.Feedback `json:"feedback"`
	}
	decodeBody(t, rr, &out)
	if out.Feedback.Kind != model.FeedbackEvening || out.Feedback.Content != "1 records" {
		t.Fatalf("unexpected feedback %+v", out.Feedback)
	}
	if rr := do(t, s, http.MethodGet, "/api/feedback", ""); strings.Contains(rr.Body.String(), "evening") {
		t.Fatalf("posted logs must not be stored: %s", rr.Body)
	}

	for i := 0; i < 2; i++ {
		rr = do(t, s, http.MethodPost, "/api/analyze/daily", `{"feedbackType":"morning"}`)
		if rr.Code != http.StatusOK {
			t.Fatalf("stored request: %d %s", rr.Code, rr.Body)
		}
	}
	if c.daily != 2 {
		t.Fatalf("second stored request should reuse the feedback, coach calls %d", c.daily)
	}
}

func TestAnalyzeFood(t *testing.T) {
	s, c := newTestServer(t, service.Options{MaxImageBytes: 32})

	if rr := do(t, s, http.MethodPost, "/api/analyze/food", `{}`); rr.Code != http.StatusBadRequest {
		t.Fatalf("missing image: want 400, got %d", rr.Code)
	}
	big := base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{0xff, 0xd8, 0xff}, 20))
	if rr := do(t, s, http.MethodPost, "/api/analyze/food", `{"image":"data:image/jpeg;base64,`+big+`"}`); rr.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("oversized image: want 413, got %d", rr.Code)
	}
	small := base64.StdEncoding.EncodeToString([]byte{0xff, 0xd8, 0xff, 0xe0})
	rr := do(t, s, http.MethodPost, "/api/analyze/food", `{"image":"data:image/jpeg;base64,`+small+`"}`)
	if rr.Code != http.StatusOK || c.food != 1 {
		t.Fatalf("valid image: %d %s", rr.Code, rr.Body)
	}
	var res model.NutritionResult
	decodeBody(t, rr, &res)
	if !res.Success || res.SuggestedMealType != model.MealDinner {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestCRMSync(t *testing.T) {
	s, _ := newTestServer(t, service.Options{})
	if rr := do(t, s, http.MethodPost, "/api/crm/sync", `{"logs":[]}`); rr.Code != http.StatusBadRequest {
		t.Fatalf("missing userId: want 400, got %d", rr.Code)
	}
	body := `{"userId":"user-1","logs":[
		{"id":"a","timestamp":"2025-03-09T00:00:00Z","date":"2025-03-09","type":"sleep","value":8},
		{"id":"b","timestamp":"2025-03-10T00:00:00Z","date":"2025-03-10","type":"weight","value":70}
	],"feedbacks":[],"dateRange":{"from":"2025-03-10","to":"2025-03-10"}}`
	rr := do(t, s, http.MethodPost, "/api/crm/sync", body)
	if rr.Code != http.StatusOK {
		t.Fatalf("sync: %d %s", rr.Code, rr.Body)
	}
	var res service.SyncResult
	decodeBody(t, rr, &res)
	if !res.Success || res.RecordsCreated != 1 || res.Records[0].Summary != "Weight 70kg" {
		t.Fatalf("unexpected sync result %+v", res)
	}

	if rr := do(t, s, http.MethodGet, "/api/crm/sync", ""); rr.Code != http.StatusBadRequest {
		t.Fatalf("status without userId: want 400, got %d", rr.Code)
	}
	rr = do(t, s, http.MethodGet, "/api/crm/sync?userId=user-1", "")
	var status map[string]interface{}
	decodeBody(t, rr, &status)
	if status["status"] != "ready" || status["lastSyncAt"] != nil {
		t.Fatalf("unexpected status %v", status)
	}
}

func TestLogsCRUD(t *testing.T) {
	s, _ := newTestServer(t, service.Options{})
	rr := do(t, s, http.MethodPost, "/api/logs", `{"type":"mood","value":2,"metadata":{"moodScore":2,"moodNote":"tired"}}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", rr.Code, rr.Body)
	}
	var rec model.EventRecord
	decodeBody(t, rr, &rec)
	if rec.Date != "2025-03-10" || rec.Metadata.Mood().MoodNote != "tired" {
		t.Fatalf("unexpected record %+v", rec)
	}

	if rr := do(t, s, http.MethodPost, "/api/logs", `{"type":"mood","value":7}`); rr.Code != http.StatusBadRequest {
		t.Fatalf("invalid mood: want 400, got %d", rr.Code)
	}

	rr = do(t, s, http.MethodPatch, "/api/logs/"+rec.ID, `{"value":3,"metadata":{"moodScore":3}}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("patch: %d %s", rr.Code, rr.Body)
	}
	decodeBody(t, rr, &rec)
	if rec.Value != 3 || rec.MoodScore() != 3 {
		t.Fatalf("patch not applied %+v", rec)
	}

	rr = do(t, s, http.MethodGet, "/api/logs?type=mood", "")
	var list struct {
		Logs []model.EventRecord `json:"logs"`
	}
	decodeBody(t, rr, &list)
	if len(list.Logs) != 1 {
		t.Fatalf("want 1 log, got %d", len(list.Logs))
	}

	if rr := do(t, s, http.MethodDelete, "/api/logs/"+rec.ID, ""); rr.Code != http.StatusNoContent {
		t.Fatalf("delete: %d", rr.Code)
	}
	if rr := do(t, s, http.MethodGet, "/api/logs/"+rec.ID, ""); rr.Code != http.StatusNotFound {
		t.Fatalf("deleted record: want 404, got %d", rr.Code)
	}
	if rr := do(t, s, http.MethodDelete, "/api/logs/missing", ""); rr.Code != http.StatusNotFound {
		t.Fatalf("missing record: want 404, got %d", rr.Code)
	}
}

func TestProfileAndView(t *testing.T) {
	s, _ := newTestServer(t, service.Options{})
	if rr := do(t, s, http.MethodGet, "/api/profile", ""); rr.Code != http.StatusNotFound {
		t.Fatalf("no profile: want 404, got %d", rr.Code)
	}
	if rr := do(t, s, http.MethodPut, "/api/profile", `{"name":"Mina","height":162}`); rr.Code != http.StatusOK {
		t.Fatalf("put profile: %d %s", rr.Code, rr.Body)
	}
	rr := do(t, s, http.MethodPatch, "/api/profile", `{"targetWeight":55}`)
	var p model.UserProfile
	decodeBody(t, rr, &p)
	if p.Name != "Mina" || p.TargetWeight != 55 || p.Height != 162 {
		t.Fatalf("unexpected profile %+v", p)
	}

	if rr := do(t, s, http.MethodPut, "/api/view", `{"view":"settings"}`); rr.Code != http.StatusBadRequest {
		t.Fatalf("unknown view: want 400, got %d", rr.Code)
	}
	rr = do(t, s, http.MethodPut, "/api/view", `{"view":"insights","date":"2025-03-08"}`)
	var v viewState
	decodeBody(t, rr, &v)
	if v.View != store.ViewInsights || v.Date != "2025-03-08" {
		t.Fatalf("unexpected view %+v", v)
	}
}

func TestExport(t *testing.T) {
	s, _ := newTestServer(t, service.Options{})
	do(t, s, http.MethodPost, "/api/logs", `{"type":"sleep","value":7}`)
	rr := do(t, s, http.MethodGet, "/api/export", "")
	if got := rr.Header().Get("Content-Disposition"); got != `attachment; filename="lifelog-export-2025-03-10.json"` {
		t.Fatalf("unexpected disposition %q", got)
	}
	var raw service.RawExport
	decodeBody(t, rr, &raw)
	if len(raw.Records) != 1 || raw.Profile != nil {
		t.Fatalf("unexpected export %+v", raw)
	}

	if rr := do(t, s, http.MethodGet, "/api/export/crm?from=2025-03-10&to=2025-03-01", ""); rr.Code != http.StatusBadRequest {
		t.Fatalf("reversed range: want 400, got %d", rr.Code)
	}
	if rr := do(t, s, http.MethodDelete, "/api/data", ""); rr.Code != http.StatusNoContent {
		t.Fatalf("clear: %d", rr.Code)
	}
	if rr := do(t, s, http.MethodPost, "/api/demo", ""); rr.Code != http.StatusBadRequest {
		t.Fatalf("demo without seeder: want 400, got %d", rr.Code)
	}
}

func TestWriteErrorMapping(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{&service.ValidationError{Field: "date", Message: "bad"}, http.StatusBadRequest},
		{&service.ResourceError{Message: "unreadable"}, http.StatusBadRequest},
		{&service.ResourceError{Message: "big", Oversized: true}, http.StatusRequestEntityTooLarge},
		{fmt.Errorf("update log: %w", store.ErrNotFound), http.StatusNotFound},
		{store.ErrNoProfile, http.StatusNotFound},
		{service.ErrFeedbackInFlight, http.StatusConflict},
		{context.Canceled, http.StatusServiceUnavailable},
		{fmt.Errorf("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		rr := httptest.NewRecorder()
		writeError(rr, tt.err)
		if rr.Code != tt.want {
			t.Errorf("%v: got %d, want %d", tt.err, rr.Code, tt.want)
		}
	}
}
