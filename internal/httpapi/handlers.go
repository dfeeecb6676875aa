package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"lifelog-coach/internal/crm"
	"lifelog-coach/internal/model"
	"lifelog-coach/internal/service"
	"lifelog-coach/internal/store"
)

type analyzeRequest struct {
	Logs []model.EventRecord `json:"logs"`
}

// handleAnalyze runs a pattern analysis over the posted records.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := s.decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	if len(req.Logs) == 0 {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "There is no data to analyze."})
		return
	}
	writeJSON(w, http.StatusOK, s.svc.RequestPatternAnalysis(r.Context(), req.Logs))
}

type dailyRequest struct {
	// Logs, when present, are analysed as posted and nothing is stored.
	Logs         []model.EventRecord `json:"logs"`
	FeedbackType model.FeedbackKind  `json:"feedbackType"`
	UserID       string              `json:"userId"`
	Date         string              `json:"date"`
}

func (s *Server) handleAnalyzeDaily(w http.ResponseWriter, r *http.Request) {
	var req dailyRequest
	if err := s.decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	var (
		fb  model.Feedback
		err error
	)
	if req.Logs != nil {
		fb, err = s.svc.PreviewDailyFeedback(r.Context(), req.Logs, req.Date, req.FeedbackType)
	} else {
		kind := req.FeedbackType
		if kind == "" {
			kind = model.FeedbackMorning
		}
		fb, err = s.svc.RequestDailyFeedback(r.Context(), req.Date, kind)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]model.Feedback{"feedback": fb})
}

type foodRequest struct {
	Image string `json:"image"`
}

func (s *Server) handleAnalyzeFood(w http.ResponseWriter, r *http.Request) {
	var req foodRequest
	if err := s.decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	image, mimeType, err := service.DecodeImage(req.Image)
	if err != nil {
		writeError(w, err)
		return
	}
	result, err := s.svc.AnalyzeFood(r.Context(), image, mimeType)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type syncRequest struct {
	UserID    string              `json:"userId"`
	Logs      []model.EventRecord `json:"logs"`
	Feedbacks []model.Feedback    `json:"feedbacks"`
	DateRange *crm.DateRange      `json:"dateRange"`
}

func (s *Server) handleCRMSync(w http.ResponseWriter, r *http.Request) {
	var req syncRequest
	if err := s.decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	var (
		res service.SyncResult
		err error
	)
	if req.Logs != nil {
		res, err = s.svc.CRMSyncRecords(req.UserID, req.Logs, req.Feedbacks, req.DateRange)
	} else {
		res, err = s.svc.CRMSync(req.UserID, req.DateRange)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleCRMStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.svc.CRMStatus(r.URL.Query().Get("userId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleListLogs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	logs, err := s.svc.Logs(q.Get("date"), model.Kind(q.Get("type")))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]model.EventRecord{"logs": logs})
}

// logRequest carries metadata raw, because its shape depends on the record type.
type logRequest struct {
	UserID   string          `json:"userId"`
	Date     string          `json:"date"`
	Kind     model.Kind      `json:"type"`
	Value    float64         `json:"value"`
	Metadata json.RawMessage `json:"metadata"`
}

func metadataFor(kind model.Kind, raw json.RawMessage) (model.Metadata, error) {
	meta, err := model.DecodeMetadata(kind, raw)
	if err != nil {
		return model.Metadata{}, &service.ValidationError{Field: "metadata", Message: fmt.Sprintf("invalid metadata: %v", err)}
	}
	return meta, nil
}

func (s *Server) handleCreateLog(w http.ResponseWriter, r *http.Request) {
	var req logRequest
	if err := s.decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	meta, err := metadataFor(req.Kind, req.Metadata)
	if err != nil {
		writeError(w, err)
		return
	}
	rec, err := s.svc.SubmitLog(r.Context(), service.LogInput{
		UserID:   req.UserID,
		Date:     req.Date,
		Kind:     req.Kind,
		Value:    req.Value,
		Metadata: meta,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleCreateFoodLog(w http.ResponseWriter, r *http.Request) {
	var req service.FoodLogInput
	if err := s.decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	rec, err := s.svc.SubmitFoodLog(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleGetLog(w http.ResponseWriter, r *http.Request) {
	rec, err := s.svc.Log(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

type patchRequest struct {
	Date     *string         `json:"date"`
	Kind     *model.Kind     `json:"type"`
	Value    *float64        `json:"value"`
	Metadata json.RawMessage `json:"metadata"`
}

func (s *Server) handleUpdateLog(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	current, err := s.svc.Log(id)
	if err != nil {
		writeError(w, err)
		return
	}
	var req patchRequest
	if err := s.decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	patch := store.RecordPatch{Date: req.Date, Kind: req.Kind, Value: req.Value}
	if len(req.Metadata) > 0 {
		kind := current.Kind
		if req.Kind != nil {
			kind = *req.Kind
		}
		meta, err := metadataFor(kind, req.Metadata)
		if err != nil {
			writeError(w, err)
			return
		}
		patch.Metadata = &meta
	}
	rec, err := s.svc.UpdateLog(r.Context(), id, patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDeleteLog(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteLog(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListFeedback(w http.ResponseWriter, r *http.Request) {
	fbs, err := s.svc.Feedbacks(r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]model.Feedback{"feedbacks": fbs})
}

type feedbackRequest struct {
	Date string             `json:"date"`
	Kind model.FeedbackKind `json:"type"`
}

func (s *Server) handleRequestFeedback(w http.ResponseWriter, r *http.Request) {
	var req feedbackRequest
	if err := s.decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	fb, err := s.svc.RequestDailyFeedback(r.Context(), req.Date, req.Kind)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]model.Feedback{"feedback": fb})
}

func (s *Server) handleLatestFeedback(w http.ResponseWriter, r *http.Request) {
	fb, ok, err := s.svc.LatestFeedback(model.FeedbackKind(r.URL.Query().Get("type")))
	if err != nil {
		writeError(w, err)
		return
	}
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "No feedback yet."})
		return
	}
	writeJSON(w, http.StatusOK, map[string]model.Feedback{"feedback": fb})
}

type insightsRequest struct {
	Save bool `json:"save"`
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	var req insightsRequest
	if r.Method == http.MethodPost {
		if err := s.decode(w, r, &req); err != nil {
			writeError(w, err)
			return
		}
	}
	out, err := s.svc.Insights(r.Context(), req.Save)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.WeeklyStats())
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := s.svc.Profile()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleSetProfile(w http.ResponseWriter, r *http.Request) {
	var p model.UserProfile
	if err := s.decode(w, r, &p); err != nil {
		writeError(w, err)
		return
	}
	out, err := s.svc.SetProfile(r.Context(), p)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var patch model.ProfilePatch
	if err := s.decode(w, r, &patch); err != nil {
		writeError(w, err)
		return
	}
	out, err := s.svc.UpdateProfile(r.Context(), patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Disposition", "attachment; filename="+strconv.Quote(s.svc.ExportFileName()))
	writeJSON(w, http.StatusOK, s.svc.ExportRawData())
}

func (s *Server) handleExportCRM(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var rng *crm.DateRange
	if q.Get("from") != "" || q.Get("to") != "" {
		rng = &crm.DateRange{From: q.Get("from"), To: q.Get("to")}
	}
	userID := q.Get("userId")
	if userID == "" {
		userID = s.svc.UserID()
	}
	records, err := s.svc.ExportCRM(userID, rng)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]model.DaySummaryRecord{"records": records})
}

func (s *Server) handleDemo(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.LoadDemo(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded"})
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	s.svc.ClearAll(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

type viewState struct {
	View store.View `json:"view"`
	Date string     `json:"date"`
}

func (s *Server) handleGetView(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, viewState{View: s.svc.View(), Date: s.svc.SelectedDate()})
}

func (s *Server) handleSetView(w http.ResponseWriter, r *http.Request) {
	var req viewState
	if err := s.decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.View != "" {
		if err := s.svc.SetView(req.View); err != nil {
			writeError(w, err)
			return
		}
	}
	if req.Date != "" {
		if err := s.svc.SetSelectedDate(req.Date); err != nil {
			writeError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, viewState{View: s.svc.View(), Date: s.svc.SelectedDate()})
}
