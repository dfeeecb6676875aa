// Package httpapi serves the JSON API used by the mobile web front end.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"lifelog-coach/internal/service"
	"lifelog-coach/internal/store"
)

// Server is the HTTP front end over a service.Service.
type Server struct {
	svc          *service.Service
	server       *http.Server
	addr         string
	maxBodyBytes int64
	startTime    time.Time
}

// NewServer creates a server listening on addr. Request bodies are capped at maxBodyBytes;
// the cap has to leave room for a base64-encoded image.
func NewServer(svc *service.Service, addr string, maxBodyBytes int64) *Server {
	if maxBodyBytes <= 0 {
		maxBodyBytes = 16 << 20
	}
	return &Server{
		svc:          svc,
		addr:         addr,
		maxBodyBytes: maxBodyBytes,
		startTime:    time.Now(),
	}
}

// Handler returns the routed API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/status", s.handleStatus)

	// Routes of the original mobile web app
	mux.HandleFunc("POST /api/analyze", s.handleAnalyze)
	mux.HandleFunc("POST /api/analyze/daily", s.handleAnalyzeDaily)
	mux.HandleFunc("POST /api/analyze/food", s.handleAnalyzeFood)
	mux.HandleFunc("POST /api/crm/sync", s.handleCRMSync)
	mux.HandleFunc("GET /api/crm/sync", s.handleCRMStatus)

	// Stateful API over the local store
	mux.HandleFunc("GET /api/logs", s.handleListLogs)
	mux.HandleFunc("POST /api/logs", s.handleCreateLog)
	mux.HandleFunc("POST /api/logs/food", s.handleCreateFoodLog)
	mux.HandleFunc("GET /api/logs/{id}", s.handleGetLog)
	mux.HandleFunc("PATCH /api/logs/{id}", s.handleUpdateLog)
	mux.HandleFunc("DELETE /api/logs/{id}", s.handleDeleteLog)
	mux.HandleFunc("GET /api/feedback", s.handleListFeedback)
	mux.HandleFunc("POST /api/feedback", s.handleRequestFeedback)
	mux.HandleFunc("GET /api/feedback/latest", s.handleLatestFeedback)
	mux.HandleFunc("GET /api/insights", s.handleInsights)
	mux.HandleFunc("POST /api/insights", s.handleInsights)
	mux.HandleFunc("GET /api/stats", s.handleStats)
	mux.HandleFunc("GET /api/profile", s.handleGetProfile)
	mux.HandleFunc("PUT /api/profile", s.handleSetProfile)
	mux.HandleFunc("PATCH /api/profile", s.handleUpdateProfile)
	mux.HandleFunc("GET /api/export", s.handleExport)
	mux.HandleFunc("GET /api/export/crm", s.handleExportCRM)
	mux.HandleFunc("POST /api/demo", s.handleDemo)
	mux.HandleFunc("DELETE /api/data", s.handleClear)
	mux.HandleFunc("GET /api/view", s.handleGetView)
	mux.HandleFunc("PUT /api/view", s.handleSetView)

	return mux
}

// Start blocks serving requests until Stop is called.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.addr,
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Printf("🌐 Starting lifelog API on %s", s.addr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop shuts the server down, waiting up to 5 seconds for open requests.
func (s *Server) Stop() error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.server.Shutdown(ctx)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"service":   "lifelog-coach",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(s.startTime).String(),
	})
}

type errorBody struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("❌ encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	var (
		ve *service.ValidationError
		re *service.ResourceError
		mb *http.MaxBytesError
	)
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: ve.Message, Field: ve.Field})
	case errors.As(err, &re):
		status := http.StatusBadRequest
		if re.Oversized {
			status = http.StatusRequestEntityTooLarge
		}
		writeJSON(w, status, errorBody{Error: re.Message})
	case errors.As(err, &mb):
		writeJSON(w, http.StatusRequestEntityTooLarge, errorBody{Error: "Request body is too large."})
	case errors.Is(err, store.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: "Not found."})
	case errors.Is(err, store.ErrNoProfile):
		writeJSON(w, http.StatusNotFound, errorBody{Error: "No profile has been set up."})
	case errors.Is(err, service.ErrFeedbackInFlight):
		writeJSON(w, http.StatusConflict, errorBody{Error: "Feedback for this slot is already being prepared."})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "The request was cancelled."})
	default:
		log.Printf("❌ request failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "Internal server error"})
	}
}

// decode reads a JSON body into v. An empty body leaves v untouched.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, s.maxBodyBytes)
	dec := json.NewDecoder(body)
	if err := dec.Decode(v); err != nil {
		var mb *http.MaxBytesError
		if errors.As(err, &mb) {
			return err
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		return &service.ValidationError{Message: "Request body is not valid JSON."}
	}
	return nil
}
