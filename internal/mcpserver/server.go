// Package mcpserver exposes the lifelog service as Model Context Protocol tools.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"lifelog-coach/internal/crm"
	"lifelog-coach/internal/model"
	"lifelog-coach/internal/service"
)

// LogEventParams are the arguments of the log_event tool.
type LogEventParams struct {
	Type     string         `json:"type" mcp:"record type: diet, sleep, activity, weight or mood"`
	Value    float64        `json:"value" mcp:"kcal, hours, minutes, kg or mood score 1-5 depending on type"`
	Date     string         `json:"date,omitempty" mcp:"calendar day YYYY-MM-DD (default: selected day)"`
	Metadata map[string]any `json:"metadata,omitempty" mcp:"type-specific fields, e.g. moodScore, duration, calories"`
}

type ListLogsParams struct {
	Date string `json:"date,omitempty" mcp:"calendar day YYYY-MM-DD"`
	Type string `json:"type,omitempty" mcp:"record type filter"`
}

type FeedbackParams struct {
	Type string `json:"type,omitempty" mcp:"morning or evening (default: current slot)"`
	Date string `json:"date,omitempty" mcp:"calendar day YYYY-MM-DD (default: today)"`
}

type InsightsParams struct {
	Save bool `json:"save,omitempty" mcp:"store the analysis as a morning feedback"`
}

type ExportCRMParams struct {
	UserID string `json:"user_id,omitempty" mcp:"user identifier (default: local user)"`
	From   string `json:"from,omitempty" mcp:"first day YYYY-MM-DD"`
	To     string `json:"to,omitempty" mcp:"last day YYYY-MM-DD"`
}

type EmptyParams struct{}

// Server adapts service.Service to MCP tool handlers.
type Server struct {
	svc *service.Service
}

func New(svc *service.Service) *Server {
	return &Server{svc: svc}
}

// NewMCPServer builds an MCP server with every lifelog tool registered.
func NewMCPServer(svc *service.Service, version string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "lifelog-coach-mcp",
		Version: version,
	}, nil)
	n := New(svc).Register(server)
	log.Printf("📋 Registered %d lifelog tools", n)
	return server
}

// Register adds the tools to server and returns how many were added.
func (s *Server) Register(server *mcp.Server) int {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "log_event",
		Description: "Records a health event (meal, sleep, activity, weight or mood)",
	}, s.LogEvent)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_logs",
		Description: "Lists recorded health events, optionally for one day and type",
	}, s.ListLogs)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "request_daily_feedback",
		Description: "Returns the morning or evening coaching feedback for a day, generating it once",
	}, s.RequestDailyFeedback)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "weekly_insights",
		Description: "Analyses the last 7 days of records into patterns, factors and recommendations",
	}, s.WeeklyInsights)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "export_crm",
		Description: "Builds per-day CRM summaries of the records and feedback",
	}, s.ExportCRM)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "export_raw_data",
		Description: "Returns every stored record, feedback and the profile as JSON",
	}, s.ExportRawData)
	return 6
}

func textResult(text string) *mcp.CallToolResultFor[any] {
	return &mcp.CallToolResultFor[any]{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

func jsonResult(v any) *mcp.CallToolResultFor[any] {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult(fmt.Errorf("failed to encode result: %w", err))
	}
	return textResult(string(b))
}

// errorResult reports a tool failure to the model; only validation messages are shown verbatim.
func errorResult(err error) *mcp.CallToolResultFor[any] {
	var (
		ve *service.ValidationError
		re *service.ResourceError
	)
	text := fmt.Sprintf("❌ %v", err)
	switch {
	case errors.As(err, &ve):
		text = "❌ invalid input: " + ve.Error()
	case errors.As(err, &re):
		text = "❌ " + re.Message
	case errors.Is(err, service.ErrFeedbackInFlight):
		text = "⏳ feedback for this slot is already being prepared"
	default:
		log.Printf("❌ MCP tool failed: %v", err)
	}
	return &mcp.CallToolResultFor[any]{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

func (s *Server) LogEvent(ctx context.Context, session *mcp.ServerSession, params *mcp.CallToolParamsFor[LogEventParams]) (*mcp.CallToolResultFor[any], error) {
	args := params.Arguments
	kind := model.Kind(args.Type)

	var meta model.Metadata
	if len(args.Metadata) > 0 {
		raw, err := json.Marshal(args.Metadata)
		if err != nil {
			return errorResult(err), nil
		}
		meta, err = model.DecodeMetadata(kind, raw)
		if err != nil {
			return errorResult(&service.ValidationError{Field: "metadata", Message: err.Error()}), nil
		}
	}

	rec, err := s.svc.SubmitLog(ctx, service.LogInput{
		Date:     args.Date,
		Kind:     kind,
		Value:    args.Value,
		Metadata: meta,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(rec), nil
}

func (s *Server) ListLogs(ctx context.Context, session *mcp.ServerSession, params *mcp.CallToolParamsFor[ListLogsParams]) (*mcp.CallToolResultFor[any], error) {
	logs, err := s.svc.Logs(params.Arguments.Date, model.Kind(params.Arguments.Type))
	if err != nil {
		return errorResult(err), nil
	}
	if len(logs) == 0 {
		return textResult("No records found."), nil
	}
	return jsonResult(logs), nil
}

func (s *Server) RequestDailyFeedback(ctx context.Context, session *mcp.ServerSession, params *mcp.CallToolParamsFor[FeedbackParams]) (*mcp.CallToolResultFor[any], error) {
	kind := model.FeedbackKind(params.Arguments.Type)
	if kind == "" {
		kind = s.svc.CurrentSlot()
	}
	f, err := s.svc.RequestDailyFeedback(ctx, params.Arguments.Date, kind)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(f), nil
}

func (s *Server) WeeklyInsights(ctx context.Context, session *mcp.ServerSession, params *mcp.CallToolParamsFor[InsightsParams]) (*mcp.CallToolResultFor[any], error) {
	out, err := s.svc.Insights(ctx, params.Arguments.Save)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(out), nil
}

func (s *Server) ExportCRM(ctx context.Context, session *mcp.ServerSession, params *mcp.CallToolParamsFor[ExportCRMParams]) (*mcp.CallToolResultFor[any], error) {
	args := params.Arguments
	userID := args.UserID
	if userID == "" {
		userID = s.svc.UserID()
	}
	var rng *crm.DateRange
	if args.From != "" || args.To != "" {
		rng = &crm.DateRange{From: args.From, To: args.To}
	}
	days, err := s.svc.ExportCRM(userID, rng)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(days), nil
}

func (s *Server) ExportRawData(ctx context.Context, session *mcp.ServerSession, params *mcp.CallToolParamsFor[EmptyParams]) (*mcp.CallToolResultFor[any], error) {
	return jsonResult(s.svc.ExportRawData()), nil
}
