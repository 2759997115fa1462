// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/okian/rentura/internal/domain/findings"
	"github.com/okian/rentura/internal/domain/model"
	"github.com/okian/rentura/internal/domain/presenter"
)

// DefaultMaxUploadBytes caps an uploaded document unless configured otherwise.
const DefaultMaxUploadBytes = 20 << 20

// DocumentAnalyser runs an uploaded document through analysis and extraction.
type DocumentAnalyser interface {
	AnalyseDocument(ctx context.Context, filename string, r io.Reader) (model.Report, error)
}

// SummaryEvaluator runs a summary through extraction only.
type SummaryEvaluator interface {
	Evaluate(ctx context.Context, summary string) model.Report
}

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	DocumentAnalyser
	SummaryEvaluator
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	analyseHandler  *AnalyseHandler
	findingsHandler *FindingsHandler

	allowedOrigins []string
}

// Option configures a Server.
type Option func(*Server)

// WithMaxUploadBytes caps the accepted document size.
func WithMaxUploadBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.analyseHandler.maxBytes = n
		}
	}
}

// WithAllowedOrigins enables CORS for the given origins. "*" allows any.
func WithAllowedOrigins(origins ...string) Option {
	return func(s *Server) {
		s.allowedOrigins = origins
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		analyseHandler:  NewAnalyseHandler(deps, DefaultMaxUploadBytes),
		findingsHandler: NewFindingsHandler(deps),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	cors := CORSMiddleware(s.allowedOrigins)

	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/api/analyse", cors(MetricsMiddleware(s.analyseHandler.HandleAnalyse, "analyse")))
	mux.HandleFunc("/api/findings", cors(MetricsMiddleware(s.findingsHandler.HandleFindings, "findings")))
}

// reportResponse is the JSON shape of a processed analysis.
type reportResponse struct {
	ID       string          `json:"id"`
	Findings findings.List   `json:"findings"`
	Rows     []presenter.Row `json:"rows"`
	Empty    bool            `json:"empty"`
	Message  string          `json:"message,omitempty"`
	Checks   json.RawMessage `json:"checks,omitempty"`
	Stats    findings.Stats  `json:"stats"`
}

func newReportResponse(rep model.Report) reportResponse {
	list := rep.Findings
	if list == nil {
		list = findings.List{}
	}
	rows := rep.View.Rows
	if rows == nil {
		rows = []presenter.Row{}
	}
	return reportResponse{
		ID:       rep.ID,
		Findings: list,
		Rows:     rows,
		Empty:    rep.View.Empty,
		Message:  rep.View.Message,
		Checks:   rep.Checks,
		Stats:    rep.Stats,
	}
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

func writeMessage(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
