// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aceai/aceai/internal/adapters/media"
	"github.com/aceai/aceai/internal/adapters/repository"
	service "github.com/aceai/aceai/internal/app"
	"github.com/aceai/aceai/internal/domain/session"
	"github.com/aceai/aceai/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// BeginInterview uploads a resume and opens a session.
	BeginInterview(ctx context.Context, up types.Upload) (types.Created, error)

	// Session reads and turn transitions.
	State(ctx context.Context, id string) (types.State, error)
	StartTurn(ctx context.Context, id string) (types.State, error)
	StopTurn(ctx context.Context, id string) (types.State, error)
	DeliverTranscript(ctx context.Context, id, text string) (bool, error)
	Advance(ctx context.Context, id string) (types.State, error)
	Exit(ctx context.Context, id string) error
	Report(ctx context.Context, id string) ([]types.ReportEntry, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	interviewHandler *InterviewHandler
	dashboardHandler *dashboardHandler
}

// ServerOption applies a configuration option to the server.
type ServerOption func(*Server)

// WithMaxUploadBytes caps resume upload request bodies.
func WithMaxUploadBytes(n int64) ServerOption {
	return func(s *Server) {
		if n > 0 {
			s.interviewHandler.maxUploadBytes = n
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...ServerOption) *Server {
	s := &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(statsProvider),
		interviewHandler: NewInterviewHandler(deps),
		dashboardHandler: newDashboardHandler(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/dashboard", s.dashboardHandler.HandleDashboard)
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/interviews", MetricsMiddleware(s.interviewHandler.HandleCollection, "interviews"))
	mux.HandleFunc("/interviews/", MetricsMiddleware(s.interviewHandler.HandleItem, "interviews"))
}

// transcriptRequest is the body of POST /interviews/{id}/transcript.
type transcriptRequest struct {
	Text string `json:"text"`
}

type transcriptAck struct {
	Accepted bool `json:"accepted"`
}

type reportResponse struct {
	ID      string              `json:"id"`
	Entries []types.ReportEntry `json:"entries"`
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

// writeMapped translates service errors to HTTP status codes.
func writeMapped(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", Wrap(op, err))
	case errors.Is(err, service.ErrBusy):
		writeError(w, http.StatusConflict, "busy", Wrap(op, err))
	case errors.Is(err, session.ErrSessionComplete),
		errors.Is(err, service.ErrNoActiveQuestion),
		errors.Is(err, media.ErrTurnActive),
		errors.Is(err, media.ErrNotAcquired):
		writeError(w, http.StatusConflict, "invalid_state", Wrap(op, err))
	case errors.Is(err, service.ErrMissingFile),
		errors.Is(err, service.ErrUnsupportedFile):
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
	case errors.Is(err, service.ErrUploadTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, "too_large", Wrap(op, err))
	case errors.Is(err, service.ErrQuestionService):
		writeError(w, http.StatusBadGateway, "upstream_error", Wrap(op, err))
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
	}
}
