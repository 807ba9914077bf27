// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/aceai/aceai/internal/domain/types"
)

// Default upload limits.
const (
	defaultMaxUploadBytes = 10 << 20
	multipartMemoryBytes  = 1 << 20
)

// InterviewHandler handles the interview collection and item routes.
type InterviewHandler struct {
	deps           Dependencies
	maxUploadBytes int64
}

// NewInterviewHandler creates a new interview handler.
func NewInterviewHandler(deps Dependencies) *InterviewHandler {
	return &InterviewHandler{
		deps:           deps,
		maxUploadBytes: defaultMaxUploadBytes,
	}
}

// HandleCollection handles POST /interviews requests.
func (h *InterviewHandler) HandleCollection(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_interview"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	up, err := h.parseUpload(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	created, err := h.deps.BeginInterview(r.Context(), up)
	if err != nil {
		writeMapped(w, op, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// parseUpload reads the multipart creation form. A missing file is reported
// before any field is trusted; deeper validation belongs to the service.
func (h *InterviewHandler) parseUpload(w http.ResponseWriter, r *http.Request) (types.Upload, error) {
	// The multipart envelope adds a little over the raw file size.
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+multipartMemoryBytes)

	if err := r.ParseMultipartForm(multipartMemoryBytes); err != nil {
		return types.Upload{}, errors.New("invalid multipart form")
	}

	f, hdr, err := r.FormFile("file")
	if err != nil {
		return types.Upload{}, errors.New("missing resume file")
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return types.Upload{}, errors.New("failed to read resume file")
	}

	return types.Upload{
		FileName:        hdr.Filename,
		Content:         content,
		JobDescription:  r.FormValue("job_description"),
		KnowledgeDomain: r.FormValue("knowledge_domain"),
	}, nil
}

// HandleItem routes /interviews/{id} and /interviews/{id}/{action} requests.
func (h *InterviewHandler) HandleItem(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/interviews/")
	parts := strings.SplitN(strings.Trim(rest, "/"), "/", 2)
	id := parts[0]
	if id == "" {
		http.NotFound(w, r)
		return
	}

	action := ""
	if len(parts) == 2 {
		action = parts[1]
	}

	switch {
	case action == "" && r.Method == http.MethodGet:
		h.handleState(w, r, id)
	case action == "" && r.Method == http.MethodDelete:
		h.handleExit(w, r, id)
	case action == "record" && r.Method == http.MethodPost:
		h.handleRecord(w, r, id)
	case action == "stop" && r.Method == http.MethodPost:
		h.handleStop(w, r, id)
	case action == "transcript" && r.Method == http.MethodPost:
		h.handleTranscript(w, r, id)
	case action == "advance" && r.Method == http.MethodPost:
		h.handleAdvance(w, r, id)
	case action == "report" && r.Method == http.MethodGet:
		h.handleReport(w, r, id)
	default:
		http.NotFound(w, r)
	}
}

func (h *InterviewHandler) handleState(w http.ResponseWriter, r *http.Request, id string) {
	const op = "api.get_interview"
	st, err := h.deps.State(r.Context(), id)
	if err != nil {
		writeMapped(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (h *InterviewHandler) handleExit(w http.ResponseWriter, r *http.Request, id string) {
	const op = "api.exit_interview"
	if err := h.deps.Exit(r.Context(), id); err != nil {
		writeMapped(w, op, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *InterviewHandler) handleRecord(w http.ResponseWriter, r *http.Request, id string) {
	const op = "api.record_turn"
	st, err := h.deps.StartTurn(r.Context(), id)
	if err != nil {
		writeMapped(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (h *InterviewHandler) handleStop(w http.ResponseWriter, r *http.Request, id string) {
	const op = "api.stop_turn"
	st, err := h.deps.StopTurn(r.Context(), id)
	if err != nil {
		writeMapped(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (h *InterviewHandler) handleTranscript(w http.ResponseWriter, r *http.Request, id string) {
	const op = "api.push_transcript"

	var req transcriptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	accepted, err := h.deps.DeliverTranscript(r.Context(), id, req.Text)
	if err != nil {
		writeMapped(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, transcriptAck{Accepted: accepted})
}

func (h *InterviewHandler) handleAdvance(w http.ResponseWriter, r *http.Request, id string) {
	const op = "api.advance_interview"
	st, err := h.deps.Advance(r.Context(), id)
	if err != nil {
		writeMapped(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (h *InterviewHandler) handleReport(w http.ResponseWriter, r *http.Request, id string) {
	const op = "api.get_report"
	entries, err := h.deps.Report(r.Context(), id)
	if err != nil {
		writeMapped(w, op, err)
		return
	}
	if entries == nil {
		entries = []types.ReportEntry{}
	}
	writeJSON(w, http.StatusOK, reportResponse{ID: id, Entries: entries})
}
