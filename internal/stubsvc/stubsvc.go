// Package stubsvc implements local stand-ins for the hosted question
// generation and feedback services. The interview simulator and local
// development runs point the gateway at these instead of the network.
package stubsvc

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/aceai/aceai/pkg/logger"
)

// Question bank served per knowledge domain. The default set is generic
// enough for any resume.
var questionBank = map[string][]string{
	"": {
		"Tell me about yourself and your background.",
		"Describe a challenging project you worked on recently.",
		"How do you approach debugging a production incident?",
		"Where do you see yourself in five years?",
	},
	"go": {
		"How do goroutines differ from operating system threads?",
		"When would you choose channels over mutexes?",
		"Explain how context cancellation propagates through an API.",
		"What does the race detector catch, and what does it miss?",
	},
	"distributed systems": {
		"Explain the trade-offs in the CAP theorem.",
		"How would you design an idempotent message consumer?",
		"What strategies limit the blast radius of a cascading failure?",
	},
}

// Filler words counted by the stub feedback analysis.
var fillerWords = map[string]struct{}{
	"um": {}, "uh": {}, "like": {}, "basically": {},
	"actually": {}, "literally": {}, "you": {}, "know": {},
}

// Server bundles both stub endpoints on one handler.
type Server struct {
	logger logger.Logger
}

// NewServer creates the stub services handler bundle.
func NewServer() *Server {
	return &Server{logger: logger.Get().Named("stubsvc")}
}

// Register attaches the stub routes to mux.
//
//	POST /upload   -> question generation
//	POST /analyze  -> answer feedback
func (s *Server) Register(mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.HandleFunc("/upload", s.handleUpload)
	mux.HandleFunc("/analyze", s.handleAnalyze)
}

// handleUpload answers like the hosted question service: a JSON envelope
// whose apiResponse field holds markdown-fenced JSON.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseMultipartForm(16 << 20); err != nil {
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return
	}
	if _, _, err := r.FormFile("file"); err != nil {
		http.Error(w, "missing resume file", http.StatusBadRequest)
		return
	}

	domain := strings.ToLower(strings.TrimSpace(r.FormValue("knowledge_domain")))
	questions, ok := questionBank[domain]
	if !ok {
		questions = questionBank[""]
	}

	s.logger.Info(r.Context(), "stub questions generated",
		logger.String("domain", domain),
		logger.Int("questions", len(questions)),
	)

	payload := buildFencedPayload(questions)
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(map[string]string{"apiResponse": payload})
}

// buildFencedPayload wraps a question list in the hosted service's
// sections/subsections shape and markdown fence.
func buildFencedPayload(questions []string) string {
	type subsection struct {
		Questions []string `json:"questions"`
	}
	type section struct {
		Subsections []subsection `json:"subsections"`
	}
	doc := struct {
		Sections []section `json:"sections"`
	}{
		Sections: []section{{Subsections: []subsection{{Questions: questions}}}},
	}

	raw, _ := json.Marshal(doc)
	return "```json\n" + string(raw) + "\n```"
}

type analyzeRequest struct {
	Question string `json:"question"`
	Response string `json:"response"`
}

type analyzeResponse struct {
	Feedback           string  `json:"feedback"`
	FillerPercentage   float64 `json:"filler_percentage"`
	Relevance          string  `json:"relevance"`
	RepeatedWordsCount int     `json:"repeated_words_count"`
	Sentiment          string  `json:"sentiment"`
}

// handleAnalyze scores an answer with cheap text heuristics so local runs
// produce plausible, deterministic feedback.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Response) == "" {
		http.Error(w, "empty response", http.StatusBadRequest)
		return
	}

	words := strings.Fields(strings.ToLower(req.Response))
	fillers := 0
	seen := map[string]int{}
	for _, word := range words {
		trimmed := strings.Trim(word, ".,!?;:")
		if _, ok := fillerWords[trimmed]; ok {
			fillers++
		}
		seen[trimmed]++
	}

	repeated := 0
	for _, n := range seen {
		if n > 2 {
			repeated++
		}
	}

	fillerPct := 0.0
	if len(words) > 0 {
		fillerPct = float64(fillers) / float64(len(words)) * 100
	}

	out := analyzeResponse{
		Feedback:           buildComment(len(words), fillerPct),
		FillerPercentage:   fillerPct,
		Relevance:          relevanceFor(req.Question, req.Response),
		RepeatedWordsCount: repeated,
		Sentiment:          sentimentFor(fillerPct),
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(out)
}

func buildComment(wordCount int, fillerPct float64) string {
	switch {
	case wordCount < 10:
		return "The answer is very short; expand with a concrete example."
	case fillerPct > 15:
		return fmt.Sprintf("Solid content, but %.0f%% filler words distract from it.", fillerPct)
	default:
		return "Well structured answer with a clear narrative."
	}
}

// relevanceFor counts question keywords echoed in the response.
func relevanceFor(question, response string) string {
	q := strings.Fields(strings.ToLower(question))
	resp := strings.ToLower(response)

	hits := 0
	for _, word := range q {
		if len(word) > 4 && strings.Contains(resp, strings.Trim(word, ".,?")) {
			hits++
		}
	}

	switch {
	case hits >= 3:
		return "high"
	case hits >= 1:
		return "medium"
	default:
		return "low"
	}
}

func sentimentFor(fillerPct float64) string {
	if fillerPct > 20 {
		return "neutral"
	}
	return "positive"
}
