package httpadapter

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/kirillkom/intellexa/internal/core/domain"
	"github.com/kirillkom/intellexa/internal/core/ports"
)

var errMissingUser = errors.New("missing X-User-Id header")

// Router wires the HTTP surface to the use cases. Handlers stay thin:
// decode, call, map error kind to status, encode.
type Router struct {
	ingest      ports.MaterialIngestor
	processor   ports.MaterialProcessor
	regenerator ports.SummaryRegenerator
	chat        ports.ChatService
	quiz        ports.QuizService
	stats       ports.StatsService

	materials  ports.MaterialRepository
	summaries  ports.SummaryStore
	flashcards ports.FlashcardStore

	metricsHandler http.Handler
	maxUploadBytes int64
}

type RouterOptions struct {
	Ingest      ports.MaterialIngestor
	Processor   ports.MaterialProcessor
	Regenerator ports.SummaryRegenerator
	Chat        ports.ChatService
	Quiz        ports.QuizService
	Stats       ports.StatsService

	Materials  ports.MaterialRepository
	Summaries  ports.SummaryStore
	Flashcards ports.FlashcardStore

	MetricsHandler http.Handler
	MaxUploadBytes int64
}

func NewRouter(opts RouterOptions) *Router {
	return &Router{
		ingest:         opts.Ingest,
		processor:      opts.Processor,
		regenerator:    opts.Regenerator,
		chat:           opts.Chat,
		quiz:           opts.Quiz,
		stats:          opts.Stats,
		materials:      opts.Materials,
		summaries:      opts.Summaries,
		flashcards:     opts.Flashcards,
		metricsHandler: opts.MetricsHandler,
		maxUploadBytes: opts.MaxUploadBytes,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", rt.healthz)
	if rt.metricsHandler != nil {
		mux.Handle("GET /metrics", rt.metricsHandler)
	}

	mux.HandleFunc("POST /v1/materials", rt.uploadMaterials)
	mux.HandleFunc("GET /v1/materials", rt.listMaterials)
	mux.HandleFunc("GET /v1/materials/{id}", rt.getMaterial)
	mux.HandleFunc("DELETE /v1/materials/{id}", rt.deleteMaterial)
	mux.HandleFunc("POST /v1/materials/{id}/retry", rt.retryGeneration)

	mux.HandleFunc("GET /v1/materials/{id}/summaries", rt.listSummaries)
	mux.HandleFunc("GET /v1/materials/{id}/summaries/{difficulty}", rt.getSummary)
	mux.HandleFunc("POST /v1/materials/{id}/summaries", rt.regenerateSummary)

	mux.HandleFunc("GET /v1/materials/{id}/flashcards", rt.getFlashcards)

	mux.HandleFunc("GET /v1/materials/{id}/quiz", rt.getQuiz)
	mux.HandleFunc("POST /v1/materials/{id}/quiz/attempts", rt.submitQuiz)
	mux.HandleFunc("GET /v1/materials/{id}/quiz/attempts", rt.listAttempts)

	mux.HandleFunc("POST /v1/materials/{id}/chat", rt.askChat)
	mux.HandleFunc("GET /v1/materials/{id}/chat", rt.chatHistory)

	mux.HandleFunc("GET /v1/stats", rt.getStats)

	return requestIDMiddleware(accessLogMiddleware(mux))
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
}

// userID pulls the caller identity set by the auth boundary in front of
// this service. Requests without it are rejected before any use case
// runs.
func userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.Header.Get("X-User-Id")
	if id == "" {
		writeError(w, domain.WrapError(domain.ErrUnauthorized, "authenticate", errMissingUser))
		return "", false
	}
	return id, true
}
