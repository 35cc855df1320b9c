package httpadapter

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/kirillkom/intellexa/internal/core/domain"
)

func (rt *Router) listSummaries(w http.ResponseWriter, r *http.Request) {
	user, ok := userID(w, r)
	if !ok {
		return
	}

	materialID := r.PathValue("id")
	if _, err := rt.materials.GetForUser(r.Context(), materialID, user); err != nil {
		writeError(w, err)
		return
	}

	variants, err := rt.summaries.ListByMaterial(r.Context(), materialID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"summaries": variants})
}

func (rt *Router) getSummary(w http.ResponseWriter, r *http.Request) {
	user, ok := userID(w, r)
	if !ok {
		return
	}

	difficulty, ok := parseDifficulty(w, r.PathValue("difficulty"))
	if !ok {
		return
	}

	materialID := r.PathValue("id")
	if _, err := rt.materials.GetForUser(r.Context(), materialID, user); err != nil {
		writeError(w, err)
		return
	}

	variant, err := rt.summaries.Get(r.Context(), materialID, difficulty)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, variant)
}

func (rt *Router) regenerateSummary(w http.ResponseWriter, r *http.Request) {
	user, ok := userID(w, r)
	if !ok {
		return
	}

	var req struct {
		Difficulty string `json:"difficulty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	difficulty, ok := parseDifficulty(w, req.Difficulty)
	if !ok {
		return
	}

	variant, err := rt.regenerator.Regenerate(r.Context(), user, r.PathValue("id"), difficulty)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, variant)
}

func (rt *Router) getFlashcards(w http.ResponseWriter, r *http.Request) {
	user, ok := userID(w, r)
	if !ok {
		return
	}

	materialID := r.PathValue("id")
	if _, err := rt.materials.GetForUser(r.Context(), materialID, user); err != nil {
		writeError(w, err)
		return
	}

	set, err := rt.flashcards.Get(r.Context(), materialID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, set)
}

func (rt *Router) getQuiz(w http.ResponseWriter, r *http.Request) {
	user, ok := userID(w, r)
	if !ok {
		return
	}

	view, err := rt.quiz.TakingView(r.Context(), user, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (rt *Router) submitQuiz(w http.ResponseWriter, r *http.Request) {
	user, ok := userID(w, r)
	if !ok {
		return
	}

	var req struct {
		Answers []int `json:"answers"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	attempt, err := rt.quiz.Submit(r.Context(), user, r.PathValue("id"), req.Answers)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, attempt)
}

func (rt *Router) listAttempts(w http.ResponseWriter, r *http.Request) {
	user, ok := userID(w, r)
	if !ok {
		return
	}

	attempts, err := rt.quiz.Attempts(r.Context(), user, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"attempts": attempts})
}

func parseDifficulty(w http.ResponseWriter, raw string) (domain.Difficulty, bool) {
	difficulty, ok := domain.ParseDifficulty(raw)
	if !ok {
		writeError(w, domain.WrapError(domain.ErrInvalidInput, "parse difficulty",
			fmt.Errorf("unknown difficulty %q", raw)))
		return "", false
	}
	return difficulty, true
}
