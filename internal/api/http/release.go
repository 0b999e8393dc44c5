package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/testportal/portal/internal/audit"
	"github.com/testportal/portal/internal/exam"
)

// POST /exams/{examID}/release  { "released": true }
// Releasing requires every question to carry an answer key; an
// incomplete exam is forced back to unreleased no matter what the
// request asked for.
func ReleaseResultsHandler(store exam.Store, events *audit.EventRepo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		examID := chi.URLParam(r, "examID")
		var req struct {
			Released bool `json:"released"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}

		e, err := store.GetExam(r.Context(), examID)
		if err != nil {
			if errors.Is(err, exam.ErrExamNotFound) {
				http.Error(w, err.Error(), http.StatusNotFound)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		if req.Released && !e.Complete() {
			if err := store.SetResultsReleased(r.Context(), examID, false); err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			http.Error(w, "exam has questions without answer keys", http.StatusConflict)
			return
		}

		if err := store.SetResultsReleased(r.Context(), examID, req.Released); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		appendEvent(r, events, audit.TypeResultsReleased, examID, map[string]any{"released": req.Released})
		writeJSON(w, http.StatusOK, map[string]any{"id": examID, "results_released": req.Released})
	}
}
