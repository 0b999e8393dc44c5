package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/testportal/portal/internal/exam"
	"github.com/testportal/portal/internal/rbac"
)

// GET /exams/{examID}/leaderboard — first-attempt ranking, visible to
// students only after results are released.
func LeaderboardHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		examID := chi.URLParam(r, "examID")
		e, err := store.GetExam(r.Context(), examID)
		if err != nil {
			if errors.Is(err, exam.ErrExamNotFound) {
				http.Error(w, err.Error(), http.StatusNotFound)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if !e.ResultsReleased && rbac.RoleFromContext(r.Context()) != "admin" {
			http.Error(w, "results not released", http.StatusForbidden)
			return
		}
		subs, err := store.ListSubmissions(r.Context(), examID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, exam.BuildLeaderboard(subs))
	}
}
