package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/testportal/portal/internal/exam"
)

// GET /exams/{examID}/export — CSV of graded results with one status
// column per question.
func ExportResultsHandler(store exam.Store) http.HandlerFunc {
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
		subs, err := store.ListSubmissions(r.Context(), examID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		buf, err := exam.ResultsCSV(exam.Flatten(e.Sections), subs)
		if err != nil {
			http.Error(w, "export: "+err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="results-`+examID+`.csv"`)
		_, _ = w.Write(buf)
	}
}
