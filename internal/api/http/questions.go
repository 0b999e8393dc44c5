package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/testportal/portal/internal/audit"
	"github.com/testportal/portal/internal/exam"
	"github.com/testportal/portal/internal/grading"
)

type recalcResponse struct {
	Recalculated bool                   `json:"recalculated"`
	Updated      int                    `json:"updated"`
	Attempted    int                    `json:"attempted"`
	Failed       []grading.BatchFailure `json:"failed,omitempty"`
	Message      string                 `json:"message"`
}

// PUT /exams/{examID}/questions — replace the question set. A
// structurally invalid body leaves the stored questions untouched. When
// the new set is complete, every stored submission is regraded against
// it; otherwise recalculation is skipped and results are forced
// unreleased.
func UpdateQuestionsHandler(store exam.Store, recalc *grading.Recalculator, events *audit.EventRepo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		examID := chi.URLParam(r, "examID")
		if _, err := store.GetExam(r.Context(), examID); err != nil {
			if errors.Is(err, exam.ErrExamNotFound) {
				http.Error(w, err.Error(), http.StatusNotFound)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "read body: "+err.Error(), http.StatusBadRequest)
			return
		}
		sections, err := exam.ParseQuestionSet(body)
		if err != nil {
			http.Error(w, "invalid questions: "+err.Error(), http.StatusBadRequest)
			return
		}

		if err := store.UpdateQuestions(r.Context(), examID, sections); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		appendEvent(r, events, audit.TypeAnswerKeyUpdated, examID, nil)

		res, err := recalc.Recalculate(r.Context(), examID, sections)
		if errors.Is(err, grading.ErrExamIncomplete) {
			if err := store.SetResultsReleased(r.Context(), examID, false); err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			writeJSON(w, http.StatusOK, recalcResponse{
				Recalculated: false,
				Message:      "questions saved; exam incomplete, results unreleased",
			})
			return
		}
		if err != nil {
			http.Error(w, "recalculate: "+err.Error(), http.StatusInternalServerError)
			return
		}
		appendEvent(r, events, audit.TypeExamRecalculated, examID, map[string]any{
			"updated": len(res.Succeeded), "failed": len(res.Failed),
		})

		writeJSON(w, http.StatusOK, recalcResponse{
			Recalculated: true,
			Updated:      len(res.Succeeded),
			Attempted:    res.Attempted(),
			Failed:       res.Failed,
			Message:      res.String(),
		})
	}
}
