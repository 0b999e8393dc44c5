package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	authmw "github.com/testportal/portal/internal/auth/middleware"
	"github.com/testportal/portal/internal/exam"
	"github.com/testportal/portal/internal/grading"
	"github.com/testportal/portal/internal/rbac"
)

type createSubmissionReq struct {
	Answers      []exam.Answer `json:"answers"`
	TimeSpent    []int         `json:"time_spent"`
	TotalTimeSec int           `json:"total_time_sec"`
}

// POST /exams/{examID}/submissions — grade and record one attempt for
// the authenticated student.
func CreateSubmissionHandler(store exam.Store, scorer *grading.Scorer) http.HandlerFunc {
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
		if e.Disabled {
			http.Error(w, "exam disabled", http.StatusForbidden)
			return
		}
		now := time.Now().UTC()
		if e.ExpiryDate != nil && now.After(*e.ExpiryDate) {
			http.Error(w, "exam expired", http.StatusForbidden)
			return
		}

		studentID := authmw.SubjectFromContext(r.Context())
		if studentID == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		if e.AttemptsAllowed > 0 {
			n, err := store.CountSubmissions(r.Context(), examID, studentID)
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			if n >= e.AttemptsAllowed {
				http.Error(w, "attempt limit reached", http.StatusForbidden)
				return
			}
		}

		var req createSubmissionReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}

		g := scorer.GradeExam(exam.Flatten(e.Sections), req.Answers, req.TimeSpent)
		sub := exam.Submission{
			ID:           uuid.NewString(),
			ExamID:       examID,
			StudentID:    studentID,
			DisplayName:  authmw.DisplayNameFromContext(r.Context()),
			SubmittedAt:  now,
			TotalTimeSec: req.TotalTimeSec,
			Score:        g.Score,
			Details:      g.Details,
		}
		if err := store.PutSubmission(r.Context(), sub); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusCreated, sub)
	}
}

// GET /submissions/{submissionID}
func GetSubmissionHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "submissionID")
		sub, err := store.GetSubmission(r.Context(), id)
		if err != nil {
			if errors.Is(err, exam.ErrSubmissionNotFound) {
				http.Error(w, err.Error(), http.StatusNotFound)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		// students may only read their own attempts
		if rbac.RoleFromContext(r.Context()) != "admin" &&
			authmw.SubjectFromContext(r.Context()) != sub.StudentID {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		writeJSON(w, http.StatusOK, sub)
	}
}

// GET /exams/{examID}/submissions — admin monitoring view.
func ListSubmissionsHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		examID := chi.URLParam(r, "examID")
		subs, err := store.ListSubmissions(r.Context(), examID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, subs)
	}
}
