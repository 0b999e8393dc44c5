package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/testportal/portal/internal/audit"
	"github.com/testportal/portal/internal/exam"
	"github.com/testportal/portal/internal/rbac"
)

type publishExamReq struct {
	Title           string          `json:"title"`
	StartTime       time.Time       `json:"start_time"`
	EndTime         time.Time       `json:"end_time"`
	DurationMin     int             `json:"duration_min"`
	AttemptsAllowed int             `json:"attempts_allowed"`
	ExpiryDate      *time.Time      `json:"expiry_date,omitempty"`
	Disabled        bool            `json:"disabled"`
	Questions       json.RawMessage `json:"questions"`
}

// POST /exams
func PublishExamHandler(store exam.Store, events *audit.EventRepo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req publishExamReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(req.Title) == "" {
			http.Error(w, "title required", http.StatusBadRequest)
			return
		}
		sections, err := exam.ParseQuestionSet(req.Questions)
		if err != nil {
			http.Error(w, "invalid questions: "+err.Error(), http.StatusBadRequest)
			return
		}
		attempts := req.AttemptsAllowed
		if attempts <= 0 {
			attempts = 1
		}

		e := exam.Exam{
			ID:              uuid.NewString(),
			Title:           req.Title,
			StartTime:       req.StartTime,
			EndTime:         req.EndTime,
			DurationMin:     req.DurationMin,
			AttemptsAllowed: attempts,
			ExpiryDate:      req.ExpiryDate,
			Disabled:        req.Disabled,
			Sections:        sections,
		}
		if err := store.PutExam(r.Context(), e); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		appendEvent(r, events, audit.TypeExamPublished, e.ID, map[string]any{"title": e.Title})

		writeJSON(w, http.StatusCreated, map[string]any{
			"id":       e.ID,
			"complete": e.Complete(),
		})
	}
}

// GET /exams/{examID} — answer keys are stripped unless the caller is an
// admin.
func GetExamHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "examID")
		e, err := store.GetExam(r.Context(), id)
		if err != nil {
			if errors.Is(err, exam.ErrExamNotFound) {
				http.Error(w, err.Error(), http.StatusNotFound)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if rbac.RoleFromContext(r.Context()) != "admin" {
			e = e.Sanitized()
		}
		writeJSON(w, http.StatusOK, e)
	}
}

// GET /exams?q=...&limit=50&offset=0
func ListExamsHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := store.ListExams(r.Context(), exam.ListOpts{
			Q:      strings.TrimSpace(r.URL.Query().Get("q")),
			Limit:  parseIntDefault(r.URL.Query().Get("limit"), 50),
			Offset: parseIntDefault(r.URL.Query().Get("offset"), 0),
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func appendEvent(r *http.Request, events *audit.EventRepo, typ, key string, data map[string]any) {
	if events == nil {
		return
	}
	buf, _ := json.Marshal(data)
	_ = events.Append(r.Context(), audit.Event{Type: typ, Key: key, DataJSON: string(buf)})
}
