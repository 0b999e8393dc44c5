package audit

import (
	"context"
	"database/sql"
	"time"
)

// Event types appended by the admin surfaces.
const (
	TypeExamPublished    = "ExamPublished"
	TypeAnswerKeyUpdated = "AnswerKeyUpdated"
	TypeExamRecalculated = "ExamRecalculated"
	TypeResultsReleased  = "ResultsReleased"
)

type Event struct {
	Offset    int64
	Type      string
	Key       string // natural key: examID or submissionID
	DataJSON  string
	CreatedAt int64
}

// EventRepo appends admin actions to the event_log table. Append-only;
// the log is never consulted by the grading flow itself.
type EventRepo struct{ db *sql.DB }

func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

func (r *EventRepo) Append(ctx context.Context, e Event) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO event_log (typ, key, data, created_at)
		 VALUES ($1,$2,$3,$4)`,
		e.Type, e.Key, e.DataJSON, time.Now().Unix())
	return err
}
