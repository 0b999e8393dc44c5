package exam

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// SQLStore persists exams and submissions on sqlite or postgres.
// Question sections and per-question detail are stored as JSON text
// columns; ReplaceSubmissionResult updates score and detail in a single
// statement so readers never see them out of sync.
type SQLStore struct {
	db     *sql.DB
	driver string // "sqlite" or "postgres"
}

func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: db, driver: driver}
}

func (s *SQLStore) PutExam(ctx context.Context, e Exam) error {
	sj, err := json.Marshal(e.Sections)
	if err != nil {
		return fmt.Errorf("marshal sections: %w", err)
	}
	createdAt := e.CreatedAt
	if createdAt == 0 {
		createdAt = time.Now().Unix()
	}
	var expiry int64
	if e.ExpiryDate != nil {
		expiry = e.ExpiryDate.UTC().Unix()
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO exams (id,title,start_time,end_time,duration_min,attempts_allowed,expiry,disabled,results_released,sections_json,created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		 ON CONFLICT (id) DO UPDATE SET
		   title=EXCLUDED.title, start_time=EXCLUDED.start_time, end_time=EXCLUDED.end_time,
		   duration_min=EXCLUDED.duration_min, attempts_allowed=EXCLUDED.attempts_allowed,
		   expiry=EXCLUDED.expiry, disabled=EXCLUDED.disabled,
		   results_released=EXCLUDED.results_released, sections_json=EXCLUDED.sections_json`,
		e.ID, e.Title, e.StartTime.UTC().Unix(), e.EndTime.UTC().Unix(),
		e.DurationMin, e.AttemptsAllowed, expiry,
		boolInt(e.Disabled), boolInt(e.ResultsReleased), string(sj), createdAt)
	return err
}

func (s *SQLStore) GetExam(ctx context.Context, id string) (Exam, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id,title,start_time,end_time,duration_min,attempts_allowed,expiry,disabled,results_released,sections_json,created_at
		 FROM exams WHERE id=$1`, id)
	var (
		e                  Exam
		start, end, expiry int64
		disabled, released int
		sjson              string
	)
	err := row.Scan(&e.ID, &e.Title, &start, &end, &e.DurationMin, &e.AttemptsAllowed,
		&expiry, &disabled, &released, &sjson, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Exam{}, ErrExamNotFound
		}
		return Exam{}, err
	}
	e.StartTime = time.Unix(start, 0).UTC()
	e.EndTime = time.Unix(end, 0).UTC()
	if expiry != 0 {
		t := time.Unix(expiry, 0).UTC()
		e.ExpiryDate = &t
	}
	e.Disabled = disabled != 0
	e.ResultsReleased = released != 0
	if err := json.Unmarshal([]byte(sjson), &e.Sections); err != nil {
		return Exam{}, fmt.Errorf("unmarshal sections: %w", err)
	}
	return e, nil
}

func (s *SQLStore) ListExams(ctx context.Context, opts ListOpts) ([]ExamSummary, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	q := "%" + opts.Q + "%"
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,title,disabled,results_released,sections_json,created_at
		 FROM exams WHERE title LIKE $1
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`, q, limit, opts.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ExamSummary
	for rows.Next() {
		var (
			sum                ExamSummary
			disabled, released int
			sjson              string
		)
		if err := rows.Scan(&sum.ID, &sum.Title, &disabled, &released, &sjson, &sum.CreatedAt); err != nil {
			return nil, err
		}
		sum.Disabled = disabled != 0
		sum.ResultsReleased = released != 0
		var sections []Section
		if err := json.Unmarshal([]byte(sjson), &sections); err == nil {
			sum.QuestionCount = len(Flatten(sections))
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

func (s *SQLStore) UpdateQuestions(ctx context.Context, examID string, sections []Section) error {
	sj, err := json.Marshal(sections)
	if err != nil {
		return fmt.Errorf("marshal sections: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE exams SET sections_json=$1 WHERE id=$2`, string(sj), examID)
	if err != nil {
		return err
	}
	return checkAffected(res, ErrExamNotFound)
}

func (s *SQLStore) SetResultsReleased(ctx context.Context, examID string, released bool) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE exams SET results_released=$1 WHERE id=$2`, boolInt(released), examID)
	if err != nil {
		return err
	}
	return checkAffected(res, ErrExamNotFound)
}

func (s *SQLStore) PutSubmission(ctx context.Context, sub Submission) error {
	dj, err := json.Marshal(sub.Details)
	if err != nil {
		return fmt.Errorf("marshal details: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO submissions (id,exam_id,student_id,display_name,submitted_at,total_time_sec,score,details_json)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		sub.ID, sub.ExamID, sub.StudentID, sub.DisplayName,
		sub.SubmittedAt.UTC().UnixMilli(), sub.TotalTimeSec, sub.Score, string(dj))
	return err
}

func (s *SQLStore) GetSubmission(ctx context.Context, id string) (Submission, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id,exam_id,student_id,display_name,submitted_at,total_time_sec,score,details_json
		 FROM submissions WHERE id=$1`, id)
	return scanSubmission(row.Scan)
}

func (s *SQLStore) ListSubmissions(ctx context.Context, examID string) ([]Submission, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,exam_id,student_id,display_name,submitted_at,total_time_sec,score,details_json
		 FROM submissions WHERE exam_id=$1 ORDER BY submitted_at ASC`, examID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Submission
	for rows.Next() {
		sub, err := scanSubmission(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, sub)
	}
	return out, rows.Err()
}

func (s *SQLStore) CountSubmissions(ctx context.Context, examID, studentID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM submissions WHERE exam_id=$1 AND student_id=$2`,
		examID, studentID).Scan(&n)
	return n, err
}

func (s *SQLStore) ReplaceSubmissionResult(ctx context.Context, submissionID string, score float64, details []QuestionDetail) error {
	dj, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("marshal details: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE submissions SET score=$1, details_json=$2 WHERE id=$3`,
		score, string(dj), submissionID)
	if err != nil {
		return err
	}
	return checkAffected(res, ErrSubmissionNotFound)
}

func scanSubmission(scan func(dest ...any) error) (Submission, error) {
	var (
		sub         Submission
		submittedAt int64
		djson       string
	)
	err := scan(&sub.ID, &sub.ExamID, &sub.StudentID, &sub.DisplayName,
		&submittedAt, &sub.TotalTimeSec, &sub.Score, &djson)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Submission{}, ErrSubmissionNotFound
		}
		return Submission{}, err
	}
	sub.SubmittedAt = time.UnixMilli(submittedAt).UTC()
	if err := json.Unmarshal([]byte(djson), &sub.Details); err != nil {
		return Submission{}, fmt.Errorf("unmarshal details: %w", err)
	}
	return sub, nil
}

func checkAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
