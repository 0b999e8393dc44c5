package grading

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/testportal/portal/internal/exam"
)

// ErrExamIncomplete is returned when an answer-key edit leaves questions
// without keys; recalculation is skipped entirely in that case and the
// caller must keep results unreleased.
var ErrExamIncomplete = errors.New("exam has questions without answer keys")

// SubmissionStore is the persistence surface the recalculator needs.
// ReplaceSubmissionResult must swap score and detail in one write so a
// reader never observes a score inconsistent with its detail array.
type SubmissionStore interface {
	ListSubmissions(ctx context.Context, examID string) ([]exam.Submission, error)
	ReplaceSubmissionResult(ctx context.Context, submissionID string, score float64, details []exam.QuestionDetail) error
}

// BatchFailure records one submission that could not be updated.
type BatchFailure struct {
	SubmissionID string `json:"submission_id"`
	Err          error  `json:"-"`
	Reason       string `json:"reason"`
}

// BatchResult is the outcome of a best-effort recalculation pass.
type BatchResult struct {
	Succeeded []string       `json:"succeeded"`
	Failed    []BatchFailure `json:"failed"`
}

func (b BatchResult) Attempted() int { return len(b.Succeeded) + len(b.Failed) }

func (b BatchResult) String() string {
	return fmt.Sprintf("recalculated %d of %d", len(b.Succeeded), b.Attempted())
}

// Recalculator replays every stored submission of an exam against an
// updated question set. It is the only writer of graded results after
// submit time.
type Recalculator struct {
	store  SubmissionStore
	scorer *Scorer
	log    *slog.Logger
}

func NewRecalculator(store SubmissionStore, scorer *Scorer, log *slog.Logger) *Recalculator {
	if log == nil {
		log = slog.Default()
	}
	return &Recalculator{store: store, scorer: scorer, log: log}
}

// Recalculate regrades all submissions of examID against updated. The
// original answers are reconstructed from each submission's detail
// records, so nothing is lost across key edits; per-question time spent
// is carried over unchanged. The batch is best-effort: a failed write is
// recorded and the remaining submissions are still attempted. The error
// return is reserved for conditions that prevent the batch from starting
// at all.
func (r *Recalculator) Recalculate(ctx context.Context, examID string, updated []exam.Section) (BatchResult, error) {
	flat := exam.Flatten(updated)
	if len(flat) == 0 {
		return BatchResult{}, ErrExamIncomplete
	}
	for _, q := range flat {
		if !q.Complete() {
			return BatchResult{}, ErrExamIncomplete
		}
	}

	subs, err := r.store.ListSubmissions(ctx, examID)
	if err != nil {
		return BatchResult{}, fmt.Errorf("list submissions: %w", err)
	}

	var res BatchResult
	for _, sub := range subs {
		g := r.scorer.GradeExam(flat, sub.Answers(), sub.TimeSpent())
		if err := r.store.ReplaceSubmissionResult(ctx, sub.ID, g.Score, g.Details); err != nil {
			r.log.Warn("submission update failed",
				"exam_id", examID, "submission_id", sub.ID, "err", err)
			res.Failed = append(res.Failed, BatchFailure{
				SubmissionID: sub.ID, Err: err, Reason: err.Error(),
			})
			continue
		}
		res.Succeeded = append(res.Succeeded, sub.ID)
	}

	r.log.Info("recalculation finished",
		"exam_id", examID, "updated", len(res.Succeeded), "failed", len(res.Failed))
	return res, nil
}
