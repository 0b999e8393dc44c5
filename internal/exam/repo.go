package exam

import (
	"context"
	"errors"
)

var (
	ErrExamNotFound       = errors.New("exam not found")
	ErrSubmissionNotFound = errors.New("submission not found")
)

type ListOpts struct {
	Q      string
	Limit  int
	Offset int
}

// Store is the persistence surface for exams and their submissions.
// Submission results are written once at submit time; after that only
// ReplaceSubmissionResult may touch score and detail, and it replaces
// both in a single write.
type Store interface {
	PutExam(ctx context.Context, e Exam) error
	GetExam(ctx context.Context, id string) (Exam, error)
	ListExams(ctx context.Context, opts ListOpts) ([]ExamSummary, error)
	UpdateQuestions(ctx context.Context, examID string, sections []Section) error
	SetResultsReleased(ctx context.Context, examID string, released bool) error

	PutSubmission(ctx context.Context, s Submission) error
	GetSubmission(ctx context.Context, id string) (Submission, error)
	ListSubmissions(ctx context.Context, examID string) ([]Submission, error)
	CountSubmissions(ctx context.Context, examID, studentID string) (int, error)
	ReplaceSubmissionResult(ctx context.Context, submissionID string, score float64, details []QuestionDetail) error
}
