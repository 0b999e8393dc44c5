package grading_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/testportal/portal/internal/exam"
	"github.com/testportal/portal/internal/grading"
)

type fakeSubStore struct {
	subs     []exam.Submission
	listErr  error
	failIDs  map[string]error
	replaced map[string]struct {
		score   float64
		details []exam.QuestionDetail
	}
}

func newFakeSubStore(subs ...exam.Submission) *fakeSubStore {
	return &fakeSubStore{
		subs:    subs,
		failIDs: map[string]error{},
		replaced: map[string]struct {
			score   float64
			details []exam.QuestionDetail
		}{},
	}
}

func (f *fakeSubStore) ListSubmissions(_ context.Context, _ string) ([]exam.Submission, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.subs, nil
}

func (f *fakeSubStore) ReplaceSubmissionResult(_ context.Context, id string, score float64, details []exam.QuestionDetail) error {
	if err, ok := f.failIDs[id]; ok {
		return err
	}
	f.replaced[id] = struct {
		score   float64
		details []exam.QuestionDetail
	}{score, details}
	return nil
}

func sections(qs ...exam.Question) []exam.Section {
	return []exam.Section{{Questions: qs}}
}

func gradedSub(id string, scorer *grading.Scorer, qs []exam.Question, answers []exam.Answer) exam.Submission {
	g := scorer.GradeExam(qs, answers, make([]int, len(qs)))
	return exam.Submission{
		ID:          id,
		StudentID:   "stu-" + id,
		SubmittedAt: time.Now(),
		Score:       g.Score,
		Details:     g.Details,
	}
}

func TestRecalculate_RegradesAllSubmissions(t *testing.T) {
	scorer := grading.NewScorer()
	oldQs := []exam.Question{singleQ(intPtr(1))}

	store := newFakeSubStore(
		gradedSub("s1", scorer, oldQs, []exam.Answer{idx(1)}), // was correct
		gradedSub("s2", scorer, oldQs, []exam.Answer{idx(2)}), // was wrong
	)
	rc := grading.NewRecalculator(store, scorer, nil)

	// Key flips from 1 to 2.
	res, err := rc.Recalculate(context.Background(), "e1", sections(singleQ(intPtr(2))))
	if err != nil {
		t.Fatalf("Recalculate: %v", err)
	}
	if len(res.Succeeded) != 2 || len(res.Failed) != 0 {
		t.Fatalf("got %d succeeded, %d failed", len(res.Succeeded), len(res.Failed))
	}

	if got := store.replaced["s1"].score; got != -1 {
		t.Errorf("s1 score = %v, want -1", got)
	}
	if got := store.replaced["s2"].score; got != 4 {
		t.Errorf("s2 score = %v, want 4", got)
	}
	// Original answers must survive inside the rewritten details.
	d := store.replaced["s2"].details
	if len(d) != 1 || d[0].AnswerGiven.Selected == nil || *d[0].AnswerGiven.Selected != 2 {
		t.Errorf("s2 answer not preserved: %+v", d)
	}
}

func TestRecalculate_Idempotent(t *testing.T) {
	scorer := grading.NewScorer()
	qs := []exam.Question{singleQ(intPtr(1)), numericQ(strPtr("7"))}
	sub := gradedSub("s1", scorer, qs, []exam.Answer{idx(1), val("8")})

	store := newFakeSubStore(sub)
	rc := grading.NewRecalculator(store, scorer, nil)

	// Same keys: regrading must reproduce the stored result.
	if _, err := rc.Recalculate(context.Background(), "e1", sections(qs...)); err != nil {
		t.Fatalf("Recalculate: %v", err)
	}
	got := store.replaced["s1"]
	if got.score != sub.Score {
		t.Errorf("score changed: %v -> %v", sub.Score, got.score)
	}
	if len(got.details) != len(sub.Details) {
		t.Fatalf("detail length changed: %d -> %d", len(sub.Details), len(got.details))
	}
	for i := range got.details {
		if got.details[i].MarksAwarded != sub.Details[i].MarksAwarded {
			t.Errorf("q%d marks changed: %v -> %v", i,
				sub.Details[i].MarksAwarded, got.details[i].MarksAwarded)
		}
	}
}

func TestRecalculate_BestEffortOnFailure(t *testing.T) {
	scorer := grading.NewScorer()
	qs := []exam.Question{singleQ(intPtr(0))}

	store := newFakeSubStore(
		gradedSub("s1", scorer, qs, []exam.Answer{idx(0)}),
		gradedSub("s2", scorer, qs, []exam.Answer{idx(1)}),
		gradedSub("s3", scorer, qs, []exam.Answer{idx(0)}),
	)
	store.failIDs["s2"] = errors.New("disk full")

	rc := grading.NewRecalculator(store, scorer, nil)
	res, err := rc.Recalculate(context.Background(), "e1", sections(qs...))
	if err != nil {
		t.Fatalf("Recalculate: %v", err)
	}

	if len(res.Succeeded) != 2 {
		t.Errorf("succeeded = %v, want s1 and s3", res.Succeeded)
	}
	if len(res.Failed) != 1 || res.Failed[0].SubmissionID != "s2" {
		t.Fatalf("failed = %+v, want exactly s2", res.Failed)
	}
	if res.Failed[0].Reason != "disk full" {
		t.Errorf("reason = %q", res.Failed[0].Reason)
	}
	if res.Attempted() != 3 {
		t.Errorf("attempted = %d, want 3", res.Attempted())
	}
	// s3 must have been written despite s2 failing.
	if _, ok := store.replaced["s3"]; !ok {
		t.Error("s3 was not updated after s2 failed")
	}
}

func TestRecalculate_IncompleteExamSkipsBatch(t *testing.T) {
	scorer := grading.NewScorer()
	store := newFakeSubStore(gradedSub("s1", scorer,
		[]exam.Question{singleQ(intPtr(0))}, []exam.Answer{idx(0)}))
	rc := grading.NewRecalculator(store, scorer, nil)

	for name, secs := range map[string][]exam.Section{
		"missing key":  sections(singleQ(nil)),
		"no questions": sections(),
		"incomplete passage": sections(exam.Question{
			Kind: exam.KindPassage,
			Sub:  []exam.Question{singleQ(nil)},
		}),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := rc.Recalculate(context.Background(), "e1", secs)
			if !errors.Is(err, grading.ErrExamIncomplete) {
				t.Fatalf("err = %v, want ErrExamIncomplete", err)
			}
			if len(store.replaced) != 0 {
				t.Error("submissions were written for an incomplete exam")
			}
		})
	}
}

func TestRecalculate_ListError(t *testing.T) {
	store := newFakeSubStore()
	store.listErr = errors.New("db gone")
	rc := grading.NewRecalculator(store, grading.NewScorer(), nil)

	_, err := rc.Recalculate(context.Background(), "e1", sections(singleQ(intPtr(0))))
	if err == nil || errors.Is(err, grading.ErrExamIncomplete) {
		t.Fatalf("err = %v, want wrapped list error", err)
	}
}

func TestBatchResultString(t *testing.T) {
	b := grading.BatchResult{
		Succeeded: []string{"a", "b"},
		Failed:    []grading.BatchFailure{{SubmissionID: "c"}},
	}
	if got := b.String(); got != "recalculated 2 of 3" {
		t.Errorf("String() = %q", got)
	}
}
