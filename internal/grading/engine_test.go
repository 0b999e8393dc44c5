package grading_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/testportal/portal/internal/exam"
	"github.com/testportal/portal/internal/grading"
)

func intPtr(v int) *int         { return &v }
func strPtr(v string) *string   { return &v }
func idx(v int) exam.Answer     { return exam.Answer{Selected: intPtr(v)} }
func set(vs ...int) exam.Answer { return exam.Answer{SelectedSet: vs} }
func val(v string) exam.Answer  { return exam.Answer{Value: strPtr(v)} }

func singleQ(key *int) exam.Question {
	return exam.Question{
		Kind:          exam.KindSingle,
		Options:       []string{"a", "b", "c", "d"},
		SingleKey:     key,
		PositiveMarks: 4,
		NegativeMarks: 1,
	}
}

func multiQ(key ...int) exam.Question {
	return exam.Question{
		Kind:          exam.KindMulti,
		Options:       []string{"a", "b", "c", "d"},
		MultiKey:      key,
		PositiveMarks: 4,
		NegativeMarks: 1,
	}
}

func numericQ(key *string) exam.Question {
	return exam.Question{
		Kind:          exam.KindNumeric,
		NumericKey:    key,
		PositiveMarks: 4,
		NegativeMarks: 1,
	}
}

func TestScore_Single(t *testing.T) {
	s := grading.NewScorer()
	q := singleQ(intPtr(1))

	tests := []struct {
		name    string
		answer  exam.Answer
		marks   float64
		correct bool
	}{
		{"match", idx(1), 4, true},
		{"mismatch", idx(2), -1, false},
		{"absent", exam.Answer{}, 0, false},
		{"index as string value", val("1"), 4, true},
		{"unparseable value", val("banana"), -1, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := s.Score(q, tc.answer)
			assert.Equal(t, tc.marks, got.Marks)
			assert.Equal(t, tc.correct, got.Correct)
		})
	}
}

func TestScore_SingleKeyZeroIsSet(t *testing.T) {
	s := grading.NewScorer()
	q := singleQ(intPtr(0))

	got := s.Score(q, idx(0))
	assert.Equal(t, 4.0, got.Marks)
	assert.True(t, got.Correct)
}

func TestScore_Multi(t *testing.T) {
	s := grading.NewScorer()
	q := multiQ(0, 2)

	tests := []struct {
		name    string
		answer  exam.Answer
		marks   float64
		correct bool
	}{
		{"exact match", set(0, 2), 4, true},
		{"exact match reordered", set(2, 0), 4, true},
		{"partial subset", set(0), 2, false},
		{"wrong selection", set(0, 1), -1, false},
		{"all wrong", set(1, 3), -1, false},
		{"empty set skipped", set(), 0, false},
		{"absent skipped", exam.Answer{}, 0, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := s.Score(q, tc.answer)
			assert.Equal(t, tc.marks, got.Marks)
			assert.Equal(t, tc.correct, got.Correct)
		})
	}
}

func TestScore_MultiPartialDisabled(t *testing.T) {
	s := grading.NewScorer(grading.WithPartialMulti(false))
	got := s.Score(multiQ(0, 2), set(0))
	assert.Equal(t, -1.0, got.Marks)
	assert.False(t, got.Correct)
}

func TestScore_MultiFractionalPartial(t *testing.T) {
	s := grading.NewScorer()
	q := multiQ(0, 1, 2)
	got := s.Score(q, set(1))
	assert.InDelta(t, 4.0/3.0, got.Marks, 1e-12)
	assert.False(t, got.Correct)
}

func TestScore_Numeric(t *testing.T) {
	s := grading.NewScorer()
	q := numericQ(strPtr("42"))

	tests := []struct {
		name    string
		answer  exam.Answer
		marks   float64
		correct bool
	}{
		{"exact string", val("42"), 4, true},
		{"numeric-as-string with decimals", val("42.0"), 4, true},
		{"whitespace tolerated", val("  42 "), 4, true},
		{"mismatch", val("43"), -1, false},
		{"absent", exam.Answer{}, 0, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := s.Score(q, tc.answer)
			assert.Equal(t, tc.marks, got.Marks)
			assert.Equal(t, tc.correct, got.Correct)
		})
	}
}

func TestScore_NumericKeyZeroIsSet(t *testing.T) {
	s := grading.NewScorer()
	got := s.Score(numericQ(strPtr("0")), val("0"))
	assert.Equal(t, 4.0, got.Marks)
	assert.True(t, got.Correct)
}

// With no answer key authored, every input scores zero without penalty.
func TestScore_IncompleteQuestion(t *testing.T) {
	s := grading.NewScorer()
	for _, q := range []exam.Question{singleQ(nil), multiQ(), numericQ(nil)} {
		for _, a := range []exam.Answer{idx(1), set(0, 2), val("42"), {}} {
			got := s.Score(q, a)
			assert.Zero(t, got.Marks)
			assert.False(t, got.Correct)
		}
	}
}

func TestScore_PassageContainerNeverScored(t *testing.T) {
	s := grading.NewScorer()
	q := exam.Question{
		Kind: exam.KindPassage,
		Sub:  []exam.Question{singleQ(intPtr(0))},
	}
	got := s.Score(q, idx(0))
	assert.Zero(t, got.Marks)
	assert.False(t, got.Correct)
}
