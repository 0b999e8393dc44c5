package grading

import (
	"math"
	"strconv"
	"strings"

	"github.com/testportal/portal/internal/exam"
)

// Result is the outcome of scoring a single answer. Marks is signed:
// negative marking applies on a wrong answer.
type Result struct {
	Marks   float64 `json:"marks"`
	Correct bool    `json:"correct"`
}

// Strategy scores one question kind.
type Strategy interface {
	Score(q exam.Question, a exam.Answer) Result
}

type Option func(*config)

type config struct {
	AllowPartialMulti bool
}

// WithPartialMulti toggles partial credit for multi-select answers that
// are a correct-but-incomplete subset of the key.
func WithPartialMulti(b bool) Option { return func(c *config) { c.AllowPartialMulti = b } }

// Scorer routes by question kind to the matching Strategy. It never
// panics: incomplete questions, unanswered entries and unknown kinds all
// score zero without penalty.
type Scorer struct {
	strategies map[exam.QuestionKind]Strategy
}

func NewScorer(opts ...Option) *Scorer {
	cfg := &config{AllowPartialMulti: true}
	for _, o := range opts {
		o(cfg)
	}
	return &Scorer{
		strategies: map[exam.QuestionKind]Strategy{
			exam.KindSingle:  singleStrategy{},
			exam.KindMulti:   multiStrategy{allowPartial: cfg.AllowPartialMulti},
			exam.KindNumeric: numericStrategy{},
		},
	}
}

func (s *Scorer) Score(q exam.Question, a exam.Answer) Result {
	if !q.Complete() {
		return Result{}
	}
	if !a.Answered() {
		return Result{}
	}
	st, ok := s.strategies[q.Kind]
	if !ok {
		// passage containers and unknown kinds are never scored directly
		return Result{}
	}
	return st.Score(q, a)
}

type singleStrategy struct{}

func (singleStrategy) Score(q exam.Question, a exam.Answer) Result {
	idx, ok := selectedIndex(a)
	if ok && idx == *q.SingleKey {
		return Result{Marks: q.PositiveMarks, Correct: true}
	}
	return Result{Marks: -q.NegativeMarks}
}

// selectedIndex resolves a single-choice answer, accepting an index
// submitted as a string value.
func selectedIndex(a exam.Answer) (int, bool) {
	if a.Selected != nil {
		return *a.Selected, true
	}
	if a.Value != nil {
		if v, err := strconv.Atoi(strings.TrimSpace(*a.Value)); err == nil {
			return v, true
		}
	}
	return 0, false
}

type multiStrategy struct{ allowPartial bool }

func (s multiStrategy) Score(q exam.Question, a exam.Answer) Result {
	key := toSet(q.MultiKey)
	given := toSet(a.SelectedSet)
	if len(given) == 0 {
		return Result{}
	}

	if setEqual(given, key) {
		return Result{Marks: q.PositiveMarks, Correct: true}
	}
	for idx := range given {
		if !key[idx] {
			return Result{Marks: -q.NegativeMarks}
		}
	}
	if !s.allowPartial {
		return Result{Marks: -q.NegativeMarks}
	}
	// correct-but-incomplete subset
	return Result{Marks: q.PositiveMarks * float64(len(given)) / float64(len(key))}
}

type numericStrategy struct{}

func (numericStrategy) Score(q exam.Question, a exam.Answer) Result {
	given, ok := scalarValue(a)
	if ok && looseEqual(given, *q.NumericKey) {
		return Result{Marks: q.PositiveMarks, Correct: true}
	}
	return Result{Marks: -q.NegativeMarks}
}

func scalarValue(a exam.Answer) (string, bool) {
	if a.Value != nil {
		return *a.Value, true
	}
	if a.Selected != nil {
		return strconv.Itoa(*a.Selected), true
	}
	return "", false
}

// looseEqual compares trimmed strings first and falls back to numeric
// equality so "4.0" matches "4".
func looseEqual(a, b string) bool {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	if a == b {
		return true
	}
	av, aok := parseFloatLoose(a)
	bv, bok := parseFloatLoose(b)
	return aok && bok && math.Abs(av-bv) == 0
}

func parseFloatLoose(s string) (float64, bool) {
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v, true
	}
	if sp := strings.Fields(s); len(sp) > 0 {
		if v, err := strconv.ParseFloat(sp[0], 64); err == nil {
			return v, true
		}
	}
	return 0, false
}

func toSet(idxs []int) map[int]bool {
	m := make(map[int]bool, len(idxs))
	for _, i := range idxs {
		m[i] = true
	}
	return m
}

func setEqual(a, b map[int]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if !b[k] {
			return false
		}
	}
	return true
}
