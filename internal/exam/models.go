package exam

import "time"

type QuestionKind string

const (
	KindSingle  QuestionKind = "single"
	KindMulti   QuestionKind = "multi"
	KindNumeric QuestionKind = "numeric"
	KindPassage QuestionKind = "passage"
)

// Marking defaults applied when the author omits them.
const (
	DefaultPositiveMarks = 4.0
	DefaultNegativeMarks = 1.0
)

// Question is one gradable unit. Exactly one of the key fields matching
// Kind is set once the question has been authored; all of them nil means
// the answer key is still missing and the question is incomplete. A nil
// key is the only "unset" signal: index 0 and value "0" are valid keys.
type Question struct {
	ID         string       `json:"id,omitempty"`
	Kind       QuestionKind `json:"kind"`
	PromptHTML string       `json:"prompt_html,omitempty"`
	Options    []string     `json:"options,omitempty"`

	SingleKey  *int    `json:"single_key,omitempty"`
	MultiKey   []int   `json:"multi_key,omitempty"`
	NumericKey *string `json:"numeric_key,omitempty"`

	PositiveMarks float64 `json:"positive_marks"`
	NegativeMarks float64 `json:"negative_marks"`

	// Passage container: the nested questions are graded in its place,
	// PromptHTML is retained for display only.
	Sub []Question `json:"sub,omitempty"`
}

// Complete reports whether the answer key has been authored.
// Passage containers are complete iff all nested questions are.
func (q Question) Complete() bool {
	switch q.Kind {
	case KindSingle:
		return q.SingleKey != nil && len(q.Options) > 0
	case KindMulti:
		return len(q.MultiKey) > 0 && len(q.Options) > 0
	case KindNumeric:
		return q.NumericKey != nil
	case KindPassage:
		if len(q.Sub) == 0 {
			return false
		}
		for _, sq := range q.Sub {
			if !sq.Complete() {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Key returns the answer key as an Answer snapshot, for embedding into
// graded detail records. ok is false when the key is unset.
func (q Question) Key() (Answer, bool) {
	switch q.Kind {
	case KindSingle:
		if q.SingleKey == nil {
			return Answer{}, false
		}
		v := *q.SingleKey
		return Answer{Selected: &v}, true
	case KindMulti:
		if len(q.MultiKey) == 0 {
			return Answer{}, false
		}
		set := make([]int, len(q.MultiKey))
		copy(set, q.MultiKey)
		return Answer{SelectedSet: set}, true
	case KindNumeric:
		if q.NumericKey == nil {
			return Answer{}, false
		}
		v := *q.NumericKey
		return Answer{Value: &v}, true
	default:
		return Answer{}, false
	}
}

type Section struct {
	Title     string     `json:"title,omitempty"`
	Questions []Question `json:"questions"`
}

type Exam struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	StartTime       time.Time  `json:"start_time,omitempty"`
	EndTime         time.Time  `json:"end_time,omitempty"`
	DurationMin     int        `json:"duration_min"`
	AttemptsAllowed int        `json:"attempts_allowed"`
	ExpiryDate      *time.Time `json:"expiry_date,omitempty"`
	Disabled        bool       `json:"disabled"`
	ResultsReleased bool       `json:"results_released"`
	Sections        []Section  `json:"sections"`
	CreatedAt       int64      `json:"created_at,omitempty"`
}

// Complete is true when every gradable question carries an answer key.
// An exam with no questions is not complete.
func (e Exam) Complete() bool {
	flat := Flatten(e.Sections)
	if len(flat) == 0 {
		return false
	}
	for _, q := range flat {
		if !q.Complete() {
			return false
		}
	}
	return true
}

// Sanitized returns a copy with all answer keys stripped, safe to serve
// to students.
func (e Exam) Sanitized() Exam {
	out := e
	out.Sections = make([]Section, len(e.Sections))
	for i, s := range e.Sections {
		out.Sections[i] = Section{Title: s.Title, Questions: stripKeys(s.Questions)}
	}
	return out
}

func stripKeys(qs []Question) []Question {
	out := make([]Question, len(qs))
	for i, q := range qs {
		q.SingleKey = nil
		q.MultiKey = nil
		q.NumericKey = nil
		if len(q.Sub) > 0 {
			q.Sub = stripKeys(q.Sub)
		}
		out[i] = q
	}
	return out
}

type ExamSummary struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Disabled        bool   `json:"disabled"`
	ResultsReleased bool   `json:"results_released"`
	QuestionCount   int    `json:"question_count"`
	CreatedAt       int64  `json:"created_at"`
}

// Answer is one recorded answer, index-aligned with the flattened
// question list. The zero value means unanswered.
type Answer struct {
	Selected    *int    `json:"selected,omitempty"`
	SelectedSet []int   `json:"selected_set,omitempty"`
	Value       *string `json:"value,omitempty"`
}

// Answered reports whether any answer was given at all.
func (a Answer) Answered() bool {
	return a.Selected != nil || len(a.SelectedSet) > 0 || a.Value != nil
}

// QuestionDetail is the derived per-question grading record. It is fully
// recomputable from AnswerGiven plus the current answer key and is
// rewritten wholesale on every recalculation.
type QuestionDetail struct {
	AnswerGiven      Answer  `json:"answer_given"`
	CorrectAnswer    Answer  `json:"correct_answer"`
	IsCorrect        bool    `json:"is_correct"`
	MarksAwarded     float64 `json:"marks_awarded"`
	TimeSpentSeconds int     `json:"time_spent_seconds"`
}

type Submission struct {
	ID           string           `json:"id"`
	ExamID       string           `json:"exam_id"`
	StudentID    string           `json:"student_id"`
	DisplayName  string           `json:"display_name"`
	SubmittedAt  time.Time        `json:"submitted_at"`
	TotalTimeSec int              `json:"total_time_sec"`
	Score        float64          `json:"score"`
	Details      []QuestionDetail `json:"details"`
}

// Answers reconstructs the raw answer sequence from the graded detail
// records. Original answers survive every answer-key edit.
func (s Submission) Answers() []Answer {
	out := make([]Answer, len(s.Details))
	for i, d := range s.Details {
		out[i] = d.AnswerGiven
	}
	return out
}

// TimeSpent extracts the per-question elapsed seconds from the detail
// records, preserved across recalculations.
func (s Submission) TimeSpent() []int {
	out := make([]int, len(s.Details))
	for i, d := range s.Details {
		out[i] = d.TimeSpentSeconds
	}
	return out
}
