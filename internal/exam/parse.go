package exam

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Wire shapes for admin-supplied question JSON. The answer field is kept
// raw so that "answer": 0 and an absent answer stay distinguishable.
type questionWire struct {
	ID            string          `json:"id"`
	Kind          QuestionKind    `json:"kind"`
	PromptHTML    string          `json:"prompt_html"`
	Options       []string        `json:"options"`
	Answer        json.RawMessage `json:"answer"`
	PositiveMarks *float64        `json:"positive_marks"`
	NegativeMarks *float64        `json:"negative_marks"`
	Questions     []questionWire  `json:"questions"`
}

type questionSetWire struct {
	Sections  []sectionWire  `json:"sections"`
	Questions []questionWire `json:"questions"`
}

type sectionWire struct {
	Title     string         `json:"title"`
	Questions []questionWire `json:"questions"`
}

// ParseQuestionSet validates an admin-supplied question set and converts
// it to the internal model. Accepted top-level shapes: a bare question
// array, {"questions": [...]}, or {"sections": [{"title", "questions"}]}.
// A structurally invalid set returns an error and nothing is converted;
// a merely incomplete set (missing answer keys) parses fine.
func ParseQuestionSet(data []byte) ([]Section, error) {
	var bare []questionWire
	if err := json.Unmarshal(data, &bare); err == nil {
		return buildSections([]sectionWire{{Questions: bare}})
	}

	var set questionSetWire
	if err := json.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("question set: %w", err)
	}
	if len(set.Sections) > 0 {
		return buildSections(set.Sections)
	}
	if len(set.Questions) > 0 {
		return buildSections([]sectionWire{{Questions: set.Questions}})
	}
	return nil, fmt.Errorf("question set: no questions")
}

func buildSections(wires []sectionWire) ([]Section, error) {
	out := make([]Section, 0, len(wires))
	for si, sw := range wires {
		if len(sw.Questions) == 0 {
			return nil, fmt.Errorf("section %d: no questions", si)
		}
		sec := Section{Title: sw.Title, Questions: make([]Question, 0, len(sw.Questions))}
		for qi, qw := range sw.Questions {
			q, err := buildQuestion(qw, true)
			if err != nil {
				return nil, fmt.Errorf("section %d question %d: %w", si, qi, err)
			}
			sec.Questions = append(sec.Questions, q)
		}
		out = append(out, sec)
	}
	return out, nil
}

func buildQuestion(w questionWire, allowPassage bool) (Question, error) {
	q := Question{
		ID:            w.ID,
		Kind:          w.Kind,
		PromptHTML:    w.PromptHTML,
		Options:       w.Options,
		PositiveMarks: DefaultPositiveMarks,
		NegativeMarks: DefaultNegativeMarks,
	}
	if w.PositiveMarks != nil {
		if *w.PositiveMarks < 0 {
			return Question{}, fmt.Errorf("positive_marks must be non-negative")
		}
		q.PositiveMarks = *w.PositiveMarks
	}
	if w.NegativeMarks != nil {
		if *w.NegativeMarks < 0 {
			return Question{}, fmt.Errorf("negative_marks must be non-negative")
		}
		q.NegativeMarks = *w.NegativeMarks
	}

	switch w.Kind {
	case KindSingle:
		if len(w.Options) < 2 {
			return Question{}, fmt.Errorf("single question needs at least two options")
		}
		if hasAnswer(w.Answer) {
			idx, err := parseIndex(w.Answer, len(w.Options))
			if err != nil {
				return Question{}, err
			}
			q.SingleKey = &idx
		}

	case KindMulti:
		if len(w.Options) < 2 {
			return Question{}, fmt.Errorf("multi question needs at least two options")
		}
		if hasAnswer(w.Answer) {
			set, err := parseIndexSet(w.Answer, len(w.Options))
			if err != nil {
				return Question{}, err
			}
			q.MultiKey = set
		}

	case KindNumeric:
		if hasAnswer(w.Answer) {
			v, err := parseScalar(w.Answer)
			if err != nil {
				return Question{}, err
			}
			q.NumericKey = &v
		}

	case KindPassage:
		if !allowPassage {
			return Question{}, fmt.Errorf("passages cannot nest")
		}
		if len(w.Questions) == 0 {
			return Question{}, fmt.Errorf("passage needs nested questions")
		}
		q.Sub = make([]Question, 0, len(w.Questions))
		for i, cw := range w.Questions {
			cq, err := buildQuestion(cw, false)
			if err != nil {
				return Question{}, fmt.Errorf("passage question %d: %w", i, err)
			}
			q.Sub = append(q.Sub, cq)
		}

	default:
		return Question{}, fmt.Errorf("unknown question kind %q", w.Kind)
	}
	return q, nil
}

func hasAnswer(raw json.RawMessage) bool {
	return len(raw) > 0 && string(raw) != "null"
}

func parseIndex(raw json.RawMessage, nOptions int) (int, error) {
	var idx int
	if err := json.Unmarshal(raw, &idx); err != nil {
		return 0, fmt.Errorf("answer must be an option index: %w", err)
	}
	if idx < 0 || idx >= nOptions {
		return 0, fmt.Errorf("answer index %d out of range (have %d options)", idx, nOptions)
	}
	return idx, nil
}

func parseIndexSet(raw json.RawMessage, nOptions int) ([]int, error) {
	var idxs []int
	if err := json.Unmarshal(raw, &idxs); err != nil {
		return nil, fmt.Errorf("answer must be an array of option indices: %w", err)
	}
	if len(idxs) == 0 {
		// explicit empty set is the same as not authored
		return nil, nil
	}
	seen := map[int]bool{}
	out := make([]int, 0, len(idxs))
	for _, idx := range idxs {
		if idx < 0 || idx >= nOptions {
			return nil, fmt.Errorf("answer index %d out of range (have %d options)", idx, nOptions)
		}
		if seen[idx] {
			continue
		}
		seen[idx] = true
		out = append(out, idx)
	}
	return out, nil
}

// parseScalar accepts both "42" and 42 for numeric keys.
func parseScalar(raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return strconv.FormatFloat(f, 'f', -1, 64), nil
	}
	return "", fmt.Errorf("answer must be a string or number")
}
