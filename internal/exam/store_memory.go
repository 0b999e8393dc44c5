package exam

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

type memoryStore struct {
	mu          sync.RWMutex
	exams       map[string]Exam
	submissions map[string]Submission
}

// NewInMemoryStore returns a Store backed by process memory, used in
// tests and offline development.
func NewInMemoryStore() Store {
	return &memoryStore{
		exams:       map[string]Exam{},
		submissions: map[string]Submission{},
	}
}

func (m *memoryStore) PutExam(_ context.Context, e Exam) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e.CreatedAt == 0 {
		e.CreatedAt = time.Now().Unix()
	}
	m.exams[e.ID] = e
	return nil
}

func (m *memoryStore) GetExam(_ context.Context, id string) (Exam, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.exams[id]
	if !ok {
		return Exam{}, ErrExamNotFound
	}
	return e, nil
}

func (m *memoryStore) ListExams(_ context.Context, opts ListOpts) ([]ExamSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]ExamSummary, 0, len(m.exams))
	for _, e := range m.exams {
		if opts.Q != "" && !strings.Contains(strings.ToLower(e.Title), strings.ToLower(opts.Q)) {
			continue
		}
		out = append(out, ExamSummary{
			ID:              e.ID,
			Title:           e.Title,
			Disabled:        e.Disabled,
			ResultsReleased: e.ResultsReleased,
			QuestionCount:   len(Flatten(e.Sections)),
			CreatedAt:       e.CreatedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	return paginate(out, opts.Limit, opts.Offset), nil
}

func (m *memoryStore) UpdateQuestions(_ context.Context, examID string, sections []Section) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.exams[examID]
	if !ok {
		return ErrExamNotFound
	}
	e.Sections = sections
	m.exams[examID] = e
	return nil
}

func (m *memoryStore) SetResultsReleased(_ context.Context, examID string, released bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.exams[examID]
	if !ok {
		return ErrExamNotFound
	}
	e.ResultsReleased = released
	m.exams[examID] = e
	return nil
}

func (m *memoryStore) PutSubmission(_ context.Context, s Submission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.exams[s.ExamID]; !ok {
		return ErrExamNotFound
	}
	m.submissions[s.ID] = s
	return nil
}

func (m *memoryStore) GetSubmission(_ context.Context, id string) (Submission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.submissions[id]
	if !ok {
		return Submission{}, ErrSubmissionNotFound
	}
	return s, nil
}

func (m *memoryStore) ListSubmissions(_ context.Context, examID string) ([]Submission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Submission
	for _, s := range m.submissions {
		if s.ExamID == examID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubmittedAt.Before(out[j].SubmittedAt) })
	return out, nil
}

func (m *memoryStore) CountSubmissions(_ context.Context, examID, studentID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, s := range m.submissions {
		if s.ExamID == examID && s.StudentID == studentID {
			n++
		}
	}
	return n, nil
}

func (m *memoryStore) ReplaceSubmissionResult(_ context.Context, submissionID string, score float64, details []QuestionDetail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.submissions[submissionID]
	if !ok {
		return ErrSubmissionNotFound
	}
	s.Score = score
	s.Details = details
	m.submissions[submissionID] = s
	return nil
}

func paginate(in []ExamSummary, limit, offset int) []ExamSummary {
	if offset >= len(in) {
		return nil
	}
	in = in[offset:]
	if limit > 0 && limit < len(in) {
		in = in[:limit]
	}
	return in
}
