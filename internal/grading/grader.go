package grading

import "github.com/testportal/portal/internal/exam"

// Graded is the result of grading one submission against an exam.
type Graded struct {
	Score   float64
	Details []exam.QuestionDetail
}

// GradeExam scores a full answer sheet against the flattened question
// sequence. Details are index-aligned with questions; answers and
// timeSpent beyond their own length read as absent/zero. Pure function
// of its inputs: the same questions and answers always produce the same
// result, and Score is the exact sum of the detail marks with no
// rounding of fractional partial credit.
func (s *Scorer) GradeExam(questions []exam.Question, answers []exam.Answer, timeSpent []int) Graded {
	g := Graded{Details: make([]exam.QuestionDetail, 0, len(questions))}
	for i, q := range questions {
		var ans exam.Answer
		if i < len(answers) {
			ans = answers[i]
		}
		t := 0
		if i < len(timeSpent) {
			t = timeSpent[i]
		}

		res := s.Score(q, ans)
		key, _ := q.Key()
		g.Details = append(g.Details, exam.QuestionDetail{
			AnswerGiven:      ans,
			CorrectAnswer:    key,
			IsCorrect:        res.Correct,
			MarksAwarded:     res.Marks,
			TimeSpentSeconds: t,
		})
		g.Score += res.Marks
	}
	return g
}
