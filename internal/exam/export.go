package exam

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
)

// Per-question status cells in the export.
const (
	statusCorrect     = "correct"
	statusIncorrect   = "incorrect"
	statusUnattempted = "unattempted"
)

// ResultsCSV renders the graded results for the export collaborator.
// One row per ranked student (first attempt only, leaderboard order)
// with a status column per flattened question.
func ResultsCSV(questions []Question, subs []Submission) ([]byte, error) {
	header := []string{"rank", "student_id", "name", "score", "total_time_sec"}
	for i := range questions {
		header = append(header, fmt.Sprintf("q%d", i+1))
	}

	bySub := make(map[string]Submission, len(subs))
	for _, s := range firstAttempts(subs) {
		bySub[s.StudentID] = s
	}

	rows := [][]string{header}
	for _, entry := range BuildLeaderboard(subs) {
		s := bySub[entry.StudentID]
		row := []string{
			strconv.Itoa(entry.Rank),
			entry.StudentID,
			entry.DisplayName,
			strconv.FormatFloat(entry.Score, 'f', -1, 64),
			strconv.Itoa(s.TotalTimeSec),
		}
		for i := range questions {
			row = append(row, detailStatus(s.Details, i))
		}
		rows = append(rows, row)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func detailStatus(details []QuestionDetail, i int) string {
	if i >= len(details) || !details[i].AnswerGiven.Answered() {
		return statusUnattempted
	}
	if details[i].IsCorrect {
		return statusCorrect
	}
	return statusIncorrect
}
