package exam_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/testportal/portal/internal/exam"
)

func sub(student string, score float64, at time.Time) exam.Submission {
	return exam.Submission{
		ID:          student + at.Format("150405"),
		StudentID:   student,
		DisplayName: "Student " + student,
		SubmittedAt: at,
		Score:       score,
	}
}

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func TestBuildLeaderboard_FirstAttemptOnly(t *testing.T) {
	subs := []exam.Submission{
		sub("alice", 50, t0.Add(10*time.Minute)),
		sub("alice", 90, t0.Add(20*time.Minute)), // later, higher score: ignored
		sub("bob", 50, t0.Add(5*time.Minute)),
	}

	lb := exam.BuildLeaderboard(subs)
	require.Len(t, lb, 2)

	// Equal first-attempt scores: earlier submission wins.
	assert.Equal(t, 1, lb[0].Rank)
	assert.Equal(t, "bob", lb[0].StudentID)
	assert.Equal(t, 2, lb[1].Rank)
	assert.Equal(t, "alice", lb[1].StudentID)
	assert.Equal(t, 50.0, lb[1].Score)
}

func TestBuildLeaderboard_OrderingAndTies(t *testing.T) {
	subs := []exam.Submission{
		sub("carol", 80, t0.Add(3*time.Minute)),
		sub("dave", 95, t0.Add(8*time.Minute)),
		sub("bob", 80, t0.Add(1*time.Minute)),
		sub("alice", 80, t0.Add(1*time.Minute)), // exact time tie with bob
	}

	lb := exam.BuildLeaderboard(subs)
	require.Len(t, lb, 4)

	ids := make([]string, len(lb))
	for i, e := range lb {
		ids[i] = e.StudentID
	}
	// Score desc, then time asc, then student ID.
	assert.Equal(t, []string{"dave", "alice", "bob", "carol"}, ids)
	for i, e := range lb {
		assert.Equal(t, i+1, e.Rank)
	}
}

func TestBuildLeaderboard_Deterministic(t *testing.T) {
	subs := []exam.Submission{
		sub("a", 10, t0), sub("b", 20, t0.Add(time.Minute)),
		sub("c", 20, t0.Add(2*time.Minute)), sub("a", 99, t0.Add(3*time.Minute)),
	}
	first := exam.BuildLeaderboard(subs)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, exam.BuildLeaderboard(subs))
	}
}

func TestBuildLeaderboard_Empty(t *testing.T) {
	assert.Empty(t, exam.BuildLeaderboard(nil))
}
