package exam

import "sort"

// LeaderboardEntry is what the ranking surface renders: rank, identity
// and score. Raw answer data never leaves the submission records.
type LeaderboardEntry struct {
	Rank        int     `json:"rank"`
	StudentID   string  `json:"student_id"`
	DisplayName string  `json:"display_name"`
	Score       float64 `json:"score"`
	SubmittedAt int64   `json:"submitted_at"`
}

// BuildLeaderboard ranks submissions first-attempt-only: each student is
// represented by their earliest submission even when a later attempt
// scored higher. Order is score descending, then submission time
// ascending, then student ID for a total order. Ranks are dense and
// 1-based. Rebuilding from the same input always yields the same output.
func BuildLeaderboard(subs []Submission) []LeaderboardEntry {
	kept := firstAttempts(subs)
	sort.Slice(kept, func(i, j int) bool {
		if kept[i].Score != kept[j].Score {
			return kept[i].Score > kept[j].Score
		}
		if !kept[i].SubmittedAt.Equal(kept[j].SubmittedAt) {
			return kept[i].SubmittedAt.Before(kept[j].SubmittedAt)
		}
		return kept[i].StudentID < kept[j].StudentID
	})

	out := make([]LeaderboardEntry, len(kept))
	for i, s := range kept {
		out[i] = LeaderboardEntry{
			Rank:        i + 1,
			StudentID:   s.StudentID,
			DisplayName: s.DisplayName,
			Score:       s.Score,
			SubmittedAt: s.SubmittedAt.UTC().Unix(),
		}
	}
	return out
}

// firstAttempts keeps one submission per student, the earliest by
// submission time.
func firstAttempts(subs []Submission) []Submission {
	first := make(map[string]Submission, len(subs))
	for _, s := range subs {
		prev, ok := first[s.StudentID]
		if !ok || s.SubmittedAt.Before(prev.SubmittedAt) {
			first[s.StudentID] = s
		}
	}
	kept := make([]Submission, 0, len(first))
	for _, s := range first {
		kept = append(kept, s)
	}
	return kept
}
