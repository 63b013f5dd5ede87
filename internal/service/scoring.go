package service

import (
	"math"
	"strings"

	"skillverify_backend/internal/sandbox"
	"skillverify_backend/internal/session"
)

// ScoreMultipleChoice grades submitted answers against the session's stored
// key, ordinal position by ordinal position. Extra answers are ignored,
// missing answers count as unanswered. Deterministic: identical inputs
// always yield the identical raw score.
func ScoreMultipleChoice(answers []string, questions []session.Question) (int, []bool) {
	if len(questions) == 0 {
		return 0, nil
	}

	perItem := make([]bool, len(questions))
	correct := 0
	for i, q := range questions {
		if i >= len(answers) {
			break
		}
		if strings.TrimSpace(answers[i]) == strings.TrimSpace(q.CorrectAnswer) {
			perItem[i] = true
			correct++
		}
	}

	return roundPercent(correct, len(questions)), perItem
}

// ScoreCode derives the raw score from a sandbox report. Zero test cases
// score zero: fail-safe, not fail-open.
func ScoreCode(report *sandbox.Report) int {
	if report == nil || report.TotalCount == 0 {
		return 0
	}
	return roundPercent(report.PassedCount, report.TotalCount)
}

func roundPercent(correct, total int) int {
	return int(math.Round(100 * float64(correct) / float64(total)))
}
