package grading

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Q is the minimal view of a question needed for scoring.
type Q struct {
	ID     int64
	Answer string
	Score  int
}

// ParseAnswers decodes a submitted answer payload: a JSON object mapping
// question-id-as-string to the chosen answer letter. A payload that is not
// a valid mapping yields nil (the attempt scores zero, it is not an error).
func ParseAnswers(raw string) map[string]string {
	var m map[string]string
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil
	}
	return m
}

// Score sums the point values of every question whose submitted answer
// matches its correct answer case-insensitively. Questions without a
// submitted answer contribute zero; answers for ids outside the question
// list are ignored. The accumulation is order-independent: no partial
// credit, no negative scoring.
func Score(questions []Q, answers map[string]string) int {
	if len(questions) == 0 || len(answers) == 0 {
		return 0
	}
	total := 0
	for _, q := range questions {
		sub, ok := answers[strconv.FormatInt(q.ID, 10)]
		if ok && strings.EqualFold(sub, q.Answer) {
			total += q.Score
		}
	}
	return total
}

// MaxScore is the paper's ceiling: the sum of all point values.
func MaxScore(questions []Q) int {
	total := 0
	for _, q := range questions {
		total += q.Score
	}
	return total
}
