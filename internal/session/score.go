package session

import (
	"regexp"
	"strconv"
	"time"
)

// DefaultScore is used when no score can be parsed from collaborator feedback.
const DefaultScore = 5

// scorePattern matches the first integer following the "Score:" marker.
var scorePattern = regexp.MustCompile(`Score:\s*(\d+)`)

// ParseScore extracts the numeric score from feedback text. Feedback such as
// "Score: 8/10" yields 8; text without the marker yields DefaultScore.
func ParseScore(feedback string) int {
	m := scorePattern.FindStringSubmatch(feedback)
	if m == nil {
		return DefaultScore
	}
	score, err := strconv.Atoi(m[1])
	if err != nil {
		return DefaultScore
	}
	return score
}

// Evaluation is the result of scoring one answer.
type Evaluation struct {
	Score     int       `json:"score"`
	Feedback  string    `json:"feedback"`
	Timestamp time.Time `json:"timestamp"`
	Notice    string    `json:"notice,omitempty"` // non-fatal degradation notice (e.g. persistence failure)
}
