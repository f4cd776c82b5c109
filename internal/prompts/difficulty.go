package prompts

import (
	"fmt"
	"strings"
)

// Difficulty controls how many generated problems are flagged as challenging.
type Difficulty string

const (
	DifficultySame      Difficulty = "same"
	DifficultyChallenge Difficulty = "challenge"
	DifficultyHarder    Difficulty = "harder"
)

// challengePercent is the share of challenging problems per difficulty.
var challengePercent = map[Difficulty]int{
	DifficultySame:      0,
	DifficultyChallenge: 20,
	DifficultyHarder:    80,
}

// Difficulties lists the accepted difficulty values in display order.
func Difficulties() []Difficulty {
	return []Difficulty{DifficultySame, DifficultyChallenge, DifficultyHarder}
}

// ParseDifficulty normalizes raw into a known Difficulty.
func ParseDifficulty(raw string) (Difficulty, error) {
	d := Difficulty(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := challengePercent[d]; !ok {
		return "", fmt.Errorf("invalid difficulty %q: must be one of same, challenge, harder", raw)
	}
	return d, nil
}

// ChallengeCount returns floor(problemCount * fraction) for the difficulty.
// Integer percent arithmetic keeps 5*0.2 from rounding down to 0.
func ChallengeCount(problemCount int, d Difficulty) int {
	if problemCount <= 0 {
		return 0
	}
	return problemCount * challengePercent[d] / 100
}
