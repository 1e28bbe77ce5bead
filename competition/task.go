// ABOUTME: Defines Task struct and the difficulty enumeration for competition problems
// ABOUTME: Provides input normalization with documented defaults for missing fields

package competition

import (
	"fmt"
	"maps"
	"math"
	"strings"
)

// Difficulty is the enumerated difficulty level of a task
type Difficulty string

const (
	VeryEasy Difficulty = "very_easy"
	Easy     Difficulty = "easy"
	Medium   Difficulty = "medium"
	Hard     Difficulty = "hard"
	VeryHard Difficulty = "very_hard"
)

// Defaults applied when a field is missing or malformed
const (
	DefaultTimeLimit  = 120.0
	DefaultBasePoints = 100
	DefaultMultiplier = 1.0
	DefaultSolveRate  = 0.5
)

// Position returns the numeric position of the difficulty on a 0-1 scale
func (d Difficulty) Position() float64 {
	switch d {
	case VeryEasy:
		return 0.15
	case Easy:
		return 0.35
	case Medium:
		return 0.55
	case Hard:
		return 0.75
	case VeryHard:
		return 0.95
	}

	return 0.55
}

// SuccessFactor returns the multiplier applied to success probability
// Easier tasks boost the probability, harder ones reduce it
func (d Difficulty) SuccessFactor() float64 {
	switch d {
	case VeryEasy:
		return 1.2
	case Easy:
		return 1.1
	case Medium:
		return 1.0
	case Hard:
		return 0.9
	case VeryHard:
		return 0.8
	}

	return 1.0
}

// ParseDifficulty parses a difficulty string, tolerating common spellings
// Unknown or empty input parses as Medium
func ParseDifficulty(s string) Difficulty {
	switch strings.ToLower(strings.TrimSpace(strings.ReplaceAll(s, " ", "_"))) {
	case "very_easy", "1":
		return VeryEasy
	case "easy", "2":
		return Easy
	case "medium", "normal", "average", "3", "":
		return Medium
	case "hard", "4":
		return Hard
	case "very_hard", "5":
		return VeryHard
	}

	return Medium
}

// Task is a scored, time-bounded problem to solve during the competition.
// Immutable for the duration of one optimization.
type Task struct {
	ID             int
	Name           string
	Category       string
	Difficulty     Difficulty
	BasePoints     int
	Multiplier     float64
	RequiredSkills map[string]float64 // skill name -> required level in [0,1]
	TimeLimit      float64            // minutes
	SolveRate      float64            // historical solve rate in [0,1]
}

// TotalPoints returns base points scaled by the difficulty multiplier
func (t *Task) TotalPoints() float64 {
	return float64(t.BasePoints) * t.Multiplier
}

// Normalize substitutes documented defaults for missing or malformed fields
// so that downstream code can assume finite, in-range values
func (t *Task) Normalize() {
	if t.Name == "" {
		t.Name = fmt.Sprintf("Task %d", t.ID)
	}

	t.Difficulty = ParseDifficulty(string(t.Difficulty))

	if t.BasePoints <= 0 {
		t.BasePoints = DefaultBasePoints
	}

	if !isFinite(t.Multiplier) || t.Multiplier < 1.0 {
		t.Multiplier = DefaultMultiplier
	}

	if !isFinite(t.TimeLimit) || t.TimeLimit <= 0 {
		t.TimeLimit = DefaultTimeLimit
	}

	if !isFinite(t.SolveRate) || t.SolveRate < 0 || t.SolveRate > 1 {
		t.SolveRate = DefaultSolveRate
	}

	// Clone before clamping so a caller's map is never written to
	t.RequiredSkills = maps.Clone(t.RequiredSkills)

	for skill, level := range t.RequiredSkills {
		if !isFinite(level) || level < 0 {
			t.RequiredSkills[skill] = 0
		} else if level > 1 {
			t.RequiredSkills[skill] = 1
		}
	}
}

// isFinite reports whether f is neither NaN nor infinite
func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
