// ABOUTME: Tests for the scoring kernel over (task, agent) pairs
// ABOUTME: Validates clamping, defaults, difficulty factors and determinism

package competition

import (
	"math"
	"testing"
)

func testAgent() Agent {
	a := Agent{
		ID:              1,
		Name:            "Ada",
		Skills:          map[string]float64{"algorithms": 0.9, "python": 0.9},
		SuccessRate:     0.75,
		ExperienceYears: 4,
		Competitions:    8,
		ProblemsSolved:  120,
		Available:       true,
	}
	a.Normalize()

	return a
}

func testTask() Task {
	t := Task{
		ID:             1,
		Name:           "Graph paths",
		Category:       "algorithms",
		Difficulty:     Medium,
		BasePoints:     100,
		Multiplier:     1.2,
		RequiredSkills: map[string]float64{"algorithms": 0.6},
		TimeLimit:      45,
		SolveRate:      0.5,
	}
	t.Normalize()

	return t
}

func TestCompatibilityRange(t *testing.T) {
	task := testTask()
	agent := testAgent()

	compat := Compatibility(&task, &agent)

	if compat < 0 || compat > 1 {
		t.Errorf("Compatibility out of range: %.4f", compat)
	}

	// A strong skill match with decent history should score well
	if compat < 0.7 {
		t.Errorf("Expected high compatibility for matching skills, got %.4f", compat)
	}

	t.Logf("Compatibility: %.4f", compat)
}

func TestCompatibilityUnavailableAgent(t *testing.T) {
	task := testTask()
	agent := testAgent()
	agent.Available = false

	if compat := Compatibility(&task, &agent); compat != 0 {
		t.Errorf("Unavailable agent should have compatibility 0, got %.4f", compat)
	}
}

func TestCompatibilityNoRequiredSkills(t *testing.T) {
	// A task with no required skills must give every available agent
	// non-zero compatibility through the history fallback
	task := Task{ID: 2, Name: "Open problem", TimeLimit: 60}
	task.Normalize()

	agents := []Agent{
		{ID: 1, SuccessRate: 0.9, Available: true},
		{ID: 2, SuccessRate: 0.1, Available: true},
		{ID: 3, Available: true}, // history defaults to 0.5
	}

	for i := range agents {
		agents[i].Normalize()

		compat := Compatibility(&task, &agents[i])
		if compat <= 0 {
			t.Errorf("Agent %d: compatibility should be non-zero, got %.4f", agents[i].ID, compat)
		}
	}
}

func TestCompatibilityMissingSkillPenalty(t *testing.T) {
	task := testTask()

	skilled := testAgent()

	unskilled := Agent{ID: 2, Skills: map[string]float64{"java": 0.9}, SuccessRate: 0.75, Available: true}
	unskilled.Normalize()

	if Compatibility(&task, &skilled) <= Compatibility(&task, &unskilled) {
		t.Error("Agent holding the required skill should beat one without it")
	}
}

func TestSuccessProbabilityClamped(t *testing.T) {
	tests := []struct {
		name    string
		history float64
		skills  map[string]float64
	}{
		{"hopeless", 0.0, nil},
		{"average", 0.5, map[string]float64{"algorithms": 0.5}},
		{"stellar", 1.0, map[string]float64{"algorithms": 1.0}},
	}

	task := testTask()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agent := Agent{ID: 1, Skills: tt.skills, SuccessRate: tt.history, Available: true}
			agent.Normalize()

			p := SuccessProbability(&task, &agent)
			if p < 0.1 || p > 0.9 {
				t.Errorf("Success probability %.4f outside [0.1, 0.9]", p)
			}

			t.Logf("%s: p=%.4f", tt.name, p)
		})
	}
}

func TestSuccessProbabilityDifficultyOrdering(t *testing.T) {
	agent := testAgent()

	var prev float64 = 1.0

	for _, d := range []Difficulty{VeryEasy, Easy, Medium, Hard, VeryHard} {
		task := testTask()
		task.Difficulty = d

		p := SuccessProbability(&task, &agent)
		if p > prev {
			t.Errorf("Difficulty %s: probability %.4f should not exceed easier level %.4f", d, p, prev)
		}

		prev = p
	}
}

func TestSuccessProbabilityCategoryPreference(t *testing.T) {
	task := testTask()

	base := testAgent()
	fan := testAgent()
	fan.PreferredCategories = []string{"algorithms"}
	hater := testAgent()
	hater.AvoidedCategories = []string{"algorithms"}

	pBase := SuccessProbability(&task, &base)
	pFan := SuccessProbability(&task, &fan)
	pHater := SuccessProbability(&task, &hater)

	if pFan < pBase {
		t.Errorf("Preferred category should not lower probability: %.4f < %.4f", pFan, pBase)
	}

	if pHater >= pBase {
		t.Errorf("Avoided category should lower probability: %.4f >= %.4f", pHater, pBase)
	}
}

func TestEstimateTimeBounds(t *testing.T) {
	task := testTask()

	agents := []Agent{
		{ID: 1, Available: true},
		testAgent(),
		{ID: 3, Skills: map[string]float64{"algorithms": 1.0}, SuccessRate: 1.0, ExperienceYears: 20, Competitions: 40, ProblemsSolved: 500, Available: true},
	}

	for i := range agents {
		agents[i].Normalize()

		est := EstimateTime(&task, &agents[i])
		if est < 0.2*task.TimeLimit || est > 0.8*task.TimeLimit {
			t.Errorf("Agent %d: estimate %.2f outside [%.2f, %.2f]", agents[i].ID, est, 0.2*task.TimeLimit, 0.8*task.TimeLimit)
		}
	}
}

func TestEstimateTimeExperienceLowers(t *testing.T) {
	task := testTask()
	task.TimeLimit = 120

	novice := Agent{ID: 1, SuccessRate: 0.5, Available: true}
	novice.Normalize()

	expert := Agent{ID: 2, Skills: map[string]float64{"algorithms": 1.0}, SuccessRate: 0.9, ExperienceYears: 10, Competitions: 20, ProblemsSolved: 200, Available: true}
	expert.Normalize()

	if EstimateTime(&task, &expert) >= EstimateTime(&task, &novice) {
		t.Error("Experienced agent should be estimated faster than novice")
	}
}

func TestExpectedScore(t *testing.T) {
	task := testTask()
	agent := testAgent()

	score := ExpectedScore(&task, &agent)
	total := task.TotalPoints()

	if score <= 0 || score > total {
		t.Errorf("Expected score %.2f outside (0, %.2f]", score, total)
	}

	p := SuccessProbability(&task, &agent)
	if math.Abs(score-total*p) > 1e-9 {
		t.Errorf("Expected score %.4f != points %.2f * probability %.4f", score, total, p)
	}
}

func TestScoringDeterministic(t *testing.T) {
	// Same inputs must always produce identical outputs, including tasks
	// whose skill maps have several entries (map order must not leak)
	task := testTask()
	task.RequiredSkills = map[string]float64{
		"algorithms": 0.6, "data_structures": 0.4, "math": 0.7, "strings": 0.3,
	}
	agent := testAgent()

	first := Compatibility(&task, &agent)
	for range 50 {
		if got := Compatibility(&task, &agent); got != first {
			t.Fatalf("Compatibility not deterministic: %.17f vs %.17f", got, first)
		}
	}
}

func TestNormalizeDefaults(t *testing.T) {
	task := Task{ID: 9, Multiplier: math.NaN(), TimeLimit: -5, SolveRate: 7}
	task.Normalize()

	if task.BasePoints != DefaultBasePoints || task.Multiplier != DefaultMultiplier {
		t.Errorf("Point defaults not applied: points=%d mult=%.2f", task.BasePoints, task.Multiplier)
	}

	if task.TimeLimit != DefaultTimeLimit || task.SolveRate != DefaultSolveRate {
		t.Errorf("Time defaults not applied: limit=%.1f rate=%.2f", task.TimeLimit, task.SolveRate)
	}

	if task.Difficulty != Medium {
		t.Errorf("Difficulty default not applied: %s", task.Difficulty)
	}

	agent := Agent{ID: 9, SuccessRate: 80, ExperienceYears: math.Inf(1), Competitions: -2}
	agent.Normalize()

	if agent.SuccessRate != 0.8 {
		t.Errorf("Percentage success rate not converted: %.2f", agent.SuccessRate)
	}

	if agent.ExperienceYears != 0 || agent.Competitions != 0 {
		t.Errorf("Experience defaults not applied: years=%.1f comps=%d", agent.ExperienceYears, agent.Competitions)
	}

	if agent.Energy != DefaultEnergyLevel || agent.Concentration != DefaultEnergyLevel {
		t.Errorf("Dynamic factor defaults not applied: energy=%.2f concentration=%.2f", agent.Energy, agent.Concentration)
	}
}

// ========== Benchmarks ==========

func BenchmarkCompatibility(b *testing.B) {
	task := testTask()
	agent := testAgent()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Compatibility(&task, &agent)
	}
}

func BenchmarkSuccessProbability(b *testing.B) {
	task := testTask()
	agent := testAgent()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		SuccessProbability(&task, &agent)
	}
}
