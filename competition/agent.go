// ABOUTME: Defines Agent struct for candidate solvers with skills and history
// ABOUTME: Provides input normalization and the cumulative experience score

package competition

import (
	"fmt"
	"maps"
	"slices"
)

// Defaults applied when an agent field is missing or malformed
const (
	DefaultSuccessRate = 0.5
	DefaultEnergyLevel = 0.8
)

// Agent is a candidate solver with a skill profile and competition history.
// Immutable for the duration of one optimization.
type Agent struct {
	ID              int
	Name            string
	Skills          map[string]float64 // skill name -> level in [0,1]
	SuccessRate     float64            // historical success rate in [0,1]
	ExperienceYears float64
	Competitions    int
	ProblemsSolved  int
	Available       bool

	// Dynamic factors, both in [0,1]
	Energy        float64
	Concentration float64

	// Category preferences, optional
	PreferredCategories []string
	AvoidedCategories   []string
}

// ExperienceScore returns normalized cumulative experience in [0,1]:
// the mean of years/10, competitions/20 and problems solved/200, each capped at 1
func (a *Agent) ExperienceScore() float64 {
	years := min(a.ExperienceYears/10.0, 1.0)
	comps := min(float64(a.Competitions)/20.0, 1.0)
	solved := min(float64(a.ProblemsSolved)/200.0, 1.0)

	return (years + comps + solved) / 3.0
}

// Prefers reports whether the agent declared a preference for the category
func (a *Agent) Prefers(category string) bool {
	return slices.Contains(a.PreferredCategories, category)
}

// Avoids reports whether the agent declared the category as one to avoid
func (a *Agent) Avoids(category string) bool {
	return slices.Contains(a.AvoidedCategories, category)
}

// Normalize substitutes documented defaults for missing or malformed fields.
// Success rates above 1 are treated as percentages. Availability is left
// untouched: the caller decides it, the scoring kernel only reads it.
func (a *Agent) Normalize() {
	if a.Name == "" {
		a.Name = fmt.Sprintf("Agent %d", a.ID)
	}

	if a.SuccessRate > 1 && a.SuccessRate <= 100 {
		a.SuccessRate /= 100.0
	}

	if !isFinite(a.SuccessRate) || a.SuccessRate < 0 || a.SuccessRate > 1 {
		a.SuccessRate = DefaultSuccessRate
	}

	if !isFinite(a.ExperienceYears) || a.ExperienceYears < 0 {
		a.ExperienceYears = 0
	}

	if a.Competitions < 0 {
		a.Competitions = 0
	}

	if a.ProblemsSolved < 0 {
		a.ProblemsSolved = 0
	}

	if !isFinite(a.Energy) || a.Energy <= 0 || a.Energy > 1 {
		a.Energy = DefaultEnergyLevel
	}

	if !isFinite(a.Concentration) || a.Concentration <= 0 || a.Concentration > 1 {
		a.Concentration = DefaultEnergyLevel
	}

	// Clone before clamping so a caller's map is never written to
	a.Skills = maps.Clone(a.Skills)

	for skill, level := range a.Skills {
		if !isFinite(level) || level < 0 {
			a.Skills[skill] = 0
		} else if level > 1 {
			a.Skills[skill] = 1
		}
	}
}

// String returns a short display representation of the agent
func (a *Agent) String() string {
	return fmt.Sprintf("%s (history %.2f, %d competitions)", a.Name, a.SuccessRate, a.Competitions)
}
