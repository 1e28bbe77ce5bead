// ABOUTME: YAML dataset loading for tasks, agents and competition settings
// ABOUTME: Converts loose on-disk documents into normalized domain values

package competition

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Settings is the competition-level configuration carried by a dataset
type Settings struct {
	TotalTime float64 `yaml:"total_time"` // minutes
	TeamSize  int     `yaml:"team_size"`
}

// Dataset bundles the reference data one optimization runs against
type Dataset struct {
	Tasks    []Task
	Agents   []Agent
	Settings Settings
}

// taskDoc mirrors the on-disk task shape; loose fields are normalized after decode
type taskDoc struct {
	ID             int                `yaml:"id"`
	Name           string             `yaml:"name"`
	Category       string             `yaml:"category"`
	Difficulty     string             `yaml:"difficulty"`
	BasePoints     int                `yaml:"base_points"`
	Multiplier     float64            `yaml:"multiplier"`
	RequiredSkills map[string]float64 `yaml:"required_skills"`
	TimeLimit      float64            `yaml:"time_limit"`
	SolveRate      *float64           `yaml:"solve_rate"` // defaults to DefaultSolveRate when absent
}

// agentDoc mirrors the on-disk agent shape
type agentDoc struct {
	ID              int                `yaml:"id"`
	Name            string             `yaml:"name"`
	Skills          map[string]float64 `yaml:"skills"`
	SuccessRate     float64            `yaml:"success_rate"`
	ExperienceYears float64            `yaml:"experience_years"`
	Competitions    int                `yaml:"competitions"`
	ProblemsSolved  int                `yaml:"problems_solved"`
	Available       *bool              `yaml:"available"` // defaults to true when absent
	Energy          float64            `yaml:"energy"`
	Concentration   float64            `yaml:"concentration"`
	Preferred       []string           `yaml:"preferred_categories"`
	Avoided         []string           `yaml:"avoided_categories"`
}

type datasetDoc struct {
	Competition Settings   `yaml:"competition"`
	Tasks       []taskDoc  `yaml:"tasks"`
	Agents      []agentDoc `yaml:"agents"`
}

// LoadDataset reads and normalizes a YAML dataset file
func LoadDataset(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}

	return ParseDataset(data)
}

// ParseDataset decodes a YAML dataset document and normalizes every entry
func ParseDataset(data []byte) (*Dataset, error) {
	var doc datasetDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse dataset: %w", err)
	}

	ds := &Dataset{
		Settings: doc.Competition,
		Tasks:    make([]Task, 0, len(doc.Tasks)),
		Agents:   make([]Agent, 0, len(doc.Agents)),
	}

	for _, td := range doc.Tasks {
		solveRate := DefaultSolveRate
		if td.SolveRate != nil {
			solveRate = *td.SolveRate
		}

		task := Task{
			ID:             td.ID,
			Name:           td.Name,
			Category:       td.Category,
			Difficulty:     ParseDifficulty(td.Difficulty),
			BasePoints:     td.BasePoints,
			Multiplier:     td.Multiplier,
			RequiredSkills: td.RequiredSkills,
			TimeLimit:      td.TimeLimit,
			SolveRate:      solveRate,
		}
		task.Normalize()
		ds.Tasks = append(ds.Tasks, task)
	}

	for _, ad := range doc.Agents {
		agent := Agent{
			ID:                  ad.ID,
			Name:                ad.Name,
			Skills:              ad.Skills,
			SuccessRate:         ad.SuccessRate,
			ExperienceYears:     ad.ExperienceYears,
			Competitions:        ad.Competitions,
			ProblemsSolved:      ad.ProblemsSolved,
			Available:           ad.Available == nil || *ad.Available,
			Energy:              ad.Energy,
			Concentration:       ad.Concentration,
			PreferredCategories: ad.Preferred,
			AvoidedCategories:   ad.Avoided,
		}
		agent.Normalize()
		ds.Agents = append(ds.Agents, agent)
	}

	if ds.Settings.TotalTime <= 0 {
		ds.Settings.TotalTime = 300
	}

	if ds.Settings.TeamSize <= 0 {
		ds.Settings.TeamSize = len(ds.Agents)
	}

	return ds, nil
}
