// ABOUTME: Tests for YAML dataset parsing and normalization
// ABOUTME: Validates defaults, availability handling and malformed input

package competition

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleDataset = `
competition:
  total_time: 300
  team_size: 2

tasks:
  - id: 1
    name: Shortest path
    category: algorithms
    difficulty: medium
    base_points: 100
    multiplier: 1.2
    time_limit: 45
    required_skills:
      algorithms: 0.6
  - id: 2
    name: Interval tree
    difficulty: hard
    base_points: 200
    multiplier: 1.5
    time_limit: 75
    required_skills:
      data_structures: 0.8

agents:
  - id: 1
    name: Ada
    success_rate: 0.75
    skills:
      algorithms: 0.9
      python: 0.9
  - id: 2
    name: Linus
    success_rate: 0.68
    available: false
    skills:
      data_structures: 0.85
`

func TestParseDataset(t *testing.T) {
	ds, err := ParseDataset([]byte(sampleDataset))
	if err != nil {
		t.Fatalf("ParseDataset failed: %v", err)
	}

	if len(ds.Tasks) != 2 || len(ds.Agents) != 2 {
		t.Fatalf("Got %d tasks, %d agents, want 2 and 2", len(ds.Tasks), len(ds.Agents))
	}

	if ds.Settings.TotalTime != 300 || ds.Settings.TeamSize != 2 {
		t.Errorf("Settings not parsed: %+v", ds.Settings)
	}

	if ds.Tasks[1].Difficulty != Hard {
		t.Errorf("Task difficulty: got %s, want %s", ds.Tasks[1].Difficulty, Hard)
	}

	// Absent availability defaults to true, explicit false stays false
	if !ds.Agents[0].Available {
		t.Error("Agent without availability flag should default to available")
	}

	if ds.Agents[1].Available {
		t.Error("Agent with available: false should stay unavailable")
	}

	// Missing category parses to empty, missing solve rate to default
	if ds.Tasks[0].SolveRate != DefaultSolveRate {
		t.Errorf("Missing solve rate should default to %.2f, got %.2f", DefaultSolveRate, ds.Tasks[0].SolveRate)
	}
}

func TestParseDatasetDefaultsSettings(t *testing.T) {
	doc := `
tasks:
  - id: 1
agents:
  - id: 1
  - id: 2
`

	ds, err := ParseDataset([]byte(doc))
	if err != nil {
		t.Fatalf("ParseDataset failed: %v", err)
	}

	if ds.Settings.TotalTime <= 0 {
		t.Errorf("Total time default not applied: %.1f", ds.Settings.TotalTime)
	}

	if ds.Settings.TeamSize != len(ds.Agents) {
		t.Errorf("Team size should default to agent count %d, got %d", len(ds.Agents), ds.Settings.TeamSize)
	}

	// Task with nothing but an id gets full defaults
	task := ds.Tasks[0]
	if task.BasePoints != DefaultBasePoints || task.TimeLimit != DefaultTimeLimit {
		t.Errorf("Task defaults not applied: %+v", task)
	}
}

func TestParseDatasetInvalidYAML(t *testing.T) {
	if _, err := ParseDataset([]byte("tasks: [unclosed")); err == nil {
		t.Error("Expected error for malformed YAML")
	}
}

func TestLoadDataset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dataset.yaml")
	if err := os.WriteFile(path, []byte(sampleDataset), 0o644); err != nil {
		t.Fatalf("Failed to write temp dataset: %v", err)
	}

	ds, err := LoadDataset(path)
	if err != nil {
		t.Fatalf("LoadDataset failed: %v", err)
	}

	if len(ds.Tasks) != 2 {
		t.Errorf("Got %d tasks, want 2", len(ds.Tasks))
	}
}

func TestLoadDatasetMissingFile(t *testing.T) {
	if _, err := LoadDataset(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Expected error for missing file")
	}
}
