// ABOUTME: Tests for the strategy-cycled population initializer
// ABOUTME: Validates invariants, strategy coverage and availability handling

package optimizer

import (
	"testing"

	"coderush-optimizer/competition"
	"coderush-optimizer/config"
)

func TestInitialPopulationInvariants(t *testing.T) {
	o := newTestOptimizer(t, 6, 5, 3, 21)

	population := o.initialPopulation()

	if len(population) != o.popSize {
		t.Fatalf("Population size %d, want %d", len(population), o.popSize)
	}

	for i := range population {
		assertInvariants(t, population[i].Chrom, o.maxAssign)
	}
}

func TestInitialPopulationHasAssignments(t *testing.T) {
	o := newTestOptimizer(t, 4, 4, 3, 5)

	population := o.initialPopulation()

	empty := 0

	for i := range population {
		if population[i].Chrom.CountAssignments() == 0 {
			empty++
		}
	}

	if empty > len(population)/10 {
		t.Errorf("%d/%d seeds came out empty", empty, len(population))
	}
}

func TestInitialPopulationDiverse(t *testing.T) {
	o := newTestOptimizer(t, 6, 6, 4, 9)

	population := o.initialPopulation()

	distinct := make(map[string]struct{})
	for i := range population {
		distinct[population[i].Chrom.Key()] = struct{}{}
	}

	// Four strategies over a 36-cell space should not collapse to a handful
	if len(distinct) < 8 {
		t.Errorf("Only %d distinct chromosomes in initial population", len(distinct))
	}
}

func TestInitialPopulationSkipsUnavailableAgents(t *testing.T) {
	tasks := scenarioTasks()
	agents := scenarioAgents()
	agents = append(agents, competition.Agent{ID: 3, Name: "C", SuccessRate: 0.99, Available: false, Skills: map[string]float64{"algorithms": 1}})

	o, err := New(tasks, agents, CompetitionConfig{TotalTime: 300, TeamSize: 2}, config.DefaultConfig(), Options{Seed: 4})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	population := o.initialPopulation()

	for i := range population {
		for _, a := range population[i].Chrom.Assignments() {
			if a.Agent == 2 {
				t.Fatal("Seeding assigned a task to an unavailable agent")
			}
		}
	}
}

func TestChooseTaskCountBounds(t *testing.T) {
	tests := []struct {
		numTasks int
		min, max int
	}{
		{1, 1, 1},
		{2, 2, 2},
		{3, 3, 3},
		{8, 4, 6},
		{20, 10, 15},
	}

	for _, tt := range tests {
		o := newTestOptimizer(t, tt.numTasks, 5, 3, 13)

		for range 50 {
			count := o.chooseTaskCount()
			if count < tt.min || count > tt.max {
				t.Errorf("tasks=%d: count %d outside [%d, %d]", tt.numTasks, count, tt.min, tt.max)
			}
		}
	}
}

func TestCompatibilityGreedyBreadth(t *testing.T) {
	o := newTestOptimizer(t, 8, 8, 8, 17)

	avail := o.availableAgents()

	used := make(map[int]struct{})

	for range 20 {
		c := o.seedCompatibilityGreedy(avail)
		for _, a := range c.Assignments() {
			used[a.Agent] = struct{}{}
		}
	}

	// Forced breadth should involve at least min(6, agents) distinct agents
	if len(used) < 6 {
		t.Errorf("Greedy seeding touched only %d distinct agents, want >= 6", len(used))
	}
}

func TestPriorityForCompatibility(t *testing.T) {
	tests := []struct {
		compat float64
		want   uint8
	}{
		{0.95, 3},
		{0.7, 2},
		{0.5, 1},
		{0.0, 1},
	}

	for _, tt := range tests {
		if got := priorityForCompatibility(tt.compat); got != tt.want {
			t.Errorf("priorityForCompatibility(%.2f) = %d, want %d", tt.compat, got, tt.want)
		}
	}
}
