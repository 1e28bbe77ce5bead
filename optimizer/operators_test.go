// ABOUTME: Tests for selection, crossover and mutation operators
// ABOUTME: Validates invariants after repair and selection pressure

package optimizer

import (
	"testing"

	"coderush-optimizer/pool"
)

func TestCrossoverThenRepairKeepsInvariants(t *testing.T) {
	o := newTestOptimizer(t, 5, 5, 4, 31)

	wp := pool.New(1)
	defer wp.Close()

	population := o.initialPopulation()
	o.evaluatePopulation(population, wp)

	for trial := range 200 {
		p1 := population[o.rng.IntN(len(population))]
		p2 := population[o.rng.IntN(len(population))]

		child := o.crossover(p1.Chrom, p2.Chrom)
		o.repair(child)

		assertInvariants(t, child, o.maxAssign)

		_ = trial
	}
}

func TestMutationThenRepairKeepsInvariants(t *testing.T) {
	o := newTestOptimizer(t, 5, 5, 4, 37)

	population := o.initialPopulation()

	for trial := range 200 {
		ind := population[trial%len(population)]

		c := ind.Chrom.Clone()
		o.mutate(c)
		o.repair(c)

		assertInvariants(t, c, o.maxAssign)
	}
}

func TestMutateSwapExchangesAgents(t *testing.T) {
	o := newTestOptimizer(t, 3, 3, 3, 41)

	c := NewChromosome(3, 3)
	c.Set(0, 0, 1)
	c.Set(1, 1, 2)

	// Swap with exactly two assignments always exchanges their agents
	// unless the same index is drawn twice
	for range 50 {
		trial := c.Clone()
		o.mutateSwap(trial)

		n := trial.CountAssignments()
		if n != 2 {
			t.Fatalf("Swap changed assignment count to %d", n)
		}
	}
}

func TestMutateDropNeverEmpties(t *testing.T) {
	o := newTestOptimizer(t, 3, 3, 3, 43)

	c := NewChromosome(3, 3)
	c.Set(0, 0, 1)

	o.mutateDrop(c)

	if c.CountAssignments() != 1 {
		t.Error("Drop should not remove the last remaining assignment")
	}
}

func TestMutateAddRespectsCap(t *testing.T) {
	o := newTestOptimizer(t, 3, 3, 1, 47)

	c := NewChromosome(3, 3)
	c.Set(0, 0, 1)

	for range 20 {
		o.mutateAdd(c)
	}

	if n := c.CountAssignments(); n > 1 {
		t.Errorf("Add exceeded the assignment cap: %d", n)
	}
}

func TestSelectionPressure(t *testing.T) {
	o := newTestOptimizer(t, 4, 4, 3, 53)

	// A synthetic sorted population with known fitness spread
	population := make([]Individual, 40)
	for i := range population {
		population[i] = Individual{Fitness: 1.0 - float64(i)*0.02, Valid: true, Chrom: NewChromosome(4, 4)}
	}

	topHalf := 0
	const draws = 2000

	for range draws {
		if o.selectParent(population) < len(population)/2 {
			topHalf++
		}
	}

	// Tournament selection with 90% winner take should clearly favor the
	// fitter half
	if float64(topHalf)/draws < 0.65 {
		t.Errorf("Selection picked the top half only %.1f%% of the time", 100*float64(topHalf)/draws)
	}
}
