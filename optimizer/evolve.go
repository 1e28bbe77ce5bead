// ABOUTME: Elitist generational evolution loop with convergence tracking
// ABOUTME: Polls the caller's abort signal between generations, never inside one

package optimizer

import (
	"context"
	"math"
	"slices"

	"coderush-optimizer/pool"
)

const (
	improvementEpsilon = 1e-5
	lowDiversityCount  = 10
	mutationBoost      = 1.5
	elitePoolCap       = 24
)

// Run executes the evolution loop and returns the optimization result.
// On abort it returns the best valid plans observed so far together with a
// truncated trace and ErrAborted.
func (o *Optimizer) Run(ctx context.Context) (*Result, error) {
	wp := pool.New(0)
	defer wp.Close()

	population := o.initialPopulation()
	o.evaluatePopulation(population, wp)
	sortByFitness(population)

	if countValid(population) == 0 {
		return &Result{Success: false, Reason: ReasonNoFeasibleStart}, ErrNoFeasibleStart
	}

	var (
		generation = 0
		stalled    = 0
		aborted    = false
	)

	for generation = 0; generation < o.maxGenerations; generation++ {
		select {
		case <-ctx.Done():
			aborted = true
		default:
		}

		if aborted {
			break
		}

		improved := o.noteGeneration(generation, population, false)

		if improved {
			stalled = 0
		} else {
			stalled++
		}

		if population[0].Fitness >= o.cfg.TargetFitness {
			break
		}

		if stalled >= o.cfg.StallLimit {
			break
		}

		next := o.breed(generation, population)
		o.evaluatePopulation(next, wp)
		sortByFitness(next)

		population = next
	}

	// Always close the trace with the final state so interpolation has a
	// terminal anchor, even when the loop stopped between cadence points
	o.noteGeneration(generation, population, true)

	result := o.buildResult(population, generation, aborted)
	if aborted {
		return result, ErrAborted
	}

	return result, nil
}

// breed produces the next generation: elites carried unchanged, the rest
// filled by selection, optional crossover and mutation
func (o *Optimizer) breed(generation int, population []Individual) []Individual {
	next := make([]Individual, 0, o.popSize)

	for i := 0; i < o.eliteCount && i < len(population); i++ {
		elite := population[i]
		elite.Chrom = elite.Chrom.Clone()
		elite.Generation = generation + 1
		next = append(next, elite)
	}

	// Low fitness diversity triggers a bounded mutation boost
	mutationRate := o.cfg.MutationRate
	if len(o.distinct) < lowDiversityCount {
		mutationRate = math.Min(1, mutationRate*mutationBoost)
	}

	for len(next) < o.popSize {
		p1 := population[o.selectParent(population)]
		p2 := population[o.selectParent(population)]

		var child Chromosome
		if o.rng.Float64() < o.cfg.CrossoverRate {
			child = o.crossover(p1.Chrom, p2.Chrom)
		} else {
			child = p1.Chrom.Clone()
		}

		if o.rng.Float64() < mutationRate {
			o.mutate(child)
		}

		o.repair(child)
		next = append(next, Individual{Chrom: child, Generation: generation + 1})
	}

	return next
}

// noteGeneration records convergence bookkeeping for a sorted population and
// reports whether the best fitness improved beyond the epsilon. With force
// set, a trace point is recorded regardless of the cadence.
func (o *Optimizer) noteGeneration(generation int, population []Individual, force bool) bool {
	improved := population[0].Valid && population[0].Fitness > o.bestEver+improvementEpsilon
	if population[0].Valid && population[0].Fitness > o.bestEver {
		o.bestEver = population[0].Fitness
	}

	validCount := 0
	sum := 0.0
	worst := math.MaxFloat64

	for i := range population {
		if !population[i].Valid {
			continue
		}

		validCount++
		sum += population[i].Fitness

		if population[i].Fitness < worst {
			worst = population[i].Fitness
		}

		o.distinct[roundFitness(population[i].Fitness)] = struct{}{}
	}

	mean := 0.0
	if validCount > 0 {
		mean = sum / float64(validCount)
	} else {
		worst = 0
	}

	o.rememberElites(population)

	interval := max(1, o.cfg.TraceInterval)
	if force || generation%interval == 0 || improved {
		o.recordTracePoint(generation, mean, worst)
		o.sendUpdate(generation, mean, validCount)
	}

	return improved
}

// recordTracePoint appends a sparse trace record, replacing a duplicate for
// the same generation. Best is the best-so-far, which keeps the recorded
// series monotonic non-decreasing.
func (o *Optimizer) recordTracePoint(generation int, mean, worst float64) {
	point := TracePoint{
		Generation: generation,
		Best:       o.bestEver,
		Mean:       math.Min(mean, o.bestEver),
		Worst:      math.Min(worst, mean),
	}

	if n := len(o.trace); n > 0 && o.trace[n-1].Generation == generation {
		o.trace[n-1] = point

		return
	}

	o.trace = append(o.trace, point)
}

// sendUpdate notifies the caller without ever blocking the loop
func (o *Optimizer) sendUpdate(generation int, mean float64, valid int) {
	if o.opts.Updates == nil {
		return
	}

	select {
	case o.opts.Updates <- Update{
		Generation:  generation,
		BestFitness: o.bestEver,
		MeanFitness: mean,
		Valid:       valid,
		Epoch:       o.opts.Epoch,
	}:
	default:
	}
}

// rememberElites folds the best of the population into the historical elite
// pool used by the top-K selector
func (o *Optimizer) rememberElites(population []Individual) {
	for i := 0; i < len(population) && i < o.eliteCount; i++ {
		if !population[i].Valid {
			continue
		}

		elite := population[i]
		elite.Chrom = elite.Chrom.Clone()
		o.elitePool = append(o.elitePool, elite)
	}

	sortByFitness(o.elitePool)

	// Deduplicate by chromosome contents, best first
	seen := make(map[string]bool, len(o.elitePool))
	unique := o.elitePool[:0]

	for _, ind := range o.elitePool {
		key := ind.Chrom.Key()
		if seen[key] {
			continue
		}

		seen[key] = true
		unique = append(unique, ind)
	}

	o.elitePool = unique
	if len(o.elitePool) > elitePoolCap {
		o.elitePool = o.elitePool[:elitePoolCap]
	}
}

// sortByFitness orders individuals best first; invalid individuals have
// fitness 0 and sink to the bottom. The sort is stable so equal-fitness
// ordering is reproducible.
func sortByFitness(population []Individual) {
	slices.SortStableFunc(population, func(a, b Individual) int {
		switch {
		case a.Fitness > b.Fitness:
			return -1
		case a.Fitness < b.Fitness:
			return 1
		}

		return 0
	})
}

// countValid counts individuals with the validity flag set
func countValid(population []Individual) int {
	n := 0

	for i := range population {
		if population[i].Valid {
			n++
		}
	}

	return n
}

// roundFitness rounds to the precision used for the distinct-fitness set
func roundFitness(f float64) float64 {
	return math.Round(f*1e6) / 1e6
}
