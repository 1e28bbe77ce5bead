// ABOUTME: Diversity filter extracting up to K mutually dissimilar valid plans
// ABOUTME: Falls back to forced swap perturbations when the population converged

package optimizer

const (
	// Candidates scanned before forcing diversity
	topKScanWindow = 50

	// Fraction of cells that must differ for ordinary admission
	minCellDifference = 0.10

	// Assignments that must differ for ordinary admission
	minAssignmentDifference = 2
)

// selectTopK extracts at most k visibly different valid plans from the
// final population unioned with the historical elite pool.
//
// The top individual is admitted unconditionally. Later candidates must
// differ from every admitted plan in more than 10% of cells AND in at least
// two assignments. If the scan window runs dry before k plans are found,
// the next best candidates are perturbed with an agent swap and re-evaluated;
// a perturbed plan is admitted when, against every admitted plan, more than
// 10% of cells OR at least two assignments differ.
func (o *Optimizer) selectTopK(population []Individual, k int) []Individual {
	candidates := make([]Individual, 0, len(population)+len(o.elitePool))

	for i := range population {
		if population[i].Valid {
			candidates = append(candidates, population[i])
		}
	}

	candidates = append(candidates, o.elitePool...)
	sortByFitness(candidates)
	candidates = dedupeByChromosome(candidates)

	if len(candidates) == 0 || k <= 0 {
		return nil
	}

	admitted := []Individual{candidates[0]}

	for i := 1; i < len(candidates) && i <= topKScanWindow && len(admitted) < k; i++ {
		if o.dissimilarToAll(candidates[i].Chrom, admitted) {
			admitted = append(admitted, candidates[i])
		}
	}

	// Force diversity from the remaining best candidates
	for i := 1; i < len(candidates) && len(admitted) < k; i++ {
		if containsChromosome(admitted, candidates[i].Chrom) {
			continue
		}

		forced := o.forceDiversity(candidates[i])

		// Prefer a perturbation that moved at least two assignments away
		// from every admitted plan
		for attempts := 0; attempts < 6; attempts++ {
			if forced != nil && assignmentDistance(forced.Chrom, admitted) >= minAssignmentDifference {
				break
			}

			if retry := o.forceDiversity(candidates[i]); retry != nil {
				if forced == nil || assignmentDistance(retry.Chrom, admitted) > assignmentDistance(forced.Chrom, admitted) {
					forced = retry
				}
			}
		}

		if forced == nil || containsChromosome(admitted, forced.Chrom) {
			continue
		}

		apart := true
		for j := range admitted {
			cellFraction := float64(forced.Chrom.DifferingCells(admitted[j].Chrom)) / float64(max(1, len(forced.Chrom.Cells)))
			if cellFraction <= minCellDifference && forced.Chrom.DifferingAssignments(admitted[j].Chrom) < minAssignmentDifference {
				apart = false
				break
			}
		}

		if apart {
			admitted = append(admitted, *forced)
		}
	}

	return admitted
}

// dissimilarToAll checks the admission criteria against every admitted plan
func (o *Optimizer) dissimilarToAll(c Chromosome, admitted []Individual) bool {
	for i := range admitted {
		cellFraction := float64(c.DifferingCells(admitted[i].Chrom)) / float64(max(1, len(c.Cells)))
		if cellFraction <= minCellDifference {
			return false
		}

		if c.DifferingAssignments(admitted[i].Chrom) < minAssignmentDifference {
			return false
		}
	}

	return true
}

// forceDiversity applies a swap perturbation to a copy of the individual
// and re-evaluates it. Returns nil when the perturbed plan is infeasible.
func (o *Optimizer) forceDiversity(ind Individual) *Individual {
	perturbed := Individual{Chrom: ind.Chrom.Clone(), Generation: ind.Generation}

	assignments := perturbed.Chrom.Assignments()

	switch {
	case len(assignments) >= 2:
		o.mutateSwap(perturbed.Chrom)

		// A same-pair draw inside the swap leaves the matrix unchanged;
		// retry a bounded number of times
		for attempts := 0; attempts < 8 && perturbed.Chrom.DifferingCells(ind.Chrom) == 0; attempts++ {
			o.mutateSwap(perturbed.Chrom)
		}
	case len(assignments) == 1:
		// Single assignment: move it to a different agent instead
		a := assignments[0]

		for attempts := 0; attempts < 8; attempts++ {
			agent := o.rng.IntN(perturbed.Chrom.Cols)
			if agent != a.Agent && o.agents[agent].Available {
				perturbed.Chrom.Set(a.Task, a.Agent, 0)
				perturbed.Chrom.Set(a.Task, agent, a.Priority)

				break
			}
		}
	default:
		return nil
	}

	if perturbed.Chrom.DifferingCells(ind.Chrom) == 0 {
		return nil
	}

	o.repair(perturbed.Chrom)
	o.evaluate(&perturbed)

	if !perturbed.Valid {
		return nil
	}

	return &perturbed
}

// assignmentDistance is the smallest assignment difference between the
// chromosome and any admitted plan
func assignmentDistance(c Chromosome, admitted []Individual) int {
	minDiff := c.Rows + 1

	for i := range admitted {
		if d := c.DifferingAssignments(admitted[i].Chrom); d < minDiff {
			minDiff = d
		}
	}

	return minDiff
}

// dedupeByChromosome removes exact duplicates, keeping the first (best)
func dedupeByChromosome(individuals []Individual) []Individual {
	seen := make(map[string]bool, len(individuals))
	out := individuals[:0]

	for _, ind := range individuals {
		key := ind.Chrom.Key()
		if seen[key] {
			continue
		}

		seen[key] = true
		out = append(out, ind)
	}

	return out
}

// containsChromosome reports whether the exact chromosome is already present
func containsChromosome(individuals []Individual, c Chromosome) bool {
	for i := range individuals {
		if individuals[i].Chrom.DifferingCells(c) == 0 {
			return true
		}
	}

	return false
}
