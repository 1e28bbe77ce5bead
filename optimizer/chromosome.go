// ABOUTME: Chromosome model: a tasks-by-agents assignment matrix with invariants
// ABOUTME: Cell values 1-3 encode priority; only cell > 0 matters for correctness

package optimizer

// Chromosome is an assignment matrix of shape tasks x agents. A non-zero
// cell assigns the row's task to the column's agent; the value (1-3) is an
// opaque priority used by seeding and mutation, never by ranking.
//
// Invariants (established by repair):
//   - at most one non-zero cell per row
//   - at most one non-zero cell per column
//   - total assignments <= min(tasks, team size)
type Chromosome struct {
	Rows  int
	Cols  int
	Cells []uint8 // row-major, len Rows*Cols
}

// Assignment is one (task, agent) pair extracted from a chromosome
type Assignment struct {
	Task     int
	Agent    int
	Priority uint8
}

// NewChromosome returns an empty matrix of the given shape
func NewChromosome(rows, cols int) Chromosome {
	return Chromosome{Rows: rows, Cols: cols, Cells: make([]uint8, rows*cols)}
}

// At returns the cell value for (task, agent)
func (c Chromosome) At(task, agent int) uint8 {
	return c.Cells[task*c.Cols+agent]
}

// Set writes the cell value for (task, agent)
func (c Chromosome) Set(task, agent int, v uint8) {
	c.Cells[task*c.Cols+agent] = v
}

// Clone returns a deep copy of the chromosome
func (c Chromosome) Clone() Chromosome {
	cells := make([]uint8, len(c.Cells))
	copy(cells, c.Cells)

	return Chromosome{Rows: c.Rows, Cols: c.Cols, Cells: cells}
}

// Key returns the exact cache key for this chromosome's contents
func (c Chromosome) Key() string {
	return string(c.Cells)
}

// Assignments extracts all (task, agent) pairs in row order
func (c Chromosome) Assignments() []Assignment {
	var out []Assignment

	for i := range c.Rows {
		for j := range c.Cols {
			if v := c.At(i, j); v > 0 {
				out = append(out, Assignment{Task: i, Agent: j, Priority: v})
			}
		}
	}

	return out
}

// CountAssignments returns the number of non-zero cells
func (c Chromosome) CountAssignments() int {
	n := 0

	for _, v := range c.Cells {
		if v > 0 {
			n++
		}
	}

	return n
}

// DifferingCells counts cells where the two chromosomes disagree
func (c Chromosome) DifferingCells(other Chromosome) int {
	diff := 0

	for i, v := range c.Cells {
		if v != other.Cells[i] {
			diff++
		}
	}

	return diff
}

// DifferingAssignments counts tasks whose assigned agent differs between the
// two chromosomes, counting a task assigned in only one of them as a difference
func (c Chromosome) DifferingAssignments(other Chromosome) int {
	diff := 0

	for i := range c.Rows {
		a1, a2 := c.assignedAgent(i), other.assignedAgent(i)
		if a1 != a2 {
			diff++
		}
	}

	return diff
}

// assignedAgent returns the agent index assigned to the task row, or -1
func (c Chromosome) assignedAgent(task int) int {
	for j := range c.Cols {
		if c.At(task, j) > 0 {
			return j
		}
	}

	return -1
}

// HammingSimilarity returns 1 minus the fraction of differing cells
func (c Chromosome) HammingSimilarity(other Chromosome) float64 {
	if len(c.Cells) == 0 {
		return 1
	}

	return 1 - float64(c.DifferingCells(other))/float64(len(c.Cells))
}

// repair enforces the chromosome invariants in place:
//  1. each row keeps at most one assignment (random survivor)
//  2. each column keeps at most one assignment (earliest row survives)
//  3. the total assignment count is capped; excess rows are cleared
//     lowest-compatibility-first
//
// repair is idempotent: a matrix already satisfying the invariants is
// returned unchanged.
func (o *Optimizer) repair(c Chromosome) {
	// Rows: keep one random survivor per over-assigned task
	for i := range c.Rows {
		count := 0

		for j := range c.Cols {
			if c.At(i, j) > 0 {
				count++
			}
		}

		if count <= 1 {
			continue
		}

		keep := o.rng.IntN(count)
		seen := 0

		for j := range c.Cols {
			if c.At(i, j) == 0 {
				continue
			}

			if seen != keep {
				c.Set(i, j, 0)
			}

			seen++
		}
	}

	// Columns: earliest row survives
	for j := range c.Cols {
		found := false

		for i := range c.Rows {
			if c.At(i, j) == 0 {
				continue
			}

			if found {
				c.Set(i, j, 0)
			}

			found = true
		}
	}

	// Cap: drop lowest-compatibility assignments until within budget
	excess := c.CountAssignments() - o.maxAssign
	for excess > 0 {
		worstTask, worstAgent := -1, -1
		worstCompat := 2.0

		for i := range c.Rows {
			for j := range c.Cols {
				if c.At(i, j) == 0 {
					continue
				}

				if compat := o.compat[i][j]; compat < worstCompat {
					worstCompat = compat
					worstTask, worstAgent = i, j
				}
			}
		}

		c.Set(worstTask, worstAgent, 0)
		excess--
	}
}
