// ABOUTME: Multi-mode mutation: swap, reassign, add and drop
// ABOUTME: One mode is drawn uniformly; impossible modes leave the matrix unchanged

package optimizer

// mutate applies one randomly chosen mutation mode in place. The caller
// repairs and re-evaluates afterwards.
func (o *Optimizer) mutate(c Chromosome) {
	switch o.rng.IntN(4) {
	case 0:
		o.mutateSwap(c)
	case 1:
		o.mutateReassign(c)
	case 2:
		o.mutateAdd(c)
	default:
		o.mutateDrop(c)
	}
}

// mutateSwap exchanges the agents of two existing assignments
func (o *Optimizer) mutateSwap(c Chromosome) {
	assignments := c.Assignments()
	if len(assignments) < 2 {
		return
	}

	i := o.rng.IntN(len(assignments))
	j := o.rng.IntN(len(assignments))

	if i == j {
		return
	}

	a, b := assignments[i], assignments[j]

	c.Set(a.Task, a.Agent, 0)
	c.Set(b.Task, b.Agent, 0)
	c.Set(a.Task, b.Agent, a.Priority)
	c.Set(b.Task, a.Agent, b.Priority)
}

// mutateReassign moves one assignment to a random agent with a fresh priority
func (o *Optimizer) mutateReassign(c Chromosome) {
	assignments := c.Assignments()
	if len(assignments) == 0 {
		return
	}

	a := assignments[o.rng.IntN(len(assignments))]

	c.Set(a.Task, a.Agent, 0)
	c.Set(a.Task, o.rng.IntN(c.Cols), uint8(1+o.rng.IntN(3)))
}

// mutateAdd inserts a new pair for an unused task and unused agent when the
// assignment cap allows it
func (o *Optimizer) mutateAdd(c Chromosome) {
	assignments := c.Assignments()
	if len(assignments) >= o.maxAssign {
		return
	}

	taskUsed := make([]bool, c.Rows)
	agentUsed := make([]bool, c.Cols)

	for _, a := range assignments {
		taskUsed[a.Task] = true
		agentUsed[a.Agent] = true
	}

	var freeTasks, freeAgents []int

	for i := range c.Rows {
		if !taskUsed[i] {
			freeTasks = append(freeTasks, i)
		}
	}

	for j := range c.Cols {
		if !agentUsed[j] && o.agents[j].Available {
			freeAgents = append(freeAgents, j)
		}
	}

	if len(freeTasks) == 0 || len(freeAgents) == 0 {
		return
	}

	task := freeTasks[o.rng.IntN(len(freeTasks))]
	agent := freeAgents[o.rng.IntN(len(freeAgents))]

	c.Set(task, agent, uint8(1+o.rng.IntN(3)))
}

// mutateDrop removes one assignment when at least two exist
func (o *Optimizer) mutateDrop(c Chromosome) {
	assignments := c.Assignments()
	if len(assignments) < 2 {
		return
	}

	a := assignments[o.rng.IntN(len(assignments))]
	c.Set(a.Task, a.Agent, 0)
}
