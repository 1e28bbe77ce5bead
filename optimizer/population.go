// ABOUTME: Population initializer cycling four seeding strategies round-robin
// ABOUTME: Random, experience-ranked, load-balanced and compatibility-greedy seeds

package optimizer

import (
	"slices"
)

// initialPopulation produces a strategy-diverse starting population. Every
// chromosome passes through repair; evaluation happens in the caller.
func (o *Optimizer) initialPopulation() []Individual {
	avail := o.availableAgents()

	population := make([]Individual, o.popSize)

	for i := range population {
		var c Chromosome

		switch i % 4 {
		case 0:
			c = o.seedRandom(avail)
		case 1:
			c = o.seedExperienceRanked(avail)
		case 2:
			c = o.seedLoadBalanced(avail)
		default:
			c = o.seedCompatibilityGreedy(avail)
		}

		o.repair(c)
		population[i] = Individual{Chrom: c}
	}

	return population
}

// availableAgents returns the indices of agents that can be assigned
func (o *Optimizer) availableAgents() []int {
	var avail []int

	for j := range o.agents {
		if o.agents[j].Available {
			avail = append(avail, j)
		}
	}

	return avail
}

// chooseTaskCount draws how many tasks a seed attempts to cover: between
// half and three quarters of the task list, at least 3, capped at the total
func (o *Optimizer) chooseTaskCount() int {
	lo := max(3, o.numTasks/2)
	hi := min(o.numTasks, 3*o.numTasks/4)

	if hi <= lo {
		return min(o.numTasks, lo)
	}

	return lo + o.rng.IntN(hi-lo+1)
}

// chooseTasks returns a random task subset of the drawn size
func (o *Optimizer) chooseTasks() []int {
	perm := o.rng.Perm(o.numTasks)

	return perm[:o.chooseTaskCount()]
}

// seedRandom pairs a random task subset with randomly drawn agents
func (o *Optimizer) seedRandom(avail []int) Chromosome {
	c := NewChromosome(o.numTasks, o.numAgents)
	if len(avail) == 0 {
		return c
	}

	agents := slices.Clone(avail)
	o.rng.Shuffle(len(agents), func(a, b int) { agents[a], agents[b] = agents[b], agents[a] })

	team := agents[:min(o.comp.TeamSize, len(agents))]
	tasks := o.chooseTasks()

	for i := 0; i < len(tasks) && i < len(team); i++ {
		c.Set(tasks[i], team[i], uint8(1+o.rng.IntN(3)))
	}

	return c
}

// seedExperienceRanked walks the chosen tasks rotating through the agents
// ranked by experience plus competitions, forcing breadth across the team
func (o *Optimizer) seedExperienceRanked(avail []int) Chromosome {
	c := NewChromosome(o.numTasks, o.numAgents)
	if len(avail) == 0 {
		return c
	}

	ranked := slices.Clone(avail)
	slices.SortStableFunc(ranked, func(a, b int) int {
		sa := o.agents[a].ExperienceYears + float64(o.agents[a].Competitions)
		sb := o.agents[b].ExperienceYears + float64(o.agents[b].Competitions)

		switch {
		case sa > sb:
			return -1
		case sa < sb:
			return 1
		}

		return a - b
	})

	team := ranked[:min(o.comp.TeamSize, len(ranked))]

	for i, task := range o.chooseTasks() {
		c.Set(task, team[i%len(team)], 2)
	}

	return c
}

// seedLoadBalanced assigns each chosen task to the agent carrying the
// smallest estimated workload so far, ties broken uniformly
func (o *Optimizer) seedLoadBalanced(avail []int) Chromosome {
	c := NewChromosome(o.numTasks, o.numAgents)
	if len(avail) == 0 {
		return c
	}

	load := make(map[int]float64, len(avail))
	for _, j := range avail {
		load[j] = 0
	}

	for _, task := range o.chooseTasks() {
		minLoad := -1.0

		for _, j := range avail {
			if minLoad < 0 || load[j] < minLoad {
				minLoad = load[j]
			}
		}

		var ties []int

		for _, j := range avail {
			if load[j] == minLoad {
				ties = append(ties, j)
			}
		}

		agent := ties[o.rng.IntN(len(ties))]
		c.Set(task, agent, 1)
		load[agent] += o.estTime[task][agent]
	}

	return c
}

// seedCompatibilityGreedy picks among the top half most compatible agents
// per task, preferring unused agents until enough distinct ones are involved.
// When the top half holds no unused agent, the most compatible unused agent
// outside it is taken instead.
func (o *Optimizer) seedCompatibilityGreedy(avail []int) Chromosome {
	c := NewChromosome(o.numTasks, o.numAgents)
	if len(avail) == 0 {
		return c
	}

	breadth := min(6, len(avail))
	used := make(map[int]bool)

	for _, task := range o.chooseTasks() {
		ranked := slices.Clone(avail)
		slices.SortStableFunc(ranked, func(a, b int) int {
			switch {
			case o.compat[task][a] > o.compat[task][b]:
				return -1
			case o.compat[task][a] < o.compat[task][b]:
				return 1
			}

			return a - b
		})

		top := ranked[:max(1, (len(ranked)+1)/2)]

		candidates := top
		if len(used) < breadth {
			var unused []int

			for _, j := range top {
				if !used[j] {
					unused = append(unused, j)
				}
			}

			if len(unused) == 0 {
				for _, j := range ranked {
					if !used[j] {
						unused = append(unused, j)
						break
					}
				}
			}

			if len(unused) > 0 {
				candidates = unused
			}
		}

		agent := candidates[o.rng.IntN(len(candidates))]
		used[agent] = true

		c.Set(task, agent, priorityForCompatibility(o.compat[task][agent]))
	}

	return c
}

// priorityForCompatibility bands a compatibility score into priority 1-3
func priorityForCompatibility(compat float64) uint8 {
	switch {
	case compat > 0.8:
		return 3
	case compat > 0.6:
		return 2
	}

	return 1
}
