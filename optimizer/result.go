// ABOUTME: Result projection: ranked plans, dense trace and final statistics
// ABOUTME: The only output surface the core exposes to embedders

package optimizer

// PlanAssignment is one (task, agent) pairing with its derived metrics
type PlanAssignment struct {
	TaskID        int     `json:"task_id"`
	TaskName      string  `json:"task_name"`
	AgentID       int     `json:"agent_id"`
	AgentName     string  `json:"agent_name"`
	Priority      int     `json:"priority"`
	Compatibility float64 `json:"compatibility"`
	EstimatedTime float64 `json:"estimated_time"`
	ExpectedScore float64 `json:"expected_score"`
}

// PlanStats summarizes one plan
type PlanStats struct {
	TotalExpectedScore float64 `json:"total_expected_score"`
	ParallelTime       float64 `json:"parallel_time"`
	MeanCompatibility  float64 `json:"mean_compatibility"`
	AgentsUsed         int     `json:"agents_used"`
}

// Plan is one ranked assignment plan
type Plan struct {
	Rank        int              `json:"rank"`
	Strategy    string           `json:"strategy"`
	Fitness     float64          `json:"fitness"`
	Assignments []PlanAssignment `json:"assignments"`
	Stats       PlanStats        `json:"stats"`
}

// FinalStats are the run-level statistics
type FinalStats struct {
	GenerationsExecuted int     `json:"generations_executed"`
	BestFitness         float64 `json:"best_fitness"`
	MeanFitness         float64 `json:"mean_fitness"`
	ValidIndividuals    int     `json:"valid_individuals"`
	UniqueFitnessCount  int     `json:"unique_fitness_count"`
	Convergence         string  `json:"convergence"`
	TrendSlope          float64 `json:"trend_slope"`
}

// Result is the complete output of one optimization invocation
type Result struct {
	Success bool         `json:"success"`
	Reason  string       `json:"reason,omitempty"`
	Plans   []Plan       `json:"plans"`
	Trace   []TracePoint `json:"trace"`
	Stats   FinalStats   `json:"stats"`
}

// BestPlan returns the top-ranked plan, or nil when there is none
func (r *Result) BestPlan() *Plan {
	if len(r.Plans) == 0 {
		return nil
	}

	return &r.Plans[0]
}

// buildResult projects the final population into the caller-facing result
func (o *Optimizer) buildResult(population []Individual, generations int, aborted bool) *Result {
	topK := max(1, o.cfg.TopK)
	selected := o.selectTopK(population, topK)

	plans := make([]Plan, 0, len(selected))
	for rank, ind := range selected {
		plans = append(plans, o.buildPlan(rank+1, ind))
	}

	validCount := 0
	meanFitness := 0.0

	for i := range population {
		if population[i].Valid {
			validCount++
			meanFitness += population[i].Fitness
		}
	}

	if validCount > 0 {
		meanFitness /= float64(validCount)
	}

	dense := expandTrace(o.trace, o.rng)

	result := &Result{
		Success: !aborted && len(plans) > 0,
		Plans:   plans,
		Trace:   dense,
		Stats: FinalStats{
			GenerationsExecuted: generations,
			BestFitness:         o.bestEver,
			MeanFitness:         meanFitness,
			ValidIndividuals:    validCount,
			UniqueFitnessCount:  len(o.distinct),
			Convergence:         convergenceState(dense),
			TrendSlope:          traceTrend(dense),
		},
	}

	if aborted {
		result.Reason = ReasonAborted
	}

	return result
}

// buildPlan projects one individual into a plan with per-assignment metrics
func (o *Optimizer) buildPlan(rank int, ind Individual) Plan {
	assignments := ind.Chrom.Assignments()

	planAssignments := make([]PlanAssignment, 0, len(assignments))
	for _, a := range assignments {
		planAssignments = append(planAssignments, PlanAssignment{
			TaskID:        o.tasks[a.Task].ID,
			TaskName:      o.tasks[a.Task].Name,
			AgentID:       o.agents[a.Agent].ID,
			AgentName:     o.agents[a.Agent].Name,
			Priority:      int(a.Priority),
			Compatibility: o.compat[a.Task][a.Agent],
			EstimatedTime: o.estTime[a.Task][a.Agent],
			ExpectedScore: o.expScore[a.Task][a.Agent],
		})
	}

	totalScore := 0.0
	for _, pa := range planAssignments {
		totalScore += pa.ExpectedScore
	}

	return Plan{
		Rank:        rank,
		Strategy:    strategyLabel(ind.Components),
		Fitness:     ind.Fitness,
		Assignments: planAssignments,
		Stats: PlanStats{
			TotalExpectedScore: totalScore,
			ParallelTime:       ind.Components.ParallelTime,
			MeanCompatibility:  ind.Components.Compatibility,
			AgentsUsed:         ind.Components.AgentsUsed,
		},
	}
}

// strategyLabel names a plan by its dominant fitness character
func strategyLabel(c Components) string {
	switch {
	case c.Score >= c.Compatibility && c.Score >= c.Quantity:
		return "score-focused"
	case c.Compatibility >= c.Quantity:
		return "compatibility-focused"
	}

	return "coverage-focused"
}
