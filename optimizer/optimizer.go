// ABOUTME: Optimizer construction: input validation, pair score caches, weights
// ABOUTME: Owns the per-run RNG so runs are reproducible given a seed

package optimizer

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"sync"

	"coderush-optimizer/competition"
	"coderush-optimizer/config"
)

// Optimizer runs one optimization invocation. It owns its population, RNG
// and evaluation cache; distinct invocations share no mutable state and are
// safe to run concurrently.
type Optimizer struct {
	tasks  []competition.Task
	agents []competition.Agent
	comp   CompetitionConfig
	cfg    config.GAConfig
	opts   Options

	rng *rand.Rand

	numTasks  int
	numAgents int
	maxAssign int

	popSize        int
	maxGenerations int
	eliteCount     int
	tournamentSize int

	weights Weights

	// Pair score tables, computed once per run from the scoring kernel
	compat   [][]float64
	succ     [][]float64
	estTime  [][]float64
	expScore [][]float64
	maxScore float64 // normalizer: summed total points over all tasks

	cacheMu sync.Mutex
	cache   map[string]evalOutcome

	// Best-ever valid individuals retained for the top-K union
	elitePool []Individual

	trace    []TracePoint
	distinct map[float64]struct{}
	bestEver float64
}

// New validates the inputs and prepares an optimization run. Validation
// errors are returned before any work begins and have no side effects.
func New(tasks []competition.Task, agents []competition.Agent, comp CompetitionConfig, cfg config.GAConfig, opts Options) (*Optimizer, error) {
	if len(tasks) == 0 || len(agents) == 0 {
		return nil, ErrEmptyInput
	}

	if comp.TeamSize <= 0 {
		return nil, fmt.Errorf("%w: team size %d must be positive", ErrInvalidConfig, comp.TeamSize)
	}

	if comp.TotalTime <= 0 {
		return nil, fmt.Errorf("%w: total time %.1f must be positive", ErrInvalidConfig, comp.TotalTime)
	}

	if comp.TeamSize > len(agents) {
		return nil, fmt.Errorf("%w: team size %d > %d agents", ErrTeamTooLarge, comp.TeamSize, len(agents))
	}

	// Work on normalized copies; the caller's slices stay untouched
	normTasks := make([]competition.Task, len(tasks))
	copy(normTasks, tasks)

	normAgents := make([]competition.Agent, len(agents))
	copy(normAgents, agents)

	for i := range normTasks {
		normTasks[i].Normalize()
	}

	for i := range normAgents {
		normAgents[i].Normalize()
	}

	seed := opts.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}

	o := &Optimizer{
		tasks:     normTasks,
		agents:    normAgents,
		comp:      comp,
		cfg:       cfg,
		opts:      opts,
		rng:       rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		numTasks:  len(normTasks),
		numAgents: len(normAgents),
		maxAssign: min(len(normTasks), comp.TeamSize),
		cache:     make(map[string]evalOutcome),
		distinct:  make(map[float64]struct{}),
	}

	o.popSize = o.derivePopulationSize()
	o.maxGenerations = o.deriveMaxGenerations()
	o.eliteCount = max(5, int(math.Ceil(cfg.ElitePercentage*float64(o.popSize))))
	o.tournamentSize = max(3, int(cfg.TournamentFraction*float64(o.popSize)))

	o.buildPairCache()
	o.resolveWeights()

	return o, nil
}

// Optimize is the primary operation: validate, search, and return a ranked
// set of diversified plans plus the convergence trace. Validation failures
// come back as a failed Result alongside the error kind.
func Optimize(ctx context.Context, tasks []competition.Task, agents []competition.Agent, comp CompetitionConfig, cfg config.GAConfig, opts Options) (*Result, error) {
	o, err := New(tasks, agents, comp, cfg, opts)
	if err != nil {
		return &Result{Success: false, Reason: reasonFor(err)}, err
	}

	return o.Run(ctx)
}

// derivePopulationSize returns the configured population size, or one scaled
// to the problem (roughly 3 * tasks * agents, clamped to [80, 200])
func (o *Optimizer) derivePopulationSize() int {
	if o.cfg.PopulationSize > 0 {
		return o.cfg.PopulationSize
	}

	size := 3 * o.numTasks * o.numAgents

	return min(max(size, 80), 200)
}

// deriveMaxGenerations pace-scales the generation budget with population
// size: larger populations get fewer generations
func (o *Optimizer) deriveMaxGenerations() int {
	if o.cfg.MaxGenerations > 0 {
		return o.cfg.MaxGenerations
	}

	gens := 15000 / max(o.popSize, 1)

	return min(max(gens, 100), 150)
}

// buildPairCache precomputes the scoring kernel over every (task, agent)
// pair so the evaluation hot path is table lookups only
func (o *Optimizer) buildPairCache() {
	o.compat = make([][]float64, o.numTasks)
	o.succ = make([][]float64, o.numTasks)
	o.estTime = make([][]float64, o.numTasks)
	o.expScore = make([][]float64, o.numTasks)

	for i := range o.numTasks {
		o.compat[i] = make([]float64, o.numAgents)
		o.succ[i] = make([]float64, o.numAgents)
		o.estTime[i] = make([]float64, o.numAgents)
		o.expScore[i] = make([]float64, o.numAgents)

		task := &o.tasks[i]

		for j := range o.numAgents {
			agent := &o.agents[j]

			o.compat[i][j] = competition.Compatibility(task, agent)
			o.succ[i][j] = competition.SuccessProbability(task, agent)
			o.estTime[i][j] = competition.EstimateTime(task, agent)
			o.expScore[i][j] = competition.ExpectedScore(task, agent)
		}
	}

	o.maxScore = 0
	for i := range o.tasks {
		o.maxScore += o.tasks[i].TotalPoints()
	}
}

// resolveWeights settles the fitness weights for this run: config defaults,
// then the competition override, then the bounded adaptive nudge
func (o *Optimizer) resolveWeights() {
	w := Weights{
		Score:         o.cfg.ScoreWeight,
		Compatibility: o.cfg.CompatibilityWeight,
		Quantity:      o.cfg.QuantityWeight,
		Time:          o.cfg.TimeWeight,
	}

	if o.comp.Weights != nil {
		w = *o.comp.Weights
	}

	if o.cfg.AdaptiveWeights {
		w = o.adaptWeights(w)
	}

	// Re-normalize so fitness stays comparable across runs
	sum := w.Score + w.Compatibility + w.Quantity + w.Time
	if sum <= 0 {
		w = Weights{Score: 0.4, Compatibility: 0.3, Quantity: 0.2, Time: 0.1}
		sum = 1
	}

	o.weights = Weights{
		Score:         w.Score / sum,
		Compatibility: w.Compatibility / sum,
		Quantity:      w.Quantity / sum,
		Time:          w.Time / sum,
	}
}

// adaptWeights nudges the weights (at most 20% per term) from data
// characteristics: difficulty diversity favors the score term, a wide
// experience spread favors the compatibility term
func (o *Optimizer) adaptWeights(w Weights) Weights {
	diversity := o.difficultyDiversity()
	spread := o.experienceSpread()

	scoreFactor := boundedFactor(1 + 0.4*(diversity-0.5))
	compatFactor := boundedFactor(1 + 0.8*(spread-0.25))

	w.Score *= scoreFactor
	w.Compatibility *= compatFactor

	return w
}

// difficultyDiversity is the fraction of the five difficulty levels present
func (o *Optimizer) difficultyDiversity() float64 {
	levels := make(map[competition.Difficulty]struct{}, 5)
	for i := range o.tasks {
		levels[o.tasks[i].Difficulty] = struct{}{}
	}

	return float64(len(levels)) / 5.0
}

// experienceSpread is the standard deviation of agent experience scores
func (o *Optimizer) experienceSpread() float64 {
	if o.numAgents < 2 {
		return 0
	}

	mean := 0.0
	for i := range o.agents {
		mean += o.agents[i].ExperienceScore()
	}

	mean /= float64(o.numAgents)

	variance := 0.0
	for i := range o.agents {
		d := o.agents[i].ExperienceScore() - mean
		variance += d * d
	}

	return math.Sqrt(variance / float64(o.numAgents))
}

// boundedFactor clamps a weight nudge factor into [0.8, 1.2]
func boundedFactor(f float64) float64 {
	if f < 0.8 {
		return 0.8
	}

	if f > 1.2 {
		return 1.2
	}

	return f
}

// PopulationSize returns the resolved population size for this run
func (o *Optimizer) PopulationSize() int {
	return o.popSize
}

// MaxGenerations returns the resolved generation budget for this run
func (o *Optimizer) MaxGenerations() int {
	return o.maxGenerations
}
