// ABOUTME: In-memory reference-data store and the per-solution metrics cache
// ABOUTME: The metrics cache is embedder-owned state, deliberately outside the core

package server

import (
	"sync"

	"coderush-optimizer/competition"
	"coderush-optimizer/optimizer"
)

// Store holds the reference dataset served by the read endpoints. It can be
// seeded from a YAML dataset file at startup.
type Store struct {
	mu      sync.RWMutex
	dataset competition.Dataset
}

// NewStore returns an empty store
func NewStore() *Store {
	return &Store{}
}

// Seed replaces the stored dataset
func (s *Store) Seed(dataset competition.Dataset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dataset = dataset
}

// Tasks returns a copy of the stored tasks
func (s *Store) Tasks() []competition.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]competition.Task, len(s.dataset.Tasks))
	copy(out, s.dataset.Tasks)

	return out
}

// Agents returns a copy of the stored agents
func (s *Store) Agents() []competition.Agent {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]competition.Agent, len(s.dataset.Agents))
	copy(out, s.dataset.Agents)

	return out
}

// Settings returns the stored competition settings
func (s *Store) Settings() competition.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.dataset.Settings
}

// SolutionMetrics is what the chart endpoint serves per returned plan
type SolutionMetrics struct {
	Plan  optimizer.Plan         `json:"plan"`
	Trace []optimizer.TracePoint `json:"trace"`
	Stats optimizer.FinalStats   `json:"stats"`
}

// MetricsCache retains the metrics of the most recent optimization, keyed by
// plan rank. The core never owns this: keyed retrieval across requests is an
// embedder concern.
type MetricsCache struct {
	mu      sync.RWMutex
	entries map[int]SolutionMetrics
}

// NewMetricsCache returns an empty cache
func NewMetricsCache() *MetricsCache {
	return &MetricsCache{entries: make(map[int]SolutionMetrics)}
}

// Replace drops all previous entries and stores the metrics of a fresh run
func (c *MetricsCache) Replace(result *optimizer.Result) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[int]SolutionMetrics, len(result.Plans))

	for _, plan := range result.Plans {
		c.entries[plan.Rank] = SolutionMetrics{
			Plan:  plan,
			Trace: result.Trace,
			Stats: result.Stats,
		}
	}
}

// Get returns the metrics for one solution rank
func (c *MetricsCache) Get(rank int) (SolutionMetrics, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	m, ok := c.entries[rank]

	return m, ok
}

// Ranks lists the ranks currently cached
func (c *MetricsCache) Ranks() []int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]int, 0, len(c.entries))
	for rank := range c.entries {
		out = append(out, rank)
	}

	return out
}
