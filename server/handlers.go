// ABOUTME: HTTP handlers: optimization endpoint, metrics retrieval and reference data
// ABOUTME: Serializes loose JSON requests into the core's plain data shapes

package server

import (
	"encoding/json"
	"net/http"
	"slices"
	"strconv"

	"github.com/go-chi/chi/v5"

	"coderush-optimizer/competition"
	"coderush-optimizer/config"
	"coderush-optimizer/optimizer"
)

// taskRequest mirrors the JSON task shape accepted by the API
type taskRequest struct {
	ID             int                `json:"id"`
	Name           string             `json:"name"`
	Category       string             `json:"category"`
	Difficulty     string             `json:"difficulty"`
	BasePoints     int                `json:"base_points"`
	Multiplier     float64            `json:"multiplier"`
	RequiredSkills map[string]float64 `json:"required_skills"`
	TimeLimit      float64            `json:"time_limit"`
	SolveRate      float64            `json:"solve_rate"`
}

// agentRequest mirrors the JSON agent shape accepted by the API
type agentRequest struct {
	ID              int                `json:"id"`
	Name            string             `json:"name"`
	Skills          map[string]float64 `json:"skills"`
	SuccessRate     float64            `json:"success_rate"`
	ExperienceYears float64            `json:"experience_years"`
	Competitions    int                `json:"competitions"`
	ProblemsSolved  int                `json:"problems_solved"`
	Available       *bool              `json:"available"`
	Energy          float64            `json:"energy"`
	Concentration   float64            `json:"concentration"`
	Preferred       []string           `json:"preferred_categories"`
	Avoided         []string           `json:"avoided_categories"`
}

// optimizeRequest is the full optimization request body
type optimizeRequest struct {
	Tasks  []taskRequest  `json:"tasks"`
	Agents []agentRequest `json:"agents"`
	Config struct {
		TotalTime float64 `json:"total_time"`
		TeamSize  int     `json:"team_size"`
		Weights   *struct {
			Score         float64 `json:"score"`
			Compatibility float64 `json:"compatibility"`
			Quantity      float64 `json:"quantity"`
			Time          float64 `json:"time"`
		} `json:"weights"`
	} `json:"config"`
	Seed uint64 `json:"seed"`

	// PreselectTeam trims the agent pool to the team_size strongest agents
	// (history + 0.3 * experience) before the search. This is an embedder
	// pre-filter, not part of the core.
	PreselectTeam bool `json:"preselect_team"`
}

// Handler carries the shared state behind the HTTP routes
type Handler struct {
	store   *Store
	metrics *MetricsCache
	cfg     config.GAConfig
}

// NewHandler builds the handler set over a store and GA config
func NewHandler(store *Store, cfg config.GAConfig) *Handler {
	return &Handler{
		store:   store,
		metrics: NewMetricsCache(),
		cfg:     cfg,
	}
}

// Optimize handles POST /optimize
func (h *Handler) Optimize(w http.ResponseWriter, r *http.Request) {
	var req optimizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())

		return
	}

	tasks := make([]competition.Task, 0, len(req.Tasks))
	for _, td := range req.Tasks {
		tasks = append(tasks, competition.Task{
			ID:             td.ID,
			Name:           td.Name,
			Category:       td.Category,
			Difficulty:     competition.ParseDifficulty(td.Difficulty),
			BasePoints:     td.BasePoints,
			Multiplier:     td.Multiplier,
			RequiredSkills: td.RequiredSkills,
			TimeLimit:      td.TimeLimit,
			SolveRate:      td.SolveRate,
		})
	}

	agents := make([]competition.Agent, 0, len(req.Agents))
	for _, ad := range req.Agents {
		agents = append(agents, competition.Agent{
			ID:                  ad.ID,
			Name:                ad.Name,
			Skills:              ad.Skills,
			SuccessRate:         ad.SuccessRate,
			ExperienceYears:     ad.ExperienceYears,
			Competitions:        ad.Competitions,
			ProblemsSolved:      ad.ProblemsSolved,
			Available:           ad.Available == nil || *ad.Available,
			Energy:              ad.Energy,
			Concentration:       ad.Concentration,
			PreferredCategories: ad.Preferred,
			AvoidedCategories:   ad.Avoided,
		})
	}

	if req.PreselectTeam && req.Config.TeamSize > 0 && req.Config.TeamSize < len(agents) {
		agents = preselectTeam(agents, req.Config.TeamSize)
	}

	comp := optimizer.CompetitionConfig{
		TotalTime: req.Config.TotalTime,
		TeamSize:  req.Config.TeamSize,
	}

	if req.Config.Weights != nil {
		comp.Weights = &optimizer.Weights{
			Score:         req.Config.Weights.Score,
			Compatibility: req.Config.Weights.Compatibility,
			Quantity:      req.Config.Weights.Quantity,
			Time:          req.Config.Weights.Time,
		}
	}

	result, err := optimizer.Optimize(r.Context(), tasks, agents, comp, h.cfg, optimizer.Options{Seed: req.Seed})
	if err != nil {
		status := statusForReason(result.Reason)
		writeJSON(w, status, result)

		return
	}

	h.metrics.Replace(result)

	writeJSON(w, http.StatusOK, result)
}

// preselectTeam keeps the strongest agents by history plus weighted
// experience, mirroring the historical endpoint behavior
func preselectTeam(agents []competition.Agent, teamSize int) []competition.Agent {
	ranked := slices.Clone(agents)

	slices.SortStableFunc(ranked, func(a, b competition.Agent) int {
		sa := a.SuccessRate + 0.3*a.ExperienceYears
		sb := b.SuccessRate + 0.3*b.ExperienceYears

		switch {
		case sa > sb:
			return -1
		case sa < sb:
			return 1
		}

		return a.ID - b.ID
	})

	return ranked[:teamSize]
}

// SolutionMetrics handles GET /solutions/{rank}/metrics
func (h *Handler) SolutionMetrics(w http.ResponseWriter, r *http.Request) {
	rank, err := strconv.Atoi(chi.URLParam(r, "rank"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "rank must be an integer")

		return
	}

	metrics, ok := h.metrics.Get(rank)
	if !ok {
		writeError(w, http.StatusNotFound, "no metrics for that solution; run an optimization first")

		return
	}

	writeJSON(w, http.StatusOK, metrics)
}

// ListTasks handles GET /tasks
func (h *Handler) ListTasks(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.store.Tasks())
}

// ListAgents handles GET /agents
func (h *Handler) ListAgents(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.store.Agents())
}

// OptimizeStored handles POST /optimize/stored: runs over the seeded dataset
func (h *Handler) OptimizeStored(w http.ResponseWriter, r *http.Request) {
	tasks := h.store.Tasks()
	agents := h.store.Agents()
	settings := h.store.Settings()

	var body struct {
		Seed uint64 `json:"seed"`
	}

	// The body is optional; ignore decode errors on empty input
	_ = json.NewDecoder(r.Body).Decode(&body)

	comp := optimizer.CompetitionConfig{TotalTime: settings.TotalTime, TeamSize: settings.TeamSize}

	result, err := optimizer.Optimize(r.Context(), tasks, agents, comp, h.cfg, optimizer.Options{Seed: body.Seed})
	if err != nil {
		writeJSON(w, statusForReason(result.Reason), result)

		return
	}

	h.metrics.Replace(result)

	writeJSON(w, http.StatusOK, result)
}

// statusForReason maps reason codes onto HTTP statuses
func statusForReason(reason string) int {
	switch reason {
	case optimizer.ReasonEmptyInput, optimizer.ReasonTeamTooLarge, optimizer.ReasonInvalidConfig:
		return http.StatusBadRequest
	case optimizer.ReasonNoFeasibleStart:
		return http.StatusUnprocessableEntity
	case optimizer.ReasonAborted:
		return http.StatusRequestTimeout
	}

	return http.StatusInternalServerError
}

// writeJSON writes a JSON response with the given status
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error envelope
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
