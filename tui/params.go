// ABOUTME: Parameter manager for GA configuration tuning
// ABOUTME: Handles parameter value adjustments with boundary checking

package tui

import "coderush-optimizer/config"

// Parameter describes one tunable value shown in the parameter panel
type Parameter struct {
	Name     string
	Value    *float64
	IntValue *int
	IsInt    bool
	Min      float64
	Max      float64
	Step     float64
}

// ParamManager manages GA parameter adjustments
type ParamManager struct {
	params        []Parameter
	selectedIndex int
}

// NewParamManager builds the parameter list over a config instance. The
// pointers alias cfg's fields, so adjustments mutate it directly.
func NewParamManager(cfg *config.GAConfig) *ParamManager {
	return &ParamManager{
		params: []Parameter{
			{Name: "Score weight", Value: &cfg.ScoreWeight, Min: 0, Max: 1, Step: 0.05},
			{Name: "Compatibility weight", Value: &cfg.CompatibilityWeight, Min: 0, Max: 1, Step: 0.05},
			{Name: "Quantity weight", Value: &cfg.QuantityWeight, Min: 0, Max: 1, Step: 0.05},
			{Name: "Time weight", Value: &cfg.TimeWeight, Min: 0, Max: 1, Step: 0.05},
			{Name: "Crossover rate", Value: &cfg.CrossoverRate, Min: 0.5, Max: 0.9, Step: 0.05},
			{Name: "Mutation rate", Value: &cfg.MutationRate, Min: 0.01, Max: 0.5, Step: 0.01},
			{Name: "Elite percentage", Value: &cfg.ElitePercentage, Min: 0.02, Max: 0.2, Step: 0.01},
			{Name: "Population size", IntValue: &cfg.PopulationSize, IsInt: true, Min: 0, Max: 500, Step: 20},
			{Name: "Max generations", IntValue: &cfg.MaxGenerations, IsInt: true, Min: 0, Max: 1000, Step: 25},
			{Name: "Stall limit", IntValue: &cfg.StallLimit, IsInt: true, Min: 5, Max: 200, Step: 5},
		},
	}
}

// Selected returns the index of the currently selected parameter
func (pm *ParamManager) Selected() int {
	return pm.selectedIndex
}

// SelectNext moves selection to the next parameter
func (pm *ParamManager) SelectNext() {
	if pm.selectedIndex < len(pm.params)-1 {
		pm.selectedIndex++
	}
}

// SelectPrevious moves selection to the previous parameter
func (pm *ParamManager) SelectPrevious() {
	if pm.selectedIndex > 0 {
		pm.selectedIndex--
	}
}

// Increase increases the selected parameter value
// Returns true if the value was changed
func (pm *ParamManager) Increase() bool {
	param := pm.GetSelected()
	if param == nil {
		return false
	}

	if param.IsInt {
		newVal := *param.IntValue + int(param.Step)
		if float64(newVal) <= param.Max {
			*param.IntValue = newVal

			return true
		}

		return false
	}

	newVal := *param.Value + param.Step
	if newVal <= param.Max+1e-9 {
		*param.Value = newVal

		return true
	}

	return false
}

// Decrease decreases the selected parameter value
// Returns true if the value was changed
func (pm *ParamManager) Decrease() bool {
	param := pm.GetSelected()
	if param == nil {
		return false
	}

	if param.IsInt {
		newVal := *param.IntValue - int(param.Step)
		if float64(newVal) >= param.Min {
			*param.IntValue = newVal

			return true
		}

		return false
	}

	newVal := *param.Value - param.Step

	// Clamp to min if we're very close (handles floating point precision)
	if newVal < param.Min && newVal >= param.Min-1e-4 {
		newVal = param.Min
	}

	if newVal >= param.Min {
		*param.Value = newVal

		return true
	}

	return false
}

// GetSelected returns the currently selected parameter
func (pm *ParamManager) GetSelected() *Parameter {
	if pm.selectedIndex < 0 || pm.selectedIndex >= len(pm.params) {
		return nil
	}

	return &pm.params[pm.selectedIndex]
}

// Len returns the number of parameters
func (pm *ParamManager) Len() int {
	return len(pm.params)
}

// All returns all parameters (for rendering)
func (pm *ParamManager) All() []Parameter {
	return pm.params
}
