// ABOUTME: Configuration management for genetic algorithm parameters
// ABOUTME: Handles loading/saving TOML config files with fallback to defaults

package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// GAConfig holds all tunable genetic algorithm parameters
type GAConfig struct {
	// Fitness component weights, should sum to 1
	ScoreWeight         float64 `toml:"score_weight"`
	CompatibilityWeight float64 `toml:"compatibility_weight"`
	QuantityWeight      float64 `toml:"quantity_weight"`
	TimeWeight          float64 `toml:"time_weight"`

	// When true the weights are nudged (at most 20%) from data
	// characteristics before a run and re-normalized
	AdaptiveWeights bool `toml:"adaptive_weights"`

	// Population parameters. Zero means derive from problem size.
	PopulationSize     int     `toml:"population_size"`
	MaxGenerations     int     `toml:"max_generations"`
	ElitePercentage    float64 `toml:"elite_percentage"`
	TournamentFraction float64 `toml:"tournament_fraction"`

	// Operator rates
	CrossoverRate float64 `toml:"crossover_rate"`
	MutationRate  float64 `toml:"mutation_rate"`

	// Termination
	StallLimit    int     `toml:"stall_limit"`
	TargetFitness float64 `toml:"target_fitness"`

	// Reporting
	TraceInterval int `toml:"trace_interval"`
	TopK          int `toml:"top_k"`
}

// DefaultConfig returns the default GA configuration
func DefaultConfig() GAConfig {
	return GAConfig{
		ScoreWeight:         0.4,
		CompatibilityWeight: 0.3,
		QuantityWeight:      0.2,
		TimeWeight:          0.1,
		AdaptiveWeights:     false,
		PopulationSize:      0, // derived: 3*tasks*agents clamped to [80, 200]
		MaxGenerations:      0, // derived: pace-scaled with population size
		ElitePercentage:     0.08,
		TournamentFraction:  0.05,
		CrossoverRate:       0.85,
		MutationRate:        0.15,
		StallLimit:          30,
		TargetFitness:       0.98,
		TraceInterval:       20,
		TopK:                3,
	}
}

// LoadConfig loads configuration from a TOML file
// If the file doesn't exist or fails to load, returns default config
func LoadConfig(path string) (GAConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}

		return DefaultConfig(), fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, &config); err != nil {
		return DefaultConfig(), fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveConfig saves configuration to a TOML file
func SaveConfig(path string, config GAConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			fmt.Printf("Warning: failed to close config file: %v\n", err)
		}
	}()

	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(config); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// GetConfigPath returns the default config file path
// First tries current directory, then falls back to ~/.config/coderush-optimizer/config.toml
func GetConfigPath() string {
	if _, err := os.Stat("./coderush-optimizer.toml"); err == nil {
		return "./coderush-optimizer.toml"
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "./coderush-optimizer.toml"
	}

	return filepath.Join(home, ".config", "coderush-optimizer", "config.toml")
}
