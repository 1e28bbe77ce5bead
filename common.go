// ABOUTME: Shared initialization code for all modes (CLI, TUI, server)
// ABOUTME: Provides dataset loading, debug logging and small shared helpers

package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"coderush-optimizer/competition"
	"coderush-optimizer/config"
	"coderush-optimizer/optimizer"
)

// Debug logger - writes to file for debugging
var debugLog *log.Logger

// RunOptions contains command-line options for all modes
type RunOptions struct {
	DatasetPath string
	Seed        uint64
	JSONOutput  bool
	DebugLog    bool
}

// OptimizationContext contains the loaded dataset and associated config
type OptimizationContext struct {
	Dataset      *competition.Dataset
	Config       config.GAConfig
	SharedConfig *config.SharedConfig
}

// InitializeDataset performs full initialization: load dataset, load config
func InitializeDataset(path string, verbose bool) (*OptimizationContext, error) {
	if verbose {
		fmt.Printf("Reading dataset: %s\n", path)
	}

	dataset, err := competition.LoadDataset(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset: %w", err)
	}

	if len(dataset.Tasks) == 0 {
		return nil, errors.New("dataset has no tasks")
	}

	if len(dataset.Agents) == 0 {
		return nil, errors.New("dataset has no agents")
	}

	cfg, _ := config.LoadConfig(config.GetConfigPath())

	return &OptimizationContext{
		Dataset:      dataset,
		Config:       cfg,
		SharedConfig: config.NewSharedConfig(cfg),
	}, nil
}

// competitionConfig maps dataset settings onto the optimizer's config shape
func competitionConfig(dataset *competition.Dataset) optimizer.CompetitionConfig {
	return optimizer.CompetitionConfig{
		TotalTime: dataset.Settings.TotalTime,
		TeamSize:  dataset.Settings.TeamSize,
	}
}

// SetupDebugLog initializes debug logging to the specified file
func SetupDebugLog(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create debug log file: %w", err)
	}

	debugLog = log.New(f, "", log.Ltime|log.Lmicroseconds)

	return nil
}

// debugf logs debug messages to file if debug logger is enabled
func debugf(format string, args ...interface{}) {
	if debugLog != nil {
		debugLog.Printf(format, args...)
	}
}

// truncate truncates a string to maxLen characters, adding "..." if needed
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}

	if maxLen <= 3 {
		return s[:maxLen]
	}

	return s[:maxLen-3] + "..."
}

// hasFitnessImproved returns true if newFitness is significantly better than
// oldFitness (higher is better); the epsilon avoids floating-point noise
func hasFitnessImproved(newFitness, oldFitness, epsilon float64) bool {
	return newFitness > oldFitness+epsilon
}
