// ABOUTME: CLI mode implementation for non-interactive optimization runs
// ABOUTME: Handles progress display, result tables and signal handling

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"coderush-optimizer/optimizer"
)

const (
	spinnerUpdateInterval     = 500 * time.Millisecond
	fitnessImprovementEpsilon = 1e-10
)

// isTTY checks if the given file is a terminal
func isTTY(f *os.File) bool {
	stat, err := f.Stat()
	if err != nil {
		return false
	}

	return (stat.Mode() & os.ModeCharDevice) != 0
}

// RunCLI executes CLI mode optimization
func RunCLI(opts RunOptions) error {
	if opts.DebugLog {
		if err := SetupDebugLog("coderush-optimizer-debug.log"); err != nil {
			return err
		}
	}

	octx, err := InitializeDataset(opts.DatasetPath, !opts.JSONOutput)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-stop
		cancel()
	}()

	if !opts.JSONOutput {
		fmt.Printf("\nOptimizing assignments for %d tasks and %d agents (team of %d, %.0f minute budget)\n",
			len(octx.Dataset.Tasks), len(octx.Dataset.Agents), octx.Dataset.Settings.TeamSize, octx.Dataset.Settings.TotalTime)
		fmt.Println("Press Ctrl+C to stop early and keep the best plans found so far.")
		fmt.Println()
	}

	result, runErr := cliOptimize(ctx, octx, opts)
	if result == nil {
		return runErr
	}

	if opts.JSONOutput {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")

		if err := encoder.Encode(result); err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}

		return nil
	}

	printResult(octx, result)

	if runErr != nil {
		fmt.Printf("\nRun ended early: %v\n", runErr)
	}

	return nil
}

// cliOptimize wraps the optimizer with CLI-specific progress display
func cliOptimize(ctx context.Context, octx *OptimizationContext, opts RunOptions) (*optimizer.Result, error) {
	startTime := time.Now()

	updates := make(chan optimizer.Update, 16)

	previousBestFitness := 0.0
	minPrecision := 2 // raised as improvements shrink, never lowered
	isTerminal := isTTY(os.Stdout) && !opts.JSONOutput

	spinnerFrames := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	spinnerIdx := 0

	var statusTicker *time.Ticker
	if isTerminal {
		statusTicker = time.NewTicker(spinnerUpdateInterval)
		defer statusTicker.Stop()
	}

	printStatus := func(gen int) {
		if !isTerminal {
			return
		}

		elapsed := time.Since(startTime).Round(time.Second)
		fmt.Printf("\r%6s Gen %d %s     ", elapsed, gen, spinnerFrames[spinnerIdx])
		spinnerIdx = (spinnerIdx + 1) % len(spinnerFrames)
	}

	type outcome struct {
		result *optimizer.Result
		err    error
	}

	done := make(chan outcome, 1)

	go func() {
		result, err := optimizer.Optimize(ctx, octx.Dataset.Tasks, octx.Dataset.Agents, competitionConfig(octx.Dataset), octx.Config, optimizer.Options{
			Seed:    opts.Seed,
			Updates: updates,
		})
		done <- outcome{result: result, err: err}
	}()

	var currentGen int

	for {
		select {
		case update := <-updates:
			currentGen = update.Generation

			if hasFitnessImproved(update.BestFitness, previousBestFitness, fitnessImprovementEpsilon) && !opts.JSONOutput {
				if isTerminal {
					fmt.Print("\r\033[K")
				}

				var fitnessStr string
				fitnessStr, minPrecision = FormatWithMonotonicPrecision(previousBestFitness, update.BestFitness, minPrecision)

				fmt.Printf("Gen %4d - fitness: %s (%d valid)\n", update.Generation, fitnessStr, update.Valid)

				previousBestFitness = update.BestFitness
			}

		case <-tickerChan(statusTicker):
			printStatus(currentGen)

		case out := <-done:
			if isTerminal {
				fmt.Print("\r\033[K")
			}

			if !opts.JSONOutput {
				fmt.Printf("\nCompleted in %v\n", time.Since(startTime).Round(time.Millisecond))
			}

			return out.result, out.err
		}
	}
}

// tickerChan returns the ticker channel, or a never-firing channel when the
// ticker is disabled (non-TTY contexts)
func tickerChan(t *time.Ticker) <-chan time.Time {
	if t != nil {
		return t.C
	}

	return make(<-chan time.Time)
}

// printResult renders the ranked plans and final statistics as tables
func printResult(octx *OptimizationContext, result *optimizer.Result) {
	if len(result.Plans) == 0 {
		fmt.Println("\nNo valid plans found.")

		return
	}

	for _, plan := range result.Plans {
		fmt.Printf("\nPlan %d (%s, fitness %.4f)\n", plan.Rank, plan.Strategy, plan.Fitness)

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)

		if _, err := fmt.Fprintln(w, "Task\tAgent\tPrio\tCompat\tEst. min\tExp. score"); err != nil {
			log.Printf("Warning: failed to write header: %v", err)
		}

		for _, a := range plan.Assignments {
			if _, err := fmt.Fprintf(w, "%s\t%s\t%d\t%.2f\t%.1f\t%.1f\n",
				truncate(a.TaskName, 30),
				truncate(a.AgentName, 20),
				a.Priority,
				a.Compatibility,
				a.EstimatedTime,
				a.ExpectedScore,
			); err != nil {
				log.Printf("Warning: failed to write assignment: %v", err)
			}
		}

		if err := w.Flush(); err != nil {
			log.Printf("Warning: failed to flush output: %v", err)
		}

		fmt.Printf("  expected score %.1f | parallel time %.1f/%.0f min | mean compat %.2f | %d agents\n",
			plan.Stats.TotalExpectedScore,
			plan.Stats.ParallelTime,
			octx.Dataset.Settings.TotalTime,
			plan.Stats.MeanCompatibility,
			plan.Stats.AgentsUsed,
		)
	}

	stats := result.Stats
	fmt.Printf("\n%d generations | best %.4f | mean %.4f | %d valid | %d unique fitness | %s\n",
		stats.GenerationsExecuted,
		stats.BestFitness,
		stats.MeanFitness,
		stats.ValidIndividuals,
		stats.UniqueFitnessCount,
		stats.Convergence,
	)
}
