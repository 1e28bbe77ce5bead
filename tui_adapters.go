// ABOUTME: Adapters bridging the optimizer's update stream to the TUI contract
// ABOUTME: Runs one optimization per epoch and forwards progress notifications

package main

import (
	"context"

	"coderush-optimizer/config"
	"coderush-optimizer/optimizer"
	"coderush-optimizer/tui"
)

// RunTUI launches the interactive mode over a dataset
func RunTUI(opts RunOptions) error {
	if opts.DebugLog {
		if err := SetupDebugLog("coderush-optimizer-debug.log"); err != nil {
			return err
		}
	}

	octx, err := InitializeDataset(opts.DatasetPath, false)
	if err != nil {
		return err
	}

	runner := func(ctx context.Context, cfg config.GAConfig, updates chan<- tui.Update, epoch int) {
		runEpochForTUI(ctx, octx, cfg, opts.Seed, updates, epoch)
	}

	return tui.Run(tui.Options{
		Title:      "CODERUSH assignment optimizer",
		ConfigPath: config.GetConfigPath(),
	}, octx.SharedConfig, runner, debugf)
}

// runEpochForTUI executes one optimization and converts updates to TUI format
func runEpochForTUI(ctx context.Context, octx *OptimizationContext, cfg config.GAConfig, seed uint64, updates chan<- tui.Update, epoch int) {
	optUpdates := make(chan optimizer.Update, 16)
	done := make(chan struct{})

	go func() {
		defer close(done)

		for u := range optUpdates {
			select {
			case updates <- tui.Update{
				Generation:  u.Generation,
				BestFitness: u.BestFitness,
				MeanFitness: u.MeanFitness,
				Valid:       u.Valid,
				Epoch:       u.Epoch,
			}:
			default:
				// Never block the optimizer on a slow UI
			}
		}
	}()

	result, err := optimizer.Optimize(ctx, octx.Dataset.Tasks, octx.Dataset.Agents, competitionConfig(octx.Dataset), cfg, optimizer.Options{
		Seed:    seed,
		Updates: optUpdates,
		Epoch:   epoch,
	})

	close(optUpdates)
	<-done

	final := tui.Update{Epoch: epoch, Result: result, Err: err}
	if result != nil {
		final.BestFitness = result.Stats.BestFitness
		final.MeanFitness = result.Stats.MeanFitness
		final.Generation = result.Stats.GenerationsExecuted
		final.Valid = result.Stats.ValidIndividuals
	}

	select {
	case updates <- final:
	case <-ctx.Done():
	}
}
