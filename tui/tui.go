// ABOUTME: TUI entry point, options and the runner/update contract
// ABOUTME: Wires the Bubble Tea program, config watching and epoch restarts

package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"

	"coderush-optimizer/config"
	"coderush-optimizer/optimizer"
)

// Update is a progress notification from a running optimization. Result is
// non-nil at most once per epoch, when the run finishes; that final update is
// not delivered when the epoch is cancelled first.
type Update struct {
	Generation  int
	BestFitness float64
	MeanFitness float64
	Valid       int
	Epoch       int
	Result      *optimizer.Result
	Err         error
}

// RunFunc executes one optimization epoch and streams updates. It must
// close nothing: the TUI owns the channel and matches epochs to runs.
type RunFunc func(ctx context.Context, cfg config.GAConfig, updates chan<- Update, epoch int)

// Logger provides debug logging capability
type Logger func(format string, args ...interface{})

// Options contains configuration for running the TUI
type Options struct {
	Title      string
	ConfigPath string
}

// Run starts the interactive TUI and blocks until the user quits
func Run(opts Options, shared *config.SharedConfig, runner RunFunc, logf Logger) error {
	if logf == nil {
		logf = func(string, ...interface{}) {}
	}

	m := newModel(opts, shared, runner, logf)

	p := tea.NewProgram(m, tea.WithAltScreen())

	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("TUI failed: %w", err)
	}

	if fm, ok := final.(model); ok && fm.cancel != nil {
		fm.cancel()
	}

	return nil
}

// watchConfig forwards config file changes into the update loop. Returns a
// cleanup function alongside the notification channel.
func watchConfig(path string, logf Logger) (<-chan config.GAConfig, func(), error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create config watcher: %w", err)
	}

	if err := watcher.Add(path); err != nil {
		// The file may not exist yet; the TUI still works without hot-reload
		_ = watcher.Close()

		return nil, nil, fmt.Errorf("failed to watch config: %w", err)
	}

	out := make(chan config.GAConfig, 1)

	go func() {
		defer close(out)

		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}

				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}

				cfg, err := config.LoadConfig(path)
				if err != nil {
					logf("[TUI] Config reload failed: %v", err)

					continue
				}

				select {
				case out <- cfg:
				default:
				}

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}

				logf("[TUI] Config watcher error: %v", err)
			}
		}
	}()

	return out, func() { _ = watcher.Close() }, nil
}
