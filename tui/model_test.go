// ABOUTME: Tests for the TUI model message handling
// ABOUTME: Exercises epoch filtering, updates and sparkline rendering

package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"coderush-optimizer/config"
	"coderush-optimizer/optimizer"
)

func testModel() model {
	shared := config.NewSharedConfig(config.DefaultConfig())

	runner := func(ctx context.Context, cfg config.GAConfig, updates chan<- Update, epoch int) {}

	return newModel(Options{Title: "test"}, shared, runner, nil)
}

func TestModelStartsEpochOnStartMsg(t *testing.T) {
	m := testModel()

	next, _ := m.Update(startRunMsg{})

	nm, ok := next.(model)
	if !ok {
		t.Fatal("Update returned a different model type")
	}

	if nm.epoch != 1 {
		t.Errorf("Epoch after start: got %d, want 1", nm.epoch)
	}

	if !nm.running {
		t.Error("Model should be running after start")
	}
}

func TestModelIgnoresStaleEpochUpdates(t *testing.T) {
	m := testModel()

	next, _ := m.Update(startRunMsg{})
	nm := next.(model)

	stale := updateMsg(Update{Epoch: 0, Generation: 99, BestFitness: 0.9})

	next, _ = nm.Update(stale)
	nm = next.(model)

	if nm.generation == 99 {
		t.Error("Stale epoch update was applied")
	}

	fresh := updateMsg(Update{Epoch: 1, Generation: 10, BestFitness: 0.5, Valid: 40})

	next, _ = nm.Update(fresh)
	nm = next.(model)

	if nm.generation != 10 || nm.bestFitness != 0.5 {
		t.Errorf("Fresh update not applied: gen=%d best=%.2f", nm.generation, nm.bestFitness)
	}
}

func TestModelStoresResult(t *testing.T) {
	m := testModel()

	next, _ := m.Update(startRunMsg{})
	nm := next.(model)

	next, _ = nm.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	nm = next.(model)

	result := &optimizer.Result{
		Success: true,
		Trace:   []optimizer.TracePoint{{Generation: 0, Best: 0.5, Mean: 0.4, Worst: 0.3}},
	}

	next, _ = nm.Update(updateMsg(Update{Epoch: 1, Result: result}))
	nm = next.(model)

	if nm.running {
		t.Error("Model should stop running once the result arrives")
	}

	if nm.result != result || len(nm.trace) != 1 {
		t.Error("Result not stored on the model")
	}
}

func TestModelQuitKey(t *testing.T) {
	m := testModel()

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	nm := next.(model)

	if !nm.quitting {
		t.Error("Quit key should set quitting")
	}

	if cmd == nil {
		t.Error("Quit should return the tea.Quit command")
	}
}

func TestRenderSparkline(t *testing.T) {
	line := renderSparkline([]float64{0, 0.25, 0.5, 0.75, 1}, 5)

	runes := []rune(line)
	if len(runes) != 5 {
		t.Fatalf("Sparkline length %d, want 5", len(runes))
	}

	if runes[0] != '▁' || runes[4] != '█' {
		t.Errorf("Sparkline endpoints wrong: %q", line)
	}

	if renderSparkline(nil, 10) != "" {
		t.Error("Empty series should render empty")
	}
}

func TestRenderViewDoesNotPanic(t *testing.T) {
	m := testModel()

	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	nm := next.(model)

	view := nm.View()
	if !strings.Contains(view, "Algorithm parameters") {
		t.Error("View missing the parameter panel")
	}
}
