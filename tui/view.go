// ABOUTME: Rendering and display functions for the TUI
// ABOUTME: Implements the Bubble Tea View() function and all render helpers

package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"coderush-optimizer/optimizer"
)

const (
	paramPanelWidth = 36
	statusBarHeight = 1
	helpHeight      = 1
)

var (
	titleStyle         = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	paramStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	selectedParamStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	statusStyle        = lipgloss.NewStyle().Background(lipgloss.Color("236")).Foreground(lipgloss.Color("252"))
	helpStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	sparklineStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("114"))
	planHeaderStyle    = lipgloss.NewStyle().Bold(true).Underline(true)
)

var sparkBlocks = []rune("▁▂▃▄▅▆▇█")

// paramPanelHeight is the vertical space the left panel occupies
func paramPanelHeight(paramCount int) int {
	return paramCount + statusBarHeight + helpHeight + 4
}

// View renders the TUI
func (m model) View() string {
	if m.quitting {
		return "Stopping optimization and exiting...\n"
	}

	if !m.ready {
		return "Starting..."
	}

	leftPanel := m.renderParameters()
	rightPanel := m.renderProgress()

	panelHeight := max(6, m.height-(statusBarHeight+helpHeight+1))

	leftStyle := lipgloss.NewStyle().Width(paramPanelWidth).Height(panelHeight).Padding(0, 1)
	rightStyle := lipgloss.NewStyle().Width(max(40, m.width-paramPanelWidth-2)).Height(panelHeight).Padding(0, 1)

	combined := lipgloss.JoinHorizontal(
		lipgloss.Top,
		leftStyle.Render(leftPanel),
		rightStyle.Render(rightPanel),
	)

	return combined + "\n" + m.renderStatus() + "\n" + m.renderHelp()
}

// renderParameters renders the parameter control panel
func (m model) renderParameters() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("Algorithm parameters") + "\n\n")

	for i, param := range m.params.All() {
		var value string

		switch {
		case param.IsInt && param.IntValue != nil:
			value = strconv.Itoa(*param.IntValue)
			if *param.IntValue == 0 {
				value = "auto"
			}
		case !param.IsInt && param.Value != nil:
			value = fmt.Sprintf("%.2f", *param.Value)
		default:
			value = "N/A"
		}

		prefix := "  "
		if i == m.params.Selected() {
			prefix = "► "
		}

		line := fmt.Sprintf("%s%-22s %6s", prefix, param.Name, value)

		if i == m.params.Selected() {
			s.WriteString(selectedParamStyle.Render(line) + "\n")
		} else {
			s.WriteString(paramStyle.Render(line) + "\n")
		}
	}

	return s.String()
}

// renderProgress renders the convergence sparkline and the plan viewport
func (m model) renderProgress() string {
	var s strings.Builder

	title := m.opts.Title
	if title == "" {
		title = "Optimization"
	}

	s.WriteString(titleStyle.Render(title) + "\n\n")

	if len(m.trace) > 0 {
		width := max(20, m.viewport.Width-4)
		s.WriteString(sparklineStyle.Render(renderSparkline(bestSeries(m.trace), width)) + "\n\n")
	}

	s.WriteString(m.viewport.View())

	return s.String()
}

// refreshViewport rebuilds the plan list shown in the viewport
func (m *model) refreshViewport() {
	if !m.ready {
		return
	}

	if m.result == nil {
		m.viewport.SetContent("Waiting for the first completed run...")

		return
	}

	var s strings.Builder

	for _, plan := range m.result.Plans {
		s.WriteString(planHeaderStyle.Render(fmt.Sprintf("Plan %d — %s — fitness %.4f", plan.Rank, plan.Strategy, plan.Fitness)) + "\n")

		for _, a := range plan.Assignments {
			s.WriteString(fmt.Sprintf("  %-28s → %-20s compat %.2f, %.0f min, %.0f pts\n",
				truncate(a.TaskName, 28),
				truncate(a.AgentName, 20),
				a.Compatibility,
				a.EstimatedTime,
				a.ExpectedScore,
			))
		}

		s.WriteString(fmt.Sprintf("  score %.1f | parallel %.1f min | %d agents\n\n",
			plan.Stats.TotalExpectedScore,
			plan.Stats.ParallelTime,
			plan.Stats.AgentsUsed,
		))
	}

	stats := m.result.Stats
	s.WriteString(fmt.Sprintf("%d generations, %d unique fitness values, %s\n",
		stats.GenerationsExecuted, stats.UniqueFitnessCount, stats.Convergence))

	m.viewport.SetContent(s.String())
}

// renderStatus renders the status bar
func (m model) renderStatus() string {
	if m.statusMsg != "" {
		return statusStyle.Width(m.width).Render(" " + m.statusMsg)
	}

	state := "done"
	if m.running {
		state = "running"
	}

	status := fmt.Sprintf(" Epoch %d [%s] | Gen %d | Best %.4f | Mean %.4f | Valid %d",
		m.epoch, state, m.generation, m.bestFitness, m.meanFitness, m.valid)

	return statusStyle.Width(m.width).Render(status)
}

// renderHelp renders the help line
func (m model) renderHelp() string {
	return helpStyle.Render(" ↑/↓: select parameter | ←/→: adjust (restarts run) | r: restart | s: save config | q: quit")
}

// bestSeries extracts the best fitness values from a trace
func bestSeries(trace []optimizer.TracePoint) []float64 {
	out := make([]float64, len(trace))
	for i, p := range trace {
		out[i] = p.Best
	}

	return out
}

// renderSparkline compresses a series into a fixed-width block-character line
func renderSparkline(series []float64, width int) string {
	if len(series) == 0 || width <= 0 {
		return ""
	}

	// Downsample to the target width by bucketing
	buckets := make([]float64, min(width, len(series)))
	per := float64(len(series)) / float64(len(buckets))

	for i := range buckets {
		start := int(float64(i) * per)
		end := min(len(series), int(float64(i+1)*per)+1)

		sum := 0.0
		for _, v := range series[start:end] {
			sum += v
		}

		buckets[i] = sum / float64(end-start)
	}

	lo, hi := buckets[0], buckets[0]
	for _, v := range buckets {
		lo = min(lo, v)
		hi = max(hi, v)
	}

	var s strings.Builder

	for _, v := range buckets {
		idx := 0
		if hi > lo {
			idx = int((v - lo) / (hi - lo) * float64(len(sparkBlocks)-1))
		}

		s.WriteRune(sparkBlocks[idx])
	}

	return s.String()
}

// truncate shortens a string to maxLen characters, adding "..." if needed
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}

	if maxLen <= 3 {
		return s[:maxLen]
	}

	return s[:maxLen-3] + "..."
}
