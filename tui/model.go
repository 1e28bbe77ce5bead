// ABOUTME: Bubble Tea model for the interactive optimization view
// ABOUTME: Handles key input, epoch lifecycle and progress message routing

package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"coderush-optimizer/config"
	"coderush-optimizer/optimizer"
)

// keyMap defines the TUI key bindings
type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Left    key.Binding
	Right   key.Binding
	Restart key.Binding
	Save    key.Binding
	Quit    key.Binding
}

var defaultKeyMap = keyMap{
	Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "previous parameter")),
	Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "next parameter")),
	Left:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "decrease")),
	Right:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "increase")),
	Restart: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "restart run")),
	Save:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "save config")),
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// updateMsg wraps an optimization progress update
type updateMsg Update

// startRunMsg asks the update loop to launch the first epoch
type startRunMsg struct{}

// configReloadedMsg carries an externally edited config
type configReloadedMsg config.GAConfig

// model is the Bubble Tea model for the TUI
type model struct {
	opts   Options
	shared *config.SharedConfig
	runner RunFunc
	logf   Logger

	// cfg is heap-allocated and shared across model copies so the
	// parameter manager's pointers stay valid
	cfg    *config.GAConfig
	params *ParamManager
	keys   keyMap

	viewport viewport.Model
	width    int
	height   int
	ready    bool

	epoch   int
	cancel  context.CancelFunc
	updates chan Update

	generation  int
	bestFitness float64
	meanFitness float64
	valid       int
	running     bool
	result      *optimizer.Result
	trace       []optimizer.TracePoint
	statusMsg   string
	quitting    bool

	configWatch <-chan config.GAConfig
	stopWatch   func()
}

// newModel builds the initial TUI model
func newModel(opts Options, shared *config.SharedConfig, runner RunFunc, logf Logger) model {
	if logf == nil {
		logf = func(string, ...interface{}) {}
	}

	cfg := shared.Get()

	m := model{
		opts:    opts,
		shared:  shared,
		runner:  runner,
		logf:    logf,
		cfg:     &cfg,
		keys:    defaultKeyMap,
		updates: make(chan Update, 16),
	}

	m.params = NewParamManager(m.cfg)

	if opts.ConfigPath != "" {
		watch, stop, err := watchConfig(opts.ConfigPath, logf)
		if err == nil {
			m.configWatch = watch
			m.stopWatch = stop
		} else {
			logf("[TUI] Config hot-reload disabled: %v", err)
		}
	}

	return m
}

// Init schedules the first optimization epoch. The actual start happens in
// Update so the mutated model is the one Bubble Tea keeps.
func (m model) Init() tea.Cmd {
	return func() tea.Msg { return startRunMsg{} }
}

// startEpoch cancels any running optimization and launches the next one
func (m *model) startEpoch() tea.Cmd {
	if m.cancel != nil {
		m.cancel()
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.epoch++
	m.running = true
	m.generation = 0
	m.bestFitness = 0
	m.result = nil

	m.shared.Update(*m.cfg)

	epoch := m.epoch
	cfg := *m.cfg
	runner := m.runner
	updates := m.updates

	m.logf("[TUI] Starting epoch %d", epoch)

	go runner(ctx, cfg, updates, epoch)

	return nil
}

// waitForUpdate reads the next progress update
func (m model) waitForUpdate() tea.Cmd {
	return func() tea.Msg {
		return updateMsg(<-m.updates)
	}
}

// waitForConfigChange reads the next external config edit, if watching
func (m model) waitForConfigChange() tea.Cmd {
	if m.configWatch == nil {
		return nil
	}

	return func() tea.Msg {
		cfg, ok := <-m.configWatch
		if !ok {
			return nil
		}

		return configReloadedMsg(cfg)
	}
}

// Update routes messages to the model
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		contentHeight := max(4, m.height-paramPanelHeight(m.params.Len()))
		if !m.ready {
			m.viewport = viewport.New(m.width, contentHeight)
			m.ready = true
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = contentHeight
		}

		m.refreshViewport()

		return m, nil

	case startRunMsg:
		cmd := m.startEpoch()

		return m, tea.Batch(cmd, m.waitForUpdate(), m.waitForConfigChange())

	case tea.KeyMsg:
		return m.handleKey(msg)

	case updateMsg:
		return m.handleUpdate(Update(msg))

	case configReloadedMsg:
		cfg := config.GAConfig(msg)
		m.cfg = &cfg
		m.params = NewParamManager(m.cfg)
		m.statusMsg = "Config reloaded from disk, restarting"
		cmd := m.startEpoch()

		return m, tea.Batch(cmd, m.waitForConfigChange())
	}

	return m, nil
}

// handleKey processes one key press
func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true

		if m.cancel != nil {
			m.cancel()
		}

		if m.stopWatch != nil {
			m.stopWatch()
		}

		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		m.params.SelectPrevious()

	case key.Matches(msg, m.keys.Down):
		m.params.SelectNext()

	case key.Matches(msg, m.keys.Left):
		if m.params.Decrease() {
			m.statusMsg = "Parameter changed, restarting"

			return m, m.startEpoch()
		}

	case key.Matches(msg, m.keys.Right):
		if m.params.Increase() {
			m.statusMsg = "Parameter changed, restarting"

			return m, m.startEpoch()
		}

	case key.Matches(msg, m.keys.Restart):
		m.statusMsg = "Restarting"

		return m, m.startEpoch()

	case key.Matches(msg, m.keys.Save):
		if m.opts.ConfigPath == "" {
			m.statusMsg = "No config path to save to"

			break
		}

		if err := config.SaveConfig(m.opts.ConfigPath, *m.cfg); err != nil {
			m.statusMsg = "Save failed: " + err.Error()
		} else {
			m.statusMsg = "Config saved"
		}

	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)

		return m, cmd
	}

	return m, nil
}

// handleUpdate folds a progress update into the model, ignoring updates
// from superseded epochs
func (m model) handleUpdate(u Update) (tea.Model, tea.Cmd) {
	if u.Epoch != m.epoch {
		return m, m.waitForUpdate()
	}

	m.generation = u.Generation
	m.bestFitness = u.BestFitness
	m.meanFitness = u.MeanFitness
	m.valid = u.Valid

	if u.Result != nil {
		m.running = false
		m.result = u.Result
		m.trace = u.Result.Trace
		m.refreshViewport()

		if u.Err != nil {
			m.statusMsg = "Run ended: " + u.Err.Error()
		} else {
			m.statusMsg = ""
		}
	}

	return m, m.waitForUpdate()
}
