// ABOUTME: Thread-safe wrapper around GAConfig for live tuning from the TUI
// ABOUTME: The optimizer snapshots it once per run, the TUI writes between epochs

package config

import "sync"

// SharedConfig wraps GAConfig with a mutex for safe access between the
// optimizer and the TUI
type SharedConfig struct {
	mu     sync.RWMutex
	config GAConfig
}

// NewSharedConfig returns a SharedConfig seeded with the given config
func NewSharedConfig(cfg GAConfig) *SharedConfig {
	return &SharedConfig{config: cfg}
}

// Get returns a copy of the current config (thread-safe read)
func (sc *SharedConfig) Get() GAConfig {
	sc.mu.RLock()
	defer sc.mu.RUnlock()

	return sc.config
}

// Update updates the config (thread-safe write)
func (sc *SharedConfig) Update(cfg GAConfig) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.config = cfg
}
