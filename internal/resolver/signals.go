package resolver

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// SignalManager handles out-of-band control of a resolution run via the
// .mergehand directory. A CI job or operator can drop a stop file to abort
// a run, and guidelines.md is injected into the system prompt so projects
// can steer how conflicts get resolved.
type SignalManager struct {
	mergehandDir string

	mu         sync.RWMutex
	stopSignal bool

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewSignalManager creates a signal manager for the given repo.
func NewSignalManager(repoPath string) (*SignalManager, error) {
	mergehandDir := filepath.Join(repoPath, ".mergehand")

	dirs := []string{
		mergehandDir,
		filepath.Join(mergehandDir, "signals"),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}

	sm := &SignalManager{
		mergehandDir: mergehandDir,
		done:         make(chan struct{}),
	}

	// Start file watcher for immediate signals
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		// Continue without watcher - ShouldStop polls the file directly
		return sm, nil
	}
	sm.watcher = watcher

	signalsDir := filepath.Join(mergehandDir, "signals")
	if err := watcher.Add(signalsDir); err != nil {
		watcher.Close()
		sm.watcher = nil
		return sm, nil
	}

	go sm.watchSignals()

	return sm, nil
}

// watchSignals monitors the signals directory for the stop file.
func (sm *SignalManager) watchSignals() {
	for {
		select {
		case <-sm.done:
			return
		case event, ok := <-sm.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) == "stop" && (event.Op&fsnotify.Create != 0 || event.Op&fsnotify.Write != 0) {
				sm.mu.Lock()
				sm.stopSignal = true
				sm.mu.Unlock()
			}
		case <-sm.watcher.Errors:
			// Ignore errors, keep watching
		}
	}
}

// ReadGuidelines returns the contents of the project's resolution guidelines
// file, or empty if none exists.
func (sm *SignalManager) ReadGuidelines() string {
	path := filepath.Join(sm.mergehandDir, "guidelines.md")
	content, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return string(content)
}

// ShouldStop returns true if a stop signal has been received.
func (sm *SignalManager) ShouldStop() bool {
	// Also check the file directly in case the watcher missed it
	stopPath := filepath.Join(sm.mergehandDir, "signals", "stop")
	if _, err := os.Stat(stopPath); err == nil {
		sm.mu.Lock()
		sm.stopSignal = true
		sm.mu.Unlock()
	}

	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.stopSignal
}

// SendStop creates a stop signal file.
func (sm *SignalManager) SendStop() error {
	path := filepath.Join(sm.mergehandDir, "signals", "stop")
	return os.WriteFile(path, []byte(time.Now().Format(time.RFC3339)), 0644)
}

// ClearSignals removes all signal files and resets signal state.
func (sm *SignalManager) ClearSignals() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.stopSignal = false
	os.Remove(filepath.Join(sm.mergehandDir, "signals", "stop"))
}

// Dir returns the path to the .mergehand directory.
func (sm *SignalManager) Dir() string {
	return sm.mergehandDir
}

// Close shuts down the signal manager.
func (sm *SignalManager) Close() {
	close(sm.done)
	if sm.watcher != nil {
		sm.watcher.Close()
	}
}
