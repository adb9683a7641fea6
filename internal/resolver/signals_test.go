package resolver

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSignalManager_StopSignal(t *testing.T) {
	dir := t.TempDir()
	sm, err := NewSignalManager(dir)
	if err != nil {
		t.Fatalf("NewSignalManager: %v", err)
	}
	defer sm.Close()

	if sm.ShouldStop() {
		t.Error("fresh manager should not report stop")
	}

	if err := sm.SendStop(); err != nil {
		t.Fatalf("SendStop: %v", err)
	}
	if !sm.ShouldStop() {
		t.Error("ShouldStop should be true after SendStop")
	}

	sm.ClearSignals()
	if sm.ShouldStop() {
		t.Error("ShouldStop should be false after ClearSignals")
	}
}

func TestSignalManager_CreatesDirectories(t *testing.T) {
	dir := t.TempDir()
	sm, err := NewSignalManager(dir)
	if err != nil {
		t.Fatalf("NewSignalManager: %v", err)
	}
	defer sm.Close()

	signalsDir := filepath.Join(dir, ".mergehand", "signals")
	if _, err := os.Stat(signalsDir); err != nil {
		t.Errorf("signals directory not created: %v", err)
	}
}

func TestSignalManager_ReadGuidelines(t *testing.T) {
	dir := t.TempDir()
	sm, err := NewSignalManager(dir)
	if err != nil {
		t.Fatalf("NewSignalManager: %v", err)
	}
	defer sm.Close()

	if got := sm.ReadGuidelines(); got != "" {
		t.Errorf("ReadGuidelines = %q, want empty", got)
	}

	path := filepath.Join(sm.Dir(), "guidelines.md")
	if err := os.WriteFile(path, []byte("keep both sides"), 0644); err != nil {
		t.Fatalf("write guidelines: %v", err)
	}

	if got := sm.ReadGuidelines(); got != "keep both sides" {
		t.Errorf("ReadGuidelines = %q", got)
	}
}
