package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// envHome overrides the default app directory location, mainly for tests.
const envHome = "TARAGENT_HOME"

// Manager handles the ~/.taragent directory: the config file written by the
// setup wizard, the readline history file, and the token usage log.
type Manager struct {
	rootDir string
	runID   string
	mu      sync.RWMutex
}

// NewManager creates the app directory if needed and returns a manager
// bound to it. Each manager gets a fresh run id for grouping usage records.
func NewManager() (*Manager, error) {
	rootDir, err := appDir()
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(rootDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", rootDir, err)
	}

	return &Manager{
		rootDir: rootDir,
		runID:   uuid.New().String(),
	}, nil
}

func appDir() (string, error) {
	if dir := os.Getenv(envHome); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".taragent"), nil
}

// Dir returns the app directory path.
func (m *Manager) Dir() string {
	return m.rootDir
}

// RunID returns the identifier for this process run.
func (m *Manager) RunID() string {
	return m.runID
}

// ConfigPath returns the path of the config file read by viper and written
// by the setup wizard.
func (m *Manager) ConfigPath() string {
	return filepath.Join(m.rootDir, "config.yaml")
}

// HistoryPath returns the readline history file path.
func (m *Manager) HistoryPath() string {
	return filepath.Join(m.rootDir, "history")
}

func (m *Manager) usagePath() string {
	return filepath.Join(m.rootDir, "usage.json")
}

// RecordUsage appends one usage entry for this run to the usage log.
func (m *Manager) RecordUsage(model string, usage TokenUsage) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	log := m.loadUsageLocked()
	log.Records = append(log.Records, UsageRecord{
		RunID:     m.runID,
		Model:     model,
		Timestamp: time.Now(),
		Usage:     usage,
	})

	data, err := json.MarshalIndent(log, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode usage log: %w", err)
	}
	if err := os.WriteFile(m.usagePath(), data, 0644); err != nil {
		return fmt.Errorf("failed to write usage log: %w", err)
	}
	return nil
}

// TotalUsage returns the aggregated lifetime usage and the number of
// recorded calls.
func (m *Manager) TotalUsage() (TokenUsage, int) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	log := m.loadUsageLocked()
	var total TokenUsage
	for _, rec := range log.Records {
		total.Add(rec.Usage)
	}
	return total, len(log.Records)
}

// RunUsage returns the aggregated usage recorded by this process run.
func (m *Manager) RunUsage() TokenUsage {
	m.mu.RLock()
	defer m.mu.RUnlock()

	log := m.loadUsageLocked()
	var total TokenUsage
	for _, rec := range log.Records {
		if rec.RunID == m.runID {
			total.Add(rec.Usage)
		}
	}
	return total
}

// loadUsageLocked reads usage.json, tolerating a missing or corrupt file.
func (m *Manager) loadUsageLocked() *usageLog {
	log := &usageLog{}
	if data, err := os.ReadFile(m.usagePath()); err == nil {
		json.Unmarshal(data, log)
	}
	return log
}
