package pipeline

import (
	"sync"

	"github.com/CodeMasters-AiFactory/Stargate-sub006/internal/domain"
)

// Manager is the in-memory registry of live runs, keyed by run ID. The HTTP
// layer resolves request paths through it; runs removed from the manager keep
// working but become unreachable, so Remove is reserved for finished runs.
type Manager struct {
	mu   sync.RWMutex
	runs map[string]*Run
}

func NewManager() *Manager {
	return &Manager{runs: make(map[string]*Run)}
}

// Create builds a run from the config and registers it.
func (m *Manager) Create(cfg Config) (*Run, error) {
	run, err := NewRun(cfg)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.runs[run.ID] = run
	m.mu.Unlock()
	return run, nil
}

// Get resolves a run by ID.
func (m *Manager) Get(id string) (*Run, error) {
	m.mu.RLock()
	run, ok := m.runs[id]
	m.mu.RUnlock()
	if !ok {
		return nil, domain.ErrNotFound
	}
	return run, nil
}

// Remove drops a run from the registry.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	delete(m.runs, id)
	m.mu.Unlock()
}

// Len reports the number of registered runs.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.runs)
}
