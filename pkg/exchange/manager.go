package exchange

import "sync"

// Manager is the process-wide registry of named exchanges, replacing
// the original's module-level _exchanges dict plus ExchangeManager
// poller thread; dispatch is now owned per-Exchange instead of
// multiplexed through a shared selector.
type Manager struct {
	mu        sync.Mutex
	exchanges map[string]*Exchange
}

// NewManager returns an empty Manager.
func NewManager() *Manager {
	return &Manager{exchanges: make(map[string]*Exchange)}
}

// GetOrCreate returns the named exchange, creating it if it doesn't
// exist yet.
func (m *Manager) GetOrCreate(name string) *Exchange {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, exists := m.exchanges[name]; exists {
		return e
	}
	e := New(name)
	m.exchanges[name] = e
	return e
}

// Delete stops and removes the named exchange. No-op if it doesn't
// exist.
func (m *Manager) Delete(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, exists := m.exchanges[name]; exists {
		e.Stop()
		delete(m.exchanges, name)
	}
}
