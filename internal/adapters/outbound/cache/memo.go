package cache

import "sync"

// NegativeMemo records cache paths whose rule resource could not be obtained
// during this run. It is the single source of truth for "already attempted";
// MarkUnavailable is its only mutation.
type NegativeMemo struct {
	mu    sync.RWMutex
	paths map[string]struct{}
}

func NewNegativeMemo() *NegativeMemo {
	return &NegativeMemo{paths: make(map[string]struct{})}
}

// MarkUnavailable inserts path if absent and reports whether it was inserted.
func (m *NegativeMemo) MarkUnavailable(path string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.paths[path]; ok {
		return false
	}
	m.paths[path] = struct{}{}
	return true
}

func (m *NegativeMemo) Unavailable(path string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.paths[path]
	return ok
}

func (m *NegativeMemo) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.paths)
}
