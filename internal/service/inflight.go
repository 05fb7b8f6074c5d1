package service

import "sync"

// inflight tracks which sessions have an external call running, so a session
// never has two scans or two commands outstanding.
type inflight struct {
	mu   sync.Mutex
	busy map[string]struct{}
}

func newInflight() *inflight {
	return &inflight{busy: make(map[string]struct{})}
}

// acquire marks key as busy. It reports false when key was already busy.
func (f *inflight) acquire(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.busy[key]; ok {
		return false
	}
	f.busy[key] = struct{}{}
	return true
}

func (f *inflight) release(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.busy, key)
}

func scanKey(sessionID string) string    { return sessionID + "/scan" }
func commandKey(sessionID string) string { return sessionID + "/command" }
