package fsenv

import "sync"

// lockTable records the paths this process holds advisory locks on.
// fcntl locks do not stop a process from locking the same file twice.
type lockTable struct {
	mu    sync.Mutex
	paths map[string]struct{}
}

func newLockTable() *lockTable {
	return &lockTable{paths: make(map[string]struct{})}
}

// Insert records path and reports whether it was not already present.
func (t *lockTable) Insert(path string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.paths[path]; ok {
		return false
	}
	t.paths[path] = struct{}{}
	return true
}

func (t *lockTable) Remove(path string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.paths, path)
}
