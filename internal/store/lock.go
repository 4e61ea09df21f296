package store

import "sync"

// lockTable serializes access per resource path. Every store operation
// acquires the mutex for its file before touching it, so at most one
// operation is in flight per resource while operations on different
// resources proceed concurrently. Go mutexes hand the lock to waiters
// in arrival order under contention, which gives the per-path FIFO
// ordering callers rely on for read-modify-write sequences.
type lockTable struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newLockTable() *lockTable {
	return &lockTable{locks: make(map[string]*sync.Mutex)}
}

// acquire locks the mutex for path, creating it on first use, and returns
// the unlock function.
func (t *lockTable) acquire(path string) func() {
	t.mu.Lock()
	l, ok := t.locks[path]
	if !ok {
		l = &sync.Mutex{}
		t.locks[path] = l
	}
	t.mu.Unlock()

	l.Lock()
	return l.Unlock
}
