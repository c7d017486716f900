package tournament

import "sync"

// lockArena hands out one mutex per match id.
type lockArena struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newLockArena() *lockArena {
	return &lockArena{locks: make(map[string]*sync.Mutex)}
}

// lock blocks until the match is free and returns the unlock function.
func (a *lockArena) lock(matchID string) func() {
	a.mu.Lock()
	l, ok := a.locks[matchID]
	if !ok {
		l = &sync.Mutex{}
		a.locks[matchID] = l
	}
	a.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// reset drops every lock. Only call it while no match lock is held.
func (a *lockArena) reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.locks = make(map[string]*sync.Mutex)
}

func (a *lockArena) size() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.locks)
}
