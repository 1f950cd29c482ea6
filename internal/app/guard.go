package app

import "sync"

// jobGuard tracks in-flight bulk grading jobs per season. Acquisition is
// non-blocking: a duplicate attempt is rejected, not queued.
type jobGuard struct {
	mu     sync.Mutex
	active map[int]bool
}

func newJobGuard() *jobGuard {
	return &jobGuard{active: make(map[int]bool)}
}

func (g *jobGuard) acquire(season int) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.active[season] {
		return false
	}
	g.active[season] = true
	return true
}

func (g *jobGuard) release(season int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.active, season)
}
