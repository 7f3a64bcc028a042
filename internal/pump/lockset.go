package pump

import "sync"

// LockSet coordinates every pump on one hardware bus. It holds two locks:
// the exclusive-pump lock, held by an exclusive pump for its whole run, and
// the someone-pumping lock, held by at most one non-exclusive pump at a time.
// Neither is ever waited on; pumps either get them or skip.
type LockSet struct {
	mu        sync.Mutex
	exclusive bool
	pumping   bool
}

// NewLockSet returns a lock set with both locks free. Build one per bus.
func NewLockSet() *LockSet { return &LockSet{} }

// acquireExclusive takes the exclusive lock when neither lock is held.
func (l *LockSet) acquireExclusive() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.exclusive || l.pumping {
		return false
	}
	l.exclusive = true
	return true
}

func (l *LockSet) releaseExclusive() {
	l.mu.Lock()
	l.exclusive = false
	l.mu.Unlock()
}

// enterShared reports blocked when an exclusive pump runs. Otherwise the
// caller may pump, and holding says whether it took the someone-pumping lock.
func (l *LockSet) enterShared() (blocked, holding bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.exclusive {
		return true, false
	}
	if l.pumping {
		return false, false
	}
	l.pumping = true
	return false, true
}

func (l *LockSet) releaseShared() {
	l.mu.Lock()
	l.pumping = false
	l.mu.Unlock()
}

// ExclusiveHeld reports whether an exclusive pump is running.
func (l *LockSet) ExclusiveHeld() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.exclusive
}

// SomeonePumping reports whether a non-exclusive pump holds its lock.
func (l *LockSet) SomeonePumping() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pumping
}
