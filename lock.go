package stowback

import "sync"

// PathLocker serialises jobs touching the same source path. Locks for
// distinct paths never contend, and entries are dropped once unused.
type PathLocker struct {
	mu    sync.Mutex
	locks map[string]*pathLock
}

type pathLock struct {
	mu   sync.Mutex
	refs int
}

// NewPathLocker returns an empty locker ready for use.
func NewPathLocker() *PathLocker {
	return &PathLocker{locks: make(map[string]*pathLock)}
}

// Lock blocks until p is free and returns the function that releases it.
func (l *PathLocker) Lock(p string) (unlock func()) {
	l.mu.Lock()
	pl, ok := l.locks[p]
	if !ok {
		pl = &pathLock{}
		l.locks[p] = pl
	}
	pl.refs++
	l.mu.Unlock()

	pl.mu.Lock()

	return func() {
		pl.mu.Unlock()

		l.mu.Lock()
		pl.refs--
		if pl.refs == 0 {
			delete(l.locks, p)
		}
		l.mu.Unlock()
	}
}

func (l *PathLocker) held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
