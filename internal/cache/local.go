package cache

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	value   string
	expires time.Time
}

// Local is an in-process Cache. Expired keys are hidden immediately and removed
// by a background sweep.
type Local struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time

	stop chan struct{}
	once sync.Once
}

// NewLocal starts a Local cache sweeping expired keys every interval.
func NewLocal(interval time.Duration) *Local {
	l := &Local{
		entries: make(map[string]entry),
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	go l.sweep(interval)
	return l
}

func (l *Local) sweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.removeExpired()
		case <-l.stop:
			return
		}
	}
}

func (l *Local) removeExpired() {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, e := range l.entries {
		if !e.expires.After(now) {
			delete(l.entries, key)
		}
	}
}

func (l *Local) Get(_ context.Context, key string) (string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	e, ok := l.entries[key]
	if !ok || !e.expires.After(l.now()) {
		return "", nil
	}
	return e.value, nil
}

func (l *Local) Set(_ context.Context, key, value string, ttl time.Duration) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries[key] = entry{value: value, expires: l.now().Add(ttl)}
	return nil
}

func (l *Local) Del(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.entries, key)
	return nil
}

// Close stops the sweeper. It is safe to call more than once.
func (l *Local) Close() error {
	l.once.Do(func() { close(l.stop) })
	return nil
}

func (l *Local) len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}
