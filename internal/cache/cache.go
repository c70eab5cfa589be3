// Package cache keeps per-visitor state in memory with TTL and LRU eviction.
package cache

import (
	"sync"
	"time"

	"expcat/internal/log"
)

// Cache is a string-keyed store of T values.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, data T)
	Delete(key string)
	Len() int
}

// Cleaner is implemented by caches that can drop expired entries on demand.
type Cleaner interface {
	CleanExpired() int
}

// Sweeper periodically calls CleanExpired on registered caches.
type Sweeper struct {
	mu      sync.Mutex
	caches  []Cleaner
	logger  *log.Logger
	stop    chan struct{}
	done    chan struct{}
	started bool
}

// NewSweeper creates a sweeper. A nil logger falls back to the default one.
func NewSweeper(logger *log.Logger) *Sweeper {
	if logger == nil {
		logger = log.Default()
	}
	return &Sweeper{
		logger: logger.WithComponent(log.ComponentCache),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Register adds a cache to the sweep set.
func (s *Sweeper) Register(c Cleaner) {
	s.mu.Lock()
	s.caches = append(s.caches, c)
	s.mu.Unlock()
}

// Sweep runs one pass and returns the number of entries removed.
func (s *Sweeper) Sweep() int {
	s.mu.Lock()
	caches := append([]Cleaner(nil), s.caches...)
	s.mu.Unlock()

	total := 0
	for _, c := range caches {
		total += c.CleanExpired()
	}
	if total > 0 {
		s.logger.Debug("Expired cache entries removed", log.FieldCount, total)
	}
	return total
}

// Start sweeps every interval until Stop is called.
func (s *Sweeper) Start(interval time.Duration) {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.mu.Unlock()

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.Sweep()
			case <-s.stop:
				return
			}
		}
	}()
}

// Stop ends the sweep loop and waits for it to exit. Safe to call when
// Start was never called.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	started := s.started
	s.started = false
	s.mu.Unlock()
	if !started {
		return
	}
	close(s.stop)
	<-s.done
}
