// internal/session/store.go
//
// Session storage backends.
//
// Context
//   The Store interface is the only contract the rest of Folio sees; the
//   in-memory implementation below is the default for a single-instance
//   deployment.  A Redis- or MySQL-backed Store can be dropped in without
//   touching callers.
//
//   Expired sessions are reaped by Sweep, which main() runs on its errgroup
//   so the map cannot grow without bound under crawler traffic.
//
//------------------------------------------------------------------------------

package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/foliohq/folio/internal/metrics"
)

// Store persists sessions keyed by their random ID.  Implementations must
// be safe for concurrent use.
type Store interface {
	// Get returns the live session for id.  ok is false when the id is
	// unknown or the session has expired.
	Get(id string) (s *Session, ok bool)

	// Put inserts or replaces a session.
	Put(s *Session)

	// Delete removes a session.  Deleting an unknown id is a no-op.
	Delete(id string)
}

// Memory is the default in-process Store.
type Memory struct {
	mu   sync.RWMutex
	byID map[string]*Session
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{byID: make(map[string]*Session)}
}

// Get implements Store.  Expired entries are treated as absent; the sweeper
// removes them later.
func (m *Memory) Get(id string) (*Session, bool) {
	m.mu.RLock()
	s, ok := m.byID[id]
	m.mu.RUnlock()
	if !ok || s.Expired(time.Now()) {
		return nil, false
	}
	return s, true
}

// Put implements Store.
func (m *Memory) Put(s *Session) {
	m.mu.Lock()
	m.byID[s.ID] = s
	m.mu.Unlock()
	metrics.ActiveSessions.Set(float64(m.Len()))
}

// Delete implements Store.
func (m *Memory) Delete(id string) {
	m.mu.Lock()
	delete(m.byID, id)
	m.mu.Unlock()
	metrics.ActiveSessions.Set(float64(m.Len()))
}

// Len reports the current entry count, expired or not.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byID)
}

// Sweep removes expired sessions every interval until ctx is cancelled.
func (m *Memory) Sweep(ctx context.Context, interval time.Duration) error {
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-t.C:
			if n := m.reap(now); n > 0 {
				zap.S().Debugw("sessions reaped", "count", n)
			}
		}
	}
}

// reap deletes every session expired as of now and returns the count.
func (m *Memory) reap(now time.Time) int {
	m.mu.Lock()
	var n int
	for id, s := range m.byID {
		if s.Expired(now) {
			delete(m.byID, id)
			n++
		}
	}
	m.mu.Unlock()

	metrics.ActiveSessions.Set(float64(m.Len()))
	return n
}
