package tracker

import (
	"sync"

	"github.com/golang/geo/r3"
)

// Simulated is a Tracker with externally settable landmark positions, used
// in dev mode and tests. The zero value has no fixes.
type Simulated struct {
	mu   sync.RWMutex
	base *r3.Vector
	tip  *r3.Vector
	body *r3.Vector
}

// NewSimulated returns a simulated tracker with no landmark fixes.
func NewSimulated() *Simulated { return &Simulated{} }

// SetBase sets the current base fix.
func (s *Simulated) SetBase(v r3.Vector) { s.mu.Lock(); s.base = &v; s.mu.Unlock() }

// SetTip sets the current tip fix.
func (s *Simulated) SetTip(v r3.Vector) { s.mu.Lock(); s.tip = &v; s.mu.Unlock() }

// SetBody sets the current body fix.
func (s *Simulated) SetBody(v r3.Vector) { s.mu.Lock(); s.body = &v; s.mu.Unlock() }

// ClearBase drops the base fix, as when the camera loses the marker.
func (s *Simulated) ClearBase() { s.mu.Lock(); s.base = nil; s.mu.Unlock() }

// ClearTip drops the tip fix.
func (s *Simulated) ClearTip() { s.mu.Lock(); s.tip = nil; s.mu.Unlock() }

// ClearBody drops the body fix.
func (s *Simulated) ClearBody() { s.mu.Lock(); s.body = nil; s.mu.Unlock() }

// CurrentBase implements Tracker.
func (s *Simulated) CurrentBase() (r3.Vector, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return deref(s.base)
}

// CurrentTip implements Tracker.
func (s *Simulated) CurrentTip() (r3.Vector, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return deref(s.tip)
}

// CurrentBody implements Tracker.
func (s *Simulated) CurrentBody() (r3.Vector, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return deref(s.body)
}

func deref(p *r3.Vector) (r3.Vector, bool) {
	if p == nil {
		return r3.Vector{}, false
	}
	return *p, true
}
