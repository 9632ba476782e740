package player

import "sync"

// Pool holds every configured account session in configuration order.
//
// Selection is deterministic: the first session whose device was found,
// falling back to the first configured session when none are active.
// There is no failover-on-error beyond that initial rule; a later
// rediscovery changes the answer only because SelectActive recomputes
// it on each call.
type Pool struct {
	mu       sync.RWMutex
	sessions []*Session
}

// NewPool creates an empty session pool.
func NewPool() *Pool {
	return &Pool{}
}

// Add appends a session, preserving configuration order.
func (p *Pool) Add(s *Session) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sessions = append(p.sessions, s)
}

// Get returns the session with the given label, or nil.
func (p *Pool) Get(label string) *Session {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, s := range p.sessions {
		if s.Label() == label {
			return s
		}
	}
	return nil
}

// SelectActive returns the default playback session: the first active
// one, else the first configured one, else nil for an empty pool.
func (p *Pool) SelectActive() *Session {
	p.mu.RLock()
	defer p.mu.RUnlock()

	for _, s := range p.sessions {
		if s.Active() {
			return s
		}
	}
	if len(p.sessions) > 0 {
		return p.sessions[0]
	}
	return nil
}

// All returns a copy of the sessions for read-only iteration.
func (p *Pool) All() []*Session {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]*Session, len(p.sessions))
	copy(out, p.sessions)
	return out
}

// Len returns the number of pooled sessions.
func (p *Pool) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.sessions)
}
