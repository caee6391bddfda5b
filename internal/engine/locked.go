package engine

import "sync"

// Locked serialises access to a Monitor shared between goroutines.
type Locked struct {
	mu sync.Mutex
	m  *Monitor
}

func NewLocked(m *Monitor) *Locked { return &Locked{m: m} }

// With runs fn while holding the lock. fn must not retain m.
func (l *Locked) With(fn func(m *Monitor)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fn(l.m)
}

func (l *Locked) EvaluateSnapshot(snap Snapshot) Report {
	var rep Report
	l.With(func(m *Monitor) { rep = m.EvaluateSnapshot(snap) })
	return rep
}
