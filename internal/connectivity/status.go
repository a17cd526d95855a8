// Package connectivity holds the advisory "is the backend reachable" flag
// consumed by the demo-mode banner.
package connectivity

import (
	"sync"

	"sales-dashboard/prometheus"
)

// State is the tri-state result of the last probe
type State int

const (
	Unknown State = iota
	Available
	Unavailable
)

func (s State) String() string {
	switch s {
	case Available:
		return "available"
	case Unavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// Status records the last probe result. The zero value is ready to use
// and starts as Unknown.
type Status struct {
	mu      sync.RWMutex
	state   State
	metrics *prometheus.Metrics
}

// NewStatus creates a Status that publishes changes to metrics
func NewStatus(metrics *prometheus.Metrics) *Status {
	return &Status{metrics: metrics}
}

// Set records a probe result
func (s *Status) Set(available bool) {
	s.mu.Lock()
	if available {
		s.state = Available
	} else {
		s.state = Unavailable
	}
	s.mu.Unlock()
	s.metrics.SetBackendAvailable(&available)
}

// Reset returns the status to Unknown
func (s *Status) Reset() {
	s.mu.Lock()
	s.state = Unknown
	s.mu.Unlock()
	s.metrics.SetBackendAvailable(nil)
}

// Get returns the current state
func (s *Status) Get() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// UsingMockData is true only after a probe has failed
func (s *Status) UsingMockData() bool {
	return s.Get() == Unavailable
}
