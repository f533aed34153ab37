package reconcile

import (
	"sync"

	"github.com/google/uuid"

	"tourdesk/pkg/models"
)

// Slot holds the latest completed reconciliation result. Each request takes
// a fresh generation token; a request that has been superseded cannot write
// its result back, so a slow stale fetch never overwrites the current view.
type Slot struct {
	mu     sync.Mutex
	gen    string
	latest *models.ConsolidatedOrder
}

func NewSlot() *Slot {
	return &Slot{}
}

// Begin registers a new request generation and invalidates all prior ones.
func (s *Slot) Begin() string {
	gen := uuid.NewString()
	s.mu.Lock()
	s.gen = gen
	s.mu.Unlock()
	return gen
}

// Complete stores the result only if gen is still the current generation.
// Returns whether the result was accepted.
func (s *Slot) Complete(gen string, result *models.ConsolidatedOrder) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return false
	}
	s.latest = result
	return true
}

// Latest returns the most recently accepted result, nil before the first.
func (s *Slot) Latest() *models.ConsolidatedOrder {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest
}
