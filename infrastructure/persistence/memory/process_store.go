// Package memory provides the in-memory implementation of the process
// repository port. The engine's persistence model is deliberately
// process-lifetime only; state lives and dies with the server.
package memory

import (
	"context"
	"sort"
	"sync"

	"knowflow-backend/application/ports"
	"knowflow-backend/pkg/errors"
)

// InMemoryProcessStore provides an in-memory implementation of
// ProcessRepository. The store's lock guards registry membership only;
// each ProcessState guards its own graph and ledgers internally, so
// operations on different processes never contend.
type InMemoryProcessStore struct {
	mu        sync.RWMutex
	processes map[string]*ports.ProcessState
}

// NewInMemoryProcessStore creates a new in-memory process store
func NewInMemoryProcessStore() *InMemoryProcessStore {
	return &InMemoryProcessStore{
		processes: make(map[string]*ports.ProcessState),
	}
}

// Save registers a new process bundle
func (s *InMemoryProcessStore) Save(ctx context.Context, state *ports.ProcessState) error {
	if state == nil || state.Process == nil {
		return errors.NewValidationError("process state is incomplete")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := state.Process.ID().String()
	if _, exists := s.processes[id]; exists {
		return errors.NewConflictError("process already registered")
	}
	s.processes[id] = state
	return nil
}

// GetByID retrieves a process bundle by process id
func (s *InMemoryProcessStore) GetByID(ctx context.Context, processID string) (*ports.ProcessState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, exists := s.processes[processID]
	if !exists {
		return nil, errors.NewProcessNotFoundError(processID)
	}
	return state, nil
}

// List retrieves all registered processes ordered by creation time
func (s *InMemoryProcessStore) List(ctx context.Context) ([]*ports.ProcessState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	states := make([]*ports.ProcessState, 0, len(s.processes))
	for _, state := range s.processes {
		states = append(states, state)
	}
	sort.Slice(states, func(i, j int) bool {
		a, b := states[i].Process, states[j].Process
		if !a.CreatedAt().Equal(b.CreatedAt()) {
			return a.CreatedAt().Before(b.CreatedAt())
		}
		return a.ID().String() < b.ID().String()
	})
	return states, nil
}

// Delete removes a process and all state attached to it
func (s *InMemoryProcessStore) Delete(ctx context.Context, processID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.processes[processID]; !exists {
		return errors.NewProcessNotFoundError(processID)
	}
	delete(s.processes, processID)
	return nil
}
