package ports

import (
	"context"

	"knowflow-backend/domain/core/aggregates"
	"knowflow-backend/domain/core/entities"
	"knowflow-backend/domain/risk"
	"knowflow-backend/domain/versioning"
)

// ProcessState bundles everything the engine tracks for one process: the
// process entity, its live graph aggregate, the immutable version ledger
// and the risk finding ledger. The bundle is created atomically when a
// process is registered and lives and dies with it.
type ProcessState struct {
	Process  *entities.Process
	Graph    *aggregates.ProcessGraph
	Versions *versioning.Ledger
	Findings *risk.Ledger
}

// ProcessRepository defines the interface for process state storage.
// This is a port in hexagonal architecture - the domain doesn't know about
// the implementation.
type ProcessRepository interface {
	// Save registers a new process bundle
	Save(ctx context.Context, state *ProcessState) error

	// GetByID retrieves a process bundle by process id
	GetByID(ctx context.Context, processID string) (*ProcessState, error)

	// List retrieves all registered processes
	List(ctx context.Context) ([]*ProcessState, error)

	// Delete removes a process and all state attached to it
	Delete(ctx context.Context, processID string) error
}
