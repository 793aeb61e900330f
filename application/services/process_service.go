// Package services contains the application layer: thin orchestrators that
// load process state through the repository port, invoke domain behavior and
// translate outcomes for the transport layer.
package services

import (
	"context"

	"go.uber.org/zap"

	"knowflow-backend/application/ports"
	"knowflow-backend/domain/core/aggregates"
	"knowflow-backend/domain/core/entities"
	"knowflow-backend/domain/risk"
	"knowflow-backend/domain/versioning"
	"knowflow-backend/pkg/errors"
)

// CreateProcessRequest carries the fields needed to register a process
type CreateProcessRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description,omitempty" validate:"max=2000"`
	Department  string `json:"department,omitempty" validate:"max=200"`
}

// UpdateProcessRequest carries the mutable process fields
type UpdateProcessRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description,omitempty" validate:"max=2000"`
}

// ProcessSummary is the transport-facing projection of a process
type ProcessSummary struct {
	ID          string                 `json:"id"`
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	Department  string                 `json:"department,omitempty"`
	Status      entities.ProcessStatus `json:"status"`
	NodeCount   int                    `json:"node_count"`
	EdgeCount   int                    `json:"edge_count"`
	Version     int                    `json:"version"`
	CreatedAt   string                 `json:"created_at"`
	UpdatedAt   string                 `json:"updated_at"`
}

// ProcessService manages the process registry: registration, listing,
// metadata updates and archival. Each registered process owns its live
// graph, version ledger and finding ledger for its whole lifetime.
type ProcessService struct {
	repo   ports.ProcessRepository
	logger *zap.Logger
}

// NewProcessService creates a new process service
func NewProcessService(repo ports.ProcessRepository, logger *zap.Logger) *ProcessService {
	return &ProcessService{
		repo:   repo,
		logger: logger,
	}
}

// Create registers a new process with an empty graph, a version ledger
// seeded at version 0 and an empty finding ledger.
func (s *ProcessService) Create(ctx context.Context, req CreateProcessRequest) (*ProcessSummary, error) {
	process, err := entities.NewProcess(req.Name, req.Description, req.Department)
	if err != nil {
		return nil, err
	}

	state := &ports.ProcessState{
		Process:  process,
		Graph:    aggregates.NewProcessGraph(process.ID()),
		Versions: versioning.NewLedger(),
		Findings: risk.NewLedger(),
	}
	if err := s.repo.Save(ctx, state); err != nil {
		return nil, err
	}

	s.logger.Info("process created",
		zap.String("processID", process.ID().String()),
		zap.String("name", process.Name()),
	)
	return summarize(state), nil
}

// Get returns one process summary
func (s *ProcessService) Get(ctx context.Context, processID string) (*ProcessSummary, error) {
	state, err := s.repo.GetByID(ctx, processID)
	if err != nil {
		return nil, err
	}
	return summarize(state), nil
}

// List returns summaries for every registered process
func (s *ProcessService) List(ctx context.Context) ([]*ProcessSummary, error) {
	states, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	summaries := make([]*ProcessSummary, 0, len(states))
	for _, state := range states {
		summaries = append(summaries, summarize(state))
	}
	return summaries, nil
}

// Update renames a process and refreshes its description
func (s *ProcessService) Update(ctx context.Context, processID string, req UpdateProcessRequest) (*ProcessSummary, error) {
	state, err := s.repo.GetByID(ctx, processID)
	if err != nil {
		return nil, err
	}
	if err := state.Process.Rename(req.Name, req.Description); err != nil {
		return nil, err
	}
	return summarize(state), nil
}

// Archive marks a process archived. Archived processes stay readable but
// reject further graph mutations.
func (s *ProcessService) Archive(ctx context.Context, processID string) (*ProcessSummary, error) {
	state, err := s.repo.GetByID(ctx, processID)
	if err != nil {
		return nil, err
	}
	state.Process.Archive()
	s.logger.Info("process archived", zap.String("processID", processID))
	return summarize(state), nil
}

// Delete removes a process and all state attached to it
func (s *ProcessService) Delete(ctx context.Context, processID string) error {
	if err := s.repo.Delete(ctx, processID); err != nil {
		return err
	}
	s.logger.Info("process deleted", zap.String("processID", processID))
	return nil
}

func summarize(state *ports.ProcessState) *ProcessSummary {
	p := state.Process
	return &ProcessSummary{
		ID:          p.ID().String(),
		Name:        p.Name(),
		Description: p.Description(),
		Department:  p.Department(),
		Status:      p.Status(),
		NodeCount:   state.Graph.NodeCount(),
		EdgeCount:   state.Graph.EdgeCount(),
		Version:     state.Versions.Latest().VersionNumber(),
		CreatedAt:   p.CreatedAt().Format(timeFormat),
		UpdatedAt:   p.UpdatedAt().Format(timeFormat),
	}
}

// guardMutable rejects graph mutations on archived processes
func guardMutable(state *ports.ProcessState) error {
	if state.Process.Status() == entities.ProcessStatusArchived {
		return errors.NewConflictError("process is archived and no longer accepts changes").
			WithCode(errors.CodeProcessArchived)
	}
	return nil
}
