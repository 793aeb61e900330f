package entities

import (
	"strings"
	"sync"
	"time"

	"knowflow-backend/domain/core/valueobjects"
	pkgerrors "knowflow-backend/pkg/errors"
)

// ProcessStatus represents the lifecycle state of a documented process
type ProcessStatus string

const (
	ProcessStatusDraft      ProcessStatus = "draft"      // created, no knowledge yet
	ProcessStatusCapturing  ProcessStatus = "capturing"  // extraction batches arriving
	ProcessStatusValidating ProcessStatus = "validating" // human review of the graph
	ProcessStatusPublished  ProcessStatus = "published"  // finalized and locked
	ProcessStatusArchived   ProcessStatus = "archived"   // soft-deleted
)

// Process is the top-level container for one documented business process.
// Its graph, version ledger, and finding ledger are owned by the process
// registry and isolated from every other process.
type Process struct {
	mu          sync.RWMutex
	id          valueobjects.ProcessID
	name        string
	description string
	department  string
	status      ProcessStatus
	createdAt   time.Time
	updatedAt   time.Time
}

// NewProcess creates a new draft process
func NewProcess(name, description, department string) (*Process, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, pkgerrors.NewValidationError("process name cannot be empty")
	}

	now := time.Now()
	return &Process{
		id:          valueobjects.NewProcessID(),
		name:        name,
		description: description,
		department:  department,
		status:      ProcessStatusDraft,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// ID returns the process identifier
func (p *Process) ID() valueobjects.ProcessID {
	return p.id
}

// Name returns the process name
func (p *Process) Name() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.name
}

// Description returns the process description
func (p *Process) Description() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.description
}

// Department returns the owning department, if any
func (p *Process) Department() string {
	return p.department
}

// Status returns the lifecycle status
func (p *Process) Status() ProcessStatus {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.status
}

// CreatedAt returns the creation time
func (p *Process) CreatedAt() time.Time {
	return p.createdAt
}

// UpdatedAt returns the last modification time
func (p *Process) UpdatedAt() time.Time {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.updatedAt
}

// Rename updates the process name and description
func (p *Process) Rename(name, description string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.status == ProcessStatusArchived {
		return pkgerrors.NewValidationError("cannot update archived process")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return pkgerrors.NewValidationError("process name cannot be empty")
	}
	p.name = name
	if description != "" {
		p.description = description
	}
	p.updatedAt = time.Now()
	return nil
}

// MarkCapturing transitions a draft process into active capture.
// Idempotent for processes already capturing.
func (p *Process) MarkCapturing() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch p.status {
	case ProcessStatusArchived:
		return pkgerrors.NewValidationError("cannot capture into archived process")
	case ProcessStatusPublished:
		return pkgerrors.NewConflictError("published process is locked")
	}
	p.status = ProcessStatusCapturing
	p.updatedAt = time.Now()
	return nil
}

// Archive soft-deletes the process. Already-archived processes stay archived.
func (p *Process) Archive() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.status == ProcessStatusArchived {
		return
	}
	p.status = ProcessStatusArchived
	p.updatedAt = time.Now()
}
